package bot

import (
	"context"
	"errors"
)

// ErrActionExpired indica que Telegram ya no acepta el acuse de un boton (token vencido).
var ErrActionExpired = errors.New("action acknowledgement expired")

type EventKind string

const (
	EventCommand EventKind = "command"
	EventText    EventKind = "text"
	EventAction  EventKind = "action"
	EventContact EventKind = "contact"
)

// Contact es el telefono compartido por el usuario.
type Contact struct {
	PhoneNumber string
	UserID      int64
}

// Event es una entrada del transporte ya normalizada. Text lleva el texto del mensaje,
// el argumento del comando o los datos del boton segun Kind.
type Event struct {
	ID       string
	Kind     EventKind
	ChatID   int64
	UserID   int64
	Text     string
	Command  string
	ActionID string
	Contact  *Contact
}

type Button struct {
	Label  string
	Action Action
}

// Message es un mensaje saliente con formato HTML.
type Message struct {
	ChatID         int64
	Text           string
	Buttons        [][]Button
	RequestContact bool
	RemoveKeyboard bool
}

// Messenger es el transporte saliente que usa el bot.
type Messenger interface {
	Send(ctx context.Context, msg Message) error
	AnswerAction(ctx context.Context, actionID string) error
}
