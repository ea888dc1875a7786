package domain

import "time"

// Step identifica el paso pendiente de una conversacion de varios pasos.
type Step string

const (
	StepIdle                      Step = "idle"
	StepAwaitingEmail             Step = "awaiting_email"
	StepAwaitingPhone             Step = "awaiting_phone"
	StepAwaitingVerification      Step = "awaiting_verification"
	StepAwaitingDomain            Step = "awaiting_domain"
	StepAwaitingNewEmail          Step = "awaiting_new_email"
	StepAwaitingEmailVerification Step = "awaiting_email_verification"
)

// Session es el estado efimero de un usuario a mitad de un flujo.
// Vive solo en memoria (o en Redis con TTL); un reinicio pierde los registros en curso.
type Session struct {
	Step         Step      `json:"step"`
	PendingEmail string    `json:"pending_email,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}
