package domain

import "time"

// User es la cuenta asociada a un usuario de la plataforma de mensajeria.
// NotificationsEnabled controla si el barrido de recordatorios le escribe y
// ReminderLeadDays limita los avisos a dominios que vencen dentro de N dias
// (0 usa la ventana completa de un mes).
type User struct {
	ID                   int64     `json:"id"`
	TelegramID           int64     `json:"telegram_id"`
	Email                string    `json:"email"`
	PhoneNumber          string    `json:"phone_number"`
	IsVerified           bool      `json:"is_verified"`
	NotificationsEnabled bool      `json:"notifications_enabled"`
	ReminderLeadDays     int       `json:"reminder_lead_days"`
	CreatedAt            time.Time `json:"created_at"`
}
