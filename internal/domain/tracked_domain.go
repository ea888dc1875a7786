package domain

import "time"

// TrackedDomain es un dominio monitoreado por un usuario.
// Los campos WHOIS son opcionales porque los registros no siempre los publican.
type TrackedDomain struct {
	ID               int64      `json:"id"`
	UserID           int64      `json:"user_id"`
	Domain           string     `json:"domain"`
	RegistrationDate *time.Time `json:"registration_date,omitempty"`
	ExpirationDate   *time.Time `json:"expiration_date,omitempty"`
	LastRenewDate    *time.Time `json:"last_renew_date,omitempty"`
	Registrar        *string    `json:"registrar,omitempty"`
	Status           *string    `json:"status,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// WhoisInfo es el resultado normalizado de una consulta WHOIS.
type WhoisInfo struct {
	RegistrationDate *time.Time `json:"registration_date,omitempty"`
	ExpirationDate   *time.Time `json:"expiration_date,omitempty"`
	LastRenewDate    *time.Time `json:"last_renew_date,omitempty"`
	Registrar        *string    `json:"registrar,omitempty"`
	Status           *string    `json:"status,omitempty"`
	NameServers      []string   `json:"name_servers,omitempty"`
}

// ExpiryStatus clasifica un dominio segun la cercania de su vencimiento.
type ExpiryStatus string

const (
	ExpiryUnknown  ExpiryStatus = "unknown"
	ExpiryExpired  ExpiryStatus = "expired"
	ExpiryCritical ExpiryStatus = "critical"
	ExpiryWarning  ExpiryStatus = "warning"
	ExpiryHealthy  ExpiryStatus = "healthy"
)
