package service

import (
	"math"
	"regexp"
	"strings"
	"time"

	"domain-bot/internal/domain"
)

var emailPattern = regexp.MustCompile(`^[^\s\v\p{Z}\x{FEFF}@]+@[^\s\v\p{Z}\x{FEFF}@]+\.[^\s\v\p{Z}\x{FEFF}@]+$`)

const (
	maxDomainLength = 253
	maxLabelLength  = 63
	criticalDays    = 7
	warningDays     = 30
)

// IsValidEmail acepta local@dominio.tld sin espacios ni arrobas adicionales.
func IsValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// NormalizeDomain pasa a minusculas y quita esquema http(s), prefijo www. y una barra final.
func NormalizeDomain(s string) string {
	d := strings.ToLower(strings.TrimSpace(s))
	if strings.HasPrefix(d, "http://") {
		d = strings.TrimPrefix(d, "http://")
	} else {
		d = strings.TrimPrefix(d, "https://")
	}
	d = strings.TrimPrefix(d, "www.")
	return strings.TrimSuffix(d, "/")
}

// IsValidDomain valida la sintaxis de un nombre de host ya normalizado.
func IsValidDomain(s string) bool {
	if len(s) > maxDomainLength {
		return false
	}
	labels := strings.Split(s, ".")
	if len(labels) < 2 {
		return false
	}
	for _, label := range labels {
		if !isValidLabel(label) {
			return false
		}
	}
	tld := labels[len(labels)-1]
	if len(tld) < 2 {
		return false
	}
	for _, r := range tld {
		if !isASCIILetter(r) {
			return false
		}
	}
	return true
}

func isValidLabel(label string) bool {
	if len(label) == 0 || len(label) > maxLabelLength {
		return false
	}
	if label[0] == '-' || label[len(label)-1] == '-' {
		return false
	}
	for _, r := range label {
		if !isASCIILetter(r) && !(r >= '0' && r <= '9') && r != '-' {
			return false
		}
	}
	return true
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// DaysUntil devuelve los dias enteros restantes hasta t, redondeando hacia arriba.
func DaysUntil(t, now time.Time) int {
	return int(math.Ceil(t.Sub(now).Hours() / 24))
}

// ClassifyExpiry ubica un vencimiento en una de las bandas de estado.
func ClassifyExpiry(expiration *time.Time, now time.Time) domain.ExpiryStatus {
	if expiration == nil {
		return domain.ExpiryUnknown
	}
	if expiration.Before(now) {
		return domain.ExpiryExpired
	}
	days := DaysUntil(*expiration, now)
	switch {
	case days <= criticalDays:
		return domain.ExpiryCritical
	case days <= warningDays:
		return domain.ExpiryWarning
	default:
		return domain.ExpiryHealthy
	}
}
