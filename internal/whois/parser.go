package whois

import (
	"bufio"
	"errors"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"domain-bot/internal/domain"
)

var (
	ErrNotFound   = errors.New("whois: domain not found")
	ErrUnparsable = errors.New("whois: unparsable response")
)

// Claves conocidas por campo, en orden de preferencia. Los registros nacionales
// (p. ej. nic.ir) usan claves en minusculas con guiones.
var (
	registrationKeys = []string{"creation date", "created on", "registered on", "registered", "registration time", "created"}
	expirationKeys   = []string{"registry expiry date", "registrar registration expiration date", "expiration date", "expires on", "expiry date", "expire-date", "paid-till"}
	updatedKeys      = []string{"updated date", "last updated", "modified", "last-updated", "changed"}
	registrarKeys    = []string{"registrar", "sponsoring registrar", "registrar name"}
	statusKeys       = []string{"domain status", "status", "state"}
	nameServerKeys   = []string{"name server", "nserver", "nameserver"}
)

var notFoundMarkers = []string{
	"no match for",
	"no data found",
	"no entries found",
	"domain not found",
	"no object found",
	"not found",
	"status: free",
}

// Parse extrae los campos relevantes de una respuesta WHOIS en texto libre.
// Cualquier campo puede quedar vacio; falla solo si no se reconoce nada.
func Parse(raw string) (domain.WhoisInfo, error) {
	if strings.TrimSpace(raw) == "" {
		return domain.WhoisInfo{}, ErrUnparsable
	}

	fields := make(map[string][]string)
	scanner := bufio.NewScanner(strings.NewReader(raw))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "%") || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ">>>") {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		if key == "" || value == "" {
			continue
		}
		fields[key] = append(fields[key], value)
	}

	info := domain.WhoisInfo{
		RegistrationDate: firstDate(fields, registrationKeys),
		ExpirationDate:   firstDate(fields, expirationKeys),
		LastRenewDate:    firstDate(fields, updatedKeys),
		Registrar:        firstValue(fields, registrarKeys),
		Status:           firstStatus(fields),
		NameServers:      nameServers(fields),
	}

	if info.RegistrationDate == nil && info.ExpirationDate == nil && info.Registrar == nil {
		lower := strings.ToLower(raw)
		for _, marker := range notFoundMarkers {
			if strings.Contains(lower, marker) {
				return domain.WhoisInfo{}, ErrNotFound
			}
		}
		if info.Status == nil && len(info.NameServers) == 0 {
			return domain.WhoisInfo{}, ErrUnparsable
		}
	}
	return info, nil
}

func firstValue(fields map[string][]string, keys []string) *string {
	for _, k := range keys {
		if values := fields[k]; len(values) > 0 {
			v := values[0]
			return &v
		}
	}
	return nil
}

func firstDate(fields map[string][]string, keys []string) *time.Time {
	for _, k := range keys {
		for _, v := range fields[k] {
			t, err := dateparse.ParseIn(v, time.UTC)
			if err == nil {
				t = t.UTC()
				return &t
			}
		}
	}
	return nil
}

// firstStatus descarta la URL de referencia que ICANN agrega a cada estado EPP.
func firstStatus(fields map[string][]string) *string {
	v := firstValue(fields, statusKeys)
	if v == nil {
		return nil
	}
	parts := strings.Fields(*v)
	status := parts[0]
	return &status
}

func nameServers(fields map[string][]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, k := range nameServerKeys {
		for _, v := range fields[k] {
			ns := strings.ToLower(strings.Fields(v)[0])
			if !seen[ns] {
				seen[ns] = true
				out = append(out, ns)
			}
		}
	}
	return out
}
