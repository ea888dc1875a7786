package service

import (
	"crypto/rand"
	"math/big"
	"strings"
)

const (
	codeLength   = 6
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// GenerateCode produce un codigo alfanumerico de 6 caracteres en mayusculas.
func GenerateCode() (string, error) {
	max := big.NewInt(int64(len(codeAlphabet)))
	var b strings.Builder
	b.Grow(codeLength)
	for i := 0; i < codeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(codeAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// normalizeCode devuelve el codigo en mayusculas, o "" si no tiene el formato esperado.
func normalizeCode(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != codeLength {
		return ""
	}
	for _, r := range code {
		if !strings.ContainsRune(codeAlphabet, r) {
			return ""
		}
	}
	return code
}
