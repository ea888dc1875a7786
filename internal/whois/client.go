package whois

import (
	"context"
	"fmt"
	"time"

	likexian "github.com/likexian/whois"
	"go.uber.org/zap"

	"domain-bot/internal/domain"
)

// Querier abstrae la consulta WHOIS cruda para poder reemplazarla en pruebas.
type Querier interface {
	Whois(domain string, servers ...string) (string, error)
}

// Client consulta WHOIS y normaliza la respuesta.
type Client struct {
	querier Querier
	timeout time.Duration
	logger  *zap.Logger
}

// NewClient construye un cliente sobre likexian/whois con el timeout indicado.
func NewClient(timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return NewClientWithQuerier(likexian.NewClient().SetTimeout(timeout), timeout, logger)
}

func NewClientWithQuerier(q Querier, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{querier: q, timeout: timeout, logger: logger}
}

type queryResult struct {
	text string
	err  error
}

// Lookup consulta el dominio y devuelve sus datos. No reintenta.
func (c *Client) Lookup(ctx context.Context, name string) (domain.WhoisInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	done := make(chan queryResult, 1)
	go func() {
		text, err := c.querier.Whois(name)
		done <- queryResult{text: text, err: err}
	}()

	var res queryResult
	select {
	case <-ctx.Done():
		return domain.WhoisInfo{}, fmt.Errorf("whois %s: %w", name, ctx.Err())
	case res = <-done:
	}
	if res.err != nil {
		return domain.WhoisInfo{}, fmt.Errorf("whois %s: %w", name, res.err)
	}

	info, err := Parse(res.text)
	if err != nil {
		c.logger.Debug("whois parse failed", zap.String("domain", name), zap.Error(err))
		return domain.WhoisInfo{}, fmt.Errorf("whois %s: %w", name, err)
	}
	return info, nil
}
