package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"domain-bot/internal/bot"
	"domain-bot/internal/metrics"
)

type mockSubmitter struct {
	events []bot.Event
	err    error
}

func (m *mockSubmitter) Submit(_ context.Context, ev bot.Event) error {
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, ev)
	return nil
}

func setupRouter(sink *mockSubmitter, secret string, health HealthCheck) *gin.Engine {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	metrics.New(reg).IncEvent("text")
	return NewRouter(zap.NewNop(), RouterDeps{
		Webhook:  NewWebhookHandler(zap.NewNop(), sink, secret),
		Gatherer: reg,
		Health:   health,
	})
}

func performRequest(r http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

var textUpdate = map[string]any{
	"update_id": 10,
	"message": map[string]any{
		"message_id": 1,
		"date":       1700000000,
		"text":       "example.com",
		"from":       map[string]any{"id": 7, "is_bot": false, "first_name": "Ana"},
		"chat":       map[string]any{"id": 70, "type": "private"},
	},
}

func TestWebhookDeliversUpdate(t *testing.T) {
	sink := &mockSubmitter{}
	r := setupRouter(sink, "s3cret", nil)

	rec := performRequest(r, http.MethodPost, "/telegram/webhook", textUpdate, map[string]string{secretHeader: "s3cret"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if len(sink.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(sink.events))
	}
	ev := sink.events[0]
	if ev.Kind != bot.EventText || ev.Text != "example.com" || ev.UserID != 7 || ev.ChatID != 70 {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

func TestWebhookRejectsBadSecret(t *testing.T) {
	sink := &mockSubmitter{}
	r := setupRouter(sink, "s3cret", nil)

	rec := performRequest(r, http.MethodPost, "/telegram/webhook", textUpdate, map[string]string{secretHeader: "nope"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
	if len(sink.events) != 0 {
		t.Fatalf("expected no events")
	}
}

func TestWebhookInvalidBody(t *testing.T) {
	r := setupRouter(&mockSubmitter{}, "", nil)
	req := httptest.NewRequest(http.MethodPost, "/telegram/webhook", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestWebhookSubmitFailure(t *testing.T) {
	r := setupRouter(&mockSubmitter{err: context.DeadlineExceeded}, "", nil)
	rec := performRequest(r, http.MethodPost, "/telegram/webhook", textUpdate, nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	r := setupRouter(&mockSubmitter{}, "", nil)
	if rec := performRequest(r, http.MethodGet, "/healthz", nil, nil); rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	r = setupRouter(&mockSubmitter{}, "", func(context.Context) error { return errors.New("db down") })
	if rec := performRequest(r, http.MethodGet, "/healthz", nil, nil); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	r := setupRouter(&mockSubmitter{}, "", nil)
	rec := performRequest(r, http.MethodGet, "/metrics", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "domain_bot_events_handled_total") {
		t.Fatalf("expected bot metrics in output")
	}
}
