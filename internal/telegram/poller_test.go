package telegram

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"domain-bot/internal/bot"
)

type fakeSource struct {
	ch      chan tgbotapi.Update
	cfg     tgbotapi.UpdateConfig
	stopped bool
}

func (s *fakeSource) GetUpdatesChan(cfg tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	s.cfg = cfg
	return s.ch
}

func (s *fakeSource) StopReceivingUpdates() { s.stopped = true }

type recordingSink struct {
	mu     sync.Mutex
	events []bot.Event
}

func (s *recordingSink) Submit(_ context.Context, ev bot.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

func TestPollerDeliversUntilChannelCloses(t *testing.T) {
	source := &fakeSource{ch: make(chan tgbotapi.Update, 3)}
	sink := &recordingSink{}
	p := newPoller(source, sink, 25, nil)

	source.ch <- tgbotapi.Update{Message: textMessage("hello")}
	source.ch <- tgbotapi.Update{}
	source.ch <- tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{ID: "cb", From: &tgbotapi.User{ID: 1}, Data: "help"}}
	close(source.ch)

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if source.cfg.Timeout != 25 {
		t.Fatalf("expected timeout 25, got %d", source.cfg.Timeout)
	}
	if !source.stopped {
		t.Fatalf("expected polling stopped")
	}
	if len(sink.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(sink.events))
	}
}

func TestPollerStopsOnCancel(t *testing.T) {
	source := &fakeSource{ch: make(chan tgbotapi.Update)}
	p := newPoller(source, &recordingSink{}, 0, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected nil on cancel, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("poller did not stop")
	}
}

type fakeRequestMaker struct {
	endpoint string
	params   tgbotapi.Params
	resp     *tgbotapi.APIResponse
	err      error
	requests []tgbotapi.Chattable
}

func (f *fakeRequestMaker) MakeRequest(endpoint string, params tgbotapi.Params) (*tgbotapi.APIResponse, error) {
	f.endpoint = endpoint
	f.params = params
	return f.resp, f.err
}

func (f *fakeRequestMaker) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, f.err
}

func TestRegisterWebhook(t *testing.T) {
	api := &fakeRequestMaker{resp: &tgbotapi.APIResponse{Ok: true}}
	if err := RegisterWebhook(api, "https://bot.example.com/telegram/webhook", "s3cret"); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if api.endpoint != "setWebhook" || api.params["url"] != "https://bot.example.com/telegram/webhook" || api.params["secret_token"] != "s3cret" {
		t.Fatalf("unexpected request: %s %+v", api.endpoint, api.params)
	}

	api = &fakeRequestMaker{resp: &tgbotapi.APIResponse{Ok: false, Description: "bad url"}}
	if err := RegisterWebhook(api, "x", ""); err == nil {
		t.Fatalf("expected error for rejected webhook")
	}
	if _, ok := api.params["secret_token"]; ok {
		t.Fatalf("expected empty secret to be omitted")
	}

	api = &fakeRequestMaker{err: errors.New("boom")}
	if err := DeleteWebhook(api); err == nil {
		t.Fatalf("expected delete error")
	}
}
