package whatsapp

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mamadbah2/breakeven/internal/config"
	"github.com/mamadbah2/breakeven/internal/domain/models"
	"github.com/mamadbah2/breakeven/internal/engine"
	"github.com/mamadbah2/breakeven/internal/service/commands"
	client "github.com/mamadbah2/breakeven/pkg/clients/whatsapp"
)

type fakeClient struct {
	sent []client.SendTextMessageRequest
	err  error
}

func (f *fakeClient) SendTextMessage(_ context.Context, req client.SendTextMessageRequest) (*client.SendTextMessageResponse, error) {
	f.sent = append(f.sent, req)
	if f.err != nil {
		return nil, f.err
	}
	return &client.SendTextMessageResponse{}, nil
}

type fakeDispatcher struct {
	got   []models.Command
	reply string
	err   error
}

func (f *fakeDispatcher) HandleCommand(_ context.Context, cmd models.Command, _ string) (string, error) {
	f.got = append(f.got, cmd)
	return f.reply, f.err
}

type fakeTranslator struct {
	line string
	err  error
}

func (f fakeTranslator) TranslateToCommand(context.Context, string) (string, error) {
	return f.line, f.err
}

func textPayload(from, body string) models.WebhookPayload {
	return models.WebhookPayload{Entry: []models.WebhookEntry{{
		Changes: []models.WebhookChange{{Value: models.WebhookValue{
			Messages: []models.InboundMessage{{From: from, ID: "wamid.1", Type: "text", Text: &models.TextContent{Body: body}}},
		}}},
	}}}
}

func TestVerifyWebhookToken(t *testing.T) {
	svc := NewMetaWhatsAppService(config.WhatsAppConfig{VerifyToken: "secret"}, &fakeClient{}, &fakeDispatcher{}, nil, nil)

	got, err := svc.VerifyWebhookToken("subscribe", "secret", "42")
	if err != nil || got != "42" {
		t.Fatalf("VerifyWebhookToken = %q, %v", got, err)
	}
	if _, err := svc.VerifyWebhookToken("subscribe", "wrong", "42"); err == nil {
		t.Fatalf("expected invalid token error")
	}
	if _, err := svc.VerifyWebhookToken("unsubscribe", "secret", "42"); err == nil {
		t.Fatalf("expected unsupported mode error")
	}
}

func TestHandleWebhookDispatchesCommand(t *testing.T) {
	wa := &fakeClient{}
	disp := &fakeDispatcher{reply: "Break-even (main)"}
	svc := NewMetaWhatsAppService(config.WhatsAppConfig{}, wa, disp, nil, nil)

	if err := svc.HandleWebhook(context.Background(), textPayload("39333", "/bep")); err != nil {
		t.Fatalf("HandleWebhook: %v", err)
	}
	if len(disp.got) != 1 || disp.got[0].Type != models.CommandBreakEven {
		t.Fatalf("dispatched = %+v", disp.got)
	}
	if len(wa.sent) != 1 || wa.sent[0].To != "39333" || wa.sent[0].Body != "Break-even (main)" {
		t.Fatalf("sent = %+v", wa.sent)
	}
}

func TestHandleWebhookReplies(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		translator Translator
		err        error
		want       string
	}{
		{name: "unknown without translator", body: "how are we doing", want: "Unknown command."},
		{name: "translated free text", body: "how are we doing", translator: fakeTranslator{line: "/bep"}, want: "ok"},
		{name: "translator declines", body: "ciao", translator: fakeTranslator{}, want: "Unknown command."},
		{name: "translator fails", body: "ciao", translator: fakeTranslator{err: errors.New("timeout")}, want: "Unknown command."},
		{name: "usage on bad arguments", body: "/price pizza", err: commands.ErrInvalidArguments, want: "Usage: /price"},
		{name: "business error", body: "/price pizza 1 99", err: &engine.PricingError{Kind: engine.ErrMarginExceedsCapacity}, want: "Lower the margin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wa := &fakeClient{}
			disp := &fakeDispatcher{reply: "ok", err: tt.err}
			svc := NewMetaWhatsAppService(config.WhatsAppConfig{}, wa, disp, tt.translator, nil)

			if err := svc.HandleWebhook(context.Background(), textPayload("39333", tt.body)); err != nil {
				t.Fatalf("HandleWebhook: %v", err)
			}
			if len(wa.sent) != 1 || !strings.Contains(wa.sent[0].Body, tt.want) {
				t.Fatalf("sent = %+v, want body containing %q", wa.sent, tt.want)
			}
		})
	}
}

func TestHandleWebhookSendFailure(t *testing.T) {
	wa := &fakeClient{err: errors.New("whatsapp api error")}
	svc := NewMetaWhatsAppService(config.WhatsAppConfig{}, wa, &fakeDispatcher{reply: "ok"}, nil, nil)

	if err := svc.HandleWebhook(context.Background(), textPayload("39333", "/help")); err == nil {
		t.Fatalf("expected send error")
	}
}

func TestHandleWebhookIgnoresStatuses(t *testing.T) {
	wa := &fakeClient{}
	svc := NewMetaWhatsAppService(config.WhatsAppConfig{}, wa, &fakeDispatcher{}, nil, nil)
	payload := models.WebhookPayload{Entry: []models.WebhookEntry{{
		Changes: []models.WebhookChange{{Value: models.WebhookValue{Statuses: []models.MessageStatus{{}}}}},
	}}}

	if err := svc.HandleWebhook(context.Background(), payload); err != nil {
		t.Fatalf("HandleWebhook: %v", err)
	}
	if len(wa.sent) != 0 {
		t.Fatalf("sent = %+v, want nothing", wa.sent)
	}
}

func TestHandleWebhookSkipsRedelivery(t *testing.T) {
	wa := &fakeClient{}
	disp := &fakeDispatcher{reply: "Fixed cost added"}
	svc := NewMetaWhatsAppService(config.WhatsAppConfig{}, wa, disp, nil, nil)

	payload := textPayload("39333", "/cost 100 rent")
	for i := 0; i < 2; i++ {
		if err := svc.HandleWebhook(context.Background(), payload); err != nil {
			t.Fatalf("HandleWebhook: %v", err)
		}
	}
	if len(disp.got) != 1 || len(wa.sent) != 1 {
		t.Fatalf("dispatched %d, sent %d, want 1 each", len(disp.got), len(wa.sent))
	}
}

func TestRecentIDsEvictsOldest(t *testing.T) {
	r := newRecentIDs(2)
	for _, id := range []string{"a", "b", "c"} {
		if r.markSeen(id) {
			t.Fatalf("%s reported as seen", id)
		}
	}
	if r.markSeen("a") {
		t.Fatalf("a should have been evicted")
	}
	if !r.markSeen("c") {
		t.Fatalf("c should still be remembered")
	}
	if r.markSeen("") {
		t.Fatalf("empty ids are never deduplicated")
	}
}
