package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/breakeven/internal/domain/models"
)

type fakeMessaging struct {
	payloads []models.WebhookPayload
	sent     []models.OutboundMessageRequest
	err      error
}

func (f *fakeMessaging) VerifyWebhookToken(mode, token, challenge string) (string, error) {
	if token != "secret" {
		return "", errors.New("invalid verify token")
	}
	return challenge, nil
}

func (f *fakeMessaging) HandleWebhook(_ context.Context, payload models.WebhookPayload) error {
	f.payloads = append(f.payloads, payload)
	return f.err
}

func (f *fakeMessaging) SendOutbound(_ context.Context, req models.OutboundMessageRequest) error {
	f.sent = append(f.sent, req)
	return f.err
}

func newWebhookRouter(svc *fakeMessaging) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewWebhookHandler(svc, nil)
	r := gin.New()
	r.GET("/webhook", h.Verify)
	r.POST("/webhook", h.Receive)
	r.POST("/send-message", h.SendMessage)
	return r
}

func TestWebhookVerify(t *testing.T) {
	r := newWebhookRouter(&fakeMessaging{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=secret&hub.challenge=1158201444", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "1158201444" {
		t.Fatalf("verify = %d %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=bad&hub.challenge=1", nil))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("bad token status = %d", rec.Code)
	}
}

func TestWebhookReceive(t *testing.T) {
	svc := &fakeMessaging{}
	r := newWebhookRouter(svc)

	body := `{"object":"whatsapp_business_account","entry":[{"id":"1","changes":[{"field":"messages","value":{"messages":[{"from":"39333","id":"wamid.1","type":"text","text":{"body":"/bep"}}]}}]}]}`
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(svc.payloads) != 1 || svc.payloads[0].Entry[0].Changes[0].Value.Messages[0].Text.Body != "/bep" {
		t.Fatalf("payloads = %+v", svc.payloads)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader("{")))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed status = %d", rec.Code)
	}
}

func TestWebhookReceiveAcknowledgesFailures(t *testing.T) {
	svc := &fakeMessaging{err: errors.New("mongo down")}
	r := newWebhookRouter(svc)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(`{"object":"whatsapp_business_account","entry":[]}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(`{"object":"page","entry":[]}`)))
	if rec.Code != http.StatusOK || len(svc.payloads) != 1 {
		t.Fatalf("status = %d, payloads = %d", rec.Code, len(svc.payloads))
	}
}

func TestSendMessage(t *testing.T) {
	svc := &fakeMessaging{}
	r := newWebhookRouter(svc)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/send-message", strings.NewReader(`{"to":"39333","message":"hi"}`)))
	if rec.Code != http.StatusAccepted || len(svc.sent) != 1 {
		t.Fatalf("status = %d, sent = %+v", rec.Code, svc.sent)
	}

	svc.err = errors.New("whatsapp down")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/send-message", strings.NewReader(`{"to":"39333","message":"hi"}`)))
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("failing send status = %d", rec.Code)
	}
}
