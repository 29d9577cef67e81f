package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const messagePayload = `{
  "entry": [{
    "changes": [{
      "value": {
        "messages": [{
          "from": "573001112222",
          "text": {"body": "estado"}
        }]
      }
    }]
  }]
}`

type fakeHandler struct {
	phone int64
	text  string
	reply string
	err   error
}

func (h *fakeHandler) Handle(_ context.Context, phone int64, text string) (string, error) {
	h.phone = phone
	h.text = text
	return h.reply, h.err
}

type fakeSender struct {
	phone int64
	text  string
	sent  int
}

func (s *fakeSender) Send(_ context.Context, phone int64, text string) error {
	s.phone = phone
	s.text = text
	s.sent++
	return nil
}

func newTestServer(handler *fakeHandler, sender *fakeSender) http.Handler {
	return New("verify-me", handler, sender, slog.New(slog.NewTextHandler(io.Discard, nil))).Routes()
}

func TestHealth(t *testing.T) {
	srv := newTestServer(&fakeHandler{}, &fakeSender{})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok", "service": "FinPer Chatbot"}`, rec.Body.String())
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name       string
		mode       string
		token      string
		wantStatus int
		wantBody   string
	}{
		{"accepted", "subscribe", "verify-me", http.StatusOK, "challenge-123"},
		{"wrong token", "subscribe", "wrong", http.StatusForbidden, ""},
		{"wrong mode", "unsubscribe", "verify-me", http.StatusForbidden, ""},
		{"missing params", "", "", http.StatusForbidden, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(&fakeHandler{}, &fakeSender{})

			target := fmt.Sprintf("/webhook?hub.mode=%s&hub.verify_token=%s&hub.challenge=%s",
				url.QueryEscape(tt.mode), url.QueryEscape(tt.token), "challenge-123")
			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestMessage(t *testing.T) {
	handler := &fakeHandler{reply: "Estado del presupuesto - Marzo 2025"}
	sender := &fakeSender{}
	srv := newTestServer(handler, sender)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(messagePayload)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())

	assert.Equal(t, int64(573001112222), handler.phone)
	assert.Equal(t, "estado", handler.text)
	require.Equal(t, 1, sender.sent)
	assert.Equal(t, int64(573001112222), sender.phone)
	assert.Equal(t, "Estado del presupuesto - Marzo 2025", sender.text)
}

func TestMessage_StatusUpdateIgnored(t *testing.T) {
	handler := &fakeHandler{reply: "should not be sent"}
	sender := &fakeSender{}
	srv := newTestServer(handler, sender)

	body := `{"entry": [{"changes": [{"value": {"statuses": [{"status": "delivered"}]}}]}]}`
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, sender.sent)
}

func TestMessage_HandlerError(t *testing.T) {
	handler := &fakeHandler{err: errors.New("store unavailable")}
	sender := &fakeSender{}
	srv := newTestServer(handler, sender)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(messagePayload)))

	// Meta still gets a 200; the user simply gets no reply.
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, sender.sent)
}
