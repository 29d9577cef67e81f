// Package server exposes the webhook HTTP surface: health check, Meta
// verification handshake, and inbound message handling.
package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/CamiloRubio/FinPer-Chatbot/pkg/api"
	"github.com/CamiloRubio/FinPer-Chatbot/pkg/whatsapp"
)

// maxBodySize caps inbound webhook payloads.
const maxBodySize = 1 << 20

// MessageHandler interprets one inbound message and returns the reply.
type MessageHandler interface {
	Handle(ctx context.Context, phone int64, text string) (string, error)
}

// Server routes webhook traffic to the message handler.
type Server struct {
	verifyToken string
	handler     MessageHandler
	sender      api.Sender
	logger      *slog.Logger
}

// New creates a Server.
func New(verifyToken string, handler MessageHandler, sender api.Sender, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		verifyToken: verifyToken,
		handler:     handler,
		sender:      sender,
		logger:      logger,
	}
}

// Routes returns the HTTP handler for the service.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleHealth)
	mux.HandleFunc("GET /webhook", s.handleVerify)
	mux.HandleFunc("POST /webhook", s.handleMessage)
	return s.logRequests(mux)
}

// logRequests logs every request with its status and duration.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.status,
			"duration", time.Since(start),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "FinPer Chatbot",
	})
}

// handleVerify answers the Meta webhook handshake: echo hub.challenge
// when the verify token matches.
func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode := q.Get("hub.mode")
	token := q.Get("hub.verify_token")
	challenge := q.Get("hub.challenge")

	if mode == "subscribe" && token == s.verifyToken {
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, challenge)
		return
	}

	s.logger.Warn("webhook verification rejected", "mode", mode)
	http.Error(w, "Forbidden", http.StatusForbidden)
}

// handleMessage processes one inbound webhook delivery. Meta always
// gets a 200 back; a storage failure means the user gets no reply,
// which is logged and accepted.
func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		s.logger.Error("reading webhook body", "error", err)
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	phone, text, ok := whatsapp.ParseIncoming(body)
	if ok {
		s.dispatch(r.Context(), phone, text)
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) dispatch(ctx context.Context, phone int64, text string) {
	reply, err := s.handler.Handle(ctx, phone, text)
	if err != nil {
		s.logger.Error("handling message failed, no reply sent", "phone", phone, "error", err)
		return
	}

	if err := s.sender.Send(ctx, phone, reply); err != nil {
		s.logger.Error("sending reply failed", "phone", phone, "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response", "error", err)
	}
}
