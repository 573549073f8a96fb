package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	json "github.com/alpkeskin/gotoon"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	assistant "github.com/datalens-ai/datalens"
	"github.com/datalens-ai/datalens/src/config"
	"github.com/datalens-ai/datalens/src/store"
	"github.com/datalens-ai/datalens/src/tools"
)

const maxUploadBytes = 32 << 20

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			a, st, log, err := buildAssistant(ctx, cfg)
			if err != nil {
				return err
			}
			defer st.Close(context.Background())
			defer log.Sync()

			srv := newServer(a, st, log)
			log.Info("listening", zap.String("addr", cfg.HTTPAddr))
			return http.ListenAndServe(cfg.HTTPAddr, srv.routes())
		},
	}
}

type server struct {
	assistant *assistant.Assistant
	store     store.ChatStore
	log       *zap.Logger

	mu       sync.Mutex
	sessions map[string]*assistant.Session
}

func newServer(a *assistant.Assistant, st store.ChatStore, log *zap.Logger) *server {
	return &server{
		assistant: a,
		store:     st,
		log:       log,
		sessions:  make(map[string]*assistant.Session),
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Minute))
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	})
	r.Route("/sessions/{session}", func(r chi.Router) {
		r.Post("/messages", s.handleMessage)
		r.Get("/messages", s.handleHistory)
		r.Post("/dataset", s.handleDataset)
	})
	return r
}

func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("elapsed", time.Since(start)))
	})
}

func (s *server) session(id string) *assistant.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		sess = assistant.NewSession(id)
		s.sessions[id] = sess
	}
	return sess
}

type messageRequest struct {
	Text   string `json:"text"`
	Images []struct {
		MIME string `json:"mime"`
		Data string `json:"data"` // base64
	} `json:"images"`
}

func (s *server) handleMessage(w http.ResponseWriter, r *http.Request) {
	sess := s.session(chi.URLParam(r, "session"))

	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	turn := assistant.Turn{Text: req.Text}
	for _, img := range req.Images {
		data, err := base64.StdEncoding.DecodeString(img.Data)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid image data: %w", err))
			return
		}
		turn.Images = append(turn.Images, tools.ImageInput{MIME: img.MIME, Data: data})
	}

	reply, err := s.assistant.HandleTurn(r.Context(), sess, turn)
	if err != nil {
		s.log.Error("turn failed", zap.String("session", sess.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	invocations := make([]map[string]any, 0, len(reply.Invocations))
	for _, inv := range reply.Invocations {
		invocations = append(invocations, map[string]any{
			"name": inv.Name,
			"args": inv.Args,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"text":        reply.Text,
		"charts":      reply.Charts,
		"invocations": invocations,
	})
}

func (s *server) handleHistory(w http.ResponseWriter, r *http.Request) {
	msgs, err := s.store.Messages(r.Context(), chi.URLParam(r, "session"), 0)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": msgs})
}

func (s *server) handleDataset(w http.ResponseWriter, r *http.Request) {
	sess := s.session(chi.URLParam(r, "session"))

	name := r.URL.Query().Get("filename")
	if name == "" {
		name = "upload.csv"
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, maxUploadBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		writeError(w, http.StatusBadRequest, fmt.Errorf("empty upload"))
		return
	}

	summary, err := s.assistant.LoadDataset(r.Context(), sess, &assistant.Attachment{Name: name, Data: data})
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"summary": summary})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]any{"error": err.Error()})
}
