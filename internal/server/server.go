// Package server exposes the transcription pipeline over HTTP.
//
//	POST /api/transcriptions?name=take.wav[&collapse=true]   raw WAV/MP3 body
//	GET  /api/transcriptions[?limit=N]                       recent history
//	GET  /api/transcriptions/{id}                            one history entry
//	GET  /api/health
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/chaz8081/sargam-writer/internal/history"
	"github.com/chaz8081/sargam-writer/internal/transcribe"
)

// Recorder persists run outcomes. *history.Store satisfies it.
type Recorder interface {
	Record(ctx context.Context, tr *transcribe.Transcription, runErr error, source string) (history.Entry, error)
	Recent(ctx context.Context, limit int) ([]history.Entry, error)
	Get(ctx context.Context, id string) (history.Entry, error)
}

// Options configures the HTTP handler.
type Options struct {
	AllowedOrigins []string
	MaxUploadBytes int64
	// History is optional; without it the listing routes answer 404.
	History Recorder
}

// Server serves the API.
type Server struct {
	pipeline *transcribe.Pipeline
	opts     Options
}

// New creates a Server around pipeline.
func New(pipeline *transcribe.Pipeline, opts Options) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 32 << 20
	}
	return &Server{pipeline: pipeline, opts: opts}
}

// Handler returns the routed, CORS-wrapped handler.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter().StrictSlash(true)
	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	api.HandleFunc("/transcriptions", s.handleTranscribe).Methods(http.MethodPost)
	api.HandleFunc("/transcriptions", s.handleList).Methods(http.MethodGet)
	api.HandleFunc("/transcriptions/{id}", s.handleGet).Methods(http.MethodGet)

	return cors.New(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(router)
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	slog.Info("api listening", "addr", addr)

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: shutdown: %w", err)
		}
		return nil
	}
}

// transcriptionResponse is the JSON body for a successful run.
type transcriptionResponse struct {
	ID       string          `json:"id"`
	Source   string          `json:"source"`
	Duration float64         `json:"duration_seconds"`
	Notation string          `json:"notation"`
	Symbols  []string        `json:"symbols"`
	Events   []eventResponse `json:"events"`
}

type eventResponse struct {
	Time       float64 `json:"time"`
	Hz         float64 `json:"hz"`
	Confidence float64 `json:"confidence"`
	Note       string  `json:"note"`
	Swara      string  `json:"swara"`
	Symbol     string  `json:"symbol"`
}

type errorResponse struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type entryResponse struct {
	ID        string         `json:"id"`
	Source    string         `json:"source"`
	CreatedAt time.Time      `json:"created_at"`
	Duration  float64        `json:"duration_seconds"`
	Notation  string         `json:"notation"`
	Symbols   int            `json:"symbols"`
	Error     *errorResponse `json:"error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		name = "upload"
	}
	collapse, _ := strconv.ParseBool(r.URL.Query().Get("collapse"))

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Kind: "RequestError", Message: fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit)})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Kind: "RequestError", Message: err.Error()})
		return
	}

	tr, runErr := s.pipeline.TranscribeReader(bytes.NewReader(body), name)
	if s.opts.History != nil {
		if _, err := s.opts.History.Record(r.Context(), tr, runErr, name); err != nil {
			slog.Warn("failed to record history", "source", name, "error", err)
		}
	}
	if runErr != nil {
		writeJSON(w, statusFor(runErr), errorResponse{Kind: transcribe.KindOf(runErr).String(), Message: runErr.Error()})
		return
	}

	writeJSON(w, http.StatusOK, newTranscriptionResponse(tr, collapse))
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	if s.opts.History == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Kind: "RequestError", Message: "history is disabled"})
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := s.opts.History.Recent(r.Context(), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Kind: "UnknownError", Message: err.Error()})
		return
	}
	out := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, newEntryResponse(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	if s.opts.History == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Kind: "RequestError", Message: "history is disabled"})
		return
	}
	e, err := s.opts.History.Get(r.Context(), mux.Vars(r)["id"])
	if errors.Is(err, history.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Kind: "RequestError", Message: err.Error()})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Kind: "UnknownError", Message: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, newEntryResponse(e))
}

// statusFor maps pipeline failures to HTTP codes: bad input is the client's
// problem, anything else is ours.
func statusFor(err error) int {
	switch transcribe.KindOf(err) {
	case transcribe.KindDecode, transcribe.KindExtraction:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func newTranscriptionResponse(tr *transcribe.Transcription, collapse bool) transcriptionResponse {
	resp := transcriptionResponse{
		ID:       tr.ID,
		Source:   tr.Source,
		Duration: tr.Duration.Seconds(),
		Notation: tr.Render(collapse),
		Symbols:  make([]string, len(tr.Symbols)),
		Events:   make([]eventResponse, len(tr.Events)),
	}
	for i, sym := range tr.Symbols {
		resp.Symbols[i] = sym.String()
	}
	for i, ev := range tr.Events {
		resp.Events[i] = eventResponse{
			Time:       ev.Time,
			Hz:         ev.Hz,
			Confidence: ev.Confidence,
			Note:       ev.Note.String(),
			Swara:      ev.Class.String(),
			Symbol:     ev.Symbol.String(),
		}
	}
	return resp
}

func newEntryResponse(e history.Entry) entryResponse {
	resp := entryResponse{
		ID:        e.ID,
		Source:    e.Source,
		CreatedAt: e.CreatedAt,
		Duration:  e.Duration.Seconds(),
		Notation:  e.Notation,
		Symbols:   e.Symbols,
	}
	if e.Failed() {
		resp.Error = &errorResponse{Kind: e.ErrorKind, Message: e.ErrorMessage}
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to write response", "error", err)
	}
}
