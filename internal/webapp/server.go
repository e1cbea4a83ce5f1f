// Package webapp is the HTTP surface of an editing session: it exposes the
// document, the action list and the session log, runs prompt turns one at a
// time, and streams log changes to websocket clients.
package webapp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/docwright/docwright/internal/actions"
	"github.com/docwright/docwright/internal/activity"
	"github.com/docwright/docwright/internal/document"
	"github.com/docwright/docwright/internal/shared/httputil"
)

const DefaultPort = 18790

// TurnRunner runs one prompt turn.
type TurnRunner interface {
	RunTurn(ctx context.Context, prompt string) (string, error)
}

// ErrBusy is reported while a turn is in flight.
var ErrBusy = errors.New("a prompt is already running")

// Server serves one session.
type Server struct {
	port     int
	doc      *document.Document
	registry *actions.Registry
	log      *activity.Log
	runner   TurnRunner
	upgrader websocket.Upgrader

	busy atomic.Bool

	mu     sync.RWMutex
	banner string
}

// New returns a Server listening on port (DefaultPort when 0).
func New(port int, doc *document.Document, registry *actions.Registry, log *activity.Log, runner TurnRunner) *Server {
	if port == 0 {
		port = DefaultPort
	}
	return &Server{
		port:     port,
		doc:      doc,
		registry: registry,
		log:      log,
		runner:   runner,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// Addr is the listen address.
func (s *Server) Addr() string { return fmt.Sprintf(":%d", s.port) }

// Busy reports whether a turn is running.
func (s *Server) Busy() bool { return s.busy.Load() }

// Banner returns the outcome of the most recent turn.
func (s *Server) Banner() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.banner
}

// Handler returns the session routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/document", s.handleDocument)
	mux.HandleFunc("GET /api/actions", s.handleActions)
	mux.HandleFunc("GET /api/log", s.handleLog)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("POST /api/prompt", s.handlePrompt)
	mux.HandleFunc("POST /api/changes/{id}/accept", s.handleChange(s.doc.AcceptChange))
	mux.HandleFunc("POST /api/changes/{id}/reject", s.handleChange(s.doc.RejectChange))
	mux.HandleFunc("GET /ws", s.handleWS)
	return mux
}

// Run serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Addr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 30 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	return httputil.Serve(ctx, srv, "webapp")
}

// Prompt runs a turn unless one is already running.
func (s *Server) Prompt(ctx context.Context, prompt string) (string, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return "", ErrBusy
	}
	defer s.busy.Store(false)

	out, err := s.runner.RunTurn(ctx, prompt)
	s.mu.Lock()
	if err != nil {
		s.banner = "Error: " + err.Error()
	} else {
		s.banner = out
	}
	s.mu.Unlock()
	return out, err
}

type documentView struct {
	Path        string               `json:"path"`
	Text        string               `json:"text"`
	Dirty       bool                 `json:"dirty"`
	Annotations document.Annotations `json:"annotations"`
}

func (s *Server) handleDocument(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, documentView{
		Path:        s.doc.Path(),
		Text:        s.doc.Text(),
		Dirty:       s.doc.Dirty(),
		Annotations: s.doc.Annotations(),
	})
}

type actionView struct {
	Key         string `json:"key"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

func (s *Server) handleActions(w http.ResponseWriter, _ *http.Request) {
	list := s.registry.List()
	out := make([]actionView, 0, len(list))
	for _, a := range list {
		out = append(out, actionView{Key: a.Key(), Label: a.Label(), Description: a.Description()})
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (s *Server) handleLog(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, s.log.Records())
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"busy":   s.Busy(),
		"banner": s.Banner(),
	})
}

type promptRequest struct {
	Prompt string `json:"prompt"`
}

type promptResponse struct {
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

func (s *Server) handlePrompt(w http.ResponseWriter, r *http.Request) {
	var req promptRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		httputil.WriteError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	// A started turn runs to completion even if the client goes away.
	out, err := s.Prompt(context.WithoutCancel(r.Context()), req.Prompt)
	switch {
	case errors.Is(err, ErrBusy):
		httputil.WriteError(w, http.StatusConflict, err.Error())
	case err != nil:
		// The failure is already on the log; the body carries it for the banner.
		httputil.WriteJSON(w, http.StatusBadGateway, promptResponse{Error: err.Error()})
	default:
		httputil.WriteJSON(w, http.StatusOK, promptResponse{Result: out})
	}
}

func (s *Server) handleChange(apply func(id string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if err := apply(id); err != nil {
			status := http.StatusInternalServerError
			switch {
			case errors.Is(err, document.ErrNotFound):
				status = http.StatusNotFound
			case errors.Is(err, document.ErrStale):
				status = http.StatusConflict
			}
			httputil.WriteError(w, status, err.Error())
			return
		}
		slog.Info("webapp: change resolved", "id", id, "path", r.URL.Path)
		s.handleDocument(w, r)
	}
}
