// Package relay is the server-side pass-through to the upstream model
// provider. It holds the provider credential so clients never see it.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/docwright/docwright/internal/shared/httputil"
)

const (
	DefaultUpstream = "https://api.openai.com/v1"
	DefaultModel    = "gpt-4o-mini"
	DefaultPort     = 8080

	// maxBody bounds request bodies read from clients.
	maxBody = 4 << 20
)

// Config configures a relay Server.
type Config struct {
	APIKey   string
	Upstream string
	Model    string
	Port     int
}

// Server forwards chat-completion requests upstream.
type Server struct {
	cfg    Config
	client *http.Client
}

// New returns a Server. Empty fields in cfg take their defaults; a nil
// httpClient gets a two minute timeout.
func New(cfg Config, httpClient *http.Client) *Server {
	if cfg.Upstream == "" {
		cfg.Upstream = DefaultUpstream
	}
	cfg.Upstream = strings.TrimSuffix(cfg.Upstream, "/")
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 120 * time.Second}
	}
	return &Server{cfg: cfg, client: httpClient}
}

// Addr is the listen address.
func (s *Server) Addr() string { return fmt.Sprintf(":%d", s.cfg.Port) }

// Handler returns the relay's routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/v1/chat/completions", s.handleCompletions)
	return mux
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Addr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 30 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	return httputil.Serve(ctx, srv, "relay")
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCompletions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		httputil.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.cfg.APIKey == "" {
		slog.Error("relay: upstream credential missing")
		httputil.WriteError(w, http.StatusInternalServerError, "OPENAI_API_KEY is not configured")
		return
	}

	var body map[string]any
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(&body); err != nil || body == nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if m, _ := body["model"].(string); m == "" {
		body["model"] = s.cfg.Model
	}
	body["stream"] = false

	payload, err := json.Marshal(body)
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodPost, s.cfg.Upstream+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		slog.Warn("relay: upstream request failed", "err", err)
		httputil.WriteError(w, http.StatusBadGateway, fmt.Sprintf("upstream request failed: %v", err))
		return
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		httputil.WriteError(w, http.StatusBadGateway, fmt.Sprintf("read upstream response: %v", err))
		return
	}

	slog.Info("relay: forwarded",
		"model", body["model"], "status", resp.StatusCode, "elapsed", time.Since(start).Round(time.Millisecond))

	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = "application/json"
	}
	w.Header().Set("Content-Type", ct)
	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write(respBody)
}
