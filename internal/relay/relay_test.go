package relay

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := New(Config{}, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCompletions_MissingCredential(t *testing.T) {
	s := New(Config{}, nil)
	rec := post(t, s.Handler(), `{"messages":[]}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "OPENAI_API_KEY")
}

func TestCompletions_ForwardsWithDefaults(t *testing.T) {
	var got map[string]any
	var auth, path string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		path = r.URL.Path
		data, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(data, &got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"hi"}}]}`))
	}))
	defer upstream.Close()

	s := New(Config{APIKey: "sk-test", Upstream: upstream.URL + "/v1/"}, nil)
	rec := post(t, s.Handler(), `{"messages":[{"role":"user","content":"x"}],"stream":true}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"choices":[{"message":{"content":"hi"}}]}`, rec.Body.String())
	assert.Equal(t, "Bearer sk-test", auth)
	assert.Equal(t, "/v1/chat/completions", path)
	assert.Equal(t, DefaultModel, got["model"])
	assert.Equal(t, false, got["stream"])
}

func TestCompletions_KeepsClientModel(t *testing.T) {
	var got map[string]any
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer upstream.Close()

	s := New(Config{APIKey: "k", Upstream: upstream.URL}, nil)
	post(t, s.Handler(), `{"model":"gpt-4o","messages":[]}`)
	assert.Equal(t, "gpt-4o", got["model"])
}

func TestCompletions_PassesUpstreamErrorThrough(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer upstream.Close()

	s := New(Config{APIKey: "k", Upstream: upstream.URL}, nil)
	rec := post(t, s.Handler(), `{"messages":[]}`)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "rate limited")
}

func TestCompletions_RejectsBadInput(t *testing.T) {
	s := New(Config{APIKey: "k"}, nil)

	assert.Equal(t, http.StatusBadRequest, post(t, s.Handler(), `not json`).Code)
	assert.Equal(t, http.StatusBadRequest, post(t, s.Handler(), `null`).Code)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/chat/completions", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestCompletions_UpstreamUnreachable(t *testing.T) {
	upstream := httptest.NewServer(http.NotFoundHandler())
	url := upstream.URL
	upstream.Close()

	s := New(Config{APIKey: "k", Upstream: url}, nil)
	rec := post(t, s.Handler(), `{"messages":[]}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
