package mediator

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docwright/docwright/internal/actions"
	"github.com/docwright/docwright/internal/schema"
)

func schemas() []schema.ToolSchema {
	return actions.BuildSchemas(actions.NewRegistry().List())
}

func TestRequestCompletion_NoURL(t *testing.T) {
	m := New("", nil, nil)
	_, err := m.RequestCompletion(context.Background(), "hi", schemas())

	var ce *schema.ConfigurationError
	require.True(t, errors.As(err, &ce), "expected ConfigurationError, got %v", err)
	assert.ErrorIs(t, err, schema.ErrConfiguration)
}

func TestRequestCompletion_RequestShape(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "demo", r.Header.Get("X-Client"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	m := New(srv.URL, map[string]string{"X-Client": "demo"}, srv.Client())
	_, err := m.RequestCompletion(context.Background(), "Summarize this document", schemas())
	require.NoError(t, err)

	msgs := got["messages"].([]any)
	require.Len(t, msgs, 1)
	msg := msgs[0].(map[string]any)
	assert.Equal(t, "user", msg["role"])
	assert.Equal(t, "Summarize this document", msg["content"])
	assert.Equal(t, "auto", got["tool_choice"])
	assert.Equal(t, Temperature, got["temperature"])
	assert.Equal(t, float64(MaxTokens), got["max_tokens"])
	assert.Len(t, got["tools"].([]any), 11)
}

func TestRequestCompletion_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"error":"upstream down"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, nil, srv.Client()).RequestCompletion(context.Background(), "x", schemas())
	var te *schema.TransportError
	require.True(t, errors.As(err, &te), "expected TransportError, got %v", err)
	assert.Equal(t, http.StatusBadGateway, te.StatusCode)
	assert.Equal(t, "upstream down", te.Body)
}

func TestRequestCompletion_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New(url, nil, nil).RequestCompletion(context.Background(), "x", schemas())
	assert.ErrorIs(t, err, schema.ErrTransport)
}

func TestRequestCompletion_SingleRoundTrip(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"choices":[{"message":{"content":"done"}}]}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, nil, srv.Client()).RequestCompletion(context.Background(), "x", schemas())
	require.NoError(t, err)
	assert.EqualValues(t, 1, calls.Load())
}

func TestClassify_Invocations(t *testing.T) {
	raw := []byte(`{"choices":[{"message":{"content":null,"tool_calls":[
		{"id":"a","type":"function","function":{"name":"highlight","arguments":"{\"prompt\":\"title\"}"}},
		{"id":"b","type":"function","function":{"name":"replace","arguments":"{\"prompt\":\"fix typo\"}"}}
	]}}]}`)
	out, err := Classify(raw)
	require.NoError(t, err)
	require.Equal(t, schema.OutcomeInvocations, out.Kind)
	require.Len(t, out.Invocations, 2)
	assert.Equal(t, "highlight", out.Invocations[0].FunctionName)
	assert.Equal(t, "title", out.Invocations[0].Prompt())
	assert.Equal(t, "replace", out.Invocations[1].FunctionName)
}

func TestClassify_MalformedArgumentsStayPerInvocation(t *testing.T) {
	raw := []byte(`{"choices":[{"message":{"tool_calls":[
		{"id":"a","function":{"name":"find","arguments":"{oops"}},
		{"id":"b","function":{"name":"summarize","arguments":"{\"prompt\":\"all\"}"}}
	]}}]}`)
	out, err := Classify(raw)
	require.NoError(t, err)
	require.Len(t, out.Invocations, 2)
	assert.Error(t, out.Invocations[0].ParseErr)
	assert.NoError(t, out.Invocations[1].ParseErr)
}

func TestClassify_TextFallbacks(t *testing.T) {
	out, err := Classify([]byte(`{"choices":[{"message":{"content":"from message"}}]}`))
	require.NoError(t, err)
	assert.Equal(t, schema.OutcomeText, out.Kind)
	assert.Equal(t, "from message", out.Content)

	out, err = Classify([]byte(`{"choices":[{"message":{}}],"content":"from top level"}`))
	require.NoError(t, err)
	assert.Equal(t, "from top level", out.Content)

	raw := `{"choices":[]}`
	out, err = Classify([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, raw, out.Content)
}

func TestClassify_ContentParts(t *testing.T) {
	out, err := Classify([]byte(`{"choices":[{"message":{"content":[{"type":"text","text":"a"},{"type":"text","text":"b"}]}}]}`))
	require.NoError(t, err)
	assert.Equal(t, "ab", out.Content)
}

func TestClassify_InvalidJSON(t *testing.T) {
	_, err := Classify([]byte("not json"))
	assert.Error(t, err)
}
