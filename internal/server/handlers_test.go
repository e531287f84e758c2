package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/finking/chat-relay/internal/config"
	"github.com/finking/chat-relay/internal/metrics"
	"github.com/finking/chat-relay/internal/relay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubCompleter satisfies Completer without touching the network
type stubCompleter struct {
	reply      string
	err        *relay.Error
	calls      int
	gotMessage string
}

func (s *stubCompleter) Complete(ctx context.Context, message string) (string, *relay.Error) {
	s.calls++
	s.gotMessage = message
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func (s *stubCompleter) Model() string {
	return "deepseek-chat"
}

func newTestServer(t *testing.T, completer Completer) *Server {
	t.Helper()

	cfg := &config.Config{}
	cfg.Server.Mode = "test"
	cfg.Security.EnableCORS = true
	cfg.Security.AllowedOrigins = []string{"*"}

	srv, err := New(cfg, zap.NewNop(), completer, metrics.NewCollector(nil), "1.0.0")
	require.NoError(t, err)
	return srv
}

func doChat(srv *Server, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func TestChat_Success(t *testing.T) {
	stub := &stubCompleter{reply: "Diversify across sectors."}
	srv := newTestServer(t, stub)

	w := doChat(srv, `{"message":"How should I allocate?"}`)

	require.Equal(t, 200, w.Code)

	var resp struct {
		Reply     string `json:"reply"`
		Timestamp string `json:"timestamp"`
		Model     string `json:"model"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Diversify across sectors.", resp.Reply)
	assert.Equal(t, "deepseek-chat", resp.Model)
	assert.True(t, strings.HasSuffix(resp.Timestamp, "Z"), "timestamp must be UTC with Z suffix")
	_, err := time.Parse(time.RFC3339, resp.Timestamp)
	assert.NoError(t, err)
	assert.Equal(t, "How should I allocate?", stub.gotMessage)
}

func TestChat_TrimsMessage(t *testing.T) {
	stub := &stubCompleter{reply: "ok"}
	srv := newTestServer(t, stub)

	w := doChat(srv, `{"message":"  What about gold?  "}`)

	require.Equal(t, 200, w.Code)
	assert.Equal(t, "What about gold?", stub.gotMessage)
}

func TestChat_MissingMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"empty object", `{}`},
		{"wrong field", `{"msg":"hello"}`},
		{"not json", `not json`},
		{"null message", `{"message":null}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			stub := &stubCompleter{}
			srv := newTestServer(t, stub)

			w := doChat(srv, tc.body)

			assert.Equal(t, 400, w.Code)
			assert.JSONEq(t, `{"error":"Invalid request. Please provide a message."}`, w.Body.String())
			assert.Equal(t, 0, stub.calls)
		})
	}
}

func TestChat_EmptyMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty string", `{"message":""}`},
		{"whitespace only", `{"message":"   "}`},
		{"tabs and newlines", "{\"message\":\"\\t\\n \"}"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			stub := &stubCompleter{}
			srv := newTestServer(t, stub)

			w := doChat(srv, tc.body)

			assert.Equal(t, 400, w.Code)
			assert.JSONEq(t, `{"error":"Message cannot be empty."}`, w.Body.String())
			assert.Equal(t, 0, stub.calls)
		})
	}
}

func TestChat_RelayErrorMapping(t *testing.T) {
	tests := []struct {
		kind       relay.Kind
		wantStatus int
	}{
		{relay.KindConfig, 500},
		{relay.KindAuth, 500},
		{relay.KindRateLimited, 429},
		{relay.KindUnavailable, 503},
		{relay.KindFormat, 500},
		{relay.KindTimeout, 504},
		{relay.KindNetwork, 503},
		{relay.KindInternal, 500},
	}

	for _, tc := range tests {
		t.Run(tc.kind.String(), func(t *testing.T) {
			stub := &stubCompleter{err: &relay.Error{Kind: tc.kind}}
			srv := newTestServer(t, stub)

			w := doChat(srv, `{"message":"hello"}`)

			assert.Equal(t, tc.wantStatus, w.Code)

			var resp struct {
				Error string `json:"error"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tc.kind.Message(), resp.Error)
			// No upstream detail in the client-facing body
			assert.NotContains(t, strings.ToLower(resp.Error), "bearer")
		})
	}
}

func TestHealthCheck(t *testing.T) {
	// Health never depends on upstream state; a completer that always fails
	// must not affect it
	stub := &stubCompleter{err: &relay.Error{Kind: relay.KindConfig}}
	srv := newTestServer(t, stub)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	require.Equal(t, 200, w.Code)

	var resp struct {
		Status    string `json:"status"`
		Service   string `json:"service"`
		Version   string `json:"version"`
		Timestamp string `json:"timestamp"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "FinKing AI API", resp.Service)
	assert.Equal(t, "1.0.0", resp.Version)
	assert.True(t, strings.HasSuffix(resp.Timestamp, "Z"))
}

func TestNotFound(t *testing.T) {
	srv := newTestServer(t, &stubCompleter{})

	req := httptest.NewRequest(http.MethodGet, "/api/unknown", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, 404, w.Code)
	assert.JSONEq(t, `{"error":"Endpoint not found"}`, w.Body.String())
}

func TestIndexPage(t *testing.T) {
	srv := newTestServer(t, &stubCompleter{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "FinKing")
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, &stubCompleter{})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
}

func TestRequestIDHeader(t *testing.T) {
	srv := newTestServer(t, &stubCompleter{reply: "ok"})

	w := doChat(srv, `{"message":"hello"}`)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	// An incoming ID is echoed back
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"hello"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", "req-123")
	w2 := httptest.NewRecorder()
	srv.Router().ServeHTTP(w2, req)
	assert.Equal(t, "req-123", w2.Header().Get("X-Request-ID"))
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t, &stubCompleter{})

	req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	req.Header.Set("Origin", "http://example.com")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, 204, w.Code)
	assert.Equal(t, "http://example.com", w.Header().Get("Access-Control-Allow-Origin"))
}
