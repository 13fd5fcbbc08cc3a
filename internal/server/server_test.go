package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/keyforge/pkg/cache"
	"github.com/matzehuels/keyforge/pkg/core/keyboard"
	"github.com/matzehuels/keyforge/pkg/core/transition"
	kerrors "github.com/matzehuels/keyforge/pkg/errors"
	"github.com/matzehuels/keyforge/pkg/observability"
	"github.com/matzehuels/keyforge/pkg/pipeline"
	"github.com/matzehuels/keyforge/pkg/store"
	"github.com/matzehuels/keyforge/pkg/workspace"
)

const corpus = "note\ntone\ninto\nonto\neat\ntea\nate\nanoint"

func newTestServer(t *testing.T) (*Server, *workspace.Workspace) {
	t.Helper()
	logger := log.New(io.Discard)

	fc, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	runner := pipeline.NewRunner(fc, nil, logger)

	s, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)
	ws := workspace.New(s, runner, logger)
	t.Cleanup(func() { _ = ws.Close() })

	ctx := context.Background()
	_, err = ws.CreateAlphabet(ctx, "etaoin", "etaoin")
	require.NoError(t, err)
	_, err = ws.CreateMatrix(ctx, "sample", "etaoin", pipeline.Source{Text: corpus})
	require.NoError(t, err)

	return New(ws, runner, logger, Options{Gatherer: prometheus.NewRegistry()}), ws
}

func do(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorBody {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp.Error
}

func sampleMatrix(t *testing.T) *transition.Matrix {
	t.Helper()
	alpha, err := transition.NewAlphabet("etaoin", "etaoin")
	require.NoError(t, err)
	m, err := transition.FromText(alpha, corpus)
	require.NoError(t, err)
	return m
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.Contains(t, rec.Body.String(), `"version"`)
}

func TestLayout(t *testing.T) {
	s, _ := newTestServer(t)
	body := LayoutRequest{Matrix: sampleMatrix(t), Strategy: "greedy"}

	rec := do(t, s, http.MethodPost, "/v1/layouts", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp LayoutResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", resp.ID.String())
	assert.False(t, resp.Cached)
	assert.Len(t, resp.Rows, 3)
	assert.Len(t, resp.Keys, 3)
	assert.Equal(t, resp.Layout.GreedyCost, resp.Layout.Cost)

	// Same matrix and options hit the layout cache.
	rec = do(t, s, http.MethodPost, "/v1/layouts", body)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Cached)
}

func TestLayoutUnlabelled(t *testing.T) {
	s, _ := newTestServer(t)
	m, err := transition.New(nil, [][]int{{0, 3}, {1, 0}})
	require.NoError(t, err)

	rec := do(t, s, http.MethodPost, "/v1/layouts", LayoutRequest{Matrix: m})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp LayoutResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Keys)
	require.Len(t, resp.Rows, 2)
	assert.ElementsMatch(t, []int{0, 1}, []int{resp.Rows[0][0], resp.Rows[1][0]})
}

func TestLayoutRejects(t *testing.T) {
	s, _ := newTestServer(t)
	tests := []struct {
		name string
		body string
		code kerrors.Code
	}{
		{"empty body", "", kerrors.ErrCodeInvalidInput},
		{"bad json", "{", kerrors.ErrCodeInvalidInput},
		{"unknown field", `{"matrix":{"counts":[[0]]},"extra":1}`, kerrors.ErrCodeInvalidInput},
		{"no matrix", `{}`, kerrors.ErrCodeInvalidMatrix},
		{"not square", `{"matrix":{"counts":[[0,1]]}}`, kerrors.ErrCodeInvalidInput},
		{"strategy", `{"matrix":{"counts":[[0,1],[1,0]]},"strategy":"annealing"}`, kerrors.ErrCodeInvalidStrategy},
		{"node limit", `{"matrix":{"counts":[[0,1],[1,0]]},"node_limit":-5}`, kerrors.ErrCodeInvalidInput},
		{"node limit above cap", `{"matrix":{"counts":[[0,1],[1,0]]},"node_limit":1000000000}`, kerrors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/layouts", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.code, decodeError(t, rec).Code)
		})
	}
}

func TestKeyboardRoutes(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/v1/keyboards", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"keyboards":[]}`, rec.Body.String())

	rec = do(t, s, http.MethodPost, "/v1/keyboards", KeyboardRequest{Name: "mine", Matrix: "sample"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "/v1/keyboards/mine", rec.Header().Get("Location"))
	var created KeyboardResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "mine", created.Keyboard.Name)
	assert.LessOrEqual(t, created.Keyboard.Cost, created.GreedyCost+1e-9)

	rec = do(t, s, http.MethodPost, "/v1/keyboards", KeyboardRequest{Name: "mine", Matrix: "sample"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, kerrors.ErrCodeAlreadyExists, decodeError(t, rec).Code)

	rec = do(t, s, http.MethodPost, "/v1/keyboards", KeyboardRequest{Name: "other", Matrix: "missing"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodGet, "/v1/keyboards/mine", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var kb keyboard.Keyboard
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &kb))
	assert.Equal(t, created.Keyboard.Keys, kb.Keys)

	rec = do(t, s, http.MethodGet, "/v1/keyboards/mine/svg?edges=3", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "<svg")

	rec = do(t, s, http.MethodGet, "/v1/keyboards/mine/svg?edges=lots", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodDelete, "/v1/keyboards/mine", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, s, http.MethodGet, "/v1/keyboards/mine", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, kerrors.ErrCodeNotFound, decodeError(t, rec).Code)
}

func TestNodeLimitCap(t *testing.T) {
	s, ws := newTestServer(t)
	s = New(ws, s.runner, s.logger, Options{Gatherer: prometheus.NewRegistry(), MaxNodeLimit: 1000})

	rec := do(t, s, http.MethodPost, "/v1/keyboards", KeyboardRequest{Name: "big", Matrix: "sample", NodeLimit: 1001})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, kerrors.ErrCodeInvalidInput, decodeError(t, rec).Code)

	rec = do(t, s, http.MethodPost, "/v1/keyboards", KeyboardRequest{Name: "small", Matrix: "sample", NodeLimit: 1000})
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

type routeRecorder struct {
	observability.NoopHTTPHooks
	mu     sync.Mutex
	routes []string
	errors int
}

func (h *routeRecorder) OnResponse(_ context.Context, method, route string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.routes = append(h.routes, method+" "+route)
}

func (h *routeRecorder) OnError(context.Context, string, string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errors++
}

func TestObserveUsesRoutePattern(t *testing.T) {
	hooks := &routeRecorder{}
	observability.SetHTTPHooks(hooks)
	t.Cleanup(observability.Reset)

	s, _ := newTestServer(t)
	do(t, s, http.MethodGet, "/v1/keyboards/nope", nil)
	do(t, s, http.MethodGet, "/healthz", nil)

	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	assert.Equal(t, []string{"GET /v1/keyboards/{name}", "GET /healthz"}, hooks.routes)
	assert.Equal(t, 1, hooks.errors)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	observability.NewPrometheus(reg).Install()
	t.Cleanup(observability.Reset)

	s, ws := newTestServer(t)
	s = New(ws, s.runner, s.logger, Options{Gatherer: reg})

	do(t, s, http.MethodPost, "/v1/layouts", LayoutRequest{Matrix: sampleMatrix(t), Strategy: "greedy"})
	rec := do(t, s, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "keyforge_layout_total")
	assert.Contains(t, body, `keyforge_api_requests_total{method="POST",route="/v1/layouts",status="200"} 1`)
}

func TestServeShutsDownOnCancel(t *testing.T) {
	s, _ := newTestServer(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
