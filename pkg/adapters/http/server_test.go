package http

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/tinct"
	"github.com/aretw0/tinct/pkg/adapters/memory"
	"github.com/aretw0/tinct/pkg/observability"
)

func newEngine(t *testing.T, opts ...tinct.Option) *tinct.Engine {
	t.Helper()
	store := memory.NewStore(map[string]string{
		"greeting": "Hello {{name}}!",
		"broken":   "{{#open}}",
		"strict":   "{{missing}}",
		"number":   "{{n}}",
		"sub/a":    "nested {{name}}",
	})
	eng, err := tinct.New("", append([]tinct.Option{tinct.WithSource(store)}, opts...)...)
	require.NoError(t, err)
	return eng
}

func newHandler(t *testing.T, eng Engine, opts ...Option) http.Handler {
	t.Helper()
	opts = append([]Option{WithLogger(slog.New(slog.DiscardHandler))}, opts...)
	return NewHandler(eng, opts...)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealthAndInfo(t *testing.T) {
	h := newHandler(t, newEngine(t))

	w := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = do(t, h, http.MethodGet, "/info", "")
	assert.Equal(t, http.StatusOK, w.Code)
	info := decodeBody[map[string]string](t, w)
	assert.Equal(t, "tinct-http", info["app"])
	assert.Equal(t, tinct.Version, info["version"])
}

func TestListTemplates(t *testing.T) {
	h := newHandler(t, newEngine(t))

	w := do(t, h, http.MethodGet, "/templates", "")
	require.Equal(t, http.StatusOK, w.Code)
	got := decodeBody[map[string][]string](t, w)
	assert.Equal(t, []string{"broken", "greeting", "number", "strict", "sub/a"}, got["templates"])
}

func TestRender_Inline(t *testing.T) {
	h := newHandler(t, newEngine(t))

	w := do(t, h, http.MethodPost, "/render", `{"template":"{{#items}}{{.}};{{/items}}","data":{"items":["a","b"]}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "a;b;", decodeBody[RenderResponse](t, w).Output)
}

func TestRender_NumbersAndFormats(t *testing.T) {
	h := newHandler(t, newEngine(t))

	w := do(t, h, http.MethodPost, "/templates/number/render", `{"data":{"n":7},"formats":{"int":"{int:03d}"}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "007", decodeBody[RenderResponse](t, w).Output)
}

func TestRender_Named(t *testing.T) {
	h := newHandler(t, newEngine(t))

	w := do(t, h, http.MethodPost, "/templates/greeting/render", `{"data":{"name":"tinct"}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Hello tinct!", decodeBody[RenderResponse](t, w).Output)
}

func TestRender_NestedName(t *testing.T) {
	h := newHandler(t, newEngine(t))

	for _, path := range []string{"/templates/sub%2Fa/render", "/render/sub/a"} {
		t.Run(path, func(t *testing.T) {
			w := do(t, h, http.MethodPost, path, `{"data":{"name":"ok"}}`)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			assert.Equal(t, "nested ok", decodeBody[RenderResponse](t, w).Output)
		})
	}

	w := do(t, h, http.MethodPost, "/render/", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRender_Errors(t *testing.T) {
	h := newHandler(t, newEngine(t))

	t.Run("not found", func(t *testing.T) {
		w := do(t, h, http.MethodPost, "/templates/nope/render", `{}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("parse error carries position", func(t *testing.T) {
		w := do(t, h, http.MethodPost, "/templates/broken/render", `{}`)
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		resp := decodeBody[ErrorResponse](t, w)
		assert.Equal(t, "section was never closed", resp.Kind)
		require.NotNil(t, resp.Line)
		require.NotNil(t, resp.Column)
		assert.Equal(t, 1, *resp.Line)
		assert.Equal(t, 9, *resp.Column)
	})

	t.Run("inline parse error", func(t *testing.T) {
		w := do(t, h, http.MethodPost, "/render", `{"template":"{{a.}}"}`)
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		resp := decodeBody[ErrorResponse](t, w)
		assert.Equal(t, "expected an identifier", resp.Kind)
		require.NotNil(t, resp.Column)
		assert.Equal(t, 4, *resp.Column)
	})

	t.Run("render error", func(t *testing.T) {
		w := do(t, h, http.MethodPost, "/templates/strict/render", `{"data":{}}`)
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		resp := decodeBody[ErrorResponse](t, w)
		assert.Equal(t, "unknown key", resp.Kind)
		assert.Nil(t, resp.Line)
		assert.Contains(t, resp.Error, `"missing"`)
	})

	t.Run("malformed body", func(t *testing.T) {
		w := do(t, h, http.MethodPost, "/render", `{"template":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	eng := newEngine(t, tinct.WithHooks(metrics.Hooks()))
	h := newHandler(t, eng, WithMetrics(reg))

	w := do(t, h, http.MethodPost, "/templates/greeting/render", `{"data":{"name":"x"}}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `tinct_renders_total{outcome="ok",template="greeting"} 1`)
}

func TestMetricsEndpoint_DisabledByDefault(t *testing.T) {
	h := newHandler(t, newEngine(t))
	w := do(t, h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	h := newHandler(t, newEngine(t))
	w := do(t, h, http.MethodOptions, "/render", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

// watchingEngine reports changes from a channel the test controls.
type watchingEngine struct {
	*tinct.Engine
	changes chan struct{}
}

func (e *watchingEngine) Watch(ctx context.Context) (<-chan struct{}, error) {
	return e.changes, nil
}

func TestSubscribeEvents(t *testing.T) {
	eng := &watchingEngine{Engine: newEngine(t), changes: make(chan struct{}, 1)}
	srv := httptest.NewServer(newHandler(t, eng))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	readEvent := func() string {
		var lines []string
		for {
			line, err := reader.ReadString('\n')
			if err == io.EOF {
				break
			}
			require.NoError(t, err)
			line = strings.TrimSuffix(line, "\n")
			if line == "" {
				break
			}
			lines = append(lines, line)
		}
		return strings.Join(lines, "|")
	}

	assert.Equal(t, "event: ping|data: connected", readEvent())
	eng.changes <- struct{}{}
	assert.Equal(t, "event: reload|data: templates changed", readEvent())
}

func TestSubscribeEvents_UnsupportedSource(t *testing.T) {
	h := newHandler(t, newEngine(t))
	w := do(t, h, http.MethodGet, "/events", "")
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}
