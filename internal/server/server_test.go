package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"github.com/matzehuels/circlegraph/pkg/cache"
	"github.com/matzehuels/circlegraph/pkg/errors"
	"github.com/matzehuels/circlegraph/pkg/observability"
)

// memCache records the keys it was asked to store.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.data[key]
	return d, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memCache) Close() error { return nil }

func (c *memCache) keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for k := range c.data {
		out = append(out, k)
	}
	return out
}

func newTestServer(t *testing.T, c *memCache, cfg Config) *httptest.Server {
	t.Helper()
	var cc cache.Cache
	if c != nil {
		cc = c
	}
	s := New(cc, log.NewWithOptions(io.Discard, log.Options{}), cfg)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

const validBody = `{
  "nodes": [
    {"label": "ROI1", "hemisphere": "L", "color": "1 0 0"},
    {"label": "ROI2", "hemisphere": "L"},
    {"label": "ROI3", "hemisphere": "R", "color": "0 0 255"}
  ],
  "matrix": [[0, 0, 0], [0.5, 0, 0], [0.2, 0.4, null]],
  "options": {"thresholds": ["0.3", "abc"], "formats": ["svg"], "title": "Group A", "size": 300}
}`

func post(t *testing.T, ts *httptest.Server, body string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Post(ts.URL+"/v1/render", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, data
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, nil, Config{})

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if _, err := uuid.Parse(resp.Header.Get(requestIDHeader)); err != nil {
		t.Errorf("X-Request-ID %q is not a UUID", resp.Header.Get(requestIDHeader))
	}
	if !strings.HasPrefix(resp.Header.Get("Server"), "circlegraph/") {
		t.Errorf("Server = %q", resp.Header.Get("Server"))
	}
	var body healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Status != "ok" || body.Version == "" {
		t.Errorf("health = %+v", body)
	}
}

func TestRender(t *testing.T) {
	c := newMemCache()
	ts := newTestServer(t, c, Config{})

	resp, data := post(t, ts, validBody)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, data)
	}

	var out RenderResponse
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if _, err := uuid.Parse(out.RunID); err != nil {
		t.Errorf("run_id %q is not a UUID", out.RunID)
	}
	if got := strings.Join(out.NodeOrder, ","); got != "ROI1,ROI2,ROI3" {
		t.Errorf("node_order = %s", got)
	}
	if len(out.Angles) != 3 {
		t.Errorf("angles = %v", out.Angles)
	}
	if len(out.Thresholds) != 2 || out.Failed != 1 {
		t.Fatalf("thresholds = %+v, failed = %d", out.Thresholds, out.Failed)
	}

	ok := out.Thresholds[0]
	if ok.Token != "0.3" || ok.Error != "" {
		t.Fatalf("first threshold = %+v", ok)
	}
	if ok.Name != "Group_A_CIRCLE_GRAPH_THR0.3" {
		t.Errorf("name = %q", ok.Name)
	}
	if ok.Edges != 2 {
		t.Errorf("edges = %d, want 2", ok.Edges)
	}
	if len(ok.Artifacts) != 1 || ok.Artifacts[0].Format != "svg" {
		t.Fatalf("artifacts = %+v", ok.Artifacts)
	}
	if !bytes.HasPrefix(ok.Artifacts[0].Data, []byte("<svg")) {
		t.Errorf("artifact is not SVG: %.40q", ok.Artifacts[0].Data)
	}

	bad := out.Thresholds[1]
	if bad.Token != "abc" || bad.Code != "INVALID_THRESHOLD" || len(bad.Artifacts) != 0 {
		t.Errorf("second threshold = %+v", bad)
	}

	keys := c.keys()
	if len(keys) != 1 || !strings.HasPrefix(keys[0], "api:") {
		t.Errorf("cache keys = %v, want one api: key", keys)
	}

	// Same request again is served from the cache.
	_, data = post(t, ts, validBody)
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if !out.Thresholds[0].CacheHit {
		t.Error("second request missed the cache")
	}
}

func TestRenderErrors(t *testing.T) {
	ts := newTestServer(t, nil, Config{MaxThresholds: 2, MaxSize: 1000})

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{
			name:   "malformed json",
			body:   `{"nodes": [`,
			status: http.StatusBadRequest,
			code:   "INVALID_INPUT",
		},
		{
			name:   "unknown field",
			body:   `{"nodes": [], "colour": "red"}`,
			status: http.StatusBadRequest,
			code:   "INVALID_INPUT",
		},
		{
			name:   "no nodes",
			body:   `{"nodes": [], "matrix": [[0]]}`,
			status: http.StatusBadRequest,
			code:   "INVALID_INPUT",
		},
		{
			name:   "shape mismatch",
			body:   `{"nodes": [{"label":"A","hemisphere":"L"},{"label":"B","hemisphere":"R"},{"label":"C","hemisphere":"R"}], "matrix": [[0,0],[1,0]]}`,
			status: http.StatusUnprocessableEntity,
			code:   "INVALID_SHAPE",
		},
		{
			name:   "ragged matrix",
			body:   `{"nodes": [{"label":"A","hemisphere":"L"},{"label":"B","hemisphere":"R"}], "matrix": [[0,0],[1]]}`,
			status: http.StatusUnprocessableEntity,
			code:   "INVALID_SHAPE",
		},
		{
			name:   "unknown hemisphere",
			body:   `{"nodes": [{"label":"A","hemisphere":"L"},{"label":"B","hemisphere":"middle"}], "matrix": [[0,0],[1,0]]}`,
			status: http.StatusUnprocessableEntity,
			code:   "UNKNOWN_HEMISPHERE",
		},
		{
			name:   "duplicate label",
			body:   `{"nodes": [{"label":"A","hemisphere":"L"},{"label":"A","hemisphere":"R"}], "matrix": [[0,0],[1,0]]}`,
			status: http.StatusUnprocessableEntity,
			code:   "DUPLICATE_LABEL",
		},
		{
			name:   "bad theme",
			body:   `{"nodes": [{"label":"A","hemisphere":"L"},{"label":"B","hemisphere":"R"}], "matrix": [[0,0],[1,0]], "options": {"theme": "sepia"}}`,
			status: http.StatusBadRequest,
			code:   "INVALID_THEME",
		},
		{
			name:   "too many thresholds",
			body:   `{"nodes": [{"label":"A","hemisphere":"L"}], "matrix": [[0]], "options": {"thresholds": ["1","2","3"]}}`,
			status: http.StatusBadRequest,
			code:   "INVALID_THRESHOLD",
		},
		{
			name:   "image too large",
			body:   `{"nodes": [{"label":"A","hemisphere":"L"}], "matrix": [[0]], "options": {"size": 20000}}`,
			status: http.StatusBadRequest,
			code:   "INVALID_INPUT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, data := post(t, ts, tt.body)
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d: %s", resp.StatusCode, tt.status, data)
			}
			var e ErrorResponse
			if err := json.Unmarshal(data, &e); err != nil {
				t.Fatal(err)
			}
			if e.Code != tt.code {
				t.Errorf("code = %q, want %q (%s)", e.Code, tt.code, e.Error)
			}
			if e.RequestID != resp.Header.Get(requestIDHeader) {
				t.Errorf("request_id %q does not match header %q", e.RequestID, resp.Header.Get(requestIDHeader))
			}
		})
	}
}

func TestDenseMatrixRowNumbers(t *testing.T) {
	one := 1.0
	_, err := denseMatrix([][]*float64{{&one, nil}, {&one}})
	if got := errors.GetCode(err); got != errors.ErrCodeShape {
		t.Fatalf("code = %q, want %q", got, errors.ErrCodeShape)
	}
	if !strings.Contains(err.Error(), "row 2 ") {
		t.Errorf("error %q should name row 2", err)
	}

	m, err := denseMatrix([][]*float64{{&one, nil}, {nil, &one}})
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsNaN(m.At(0, 1)) || m.At(1, 1) != 1 {
		t.Errorf("matrix = %v", mat.Formatted(m))
	}
}

func TestRequestIDPassthrough(t *testing.T) {
	ts := newTestServer(t, nil, Config{})
	id := uuid.NewString()

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	req.Header.Set(requestIDHeader, id)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get(requestIDHeader); got != id {
		t.Errorf("X-Request-ID = %q, want %q", got, id)
	}

	req, _ = http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	req.Header.Set(requestIDHeader, "not-a-uuid")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get(requestIDHeader); got == "not-a-uuid" {
		t.Error("malformed request ID was echoed")
	}
}

func TestContentTypeAndRoutes(t *testing.T) {
	ts := newTestServer(t, nil, Config{})

	resp, err := http.Post(ts.URL+"/v1/render", "text/plain", strings.NewReader(validBody))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnsupportedMediaType {
		t.Errorf("text/plain: status = %d", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/v1/render")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("GET /v1/render: status = %d", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/nope")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("GET /nope: status = %d", resp.StatusCode)
	}
}

func TestCORS(t *testing.T) {
	ts := newTestServer(t, nil, Config{AllowedOrigins: []string{"https://viewer.example.org"}})

	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/v1/render", nil)
	req.Header.Set("Origin", "https://viewer.example.org")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "https://viewer.example.org" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

type recordingHTTPHooks struct {
	observability.NoopHTTPHooks
	mu       sync.Mutex
	statuses []int
}

func (h *recordingHTTPHooks) observed() []int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]int(nil), h.statuses...)
}

func (h *recordingHTTPHooks) OnResponse(_ context.Context, _, _ string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.statuses = append(h.statuses, status)
}

func TestHTTPHooks(t *testing.T) {
	hooks := &recordingHTTPHooks{}
	observability.SetHTTPHooks(hooks)
	defer observability.Reset()

	ts := newTestServer(t, nil, Config{})
	resp, _ := post(t, ts, `{"nodes": [`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	// The hook fires after the response is flushed to the client.
	deadline := time.Now().Add(2 * time.Second)
	for len(hooks.observed()) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if got := hooks.observed(); len(got) != 1 || got[0] != http.StatusBadRequest {
		t.Errorf("observed statuses = %v", got)
	}
}
