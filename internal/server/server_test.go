package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/litescript/ls-skymap/internal/astro"
	"github.com/litescript/ls-skymap/internal/catalog"
	"github.com/litescript/ls-skymap/internal/config"
	"github.com/litescript/ls-skymap/internal/ephem"
	"github.com/litescript/ls-skymap/internal/metrics"
	"github.com/litescript/ls-skymap/internal/render"
	"github.com/litescript/ls-skymap/internal/state"
)

func newTestServer(t *testing.T, ratePerSecond float64, burst int) (*Server, *metrics.Collector) {
	t.Helper()
	c, err := metrics.NewCollector(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}
	base := config.Defaults()
	base.Latitude = 51.48
	base.Time = "2024-03-20T12:00:00Z"
	return New(Config{
		Renderer:      render.New(ephem.NewAnalyticProvider()),
		State:         state.NewManager(state.DefaultConfig(), catalog.DefaultSnapshot()),
		Metrics:       c,
		Base:          base,
		RatePerSecond: ratePerSecond,
		Burst:         burst,
	}), c
}

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
	return rr
}

func TestDiagrams(t *testing.T) {
	s, c := newTestServer(t, 0, 0)
	h := s.Handler()

	tests := []struct {
		path   string
		wantID string
	}{
		{"/skymap.svg", `id="horizon"`},
		{"/moon.svg", `id="moonDark"`},
		{"/analemma.svg?tz=UTC", `id="analemmaCurve"`},
	}
	for _, tt := range tests {
		rr := get(h, tt.path)
		if rr.Code != http.StatusOK {
			t.Errorf("%s: status %d: %s", tt.path, rr.Code, rr.Body.String())
			continue
		}
		if ct := rr.Header().Get("Content-Type"); ct != "image/svg+xml" {
			t.Errorf("%s: content type %q", tt.path, ct)
		}
		body := rr.Body.String()
		if !strings.HasPrefix(body, "<svg") || !strings.Contains(body, tt.wantID) {
			t.Errorf("%s: body lacks %s", tt.path, tt.wantID)
		}
	}

	if got := testutil.ToFloat64(c.Renders.WithLabelValues("skymap", "200")); got != 1 {
		t.Errorf("skymap renders = %v, want 1", got)
	}
}

func TestQueryOverrides(t *testing.T) {
	s, _ := newTestServer(t, 0, 0)
	q := url.Values{}
	q.Set("bodies", "sun")
	q.Set("id", "embedded")
	q.Set("Formats.sun", "4, #ff0000")
	rr := get(s.Handler(), "/skymap.svg?"+q.Encode())
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}
	body := rr.Body.String()
	for _, want := range []string{`id="embedded"`, `id="sun"`, `fill="#ff0000"`, `r="4"`} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %s", want)
		}
	}
	if strings.Contains(body, `id="moon"`) {
		t.Error("moon drawn although bodies=sun")
	}
}

func TestBadRequests(t *testing.T) {
	s, c := newTestServer(t, 0, 0)
	h := s.Handler()
	for _, target := range []string{
		"/skymap.svg?latitude=91",
		"/skymap.svg?longitude=abc",
		"/moon.svg?colour=red",
		"/moon.svg?id=moon",
		"/analemma.svg?time=yesterday",
	} {
		if rr := get(h, target); rr.Code != http.StatusBadRequest {
			t.Errorf("%s: status %d, want 400", target, rr.Code)
		}
	}
	if got := testutil.ToFloat64(c.Renders.WithLabelValues("skymap", "400")); got != 2 {
		t.Errorf("skymap 400s = %v, want 2", got)
	}
}

func TestRateLimit(t *testing.T) {
	s, c := newTestServer(t, 0.001, 2)
	h := s.Handler()

	codes := make([]int, 3)
	for i := range codes {
		codes[i] = get(h, "/moon.svg").Code
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("codes = %v, want [200 200 429]", codes)
	}
	if got := testutil.ToFloat64(c.RateLimited); got != 1 {
		t.Errorf("rate limited = %v, want 1", got)
	}

	// Health and metrics are not limited.
	if rr := get(h, "/healthz"); rr.Code != http.StatusOK {
		t.Errorf("healthz status %d", rr.Code)
	}
}

func TestHealthz(t *testing.T) {
	s, _ := newTestServer(t, 0, 0)
	s.cfg.State.Update(nil, 0, errors.New("fetch failed"))

	rr := get(s.Handler(), "/healthz")
	var h Health
	if err := json.Unmarshal(rr.Body.Bytes(), &h); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if h.Status != "degraded" || h.LastError != "fetch failed" {
		t.Errorf("health = %+v", h)
	}
	if h.Stars == 0 || h.Constellations == 0 {
		t.Errorf("catalog counts missing: %+v", h)
	}
}

func TestMetricsRoute(t *testing.T) {
	s, _ := newTestServer(t, 0, 0)
	h := s.Handler()
	get(h, "/skymap.svg")
	rr := get(h, "/metrics")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "skymap_renders_total") {
		t.Errorf("metrics: %d %q", rr.Code, rr.Body.String())
	}
}

func TestStatusOf(t *testing.T) {
	if got := statusOf(astro.ErrInvalidObserver); got != http.StatusBadRequest {
		t.Errorf("invalid observer -> %d", got)
	}
	if got := statusOf(errors.New("boom")); got != http.StatusInternalServerError {
		t.Errorf("other -> %d", got)
	}
}

func TestIPRateLimiter(t *testing.T) {
	l := NewIPRateLimiter(0.001, 1)
	if !l.Allow("10.0.0.1") || l.Allow("10.0.0.1") {
		t.Error("bucket of one should allow exactly one request")
	}
	if !l.Allow("10.0.0.2") {
		t.Error("clients should have separate buckets")
	}
	if l.GetLimiter("10.0.0.1") != l.GetLimiter("10.0.0.1") {
		t.Error("limiter not reused")
	}
}
