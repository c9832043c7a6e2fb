// Package server serves the diagrams over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/litescript/ls-skymap/internal/astro"
	"github.com/litescript/ls-skymap/internal/config"
	"github.com/litescript/ls-skymap/internal/logging"
	"github.com/litescript/ls-skymap/internal/metrics"
	"github.com/litescript/ls-skymap/internal/render"
	"github.com/litescript/ls-skymap/internal/state"
)

// Config holds the server dependencies.
type Config struct {
	Renderer *render.Renderer
	State    *state.Manager
	Metrics  *metrics.Collector // optional
	Log      *logging.Logger    // optional
	Base     config.Params      // parameters a query does not override

	RatePerSecond float64 // per client; 0 disables limiting
	Burst         int
}

// Server renders diagrams on request.
type Server struct {
	cfg     Config
	log     *logging.Logger
	limiter *IPRateLimiter
}

// New creates a server.
func New(cfg Config) *Server {
	s := &Server{cfg: cfg, log: cfg.Log}
	if s.log == nil {
		s.log = logging.Discard()
	}
	if cfg.RatePerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		s.limiter = NewIPRateLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}
	return s
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /skymap.svg", s.limit(s.diagram(render.KindSkyMap)))
	mux.Handle("GET /moon.svg", s.limit(s.diagram(render.KindMoon)))
	mux.Handle("GET /analemma.svg", s.limit(s.diagram(render.KindAnalemma)))
	mux.Handle("GET /metrics", s.cfg.Metrics.Handler())
	mux.HandleFunc("GET /healthz", s.healthz)
	return mux
}

func (s *Server) limit(next http.Handler) http.Handler {
	if s.limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow(clientIP(r)) {
			s.cfg.Metrics.ObserveRateLimited()
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Overrides flattens a query into parameter overrides, keeping the first
// value of repeated keys.
func Overrides(q map[string][]string) map[string]string {
	out := make(map[string]string, len(q))
	for k, v := range q {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}

func (s *Server) diagram(kind render.Kind) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		code, body, err := s.render(kind, Overrides(r.URL.Query()))
		s.cfg.Metrics.ObserveRender(string(kind), code, time.Since(start))

		if err != nil {
			if code == http.StatusInternalServerError {
				s.log.Error("render %s: %v", kind, err)
			} else {
				s.log.Debug("render %s: %v", kind, err)
			}
			http.Error(w, err.Error(), code)
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write([]byte(body))
	})
}

func (s *Server) render(kind render.Kind, overrides map[string]string) (int, string, error) {
	p, err := s.cfg.Base.ApplyOverrides(overrides)
	if err != nil {
		return http.StatusBadRequest, "", err
	}

	res, err := s.cfg.Renderer.Render(kind, p, s.cfg.State.Catalog())
	if err != nil {
		return statusOf(err), "", err
	}
	for _, d := range res.Dropped {
		s.cfg.Metrics.ObserveDropped(string(d.Reason))
	}
	s.cfg.Metrics.ObserveStyleWarnings(len(res.StyleWarnings))

	svg, err := res.Scene.SVG()
	if err != nil {
		return http.StatusInternalServerError, "", err
	}
	return http.StatusOK, svg, nil
}

func statusOf(err error) int {
	if errors.Is(err, config.ErrInvalidParam) || errors.Is(err, astro.ErrInvalidObserver) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Health is the /healthz body.
type Health struct {
	Status          string    `json:"status"`
	LoadedAt        time.Time `json:"loaded_at"`
	LastRefresh     time.Time `json:"last_refresh,omitempty"`
	LastError       string    `json:"last_error,omitempty"`
	Refreshes       int       `json:"refreshes"`
	Stars           int       `json:"stars"`
	Constellations  int       `json:"constellations"`
	Satellites      int       `json:"satellites"`
	RefreshDuration string    `json:"refresh_duration,omitempty"`
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	st := s.cfg.State.Status()
	h := Health{
		Status:         "ok",
		LoadedAt:       st.LoadedAt,
		LastRefresh:    st.LastRefresh,
		Refreshes:      st.Refreshes,
		Stars:          st.Stars,
		Constellations: st.Constellations,
		Satellites:     st.Satellites,
	}
	if st.RefreshDuration > 0 {
		h.RefreshDuration = st.RefreshDuration.String()
	}
	if st.LastError != nil {
		h.Status = "degraded"
		h.LastError = st.LastError.Error()
	}
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(h)
}
