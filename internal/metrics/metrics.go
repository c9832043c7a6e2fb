// Package metrics exposes Prometheus collectors for renders and catalog
// refreshes.
package metrics

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector bundles the render and catalog metrics.
type Collector struct {
	gatherer prometheus.Gatherer

	Renders         *prometheus.CounterVec
	RenderDurations *prometheus.HistogramVec
	DroppedObjects  *prometheus.CounterVec
	StyleWarnings   prometheus.Counter
	RateLimited     prometheus.Counter

	CatalogStars          prometheus.Gauge
	CatalogConstellations prometheus.Gauge
	CatalogSatellites     prometheus.Gauge
	CatalogLoadSeconds    prometheus.Gauge
	CatalogLoadErrors     prometheus.Counter
}

// NewCollector registers the metrics against reg, defaulting to the global
// registry when nil. Registering twice against one registry returns the
// existing collectors.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	renders, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "skymap_renders_total",
		Help: "Total number of renders, labeled by diagram kind and HTTP-style status code.",
	}, []string{"kind", "code"}), "skymap_renders_total")
	if err != nil {
		return nil, err
	}
	durations, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "skymap_render_duration_seconds",
		Help:    "Render latency in seconds, including SVG serialization.",
		Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"kind"}), "skymap_render_duration_seconds")
	if err != nil {
		return nil, err
	}
	dropped, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "skymap_dropped_objects_total",
		Help: "Requested objects left off the map, labeled by reason.",
	}, []string{"reason"}), "skymap_dropped_objects_total")
	if err != nil {
		return nil, err
	}
	warnings, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "skymap_style_warnings_total",
		Help: "Format rules skipped because their pattern or value could not be used.",
	}), "skymap_style_warnings_total")
	if err != nil {
		return nil, err
	}
	limited, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "skymap_rate_limited_total",
		Help: "Requests refused by the rate limiter.",
	}), "skymap_rate_limited_total")
	if err != nil {
		return nil, err
	}

	stars, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "skymap_catalog_stars",
		Help: "Stars in the current catalog snapshot.",
	}), "skymap_catalog_stars")
	if err != nil {
		return nil, err
	}
	cons, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "skymap_catalog_constellations",
		Help: "Constellation figures in the current catalog snapshot.",
	}), "skymap_catalog_constellations")
	if err != nil {
		return nil, err
	}
	sats, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "skymap_catalog_satellites",
		Help: "Satellite element sets in the current catalog snapshot.",
	}), "skymap_catalog_satellites")
	if err != nil {
		return nil, err
	}
	loadSeconds, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "skymap_catalog_load_seconds",
		Help: "Duration of the last catalog refresh.",
	}), "skymap_catalog_load_seconds")
	if err != nil {
		return nil, err
	}
	loadErrors, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "skymap_catalog_load_errors_total",
		Help: "Catalog refreshes that failed and kept the previous snapshot.",
	}), "skymap_catalog_load_errors_total")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:              gatherer,
		Renders:               renders,
		RenderDurations:       durations,
		DroppedObjects:        dropped,
		StyleWarnings:         warnings,
		RateLimited:           limited,
		CatalogStars:          stars,
		CatalogConstellations: cons,
		CatalogSatellites:     sats,
		CatalogLoadSeconds:    loadSeconds,
		CatalogLoadErrors:     loadErrors,
	}, nil
}

// ObserveRender records one render. A nil collector records nothing.
func (c *Collector) ObserveRender(kind string, code int, d time.Duration) {
	if c == nil {
		return
	}
	c.Renders.WithLabelValues(kind, strconv.Itoa(code)).Inc()
	c.RenderDurations.WithLabelValues(kind).Observe(d.Seconds())
}

// ObserveDropped counts dropped objects by reason.
func (c *Collector) ObserveDropped(reason string) {
	if c == nil {
		return
	}
	c.DroppedObjects.WithLabelValues(reason).Inc()
}

// ObserveStyleWarnings counts skipped format rules.
func (c *Collector) ObserveStyleWarnings(n int) {
	if c == nil || n <= 0 {
		return
	}
	c.StyleWarnings.Add(float64(n))
}

// ObserveRateLimited counts a refused request.
func (c *Collector) ObserveRateLimited() {
	if c == nil {
		return
	}
	c.RateLimited.Inc()
}

// SetCatalogCounts sets the catalog gauges after a refresh.
func (c *Collector) SetCatalogCounts(stars, constellations, satellites int, load time.Duration) {
	if c == nil {
		return
	}
	c.CatalogStars.Set(float64(stars))
	c.CatalogConstellations.Set(float64(constellations))
	c.CatalogSatellites.Set(float64(satellites))
	c.CatalogLoadSeconds.Set(load.Seconds())
}

// ObserveLoadError counts a failed refresh.
func (c *Collector) ObserveLoadError() {
	if c == nil {
		return
	}
	c.CatalogLoadErrors.Inc()
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := prometheus.DefaultGatherer
	if c != nil && c.gatherer != nil {
		gatherer = c.gatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
