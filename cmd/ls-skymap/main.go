// Command ls-skymap renders planisphere sky maps, moon symbols and analemma
// plots as SVG, serves them over HTTP, or previews them in the terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/litescript/ls-skymap/internal/catalog"
	"github.com/litescript/ls-skymap/internal/config"
	"github.com/litescript/ls-skymap/internal/ephem"
	"github.com/litescript/ls-skymap/internal/logging"
	"github.com/litescript/ls-skymap/internal/metrics"
	"github.com/litescript/ls-skymap/internal/render"
	"github.com/litescript/ls-skymap/internal/server"
	"github.com/litescript/ls-skymap/internal/state"
	"github.com/litescript/ls-skymap/internal/ui"
	"github.com/litescript/ls-skymap/internal/version"
)

// listFlag collects a repeatable flag.
type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ",") }

func (l *listFlag) Set(v string) error {
	*l = append(*l, v)
	return nil
}

// CLI flags
var (
	configPath  string
	kindName    string
	outPath     string
	summaryMode bool
	jsonMode    bool
	serveAddr   string
	tuiMode     bool
	starsFile   string
	consFile    string
	ephemMode   string
	rateLimit   float64
	rateBurst   int
	showVersion bool

	sets    listFlag
	tleSrcs listFlag
)

const (
	defaultRefresh = 6 * time.Hour
	minRefresh     = 1 * time.Minute
	maxRefresh     = 7 * 24 * time.Hour
)

func main() {
	refresh := flag.Duration("refresh", defaultRefresh, "Catalog refresh interval when serving (e.g., 30m, 6h)")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.StringVar(&configPath, "config", "", "TOML parameter file")
	flag.StringVar(&kindName, "kind", "skymap", "Diagram to render: skymap, moon or analemma")
	flag.StringVar(&outPath, "out", "-", "SVG output file (use - for stdout)")
	flag.Var(&sets, "set", "Parameter override key=value (repeatable)")
	flag.BoolVar(&summaryMode, "summary", false, "Print a text summary instead of SVG")
	flag.BoolVar(&jsonMode, "json", false, "Print a JSON export instead of SVG")
	flag.StringVar(&serveAddr, "serve", "", "Serve diagrams over HTTP on this address (e.g., :8080)")
	flag.BoolVar(&tuiMode, "tui", false, "Interactive terminal preview")
	flag.Var(&tleSrcs, "tle", "TLE file or URL (repeatable)")
	flag.StringVar(&starsFile, "stars", "", "Hipparcos hip_main.dat (default: built-in bright stars)")
	flag.StringVar(&consFile, "constellations", "", "Stellarium constellationship.fab (default: built-in figures)")
	flag.StringVar(&ephemMode, "ephem", "analytic", "Ephemeris source: analytic, horizons or auto")
	flag.Float64Var(&rateLimit, "rate", 5, "Requests per second per client when serving (0 disables)")
	flag.IntVar(&rateBurst, "burst", 10, "Request burst per client when serving")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Println("ls-skymap", version.Version)
		return
	}

	if *refresh < minRefresh {
		*refresh = minRefresh
	} else if *refresh > maxRefresh {
		*refresh = maxRefresh
	}

	logger := logging.New(logging.ParseLevel(*logLevel))

	params, err := loadParams()
	if err != nil {
		fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	mode, err := ephem.ParseMode(ephemMode)
	if err != nil {
		fatal(err)
	}
	var horizons *ephem.HorizonsProvider
	if mode != ephem.ModeAnalytic {
		horizons = ephem.NewHorizonsProvider()
	}
	provider := ephem.NewProvider(mode, horizons)
	renderer := render.New(provider, render.WithLogger(logger))
	loader := newLoader(params, horizons, logger)

	stateCfg := state.DefaultConfig()
	stateCfg.RefreshInterval = *refresh

	switch {
	case serveAddr != "":
		err = runServer(ctx, loader, stateCfg, renderer, params, logger)
	case tuiMode:
		err = runTUI(ctx, loader, stateCfg, renderer, params, logger)
	default:
		err = runOnce(ctx, loader, renderer, params, logger)
	}
	if err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// loadParams reads the config file over the defaults and applies -set
// overrides.
func loadParams() (config.Params, error) {
	params := config.Defaults()
	if configPath != "" {
		var err error
		if params, err = config.Load(configPath); err != nil {
			return params, err
		}
	}

	overrides := make(map[string]string, len(sets))
	for _, kv := range sets {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			return params, fmt.Errorf("%w: -set %q is not key=value", config.ErrInvalidParam, kv)
		}
		overrides[strings.TrimSpace(k)] = v
	}
	return params.ApplyOverrides(overrides)
}

func newLoader(params config.Params, horizons *ephem.HorizonsProvider, logger *logging.Logger) *catalog.Loader {
	l := &catalog.Loader{
		StarsFile:          starsFile,
		StarsMaxMagnitude:  params.MaxMagnitude,
		ConstellationsFile: consFile,
		HTTPClient:         &http.Client{Timeout: 30 * time.Second},
		Observer:           params.Observer(),
		Log:                logger,
	}
	for _, src := range tleSrcs {
		if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
			l.TLEURLs = append(l.TLEURLs, src)
		} else {
			l.TLEFiles = append(l.TLEFiles, src)
		}
	}
	if horizons != nil {
		l.Horizons = horizons
		l.HorizonsBodies = params.Bodies
	}
	return l
}

// runOnce loads the catalog, renders one diagram and writes it out.
func runOnce(ctx context.Context, loader *catalog.Loader, renderer *render.Renderer, params config.Params, logger *logging.Logger) error {
	kind, err := render.ParseKind(kindName)
	if err != nil {
		return err
	}

	var snap *catalog.Snapshot
	if kind == render.KindSkyMap {
		var rep catalog.LoadReport
		snap, rep, err = loader.Load(ctx, nil)
		if err != nil {
			return err
		}
		logger.Debug("Catalog loaded: %d stars, %d constellations, %d satellites in %v",
			rep.Stars, rep.Constellations, rep.Satellites, rep.Duration)
	}

	res, err := renderer.Render(kind, params, snap)
	if err != nil {
		return err
	}

	w, closeOut, err := openOut()
	if err != nil {
		return err
	}
	defer closeOut()

	switch {
	case jsonMode:
		if err := render.ExportResult(res).WriteJSON(w); err != nil {
			return fmt.Errorf("write JSON: %w", err)
		}
	case summaryMode:
		render.WriteSummary(w, res)
	default:
		if err := res.Scene.WriteSVG(w); err != nil {
			return fmt.Errorf("write SVG: %w", err)
		}
	}
	return nil
}

func openOut() (io.Writer, func(), error) {
	if outPath == "" || outPath == "-" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(outPath)
	if err != nil {
		return nil, nil, fmt.Errorf("create output file: %w", err)
	}
	return f, func() { f.Close() }, nil
}

// runServer serves diagrams until the context is cancelled, refreshing the
// catalog in the background.
func runServer(ctx context.Context, loader *catalog.Loader, stateCfg state.Config, renderer *render.Renderer, params config.Params, logger *logging.Logger) error {
	collector, err := metrics.NewCollector(nil)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	stateMgr := state.NewManager(stateCfg, catalog.DefaultSnapshot())
	srv := server.New(server.Config{
		Renderer:      renderer,
		State:         stateMgr,
		Metrics:       collector,
		Log:           logger,
		Base:          params,
		RatePerSecond: rateLimit,
		Burst:         rateBurst,
	})

	go runRefreshLoop(ctx, loader, stateMgr, collector, logger, nil)

	httpSrv := &http.Server{
		Addr:              serveAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	logger.Info("Serving on %s", serveAddr)
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// runTUI runs the terminal preview with a background catalog refresh.
func runTUI(ctx context.Context, loader *catalog.Loader, stateCfg state.Config, renderer *render.Renderer, params config.Params, logger *logging.Logger) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("-tui needs a terminal")
	}
	// Log lines would tear the alternate screen.
	logger.SetOutput(io.Discard)

	stateMgr := state.NewManager(stateCfg, catalog.DefaultSnapshot())
	model := ui.New(stateMgr, renderer, params)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	go runRefreshLoop(ctx, loader, stateMgr, nil, logger, p)

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run TUI: %w", err)
	}
	return nil
}

func runRefreshLoop(ctx context.Context, loader *catalog.Loader, stateMgr *state.Manager, collector *metrics.Collector, logger *logging.Logger, p *tea.Program) {
	doRefresh(ctx, loader, stateMgr, collector, logger, p)

	ticker := time.NewTicker(stateMgr.RefreshInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Debug("Refresh loop shutting down")
			return
		case <-ticker.C:
			doRefresh(ctx, loader, stateMgr, collector, logger, p)
		}
	}
}

func doRefresh(ctx context.Context, loader *catalog.Loader, stateMgr *state.Manager, collector *metrics.Collector, logger *logging.Logger, p *tea.Program) {
	logger.Debug("Refreshing catalog...")

	snap, rep, err := loader.Load(ctx, stateMgr.Catalog())
	if err != nil {
		logger.Error("Catalog refresh failed: %v", err)
		stateMgr.Update(nil, rep.Duration, err)
		collector.ObserveLoadError()
		if p != nil {
			p.Send(ui.ErrorMsg{Error: err})
		}
		return
	}

	logger.Debug("Catalog refresh complete: %d stars, %d constellations, %d satellites in %v",
		rep.Stars, rep.Constellations, rep.Satellites, rep.Duration)

	stateMgr.Update(snap, rep.Duration, nil)
	collector.SetCatalogCounts(rep.Stars, rep.Constellations, rep.Satellites, rep.Duration)
	if p != nil {
		p.Send(ui.DataUpdateMsg{Status: stateMgr.Status()})
	}
}
