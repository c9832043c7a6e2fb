package catalog

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/litescript/ls-skymap/internal/astro"
	"github.com/litescript/ls-skymap/internal/ephem"
	"github.com/litescript/ls-skymap/internal/logging"
	"github.com/litescript/ls-skymap/internal/tle"
)

// Loader builds snapshots from files and network sources. All I/O happens
// here, never during a render.
type Loader struct {
	StarsFile          string   // hip_main.dat; empty uses the built-in list
	StarsMaxMagnitude  float64  // cut applied while loading StarsFile
	ConstellationsFile string   // constellationship.fab; empty uses the built-in figures
	TLEFiles           []string // local element files
	TLEURLs            []string // remote element files
	HTTPClient         *http.Client

	// Horizons, when set, is prefetched for HorizonsBodies over
	// HorizonsWindow around the load time.
	Horizons       *ephem.HorizonsProvider
	HorizonsBodies []string
	HorizonsWindow time.Duration
	Observer       astro.Observer

	Log *logging.Logger
}

// LoadReport summarizes a load.
type LoadReport struct {
	Stars          int
	Constellations int
	Satellites     int
	Warnings       []error
	Duration       time.Duration
}

// Load builds a new snapshot. Failing star or constellation files are
// errors since they were asked for explicitly; failing satellite sources are
// warnings, and when prev is given their previously loaded element sets are
// carried over.
func (l *Loader) Load(ctx context.Context, prev *Snapshot) (*Snapshot, LoadReport, error) {
	start := time.Now()
	var rep LoadReport
	log := l.Log
	if log == nil {
		log = logging.Discard()
	}

	stars := astro.DefaultStarCatalog().Stars
	if l.StarsFile != "" {
		f, err := os.Open(l.StarsFile)
		if err != nil {
			return nil, rep, fmt.Errorf("open star catalog: %w", err)
		}
		maxMag := l.StarsMaxMagnitude
		if maxMag == 0 {
			maxMag = 6.5
		}
		stars, err = LoadHipparcos(f, maxMag)
		f.Close()
		if err != nil {
			return nil, rep, fmt.Errorf("load star catalog %s: %w", l.StarsFile, err)
		}
	}

	cons := DefaultConstellations()
	if l.ConstellationsFile != "" {
		f, err := os.Open(l.ConstellationsFile)
		if err != nil {
			return nil, rep, fmt.Errorf("open constellations: %w", err)
		}
		cons, err = ParseConstellations(f)
		f.Close()
		if err != nil {
			return nil, rep, fmt.Errorf("parse constellations %s: %w", l.ConstellationsFile, err)
		}
	}

	var sats []tle.ElementSet
	keep := func(dataset string, err error) {
		rep.Warnings = append(rep.Warnings, err)
		log.Warn("satellite source %s: %v", dataset, err)
		if prev != nil {
			if old := prev.SatellitesIn(dataset); len(old) > 0 {
				log.Info("keeping %d element sets of %s from previous load", len(old), dataset)
				sats = append(sats, old...)
			}
		}
	}

	for _, name := range l.TLEFiles {
		sets, err := tle.LoadFile(name)
		if len(sets) == 0 && err != nil {
			keep(tle.DatasetName(name), err)
			continue
		}
		if err != nil {
			rep.Warnings = append(rep.Warnings, err)
			log.Debug("skipped malformed element sets in %s: %v", name, err)
		}
		sats = append(sats, sets...)
	}

	for _, u := range l.TLEURLs {
		opts := []tle.FetcherOption{}
		if l.HTTPClient != nil {
			opts = append(opts, tle.WithHTTPClient(l.HTTPClient))
		}
		f := tle.NewFetcher(u, opts...)
		res := f.Fetch(ctx)
		if res.Error != nil {
			keep(f.Dataset(), res.Error)
			continue
		}
		if res.Rejected != nil {
			log.Debug("skipped malformed element sets from %s: %v", u, res.Rejected)
		}
		log.Debug("fetched %d element sets from %s in %v", len(res.Sets), u, res.Duration)
		sats = append(sats, res.Sets...)
	}

	if l.Horizons != nil && len(l.HorizonsBodies) > 0 {
		window := l.HorizonsWindow
		if window <= 0 {
			window = 24 * time.Hour
		}
		now := time.Now().UTC()
		if err := l.Horizons.Prefetch(ctx, l.HorizonsBodies, now.Add(-window/2), now.Add(window/2), 10*time.Minute, l.Observer); err != nil {
			rep.Warnings = append(rep.Warnings, err)
			log.Warn("horizons prefetch: %v", err)
		}
	}

	snap := NewSnapshot(stars, cons, sats, time.Now())
	rep.Stars, rep.Constellations, rep.Satellites = snap.Counts()
	rep.Duration = time.Since(start)
	return snap, rep, nil
}
