package ephem

import (
	"fmt"
	"time"

	"github.com/litescript/ls-skymap/internal/astro"
)

// AnalyticProvider computes positions locally: Meeus series for the Sun
// and Moon, Keplerian elements for the planets.
type AnalyticProvider struct{}

// NewAnalyticProvider creates a provider that needs no network access.
func NewAnalyticProvider() *AnalyticProvider {
	return &AnalyticProvider{}
}

// Name implements Provider.
func (p *AnalyticProvider) Name() string {
	return "Analytic"
}

// Position implements Provider.
func (p *AnalyticProvider) Position(body string, t time.Time, obs astro.Observer) (EphemerisPoint, error) {
	b, ok := LookupBody(body)
	if !ok {
		return EphemerisPoint{Valid: false}, fmt.Errorf("%w: %q", ErrUnknownBody, body)
	}

	var geo astro.SkyCoord
	switch b.Class {
	case ClassSun:
		geo = astro.SunCoord(t)
	case ClassMoon:
		geo = astro.MoonPosition(t)
	default:
		geo, ok = astro.PlanetPosition(b.Planet, t)
		if !ok {
			return EphemerisPoint{Valid: false}, fmt.Errorf("%w: no elements for %q", ErrUnknownBody, b.Planet)
		}
	}

	topo := astro.Topocentric(geo, obs, t)
	return EphemerisPoint{
		Time:  t,
		Coord: astro.EquatorialToHorizontal(topo, obs, t),
		Valid: true,
	}, nil
}

// Available implements Provider.
func (p *AnalyticProvider) Available(body string) bool {
	_, ok := LookupBody(body)
	return ok
}
