package ephem

import (
	"strings"
)

// BodyClass distinguishes the kinds of solar-system body.
type BodyClass int

const (
	ClassSun BodyClass = iota
	ClassMoon
	ClassPlanet
)

// Body contains mapping information for a solar-system body.
type Body struct {
	Name   string    // Request name (e.g., "mars_barycenter")
	Label  string    // Display name
	Class  BodyClass // Sun, Moon or planet
	Planet string    // Key for analytic orbital elements
	NAIFID int       // NAIF SPICE ID used as the Horizons command
}

const barycenterSuffix = "_barycenter"

// planetNAIF maps planet names to their body-centre NAIF IDs. The
// barycenter of planet N is NAIF N, the body itself N99.
var planetNAIF = map[string]int{
	"mercury": 199,
	"venus":   299,
	"mars":    499,
	"jupiter": 599,
	"saturn":  699,
	"uranus":  799,
	"neptune": 899,
	"pluto":   999,
}

// DefaultBodies is the body list drawn when a request names none.
var DefaultBodies = []string{
	"sun", "moon", "venus", "mars_barycenter", "jupiter_barycenter",
	"saturn_barycenter", "uranus_barycenter", "neptune_barycenter", "pluto_barycenter",
}

// LookupBody resolves a request name, accepting a "_barycenter" suffix on
// planet names. Lookup is case-insensitive; the returned Name is lower case.
func LookupBody(name string) (Body, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "sun":
		return Body{Name: name, Label: "Sun", Class: ClassSun, NAIFID: 10}, true
	case "moon":
		return Body{Name: name, Label: "Moon", Class: ClassMoon, NAIFID: 301}, true
	}

	planet := strings.TrimSuffix(name, barycenterSuffix)
	id, ok := planetNAIF[planet]
	if !ok {
		return Body{}, false
	}
	if planet != name {
		id /= 100
	}
	return Body{
		Name:   name,
		Label:  strings.ToUpper(planet[:1]) + planet[1:],
		Class:  ClassPlanet,
		Planet: planet,
		NAIFID: id,
	}, true
}
