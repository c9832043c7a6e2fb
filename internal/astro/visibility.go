package astro

// Sun altitude thresholds in degrees.
const (
	// SunriseAltitude accounts for refraction and the solar semi-diameter.
	SunriseAltitude      = -0.833
	CivilTwilight        = -6.0
	NauticalTwilight     = -12.0
	AstronomicalTwilight = -18.0
)

// TwilightPhase classifies the sky by the Sun's altitude.
type TwilightPhase int

const (
	PhaseDay          TwilightPhase = iota // Sun above the horizon
	PhaseCivil                             // 0 to -6 degrees
	PhaseNautical                          // -6 to -12 degrees
	PhaseAstronomical                      // -12 to -18 degrees
	PhaseNight                             // below -18 degrees
)

// String returns the phase name.
func (p TwilightPhase) String() string {
	switch p {
	case PhaseDay:
		return "day"
	case PhaseCivil:
		return "civil twilight"
	case PhaseNautical:
		return "nautical twilight"
	case PhaseAstronomical:
		return "astronomical twilight"
	case PhaseNight:
		return "night"
	default:
		return "unknown"
	}
}

// GetTwilightPhase returns the phase for a given solar altitude.
func GetTwilightPhase(sunAltDeg float64) TwilightPhase {
	switch {
	case sunAltDeg >= SunriseAltitude:
		return PhaseDay
	case sunAltDeg >= CivilTwilight:
		return PhaseCivil
	case sunAltDeg >= NauticalTwilight:
		return PhaseNautical
	case sunAltDeg >= AstronomicalTwilight:
		return PhaseAstronomical
	default:
		return PhaseNight
	}
}

// Darkness maps solar altitude to [0, 1]: 0 in daylight, 1 in full night,
// continuous and non-decreasing as the Sun sinks.
func Darkness(sunAltDeg float64) float64 {
	switch {
	case sunAltDeg >= SunriseAltitude:
		return 0
	case sunAltDeg <= AstronomicalTwilight:
		return 1
	}
	return (SunriseAltitude - sunAltDeg) / (SunriseAltitude - AstronomicalTwilight)
}

// ElevationTier categorizes elevation for UI display.
type ElevationTier int

const (
	ElevationNone   ElevationTier = iota // Below horizon
	ElevationLow                         // 0-15 degrees
	ElevationMedium                      // 15-45 degrees
	ElevationHigh                        // 45+ degrees
)

// GetElevationTier returns the tier for a given elevation.
func GetElevationTier(elDeg float64) ElevationTier {
	switch {
	case elDeg <= 0:
		return ElevationNone
	case elDeg < 15:
		return ElevationLow
	case elDeg < 45:
		return ElevationMedium
	default:
		return ElevationHigh
	}
}
