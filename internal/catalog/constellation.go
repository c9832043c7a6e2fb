package catalog

import (
	"bufio"
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"strconv"
	"strings"
)

//go:embed data/constellationship.fab
var defaultFab []byte

// Constellation is a named stick figure: pairs of Hipparcos numbers.
type Constellation struct {
	Abbrev   string
	Segments [][2]int
}

// ID returns the element id used on the map, e.g. "constellation_Ori".
func (c Constellation) ID() string {
	return "constellation_" + c.Abbrev
}

// Name returns the full constellation name, or the abbreviation if unknown.
func (c Constellation) Name() string {
	if n, ok := constellationNames[c.Abbrev]; ok {
		return n
	}
	return c.Abbrev
}

// DefaultConstellations returns the built-in figures, which only reference
// stars in astro.DefaultStarCatalog.
func DefaultConstellations() []Constellation {
	cons, err := ParseConstellations(bytes.NewReader(defaultFab))
	if err != nil {
		panic("catalog: embedded constellationship.fab: " + err.Error())
	}
	return cons
}

// ParseConstellations reads the Stellarium constellationship.fab format:
// one constellation per line, "Abbrev N hip1 hip2 ... hip2N". Blank lines
// and lines starting with '#' are ignored.
func ParseConstellations(r io.Reader) ([]Constellation, error) {
	var out []Constellation
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		f := strings.Fields(line)
		if len(f) < 2 {
			return nil, fmt.Errorf("line %d: want abbreviation and segment count", lineNo)
		}
		n, err := strconv.Atoi(f[1])
		if err != nil || n < 0 {
			return nil, fmt.Errorf("line %d: segment count %q", lineNo, f[1])
		}
		if len(f) != 2+2*n {
			return nil, fmt.Errorf("line %d: %s declares %d segments but lists %d stars", lineNo, f[0], n, len(f)-2)
		}

		c := Constellation{Abbrev: f[0], Segments: make([][2]int, n)}
		for i := 0; i < n; i++ {
			a, errA := strconv.Atoi(f[2+2*i])
			b, errB := strconv.Atoi(f[3+2*i])
			if errA != nil || errB != nil {
				return nil, fmt.Errorf("line %d: %s segment %d is not numeric", lineNo, f[0], i+1)
			}
			c.Segments[i] = [2]int{a, b}
		}
		out = append(out, c)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

var constellationNames = map[string]string{
	"And": "Andromeda", "Aql": "Aquila", "Aqr": "Aquarius", "Ari": "Aries",
	"Aur": "Auriga", "Boo": "Bootes", "CMa": "Canis Major", "CMi": "Canis Minor",
	"Cas": "Cassiopeia", "Cen": "Centaurus", "Cep": "Cepheus", "Cet": "Cetus",
	"CrB": "Corona Borealis", "Cru": "Crux", "Crv": "Corvus", "Cyg": "Cygnus",
	"Dra": "Draco", "Gem": "Gemini", "Her": "Hercules", "Hya": "Hydra",
	"Leo": "Leo", "Lib": "Libra", "Lyr": "Lyra", "Oph": "Ophiuchus",
	"Ori": "Orion", "Peg": "Pegasus", "Per": "Perseus", "Psc": "Pisces",
	"Sco": "Scorpius", "Sgr": "Sagittarius", "Tau": "Taurus", "UMa": "Ursa Major",
	"UMi": "Ursa Minor", "Vir": "Virgo",
}
