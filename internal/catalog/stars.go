package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/litescript/ls-skymap/internal/astro"
)

// FilterStars returns the stars with magnitude <= maxMag, in input order.
// Fainter stars are excluded outright; filtering twice with the same limit
// gives the same set.
func FilterStars(stars []astro.Star, maxMag float64) []astro.Star {
	out := make([]astro.Star, 0, len(stars))
	for _, s := range stars {
		if s.Mag <= maxMag {
			out = append(out, s)
		}
	}
	return out
}

// Hipparcos main catalogue (hip_main.dat) field positions.
const (
	hipFieldHIP  = 1
	hipFieldVmag = 5
	hipFieldRA   = 8
	hipFieldDec  = 9
	hipMinFields = 10
)

// LoadHipparcos reads the pipe-separated Hipparcos main catalogue and keeps
// stars brighter than or equal to maxMag. Records without astrometry are
// skipped. Common names are taken from the built-in bright star list.
func LoadHipparcos(r io.Reader, maxMag float64) ([]astro.Star, error) {
	names := make(map[int]string)
	for _, s := range astro.DefaultStarCatalog().Stars {
		names[s.HIP] = s.Name
	}

	cr := csv.NewReader(r)
	cr.Comma = '|'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	var stars []astro.Star
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("hipparcos line %d: %w", line, err)
		}
		if len(rec) < hipMinFields {
			continue
		}

		hip, err := strconv.Atoi(strings.TrimSpace(rec[hipFieldHIP]))
		if err != nil {
			continue
		}
		mag, errM := strconv.ParseFloat(strings.TrimSpace(rec[hipFieldVmag]), 64)
		ra, errR := strconv.ParseFloat(strings.TrimSpace(rec[hipFieldRA]), 64)
		dec, errD := strconv.ParseFloat(strings.TrimSpace(rec[hipFieldDec]), 64)
		if errM != nil || errR != nil || errD != nil || mag > maxMag {
			continue
		}

		stars = append(stars, astro.Star{HIP: hip, Name: names[hip], RAdeg: ra, DecDeg: dec, Mag: mag})
	}

	if len(stars) == 0 {
		return nil, errors.New("hipparcos: no usable records")
	}
	return stars, nil
}
