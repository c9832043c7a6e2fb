// Package tle parses two-line element sets, fetches them over HTTP and
// propagates them to topocentric positions with SGP4.
package tle

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrMalformed is returned for element sets that fail format checks.
	ErrMalformed = errors.New("malformed element set")

	// ErrStale is returned when the element set epoch is too far from the
	// requested instant.
	ErrStale = errors.New("element set is stale")

	// ErrPropagation is returned when SGP4 yields no usable position.
	ErrPropagation = errors.New("propagation failed")
)

// MaxElementAge bounds the distance between an element set's epoch and the
// propagation instant. Older sets are treated as unavailable.
const MaxElementAge = 30 * 24 * time.Hour

const lineLength = 69

// ElementSet is one satellite's orbital elements as published.
type ElementSet struct {
	Dataset       string // Source name, e.g. "stations"
	Name          string // Title line, may be empty
	CatalogNumber int    // NORAD catalog number
	Line1         string
	Line2         string
	Epoch         time.Time
}

// ID returns the object id "<dataset>_<catalogNumber>".
func (e ElementSet) ID() string {
	return e.Dataset + "_" + strconv.Itoa(e.CatalogNumber)
}

// Label returns the title line, falling back to the id.
func (e ElementSet) Label() string {
	if e.Name != "" {
		return e.Name
	}
	return e.ID()
}

// Age returns how far t lies from the element epoch (always >= 0).
func (e ElementSet) Age(t time.Time) time.Duration {
	d := t.Sub(e.Epoch)
	if d < 0 {
		d = -d
	}
	return d
}

// Parse reads element sets in two- or three-line form. Malformed sets are
// skipped; their errors are joined into the returned error so callers can
// log them while still using the good sets.
func Parse(dataset string, data []byte) ([]ElementSet, error) {
	var (
		sets []ElementSet
		errs []error
		name string
		l1   string
	)

	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), " \r\t")
		switch {
		case strings.TrimSpace(line) == "":
			continue
		case strings.HasPrefix(line, "1 "):
			l1 = line
		case strings.HasPrefix(line, "2 ") && l1 != "":
			set, err := ParseLines(dataset, name, l1, line)
			if err != nil {
				errs = append(errs, err)
			} else {
				sets = append(sets, set)
			}
			name, l1 = "", ""
		default:
			name = strings.TrimSpace(strings.TrimPrefix(line, "0 "))
			l1 = ""
		}
	}
	if err := sc.Err(); err != nil {
		errs = append(errs, err)
	}

	return sets, errors.Join(errs...)
}

// ParseLines validates and parses a single element set.
func ParseLines(dataset, name, line1, line2 string) (ElementSet, error) {
	line1 = strings.TrimRight(line1, " \r")
	line2 = strings.TrimRight(line2, " \r")

	if len(line1) != lineLength || len(line2) != lineLength {
		return ElementSet{}, fmt.Errorf("%w: %q: line length %d/%d", ErrMalformed, name, len(line1), len(line2))
	}
	if line1[0] != '1' || line2[0] != '2' {
		return ElementSet{}, fmt.Errorf("%w: %q: bad line numbers", ErrMalformed, name)
	}
	for i, l := range []string{line1, line2} {
		if !validChecksum(l) {
			return ElementSet{}, fmt.Errorf("%w: %q: checksum mismatch on line %d", ErrMalformed, name, i+1)
		}
	}

	num1, err1 := strconv.Atoi(strings.TrimSpace(line1[2:7]))
	num2, err2 := strconv.Atoi(strings.TrimSpace(line2[2:7]))
	if err1 != nil || err2 != nil || num1 != num2 {
		return ElementSet{}, fmt.Errorf("%w: %q: catalog numbers %q/%q", ErrMalformed, name, line1[2:7], line2[2:7])
	}

	epoch, err := parseEpoch(line1[18:32])
	if err != nil {
		return ElementSet{}, fmt.Errorf("%w: %q: %v", ErrMalformed, name, err)
	}

	if err := checkElements(line2); err != nil {
		return ElementSet{}, fmt.Errorf("%w: %q: %v", ErrMalformed, name, err)
	}

	return ElementSet{
		Dataset:       dataset,
		Name:          name,
		CatalogNumber: num1,
		Line1:         line1,
		Line2:         line2,
		Epoch:         epoch,
	}, nil
}

// validChecksum checks the modulo-10 checksum in column 69: digits count at
// face value, minus signs as one.
func validChecksum(line string) bool {
	sum := 0
	for _, c := range line[:lineLength-1] {
		switch {
		case c >= '0' && c <= '9':
			sum += int(c - '0')
		case c == '-':
			sum++
		}
	}
	want := line[lineLength-1]
	return want >= '0' && want <= '9' && sum%10 == int(want-'0')
}

// parseEpoch decodes the YYDDD.DDDDDDDD epoch field.
func parseEpoch(field string) (time.Time, error) {
	field = strings.TrimSpace(field)
	if len(field) < 5 {
		return time.Time{}, fmt.Errorf("epoch %q too short", field)
	}
	yy, err := strconv.Atoi(field[:2])
	if err != nil {
		return time.Time{}, fmt.Errorf("epoch year %q: %w", field[:2], err)
	}
	day, err := strconv.ParseFloat(field[2:], 64)
	if err != nil || day < 1 || day >= 367 {
		return time.Time{}, fmt.Errorf("epoch day %q", field[2:])
	}

	year := 2000 + yy
	if yy >= 57 {
		year = 1900 + yy
	}
	start := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	return start.Add(time.Duration((day - 1) * float64(24*time.Hour))), nil
}

// checkElements verifies the line 2 numeric fields before they reach the
// propagator.
func checkElements(line2 string) error {
	fields := []struct {
		name     string
		from, to int
	}{
		{"inclination", 8, 16},
		{"raan", 17, 25},
		{"arg of perigee", 34, 42},
		{"mean anomaly", 43, 51},
		{"mean motion", 52, 63},
	}
	for _, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(line2[f.from:f.to]), 64)
		if err != nil || math.IsNaN(v) {
			return fmt.Errorf("%s %q", f.name, line2[f.from:f.to])
		}
		if f.name == "mean motion" && v <= 0 {
			return fmt.Errorf("mean motion %v", v)
		}
	}

	ecc, err := strconv.ParseFloat("0."+strings.TrimSpace(line2[26:33]), 64)
	if err != nil || ecc >= 1 {
		return fmt.Errorf("eccentricity %q", line2[26:33])
	}
	return nil
}
