package ephem

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/litescript/ls-skymap/internal/astro"
)

const (
	// HorizonsAPIURL is the JPL Horizons JSON API endpoint.
	HorizonsAPIURL = "https://ssd.jpl.nasa.gov/api/horizons.api"

	// DefaultTableSpan is the default time span fetched per body.
	DefaultTableSpan = 48 * time.Hour

	// DefaultTableStep is the default step between table rows.
	DefaultTableStep = 30 * time.Minute

	// TableTTL is how long a fetched table is served before it is considered stale.
	TableTTL = 24 * time.Hour

	// RequestTimeout is the HTTP request timeout.
	RequestTimeout = 30 * time.Second
)

// HorizonsProvider serves positions from RA/Dec tables pre-fetched from JPL
// Horizons. Position never touches the network; Prefetch does.
//
// The fetched tables form an immutable Tables value that Prefetch replaces
// as a whole. Pin a provider with Pin to answer several queries from one
// generation.
type HorizonsProvider struct {
	client  *http.Client
	baseURL string

	current atomic.Pointer[Tables]
	fetchMu sync.Mutex // serializes Prefetch and InvalidateCache
}

// cachedTable stores a fetched ephemeris table for one body.
type cachedTable struct {
	path      EphemerisPath
	observer  astro.Observer
	fetchedAt time.Time
}

// Tables is one generation of fetched Horizons tables. It is never
// modified after it is published and implements Provider.
type Tables struct {
	tables map[string]*cachedTable
}

// HorizonsOption configures a HorizonsProvider.
type HorizonsOption func(*HorizonsProvider)

// WithHorizonsURL overrides the API endpoint.
func WithHorizonsURL(u string) HorizonsOption {
	return func(p *HorizonsProvider) {
		p.baseURL = u
	}
}

// WithHorizonsClient sets a custom HTTP client.
func WithHorizonsClient(c *http.Client) HorizonsOption {
	return func(p *HorizonsProvider) {
		p.client = c
	}
}

// NewHorizonsProvider creates a new Horizons API client.
func NewHorizonsProvider(opts ...HorizonsOption) *HorizonsProvider {
	p := &HorizonsProvider{
		client: &http.Client{
			Timeout: RequestTimeout,
		},
		baseURL: HorizonsAPIURL,
	}
	p.current.Store(&Tables{})
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Tables returns the current table generation.
func (p *HorizonsProvider) Tables() *Tables {
	return p.current.Load()
}

// Name implements Provider.
func (p *HorizonsProvider) Name() string {
	return "Horizons"
}

// Position implements Provider. RA/Dec are interpolated from the cached
// table and converted to Az/El locally.
func (p *HorizonsProvider) Position(body string, t time.Time, obs astro.Observer) (EphemerisPoint, error) {
	return p.Tables().Position(body, t, obs)
}

// Available implements Provider.
func (p *HorizonsProvider) Available(body string) bool {
	return p.Tables().Available(body)
}

// Prefetch fetches a table for each body covering [start, end] and publishes
// them together with the tables of other bodies already held. Bodies that
// fail are reported in the returned error; the rest are published.
func (p *HorizonsProvider) Prefetch(ctx context.Context, bodies []string, start, end time.Time, step time.Duration, obs astro.Observer) error {
	p.fetchMu.Lock()
	defer p.fetchMu.Unlock()

	next := p.Tables().clone()
	var failed []string
	for _, name := range bodies {
		b, ok := LookupBody(name)
		if !ok {
			failed = append(failed, name)
			continue
		}

		path, err := p.queryHorizons(ctx, b, start, end, step, obs)
		if err != nil {
			failed = append(failed, fmt.Sprintf("%s (%v)", b.Name, err))
			continue
		}

		next.tables[b.Name] = &cachedTable{
			path:      path,
			observer:  obs,
			fetchedAt: time.Now(),
		}
	}
	p.current.Store(next)

	if len(failed) > 0 {
		return fmt.Errorf("horizons prefetch failed for %s", strings.Join(failed, ", "))
	}
	return nil
}

// InvalidateCache drops the table for a body from future generations.
func (p *HorizonsProvider) InvalidateCache(body string) {
	b, ok := LookupBody(body)
	if !ok {
		return
	}
	p.fetchMu.Lock()
	defer p.fetchMu.Unlock()

	next := p.Tables().clone()
	delete(next.tables, b.Name)
	p.current.Store(next)
}

func (ts *Tables) clone() *Tables {
	next := &Tables{tables: make(map[string]*cachedTable, len(ts.tables)+1)}
	for k, v := range ts.tables {
		next.tables[k] = v
	}
	return next
}

// Name implements Provider.
func (ts *Tables) Name() string {
	return "Horizons"
}

// Position implements Provider.
func (ts *Tables) Position(body string, t time.Time, obs astro.Observer) (EphemerisPoint, error) {
	b, ok := LookupBody(body)
	if !ok {
		return EphemerisPoint{Valid: false}, fmt.Errorf("%w: %q", ErrUnknownBody, body)
	}

	cached, ok := ts.tables[b.Name]
	if !ok || time.Since(cached.fetchedAt) > TableTTL || !observerMatch(cached.observer, obs) {
		return EphemerisPoint{Valid: false}, fmt.Errorf("%w: %s", ErrNotCached, b.Name)
	}

	coord, ok := interpolate(cached.path.Points, t)
	if !ok {
		return EphemerisPoint{Valid: false}, fmt.Errorf("%w: %s at %s", ErrNotCached, b.Name, t.UTC().Format(time.RFC3339))
	}

	return EphemerisPoint{
		Time:  t,
		Coord: astro.EquatorialToHorizontal(coord, obs, t),
		Valid: true,
	}, nil
}

// Available implements Provider.
func (ts *Tables) Available(body string) bool {
	b, ok := LookupBody(body)
	if !ok {
		return false
	}
	_, cached := ts.tables[b.Name]
	return cached
}

// queryHorizons makes a request to the Horizons API.
func (p *HorizonsProvider) queryHorizons(ctx context.Context, b Body, start, end time.Time, step time.Duration, obs astro.Observer) (EphemerisPath, error) {
	// Values must be quoted with single quotes
	params := url.Values{}
	params.Set("format", "json")
	params.Set("COMMAND", fmt.Sprintf("'%d'", b.NAIFID))
	params.Set("OBJ_DATA", "NO")
	params.Set("MAKE_EPHEM", "YES")
	params.Set("EPHEM_TYPE", "OBSERVER")
	params.Set("CENTER", "'coord@399'")
	params.Set("COORD_TYPE", "GEODETIC")
	params.Set("SITE_COORD", fmt.Sprintf("'%.4f,%.4f,%.3f'", obs.LonDeg, obs.LatDeg, obs.ElevationM/1000))
	params.Set("START_TIME", fmt.Sprintf("'%s'", formatHorizonsTime(start)))
	params.Set("STOP_TIME", fmt.Sprintf("'%s'", formatHorizonsTime(end)))
	params.Set("STEP_SIZE", fmt.Sprintf("'%s'", formatStepSize(step)))
	params.Set("ANG_FORMAT", "DEG")
	params.Set("QUANTITIES", "'2,20'") // 2=apparent RA/Dec, 20=observer range

	reqURL := p.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return EphemerisPath{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return EphemerisPath{}, fmt.Errorf("horizons request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return EphemerisPath{}, fmt.Errorf("horizons returned status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return EphemerisPath{}, fmt.Errorf("failed to read response: %w", err)
	}

	return parseHorizonsResponse(b.Name, body)
}

// horizonsResponse represents the JSON API response.
type horizonsResponse struct {
	Signature struct {
		Version string `json:"version"`
		Source  string `json:"source"`
	} `json:"signature"`
	Result string `json:"result"`
	Error  string `json:"error"`
}

// parseHorizonsResponse parses the Horizons JSON response.
func parseHorizonsResponse(body string, data []byte) (EphemerisPath, error) {
	var resp horizonsResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return EphemerisPath{}, fmt.Errorf("failed to parse JSON: %w", err)
	}
	if resp.Error != "" {
		return EphemerisPath{}, fmt.Errorf("horizons error: %s", resp.Error)
	}

	points, err := parseEphemerisTable(resp.Result)
	if err != nil {
		return EphemerisPath{}, err
	}

	path := EphemerisPath{
		Body:   body,
		Points: points,
	}
	if len(points) > 0 {
		path.Start = points[0].Time
		path.End = points[len(points)-1].Time
	}
	return path, nil
}

// parseEphemerisTable extracts ephemeris points from the Horizons text output.
func parseEphemerisTable(result string) ([]EphemerisPoint, error) {
	soeIdx := strings.Index(result, "$$SOE")
	eoeIdx := strings.Index(result, "$$EOE")
	if soeIdx == -1 || eoeIdx == -1 || soeIdx >= eoeIdx {
		return nil, fmt.Errorf("could not find ephemeris data markers")
	}

	var points []EphemerisPoint
	for _, line := range strings.Split(result[soeIdx+5:eoeIdx], "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		point, err := parseEphemerisLine(line)
		if err != nil {
			continue // Skip unparseable lines
		}
		points = append(points, point)
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Time.Before(points[j].Time) })
	return points, nil
}

// parseEphemerisLine parses a single ephemeris data line.
// Format for QUANTITIES='2,20' with ANG_FORMAT=DEG:
// 2025-Dec-05 00:00 *m  211.123456 -10.123456  1.52345678901234  -2.1234567
// Fields: date, time, flags, RA, Dec, delta (AU), deldot (km/s)
func parseEphemerisLine(line string) (EphemerisPoint, error) {
	fields := strings.Fields(line)
	if len(fields) < 4 {
		return EphemerisPoint{}, fmt.Errorf("insufficient fields: %d", len(fields))
	}

	t, err := parseHorizonsDateTime(fields[0] + " " + fields[1])
	if err != nil {
		return EphemerisPoint{}, err
	}

	// Skip flag fields (like *, *m, Cm, Nm, Am) and collect numbers.
	var nums []float64
	for _, f := range fields[2:] {
		val, err := strconv.ParseFloat(f, 64)
		if err == nil {
			nums = append(nums, val)
		}
	}
	if len(nums) < 2 {
		return EphemerisPoint{}, fmt.Errorf("could not find RA/Dec values")
	}

	coord := astro.SkyCoord{RAdeg: nums[0], DecDeg: nums[1]}
	if len(nums) >= 3 {
		coord.RangeKm = astro.AUToKm(nums[2])
	}
	return EphemerisPoint{Time: t, Coord: coord, Valid: true}, nil
}

// interpolate returns the RA/Dec at t by linear interpolation between the
// bracketing table rows. RA is unwrapped across 0/360.
func interpolate(points []EphemerisPoint, t time.Time) (astro.SkyCoord, bool) {
	n := len(points)
	if n == 0 || t.Before(points[0].Time) || t.After(points[n-1].Time) {
		return astro.SkyCoord{}, false
	}
	i := sort.Search(n, func(i int) bool { return !points[i].Time.Before(t) })
	if points[i].Time.Equal(t) || i == 0 {
		return points[i].Coord, true
	}

	a, b := points[i-1], points[i]
	f := float64(t.Sub(a.Time)) / float64(b.Time.Sub(a.Time))

	dRA := b.Coord.RAdeg - a.Coord.RAdeg
	if dRA > 180 {
		dRA -= 360
	} else if dRA < -180 {
		dRA += 360
	}
	ra := math.Mod(a.Coord.RAdeg+f*dRA+360, 360)

	return astro.SkyCoord{
		RAdeg:   ra,
		DecDeg:  a.Coord.DecDeg + f*(b.Coord.DecDeg-a.Coord.DecDeg),
		RangeKm: a.Coord.RangeKm + f*(b.Coord.RangeKm-a.Coord.RangeKm),
	}, true
}

// parseHorizonsDateTime parses Horizons date format like "2025-Dec-05 00:00".
func parseHorizonsDateTime(s string) (time.Time, error) {
	for _, layout := range []string{"2006-Jan-02 15:04", "2006-Jan-02 15:04:05", "2006-Jan-02 15:04:05.000"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date: %s", s)
}

// formatHorizonsTime formats a time for Horizons API.
func formatHorizonsTime(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04")
}

// formatStepSize formats a duration as a Horizons step size.
func formatStepSize(d time.Duration) string {
	minutes := int(d.Minutes())
	if minutes < 1 {
		minutes = 1
	}
	if minutes >= 60 && minutes%60 == 0 {
		return fmt.Sprintf("%d h", minutes/60)
	}
	return fmt.Sprintf("%d m", minutes)
}

// observerMatch checks if two observers are close enough to share cache.
func observerMatch(a, b astro.Observer) bool {
	const tolerance = 0.1 // degrees
	return math.Abs(a.LatDeg-b.LatDeg) <= tolerance && math.Abs(a.LonDeg-b.LonDeg) <= tolerance
}
