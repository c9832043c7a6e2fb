package tle

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// DefaultTimeout for HTTP requests.
const DefaultTimeout = 30 * time.Second

// Fetcher downloads one element set file, e.g. a CelesTrak group.
type Fetcher struct {
	client  *http.Client
	url     string
	dataset string
	timeout time.Duration
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithDataset overrides the dataset name derived from the URL.
func WithDataset(name string) FetcherOption {
	return func(f *Fetcher) {
		f.dataset = name
	}
}

// WithTimeout sets the HTTP request timeout.
func WithTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) FetcherOption {
	return func(f *Fetcher) {
		f.client = client
	}
}

// NewFetcher creates a fetcher for the element file at rawURL.
func NewFetcher(rawURL string, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		url:     rawURL,
		dataset: DatasetName(rawURL),
		timeout: DefaultTimeout,
	}

	for _, opt := range opts {
		opt(f)
	}

	if f.client == nil {
		f.client = &http.Client{
			Timeout: f.timeout,
		}
	}

	return f
}

// FetchResult contains the result of a fetch operation.
type FetchResult struct {
	Sets      []ElementSet
	RawBytes  []byte
	FetchedAt time.Time
	Duration  time.Duration
	Rejected  error // joined parse errors for skipped sets
	Error     error
}

// Fetch retrieves and parses the element file.
func (f *Fetcher) Fetch(ctx context.Context) FetchResult {
	start := time.Now()
	result := FetchResult{
		FetchedAt: start,
	}

	raw, err := f.fetchRaw(ctx)
	result.Duration = time.Since(start)
	if err != nil {
		result.Error = err
		return result
	}
	result.RawBytes = raw

	sets, perr := Parse(f.dataset, raw)
	result.Sets = sets
	result.Rejected = perr
	if len(sets) == 0 {
		result.Error = fmt.Errorf("no element sets in %s", f.url)
	}

	return result
}

func (f *Fetcher) fetchRaw(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", "ls-skymap/1.0 (sky map renderer)")
	req.Header.Set("Accept", "text/plain")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch elements: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	return body, nil
}

// URL returns the configured source URL.
func (f *Fetcher) URL() string {
	return f.url
}

// Dataset returns the dataset name used for object ids.
func (f *Fetcher) Dataset() string {
	return f.dataset
}

// LoadFile parses an element file from disk, naming the dataset after the
// file.
func LoadFile(name string) ([]ElementSet, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read elements: %w", err)
	}
	return Parse(DatasetName(name), data)
}

// DatasetName derives a dataset name from a file path or URL: the last path
// element without extension. CelesTrak "gp.php?GROUP=x" style URLs use the
// group name.
func DatasetName(source string) string {
	if u, err := url.Parse(source); err == nil && u.Scheme != "" && u.Host != "" {
		if g := u.Query().Get("GROUP"); g != "" {
			return strings.ToLower(g)
		}
		base := path.Base(u.Path)
		return strings.TrimSuffix(base, path.Ext(base))
	}
	base := filepath.Base(source)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
