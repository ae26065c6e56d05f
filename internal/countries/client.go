package countries

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"geoquiz/internal/model"
)

// DefaultBaseURL is the public REST Countries catalog endpoint.
const DefaultBaseURL = "https://restcountries.com/v3.1"

// fetchTimeout bounds the catalog request; past it the request is
// cancelled and the round start fails.
const fetchTimeout = 12 * time.Second

// defaultFields covers every category; lightFields is the minimal payload
// for flag-only rounds. translations and cca2 ride along in both so names
// prefer English and IDs stay stable.
var defaultFields = []string{
	"name", "translations", "cca2", "flags", "capital",
	"region", "subregion", "currencies", "languages",
}

var lightFields = []string{"name", "translations", "flags", "cca2"}

// Client fetches and normalizes the country catalog.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a catalog client. baseURL of "" uses the public API.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: fetchTimeout,
		},
	}
}

// FetchAll returns the full normalized catalog, deduplicated, for
// capital/region/currency/language rounds.
func (c *Client) FetchAll(ctx context.Context) ([]model.Country, error) {
	return c.fetch(ctx, defaultFields)
}

// FetchLight returns the minimal catalog (name + flag + stable ID) for
// flag rounds.
func (c *Client) FetchLight(ctx context.Context) ([]model.Country, error) {
	return c.fetch(ctx, lightFields)
}

func (c *Client) fetch(ctx context.Context, fields []string) ([]model.Country, error) {
	raw, err := c.fetchRaw(ctx, c.buildURL(fields))
	if err != nil {
		return nil, err
	}

	normalized := make([]*model.Country, 0, len(raw))
	for _, rec := range raw {
		normalized = append(normalized, Normalize(rec))
	}
	return DedupeAndClean(normalized), nil
}

// buildURL joins a sorted, deduplicated field list onto the catalog path.
// v=2 busts intermediate caches that ignore Cache-Control.
func (c *Client) buildURL(fields []string) string {
	unique := make([]string, 0, len(fields))
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		unique = append(unique, f)
	}
	sort.Strings(unique)
	return fmt.Sprintf("%s/all?fields=%s&v=2", c.baseURL, strings.Join(unique, ","))
}

func (c *Client) fetchRaw(ctx context.Context, url string) ([]map[string]interface{}, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept-Language", "en,en-US;q=0.9")
	req.Header.Set("Cache-Control", "no-store")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("countries fetch failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("countries API error %d", resp.StatusCode)
	}

	var raw []map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse catalog response: %w", err)
	}
	return raw, nil
}
