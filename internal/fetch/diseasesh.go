package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/lromero/covid-data-pipeline/internal/covid"
)

// DefaultBaseURL is the public disease.sh API root.
const DefaultBaseURL = "https://disease.sh"

// historicalDateLayout matches the API's date keys, e.g. "1/22/20".
const historicalDateLayout = "1/2/06"

// Client fetches the two disease.sh datasets the pipeline consumes: the
// global cumulative history and the per-country snapshot.
type Client struct {
	baseURL string
	client  *http.Client
	backoff backoffConfig
	circuit *gobreaker.CircuitBreaker
}

// NewClient builds a disease.sh client around the shared HTTP client.
// baseURL defaults to DefaultBaseURL when empty.
func NewClient(client *http.Client, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "diseasesh",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &Client{
		baseURL: baseURL,
		client:  client,
		backoff: backoffConfig{
			maxRetries:      3,
			initialInterval: 500 * time.Millisecond,
			maxInterval:     5 * time.Second,
		},
		circuit: cb,
	}
}

// FetchHistorical retrieves the full global cumulative time series. The API
// encodes it as two date-keyed maps; the result carries one point per date
// key, in no particular order. Keys that do not parse as dates are skipped.
func (c *Client) FetchHistorical(ctx context.Context) ([]covid.HistoricalPoint, error) {
	resp, err := c.getWithResilience(ctx, c.baseURL+"/v3/covid-19/historical/all?lastdays=all")
	if err != nil {
		return nil, fmt.Errorf("historical endpoint: %w", err)
	}
	defer resp.Body.Close()

	var payload struct {
		Cases  map[string]int64 `json:"cases"`
		Deaths map[string]int64 `json:"deaths"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode historical payload: %w", err)
	}

	points := make([]covid.HistoricalPoint, 0, len(payload.Cases))
	for key, cases := range payload.Cases {
		date, err := time.Parse(historicalDateLayout, key)
		if err != nil {
			continue
		}
		points = append(points, covid.HistoricalPoint{
			Date:   date.UTC(),
			Cases:  cases,
			Deaths: payload.Deaths[key],
		})
	}

	return points, nil
}

// FetchCountries retrieves the per-country snapshot. Countries with a null
// or absent population keep a nil Population.
func (c *Client) FetchCountries(ctx context.Context) ([]covid.CountryEntry, error) {
	resp, err := c.getWithResilience(ctx, c.baseURL+"/v3/covid-19/countries")
	if err != nil {
		return nil, fmt.Errorf("countries endpoint: %w", err)
	}
	defer resp.Body.Close()

	var countries []covid.CountryEntry
	if err := json.NewDecoder(resp.Body).Decode(&countries); err != nil {
		return nil, fmt.Errorf("decode countries payload: %w", err)
	}

	return countries, nil
}
