package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/lacandula/weather-dashboard/internal/city"
)

// DefaultBaseURL is the goweather-style provider endpoint: GET <base>/<city>.
const DefaultBaseURL = "https://goweather.herokuapp.com/weather"

var (
	// ErrLocationNotFound means the provider returned no usable data for
	// either the raw city name or its suffix-stripped variant.
	ErrLocationNotFound = errors.New("location not found")

	// ErrFetch covers network and parse failures talking to the provider.
	ErrFetch = errors.New("weather fetch failed")
)

// Client fetches current conditions and a short forecast for a city by name.
type Client struct {
	baseURL string
	client  *http.Client
	backoff BackoffConfig
	circuit *gobreaker.CircuitBreaker
}

// NewClient creates a weather client against the given provider base URL.
// An empty baseURL selects DefaultBaseURL.
func NewClient(httpClient *http.Client, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "goweather",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &Client{
		baseURL: baseURL,
		client:  httpClient,
		backoff: BackoffConfig{
			// A single attempt per name variant; the only retry the fetch
			// contract allows is the suffix-stripped second call below.
			MaxRetries:      0,
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     5 * time.Second,
		},
		circuit: cb,
	}
}

// Fetch retrieves a Snapshot for cityName. If the provider response carries
// no temperature and the name ends with a "city" suffix, it retries exactly
// once with the suffix stripped before giving up with ErrLocationNotFound.
func (c *Client) Fetch(ctx context.Context, cityName string) (Snapshot, error) {
	snap, ok, err := c.fetchOnce(ctx, cityName)
	if err != nil {
		return Snapshot{}, err
	}
	if ok {
		return snap, nil
	}

	if stripped, had := city.StripCitySuffix(cityName); had {
		snap, ok, err = c.fetchOnce(ctx, stripped)
		if err != nil {
			return Snapshot{}, err
		}
		if ok {
			return snap, nil
		}
	}

	return Snapshot{}, fmt.Errorf("%w: %q", ErrLocationNotFound, cityName)
}

// fetchOnce performs a single provider call. ok is false when the response
// carried no temperature, the provider's only not-found signal: that covers
// a decoded body with an empty temperature field and any non-2xx response,
// since the provider has no documented error schema. Only transport-level
// failures and undecodable 2xx bodies surface as errors.
func (c *Client) fetchOnce(ctx context.Context, name string) (Snapshot, bool, error) {
	u := fmt.Sprintf("%s/%s", c.baseURL, url.PathEscape(name))

	resp, err := getWithResilience(ctx, c.client, c.circuit, c.backoff, u)
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	ok2xx := resp.StatusCode >= 200 && resp.StatusCode < 300

	var snap Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		if !ok2xx {
			return Snapshot{}, false, nil
		}
		return Snapshot{}, false, fmt.Errorf("%w: decoding response: %v", ErrFetch, err)
	}

	return snap, snap.Temperature != "", nil
}
