package travel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/yukeru/gelande/internal/resort"
)

const httpTimeout = 10 * time.Second

// defaultCallSpacing is the minimum gap between live routing calls, kept to
// stay inside the upstream rate limit.
const defaultCallSpacing = 150 * time.Millisecond

// ErrNoCredentials is returned when no routing API key is configured.
// The estimator treats it like any other routing failure.
var ErrNoCredentials = errors.New("routing: no API key configured")

// RouterClient calls the external directions service. A zero API key never
// issues a request; the caller falls back to the geometric estimate.
type RouterClient struct {
	apiKey  string
	baseURL string
	client  *http.Client

	mu       sync.Mutex
	lastCall time.Time
	spacing  time.Duration
}

const orsDefaultURL = "https://api.openrouteservice.org/v2/directions/driving-car"

// NewRouterClient constructs a RouterClient with the given API key.
func NewRouterClient(apiKey string) *RouterClient {
	return &RouterClient{
		apiKey:  apiKey,
		baseURL: orsDefaultURL,
		client:  &http.Client{Timeout: httpTimeout},
		spacing: defaultCallSpacing,
	}
}

// NewRouterClientWithURL constructs a RouterClient pointing at a custom base
// URL with no inter-call spacing (for tests).
func NewRouterClientWithURL(baseURL, apiKey string) *RouterClient {
	return &RouterClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: httpTimeout},
	}
}

type orsResponse struct {
	Features []struct {
		Properties struct {
			Summary struct {
				Distance float64 `json:"distance"` // meters
				Duration float64 `json:"duration"` // seconds
			} `json:"summary"`
		} `json:"properties"`
	} `json:"features"`
}

// Route fetches driving distance and duration from origin to dest.
// Calls from concurrent workers are serialized and spaced to respect the
// upstream rate limit.
func (c *RouterClient) Route(ctx context.Context, origin, dest resort.Coordinate) (distanceKM float64, minutes int, err error) {
	if c.apiKey == "" {
		return 0, 0, ErrNoCredentials
	}

	c.throttle()

	endpoint := fmt.Sprintf("%s?api_key=%s&start=%f,%f&end=%f,%f",
		c.baseURL, c.apiKey, origin.Lon, origin.Lat, dest.Lon, dest.Lat)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("creating routing request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("routing call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, 0, fmt.Errorf("routing call returned status %d", resp.StatusCode)
	}

	var raw orsResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return 0, 0, fmt.Errorf("decoding routing response: %w", err)
	}
	if len(raw.Features) == 0 {
		return 0, 0, errors.New("routing response contained no routes")
	}

	summary := raw.Features[0].Properties.Summary
	return summary.Distance / 1000, int(math.Round(summary.Duration / 60)), nil
}

// throttle blocks until the minimum spacing since the previous live call
// has elapsed.
func (c *RouterClient) throttle() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.spacing > 0 {
		if wait := c.spacing - time.Since(c.lastCall); wait > 0 {
			time.Sleep(wait)
		}
	}
	c.lastCall = time.Now()
}
