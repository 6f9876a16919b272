// Package geocode resolves free-text locations to coordinates using the
// OpenStreetMap Nominatim search API.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/soochol/marketfinder/internal/market"
)

// DefaultBaseURL is the public Nominatim instance.
const DefaultBaseURL = "https://nominatim.openstreetmap.org"

// DefaultUserAgent identifies this service to Nominatim, which rejects
// requests without one.
const DefaultUserAgent = "market-finder/1.0"

// maxResponseBody caps how much of a search response is decoded.
const maxResponseBody = 1 << 20

var (
	// ErrNotFound is returned when the query has no match.
	ErrNotFound = errors.New("location not found")
	// ErrInvalidCoordinates is returned when a match carries lat/lon text
	// that is not a finite number.
	ErrInvalidCoordinates = errors.New("invalid coordinate data")
)

// StatusError reports a non-2xx response.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("geocoding request failed: HTTP %d", e.Code)
}

type place struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Nominatim is a forward geocoder.
type Nominatim struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	timeout    time.Duration
}

// NewNominatim creates a geocoder. Empty values select the defaults.
func NewNominatim(baseURL, userAgent string, timeout time.Duration) *Nominatim {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Nominatim{baseURL: baseURL, userAgent: userAgent, httpClient: http.DefaultClient, timeout: timeout}
}

// WithHTTPClient replaces the underlying HTTP client.
func (n *Nominatim) WithHTTPClient(hc *http.Client) *Nominatim {
	n.httpClient = hc
	return n
}

// Forward returns the coordinates of the best match for location.
func (n *Nominatim) Forward(ctx context.Context, location string) (market.GeoCoordinates, error) {
	q := url.Values{}
	q.Set("q", location)
	q.Set("format", "json")
	q.Set("limit", "1")

	reqCtx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, n.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return market.GeoCoordinates{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", n.userAgent)

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return market.GeoCoordinates{}, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return market.GeoCoordinates{}, &StatusError{Code: resp.StatusCode}
	}

	var places []place
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBody)).Decode(&places); err != nil {
		return market.GeoCoordinates{}, fmt.Errorf("decode response: %w", err)
	}
	if len(places) == 0 {
		return market.GeoCoordinates{}, ErrNotFound
	}
	return parseCoordinates(places[0])
}

func parseCoordinates(p place) (market.GeoCoordinates, error) {
	lat, err := parseDegrees(p.Lat)
	if err != nil {
		return market.GeoCoordinates{}, fmt.Errorf("%w: lat %q", ErrInvalidCoordinates, p.Lat)
	}
	lon, err := parseDegrees(p.Lon)
	if err != nil {
		return market.GeoCoordinates{}, fmt.Errorf("%w: lon %q", ErrInvalidCoordinates, p.Lon)
	}
	return market.GeoCoordinates{Latitude: lat, Longitude: lon}, nil
}

func parseDegrees(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("not finite: %v", v)
	}
	return v, nil
}
