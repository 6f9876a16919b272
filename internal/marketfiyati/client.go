// Package marketfiyati is a client for the marketfiyati.org.tr product
// search API.
package marketfiyati

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/soochol/marketfinder/internal/market"
)

// DefaultBaseURL is the production API root.
const DefaultBaseURL = "https://api.marketfiyati.org.tr"

const searchPath = "/api/v2/search"

// maxErrorBody caps how much of a failed response body is kept in StatusError.
const maxErrorBody = 4 * 1024

// maxResponseBody caps how much of a successful search response is read.
var maxResponseBody int64 = 8 << 20 // 8 MB

var (
	// ErrInvalidResponse is returned when the body is not a JSON object.
	ErrInvalidResponse = errors.New("invalid response format")
	// ErrNoContent is returned when the response has no content list.
	ErrNoContent = errors.New("no content in response")
)

// StatusError reports a non-2xx response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API request failed: %d %s", e.Code, e.Body)
}

// HeaderProfile is a set of request headers sent with a search.
type HeaderProfile map[string]string

var (
	// BasicHeaders is the minimal header set.
	BasicHeaders = HeaderProfile{
		"Content-Type": "application/json",
		"Accept":       "application/json",
		"User-Agent":   "Mozilla/5.0",
	}
	// BrowserHeaders imitates a desktop browser on marketfiyati.org.tr.
	BrowserHeaders = HeaderProfile{
		"Content-Type":    "application/json",
		"Accept":          "application/json",
		"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/135.0.0.0 Safari/537.36 OPR/120.0.0.0",
		"Accept-Language": "tr-TR,tr;q=0.9,en-US;q=0.8,en;q=0.7",
		"Origin":          "https://marketfiyati.org.tr",
		"Referer":         "https://marketfiyati.org.tr/",
	}
)

// searchRequest is the wire body. The page index goes in "pages".
type searchRequest struct {
	Keywords  string  `json:"keywords"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Distance  float64 `json:"distance"`
	Pages     int     `json:"pages"`
	Size      int     `json:"size"`
}

type searchResponse struct {
	Content []market.RawProduct `json:"content"`
}

// Client issues product searches. The zero value is not usable; use New.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

// New creates a Client for baseURL. An empty baseURL selects DefaultBaseURL.
func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{baseURL: baseURL, httpClient: http.DefaultClient, timeout: timeout}
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// Search posts q to the search endpoint once and returns the raw products.
// The request is aborted when the client timeout elapses.
func (c *Client) Search(ctx context.Context, q market.SearchQuery, headers HeaderProfile) ([]market.RawProduct, error) {
	payload := searchRequest{
		Keywords:  q.Keywords,
		Latitude:  q.Latitude,
		Longitude: q.Longitude,
		Distance:  q.DistanceKm,
		Pages:     q.PageIndex,
		Size:      q.PageSize,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}
	slog.Debug("market search", "payload", string(body))

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.baseURL+searchPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		slog.Error("market search failed", "status", resp.StatusCode, "body", string(errBody))
		return nil, &StatusError{Code: resp.StatusCode, Body: string(errBody)}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody+1))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if int64(len(data)) > maxResponseBody {
		return nil, fmt.Errorf("response exceeds %d bytes", maxResponseBody)
	}
	return decodeSearchResponse(data)
}

func decodeSearchResponse(data []byte) ([]market.RawProduct, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil || obj == nil {
		return nil, ErrInvalidResponse
	}
	raw, ok := obj["content"]
	if !ok || string(raw) == "null" {
		return nil, ErrNoContent
	}
	var sr searchResponse
	if err := json.Unmarshal(data, &sr); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return sr.Content, nil
}
