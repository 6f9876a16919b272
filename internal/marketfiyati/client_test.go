package marketfiyati

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/soochol/marketfinder/internal/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch_PayloadAndHeaders(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v2/search", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "Mozilla/5.0", r.Header.Get("User-Agent"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"content":[{"title":"Milk","productDepotInfoList":[{"price":30,"marketAdi":"A"}]}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	products, err := c.Search(context.Background(), market.SearchQuery{
		Keywords: "süt", Latitude: 41.1, Longitude: 29.2, DistanceKm: 5, PageIndex: 2, PageSize: 24,
	}, BasicHeaders)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Milk", products[0].Title)

	assert.Equal(t, "süt", got["keywords"])
	assert.Equal(t, 41.1, got["latitude"])
	assert.Equal(t, 29.2, got["longitude"])
	assert.Equal(t, 5.0, got["distance"])
	assert.Equal(t, 2.0, got["pages"])
	assert.Equal(t, 24.0, got["size"])
	_, hasPage := got["page"]
	assert.False(t, hasPage)
}

func TestSearch_BrowserHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "https://marketfiyati.org.tr", r.Header.Get("Origin"))
		assert.Equal(t, "https://marketfiyati.org.tr/", r.Header.Get("Referer"))
		assert.NotEmpty(t, r.Header.Get("Accept-Language"))
		w.Write([]byte(`{"content":[]}`))
	}))
	defer srv.Close()

	products, err := New(srv.URL, time.Second).Search(context.Background(), market.SearchQuery{}, BrowserHeaders)
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestSearch_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("maintenance"))
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).Search(context.Background(), market.SearchQuery{}, BasicHeaders)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 503, se.Code)
	assert.Equal(t, "API request failed: 503 maintenance", se.Error())
}

func TestSearch_ResponseShapes(t *testing.T) {
	cases := []struct {
		name string
		body string
		want error
	}{
		{"missing content", `{"numberOfFound":0}`, ErrNoContent},
		{"null content", `{"content":null}`, ErrNoContent},
		{"array body", `[]`, ErrInvalidResponse},
		{"null body", `null`, ErrInvalidResponse},
		{"not json", `<html>`, ErrInvalidResponse},
		{"content not a list", `{"content":"x"}`, ErrInvalidResponse},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := New(srv.URL, time.Second).Search(context.Background(), market.SearchQuery{}, BasicHeaders)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestSearch_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	start := time.Now()
	_, err := New(srv.URL, 50*time.Millisecond).Search(context.Background(), market.SearchQuery{}, BasicHeaders)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestSearch_ResponseTooLarge(t *testing.T) {
	old := maxResponseBody
	maxResponseBody = 64
	t.Cleanup(func() { maxResponseBody = old })

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"content":[{"title":"` + strings.Repeat("x", 128) + `"}]}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).Search(context.Background(), market.SearchQuery{}, BasicHeaders)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "response exceeds 64 bytes")
}
