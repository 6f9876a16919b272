package tools

import (
	"context"

	"github.com/soochol/marketfinder/internal/market"
	"github.com/soochol/marketfinder/internal/marketfiyati"
	"github.com/soochol/marketfinder/internal/session"
)

// ProductSearcher runs one price search.
type ProductSearcher interface {
	Search(ctx context.Context, q market.SearchQuery, headers marketfiyati.HeaderProfile) ([]market.RawProduct, error)
}

// Geocoder resolves a free-text location.
type Geocoder interface {
	Forward(ctx context.Context, location string) (market.GeoCoordinates, error)
}

// Texts returned to agents.
const (
	msgNoProducts         = "No products found."
	msgSearchFailed       = "Failed to search for products."
	msgLocationNotFound   = "Location not found."
	msgGeocodeFailed      = "Error occurred while retrieving coordinates."
	msgInvalidCoordinates = "Invalid coordinate data returned for location."
	msgLocationNotSet     = "Location not set. Please get coordinates first."
)

// SearchDefaults are the values search_market_product uses for omitted
// arguments.
type SearchDefaults struct {
	DistanceKm float64
	PageIndex  int
	PageSize   int
}

// DefaultSearchDefaults returns 5 km, page 0, 24 results.
func DefaultSearchDefaults() SearchDefaults {
	return SearchDefaults{
		DistanceKm: market.DefaultDistanceKm,
		PageIndex:  market.DefaultPageIndex,
		PageSize:   market.DefaultPageSize,
	}
}

// RegisterMarketTools registers the three price lookup tools on reg.
// Calls whose context carries no session use the sessions' default session.
func RegisterMarketTools(reg *Registry, searcher ProductSearcher, geocoder Geocoder, sessions *session.Manager, defaults SearchDefaults) {
	reg.Register(&SearchMarketProductTool{searcher: searcher, defaults: defaults})
	reg.Register(&GetCoordinatesTool{geocoder: geocoder, sessions: sessions})
	reg.Register(&GetMarketProductTool{searcher: searcher, sessions: sessions})
}

func sessionFor(ctx context.Context, sessions *session.Manager) *session.Session {
	if s, ok := session.FromContext(ctx); ok {
		return s
	}
	return sessions.Default()
}

func numberProp(desc string) map[string]any {
	return map[string]any{"type": "number", "description": desc}
}

func stringProp(desc string) map[string]any {
	return map[string]any{"type": "string", "description": desc}
}
