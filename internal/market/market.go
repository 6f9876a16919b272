// Package market holds the price-lookup domain types and the depot
// selection policies used to normalize search results.
package market

// GeoCoordinates is a latitude/longitude pair in decimal degrees.
type GeoCoordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Default search parameters.
const (
	DefaultDistanceKm = 5
	DefaultPageIndex  = 0
	DefaultPageSize   = 24
)

// SearchQuery describes one product search around a point.
type SearchQuery struct {
	Keywords   string
	Latitude   float64
	Longitude  float64
	DistanceKm float64
	PageIndex  int
	PageSize   int
}

// NewSearchQuery returns a query around c with the default distance and paging.
func NewSearchQuery(keywords string, c GeoCoordinates) SearchQuery {
	return SearchQuery{
		Keywords:   keywords,
		Latitude:   c.Latitude,
		Longitude:  c.Longitude,
		DistanceKm: DefaultDistanceKm,
		PageIndex:  DefaultPageIndex,
		PageSize:   DefaultPageSize,
	}
}

// DepotOffer is one market's price for a product.
type DepotOffer struct {
	Price      float64 `json:"price"`
	MarketName string  `json:"marketAdi"`
}

// RawProduct is a product entry as returned by the price-search API.
// Offers are in upstream order, which is not sorted by price.
type RawProduct struct {
	Title  string       `json:"title"`
	Offers []DepotOffer `json:"productDepotInfoList"`
}

// NormalizedProduct is the uniform result shape returned to callers.
// Price and MarketName are nil when the product has no offers.
type NormalizedProduct struct {
	ProductName string   `json:"productName"`
	Price       *float64 `json:"price"`
	MarketName  *string  `json:"marketName"`
}
