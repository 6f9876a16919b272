package tools

import (
	"context"
	"errors"
	"log/slog"

	"github.com/soochol/marketfinder/internal/market"
	"github.com/soochol/marketfinder/internal/marketfiyati"
)

// SearchMarketProductTool searches products around explicit coordinates
// and reports the cheapest offer for each.
type SearchMarketProductTool struct {
	searcher ProductSearcher
	defaults SearchDefaults
}

type searchMarketProductArgs struct {
	Keywords  *string  `json:"keywords" validate:"required"`
	Latitude  *float64 `json:"latitude" validate:"required"`
	Longitude *float64 `json:"longitude" validate:"required"`
	Distance  *float64 `json:"distance"`
	Page      *int     `json:"page"`
	Size      *int     `json:"size"`
}

func (t *SearchMarketProductTool) Name() string { return "search_market_product" }

func (t *SearchMarketProductTool) Description() string {
	return "Search grocery products by keywords near the given coordinates. Returns each product with its cheapest price and the market offering it."
}

func (t *SearchMarketProductTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"keywords":  stringProp("Product search keywords"),
			"latitude":  numberProp("Latitude of the search center"),
			"longitude": numberProp("Longitude of the search center"),
			"distance":  numberProp("Search radius in kilometers (default: 5)"),
			"page":      numberProp("Zero-based result page (default: 0)"),
			"size":      numberProp("Results per page (default: 24)"),
		},
		"required": []any{"keywords", "latitude", "longitude"},
	}
}

func (t *SearchMarketProductTool) Execute(ctx context.Context, args map[string]any) Result {
	var in searchMarketProductArgs
	if err := decodeArgs(args, &in); err != nil {
		return invalidArgs(err)
	}

	q := market.SearchQuery{
		Keywords:   *in.Keywords,
		Latitude:   *in.Latitude,
		Longitude:  *in.Longitude,
		DistanceKm: t.defaults.DistanceKm,
		PageIndex:  t.defaults.PageIndex,
		PageSize:   t.defaults.PageSize,
	}
	if in.Distance != nil {
		q.DistanceKm = *in.Distance
	}
	if in.Page != nil {
		q.PageIndex = *in.Page
	}
	if in.Size != nil {
		q.PageSize = *in.Size
	}

	products, err := t.searcher.Search(ctx, q, marketfiyati.BasicHeaders)
	if errors.Is(err, marketfiyati.ErrNoContent) {
		return Fail(StatusNotFound, msgNoProducts)
	}
	if err != nil {
		slog.Warn("search_market_product failed", "keywords", q.Keywords, "err", err)
		return Fail(StatusUpstreamError, msgSearchFailed+" Error: "+err.Error())
	}
	return OK(market.Normalize(products, market.CheapestOffer))
}
