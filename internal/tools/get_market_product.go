package tools

import (
	"context"
	"errors"
	"log/slog"

	"github.com/soochol/marketfinder/internal/market"
	"github.com/soochol/marketfinder/internal/marketfiyati"
	"github.com/soochol/marketfinder/internal/session"
)

// Search parameters for get_market_product. They do not follow the
// configurable search_market_product defaults.
const (
	lastLocationDistanceKm = 4
	lastLocationPageIndex  = 0
	lastLocationPageSize   = 24
)

// GetMarketProductTool searches around the session's last geocoded
// location and reports the first listed offer for each product.
type GetMarketProductTool struct {
	searcher ProductSearcher
	sessions *session.Manager
}

type getMarketProductArgs struct {
	Keywords *string `json:"keywords" validate:"required"`
}

func (t *GetMarketProductTool) Name() string { return "get_market_product" }

func (t *GetMarketProductTool) Description() string {
	return "Search grocery products by keywords near the location from the last get_coordinates_from_address call."
}

func (t *GetMarketProductTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"keywords": stringProp("Product search keywords"),
		},
		"required": []any{"keywords"},
	}
}

func (t *GetMarketProductTool) Execute(ctx context.Context, args map[string]any) Result {
	var in getMarketProductArgs
	if err := decodeArgs(args, &in); err != nil {
		return invalidArgs(err)
	}

	coords, ok := sessionFor(ctx, t.sessions).Location()
	if !ok {
		return Fail(StatusPreconditionFailed, msgLocationNotSet)
	}

	q := market.SearchQuery{
		Keywords:   *in.Keywords,
		Latitude:   coords.Latitude,
		Longitude:  coords.Longitude,
		DistanceKm: lastLocationDistanceKm,
		PageIndex:  lastLocationPageIndex,
		PageSize:   lastLocationPageSize,
	}
	products, err := t.searcher.Search(ctx, q, marketfiyati.BrowserHeaders)
	if errors.Is(err, marketfiyati.ErrNoContent) {
		return Fail(StatusNotFound, msgNoProducts)
	}
	if err != nil {
		slog.Warn("get_market_product failed", "keywords", q.Keywords, "err", err)
		return Fail(StatusUpstreamError, msgSearchFailed)
	}
	return OK(market.Normalize(products, market.FirstOffer))
}
