package tools

import (
	"context"
	"errors"
	"log/slog"

	"github.com/soochol/marketfinder/internal/geocode"
	"github.com/soochol/marketfinder/internal/session"
)

// GetCoordinatesTool geocodes a location and remembers it as the
// session's last known location.
type GetCoordinatesTool struct {
	geocoder Geocoder
	sessions *session.Manager
}

type getCoordinatesArgs struct {
	Location *string `json:"location" validate:"required"`
}

func (t *GetCoordinatesTool) Name() string { return "get_coordinates_from_address" }

func (t *GetCoordinatesTool) Description() string {
	return "Look up the latitude and longitude of an address or place name. The result is remembered for get_market_product."
}

func (t *GetCoordinatesTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"location": stringProp("Free-text address or place name"),
		},
		"required": []any{"location"},
	}
}

func (t *GetCoordinatesTool) Execute(ctx context.Context, args map[string]any) Result {
	var in getCoordinatesArgs
	if err := decodeArgs(args, &in); err != nil {
		return invalidArgs(err)
	}

	coords, err := t.geocoder.Forward(ctx, *in.Location)
	switch {
	case errors.Is(err, geocode.ErrNotFound):
		return Fail(StatusNotFound, msgLocationNotFound)
	case errors.Is(err, geocode.ErrInvalidCoordinates):
		slog.Warn("geocoder returned invalid coordinates", "location", *in.Location, "err", err)
		return Fail(StatusInvalidData, msgInvalidCoordinates)
	case err != nil:
		slog.Warn("geocoding failed", "location", *in.Location, "err", err)
		return Fail(StatusUpstreamError, msgGeocodeFailed)
	}

	s := sessionFor(ctx, t.sessions)
	s.SetLocation(coords)
	slog.Debug("session location updated", "session", s.ID, "lat", coords.Latitude, "lon", coords.Longitude)
	return OK(coords)
}
