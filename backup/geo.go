package backup

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"photo-archive/metadata"
	"photo-archive/model"
)

type Geocoder interface {
	Reverse(ctx context.Context, coord model.GeoCoordinate) (string, error)
}

// GeoResolver turns the GPS block of an image into a place name. Failures
// are logged and reported as "no location".
type GeoResolver struct {
	Geocoder Geocoder
	Log      *zap.Logger
}

// Resolve returns the decoded coordinate (nil without a usable GPS block)
// and the place name (empty when unknown).
func (g *GeoResolver) Resolve(ctx context.Context, md model.ImageMetadata, file string) (*model.GeoCoordinate, string) {
	log := g.Log
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("file", file))

	coord, err := metadata.ParseCoordinate(md)
	switch {
	case errors.Is(err, metadata.ErrNoGPS):
		log.Debug("no GPS position")
		return nil, ""
	case err != nil:
		log.Warn("ignoring malformed GPS position", zap.Error(err))
		return nil, ""
	}

	if g.Geocoder == nil {
		return &coord, ""
	}

	place, err := g.Geocoder.Reverse(ctx, coord)
	if err != nil {
		log.Warn("reverse geocoding failed",
			zap.String("lat", coord.LatitudeString()),
			zap.String("lon", coord.LongitudeString()),
			zap.Error(err),
		)
		return &coord, ""
	}
	return &coord, place
}
