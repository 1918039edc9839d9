package metadata

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"photo-archive/model"
)

var (
	ErrNoGPS        = errors.New("no GPS position")
	ErrMalformedGPS = errors.New("malformed GPS position")
)

// ParseCoordinate converts the GPS degree/minute/second values and their
// hemisphere references into signed decimal degrees.
func ParseCoordinate(md model.ImageMetadata) (model.GeoCoordinate, error) {
	if md.GPS == nil || len(md.GPS["GPSLatitude"]) == 0 {
		return model.GeoCoordinate{}, ErrNoGPS
	}

	lat, err := toDecimal(md.GPS["GPSLatitude"], md.GPS["GPSLatitudeRef"], "S")
	if err != nil {
		return model.GeoCoordinate{}, fmt.Errorf("latitude: %w", err)
	}
	lon, err := toDecimal(md.GPS["GPSLongitude"], md.GPS["GPSLongitudeRef"], "W")
	if err != nil {
		return model.GeoCoordinate{}, fmt.Errorf("longitude: %w", err)
	}
	return model.GeoCoordinate{Latitude: lat, Longitude: lon}, nil
}

func toDecimal(dms, ref []string, negativeRef string) (float64, error) {
	if len(dms) < 3 {
		return 0, fmt.Errorf("%w: want 3 components, got %d", ErrMalformedGPS, len(dms))
	}
	if len(ref) == 0 || strings.TrimSpace(ref[0]) == "" {
		return 0, fmt.Errorf("%w: missing hemisphere reference", ErrMalformedGPS)
	}

	var parts [3]float64
	for i := range parts {
		r, ok := new(big.Rat).SetString(strings.TrimSpace(dms[i]))
		if !ok {
			return 0, fmt.Errorf("%w: component %q is not numeric", ErrMalformedGPS, dms[i])
		}
		parts[i], _ = r.Float64()
	}

	v := parts[0] + parts[1]/60 + parts[2]/3600
	if strings.EqualFold(strings.TrimSpace(ref[0]), negativeRef) {
		v = -v
	}
	return v, nil
}
