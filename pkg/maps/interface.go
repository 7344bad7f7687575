package maps

import (
	"context"
	"errors"
)

var ErrNoResults = errors.New("no geocoding results")

type Geocoder interface {
	Geocode(ctx context.Context, address string) (*Place, error)
	ReverseGeocode(ctx context.Context, lat, lng float64) (*Place, error)
}

type Place struct {
	PlaceID     string   `json:"placeId,omitempty"`
	Lat         float64  `json:"lat"`
	Lng         float64  `json:"lng"`
	DisplayName string   `json:"displayName"`
	Types       []string `json:"types,omitempty"`
}
