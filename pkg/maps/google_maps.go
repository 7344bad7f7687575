package maps

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"googlemaps.github.io/maps"
)

type GoogleMapsProvider struct {
	client   *maps.Client
	region   string
	language string
}

type GoogleMapsOptions struct {
	APIKey   string
	Region   string
	Language string
	// BaseURL overrides the Google endpoint; empty keeps the default.
	BaseURL string
	Timeout time.Duration
}

func NewGoogleMapsProvider(opts GoogleMapsOptions) (*GoogleMapsProvider, error) {
	clientOptions := []maps.ClientOption{maps.WithAPIKey(opts.APIKey)}
	if opts.BaseURL != "" {
		clientOptions = append(clientOptions, maps.WithBaseURL(opts.BaseURL))
	}
	if opts.Timeout > 0 {
		clientOptions = append(clientOptions, maps.WithHTTPClient(&http.Client{Timeout: opts.Timeout}))
	}

	client, err := maps.NewClient(clientOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Maps client: %w", err)
	}

	return &GoogleMapsProvider{
		client:   client,
		region:   opts.Region,
		language: opts.Language,
	}, nil
}

func (g *GoogleMapsProvider) Geocode(ctx context.Context, address string) (*Place, error) {
	req := &maps.GeocodingRequest{
		Address:  address,
		Region:   g.region,
		Language: g.language,
	}

	resp, err := g.client.Geocode(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("geocoding failed: %w", err)
	}

	return firstPlace(resp)
}

func (g *GoogleMapsProvider) ReverseGeocode(ctx context.Context, lat, lng float64) (*Place, error) {
	req := &maps.GeocodingRequest{
		LatLng:   &maps.LatLng{Lat: lat, Lng: lng},
		Language: g.language,
	}

	resp, err := g.client.ReverseGeocode(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("reverse geocoding failed: %w", err)
	}

	return firstPlace(resp)
}

func firstPlace(results []maps.GeocodingResult) (*Place, error) {
	if len(results) == 0 {
		return nil, ErrNoResults
	}

	result := results[0]
	return &Place{
		PlaceID:     result.PlaceID,
		Lat:         result.Geometry.Location.Lat,
		Lng:         result.Geometry.Location.Lng,
		DisplayName: result.FormattedAddress,
		Types:       result.Types,
	}, nil
}
