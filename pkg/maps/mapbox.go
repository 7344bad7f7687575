package maps

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const mapboxBaseURL = "https://api.mapbox.com"

type MapboxProvider struct {
	accessToken string
	country     string
	language    string
	httpClient  *http.Client
	baseURL     string
}

type MapboxOptions struct {
	AccessToken string
	// Country is an ISO 3166 alpha-2 code limiting results, e.g. "pk".
	Country  string
	Language string
	BaseURL  string
	Timeout  time.Duration
}

func NewMapboxProvider(opts MapboxOptions) *MapboxProvider {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = mapboxBaseURL
	}

	return &MapboxProvider{
		accessToken: opts.AccessToken,
		country:     opts.Country,
		language:    opts.Language,
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     baseURL,
	}
}

type mapboxResponse struct {
	Features []struct {
		ID        string    `json:"id"`
		PlaceName string    `json:"place_name"`
		PlaceType []string  `json:"place_type"`
		Center    []float64 `json:"center"`
	} `json:"features"`
}

func (m *MapboxProvider) Geocode(ctx context.Context, address string) (*Place, error) {
	return m.lookup(ctx, address)
}

// ReverseGeocode queries "lng,lat", the order Mapbox expects.
func (m *MapboxProvider) ReverseGeocode(ctx context.Context, lat, lng float64) (*Place, error) {
	query := strconv.FormatFloat(lng, 'f', -1, 64) + "," + strconv.FormatFloat(lat, 'f', -1, 64)
	return m.lookup(ctx, query)
}

func (m *MapboxProvider) lookup(ctx context.Context, query string) (*Place, error) {
	params := url.Values{}
	params.Set("access_token", m.accessToken)
	params.Set("limit", "1")
	if m.country != "" {
		params.Set("country", m.country)
	}
	if m.language != "" {
		params.Set("language", m.language)
	}
	apiURL := fmt.Sprintf("%s/geocoding/v5/mapbox.places/%s.json?%s", m.baseURL, url.PathEscape(query), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("mapbox API error: status %d: %s", resp.StatusCode, string(body))
	}

	var mapboxResp mapboxResponse
	if err := json.Unmarshal(body, &mapboxResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	for _, feature := range mapboxResp.Features {
		if len(feature.Center) < 2 {
			continue
		}
		return &Place{
			PlaceID:     feature.ID,
			Lat:         feature.Center[1],
			Lng:         feature.Center[0],
			DisplayName: feature.PlaceName,
			Types:       feature.PlaceType,
		}, nil
	}

	return nil, ErrNoResults
}
