package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"unipool/internal/utils"
	"unipool/pkg/cache"
	"unipool/pkg/logger"
	"unipool/pkg/maps"
)

// GeocodeCache is satisfied by *cache.RedisCache.
type GeocodeCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

type GeocodeService interface {
	// Search and Reverse return a nil place when nothing matches.
	Search(ctx context.Context, query string) (*maps.Place, error)
	Reverse(ctx context.Context, lat, lng float64) (*maps.Place, error)
}

type geocodeService struct {
	geocoder maps.Geocoder
	cache    GeocodeCache
	ttl      time.Duration
	logger   *logger.Logger
}

// NewGeocodeService accepts a nil geocoder when maps are not configured and
// a nil cache when Redis is unavailable.
func NewGeocodeService(geocoder maps.Geocoder, cache GeocodeCache, logger *logger.Logger) GeocodeService {
	return &geocodeService{
		geocoder: geocoder,
		cache:    cache,
		ttl:      utils.GeocodeCacheTTL,
		logger:   logger,
	}
}

func (s *geocodeService) Search(ctx context.Context, query string) (*maps.Place, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < utils.MinGeocodeQueryLength {
		return nil, utils.NewValidationErrorWithDetails(utils.ErrValidationFailed, map[string]string{
			"q": fmt.Sprintf("q must be at least %d characters", utils.MinGeocodeQueryLength),
		})
	}

	key := utils.CacheGeocodePrefix + strings.ToLower(query)
	return s.lookup(ctx, key, func(ctx context.Context) (*maps.Place, error) {
		return s.geocoder.Geocode(ctx, query)
	})
}

func (s *geocodeService) Reverse(ctx context.Context, lat, lng float64) (*maps.Place, error) {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, utils.NewValidationError("lat must be within [-90, 90] and lng within [-180, 180]")
	}

	key := fmt.Sprintf("%s%.5f,%.5f", utils.CacheReversePrefix, lat, lng)
	return s.lookup(ctx, key, func(ctx context.Context) (*maps.Place, error) {
		return s.geocoder.ReverseGeocode(ctx, lat, lng)
	})
}

func (s *geocodeService) lookup(ctx context.Context, key string, fetch func(ctx context.Context) (*maps.Place, error)) (*maps.Place, error) {
	if s.geocoder == nil {
		return nil, utils.NewUpstreamError("Geocoding is not configured", nil)
	}

	if s.cache != nil {
		var cached maps.Place
		err := s.cache.Get(ctx, key, &cached)
		if err == nil {
			return &cached, nil
		}
		if !cache.IsMiss(err) {
			s.logger.WithContext(ctx).WithError(err).Warn("Geocode cache read failed")
		}
	}

	place, err := fetch(ctx)
	if errors.Is(err, maps.ErrNoResults) {
		return nil, nil
	}
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).Warn("Geocoding request failed")
		return nil, utils.NewUpstreamError("Geocoding service unavailable", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, place, s.ttl); err != nil {
			s.logger.WithContext(ctx).WithError(err).Debug("Failed to cache geocoding result")
		}
	}

	return place, nil
}
