package geo

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sehatsaathi/sehat-backend/internal/apperrors"
)

const (
	DefaultRadiusM = 30000
	DefaultLimit   = 15

	geocodeCacheTTL = 30 * 24 * time.Hour
)

// Geocoder resolves a pincode to a point.
type Geocoder interface {
	Geocode(ctx context.Context, pincode string) (Point, error)
}

// Searcher lists raw facilities around a point.
type Searcher interface {
	Search(ctx context.Context, origin Point, radiusM, limit int) ([]Place, error)
}

// Cache is an optional byte cache for geocode results.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Locator finds the closest facilities for a pincode.
type Locator struct {
	geocoder Geocoder
	searcher Searcher
	cache    Cache
	radiusM  int
	limit    int
}

// NewLocator wires the lookups together. cache may be nil.
func NewLocator(geocoder Geocoder, searcher Searcher, cache Cache, radiusM, limit int) *Locator {
	if radiusM <= 0 {
		radiusM = DefaultRadiusM
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Locator{
		geocoder: geocoder,
		searcher: searcher,
		cache:    cache,
		radiusM:  radiusM,
		limit:    limit,
	}
}

// FindNearby returns up to MaxResults facilities sorted by distance. It
// returns a NOT_FOUND error when the pincode is unknown or nothing usable is
// nearby, and an EXTERNAL error when a backend fails.
func (l *Locator) FindNearby(ctx context.Context, pincode string) ([]Facility, error) {
	origin, err := l.geocode(ctx, pincode)
	if err != nil {
		return nil, err
	}

	places, err := l.searcher.Search(ctx, origin, l.radiusM, l.limit)
	if err != nil {
		return nil, err
	}

	facilities := Rank(origin, places)
	if len(facilities) == 0 {
		return nil, &apperrors.AppError{Type: apperrors.ErrorTypeNotFound, Message: "no facilities near " + pincode, Err: ErrNoFacilities}
	}

	log.Info().Str("pincode", pincode).Int("found", len(places)).Int("shown", len(facilities)).Msg("🏥 Nearby facilities ranked")
	return facilities, nil
}

func (l *Locator) geocode(ctx context.Context, pincode string) (Point, error) {
	if l.cache != nil {
		if cached, err := l.cache.Get(ctx, pincode); err == nil {
			var pt Point
			if json.Unmarshal(cached, &pt) == nil {
				return pt, nil
			}
			if err := l.cache.Delete(ctx, pincode); err != nil {
				log.Warn().Err(err).Str("pincode", pincode).Msg("⚠️ Failed to drop corrupt geocode cache entry")
			}
		}
	}

	pt, err := l.geocoder.Geocode(ctx, pincode)
	if err != nil {
		return Point{}, err
	}

	if l.cache != nil {
		if payload, err := json.Marshal(pt); err == nil {
			if err := l.cache.Set(ctx, pincode, payload, geocodeCacheTTL); err != nil {
				log.Warn().Err(err).Str("pincode", pincode).Msg("⚠️ Failed to cache geocode result")
			}
		}
	}
	return pt, nil
}
