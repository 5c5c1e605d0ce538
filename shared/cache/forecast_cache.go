package cache

import (
	"context"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"weather-app/internal/models"
)

// Forecaster is the forecast source being cached
type Forecaster interface {
	Fetch(ctx context.Context, lat, lon float64, units models.UnitSystem) (*models.ForecastResult, error)
}

// CachedForecaster wraps a Forecaster and serves repeated lookups of the same
// rounded point, unit system and time bucket from memory
type CachedForecaster struct {
	source Forecaster
	store  *gocache.Cache
	ttl    time.Duration
	now    func() time.Time

	mutex          sync.Mutex
	cacheHitCount  int
	cacheMissCount int
}

// NewCachedForecaster creates a cache in front of source. Entries live for ttl
// and never outlive the time bucket they were fetched in.
func NewCachedForecaster(source Forecaster, ttl time.Duration) *CachedForecaster {
	return &CachedForecaster{
		source: source,
		store:  gocache.New(ttl, 2*ttl),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Key builds the cache key: coordinates rounded to 2 decimals (about 1 km),
// unit system and the start of the TTL bucket containing at
func Key(lat, lon float64, units models.UnitSystem, at time.Time, ttl time.Duration) string {
	bucket := at.Truncate(ttl).Unix()
	return fmt.Sprintf("%.2f,%.2f,%s,%d", round2(lat), round2(lon), units, bucket)
}

func round2(v float64) float64 {
	r := math.Round(v*100) / 100
	if r == 0 {
		return 0 // avoid "-0.00" keys
	}
	return r
}

// Fetch returns the cached forecast when available, otherwise fetches and stores it
func (c *CachedForecaster) Fetch(ctx context.Context, lat, lon float64, units models.UnitSystem) (*models.ForecastResult, error) {
	key := Key(lat, lon, units, c.now(), c.ttl)

	if cached, found := c.store.Get(key); found {
		c.mutex.Lock()
		c.cacheHitCount++
		c.mutex.Unlock()

		log.Printf("Forecast cache HIT for %s", key)
		return cached.(*models.ForecastResult), nil
	}

	c.mutex.Lock()
	c.cacheMissCount++
	c.mutex.Unlock()

	log.Printf("Forecast cache MISS for %s, fetching fresh data...", key)

	result, err := c.source.Fetch(ctx, lat, lon, units)
	if err != nil {
		return nil, err
	}

	c.store.Set(key, result, gocache.DefaultExpiration)
	return result, nil
}

// CacheStats returns statistics about cache hits and misses
func (c *CachedForecaster) CacheStats() (hits, misses int) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.cacheHitCount, c.cacheMissCount
}

// Ensure CachedForecaster can stand in for its source
var _ Forecaster = (*CachedForecaster)(nil)
