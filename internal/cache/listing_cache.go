package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/vedran77/habyx/internal/domain"
	"github.com/vedran77/habyx/internal/telemetry"
)

const (
	listingsKey        = "housing:listings"
	listingsVersionKey = "housing:listings:version"
	listingKeyPrefix   = "housing:listing:"
)

// NewRedisClient connects to Redis and pings it once so a bad address fails
// at startup instead of on the first request.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}

// ListingCache stores housing listings as JSON in Redis.
type ListingCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewListingCache(rdb *redis.Client, ttl time.Duration) *ListingCache {
	return &ListingCache{rdb: rdb, ttl: ttl}
}

func listingKey(id uuid.UUID) string {
	return listingKeyPrefix + id.String()
}

func listingsKeyAt(version int64) string {
	return fmt.Sprintf("%s:%d", listingsKey, version)
}

// GetListings returns the collection stored under the current version along
// with that version. A fill must pass the version back to SetListings.
func (c *ListingCache) GetListings(ctx context.Context) ([]domain.HousingListing, int64, bool, error) {
	version, err := c.rdb.Get(ctx, listingsVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		version, err = 0, nil
	}
	if err != nil {
		telemetry.CacheLookups.WithLabelValues("error").Inc()
		return nil, 0, false, fmt.Errorf("redis get %s: %w", listingsVersionKey, err)
	}

	var listings []domain.HousingListing
	ok, err := c.get(ctx, listingsKeyAt(version), &listings)
	if !ok || err != nil {
		return nil, version, false, err
	}
	return listings, version, true, nil
}

// SetListings stores the collection under version. A write for a version
// that Invalidate has since bumped lands on a key nobody reads and expires.
func (c *ListingCache) SetListings(ctx context.Context, version int64, listings []domain.HousingListing) error {
	return c.set(ctx, listingsKeyAt(version), listings)
}

func (c *ListingCache) GetListing(ctx context.Context, id uuid.UUID) (*domain.HousingListing, bool, error) {
	var listing domain.HousingListing
	ok, err := c.get(ctx, listingKey(id), &listing)
	if !ok || err != nil {
		return nil, false, err
	}
	return &listing, true, nil
}

func (c *ListingCache) SetListing(ctx context.Context, listing *domain.HousingListing) error {
	return c.set(ctx, listingKey(listing.ID), listing)
}

// Invalidate bumps the collection version and drops the entries of the
// given listings.
func (c *ListingCache) Invalidate(ctx context.Context, ids ...uuid.UUID) error {
	if err := c.rdb.Incr(ctx, listingsVersionKey).Err(); err != nil {
		return fmt.Errorf("redis incr %s: %w", listingsVersionKey, err)
	}
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, listingKey(id))
	}
	return c.rdb.Del(ctx, keys...).Err()
}

func (c *ListingCache) get(ctx context.Context, key string, dst any) (bool, error) {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		telemetry.CacheLookups.WithLabelValues("miss").Inc()
		return false, nil
	}
	if err != nil {
		telemetry.CacheLookups.WithLabelValues("error").Inc()
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		// A corrupt entry is treated as a miss and dropped.
		telemetry.CacheLookups.WithLabelValues("miss").Inc()
		c.rdb.Del(ctx, key)
		return false, nil
	}
	telemetry.CacheLookups.WithLabelValues("hit").Inc()
	return true, nil
}

func (c *ListingCache) set(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
