package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/manfromnowhere143/hostly-platform-sub000/internal/clock"
	"github.com/manfromnowhere143/hostly-platform-sub000/internal/domain"
	"golang.org/x/sync/singleflight"
)

const defaultTTL = 5 * time.Minute

// ListingFetcher fetches a fresh listing snapshot from the PMS.
type ListingFetcher interface {
	GetListing(ctx context.Context, externalListingID string) (domain.ListingSnapshot, error)
}

// ListingCache is a read-through cache of PMS listing snapshots, keyed by
// external listing id. Concurrent refreshes for the same key are collapsed
// into a single upstream fetch. Stale entries are never served silently: an
// expired entry triggers a refresh, and a refresh failure surfaces as an
// error even when an older snapshot exists.
type ListingCache struct {
	fetcher ListingFetcher
	clock   clock.Clock
	ttl     time.Duration

	mu      sync.RWMutex
	entries map[string]domain.ListingSnapshot
	group   singleflight.Group
}

type Option func(*ListingCache)

// WithTTL overrides the default snapshot TTL.
func WithTTL(d time.Duration) Option {
	return func(c *ListingCache) {
		if d > 0 {
			c.ttl = d
		}
	}
}

func NewListingCache(fetcher ListingFetcher, clk clock.Clock, opts ...Option) *ListingCache {
	c := &ListingCache{
		fetcher: fetcher,
		clock:   clk,
		ttl:     defaultTTL,
		entries: make(map[string]domain.ListingSnapshot),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached snapshot when fresh, refreshing from the PMS
// otherwise. A fetch failure with no usable cached value propagates
// domain.ErrSourceUnavailable from the fetcher.
func (c *ListingCache) Get(ctx context.Context, externalListingID string) (domain.ListingSnapshot, error) {
	now := c.clock.Now()

	c.mu.RLock()
	snap, ok := c.entries[externalListingID]
	c.mu.RUnlock()
	if ok && now.Sub(snap.FetchedAt) < c.ttl {
		return snap, nil
	}

	v, err, _ := c.group.Do(externalListingID, func() (any, error) {
		// Re-check under the flight: a concurrent caller may have refreshed
		// while this one waited for the flight slot.
		c.mu.RLock()
		cur, ok := c.entries[externalListingID]
		c.mu.RUnlock()
		if ok && c.clock.Now().Sub(cur.FetchedAt) < c.ttl {
			return cur, nil
		}

		fresh, err := c.fetcher.GetListing(ctx, externalListingID)
		if err != nil {
			return nil, fmt.Errorf("refresh listing %s: %w", externalListingID, err)
		}
		fresh.FetchedAt = c.clock.Now()

		c.mu.Lock()
		c.entries[externalListingID] = fresh
		c.mu.Unlock()
		return fresh, nil
	})
	if err != nil {
		return domain.ListingSnapshot{}, err
	}
	return v.(domain.ListingSnapshot), nil
}

// Invalidate drops the cached snapshot so the next Get refetches.
func (c *ListingCache) Invalidate(externalListingID string) {
	c.mu.Lock()
	delete(c.entries, externalListingID)
	c.mu.Unlock()
}
