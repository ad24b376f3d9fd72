package geocache

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/yanqian/walkcast/internal/domain/walkplan"
	"github.com/yanqian/walkcast/pkg/metrics"
)

const flightTimeout = 30 * time.Second

// CachingGeocoder decorates a geocoder with a TTL cache. Concurrent misses for
// the same name share one upstream call. Empty results are not cached and
// store failures never fail the lookup.
//
// The shared call ignores caller cancellation and is bounded by flightTimeout.
// Each caller returns as soon as its own context is done.
type CachingGeocoder struct {
	next    walkplan.Geocoder
	store   Store
	ttl     time.Duration
	group   singleflight.Group
	metrics *metrics.WalkMetrics
	logger  *slog.Logger
}

// NewCachingGeocoder wraps next with store.
func NewCachingGeocoder(next walkplan.Geocoder, store Store, ttl time.Duration, walkMetrics *metrics.WalkMetrics, logger *slog.Logger) *CachingGeocoder {
	return &CachingGeocoder{
		next:    next,
		store:   store,
		ttl:     ttl,
		metrics: walkMetrics,
		logger:  logger.With("component", "geocache.geocoder"),
	}
}

// Search implements walkplan.Geocoder.
func (g *CachingGeocoder) Search(ctx context.Context, name string) ([]walkplan.Place, error) {
	key := Key(name)
	if places, ok, err := g.store.Get(ctx, key); err != nil {
		g.logger.Warn("geocode cache read failed", "key", key, "error", err)
	} else if ok {
		g.metrics.RecordGeocodeLookup(ctx, true)
		return places, nil
	}
	g.metrics.RecordGeocodeLookup(ctx, false)

	flight := g.group.DoChan(key, func() (any, error) {
		flightCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), flightTimeout)
		defer cancel()
		places, err := g.next.Search(flightCtx, name)
		if err != nil {
			return nil, err
		}
		if len(places) > 0 {
			if err := g.store.Set(flightCtx, key, places, g.ttl); err != nil {
				g.logger.Warn("geocode cache write failed", "key", key, "error", err)
			}
		}
		return places, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-flight:
	}
	if res.Err != nil {
		return nil, res.Err
	}
	places := res.Val.([]walkplan.Place)
	out := make([]walkplan.Place, len(places))
	copy(out, places)
	return out, nil
}

var _ walkplan.Geocoder = (*CachingGeocoder)(nil)
