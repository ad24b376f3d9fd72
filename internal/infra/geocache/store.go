package geocache

import (
	"context"
	"strings"
	"time"

	"github.com/yanqian/walkcast/internal/domain/walkplan"
)

// Store defines the persistence contract for cached geocoding matches.
type Store interface {
	Get(ctx context.Context, key string) ([]walkplan.Place, bool, error)
	Set(ctx context.Context, key string, places []walkplan.Place, ttl time.Duration) error
	Ping(ctx context.Context) error
}

// Key canonicalizes a city name so "Berlin" and " berlin " share an entry.
func Key(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
