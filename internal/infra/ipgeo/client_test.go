package ipgeo

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/walkcast/internal/domain/walkplan"
)

func TestLocate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "walkcast/1.0", r.Header.Get("User-Agent"))
		fmt.Fprint(w, `{"ip":"203.0.113.7","city":"Vienna","latitude":48.2085,"longitude":16.3721}`)
	}))
	defer server.Close()

	loc, err := NewClient(server.URL, time.Second).Locate(context.Background())
	require.NoError(t, err)
	require.Equal(t, walkplan.Location{Latitude: 48.2085, Longitude: 16.3721}, loc)
}

func TestLocateFailures(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"status": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		},
		"reason": func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"error":true,"reason":"RateLimited"}`)
		},
		"missing coordinates": func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"ip":"203.0.113.7"}`)
		},
		"malformed": func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `not json`)
		},
	}
	for name, handler := range cases {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(handler)
			defer server.Close()

			_, err := NewClient(server.URL, time.Second).Locate(context.Background())
			require.ErrorIs(t, err, ErrLocationLookup)
		})
	}
}
