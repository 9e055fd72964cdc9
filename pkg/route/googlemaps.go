package route

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"googlemaps.github.io/maps"

	"voiceguide/pkg/geo"
	"voiceguide/pkg/tracker"
)

const provider = "google-maps"

// ErrNoRoute means the directions service found no walking route.
var ErrNoRoute = errors.New("no walking route")

// Cacher stores planned paths by key (pkg/store).
type Cacher interface {
	GetCache(ctx context.Context, key string) ([]byte, bool)
	SetCache(ctx context.Context, key string, val []byte) error
}

// GoogleMaps plans walking directions with the Google Maps Directions API.
type GoogleMaps struct {
	client  *maps.Client
	cache   Cacher
	tracker *tracker.Tracker
}

// NewGoogleMaps creates a planner. opts are appended to the key option
// (e.g. maps.WithBaseURL). cache and t may be nil.
func NewGoogleMaps(apiKey string, cache Cacher, t *tracker.Tracker, opts ...maps.ClientOption) (*GoogleMaps, error) {
	client, err := maps.NewClient(append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("maps client: %w", err)
	}
	return &GoogleMaps{client: client, cache: cache, tracker: t}, nil
}

func (g *GoogleMaps) Plan(ctx context.Context, from, to geo.Point) ([]geo.Point, error) {
	key := fmt.Sprintf("route:walking:%s:%s", from, to)
	if g.cache != nil {
		if data, ok := g.cache.GetCache(ctx, key); ok {
			var path []geo.Point
			if err := json.Unmarshal(data, &path); err == nil {
				g.track((*tracker.Tracker).TrackCacheHit)
				return path, nil
			}
		}
		g.track((*tracker.Tracker).TrackCacheMiss)
	}

	routes, _, err := g.client.Directions(ctx, &maps.DirectionsRequest{
		Origin:      fmt.Sprintf("%f,%f", from.Lat, from.Lon),
		Destination: fmt.Sprintf("%f,%f", to.Lat, to.Lon),
		Mode:        maps.TravelModeWalking,
	})
	if err != nil {
		g.track((*tracker.Tracker).TrackAPIFailure)
		return nil, fmt.Errorf("directions: %w", err)
	}
	if len(routes) == 0 {
		g.track((*tracker.Tracker).TrackAPIFailure)
		return nil, ErrNoRoute
	}
	g.track((*tracker.Tracker).TrackAPISuccess)

	decoded, err := routes[0].OverviewPolyline.Decode()
	if err != nil {
		return nil, fmt.Errorf("decode polyline: %w", err)
	}
	// The polyline starts and ends at the nearest walkable points, so the
	// stops themselves are added to close the gaps.
	path := make([]geo.Point, 0, len(decoded)+2)
	path = append(path, from)
	for _, ll := range decoded {
		path = append(path, geo.Point{Lat: ll.Lat, Lon: ll.Lng})
	}
	path = append(path, to)

	if g.cache != nil {
		if data, err := json.Marshal(path); err == nil {
			if err := g.cache.SetCache(ctx, key, data); err != nil {
				slog.Warn("Route: cache write failed", "key", key, "error", err)
			}
		}
	}
	return path, nil
}

func (g *GoogleMaps) track(fn func(*tracker.Tracker, string)) {
	if g.tracker != nil {
		fn(g.tracker, provider)
	}
}
