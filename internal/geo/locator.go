// Package geo models the browser-geolocation collaborator: a position source
// that may be slow or fail entirely. Callers use it for region ranking only
// and must fall back deterministically when it errors.
package geo

//go:generate mockgen -source=locator.go -destination=mocks/mocks.go -package=mocks Locator

import (
	"context"
	"errors"
	"math"
	"time"
)

// ErrUnavailable is returned when no position can be produced, whether from
// an underlying failure or the timeout elapsing.
var ErrUnavailable = errors.New("geolocation unavailable")

// Position is a WGS84 coordinate pair.
type Position struct {
	Lat float64
	Lng float64
}

// Locator produces the caller's current position.
type Locator interface {
	CurrentPosition(ctx context.Context) (Position, error)
}

// Static is a Locator pinned to a fixed position. Useful for tests and for
// deployments that configure an explicit location.
type Static struct {
	Pos Position
}

func (s Static) CurrentPosition(context.Context) (Position, error) {
	return s.Pos, nil
}

// WithTimeout bounds a Locator so a hung position source degrades into
// ErrUnavailable instead of blocking region selection.
func WithTimeout(l Locator, d time.Duration) Locator {
	return timeoutLocator{inner: l, timeout: d}
}

type timeoutLocator struct {
	inner   Locator
	timeout time.Duration
}

func (t timeoutLocator) CurrentPosition(ctx context.Context) (Position, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	type result struct {
		pos Position
		err error
	}
	ch := make(chan result, 1)
	go func() {
		pos, err := t.inner.CurrentPosition(ctx)
		ch <- result{pos, err}
	}()

	select {
	case res := <-ch:
		if res.err != nil {
			return Position{}, ErrUnavailable
		}
		return res.pos, nil
	case <-ctx.Done():
		return Position{}, ErrUnavailable
	}
}

// Distance returns the haversine great-circle distance between two positions
// in kilometers.
func Distance(a, b Position) float64 {
	const earthRadiusKm = 6371.0

	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}
