package geo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type hangingLocator struct{}

func (hangingLocator) CurrentPosition(ctx context.Context) (Position, error) {
	<-ctx.Done()
	return Position{}, ctx.Err()
}

func TestWithTimeout(t *testing.T) {
	t.Run("passes through a fast position", func(t *testing.T) {
		l := WithTimeout(Static{Pos: Position{Lat: 30.73, Lng: 76.77}}, time.Second)
		pos, err := l.CurrentPosition(context.Background())
		require.NoError(t, err)
		assert.InDelta(t, 30.73, pos.Lat, 0.001)
	})

	t.Run("degrades a hung source into ErrUnavailable", func(t *testing.T) {
		l := WithTimeout(hangingLocator{}, 10*time.Millisecond)
		_, err := l.CurrentPosition(context.Background())
		require.ErrorIs(t, err, ErrUnavailable)
	})
}

func TestDistance(t *testing.T) {
	chandigarh := Position{Lat: 30.7333, Lng: 76.7794}
	delhi := Position{Lat: 28.7041, Lng: 77.1025}

	// Roughly 229 km apart; the exact figure depends on the earth radius used.
	d := Distance(chandigarh, delhi)
	assert.InDelta(t, 228, d, 5)

	assert.Zero(t, Distance(chandigarh, chandigarh))
}
