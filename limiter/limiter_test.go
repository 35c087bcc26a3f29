package limiter_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/musicrank/musicrank/limiter"
)

func TestWaitPassesImmediatelyWhenUnprimed(t *testing.T) {
	lim := limiter.New(time.Hour)

	start := time.Now()
	require.NoError(t, lim.Wait(context.Background()))
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestDelayPacesTheNextWait(t *testing.T) {
	lim := limiter.New(30 * time.Millisecond)
	lim.Delay()

	start := time.Now()
	require.NoError(t, lim.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 25*time.Millisecond)
}

func TestWaitHonorsContextCancellation(t *testing.T) {
	lim := limiter.New(time.Hour)
	lim.Delay()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := lim.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
