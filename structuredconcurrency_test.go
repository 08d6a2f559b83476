// SPDX-License-Identifier: GPL-3.0-or-later

package rtcore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinAllCollectsEveryResult(t *testing.T) {
	runOnLoopExecutor(t, func(ctx context.Context, ex *LoopExecutor) {
		t1 := Spawn(ctx, func(ctx context.Context) (int, error) { return 1, nil })
		t2 := Spawn(ctx, func(ctx context.Context) (int, error) { return 2, nil })

		results, err := JoinAll(ctx, t1, t2)
		require.NoError(t, err)
		require.Len(t, results, 2)
		v1, _ := results[0].Unwrap()
		v2, _ := results[1].Unwrap()
		assert.Equal(t, 1, v1)
		assert.Equal(t, 2, v2)
	})
}

func TestSelectAnyReturnsFirstWinnerAndStopsOthers(t *testing.T) {
	runOnLoopExecutor(t, func(ctx context.Context, ex *LoopExecutor) {
		fast := Spawn(ctx, func(ctx context.Context) (int, error) {
			return 1, nil
		})
		slow := Spawn(ctx, func(ctx context.Context) (int, error) {
			<-ctx.Done()
			return 0, NewIoError(ErrCanceled, ctx.Err())
		})

		idx, value, err := SelectAny(ctx, fast, slow)
		require.NoError(t, err)
		assert.Equal(t, 0, idx)
		assert.Equal(t, 1, value)
	})
}

func TestTimeoutReturnsErrTimedOutWhenBodyTooSlow(t *testing.T) {
	runOnLoopExecutor(t, func(ctx context.Context, ex *LoopExecutor) {
		_, err := Timeout(ctx, 5*time.Millisecond, func(ctx context.Context) (int, error) {
			<-ctx.Done()
			return 0, ctx.Err()
		})
		assert.ErrorIs(t, err, NewIoError(ErrTimedOut, nil))
	})
}

func TestTimeoutPassesThroughFastResult(t *testing.T) {
	runOnLoopExecutor(t, func(ctx context.Context, ex *LoopExecutor) {
		value, err := Timeout(ctx, time.Second, func(ctx context.Context) (int, error) {
			return 7, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 7, value)
	})
}

func TestBlockingPoolSpawnBlockingDeliversResult(t *testing.T) {
	runOnLoopExecutor(t, func(ctx context.Context, ex *LoopExecutor) {
		pool := NewBlockingPool(2)
		task := pool.SpawnBlocking(ctx, func() (any, error) {
			return "done", nil
		})
		value, err := task.Wait(ctx)
		require.NoError(t, err)
		assert.Equal(t, "done", value)
	})
}
