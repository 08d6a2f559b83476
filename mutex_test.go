// SPDX-License-Identifier: GPL-3.0-or-later

package rtcore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMutexTryLockFailsWhileHeld(t *testing.T) {
	var m Mutex

	g1, ok := m.TryLock()
	require.True(t, ok)
	require.NotNil(t, g1)

	_, ok = m.TryLock()
	require.False(t, ok)

	g1.Unlock()

	g2, ok := m.TryLock()
	require.True(t, ok)
	g2.Unlock()
}

func TestMutexLockServesWaitersInFIFOOrder(t *testing.T) {
	var m Mutex
	g, _ := m.TryLock()

	var order []int
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			guard, err := m.Lock(context.Background())
			require.NoError(t, err)
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			guard.Unlock()
		}(i)
		time.Sleep(10 * time.Millisecond) // ensure arrival order
	}

	g.Unlock()
	wg.Wait()
	require.Equal(t, []int{0, 1, 2}, order)
}

func TestMutexLockCanceledByContext(t *testing.T) {
	var m Mutex
	g, _ := m.TryLock()
	defer g.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := m.Lock(ctx)
	require.Error(t, err)
	require.ErrorIs(t, err, NewIoError(ErrCanceled, nil))
}

func TestMutexUnlockIsIdempotent(t *testing.T) {
	var m Mutex
	g, ok := m.TryLock()
	require.True(t, ok)
	g.Unlock()
	g.Unlock() // must not panic or double-release

	_, ok = m.TryLock()
	require.True(t, ok)
}

func TestLockedGuardsAccessToValue(t *testing.T) {
	l := NewLocked(42)

	guard, err := l.Lock(context.Background())
	require.NoError(t, err)
	require.Equal(t, 42, *guard.Get())
	*guard.Get() = 43
	guard.Unlock()

	guard2, ok := l.TryLock()
	require.True(t, ok)
	require.Equal(t, 43, *guard2.Get())
	guard2.Unlock()
}
