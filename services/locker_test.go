package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/maeum/models"
)

func TestMemoryLockerSerializes(t *testing.T) {
	l := NewMemoryLocker()
	ctx := context.Background()

	var mu sync.Mutex
	inside, maxInside, counter := 0, 0, 0
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := withUserLock(ctx, l, "u1", func() error {
				mu.Lock()
				inside++
				if inside > maxInside {
					maxInside = inside
				}
				mu.Unlock()

				time.Sleep(time.Millisecond)
				counter++

				mu.Lock()
				inside--
				mu.Unlock()
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxInside)
	assert.Equal(t, 20, counter)
	assert.Equal(t, 0, l.size(), "entries are released")
}

func TestMemoryLockerKeysAreIndependent(t *testing.T) {
	l := NewMemoryLocker()
	ctx := context.Background()

	unlockA, err := l.Lock(ctx, "a")
	require.NoError(t, err)
	defer unlockA()

	waitCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	unlockB, err := l.Lock(waitCtx, "b")
	require.NoError(t, err)
	unlockB()
}

func TestMemoryLockerHonorsContext(t *testing.T) {
	l := NewMemoryLocker()
	unlock, err := l.Lock(context.Background(), "u1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "u1")
	assert.ErrorIs(t, err, models.ErrUnavailable)

	unlock()
	unlock()
	assert.Equal(t, 0, l.size())
}

func TestConcurrentCheckInsKeepStreakConsistent(t *testing.T) {
	svcs, _ := newTestServices(t, "2024-01-01")
	ctx := context.Background()
	ensureUser(t, svcs, "u1", "Mina")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svcs.CheckIns.RecordCheckIn(ctx, "u1", happyCheckIn())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	p, err := svcs.Profiles.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, p.Streak)
}
