package service

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuardSerializesSameBook(t *testing.T) {
	guard := NewBookGuard()
	id := uuid.New()

	const workers = 20
	counter := 0
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			release, err := guard.Acquire(id)
			if !assert.NoError(t, err) {
				return
			}
			defer release()
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, workers, counter)
}

func TestGuardDifferentBooksDoNotBlock(t *testing.T) {
	guard := NewBookGuard()

	releaseA, err := guard.Acquire(uuid.New())
	require.NoError(t, err)
	defer releaseA()

	// A second book acquires immediately even while the first is held.
	releaseB, err := guard.Acquire(uuid.New())
	require.NoError(t, err)
	releaseB()
}

func TestGuardReacquireAfterRelease(t *testing.T) {
	guard := NewBookGuard()
	id := uuid.New()

	release, err := guard.Acquire(id)
	require.NoError(t, err)
	release()

	release, err = guard.Acquire(id)
	require.NoError(t, err)
	release()
}
