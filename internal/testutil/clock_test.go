package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFakeClock_StartsAtEpoch(t *testing.T) {
	clock := NewFakeClock()
	assert.Equal(t, Epoch, clock.Now())
	assert.Zero(t, clock.Since())
}

func TestFakeClock_Advance(t *testing.T) {
	clock := NewFakeClock()

	clock.Advance(2 * time.Second)
	clock.Advance(500 * time.Millisecond)

	assert.Equal(t, 2500*time.Millisecond, clock.Since())
	assert.Equal(t, Epoch.Add(2500*time.Millisecond), clock.Now())
}

func TestFakeClock_NeverGoesBackwards(t *testing.T) {
	clock := NewFakeClock()
	clock.Advance(time.Second)

	clock.Advance(-5 * time.Second)

	assert.Equal(t, time.Second, clock.Since())
}

func TestFakeClock_ConcurrentAdvance(t *testing.T) {
	clock := NewFakeClock()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			clock.Advance(time.Millisecond)
		}()
	}
	wg.Wait()

	assert.Equal(t, 100*time.Millisecond, clock.Since())
}
