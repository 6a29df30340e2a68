package unit_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/service/fulfillment"

	"github.com/stretchr/testify/assert"
)

func TestGuardAcquireRelease(t *testing.T) {
	g := fulfillment.NewGuard()

	assert.True(t, g.Acquire("d1"))
	assert.False(t, g.Acquire("d1"))
	assert.True(t, g.Acquire("d2"))
	assert.Equal(t, 2, g.InFlight())

	g.Release("d1")
	assert.True(t, g.Acquire("d1"))

	// Releasing an unheld key must not disturb held ones.
	g.Release("never-held")
	assert.Equal(t, 2, g.InFlight())
}

func TestGuardConcurrentAcquireSingleWinner(t *testing.T) {
	g := fulfillment.NewGuard()

	const attempts = 64
	var wins int32
	var wg sync.WaitGroup

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if g.Acquire("same-donor") {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins)
	assert.Equal(t, 1, g.InFlight())
}
