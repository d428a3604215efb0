package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTokenBucketAllow(t *testing.T) {
	t.Run("allows up to capacity", func(t *testing.T) {
		tb := NewTokenBucket(3, time.Minute)

		assert.True(t, tb.Allow())
		assert.True(t, tb.Allow())
		assert.True(t, tb.Allow())
		assert.False(t, tb.Allow())
	})

	t.Run("refills after the period", func(t *testing.T) {
		tb := NewTokenBucket(1, 50*time.Millisecond)

		assert.True(t, tb.Allow())
		assert.False(t, tb.Allow())

		time.Sleep(60 * time.Millisecond)
		assert.True(t, tb.Allow())
	})
}

func TestTokenBucketWait(t *testing.T) {
	tb := NewTokenBucket(1, 50*time.Millisecond)
	tb.Allow()

	start := time.Now()
	tb.Wait()
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestTokenBucketReset(t *testing.T) {
	tb := NewTokenBucket(2, time.Minute)
	tb.Allow()
	tb.Allow()
	assert.False(t, tb.Allow())

	tb.Reset()
	assert.True(t, tb.Allow())
}

func TestTokenBucketConcurrent(t *testing.T) {
	tb := NewTokenBucket(100, time.Minute)

	done := make(chan bool)
	allowed := make(chan bool, 200)
	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 20; j++ {
				allowed <- tb.Allow()
			}
			done <- true
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}
	close(allowed)

	granted := 0
	for ok := range allowed {
		if ok {
			granted++
		}
	}
	assert.Equal(t, 100, granted)
}
