package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFakeAdvanceFiresDueWaiters(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	fake := NewFake(start)

	short := fake.After(time.Second)
	long := fake.After(time.Minute)

	fake.Advance(2 * time.Second)

	select {
	case now := <-short:
		assert.Equal(t, start.Add(2*time.Second), now)
	default:
		t.Fatal("short waiter should have fired")
	}

	select {
	case <-long:
		t.Fatal("long waiter fired early")
	default:
	}

	fake.Advance(time.Minute)
	select {
	case <-long:
	default:
		t.Fatal("long waiter should have fired")
	}
}

func TestFakeAfterZeroFiresImmediately(t *testing.T) {
	fake := NewFake(time.Now())

	select {
	case <-fake.After(0):
	default:
		t.Fatal("zero-delay waiter should fire without an Advance")
	}
}

func TestFakeNowTracksAdvance(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	fake := NewFake(start)

	fake.Advance(7 * 24 * time.Hour)

	assert.Equal(t, start.Add(7*24*time.Hour), fake.Now())
}
