package jitter

import (
	"math/rand"
	"testing"
	"time"
)

func TestDurationWithinRange(t *testing.T) {
	base := 100 * time.Millisecond
	for i := 0; i < 50; i++ {
		got := Duration(base, DefaultJitter)
		if got < base || got > base+base/2 {
			t.Fatalf("Duration = %v, want in [%v, %v]", got, base, base+base/2)
		}
	}
}

func TestDurationWithSeedDeterministic(t *testing.T) {
	base := time.Second
	a := DurationWithSeed(base, DefaultJitter, rand.New(rand.NewSource(7)))
	b := DurationWithSeed(base, DefaultJitter, rand.New(rand.NewSource(7)))
	if a != b {
		t.Fatalf("одинаковый seed дал разные значения: %v и %v", a, b)
	}
}

func TestExponentialBackoffDoubling(t *testing.T) {
	base := 100 * time.Millisecond
	max := 10 * time.Second
	for attempt, want := range []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
		800 * time.Millisecond,
	} {
		got := ExponentialBackoff(base, max, attempt, 0)
		if got != want {
			t.Errorf("attempt %d: backoff = %v, want %v", attempt, got, want)
		}
	}
}

func TestExponentialBackoffCappedAtMax(t *testing.T) {
	base := time.Second
	max := 5 * time.Second
	got := ExponentialBackoff(base, max, 30, 0)
	if got != max {
		t.Fatalf("backoff = %v, want cap %v", got, max)
	}
}
