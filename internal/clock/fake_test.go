package clock

import (
	"testing"
	"time"
)

func TestFakeAdvanceFiresEachPeriod(t *testing.T) {
	start := time.Unix(1700000000, 0)
	f := NewFake(start)
	var fired []time.Time
	stop := f.Every(time.Second, func() {
		fired = append(fired, f.Now())
	})
	defer stop()

	f.Advance(3500 * time.Millisecond)
	if len(fired) != 3 {
		t.Fatalf("expected 3 ticks, got %d", len(fired))
	}
	for i, at := range fired {
		want := start.Add(time.Duration(i+1) * time.Second)
		if !at.Equal(want) {
			t.Fatalf("tick %d at %v, expected %v", i, at, want)
		}
	}
	if got := f.Now(); !got.Equal(start.Add(3500 * time.Millisecond)) {
		t.Fatalf("unexpected now %v", got)
	}
}

func TestFakeStopFromCallback(t *testing.T) {
	f := NewFake(time.Unix(0, 0))
	count := 0
	var stop func()
	stop = f.Every(time.Second, func() {
		count++
		if count == 2 {
			stop()
		}
	})
	f.Advance(10 * time.Second)
	if count != 2 {
		t.Fatalf("expected 2 ticks before stop, got %d", count)
	}
	if f.Active() != 0 {
		t.Fatalf("expected no active tickers, got %d", f.Active())
	}
}

func TestFakeJumpSkipsTicks(t *testing.T) {
	start := time.Unix(0, 0)
	f := NewFake(start)
	count := 0
	stop := f.Every(time.Second, func() { count++ })
	defer stop()

	f.Jump(time.Hour)
	if count != 0 {
		t.Fatalf("expected no ticks during jump, got %d", count)
	}
	f.Advance(time.Second)
	if count != 1 {
		t.Fatalf("expected 1 tick after jump, got %d", count)
	}
}
