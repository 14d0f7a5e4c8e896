package clock

import (
	"sync"
	"time"
)

// Fake is a manually driven Clock for tests.
type Fake struct {
	mu      sync.Mutex
	now     time.Time
	nextID  int
	tickers map[int]*fakeTicker
}

type fakeTicker struct {
	id     int
	period time.Duration
	next   time.Time
	fn     func()
}

// NewFake returns a fake clock set to start.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start, tickers: map[int]*fakeTicker{}}
}

// Now returns the fake instant.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Every registers fn to run each period as the clock is advanced.
func (f *Fake) Every(period time.Duration, fn func()) func() {
	if period <= 0 {
		period = time.Second
	}
	f.mu.Lock()
	f.nextID++
	id := f.nextID
	f.tickers[id] = &fakeTicker{id: id, period: period, next: f.now.Add(period), fn: fn}
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		delete(f.tickers, id)
		f.mu.Unlock()
	}
}

// Active returns the number of registered periodic callbacks.
func (f *Fake) Active() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tickers)
}

// Advance moves time forward by d, firing every due callback in time order.
// Callbacks run without the clock lock held and may stop or register tickers.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	target := f.now.Add(d)
	f.mu.Unlock()

	for {
		f.mu.Lock()
		due := f.earliestLocked(target)
		if due == nil {
			f.now = target
			f.mu.Unlock()
			return
		}
		f.now = due.next
		due.next = due.next.Add(due.period)
		fn := due.fn
		f.mu.Unlock()
		fn()
	}
}

// Jump moves time forward by d without firing anything, like a suspended host.
// Tickers resume on their next period after the new instant.
func (f *Fake) Jump(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
	for _, t := range f.tickers {
		for !t.next.After(f.now) {
			t.next = t.next.Add(t.period)
		}
	}
}

func (f *Fake) earliestLocked(target time.Time) *fakeTicker {
	var best *fakeTicker
	for _, t := range f.tickers {
		if t.next.After(target) {
			continue
		}
		if best == nil || t.next.Before(best.next) || (t.next.Equal(best.next) && t.id < best.id) {
			best = t
		}
	}
	return best
}
