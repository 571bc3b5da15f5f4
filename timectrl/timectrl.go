package timectrl

import (
	"sync"
	"time"
)

// Clock is the time source the lighting engine derives from. Components
// depend on this abstraction rather than the wall clock so tests and the
// explicit time-override feature can substitute their own time.
type Clock interface {
	// Now returns the current derivation time.
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time { return time.Now() }

// OverrideClock wraps a base clock with an optional pinned override, used
// when the user forces a specific time of day for the scene.
type OverrideClock struct {
	mu       sync.RWMutex
	base     Clock
	override *time.Time
}

// NewOverrideClock constructs an OverrideClock over base; a nil base gets
// the system clock.
func NewOverrideClock(base Clock) *OverrideClock {
	if base == nil {
		base = SystemClock{}
	}
	return &OverrideClock{base: base}
}

// Now returns the override when pinned, the base clock otherwise.
func (c *OverrideClock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.override != nil {
		return *c.override
	}
	return c.base.Now()
}

// Set pins the clock to t.
func (c *OverrideClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.override = &t
}

// Clear unpins the clock.
func (c *OverrideClock) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.override = nil
}

// Overridden reports whether an override is pinned.
func (c *OverrideClock) Overridden() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.override != nil
}

// Mode describes how the RefreshController advances derivation time.
type Mode int

const (
	// RealTime advances according to wall-clock time.
	RealTime Mode = iota
	// Accelerated advances as quickly as the loop can run while still
	// stepping by Interval, for simulated day sweeps.
	Accelerated
)

// RefreshController drives the periodic lighting re-derivation: it fires
// registered listeners once per Interval and immediately on Kick (a
// position or time-override change). It implements Clock for components
// that derive from the controller's notion of time.
type RefreshController struct {
	mu        sync.RWMutex
	StartTime time.Time
	Interval  time.Duration
	Mode      Mode

	// currentTime tracks the controller's derivation time; it advances
	// by Interval per tick from StartTime.
	currentTime time.Time

	listeners []func(time.Time)
	kick      chan struct{}
}

// NewRefreshController constructs a controller. The conventional interval
// for lighting refresh is one minute.
func NewRefreshController(start time.Time, interval time.Duration, mode Mode) *RefreshController {
	return &RefreshController{
		StartTime:   start,
		Interval:    interval,
		Mode:        mode,
		currentTime: start,
		kick:        make(chan struct{}, 1),
	}
}

// Now returns the controller's current derivation time. Implements Clock.
func (rc *RefreshController) Now() time.Time {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return rc.currentTime
}

// SetTime jumps the derivation time, firing no listeners; callers that
// need an immediate re-derivation follow up with Kick.
func (rc *RefreshController) SetTime(t time.Time) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.currentTime = t
}

// AddListener registers a callback invoked on every tick and every Kick.
func (rc *RefreshController) AddListener(fn func(time.Time)) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.listeners = append(rc.listeners, fn)
}

// Kick requests an immediate listener fire without advancing time. It
// never blocks; coalescing multiple kicks into one fire is fine since
// derivation is idempotent.
func (rc *RefreshController) Kick() {
	select {
	case rc.kick <- struct{}{}:
	default:
	}
}

// Start runs the controller for the specified duration in a separate
// goroutine (forever when duration is zero in RealTime mode). It returns
// a channel that is closed when the controller finishes.
func (rc *RefreshController) Start(duration time.Duration) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)

		rc.mu.Lock()
		current := rc.StartTime
		rc.currentTime = current
		rc.mu.Unlock()

		elapsed := time.Duration(0)

		switch rc.Mode {
		case Accelerated:
			for duration <= 0 || elapsed < duration {
				current = current.Add(rc.Interval)
				elapsed += rc.Interval
				rc.advanceTo(current)
			}
		default:
			ticker := time.NewTicker(rc.Interval)
			defer ticker.Stop()

			for {
				if duration > 0 && elapsed >= duration {
					return
				}
				select {
				case <-ticker.C:
					current = current.Add(rc.Interval)
					elapsed += rc.Interval
					rc.advanceTo(current)
				case <-rc.kick:
					rc.fire(rc.Now())
				}
			}
		}
	}()
	return done
}

func (rc *RefreshController) advanceTo(t time.Time) {
	rc.mu.Lock()
	rc.currentTime = t
	rc.mu.Unlock()
	rc.fire(t)
}

func (rc *RefreshController) fire(t time.Time) {
	rc.mu.RLock()
	listeners := append([]func(time.Time){}, rc.listeners...)
	rc.mu.RUnlock()

	for _, fn := range listeners {
		fn(t)
	}
}
