// Package sources tracks the latest fix reported by each position source.
package sources

import (
	"sync"

	"github.com/signalsfoundry/skylight/model"
)

// EventType indicates what kind of change happened on the board.
type EventType int

const (
	EventFixUpdated EventType = iota
	EventFixCleared
)

// Event is emitted to subscribers when a source's latest fix changes.
type Event struct {
	Type     EventType
	Kind     model.SourceKind
	Position *model.Position // nil for EventFixCleared
}

// Board is a thread-safe registry of the newest fix per source kind.
// Arbitration consumes a Snapshot of it each tick; subscribers get change
// events so lighting can be re-derived immediately on any position change.
type Board struct {
	mu sync.RWMutex

	latest map[model.SourceKind]*model.Position
	subs   []func(Event)
}

// NewBoard constructs an empty board.
func NewBoard() *Board {
	return &Board{latest: make(map[model.SourceKind]*model.Position)}
}

// Publish records the newest fix for a source and notifies subscribers.
// The board stores its own copy of p.
func (b *Board) Publish(kind model.SourceKind, p model.Position) {
	b.mu.Lock()
	stored := p
	b.latest[kind] = &stored
	event := Event{Type: EventFixUpdated, Kind: kind, Position: &stored}
	subs := append([]func(Event){}, b.subs...)
	b.mu.Unlock()

	// Notify outside the lock to avoid deadlocks with re-entrant readers.
	for _, sub := range subs {
		sub(event)
	}
}

// ClearKind drops the stored fix for one source and notifies subscribers.
func (b *Board) ClearKind(kind model.SourceKind) {
	b.mu.Lock()
	_, had := b.latest[kind]
	delete(b.latest, kind)
	event := Event{Type: EventFixCleared, Kind: kind}
	subs := append([]func(Event){}, b.subs...)
	b.mu.Unlock()

	if !had {
		return
	}
	for _, sub := range subs {
		sub(event)
	}
}

// Clear drops every stored fix without emitting per-kind events. Used by
// the reset cycle, which follows up with a fresh acquisition anyway.
func (b *Board) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.latest = make(map[model.SourceKind]*model.Position)
}

// Latest returns the stored fix for one source kind, or nil.
func (b *Board) Latest(kind model.SourceKind) *model.Position {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if p := b.latest[kind]; p != nil {
		cp := *p
		return &cp
	}
	return nil
}

// Snapshot returns the full candidate set in a stable kind order, one
// entry per source kind that currently holds a fix.
func (b *Board) Snapshot() []model.PositionSource {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]model.PositionSource, 0, len(b.latest))
	for _, kind := range []model.SourceKind{model.SourceLive, model.SourcePlatformControl, model.SourceCached} {
		if p := b.latest[kind]; p != nil {
			cp := *p
			out = append(out, model.PositionSource{Kind: kind, Position: &cp})
		}
	}
	return out
}

// Subscribe registers a callback for board events. It returns an
// unsubscribe function.
func (b *Board) Subscribe(fn func(Event)) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, fn)
	idx := len(b.subs) - 1

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if idx < 0 || idx >= len(b.subs) {
			return
		}
		b.subs = append(b.subs[:idx], b.subs[idx+1:]...)
		idx = -1
	}
}
