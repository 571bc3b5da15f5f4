package core

import (
	"time"

	"github.com/signalsfoundry/skylight/model"
)

// MaxUsableAccuracyMeters is the arbitration accuracy ceiling. A fix this
// coarse (IP-level geolocation, typically) is worse than showing nothing.
const MaxUsableAccuracyMeters = 1000.0

// Select picks the best candidate among the given position sources.
//
// It is a pure function, safe to call on every update tick: empty sources
// and invalid or too-coarse positions are dropped, and the survivor with
// the highest-priority kind (live > platformControl > cached) wins. When
// several candidates share a kind, the most accurate one is taken, ties
// broken by newer capture time, so the result does not depend on the
// order of the input slice. Returns nil when nothing survives filtering.
func Select(now time.Time, candidates []model.PositionSource) *model.Position {
	var best *model.PositionSource
	for i := range candidates {
		c := &candidates[i]
		if c.Position == nil {
			continue
		}
		if !c.Position.ValidAt(now) {
			continue
		}
		if c.Position.AccuracyMeters >= MaxUsableAccuracyMeters {
			continue
		}
		if best == nil || betterCandidate(c, best) {
			best = c
		}
	}
	if best == nil {
		return nil
	}
	cp := *best.Position
	return &cp
}

// betterCandidate reports whether a should be preferred over b. Both must
// have non-nil positions.
func betterCandidate(a, b *model.PositionSource) bool {
	if a.Kind != b.Kind {
		return a.Kind < b.Kind
	}
	if a.Position.AccuracyMeters != b.Position.AccuracyMeters {
		return a.Position.AccuracyMeters < b.Position.AccuracyMeters
	}
	return a.Position.CapturedAt.After(b.Position.CapturedAt)
}
