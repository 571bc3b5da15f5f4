package model

import (
	"encoding/json"
	"time"
)

// MaxPositionAge is the staleness window: a fix older than this is no
// longer considered a usable position, regardless of where it came from.
const MaxPositionAge = 24 * time.Hour

// Position is a single geographic fix reported by a location source.
// It is an immutable value: a newer fix supersedes it, nothing edits it.
type Position struct {
	Latitude       float64
	Longitude      float64
	AccuracyMeters float64
	CapturedAt     time.Time
}

// ValidAt reports whether the position satisfies the validity invariant
// at the given instant: coordinates in range, positive accuracy, and an
// age below MaxPositionAge.
func (p Position) ValidAt(now time.Time) bool {
	if p.Latitude < -90 || p.Latitude > 90 {
		return false
	}
	if p.Longitude < -180 || p.Longitude > 180 {
		return false
	}
	if p.AccuracyMeters <= 0 {
		return false
	}
	age := now.Sub(p.CapturedAt)
	return age >= 0 && age < MaxPositionAge
}

// Age returns how old the fix is at the given instant.
func (p Position) Age(now time.Time) time.Duration {
	return now.Sub(p.CapturedAt)
}

// positionJSON is the persisted wire form. Capture time travels as epoch
// milliseconds; there is no version field.
type positionJSON struct {
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	AccuracyMeters float64 `json:"accuracyMeters"`
	CapturedAtMs   int64   `json:"capturedAtEpochMs"`
}

// MarshalJSON encodes the position in the persisted slot format.
func (p Position) MarshalJSON() ([]byte, error) {
	return json.Marshal(positionJSON{
		Latitude:       p.Latitude,
		Longitude:      p.Longitude,
		AccuracyMeters: p.AccuracyMeters,
		CapturedAtMs:   p.CapturedAt.UnixMilli(),
	})
}

// UnmarshalJSON decodes the persisted slot format.
func (p *Position) UnmarshalJSON(data []byte) error {
	var raw positionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.Latitude = raw.Latitude
	p.Longitude = raw.Longitude
	p.AccuracyMeters = raw.AccuracyMeters
	p.CapturedAt = time.UnixMilli(raw.CapturedAtMs).UTC()
	return nil
}

// SourceKind identifies where a candidate position came from. Smaller
// values win arbitration.
type SourceKind int

const (
	SourceLive SourceKind = iota
	SourcePlatformControl
	SourceCached
)

// String returns the conventional lower-camel name of the source kind.
func (k SourceKind) String() string {
	switch k {
	case SourceLive:
		return "live"
	case SourcePlatformControl:
		return "platformControl"
	case SourceCached:
		return "cached"
	default:
		return "unknown"
	}
}

// PositionSource is one arbitration candidate: a source kind wrapping an
// optional fix. Position is nil when the source currently has nothing.
type PositionSource struct {
	Kind     SourceKind
	Position *Position
}
