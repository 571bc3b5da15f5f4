// Package store persists the last-known position in a single named slot.
//
// The slot is deliberately history-free: Save overwrites, Load returns the
// one value or nothing. Corrupt payloads are indistinguishable from an
// empty slot for callers; a fix past the staleness window is dropped and
// the slot cleared.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/signalsfoundry/skylight/internal/logging"
	"github.com/signalsfoundry/skylight/model"
)

// ErrSlotEmpty is returned by Slot.Read when nothing is stored.
var ErrSlotEmpty = errors.New("slot empty")

// Slot is a single named persistent key-value slot. Implementations must
// treat Write as an unconditional overwrite.
type Slot interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
	Clear(ctx context.Context) error
}

// Store reads and writes the last-known position through a Slot, applying
// the 24h staleness rule on load.
type Store struct {
	slot Slot
	log  logging.Logger
	now  func() time.Time
}

// Option customises a Store.
type Option func(*Store)

// WithClock overrides the time source used for staleness checks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New constructs a Store over the given slot. A nil logger gets a noop.
func New(slot Slot, log logging.Logger, opts ...Option) *Store {
	if log == nil {
		log = logging.Noop()
	}
	s := &Store{slot: slot, log: log, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load returns the persisted position, or nil when the slot is empty,
// unparsable, or holds a fix older than model.MaxPositionAge. The stale
// case also clears the slot so the dead value is not re-read forever.
// Load never surfaces an error: absence is a normal answer here.
func (s *Store) Load(ctx context.Context) *model.Position {
	data, err := s.slot.Read(ctx)
	if err != nil {
		if !errors.Is(err, ErrSlotEmpty) {
			s.log.Debug(ctx, "position slot read failed, treating as absent",
				logging.String("error", err.Error()))
		}
		return nil
	}

	var p model.Position
	if err := json.Unmarshal(data, &p); err != nil {
		s.log.Debug(ctx, "position slot corrupt, treating as absent",
			logging.String("error", err.Error()))
		return nil
	}

	now := s.now()
	if age := p.Age(now); age >= model.MaxPositionAge {
		s.log.Debug(ctx, "persisted position expired, clearing slot",
			logging.String("age", age.String()))
		if err := s.slot.Clear(ctx); err != nil {
			s.log.Warn(ctx, "failed to clear expired position slot",
				logging.String("error", err.Error()))
		}
		return nil
	}
	if !p.ValidAt(now) {
		return nil
	}
	return &p
}

// Save overwrites the persisted position unconditionally.
func (s *Store) Save(ctx context.Context, p model.Position) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.slot.Write(ctx, data)
}

// Clear removes the persisted position.
func (s *Store) Clear(ctx context.Context) error {
	return s.slot.Clear(ctx)
}
