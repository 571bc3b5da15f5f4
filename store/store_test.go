package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/signalsfoundry/skylight/model"
)

// memSlot is an in-memory Slot for tests.
type memSlot struct {
	data []byte
	set  bool
}

func (m *memSlot) Read(ctx context.Context) ([]byte, error) {
	if !m.set {
		return nil, ErrSlotEmpty
	}
	return m.data, nil
}

func (m *memSlot) Write(ctx context.Context, data []byte) error {
	m.data = append([]byte(nil), data...)
	m.set = true
	return nil
}

func (m *memSlot) Clear(ctx context.Context) error {
	m.data = nil
	m.set = false
	return nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

var storeNow = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

func validPosition() model.Position {
	return model.Position{
		Latitude:       35.6895,
		Longitude:      139.6917,
		AccuracyMeters: 20,
		CapturedAt:     storeNow.Add(-time.Minute),
	}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := New(&memSlot{}, nil, WithClock(fixedClock(storeNow)))

	p := validPosition()
	if err := s.Save(ctx, p); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got := s.Load(ctx)
	if got == nil {
		t.Fatal("Load returned nil after Save")
	}
	if *got != p {
		t.Errorf("Load = %+v, want %+v", *got, p)
	}
}

func TestStoreLoadEmpty(t *testing.T) {
	s := New(&memSlot{}, nil, WithClock(fixedClock(storeNow)))
	if got := s.Load(context.Background()); got != nil {
		t.Errorf("Load on empty slot = %+v, want nil", got)
	}
}

func TestStoreLoadCorruptTreatedAsAbsent(t *testing.T) {
	ctx := context.Background()
	slot := &memSlot{}
	if err := slot.Write(ctx, []byte("{not json")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	s := New(slot, nil, WithClock(fixedClock(storeNow)))
	if got := s.Load(ctx); got != nil {
		t.Errorf("Load on corrupt slot = %+v, want nil", got)
	}
}

func TestStoreLoadExpiredClearsSlot(t *testing.T) {
	ctx := context.Background()
	slot := &memSlot{}
	s := New(slot, nil, WithClock(fixedClock(storeNow)))

	p := validPosition()
	if err := s.Save(ctx, p); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// Simulate 24h elapsing past the capture time.
	late := New(slot, nil, WithClock(fixedClock(p.CapturedAt.Add(model.MaxPositionAge))))
	if got := late.Load(ctx); got != nil {
		t.Errorf("Load after expiry = %+v, want nil", got)
	}
	if slot.set {
		t.Error("expired load should clear the slot")
	}
}

func TestStoreClear(t *testing.T) {
	ctx := context.Background()
	s := New(&memSlot{}, nil, WithClock(fixedClock(storeNow)))

	if err := s.Save(ctx, validPosition()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if got := s.Load(ctx); got != nil {
		t.Errorf("Load after Clear = %+v, want nil", got)
	}
}

func TestFileSlotRoundTrip(t *testing.T) {
	ctx := context.Background()
	slot, err := NewFileSlot(filepath.Join(t.TempDir(), "pos", "last_position.json"))
	if err != nil {
		t.Fatalf("NewFileSlot: %v", err)
	}

	if _, err := slot.Read(ctx); err != ErrSlotEmpty {
		t.Errorf("Read on missing file = %v, want ErrSlotEmpty", err)
	}

	payload := []byte(`{"latitude":1}`)
	if err := slot.Write(ctx, payload); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := slot.Read(ctx)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("Read = %q, want %q", got, payload)
	}

	if err := slot.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := slot.Read(ctx); err != ErrSlotEmpty {
		t.Errorf("Read after Clear = %v, want ErrSlotEmpty", err)
	}
	// Clearing twice is fine.
	if err := slot.Clear(ctx); err != nil {
		t.Errorf("second Clear: %v", err)
	}
}
