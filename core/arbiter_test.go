package core

import (
	"math/rand"
	"testing"
	"time"

	"github.com/signalsfoundry/skylight/model"
)

var arbNow = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

func candidate(kind model.SourceKind, accuracy float64, age time.Duration) model.PositionSource {
	return model.PositionSource{
		Kind: kind,
		Position: &model.Position{
			Latitude:       35.0,
			Longitude:      139.0,
			AccuracyMeters: accuracy,
			CapturedAt:     arbNow.Add(-age),
		},
	}
}

func TestSelectPriorityOrder(t *testing.T) {
	live := candidate(model.SourceLive, 50, time.Minute)
	platform := candidate(model.SourcePlatformControl, 10, time.Minute)
	cached := candidate(model.SourceCached, 5, time.Minute)

	// Live wins by kind even with the worst accuracy of the three.
	got := Select(arbNow, []model.PositionSource{cached, platform, live})
	if got == nil || got.AccuracyMeters != 50 {
		t.Fatalf("Select = %+v, want the live fix (accuracy 50)", got)
	}

	// Without live, platform control beats cached.
	got = Select(arbNow, []model.PositionSource{cached, platform})
	if got == nil || got.AccuracyMeters != 10 {
		t.Fatalf("Select = %+v, want the platform fix (accuracy 10)", got)
	}
}

func TestSelectPermutationIndependent(t *testing.T) {
	base := []model.PositionSource{
		candidate(model.SourceLive, 80, 2*time.Minute),
		candidate(model.SourcePlatformControl, 15, time.Minute),
		candidate(model.SourceCached, 30, 10*time.Minute),
		{Kind: model.SourceLive}, // empty source
	}

	want := Select(arbNow, base)
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		shuffled := append([]model.PositionSource(nil), base...)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		got := Select(arbNow, shuffled)
		if (got == nil) != (want == nil) || (got != nil && *got != *want) {
			t.Fatalf("permutation %d changed the result: got %+v, want %+v", i, got, want)
		}
	}
}

func TestSelectRejectsCoarseAccuracy(t *testing.T) {
	// 1000 m is the ceiling, exclusive: exactly 1000 is rejected too,
	// even as the only candidate.
	only := candidate(model.SourceLive, 1000, time.Minute)
	if got := Select(arbNow, []model.PositionSource{only}); got != nil {
		t.Fatalf("Select = %+v, want nil for accuracy at the ceiling", got)
	}

	fine := candidate(model.SourceCached, 999.9, time.Minute)
	if got := Select(arbNow, []model.PositionSource{only, fine}); got == nil || got.AccuracyMeters != 999.9 {
		t.Fatalf("Select = %+v, want the just-under-ceiling cached fix", got)
	}
}

func TestSelectRejectsStaleAndInvalid(t *testing.T) {
	stale := candidate(model.SourceLive, 10, model.MaxPositionAge+time.Minute)
	badLat := candidate(model.SourceLive, 10, time.Minute)
	badLat.Position.Latitude = 95

	if got := Select(arbNow, []model.PositionSource{stale, badLat}); got != nil {
		t.Fatalf("Select = %+v, want nil when every candidate is invalid", got)
	}
}

func TestSelectEmptyInput(t *testing.T) {
	if got := Select(arbNow, nil); got != nil {
		t.Fatalf("Select(nil) = %+v, want nil", got)
	}
	if got := Select(arbNow, []model.PositionSource{{Kind: model.SourceCached}}); got != nil {
		t.Fatalf("Select with only empty sources = %+v, want nil", got)
	}
}

func TestSelectSameKindPrefersAccuracyThenRecency(t *testing.T) {
	coarse := candidate(model.SourceLive, 100, time.Minute)
	sharp := candidate(model.SourceLive, 20, 2*time.Hour)
	if got := Select(arbNow, []model.PositionSource{coarse, sharp}); got == nil || got.AccuracyMeters != 20 {
		t.Fatalf("Select = %+v, want the sharper fix", got)
	}

	older := candidate(model.SourceLive, 20, 2*time.Hour)
	newer := candidate(model.SourceLive, 20, time.Minute)
	got := Select(arbNow, []model.PositionSource{older, newer})
	if got == nil || !got.CapturedAt.Equal(newer.Position.CapturedAt) {
		t.Fatalf("Select = %+v, want the newer of two equally accurate fixes", got)
	}
}
