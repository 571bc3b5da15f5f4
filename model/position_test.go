package model

import (
	"encoding/json"
	"testing"
	"time"
)

var testNow = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

func TestPositionValidAt(t *testing.T) {
	fresh := testNow.Add(-5 * time.Minute)

	cases := []struct {
		name string
		pos  Position
		want bool
	}{
		{"valid", Position{Latitude: 35.6895, Longitude: 139.6917, AccuracyMeters: 25, CapturedAt: fresh}, true},
		{"lat too high", Position{Latitude: 90.1, Longitude: 0, AccuracyMeters: 25, CapturedAt: fresh}, false},
		{"lat too low", Position{Latitude: -90.1, Longitude: 0, AccuracyMeters: 25, CapturedAt: fresh}, false},
		{"lon too high", Position{Latitude: 0, Longitude: 180.1, AccuracyMeters: 25, CapturedAt: fresh}, false},
		{"lon too low", Position{Latitude: 0, Longitude: -180.1, AccuracyMeters: 25, CapturedAt: fresh}, false},
		{"zero accuracy", Position{Latitude: 0, Longitude: 0, AccuracyMeters: 0, CapturedAt: fresh}, false},
		{"negative accuracy", Position{Latitude: 0, Longitude: 0, AccuracyMeters: -1, CapturedAt: fresh}, false},
		{"boundary coordinates", Position{Latitude: 90, Longitude: -180, AccuracyMeters: 1, CapturedAt: fresh}, true},
		{"just under 24h", Position{Latitude: 0, Longitude: 0, AccuracyMeters: 10, CapturedAt: testNow.Add(-MaxPositionAge + time.Second)}, true},
		{"exactly 24h", Position{Latitude: 0, Longitude: 0, AccuracyMeters: 10, CapturedAt: testNow.Add(-MaxPositionAge)}, false},
		{"from the future", Position{Latitude: 0, Longitude: 0, AccuracyMeters: 10, CapturedAt: testNow.Add(time.Minute)}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.pos.ValidAt(testNow); got != tc.want {
				t.Errorf("ValidAt() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestPositionJSONRoundTrip(t *testing.T) {
	p := Position{
		Latitude:       35.6895,
		Longitude:      139.6917,
		AccuracyMeters: 12.5,
		CapturedAt:     time.Date(2025, time.June, 15, 11, 58, 0, 0, time.UTC),
	}

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var back Position
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back != p {
		t.Errorf("round trip mismatch: got %+v, want %+v", back, p)
	}
}

func TestPositionJSONFieldNames(t *testing.T) {
	p := Position{Latitude: 1, Longitude: 2, AccuracyMeters: 3, CapturedAt: time.UnixMilli(4).UTC()}
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal into map: %v", err)
	}
	for _, key := range []string{"latitude", "longitude", "accuracyMeters", "capturedAtEpochMs"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("persisted form missing field %q (got %v)", key, raw)
		}
	}
}

func TestSourceKindString(t *testing.T) {
	cases := map[SourceKind]string{
		SourceLive:            "live",
		SourcePlatformControl: "platformControl",
		SourceCached:          "cached",
		SourceKind(99):        "unknown",
	}
	for kind, want := range cases {
		if got := kind.String(); got != want {
			t.Errorf("SourceKind(%d).String() = %q, want %q", kind, got, want)
		}
	}
}

func TestColorLerp(t *testing.T) {
	a := Color{R: 0, G: 0.5, B: 1}
	b := Color{R: 1, G: 0.5, B: 0}

	if got := a.Lerp(b, 0); got != a {
		t.Errorf("Lerp(0) = %+v, want %+v", got, a)
	}
	if got := a.Lerp(b, 1); got != b {
		t.Errorf("Lerp(1) = %+v, want %+v", got, b)
	}
	mid := a.Lerp(b, 0.5)
	if mid.R != 0.5 || mid.G != 0.5 || mid.B != 0.5 {
		t.Errorf("Lerp(0.5) = %+v, want {0.5 0.5 0.5}", mid)
	}
}
