package core

import (
	"testing"
	"time"

	"github.com/signalsfoundry/skylight/model"
)

func TestPresetForHourMatchesTable(t *testing.T) {
	want := map[int]model.LightPreset{
		0: model.PresetNight, 1: model.PresetNight, 2: model.PresetNight, 3: model.PresetNight,
		4: model.PresetNight, 5: model.PresetNight,
		6: model.PresetDawn, 7: model.PresetDawn,
		8: model.PresetDay, 9: model.PresetDay, 10: model.PresetDay, 11: model.PresetDay,
		12: model.PresetDay, 13: model.PresetDay, 14: model.PresetDay, 15: model.PresetDay, 16: model.PresetDay,
		17: model.PresetDusk, 18: model.PresetDusk,
		19: model.PresetDusk, 20: model.PresetDusk, 21: model.PresetDusk,
		22: model.PresetNight, 23: model.PresetNight,
	}
	for hour := 0; hour < 24; hour++ {
		if got := PresetForHour(hour); got != want[hour] {
			t.Errorf("PresetForHour(%d) = %q, want %q", hour, got, want[hour])
		}
	}
}

func TestPresetForHourOutOfDomainDefaultsToDawn(t *testing.T) {
	for _, hour := range []int{-1, 24, 99} {
		if got := PresetForHour(hour); got != model.PresetDawn {
			t.Errorf("PresetForHour(%d) = %q, want dawn fallback", hour, got)
		}
	}
}

func TestLightingForAltitudeBandBoundaries(t *testing.T) {
	// Boundaries are closed-open: the boundary altitude belongs to the
	// upper band, and values chain so there is no jump either side.
	for _, boundary := range []float64{-6, 0, 10, 30} {
		below := lightingForAltitude(boundary - 1e-9)
		at := lightingForAltitude(boundary)
		if diff := at.SunIntensity - below.SunIntensity; diff < 0 || diff > 1e-6 {
			t.Errorf("sun intensity discontinuous at %.0f°: below=%.6f at=%.6f", boundary, below.SunIntensity, at.SunIntensity)
		}
	}
}

func TestSunIntensityMonotoneOverSunriseSweep(t *testing.T) {
	prev := -1.0
	for alt := -10.0; alt <= 40.0; alt += 0.25 {
		cfg := lightingForAltitude(alt)
		if cfg.SunIntensity < 0 || cfg.SunIntensity > 1 {
			t.Fatalf("sun intensity %.4f out of [0,1] at altitude %.2f", cfg.SunIntensity, alt)
		}
		if cfg.SunIntensity < prev {
			t.Fatalf("sun intensity decreased at altitude %.2f: %.4f -> %.4f", alt, prev, cfg.SunIntensity)
		}
		prev = cfg.SunIntensity
	}
	if prev != 1.0 {
		t.Errorf("sun intensity at 40° = %.4f, want 1.0", prev)
	}
}

func TestLightingNightBelowCivilTwilight(t *testing.T) {
	cfg := lightingForAltitude(-12)
	if cfg.SunIntensity != 0 {
		t.Errorf("night sun intensity = %v, want 0", cfg.SunIntensity)
	}
	if cfg.ShadowIntensity != 0 {
		t.Errorf("night shadow intensity = %v, want 0", cfg.ShadowIntensity)
	}
	if cfg.FogDensity != 0.50 {
		t.Errorf("night fog density = %v, want 0.50", cfg.FogDensity)
	}
}

func TestAttenuateWeatherScaling(t *testing.T) {
	base := lightingForAltitude(40) // full day values

	overcast := model.WeatherEffects{Precipitation: 0.5, CloudCoverage: 1, WindSpeedMs: 8, Visibility: 0.5}
	got := AttenuateWeather(base, overcast)

	if want := base.SunIntensity * 0.3; !almostEqual(got.SunIntensity, want) {
		t.Errorf("sun under full cloud = %.4f, want %.4f", got.SunIntensity, want)
	}
	if want := clamp01(base.AmbientIntensity + 0.2); !almostEqual(got.AmbientIntensity, want) {
		t.Errorf("ambient under full cloud = %.4f, want %.4f", got.AmbientIntensity, want)
	}
	if want := clamp01(base.FogDensity + 0.5*0.3 + 0.5*0.4); !almostEqual(got.FogDensity, want) {
		t.Errorf("fog in rain = %.4f, want %.4f", got.FogDensity, want)
	}
	if want := base.ShadowIntensity * 0.4; !almostEqual(got.ShadowIntensity, want) {
		t.Errorf("shadow under full cloud = %.4f, want %.4f", got.ShadowIntensity, want)
	}
}

func TestAttenuateWeatherClearIsIdentity(t *testing.T) {
	base := lightingForAltitude(20)
	got := AttenuateWeather(base, model.ClearWeather)
	if got != base {
		t.Errorf("clear weather changed the config: got %+v, want %+v", got, base)
	}
}

func TestAttenuateWeatherStaysBounded(t *testing.T) {
	worst := model.WeatherEffects{Precipitation: 1, CloudCoverage: 1, WindSpeedMs: 40, Visibility: 0}
	for alt := -10.0; alt <= 40.0; alt += 5 {
		got := AttenuateWeather(lightingForAltitude(alt), worst)
		for name, v := range map[string]float64{
			"sun": got.SunIntensity, "ambient": got.AmbientIntensity,
			"fog": got.FogDensity, "shadow": got.ShadowIntensity,
		} {
			if v < 0 || v > 1 {
				t.Fatalf("%s = %.4f out of [0,1] at altitude %.0f under worst weather", name, v, alt)
			}
		}
	}
}

func TestLightingWeatherIndependentOfPreset(t *testing.T) {
	// The weather post-process touches only continuous parameters; the
	// preset must match the plain hour lookup regardless of weather.
	storm := model.WeatherEffects{Precipitation: 1, CloudCoverage: 1, Visibility: 0.1}
	for hour := 0; hour < 24; hour++ {
		local := time.Date(2025, time.June, 15, hour, 30, 0, 0, time.UTC)
		cfg := Lighting(local, 15, storm)
		if cfg.Preset != PresetForHour(hour) {
			t.Errorf("hour %d: preset %q under storm, want %q", hour, cfg.Preset, PresetForHour(hour))
		}
	}
}

func almostEqual(a, b float64) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff < 1e-9
}
