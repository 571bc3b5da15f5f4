package core

import (
	"time"

	"github.com/signalsfoundry/skylight/model"
)

// presetBand is one hour-of-day row of the preset table. Intervals are
// closed-open: [From, To).
type presetBand struct {
	From, To int
	Preset   model.LightPreset
}

// presetTable maps local hour of day to the renderer's discrete preset
// vocabulary. The hour table and the altitude bands below can disagree
// near band edges (early morning is night here even while the sun climbs
// past -6°); the hour table wins for the preset.
var presetTable = []presetBand{
	{From: 8, To: 17, Preset: model.PresetDay},
	{From: 17, To: 19, Preset: model.PresetDusk},
	{From: 19, To: 22, Preset: model.PresetDusk},
	{From: 22, To: 24, Preset: model.PresetNight},
	{From: 0, To: 4, Preset: model.PresetNight},
	{From: 4, To: 6, Preset: model.PresetNight},
	{From: 6, To: 8, Preset: model.PresetDawn},
}

// PresetForHour returns the discrete light preset for a local hour of
// day. Hours outside [0,24) should not occur; they fall back to dawn.
func PresetForHour(hour int) model.LightPreset {
	for _, band := range presetTable {
		if hour >= band.From && hour < band.To {
			return band.Preset
		}
	}
	return model.PresetDawn
}

// Endpoint colors for the altitude-driven interpolation. Each band lerps
// between two of these per RGB channel.
var (
	nightSunColor   = model.Color{R: 0.20, G: 0.25, B: 0.45}
	horizonSunColor = model.Color{R: 1.00, G: 0.55, B: 0.25}
	morningSunColor = model.Color{R: 1.00, G: 0.85, B: 0.70}
	daySunColor     = model.Color{R: 1.00, G: 0.98, B: 0.92}

	nightAmbientColor   = model.Color{R: 0.12, G: 0.14, B: 0.22}
	horizonAmbientColor = model.Color{R: 0.45, G: 0.40, B: 0.45}
	morningAmbientColor = model.Color{R: 0.70, G: 0.72, B: 0.80}
	dayAmbientColor     = model.Color{R: 0.88, G: 0.92, B: 1.00}

	nightFogColor   = model.Color{R: 0.05, G: 0.06, B: 0.10}
	horizonFogColor = model.Color{R: 0.55, G: 0.45, B: 0.45}
	morningFogColor = model.Color{R: 0.75, G: 0.78, B: 0.85}
	dayFogColor     = model.Color{R: 0.82, G: 0.88, B: 0.95}
)

func lerp(a, b, f float64) float64 { return a + (b-a)*f }

// lightingForAltitude computes the continuous lighting parameters for a
// sun altitude in degrees. The bands are closed-open and their endpoint
// values chain, so sun intensity is continuous and monotone over a
// sunrise sweep. Below civil twilight everything bottoms out at the fixed
// night values.
func lightingForAltitude(altitudeDeg float64) model.LightingConfig {
	switch {
	case altitudeDeg < -6:
		// Night: sun fully down.
		return model.LightingConfig{
			SunIntensity:     0,
			AmbientIntensity: 0.12,
			SunColor:         nightSunColor,
			AmbientColor:     nightAmbientColor,
			FogColor:         nightFogColor,
			FogDensity:       0.50,
			ShadowIntensity:  0,
		}
	case altitudeDeg < 0:
		// Civil twilight: linear ramp out of the night values.
		f := (altitudeDeg + 6) / 6
		return model.LightingConfig{
			SunIntensity:     lerp(0, 0.25, f),
			AmbientIntensity: lerp(0.12, 0.25, f),
			SunColor:         nightSunColor.Lerp(horizonSunColor, f),
			AmbientColor:     nightAmbientColor.Lerp(horizonAmbientColor, f),
			FogColor:         nightFogColor.Lerp(horizonFogColor, f),
			FogDensity:       lerp(0.50, 0.30, f),
			ShadowIntensity:  lerp(0, 0.20, f),
		}
	case altitudeDeg < 10:
		// Sunrise/sunset: warm horizon light toward neutral.
		f := altitudeDeg / 10
		return model.LightingConfig{
			SunIntensity:     lerp(0.25, 0.60, f),
			AmbientIntensity: lerp(0.25, 0.35, f),
			SunColor:         horizonSunColor.Lerp(morningSunColor, f),
			AmbientColor:     horizonAmbientColor.Lerp(morningAmbientColor, f),
			FogColor:         horizonFogColor.Lerp(morningFogColor, f),
			FogDensity:       lerp(0.30, 0.15, f),
			ShadowIntensity:  lerp(0.20, 0.50, f),
		}
	case altitudeDeg < 30:
		// Morning/evening: settle into daylight.
		f := (altitudeDeg - 10) / 20
		return model.LightingConfig{
			SunIntensity:     lerp(0.60, 1.0, f),
			AmbientIntensity: lerp(0.35, 0.50, f),
			SunColor:         morningSunColor.Lerp(daySunColor, f),
			AmbientColor:     morningAmbientColor.Lerp(dayAmbientColor, f),
			FogColor:         morningFogColor.Lerp(dayFogColor, f),
			FogDensity:       lerp(0.15, 0.05, f),
			ShadowIntensity:  lerp(0.50, 0.85, f),
		}
	default:
		// Full day.
		return model.LightingConfig{
			SunIntensity:     1.0,
			AmbientIntensity: 0.50,
			SunColor:         daySunColor,
			AmbientColor:     dayAmbientColor,
			FogColor:         dayFogColor,
			FogDensity:       0.05,
			ShadowIntensity:  0.85,
		}
	}
}

// AttenuateWeather applies weather to an already-derived lighting config
// as a pure post-process: clouds dim the sun and its shadows while
// flattening the scene into ambient light, precipitation and poor
// visibility thicken fog. Independent of preset selection.
func AttenuateWeather(cfg model.LightingConfig, w model.WeatherEffects) model.LightingConfig {
	cfg.SunIntensity = clamp01(cfg.SunIntensity * (1 - w.CloudCoverage*0.7))
	cfg.AmbientIntensity = clamp01(cfg.AmbientIntensity + w.CloudCoverage*0.2)
	cfg.FogDensity = clamp01(cfg.FogDensity + w.Precipitation*0.3 + (1-w.Visibility)*0.4)
	cfg.ShadowIntensity = clamp01(cfg.ShadowIntensity * (1 - w.CloudCoverage*0.6))
	return cfg
}

// Lighting derives the full lighting configuration from local time, sun
// altitude, and weather. The preset comes from the hour table; every
// continuous parameter comes from the altitude bands, then weather is
// applied on top. Total function: any inputs produce a usable config.
func Lighting(timeLocal time.Time, sunAltitudeDeg float64, weather model.WeatherEffects) model.LightingConfig {
	cfg := lightingForAltitude(sunAltitudeDeg)
	cfg.Preset = PresetForHour(timeLocal.Hour())
	return AttenuateWeather(cfg, weather)
}
