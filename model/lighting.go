package model

// SolarAngles is the sun's horizontal-coordinate position as seen by an
// observer. Azimuth is measured clockwise from geographic north in
// [0,360); altitude is degrees above the horizon, negative below.
type SolarAngles struct {
	AzimuthDegrees  float64
	AltitudeDegrees float64
}

// LightPreset is one of the discrete lighting profiles the renderer
// knows how to draw. The vocabulary is fixed by the renderer's asset set.
type LightPreset string

const (
	PresetDay   LightPreset = "day"
	PresetDawn  LightPreset = "dawn"
	PresetDusk  LightPreset = "dusk"
	PresetNight LightPreset = "night"
)

// Color is a linear RGB triple with channels in [0,1].
type Color struct {
	R, G, B float64
}

// Lerp interpolates per channel toward other by factor f in [0,1].
func (c Color) Lerp(other Color, f float64) Color {
	return Color{
		R: c.R + (other.R-c.R)*f,
		G: c.G + (other.G-c.G)*f,
		B: c.B + (other.B-c.B)*f,
	}
}

// LightingConfig is the full set of lighting/atmosphere parameters the
// renderer consumes. It is derived, never stored; recomputation is cheap
// and idempotent.
type LightingConfig struct {
	Preset           LightPreset
	SunIntensity     float64 // [0,1]
	AmbientIntensity float64 // [0,1]
	SunColor         Color
	AmbientColor     Color
	FogColor         Color
	FogDensity       float64 // [0,1]
	ShadowIntensity  float64 // [0,1]
}

// WeatherEffects describes current weather as normalized factors. It is
// an external input; this subsystem only attenuates lighting with it.
type WeatherEffects struct {
	Precipitation float64 // [0,1]
	CloudCoverage float64 // [0,1]
	WindSpeedMs   float64 // >= 0
	Visibility    float64 // [0,1], 1 = perfectly clear
}

// ClearWeather is the default used when no weather feed is wired in.
var ClearWeather = WeatherEffects{
	Precipitation: 0,
	CloudCoverage: 0,
	WindSpeedMs:   0,
	Visibility:    1,
}
