package core

import (
	"context"
	"sync"
	"time"

	"github.com/signalsfoundry/skylight/internal/logging"
	"github.com/signalsfoundry/skylight/internal/observability"
	"github.com/signalsfoundry/skylight/model"
	"github.com/signalsfoundry/skylight/sources"
	"github.com/signalsfoundry/skylight/store"
	"github.com/signalsfoundry/skylight/timectrl"
)

// Engine composes the positioning and lighting pipeline: the acquirer
// feeds the source board, arbitration picks the best candidate each
// refresh, and the solar + lighting derivation pushes a config to the
// renderer. Derivation is synchronous and cheap; the only suspension
// points live inside the acquirer.
type Engine struct {
	store    *store.Store
	acquirer *Acquirer
	board    *sources.Board
	clock    *timectrl.OverrideClock
	renderer Renderer
	log      logging.Logger
	metrics  *observability.Collector
	kick     func()
	loc      *time.Location

	mu           sync.RWMutex
	weather      model.WeatherEffects
	lastPosition *model.Position
	lastLighting *model.LightingConfig
}

// EngineOption customises an Engine.
type EngineOption func(*Engine)

// WithRenderer wires the external renderer sink.
func WithRenderer(r Renderer) EngineOption {
	return func(e *Engine) { e.renderer = r }
}

// WithEngineMetrics wires the Prometheus collector.
func WithEngineMetrics(m *observability.Collector) EngineOption {
	return func(e *Engine) { e.metrics = m }
}

// WithBaseClock sets the clock the engine derives from when no time
// override is pinned. Defaults to the system clock.
func WithBaseClock(c timectrl.Clock) EngineOption {
	return func(e *Engine) { e.clock = timectrl.NewOverrideClock(c) }
}

// WithLocation sets the observer's time zone, which drives the
// hour-of-day preset table. Defaults to the process-local zone.
func WithLocation(loc *time.Location) EngineOption {
	return func(e *Engine) { e.loc = loc }
}

// WithKick sets the hook invoked whenever position, weather, or the time
// override changes, so an attached RefreshController can fire an
// immediate re-derivation. Without it the engine re-derives inline.
func WithKick(kick func()) EngineOption {
	return func(e *Engine) { e.kick = kick }
}

// NewEngine constructs the engine. It subscribes to the board so any
// published fix triggers an immediate re-derivation.
func NewEngine(st *store.Store, acquirer *Acquirer, board *sources.Board, log logging.Logger, opts ...EngineOption) *Engine {
	if log == nil {
		log = logging.Noop()
	}
	e := &Engine{
		store:    st,
		acquirer: acquirer,
		board:    board,
		clock:    timectrl.NewOverrideClock(nil),
		log:      log,
		weather:  model.ClearWeather,
		loc:      time.Local,
	}
	for _, opt := range opts {
		opt(e)
	}

	board.Subscribe(func(sources.Event) { e.changed() })
	return e
}

// changed reacts to any input change: hand off to the refresh loop when
// one is attached, otherwise re-derive inline.
func (e *Engine) changed() {
	if e.kick != nil {
		e.kick()
		return
	}
	e.Refresh(context.Background())
}

// Now returns the engine's current derivation time (override-aware).
func (e *Engine) Now() time.Time { return e.clock.Now() }

// Refresh arbitrates the current candidate set and re-derives lighting.
// With no usable position it returns model.ErrNoPosition, a signal to
// suppress position-dependent visuals rather than a fault, and leaves
// the renderer untouched.
func (e *Engine) Refresh(ctx context.Context) (*model.LightingConfig, error) {
	now := e.clock.Now()

	candidates := e.board.Snapshot()
	if cached := e.store.Load(ctx); cached != nil {
		candidates = append(candidates, model.PositionSource{Kind: model.SourceCached, Position: cached})
	}

	pos := Select(now, candidates)
	if pos == nil {
		e.log.Debug(ctx, "no arbitration candidate survived filtering",
			logging.Int("candidates", len(candidates)))
		return nil, model.ErrNoPosition
	}

	angles := SolarPosition(now.UTC(), pos.Latitude, pos.Longitude)
	cfg := Lighting(now.In(e.loc), angles.AltitudeDegrees, e.Weather())

	if e.renderer != nil {
		e.renderer.SetPosition(*pos)
		e.renderer.ApplyLighting(cfg)
	}

	e.metrics.SetSolarAltitude(angles.AltitudeDegrees)
	e.metrics.SetPositionAge(pos.Age(now))
	e.metrics.SetLightPreset(string(cfg.Preset))

	e.mu.Lock()
	e.lastPosition = pos
	e.lastLighting = &cfg
	e.mu.Unlock()

	e.log.Debug(ctx, "lighting re-derived",
		logging.String("preset", string(cfg.Preset)),
		logging.Float64("sun_altitude_deg", angles.AltitudeDegrees),
		logging.Float64("sun_intensity", cfg.SunIntensity))
	return &cfg, nil
}

// AcquireAndRefresh runs an acquisition, publishes the winning fix on the
// board under its source kind, and re-derives lighting. Acquisition
// failure still refreshes from whatever the board and store hold.
func (e *Engine) AcquireAndRefresh(ctx context.Context) (AcquireResult, error) {
	res, err := e.acquirer.Acquire(ctx)
	if err != nil {
		e.log.Warn(ctx, "acquisition failed",
			logging.String("error", err.Error()))
		e.Refresh(ctx)
		return AcquireResult{}, err
	}

	e.board.Publish(res.SourceKind(), res.Position)
	return res, nil
}

// ResetGeolocation is the caller-initiated reset cycle: drop every known
// fix and the persisted position, then acquire from scratch.
func (e *Engine) ResetGeolocation(ctx context.Context) (AcquireResult, error) {
	e.board.Clear()
	res, err := e.acquirer.Reset(ctx)
	if err != nil {
		e.Refresh(ctx)
		return AcquireResult{}, err
	}

	e.board.Publish(res.SourceKind(), res.Position)
	return res, nil
}

// SetWeather swaps the weather input and re-derives immediately.
func (e *Engine) SetWeather(w model.WeatherEffects) {
	e.mu.Lock()
	e.weather = w
	e.mu.Unlock()
	e.changed()
}

// Weather returns the current weather input.
func (e *Engine) Weather() model.WeatherEffects {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.weather
}

// SetTimeOverride pins derivation time and re-derives immediately.
func (e *Engine) SetTimeOverride(t time.Time) {
	e.clock.Set(t)
	e.changed()
}

// ClearTimeOverride unpins derivation time and re-derives immediately.
func (e *Engine) ClearTimeOverride() {
	e.clock.Clear()
	e.changed()
}

// CurrentPosition returns the most recently arbitrated position, nil
// before the first successful refresh.
func (e *Engine) CurrentPosition() *model.Position {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.lastPosition == nil {
		return nil
	}
	cp := *e.lastPosition
	return &cp
}

// CurrentLighting returns the most recently derived lighting config, nil
// before the first successful refresh.
func (e *Engine) CurrentLighting() *model.LightingConfig {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.lastLighting == nil {
		return nil
	}
	cp := *e.lastLighting
	return &cp
}
