package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/signalsfoundry/skylight/internal/logging"
	"github.com/signalsfoundry/skylight/internal/observability"
	"github.com/signalsfoundry/skylight/model"
	"github.com/signalsfoundry/skylight/store"
)

// TierSpec tunes one live tier of the fallback ladder.
type TierSpec struct {
	HighAccuracy bool
	Timeout      time.Duration
	MaxCacheAge  time.Duration
}

// AcquirerConfig carries the ladder tuning. DefaultAcquirerConfig matches
// the documented tier parameters.
type AcquirerConfig struct {
	Precise         TierSpec
	Relaxed         TierSpec
	PlatformTimeout time.Duration
}

// DefaultAcquirerConfig returns the standard ladder tuning: a precise
// high-accuracy request first, then a relaxed low-accuracy retry.
func DefaultAcquirerConfig() AcquirerConfig {
	return AcquirerConfig{
		Precise:         TierSpec{HighAccuracy: true, Timeout: 10 * time.Second, MaxCacheAge: 60 * time.Second},
		Relaxed:         TierSpec{HighAccuracy: false, Timeout: 15 * time.Second, MaxCacheAge: 300 * time.Second},
		PlatformTimeout: 15 * time.Second,
	}
}

// AcquireResult is a successful acquisition: the fix plus the tier that
// produced it (1=precise, 2=relaxed, 3=cached, 4=platform control).
type AcquireResult struct {
	Position model.Position
	Tier     int
}

// SourceKind maps the winning tier onto the arbitration source vocabulary.
func (r AcquireResult) SourceKind() model.SourceKind {
	switch r.Tier {
	case 3:
		return model.SourceCached
	case 4:
		return model.SourcePlatformControl
	default:
		return model.SourceLive
	}
}

// Acquirer obtains a position through a tiered fallback ladder:
//
//	1. precise live request (high accuracy)
//	2. relaxed live request, entered only when tier 1 timed out
//	3. the persisted last-known position
//	4. the platform-control one-shot trigger
//
// Permission denial at tier 1 stops further live requests for that
// attempt but still allows the cached and platform fallbacks. Every
// success writes through to the store. Concurrent Acquire calls share a
// single in-flight attempt; a tier's own timeout is the only way it ends
// early, the caller's ctx does not cancel it mid-tier.
type Acquirer struct {
	provider LocationProvider
	platform PlatformControl
	store    *store.Store
	cfg      AcquirerConfig
	log      logging.Logger
	metrics  *observability.Collector
	tracer   trace.Tracer
	now      func() time.Time

	group singleflight.Group
}

// AcquirerOption customises an Acquirer.
type AcquirerOption func(*Acquirer)

// WithPlatformControl wires the optional tier-4 trigger.
func WithPlatformControl(pc PlatformControl) AcquirerOption {
	return func(a *Acquirer) { a.platform = pc }
}

// WithAcquirerConfig overrides the ladder tuning.
func WithAcquirerConfig(cfg AcquirerConfig) AcquirerOption {
	return func(a *Acquirer) { a.cfg = cfg }
}

// WithAcquirerMetrics wires the Prometheus collector.
func WithAcquirerMetrics(m *observability.Collector) AcquirerOption {
	return func(a *Acquirer) { a.metrics = m }
}

// WithAcquirerClock overrides the time source (tests).
func WithAcquirerClock(now func() time.Time) AcquirerOption {
	return func(a *Acquirer) { a.now = now }
}

// NewAcquirer constructs an Acquirer over a live provider and the
// position store. A nil logger gets a noop.
func NewAcquirer(provider LocationProvider, st *store.Store, log logging.Logger, opts ...AcquirerOption) *Acquirer {
	if log == nil {
		log = logging.Noop()
	}
	a := &Acquirer{
		provider: provider,
		store:    st,
		cfg:      DefaultAcquirerConfig(),
		log:      log,
		tracer:   otel.Tracer("skylight/core"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Acquire walks the fallback ladder and returns the first fix it can get.
// Repeated calls while an attempt is outstanding attach to that attempt
// instead of issuing duplicate provider requests. The terminal error
// after tier 4 is exhausted is a *model.AcquireError carrying the last
// tier's code.
func (a *Acquirer) Acquire(ctx context.Context) (AcquireResult, error) {
	v, err, shared := a.group.Do("acquire", func() (any, error) {
		return a.runLadder(ctx)
	})
	if shared {
		a.log.Debug(ctx, "acquire joined in-flight attempt")
	}
	if err != nil {
		return AcquireResult{}, err
	}
	return v.(AcquireResult), nil
}

// Reset runs the reset cycle: forget any stale in-flight attempt, clear
// the persisted position, and re-acquire from scratch.
func (a *Acquirer) Reset(ctx context.Context) (AcquireResult, error) {
	a.group.Forget("acquire")
	if err := a.store.Clear(ctx); err != nil {
		a.log.Warn(ctx, "failed to clear position store during reset",
			logging.String("error", err.Error()))
	}
	return a.Acquire(ctx)
}

func (a *Acquirer) runLadder(ctx context.Context) (AcquireResult, error) {
	ctx, log := logging.WithAttemptLogger(ctx, a.log)
	ctx, span := a.tracer.Start(ctx, "skylight.acquire")
	defer span.End()

	// Tier 1: precise.
	pos, err := a.requestLive(ctx, log, 1, a.cfg.Precise)
	if err == nil {
		return a.resolve(ctx, log, pos, 1)
	}
	lastErr := err

	// Tier 2: relaxed. Entered only on a tier-1 timeout; denial stops
	// live retries for this attempt, other failures skip straight to the
	// data fallbacks too.
	if ae, ok := model.AsAcquireError(err); ok && ae.Code == model.CodeTimeout {
		pos, err = a.requestLive(ctx, log, 2, a.cfg.Relaxed)
		if err == nil {
			return a.resolve(ctx, log, pos, 2)
		}
		lastErr = err
	} else {
		log.Info(ctx, "skipping relaxed tier", logging.String("reason", string(codeOf(err))))
	}

	// Tier 3: the persisted last-known position.
	if cached := a.loadCached(ctx, log); cached != nil {
		return a.resolve(ctx, log, *cached, 3)
	}

	// Tier 4: platform control.
	pos, err = a.triggerPlatform(ctx, log)
	if err == nil {
		return a.resolve(ctx, log, pos, 4)
	}
	lastErr = err

	span.RecordError(lastErr)
	log.Warn(ctx, "acquisition exhausted all tiers",
		logging.String("last_code", string(codeOf(lastErr))))
	return AcquireResult{}, lastErr
}

// requestLive issues one live provider request under the tier's own
// timeout and classifies the failure.
func (a *Acquirer) requestLive(ctx context.Context, log logging.Logger, tier int, spec TierSpec) (model.Position, error) {
	ctx, span := a.tracer.Start(ctx, fmt.Sprintf("skylight.acquire.tier%d", tier),
		trace.WithAttributes(attribute.Bool("high_accuracy", spec.HighAccuracy)))
	defer span.End()

	reqCtx, cancel := context.WithTimeout(ctx, spec.Timeout)
	defer cancel()

	start := a.now()
	pos, err := a.provider.RequestPosition(reqCtx, RequestOptions{
		HighAccuracy: spec.HighAccuracy,
		Timeout:      spec.Timeout,
		MaxCacheAge:  spec.MaxCacheAge,
	})
	elapsed := a.now().Sub(start)

	if err != nil {
		classified := classifyTierError(err, tier)
		a.metrics.ObserveAcquire(tier, string(codeOf(classified)), elapsed)
		log.Info(ctx, "live tier failed",
			logging.Int("tier", tier),
			logging.String("code", string(codeOf(classified))))
		span.RecordError(classified)
		return model.Position{}, classified
	}

	a.metrics.ObserveAcquire(tier, "success", elapsed)
	return pos, nil
}

func (a *Acquirer) loadCached(ctx context.Context, log logging.Logger) *model.Position {
	start := a.now()
	cached := a.store.Load(ctx)
	elapsed := a.now().Sub(start)

	if cached == nil || !cached.ValidAt(a.now()) {
		a.metrics.ObserveAcquire(3, "miss", elapsed)
		log.Info(ctx, "no usable cached position")
		return nil
	}
	a.metrics.ObserveAcquire(3, "success", elapsed)
	return cached
}

func (a *Acquirer) triggerPlatform(ctx context.Context, log logging.Logger) (model.Position, error) {
	start := a.now()
	if a.platform == nil {
		err := &model.AcquireError{
			Code: model.CodeUnavailable,
			Tier: 4,
			Err:  errors.New("platform control not supported on this host"),
		}
		a.metrics.ObserveAcquire(4, string(model.CodeUnavailable), 0)
		return model.Position{}, err
	}

	ctx, span := a.tracer.Start(ctx, "skylight.acquire.tier4")
	defer span.End()

	reqCtx, cancel := context.WithTimeout(ctx, a.cfg.PlatformTimeout)
	defer cancel()

	pos, err := a.platform.Trigger(reqCtx)
	elapsed := a.now().Sub(start)
	if err != nil {
		classified := classifyTierError(err, 4)
		a.metrics.ObserveAcquire(4, string(codeOf(classified)), elapsed)
		log.Info(ctx, "platform control failed",
			logging.String("code", string(codeOf(classified))))
		span.RecordError(classified)
		return model.Position{}, classified
	}

	a.metrics.ObserveAcquire(4, "success", elapsed)
	return pos, nil
}

// resolve finishes a successful tier: write the fix through to the store
// and hand it back with its tier.
func (a *Acquirer) resolve(ctx context.Context, log logging.Logger, pos model.Position, tier int) (AcquireResult, error) {
	if err := a.store.Save(ctx, pos); err != nil {
		log.Warn(ctx, "write-through to position store failed",
			logging.Int("tier", tier),
			logging.String("error", err.Error()))
	}
	log.Info(ctx, "position acquired",
		logging.Int("tier", tier),
		logging.Float64("accuracy_m", pos.AccuracyMeters))
	return AcquireResult{Position: pos, Tier: tier}, nil
}

// classifyTierError turns a provider error into an *AcquireError for the
// given tier. Context deadlines and unclassified errors get mapped onto
// the documented codes.
func classifyTierError(err error, tier int) error {
	if ae, ok := model.AsAcquireError(err); ok {
		if ae.Tier == tier {
			return ae
		}
		return &model.AcquireError{Code: ae.Code, Tier: tier, Err: ae.Err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &model.AcquireError{Code: model.CodeTimeout, Tier: tier, Err: err}
	}
	return &model.AcquireError{Code: model.CodeUnavailable, Tier: tier, Err: err}
}

func codeOf(err error) model.AcquireErrorCode {
	if ae, ok := model.AsAcquireError(err); ok {
		return ae.Code
	}
	return model.CodeUnavailable
}
