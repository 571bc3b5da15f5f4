package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/signalsfoundry/skylight/core"
	"github.com/signalsfoundry/skylight/internal/logging"
	"github.com/signalsfoundry/skylight/internal/observability"
	"github.com/signalsfoundry/skylight/model"
	"github.com/signalsfoundry/skylight/sources"
	"github.com/signalsfoundry/skylight/store"
	"github.com/signalsfoundry/skylight/timectrl"
)

func main() {
	_ = godotenv.Load()

	metricsAddr := flag.String("metrics-addr", ":9090", "HTTP address for Prometheus /metrics")
	storePath := flag.String("store", "data/last_position.json", "file slot path, used unless SKYLIGHT_REDIS_ADDR is set")
	interval := flag.Duration("refresh-interval", time.Minute, "lighting re-derivation interval")
	flag.Parse()

	log := logging.NewFromEnv()
	ctx := context.Background()

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.String("error", err.Error()))
		os.Exit(1)
	}

	collector, err := observability.NewCollector(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise metrics collector", logging.String("error", err.Error()))
		os.Exit(1)
	}
	metricsSrv := serveMetrics(*metricsAddr, collector, log)

	slot, err := openSlot(log, *storePath)
	if err != nil {
		log.Error(ctx, "failed to open position slot", logging.String("error", err.Error()))
		os.Exit(1)
	}
	st := store.New(slot, log)

	acq := core.NewAcquirer(providerFromEnv(log), st, log,
		core.WithAcquirerMetrics(collector))
	board := sources.NewBoard()

	tc := timectrl.NewRefreshController(time.Now(), *interval, timectrl.RealTime)
	eng := core.NewEngine(st, acq, board, log,
		core.WithEngineMetrics(collector),
		core.WithKick(tc.Kick),
	)
	tc.AddListener(func(time.Time) {
		if _, err := eng.Refresh(ctx); err != nil && !errors.Is(err, model.ErrNoPosition) {
			log.Warn(ctx, "refresh failed", logging.String("error", err.Error()))
		}
	})

	go func() {
		if _, err := eng.AcquireAndRefresh(ctx); err != nil {
			log.Warn(ctx, "startup acquisition failed, waiting for a fix",
				logging.String("error", err.Error()))
		}
	}()

	log.Info(ctx, "skylightd running",
		logging.String("metrics_addr", *metricsAddr),
		logging.String("refresh_interval", interval.String()))
	tc.Start(0)

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	<-stopCtx.Done()

	log.Info(ctx, "shutting down skylightd")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
	observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)
}

func serveMetrics(addr string, collector *observability.Collector, log logging.Logger) *http.Server {
	if collector == nil {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn(context.Background(), "metrics server exited", logging.String("error", err.Error()))
		}
	}()

	log.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}

// openSlot picks the slot backend: Redis when SKYLIGHT_REDIS_ADDR is set,
// the single-file slot otherwise.
func openSlot(log logging.Logger, path string) (store.Slot, error) {
	if addr := os.Getenv("SKYLIGHT_REDIS_ADDR"); addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: os.Getenv("SKYLIGHT_REDIS_PASSWORD"),
		})
		log.Info(context.Background(), "using Redis position slot", logging.String("addr", addr))
		return store.NewRedisSlot(client, "skylight:last_position"), nil
	}
	return store.NewFileSlot(path)
}

// surveyedProvider serves a fixed installation position from deployment
// config, for hosts without a live location service.
type surveyedProvider struct {
	pos model.Position
}

func (p *surveyedProvider) RequestPosition(ctx context.Context, opts core.RequestOptions) (model.Position, error) {
	pos := p.pos
	pos.CapturedAt = time.Now()
	return pos, nil
}

// unavailableProvider rejects every live request, pushing acquisition onto
// the cached and platform-control tiers.
type unavailableProvider struct{}

func (unavailableProvider) RequestPosition(ctx context.Context, opts core.RequestOptions) (model.Position, error) {
	return model.Position{}, &model.AcquireError{
		Code: model.CodeUnavailable,
		Err:  errors.New("no location provider configured"),
	}
}

// providerFromEnv builds the live provider. SKYLIGHT_LAT / SKYLIGHT_LON
// configure a surveyed installation position; without them the daemon
// relies on the persisted slot.
func providerFromEnv(log logging.Logger) core.LocationProvider {
	latStr, lonStr := os.Getenv("SKYLIGHT_LAT"), os.Getenv("SKYLIGHT_LON")
	if latStr == "" || lonStr == "" {
		log.Info(context.Background(), "no surveyed position configured, live tier disabled")
		return unavailableProvider{}
	}

	lat, errLat := strconv.ParseFloat(latStr, 64)
	lon, errLon := strconv.ParseFloat(lonStr, 64)
	if errLat != nil || errLon != nil {
		log.Warn(context.Background(), "unparseable SKYLIGHT_LAT/SKYLIGHT_LON, live tier disabled",
			logging.String("lat", latStr), logging.String("lon", lonStr))
		return unavailableProvider{}
	}

	accuracy := 50.0
	if s := os.Getenv("SKYLIGHT_ACCURACY_M"); s != "" {
		if v, err := strconv.ParseFloat(s, 64); err == nil && v > 0 {
			accuracy = v
		}
	}

	return &surveyedProvider{pos: model.Position{
		Latitude:       lat,
		Longitude:      lon,
		AccuracyMeters: accuracy,
	}}
}
