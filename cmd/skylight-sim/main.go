package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/signalsfoundry/skylight/core"
	"github.com/signalsfoundry/skylight/internal/logging"
	"github.com/signalsfoundry/skylight/model"
	"github.com/signalsfoundry/skylight/sources"
	"github.com/signalsfoundry/skylight/store"
	"github.com/signalsfoundry/skylight/timectrl"
)

// simProvider plays the role of the platform location service: it always
// resolves with the configured coordinates.
type simProvider struct {
	lat, lon, accuracy float64
}

func (p *simProvider) RequestPosition(ctx context.Context, opts core.RequestOptions) (model.Position, error) {
	return model.Position{
		Latitude:       p.lat,
		Longitude:      p.lon,
		AccuracyMeters: p.accuracy,
		CapturedAt:     time.Now(),
	}, nil
}

func main() {
	_ = godotenv.Load()

	lat := flag.Float64("lat", 35.6895, "observer latitude in degrees")
	lon := flag.Float64("lon", 139.6917, "observer longitude in degrees")
	accuracy := flag.Float64("accuracy", 25, "simulated fix accuracy in metres")
	duration := flag.Duration("duration", 24*time.Hour, "simulated span to sweep")
	tick := flag.Duration("tick", 10*time.Minute, "simulated tick interval")
	accelerated := flag.Bool("accelerated", true, "run in accelerated mode (vs real-time)")
	storePath := flag.String(
		"store",
		filepath.Join(os.TempDir(), "skylight", "last_position.json"),
		"path of the persisted last-known-position slot",
	)
	cloud := flag.Float64("cloud", 0, "cloud coverage [0,1]")
	precip := flag.Float64("precip", 0, "precipitation intensity [0,1]")
	visibility := flag.Float64("visibility", 1, "visibility [0,1]")
	flag.Parse()

	log := logging.NewFromEnv()
	ctx := context.Background()

	slot, err := store.NewFileSlot(*storePath)
	if err != nil {
		log.Error(ctx, "failed to open position slot", logging.String("error", err.Error()))
		os.Exit(1)
	}
	st := store.New(slot, log)

	provider := &simProvider{lat: *lat, lon: *lon, accuracy: *accuracy}
	acq := core.NewAcquirer(provider, st, log)
	board := sources.NewBoard()

	// The sweep loop below drives derivation itself, so the engine's
	// inline re-derivation on change is routed to a no-op kick.
	eng := core.NewEngine(st, acq, board, log,
		core.WithLocation(time.Local),
		core.WithKick(func() {}),
	)
	eng.SetWeather(model.WeatherEffects{
		CloudCoverage: *cloud,
		Precipitation: *precip,
		Visibility:    *visibility,
	})

	res, err := eng.AcquireAndRefresh(ctx)
	if err != nil {
		log.Error(ctx, "initial acquisition failed", logging.String("error", err.Error()))
		os.Exit(1)
	}
	fmt.Printf("Acquired (%.4f, %.4f) via tier %d\n", res.Position.Latitude, res.Position.Longitude, res.Tier)

	mode := timectrl.RealTime
	if *accelerated {
		mode = timectrl.Accelerated
	}
	start := time.Now()
	tc := timectrl.NewRefreshController(start, *tick, mode)

	tc.AddListener(func(simTime time.Time) {
		// Each tick the provider re-fixes at the simulated instant, the
		// scene time is pinned there, and lighting is re-derived.
		board.Publish(model.SourceLive, model.Position{
			Latitude:       *lat,
			Longitude:      *lon,
			AccuracyMeters: *accuracy,
			CapturedAt:     simTime,
		})
		eng.SetTimeOverride(simTime)

		cfg, err := eng.Refresh(ctx)
		if err != nil {
			fmt.Printf("[%s] no lighting: %v\n", simTime.Format(time.RFC3339), err)
			return
		}

		angles := core.SolarPosition(simTime.UTC(), *lat, *lon)
		fmt.Printf("[%s] %-5s sun_alt=%6.1f az=%5.1f sun=%.2f ambient=%.2f fog=%.2f shadow=%.2f sunRGB=(%.2f, %.2f, %.2f)\n",
			simTime.Format(time.RFC3339),
			cfg.Preset,
			angles.AltitudeDegrees,
			angles.AzimuthDegrees,
			cfg.SunIntensity,
			cfg.AmbientIntensity,
			cfg.FogDensity,
			cfg.ShadowIntensity,
			cfg.SunColor.R, cfg.SunColor.G, cfg.SunColor.B,
		)
	})

	fmt.Printf("Starting day sweep: duration=%s, tick=%s, mode=%v\n", *duration, *tick, mode)
	<-tc.Start(*duration)
	fmt.Println("Sweep complete.")
}
