package core

import (
	"context"
	"time"

	"github.com/signalsfoundry/skylight/model"
)

// RequestOptions tunes a single live position request.
type RequestOptions struct {
	HighAccuracy bool
	Timeout      time.Duration
	// MaxCacheAge is how stale a provider-side cached fix may be and
	// still satisfy the request.
	MaxCacheAge time.Duration
}

// LocationProvider is the live location source (the platform geolocation
// API behind whatever host bridge exists). Implementations must honour
// ctx cancellation and should return *model.AcquireError for classified
// failures; a bare context deadline is treated as a timeout.
type LocationProvider interface {
	RequestPosition(ctx context.Context, opts RequestOptions) (model.Position, error)
}

// PlatformControl is the opaque platform-provided one-shot position
// trigger used as the last fallback tier. Hosts without one simply leave
// it unset, which the acquirer reports as unavailable.
type PlatformControl interface {
	Trigger(ctx context.Context) (model.Position, error)
}

// Renderer receives derived lighting and the arbitrated position. All
// visual application (fog, terrain, markers) happens on the other side
// of this interface.
type Renderer interface {
	ApplyLighting(cfg model.LightingConfig)
	SetPosition(p model.Position)
}
