package location

import (
	"context"

	"github.com/kjstillabower/weather-lookup/internal/models"
	"github.com/kjstillabower/weather-lookup/internal/observability"
	"github.com/kjstillabower/weather-lookup/internal/validation"
	"go.uber.org/zap"
)

// Trigger starts a lookup for a location fix.
type Trigger interface {
	UpdateLocation(ctx context.Context, lat, lon float64) models.Token
}

// Pump turns every fix from feed into a location lookup until ctx is done or
// the feed is closed. Repeated identical fixes each trigger a lookup. Failures
// and out-of-range fixes are logged and skipped.
func Pump(ctx context.Context, feed *Feed, trigger Trigger, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("location")
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-feed.Updates():
			if !ok {
				return
			}
			handle(ctx, ev, trigger, logger)
		}
	}
}

func handle(ctx context.Context, ev Event, trigger Trigger, logger *zap.Logger) {
	if ev.Err != nil {
		observability.LocationUpdatesTotal.WithLabelValues("failed").Inc()
		logger.Warn("location update failed", zap.Error(ev.Err))
		return
	}
	if err := validation.ValidateCoordinate(ev.Fix.Latitude, ev.Fix.Longitude); err != nil {
		observability.LocationUpdatesTotal.WithLabelValues("invalid").Inc()
		logger.Warn("location fix rejected",
			zap.Float64("lat", ev.Fix.Latitude),
			zap.Float64("lon", ev.Fix.Longitude),
			zap.Error(err),
		)
		return
	}
	observability.LocationUpdatesTotal.WithLabelValues("fix").Inc()
	token := trigger.UpdateLocation(ctx, ev.Fix.Latitude, ev.Fix.Longitude)
	logger.Debug("location fix",
		zap.Float64("lat", ev.Fix.Latitude),
		zap.Float64("lon", ev.Fix.Longitude),
		zap.Uint64("token", uint64(token)),
	)
}
