package lookup

import (
	"context"

	"github.com/kjstillabower/weather-lookup/internal/decode"
	"github.com/kjstillabower/weather-lookup/internal/dispatch"
	"github.com/kjstillabower/weather-lookup/internal/models"
	"github.com/kjstillabower/weather-lookup/internal/observability"
	"go.uber.org/zap"
)

// Trigger labels where a lookup came from.
type Trigger string

const (
	TriggerName     Trigger = "name"
	TriggerLocation Trigger = "location"
)

// Coordinator wires the trigger paths through fetch, decode and dispatch.
type Coordinator struct {
	exec   *Executor
	disp   *dispatch.Dispatcher
	logger *zap.Logger
}

// NewCoordinator creates a Coordinator. The dispatcher must use exec as its
// token source.
func NewCoordinator(exec *Executor, disp *dispatch.Dispatcher, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{exec: exec, disp: disp, logger: logger.Named("coordinator")}
}

// SetObserver registers the observer that receives results.
func (c *Coordinator) SetObserver(o dispatch.Observer) {
	c.disp.Register(o)
}

// SearchCity is the Name Trigger.
func (c *Coordinator) SearchCity(ctx context.Context, city string) models.Token {
	observability.RecordCitySearch(city)
	return c.Lookup(ctx, models.ByName(city), TriggerName)
}

// UpdateLocation is the Location Trigger. Every fix starts a lookup, even one
// equal to the previous fix.
func (c *Coordinator) UpdateLocation(ctx context.Context, lat, lon float64) models.Token {
	return c.Lookup(ctx, models.ByCoordinate(lat, lon), TriggerLocation)
}

// Lookup starts a lookup for req and returns its token. The result reaches
// the observer only if no newer lookup has started by the time it is
// delivered.
func (c *Coordinator) Lookup(ctx context.Context, req models.LookupRequest, trigger Trigger) models.Token {
	observability.LookupsIssuedTotal.WithLabelValues(string(trigger)).Inc()
	token := c.exec.Fetch(ctx, req, c.complete)
	observability.LoggerFromContext(ctx, c.logger).Debug("lookup issued",
		zap.Uint64("token", uint64(token)),
		zap.String("trigger", string(trigger)),
	)
	return token
}

func (c *Coordinator) complete(token models.Token, payload []byte, err error) {
	var model models.WeatherModel
	if err == nil {
		model, err = decode.Decode(payload)
	}
	c.disp.Dispatch(token, model, err)
}

// Close stops accepting lookups and waits for in-flight calls to finish.
func (c *Coordinator) Close(ctx context.Context) error {
	return c.exec.Close(ctx)
}
