package dispatch

import (
	"sync"

	"github.com/kjstillabower/weather-lookup/internal/models"
	"github.com/kjstillabower/weather-lookup/internal/observability"
	"github.com/kjstillabower/weather-lookup/internal/traffic"
	"go.uber.org/zap"
)

// Scheduler runs callbacks on the designated delivery context.
type Scheduler interface {
	Post(fn func()) error
}

// Dispatcher forwards completed lookups to the registered Observer, dropping
// any result whose token has been superseded.
type Dispatcher struct {
	tokens TokenSource
	sched  Scheduler
	logger *zap.Logger

	mu       sync.RWMutex
	observer Observer
}

// New creates a Dispatcher. tokens decides staleness; sched is where observer
// callbacks run.
func New(tokens TokenSource, sched Scheduler, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		tokens: tokens,
		sched:  sched,
		logger: logger.Named("dispatch"),
	}
}

// Register installs the observer, replacing any previous one.
func (d *Dispatcher) Register(o Observer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.observer = o
}

func (d *Dispatcher) current() Observer {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.observer
}

// Dispatch delivers a completed lookup. err == nil means model is valid.
// Stale tokens are dropped silently; the token is checked again on the
// delivery context right before the observer runs.
func (d *Dispatcher) Dispatch(token models.Token, model models.WeatherModel, err error) {
	if !d.tokens.IsCurrent(token) {
		d.dropStale(token, "completion")
		return
	}
	postErr := d.sched.Post(func() {
		if !d.tokens.IsCurrent(token) {
			d.dropStale(token, "delivery")
			return
		}
		d.deliver(token, model, err)
	})
	if postErr != nil {
		d.logger.Warn("result not delivered",
			zap.Uint64("token", uint64(token)),
			zap.Error(postErr),
		)
	}
}

func (d *Dispatcher) deliver(token models.Token, model models.WeatherModel, err error) {
	o := d.current()
	if o == nil {
		d.logger.Debug("no observer registered", zap.Uint64("token", uint64(token)))
		observability.LookupDeliveriesTotal.WithLabelValues("unobserved").Inc()
		return
	}
	if err != nil {
		observability.LookupDeliveriesTotal.WithLabelValues("failure").Inc()
		observability.LookupErrorsTotal.WithLabelValues(models.KindLabel(err)).Inc()
		traffic.RecordError()
		o.OnWeatherFailed(err)
		return
	}
	observability.LookupDeliveriesTotal.WithLabelValues("success").Inc()
	traffic.RecordSuccess()
	o.OnWeatherUpdated(model)
}

func (d *Dispatcher) dropStale(token models.Token, stage string) {
	observability.LookupSupersededTotal.Inc()
	traffic.RecordSuperseded()
	d.logger.Debug("dropping superseded result",
		zap.Uint64("token", uint64(token)),
		zap.String("stage", stage),
	)
}
