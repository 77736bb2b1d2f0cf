package presenter

import (
	"sync"
	"time"

	"github.com/kjstillabower/weather-lookup/internal/models"
	"go.uber.org/zap"
)

// Snapshot is what the view shows: the last delivered model and the last
// failure, whichever came most recently.
type Snapshot struct {
	Weather     *models.WeatherModel `json:"weather,omitempty"`
	Temperature string               `json:"temperature,omitempty"`
	Icon        string               `json:"icon,omitempty"`
	LastError   string               `json:"lastError,omitempty"`
	UpdatedAt   time.Time            `json:"updatedAt"`
	Deliveries  uint64               `json:"deliveries"`
}

// Presenter is the observer backing the view. A failure keeps the previous
// model on screen and records the error alongside it.
type Presenter struct {
	logger *zap.Logger
	now    func() time.Time

	mu   sync.RWMutex
	snap Snapshot
}

// New creates an empty Presenter.
func New(logger *zap.Logger) *Presenter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Presenter{logger: logger.Named("presenter"), now: time.Now}
}

// OnWeatherUpdated replaces the displayed model and clears any error.
func (p *Presenter) OnWeatherUpdated(m models.WeatherModel) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snap.Weather = &m
	p.snap.Temperature = m.TemperatureString()
	p.snap.Icon = m.ConditionIconKey
	p.snap.LastError = ""
	p.snap.UpdatedAt = p.now()
	p.snap.Deliveries++
	p.logger.Info("weather updated",
		zap.String("city", m.CityName),
		zap.String("temperature", p.snap.Temperature),
		zap.String("icon", m.ConditionIconKey),
	)
}

// OnWeatherFailed logs the failure and records it for display.
func (p *Presenter) OnWeatherFailed(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snap.LastError = err.Error()
	p.snap.UpdatedAt = p.now()
	p.snap.Deliveries++
	p.logger.Warn("weather lookup failed",
		zap.String("kind", models.KindLabel(err)),
		zap.Error(err),
	)
}

// Snapshot returns a copy of the current view state.
func (p *Presenter) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s := p.snap
	if s.Weather != nil {
		w := *s.Weather
		s.Weather = &w
	}
	return s
}
