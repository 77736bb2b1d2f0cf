package dispatch

import "github.com/kjstillabower/weather-lookup/internal/models"

// Observer receives the outcome of the current lookup. Callbacks run on the
// delivery queue, one at a time, never concurrently.
type Observer interface {
	OnWeatherUpdated(model models.WeatherModel)
	OnWeatherFailed(err error)
}

// TokenSource reports whether a token is still the most recently issued one.
type TokenSource interface {
	IsCurrent(token models.Token) bool
}

// ObserverFuncs adapts two plain functions to Observer. A nil field is a no-op.
type ObserverFuncs struct {
	Updated func(models.WeatherModel)
	Failed  func(error)
}

// OnWeatherUpdated calls Updated if set.
func (o ObserverFuncs) OnWeatherUpdated(model models.WeatherModel) {
	if o.Updated != nil {
		o.Updated(model)
	}
}

// OnWeatherFailed calls Failed if set.
func (o ObserverFuncs) OnWeatherFailed(err error) {
	if o.Failed != nil {
		o.Failed(err)
	}
}
