package models

import "fmt"

// Token identifies one fetch attempt. Tokens are minted in increasing order;
// only the most recently minted one may reach the observer.
type Token uint64

// WeatherModel is the display-ready result of a successful lookup.
// TemperatureCelsius is already rounded to a whole degree.
type WeatherModel struct {
	CityName           string  `json:"cityName"`
	TemperatureCelsius float64 `json:"temperatureCelsius"`
	ConditionIconKey   string  `json:"conditionIconKey"`
	RawConditionCode   int     `json:"rawConditionCode"`
}

// TemperatureString formats the temperature for display, e.g. "21°C".
func (m WeatherModel) TemperatureString() string {
	return fmt.Sprintf("%.0f°C", m.TemperatureCelsius)
}
