package decode

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/kjstillabower/weather-lookup/internal/models"
)

const op = "decode response"

// payload mirrors the fields the model needs. Pointers distinguish an absent
// field from a zero value.
type payload struct {
	Name *string `json:"name"`
	Main *struct {
		Temp *float64 `json:"temp"`
	} `json:"main"`
	Weather []struct {
		ID *int `json:"id"`
	} `json:"weather"`
}

// Decode parses an OpenWeatherMap current weather payload into a WeatherModel.
// It fails with models.ErrDecode when name, main.temp or weather[0].id is
// missing or has the wrong type. An unrecognized condition code is not an
// error; it maps to IconUnknown.
func Decode(raw []byte) (models.WeatherModel, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return models.WeatherModel{}, models.DecodeError(op, errors.New("empty payload"))
	}

	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return models.WeatherModel{}, models.DecodeError(op, fmt.Errorf("parse response: %w", err))
	}

	if p.Name == nil {
		return models.WeatherModel{}, models.DecodeError(op, missingField("name"))
	}
	if p.Main == nil || p.Main.Temp == nil {
		return models.WeatherModel{}, models.DecodeError(op, missingField("main.temp"))
	}
	if len(p.Weather) == 0 || p.Weather[0].ID == nil {
		return models.WeatherModel{}, models.DecodeError(op, missingField("weather[0].id"))
	}

	code := *p.Weather[0].ID
	temp := math.Round(*p.Main.Temp)
	if temp == 0 {
		// -0.4 rounds to negative zero; show it as 0°C.
		temp = 0
	}
	return models.WeatherModel{
		CityName:           *p.Name,
		TemperatureCelsius: temp,
		ConditionIconKey:   IconKey(code),
		RawConditionCode:   code,
	}, nil
}

func missingField(name string) error {
	return fmt.Errorf("required field %q missing", name)
}
