package request

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/kjstillabower/weather-lookup/internal/models"
)

// DefaultBaseURL is the OpenWeatherMap current weather endpoint.
const DefaultBaseURL = "https://api.openweathermap.org/data/2.5/weather"

const (
	unitsMetric        = "metric"
	coordinateDecimals = 4
)

var (
	errNoVariant     = errors.New("request has neither name nor coordinate")
	errBlankName     = errors.New("city name is blank")
	errBadCoordinate = errors.New("coordinate is not a finite number")
)

// Builder turns a LookupRequest into a fully qualified query URL.
// It holds only the endpoint and API key and is safe for concurrent use.
type Builder struct {
	base   *url.URL
	apiKey string
}

// NewBuilder parses baseURL once; an empty baseURL uses DefaultBaseURL.
func NewBuilder(baseURL, apiKey string) (*Builder, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid API URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid API URL %q: scheme and host required", baseURL)
	}
	return &Builder{base: u, apiKey: apiKey}, nil
}

// Build returns the query URL for req. It fails with models.ErrInvalidRequest
// when req carries no usable variant.
func (b *Builder) Build(req models.LookupRequest) (*url.URL, error) {
	params := url.Values{}
	switch req.Kind() {
	case models.KindByName:
		city, _ := req.City()
		city = strings.TrimSpace(city)
		if city == "" {
			return nil, models.InvalidRequest("build request", errBlankName)
		}
		params.Set("q", city)
	case models.KindByCoordinate:
		c, _ := req.Coordinate()
		if !finite(c.Latitude) || !finite(c.Longitude) {
			return nil, models.InvalidRequest("build request", errBadCoordinate)
		}
		params.Set("lat", FormatCoordinate(c.Latitude))
		params.Set("lon", FormatCoordinate(c.Longitude))
	default:
		return nil, models.InvalidRequest("build request", errNoVariant)
	}
	params.Set("appid", b.apiKey)
	params.Set("units", unitsMetric)

	u := *b.base
	u.RawQuery = params.Encode()
	return &u, nil
}

// FormatCoordinate renders v with four decimal places and trims trailing
// zeros, so 51.5 becomes "51.5" and -0.12 becomes "-0.12".
func FormatCoordinate(v float64) string {
	s := strconv.FormatFloat(v, 'f', coordinateDecimals, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" || s == "" {
		return "0"
	}
	return s
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
