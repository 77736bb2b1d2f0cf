package request

import (
	"errors"
	"math"
	"testing"

	"github.com/kjstillabower/weather-lookup/internal/models"
)

func newTestBuilder(t *testing.T) *Builder {
	t.Helper()
	b, err := NewBuilder("https://api.test.com/data/2.5/weather", "test-api-key-12345")
	if err != nil {
		t.Fatalf("NewBuilder() error = %v", err)
	}
	return b
}

func TestBuilder_Build_ByCoordinate(t *testing.T) {
	b := newTestBuilder(t)

	u, err := b.Build(models.ByCoordinate(51.5, -0.12))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	q := u.Query()
	if got := q.Get("lat"); got != "51.5" {
		t.Errorf("lat = %q, want 51.5", got)
	}
	if got := q.Get("lon"); got != "-0.12" {
		t.Errorf("lon = %q, want -0.12", got)
	}
	if got := q.Get("units"); got != "metric" {
		t.Errorf("units = %q, want metric", got)
	}
	if got := q.Get("appid"); got != "test-api-key-12345" {
		t.Errorf("appid = %q, want test key", got)
	}
	if q.Has("q") {
		t.Error("coordinate query should not carry q")
	}
	if u.Host != "api.test.com" || u.Path != "/data/2.5/weather" {
		t.Errorf("URL = %s, want base endpoint preserved", u)
	}
}

func TestBuilder_Build_ByName(t *testing.T) {
	b := newTestBuilder(t)

	u, err := b.Build(models.ByName("São Paulo"))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if got := u.Query().Get("q"); got != "São Paulo" {
		t.Errorf("q = %q, want São Paulo", got)
	}
	if got := u.RawQuery; got != "appid=test-api-key-12345&q=S%C3%A3o+Paulo&units=metric" {
		t.Errorf("RawQuery = %q", got)
	}
	if u.Query().Has("lat") || u.Query().Has("lon") {
		t.Error("name query should not carry lat/lon")
	}
}

func TestBuilder_Build_Invalid(t *testing.T) {
	b := newTestBuilder(t)

	tests := []struct {
		name string
		req  models.LookupRequest
	}{
		{"no variant", models.LookupRequest{}},
		{"blank name", models.ByName("   ")},
		{"NaN latitude", models.ByCoordinate(math.NaN(), 0)},
		{"infinite longitude", models.ByCoordinate(0, math.Inf(1))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := b.Build(tt.req)
			if !errors.Is(err, models.ErrInvalidRequest) {
				t.Errorf("Build() error = %v, want ErrInvalidRequest", err)
			}
			if u != nil {
				t.Errorf("Build() URL = %s, want nil", u)
			}
		})
	}
}

func TestBuilder_Build_DoesNotMutateBase(t *testing.T) {
	b := newTestBuilder(t)
	if _, err := b.Build(models.ByName("Kyiv")); err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	u, err := b.Build(models.ByCoordinate(1, 2))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if u.Query().Has("q") {
		t.Error("second Build() leaked query from first")
	}
}

func TestFormatCoordinate(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{51.5, "51.5"},
		{-0.12, "-0.12"},
		{0, "0"},
		{-0.00001, "0"},
		{12.345678, "12.3457"},
		{180, "180"},
		{-33.8688, "-33.8688"},
	}
	for _, tt := range tests {
		if got := FormatCoordinate(tt.in); got != tt.want {
			t.Errorf("FormatCoordinate(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewBuilder_InvalidURL(t *testing.T) {
	if _, err := NewBuilder("not a url", "key"); err == nil {
		t.Error("NewBuilder() expected error for URL without scheme/host")
	}
	b, err := NewBuilder("", "key")
	if err != nil {
		t.Fatalf("NewBuilder(\"\") error = %v", err)
	}
	u, _ := b.Build(models.ByName("Oslo"))
	if u.Host != "api.openweathermap.org" {
		t.Errorf("default host = %q", u.Host)
	}
}
