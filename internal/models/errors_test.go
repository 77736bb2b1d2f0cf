package models

import (
	"errors"
	"io"
	"testing"
)

func TestLookupError_IsKindAndCause(t *testing.T) {
	err := TransportError("fetch", io.ErrUnexpectedEOF)

	if !errors.Is(err, ErrTransport) {
		t.Errorf("errors.Is(err, ErrTransport) = false, want true")
	}
	if errors.Is(err, ErrDecode) {
		t.Errorf("errors.Is(err, ErrDecode) = true, want false")
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("errors.Is(err, cause) = false, want true")
	}
	if got, want := err.Error(), "fetch: transport error: unexpected EOF"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestKindLabel(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{InvalidRequest("build", nil), "invalid_request"},
		{TransportError("fetch", io.EOF), "transport"},
		{DecodeError("decode", io.EOF), "decode"},
		{io.EOF, "unknown"},
	}
	for _, tt := range tests {
		if got := KindLabel(tt.err); got != tt.want {
			t.Errorf("KindLabel(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestLookupRequest_Variants(t *testing.T) {
	name := ByName("London")
	if city, ok := name.City(); !ok || city != "London" {
		t.Errorf("City() = %q, %v, want London, true", city, ok)
	}
	if _, ok := name.Coordinate(); ok {
		t.Error("Coordinate() ok = true for by-name request")
	}

	coord := ByCoordinate(51.5, -0.12)
	if c, ok := coord.Coordinate(); !ok || c.Latitude != 51.5 || c.Longitude != -0.12 {
		t.Errorf("Coordinate() = %+v, %v", c, ok)
	}
	if _, ok := coord.City(); ok {
		t.Error("City() ok = true for by-coordinate request")
	}

	var zero LookupRequest
	if zero.Kind() != KindNone {
		t.Errorf("zero Kind() = %v, want none", zero.Kind())
	}
}

func TestWeatherModel_TemperatureString(t *testing.T) {
	m := WeatherModel{TemperatureCelsius: 21}
	if got := m.TemperatureString(); got != "21°C" {
		t.Errorf("TemperatureString() = %q, want 21°C", got)
	}
}
