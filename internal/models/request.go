package models

import "fmt"

// RequestKind identifies which variant of a LookupRequest is populated.
type RequestKind int

const (
	// KindNone is the zero value; a request without a variant is invalid.
	KindNone RequestKind = iota
	KindByName
	KindByCoordinate
)

func (k RequestKind) String() string {
	switch k {
	case KindByName:
		return "name"
	case KindByCoordinate:
		return "coordinate"
	default:
		return "none"
	}
}

// Coordinate is a latitude/longitude pair in decimal degrees.
type Coordinate struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// LookupRequest is either a city name or a coordinate. Fields are unexported so
// a request cannot change after construction; use ByName or ByCoordinate.
type LookupRequest struct {
	kind  RequestKind
	city  string
	coord Coordinate
}

// ByName returns a request that looks up weather by city name.
func ByName(city string) LookupRequest {
	return LookupRequest{kind: KindByName, city: city}
}

// ByCoordinate returns a request that looks up weather at lat/lon.
func ByCoordinate(lat, lon float64) LookupRequest {
	return LookupRequest{kind: KindByCoordinate, coord: Coordinate{Latitude: lat, Longitude: lon}}
}

func (r LookupRequest) Kind() RequestKind { return r.kind }

// City returns the city name and true for a by-name request.
func (r LookupRequest) City() (string, bool) {
	return r.city, r.kind == KindByName
}

// Coordinate returns the coordinate and true for a by-coordinate request.
func (r LookupRequest) Coordinate() (Coordinate, bool) {
	return r.coord, r.kind == KindByCoordinate
}

func (r LookupRequest) String() string {
	switch r.kind {
	case KindByName:
		return fmt.Sprintf("name(%s)", r.city)
	case KindByCoordinate:
		return fmt.Sprintf("coordinate(%g,%g)", r.coord.Latitude, r.coord.Longitude)
	default:
		return "none"
	}
}
