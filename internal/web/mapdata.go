package web

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Stockholm city center, used as the map center and as the fallback for
// postal codes without a known coordinate.
const (
	DefaultLat = 59.3293
	DefaultLng = 18.0686
)

// Coordinate is a WGS84 map position.
type Coordinate struct {
	Lat float64 `yaml:"lat" json:"lat"`
	Lng float64 `yaml:"lng" json:"lng"`
}

// Approximate centers for postal codes in the catalogue. A YAML file
// can extend or override these at startup.
var builtinCoordinates = map[string]Coordinate{
	"167 71": {Lat: 59.3430, Lng: 17.9390}, // Bromma
	"167 72": {Lat: 59.3402, Lng: 17.9465}, // Bromma
	"114 25": {Lat: 59.3428, Lng: 18.0785}, // Östermalm
	"118 24": {Lat: 59.3160, Lng: 18.0672}, // Södermalm
	"131 50": {Lat: 59.3110, Lng: 18.1520}, // Saltsjö-Duvnäs
	"181 30": {Lat: 59.3612, Lng: 18.1622}, // Lidingö
}

// Coordinates maps postal codes to map positions.
type Coordinates struct {
	byPostal map[string]Coordinate
}

// LoadCoordinates builds the coordinate set from the built-in defaults,
// extended by the YAML file at path when it is non-empty. The file maps
// postal codes to lat/lng pairs:
//
//	"167 72":
//	  lat: 59.3402
//	  lng: 17.9465
func LoadCoordinates(path string) (*Coordinates, error) {
	coords := make(map[string]Coordinate, len(builtinCoordinates))
	for code, c := range builtinCoordinates {
		coords[code] = c
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read coordinates file: %w", err)
		}
		var fromFile map[string]Coordinate
		if err := yaml.Unmarshal(data, &fromFile); err != nil {
			return nil, fmt.Errorf("failed to parse coordinates file: %w", err)
		}
		for code, c := range fromFile {
			coords[code] = c
		}
	}

	return &Coordinates{byPostal: coords}, nil
}

// Lookup returns the coordinate for a postal code, falling back to the
// Stockholm center for unknown codes.
func (c *Coordinates) Lookup(postalCode string) (Coordinate, bool) {
	if coord, ok := c.byPostal[postalCode]; ok {
		return coord, true
	}
	return Coordinate{Lat: DefaultLat, Lng: DefaultLng}, false
}

// MarkerColor buckets an average salary into a map marker color.
func MarkerColor(avgSalary int64) string {
	switch {
	case avgSalary > 1_000_000:
		return "red"
	case avgSalary > 750_000:
		return "orange"
	case avgSalary > 500_000:
		return "yellow"
	default:
		return "green"
	}
}
