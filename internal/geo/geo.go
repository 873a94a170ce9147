// Package geo resolves Indian pincodes to coordinates and finds nearby
// healthcare facilities from OpenStreetMap data.
package geo

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

const (
	earthRadiusKm = 6371.0

	// MaxResults is how many ranked facilities are shown to the user.
	MaxResults = 6
)

// Causes carried by NOT_FOUND errors, so callers can tell an unknown pincode
// from an empty neighbourhood.
var (
	ErrUnknownPincode = errors.New("pincode could not be geocoded")
	ErrNoFacilities   = errors.New("no facilities with coordinates nearby")
)

// Point is a WGS84 coordinate.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Place is a raw facility returned by the search backend. Coordinates may be
// missing for malformed elements.
type Place struct {
	Name      string
	Type      string
	Latitude  *float64
	Longitude *float64
}

// Facility is a ranked place shown to the user.
type Facility struct {
	Name       string  `json:"name"`
	Type       string  `json:"type"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	DistanceKm float64 `json:"distance_km"`
	MapsLink   string  `json:"maps_link"`
}

// DistanceKm returns the great-circle distance between two points.
func DistanceKm(a, b Point) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

// MapsLink builds a Google Maps search URL for a coordinate.
func MapsLink(lat, lon float64) string {
	return fmt.Sprintf("https://www.google.com/maps/search/?api=1&query=%v,%v", lat, lon)
}

// Rank computes distances from origin, drops places without coordinates,
// sorts by distance then name and keeps the closest MaxResults.
func Rank(origin Point, places []Place) []Facility {
	facilities := make([]Facility, 0, len(places))
	for _, p := range places {
		if p.Latitude == nil || p.Longitude == nil {
			continue
		}
		pt := Point{Latitude: *p.Latitude, Longitude: *p.Longitude}
		facilities = append(facilities, Facility{
			Name:       p.Name,
			Type:       p.Type,
			Latitude:   pt.Latitude,
			Longitude:  pt.Longitude,
			DistanceKm: math.Round(DistanceKm(origin, pt)*10) / 10,
			MapsLink:   MapsLink(pt.Latitude, pt.Longitude),
		})
	}

	sort.SliceStable(facilities, func(i, j int) bool {
		if facilities[i].DistanceKm != facilities[j].DistanceKm {
			return facilities[i].DistanceKm < facilities[j].DistanceKm
		}
		return facilities[i].Name < facilities[j].Name
	})

	if len(facilities) > MaxResults {
		facilities = facilities[:MaxResults]
	}
	return facilities
}
