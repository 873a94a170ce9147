package geo

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func TestDistanceKm(t *testing.T) {
	delhi := Point{Latitude: 28.6139, Longitude: 77.2090}
	mumbai := Point{Latitude: 19.0760, Longitude: 72.8777}

	assert.InDelta(t, 1153, DistanceKm(delhi, mumbai), 5)
	assert.Zero(t, DistanceKm(delhi, delhi))
}

func TestMapsLink(t *testing.T) {
	assert.Equal(t, "https://www.google.com/maps/search/?api=1&query=28.61,77.2", MapsLink(28.61, 77.2))
}

func TestRank(t *testing.T) {
	origin := Point{Latitude: 28.6, Longitude: 77.2}
	places := []Place{
		{Name: "Far", Type: "hospital", Latitude: f(28.9), Longitude: f(77.2)},
		{Name: "No coords", Type: "clinic"},
		{Name: "Near B", Type: "clinic", Latitude: f(28.61), Longitude: f(77.2)},
		{Name: "Near A", Type: "clinic", Latitude: f(28.61), Longitude: f(77.2)},
		{Name: "Half", Type: "doctors", Latitude: f(28.7), Longitude: nil},
	}

	got := Rank(origin, places)
	require.Len(t, got, 3)
	assert.Equal(t, "Near A", got[0].Name)
	assert.Equal(t, "Near B", got[1].Name)
	assert.Equal(t, "Far", got[2].Name)
	assert.Equal(t, 1.1, got[0].DistanceKm)
	assert.Equal(t, MapsLink(28.61, 77.2), got[0].MapsLink)
}

func TestRank_TruncatesAndIsSorted(t *testing.T) {
	origin := Point{Latitude: 20, Longitude: 78}
	rng := rand.New(rand.NewSource(42))

	var places []Place
	for i := 0; i < 40; i++ {
		places = append(places, Place{
			Name:      string(rune('A' + i%26)),
			Latitude:  f(20 + rng.Float64()),
			Longitude: f(78 + rng.Float64()),
		})
	}

	got := Rank(origin, places)
	require.Len(t, got, MaxResults)
	for i := 1; i < len(got); i++ {
		assert.LessOrEqual(t, got[i-1].DistanceKm, got[i].DistanceKm)
	}
}

func TestRank_Idempotent(t *testing.T) {
	origin := Point{Latitude: 28.6, Longitude: 77.2}
	places := []Place{
		{Name: "C", Latitude: f(28.65), Longitude: f(77.25)},
		{Name: "A", Latitude: f(28.61), Longitude: f(77.21)},
		{Name: "B", Latitude: f(28.7), Longitude: f(77.1)},
	}

	first := Rank(origin, places)
	again := make([]Place, 0, len(first))
	for _, fac := range first {
		again = append(again, Place{Name: fac.Name, Type: fac.Type, Latitude: f(fac.Latitude), Longitude: f(fac.Longitude)})
	}
	assert.Equal(t, first, Rank(origin, again))
}

func TestRank_Empty(t *testing.T) {
	assert.Empty(t, Rank(Point{}, nil))
	assert.Empty(t, Rank(Point{}, []Place{{Name: "x"}}))
}
