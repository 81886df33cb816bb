package geo

import (
	"math"
	"testing"

	"tripweaver/internal/model"
)

var (
	paris  = model.GeoPoint{Lat: 48.8566, Lng: 2.3522}
	london = model.GeoPoint{Lat: 51.5074, Lng: -0.1278}
)

func TestDistanceIdentity(t *testing.T) {
	if d := DistanceKm(paris, paris); d != 0 {
		t.Fatalf("distance to self: got %f, want 0", d)
	}
}

func TestDistanceSymmetry(t *testing.T) {
	d1 := DistanceKm(paris, london)
	d2 := DistanceKm(london, paris)
	if math.Abs(d1-d2) > 1e-9 {
		t.Fatalf("asymmetric: %f vs %f", d1, d2)
	}
}

func TestDistanceKnownPair(t *testing.T) {
	d := DistanceKm(paris, london)
	if d < 330 || d > 350 {
		t.Fatalf("Paris-London: got %f km, want ~343", d)
	}
}

func locActivity(name string, lat, lng float64) model.Activity {
	return model.Activity{Name: name, Category: "other", DurationHours: 1, Location: &model.GeoPoint{Lat: lat, Lng: lng}}
}

func TestClusterByProximity(t *testing.T) {
	acts := []model.Activity{
		locActivity("a", 48.8566, 2.3522),
		locActivity("b", 48.8570, 2.3530), // ~60m from a
		locActivity("c", 48.9000, 2.5000), // far from a
		{Name: "nowhere", Category: "other", DurationHours: 1},
	}
	clusters := ClusterByProximity(acts, 2.0)
	if len(clusters) != 1 {
		t.Fatalf("got %d clusters, want 1", len(clusters))
	}
	if len(clusters[0]) != 2 {
		t.Fatalf("cluster size: got %d, want 2", len(clusters[0]))
	}
	if clusters[0][0].Name != "a" || clusters[0][1].Name != "b" {
		t.Fatalf("unexpected cluster members: %+v", clusters[0])
	}
}

func TestClusterDropsSingletons(t *testing.T) {
	acts := []model.Activity{
		locActivity("a", 48.8566, 2.3522),
		locActivity("c", 48.9000, 2.5000),
	}
	if clusters := ClusterByProximity(acts, 1.0); len(clusters) != 0 {
		t.Fatalf("got %d clusters, want 0", len(clusters))
	}
}

func TestEstimateTravelTime(t *testing.T) {
	a := locActivity("a", 48.8566, 2.3522)
	b := locActivity("b", 48.8606, 2.3376)
	got := EstimateTravelTimeHours(a, b, 0)
	want := DistanceKm(*a.Location, *b.Location)/DefaultWalkSpeedKmh + 0.25
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("travel time: got %f, want %f", got, want)
	}

	// Missing location yields only the buffer.
	if got := EstimateTravelTimeHours(a, model.Activity{Name: "x"}, 5); got != 0.25 {
		t.Fatalf("travel time without location: got %f, want 0.25", got)
	}
}
