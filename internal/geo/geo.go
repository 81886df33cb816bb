// Package geo provides great-circle distance and proximity helpers for
// the itinerary planner.
package geo

import (
	"math"

	"tripweaver/internal/model"
)

const earthRadiusKm = 6371.0

// DistanceKm computes the Haversine distance between two points in
// kilometers. Inputs are assumed to be valid decimal-degree pairs; no
// range validation is performed.
func DistanceKm(a, b model.GeoPoint) float64 {
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(a.Lat*math.Pi/180)*math.Cos(b.Lat*math.Pi/180)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// ClusterByProximity groups located activities that lie within maxKm of
// a cluster's seed activity. Absorption is one-directional from each
// seed in input order, not mutual nearest-neighbor. Activities without
// a location are ignored, and clusters of size 1 are dropped.
func ClusterByProximity(activities []model.Activity, maxKm float64) [][]model.Activity {
	clustered := make([]bool, len(activities))
	var clusters [][]model.Activity
	for i, seed := range activities {
		if clustered[i] || seed.Location == nil {
			continue
		}
		cluster := []model.Activity{seed}
		clustered[i] = true
		for j, other := range activities {
			if clustered[j] || other.Location == nil {
				continue
			}
			if DistanceKm(*seed.Location, *other.Location) <= maxKm {
				cluster = append(cluster, other)
				clustered[j] = true
			}
		}
		if len(cluster) > 1 {
			clusters = append(clusters, cluster)
		}
	}
	return clusters
}

// DefaultWalkSpeedKmh is the assumed speed for travel-time estimates.
const DefaultWalkSpeedKmh = 5.0

// navigationBufferHours is a flat allowance for finding entrances,
// waiting at crossings, and similar overhead between activities.
const navigationBufferHours = 0.25

// EstimateTravelTimeHours estimates the time to move between two
// activities. If either side has no location the buffer alone is
// returned. A non-positive speedKmh falls back to DefaultWalkSpeedKmh.
func EstimateTravelTimeHours(a, b model.Activity, speedKmh float64) float64 {
	if speedKmh <= 0 {
		speedKmh = DefaultWalkSpeedKmh
	}
	if a.Location == nil || b.Location == nil {
		return navigationBufferHours
	}
	return DistanceKm(*a.Location, *b.Location)/speedKmh + navigationBufferHours
}
