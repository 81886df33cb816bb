package model

import (
	"fmt"
	"strings"
	"time"
)

// Core domain types for itinerary planning.

// GeoPoint is a (latitude, longitude) pair in decimal degrees.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Activity is a candidate schedulable item: an attraction, meal, tour, etc.
// Location is optional; a nil location disables all proximity logic for it.
type Activity struct {
	Name          string    `json:"name"`
	Category      string    `json:"category"`
	DurationHours float64   `json:"durationHours"`
	Price         float64   `json:"price"`
	Location      *GeoPoint `json:"location,omitempty"`
	Description   string    `json:"description,omitempty"`
}

// Key returns the content-identity key used for "already scheduled"
// tracking. Two activities with identical fields share a key and are
// interchangeable for scheduling purposes.
func (a Activity) Key() string {
	loc := ""
	if a.Location != nil {
		loc = fmt.Sprintf("%g,%g", a.Location.Lat, a.Location.Lng)
	}
	return strings.Join([]string{a.Name, a.Category, fmt.Sprintf("%g", a.DurationHours), fmt.Sprintf("%g", a.Price), loc, a.Description}, "|")
}

// Schedule types accepted by Preferences.ScheduleType.
const (
	ScheduleRelaxed  = "relaxed"
	ScheduleBalanced = "balanced"
	SchedulePacked   = "packed"
)

// Preferences carries scoring and scheduling configuration for one
// planning session.
type Preferences struct {
	Interests      []string `json:"interests"`
	Budget         float64  `json:"budget"`
	ScheduleType   string   `json:"scheduleType"`
	MinHoursPerDay float64  `json:"minHoursPerDay,omitempty"`
	MaxHoursPerDay float64  `json:"maxHoursPerDay,omitempty"`

	PrioritizeCost     bool `json:"prioritizeCost,omitempty"`
	PrioritizeDistance bool `json:"prioritizeDistance,omitempty"`
	// IncludeOpeningHours is accepted for forward compatibility with
	// opening-hours aware sources; the scheduler does not consume it.
	IncludeOpeningHours bool `json:"includeOpeningHours,omitempty"`
}

// DefaultPreferences returns the baseline knobs used when a caller
// supplies none.
func DefaultPreferences() Preferences {
	return Preferences{
		ScheduleType:   ScheduleBalanced,
		MinHoursPerDay: 3.0,
		MaxHoursPerDay: 8.0,
	}
}

// Trip is the planning window and envelope. The date range is inclusive
// on both ends; callers must ensure EndDate >= StartDate before planning.
type Trip struct {
	Destination string    `json:"destination"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	Budget      float64   `json:"budget"`
	Interests   []string  `json:"interests,omitempty"`
}

// LengthDays returns the number of calendar days covered by the trip.
func (t Trip) LengthDays() int {
	return int(t.EndDate.Sub(t.StartDate).Hours()/24) + 1
}

// DayPlan holds the ordered activities assigned to one calendar date.
// Insertion order is visiting order.
type DayPlan struct {
	Date       time.Time  `json:"date"`
	Activities []Activity `json:"activities"`
}

// TotalDurationHours sums the durations of the day's activities.
func (d DayPlan) TotalDurationHours() float64 {
	total := 0.0
	for _, a := range d.Activities {
		total += a.DurationHours
	}
	return total
}

// TotalCost sums the prices of the day's activities.
func (d DayPlan) TotalCost() float64 {
	total := 0.0
	for _, a := range d.Activities {
		total += a.Price
	}
	return total
}

// Read/write models for the API surface.

// ActivityOut is the stored representation returned by list endpoints.
type ActivityOut struct {
	ID       string   `json:"id"`
	TenantID string   `json:"tenantId"`
	Activity Activity `json:"activity"`
}

// PlanRequest is the body of POST /v1/itineraries/plan.
type PlanRequest struct {
	TenantID    string       `json:"tenantId"`
	Destination string       `json:"destination"`
	StartDate   string       `json:"startDate"` // YYYY-MM-DD
	EndDate     string       `json:"endDate"`   // YYYY-MM-DD
	Budget      float64      `json:"budget"`
	Preferences *Preferences `json:"preferences,omitempty"`
	Activities  []Activity   `json:"activities,omitempty"` // inline candidates; falls back to stored ones
	Locked      []string     `json:"locked,omitempty"`     // names of activities to force in
	Excluded    []string     `json:"excluded,omitempty"`   // names of activities to drop from the pool
}

// Itinerary is a stored planning result.
type Itinerary struct {
	ID          string      `json:"id"`
	TenantID    string      `json:"tenantId"`
	Version     int         `json:"version"`
	Destination string      `json:"destination"`
	StartDate   string      `json:"startDate"`
	EndDate     string      `json:"endDate"`
	Budget      float64     `json:"budget"`
	Preferences Preferences `json:"preferences"`
	Days        []DayPlan   `json:"days"`
	Locked      []string    `json:"locked,omitempty"`
	Excluded    []string    `json:"excluded,omitempty"`
	CreatedAt   string      `json:"createdAt,omitempty"`
}

// RefineRequest mutates lock/exclusion state of a stored itinerary and
// triggers regeneration.
type RefineRequest struct {
	Lock      []string `json:"lock,omitempty"`
	Unlock    []string `json:"unlock,omitempty"`
	Exclude   []string `json:"exclude,omitempty"`
	Unexclude []string `json:"unexclude,omitempty"`
}

type SubscriptionRequest struct {
	TenantID string   `json:"tenantId"`
	URL      string   `json:"url"`
	Events   []string `json:"events"`
	Secret   string   `json:"secret"`
}

type Subscription struct {
	ID       string   `json:"id"`
	TenantID string   `json:"tenantId"`
	URL      string   `json:"url"`
	Events   []string `json:"events"`
	Secret   string   `json:"secret,omitempty"`
}
