// Package refine manages locked and excluded activity sets on top of
// the scheduling engine. It adds no scheduling logic of its own; every
// regeneration goes through plan.BuildItinerary.
package refine

import (
	"fmt"
	"time"

	"tripweaver/internal/model"
	"tripweaver/internal/plan"
)

// Manager tracks user refinements for one trip and regenerates the
// itinerary on demand. Not safe for concurrent use.
type Manager struct {
	trip       model.Trip
	candidates []model.Activity
	prefs      model.Preferences

	current []model.DayPlan
	locked  []model.Activity // insertion order matters for seeding
	// day-specific lock requests; recorded for display, the scheduler
	// still seeds from the flat locked list
	lockedPerDay map[string][]model.Activity
	excluded     map[string]struct{}
}

// NewManager builds a Manager over the full candidate pool.
func NewManager(trip model.Trip, candidates []model.Activity, prefs model.Preferences) *Manager {
	return &Manager{
		trip:         trip,
		candidates:   candidates,
		prefs:        prefs,
		lockedPerDay: map[string][]model.Activity{},
		excluded:     map[string]struct{}{},
	}
}

// Lock forces an activity into future itineraries. A non-zero day
// records a preference for that date. Locking an unknown activity or
// locking twice is an error.
func (m *Manager) Lock(activity model.Activity, day time.Time) error {
	if !m.isCandidate(activity) {
		return fmt.Errorf("lock: activity %q not available", activity.Name)
	}
	if m.lockIndex(activity) >= 0 {
		return fmt.Errorf("lock: activity %q already locked", activity.Name)
	}
	m.locked = append(m.locked, activity)
	if !day.IsZero() {
		k := day.Format("2006-01-02")
		m.lockedPerDay[k] = append(m.lockedPerDay[k], activity)
	}
	return nil
}

// Unlock removes a lock. Unlocking an activity that is not locked is an
// error.
func (m *Manager) Unlock(activity model.Activity) error {
	idx := m.lockIndex(activity)
	if idx < 0 {
		return fmt.Errorf("unlock: activity %q was not locked", activity.Name)
	}
	m.locked = append(m.locked[:idx], m.locked[idx+1:]...)
	key := activity.Key()
	for day, acts := range m.lockedPerDay {
		kept := acts[:0]
		for _, a := range acts {
			if a.Key() != key {
				kept = append(kept, a)
			}
		}
		m.lockedPerDay[day] = kept
	}
	return nil
}

// Exclude removes an activity from the candidate pool for future
// regenerations. Locked activities cannot be excluded.
func (m *Manager) Exclude(activity model.Activity) error {
	if m.lockIndex(activity) >= 0 {
		return fmt.Errorf("exclude: activity %q is locked", activity.Name)
	}
	m.excluded[activity.Key()] = struct{}{}
	return nil
}

// Unexclude makes an excluded activity available again.
func (m *Manager) Unexclude(activity model.Activity) error {
	key := activity.Key()
	if _, ok := m.excluded[key]; !ok {
		return fmt.Errorf("unexclude: activity %q was not excluded", activity.Name)
	}
	delete(m.excluded, key)
	return nil
}

// Available returns the candidates that are not excluded.
func (m *Manager) Available() []model.Activity {
	out := make([]model.Activity, 0, len(m.candidates))
	for _, a := range m.candidates {
		if _, ok := m.excluded[a.Key()]; !ok {
			out = append(out, a)
		}
	}
	return out
}

// Locked returns the locked activities in lock order.
func (m *Manager) Locked() []model.Activity {
	return append([]model.Activity(nil), m.locked...)
}

// Regenerate rebuilds the itinerary with current locks and exclusions.
// It returns the new itinerary along with any locked activities the
// scheduler could not fit (for example when their duration exceeds the
// daily ceiling on every remaining day).
func (m *Manager) Regenerate() (itinerary []model.DayPlan, missingLocked []model.Activity) {
	m.current = plan.BuildItinerary(m.trip, m.Available(), m.prefs, m.locked)

	scheduled := map[string]struct{}{}
	for _, day := range m.current {
		for _, a := range day.Activities {
			scheduled[a.Key()] = struct{}{}
		}
	}
	for _, la := range m.locked {
		if _, ok := scheduled[la.Key()]; !ok {
			missingLocked = append(missingLocked, la)
		}
	}
	return m.current, missingLocked
}

// Current returns the last regenerated itinerary.
func (m *Manager) Current() []model.DayPlan { return m.current }

// Swap replaces old with replacement on the given day of the current
// itinerary. The replacement may be longer than the removed activity;
// the day's ceiling is the user's problem at this point, so only
// exclusion and presence are enforced.
func (m *Manager) Swap(old, replacement model.Activity, dayIndex int) error {
	if dayIndex < 0 || dayIndex >= len(m.current) {
		return fmt.Errorf("swap: day %d does not exist", dayIndex)
	}
	if _, ok := m.excluded[replacement.Key()]; ok {
		return fmt.Errorf("swap: activity %q is excluded", replacement.Name)
	}
	day := &m.current[dayIndex]
	oldKey := old.Key()
	for i, a := range day.Activities {
		if a.Key() == oldKey {
			day.Activities = append(day.Activities[:i], day.Activities[i+1:]...)
			day.Activities = append(day.Activities, replacement)
			return nil
		}
	}
	return fmt.Errorf("swap: activity %q not on day %d", old.Name, dayIndex)
}

// Status summarizes lock and exclusion state for display.
func (m *Manager) Status() map[string]any {
	dayLocks := map[string][]string{}
	for day, acts := range m.lockedPerDay {
		names := make([]string, 0, len(acts))
		for _, a := range acts {
			names = append(names, a.Name)
		}
		dayLocks[day] = names
	}
	return map[string]any{
		"lockedCount":   len(m.locked),
		"locked":        m.Locked(),
		"excludedCount": len(m.excluded),
		"daySpecific":   dayLocks,
	}
}

func (m *Manager) isCandidate(activity model.Activity) bool {
	key := activity.Key()
	for _, a := range m.candidates {
		if a.Key() == key {
			return true
		}
	}
	return false
}

func (m *Manager) lockIndex(activity model.Activity) int {
	key := activity.Key()
	for i, a := range m.locked {
		if a.Key() == key {
			return i
		}
	}
	return -1
}
