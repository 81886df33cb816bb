package plan

import (
	"time"

	"tripweaver/internal/geo"
	"tripweaver/internal/model"
)

// Proximity adjustment thresholds for the day-fill loop. Candidates
// within nearKm of the day's anchor get a shrinking bonus; candidates
// beyond farKm get a flat penalty.
const (
	nearKm     = 2.0
	farKm      = 5.0
	nearBonus  = 20.0
	nearSlope  = 5.0
	farPenalty = 10.0
)

// state is the scheduler-local accumulator threaded through the day
// loop. It is scoped to a single BuildItinerary call, which keeps the
// engine re-entrant.
type state struct {
	used            map[string]struct{}
	remainingBudget float64
}

func (st *state) isUsed(a model.Activity) bool {
	_, ok := st.used[a.Key()]
	return ok
}

func (st *state) place(a model.Activity) {
	st.used[a.Key()] = struct{}{}
	st.remainingBudget -= a.Price
}

// BuildItinerary assembles one DayPlan per calendar day in the trip's
// inclusive range, consuming candidates greedily from a single global
// score ranking. Locked activities are seeded at most one per day ahead
// of the budget gate; all other placements respect the running budget
// and the per-day hour ceiling, with proximity to the day's most recent
// placement biasing selection.
//
// The engine never mutates its inputs and never returns an error:
// exhaustion of candidates or budget simply yields empty day plans.
func BuildItinerary(trip model.Trip, activities []model.Activity, prefs model.Preferences, locked []model.Activity) []model.DayPlan {
	ranking := ScoreAll(activities, prefs, nil)

	st := &state{
		used:            map[string]struct{}{},
		remainingBudget: trip.Budget,
	}

	var itinerary []model.DayPlan
	for date := trip.StartDate; !date.After(trip.EndDate); date = date.AddDate(0, 0, 1) {
		itinerary = append(itinerary, buildDay(date, ranking, prefs, locked, st))
	}
	return itinerary
}

func buildDay(date time.Time, ranking []ScoredActivity, prefs model.Preferences, locked []model.Activity, st *state) model.DayPlan {
	day := model.DayPlan{Date: date}
	hoursLeft := prefs.MaxHoursPerDay

	// Seed at most one pending locked activity. Locked placements skip
	// the budget gate: the user forced them in, so the running budget
	// may go negative here.
	for _, la := range locked {
		if st.isUsed(la) || la.DurationHours > hoursLeft {
			continue
		}
		day.Activities = append(day.Activities, la)
		st.place(la)
		hoursLeft -= la.DurationHours
		break
	}

	// Anchor: the location of the most recent placement. If the locked
	// seed provided one, use it; otherwise take the best-ranked
	// candidate that fits time and budget.
	var anchor *model.GeoPoint
	if n := len(day.Activities); n > 0 {
		anchor = day.Activities[n-1].Location
	} else {
		for _, sc := range ranking {
			a := sc.Activity
			if st.isUsed(a) || a.DurationHours > hoursLeft || st.remainingBudget-a.Price < 0 {
				continue
			}
			day.Activities = append(day.Activities, a)
			st.place(a)
			hoursLeft -= a.DurationHours
			anchor = a.Location
			break
		}
	}

	// Fill the rest of the day, biasing toward candidates near the
	// anchor. Strict improvement keeps ranking order as the tie-break.
	for hoursLeft > 0 {
		bestIdx := -1
		bestScore := 0.0
		for i, sc := range ranking {
			a := sc.Activity
			if st.isUsed(a) || a.DurationHours > hoursLeft || st.remainingBudget-a.Price < 0 {
				continue
			}
			adjusted := sc.Score + proximityAdjustment(anchor, a.Location)
			if bestIdx == -1 || adjusted > bestScore {
				bestIdx = i
				bestScore = adjusted
			}
		}
		if bestIdx == -1 {
			break
		}
		a := ranking[bestIdx].Activity
		day.Activities = append(day.Activities, a)
		st.place(a)
		hoursLeft -= a.DurationHours
		anchor = a.Location
	}

	return day
}

// proximityAdjustment returns the score delta for a candidate relative
// to the day's anchor. No adjustment applies when either side lacks a
// location or the distance falls in the neutral [nearKm, farKm] band.
func proximityAdjustment(anchor, loc *model.GeoPoint) float64 {
	if anchor == nil || loc == nil {
		return 0
	}
	d := geo.DistanceKm(*anchor, *loc)
	switch {
	case d < nearKm:
		return nearBonus - d*nearSlope
	case d > farKm:
		return -farPenalty
	default:
		return 0
	}
}
