// Package plan implements the itinerary scoring and scheduling engine.
package plan

import (
	"fmt"
	"sort"
	"strings"

	"tripweaver/internal/model"
)

// complements maps a category to categories that pair well with it.
// Used to give a small bonus to activities adjacent to a user interest.
// Food, shopping and entertainment are universal and have no complements.
var complements = map[string][]string{
	"museum":        {"landmark", "tour"},
	"nature":        {"tour"},
	"food":          {},
	"shopping":      {},
	"landmark":      {"museum", "tour"},
	"tour":          {"museum", "landmark", "nature"},
	"entertainment": {},
}

// Score computes the desirability of one activity under the given
// preferences. alreadyScheduled provides variety context and may be nil.
// The function is pure and total: any field value, including zero or
// negative price and duration, yields a finite score.
func Score(activity model.Activity, prefs model.Preferences, alreadyScheduled []model.Activity) float64 {
	category := strings.ToLower(activity.Category)
	score := 0.0

	// Interest match dominates every other term.
	matched := false
	for _, interest := range prefs.Interests {
		if strings.ToLower(interest) == category {
			score += 40
			matched = true
			break
		}
	}
	if !matched {
		for _, interest := range prefs.Interests {
			if containsFold(complements[strings.ToLower(interest)], category) {
				score += 10
				break
			}
		}
	}

	// Cost term. Negative prices intentionally flow through the same
	// arithmetic and act as a further discount.
	if prefs.PrioritizeCost {
		switch {
		case activity.Price == 0:
			score += 15
		case activity.Price < 20:
			score += 5
		default:
			score -= activity.Price * 0.8
		}
	} else {
		if activity.Price == 0 {
			score += 5
		} else {
			score -= activity.Price * 0.15
		}
	}

	// Schedule-type fit.
	switch prefs.ScheduleType {
	case model.ScheduleRelaxed:
		if activity.DurationHours <= 2 {
			score += 15
		} else if activity.DurationHours >= 4 {
			score -= 10
		}
	case model.SchedulePacked:
		if activity.DurationHours >= 2 {
			score += 10
		}
	default: // balanced
		if activity.DurationHours >= 1.5 && activity.DurationHours <= 3 {
			score += 10
		}
	}

	// Variety: reward new categories, penalize the third and beyond.
	prior := 0
	for _, scheduled := range alreadyScheduled {
		if strings.ToLower(scheduled.Category) == category {
			prior++
		}
	}
	switch {
	case prior == 0:
		score += 10
	case prior == 1:
		// neutral
	case prior == 2:
		score -= 10
	default:
		score -= 20
	}

	// Shorter activities are easier to fit, so they get a small boost.
	switch {
	case activity.DurationHours <= 1:
		score += 8
	case activity.DurationHours <= 2:
		score += 5
	case activity.DurationHours <= 3:
		score += 2
	}

	return score
}

func containsFold(set []string, s string) bool {
	for _, v := range set {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

// ScoredActivity pairs an activity with its computed score.
type ScoredActivity struct {
	Score    float64        `json:"score"`
	Activity model.Activity `json:"activity"`
}

// ScoreAll scores every activity and returns them ordered best first.
// The sort is stable, so equal scores keep their input order.
func ScoreAll(activities []model.Activity, prefs model.Preferences, alreadyScheduled []model.Activity) []ScoredActivity {
	scored := make([]ScoredActivity, 0, len(activities))
	for _, a := range activities {
		scored = append(scored, ScoredActivity{Score: Score(a, prefs, alreadyScheduled), Activity: a})
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	return scored
}

// CategoryDistribution counts available activities per lowercase category.
func CategoryDistribution(activities []model.Activity) map[string]int {
	distribution := map[string]int{}
	for _, a := range activities {
		distribution[strings.ToLower(a.Category)]++
	}
	return distribution
}

// SuggestInterestBalance flags interests with no or limited availability
// and well-stocked categories the user has not expressed interest in.
// Advisory only; the scheduler never consumes it.
func SuggestInterestBalance(activities []model.Activity, interests []string) map[string]string {
	distribution := CategoryDistribution(activities)
	suggestions := map[string]string{}
	for _, interest := range interests {
		count := distribution[strings.ToLower(interest)]
		if count == 0 {
			suggestions[interest] = fmt.Sprintf("No %s activities available in this destination", interest)
		} else if count < 3 {
			suggestions[interest] = fmt.Sprintf("Limited %s options (%d activities)", interest, count)
		}
	}
	for category, count := range distribution {
		if count >= 5 && !containsFold(interests, category) {
			suggestions["Consider "+category] = fmt.Sprintf("%d %s activities available", count, category)
		}
	}
	return suggestions
}
