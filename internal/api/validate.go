package api

import (
	"fmt"
	"time"

	"tripweaver/internal/model"
)

const dateLayout = "2006-01-02"

// validatePlanRequest checks the request envelope the scheduling engine
// assumes has been validated upstream: a parsable inclusive date range,
// a positive budget, and sane preference knobs. Returns the parsed
// window on success.
func validatePlanRequest(req *model.PlanRequest) (start, end time.Time, err error) {
	if req.Destination == "" {
		return start, end, fmt.Errorf("destination is required")
	}
	start, err = time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return start, end, fmt.Errorf("invalid startDate: %s", req.StartDate)
	}
	end, err = time.Parse(dateLayout, req.EndDate)
	if err != nil {
		return start, end, fmt.Errorf("invalid endDate: %s", req.EndDate)
	}
	if end.Before(start) {
		return start, end, fmt.Errorf("endDate must not precede startDate")
	}
	if req.Budget <= 0 {
		return start, end, fmt.Errorf("budget must be > 0")
	}
	if req.Preferences != nil {
		if err := validatePreferences(req.Preferences); err != nil {
			return start, end, err
		}
	}
	return start, end, nil
}

func validatePreferences(p *model.Preferences) error {
	switch p.ScheduleType {
	case "", model.ScheduleRelaxed, model.ScheduleBalanced, model.SchedulePacked:
	default:
		return fmt.Errorf("invalid scheduleType: %s (allowed: relaxed, balanced, packed)", p.ScheduleType)
	}
	if p.MaxHoursPerDay < 0 || p.MinHoursPerDay < 0 {
		return fmt.Errorf("hour bounds must be >= 0")
	}
	if p.MaxHoursPerDay > 0 && p.MinHoursPerDay > p.MaxHoursPerDay {
		return fmt.Errorf("minHoursPerDay must not exceed maxHoursPerDay")
	}
	return nil
}
