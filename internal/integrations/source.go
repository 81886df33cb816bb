// Package integrations defines the interface activity suppliers
// implement. The planner core only ever sees fully materialized
// Activity values; fetch and parse failures stop here.
package integrations

import "tripweaver/internal/model"

// Source supplies candidate activities for a destination.
type Source interface {
	Name() string
	// FetchActivities returns all candidates the source knows for the
	// destination. Destination handling is source-specific; file-backed
	// sources may ignore it.
	FetchActivities(destination string) ([]model.Activity, error)
}
