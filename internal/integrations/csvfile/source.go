// Package csvfile loads activities from a local CSV file.
package csvfile

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"tripweaver/internal/model"
)

// Expected header columns. Only name is strictly required per row;
// category defaults to "other" and numeric fields fall back to defaults
// on empty or malformed input.
const (
	colName        = "name"
	colCategory    = "category"
	colDuration    = "duration_hours"
	colPrice       = "price"
	colLat         = "lat"
	colLon         = "lon"
	colDescription = "description"
)

// Source reads activities from a CSV file at Path.
type Source struct {
	Path string
}

func New(path string) Source { return Source{Path: path} }

func (s Source) Name() string { return "csv-file" }

// FetchActivities parses the file. The destination argument is ignored;
// a CSV file is assumed to already be destination-specific.
func (s Source) FetchActivities(string) ([]model.Activity, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("csvfile: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Parse(f)
}

// Parse reads activity rows from r. The first record is the header.
func Parse(r io.Reader) ([]model.Activity, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("csvfile: empty input")
		}
		return nil, fmt.Errorf("csvfile: read header: %w", err)
	}
	cols := map[string]int{}
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := cols[colName]; !ok {
		return nil, fmt.Errorf("csvfile: header missing %q column", colName)
	}

	var activities []model.Activity
	for row := 1; ; row++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csvfile: row %d: %w", row, err)
		}
		field := func(col string) string {
			i, ok := cols[col]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}

		name := field(colName)
		if name == "" {
			return nil, fmt.Errorf("csvfile: row %d: missing activity name", row)
		}
		category := field(colCategory)
		if category == "" {
			category = "other"
		}

		activities = append(activities, model.Activity{
			Name:          name,
			Category:      category,
			DurationHours: safeFloat(field(colDuration), 1.0),
			Price:         safeFloat(field(colPrice), 0.0),
			Location:      safeCoord(field(colLat), field(colLon)),
			Description:   field(colDescription),
		})
	}
	return activities, nil
}

// safeFloat converts s to a float, returning def on empty or bad input.
func safeFloat(s string, def float64) float64 {
	if s == "" {
		return def
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return v
}

// safeCoord builds a GeoPoint from lat/lon strings, or nil when either
// is missing or malformed.
func safeCoord(lat, lon string) *model.GeoPoint {
	if lat == "" || lon == "" {
		return nil
	}
	la, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return nil
	}
	lo, err := strconv.ParseFloat(lon, 64)
	if err != nil {
		return nil
	}
	return &model.GeoPoint{Lat: la, Lng: lo}
}
