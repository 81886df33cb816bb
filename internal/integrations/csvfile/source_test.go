package csvfile

import (
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	input := `name,category,duration_hours,price,lat,lon,description
City Museum,museum,2,15,48.8606,2.3376,Famous collection
Old Town Walk,,,,,,
`
	acts, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(acts) != 2 {
		t.Fatalf("got %d activities, want 2", len(acts))
	}

	first := acts[0]
	if first.Name != "City Museum" || first.Category != "museum" {
		t.Fatalf("first: %+v", first)
	}
	if first.DurationHours != 2 || first.Price != 15 {
		t.Fatalf("first numbers: %+v", first)
	}
	if first.Location == nil || first.Location.Lat != 48.8606 {
		t.Fatalf("first location: %+v", first.Location)
	}

	// Empty columns fall back to defaults.
	second := acts[1]
	if second.Category != "other" {
		t.Fatalf("category default: %q", second.Category)
	}
	if second.DurationHours != 1.0 || second.Price != 0 {
		t.Fatalf("numeric defaults: %+v", second)
	}
	if second.Location != nil {
		t.Fatalf("location should be nil: %+v", second.Location)
	}
}

func TestParseHeaderOrderIndependent(t *testing.T) {
	input := `price,name,category
10,Harbor Tour,tour
`
	acts, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if acts[0].Name != "Harbor Tour" || acts[0].Price != 10 {
		t.Fatalf("got %+v", acts[0])
	}
}

func TestParseMissingName(t *testing.T) {
	input := `name,category
,food
`
	if _, err := Parse(strings.NewReader(input)); err == nil {
		t.Fatal("row without a name should fail")
	}
}

func TestParseMissingNameColumn(t *testing.T) {
	if _, err := Parse(strings.NewReader("category,price\nfood,5\n")); err == nil {
		t.Fatal("header without name column should fail")
	}
}

func TestParseEmptyInput(t *testing.T) {
	if _, err := Parse(strings.NewReader("")); err == nil {
		t.Fatal("empty input should fail")
	}
}

func TestParseMalformedNumbersFallBack(t *testing.T) {
	input := `name,duration_hours,price,lat,lon
Mystery Spot,abc,xyz,bad,2.0
`
	acts, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	a := acts[0]
	if a.DurationHours != 1.0 || a.Price != 0 || a.Location != nil {
		t.Fatalf("fallbacks not applied: %+v", a)
	}
}
