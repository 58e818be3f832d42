package calendar

import (
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	"vtcal/internal/schedule"
)

func vilnius(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Vilnius")
	if err != nil {
		t.Fatalf("load timezone: %v", err)
	}
	return loc
}

func testEntry() schedule.Entry {
	return schedule.Entry{
		Day:           0,
		TimeRange:     "09:00-09:45",
		Week:          "0",
		Subgroup:      "0",
		Subject:       "Software Engineering (IF123)",
		Auditorium:    "P301",
		Lecturer:      "Dr. Jonas Jonaitis",
		LectureType:   "Lectures",
		SemesterStart: time.Date(2025, time.September, 4, 0, 0, 0, 0, time.UTC),
		SemesterEnd:   time.Date(2026, time.January, 26, 0, 0, 0, 0, time.UTC),
	}
}

func TestFirstOccurrenceLandsInWeekOne(t *testing.T) {
	// 2025-09-04 is a Thursday (day 3 in Monday=0 numbering).
	start := time.Date(2025, time.September, 4, 0, 0, 0, 0, time.UTC)

	// Same weekday as the start: jump a full week, never the start itself.
	sameDay := FirstOccurrence(start, 3)
	if !sameDay.Equal(start.AddDate(0, 0, 7)) {
		t.Errorf("same-weekday occurrence = %v, want %v", sameDay, start.AddDate(0, 0, 7))
	}

	// Monday lecture: next Monday, four days ahead.
	monday := FirstOccurrence(start, 0)
	if !monday.Equal(time.Date(2025, time.September, 8, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("monday occurrence = %v", monday)
	}
	if monday.Weekday() != time.Monday {
		t.Errorf("occurrence weekday = %v, want Monday", monday.Weekday())
	}

	// Friday lecture: within the same week.
	friday := FirstOccurrence(start, 4)
	if diff := friday.Sub(start); diff <= 0 || diff > 7*24*time.Hour {
		t.Errorf("friday occurrence %v not strictly within one week of start", friday)
	}
}

func TestSummaryMapping(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		ltype   string
		want    string
	}{
		{"lecture", "Software Engineering (IF123)", "Lectures", "Lecture: Software Engineering"},
		{"lab", "Physics (PHY1)", "Laboratory work", "Lab: Physics"},
		{"lab plural", "Physics (PHY1)", "laboratory works", "Lab: Physics"},
		{"tutorial", "Maths (M1)", "Practical exercises (distance learning)", "Tutorial: Maths"},
		{"practical work", "Maths (M1)", "practical work", "Tutorial: Maths"},
		{"unmapped type passes through", "Maths (M1)", "Seminar", "Seminar: Maths"},
		{"no type", "Maths (M1)", "", "Maths"},
		{"only code in subject", "(IF123)", "", "(IF123)"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := testEntry()
			e.Subject = tc.subject
			e.LectureType = tc.ltype
			if got := Summary(e); got != tc.want {
				t.Errorf("summary = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestDescriptionOmitsAllSubgroupsAndWeeks(t *testing.T) {
	e := testEntry()
	if got := Description(e); got != "Dr. Jonas Jonaitis" {
		t.Errorf("description = %q, want lecturer only", got)
	}

	e.Week = "5"
	e.Subgroup = "2"
	want := "Dr. Jonas Jonaitis\nWeek 5\nSubgroup 2"
	if got := Description(e); got != want {
		t.Errorf("description = %q, want %q", got, want)
	}

	e.Lecturer = ""
	e.Week = "0"
	e.Subgroup = ""
	if got := Description(e); got != "" {
		t.Errorf("description = %q, want empty", got)
	}
}

func TestLocationStripsAcademicTitles(t *testing.T) {
	b := NewBuilder(vilnius(t), "Vilnius Tech", "Vilnius Tech Schedule")

	e := testEntry()
	if got := b.Location(e); got != "Vilnius Tech, P301" {
		t.Errorf("location = %q", got)
	}

	e.Auditorium = "P301 Dr. Jonaitis"
	if got := b.Location(e); got != "Vilnius Tech, P301" {
		t.Errorf("location with title = %q, want %q", got, "Vilnius Tech, P301")
	}

	e.Auditorium = ""
	if got := b.Location(e); got != "" {
		t.Errorf("location = %q, want empty", got)
	}
}

func TestUIDDeterministic(t *testing.T) {
	a := testEntry()
	b := testEntry()

	if UID(a) != UID(b) {
		t.Error("equal entries must yield equal uids")
	}

	b.TimeRange = "10:00-10:45"
	if UID(a) == UID(b) {
		t.Error("different entries must yield different uids")
	}
}

func TestBuildEventTimesAndRecurrence(t *testing.T) {
	loc := vilnius(t)
	b := NewBuilder(loc, "Vilnius Tech", "Vilnius Tech Schedule")

	cal, err := b.Build([]schedule.Entry{testEntry()})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	events := cal.Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	ev := events[0]

	// First Monday strictly after 2025-09-04 is 2025-09-08.
	wantStart := time.Date(2025, time.September, 8, 9, 0, 0, 0, loc)
	start, err := ev.GetStartAt()
	if err != nil {
		t.Fatalf("GetStartAt: %v", err)
	}
	if !start.Equal(wantStart) {
		t.Errorf("start = %v, want %v", start, wantStart)
	}

	wantEnd := time.Date(2025, time.September, 8, 9, 45, 0, 0, loc)
	end, err := ev.GetEndAt()
	if err != nil {
		t.Fatalf("GetEndAt: %v", err)
	}
	if !end.Equal(wantEnd) {
		t.Errorf("end = %v, want %v", end, wantEnd)
	}

	rruleProp := ev.GetProperty(ics.ComponentPropertyRrule)
	if rruleProp == nil {
		t.Fatal("missing RRULE")
	}

	r, err := rrule.StrToRRule(rruleProp.Value)
	if err != nil {
		t.Fatalf("parse RRULE %q: %v", rruleProp.Value, err)
	}

	// UNTIL is the end-of-day instant of the semester end date in the
	// target timezone.
	wantUntil := time.Date(2026, time.January, 26, 23, 59, 59, 0, loc)
	if !r.Options.Until.Equal(wantUntil) {
		t.Errorf("until = %v, want instant %v", r.Options.Until, wantUntil)
	}

	// Weekly recurrence: the second occurrence is exactly seven days after
	// the first.
	r.DTStart(wantStart)
	occ := r.Between(wantStart.Add(-time.Minute), wantStart.AddDate(0, 0, 15), true)
	if len(occ) < 2 {
		t.Fatalf("expected at least 2 occurrences, got %d", len(occ))
	}
	if !occ[1].Equal(wantStart.AddDate(0, 0, 7)) {
		t.Errorf("second occurrence = %v, want %v", occ[1], wantStart.AddDate(0, 0, 7))
	}
}

func TestBuildRoundTrip(t *testing.T) {
	loc := vilnius(t)
	b := NewBuilder(loc, "Vilnius Tech", "Vilnius Tech Schedule")

	second := testEntry()
	second.Day = 2
	second.TimeRange = "13:00-14:30"
	second.Subject = "Databases (IF210)"
	second.LectureType = "Laboratory work"

	entries := []schedule.Entry{testEntry(), second}
	cal, err := b.Build(entries)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	serialized := cal.Serialize()

	parsed, err := ics.ParseCalendar(strings.NewReader(serialized))
	if err != nil {
		t.Fatalf("ParseCalendar: %v", err)
	}

	events := parsed.Events()
	if len(events) != len(entries) {
		t.Fatalf("round trip lost events: %d != %d", len(events), len(entries))
	}

	wantSummaries := map[string]bool{
		"Lecture: Software Engineering": false,
		"Lab: Databases":                false,
	}
	for _, ev := range events {
		p := ev.GetProperty(ics.ComponentPropertySummary)
		if p == nil {
			t.Fatal("event missing SUMMARY")
		}
		if _, ok := wantSummaries[p.Value]; !ok {
			t.Errorf("unexpected summary %q", p.Value)
		}
		wantSummaries[p.Value] = true
	}
	for s, seen := range wantSummaries {
		if !seen {
			t.Errorf("summary %q not found after round trip", s)
		}
	}

	// Start instants survive the round trip.
	wantFirst := time.Date(2025, time.September, 8, 9, 0, 0, 0, loc)
	var found bool
	for _, ev := range events {
		start, err := ev.GetStartAt()
		if err != nil {
			continue
		}
		if start.Equal(wantFirst) {
			found = true
		}
	}
	if !found {
		t.Errorf("no event starts at %v after round trip", wantFirst)
	}
}
