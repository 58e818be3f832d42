package schedule

import "time"

// Day numbering follows the timetable convention: Monday=0 .. Friday=4.

// RawRecord is one slot block as lifted from the extracted text, before
// normalization. Slot is only the recognition trigger and is not carried
// downstream.
type RawRecord struct {
	Day         int
	Slot        int
	TimeRange   string
	Week        string
	Subgroup    string
	Subject     string
	Auditorium  string
	Lecturer    string
	LectureType string
}

// Range is the semester date range bounding every generated event.
// Start and End are civil dates (midnight UTC).
type Range struct {
	Start time.Time
	End   time.Time
}

// Entry is a finalized schedule entry: a validated record plus the semester
// range it recurs over. Entries are immutable once built.
type Entry struct {
	Day         int
	TimeRange   string
	Week        string
	Subgroup    string
	Subject     string
	Auditorium  string
	Lecturer    string
	LectureType string

	SemesterStart time.Time
	SemesterEnd   time.Time
}
