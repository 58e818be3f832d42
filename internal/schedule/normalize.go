package schedule

import "strings"

// Normalize converts raw records into finalized entries bound to the given
// semester range. Fields are trimmed, the time range is re-validated and
// records whose subject trims to empty are dropped. Malformed records vanish
// silently; they were already tolerated by the parser.
func Normalize(records []RawRecord, sem Range) []Entry {
	entries := make([]Entry, 0, len(records))

	for _, r := range records {
		timeRange := strings.TrimSpace(r.TimeRange)
		subject := strings.TrimSpace(r.Subject)

		if subject == "" || !timeRangeRe.MatchString(timeRange) {
			continue
		}

		entries = append(entries, Entry{
			Day:           r.Day,
			TimeRange:     timeRange,
			Week:          strings.TrimSpace(r.Week),
			Subgroup:      strings.TrimSpace(r.Subgroup),
			Subject:       subject,
			Auditorium:    strings.TrimSpace(r.Auditorium),
			Lecturer:      strings.TrimSpace(r.Lecturer),
			LectureType:   strings.TrimSpace(r.LectureType),
			SemesterStart: sem.Start,
			SemesterEnd:   sem.End,
		})
	}

	return entries
}
