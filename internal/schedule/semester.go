package schedule

import (
	"regexp"
	"strings"
	"time"
)

// The semester header prints two ISO dates joined by an em dash. Depending on
// how the PDF's text encoding survives extraction the dash reaches us as
// "—", "–", the mojibake sequence "â€”", or a plain "-".
var semesterRangeRe = regexp.MustCompile(`(\d{4}-\d{2}-\d{2})\s*(?:â€”|—|–|-)\s*(\d{4}-\d{2}-\d{2})`)

const dateLayout = "2006-01-02"

// DefaultRange is the fixed fallback used when the timetable text carries no
// recognizable semester date pair.
func DefaultRange() Range {
	return Range{
		Start: time.Date(2025, time.September, 4, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, time.January, 26, 0, 0, 0, 0, time.UTC),
	}
}

// ResolveSemester scans the extracted text for the semester date range and
// derives the canonical end date by half-year convention. It is total: any
// input yields either a matched-and-derived range or the fallback, never an
// error.
//
// The end date printed in the document is used verbatim only when neither
// the autumn nor the spring signal fires. Keyword signals are checked before
// the month of the start date, so a document that says "spring" wins over an
// autumn-looking start month.
func ResolveSemester(text string, fallback Range) Range {
	m := semesterRangeRe.FindStringSubmatch(text)
	if m == nil {
		return fallback
	}

	start, err := time.Parse(dateLayout, m[1])
	if err != nil {
		return fallback
	}
	extractedEnd, err := time.Parse(dateLayout, m[2])
	if err != nil {
		return fallback
	}

	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "autumn") || start.Month() >= time.September:
		return Range{Start: start, End: time.Date(start.Year()+1, time.January, 26, 0, 0, 0, 0, time.UTC)}
	case strings.Contains(lower, "spring") || start.Month() <= time.June:
		return Range{Start: start, End: time.Date(start.Year(), time.July, 31, 0, 0, 0, 0, time.UTC)}
	default:
		return Range{Start: start, End: extractedEnd}
	}
}
