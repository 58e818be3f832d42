package schedule

import (
	"regexp"
	"strconv"
	"strings"
)

// Weekday names in the order the timetable prints them; the index is the
// timetable day number (Monday=0).
var weekdayNames = [...]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

// headerYearToken is part of the day-header layout convention: a line counts
// as a day header only when it carries both a weekday name and this token.
// Lecturer names and footers that merely mention a weekday never reset the
// day context.
const headerYearToken = "2025"

const (
	maxSlotNumber   = 10
	roomWindowLines = 20
	typeWindowLines = 25
)

var (
	// Room codes: "P<digits>", "S<digits>", or "S<digits>(<building>) <room>".
	roomRe = regexp.MustCompile(`^([PS]\d+|S\d+\([^)]*\)\s*\d+)`)

	timeRangeRe = regexp.MustCompile(`^\d{2}:\d{2}-\d{2}:\d{2}$`)
)

var (
	// typeStopWords end the room/lecturer scan: the block has reached its
	// lecture-type annotation.
	typeStopWords = []string{"Lectures", "Laboratory", "Practical"}

	// typeKeywords start a lecture-type annotation, which may continue for
	// up to two more lines.
	typeKeywords = []string{"Lectures", "Laboratory", "Practical", "work", "exercises"}
)

// ParseRecords walks the extracted timetable text line by line, tracking the
// current weekday and lifting every numbered slot block into a RawRecord.
//
// The outer cursor advances exactly one line per iteration and never skips a
// consumed block, so lines inside one block stay eligible as later day
// headers or slot triggers. Each bounded lookahead inside a block runs on its
// own window. All state is local to the call.
func ParseRecords(text string) []RawRecord {
	lines := strings.Split(text, "\n")

	currentDay := -1
	var records []RawRecord

	for i := range lines {
		line := strings.TrimSpace(lines[i])

		if d, ok := dayHeader(line); ok {
			currentDay = d
		}

		// A numeric line before any day header is never a trigger.
		if currentDay < 0 {
			continue
		}
		slot, ok := slotTrigger(line)
		if !ok {
			continue
		}

		if rec, ok := readBlock(lines, i, currentDay, slot); ok {
			records = append(records, rec)
		}
	}

	return records
}

// dayHeader reports whether line asserts a weekday for subsequent blocks.
func dayHeader(line string) (int, bool) {
	if !strings.Contains(line, headerYearToken) {
		return 0, false
	}
	for d, name := range weekdayNames {
		if strings.Contains(line, name) {
			return d, true
		}
	}
	return 0, false
}

// slotTrigger reports whether the trimmed line is a slot ordinal: purely
// numeric with value <= 10.
func slotTrigger(line string) (int, bool) {
	if !isDigits(line) {
		return 0, false
	}
	n, err := strconv.Atoi(line)
	if err != nil || n > maxSlotNumber {
		return 0, false
	}
	return n, true
}

// window is a bounded forward cursor over the line slice. Every lookahead
// rule carries its own window, so one scan cannot disturb another or the
// outer cursor.
type window struct {
	lines []string
	pos   int
	limit int // exclusive
}

func newWindow(lines []string, pos, limit int) *window {
	if limit > len(lines) {
		limit = len(lines)
	}
	return &window{lines: lines, pos: pos, limit: limit}
}

func (w *window) open() bool   { return w.pos < w.limit }
func (w *window) line() string { return strings.TrimSpace(w.lines[w.pos]) }
func (w *window) advance()     { w.pos++ }

// readBlock consumes one slot block starting at the trigger line. It returns
// false when the block is truncated or fails acceptance; a failed block never
// aborts the overall parse.
func readBlock(lines []string, start, day, slot int) (RawRecord, bool) {
	// The fixed prefix needs four lines after the trigger.
	if start+4 >= len(lines) {
		return RawRecord{}, false
	}

	rec := RawRecord{
		Day:       day,
		Slot:      slot,
		TimeRange: strings.TrimSpace(lines[start+1]),
		Week:      strings.TrimSpace(lines[start+2]),
		Subgroup:  strings.TrimSpace(lines[start+3]),
	}

	// Subject lines: every non-empty, non-numeric line until a parenthesized
	// course code or end of input.
	sw := newWindow(lines, start+4, len(lines))
	var subjectParts []string
	for sw.open() {
		s := sw.line()
		if strings.HasPrefix(s, "(") {
			break
		}
		if s != "" && !isDigits(s) {
			subjectParts = append(subjectParts, s)
		}
		sw.advance()
	}
	if sw.open() {
		// The line that stopped the scan is the trailing course code.
		subjectParts = append(subjectParts, sw.line())
		sw.advance()
	}
	rec.Subject = strings.Join(subjectParts, " ")

	// Room and lecturer lines, up to 20 lines past the trigger. The scan
	// ends early at the next slot ordinal or a lecture-type annotation.
	rw := newWindow(lines, sw.pos, start+roomWindowLines)
	var lecturerParts []string
	for rw.open() {
		s := rw.line()
		if _, next := slotTrigger(s); next {
			break
		}
		if containsAny(s, typeStopWords) {
			break
		}
		if room := roomRe.FindString(s); room != "" {
			rec.Auditorium = room
			if rest := strings.TrimSpace(s[len(room):]); rest != "" {
				lecturerParts = append(lecturerParts, rest)
			}
		} else if s != "" && !namesWeekday(s) {
			lecturerParts = append(lecturerParts, s)
		}
		rw.advance()
	}

	// Lecture-type annotation, resuming where the room scan stopped and
	// bounded to 25 lines past the trigger. The annotation spans up to
	// three lines, e.g. "Practical" / "exercises (distance" / "learning)".
	tw := newWindow(lines, rw.pos, start+typeWindowLines)
	for tw.open() {
		s := tw.line()
		if containsAny(s, typeKeywords) {
			parts := []string{s}
			if tw.pos+1 < len(lines) && containsAny(lines[tw.pos+1], []string{"work", "exercises", "("}) {
				parts = append(parts, strings.TrimSpace(lines[tw.pos+1]))
				if tw.pos+2 < len(lines) && strings.HasSuffix(strings.TrimSpace(lines[tw.pos+2]), ")") {
					parts = append(parts, strings.TrimSpace(lines[tw.pos+2]))
				}
			}
			rec.LectureType = strings.Join(parts, " ")
			break
		}
		if _, next := slotTrigger(s); next {
			break
		}
		tw.advance()
	}

	rec.Lecturer = strings.TrimSpace(strings.Join(lecturerParts, " "))

	// Acceptance: strict time range and a non-empty subject.
	if !timeRangeRe.MatchString(rec.TimeRange) || strings.TrimSpace(rec.Subject) == "" {
		return RawRecord{}, false
	}
	return rec, true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func namesWeekday(s string) bool {
	for _, name := range weekdayNames {
		if strings.Contains(s, name) {
			return true
		}
	}
	return false
}
