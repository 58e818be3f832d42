package calendar

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	"vtcal/internal/schedule"
)

// Builder maps schedule entries to weekly-recurring calendar events. The
// target timezone and institution name are explicit construction parameters,
// not ambient state, so the builder stays pure per document.
type Builder struct {
	loc          *time.Location
	institution  string
	calendarName string
}

func NewBuilder(loc *time.Location, institution, calendarName string) *Builder {
	return &Builder{
		loc:          loc,
		institution:  institution,
		calendarName: calendarName,
	}
}

// parenRe strips parenthesized course codes (and their surrounding space)
// from subject text when deriving the course name.
var parenRe = regexp.MustCompile(`\s*\([^)]*\)\s*`)

// typeMapping maps raw lecture-type annotations to the short form used in
// summaries. First matching rule wins; unmatched text passes through.
var typeMapping = []struct {
	keyword string
	short   string
}{
	{"Laboratory work", "Lab"},
	{"laboratory works", "Lab"},
	{"Practical exercises", "Tutorial"},
	{"practical work", "Tutorial"},
	{"Lectures", "Lecture"},
}

// titleTokens mark the start of a lecturer name that leaked into the
// auditorium field; the room code ends before the first of these.
var titleTokens = []string{"Dr.", "Prof", "Assoc"}

// Build produces a calendar with one weekly-recurring VEVENT per entry.
func (b *Builder) Build(entries []schedule.Entry) (*ics.Calendar, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//vtcal//Vilnius Tech Schedule//EN")
	cal.SetVersion("2.0")
	cal.SetCalscale("GREGORIAN")
	cal.SetXWRCalName(b.calendarName)
	cal.SetXWRTimezone(b.loc.String())

	for _, e := range entries {
		if err := b.addEvent(cal, e); err != nil {
			return nil, err
		}
	}

	return cal, nil
}

func (b *Builder) addEvent(cal *ics.Calendar, e schedule.Entry) error {
	startHour, startMin, endHour, endMin, err := splitTimeRange(e.TimeRange)
	if err != nil {
		return err
	}

	first := FirstOccurrence(e.SemesterStart, e.Day)
	startDT := time.Date(first.Year(), first.Month(), first.Day(), startHour, startMin, 0, 0, b.loc)
	endDT := time.Date(first.Year(), first.Month(), first.Day(), endHour, endMin, 0, 0, b.loc)

	ev := cal.AddEvent(UID(e))
	ev.SetDtStampTime(time.Now().In(b.loc))
	ev.SetStartAt(startDT)
	ev.SetEndAt(endDT)
	ev.SetSummary(Summary(e))

	if d := Description(e); d != "" {
		ev.SetDescription(d)
	}
	if l := b.Location(e); l != "" {
		ev.SetLocation(l)
	}

	ev.SetProperty(ics.ComponentPropertyRrule, b.recurrenceRule(e.SemesterEnd))
	return nil
}

// recurrenceRule builds the weekly RRULE value ending at 23:59:59 of the
// semester end date in the target timezone.
func (b *Builder) recurrenceRule(end time.Time) string {
	until := time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 0, b.loc)
	opt := rrule.ROption{Freq: rrule.WEEKLY, Until: until}
	return opt.RRuleString()
}

// FirstOccurrence returns the date of the first weekly occurrence, always
// strictly after the semester start. A start date already on the target
// weekday moves a full week forward: week 1, never the nominal start itself.
func FirstOccurrence(start time.Time, day int) time.Time {
	daysAhead := day - mondayIndex(start.Weekday())
	if daysAhead <= 0 {
		daysAhead += 7
	}
	return start.AddDate(0, 0, daysAhead)
}

// mondayIndex converts Go's Sunday-based weekday to the timetable's
// Monday=0 numbering.
func mondayIndex(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}

// UID derives a stable identifier from the entry's full field tuple. Equal
// entries hash equal across runs; the literal bit pattern is not a
// compatibility surface.
func UID(e schedule.Entry) string {
	fields := []string{
		strconv.Itoa(e.Day),
		e.TimeRange,
		e.Week,
		e.Subgroup,
		e.Subject,
		e.Auditorium,
		e.Lecturer,
		e.LectureType,
		e.SemesterStart.Format("2006-01-02"),
		e.SemesterEnd.Format("2006-01-02"),
	}
	sum := sha256.Sum256([]byte(strings.Join(fields, "\x1f")))
	return fmt.Sprintf("vtcal-%s@vilniustech.lt", hex.EncodeToString(sum[:16]))
}

// Summary renders "<short type>: <course name>", falling back to whichever
// side is non-empty, and to the raw subject when the course name strips to
// nothing.
func Summary(e schedule.Entry) string {
	courseName := strings.TrimSpace(parenRe.ReplaceAllString(e.Subject, ""))

	shortType := e.LectureType
	for _, m := range typeMapping {
		if strings.Contains(e.LectureType, m.keyword) {
			shortType = m.short
			break
		}
	}

	switch {
	case shortType != "" && courseName != "":
		return shortType + ": " + courseName
	case courseName != "":
		return courseName
	default:
		return e.Subject
	}
}

// Description joins the lecturer, week and subgroup annotations one per
// line. Week/subgroup "0" means "all" and is omitted.
func Description(e schedule.Entry) string {
	var parts []string
	if e.Lecturer != "" {
		parts = append(parts, e.Lecturer)
	}
	if e.Week != "" && e.Week != "0" {
		parts = append(parts, "Week "+e.Week)
	}
	if e.Subgroup != "" && e.Subgroup != "0" {
		parts = append(parts, "Subgroup "+e.Subgroup)
	}
	return strings.Join(parts, "\n")
}

// Location prefixes the room code with the institution name. Academic-title
// tokens and everything after them are stripped first; they are lecturer
// fragments the room scan could not separate.
func (b *Builder) Location(e schedule.Entry) string {
	if e.Auditorium == "" {
		return ""
	}

	room := e.Auditorium
	if containsAny(room, titleTokens) {
		var roomParts []string
		for _, part := range strings.Fields(room) {
			if containsAny(part, titleTokens) {
				break
			}
			roomParts = append(roomParts, part)
		}
		if len(roomParts) > 0 {
			room = strings.Join(roomParts, " ")
		}
	}

	return b.institution + ", " + room
}

func splitTimeRange(tr string) (startHour, startMin, endHour, endMin int, err error) {
	parts := strings.SplitN(tr, "-", 2)
	if len(parts) != 2 {
		err = fmt.Errorf("calendar: malformed time range %q", tr)
		return
	}
	startHour, startMin, err = parseClock(parts[0])
	if err != nil {
		return
	}
	endHour, endMin, err = parseClock(parts[1])
	return
}

func parseClock(s string) (int, int, error) {
	hm := strings.SplitN(s, ":", 2)
	if len(hm) != 2 {
		return 0, 0, fmt.Errorf("calendar: malformed clock value %q", s)
	}
	h, err := strconv.Atoi(hm[0])
	if err != nil {
		return 0, 0, fmt.Errorf("calendar: malformed clock value %q", s)
	}
	m, err := strconv.Atoi(hm[1])
	if err != nil {
		return 0, 0, fmt.Errorf("calendar: malformed clock value %q", s)
	}
	return h, m, nil
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
