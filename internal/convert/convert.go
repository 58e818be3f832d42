// Package convert runs the document pipeline: extracted text in, serialized
// calendar out.
package convert

import (
	"errors"
	"fmt"
	"time"

	"vtcal/internal/calendar"
	"vtcal/internal/config"
	"vtcal/internal/extract"
	appLog "vtcal/internal/log"
	"vtcal/internal/schedule"
)

// ErrNoEvents reports that a document yielded no valid schedule entries.
// Distinct from extraction failure; callers get no partial output.
var ErrNoEvents = errors.New("no schedule events found in document")

// Stats summarizes one conversion for logging and history.
type Stats struct {
	Events        int
	SemesterStart time.Time
	SemesterEnd   time.Time
}

// Converter runs the full pipeline for one document per call. Calls are
// independent; no parser state survives between documents.
type Converter struct {
	builder  *calendar.Builder
	fallback schedule.Range
}

func New(cfg *config.Config) (*Converter, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}

	fallback, err := fallbackRange(cfg)
	if err != nil {
		return nil, err
	}

	return &Converter{
		builder:  calendar.NewBuilder(loc, cfg.Institution, cfg.CalendarName),
		fallback: fallback,
	}, nil
}

func fallbackRange(cfg *config.Config) (schedule.Range, error) {
	start, err := time.Parse("2006-01-02", cfg.FallbackSemesterStart)
	if err != nil {
		return schedule.Range{}, fmt.Errorf("fallback_semester_start: %w", err)
	}
	end, err := time.Parse("2006-01-02", cfg.FallbackSemesterEnd)
	if err != nil {
		return schedule.Range{}, fmt.Errorf("fallback_semester_end: %w", err)
	}
	return schedule.Range{Start: start, End: end}, nil
}

// File converts the PDF at path into serialized ICS bytes.
func (c *Converter) File(path string) ([]byte, Stats, error) {
	text, err := extract.Text(path)
	if err != nil {
		return nil, Stats{}, err
	}
	return c.Text(text)
}

// Bytes converts a PDF byte stream, e.g. an upload body.
func (c *Converter) Bytes(data []byte) ([]byte, Stats, error) {
	text, err := extract.TextFromBytes(data)
	if err != nil {
		return nil, Stats{}, err
	}
	return c.Text(text)
}

// Text converts already-extracted timetable text. Split out from File/Bytes
// so everything below the extractor runs without PDF fixtures.
func (c *Converter) Text(text string) ([]byte, Stats, error) {
	sem := schedule.ResolveSemester(text, c.fallback)
	records := schedule.ParseRecords(text)
	entries := schedule.Normalize(records, sem)

	if len(entries) == 0 {
		return nil, Stats{}, ErrNoEvents
	}

	cal, err := c.builder.Build(entries)
	if err != nil {
		return nil, Stats{}, err
	}

	appLog.Info("document converted",
		"records", len(records),
		"events", len(entries),
		"semester_start", sem.Start.Format("2006-01-02"),
		"semester_end", sem.End.Format("2006-01-02"),
	)

	stats := Stats{
		Events:        len(entries),
		SemesterStart: sem.Start,
		SemesterEnd:   sem.End,
	}
	return []byte(cal.Serialize()), stats, nil
}
