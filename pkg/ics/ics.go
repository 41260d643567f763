// Package ics serializes scheduled slots into an RFC 5545 calendar
// document. Serialization is pure: writing the file and uploading it are
// the caller's concern.
package ics

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jordanwei/bipcal/pkg/model"
)

const (
	prodID       = "-//Build-in-Public//bip-daily-calendar//EN"
	calendarName = "BIP Daily Calendar"
	stampLayout  = "20060102T150405Z"
	localLayout  = "20060102T150405"
)

// Exporter renders VCALENDAR documents for one timezone.
type Exporter struct {
	tzid string
	loc  *time.Location

	// newUID is swappable so tests get stable identifiers.
	newUID func() string
	now    func() time.Time
}

func NewExporter(tzid string, loc *time.Location) *Exporter {
	return &Exporter{
		tzid:   tzid,
		loc:    loc,
		newUID: uuid.NewString,
		now:    time.Now,
	}
}

// Calendar renders the complete ICS document: header, one VTIMEZONE block
// with the zone's fixed UTC offset, and one VEVENT per slot.
func (e *Exporter) Calendar(slots []model.ScheduledSlot) string {
	offset := e.utcOffset()
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:" + prodID,
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
		"X-WR-CALNAME:" + calendarName,
		"X-WR-TIMEZONE:" + e.tzid,
		"BEGIN:VTIMEZONE",
		"TZID:" + e.tzid,
		"BEGIN:STANDARD",
		"DTSTART:19700101T000000",
		"TZOFFSETFROM:" + offset,
		"TZOFFSETTO:" + offset,
		"END:STANDARD",
		"END:VTIMEZONE",
	}

	for _, slot := range slots {
		lines = append(lines, e.event(slot)...)
	}

	lines = append(lines, "END:VCALENDAR")
	return strings.Join(lines, "\r\n")
}

func (e *Exporter) event(slot model.ScheduledSlot) []string {
	t := slot.Task
	summary := fmt.Sprintf("[%s] %s", t.Project, Escape(t.Title))
	description := fmt.Sprintf("Project: %s\\nSource: %s\\nDuration: %sh",
		Escape(t.Project), Escape(t.SourceFile), formatHours(t.DurationHours))

	return []string{
		"BEGIN:VEVENT",
		"UID:" + e.newUID(),
		"DTSTAMP:" + e.now().UTC().Format(stampLayout),
		fmt.Sprintf("DTSTART;TZID=%s:%s", e.tzid, slot.Start.In(e.loc).Format(localLayout)),
		fmt.Sprintf("DTEND;TZID=%s:%s", e.tzid, slot.End.In(e.loc).Format(localLayout)),
		"SUMMARY:" + summary,
		"DESCRIPTION:" + description,
		"STATUS:CONFIRMED",
		"END:VEVENT",
	}
}

// utcOffset renders the zone's offset at generation time as ±hhmm.
func (e *Exporter) utcOffset() string {
	return e.now().In(e.loc).Format("-0700")
}

// Escape backslash-escapes the characters RFC 5545 reserves in text
// values. Backslash goes first so the escapes themselves survive.
func Escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, ",", `\,`)
	s = strings.ReplaceAll(s, ";", `\;`)
	return s
}

func formatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}
