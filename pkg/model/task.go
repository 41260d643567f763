package model

import "time"

// CalendarTask is one schedulable unit extracted from a planning document.
// Immutable once built; the document text remains the source of truth.
type CalendarTask struct {
	Project       string
	Title         string
	Date          time.Time // midnight in the configured zone
	DurationHours float64
	SourceFile    string
}

// SourceLocation identifies the line a task was extracted from, so the
// reschedule engine can annotate it in place.
type SourceLocation struct {
	File string
	Line int // zero-based index into the document's lines
}

// UndoneTask is an unchecked task whose date fell inside the trailing
// reschedule window. The raw line text is preserved so annotation never
// touches anything but the checkbox token.
type UndoneTask struct {
	Project       string
	Title         string // raw captured text, not cleaned
	DurationHours float64
	Source        SourceLocation
	OriginalDate  time.Time
	NewDate       time.Time // zero until rescheduling assigns it
}

// ScheduledSlot is a concrete wall-clock assignment for one task.
// End is always Start plus the task's duration.
type ScheduledSlot struct {
	Task  CalendarTask
	Start time.Time
	End   time.Time
}

// ScheduleEntry is one already-committed line found while building the
// conflict index: enough to attribute hours to a project on a date.
type ScheduleEntry struct {
	Project       string
	Snippet       string
	DurationHours float64
}

// ScheduleIndex maps a calendar date (formatted 2006-01-02) to the entries
// already committed in source documents. Rebuilt fresh on every reschedule
// run; read-only after construction.
type ScheduleIndex map[string][]ScheduleEntry

// DateKey is the canonical map key for a calendar date.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// Add appends an entry under the given date.
func (idx ScheduleIndex) Add(date time.Time, e ScheduleEntry) {
	key := DateKey(date)
	idx[key] = append(idx[key], e)
}

// ProjectHours sums the committed hours for one project on one date.
func (idx ScheduleIndex) ProjectHours(date time.Time, project string) float64 {
	var total float64
	for _, e := range idx[DateKey(date)] {
		if e.Project == project {
			total += e.DurationHours
		}
	}
	return total
}
