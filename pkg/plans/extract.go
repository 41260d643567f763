// Package plans reads markdown planning documents: finding them inside
// monitored projects, extracting incomplete tasks with their date context,
// and rewriting task lines in place under a no-data-loss invariant.
package plans

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jordanwei/bipcal/pkg/dateparse"
	"github.com/jordanwei/bipcal/pkg/model"
)

var (
	standaloneDate = regexp.MustCompile(`^(\d{4})[-/](\d{1,2})[-/](\d{1,2})\s*$`)
	dayHeader      = regexp.MustCompile(`(?i)^\*\*Day\s+\d+\s*\(([^)]+)\)\*\*`)
	mdHeading      = regexp.MustCompile(`^#{1,6}\s+`)
	uncheckedTask  = regexp.MustCompile(`^\s*[-*]?\s*\[\s*\]\s*\d*\.?\s*(.+)$`)
	anyCheckbox    = regexp.MustCompile(`^\s*[-*]?\s*\[.\]`)
)

// completionMarkers mark a line as done, moved or abandoned. Matching is a
// case-insensitive substring check anywhere in the line; such lines are
// never extracted, whatever their checkbox looks like.
var completionMarkers = []string{
	"✅", "completed", "[x]", "done]", "[done", "moved", "postponed", "skipped", "❌",
}

// Length limits count runes, not bytes, so multi-byte titles are measured
// and truncated on character boundaries.
const (
	minRawLen   = 10
	minCleanLen = 5
	maxTitleLen = 100
)

// Context is the date state threaded through a document scan. The zero
// value means no date has been established yet.
type Context struct {
	Date time.Time
	OK   bool
}

// Candidate is an unchecked task line surfaced by the scan, before any
// window or length filtering.
type Candidate struct {
	Raw  string // captured task text, trimmed
	Line int    // zero-based line index
}

// Window bounds the task dates a scan will surface. To is ignored unless
// Bounded is set.
type Window struct {
	From    time.Time
	To      time.Time
	Bounded bool
}

// FromDate is the forward-scheduling window: today and later.
func FromDate(from time.Time) Window {
	return Window{From: from}
}

// TrailingWindow covers [today-days+1 .. today] inclusive, the reschedule
// engine's lookback.
func TrailingWindow(today time.Time, days int) Window {
	return Window{From: today.AddDate(0, 0, -(days - 1)), To: today, Bounded: true}
}

// Contains reports whether a date falls inside the window.
func (w Window) Contains(d time.Time) bool {
	if d.Before(w.From) {
		return false
	}
	if w.Bounded && d.After(w.To) {
		return false
	}
	return true
}

// Advance consumes one line and returns the context afterwards, plus the
// task candidate if the line is an unchecked task. It is the single state
// transition of the scan; Extract folds it over a document.
func Advance(ctx Context, line string, lineNo int, now time.Time) (Context, *Candidate) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return ctx, nil
	}

	if m := standaloneDate.FindStringSubmatch(trimmed); m != nil {
		if d, ok := dateparse.Date(trimmed, now); ok {
			return Context{Date: d, OK: true}, nil
		}
		return ctx, nil
	}

	if m := dayHeader.FindStringSubmatch(line); m != nil {
		if d, ok := dateparse.Date(m[1], now); ok {
			return Context{Date: d, OK: true}, nil
		}
		// Unparsable header still isn't a task line.
		return ctx, nil
	}

	if mdHeading.MatchString(line) {
		if d, ok := dateparse.Date(line, now); ok {
			return Context{Date: d, OK: true}, nil
		}
		return ctx, nil
	}

	lower := strings.ToLower(line)
	for _, marker := range completionMarkers {
		if strings.Contains(lower, strings.ToLower(marker)) {
			return ctx, nil
		}
	}

	if strings.Contains(line, "http://") || strings.Contains(line, "https://") {
		return ctx, nil
	}

	if m := uncheckedTask.FindStringSubmatch(line); m != nil {
		return ctx, &Candidate{Raw: strings.TrimSpace(m[1]), Line: lineNo}
	}

	return ctx, nil
}

// Extractor turns document text into task lists. The reference time is
// pinned at construction so every document in a run observes the same
// "today".
type Extractor struct {
	now time.Time
}

func NewExtractor(now time.Time) *Extractor {
	return &Extractor{now: now}
}

// CalendarTasks extracts incomplete dated tasks for forward scheduling:
// cleaned titles, dates inside the window, in document order.
func (e *Extractor) CalendarTasks(content, project, sourceFile string, window Window) []model.CalendarTask {
	var tasks []model.CalendarTask
	ctx := Context{}
	for i, line := range strings.Split(content, "\n") {
		var cand *Candidate
		ctx, cand = Advance(ctx, line, i, e.now)
		if cand == nil || utf8.RuneCountInString(cand.Raw) < minRawLen || !ctx.OK || !window.Contains(ctx.Date) {
			continue
		}

		title := CleanTitle(cand.Raw)
		if utf8.RuneCountInString(title) < minCleanLen {
			continue
		}
		if r := []rune(title); len(r) > maxTitleLen {
			title = string(r[:maxTitleLen])
		}

		tasks = append(tasks, model.CalendarTask{
			Project:       project,
			Title:         title,
			Date:          ctx.Date,
			DurationHours: dateparse.Duration(cand.Raw),
			SourceFile:    sourceFile,
		})
	}
	return tasks
}

// UndoneTasks extracts incomplete tasks inside the trailing window with
// their source location, for the reschedule engine. Titles stay raw: the
// originating line must be annotatable verbatim.
func (e *Extractor) UndoneTasks(content, project, file string, window Window) []model.UndoneTask {
	var tasks []model.UndoneTask
	ctx := Context{}
	for i, line := range strings.Split(content, "\n") {
		var cand *Candidate
		ctx, cand = Advance(ctx, line, i, e.now)
		if cand == nil || utf8.RuneCountInString(cand.Raw) < minRawLen || !ctx.OK || !window.Contains(ctx.Date) {
			continue
		}

		tasks = append(tasks, model.UndoneTask{
			Project:       project,
			Title:         cand.Raw,
			DurationHours: dateparse.Duration(cand.Raw),
			Source:        model.SourceLocation{File: file, Line: i},
			OriginalDate:  ctx.Date,
		})
	}
	return tasks
}

// CommittedLine is a checkbox line sitting under a day header, regardless
// of completion state. The conflict index is built from these.
type CommittedLine struct {
	Date time.Time
	Line string
}

// Committed collects every checkbox line with an established day-header
// date. Completion markers are deliberately not filtered: hours already
// spent still occupy the day.
func Committed(content string, now time.Time) []CommittedLine {
	var out []CommittedLine
	var date time.Time
	var haveDate bool
	for _, line := range strings.Split(content, "\n") {
		if m := dayHeader.FindStringSubmatch(line); m != nil {
			if d, ok := dateparse.Date(m[1], now); ok {
				date, haveDate = d, true
			}
			continue
		}
		if haveDate && anyCheckbox.MatchString(line) {
			out = append(out, CommittedLine{Date: date, Line: strings.TrimSpace(line)})
		}
	}
	return out
}

var (
	durBracketed  = regexp.MustCompile(`(?i)\s*[(\[]\s*\d+\.?\d*\s*h(?:our)?s?\s*[)\]]`)
	durTrailing   = regexp.MustCompile(`(?i)\s*,?\s*\d+\.?\d*\s*h(?:our)?s?\s*$`)
	dateParen     = regexp.MustCompile(`\s*\(\s*\w+\s+\d+,?\s*\d{4}\s*\)`)
	dateInline    = regexp.MustCompile(`\s*\d{4}-\d{2}-\d{2}\s*`)
	backlogParen  = regexp.MustCompile(`^\*\*BACKLOG\s*\([^)]*\)\*\*\s*:\s*`)
	backlogBold   = regexp.MustCompile(`^\*\*BACKLOG\*\*\s*:\s*`)
	backlogPlainP = regexp.MustCompile(`^BACKLOG\s*\([^)]*\)\s*:\s*`)
	backlogPlain  = regexp.MustCompile(`^BACKLOG\s*:\s*`)
	boldEdges     = regexp.MustCompile(`^\*\*|\*\*$`)
)

// CleanTitle strips scheduling annotations from a raw task line: duration
// markers, inline dates, BACKLOG prefixes, and surrounding bold markup.
func CleanTitle(raw string) string {
	s := durBracketed.ReplaceAllString(raw, "")
	s = durTrailing.ReplaceAllString(s, "")
	s = dateParen.ReplaceAllString(s, "")
	s = dateInline.ReplaceAllString(s, " ")
	// BACKLOG prefixes before bold stripping, so "**BACKLOG (2h)**:" goes
	// in one piece.
	s = backlogParen.ReplaceAllString(s, "")
	s = backlogBold.ReplaceAllString(s, "")
	s = backlogPlainP.ReplaceAllString(s, "")
	s = backlogPlain.ReplaceAllString(s, "")
	s = boldEdges.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
