// Package dateparse resolves calendar dates and durations from freeform
// planning-document text. Parsing never fails with an error: an
// unrecognized phrase reports ok == false and callers carry their previous
// date context forward.
package dateparse

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	weekdaySuffix = regexp.MustCompile(`(?i)\s*-\s*(Mon|Tue|Wed|Thu|Fri|Sat|Sun)\s*$`)

	isoDate   = regexp.MustCompile(`(\d{4})[-/](\d{1,2})[-/](\d{1,2})`)
	monthDate = regexp.MustCompile(`(?i)(January|February|March|April|May|June|July|August|September|October|November|December|Jan|Feb|Mar|Apr|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\s+(\d{1,2})(?:,?\s*(\d{4}))?`)
	usDate    = regexp.MustCompile(`(\d{1,2})/(\d{1,2})/(\d{4})`)

	hourPattern   = regexp.MustCompile(`(?i)(\d+\.?\d*)\s*h(?:our)?s?\b`)
	minutePattern = regexp.MustCompile(`(?i)(\d+)\s*min(?:ute)?s?\b`)
)

var months = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may":  time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sep": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

// family is one (pattern, handler) pair in the cascade. Families are tried
// in declaration order; the first successful parse wins.
type family struct {
	re    *regexp.Regexp
	parse func(m []string, now time.Time) (time.Time, bool)
}

var families = []family{
	{isoDate, parseISO},
	{monthDate, parseMonthName},
	{usDate, parseUS},
}

// Date extracts a calendar date from text. Day-of-week suffixes attached to
// the phrase ("Dec 1 - Mon") are stripped first; they carry no meaning.
// The result is midnight in now's location.
func Date(text string, now time.Time) (time.Time, bool) {
	text = strings.TrimSpace(weekdaySuffix.ReplaceAllString(text, ""))
	for _, f := range families {
		m := f.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if d, ok := f.parse(m, now); ok {
			return d, true
		}
	}
	return time.Time{}, false
}

func parseISO(m []string, now time.Time) (time.Time, bool) {
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	return makeDate(year, time.Month(month), day, now.Location())
}

func parseMonthName(m []string, now time.Time) (time.Time, bool) {
	month, ok := months[strings.ToLower(m[1])]
	if !ok {
		return time.Time{}, false
	}
	day, _ := strconv.Atoi(m[2])

	year := now.Year()
	if m[3] != "" {
		year, _ = strconv.Atoi(m[3])
	} else if month < now.Month() {
		// No explicit year and the month already passed: roll forward.
		year++
	}
	return makeDate(year, month, day, now.Location())
}

func parseUS(m []string, now time.Time) (time.Time, bool) {
	month, _ := strconv.Atoi(m[1])
	day, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	return makeDate(year, time.Month(month), day, now.Location())
}

// makeDate builds a midnight timestamp and rejects values time.Date would
// silently normalize (month 13, Feb 30).
func makeDate(year int, month time.Month, day int, loc *time.Location) (time.Time, bool) {
	if month < time.January || month > time.December || day < 1 || day > 31 {
		return time.Time{}, false
	}
	d := time.Date(year, month, day, 0, 0, 0, 0, loc)
	if d.Month() != month || d.Day() != day {
		return time.Time{}, false
	}
	return d, true
}

// Duration extracts a task duration in hours. The hour pattern wins when
// both an hour form and a minute form are present; with neither, the
// default is one hour.
func Duration(text string) float64 {
	if m := hourPattern.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			return v
		}
	}
	if m := minutePattern.FindStringSubmatch(text); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			return float64(v) / 60
		}
	}
	return 1.0
}

// Midnight truncates a timestamp to the start of its day in loc.
func Midnight(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
