package plans

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

var now = time.Date(2025, time.November, 15, 10, 0, 0, 0, time.UTC)

func today() time.Time {
	return time.Date(2025, time.November, 15, 0, 0, 0, 0, time.UTC)
}

func TestAdvanceTransitions(t *testing.T) {
	empty := Context{}
	dated := Context{Date: time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC), OK: true}

	cases := []struct {
		name     string
		ctx      Context
		line     string
		wantCtx  Context
		wantTask bool
	}{
		{"standalone date sets context", empty, "2025-12-01", dated, false},
		{"day header sets context", empty, "**Day 22 (Dec 1 - Mon)** - 3 hours:", dated, false},
		{"markdown heading with date", empty, "### Day 22 (December 1, 2025)", dated, false},
		{"heading without date keeps context", dated, "## Notes", dated, false},
		{"unparsable header keeps context", dated, "**Day 3 (someday)**", dated, false},
		{"blank line keeps context", dated, "   ", dated, false},
		{"checked task is not a candidate", dated, "- [x] Deploy to prod today", dated, false},
		{"done marker skipped", dated, "- [ ] was COMPLETED yesterday ok", dated, false},
		{"moved marker skipped", dated, "- [moved to Dec 2] Fix the login flow", dated, false},
		{"url line skipped", dated, "- [ ] see https://example.com/docs for background", dated, false},
		{"unchecked task surfaces", dated, "- [ ] Fix login bug (2h)", dated, true},
		{"no-space checkbox", dated, "[] Fix login bug (2h)", dated, true},
		{"numbered checkbox", dated, "[]1. Fix login bug (2h)", dated, true},
		{"plain prose ignored", dated, "some notes about nothing", dated, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx, cand := Advance(tc.ctx, tc.line, 0, now)
			if ctx != tc.wantCtx {
				t.Errorf("context = %+v, want %+v", ctx, tc.wantCtx)
			}
			if (cand != nil) != tc.wantTask {
				t.Errorf("candidate = %v, want task %v", cand, tc.wantTask)
			}
		})
	}
}

func TestCalendarTasksEndToEnd(t *testing.T) {
	doc := strings.Join([]string{
		"# Launch Plan",
		"",
		"**Day 1 (Dec 1 - Mon)** - 3 hours:",
		"- [ ] Fix login bug (2h)",
		"- [ ] short", // raw text under 10 chars
		"- [x] Deploy to prod",
	}, "\n")

	tasks := NewExtractor(now).CalendarTasks(doc, "fire-api", "plan.md", FromDate(today()))
	if len(tasks) != 1 {
		t.Fatalf("got %d tasks, want 1: %+v", len(tasks), tasks)
	}
	task := tasks[0]
	if task.Title != "Fix login bug" {
		t.Errorf("title = %q", task.Title)
	}
	if task.DurationHours != 2 {
		t.Errorf("duration = %v, want 2", task.DurationHours)
	}
	want := time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC)
	if !task.Date.Equal(want) {
		t.Errorf("date = %v, want %v", task.Date, want)
	}
	if task.Project != "fire-api" || task.SourceFile != "plan.md" {
		t.Errorf("attribution = %q/%q", task.Project, task.SourceFile)
	}
}

func TestCalendarTasksStaleExcluded(t *testing.T) {
	doc := strings.Join([]string{
		"**Day 1 (Nov 10)**", // five days before the pinned today
		"- [ ] Old overdue work item (1h)",
		"2025-11-20",
		"- [ ] Future work item here (1h)",
	}, "\n")

	tasks := NewExtractor(now).CalendarTasks(doc, "p", "f.md", FromDate(today()))
	if len(tasks) != 1 {
		t.Fatalf("got %d tasks, want only the future one: %+v", len(tasks), tasks)
	}
	if !strings.Contains(tasks[0].Title, "Future") {
		t.Errorf("wrong survivor: %q", tasks[0].Title)
	}
}

func TestCalendarTasksNoContextDate(t *testing.T) {
	doc := "- [ ] Task without any date context"
	if tasks := NewExtractor(now).CalendarTasks(doc, "p", "f.md", FromDate(today())); len(tasks) != 0 {
		t.Fatalf("got %d tasks, want 0", len(tasks))
	}
}

func TestUndoneTasksTrailingWindow(t *testing.T) {
	doc := strings.Join([]string{
		"**Day 1 (Nov 10)**", // outside the 3-day window
		"- [ ] Too old to reschedule now (1h)",
		"**Day 2 (Nov 14)**", // inside
		"- [ ] Slipped yesterday, still undone (2h)",
		"**Day 3 (Nov 20)**", // future: not undone
		"- [ ] Planned for later this week (1h)",
	}, "\n")

	window := TrailingWindow(today(), 3)
	undone := NewExtractor(now).UndoneTasks(doc, "p", "/tmp/f.md", window)
	if len(undone) != 1 {
		t.Fatalf("got %d undone, want 1: %+v", len(undone), undone)
	}
	u := undone[0]
	if !strings.Contains(u.Title, "Slipped") {
		t.Errorf("wrong task: %q", u.Title)
	}
	if u.Source.Line != 3 {
		t.Errorf("line = %d, want 3", u.Source.Line)
	}
	if u.DurationHours != 2 {
		t.Errorf("duration = %v", u.DurationHours)
	}
	if !u.NewDate.IsZero() {
		t.Errorf("NewDate should be unset before rescheduling")
	}
}

func TestCommitted(t *testing.T) {
	doc := strings.Join([]string{
		"**Day 1 (Nov 14)**",
		"- [x] Finished thing (2h)",
		"- [ ] Open thing (1h)",
		"no checkbox here",
		"**Day 2 (Nov 16)**",
		"- [ ] Later thing (0.5h)",
	}, "\n")

	committed := Committed(doc, now)
	if len(committed) != 3 {
		t.Fatalf("got %d committed lines, want 3", len(committed))
	}
	// Completion state must not filter: finished hours still occupy the day.
	if !strings.Contains(committed[0].Line, "Finished") {
		t.Errorf("first = %q", committed[0].Line)
	}
	if committed[2].Date.Day() != 16 {
		t.Errorf("third date = %v", committed[2].Date)
	}
}

func TestCalendarTasksMultiByteLengths(t *testing.T) {
	long := strings.Repeat("计划任务调度", 25) // 150 runes
	doc := strings.Join([]string{
		"2025-11-20",
		"- [ ] " + long,
		"- [ ] 部署上线检查", // 6 runes, 18 bytes: below the 10-rune floor
		"- [ ] 完成数据库迁移脚本并验证 (2h)",
	}, "\n")

	tasks := NewExtractor(now).CalendarTasks(doc, "p", "f.md", FromDate(today()))
	if len(tasks) != 2 {
		t.Fatalf("got %d tasks, want 2: %+v", len(tasks), tasks)
	}

	// The cap counts runes and never splits a character.
	capped := tasks[0].Title
	if !utf8.ValidString(capped) {
		t.Errorf("truncated title is not valid UTF-8: %q", capped)
	}
	if n := utf8.RuneCountInString(capped); n != 100 {
		t.Errorf("truncated title has %d runes, want 100", n)
	}

	whole := tasks[1].Title
	if whole != "完成数据库迁移脚本并验证" {
		t.Errorf("title = %q", whole)
	}
}

func TestCleanTitle(t *testing.T) {
	cases := []struct {
		raw, want string
	}{
		{"Fix login bug (2h)", "Fix login bug"},
		{"Fix login bug, 2 hours", "Fix login bug"},
		{"Fix login bug [1.5h]", "Fix login bug"},
		{"**BACKLOG (2h)**: Refactor parser", "Refactor parser"},
		{"**BACKLOG**: Refactor parser", "Refactor parser"},
		{"BACKLOG: Refactor parser", "Refactor parser"},
		{"**Ship the landing page**", "Ship the landing page"},
		{"Review draft (Nov 20, 2025)", "Review draft"},
		{"Review draft 2025-11-20 again", "Review draft again"},
	}
	for _, tc := range cases {
		if got := CleanTitle(tc.raw); got != tc.want {
			t.Errorf("CleanTitle(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}
