// Package reschedule implements the end-of-day maintenance procedure: find
// unchecked tasks whose day already passed, pick new dates under each
// project's daily time budget, annotate the source documents without ever
// deleting a line, and regenerate the calendar.
package reschedule

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/jordanwei/bipcal/pkg/calendar"
	"github.com/jordanwei/bipcal/pkg/config"
	"github.com/jordanwei/bipcal/pkg/dateparse"
	"github.com/jordanwei/bipcal/pkg/model"
	"github.com/jordanwei/bipcal/pkg/plans"
	"github.com/jordanwei/bipcal/pkg/upload"
)

// lookbackDays is the trailing window for undone-task detection: today and
// the two days before it.
const lookbackDays = 3

// briefLimit caps how much of a project brief is kept.
const briefLimit = 500

// defaultDailyBudget applies to tasks from projects missing from the
// configuration.
const defaultDailyBudget = 2.0

// Summary reports what a reschedule run did.
type Summary struct {
	Undone        int
	Rescheduled   int
	Marked        int
	FilesModified int
	CalendarPath  string
}

// Engine runs the six-stage procedure. All document failures are contained
// per file; a run always completes.
type Engine struct {
	cfg          *config.Config
	gen          *calendar.Generator
	destinations []upload.Destination
	log          *zap.Logger
}

func NewEngine(cfg *config.Config, gen *calendar.Generator, destinations []upload.Destination, log *zap.Logger) *Engine {
	return &Engine{cfg: cfg, gen: gen, destinations: destinations, log: log}
}

// Run executes the full procedure. The reference time is pinned here once:
// every stage observes the same "today".
func (e *Engine) Run(now time.Time) (*Summary, error) {
	loc := e.cfg.Location()
	now = now.In(loc)
	today := dateparse.Midnight(now, loc)

	briefs := e.loadBriefs()
	e.log.Info("project contexts loaded", zap.Int("briefs", len(briefs)))

	idx := e.buildConflictIndex(now)
	e.log.Info("conflict index built", zap.Int("dates", len(idx)))

	undone := e.scanUndone(now, today)
	summary := &Summary{Undone: len(undone)}

	if len(undone) == 0 {
		e.log.Info("no undone tasks in the trailing window")
		e.regenerate(now, summary)
		return summary, nil
	}
	e.log.Info("undone tasks found", zap.Int("count", len(undone)))

	rescheduled := e.computeNewDates(undone, idx, today)
	summary.Rescheduled = len(rescheduled)

	e.annotate(rescheduled, summary)
	e.regenerate(now, summary)
	return summary, nil
}

// loadBriefs reads each project's optional contextual brief. Missing files
// are expected, not errors.
func (e *Engine) loadBriefs() map[string]string {
	briefs := make(map[string]string)
	for _, p := range e.cfg.Projects {
		path := filepath.Join(p.Path, e.cfg.BriefFile)
		f, err := os.Open(path)
		if err != nil {
			continue
		}
		data, err := io.ReadAll(io.LimitReader(f, briefLimit))
		f.Close()
		if err != nil {
			e.log.Warn("brief unreadable", zap.String("project", p.Name), zap.Error(err))
			continue
		}
		briefs[p.Name] = string(data)
	}
	return briefs
}

// buildConflictIndex rescans every launch plan for committed checkbox
// lines, completion state ignored: hours already claimed on a date count
// against that date whatever happened to the task.
func (e *Engine) buildConflictIndex(now time.Time) model.ScheduleIndex {
	idx := make(model.ScheduleIndex)
	for _, p := range e.cfg.Projects {
		files, err := plans.LaunchPlanFiles(p.Path)
		if err != nil {
			e.log.Warn("launch plan discovery failed",
				zap.String("project", p.Name), zap.Error(err))
			continue
		}
		for _, file := range files {
			data, err := os.ReadFile(file)
			if err != nil {
				e.log.Warn("unreadable launch plan",
					zap.String("file", file), zap.Error(err))
				continue
			}
			for _, c := range plans.Committed(string(data), now) {
				idx.Add(c.Date, model.ScheduleEntry{
					Project:       p.Name,
					Snippet:       snippet(c.Line),
					DurationHours: dateparse.Duration(c.Line),
				})
			}
		}
	}
	return idx
}

// scanUndone re-walks the launch plans with the extractor's date-context
// logic, but over the trailing window: this stage exists to surface tasks
// whose date has already passed.
func (e *Engine) scanUndone(now, today time.Time) []model.UndoneTask {
	extractor := plans.NewExtractor(now)
	window := plans.TrailingWindow(today, lookbackDays)

	var undone []model.UndoneTask
	for _, p := range e.cfg.Projects {
		files, err := plans.LaunchPlanFiles(p.Path)
		if err != nil {
			e.log.Warn("launch plan discovery failed",
				zap.String("project", p.Name), zap.Error(err))
			continue
		}
		for _, file := range files {
			data, err := os.ReadFile(file)
			if err != nil {
				e.log.Warn("unreadable launch plan",
					zap.String("file", file), zap.Error(err))
				continue
			}
			found := extractor.UndoneTasks(string(data), p.Name, file, window)
			if len(found) > 0 {
				e.log.Debug("undone tasks in file",
					zap.String("file", filepath.Base(file)), zap.Int("count", len(found)))
				undone = append(undone, found...)
			}
		}
	}
	return undone
}

// computeNewDates assigns each undone task a day, starting tomorrow:
// greedy first-fit packing where newly assigned hours plus hours already
// committed in the conflict index stay within the project's daily budget.
func (e *Engine) computeNewDates(undone []model.UndoneTask, idx model.ScheduleIndex, today time.Time) []model.UndoneTask {
	byProject := make(map[string][]model.UndoneTask)
	var order []string
	seen := make(map[string]bool)
	// Configured projects first, in configuration order; strays after, in
	// first-seen order, so redistribution is deterministic.
	for _, p := range e.cfg.Projects {
		seen[p.Name] = true
		order = append(order, p.Name)
	}
	for _, t := range undone {
		if !seen[t.Project] {
			seen[t.Project] = true
			order = append(order, t.Project)
		}
		byProject[t.Project] = append(byProject[t.Project], t)
	}

	tomorrow := today.AddDate(0, 0, 1)
	var rescheduled []model.UndoneTask

	for _, project := range order {
		tasks := byProject[project]
		if len(tasks) == 0 {
			continue
		}
		budget := e.budgetFor(project)
		day := tomorrow
		used := 0.0

		for _, t := range tasks {
			for {
				existing := idx.ProjectHours(day, project)
				if used+existing+t.DurationHours <= budget {
					break
				}
				if used == 0 && existing == 0 {
					// The task alone exceeds the budget; an empty day is
					// the best it gets.
					break
				}
				day = day.AddDate(0, 0, 1)
				used = 0
			}
			t.NewDate = day
			used += t.DurationHours
			rescheduled = append(rescheduled, t)

			e.log.Info("task rescheduled",
				zap.String("project", project),
				zap.String("from", t.OriginalDate.Format("01/02")),
				zap.String("to", day.Format("01/02")),
				zap.String("task", snippet(t.Title)),
			)
		}
	}
	return rescheduled
}

func (e *Engine) budgetFor(project string) float64 {
	if _, ok := e.cfg.ProjectOrder()[project]; ok {
		return e.cfg.DailyBudgetHours()
	}
	return defaultDailyBudget
}

// annotate rewrites each task's originating line, one
// read-transform-validate-write pass per file. A failed file is reported
// and skipped; its assignments are not retried.
func (e *Engine) annotate(rescheduled []model.UndoneTask, summary *Summary) {
	byFile := make(map[string][]model.UndoneTask)
	for _, t := range rescheduled {
		byFile[t.Source.File] = append(byFile[t.Source.File], t)
	}
	files := make([]string, 0, len(byFile))
	for f := range byFile {
		files = append(files, f)
	}
	sort.Strings(files)

	for _, file := range files {
		doc, err := plans.LoadDocument(file)
		if err != nil {
			e.log.Warn("cannot load document for annotation", zap.Error(err))
			continue
		}

		marked := 0
		for _, t := range byFile[file] {
			err := doc.Transform(t.Source.Line, func(line string) string {
				rewritten, ok := plans.AnnotateMoved(line, t.NewDate)
				if ok {
					marked++
				}
				return rewritten
			})
			if err != nil {
				e.log.Warn("annotation target moved", zap.Error(err))
			}
		}
		if marked == 0 {
			continue
		}
		if err := doc.Save(); err != nil {
			e.log.Warn("document write aborted", zap.Error(err))
			continue
		}
		summary.Marked += marked
		summary.FilesModified++
		e.log.Info("document updated",
			zap.String("file", filepath.Base(file)), zap.Int("marked", marked))
	}
}

// regenerate rebuilds the calendar and dispatches it to the upload
// destinations. Upload failures are reported but never unwind the document
// updates already made.
func (e *Engine) regenerate(now time.Time, summary *Summary) {
	res, err := e.gen.Generate(now)
	if err != nil {
		e.log.Warn("calendar regeneration failed", zap.Error(err))
		return
	}
	summary.CalendarPath = res.Path
	if res.Path == "" {
		return
	}
	upload.Dispatch(e.destinations, res.Path, res.Slots, e.log)
}

func snippet(s string) string {
	const max = 50
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
