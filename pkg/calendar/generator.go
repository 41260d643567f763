// Package calendar orchestrates the generation pipeline: discover planning
// documents, extract dated tasks, pack day slots, serialize the ICS file.
package calendar

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/jordanwei/bipcal/pkg/config"
	"github.com/jordanwei/bipcal/pkg/dateparse"
	"github.com/jordanwei/bipcal/pkg/ics"
	"github.com/jordanwei/bipcal/pkg/model"
	"github.com/jordanwei/bipcal/pkg/plans"
	"github.com/jordanwei/bipcal/pkg/schedule"
)

// OutputFile is the calendar's fixed file name inside the output dir.
const OutputFile = "bip-daily-calendar.ics"

// Result reports what a generation run produced. Events == 0 with an empty
// Path means there was nothing to schedule.
type Result struct {
	Path  string
	Tasks int
	Slots []model.ScheduledSlot
}

// Generator runs the calendar pipeline for a configured project set.
type Generator struct {
	cfg *config.Config
	log *zap.Logger
}

func NewGenerator(cfg *config.Config, log *zap.Logger) *Generator {
	return &Generator{cfg: cfg, log: log}
}

// Generate scans every project's plans directory, schedules the extracted
// tasks and writes the ICS file. Per-file read failures are logged and
// skipped; only a write failure of the output itself is an error.
func (g *Generator) Generate(now time.Time) (*Result, error) {
	loc := g.cfg.Location()
	today := dateparse.Midnight(now, loc)
	extractor := plans.NewExtractor(now.In(loc))
	window := plans.FromDate(today)

	var tasks []model.CalendarTask
	for _, project := range g.cfg.Projects {
		files, err := plans.PlanFiles(project.Path)
		if err != nil {
			g.log.Warn("plan discovery failed",
				zap.String("project", project.Name), zap.Error(err))
			continue
		}
		if len(files) == 0 {
			g.log.Debug("no planning documents", zap.String("project", project.Name))
			continue
		}

		for _, file := range files {
			data, err := os.ReadFile(file)
			if err != nil {
				g.log.Warn("unreadable planning document",
					zap.String("file", file), zap.Error(truncateErr(err)))
				continue
			}
			extracted := extractor.CalendarTasks(string(data), project.Name, filepath.Base(file), window)
			if len(extracted) > 0 {
				g.log.Debug("extracted tasks",
					zap.String("file", filepath.Base(file)), zap.Int("tasks", len(extracted)))
				tasks = append(tasks, extracted...)
			}
		}
	}

	if len(tasks) == 0 {
		g.log.Info("no dated tasks found, nothing to schedule")
		return &Result{}, nil
	}

	scheduler := schedule.New(
		g.cfg.WorkStartHour, g.cfg.LunchStart, g.cfg.LunchEnd, g.cfg.GapMinutes,
		g.cfg.ProjectOrder(), loc,
	)
	slots := scheduler.Slots(tasks)

	exporter := ics.NewExporter(g.cfg.Timezone, loc)
	content := exporter.Calendar(slots)

	if err := os.MkdirAll(g.cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(g.cfg.OutputDir, OutputFile)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return nil, fmt.Errorf("write calendar: %w", err)
	}

	g.log.Info("calendar generated",
		zap.String("path", path),
		zap.Int("tasks", len(tasks)),
		zap.Int("events", len(slots)),
	)
	return &Result{Path: path, Tasks: len(tasks), Slots: slots}, nil
}

// truncateErr keeps per-file log lines readable when decode errors quote
// file content.
func truncateErr(err error) error {
	const max = 120
	msg := err.Error()
	if len(msg) <= max {
		return err
	}
	return fmt.Errorf("%s...", msg[:max])
}
