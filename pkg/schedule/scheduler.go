// Package schedule assigns wall-clock slots to dated tasks within a
// working day: configured start hour, a hard lunch window, and a gap
// between consecutive slots.
package schedule

import (
	"sort"
	"time"

	"github.com/jordanwei/bipcal/pkg/model"
)

// Scheduler packs tasks into day slots. It holds only configuration;
// every call to Slots is independent.
type Scheduler struct {
	workStartHour int
	lunchStart    int
	lunchEnd      int
	gap           time.Duration
	projectOrder  map[string]int
	loc           *time.Location
}

// unknownRank sorts unconfigured projects after every configured one.
const unknownRank = 99

func New(workStartHour, lunchStart, lunchEnd, gapMinutes int, projectOrder map[string]int, loc *time.Location) *Scheduler {
	return &Scheduler{
		workStartHour: workStartHour,
		lunchStart:    lunchStart,
		lunchEnd:      lunchEnd,
		gap:           time.Duration(gapMinutes) * time.Minute,
		projectOrder:  projectOrder,
		loc:           loc,
	}
}

// Slots assigns start/end times to every task, batched by calendar date in
// ascending order. Within a day tasks run in project-priority order,
// stably, from the work start hour.
func (s *Scheduler) Slots(tasks []model.CalendarTask) []model.ScheduledSlot {
	byDate := make(map[string][]model.CalendarTask)
	for _, t := range tasks {
		key := model.DateKey(t.Date)
		byDate[key] = append(byDate[key], t)
	}

	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	var slots []model.ScheduledSlot
	for _, dateKey := range dates {
		day := byDate[dateKey]
		sort.SliceStable(day, func(i, j int) bool {
			return s.rank(day[i].Project) < s.rank(day[j].Project)
		})
		slots = append(slots, s.packDay(day)...)
	}
	return slots
}

func (s *Scheduler) rank(project string) int {
	if r, ok := s.projectOrder[project]; ok {
		return r
	}
	return unknownRank
}

func (s *Scheduler) packDay(tasks []model.CalendarTask) []model.ScheduledSlot {
	if len(tasks) == 0 {
		return nil
	}
	d := tasks[0].Date
	cursor := time.Date(d.Year(), d.Month(), d.Day(), s.workStartHour, 0, 0, 0, s.loc)

	lunch := time.Date(d.Year(), d.Month(), d.Day(), s.lunchStart, 0, 0, 0, s.loc)

	slots := make([]model.ScheduledSlot, 0, len(tasks))
	for _, t := range tasks {
		dur := time.Duration(t.DurationHours * float64(time.Hour))

		// A span that starts before lunch and reaches into it moves wholly
		// past the lunch window. Ending exactly at lunch is fine.
		if end := cursor.Add(dur); cursor.Before(lunch) && end.After(lunch) {
			cursor = s.afterLunch(cursor)
		}
		if h := cursor.Hour(); h >= s.lunchStart && h < s.lunchEnd {
			cursor = s.afterLunch(cursor)
		}

		end := cursor.Add(dur)
		slots = append(slots, model.ScheduledSlot{Task: t, Start: cursor, End: end})
		cursor = end.Add(s.gap)
	}
	return slots
}

func (s *Scheduler) afterLunch(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), s.lunchEnd, 0, 0, 0, t.Location())
}
