// Package gcal pushes scheduled slots to a named Google Calendar as an
// upload destination. Events are keyed through the local event index so a
// rerun patches in place instead of duplicating.
package gcal

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/jordanwei/bipcal/pkg/index"
	"github.com/jordanwei/bipcal/pkg/model"
)

// Destination uploads slots to one Google Calendar.
type Destination struct {
	srv        *calendar.Service
	calendarID string
	idx        *index.EventIndex
}

// NewDestination resolves a calendar by its display name on the user's
// calendar list.
func NewDestination(srv *calendar.Service, calendarName string, idx *index.EventIndex) (*Destination, error) {
	list, err := srv.CalendarList.List().Do()
	if err != nil {
		return nil, fmt.Errorf("list calendars: %w", err)
	}
	var calendarID string
	for _, item := range list.Items {
		if item.Summary == calendarName {
			calendarID = item.Id
			break
		}
	}
	if calendarID == "" {
		return nil, fmt.Errorf("calendar %q not found", calendarName)
	}
	return &Destination{srv: srv, calendarID: calendarID, idx: idx}, nil
}

func (d *Destination) Name() string { return "google-calendar" }

// Upload syncs every slot: patch when the index knows the event, insert
// otherwise. The index is saved whatever happens, keeping whatever was
// already synced; a failed save is reported, since losing the mapping
// means duplicated events on the next run.
func (d *Destination) Upload(_ string, slots []model.ScheduledSlot) (err error) {
	defer func() {
		if saveErr := d.idx.Save(); saveErr != nil && err == nil {
			err = fmt.Errorf("save event index: %w", saveErr)
		}
	}()

	for _, slot := range slots {
		key := slotKey(slot)
		event := slotEvent(slot)

		if eventID := d.idx.Get(key); eventID != "" {
			if _, err := d.srv.Events.Patch(d.calendarID, eventID, event).Do(); err == nil {
				continue
			}
			// The event was deleted remotely; forget it and re-insert.
			d.idx.Remove(key)
		}

		created, err := d.srv.Events.Insert(d.calendarID, event).Do()
		if err != nil {
			return fmt.Errorf("insert event %q: %w", event.Summary, err)
		}
		d.idx.Set(key, created.Id)
	}
	return nil
}

// slotKey identifies a slot across runs: same start and summary means the
// same event.
func slotKey(slot model.ScheduledSlot) string {
	return slot.Start.Format(time.RFC3339) + "|" + summary(slot.Task)
}

func summary(t model.CalendarTask) string {
	return fmt.Sprintf("[%s] %s", t.Project, t.Title)
}

func slotEvent(slot model.ScheduledSlot) *calendar.Event {
	t := slot.Task
	return &calendar.Event{
		Summary: summary(t),
		Description: fmt.Sprintf("Project: %s\nSource: %s\nDuration: %gh",
			t.Project, t.SourceFile, t.DurationHours),
		Start: &calendar.EventDateTime{DateTime: slot.Start.Format(time.RFC3339)},
		End:   &calendar.EventDateTime{DateTime: slot.End.Format(time.RFC3339)},
	}
}

// Connect builds a Destination from an authenticated service factory,
// loading the persistent event index.
func Connect(ctx context.Context, service func(context.Context) (*calendar.Service, error), calendarName string) (*Destination, error) {
	srv, err := service(ctx)
	if err != nil {
		return nil, err
	}
	idx, err := index.NewEventIndex()
	if err != nil {
		return nil, fmt.Errorf("load event index: %w", err)
	}
	return NewDestination(srv, calendarName, idx)
}
