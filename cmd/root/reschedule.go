package root

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jordanwei/bipcal/pkg/calendar"
	"github.com/jordanwei/bipcal/pkg/reschedule"
	"github.com/jordanwei/bipcal/pkg/store"
)

func newRescheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reschedule",
		Short: "Run the end-of-day reschedule procedure",
		Long: "Scans launch plans for unchecked tasks from the past three days, assigns them " +
			"new dates under per-project daily time budgets, marks the original lines as moved " +
			"(never deleting anything), and regenerates the calendar.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			defer log.Sync()

			gen := calendar.NewGenerator(cfg, log)
			dests := destinations(cmd.Context(), cfg, log)
			engine := reschedule.NewEngine(cfg, gen, dests, log)

			summary, err := engine.Run(time.Now())
			if err != nil {
				return err
			}

			if st, err := openStore(cfg); err != nil {
				log.Warn("run history unavailable", zap.Error(err))
			} else {
				defer st.Close()
				if _, err := st.RecordRun(store.KindReschedule, summary.Rescheduled, summary.Marked, summary.CalendarPath); err != nil {
					log.Warn("failed to record run", zap.Error(err))
				}
			}

			if summary.Undone == 0 {
				fmt.Println("No undone tasks to reschedule.")
			} else {
				fmt.Printf("Rescheduled %d task(s); marked %d line(s) across %d file(s).\n",
					summary.Rescheduled, summary.Marked, summary.FilesModified)
			}
			if summary.CalendarPath != "" {
				fmt.Printf("Calendar updated: %s\n", summary.CalendarPath)
			}
			return nil
		},
	}
}
