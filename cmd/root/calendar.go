package root

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jordanwei/bipcal/pkg/calendar"
	"github.com/jordanwei/bipcal/pkg/store"
	"github.com/jordanwei/bipcal/pkg/upload"
)

func newCalendarCmd() *cobra.Command {
	var noUpload bool

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Generate the ICS calendar from planning documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			defer log.Sync()

			gen := calendar.NewGenerator(cfg, log)
			res, err := gen.Generate(time.Now())
			if err != nil {
				return err
			}
			if res.Path == "" {
				fmt.Println("No tasks with dates found. Nothing scheduled.")
				return nil
			}

			if !noUpload {
				dests := destinations(cmd.Context(), cfg, log)
				upload.Dispatch(dests, res.Path, res.Slots, log)
			}

			if st, err := openStore(cfg); err != nil {
				log.Warn("run history unavailable", zap.Error(err))
			} else {
				defer st.Close()
				if _, err := st.RecordRun(store.KindCalendar, res.Tasks, len(res.Slots), res.Path); err != nil {
					log.Warn("failed to record run", zap.Error(err))
				}
			}

			fmt.Printf("Calendar generated: %s (%d events from %d tasks)\n",
				res.Path, len(res.Slots), res.Tasks)
			return nil
		},
	}

	cmd.Flags().BoolVar(&noUpload, "no-upload", false, "Skip the configured upload destinations")
	return cmd
}
