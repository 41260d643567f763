package root

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent calendar and reschedule runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			defer log.Sync()

			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			runs, err := st.RecentRuns(limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("No runs recorded yet.")
				return nil
			}
			for _, r := range runs {
				fmt.Printf("%s  %-10s  tasks=%d events=%d  %s\n",
					r.CreatedAt.Local().Format("2006-01-02 15:04"), r.Kind, r.Tasks, r.Events, r.CalendarPath)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of runs to show")
	return cmd
}
