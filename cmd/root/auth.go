package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jordanwei/bipcal/pkg/auth"
)

func newAuthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with Google Calendar",
		Long:  "Removes any cached token and runs the browser authorization flow for the Google Calendar upload destination.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := auth.ResetToken(); err != nil {
				return fmt.Errorf("remove cached token: %w", err)
			}
			if _, err := auth.CalendarService(cmd.Context()); err != nil {
				return fmt.Errorf("authentication failed: %w", err)
			}
			dir, err := auth.ConfigDir()
			if err == nil {
				fmt.Printf("Authentication successful. Token saved under %s\n", dir)
			}
			return nil
		},
	}
}
