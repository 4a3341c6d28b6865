package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"cloud.google.com/go/civil"
	"github.com/spf13/cobra"

	"github.com/rshashank20/foodexpiry-tracker/internal/expiry"
)

func classifyCmd() *cobra.Command {
	var (
		today        string
		reminderDays int
	)

	cmd := &cobra.Command{
		Use:   "classify <date>...",
		Short: "Show days left, status and reminder for expiry dates",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := expiry.Today(time.Now(), cfg.Location())
			if today != "" {
				d, err := civil.ParseDate(today)
				if err != nil {
					return fmt.Errorf("--today: %w", err)
				}
				ref = d
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "INPUT\tDATE\tDAYS LEFT\tSTATUS\tBADGE\tREMINDER")
			for _, raw := range args {
				date := expiry.Normalize(raw)
				off := expiry.DaysLeft(date, ref)
				badge := expiry.Badge(off)

				reminder := "-"
				if t := expiry.Trigger(off, reminderDays); t.Fired() {
					reminder = fmt.Sprintf("%s (%s)", t.Kind, t.Priority)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", raw, date, off, badge.Status, badge.Label, reminder)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&today, "today", "", "reference date YYYY-MM-DD (default: today in TIMEZONE)")
	cmd.Flags().IntVar(&reminderDays, "reminder-days", 3, "reminder lead time in days")
	return cmd
}
