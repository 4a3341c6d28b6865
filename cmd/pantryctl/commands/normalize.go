package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rshashank20/foodexpiry-tracker/internal/expiry"
)

func normalizeCmd() *cobra.Command {
	var (
		hint     string
		tieBreak string
	)

	cmd := &cobra.Command{
		Use:   "normalize <raw-date>...",
		Short: "Normalize raw expiry strings to YYYY-MM-DD",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tb, err := parseTieBreak(tieBreak)
			if err != nil {
				return err
			}
			n := expiry.Normalizer{TieBreak: tb}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, raw := range args {
				fmt.Fprintf(w, "%s\t%s\n", raw, n.NormalizeWithHint(raw, hint))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&hint, "hint", "", `label text printed near the date (e.g. "BEST BEFORE")`)
	cmd.Flags().StringVar(&tieBreak, "tie-break", "larger", "ambiguous DD/MM vs MM/DD policy: larger, day, month")
	return cmd
}

func parseTieBreak(s string) (expiry.TieBreak, error) {
	switch s {
	case "", "larger":
		return expiry.TieBreakLargerFirstIsDay, nil
	case "day":
		return expiry.TieBreakDayFirst, nil
	case "month":
		return expiry.TieBreakMonthFirst, nil
	default:
		return nil, fmt.Errorf("unknown tie-break %q (want larger, day or month)", s)
	}
}
