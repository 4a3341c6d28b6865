package commands

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"github.com/rshashank20/foodexpiry-tracker/internal/config"
	"github.com/rshashank20/foodexpiry-tracker/internal/db"
	"github.com/rshashank20/foodexpiry-tracker/internal/inventory"
	"github.com/rshashank20/foodexpiry-tracker/internal/reminder"
)

func sweepCmd() *cobra.Command {
	var daysAhead int

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run one expiry sweep and print the summary as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(config.RequiredWorker); err != nil {
				return err
			}
			ctx := cmd.Context()

			pool, err := db.ConnectPostgres(ctx, cfg.DatabaseURL, log)
			if err != nil {
				return err
			}
			defer pool.Close()

			items := inventory.NewService(inventory.NewPostgresRepository(pool), nil, nil,
				inventory.WithLocation(cfg.Location()))
			sweeper := reminder.NewSweeper(items,
				reminder.WithDaysAhead(daysAhead),
				reminder.WithLocation(cfg.Location()),
				reminder.WithLogger(log),
			)

			sum, err := sweeper.RunOnce(ctx, time.Now())
			if err != nil {
				return err
			}
			return writeJSON(cmd, sum)
		},
	}

	cmd.Flags().IntVar(&daysAhead, "days-ahead", reminder.DefaultDaysAhead, "look for items expiring this many days from today")
	return cmd
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
