// Package commands holds the pantryctl subcommands: offline date tools and
// on-demand operations against the configured database.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/rshashank20/foodexpiry-tracker/internal/config"
	"github.com/rshashank20/foodexpiry-tracker/internal/platform/logging"
)

var (
	cfg *config.Config
	log logging.Logger
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "pantryctl",
		Short:         "Food inventory expiry tools",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.Load()
			if err != nil {
				return err
			}
			cfg = c

			l, err := logging.New(logging.Config{Level: cfg.LogLevel, Format: "console"})
			if err != nil {
				return err
			}
			log = l
			return nil
		},
	}

	root.AddCommand(normalizeCmd(), classifyCmd(), sweepCmd(), tokenCmd())
	return root
}

func Execute() error {
	return newRootCmd().Execute()
}
