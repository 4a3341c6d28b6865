package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshashank20/foodexpiry-tracker/internal/auth"
)

// tokenCmd mints a bearer token for local testing against the API.
func tokenCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "token <user-id>",
		Short: "Print a signed access token for a user id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tokens, err := auth.NewTokens(cfg.JWTSecret)
			if err != nil {
				return err
			}
			tok, err := tokens.Generate(args[0], email)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email claim")
	return cmd
}
