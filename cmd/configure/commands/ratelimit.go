package commands

import (
	"fmt"
	"strings"

	"github.com/nidrosoft/rizzer-sub001/internal/database"
	"github.com/nidrosoft/rizzer-sub001/internal/models"
	"github.com/nidrosoft/rizzer-sub001/internal/validation"
	"github.com/spf13/cobra"
)

// NewRatelimitCmd creates the ratelimit configuration command with list and set subcommands.
func NewRatelimitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ratelimit",
		Short: "Manage rate limit configuration",
		Long:  "List or update per-scope rate limits (e.g. 5-S, 100-M). Stored in database; the server reloads them every minute.",
	}
	cmd.AddCommand(newRatelimitListCmd())
	cmd.AddCommand(newRatelimitSetCmd())
	return cmd
}

func newRatelimitListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List current rate limit configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := openDB()
			if err != nil {
				return err
			}
			defer closeDB(db)

			configs, err := database.NewRatelimitConfigRepository(db).List(cmd.Context())
			if err != nil {
				return fmt.Errorf("list ratelimit config: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(configs) == 0 {
				fmt.Fprintln(out, "No rate limit configuration in database. Use 'ratelimit set' to add one.")
				return nil
			}
			fmt.Fprintln(out, "Rate limit configuration:")
			for _, c := range configs {
				fmt.Fprintf(out, "  %-10s %s (updated %s)\n", c.Scope, c.Rate, c.UpdatedAt.Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
}

func newRatelimitSetCmd() *cobra.Command {
	var rate, scope string
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set rate limit configuration",
		Long:  "Update a scope's rate limit (e.g. 5-S, 100-M, 1000-H). Stored in database.",
		RunE: func(cmd *cobra.Command, args []string) error {
			rate = strings.TrimSpace(rate)
			if rate == "" {
				return fmt.Errorf("--rate is required (e.g. 5-S, 100-M)")
			}
			if err := validation.ValidateRatelimitRate(rate); err != nil {
				return err
			}
			db, _, err := openDB()
			if err != nil {
				return err
			}
			defer closeDB(db)

			c := &models.RatelimitConfig{Scope: scope, Rate: rate}
			if err := database.NewRatelimitConfigRepository(db).Set(cmd.Context(), c); err != nil {
				return fmt.Errorf("set ratelimit config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rate limit for %q set to %s.\n", scope, rate)
			return nil
		},
	}
	cmd.Flags().StringVar(&rate, "rate", "", "Rate (e.g. 5-S, 100-M, 1000-H) (required)")
	cmd.Flags().StringVar(&scope, "scope", models.RatelimitScopeGenerate, "Scope the rate applies to")
	return cmd
}
