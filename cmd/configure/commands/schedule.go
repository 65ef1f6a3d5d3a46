package commands

import (
	"fmt"

	"github.com/nidrosoft/rizzer-sub001/internal/database"
	"github.com/spf13/cobra"
)

// NewScheduleCmd inspects the generation schedule
func NewScheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Inspect the generation schedule",
	}
	cmd.AddCommand(newScheduleDueCmd())
	return cmd
}

func newScheduleDueCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "due",
		Short: "List profiles due for generation",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, cfg, err := openDB()
			if err != nil {
				return err
			}
			defer closeDB(db)

			if limit <= 0 {
				limit = cfg.BatchLimit
			}
			repo := database.NewScheduleRepository(db)
			ids, err := repo.Due(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("fetch due profiles: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(ids) == 0 {
				fmt.Fprintln(out, "No profiles are due.")
				return nil
			}
			fmt.Fprintf(out, "%d profile(s) due:\n", len(ids))
			for _, id := range ids {
				fmt.Fprintf(out, "  %s\n", id)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum profiles to list (default BATCH_LIMIT)")
	return cmd
}
