package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/nidrosoft/rizzer-sub001/internal/database"
	"github.com/spf13/cobra"
)

// NewLogsCmd prints recent generation attempts for a profile
func NewLogsCmd() *cobra.Command {
	var (
		profile string
		limit   int
	)
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show recent generation attempts for a profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProfileID(profile)
			if err != nil {
				return err
			}
			db, _, err := openDB()
			if err != nil {
				return err
			}
			defer closeDB(db)

			entries, err := database.NewGenerationLogRepository(db).ListByProfile(cmd.Context(), id, limit)
			if err != nil {
				return fmt.Errorf("list generation logs: %w", err)
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No generation attempts recorded.")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CREATED\tSTATUS\tCOUNT\tDURATION\tTOKENS\tCOST\tERROR")
			for _, e := range entries {
				errMsg := ""
				if e.ErrorMessage != nil {
					errMsg = *e.ErrorMessage
				}
				fmt.Fprintf(tw, "%s\t%s\t%d\t%dms\t%d/%d\t$%.6f\t%s\n",
					e.CreatedAt.Format("2006-01-02 15:04:05"), e.Status, e.SuggestionsCount,
					e.DurationMS, e.PromptTokens, e.CompletionTokens, e.Cost, errMsg)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&profile, "profile", "", "Profile ID (required)")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum attempts to show")
	return cmd
}
