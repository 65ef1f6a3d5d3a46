package commands

import (
	"fmt"

	"github.com/nidrosoft/rizzer-sub001/internal/services/gifts"
	"github.com/spf13/cobra"
)

// NewGenerateCmd runs the pipeline in-process for one profile or one batch
func NewGenerateCmd() *cobra.Command {
	var (
		profile string
		batch   bool
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate gift suggestions now",
		Long:  "Run the generation pipeline for one profile (--profile) or for every due profile (--batch).",
		RunE: func(cmd *cobra.Command, args []string) error {
			if batch == (profile != "") {
				return fmt.Errorf("exactly one of --profile or --batch is required")
			}

			ctx := cmd.Context()
			a, closeApp, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer closeApp()

			out := cmd.OutOrStdout()
			if batch {
				res, err := a.Batch.Run(ctx)
				if err != nil {
					return fmt.Errorf("batch run: %w", err)
				}
				return printJSON(out, res)
			}

			id, err := parseProfileID(profile)
			if err != nil {
				return err
			}
			res, err := a.Generator.GenerateForProfile(ctx, id)
			if err != nil {
				return fmt.Errorf("generate for %s (%s): %w", id, gifts.ErrorKind(err), err)
			}
			return printJSON(out, res)
		},
	}
	cmd.Flags().StringVar(&profile, "profile", "", "Profile ID to generate for")
	cmd.Flags().BoolVar(&batch, "batch", false, "Generate for every profile that is due")
	return cmd
}

// NewReadinessCmd scores a profile without calling the model
func NewReadinessCmd() *cobra.Command {
	var (
		profile   string
		threshold int
	)
	cmd := &cobra.Command{
		Use:   "readiness",
		Short: "Show a profile's data quality score",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProfileID(profile)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			a, closeApp, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer closeApp()

			r, err := a.Generator.CheckReadiness(ctx, id, threshold)
			if err != nil {
				return fmt.Errorf("check readiness: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), r)
		},
	}
	cmd.Flags().StringVar(&profile, "profile", "", "Profile ID to score (required)")
	cmd.Flags().IntVar(&threshold, "threshold", gifts.ClientMinQualityScore, "Score needed to count as ready")
	return cmd
}
