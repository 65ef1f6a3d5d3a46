package commands

import (
	"fmt"

	"github.com/nidrosoft/rizzer-sub001/internal/config"
	"github.com/nidrosoft/rizzer-sub001/internal/queue"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewEnqueueCmd publishes a job for the worker instead of running it here
func NewEnqueueCmd() *cobra.Command {
	var (
		profile string
		sweep   bool
	)
	cmd := &cobra.Command{
		Use:   "enqueue",
		Short: "Publish a generation or sweep job to RabbitMQ",
		RunE: func(cmd *cobra.Command, args []string) error {
			if sweep == (profile != "") {
				return fmt.Errorf("exactly one of --profile or --sweep is required")
			}
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cfg.RabbitMQURL == "" {
				return fmt.Errorf("RABBITMQ_URL is required to enqueue jobs")
			}

			var job *queue.Job
			if sweep {
				job = queue.NewSweepJob(cfg.SweepInterval)
			} else {
				id, err := parseProfileID(profile)
				if err != nil {
					return err
				}
				job = queue.NewGenerationJob(id)
			}

			q, err := queue.NewRabbitMQQueue(cfg.RabbitMQURL, zap.NewNop())
			if err != nil {
				return fmt.Errorf("connect to rabbitmq: %w", err)
			}
			defer func() { _ = q.Close() }()

			if err := q.Enqueue(cmd.Context(), job); err != nil {
				return fmt.Errorf("enqueue: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Enqueued %s job %s\n", job.Type, job.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&profile, "profile", "", "Profile ID for a single generation job")
	cmd.Flags().BoolVar(&sweep, "sweep", false, "Enqueue a sweep over every due profile")
	return cmd
}
