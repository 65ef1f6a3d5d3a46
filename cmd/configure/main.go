package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nidrosoft/rizzer-sub001/cmd/configure/commands"
	"github.com/spf13/cobra"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "gifts-configure",
		Short: "Admin tool for the gift suggestion pipeline",
		Long:  "Run generations by hand, enqueue jobs, inspect schedules and logs, and manage rate limits",
	}

	rootCmd.PersistentFlags().BoolVar(&commands.Debug, "debug", false, "Log prompts and model responses")

	rootCmd.AddCommand(commands.NewGenerateCmd())
	rootCmd.AddCommand(commands.NewReadinessCmd())
	rootCmd.AddCommand(commands.NewEnqueueCmd())
	rootCmd.AddCommand(commands.NewScheduleCmd())
	rootCmd.AddCommand(commands.NewLogsCmd())
	rootCmd.AddCommand(commands.NewRatelimitCmd())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
