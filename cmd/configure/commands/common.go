package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/nidrosoft/rizzer-sub001/internal/app"
	"github.com/nidrosoft/rizzer-sub001/internal/config"
	"github.com/nidrosoft/rizzer-sub001/internal/database"
	"github.com/nidrosoft/rizzer-sub001/internal/logger"
)

// Debug turns on prompt and response logging for commands that call the model
var Debug bool

// openApp loads config and wires the full pipeline. The caller closes it.
func openApp(ctx context.Context) (*app.App, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.NewCLILogger(Debug)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	a, err := app.New(ctx, cfg, log, Debug)
	if err != nil {
		_ = logger.Sync(log)
		return nil, nil, err
	}
	closeFn := func() {
		if err := a.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close connections: %v\n", err)
		}
		_ = logger.Sync(log)
	}
	return a, closeFn, nil
}

// openDB connects to the datastore only, for commands that never call the model
func openDB() (*database.DB, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	return db, cfg, nil
}

func closeDB(db *database.DB) {
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
	}
}

func parseProfileID(raw string) (uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil, fmt.Errorf("--profile is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("--profile must be a UUID: %w", err)
	}
	return id, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
