package main

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vbonduro/stowaway/internal/config"
	"github.com/vbonduro/stowaway/internal/db"
	"github.com/vbonduro/stowaway/internal/logging"
)

// errMissingDB is returned when --db is empty.
var errMissingDB = errors.New("database path is required (--db or DB_PATH)")

type globalFlags struct {
	dbPath   string
	format   string
	logLevel string
}

func newRootCmd() *cobra.Command {
	var flags globalFlags

	cmd := &cobra.Command{
		Use:          "stowaway-admin",
		Short:        "Maintenance jobs for a stowaway deployment",
		Long:         "stowaway-admin runs one-off data repair jobs against the stowaway database and photo bucket.",
		SilenceUsage: true,
	}

	defaultDB := os.Getenv("DB_PATH")
	if defaultDB == "" {
		defaultDB = filepath.Join(config.DataDir(), "stowaway.db")
	}
	cmd.PersistentFlags().StringVar(&flags.dbPath, "db", defaultDB, "Path to the stowaway database")
	cmd.PersistentFlags().StringVar(&flags.format, "format", "table", "Output format: table or json")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "warn", "Log level: debug, info, warn or error")

	cmd.AddCommand(newBackfillCmd(&flags))
	cmd.AddCommand(newScrubCmd(&flags))
	cmd.AddCommand(newCacheControlCmd(&flags))
	return cmd
}

func (f *globalFlags) logger(cmd *cobra.Command) *slog.Logger {
	return logging.NewWithWriter(f.logLevel, cmd.ErrOrStderr())
}

// openDB opens an existing database. Jobs never create one.
func (f *globalFlags) openDB() (*sql.DB, error) {
	if f.dbPath == "" {
		return nil, errMissingDB
	}
	if _, err := os.Stat(f.dbPath); err != nil {
		return nil, fmt.Errorf("database %s: %w", f.dbPath, err)
	}
	return db.Open(f.dbPath)
}

func (f *globalFlags) validateFormat() error {
	switch f.format {
	case "table", "json":
		return nil
	default:
		return fmt.Errorf("invalid format: %s (valid values: table, json)", f.format)
	}
}
