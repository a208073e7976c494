package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ordercsv/internal/orders"
	"ordercsv/internal/storage"
)

func newRunsCmd() *cobra.Command {
	var (
		dbPath string
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "runs <scope>",
		Short: "List recent fetch_messages runs for a guild or user id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openJournal(dbPath)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			runs, err := store.ListRuns(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), orders.FormatRuns(runs))
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", envOrDefault("DATABASE_PATH", "./data/orders.db"), "path to sqlite database")
	cmd.Flags().IntVar(&limit, "limit", orders.HistoryLimit, "maximum number of runs to show")
	return cmd
}

func newRunCmd() *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "run <id>",
		Short: "Show one fetch_messages run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openJournal(dbPath)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			run, err := store.GetRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), orders.FormatRun(*run))
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", envOrDefault("DATABASE_PATH", "./data/orders.db"), "path to sqlite database")
	return cmd
}

// openJournal opens an existing journal database. Unlike the bot it never
// creates one, so a mistyped path is reported instead of migrated.
func openJournal(dbPath string) (*storage.SQLite, error) {
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	store, err := storage.NewSQLite(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return store, nil
}
