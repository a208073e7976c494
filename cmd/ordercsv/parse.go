package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"ordercsv/internal/model"
	"ordercsv/internal/parser"
	"ordercsv/internal/sink"
)

type parseOptions struct {
	dir   string
	scope string
	kind  string
}

func newParseCmd() *cobra.Command {
	var opts parseOptions
	cmd := &cobra.Command{
		Use:   "parse [file...]",
		Short: "Parse order messages into CSV rows",
		Long: `Parse order messages into CSV rows.

Each file is treated as one message body; with no files the body is read
from stdin. Inputs without any recognised label are skipped.

Rows are printed to stdout unless --scope is given, in which case they are
appended to <kind>-<scope>.csv in --dir, the file the bot would write.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, args, opts)
		},
	}
	cmd.Flags().StringVar(&opts.dir, "dir", envOrDefault("CSV_DIR", "."), "directory holding the bot's CSV files")
	cmd.Flags().StringVar(&opts.scope, "scope", "", "append to the CSV of this guild or user id")
	cmd.Flags().StringVar(&opts.kind, "kind", string(sink.KindFetch), "CSV file kind: fetch or slashcommands")
	return cmd
}

func runParse(cmd *cobra.Command, args []string, opts parseOptions) error {
	bodies, err := readBodies(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	var recs []model.Record
	for _, body := range bodies {
		if rec, ok := parser.Parse(body); ok {
			recs = append(recs, rec)
		}
	}

	if opts.scope == "" {
		w := csv.NewWriter(cmd.OutOrStdout())
		for _, rec := range recs {
			if err := w.Write(rec.Fields()); err != nil {
				return fmt.Errorf("write csv: %w", err)
			}
		}
		w.Flush()
		return w.Error()
	}

	kind := sink.Kind(opts.kind)
	if kind != sink.KindFetch && kind != sink.KindCommands {
		return fmt.Errorf("unknown kind %q", opts.kind)
	}
	s, err := sink.Open(opts.dir, kind, opts.scope)
	if err != nil {
		return err
	}
	for _, rec := range recs {
		if err := s.Write(rec); err != nil {
			_ = s.Close()
			return err
		}
	}
	if err := s.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "appended %d records to %s\n", len(recs), s.Path())
	return nil
}

func readBodies(stdin io.Reader, files []string) ([]string, error) {
	if len(files) == 0 {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return []string{string(data)}, nil
	}

	bodies := make([]string, 0, len(files))
	for _, name := range files {
		data, err := os.ReadFile(name) //nolint:gosec // paths come from the command line
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		bodies = append(bodies, string(data))
	}
	return bodies, nil
}
