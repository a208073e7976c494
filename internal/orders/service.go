// Package orders implements the chat commands on top of the CSV sink and
// the ingestion pipeline, independent of any chat platform.
package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"ordercsv/internal/ingest"
	"ordercsv/internal/model"
	"ordercsv/internal/sink"
)

// ErrNoData is returned by AddCompany when every field is absent.
var ErrNoData = errors.New("no data to record")

// ErrFetchUnavailable is returned by FetchMessages when no pipeline is configured.
var ErrFetchUnavailable = errors.New("message history is not available here")

// HistoryLimit is the number of runs FetchHistory shows.
const HistoryLimit = 10

// Responder is the invoking chat.
type Responder interface {
	ingest.Responder
	Embed(ctx context.Context, title, description string) error
}

// RunLister reads the ingestion journal.
type RunLister interface {
	ListRuns(ctx context.Context, scope string, limit int) ([]model.Run, error)
}

// Service executes commands for a single scope per call.
type Service struct {
	dir      string
	pipeline *ingest.Pipeline
	runs     RunLister
	log      *slog.Logger
}

// New creates a Service. pipeline and runs may be nil on platforms that
// cannot read channel history.
func New(dir string, pipeline *ingest.Pipeline, runs RunLister, log *slog.Logger) *Service {
	return &Service{dir: dir, pipeline: pipeline, runs: runs, log: log}
}

// AddCompany appends one record to slashcommands-<scope>.csv and echoes it.
func (s *Service) AddCompany(ctx context.Context, scope string, fields map[model.Label]string, out Responder) error {
	if len(fields) == 0 {
		return ErrNoData
	}

	var rec model.Record
	for l, v := range fields {
		rec.Set(l, v)
	}

	w, err := sink.Open(s.dir, sink.KindCommands, scope)
	if err != nil {
		return err
	}
	if err := w.Write(rec); err != nil {
		_ = w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	s.log.Info("recorded order", "scope", scope)

	return out.Embed(ctx, "Created a new record!", FormatRecord(rec))
}

// GetCSV sends slashcommands-<scope>.csv and optionally removes it.
func (s *Service) GetCSV(ctx context.Context, scope string, del bool, out Responder) error {
	path, err := sink.Path(s.dir, sink.KindCommands, scope)
	if err != nil {
		return err
	}
	if err := sink.Send(ctx, path, out); err != nil {
		return err
	}
	if del {
		s.remove(path)
	}
	return nil
}

// FetchMessages back-fills fetch-<scope>.csv from channel history.
func (s *Service) FetchMessages(ctx context.Context, req ingest.Request, out Responder) error {
	if s.pipeline == nil {
		return ErrFetchUnavailable
	}
	return s.pipeline.Run(ctx, req, out)
}

// FetchHistory lists the most recent ingestion runs for scope.
func (s *Service) FetchHistory(ctx context.Context, scope string, out Responder) error {
	if s.runs == nil {
		return ErrFetchUnavailable
	}
	runs, err := s.runs.ListRuns(ctx, scope, HistoryLimit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	return out.Reply(ctx, FormatRuns(runs))
}

func (s *Service) remove(path string) {
	if err := os.Remove(path); err != nil {
		s.log.Warn("remove csv after send", "path", path, "error", err)
	}
}
