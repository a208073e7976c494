// Package ingest back-fills the fetch CSV from a channel's message history.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"ordercsv/internal/history"
	"ordercsv/internal/model"
	"ordercsv/internal/parser"
	"ordercsv/internal/sink"
)

// Responder is the invoking chat as seen by the pipeline.
type Responder interface {
	sink.Attacher
	Reply(ctx context.Context, text string) error
}

// Journal records ingestion runs.
type Journal interface {
	CreateRun(ctx context.Context, run *model.Run) error
	FinishRun(ctx context.Context, run *model.Run) error
}

// Request describes one history ingestion.
type Request struct {
	Scope     string
	ChannelID string
	AnchorID  string
	Delete    bool
}

// Collector returns every message after an anchor.
type Collector interface {
	Collect(ctx context.Context, channelID, anchor string) ([]model.Message, error)
}

// Pipeline runs paginate, parse and write for one request at a time.
type Pipeline struct {
	dir       string
	collector Collector
	journal   Journal
	log       *slog.Logger
}

// New creates a Pipeline writing CSV files into dir. journal may be nil.
func New(dir string, c Collector, journal Journal, log *slog.Logger) *Pipeline {
	return &Pipeline{dir: dir, collector: c, journal: journal, log: log}
}

// Run ingests the channel history after req.AnchorID into
// fetch-<scope>.csv and sends the file back through out.
func (p *Pipeline) Run(ctx context.Context, req Request, out Responder) error {
	anchor, err := history.ParseAnchor(req.AnchorID)
	if err != nil {
		return err
	}
	req.AnchorID = anchor

	if err := out.Reply(ctx, "Fetching messages"); err != nil {
		return fmt.Errorf("send progress: %w", err)
	}

	run := &model.Run{Scope: req.Scope, ChannelID: req.ChannelID, AnchorID: req.AnchorID}
	p.startRun(ctx, run)

	err = p.run(ctx, req, out, run)
	p.finishRun(ctx, run, err)
	return err
}

func (p *Pipeline) run(ctx context.Context, req Request, out Responder, run *model.Run) error {
	msgs, err := p.collector.Collect(ctx, req.ChannelID, req.AnchorID)
	if err != nil {
		return err
	}
	run.MessagesFetched = len(msgs)

	if err := out.Reply(ctx, fmt.Sprintf("Fetched %d messages, processing them now...", len(msgs))); err != nil {
		return fmt.Errorf("send progress: %w", err)
	}

	written, path, err := p.write(req.Scope, msgs)
	run.RecordsWritten = written
	if err != nil {
		return err
	}

	p.log.Info("ingested messages",
		"scope", req.Scope,
		"channel_id", req.ChannelID,
		"messages", len(msgs),
		"records", written,
	)

	if err := sink.Send(ctx, path, out); err != nil {
		return err
	}

	if req.Delete {
		if err := os.Remove(path); err != nil {
			p.log.Warn("remove csv after send", "path", path, "error", err)
		}
	}
	return nil
}

func (p *Pipeline) write(scope string, msgs []model.Message) (int, string, error) {
	s, err := sink.Open(p.dir, sink.KindFetch, scope)
	if err != nil {
		return 0, "", err
	}
	defer func() { _ = s.Close() }()

	written := 0
	for _, m := range msgs {
		rec, ok := parser.Parse(m.Content)
		if !ok {
			continue
		}
		if err := s.Write(rec); err != nil {
			return written, "", err
		}
		written++
	}

	if err := s.Flush(); err != nil {
		return written, "", err
	}
	return written, s.Path(), nil
}

func (p *Pipeline) startRun(ctx context.Context, run *model.Run) {
	if p.journal == nil {
		return
	}
	if err := p.journal.CreateRun(ctx, run); err != nil {
		p.log.Error("create run", "scope", run.Scope, "error", err)
	}
}

func (p *Pipeline) finishRun(ctx context.Context, run *model.Run, runErr error) {
	if p.journal == nil || run.ID == "" {
		return
	}
	run.Status = model.RunCompleted
	if runErr != nil {
		run.Status = model.RunFailed
		run.Error = runErr.Error()
	}
	// The request context may already be cancelled.
	if err := p.journal.FinishRun(context.WithoutCancel(ctx), run); err != nil {
		p.log.Error("finish run", "run_id", run.ID, "error", err)
	}
}
