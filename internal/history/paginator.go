// Package history walks a channel's message history forward from an anchor.
package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/snowflake"
	"golang.org/x/time/rate"

	"ordercsv/internal/model"
)

// PageSize is the largest page the chat platform returns.
const PageSize = 100

// DefaultDelay is the pause between page requests.
const DefaultDelay = 1 * time.Second

// ErrStalled is returned when a full page does not move the anchor.
var ErrStalled = errors.New("pagination stalled")

// Source returns up to limit messages after afterID in a channel.
type Source interface {
	MessagesAfter(ctx context.Context, channelID, afterID string, limit int) ([]model.Message, error)
}

// Paginator collects every message after an anchor, one page at a time.
type Paginator struct {
	src   Source
	delay time.Duration
	log   *slog.Logger
}

// New creates a Paginator that waits delay between page requests.
// A zero delay disables the wait.
func New(src Source, delay time.Duration, log *slog.Logger) *Paginator {
	return &Paginator{src: src, delay: delay, log: log}
}

// ParseAnchor validates a message id supplied by a user.
func ParseAnchor(s string) (string, error) {
	id, err := snowflake.ParseString(s)
	if err != nil || id <= 0 {
		return "", fmt.Errorf("invalid message id %q", s)
	}
	return id.String(), nil
}

// Collect returns all messages strictly after anchor, in the order the
// source returned them. The first message of each full page becomes the
// next anchor, and the next request waits the delay measured from the
// arrival of that page. On error or cancellation nothing is returned.
func (p *Paginator) Collect(ctx context.Context, channelID, anchor string) ([]model.Message, error) {
	var out []model.Message
	for page := 1; ; page++ {
		msgs, err := p.src.MessagesAfter(ctx, channelID, anchor, PageSize)
		if err != nil {
			return nil, fmt.Errorf("fetch messages after %s: %w", anchor, err)
		}
		out = append(out, msgs...)

		p.log.Debug("fetched page", "channel_id", channelID, "page", page, "count", len(msgs), "total", len(out))

		if len(msgs) < PageSize {
			return out, nil
		}

		next := msgs[0].ID
		if next == anchor {
			return nil, fmt.Errorf("%w at message %s", ErrStalled, anchor)
		}
		anchor = next

		if err := p.pause(ctx, time.Now()); err != nil {
			return nil, fmt.Errorf("wait for page %d: %w", page+1, err)
		}
	}
}

// pause blocks until delay has passed since arrived, or ctx is done.
func (p *Paginator) pause(ctx context.Context, arrived time.Time) error {
	if p.delay <= 0 {
		return ctx.Err()
	}
	// Drained at arrival, the limiter's next token is exactly one delay away.
	limiter := rate.NewLimiter(rate.Every(p.delay), 1)
	limiter.AllowN(arrived, 1)
	return limiter.Wait(ctx)
}
