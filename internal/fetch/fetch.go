// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package fetch walks a channel's message history backward in time.
//
// The fetcher drains the paged messages endpoint newest-first, retrying
// transient failures with exponential backoff, honoring rate-limit waits,
// pacing itself between pages, and reporting progress after every page.
// The accumulated history is returned in chronological order.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/morganforge/chanmark/internal/api"
	"github.com/morganforge/chanmark/internal/debuglog"
	"github.com/morganforge/chanmark/internal/model"
	"github.com/morganforge/chanmark/internal/snowflake"
)

// Paging constants.
const (
	// BatchSize is the page size requested from the messages endpoint.
	// A short page signals the channel is exhausted.
	BatchSize = 100

	// MaxRetries is the attempt cap per page for transient failures.
	// Rate-limit waits do not count against it.
	MaxRetries = 3

	// DefaultBatchDelay is the default pacing interval between pages.
	DefaultBatchDelay = 600 * time.Millisecond

	// backoffBase is the base delay for exponential backoff between
	// transient-failure attempts: 1s, 2s, 4s.
	backoffBase = time.Second
)

// ErrPermissionDenied is the terminal failure for a channel the token
// cannot read. Non-retryable.
var ErrPermissionDenied = errors.New("Missing permissions to read this channel.")

// =============================================================================
// PROGRESS
// =============================================================================

// Progress is a snapshot of fetch state, emitted after every page and
// once at terminal state.
type Progress struct {
	// Fetched is the number of messages accumulated so far.
	Fetched int

	// Done is true only on the terminal snapshot.
	Done bool

	// Err carries the failure message on a failed terminal snapshot.
	Err string
}

// ProgressFunc receives progress snapshots. It is invoked synchronously
// from the fetch loop and must be cheap and non-blocking.
type ProgressFunc func(Progress)

// =============================================================================
// ABORT HANDLE
// =============================================================================

// Abort is a cooperative cancellation handle shared between the caller
// and the fetch loop. It is set at most once and never reset. The fetch
// loop polls it before each page request and after each response; an
// in-flight request is never interrupted, so at most one extra page
// round-trip may complete after Set.
type Abort struct {
	done chan struct{}
}

// NewAbort creates an unset abort handle.
func NewAbort() *Abort {
	return &Abort{done: make(chan struct{})}
}

// Set requests cancellation. Safe to call more than once.
func (a *Abort) Set() {
	select {
	case <-a.done:
	default:
		close(a.done)
	}
}

// Aborted reports whether cancellation was requested.
func (a *Abort) Aborted() bool {
	if a == nil {
		return false
	}
	select {
	case <-a.done:
		return true
	default:
		return false
	}
}

// Done returns a channel closed when cancellation is requested, for use
// in select-based waits.
func (a *Abort) Done() <-chan struct{} {
	if a == nil {
		return nil
	}
	return a.done
}

// =============================================================================
// FETCHER
// =============================================================================

// PageSource supplies one page of messages, newest first. *api.Client
// satisfies it.
type PageSource interface {
	Messages(ctx context.Context, channelID string, limit int, beforeID string) ([]model.Message, error)
}

// Options configures one fetch run.
type Options struct {
	// BeforeID is the initial cursor: only messages strictly older are
	// fetched. Empty means start from the most recent message.
	BeforeID string

	// AfterID is an exclusive lower boundary: paging stops once a
	// message at or before this id is seen, and no such message is
	// returned. Empty means no lower bound.
	AfterID string

	// BatchDelay is the pacing interval between page requests.
	// Zero selects DefaultBatchDelay.
	BatchDelay time.Duration

	// OnProgress, when set, receives one snapshot per page plus one
	// terminal snapshot.
	OnProgress ProgressFunc

	// Limiter, when set, replaces the BatchDelay-derived pacing
	// limiter. The caller keeps the handle and may retune the rate
	// mid-run via SetLimit.
	Limiter *rate.Limiter

	// Abort, when set, is the cooperative cancellation handle.
	Abort *Abort

	// Log, when set, receives troubleshooting entries. Best effort.
	Log *debuglog.Logger
}

// Fetcher retrieves complete channel histories from a page source.
type Fetcher struct {
	src PageSource
}

// New creates a fetcher reading from src.
func New(src PageSource) *Fetcher {
	return &Fetcher{src: src}
}

// FetchAll drains channelID until exhaustion, boundary, or cancellation
// and returns the messages in strictly ascending id order.
//
// Cancellation via opts.Abort is not an error: the messages accumulated
// so far are returned and the caller distinguishes the cancelled outcome
// through its own handle. All fetch-time failures return a nil slice and
// a single terminal error with a human-readable message.
func (f *Fetcher) FetchAll(ctx context.Context, channelID string, opts Options) ([]model.Message, error) {
	delay := opts.BatchDelay
	if delay <= 0 {
		delay = DefaultBatchDelay
	}

	// Burst 1 makes the first page immediate and spaces every
	// subsequent page request one delay apart.
	limiter := opts.Limiter
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Every(delay), 1)
	}

	var all []model.Message
	cursor := opts.BeforeID
	hasMore := true

	opts.Log.Info("fetch started", map[string]string{
		"channelId": channelID,
		"beforeId":  orNone(opts.BeforeID),
		"afterId":   orNone(opts.AfterID),
		"delay":     delay.String(),
	})

	for hasMore && !opts.Abort.Aborted() {
		// Pacing between pages. The reservation is abort-aware so a
		// cancel during the delay is observed before the next request.
		if err := f.pace(ctx, limiter, opts.Abort); err != nil {
			return nil, err
		}
		if opts.Abort.Aborted() {
			break
		}

		batch, err := f.fetchBatch(ctx, channelID, cursor, opts)
		if err != nil {
			opts.Log.Error("fetch failed", map[string]string{"error": err.Error()})
			return nil, err
		}

		if opts.Abort.Aborted() || len(batch) == 0 {
			break
		}

		// Boundary scan: pages arrive newest-first, so the first
		// message at or before AfterID marks the end of the window.
		reached := false
		kept := batch
		if opts.AfterID != "" {
			for i, msg := range batch {
				if snowflake.Compare(msg.ID, opts.AfterID) <= 0 {
					kept = batch[:i]
					reached = true
					break
				}
			}
		}
		all = append(all, kept...)

		// Cursor advances to the oldest message of the unfiltered page.
		cursor = batch[len(batch)-1].ID

		if reached || len(batch) < BatchSize {
			hasMore = false
		}

		opts.emit(Progress{Fetched: len(all)})
		opts.Log.Debug("page fetched", map[string]int{"page": len(batch), "total": len(all)})
	}

	// Pages were accumulated newest-first; flip to chronological order.
	reverse(all)

	opts.emit(Progress{Fetched: len(all), Done: true})
	opts.Log.Info("fetch finished", map[string]any{
		"total":   len(all),
		"aborted": opts.Abort.Aborted(),
	})
	return all, nil
}

// fetchBatch requests one page, retrying per the page-level policy:
// rate limits wait the server-indicated interval without consuming an
// attempt, permission errors fail immediately, and anything else retries
// with exponential backoff until the attempt cap. An abort observed
// while waiting or about to attempt yields an empty page and no error.
func (f *Fetcher) fetchBatch(ctx context.Context, channelID, beforeID string, opts Options) ([]model.Message, error) {
	attempt := 0
	for attempt < MaxRetries {
		if opts.Abort.Aborted() {
			return nil, nil
		}

		batch, err := f.src.Messages(ctx, channelID, BatchSize, beforeID)
		if err == nil {
			return batch, nil
		}

		var rl *api.RateLimitError
		switch {
		case errors.As(err, &rl):
			// Not counted toward the attempt cap; a persistently
			// rate-limited page is waited out indefinitely.
			opts.Log.Warn("rate limited", map[string]string{"retryAfter": rl.RetryAfter.String()})
			if stop := sleep(ctx, rl.RetryAfter, opts.Abort); stop != nil {
				return stop.page, stop.err
			}

		case errors.Is(err, api.ErrForbidden):
			return nil, ErrPermissionDenied

		default:
			attempt++
			if attempt == MaxRetries {
				return nil, fmt.Errorf("failed to fetch messages after %d attempts: %w", MaxRetries, err)
			}
			backoff := backoffBase << (attempt - 1)
			opts.Log.Warn("transient fetch error", map[string]string{
				"error":   err.Error(),
				"backoff": backoff.String(),
			})
			if stop := sleep(ctx, backoff, opts.Abort); stop != nil {
				return stop.page, stop.err
			}
		}
	}
	return nil, nil
}

// pace blocks until the limiter permits the next page request, waking
// early on abort or context cancellation.
func (f *Fetcher) pace(ctx context.Context, limiter *rate.Limiter, abort *Abort) error {
	r := limiter.Reserve()
	d := r.Delay()
	if d == 0 {
		return nil
	}
	if stop := sleep(ctx, d, abort); stop != nil {
		r.Cancel()
		return stop.err
	}
	return nil
}

// stopSleep signals an interrupted wait: an abort yields an empty page
// with no error, a dead context yields its error.
type stopSleep struct {
	page []model.Message
	err  error
}

// sleep waits for d, returning nil if the full wait elapsed.
func sleep(ctx context.Context, d time.Duration, abort *Abort) *stopSleep {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-abort.Done():
		return &stopSleep{}
	case <-ctx.Done():
		return &stopSleep{err: ctx.Err()}
	}
}

// emit delivers a progress snapshot when a sink is configured.
func (o *Options) emit(p Progress) {
	if o.OnProgress != nil {
		o.OnProgress(p)
	}
}

// reverse flips a message slice in place.
func reverse(msgs []model.Message) {
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
