// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package resolver performs optimistic-concurrency saves against a versioned
// store, detects write conflicts, and applies caller-chosen resolution
// strategies with bounded, rate-limited retry. Version conflicts are the
// only retried condition; any other store failure surfaces immediately.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/petar-djukic/patchsync/internal/diffview"
	"github.com/petar-djukic/patchsync/pkg/types"
)

const (
	defaultMaxAttempts = 3
	defaultRetryDelay  = 500 * time.Millisecond
)

// Config configures a Resolver.
type Config struct {
	Store       types.Store   // Versioned store (required)
	MaxAttempts int           // Hard cap on write attempts per call (default 3)
	RetryDelay  time.Duration // Fixed floor between attempts (default 500ms)
}

// Resolver wraps a store with conflict-aware save semantics. It owns no
// background state; every call carries its own attempt count and token.
type Resolver struct {
	store       types.Store
	maxAttempts int
	retryDelay  time.Duration

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New validates the config and returns a ready Resolver.
func New(cfg Config) (*Resolver, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("%w: Store is required", types.ErrInvalidInput)
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = defaultRetryDelay
	}
	return &Resolver{
		store:       cfg.Store,
		maxAttempts: cfg.MaxAttempts,
		retryDelay:  cfg.RetryDelay,
		now:         time.Now,
		sleep:       sleepCtx,
	}, nil
}

// SaveRequest describes one optimistic save.
type SaveRequest struct {
	Path        string
	Content     string
	BaseVersion types.VersionToken // Token of the state the edit was based on
	Ref         string
	Message     string
}

// Save attempts a token-checked write. On success it returns the new token.
// The first version conflict always yields to caller judgment: the remote
// content is fetched and returned as a Conflict outcome carrying a
// positional diff and the remote's current token. Any other store error
// returns immediately with no retry.
func (r *Resolver) Save(ctx context.Context, req SaveRequest) *types.ConflictOutcome {
	token, err := r.store.Write(ctx, types.WriteRequest{
		Path:    req.Path,
		Content: req.Content,
		Version: req.BaseVersion,
		Ref:     req.Ref,
		Message: req.Message,
	})
	if err == nil {
		return types.SuccessOutcome(token, fmt.Sprintf("saved %s", req.Path))
	}
	if !errors.Is(err, types.ErrVersionConflict) {
		return types.ErrorOutcome(fmt.Errorf("writing %s: %w", req.Path, err))
	}

	remote, gerr := r.store.GetContent(ctx, req.Path, req.Ref)
	if gerr != nil {
		return types.ErrorOutcome(fmt.Errorf("fetching remote %s after conflict: %w", req.Path, gerr))
	}

	diff, conflicted := diffview.Build(req.Content, remote.Content)
	return types.ConflictOutcomeOf(&types.ConflictInfo{
		Path:            req.Path,
		LocalContent:    req.Content,
		RemoteContent:   remote.Content,
		RemoteVersion:   remote.Version,
		Diff:            diff,
		ConflictedLines: conflicted,
	})
}

// KeepMine writes the local content using the remote's current token. A
// renewed conflict is retried with a refetched token, up to the attempt cap.
func (r *Resolver) KeepMine(ctx context.Context, c *types.ConflictInfo, ref, message string) *types.ConflictOutcome {
	return r.writeWithRetry(ctx, c.Path, c.LocalContent, c.RemoteVersion, ref, message)
}

// KeepTheirs performs no write: it returns a Success carrying the remote's
// token, signaling the caller to discard local changes and adopt the remote
// content.
func (r *Resolver) KeepTheirs(c *types.ConflictInfo) *types.ConflictOutcome {
	return types.SuccessOutcome(c.RemoteVersion, fmt.Sprintf("kept remote content for %s", c.Path))
}

// MergeManual writes caller-reconciled content using the remote's current
// token, with the same retry discipline as KeepMine.
func (r *Resolver) MergeManual(ctx context.Context, c *types.ConflictInfo, merged, ref, message string) *types.ConflictOutcome {
	return r.writeWithRetry(ctx, c.Path, merged, c.RemoteVersion, ref, message)
}

// SaveAsCopy writes the local content to a timestamped sibling path with no
// version token. The path is fresh, so the write cannot conflict.
func (r *Resolver) SaveAsCopy(ctx context.Context, c *types.ConflictInfo, ref, message string) *types.ConflictOutcome {
	copyPath := CopyPath(c.Path, r.now())
	token, err := r.store.Write(ctx, types.WriteRequest{
		Path:    copyPath,
		Content: c.LocalContent,
		Ref:     ref,
		Message: message,
	})
	if err != nil {
		return types.ErrorOutcome(fmt.Errorf("writing conflict copy %s: %w", copyPath, err))
	}
	return types.SuccessOutcome(token, fmt.Sprintf("saved conflict copy %s", copyPath))
}

// writeWithRetry is the bounded write loop shared by the strategies that
// touch the remote. It carries (attempt, token) forward explicitly: a
// recurring conflict with attempts remaining waits the fixed delay floor,
// refetches the remote token, and retries the same write. Exceeding the cap
// returns an Error wrapping ErrRetryExhausted.
func (r *Resolver) writeWithRetry(ctx context.Context, path, content string, token types.VersionToken, ref, message string) *types.ConflictOutcome {
	for attempt, tok := 1, token; ; attempt++ {
		newToken, err := r.store.Write(ctx, types.WriteRequest{
			Path:    path,
			Content: content,
			Version: tok,
			Ref:     ref,
			Message: message,
		})
		if err == nil {
			return types.SuccessOutcome(newToken, fmt.Sprintf("saved %s", path))
		}
		if !errors.Is(err, types.ErrVersionConflict) {
			return types.ErrorOutcome(fmt.Errorf("writing %s: %w", path, err))
		}
		if attempt >= r.maxAttempts {
			return types.ErrorOutcome(fmt.Errorf("%w: version conflict persisted after %d attempts on %s",
				types.ErrRetryExhausted, r.maxAttempts, path))
		}

		if err := r.sleep(ctx, r.retryDelay); err != nil {
			return types.ErrorOutcome(fmt.Errorf("save aborted: %w", err))
		}
		remote, gerr := r.store.GetContent(ctx, path, ref)
		if gerr != nil {
			return types.ErrorOutcome(fmt.Errorf("refetching token for %s: %w", path, gerr))
		}
		tok = remote.Version
	}
}

// sleepCtx waits for d or until ctx is done, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
