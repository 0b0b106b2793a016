// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package patchsync is the public interface for applying model-generated
// search/replace edits to files in a versioned store and saving the results
// under optimistic concurrency.
package patchsync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/petar-djukic/patchsync/internal/editformat"
	"github.com/petar-djukic/patchsync/internal/editor"
	"github.com/petar-djukic/patchsync/internal/report"
	"github.com/petar-djukic/patchsync/internal/resolver"
	"github.com/petar-djukic/patchsync/pkg/types"
)

// Error types for the patchsync API.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrParseFailure  = errors.New("failed to parse model response into edits")
)

// Config configures a Client.
type Config struct {
	Store       types.Store   // Versioned store backend (required)
	Ref         string        // Branch or revision to read and write (store-defined default when empty)
	MaxAttempts int           // Write attempt cap per save (default 3)
	RetryDelay  time.Duration // Fixed delay floor between retries (default 500ms)
}

// Strategy names a conflict resolution strategy.
type Strategy string

const (
	KeepMine   Strategy = "mine"   // Overwrite remote with local content
	KeepTheirs Strategy = "theirs" // Discard local changes, adopt remote
	Merge      Strategy = "merge"  // Write caller-reconciled content
	SaveAsCopy Strategy = "copy"   // Save local content to a conflict copy path
)

// FileEdit is one file's worth of parsed edit blocks plus the save message.
type FileEdit struct {
	Path    string
	Blocks  []types.EditBlock
	Message string
}

// RunResult is the outcome of applying and saving one file's edits.
type RunResult struct {
	Path    string                 `json:"path"`
	Apply   *types.ApplyResult     `json:"apply"`
	Outcome *types.ConflictOutcome `json:"outcome"`
	Report  string                 `json:"report"`
}

// RunSummary is the outcome of processing a whole model response.
type RunSummary struct {
	Results     []RunResult `json:"results"`
	ParseErrors []string    `json:"parse_errors,omitempty"`
	Reasoning   string      `json:"reasoning,omitempty"`
}

// Client applies edits against one store. Safe for concurrent use across
// different paths; saves to the same path must stay sequential.
type Client struct {
	store types.Store
	ref   string
	res   *resolver.Resolver
}

// Run fetches the file, validates and applies the blocks, and saves the
// result with the token the content was read at. A version conflict comes
// back as a Conflict outcome for the caller to resolve via Resolve. Blocks
// with overlapping spans fail fast with types.ErrInvalidInput.
func (c *Client) Run(ctx context.Context, edit FileEdit) (*RunResult, error) {
	rev, err := c.store.GetContent(ctx, edit.Path, c.ref)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", edit.Path, err)
	}

	if err := editor.ValidateBlocks(rev.Content, edit.Blocks); err != nil {
		return nil, err
	}

	applied := editor.Apply(rev.Content, edit.Blocks)
	result := &RunResult{
		Path:   edit.Path,
		Apply:  applied,
		Report: report.Format(edit.Path, applied, rev.Content),
	}

	if !applied.Changed(rev.Content) {
		result.Outcome = types.SuccessOutcome(rev.Version, fmt.Sprintf("no changes for %s", edit.Path))
		return result, nil
	}

	result.Outcome = c.res.Save(ctx, resolver.SaveRequest{
		Path:        edit.Path,
		Content:     applied.NewContent,
		BaseVersion: rev.Version,
		Ref:         c.ref,
		Message:     edit.Message,
	})
	return result, nil
}

// RunAll runs the edits concurrently, one goroutine per file. Paths must be
// distinct; saves within a path remain sequential by construction. A failure
// on one file never discards its siblings: every file gets a RunResult, and a
// file whose Run errored carries that error as an OutcomeError. Saves that
// reached the store are always reported.
func (c *Client) RunAll(ctx context.Context, edits []FileEdit) ([]RunResult, error) {
	results := make([]RunResult, len(edits))

	var g errgroup.Group
	for i, edit := range edits {
		i, edit := i, edit
		g.Go(func() error {
			r, err := c.Run(ctx, edit)
			if err != nil {
				results[i] = RunResult{Path: edit.Path, Outcome: types.ErrorOutcome(err)}
				return nil
			}
			results[i] = *r
			return nil
		})
	}
	g.Wait()
	return results, nil
}

// RunResponse parses a raw model response and runs every file it edits.
// Returns ErrParseFailure when the response contains no edit blocks.
func (c *Client) RunResponse(ctx context.Context, response, message string) (*RunSummary, error) {
	parsed, err := editformat.Parse(response)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailure, err)
	}

	summary := &RunSummary{Reasoning: parsed.ReasoningText}
	for _, pe := range parsed.ParseErrors {
		summary.ParseErrors = append(summary.ParseErrors, pe.Error())
	}

	edits := make([]FileEdit, len(parsed.Files))
	for i, f := range parsed.Files {
		edits[i] = FileEdit{Path: f.Path, Blocks: f.Blocks, Message: message}
	}

	results, err := c.RunAll(ctx, edits)
	if err != nil {
		return summary, err
	}
	summary.Results = results
	return summary, nil
}

// ResolveOptions carries strategy-specific inputs for Resolve.
type ResolveOptions struct {
	Message string
	Merged  string // Reconciled content, required by Merge
}

// Resolve applies the named strategy to a conflict returned by Run.
func (c *Client) Resolve(ctx context.Context, conflict *types.ConflictInfo, strategy Strategy, opts ResolveOptions) *types.ConflictOutcome {
	return c.res.Resolve(ctx, conflict, resolver.Strategy(strategy), resolver.ResolveOptions{
		Ref:     c.ref,
		Message: opts.Message,
		Merged:  opts.Merged,
	})
}
