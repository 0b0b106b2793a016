// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package resolver

import (
	"context"
	"fmt"

	"github.com/petar-djukic/patchsync/pkg/types"
)

// Strategy names a conflict resolution strategy.
type Strategy string

const (
	StrategyKeepMine   Strategy = "mine"   // Overwrite remote with local content
	StrategyKeepTheirs Strategy = "theirs" // Discard local changes, adopt remote
	StrategyMerge      Strategy = "merge"  // Write caller-reconciled content
	StrategyCopy       Strategy = "copy"   // Save local content to a conflict copy path
)

// ResolveOptions carries the strategy-specific inputs.
type ResolveOptions struct {
	Ref     string
	Message string
	Merged  string // Reconciled content, required by StrategyMerge
}

// Resolve dispatches a detected conflict to the named strategy.
func (r *Resolver) Resolve(ctx context.Context, c *types.ConflictInfo, strategy Strategy, opts ResolveOptions) *types.ConflictOutcome {
	if c == nil {
		return types.ErrorOutcome(fmt.Errorf("%w: nil conflict", types.ErrInvalidInput))
	}
	switch strategy {
	case StrategyKeepMine:
		return r.KeepMine(ctx, c, opts.Ref, opts.Message)
	case StrategyKeepTheirs:
		return r.KeepTheirs(c)
	case StrategyMerge:
		if opts.Merged == "" {
			return types.ErrorOutcome(fmt.Errorf("%w: merge strategy requires reconciled content", types.ErrInvalidInput))
		}
		return r.MergeManual(ctx, c, opts.Merged, opts.Ref, opts.Message)
	case StrategyCopy:
		return r.SaveAsCopy(ctx, c, opts.Ref, opts.Message)
	default:
		return types.ErrorOutcome(fmt.Errorf("%w: unknown strategy %q", types.ErrInvalidInput, strategy))
	}
}
