// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package types defines the shared domain types for patchsync: edit blocks,
// match tiers, apply results, diff lines, and the versioned store contract.
package types

import "encoding/json"

// EditBlock is a single search/replace instruction extracted from model
// output. Blocks are ordered; callers must supply them top-to-bottom of the
// document with non-overlapping spans.
type EditBlock struct {
	Search  string    `json:"search"`  // Text to locate (blank means append to end of document)
	Replace string    `json:"replace"` // Replacement text
	Status  MatchTier `json:"status"`  // Stamped by the applicator; TierPending until applied
}

// MatchTier identifies which matching strategy located a block, in
// decreasing strictness.
type MatchTier int

const (
	TierPending    MatchTier = iota // Not yet applied
	TierExact                       // Byte-for-byte substring match
	TierNormalized                  // Match after per-line trailing-whitespace trim
	TierFuzzy                       // First/last non-blank line anchor match
	TierLineRange                   // Three-anchor line-range match
	TierNotFound                    // No tier located the fragment
)

func (t MatchTier) String() string {
	switch t {
	case TierPending:
		return "pending"
	case TierExact:
		return "exact"
	case TierNormalized:
		return "normalized"
	case TierFuzzy:
		return "fuzzy"
	case TierLineRange:
		return "line_range"
	case TierNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// MarshalJSON renders the tier as its string name.
func (t MatchTier) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// ApplyResult describes the outcome of applying an ordered list of edit
// blocks to one document. Partial application is a valid outcome, not a
// failure: Failed lists the 1-based numbers of blocks no tier could locate.
type ApplyResult struct {
	NewContent string      `json:"-"`                // Document after all locatable blocks were applied
	Blocks     []EditBlock `json:"blocks"`           // Input blocks with final Status stamped, in order
	Failed     []int       `json:"failed,omitempty"` // 1-based numbers of blocks with TierNotFound
	Applied    int         `json:"applied"`          // Count of blocks with Status != TierNotFound
	NotFound   int         `json:"not_found"`        // Count of blocks with TierNotFound
}

// Changed reports whether applying the blocks altered the document.
func (r *ApplyResult) Changed(original string) bool {
	return r.NewContent != original
}
