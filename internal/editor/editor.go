// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package editor locates model-produced search fragments in a document that
// may have drifted from what the model saw, and applies the replacements.
// Four matching tiers are tried in decreasing strictness: exact substring,
// trailing-whitespace-normalized, first/last-line fuzzy anchor, and
// three-point line-range anchor.
package editor

import (
	"fmt"
	"strings"

	"github.com/petar-djukic/patchsync/pkg/types"
)

// Apply runs the blocks strictly in input order against a single running
// copy of document: later blocks see the effects of earlier ones. Each block
// is stripped of line-number anchors, matched through the tiers, and spliced
// in; a block no tier can locate is stamped TierNotFound and changes
// nothing. Unmatched content never fails the call: the result reports the
// per-block outcome and 1-based numbers of the failed blocks.
func Apply(document string, blocks []types.EditBlock) *types.ApplyResult {
	result := &types.ApplyResult{
		Blocks: make([]types.EditBlock, len(blocks)),
	}
	copy(result.Blocks, blocks)

	doc := document
	for i := range result.Blocks {
		block := &result.Blocks[i]
		search := StripLineNumbers(block.Search)
		replace := StripLineNumbers(block.Replace)

		// Blank search is the insertion shortcut: append to the end of the
		// document, never a lookup failure.
		if strings.TrimSpace(search) == "" {
			doc += replace
			block.Status = types.TierExact
			result.Applied++
			continue
		}

		m := findMatch(doc, search)
		if m == nil {
			block.Status = types.TierNotFound
			result.NotFound++
			result.Failed = append(result.Failed, i+1)
			continue
		}

		doc = splice(doc, m, replace)
		block.Status = m.tier
		result.Applied++
	}

	result.NewContent = doc
	return result
}

// splice replaces the matched span with replacement. Exact matches splice by
// byte offset; line-tier matches replace the matched lines wholesale, which
// keeps every byte outside the span untouched.
func splice(document string, m *matchResult, replacement string) string {
	if m.byteSpan {
		return document[:m.start] + replacement + document[m.end:]
	}

	lines := strings.Split(document, "\n")
	repl := splitFragment(replacement)

	out := make([]string, 0, len(lines)-(m.toLine-m.fromLine+1)+len(repl))
	out = append(out, lines[:m.fromLine]...)
	out = append(out, repl...)
	out = append(out, lines[m.toLine+1:]...)
	return strings.Join(out, "\n")
}

// ValidateBlocks checks the caller contract that blocks describe
// non-overlapping spans. Every block is located against the original,
// unmodified document; two blocks resolving to overlapping line spans make
// the input invalid, and application order would be undefined. Overlap is
// judged at whole-line granularity, so two byte-disjoint matches inside the
// same line still count as overlapping. Blocks that do not match at all are
// skipped here, surfacing as TierNotFound in Apply rather than as a contract
// violation.
func ValidateBlocks(document string, blocks []types.EditBlock) error {
	type located struct {
		block    int // 1-based
		from, to int
	}

	var spans []located
	for i, b := range blocks {
		search := StripLineNumbers(b.Search)
		if strings.TrimSpace(search) == "" {
			continue
		}
		m := findMatch(document, search)
		if m == nil {
			continue
		}
		from, to := m.lineSpan(document)
		spans = append(spans, located{block: i + 1, from: from, to: to})
	}

	for i := 0; i < len(spans); i++ {
		for j := i + 1; j < len(spans); j++ {
			a, b := spans[i], spans[j]
			if a.from <= b.to && b.from <= a.to {
				return fmt.Errorf("%w: blocks %d and %d overlap (lines %d-%d and %d-%d)",
					types.ErrInvalidInput, a.block, b.block, a.from+1, a.to+1, b.from+1, b.to+1)
			}
		}
	}
	return nil
}

// Diagnose explains why no tier matched a search fragment, locating the
// closest window in the document for the per-block report.
func Diagnose(document, search string) string {
	closest, sim, from, to := findClosestMatch(document, StripLineNumbers(search))
	if closest == "" {
		return "no similar text found"
	}
	return fmt.Sprintf("closest match at lines %d-%d (similarity %.2f)", from, to, sim)
}
