// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package report renders per-block apply outcomes for user display. The
// outcome of an apply call is always presented block by block, never
// collapsed to a single boolean.
package report

import (
	"fmt"
	"strings"

	"github.com/petar-djukic/patchsync/internal/editor"
	"github.com/petar-djukic/patchsync/pkg/types"
)

// Format produces a human-readable report for one apply call: a summary
// line, then one line per block naming the tier that matched it or, for
// failed blocks, the closest candidate region in the document.
func Format(path string, result *types.ApplyResult, document string) string {
	var buf strings.Builder

	total := len(result.Blocks)
	fmt.Fprintf(&buf, "%s: applied %d of %d blocks\n", path, result.Applied, total)

	for i, block := range result.Blocks {
		if block.Status == types.TierNotFound {
			fmt.Fprintf(&buf, "  block %d of %d: not found (%s)\n",
				i+1, total, editor.Diagnose(document, block.Search))
			continue
		}
		fmt.Fprintf(&buf, "  block %d of %d: matched via %s\n", i+1, total, block.Status)
	}

	if len(result.Failed) > 0 {
		fmt.Fprintf(&buf, "  failed blocks: %s\n", joinInts(result.Failed))
	}

	return buf.String()
}

func joinInts(nums []int) string {
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = fmt.Sprintf("%d", n)
	}
	return strings.Join(parts, ", ")
}
