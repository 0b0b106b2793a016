// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package diffview builds a positional, line-indexed comparison between a
// local and a remote version of a document for conflict display. It compares
// by line index, not by content alignment, so shifted line counts can show
// up as runs of modified lines; it is never used to compute merge results.
package diffview

import (
	"strings"

	"github.com/petar-djukic/patchsync/pkg/types"
)

// Build compares local and remote line by line. Returns the diff and the
// ordered 1-based numbers of the modified lines.
func Build(local, remote string) ([]types.DiffLine, []int) {
	localLines := strings.Split(local, "\n")
	remoteLines := strings.Split(remote, "\n")

	n := len(localLines)
	if len(remoteLines) > n {
		n = len(remoteLines)
	}

	diff := make([]types.DiffLine, 0, n)
	var conflicted []int

	for i := 0; i < n; i++ {
		line := types.DiffLine{Line: i + 1}
		switch {
		case i >= len(remoteLines):
			line.Op = types.DiffAdded
			line.Local = localLines[i]
		case i >= len(localLines):
			line.Op = types.DiffRemoved
			line.Remote = remoteLines[i]
		case localLines[i] == remoteLines[i]:
			line.Op = types.DiffUnchanged
			line.Local = localLines[i]
			line.Remote = remoteLines[i]
		default:
			line.Op = types.DiffModified
			line.Local = localLines[i]
			line.Remote = remoteLines[i]
			conflicted = append(conflicted, i+1)
		}
		diff = append(diff, line)
	}

	return diff, conflicted
}
