// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package types

import "encoding/json"

// DiffOp classifies a single line in a positional comparison between a local
// and a remote version of a document.
type DiffOp int

const (
	DiffUnchanged DiffOp = iota // Line present on both sides and equal
	DiffAdded                   // Line present only on the local side
	DiffRemoved                 // Line present only on the remote side
	DiffModified                // Line present on both sides but differing
)

func (op DiffOp) String() string {
	switch op {
	case DiffUnchanged:
		return "unchanged"
	case DiffAdded:
		return "added"
	case DiffRemoved:
		return "removed"
	case DiffModified:
		return "modified"
	default:
		return "unknown"
	}
}

// MarshalJSON renders the op as its string name.
func (op DiffOp) MarshalJSON() ([]byte, error) {
	return json.Marshal(op.String())
}

// DiffLine is one line of a positional diff. Line numbers are 1-based.
// For DiffAdded only Local is set; for DiffRemoved only Remote; for
// DiffModified both carry their respective text.
type DiffLine struct {
	Line   int    `json:"line"`
	Op     DiffOp `json:"op"`
	Local  string `json:"local,omitempty"`
	Remote string `json:"remote,omitempty"`
}
