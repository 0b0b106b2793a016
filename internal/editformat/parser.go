// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package editformat parses raw model output into ordered edit blocks,
// grouped by target file path. The recognized format is the SEARCH/REPLACE
// block: a path line, then <<<<<<< SEARCH, the fragment to locate, =======,
// the replacement, >>>>>>> REPLACE.
package editformat

import (
	"fmt"
	"strings"

	"github.com/petar-djukic/patchsync/pkg/types"
)

const (
	markerSearch  = "<<<<<<< SEARCH"
	markerDivider = "======="
	markerReplace = ">>>>>>> REPLACE"
)

// ParseError describes a malformed edit block in the model output.
type ParseError struct {
	Position int    // Line number where the block starts (1-based)
	RawText  string // The raw text of the malformed block
	Message  string // What went wrong
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d: %s", e.Position, e.Message)
}

// NoEditsFoundError is returned when the output contains no edit blocks.
type NoEditsFoundError struct{}

func (e *NoEditsFoundError) Error() string {
	return "no edit blocks found in response"
}

// FileBlocks is the ordered list of edit blocks targeting one file.
type FileBlocks struct {
	Path   string
	Blocks []types.EditBlock
}

// ParseResult holds the outcome of parsing one model response.
type ParseResult struct {
	Files         []FileBlocks  // Per-file blocks, in order of first mention
	ParseErrors   []*ParseError // Errors from malformed blocks
	ReasoningText string        // Non-edit text from the response
	BlocksFound   int           // Total blocks attempted
	BlocksParsed  int           // Blocks that produced valid edits
}

// Parse extracts SEARCH/REPLACE blocks from a model response. Malformed
// blocks produce ParseErrors but do not stop the scan. When no blocks are
// found at all, a NoEditsFoundError is returned.
func Parse(response string) (*ParseResult, error) {
	if strings.TrimSpace(response) == "" {
		return nil, &NoEditsFoundError{}
	}

	result := &ParseResult{}
	fileIndex := map[string]int{}
	lines := strings.Split(response, "\n")
	var reasoning []string

	i := 0
	for i < len(lines) {
		searchIdx := nextMarker(lines, i, markerSearch)
		if searchIdx < 0 {
			reasoning = append(reasoning, lines[i:]...)
			break
		}

		// The line immediately before the SEARCH marker names the target
		// file; everything above it is reasoning text.
		pathLine := searchIdx - 1
		reasoning = append(reasoning, lines[i:max(pathLine, i)]...)

		filePath := ""
		if pathLine >= i {
			filePath = extractFilePath(lines[pathLine])
		}

		result.BlocksFound++
		i = searchIdx + 1

		searchText, next, ok := collectUntil(lines, i, markerDivider)
		if !ok {
			result.ParseErrors = append(result.ParseErrors, &ParseError{
				Position: searchIdx + 1,
				RawText:  strings.Join(lines[searchIdx:next], "\n"),
				Message:  "unclosed block: missing ======= divider",
			})
			i = next
			continue
		}
		i = next

		replaceText, next, ok := collectUntil(lines, i, markerReplace)
		if !ok {
			result.ParseErrors = append(result.ParseErrors, &ParseError{
				Position: searchIdx + 1,
				RawText:  strings.Join(lines[searchIdx:next], "\n"),
				Message:  "unclosed block: missing >>>>>>> REPLACE marker",
			})
			i = next
			continue
		}
		i = next

		// Swallow the markdown fence closing the block, if any.
		if i < len(lines) && isMarkdownFence(lines[i]) {
			i++
		}

		if filePath == "" {
			result.ParseErrors = append(result.ParseErrors, &ParseError{
				Position: searchIdx + 1,
				RawText:  strings.Join(lines[searchIdx:min(i, len(lines))], "\n"),
				Message:  "missing file path before <<<<<<< SEARCH marker",
			})
			continue
		}

		block := types.EditBlock{
			Search:  withTrailingNewline(searchText),
			Replace: withTrailingNewline(replaceText),
			Status:  types.TierPending,
		}

		idx, seen := fileIndex[filePath]
		if !seen {
			idx = len(result.Files)
			fileIndex[filePath] = idx
			result.Files = append(result.Files, FileBlocks{Path: filePath})
		}
		result.Files[idx].Blocks = append(result.Files[idx].Blocks, block)
		result.BlocksParsed++
	}

	result.ReasoningText = strings.TrimSpace(strings.Join(reasoning, "\n"))

	if result.BlocksFound == 0 {
		return nil, &NoEditsFoundError{}
	}
	return result, nil
}

// collectUntil gathers lines from start until the marker. Returns the
// gathered text, the index just past the marker (or past the input when the
// marker is missing), and whether the marker was found.
func collectUntil(lines []string, start int, marker string) (string, int, bool) {
	var collected []string
	for i := start; i < len(lines); i++ {
		if isMarker(lines[i], marker) {
			return strings.Join(collected, "\n"), i + 1, true
		}
		collected = append(collected, lines[i])
	}
	return strings.Join(collected, "\n"), len(lines), false
}

// withTrailingNewline restores the final newline the block format drops
// before its closing marker.
func withTrailingNewline(s string) string {
	if s == "" {
		return s
	}
	return s + "\n"
}

// extractFilePath cleans a candidate path line, stripping markdown fences,
// backticks, and surrounding whitespace. Lines that read like prose are not
// paths.
func extractFilePath(line string) string {
	s := strings.TrimSpace(line)
	if isMarkdownFence(s) {
		return ""
	}
	s = strings.TrimSpace(strings.Trim(s, "`"))
	if strings.ContainsAny(s, " \t") && !strings.Contains(s, "/") {
		return ""
	}
	return s
}

// nextMarker returns the index of the first line at or after start matching
// marker, or -1.
func nextMarker(lines []string, start int, marker string) int {
	for i := start; i < len(lines); i++ {
		if isMarker(lines[i], marker) {
			return i
		}
	}
	return -1
}

func isMarker(line, marker string) bool {
	return strings.TrimSpace(line) == marker
}

func isMarkdownFence(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "```")
}
