// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package editor

import (
	"strings"

	"github.com/petar-djukic/patchsync/pkg/types"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// matchResult holds the outcome of a single match attempt. Exact matches
// carry a byte span; the looser tiers carry an inclusive 0-based line range.
type matchResult struct {
	tier     types.MatchTier
	byteSpan bool
	start    int // Byte offset of the match start (byteSpan only)
	end      int // Byte offset just past the match (byteSpan only)
	fromLine int // First matched line (line tiers)
	toLine   int // Last matched line, inclusive (line tiers)
}

// findMatch runs the four matching tiers in order of decreasing strictness
// against document, returning the first successful match. Returns nil when
// no tier locates the fragment.
func findMatch(document, search string) *matchResult {
	if m := exactMatch(document, search); m != nil {
		return m
	}
	if m := normalizedMatch(document, search); m != nil {
		return m
	}
	if m := fuzzyAnchorMatch(document, search); m != nil {
		return m
	}
	return lineRangeMatch(document, search)
}

// exactMatch attempts a byte-for-byte substring match, first occurrence only.
func exactMatch(document, search string) *matchResult {
	idx := strings.Index(document, search)
	if idx < 0 {
		return nil
	}
	return &matchResult{
		tier:     types.TierExact,
		byteSpan: true,
		start:    idx,
		end:      idx + len(search),
	}
}

// normalizedMatch trims trailing whitespace from every line of both document
// and search, locates the trimmed search inside the trimmed document, and
// maps the hit back onto the original lines. The hit must start at a line
// boundary; the untrimmed text outside the span is left untouched by the
// later splice.
func normalizedMatch(document, search string) *matchResult {
	searchLines := splitFragment(TrimTrailing(search))
	if len(searchLines) == 0 {
		return nil
	}

	docLines := strings.Split(document, "\n")
	trimmedDocLines := make([]string, len(docLines))
	for i, line := range docLines {
		trimmedDocLines[i] = strings.TrimRight(line, " \t\r")
	}

	trimmedDoc := strings.Join(trimmedDocLines, "\n")
	trimmedSearch := strings.Join(searchLines, "\n")

	idx := strings.Index(trimmedDoc, trimmedSearch)
	if idx < 0 {
		return nil
	}

	// Resolve the byte index to a line start in the trimmed document.
	fromLine, offset := -1, 0
	for i, line := range trimmedDocLines {
		if offset == idx {
			fromLine = i
			break
		}
		if offset > idx {
			break
		}
		offset += len(line) + 1
	}
	if fromLine < 0 {
		return nil
	}

	toLine := fromLine + len(searchLines) - 1
	if toLine >= len(docLines) {
		return nil
	}
	// Interior lines match exactly by construction; the final line could be
	// a mere prefix of the document line, which is not a line match.
	if trimmedDocLines[toLine] != searchLines[len(searchLines)-1] {
		return nil
	}

	return &matchResult{tier: types.TierNormalized, fromLine: fromLine, toLine: toLine}
}

// Tolerance band for the fuzzy anchor tier: the matched span may contain
// between n-1 and n+3 non-blank lines for a fragment of n non-blank lines.
const (
	fuzzySlackBelow = 1
	fuzzySlackAbove = 3
)

// fuzzyAnchorMatch anchors on the fragment's first and last non-blank lines,
// compared trim-equal, and accepts the span between them only when its
// non-blank line count stays inside the tolerance band. Single-line
// fragments match the first trim-equal document line.
func fuzzyAnchorMatch(document, search string) *matchResult {
	frag := nonBlankTrimmed(search)
	if len(frag) == 0 {
		return nil
	}

	docLines := strings.Split(document, "\n")

	if len(frag) == 1 {
		i := indexOfTrimmed(docLines, frag[0], 0)
		if i < 0 {
			return nil
		}
		return &matchResult{tier: types.TierFuzzy, fromLine: i, toLine: i}
	}

	from := indexOfTrimmed(docLines, frag[0], 0)
	if from < 0 {
		return nil
	}
	to := indexOfTrimmed(docLines, frag[len(frag)-1], from)
	if to < 0 {
		return nil
	}

	spanned := 0
	for _, line := range docLines[from : to+1] {
		if strings.TrimSpace(line) != "" {
			spanned++
		}
	}
	if spanned < len(frag)-fuzzySlackBelow || spanned > len(frag)+fuzzySlackAbove {
		return nil
	}

	return &matchResult{tier: types.TierFuzzy, fromLine: from, toLine: to}
}

// lineRangeMatch anchors on three fragment lines (first, middle, last
// non-blank, trimmed) located in document order, each search starting after
// the previous hit. The resulting span may be at most twice as long as the
// fragment's non-blank line count, which bounds how much unrelated text a
// loose match can swallow.
func lineRangeMatch(document, search string) *matchResult {
	frag := nonBlankTrimmed(search)
	if len(frag) < 3 {
		return nil
	}

	docLines := strings.Split(document, "\n")

	first := indexOfTrimmed(docLines, frag[0], 0)
	if first < 0 {
		return nil
	}
	middle := indexOfTrimmed(docLines, frag[len(frag)/2], first+1)
	if middle < 0 {
		return nil
	}
	last := indexOfTrimmed(docLines, frag[len(frag)-1], middle+1)
	if last < 0 {
		return nil
	}

	if last-first+1 > 2*len(frag) {
		return nil
	}

	return &matchResult{tier: types.TierLineRange, fromLine: first, toLine: last}
}

// indexOfTrimmed returns the index of the first line at or after from whose
// trimmed text equals want, or -1.
func indexOfTrimmed(lines []string, want string, from int) int {
	for i := from; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == want {
			return i
		}
	}
	return -1
}

// lineSpan converts a match to an inclusive 0-based line range on document.
func (m *matchResult) lineSpan(document string) (from, to int) {
	if !m.byteSpan {
		return m.fromLine, m.toLine
	}
	from = strings.Count(document[:m.start], "\n")
	end := m.end
	if end > m.start {
		end--
	}
	to = strings.Count(document[:end], "\n")
	return from, to
}

// findClosestMatch scans document for the window most similar to search,
// for use in a no-match diagnostic. Returns the closest text, its
// similarity, and the 1-based line range.
func findClosestMatch(document, search string) (closest string, sim float64, lineFrom, lineTo int) {
	if search == "" || document == "" {
		return "", 0, 0, 0
	}

	docLines := strings.Split(document, "\n")
	window := len(splitFragment(search))
	if window == 0 {
		return "", 0, 0, 0
	}
	if window > len(docLines) {
		window = len(docLines)
	}

	bestSim, bestStart := 0.0, -1
	for i := 0; i+window <= len(docLines); i++ {
		candidate := strings.Join(docLines[i:i+window], "\n")
		if s := similarity(candidate, search); s > bestSim {
			bestSim, bestStart = s, i
		}
	}
	if bestStart < 0 {
		return "", 0, 0, 0
	}

	closest = strings.Join(docLines[bestStart:bestStart+window], "\n")
	return closest, bestSim, bestStart + 1, bestStart + window
}

// similarity computes a Levenshtein-based similarity ratio in [0, 1].
func similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(a, b, false)
	distance := dmp.DiffLevenshtein(diffs)
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	return 1.0 - float64(distance)/float64(maxLen)
}
