// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package editor

import (
	"regexp"
	"strings"
)

// lineNumberPrefix matches the synthetic "  42| " line anchors some models
// copy into search fragments: one to five digits, a pipe, one space.
var lineNumberPrefix = regexp.MustCompile(`^[0-9]{1,5}\| `)

// StripLineNumbers removes line-number prefixes from a fragment, but only
// when more than half of its non-empty lines carry one. The vote protects
// fragments that legitimately start lines with a pipe character.
func StripLineNumbers(s string) string {
	lines := strings.Split(s, "\n")

	nonEmpty, prefixed := 0, 0
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		nonEmpty++
		if lineNumberPrefix.MatchString(line) {
			prefixed++
		}
	}
	if nonEmpty == 0 || prefixed*2 <= nonEmpty {
		return s
	}

	stripped := make([]string, len(lines))
	for i, line := range lines {
		stripped[i] = lineNumberPrefix.ReplaceAllString(line, "")
	}
	return strings.Join(stripped, "\n")
}

// TrimTrailing removes trailing spaces, tabs, and carriage returns from
// every line. Indentation and blank lines are preserved. The normalized
// matching tier applies this symmetrically to document and search text.
func TrimTrailing(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t\r")
	}
	return strings.Join(lines, "\n")
}

// splitFragment splits a fragment into lines, dropping the empty trailing
// element produced by a terminal newline. An empty fragment yields no lines.
func splitFragment(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// nonBlankTrimmed returns the trimmed text of a fragment's non-blank lines.
func nonBlankTrimmed(s string) []string {
	var out []string
	for _, line := range splitFragment(s) {
		t := strings.TrimSpace(line)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
