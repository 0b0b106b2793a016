// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package types

import "encoding/json"

// OutcomeKind tags a ConflictOutcome. Switch on it exhaustively; exactly one
// of the kind-specific field groups is populated.
type OutcomeKind int

const (
	OutcomeSuccess  OutcomeKind = iota // Write committed; NewVersion is set
	OutcomeConflict                    // Remote moved; Conflict is set
	OutcomeError                       // Transport failure or exhausted retries; Err is set
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeConflict:
		return "conflict"
	case OutcomeError:
		return "error"
	default:
		return "unknown"
	}
}

// ConflictOutcome is the result of one save or resolution attempt.
// A Conflict outcome is terminal for the current call: resolution happens
// through a separate, explicit strategy call carrying the ConflictInfo.
type ConflictOutcome struct {
	Kind OutcomeKind

	// Success fields.
	NewVersion VersionToken
	Message    string

	// Conflict fields.
	Conflict *ConflictInfo

	// Error fields.
	Err error
}

// MarshalJSON renders the outcome with its kind as a string and the error,
// if any, as text.
func (o *ConflictOutcome) MarshalJSON() ([]byte, error) {
	aux := struct {
		Kind       string        `json:"kind"`
		NewVersion VersionToken  `json:"new_version,omitempty"`
		Message    string        `json:"message,omitempty"`
		Conflict   *ConflictInfo `json:"conflict,omitempty"`
		Error      string        `json:"error,omitempty"`
	}{
		Kind:       o.Kind.String(),
		NewVersion: o.NewVersion,
		Message:    o.Message,
		Conflict:   o.Conflict,
	}
	if o.Err != nil {
		aux.Error = o.Err.Error()
	}
	return json.Marshal(aux)
}

// ConflictInfo carries everything a caller needs to judge a version
// conflict: both sides' content, the remote's current token, and a
// positional diff for display.
type ConflictInfo struct {
	Path            string       `json:"path"`
	LocalContent    string       `json:"-"`
	RemoteContent   string       `json:"-"`
	RemoteVersion   VersionToken `json:"remote_version"`
	Diff            []DiffLine   `json:"diff"`
	ConflictedLines []int        `json:"conflicted_lines,omitempty"` // 1-based numbers of DiffModified lines, in order
}

// SuccessOutcome builds an OutcomeSuccess value.
func SuccessOutcome(token VersionToken, message string) *ConflictOutcome {
	return &ConflictOutcome{Kind: OutcomeSuccess, NewVersion: token, Message: message}
}

// ConflictOutcomeOf builds an OutcomeConflict value.
func ConflictOutcomeOf(info *ConflictInfo) *ConflictOutcome {
	return &ConflictOutcome{Kind: OutcomeConflict, Conflict: info}
}

// ErrorOutcome builds an OutcomeError value.
func ErrorOutcome(err error) *ConflictOutcome {
	return &ConflictOutcome{Kind: OutcomeError, Err: err}
}
