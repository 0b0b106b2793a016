// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package types

import "context"

// VersionToken is an opaque identifier of a stored file's current state,
// used for optimistic concurrency. Both bundled stores use content hashes,
// but callers must treat the value as opaque.
type VersionToken string

// FileRevision is a file's content together with the token identifying the
// state it was read at.
type FileRevision struct {
	Content string
	Version VersionToken
}

// WriteRequest describes a token-checked write to a versioned store.
// An empty Version means a new-resource write: it succeeds only if the path
// does not exist yet.
type WriteRequest struct {
	Path    string
	Content string
	Version VersionToken
	Ref     string // Branch or revision the write targets
	Message string // Commit/change message, where the store records one
}

// Store is the versioned, content-addressed store the resolver writes to.
// Write must reject the request with ErrVersionConflict when the supplied
// token no longer matches the store's current token for the path
// (compare-and-swap). Any other failure is treated as a transport error and
// is never retried.
type Store interface {
	GetContent(ctx context.Context, path, ref string) (*FileRevision, error)
	Write(ctx context.Context, req WriteRequest) (VersionToken, error)
}
