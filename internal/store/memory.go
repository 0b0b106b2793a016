// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package store provides the bundled types.Store implementations: an
// in-memory content-addressed store and a go-git-backed one. Both use
// content hashes as version tokens and enforce compare-and-swap writes.
package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/petar-djukic/patchsync/pkg/types"
)

// checksum returns the hex-encoded SHA-256 digest of content, used as the
// version token for in-memory entries.
func checksum(content string) types.VersionToken {
	h := sha256.Sum256([]byte(content))
	return types.VersionToken(hex.EncodeToString(h[:]))
}

type entry struct {
	content string
	version types.VersionToken
}

// Memory is a mutex-guarded, map-backed store. The ref argument is ignored:
// the store holds one live version per path.
type Memory struct {
	mu    sync.Mutex
	files map[string]entry
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{files: make(map[string]entry)}
}

// Seed inserts or replaces a path unconditionally and returns its token.
func (m *Memory) Seed(path, content string) types.VersionToken {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := entry{content: content, version: checksum(content)}
	m.files[path] = e
	return e.version
}

// GetContent returns the current content and token for path.
func (m *Memory) GetContent(_ context.Context, path, _ string) (*types.FileRevision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrNotFound, path)
	}
	return &types.FileRevision{Content: e.content, Version: e.version}, nil
}

// Write performs a compare-and-swap write. An empty request version is a
// new-resource write and fails if the path already exists; otherwise the
// supplied token must match the stored one.
func (m *Memory) Write(_ context.Context, req types.WriteRequest) (types.VersionToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, exists := m.files[req.Path]
	if req.Version == "" {
		if exists {
			return "", fmt.Errorf("%w: %s already exists", types.ErrVersionConflict, req.Path)
		}
	} else {
		if !exists {
			return "", fmt.Errorf("%w: %s", types.ErrNotFound, req.Path)
		}
		if e.version != req.Version {
			return "", fmt.Errorf("%w: %s moved from %s", types.ErrVersionConflict, req.Path, req.Version)
		}
	}

	next := entry{content: req.Content, version: checksum(req.Content)}
	m.files[req.Path] = next
	return next.version, nil
}
