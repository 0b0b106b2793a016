// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/petar-djukic/patchsync/pkg/types"
)

const (
	defaultAuthorName  = "patchsync"
	defaultAuthorEmail = "noreply@patchsync"
)

// GitConfig configures a git-backed store.
type GitConfig struct {
	Dir         string // Repository working directory (required)
	AuthorName  string // Commit author (default "patchsync")
	AuthorEmail string
}

// Git adapts a local git repository to the versioned store contract. The
// version token for a path is its blob hash at the inspected revision; each
// write becomes a commit on the current branch. Writes are serialized per
// repository because they share one worktree.
type Git struct {
	repo *gogit.Repository
	dir  string
	cfg  GitConfig

	mu sync.Mutex
}

// OpenGit opens an existing repository at cfg.Dir.
func OpenGit(cfg GitConfig) (*Git, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("%w: Dir is required", types.ErrInvalidInput)
	}
	if cfg.AuthorName == "" {
		cfg.AuthorName = defaultAuthorName
	}
	if cfg.AuthorEmail == "" {
		cfg.AuthorEmail = defaultAuthorEmail
	}
	repo, err := gogit.PlainOpen(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("opening repository %s: %w", cfg.Dir, err)
	}
	return &Git{repo: repo, dir: cfg.Dir, cfg: cfg}, nil
}

// GetContent reads path at ref (any revision go-git can resolve; empty means
// HEAD) and returns its content with the blob hash as token.
func (g *Git) GetContent(_ context.Context, path, ref string) (*types.FileRevision, error) {
	commit, err := g.commitAt(ref)
	if err != nil {
		return nil, err
	}
	if commit == nil {
		return nil, fmt.Errorf("%w: %s", types.ErrNotFound, path)
	}

	file, err := commit.File(path)
	if err != nil {
		if errors.Is(err, object.ErrFileNotFound) {
			return nil, fmt.Errorf("%w: %s", types.ErrNotFound, path)
		}
		return nil, fmt.Errorf("reading %s at %s: %w", path, ref, err)
	}

	content, err := file.Contents()
	if err != nil {
		return nil, fmt.Errorf("reading %s at %s: %w", path, ref, err)
	}
	return &types.FileRevision{
		Content: content,
		Version: types.VersionToken(file.Hash.String()),
	}, nil
}

// Write compares the supplied token against the path's current blob hash at
// HEAD, then writes the file into the worktree and commits it. An empty
// token is a new-resource write and fails if the path is already tracked.
func (g *Git) Write(_ context.Context, req types.WriteRequest) (types.VersionToken, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	head, err := g.commitAt("")
	if err != nil {
		return "", err
	}

	var current *object.File
	if head != nil {
		f, ferr := head.File(req.Path)
		switch {
		case ferr == nil:
			current = f
		case errors.Is(ferr, object.ErrFileNotFound):
			// New path.
		default:
			return "", fmt.Errorf("inspecting %s: %w", req.Path, ferr)
		}
	}

	if req.Version == "" {
		if current != nil {
			return "", fmt.Errorf("%w: %s already exists", types.ErrVersionConflict, req.Path)
		}
	} else {
		if current == nil {
			return "", fmt.Errorf("%w: %s", types.ErrNotFound, req.Path)
		}
		if current.Hash.String() != string(req.Version) {
			return "", fmt.Errorf("%w: %s moved from %s", types.ErrVersionConflict, req.Path, req.Version)
		}
	}

	abs := filepath.Join(g.dir, filepath.FromSlash(req.Path))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", fmt.Errorf("creating directory for %s: %w", req.Path, err)
	}
	if err := os.WriteFile(abs, []byte(req.Content), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", req.Path, err)
	}

	wt, err := g.repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("getting worktree: %w", err)
	}
	if _, err := wt.Add(req.Path); err != nil {
		return "", fmt.Errorf("staging %s: %w", req.Path, err)
	}

	message := req.Message
	if message == "" {
		message = fmt.Sprintf("patchsync: update %s", req.Path)
	}
	commitHash, err := wt.Commit(message, &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  g.cfg.AuthorName,
			Email: g.cfg.AuthorEmail,
			When:  time.Now(),
		},
	})
	if err != nil {
		return "", fmt.Errorf("committing %s: %w", req.Path, err)
	}

	commit, err := g.repo.CommitObject(commitHash)
	if err != nil {
		return "", fmt.Errorf("reading commit: %w", err)
	}
	file, err := commit.File(req.Path)
	if err != nil {
		return "", fmt.Errorf("reading committed %s: %w", req.Path, err)
	}
	return types.VersionToken(file.Hash.String()), nil
}

// commitAt resolves ref to a commit. An empty ref means HEAD. On an
// unborn branch it returns nil with no error.
func (g *Git) commitAt(ref string) (*object.Commit, error) {
	rev := ref
	if rev == "" {
		rev = "HEAD"
	}
	hash, err := g.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		if ref == "" && isUnbornHead(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("resolving %s: %w", rev, err)
	}
	commit, err := g.repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("reading commit %s: %w", hash, err)
	}
	return commit, nil
}

// isUnbornHead reports whether err means the repository has no commits yet.
func isUnbornHead(err error) bool {
	return errors.Is(err, plumbing.ErrReferenceNotFound) ||
		strings.Contains(err.Error(), "reference not found")
}
