// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package resolver

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/petar-djukic/patchsync/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedStore is a test double whose write behavior is scripted: it
// forces a fixed number of version conflicts before accepting, and can
// simulate remote churn by rotating its token on every conflict.
type scriptedStore struct {
	mu sync.Mutex

	content string
	token   types.VersionToken

	conflictsLeft int   // Writes to reject with ErrVersionConflict before accepting
	churn         bool  // Rotate the token on each forced conflict
	writeErr      error // Non-conflict error to return from Write
	getErr        error

	writes []types.WriteRequest
	gets   int
	serial int
}

func (s *scriptedStore) GetContent(_ context.Context, path, _ string) (*types.FileRevision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets++
	if s.getErr != nil {
		return nil, s.getErr
	}
	return &types.FileRevision{Content: s.content, Version: s.token}, nil
}

func (s *scriptedStore) Write(_ context.Context, req types.WriteRequest) (types.VersionToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes = append(s.writes, req)

	if s.writeErr != nil {
		return "", s.writeErr
	}
	if s.conflictsLeft > 0 {
		s.conflictsLeft--
		if s.churn {
			s.serial++
			s.token = types.VersionToken(fmt.Sprintf("churn-%d", s.serial))
		}
		return "", fmt.Errorf("%w: scripted", types.ErrVersionConflict)
	}
	if req.Version != "" && req.Version != s.token {
		return "", fmt.Errorf("%w: stale token", types.ErrVersionConflict)
	}

	s.serial++
	s.content = req.Content
	s.token = types.VersionToken(fmt.Sprintf("new-%d", s.serial))
	return s.token, nil
}

// newTestResolver returns a resolver over st with sleeping stubbed out,
// recording requested delays into the returned slice.
func newTestResolver(t *testing.T, st types.Store) (*Resolver, *[]time.Duration) {
	t.Helper()
	r, err := New(Config{Store: st, RetryDelay: 10 * time.Millisecond})
	require.NoError(t, err)

	var slept []time.Duration
	r.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	return r, &slept
}

func TestNew_RequiresStore(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, types.ErrInvalidInput)
}

func TestSave_Success(t *testing.T) {
	st := &scriptedStore{content: "old\n", token: "v1"}
	r, _ := newTestResolver(t, st)

	outcome := r.Save(context.Background(), SaveRequest{
		Path:        "docs/a.md",
		Content:     "new\n",
		BaseVersion: "v1",
		Message:     "update a",
	})

	require.Equal(t, types.OutcomeSuccess, outcome.Kind)
	assert.NotEqual(t, types.VersionToken("v1"), outcome.NewVersion)
	assert.Equal(t, "new\n", st.content)
	require.Equal(t, 1, len(st.writes))
	assert.Equal(t, "update a", st.writes[0].Message)
}

func TestSave_FirstConflictYieldsToCaller(t *testing.T) {
	st := &scriptedStore{content: "line one\nremote line\n", token: "v2"}
	r, _ := newTestResolver(t, st)

	outcome := r.Save(context.Background(), SaveRequest{
		Path:        "docs/a.md",
		Content:     "line one\nlocal line\n",
		BaseVersion: "v1", // stale
	})

	require.Equal(t, types.OutcomeConflict, outcome.Kind)
	c := outcome.Conflict
	require.NotNil(t, c)
	assert.Equal(t, "docs/a.md", c.Path)
	assert.Equal(t, types.VersionToken("v2"), c.RemoteVersion)
	assert.Equal(t, "line one\nlocal line\n", c.LocalContent)
	assert.Equal(t, "line one\nremote line\n", c.RemoteContent)

	// One Modified entry for the differing line, nothing else flagged.
	assert.Equal(t, []int{2}, c.ConflictedLines)
	assert.Equal(t, types.DiffUnchanged, c.Diff[0].Op)
	assert.Equal(t, types.DiffModified, c.Diff[1].Op)

	// One write attempted, no auto-retry past the first conflict.
	assert.Equal(t, 1, len(st.writes))
}

func TestSave_TransportErrorShortCircuits(t *testing.T) {
	boom := errors.New("connection reset")
	st := &scriptedStore{writeErr: boom}
	r, slept := newTestResolver(t, st)

	outcome := r.Save(context.Background(), SaveRequest{Path: "a", Content: "x", BaseVersion: "v1"})

	require.Equal(t, types.OutcomeError, outcome.Kind)
	assert.ErrorIs(t, outcome.Err, boom)
	assert.Equal(t, 1, len(st.writes))
	assert.Empty(t, *slept)
}

func conflictFor(st *scriptedStore, path, local string) *types.ConflictInfo {
	return &types.ConflictInfo{
		Path:          path,
		LocalContent:  local,
		RemoteContent: st.content,
		RemoteVersion: st.token,
	}
}

func TestKeepMine_WritesWithRemoteToken(t *testing.T) {
	st := &scriptedStore{content: "remote\n", token: "v2"}
	r, _ := newTestResolver(t, st)

	c := conflictFor(st, "docs/a.md", "local\n")
	outcome := r.KeepMine(context.Background(), c, "", "keep mine")

	require.Equal(t, types.OutcomeSuccess, outcome.Kind)
	assert.NotEqual(t, types.VersionToken("v1"), outcome.NewVersion)
	assert.NotEqual(t, types.VersionToken("v2"), outcome.NewVersion)
	assert.Equal(t, "local\n", st.content)
	require.Equal(t, 1, len(st.writes))
	assert.Equal(t, types.VersionToken("v2"), st.writes[0].Version)
}

func TestKeepMine_RenewedConflictRefetchesAndRetries(t *testing.T) {
	st := &scriptedStore{content: "remote\n", token: "v2", conflictsLeft: 1, churn: true}
	r, slept := newTestResolver(t, st)

	c := conflictFor(st, "docs/a.md", "local\n")
	outcome := r.KeepMine(context.Background(), c, "", "")

	require.Equal(t, types.OutcomeSuccess, outcome.Kind)
	require.Equal(t, 2, len(st.writes))
	// The retry used the refetched token, not the stale one.
	assert.Equal(t, st.writes[1].Version, types.VersionToken("churn-1"))
	assert.Equal(t, 1, st.gets)
	assert.Equal(t, []time.Duration{10 * time.Millisecond}, *slept)
}

func TestKeepMine_RetryCap(t *testing.T) {
	st := &scriptedStore{content: "remote\n", token: "v2", conflictsLeft: 10, churn: true}
	r, slept := newTestResolver(t, st)

	c := conflictFor(st, "docs/a.md", "local\n")
	outcome := r.KeepMine(context.Background(), c, "", "")

	require.Equal(t, types.OutcomeError, outcome.Kind)
	assert.ErrorIs(t, outcome.Err, types.ErrRetryExhausted)
	assert.Contains(t, outcome.Err.Error(), "3 attempts")
	// Exactly 3 write attempts, never a 4th; a delay before each retry.
	assert.Equal(t, 3, len(st.writes))
	assert.Equal(t, 2, len(*slept))
}

func TestKeepMine_CancellationBetweenRetries(t *testing.T) {
	st := &scriptedStore{content: "remote\n", token: "v2", conflictsLeft: 10}
	r, _ := newTestResolver(t, st)
	r.sleep = func(_ context.Context, _ time.Duration) error {
		return context.Canceled
	}

	c := conflictFor(st, "docs/a.md", "local\n")
	outcome := r.KeepMine(context.Background(), c, "", "")

	require.Equal(t, types.OutcomeError, outcome.Kind)
	assert.ErrorIs(t, outcome.Err, context.Canceled)
	// The aborted attempt committed nothing further.
	assert.Equal(t, 1, len(st.writes))
}

func TestKeepTheirs_NoWrite(t *testing.T) {
	st := &scriptedStore{content: "remote\n", token: "v2"}
	r, _ := newTestResolver(t, st)

	c := conflictFor(st, "docs/a.md", "local\n")
	outcome := r.KeepTheirs(c)

	require.Equal(t, types.OutcomeSuccess, outcome.Kind)
	assert.Equal(t, types.VersionToken("v2"), outcome.NewVersion)
	assert.Empty(t, st.writes)
}

func TestMergeManual_WritesReconciledContent(t *testing.T) {
	st := &scriptedStore{content: "remote\n", token: "v2"}
	r, _ := newTestResolver(t, st)

	c := conflictFor(st, "docs/a.md", "local\n")
	outcome := r.MergeManual(context.Background(), c, "merged\n", "", "merge")

	require.Equal(t, types.OutcomeSuccess, outcome.Kind)
	assert.Equal(t, "merged\n", st.content)
}

func TestSaveAsCopy(t *testing.T) {
	st := &scriptedStore{content: "remote\n", token: "v2"}
	r, _ := newTestResolver(t, st)
	r.now = func() time.Time {
		return time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	}

	c := conflictFor(st, "docs/notes.md", "local\n")
	outcome := r.SaveAsCopy(context.Background(), c, "", "copy")

	require.Equal(t, types.OutcomeSuccess, outcome.Kind)
	assert.Contains(t, outcome.Message, "docs/notes.conflict-20260314-092653.md")
	require.Equal(t, 1, len(st.writes))
	assert.Equal(t, "docs/notes.conflict-20260314-092653.md", st.writes[0].Path)
	assert.Equal(t, types.VersionToken(""), st.writes[0].Version)
	assert.Equal(t, "local\n", st.writes[0].Content)
}

func TestResolve_Dispatch(t *testing.T) {
	st := &scriptedStore{content: "remote\n", token: "v2"}
	r, _ := newTestResolver(t, st)
	c := conflictFor(st, "docs/a.md", "local\n")

	t.Run("unknown strategy", func(t *testing.T) {
		outcome := r.Resolve(context.Background(), c, Strategy("zap"), ResolveOptions{})
		require.Equal(t, types.OutcomeError, outcome.Kind)
		assert.ErrorIs(t, outcome.Err, types.ErrInvalidInput)
	})

	t.Run("merge without content", func(t *testing.T) {
		outcome := r.Resolve(context.Background(), c, StrategyMerge, ResolveOptions{})
		require.Equal(t, types.OutcomeError, outcome.Kind)
		assert.ErrorIs(t, outcome.Err, types.ErrInvalidInput)
	})

	t.Run("nil conflict", func(t *testing.T) {
		outcome := r.Resolve(context.Background(), nil, StrategyKeepTheirs, ResolveOptions{})
		require.Equal(t, types.OutcomeError, outcome.Kind)
		assert.ErrorIs(t, outcome.Err, types.ErrInvalidInput)
	})

	t.Run("theirs", func(t *testing.T) {
		outcome := r.Resolve(context.Background(), c, StrategyKeepTheirs, ResolveOptions{})
		require.Equal(t, types.OutcomeSuccess, outcome.Kind)
		assert.Equal(t, types.VersionToken("v2"), outcome.NewVersion)
	})
}

func TestCopyPath(t *testing.T) {
	stamp := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

	tests := []struct {
		in   string
		want string
	}{
		{"dir/Name.ext", "dir/Name.conflict-20260314-092653.ext"},
		{"notes.md", "notes.conflict-20260314-092653.md"},
		{"a/b/c.tar.gz", "a/b/c.tar.conflict-20260314-092653.gz"},
		{"noext", "noext.conflict-20260314-092653"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CopyPath(tt.in, stamp))
	}
}
