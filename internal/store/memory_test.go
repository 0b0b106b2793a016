// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"testing"

	"github.com/petar-djukic/patchsync/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_GetContent(t *testing.T) {
	m := NewMemory()
	token := m.Seed("docs/a.md", "hello\n")

	rev, err := m.GetContent(context.Background(), "docs/a.md", "")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", rev.Content)
	assert.Equal(t, token, rev.Version)

	_, err = m.GetContent(context.Background(), "missing.md", "")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestMemory_Write(t *testing.T) {
	ctx := context.Background()

	t.Run("matching token swaps content and returns a new token", func(t *testing.T) {
		m := NewMemory()
		token := m.Seed("a.md", "one\n")

		next, err := m.Write(ctx, types.WriteRequest{Path: "a.md", Content: "two\n", Version: token})
		require.NoError(t, err)
		assert.NotEqual(t, token, next)

		rev, err := m.GetContent(ctx, "a.md", "")
		require.NoError(t, err)
		assert.Equal(t, "two\n", rev.Content)
		assert.Equal(t, next, rev.Version)
	})

	t.Run("stale token conflicts", func(t *testing.T) {
		m := NewMemory()
		m.Seed("a.md", "one\n")

		_, err := m.Write(ctx, types.WriteRequest{Path: "a.md", Content: "two\n", Version: "stale"})
		assert.ErrorIs(t, err, types.ErrVersionConflict)

		rev, gerr := m.GetContent(ctx, "a.md", "")
		require.NoError(t, gerr)
		assert.Equal(t, "one\n", rev.Content)
	})

	t.Run("token for a missing path is not found", func(t *testing.T) {
		m := NewMemory()
		_, err := m.Write(ctx, types.WriteRequest{Path: "nope.md", Content: "x", Version: "v"})
		assert.ErrorIs(t, err, types.ErrNotFound)
	})

	t.Run("new-resource write creates the path", func(t *testing.T) {
		m := NewMemory()
		token, err := m.Write(ctx, types.WriteRequest{Path: "fresh.md", Content: "x\n"})
		require.NoError(t, err)
		assert.NotEmpty(t, token)
	})

	t.Run("new-resource write on an existing path conflicts", func(t *testing.T) {
		m := NewMemory()
		m.Seed("a.md", "one\n")
		_, err := m.Write(ctx, types.WriteRequest{Path: "a.md", Content: "x"})
		assert.ErrorIs(t, err, types.ErrVersionConflict)
	})

	t.Run("tokens are content addressed", func(t *testing.T) {
		m := NewMemory()
		a := m.Seed("a.md", "same\n")
		b := m.Seed("b.md", "same\n")
		assert.Equal(t, a, b)
	})
}
