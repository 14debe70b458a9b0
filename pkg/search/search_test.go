package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngineIndexAndSearch(t *testing.T) {
	e, err := NewInMemory()
	require.NoError(t, err)
	defer e.Close()

	ctx := context.Background()

	require.NoError(t, e.Index(ctx, Doc{
		ID:   "a",
		Name: "standup",
		Text: "we discussed the quarterly roadmap and the hiring plan",
	}))
	require.NoError(t, e.Index(ctx, Doc{
		ID:   "b",
		Name: "interview",
		Text: "the candidate talked about distributed systems",
	}))

	hits, err := e.Search(ctx, "roadmap", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "a", hits[0].ID)

	require.NoError(t, e.Delete(ctx, "a"))
	hits, err = e.Search(ctx, "roadmap", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestEngineClosed(t *testing.T) {
	e, err := NewInMemory()
	require.NoError(t, err)
	require.NoError(t, e.Close())

	err = e.Index(context.Background(), Doc{ID: "x"})
	assert.ErrorIs(t, err, ErrClosed)
}
