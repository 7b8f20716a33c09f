package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

var memConfig = types.Config{Backend: types.BackendMemory}

func TestStoreLifecycle(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.Load(ctx)
	assert.ErrorIs(t, err, types.ErrStoreDetached)

	require.NoError(t, s.Attach(memConfig))
	assert.ErrorIs(t, s.Attach(memConfig), types.ErrAlreadyAttached)

	require.NoError(t, s.Save(ctx, []types.Book{{ID: "1"}}))
	require.NoError(t, s.Detach())
	require.NoError(t, s.Attach(memConfig))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []types.Book{{ID: "1"}}, got)
	assert.Equal(t, 1, s.Saves())
}

func TestStoreReturnsCopies(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.Attach(memConfig))

	books := []types.Book{{ID: "1", Title: "orig"}}
	require.NoError(t, s.Save(ctx, books))
	books[0].Title = "mutated"

	got, err := s.Load(ctx)
	require.NoError(t, err)
	got[0].Title = "mutated again"

	again, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "orig", again[0].Title)
}

func TestStoreInjectedFailures(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.Attach(memConfig))

	boom := errors.New("disk full")
	s.SaveErr = boom
	assert.ErrorIs(t, s.Save(ctx, []types.Book{{ID: "1"}}), boom)
	assert.Zero(t, s.Saves())

	s.LoadErr = boom
	_, err := s.Load(ctx)
	assert.ErrorIs(t, err, boom)
}
