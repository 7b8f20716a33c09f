package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/shelf/internal/jsonl"
	"github.com/mesh-intelligence/shelf/internal/memory"
	"github.com/mesh-intelligence/shelf/internal/sqlite"
	"github.com/mesh-intelligence/shelf/pkg/types"
)

func TestNewSelectsBackend(t *testing.T) {
	tests := []struct {
		backend string
		want    any
	}{
		{types.BackendSQLite, &sqlite.Backend{}},
		{types.BackendJSONL, &jsonl.Backend{}},
		{types.BackendMemory, &memory.Store{}},
	}
	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			s, err := New(types.Config{Backend: tt.backend}, nil)
			require.NoError(t, err)
			assert.IsType(t, tt.want, s)
		})
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	_, err := New(types.Config{}, nil)
	assert.ErrorIs(t, err, types.ErrBackendEmpty)

	_, err = New(types.Config{Backend: "postgres"}, nil)
	assert.ErrorIs(t, err, types.ErrBackendUnknown)
}

func TestOpenAttaches(t *testing.T) {
	for _, backend := range []string{types.BackendSQLite, types.BackendJSONL} {
		t.Run(backend, func(t *testing.T) {
			s, err := Open(types.Config{Backend: backend, DataDir: t.TempDir()}, nil)
			require.NoError(t, err)
			defer s.Detach()

			books, err := s.Load(context.Background())
			require.NoError(t, err)
			assert.Empty(t, books)
		})
	}
}
