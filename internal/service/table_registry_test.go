package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhvo/cafe-pos/internal/model"
	"github.com/minhvo/cafe-pos/internal/repository"
)

func TestOccupyFlipsEmptyTable(t *testing.T) {
	s := newMemStore()
	tableID := s.addTable("B2")
	reg := NewTableRegistry(memTables{s})

	tb, err := reg.Occupy(context.Background(), tableID)
	require.NoError(t, err)
	assert.Equal(t, model.TableInUse, tb.Status)
}

func TestOccupyIsIdempotent(t *testing.T) {
	s := newMemStore()
	tableID := s.addTable("B2")
	reg := NewTableRegistry(memTables{s})
	ctx := context.Background()

	_, err := reg.Occupy(ctx, tableID)
	require.NoError(t, err)
	tb, err := reg.Occupy(ctx, tableID)
	require.NoError(t, err)
	assert.Equal(t, model.TableInUse, tb.Status)
}

func TestOccupyUnknownTable(t *testing.T) {
	s := newMemStore()
	reg := NewTableRegistry(memTables{s})

	_, err := reg.Occupy(context.Background(), 42)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestFreeIsIdempotent(t *testing.T) {
	s := newMemStore()
	tableID := s.addTable("B2")
	reg := NewTableRegistry(memTables{s})
	ctx := context.Background()

	_, err := reg.Occupy(ctx, tableID)
	require.NoError(t, err)
	require.NoError(t, reg.Free(ctx, tableID))
	require.NoError(t, reg.Free(ctx, tableID), "freeing an empty table is a no-op")

	tb, err := memTables{s}.Get(ctx, tableID)
	require.NoError(t, err)
	assert.Equal(t, model.TableEmpty, tb.Status)
}
