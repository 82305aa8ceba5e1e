package service

import (
	"context"

	"github.com/minhvo/cafe-pos/internal/model"
)

// TableRegistry owns the EMPTY / IN_USE flag of every table. It only
// moves the flag; creating the order that justifies IN_USE is the
// OrderManager's job.
type TableRegistry struct {
	tables TableStore
}

// NewTableRegistry constructs a TableRegistry over the given store.
func NewTableRegistry(tables TableStore) *TableRegistry {
	return &TableRegistry{tables: tables}
}

// Occupy marks a table IN_USE. Calling it on a table that is already
// IN_USE is a no-op, so any number of devices can open the same table.
// Returns repository.ErrNotFound when the table does not exist.
func (s *TableRegistry) Occupy(ctx context.Context, tableID uint64) (model.Table, error) {
	t, err := s.tables.Get(ctx, tableID)
	if err != nil {
		return model.Table{}, err
	}
	if t.Status == model.TableInUse {
		return t, nil
	}
	if err := s.tables.SetStatus(ctx, tableID, model.TableInUse); err != nil {
		return model.Table{}, err
	}
	t.Status = model.TableInUse
	return t, nil
}

// Free marks a table EMPTY again. The payment finalizer already frees
// the table inside its checkout transaction; this method exists for
// the registry's own callers and is likewise idempotent.
func (s *TableRegistry) Free(ctx context.Context, tableID uint64) error {
	return s.tables.SetStatus(ctx, tableID, model.TableEmpty)
}
