// Package repository contains data access logic separated from HTTP
// handlers and services. This file provides persistence for the cafe
// floor: tables and their EMPTY / IN_USE status flag.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/minhvo/cafe-pos/internal/model"
)

// TableRepo encapsulates all database queries related to cafe tables.
type TableRepo struct {
	db *sql.DB
}

// NewTableRepo constructs a TableRepo with the provided DB handle.
func NewTableRepo(db *sql.DB) *TableRepo { return &TableRepo{db: db} }

// Get fetches a table by its ID. It returns ErrNotFound when no row
// exists.
func (r *TableRepo) Get(ctx context.Context, id uint64) (model.Table, error) {
	const q = `SELECT id, area_id, name, status, created_at, updated_at
	           FROM cafe_tables WHERE id = ?`
	var t model.Table
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&t.ID, &t.AreaID, &t.Name, &t.Status, &t.CreatedAt, &t.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Table{}, ErrNotFound
	}
	if err != nil {
		return model.Table{}, err
	}
	return t, nil
}

// SetStatus writes the status flag. The write is idempotent: setting a
// table to the status it already has affects zero rows and is not an
// error. ErrNotFound is returned only when the table does not exist at
// all.
func (r *TableRepo) SetStatus(ctx context.Context, id uint64, status string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE cafe_tables SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// Distinguish "no change" from "no such table".
		var exists uint64
		err := r.db.QueryRowContext(ctx,
			`SELECT id FROM cafe_tables WHERE id = ?`, id).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// ListByArea returns the tables of one zone ordered by name, the way
// the floor board displays them.
func (r *TableRepo) ListByArea(ctx context.Context, areaID uint64) ([]model.Table, error) {
	const q = `SELECT id, area_id, name, status, created_at, updated_at
	           FROM cafe_tables WHERE area_id = ? ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q, areaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tables := make([]model.Table, 0)
	for rows.Next() {
		var t model.Table
		if err := rows.Scan(&t.ID, &t.AreaID, &t.Name, &t.Status, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

// Create inserts a table into an area with status EMPTY and populates
// the generated ID on the returned record.
func (r *TableRepo) Create(ctx context.Context, areaID uint64, name string) (model.Table, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO cafe_tables (area_id, name, status) VALUES (?, ?, ?)`,
		areaID, name, model.TableEmpty)
	if err != nil {
		return model.Table{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Table{}, err
	}
	return r.Get(ctx, uint64(id))
}

// Rename updates the table label. Past orders keep the snapshot taken
// at creation, so renaming never rewrites history.
func (r *TableRepo) Rename(ctx context.Context, id uint64, name string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE cafe_tables SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists uint64
		err := r.db.QueryRowContext(ctx,
			`SELECT id FROM cafe_tables WHERE id = ?`, id).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// Delete removes a table. Deleting a table that is currently IN_USE is
// refused with ErrConflict so an open order is never orphaned.
func (r *TableRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM cafe_tables WHERE id = ? AND status = ?`, id, model.TableEmpty)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var status string
		err := r.db.QueryRowContext(ctx,
			`SELECT status FROM cafe_tables WHERE id = ?`, id).Scan(&status)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return ErrConflict
	}
	return nil
}
