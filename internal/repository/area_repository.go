package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/minhvo/cafe-pos/internal/model"
)

// AreaRepo encapsulates all database queries related to floor areas.
type AreaRepo struct {
	db *sql.DB
}

// NewAreaRepo constructs an AreaRepo with the provided DB handle.
func NewAreaRepo(db *sql.DB) *AreaRepo { return &AreaRepo{db: db} }

// List returns all areas ordered by their sort key.
func (r *AreaRepo) List(ctx context.Context) ([]model.Area, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, sort, created_at FROM areas ORDER BY sort, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	areas := make([]model.Area, 0)
	for rows.Next() {
		var a model.Area
		if err := rows.Scan(&a.ID, &a.Name, &a.Sort, &a.CreatedAt); err != nil {
			return nil, err
		}
		areas = append(areas, a)
	}
	return areas, rows.Err()
}

// Create inserts a new area and returns it with the generated ID.
func (r *AreaRepo) Create(ctx context.Context, name string, sort int) (model.Area, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO areas (name, sort) VALUES (?, ?)`, name, sort)
	if err != nil {
		return model.Area{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Area{}, err
	}
	var a model.Area
	err = r.db.QueryRowContext(ctx,
		`SELECT id, name, sort, created_at FROM areas WHERE id = ?`, id).
		Scan(&a.ID, &a.Name, &a.Sort, &a.CreatedAt)
	return a, err
}

// Update changes an area's name and sort key.
func (r *AreaRepo) Update(ctx context.Context, id uint64, name string, sort int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE areas SET name = ?, sort = ? WHERE id = ?`, name, sort, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists uint64
		err := r.db.QueryRowContext(ctx, `SELECT id FROM areas WHERE id = ?`, id).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// Delete removes an area and, via the foreign key, all of its tables.
// It is refused with ErrConflict while any table of the area is IN_USE.
func (r *AreaRepo) Delete(ctx context.Context, id uint64) error {
	var busy int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM cafe_tables WHERE area_id = ? AND status = ?`,
		id, model.TableInUse).Scan(&busy)
	if err != nil {
		return err
	}
	if busy > 0 {
		return ErrConflict
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM areas WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
