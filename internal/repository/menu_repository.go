package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/minhvo/cafe-pos/internal/model"
)

// MenuRepo provides read and CRUD access to the sellable catalog:
// menu groups and menu items. The order core consumes it read-only via
// ListActiveItems and GetItem; the CRUD methods back the management
// endpoints.
type MenuRepo struct {
	db *sql.DB
}

// NewMenuRepo constructs a MenuRepo bound to the given database.
func NewMenuRepo(db *sql.DB) *MenuRepo { return &MenuRepo{db: db} }

// itemSortKeys whitelists the caller-supplied sort keys accepted by
// ListActiveItems. Anything else falls back to the default.
var itemSortKeys = map[string]string{
	"name":  "name",
	"price": "unit_price",
	"sort":  "sort",
}

// ListGroups returns all menu groups ordered by their sort key.
func (r *MenuRepo) ListGroups(ctx context.Context) ([]model.MenuGroup, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, sort FROM menu_groups ORDER BY sort, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	groups := make([]model.MenuGroup, 0)
	for rows.Next() {
		var g model.MenuGroup
		if err := rows.Scan(&g.ID, &g.Name, &g.Sort); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// CreateGroup inserts a menu group and returns it with the generated ID.
func (r *MenuRepo) CreateGroup(ctx context.Context, name string, sort int) (model.MenuGroup, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO menu_groups (name, sort) VALUES (?, ?)`, name, sort)
	if err != nil {
		return model.MenuGroup{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.MenuGroup{}, err
	}
	return model.MenuGroup{ID: uint64(id), Name: name, Sort: sort}, nil
}

// UpdateGroup changes a group's name and sort key.
func (r *MenuRepo) UpdateGroup(ctx context.Context, id uint64, name string, sort int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE menu_groups SET name = ?, sort = ? WHERE id = ?`, name, sort, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists uint64
		err := r.db.QueryRowContext(ctx, `SELECT id FROM menu_groups WHERE id = ?`, id).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// DeleteGroup removes a group and, via the foreign key, its items.
func (r *MenuRepo) DeleteGroup(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM menu_groups WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetItem fetches one menu item regardless of its active flag.
func (r *MenuRepo) GetItem(ctx context.Context, id uint64) (model.MenuItem, error) {
	const q = `SELECT id, group_id, name, unit_price, is_active, sort
	           FROM menu_items WHERE id = ?`
	var it model.MenuItem
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&it.ID, &it.GroupID, &it.Name, &it.UnitPrice, &it.IsActive, &it.Sort,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.MenuItem{}, ErrNotFound
	}
	if err != nil {
		return model.MenuItem{}, err
	}
	return it, nil
}

// ListActiveItems returns the sellable items, optionally restricted to
// one group, ordered by the requested sort key ("name", "price" or
// "sort"; unknown keys fall back to "sort"). Inactive items are never
// returned; the register only sells what is switched on.
func (r *MenuRepo) ListActiveItems(ctx context.Context, groupID *uint64, sortKey string) ([]model.MenuItem, error) {
	col, ok := itemSortKeys[sortKey]
	if !ok {
		col = "sort"
	}
	q := `SELECT id, group_id, name, unit_price, is_active, sort
	      FROM menu_items WHERE is_active = 1`
	args := []interface{}{}
	if groupID != nil {
		q += ` AND group_id = ?`
		args = append(args, *groupID)
	}
	q += ` ORDER BY ` + col + `, id`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.MenuItem, 0)
	for rows.Next() {
		var it model.MenuItem
		if err := rows.Scan(&it.ID, &it.GroupID, &it.Name, &it.UnitPrice, &it.IsActive, &it.Sort); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// CreateItem inserts a menu item and returns it with the generated ID.
func (r *MenuRepo) CreateItem(ctx context.Context, it model.MenuItem) (model.MenuItem, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO menu_items (group_id, name, unit_price, is_active, sort) VALUES (?, ?, ?, ?, ?)`,
		it.GroupID, it.Name, it.UnitPrice, it.IsActive, it.Sort)
	if err != nil {
		return model.MenuItem{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.MenuItem{}, err
	}
	it.ID = uint64(id)
	return it, nil
}

// UpdateItem rewrites the mutable fields of an item. Existing order
// lines keep the name and price they snapshotted.
func (r *MenuRepo) UpdateItem(ctx context.Context, it model.MenuItem) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE menu_items SET name = ?, unit_price = ?, is_active = ?, sort = ? WHERE id = ?`,
		it.Name, it.UnitPrice, it.IsActive, it.Sort, it.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists uint64
		err := r.db.QueryRowContext(ctx, `SELECT id FROM menu_items WHERE id = ?`, it.ID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// DeleteItem removes an item from the catalog.
func (r *MenuRepo) DeleteItem(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM menu_items WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
