package model

import "time"

// Table statuses.  A table is InUse exactly while one Open order
// references it; checkout flips it back to Empty.
const (
	TableEmpty = "EMPTY"
	TableInUse = "IN_USE"
)

// Table represents a physical table on the cafe floor.  Its status is
// the only mutable field and is owned by the table registry: occupy
// sets IN_USE, the payment finalizer sets EMPTY again.
//
// Fields:
//  ID        – primary key identifier.
//  AreaID    – zone this table belongs to.
//  Name      – label printed on the board (e.g. "A1").
//  Status    – EMPTY or IN_USE.
//  CreatedAt – timestamp of creation.
//  UpdatedAt – timestamp of last status change or rename.
type Table struct {
	ID        uint64    // cafe_tables.id
	AreaID    uint64    // cafe_tables.area_id
	Name      string    // cafe_tables.name
	Status    string    // cafe_tables.status
	CreatedAt time.Time // cafe_tables.created_at
	UpdatedAt time.Time // cafe_tables.updated_at
}
