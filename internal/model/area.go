package model

import "time"

// Area groups tables into a physical zone of the cafe (e.g. "Khu A",
// "Mang về" for takeaway).  Areas only exist to organise the floor
// plan; they carry no lifecycle state of their own.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – display name of the zone.
//  Sort      – ordering hint for the floor board.
//  CreatedAt – timestamp of creation.
type Area struct {
	ID        uint64    // areas.id
	Name      string    // areas.name
	Sort      int       // areas.sort
	CreatedAt time.Time // areas.created_at
}
