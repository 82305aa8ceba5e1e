package model

// MenuGroup is a tab of the menu ("Cà phê", "Trà", ...).  Groups order
// the menu screen via Sort.
type MenuGroup struct {
	ID   uint64 // menu_groups.id
	Name string // menu_groups.name
	Sort int    // menu_groups.sort
}

// MenuItem is a sellable catalog entry.  The order core consumes items
// read-only; price and name are snapshotted onto order lines so later
// menu edits do not rewrite history.  UnitPrice is in đồng.
type MenuItem struct {
	ID        uint64 // menu_items.id
	GroupID   uint64 // menu_items.group_id
	Name      string // menu_items.name
	UnitPrice int64  // menu_items.unit_price
	IsActive  bool   // menu_items.is_active
	Sort      int    // menu_items.sort
}
