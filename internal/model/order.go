package model

import "time"

// Order statuses.  The only transition is OPEN -> PAID, performed by
// the payment finalizer; there is no way back.
const (
	OrderOpen = "OPEN"
	OrderPaid = "PAID"
)

// Order is one occupancy episode of a table: created when the table is
// opened, closed by exactly one payment.  TableName is snapshotted at
// creation so history survives later table renames.
//
// Fields:
//  ID        – primary key identifier.
//  TableID   – table this order belongs to.
//  TableName – table name captured at creation time.
//  Status    – OPEN or PAID.
//  CreatedAt – when the order was opened.
type Order struct {
	ID        uint64    // orders.id
	TableID   uint64    // orders.table_id
	TableName string    // orders.table_name
	Status    string    // orders.status
	CreatedAt time.Time // orders.created_at
}

// OrderLine is one sellable item on an order.  Lines are unique per
// (order, item); repeated additions increment Quantity instead of
// inserting duplicate rows.  Amount is always UnitPrice * Quantity and
// is rewritten on every mutation.  All monetary values are in đồng.
//
// Fields:
//  ID        – primary key identifier.
//  OrderID   – owning order.
//  ItemID    – menu item this line sells.
//  ItemName  – item name captured when the line was created.
//  UnitPrice – price per unit at the time of the first addition.
//  Quantity  – current quantity, always >= 1 (lines at 0 are deleted).
//  Amount    – UnitPrice * Quantity.
type OrderLine struct {
	ID        uint64 // order_items.id
	OrderID   uint64 // order_items.order_id
	ItemID    uint64 // order_items.item_id
	ItemName  string // order_items.item_name
	UnitPrice int64  // order_items.unit_price
	Quantity  int64  // order_items.qty
	Amount    int64  // order_items.amount
}
