package model

import "time"

// Payment methods accepted at the register.
const (
	PayCash     = "CASH"
	PayTransfer = "TRANSFER"
)

// Payment is the immutable record produced by checkout.  Exactly one
// payment exists per order (unique key on order_id) and PaidAmount is
// the order's line total at the instant of finalization; it is never
// revised afterwards.
//
// Fields:
//  ID         – primary key identifier.
//  OrderID    – order this payment settled.
//  Method     – CASH or TRANSFER.
//  PaidAmount – settled amount in đồng.
//  PaidAt     – when the payment was recorded.
type Payment struct {
	ID         uint64    // payments.id
	OrderID    uint64    // payments.order_id
	Method     string    // payments.method
	PaidAmount int64     // payments.paid_amount
	PaidAt     time.Time // payments.paid_at
}

// ValidPaymentMethod reports whether m is an accepted payment method.
func ValidPaymentMethod(m string) bool {
	return m == PayCash || m == PayTransfer
}
