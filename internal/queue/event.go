// Package queue defines message payloads exchanged over the message broker.
package queue

// PaymentRecordedEvent is published after a checkout settles an order.
// It carries everything a downstream consumer needs to log, print a
// receipt, or feed end-of-day reporting without querying the primary
// database.
type PaymentRecordedEvent struct {
	PaymentID  uint64 `json:"payment_id"`
	OrderID    uint64 `json:"order_id"`
	TableID    uint64 `json:"table_id"`
	TableName  string `json:"table_name"`
	Method     string `json:"method"`
	PaidAmount int64  `json:"paid_amount"`
	PaidAt     string `json:"paid_at"`
	CashierID  uint64 `json:"cashier_id,omitempty"`
}
