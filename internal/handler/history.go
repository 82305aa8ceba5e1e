package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/minhvo/cafe-pos/internal/repository"
)

// HistoryHandler serves the end-of-day views over settled payments.
type HistoryHandler struct {
	Payments *repository.PaymentRepo
}

func NewHistoryHandler(payments *repository.PaymentRepo) *HistoryHandler {
	return &HistoryHandler{Payments: payments}
}

type historyEntryView struct {
	PaymentID  uint64    `json:"payment_id"`
	OrderID    uint64    `json:"order_id"`
	TableName  string    `json:"table_name"`
	Method     string    `json:"method"`
	PaidAmount int64     `json:"paid_amount"`
	PaidAt     time.Time `json:"paid_at"`
}

// ListPayments returns payments since ?since= (RFC3339 or YYYY-MM-DD),
// defaulting to the start of today UTC, newest first, with the running
// total the cashier reconciles the drawer against. Paid order detail
// is served by the order handler; this view is the drawer-level sum.
func (h *HistoryHandler) ListPayments(c echo.Context) error {
	since := time.Now().UTC().Truncate(24 * time.Hour)
	if raw := c.QueryParam("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			parsed, err = time.Parse("2006-01-02", raw)
		}
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid since"})
		}
		since = parsed.UTC()
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	entries, err := h.Payments.ListSince(ctx, since)
	if err != nil {
		return fail(c, err)
	}
	out := make([]historyEntryView, 0, len(entries))
	var total int64
	for _, e := range entries {
		out = append(out, historyEntryView{
			PaymentID: e.ID, OrderID: e.OrderID, TableName: e.TableName,
			Method: e.Method, PaidAmount: e.PaidAmount, PaidAt: e.PaidAt,
		})
		total += e.PaidAmount
	}
	return c.JSON(http.StatusOK, echo.Map{
		"since":    since,
		"payments": out,
		"total":    total,
	})
}
