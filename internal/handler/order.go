package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/minhvo/cafe-pos/internal/config"
	"github.com/minhvo/cafe-pos/internal/model"
	"github.com/minhvo/cafe-pos/internal/queue"
	"github.com/minhvo/cafe-pos/internal/repository"
	"github.com/minhvo/cafe-pos/internal/service"
)

// Catalog is the read-only slice of the menu the order flow needs.
type Catalog interface {
	GetItem(ctx context.Context, id uint64) (model.MenuItem, error)
}

// PaymentReader looks up the payment settled against an order.
type PaymentReader interface {
	GetByOrder(ctx context.Context, orderID uint64) (model.Payment, error)
}

var (
	_ Catalog       = (*repository.MenuRepo)(nil)
	_ PaymentReader = (*repository.PaymentRepo)(nil)
)

// OrderHandler exposes the order lifecycle: open a table, build the
// order line by line, check out. It composes the services that carry
// the concurrency guarantees and only does HTTP translation itself.
type OrderHandler struct {
	Cfg      config.Config
	Registry *service.TableRegistry
	Orders   *service.OrderManager
	Lines    *service.LineBook
	Checkout *service.PaymentFinalizer
	Menu     Catalog
	Payments PaymentReader
}

func NewOrderHandler(
	cfg config.Config,
	registry *service.TableRegistry,
	orders *service.OrderManager,
	lines *service.LineBook,
	checkout *service.PaymentFinalizer,
	menu Catalog,
	payments PaymentReader,
) *OrderHandler {
	return &OrderHandler{
		Cfg:      cfg,
		Registry: registry,
		Orders:   orders,
		Lines:    lines,
		Checkout: checkout,
		Menu:     menu,
		Payments: payments,
	}
}

// ----- DTOs -----

type addItemReq struct {
	ItemID uint64 `json:"item_id"`
}
type changeLineReq struct {
	Delta int64 `json:"delta"`
}
type checkoutReq struct {
	Method string `json:"method"` // CASH | TRANSFER
}

type lineView struct {
	ID        uint64 `json:"id"`
	ItemID    uint64 `json:"item_id"`
	ItemName  string `json:"item_name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int64  `json:"quantity"`
	Amount    int64  `json:"amount"`
}
type orderView struct {
	ID        uint64     `json:"id"`
	TableID   uint64     `json:"table_id"`
	TableName string     `json:"table_name"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	Lines     []lineView `json:"lines"`
	Total     int64      `json:"total"`
}
type paymentView struct {
	ID         uint64    `json:"id"`
	OrderID    uint64    `json:"order_id"`
	Method     string    `json:"method"`
	PaidAmount int64     `json:"paid_amount"`
	PaidAt     time.Time `json:"paid_at"`
}

func toLineViews(lines []model.OrderLine) []lineView {
	out := make([]lineView, 0, len(lines))
	for _, ln := range lines {
		out = append(out, lineView{
			ID: ln.ID, ItemID: ln.ItemID, ItemName: ln.ItemName,
			UnitPrice: ln.UnitPrice, Quantity: ln.Quantity, Amount: ln.Amount,
		})
	}
	return out
}

func (h *OrderHandler) orderView(ctx context.Context, o model.Order) (orderView, error) {
	lines, err := h.Lines.Lines(ctx, o.ID)
	if err != nil {
		return orderView{}, err
	}
	v := orderView{
		ID: o.ID, TableID: o.TableID, TableName: o.TableName,
		Status: o.Status, CreatedAt: o.CreatedAt, Lines: toLineViews(lines),
	}
	for _, ln := range v.Lines {
		v.Total += ln.Amount
	}
	return v, nil
}

// OpenTable marks the table IN_USE and returns its open order,
// creating one when none exists. Any number of terminals can hit this
// for the same table and they all land on the same order.
func (h *OrderHandler) OpenTable(c echo.Context) error {
	tableID, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Registry.Occupy(ctx, tableID); err != nil {
		return fail(c, err)
	}
	o, err := h.Orders.EnsureOpenOrder(ctx, tableID)
	if err != nil {
		return fail(c, err)
	}
	v, err := h.orderView(ctx, o)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

// GetOrder returns an order with its lines and total; for a paid order
// the payment is attached.
func (h *OrderHandler) GetOrder(c echo.Context) error {
	orderID, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	o, err := h.Orders.GetOrder(ctx, orderID)
	if err != nil {
		return fail(c, err)
	}
	v, err := h.orderView(ctx, o)
	if err != nil {
		return fail(c, err)
	}
	if o.Status != model.OrderPaid {
		return c.JSON(http.StatusOK, v)
	}
	p, err := h.Payments.GetByOrder(ctx, orderID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"order": v,
		"payment": paymentView{
			ID: p.ID, OrderID: p.OrderID, Method: p.Method,
			PaidAmount: p.PaidAmount, PaidAt: p.PaidAt,
		},
	})
}

// AddItem puts one unit of a catalog item on the order. The item's
// current name and price are snapshotted onto the line; a repeated tap
// of the same item bumps the existing line instead of adding a row.
func (h *OrderHandler) AddItem(c echo.Context) error {
	orderID, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	var req addItemReq
	if err := c.Bind(&req); err != nil || req.ItemID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "item_id required"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	it, err := h.Menu.GetItem(ctx, req.ItemID)
	if err != nil {
		return fail(c, err)
	}
	if !it.IsActive {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "item is not sellable"})
	}

	ln, err := h.Lines.AddItem(ctx, orderID, it.ID, it.Name, it.UnitPrice)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, lineView{
		ID: ln.ID, ItemID: ln.ItemID, ItemName: ln.ItemName,
		UnitPrice: ln.UnitPrice, Quantity: ln.Quantity, Amount: ln.Amount,
	})
}

// ChangeLine applies a quantity delta to a line. Dropping to zero or
// below removes the line; removing an already-removed line is a benign
// no-op so two cashiers can both hit minus on the last unit.
func (h *OrderHandler) ChangeLine(c echo.Context) error {
	lineID, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid line id"})
	}
	var req changeLineReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ln, removed, err := h.Lines.ChangeQuantity(ctx, lineID, req.Delta)
	if err != nil {
		return fail(c, err)
	}
	if removed {
		return c.JSON(http.StatusOK, echo.Map{"removed": true})
	}
	return c.JSON(http.StatusOK, lineView{
		ID: ln.ID, ItemID: ln.ItemID, ItemName: ln.ItemName,
		UnitPrice: ln.UnitPrice, Quantity: ln.Quantity, Amount: ln.Amount,
	})
}

// CheckoutOrder settles the order: payment recorded, order closed,
// table freed, atomically. On success a payment.recorded event goes to
// the broker; the event is advisory and its failure never fails the
// checkout.
func (h *OrderHandler) CheckoutOrder(c echo.Context) error {
	orderID, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	var req checkoutReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	p, err := h.Checkout.Finalize(ctx, orderID, req.Method)
	if err != nil {
		return fail(c, err)
	}

	if h.Cfg.AMQPURL != "" {
		o, err := h.Orders.GetOrder(ctx, orderID)
		if err == nil {
			ev := queue.PaymentRecordedEvent{
				PaymentID:  p.ID,
				OrderID:    p.OrderID,
				TableID:    o.TableID,
				TableName:  o.TableName,
				Method:     p.Method,
				PaidAmount: p.PaidAmount,
				PaidAt:     p.PaidAt.Format(time.RFC3339),
			}
			if uid, err := getUserID(c); err == nil {
				ev.CashierID = uid
			}
			go func() {
				pubCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				_ = queue.PublishPaymentRecorded(pubCtx, h.Cfg.AMQPURL, ev)
			}()
		}
	}

	return c.JSON(http.StatusOK, paymentView{
		ID: p.ID, OrderID: p.OrderID, Method: p.Method,
		PaidAmount: p.PaidAmount, PaidAt: p.PaidAt,
	})
}
