package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhvo/cafe-pos/internal/config"
	"github.com/minhvo/cafe-pos/internal/model"
	"github.com/minhvo/cafe-pos/internal/repository"
	"github.com/minhvo/cafe-pos/internal/service"
)

// posStore is an in-memory backend for the order flow. Methods take
// the mutex for their whole body, mirroring the atomicity the real
// repositories get from unique keys and transactions.
type posStore struct {
	mu          sync.Mutex
	tables      map[uint64]model.Table
	orders      map[uint64]model.Order
	openByTable map[uint64]uint64
	lines       map[uint64]model.OrderLine
	lineIDs     map[[2]uint64]uint64
	payments    map[uint64]model.Payment
	items       map[uint64]model.MenuItem
	nextID      uint64
}

func newPosStore() *posStore {
	return &posStore{
		tables:      make(map[uint64]model.Table),
		orders:      make(map[uint64]model.Order),
		openByTable: make(map[uint64]uint64),
		lines:       make(map[uint64]model.OrderLine),
		lineIDs:     make(map[[2]uint64]uint64),
		payments:    make(map[uint64]model.Payment),
		items:       make(map[uint64]model.MenuItem),
	}
}

func (s *posStore) addTable(name string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.tables[s.nextID] = model.Table{ID: s.nextID, AreaID: 1, Name: name, Status: model.TableEmpty}
	return s.nextID
}

func (s *posStore) addItem(name string, price int64, active bool) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.items[s.nextID] = model.MenuItem{ID: s.nextID, GroupID: 1, Name: name, UnitPrice: price, IsActive: active}
	return s.nextID
}

// TableStore and OrderStore both name their lookup Get, so thin
// wrappers implement the service interfaces over one posStore.
type posTables struct{ s *posStore }
type posOrders struct{ s *posStore }
type posLines struct{ s *posStore }
type posCheckout struct{ s *posStore }

var (
	_ service.TableStore    = posTables{}
	_ service.OrderStore    = posOrders{}
	_ service.LineStore     = posLines{}
	_ service.CheckoutStore = posCheckout{}
	_ Catalog               = (*posStore)(nil)
	_ PaymentReader         = (*posStore)(nil)
)

func (w posTables) Get(_ context.Context, id uint64) (model.Table, error) {
	w.s.mu.Lock()
	defer w.s.mu.Unlock()
	t, ok := w.s.tables[id]
	if !ok {
		return model.Table{}, repository.ErrNotFound
	}
	return t, nil
}

func (w posTables) SetStatus(_ context.Context, id uint64, status string) error {
	w.s.mu.Lock()
	defer w.s.mu.Unlock()
	t, ok := w.s.tables[id]
	if !ok {
		return repository.ErrNotFound
	}
	t.Status = status
	w.s.tables[id] = t
	return nil
}

func (w posOrders) InsertOpen(_ context.Context, tableID uint64, tableName string) (model.Order, error) {
	w.s.mu.Lock()
	defer w.s.mu.Unlock()
	if _, taken := w.s.openByTable[tableID]; taken {
		return model.Order{}, repository.ErrConflict
	}
	w.s.nextID++
	o := model.Order{ID: w.s.nextID, TableID: tableID, TableName: tableName, Status: model.OrderOpen, CreatedAt: time.Now().UTC()}
	w.s.orders[o.ID] = o
	w.s.openByTable[tableID] = o.ID
	return o, nil
}

func (w posOrders) FindOpen(_ context.Context, tableID uint64) (model.Order, bool, error) {
	w.s.mu.Lock()
	defer w.s.mu.Unlock()
	id, ok := w.s.openByTable[tableID]
	if !ok {
		return model.Order{}, false, nil
	}
	return w.s.orders[id], true, nil
}

func (w posOrders) Get(_ context.Context, id uint64) (model.Order, error) {
	w.s.mu.Lock()
	defer w.s.mu.Unlock()
	o, ok := w.s.orders[id]
	if !ok {
		return model.Order{}, repository.ErrNotFound
	}
	return o, nil
}

func (w posLines) UpsertIncrement(_ context.Context, orderID, itemID uint64, itemName string, unitPrice int64) (model.OrderLine, error) {
	w.s.mu.Lock()
	defer w.s.mu.Unlock()
	o, ok := w.s.orders[orderID]
	if !ok || o.Status != model.OrderOpen {
		return model.OrderLine{}, repository.ErrNotFound
	}
	key := [2]uint64{orderID, itemID}
	if id, exists := w.s.lineIDs[key]; exists {
		ln := w.s.lines[id]
		ln.Quantity++
		ln.Amount = ln.UnitPrice * ln.Quantity
		w.s.lines[id] = ln
		return ln, nil
	}
	w.s.nextID++
	ln := model.OrderLine{
		ID: w.s.nextID, OrderID: orderID, ItemID: itemID,
		ItemName: itemName, UnitPrice: unitPrice, Quantity: 1, Amount: unitPrice,
	}
	w.s.lines[ln.ID] = ln
	w.s.lineIDs[key] = ln.ID
	return ln, nil
}

func (w posLines) Adjust(_ context.Context, lineID uint64, delta int64) (model.OrderLine, bool, error) {
	w.s.mu.Lock()
	defer w.s.mu.Unlock()
	ln, ok := w.s.lines[lineID]
	if !ok {
		return model.OrderLine{}, false, repository.ErrNotFound
	}
	ln.Quantity += delta
	if ln.Quantity <= 0 {
		delete(w.s.lines, lineID)
		delete(w.s.lineIDs, [2]uint64{ln.OrderID, ln.ItemID})
		return model.OrderLine{}, true, nil
	}
	ln.Amount = ln.UnitPrice * ln.Quantity
	w.s.lines[lineID] = ln
	return ln, false, nil
}

func (w posLines) ListByOrder(_ context.Context, orderID uint64) ([]model.OrderLine, error) {
	w.s.mu.Lock()
	defer w.s.mu.Unlock()
	out := make([]model.OrderLine, 0)
	for _, ln := range w.s.lines {
		if ln.OrderID == orderID {
			out = append(out, ln)
		}
	}
	return out, nil
}

func (w posCheckout) Finalize(_ context.Context, orderID uint64, method string) (model.Payment, error) {
	w.s.mu.Lock()
	defer w.s.mu.Unlock()
	o, ok := w.s.orders[orderID]
	if !ok {
		return model.Payment{}, repository.ErrNotFound
	}
	if o.Status != model.OrderOpen {
		return model.Payment{}, repository.ErrAlreadyPaid
	}
	var total int64
	var count int
	for _, ln := range w.s.lines {
		if ln.OrderID == orderID {
			total += ln.Amount
			count++
		}
	}
	if count == 0 {
		return model.Payment{}, repository.ErrEmptyOrder
	}
	o.Status = model.OrderPaid
	w.s.orders[orderID] = o
	delete(w.s.openByTable, o.TableID)
	t := w.s.tables[o.TableID]
	t.Status = model.TableEmpty
	w.s.tables[o.TableID] = t
	w.s.nextID++
	p := model.Payment{ID: w.s.nextID, OrderID: orderID, Method: method, PaidAmount: total, PaidAt: time.Now().UTC()}
	w.s.payments[orderID] = p
	return p, nil
}

func (s *posStore) GetItem(_ context.Context, id uint64) (model.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[id]
	if !ok {
		return model.MenuItem{}, repository.ErrNotFound
	}
	return it, nil
}

func (s *posStore) GetByOrder(_ context.Context, orderID uint64) (model.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[orderID]
	if !ok {
		return model.Payment{}, repository.ErrNotFound
	}
	return p, nil
}

func newOrderHandler(s *posStore) *OrderHandler {
	return NewOrderHandler(
		config.Config{},
		service.NewTableRegistry(posTables{s}),
		service.NewOrderManager(posTables{s}, posOrders{s}),
		service.NewLineBook(posLines{s}),
		service.NewPaymentFinalizer(posCheckout{s}),
		s, s,
	)
}

// do runs an echo request against a handler method with the given
// path params and JSON body.
func do(t *testing.T, h echo.HandlerFunc, method, body string, params map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	names := make([]string, 0, len(params))
	values := make([]string, 0, len(params))
	for k, v := range params {
		names = append(names, k)
		values = append(values, v)
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)
	require.NoError(t, h(c))
	return rec
}

func TestOpenTableCreatesOrder(t *testing.T) {
	s := newPosStore()
	tableID := s.addTable("A1")
	h := newOrderHandler(s)

	rec := do(t, h.OpenTable, http.MethodPost, "", map[string]string{"id": "1"})
	require.Equal(t, http.StatusOK, rec.Code)

	var v orderView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	assert.Equal(t, tableID, v.TableID)
	assert.Equal(t, "A1", v.TableName)
	assert.Equal(t, model.OrderOpen, v.Status)
	assert.Empty(t, v.Lines)
	assert.Zero(t, v.Total)

	assert.Equal(t, model.TableInUse, s.tables[tableID].Status)

	// Opening again returns the same order.
	rec = do(t, h.OpenTable, http.MethodPost, "", map[string]string{"id": "1"})
	require.Equal(t, http.StatusOK, rec.Code)
	var again orderView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &again))
	assert.Equal(t, v.ID, again.ID)
}

func TestOpenTableUnknown(t *testing.T) {
	s := newPosStore()
	h := newOrderHandler(s)

	rec := do(t, h.OpenTable, http.MethodPost, "", map[string]string{"id": "99"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAddItemSnapshotsAndMerges(t *testing.T) {
	s := newPosStore()
	s.addTable("A1")
	s.addItem("Cà phê đen", 20000, true)
	h := newOrderHandler(s)

	rec := do(t, h.OpenTable, http.MethodPost, "", map[string]string{"id": "1"})
	var o orderView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &o))
	require.EqualValues(t, 3, o.ID)

	body := `{"item_id": 2}`
	orderParam := map[string]string{"id": "3"}

	rec = do(t, h.AddItem, http.MethodPost, body, orderParam)
	require.Equal(t, http.StatusOK, rec.Code)
	var ln lineView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ln))
	assert.Equal(t, "Cà phê đen", ln.ItemName)
	assert.EqualValues(t, 20000, ln.UnitPrice)
	assert.EqualValues(t, 1, ln.Quantity)

	rec = do(t, h.AddItem, http.MethodPost, body, orderParam)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ln))
	assert.EqualValues(t, 2, ln.Quantity)
	assert.EqualValues(t, 40000, ln.Amount)
}

func TestAddItemInactive(t *testing.T) {
	s := newPosStore()
	s.addTable("A1")
	s.addItem("Món cũ", 15000, false)
	h := newOrderHandler(s)

	do(t, h.OpenTable, http.MethodPost, "", map[string]string{"id": "1"})
	rec := do(t, h.AddItem, http.MethodPost, `{"item_id": 2}`, map[string]string{"id": "3"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestChangeLineRemoves(t *testing.T) {
	s := newPosStore()
	s.addTable("A1")
	s.addItem("Trà đá", 5000, true)
	h := newOrderHandler(s)

	do(t, h.OpenTable, http.MethodPost, "", map[string]string{"id": "1"})
	rec := do(t, h.AddItem, http.MethodPost, `{"item_id": 2}`, map[string]string{"id": "3"})
	var ln lineView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ln))

	rec = do(t, h.ChangeLine, http.MethodPatch, `{"delta": -1}`, map[string]string{"id": "4"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"removed": true}`, rec.Body.String())

	// Removing again is still OK.
	rec = do(t, h.ChangeLine, http.MethodPatch, `{"delta": -1}`, map[string]string{"id": "4"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"removed": true}`, rec.Body.String())
}

func TestChangeLineZeroDelta(t *testing.T) {
	s := newPosStore()
	h := newOrderHandler(s)

	rec := do(t, h.ChangeLine, http.MethodPatch, `{"delta": 0}`, map[string]string{"id": "1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckoutFlow(t *testing.T) {
	s := newPosStore()
	tableID := s.addTable("A1")
	s.addItem("Cà phê đen", 20000, true)
	h := newOrderHandler(s)

	do(t, h.OpenTable, http.MethodPost, "", map[string]string{"id": "1"})
	do(t, h.AddItem, http.MethodPost, `{"item_id": 2}`, map[string]string{"id": "3"})
	do(t, h.AddItem, http.MethodPost, `{"item_id": 2}`, map[string]string{"id": "3"})

	rec := do(t, h.CheckoutOrder, http.MethodPost, `{"method": "cash"}`, map[string]string{"id": "3"})
	require.Equal(t, http.StatusOK, rec.Code)
	var p paymentView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, model.PayCash, p.Method)
	assert.EqualValues(t, 40000, p.PaidAmount)

	assert.Equal(t, model.TableEmpty, s.tables[tableID].Status)

	// Double submit conflicts.
	rec = do(t, h.CheckoutOrder, http.MethodPost, `{"method": "cash"}`, map[string]string{"id": "3"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// The paid order now carries its payment.
	rec = do(t, h.GetOrder, http.MethodGet, "", map[string]string{"id": "3"})
	require.Equal(t, http.StatusOK, rec.Code)
	var out struct {
		Order   orderView   `json:"order"`
		Payment paymentView `json:"payment"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, model.OrderPaid, out.Order.Status)
	assert.EqualValues(t, 40000, out.Payment.PaidAmount)
}

func TestCheckoutEmptyOrder(t *testing.T) {
	s := newPosStore()
	s.addTable("A1")
	h := newOrderHandler(s)

	do(t, h.OpenTable, http.MethodPost, "", map[string]string{"id": "1"})
	rec := do(t, h.CheckoutOrder, http.MethodPost, `{"method": "CASH"}`, map[string]string{"id": "2"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCheckoutUnknownMethod(t *testing.T) {
	s := newPosStore()
	s.addTable("A1")
	s.addItem("Trà đá", 5000, true)
	h := newOrderHandler(s)

	do(t, h.OpenTable, http.MethodPost, "", map[string]string{"id": "1"})
	do(t, h.AddItem, http.MethodPost, `{"item_id": 2}`, map[string]string{"id": "3"})
	rec := do(t, h.CheckoutOrder, http.MethodPost, `{"method": "card"}`, map[string]string{"id": "3"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
