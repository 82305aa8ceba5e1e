package service

import (
	"context"
	"sync"

	"github.com/minhvo/cafe-pos/internal/model"
	"github.com/minhvo/cafe-pos/internal/repository"
)

// memStore backs in-memory implementations of the store interfaces.
// Each store method holds the mutex for its whole body, which is
// exactly the atomicity the real repositories get from unique keys and
// row locks; the races the services must survive happen between store
// calls, not inside them. Hooks allow tests to inject conflicts and
// outages. TableStore and OrderStore both name their lookup Get, so
// the interfaces are implemented by small wrapper types sharing one
// memStore.
type memStore struct {
	mu          sync.Mutex
	tables      map[uint64]model.Table
	orders      map[uint64]model.Order
	openByTable map[uint64]uint64
	lines       map[uint64]model.OrderLine
	lineIDs     map[[2]uint64]uint64 // (orderID, itemID) -> lineID
	payments    map[uint64]model.Payment
	nextID      uint64

	insertOpenHook func() error
	upsertHook     func() error
	finalizeHook   func() error
}

func newMemStore() *memStore {
	return &memStore{
		tables:      make(map[uint64]model.Table),
		orders:      make(map[uint64]model.Order),
		openByTable: make(map[uint64]uint64),
		lines:       make(map[uint64]model.OrderLine),
		lineIDs:     make(map[[2]uint64]uint64),
		payments:    make(map[uint64]model.Payment),
	}
}

func (m *memStore) addTable(name string) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.tables[m.nextID] = model.Table{ID: m.nextID, AreaID: 1, Name: name, Status: model.TableEmpty}
	return m.nextID
}

type memTables struct{ s *memStore }
type memOrders struct{ s *memStore }
type memLines struct{ s *memStore }
type memCheckout struct{ s *memStore }

var (
	_ TableStore    = memTables{}
	_ OrderStore    = memOrders{}
	_ LineStore     = memLines{}
	_ CheckoutStore = memCheckout{}
)

func (m memTables) Get(_ context.Context, id uint64) (model.Table, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	t, ok := m.s.tables[id]
	if !ok {
		return model.Table{}, repository.ErrNotFound
	}
	return t, nil
}

func (m memTables) SetStatus(_ context.Context, id uint64, status string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	t, ok := m.s.tables[id]
	if !ok {
		return repository.ErrNotFound
	}
	t.Status = status
	m.s.tables[id] = t
	return nil
}

func (m memOrders) InsertOpen(_ context.Context, tableID uint64, tableName string) (model.Order, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.insertOpenHook != nil {
		if err := m.s.insertOpenHook(); err != nil {
			return model.Order{}, err
		}
	}
	if _, taken := m.s.openByTable[tableID]; taken {
		return model.Order{}, repository.ErrConflict
	}
	m.s.nextID++
	o := model.Order{ID: m.s.nextID, TableID: tableID, TableName: tableName, Status: model.OrderOpen}
	m.s.orders[o.ID] = o
	m.s.openByTable[tableID] = o.ID
	return o, nil
}

func (m memOrders) FindOpen(_ context.Context, tableID uint64) (model.Order, bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	id, ok := m.s.openByTable[tableID]
	if !ok {
		return model.Order{}, false, nil
	}
	return m.s.orders[id], true, nil
}

func (m memOrders) Get(_ context.Context, id uint64) (model.Order, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	o, ok := m.s.orders[id]
	if !ok {
		return model.Order{}, repository.ErrNotFound
	}
	return o, nil
}

func (m memLines) UpsertIncrement(_ context.Context, orderID, itemID uint64, itemName string, unitPrice int64) (model.OrderLine, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.upsertHook != nil {
		if err := m.s.upsertHook(); err != nil {
			return model.OrderLine{}, err
		}
	}
	o, ok := m.s.orders[orderID]
	if !ok || o.Status != model.OrderOpen {
		return model.OrderLine{}, repository.ErrNotFound
	}
	key := [2]uint64{orderID, itemID}
	if id, exists := m.s.lineIDs[key]; exists {
		ln := m.s.lines[id]
		ln.Quantity++
		ln.Amount = ln.UnitPrice * ln.Quantity
		m.s.lines[id] = ln
		return ln, nil
	}
	m.s.nextID++
	ln := model.OrderLine{
		ID: m.s.nextID, OrderID: orderID, ItemID: itemID,
		ItemName: itemName, UnitPrice: unitPrice, Quantity: 1, Amount: unitPrice,
	}
	m.s.lines[ln.ID] = ln
	m.s.lineIDs[key] = ln.ID
	return ln, nil
}

func (m memLines) Adjust(_ context.Context, lineID uint64, delta int64) (model.OrderLine, bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	ln, ok := m.s.lines[lineID]
	if !ok {
		return model.OrderLine{}, false, repository.ErrNotFound
	}
	ln.Quantity += delta
	if ln.Quantity <= 0 {
		delete(m.s.lines, lineID)
		delete(m.s.lineIDs, [2]uint64{ln.OrderID, ln.ItemID})
		return model.OrderLine{}, true, nil
	}
	ln.Amount = ln.UnitPrice * ln.Quantity
	m.s.lines[lineID] = ln
	return ln, false, nil
}

func (m memLines) ListByOrder(_ context.Context, orderID uint64) ([]model.OrderLine, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	out := make([]model.OrderLine, 0)
	for _, ln := range m.s.lines {
		if ln.OrderID == orderID {
			out = append(out, ln)
		}
	}
	return out, nil
}

func (m memCheckout) Finalize(_ context.Context, orderID uint64, method string) (model.Payment, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.finalizeHook != nil {
		if err := m.s.finalizeHook(); err != nil {
			return model.Payment{}, err
		}
	}
	o, ok := m.s.orders[orderID]
	if !ok {
		return model.Payment{}, repository.ErrNotFound
	}
	if o.Status != model.OrderOpen {
		return model.Payment{}, repository.ErrAlreadyPaid
	}
	var total int64
	var count int
	for _, ln := range m.s.lines {
		if ln.OrderID == orderID {
			total += ln.Amount
			count++
		}
	}
	if count == 0 {
		return model.Payment{}, repository.ErrEmptyOrder
	}
	o.Status = model.OrderPaid
	m.s.orders[orderID] = o
	delete(m.s.openByTable, o.TableID)
	t := m.s.tables[o.TableID]
	t.Status = model.TableEmpty
	m.s.tables[o.TableID] = t
	m.s.nextID++
	p := model.Payment{ID: m.s.nextID, OrderID: orderID, Method: method, PaidAmount: total}
	m.s.payments[orderID] = p
	return p, nil
}
