package inventory_test

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jhoicas/packaging-ledger/internal/application/inventory"
	"github.com/jhoicas/packaging-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/packaging-ledger/internal/domain/inventory"
	"github.com/jhoicas/packaging-ledger/internal/domain/repository"
)

// memState estado confirmado (o en curso dentro de una unidad de trabajo).
type memState struct {
	records map[domaininv.Pair]entity.InventoryRecord
	txs     []*entity.Transaction
}

func (s memState) clone() memState {
	out := memState{
		records: make(map[domaininv.Pair]entity.InventoryRecord, len(s.records)),
		txs:     append([]*entity.Transaction(nil), s.txs...),
	}
	for k, v := range s.records {
		out.records[k] = v
	}
	return out
}

// memStore almacén en memoria. Run toma un mutex durante toda la unidad de trabajo, equivalente a
// bloquear todas las filas: las transacciones concurrentes se serializan.
type memStore struct {
	mu         sync.Mutex
	committed  memState
	seq        int
	runs       int
	snapshots  int
	warehouses map[string]bool
	packagings map[string]bool

	lookupErr  error
	insertErr  error
	applyErr   error
	getOrCrErr error
}

var (
	_ inventory.TxRunner       = (*memStore)(nil)
	_ inventory.SnapshotRunner = (*memStore)(nil)
)

func newMemStore(warehouses, packagings []string) *memStore {
	s := &memStore{
		committed:  memState{records: map[domaininv.Pair]entity.InventoryRecord{}},
		warehouses: map[string]bool{},
		packagings: map[string]bool{},
	}
	for _, w := range warehouses {
		s.warehouses[w] = true
	}
	for _, p := range packagings {
		s.packagings[p] = true
	}
	return s
}

func (s *memStore) Run(ctx context.Context, fn func(repository.InventoryRepository, repository.TransactionLedger) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs++
	work := s.committed.clone()
	repos := &memRepos{st: &work, store: s}
	if err := fn(repos, repos); err != nil {
		return err
	}
	s.committed = work
	return nil
}

// ReadSnapshot corre fn sobre el estado confirmado con el mutex tomado: ningún Run intercala.
func (s *memStore) ReadSnapshot(ctx context.Context, fn func(repository.InventoryRepository, repository.TransactionLedger) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots++
	repos := &memRepos{st: &s.committed, store: s}
	return fn(repos, repos)
}

func (s *memStore) quantity(packagingID, warehouseID string) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.committed.records[domaininv.Pair{PackagingID: packagingID, WarehouseID: warehouseID}]
	return rec.Quantity, ok
}

func (s *memStore) transactions() []*entity.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*entity.Transaction(nil), s.committed.txs...)
}

func (s *memStore) recordCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.committed.records)
}

// readOnly repos sobre el estado confirmado, para QueryUseCase.
func (s *memStore) readOnly() *lockedRepos { return &lockedRepos{s: s} }

// warehouseLookup / packagingLookup.
type warehouseLookup struct{ s *memStore }
type packagingLookup struct{ s *memStore }

func (l warehouseLookup) Exists(_ context.Context, id string) (bool, error) {
	if l.s.lookupErr != nil {
		return false, l.s.lookupErr
	}
	return l.s.warehouses[id], nil
}

func (l packagingLookup) Exists(_ context.Context, id string) (bool, error) {
	if l.s.lookupErr != nil {
		return false, l.s.lookupErr
	}
	return l.s.packagings[id], nil
}

// memRepos implementa InventoryRepository y TransactionLedger sobre un memState.
type memRepos struct {
	st    *memState
	store *memStore
}

func (r *memRepos) GetOrCreate(_ context.Context, packagingID, warehouseID string) (*entity.InventoryRecord, error) {
	if r.store.getOrCrErr != nil {
		return nil, r.store.getOrCrErr
	}
	p := domaininv.Pair{PackagingID: packagingID, WarehouseID: warehouseID}
	rec, ok := r.st.records[p]
	if !ok {
		rec = entity.InventoryRecord{PackagingID: packagingID, WarehouseID: warehouseID}
		r.st.records[p] = rec
	}
	return &rec, nil
}

func (r *memRepos) ApplyDeltas(_ context.Context, transactionID string) error {
	if r.store.applyErr != nil {
		return r.store.applyErr
	}
	for _, tx := range r.st.txs {
		if tx.ID != transactionID {
			continue
		}
		for _, it := range tx.Items {
			p := domaininv.Pair{PackagingID: it.PackagingID, WarehouseID: it.WarehouseID}
			rec, ok := r.st.records[p]
			if !ok {
				return fmt.Errorf("registro %v no existe", p)
			}
			rec.Quantity += it.SignedQuantity
			r.st.records[p] = rec
		}
		return nil
	}
	return fmt.Errorf("transacción %s no existe", transactionID)
}

func (r *memRepos) Get(_ context.Context, packagingID, warehouseID string) (*entity.InventoryRecord, error) {
	rec, ok := r.st.records[domaininv.Pair{PackagingID: packagingID, WarehouseID: warehouseID}]
	if !ok {
		return &entity.InventoryRecord{PackagingID: packagingID, WarehouseID: warehouseID}, nil
	}
	return &rec, nil
}

func (r *memRepos) ListByWarehouse(_ context.Context, warehouseID string, limit, offset int) ([]*entity.InventoryRecord, error) {
	var list []*entity.InventoryRecord
	for _, rec := range r.st.records {
		if rec.WarehouseID == warehouseID {
			rec := rec
			list = append(list, &rec)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].PackagingID < list[j].PackagingID })
	return page(list, limit, offset), nil
}

func (r *memRepos) Insert(_ context.Context, header *entity.Transaction, items []entity.TransactionItem) (*entity.Transaction, error) {
	if r.store.insertErr != nil {
		return nil, r.store.insertErr
	}
	r.store.seq++
	tx := *header
	tx.ID = fmt.Sprintf("tx-%d", r.store.seq)
	tx.Items = make([]entity.TransactionItem, len(items))
	for i, it := range items {
		it.ID = fmt.Sprintf("%s-%d", tx.ID, i+1)
		it.TransactionID = tx.ID
		tx.Items[i] = it
	}
	r.st.txs = append(r.st.txs, &tx)
	return &tx, nil
}

func (r *memRepos) GetByID(_ context.Context, id string) (*entity.Transaction, error) {
	for _, tx := range r.st.txs {
		if tx.ID == id {
			return tx, nil
		}
	}
	return nil, nil
}

func (r *memRepos) List(_ context.Context, filter repository.TransactionFilter) ([]*entity.Transaction, error) {
	var list []*entity.Transaction
	for _, tx := range r.st.txs {
		if matches(tx, filter.Predicates) {
			list = append(list, tx)
		}
	}
	return page(list, filter.Limit, filter.Offset), nil
}

func (r *memRepos) CompletedItems(_ context.Context, packagingID, warehouseID string) ([]entity.TransactionItem, error) {
	var items []entity.TransactionItem
	for _, tx := range r.st.txs {
		if tx.Status != entity.TransactionStatusCompleted {
			continue
		}
		for _, it := range tx.Items {
			if it.PackagingID == packagingID && it.WarehouseID == warehouseID {
				items = append(items, it)
			}
		}
	}
	return items, nil
}

func matches(tx *entity.Transaction, preds []repository.TransactionPredicate) bool {
	for _, p := range preds {
		switch p := p.(type) {
		case repository.TypeIs:
			if tx.Type != p.Type {
				return false
			}
		case repository.StatusIs:
			if tx.Status != p.Status {
				return false
			}
		case repository.TouchesWarehouse:
			if tx.FromWarehouseID != p.WarehouseID && tx.ToWarehouseID != p.WarehouseID {
				return false
			}
		case repository.HasPackaging:
			found := false
			for _, it := range tx.Items {
				found = found || it.PackagingID == p.PackagingID
			}
			if !found {
				return false
			}
		case repository.DateBetween:
			if p.From != nil && tx.TransactionDate.Before(*p.From) {
				return false
			}
			if p.To != nil && tx.TransactionDate.After(*p.To) {
				return false
			}
		}
	}
	return true
}

func page[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}

// lockedRepos lecturas sobre el estado confirmado.
type lockedRepos struct{ s *memStore }

func (l *lockedRepos) view() *memRepos { return &memRepos{st: &l.s.committed, store: l.s} }

func (l *lockedRepos) GetOrCreate(ctx context.Context, p, w string) (*entity.InventoryRecord, error) {
	panic("solo lectura")
}

func (l *lockedRepos) ApplyDeltas(ctx context.Context, id string) error { panic("solo lectura") }

func (l *lockedRepos) Insert(ctx context.Context, h *entity.Transaction, items []entity.TransactionItem) (*entity.Transaction, error) {
	panic("solo lectura")
}

func (l *lockedRepos) Get(ctx context.Context, p, w string) (*entity.InventoryRecord, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return l.view().Get(ctx, p, w)
}

func (l *lockedRepos) ListByWarehouse(ctx context.Context, w string, limit, offset int) ([]*entity.InventoryRecord, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return l.view().ListByWarehouse(ctx, w, limit, offset)
}

func (l *lockedRepos) GetByID(ctx context.Context, id string) (*entity.Transaction, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return l.view().GetByID(ctx, id)
}

func (l *lockedRepos) List(ctx context.Context, f repository.TransactionFilter) ([]*entity.Transaction, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return l.view().List(ctx, f)
}

func (l *lockedRepos) CompletedItems(ctx context.Context, p, w string) ([]entity.TransactionItem, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return l.view().CompletedItems(ctx, p, w)
}
