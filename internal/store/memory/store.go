package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/JarviousX/yogitrack-studio-management/internal/models"
	"github.com/JarviousX/yogitrack-studio-management/internal/store"
)

// compile-time interface check
var _ store.Store = (*Store)(nil)

type row[T any] struct {
	v   *T
	seq int64
}

// table keeps private copies: values are cloned on the way in and out, so a
// stored pointer is never mutated and a shallow map copy is a full snapshot.
type table[T any] struct {
	entity string
	clone  func(*T) *T
	rows   map[string]row[T]
}

func newTable[T any](entity string, clone func(*T) *T) *table[T] {
	return &table[T]{entity: entity, clone: clone, rows: make(map[string]row[T])}
}

func (t *table[T]) insert(seq int64, id string, v *T) error {
	if id == "" {
		return fmt.Errorf("yogitrack/memory: insert %s: empty id", t.entity)
	}
	if _, ok := t.rows[id]; ok {
		return fmt.Errorf("yogitrack/memory: insert %s: duplicate id %s", t.entity, id)
	}
	t.rows[id] = row[T]{v: t.clone(v), seq: seq}
	return nil
}

func (t *table[T]) get(id string) (*T, error) {
	r, ok := t.rows[id]
	if !ok {
		return nil, models.NotFound(t.entity)
	}
	return t.clone(r.v), nil
}

func (t *table[T]) update(id string, v *T) error {
	r, ok := t.rows[id]
	if !ok {
		return models.NotFound(t.entity)
	}
	t.rows[id] = row[T]{v: t.clone(v), seq: r.seq}
	return nil
}

func (t *table[T]) delete(id string) error {
	if _, ok := t.rows[id]; !ok {
		return models.NotFound(t.entity)
	}
	delete(t.rows, id)
	return nil
}

func (t *table[T]) list(match func(*T) bool) []*T {
	rows := make([]row[T], 0, len(t.rows))
	for _, r := range t.rows {
		if match(r.v) {
			rows = append(rows, r)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })
	out := make([]*T, len(rows))
	for i, r := range rows {
		out[i] = t.clone(r.v)
	}
	return out
}

func (t *table[T]) snapshot() map[string]row[T] {
	cp := make(map[string]row[T], len(t.rows))
	for k, v := range t.rows {
		cp[k] = v
	}
	return cp
}

type state struct {
	mu  sync.RWMutex
	seq int64

	instructors *table[models.Instructor]
	classes     *table[models.Class]
	customers   *table[models.Customer]
	packages    *table[models.Package]
	sales       *table[models.Sale]
	attendance  *table[models.Attendance]
	counters    map[string]int64
}

type snapshot struct {
	instructors map[string]row[models.Instructor]
	classes     map[string]row[models.Class]
	customers   map[string]row[models.Customer]
	packages    map[string]row[models.Package]
	sales       map[string]row[models.Sale]
	attendance  map[string]row[models.Attendance]
	counters    map[string]int64
}

func (st *state) snapshot() snapshot {
	st.mu.RLock()
	defer st.mu.RUnlock()
	counters := make(map[string]int64, len(st.counters))
	for k, v := range st.counters {
		counters[k] = v
	}
	return snapshot{
		instructors: st.instructors.snapshot(),
		classes:     st.classes.snapshot(),
		customers:   st.customers.snapshot(),
		packages:    st.packages.snapshot(),
		sales:       st.sales.snapshot(),
		attendance:  st.attendance.snapshot(),
		counters:    counters,
	}
}

func (st *state) restore(s snapshot) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.instructors.rows = s.instructors
	st.classes.rows = s.classes
	st.customers.rows = s.customers
	st.packages.rows = s.packages
	st.sales.rows = s.sales
	st.attendance.rows = s.attendance
	st.counters = s.counters
}

// Store is an in-process store.Store. Writes are serialized with running
// transactions so a rollback never discards a concurrent commit.
type Store struct {
	st   *state
	txMu *sync.Mutex
	inTx bool
}

func New() *Store {
	return &Store{
		st: &state{
			instructors: newTable(models.EntityInstructor, (*models.Instructor).Clone),
			classes:     newTable(models.EntityClass, (*models.Class).Clone),
			customers:   newTable(models.EntityCustomer, (*models.Customer).Clone),
			packages:    newTable(models.EntityPackage, (*models.Package).Clone),
			sales:       newTable(models.EntitySale, (*models.Sale).Clone),
			attendance:  newTable(models.EntityAttendance, (*models.Attendance).Clone),
			counters:    make(map[string]int64),
		},
		txMu: &sync.Mutex{},
	}
}

func (s *Store) writeLock() func() {
	if s.inTx {
		return func() {}
	}
	s.txMu.Lock()
	return s.txMu.Unlock
}

func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx store.Store) error) error {
	if s.inTx {
		return fn(ctx, s)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.st.snapshot()
	tx := &Store{st: s.st, txMu: s.txMu, inTx: true}
	if err := fn(ctx, tx); err != nil {
		s.st.restore(snap)
		return err
	}
	return nil
}

func (s *Store) NextSequence(_ context.Context, kind string) (int64, error) {
	defer s.writeLock()()
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	s.st.counters[kind]++
	return s.st.counters[kind], nil
}

func (s *Store) Migrate(context.Context) error { return nil }
func (s *Store) Ping(context.Context) error    { return nil }
func (s *Store) Close() error                  { return nil }

// insertRow and friends hold the locks around a single table operation.
func insertRow[T any](s *Store, t *table[T], id string, v *T) error {
	defer s.writeLock()()
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	s.st.seq++
	return t.insert(s.st.seq, id, v)
}

func getRow[T any](s *Store, t *table[T], id string) (*T, error) {
	s.st.mu.RLock()
	defer s.st.mu.RUnlock()
	return t.get(id)
}

func updateRow[T any](s *Store, t *table[T], id string, v *T) error {
	defer s.writeLock()()
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	return t.update(id, v)
}

func deleteRow[T any](s *Store, t *table[T], id string) error {
	defer s.writeLock()()
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	return t.delete(id)
}

func listRows[T any](s *Store, t *table[T], match func(*T) bool) []*T {
	s.st.mu.RLock()
	defer s.st.mu.RUnlock()
	return t.list(match)
}

// ==================== Instructors ====================

func (s *Store) CreateInstructor(_ context.Context, i *models.Instructor) error {
	return insertRow(s, s.st.instructors, i.ID, i)
}

func (s *Store) GetInstructor(_ context.Context, id string) (*models.Instructor, error) {
	return getRow(s, s.st.instructors, id)
}

func (s *Store) ListInstructors(_ context.Context, f models.InstructorFilter) ([]*models.Instructor, error) {
	return listRows(s, s.st.instructors, f.Match), nil
}

func (s *Store) UpdateInstructor(_ context.Context, i *models.Instructor) error {
	return updateRow(s, s.st.instructors, i.ID, i)
}

func (s *Store) DeleteInstructor(_ context.Context, id string) error {
	return deleteRow(s, s.st.instructors, id)
}

// ==================== Classes ====================

func (s *Store) CreateClass(_ context.Context, c *models.Class) error {
	return insertRow(s, s.st.classes, c.ID, c)
}

func (s *Store) GetClass(_ context.Context, id string) (*models.Class, error) {
	return getRow(s, s.st.classes, id)
}

func (s *Store) ListClasses(_ context.Context, f models.ClassFilter) ([]*models.Class, error) {
	return listRows(s, s.st.classes, f.Match), nil
}

func (s *Store) UpdateClass(_ context.Context, c *models.Class) error {
	return updateRow(s, s.st.classes, c.ID, c)
}

func (s *Store) DeleteClass(_ context.Context, id string) error {
	return deleteRow(s, s.st.classes, id)
}

// ==================== Customers ====================

func (s *Store) CreateCustomer(_ context.Context, c *models.Customer) error {
	return insertRow(s, s.st.customers, c.ID, c)
}

func (s *Store) GetCustomer(_ context.Context, id string) (*models.Customer, error) {
	return getRow(s, s.st.customers, id)
}

func (s *Store) ListCustomers(_ context.Context, f models.CustomerFilter) ([]*models.Customer, error) {
	return listRows(s, s.st.customers, f.Match), nil
}

func (s *Store) UpdateCustomer(_ context.Context, c *models.Customer) error {
	return updateRow(s, s.st.customers, c.ID, c)
}

func (s *Store) DeleteCustomer(_ context.Context, id string) error {
	return deleteRow(s, s.st.customers, id)
}

// ==================== Packages ====================

func (s *Store) CreatePackage(_ context.Context, p *models.Package) error {
	return insertRow(s, s.st.packages, p.ID, p)
}

func (s *Store) GetPackage(_ context.Context, id string) (*models.Package, error) {
	return getRow(s, s.st.packages, id)
}

func (s *Store) ListPackages(_ context.Context, f models.PackageFilter) ([]*models.Package, error) {
	return listRows(s, s.st.packages, f.Match), nil
}

func (s *Store) UpdatePackage(_ context.Context, p *models.Package) error {
	return updateRow(s, s.st.packages, p.ID, p)
}

func (s *Store) DeletePackage(_ context.Context, id string) error {
	return deleteRow(s, s.st.packages, id)
}

// ==================== Sales ====================

func (s *Store) CreateSale(_ context.Context, sale *models.Sale) error {
	return insertRow(s, s.st.sales, sale.ID, sale)
}

func (s *Store) GetSale(_ context.Context, id string) (*models.Sale, error) {
	return getRow(s, s.st.sales, id)
}

func (s *Store) ListSales(_ context.Context, f models.SaleFilter) ([]*models.Sale, error) {
	return listRows(s, s.st.sales, f.Match), nil
}

func (s *Store) UpdateSale(_ context.Context, sale *models.Sale) error {
	return updateRow(s, s.st.sales, sale.ID, sale)
}

func (s *Store) DeleteSale(_ context.Context, id string) error {
	return deleteRow(s, s.st.sales, id)
}

func (s *Store) FindActiveSale(_ context.Context, customerID string, at time.Time) (*models.Sale, error) {
	candidates := listRows(s, s.st.sales, func(sale *models.Sale) bool {
		return sale.Customer == customerID && sale.ActiveAt(at)
	})
	var best *models.Sale
	for _, sale := range candidates {
		if best == nil || models.PreferActiveSale(sale, best) {
			best = sale
		}
	}
	return best, nil
}

// ==================== Attendance ====================

func (s *Store) CreateAttendance(_ context.Context, a *models.Attendance) error {
	return insertRow(s, s.st.attendance, a.ID, a)
}

func (s *Store) GetAttendance(_ context.Context, id string) (*models.Attendance, error) {
	return getRow(s, s.st.attendance, id)
}

func (s *Store) ListAttendance(_ context.Context, f models.AttendanceFilter) ([]*models.Attendance, error) {
	return listRows(s, s.st.attendance, f.Match), nil
}

func (s *Store) UpdateAttendance(_ context.Context, a *models.Attendance) error {
	return updateRow(s, s.st.attendance, a.ID, a)
}

func (s *Store) DeleteAttendance(_ context.Context, id string) error {
	return deleteRow(s, s.st.attendance, id)
}
