package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/JarviousX/yogitrack-studio-management/internal/models"
	"github.com/JarviousX/yogitrack-studio-management/internal/store"
)

// Table name constants. Each table holds one JSONB document per row.
const (
	tblInstructors = "yogitrack_instructors"
	tblClasses     = "yogitrack_classes"
	tblCustomers   = "yogitrack_customers"
	tblPackages    = "yogitrack_packages"
	tblSales       = "yogitrack_sales"
	tblAttendance  = "yogitrack_attendance"
	tblCounters    = "yogitrack_counters"
)

// compile-time interface check
var _ store.Store = (*Store)(nil)

// Store implements store.Store on PostgreSQL through sqlx.
type Store struct {
	db   *sqlx.DB
	q    sqlx.ExtContext
	inTx bool
}

func New(db *sqlx.DB) *Store {
	return &Store{db: db, q: db}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range migrations() {
		if _, err := s.q.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("yogitrack/postgres: migrate: %w", err)
		}
	}
	return nil
}

func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx store.Store) error) error {
	if s.inTx {
		return fn(ctx, s)
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("yogitrack/postgres: begin: %w", err)
	}
	if err := fn(ctx, &Store{db: s.db, q: tx, inTx: true}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("yogitrack/postgres: rollback: %w", rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("yogitrack/postgres: commit: %w", err)
	}
	return nil
}

func (s *Store) NextSequence(ctx context.Context, kind string) (int64, error) {
	var seq int64
	err := sqlx.GetContext(ctx, s.q, &seq, `
		INSERT INTO `+tblCounters+` (kind, seq) VALUES ($1, 1)
		ON CONFLICT (kind) DO UPDATE SET seq = `+tblCounters+`.seq + 1
		RETURNING seq`, kind)
	if err != nil {
		return 0, fmt.Errorf("yogitrack/postgres: next %s sequence: %w", kind, err)
	}
	return seq, nil
}

// table is the typed CRUD surface shared by every entity.
type table[T any] struct {
	name   string
	entity string
}

func (t table[T]) insert(ctx context.Context, q sqlx.ExtContext, id, humanID string, createdAt time.Time, doc *T) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("yogitrack/postgres: encode %s: %w", t.entity, err)
	}
	_, err = q.ExecContext(ctx,
		`INSERT INTO `+t.name+` (id, human_id, created_at, doc) VALUES ($1, $2, $3, $4)`,
		id, humanID, createdAt, string(b))
	if err != nil {
		if isUniqueViolation(err) {
			return &models.ValidationError{Message: t.entity + " already exists"}
		}
		return fmt.Errorf("yogitrack/postgres: create %s: %w", t.entity, err)
	}
	return nil
}

func (t table[T]) get(ctx context.Context, q sqlx.ExtContext, id string) (*T, error) {
	var raw []byte
	err := sqlx.GetContext(ctx, q, &raw, `SELECT doc FROM `+t.name+` WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.NotFound(t.entity)
		}
		return nil, fmt.Errorf("yogitrack/postgres: get %s: %w", t.entity, err)
	}
	return t.decode(raw)
}

func (t table[T]) list(ctx context.Context, q sqlx.ExtContext, w *where) ([]*T, error) {
	var raws [][]byte
	query := `SELECT doc FROM ` + t.name + w.sql() + ` ORDER BY created_at, id`
	if err := sqlx.SelectContext(ctx, q, &raws, query, w.args...); err != nil {
		return nil, fmt.Errorf("yogitrack/postgres: list %s: %w", t.entity, err)
	}
	out := make([]*T, 0, len(raws))
	for _, raw := range raws {
		doc, err := t.decode(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, nil
}

func (t table[T]) update(ctx context.Context, q sqlx.ExtContext, id, humanID string, doc *T) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("yogitrack/postgres: encode %s: %w", t.entity, err)
	}
	res, err := q.ExecContext(ctx,
		`UPDATE `+t.name+` SET human_id = $2, doc = $3 WHERE id = $1`,
		id, humanID, string(b))
	if err != nil {
		if isUniqueViolation(err) {
			return &models.ValidationError{Message: t.entity + " already exists"}
		}
		return fmt.Errorf("yogitrack/postgres: update %s: %w", t.entity, err)
	}
	return expectRow(res, t.entity)
}

func (t table[T]) delete(ctx context.Context, q sqlx.ExtContext, id string) error {
	res, err := q.ExecContext(ctx, `DELETE FROM `+t.name+` WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("yogitrack/postgres: delete %s: %w", t.entity, err)
	}
	return expectRow(res, t.entity)
}

func (t table[T]) decode(raw []byte) (*T, error) {
	var doc T
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("yogitrack/postgres: decode %s: %w", t.entity, err)
	}
	return &doc, nil
}

func expectRow(res sql.Result, entity string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("yogitrack/postgres: rows affected: %w", err)
	}
	if n == 0 {
		return models.NotFound(entity)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

var (
	instructors = table[models.Instructor]{name: tblInstructors, entity: models.EntityInstructor}
	classes     = table[models.Class]{name: tblClasses, entity: models.EntityClass}
	customers   = table[models.Customer]{name: tblCustomers, entity: models.EntityCustomer}
	packages    = table[models.Package]{name: tblPackages, entity: models.EntityPackage}
	sales       = table[models.Sale]{name: tblSales, entity: models.EntitySale}
	attendance  = table[models.Attendance]{name: tblAttendance, entity: models.EntityAttendance}
)

// ==================== Instructors ====================

func (s *Store) CreateInstructor(ctx context.Context, i *models.Instructor) error {
	return instructors.insert(ctx, s.q, i.ID, i.InstructorID, i.CreatedAt, i)
}

func (s *Store) GetInstructor(ctx context.Context, id string) (*models.Instructor, error) {
	return instructors.get(ctx, s.q, id)
}

func (s *Store) ListInstructors(ctx context.Context, f models.InstructorFilter) ([]*models.Instructor, error) {
	return instructors.list(ctx, s.q, instructorWhere(f))
}

func (s *Store) UpdateInstructor(ctx context.Context, i *models.Instructor) error {
	return instructors.update(ctx, s.q, i.ID, i.InstructorID, i)
}

func (s *Store) DeleteInstructor(ctx context.Context, id string) error {
	return instructors.delete(ctx, s.q, id)
}

// ==================== Classes ====================

func (s *Store) CreateClass(ctx context.Context, c *models.Class) error {
	return classes.insert(ctx, s.q, c.ID, c.ClassID, c.CreatedAt, c)
}

func (s *Store) GetClass(ctx context.Context, id string) (*models.Class, error) {
	return classes.get(ctx, s.q, id)
}

func (s *Store) ListClasses(ctx context.Context, f models.ClassFilter) ([]*models.Class, error) {
	return classes.list(ctx, s.q, classWhere(f))
}

func (s *Store) UpdateClass(ctx context.Context, c *models.Class) error {
	return classes.update(ctx, s.q, c.ID, c.ClassID, c)
}

func (s *Store) DeleteClass(ctx context.Context, id string) error {
	return classes.delete(ctx, s.q, id)
}

// ==================== Customers ====================

func (s *Store) CreateCustomer(ctx context.Context, c *models.Customer) error {
	return customers.insert(ctx, s.q, c.ID, c.CustomerID, c.CreatedAt, c)
}

func (s *Store) GetCustomer(ctx context.Context, id string) (*models.Customer, error) {
	return customers.get(ctx, s.q, id)
}

func (s *Store) ListCustomers(ctx context.Context, f models.CustomerFilter) ([]*models.Customer, error) {
	return customers.list(ctx, s.q, customerWhere(f))
}

func (s *Store) UpdateCustomer(ctx context.Context, c *models.Customer) error {
	return customers.update(ctx, s.q, c.ID, c.CustomerID, c)
}

func (s *Store) DeleteCustomer(ctx context.Context, id string) error {
	return customers.delete(ctx, s.q, id)
}

// ==================== Packages ====================

func (s *Store) CreatePackage(ctx context.Context, p *models.Package) error {
	return packages.insert(ctx, s.q, p.ID, p.PackageID, p.CreatedAt, p)
}

func (s *Store) GetPackage(ctx context.Context, id string) (*models.Package, error) {
	return packages.get(ctx, s.q, id)
}

func (s *Store) ListPackages(ctx context.Context, f models.PackageFilter) ([]*models.Package, error) {
	return packages.list(ctx, s.q, packageWhere(f))
}

func (s *Store) UpdatePackage(ctx context.Context, p *models.Package) error {
	return packages.update(ctx, s.q, p.ID, p.PackageID, p)
}

func (s *Store) DeletePackage(ctx context.Context, id string) error {
	return packages.delete(ctx, s.q, id)
}

// ==================== Sales ====================

func (s *Store) CreateSale(ctx context.Context, sale *models.Sale) error {
	return sales.insert(ctx, s.q, sale.ID, sale.SaleID, sale.CreatedAt, sale)
}

func (s *Store) GetSale(ctx context.Context, id string) (*models.Sale, error) {
	return sales.get(ctx, s.q, id)
}

func (s *Store) ListSales(ctx context.Context, f models.SaleFilter) ([]*models.Sale, error) {
	return sales.list(ctx, s.q, saleWhere(f))
}

func (s *Store) UpdateSale(ctx context.Context, sale *models.Sale) error {
	return sales.update(ctx, s.q, sale.ID, sale.SaleID, sale)
}

func (s *Store) DeleteSale(ctx context.Context, id string) error {
	return sales.delete(ctx, s.q, id)
}

// FindActiveSale locks the chosen row when called inside a transaction.
func (s *Store) FindActiveSale(ctx context.Context, customerID string, at time.Time) (*models.Sale, error) {
	query := activeSaleQuery(s.inTx)
	var raw []byte
	err := sqlx.GetContext(ctx, s.q, &raw, query, customerID, models.SaleActive, at)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("yogitrack/postgres: find active sale: %w", err)
	}
	return sales.decode(raw)
}

// ==================== Attendance ====================

func (s *Store) CreateAttendance(ctx context.Context, a *models.Attendance) error {
	return attendance.insert(ctx, s.q, a.ID, a.AttendanceID, a.CreatedAt, a)
}

func (s *Store) GetAttendance(ctx context.Context, id string) (*models.Attendance, error) {
	return attendance.get(ctx, s.q, id)
}

func (s *Store) ListAttendance(ctx context.Context, f models.AttendanceFilter) ([]*models.Attendance, error) {
	return attendance.list(ctx, s.q, attendanceWhere(f))
}

func (s *Store) UpdateAttendance(ctx context.Context, a *models.Attendance) error {
	return attendance.update(ctx, s.q, a.ID, a.AttendanceID, a)
}

func (s *Store) DeleteAttendance(ctx context.Context, id string) error {
	return attendance.delete(ctx, s.q, id)
}
