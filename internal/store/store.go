package store

import (
	"context"
	"time"

	"github.com/JarviousX/yogitrack-studio-management/internal/models"
)

// Store is the persistence boundary for every studio entity. Missing
// documents are reported as *models.NotFoundError. List results come back in
// creation order; callers apply any presentation ordering.
type Store interface {
	// Instructors
	CreateInstructor(ctx context.Context, i *models.Instructor) error
	GetInstructor(ctx context.Context, id string) (*models.Instructor, error)
	ListInstructors(ctx context.Context, f models.InstructorFilter) ([]*models.Instructor, error)
	UpdateInstructor(ctx context.Context, i *models.Instructor) error
	DeleteInstructor(ctx context.Context, id string) error

	// Classes
	CreateClass(ctx context.Context, c *models.Class) error
	GetClass(ctx context.Context, id string) (*models.Class, error)
	ListClasses(ctx context.Context, f models.ClassFilter) ([]*models.Class, error)
	UpdateClass(ctx context.Context, c *models.Class) error
	DeleteClass(ctx context.Context, id string) error

	// Customers
	CreateCustomer(ctx context.Context, c *models.Customer) error
	GetCustomer(ctx context.Context, id string) (*models.Customer, error)
	ListCustomers(ctx context.Context, f models.CustomerFilter) ([]*models.Customer, error)
	UpdateCustomer(ctx context.Context, c *models.Customer) error
	DeleteCustomer(ctx context.Context, id string) error

	// Packages
	CreatePackage(ctx context.Context, p *models.Package) error
	GetPackage(ctx context.Context, id string) (*models.Package, error)
	ListPackages(ctx context.Context, f models.PackageFilter) ([]*models.Package, error)
	UpdatePackage(ctx context.Context, p *models.Package) error
	DeletePackage(ctx context.Context, id string) error

	// Sales
	CreateSale(ctx context.Context, s *models.Sale) error
	GetSale(ctx context.Context, id string) (*models.Sale, error)
	ListSales(ctx context.Context, f models.SaleFilter) ([]*models.Sale, error)
	UpdateSale(ctx context.Context, s *models.Sale) error
	DeleteSale(ctx context.Context, id string) error
	// FindActiveSale returns the sale a check-in at `at` consumes, chosen by
	// models.PreferActiveSale, or nil when the customer has none.
	FindActiveSale(ctx context.Context, customerID string, at time.Time) (*models.Sale, error)

	// Attendance
	CreateAttendance(ctx context.Context, a *models.Attendance) error
	GetAttendance(ctx context.Context, id string) (*models.Attendance, error)
	ListAttendance(ctx context.Context, f models.AttendanceFilter) ([]*models.Attendance, error)
	UpdateAttendance(ctx context.Context, a *models.Attendance) error
	DeleteAttendance(ctx context.Context, id string) error

	// NextSequence atomically advances the counter for kind and returns the
	// new value, starting at 1.
	NextSequence(ctx context.Context, kind string) (int64, error)

	// RunInTx runs fn against a transactional view of the store. Writes made
	// through tx are discarded when fn returns an error. Nested calls join the
	// outer transaction.
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error

	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
