package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/JarviousX/yogitrack-studio-management/internal/models"
	"github.com/JarviousX/yogitrack-studio-management/internal/store"
)

// Collection name constants.
const (
	colInstructors = "instructors"
	colClasses     = "classes"
	colCustomers   = "customers"
	colPackages    = "packages"
	colSales       = "sales"
	colAttendance  = "attendances"
	colCounters    = "counters"
)

// compile-time interface check
var _ store.Store = (*Store)(nil)

// Store implements store.Store on a MongoDB database.
type Store struct {
	client       *mongo.Client
	db           *mongo.Database
	transactions bool
	inTx         bool
}

// New wraps an open client. Transactions need a replica set or sharded
// cluster; with transactions off RunInTx runs fn directly.
func New(client *mongo.Client, database string, transactions bool) *Store {
	return &Store{
		client:       client,
		db:           client.Database(database),
		transactions: transactions,
	}
}

// Migrate creates indexes for all studio collections.
func (s *Store) Migrate(ctx context.Context) error {
	for col, idx := range migrationIndexes() {
		if len(idx) == 0 {
			continue
		}
		if _, err := s.db.Collection(col).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("yogitrack/mongo: migrate %s indexes: %w", col, err)
		}
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx store.Store) error) error {
	if s.inTx || !s.transactions {
		return fn(ctx, s)
	}
	sess, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("yogitrack/mongo: start session: %w", err)
	}
	defer sess.EndSession(ctx)

	tx := &Store{client: s.client, db: s.db, transactions: true, inTx: true}
	_, err = sess.WithTransaction(ctx, func(txCtx context.Context) (any, error) {
		return nil, fn(txCtx, tx)
	})
	return err
}

func (s *Store) NextSequence(ctx context.Context, kind string) (int64, error) {
	var out struct {
		Seq int64 `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := s.db.Collection(colCounters).FindOneAndUpdate(ctx,
		bson.M{"_id": kind},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		opts,
	).Decode(&out)
	if err != nil {
		return 0, fmt.Errorf("yogitrack/mongo: next %s sequence: %w", kind, err)
	}
	return out.Seq, nil
}

// collection is the typed CRUD surface shared by every entity.
type collection[T any] struct {
	c      *mongo.Collection
	entity string
}

func coll[T any](s *Store, name, entity string) collection[T] {
	return collection[T]{c: s.db.Collection(name), entity: entity}
}

func (c collection[T]) insert(ctx context.Context, doc *T) error {
	if _, err := c.c.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return &models.ValidationError{Message: c.entity + " already exists"}
		}
		return fmt.Errorf("yogitrack/mongo: create %s: %w", c.entity, err)
	}
	return nil
}

func (c collection[T]) get(ctx context.Context, id string) (*T, error) {
	return c.findOne(ctx, bson.M{"_id": id}, nil)
}

func (c collection[T]) findOne(ctx context.Context, filter bson.M, sort bson.D) (*T, error) {
	opts := options.FindOne()
	if sort != nil {
		opts.SetSort(sort)
	}
	var doc T
	if err := c.c.FindOne(ctx, filter, opts).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, models.NotFound(c.entity)
		}
		return nil, fmt.Errorf("yogitrack/mongo: get %s: %w", c.entity, err)
	}
	return &doc, nil
}

func (c collection[T]) find(ctx context.Context, filter bson.M) ([]*T, error) {
	cur, err := c.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("yogitrack/mongo: list %s: %w", c.entity, err)
	}
	var docs []*T
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("yogitrack/mongo: decode %s: %w", c.entity, err)
	}
	return docs, nil
}

func (c collection[T]) replace(ctx context.Context, id string, doc *T) error {
	res, err := c.c.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return &models.ValidationError{Message: c.entity + " already exists"}
		}
		return fmt.Errorf("yogitrack/mongo: update %s: %w", c.entity, err)
	}
	if res.MatchedCount == 0 {
		return models.NotFound(c.entity)
	}
	return nil
}

func (c collection[T]) delete(ctx context.Context, id string) error {
	res, err := c.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("yogitrack/mongo: delete %s: %w", c.entity, err)
	}
	if res.DeletedCount == 0 {
		return models.NotFound(c.entity)
	}
	return nil
}

func (s *Store) instructors() collection[models.Instructor] {
	return coll[models.Instructor](s, colInstructors, models.EntityInstructor)
}

func (s *Store) classes() collection[models.Class] {
	return coll[models.Class](s, colClasses, models.EntityClass)
}

func (s *Store) customers() collection[models.Customer] {
	return coll[models.Customer](s, colCustomers, models.EntityCustomer)
}

func (s *Store) packages() collection[models.Package] {
	return coll[models.Package](s, colPackages, models.EntityPackage)
}

func (s *Store) sales() collection[models.Sale] {
	return coll[models.Sale](s, colSales, models.EntitySale)
}

func (s *Store) attendance() collection[models.Attendance] {
	return coll[models.Attendance](s, colAttendance, models.EntityAttendance)
}

// ==================== Instructors ====================

func (s *Store) CreateInstructor(ctx context.Context, i *models.Instructor) error {
	return s.instructors().insert(ctx, i)
}

func (s *Store) GetInstructor(ctx context.Context, id string) (*models.Instructor, error) {
	return s.instructors().get(ctx, id)
}

func (s *Store) ListInstructors(ctx context.Context, f models.InstructorFilter) ([]*models.Instructor, error) {
	return s.instructors().find(ctx, instructorFilter(f))
}

func (s *Store) UpdateInstructor(ctx context.Context, i *models.Instructor) error {
	return s.instructors().replace(ctx, i.ID, i)
}

func (s *Store) DeleteInstructor(ctx context.Context, id string) error {
	return s.instructors().delete(ctx, id)
}

// ==================== Classes ====================

func (s *Store) CreateClass(ctx context.Context, c *models.Class) error {
	return s.classes().insert(ctx, c)
}

func (s *Store) GetClass(ctx context.Context, id string) (*models.Class, error) {
	return s.classes().get(ctx, id)
}

func (s *Store) ListClasses(ctx context.Context, f models.ClassFilter) ([]*models.Class, error) {
	return s.classes().find(ctx, classFilter(f))
}

func (s *Store) UpdateClass(ctx context.Context, c *models.Class) error {
	return s.classes().replace(ctx, c.ID, c)
}

func (s *Store) DeleteClass(ctx context.Context, id string) error {
	return s.classes().delete(ctx, id)
}

// ==================== Customers ====================

func (s *Store) CreateCustomer(ctx context.Context, c *models.Customer) error {
	return s.customers().insert(ctx, c)
}

func (s *Store) GetCustomer(ctx context.Context, id string) (*models.Customer, error) {
	return s.customers().get(ctx, id)
}

func (s *Store) ListCustomers(ctx context.Context, f models.CustomerFilter) ([]*models.Customer, error) {
	return s.customers().find(ctx, customerFilter(f))
}

func (s *Store) UpdateCustomer(ctx context.Context, c *models.Customer) error {
	return s.customers().replace(ctx, c.ID, c)
}

func (s *Store) DeleteCustomer(ctx context.Context, id string) error {
	return s.customers().delete(ctx, id)
}

// ==================== Packages ====================

func (s *Store) CreatePackage(ctx context.Context, p *models.Package) error {
	return s.packages().insert(ctx, p)
}

func (s *Store) GetPackage(ctx context.Context, id string) (*models.Package, error) {
	return s.packages().get(ctx, id)
}

func (s *Store) ListPackages(ctx context.Context, f models.PackageFilter) ([]*models.Package, error) {
	return s.packages().find(ctx, packageFilter(f))
}

func (s *Store) UpdatePackage(ctx context.Context, p *models.Package) error {
	return s.packages().replace(ctx, p.ID, p)
}

func (s *Store) DeletePackage(ctx context.Context, id string) error {
	return s.packages().delete(ctx, id)
}

// ==================== Sales ====================

func (s *Store) CreateSale(ctx context.Context, sale *models.Sale) error {
	return s.sales().insert(ctx, sale)
}

func (s *Store) GetSale(ctx context.Context, id string) (*models.Sale, error) {
	return s.sales().get(ctx, id)
}

func (s *Store) ListSales(ctx context.Context, f models.SaleFilter) ([]*models.Sale, error) {
	return s.sales().find(ctx, saleFilter(f))
}

func (s *Store) UpdateSale(ctx context.Context, sale *models.Sale) error {
	return s.sales().replace(ctx, sale.ID, sale)
}

func (s *Store) DeleteSale(ctx context.Context, id string) error {
	return s.sales().delete(ctx, id)
}

func (s *Store) FindActiveSale(ctx context.Context, customerID string, at time.Time) (*models.Sale, error) {
	sale, err := s.sales().findOne(ctx, activeSaleFilter(customerID, at), activeSaleSort)
	if models.IsNotFound(err) {
		return nil, nil
	}
	return sale, err
}

// ==================== Attendance ====================

func (s *Store) CreateAttendance(ctx context.Context, a *models.Attendance) error {
	return s.attendance().insert(ctx, a)
}

func (s *Store) GetAttendance(ctx context.Context, id string) (*models.Attendance, error) {
	return s.attendance().get(ctx, id)
}

func (s *Store) ListAttendance(ctx context.Context, f models.AttendanceFilter) ([]*models.Attendance, error) {
	return s.attendance().find(ctx, attendanceFilter(f))
}

func (s *Store) UpdateAttendance(ctx context.Context, a *models.Attendance) error {
	return s.attendance().replace(ctx, a.ID, a)
}

func (s *Store) DeleteAttendance(ctx context.Context, id string) error {
	return s.attendance().delete(ctx, id)
}

func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for all studio collections.
func migrationIndexes() map[string][]mongo.IndexModel {
	unique := func(key string) mongo.IndexModel {
		return mongo.IndexModel{
			Keys:    bson.D{{Key: key, Value: 1}},
			Options: options.Index().SetUnique(true),
		}
	}
	return map[string][]mongo.IndexModel{
		colInstructors: {
			unique("instructorId"),
			unique("email"),
			{Keys: bson.D{{Key: "status", Value: 1}}},
		},
		colClasses: {
			unique("classId"),
			{Keys: bson.D{{Key: "instructor", Value: 1}}},
			{Keys: bson.D{{Key: "dayOfWeek", Value: 1}, {Key: "startTime", Value: 1}}},
		},
		colCustomers: {
			unique("customerId"),
			unique("email"),
			{Keys: bson.D{{Key: "status", Value: 1}}},
		},
		colPackages: {
			unique("packageId"),
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "type", Value: 1}}},
		},
		colSales: {
			unique("saleId"),
			{Keys: bson.D{{Key: "customer", Value: 1}, {Key: "status", Value: 1}, {Key: "validityPeriod.endDate", Value: 1}}},
			{Keys: bson.D{{Key: "package", Value: 1}}},
			{Keys: bson.D{{Key: "paymentInfo.paymentDate", Value: -1}}},
		},
		colAttendance: {
			unique("attendanceId"),
			{Keys: bson.D{{Key: "class", Value: 1}, {Key: "actualDate", Value: -1}}},
			{Keys: bson.D{{Key: "instructor", Value: 1}, {Key: "actualDate", Value: -1}}},
		},
	}
}
