package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/JarviousX/yogitrack-studio-management/internal/models"
)

// The builders below translate models filters into query documents with the
// same semantics as their Match methods.

func instructorFilter(f models.InstructorFilter) bson.M {
	q := bson.M{}
	if f.Status != "" {
		q["status"] = f.Status
	}
	if f.Email != "" {
		q["email"] = f.Email
	}
	return q
}

func classFilter(f models.ClassFilter) bson.M {
	q := bson.M{}
	if f.DayOfWeek != "" {
		q["dayOfWeek"] = f.DayOfWeek
	}
	if f.Level != "" {
		q["level"] = f.Level
	}
	if f.Instructor != "" {
		q["instructor"] = f.Instructor
	}
	if f.Active != nil {
		q["isActive"] = *f.Active
	}
	return q
}

func customerFilter(f models.CustomerFilter) bson.M {
	q := bson.M{}
	if f.Status != "" {
		q["status"] = f.Status
	}
	if f.Email != "" {
		q["email"] = f.Email
	}
	return q
}

func packageFilter(f models.PackageFilter) bson.M {
	q := bson.M{}
	if f.Status != "" {
		q["status"] = f.Status
	}
	if f.Type != "" {
		q["type"] = f.Type
	}
	return q
}

func saleFilter(f models.SaleFilter) bson.M {
	q := bson.M{}
	if f.Customer != "" {
		q["customer"] = f.Customer
	}
	if f.Package != "" {
		q["package"] = f.Package
	}
	if f.Status != "" {
		q["status"] = f.Status
	}
	if r := dateRange(f.PaidFrom, f.PaidTo); r != nil {
		q["paymentInfo.paymentDate"] = r
	}
	return q
}

func attendanceFilter(f models.AttendanceFilter) bson.M {
	q := bson.M{}
	if f.Class != "" {
		q["class"] = f.Class
	}
	if f.Instructor != "" {
		q["instructor"] = f.Instructor
	}
	if r := dateRange(f.From, f.To); r != nil {
		q["actualDate"] = r
	}
	return q
}

func dateRange(from, to *time.Time) bson.M {
	if from == nil && to == nil {
		return nil
	}
	r := bson.M{}
	if from != nil {
		r["$gte"] = *from
	}
	if to != nil {
		r["$lte"] = *to
	}
	return r
}

// activeSaleSort applies models.PreferActiveSale.
var activeSaleSort = bson.D{
	{Key: "validityPeriod.endDate", Value: 1},
	{Key: "createdAt", Value: 1},
}

func activeSaleFilter(customerID string, at time.Time) bson.M {
	return bson.M{
		"customer":                      customerID,
		"status":                        models.SaleActive,
		"validityPeriod.endDate":        bson.M{"$gte": at},
		"classBalance.remainingClasses": bson.M{"$gt": 0},
	}
}
