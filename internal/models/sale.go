package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PackageSnapshot is the copy of a package taken when a sale is made, so
// later edits to the package do not change existing sales.
type PackageSnapshot struct {
	PackageID       string          `json:"packageId" bson:"packageId"`
	Name            string          `json:"name" bson:"name"`
	Type            string          `json:"type" bson:"type"`
	NumberOfClasses int             `json:"numberOfClasses" bson:"numberOfClasses"`
	Price           decimal.Decimal `json:"price" bson:"price"`
	ValidityPeriod  int             `json:"validityPeriod" bson:"validityPeriod"`
}

type SalePayment struct {
	AmountPaid    decimal.Decimal `json:"amountPaid" bson:"amountPaid"`
	PaymentMethod string          `json:"paymentMethod" bson:"paymentMethod"`
	TransactionID string          `json:"transactionId,omitempty" bson:"transactionId,omitempty"`
	PaymentDate   time.Time       `json:"paymentDate" bson:"paymentDate"`
}

type ValidityPeriod struct {
	StartDate time.Time `json:"startDate" bson:"startDate"`
	EndDate   time.Time `json:"endDate" bson:"endDate"`
}

// ClassBalance holds UsedClasses + RemainingClasses == TotalClasses under
// normal operation.
type ClassBalance struct {
	TotalClasses     int `json:"totalClasses" bson:"totalClasses"`
	UsedClasses      int `json:"usedClasses" bson:"usedClasses"`
	RemainingClasses int `json:"remainingClasses" bson:"remainingClasses"`
}

type Sale struct {
	ID             string          `json:"id" bson:"_id"`
	SaleID         string          `json:"saleId" bson:"saleId"`
	Customer       string          `json:"customer" bson:"customer"`
	Package        string          `json:"package" bson:"package"`
	PackageDetails PackageSnapshot `json:"packageDetails" bson:"packageDetails"`
	PaymentInfo    SalePayment     `json:"paymentInfo" bson:"paymentInfo"`
	ValidityPeriod ValidityPeriod  `json:"validityPeriod" bson:"validityPeriod"`
	ClassBalance   ClassBalance    `json:"classBalance" bson:"classBalance"`
	Status         string          `json:"status" bson:"status"`
	Notes          string          `json:"notes,omitempty" bson:"notes,omitempty"`
	CreatedAt      time.Time       `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt" bson:"updatedAt"`
}

func (s *Sale) Clone() *Sale {
	c := *s
	return &c
}

// ActiveAt reports whether the sale can be consumed by a check-in at t.
func (s *Sale) ActiveAt(t time.Time) bool {
	return s.Status == SaleActive &&
		!s.ValidityPeriod.EndDate.Before(t) &&
		s.ClassBalance.RemainingClasses > 0
}

// SaleEndDate adds validity days to start.
func SaleEndDate(start time.Time, validityDays int) time.Time {
	return start.AddDate(0, 0, validityDays)
}
