package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Instructor struct {
	ID             string          `json:"id" bson:"_id"`
	InstructorID   string          `json:"instructorId" bson:"instructorId"`
	FirstName      string          `json:"firstName" bson:"firstName"`
	LastName       string          `json:"lastName" bson:"lastName"`
	Email          string          `json:"email" bson:"email"`
	Phone          string          `json:"phone" bson:"phone"`
	Specialties    []string        `json:"specialties" bson:"specialties"`
	Certifications []string        `json:"certifications" bson:"certifications"`
	Bio            string          `json:"bio,omitempty" bson:"bio,omitempty"`
	Experience     int             `json:"experience" bson:"experience"`
	PayRate        decimal.Decimal `json:"payRate" bson:"payRate"`
	Status         string          `json:"status" bson:"status"`
	HireDate       time.Time       `json:"hireDate" bson:"hireDate"`
	CreatedAt      time.Time       `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt" bson:"updatedAt"`
}

func (i *Instructor) FullName() string {
	return i.FirstName + " " + i.LastName
}

func (i *Instructor) Clone() *Instructor {
	c := *i
	c.Specialties = append([]string(nil), i.Specialties...)
	c.Certifications = append([]string(nil), i.Certifications...)
	return &c
}

// Class is a recurring weekly session.
type Class struct {
	ID                string          `json:"id" bson:"_id"`
	ClassID           string          `json:"classId" bson:"classId"`
	ClassName         string          `json:"className" bson:"className"`
	Description       string          `json:"description,omitempty" bson:"description,omitempty"`
	Instructor        string          `json:"instructor" bson:"instructor"`
	DayOfWeek         string          `json:"dayOfWeek" bson:"dayOfWeek"`
	StartTime         string          `json:"startTime" bson:"startTime"`
	EndTime           string          `json:"endTime" bson:"endTime"`
	Duration          int             `json:"duration" bson:"duration"`
	Level             string          `json:"level" bson:"level"`
	MaxCapacity       int             `json:"maxCapacity" bson:"maxCapacity"`
	CurrentEnrollment int             `json:"currentEnrollment" bson:"currentEnrollment"`
	Price             decimal.Decimal `json:"price" bson:"price"`
	Room              string          `json:"room" bson:"room"`
	Equipment         []string        `json:"equipment" bson:"equipment"`
	IsActive          bool            `json:"isActive" bson:"isActive"`
	CreatedAt         time.Time       `json:"createdAt" bson:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt" bson:"updatedAt"`
}

func (c *Class) Clone() *Class {
	cp := *c
	cp.Equipment = append([]string(nil), c.Equipment...)
	return &cp
}

// AvailableSpots is never negative.
func (c *Class) AvailableSpots() int {
	if c.CurrentEnrollment >= c.MaxCapacity {
		return 0
	}
	return c.MaxCapacity - c.CurrentEnrollment
}

type Address struct {
	Street  string `json:"street,omitempty" bson:"street,omitempty"`
	City    string `json:"city,omitempty" bson:"city,omitempty"`
	State   string `json:"state,omitempty" bson:"state,omitempty"`
	ZipCode string `json:"zipCode,omitempty" bson:"zipCode,omitempty"`
}

type EmergencyContact struct {
	Name         string `json:"name,omitempty" bson:"name,omitempty"`
	Phone        string `json:"phone,omitempty" bson:"phone,omitempty"`
	Relationship string `json:"relationship,omitempty" bson:"relationship,omitempty"`
}

type MedicalInfo struct {
	Conditions  []string `json:"conditions,omitempty" bson:"conditions,omitempty"`
	Medications []string `json:"medications,omitempty" bson:"medications,omitempty"`
	Injuries    []string `json:"injuries,omitempty" bson:"injuries,omitempty"`
	Notes       string   `json:"notes,omitempty" bson:"notes,omitempty"`
}

type CustomerPayment struct {
	LastPaymentDate *time.Time `json:"lastPaymentDate,omitempty" bson:"lastPaymentDate,omitempty"`
	PaymentMethod   string     `json:"paymentMethod,omitempty" bson:"paymentMethod,omitempty"`
}

type Preferences struct {
	PreferredClasses     []string `json:"preferredClasses,omitempty" bson:"preferredClasses,omitempty"`
	PreferredInstructors []string `json:"preferredInstructors,omitempty" bson:"preferredInstructors,omitempty"`
	CommunicationMethod  string   `json:"communicationMethod,omitempty" bson:"communicationMethod,omitempty"`
}

// Customer.Balance counts class credits and goes negative when a customer
// attends without an active sale.
type Customer struct {
	ID               string           `json:"id" bson:"_id"`
	CustomerID       string           `json:"customerId" bson:"customerId"`
	FirstName        string           `json:"firstName" bson:"firstName"`
	LastName         string           `json:"lastName" bson:"lastName"`
	Email            string           `json:"email" bson:"email"`
	Phone            string           `json:"phone" bson:"phone"`
	DateOfBirth      *time.Time       `json:"dateOfBirth,omitempty" bson:"dateOfBirth,omitempty"`
	Address          Address          `json:"address" bson:"address"`
	EmergencyContact EmergencyContact `json:"emergencyContact" bson:"emergencyContact"`
	MedicalInfo      MedicalInfo      `json:"medicalInfo" bson:"medicalInfo"`
	Balance          int              `json:"balance" bson:"balance"`
	PaymentInfo      CustomerPayment  `json:"paymentInfo" bson:"paymentInfo"`
	MembershipType   string           `json:"membershipType,omitempty" bson:"membershipType,omitempty"`
	Preferences      Preferences      `json:"preferences" bson:"preferences"`
	Notes            string           `json:"notes,omitempty" bson:"notes,omitempty"`
	Status           string           `json:"status" bson:"status"`
	DateJoined       time.Time        `json:"dateJoined" bson:"dateJoined"`
	CreatedAt        time.Time        `json:"createdAt" bson:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt" bson:"updatedAt"`
}

func (c *Customer) FullName() string {
	return c.FirstName + " " + c.LastName
}

func (c *Customer) Clone() *Customer {
	cp := *c
	if c.DateOfBirth != nil {
		d := *c.DateOfBirth
		cp.DateOfBirth = &d
	}
	if c.PaymentInfo.LastPaymentDate != nil {
		d := *c.PaymentInfo.LastPaymentDate
		cp.PaymentInfo.LastPaymentDate = &d
	}
	cp.MedicalInfo.Conditions = append([]string(nil), c.MedicalInfo.Conditions...)
	cp.MedicalInfo.Medications = append([]string(nil), c.MedicalInfo.Medications...)
	cp.MedicalInfo.Injuries = append([]string(nil), c.MedicalInfo.Injuries...)
	cp.Preferences.PreferredClasses = append([]string(nil), c.Preferences.PreferredClasses...)
	cp.Preferences.PreferredInstructors = append([]string(nil), c.Preferences.PreferredInstructors...)
	return &cp
}

type Discount struct {
	Percentage int             `json:"percentage" bson:"percentage"`
	Amount     decimal.Decimal `json:"amount" bson:"amount"`
}

type PackageRestrictions struct {
	MaxClassesPerWeek int      `json:"maxClassesPerWeek,omitempty" bson:"maxClassesPerWeek,omitempty"`
	BlackoutDates     []string `json:"blackoutDates,omitempty" bson:"blackoutDates,omitempty"`
	TransferAllowed   bool     `json:"transferAllowed" bson:"transferAllowed"`
}

type SalesData struct {
	TotalSold    int             `json:"totalSold" bson:"totalSold"`
	TotalRevenue decimal.Decimal `json:"totalRevenue" bson:"totalRevenue"`
	LastSold     *time.Time      `json:"lastSold,omitempty" bson:"lastSold,omitempty"`
}

// Package is a purchasable template. Sales snapshot it at purchase time.
type Package struct {
	ID                string              `json:"id" bson:"_id"`
	PackageID         string              `json:"packageId" bson:"packageId"`
	Name              string              `json:"name" bson:"name"`
	Description       string              `json:"description,omitempty" bson:"description,omitempty"`
	Type              string              `json:"type" bson:"type"`
	NumberOfClasses   int                 `json:"numberOfClasses" bson:"numberOfClasses"`
	ValidityPeriod    int                 `json:"validityPeriod" bson:"validityPeriod"`
	Price             decimal.Decimal     `json:"price" bson:"price"`
	OriginalPrice     decimal.Decimal     `json:"originalPrice" bson:"originalPrice"`
	Discount          Discount            `json:"discount" bson:"discount"`
	ApplicableClasses []string            `json:"applicableClasses" bson:"applicableClasses"`
	Restrictions      PackageRestrictions `json:"restrictions" bson:"restrictions"`
	Status            string              `json:"status" bson:"status"`
	SalesData         SalesData           `json:"salesData" bson:"salesData"`
	CreatedAt         time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt         time.Time           `json:"updatedAt" bson:"updatedAt"`

	PricePerClass *decimal.Decimal `json:"pricePerClass,omitempty" bson:"-"`
	Savings       decimal.Decimal  `json:"savings" bson:"-"`
}

func (p *Package) Clone() *Package {
	cp := *p
	cp.ApplicableClasses = append([]string(nil), p.ApplicableClasses...)
	cp.Restrictions.BlackoutDates = append([]string(nil), p.Restrictions.BlackoutDates...)
	if p.SalesData.LastSold != nil {
		d := *p.SalesData.LastSold
		cp.SalesData.LastSold = &d
	}
	if p.PricePerClass != nil {
		v := *p.PricePerClass
		cp.PricePerClass = &v
	}
	return &cp
}

func (p *Package) Unlimited() bool {
	return p.NumberOfClasses == UnlimitedClasses
}

// ApplyDiscount derives the discount from originalPrice and price.
func (p *Package) ApplyDiscount() {
	if p.OriginalPrice.IsZero() {
		p.OriginalPrice = p.Price
	}
	p.Discount = Discount{Amount: decimal.Zero}
	if p.OriginalPrice.GreaterThan(p.Price) {
		amount := p.OriginalPrice.Sub(p.Price)
		p.Discount.Amount = amount
		p.Discount.Percentage = int(amount.Div(p.OriginalPrice).Mul(decimal.NewFromInt(100)).Round(0).IntPart())
	}
}

// Derive fills the read-only pricePerClass and savings fields.
func (p *Package) Derive() {
	p.PricePerClass = nil
	if !p.Unlimited() && p.NumberOfClasses > 0 {
		v := p.Price.Div(decimal.NewFromInt(int64(p.NumberOfClasses))).Round(2)
		p.PricePerClass = &v
	}
	p.Savings = decimal.Zero
	if p.OriginalPrice.GreaterThan(p.Price) {
		p.Savings = p.OriginalPrice.Sub(p.Price)
	}
}
