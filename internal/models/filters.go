package models

import (
	"sort"
	"time"
)

// Filters narrow List calls. Zero values match everything. Each Match method
// is the reference semantics that every store backend reproduces.

type InstructorFilter struct {
	Status string
	Email  string
}

func (f InstructorFilter) Match(i *Instructor) bool {
	return (f.Status == "" || i.Status == f.Status) &&
		(f.Email == "" || i.Email == f.Email)
}

type ClassFilter struct {
	DayOfWeek  string
	Level      string
	Instructor string
	Active     *bool
}

func (f ClassFilter) Match(c *Class) bool {
	return (f.DayOfWeek == "" || c.DayOfWeek == f.DayOfWeek) &&
		(f.Level == "" || c.Level == f.Level) &&
		(f.Instructor == "" || c.Instructor == f.Instructor) &&
		(f.Active == nil || c.IsActive == *f.Active)
}

type CustomerFilter struct {
	Status string
	Email  string
}

func (f CustomerFilter) Match(c *Customer) bool {
	return (f.Status == "" || c.Status == f.Status) &&
		(f.Email == "" || c.Email == f.Email)
}

type PackageFilter struct {
	Status string
	Type   string
}

func (f PackageFilter) Match(p *Package) bool {
	return (f.Status == "" || p.Status == f.Status) &&
		(f.Type == "" || p.Type == f.Type)
}

// SaleFilter bounds paymentDate with PaidFrom (inclusive) and PaidTo (inclusive).
type SaleFilter struct {
	Customer string
	Package  string
	Status   string
	PaidFrom *time.Time
	PaidTo   *time.Time
}

func (f SaleFilter) Match(s *Sale) bool {
	paid := s.PaymentInfo.PaymentDate
	return (f.Customer == "" || s.Customer == f.Customer) &&
		(f.Package == "" || s.Package == f.Package) &&
		(f.Status == "" || s.Status == f.Status) &&
		(f.PaidFrom == nil || !paid.Before(*f.PaidFrom)) &&
		(f.PaidTo == nil || !paid.After(*f.PaidTo))
}

// AttendanceFilter bounds actualDate with From and To, both inclusive.
type AttendanceFilter struct {
	Class      string
	Instructor string
	From       *time.Time
	To         *time.Time
}

func (f AttendanceFilter) Match(a *Attendance) bool {
	return (f.Class == "" || a.Class == f.Class) &&
		(f.Instructor == "" || a.Instructor == f.Instructor) &&
		(f.From == nil || !a.ActualDate.Before(*f.From)) &&
		(f.To == nil || !a.ActualDate.After(*f.To))
}

// PreferActiveSale reports whether a should be consumed before b: the
// earliest validityPeriod.endDate wins, then the earliest createdAt.
func PreferActiveSale(a, b *Sale) bool {
	if !a.ValidityPeriod.EndDate.Equal(b.ValidityPeriod.EndDate) {
		return a.ValidityPeriod.EndDate.Before(b.ValidityPeriod.EndDate)
	}
	return a.CreatedAt.Before(b.CreatedAt)
}

// SortClasses orders by weekday then start time.
func SortClasses(cs []*Class) {
	sort.SliceStable(cs, func(i, j int) bool {
		di, dj := WeekdayIndex(cs[i].DayOfWeek), WeekdayIndex(cs[j].DayOfWeek)
		if di != dj {
			return di < dj
		}
		si, _ := ParseClock(cs[i].StartTime)
		sj, _ := ParseClock(cs[j].StartTime)
		return si < sj
	})
}
