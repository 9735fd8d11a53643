package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/JarviousX/yogitrack-studio-management/internal/models"
)

// Reports are computed by scanning the relevant collections on every call.

// DateRange bounds a report; nil ends are open.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// ParseRange reads optional start and end dates. A plain end date covers the
// whole day.
func ParseRange(start, end string) (DateRange, error) {
	var r DateRange
	if strings.TrimSpace(start) != "" {
		t, err := parseDate("startDate", start)
		if err != nil {
			return r, err
		}
		r.From = &t
	}
	if strings.TrimSpace(end) != "" {
		t, err := parseDate("endDate", end)
		if err != nil {
			return r, err
		}
		if _, err := time.Parse(time.DateOnly, strings.TrimSpace(end)); err == nil {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		r.To = &t
	}
	if r.From != nil && r.To != nil && r.To.Before(*r.From) {
		return r, models.Invalid("endDate", "endDate is before startDate")
	}
	return r, nil
}

type SalesBucket struct {
	Count   int             `json:"count"`
	Revenue decimal.Decimal `json:"revenue"`
}

type PackageSalesReport struct {
	Summary struct {
		TotalSales       int             `json:"totalSales"`
		TotalRevenue     decimal.Decimal `json:"totalRevenue"`
		AverageSaleValue decimal.Decimal `json:"averageSaleValue"`
	} `json:"summary"`
	SalesByType  map[string]*SalesBucket `json:"salesByType"`
	SalesByMonth map[string]*SalesBucket `json:"salesByMonth"`
	Sales        []*models.Sale          `json:"sales"`
}

// PackageSalesReport aggregates sales paid within r, optionally limited to
// one package type.
func (s *Service) PackageSalesReport(ctx context.Context, r DateRange, packageType string) (*PackageSalesReport, error) {
	sales, err := s.ListSales(ctx, models.SaleFilter{PaidFrom: r.From, PaidTo: r.To})
	if err != nil {
		return nil, err
	}
	rep := &PackageSalesReport{
		SalesByType:  map[string]*SalesBucket{},
		SalesByMonth: map[string]*SalesBucket{},
		Sales:        []*models.Sale{},
	}
	rep.Summary.TotalRevenue = decimal.Zero
	rep.Summary.AverageSaleValue = decimal.Zero
	for _, sale := range sales {
		if packageType != "" && sale.PackageDetails.Type != packageType {
			continue
		}
		amount := sale.PaymentInfo.AmountPaid
		rep.Sales = append(rep.Sales, sale)
		rep.Summary.TotalSales++
		rep.Summary.TotalRevenue = rep.Summary.TotalRevenue.Add(amount)
		addToBucket(rep.SalesByType, sale.PackageDetails.Type, amount)
		addToBucket(rep.SalesByMonth, sale.PaymentInfo.PaymentDate.Format("2006-01"), amount)
	}
	if rep.Summary.TotalSales > 0 {
		rep.Summary.AverageSaleValue = rep.Summary.TotalRevenue.
			Div(decimal.NewFromInt(int64(rep.Summary.TotalSales))).Round(2)
	}
	return rep, nil
}

func addToBucket(m map[string]*SalesBucket, key string, amount decimal.Decimal) {
	b, ok := m[key]
	if !ok {
		b = &SalesBucket{Revenue: decimal.Zero}
		m[key] = b
	}
	b.Count++
	b.Revenue = b.Revenue.Add(amount)
}

type PersonRef struct {
	ID    string `json:"id"`
	Code  string `json:"code"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func instructorRef(i *models.Instructor) PersonRef {
	return PersonRef{ID: i.ID, Code: i.InstructorID, Name: i.FullName(), Email: i.Email}
}

type ClassAttendanceRow struct {
	ClassID   string `json:"classId"`
	ClassName string `json:"className"`
	DayOfWeek string `json:"dayOfWeek"`
	StartTime string `json:"startTime"`
	Sessions  int    `json:"sessions"`
	CheckIns  int    `json:"checkIns"`
}

type InstructorClassesRow struct {
	Instructor        PersonRef            `json:"instructor"`
	TotalClasses      int                  `json:"totalClasses"`
	Sessions          int                  `json:"sessions"`
	TotalCheckIns     int                  `json:"totalCheckIns"`
	AverageAttendance decimal.Decimal      `json:"averageAttendance"`
	Classes           []ClassAttendanceRow `json:"classes"`
}

// InstructorClassesReport summarises, per instructor, the classes they teach
// and the sessions recorded for them within r.
func (s *Service) InstructorClassesReport(ctx context.Context, r DateRange, instructorID string) ([]InstructorClassesRow, error) {
	instructors, err := s.reportInstructors(ctx, instructorID)
	if err != nil {
		return nil, err
	}
	rows := make([]InstructorClassesRow, 0, len(instructors))
	for _, inst := range instructors {
		classes, err := s.ListClasses(ctx, models.ClassFilter{Instructor: inst.ID})
		if err != nil {
			return nil, err
		}
		sessions, err := s.store.ListAttendance(ctx, models.AttendanceFilter{Instructor: inst.ID, From: r.From, To: r.To})
		if err != nil {
			return nil, err
		}

		row := InstructorClassesRow{
			Instructor:        instructorRef(inst),
			TotalClasses:      len(classes),
			Sessions:          len(sessions),
			AverageAttendance: decimal.Zero,
			Classes:           make([]ClassAttendanceRow, 0, len(classes)),
		}
		byClass := make(map[string]*ClassAttendanceRow, len(classes))
		for _, c := range classes {
			row.Classes = append(row.Classes, ClassAttendanceRow{
				ClassID:   c.ClassID,
				ClassName: c.ClassName,
				DayOfWeek: c.DayOfWeek,
				StartTime: c.StartTime,
			})
		}
		for i := range row.Classes {
			byClass[classes[i].ID] = &row.Classes[i]
		}
		for _, a := range sessions {
			row.TotalCheckIns += a.TotalAttendees
			if c, ok := byClass[a.Class]; ok {
				c.Sessions++
				c.CheckIns += a.TotalAttendees
			}
		}
		if row.Sessions > 0 {
			row.AverageAttendance = decimal.NewFromInt(int64(row.TotalCheckIns)).
				Div(decimal.NewFromInt(int64(row.Sessions))).Round(2)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

type CustomerPackageStats struct {
	TotalPackages         int             `json:"totalPackages"`
	ActiveCount           int             `json:"activeCount"`
	ExpiredCount          int             `json:"expiredCount"`
	FutureCount           int             `json:"futureCount"`
	TotalSpent            decimal.Decimal `json:"totalSpent"`
	TotalClassesPurchased int             `json:"totalClassesPurchased"`
	TotalClassesUsed      int             `json:"totalClassesUsed"`
	TotalClassesRemaining int             `json:"totalClassesRemaining"`
	UtilizationRate       decimal.Decimal `json:"utilizationRate"`
}

type CustomerPackagesRow struct {
	Customer        PersonRef            `json:"customer"`
	Balance         int                  `json:"balance"`
	ActivePackages  []*models.Sale       `json:"activePackages"`
	ExpiredPackages []*models.Sale       `json:"expiredPackages"`
	FuturePackages  []*models.Sale       `json:"futurePackages"`
	Statistics      CustomerPackageStats `json:"statistics"`
}

// Package categories for CustomerPackagesReport.
const (
	CategoryActive  = "active"
	CategoryExpired = "expired"
	CategoryFuture  = "future"
)

// CustomerPackagesReport splits each customer's sales into active, expired
// and not-yet-started. A non-empty category keeps only customers holding at
// least one sale in it.
func (s *Service) CustomerPackagesReport(ctx context.Context, customerID, category string) ([]CustomerPackagesRow, error) {
	if category != "" {
		if err := models.CheckEnum("status", category, []string{CategoryActive, CategoryExpired, CategoryFuture}); err != nil {
			return nil, err
		}
	}
	var customers []*models.Customer
	if customerID != "" {
		c, err := s.store.GetCustomer(ctx, customerID)
		if err != nil {
			return nil, err
		}
		customers = []*models.Customer{c}
	} else {
		var err error
		if customers, err = s.store.ListCustomers(ctx, models.CustomerFilter{}); err != nil {
			return nil, err
		}
		sort.SliceStable(customers, func(i, j int) bool {
			return customers[i].FullName() < customers[j].FullName()
		})
	}

	now := s.now()
	rows := make([]CustomerPackagesRow, 0, len(customers))
	for _, c := range customers {
		sales, err := s.ListSales(ctx, models.SaleFilter{Customer: c.ID})
		if err != nil {
			return nil, err
		}
		row := CustomerPackagesRow{
			Customer:        PersonRef{ID: c.ID, Code: c.CustomerID, Name: c.FullName(), Email: c.Email},
			Balance:         c.Balance,
			ActivePackages:  []*models.Sale{},
			ExpiredPackages: []*models.Sale{},
			FuturePackages:  []*models.Sale{},
		}
		st := &row.Statistics
		st.TotalSpent = decimal.Zero
		st.UtilizationRate = decimal.Zero
		for _, sale := range sales {
			switch saleCategory(sale, now) {
			case CategoryFuture:
				row.FuturePackages = append(row.FuturePackages, sale)
			case CategoryActive:
				row.ActivePackages = append(row.ActivePackages, sale)
			default:
				row.ExpiredPackages = append(row.ExpiredPackages, sale)
			}
			st.TotalSpent = st.TotalSpent.Add(sale.PaymentInfo.AmountPaid)
			st.TotalClassesPurchased += sale.ClassBalance.TotalClasses
			st.TotalClassesUsed += sale.ClassBalance.UsedClasses
			st.TotalClassesRemaining += sale.ClassBalance.RemainingClasses
		}
		st.TotalPackages = len(sales)
		st.ActiveCount = len(row.ActivePackages)
		st.ExpiredCount = len(row.ExpiredPackages)
		st.FutureCount = len(row.FuturePackages)
		if st.TotalClassesPurchased > 0 {
			st.UtilizationRate = decimal.NewFromInt(int64(st.TotalClassesUsed)).
				Div(decimal.NewFromInt(int64(st.TotalClassesPurchased))).
				Mul(decimal.NewFromInt(100)).Round(2)
		}

		switch category {
		case CategoryActive:
			if st.ActiveCount == 0 {
				continue
			}
		case CategoryExpired:
			if st.ExpiredCount == 0 {
				continue
			}
		case CategoryFuture:
			if st.FutureCount == 0 {
				continue
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func saleCategory(sale *models.Sale, now time.Time) string {
	switch {
	case sale.ValidityPeriod.StartDate.After(now):
		return CategoryFuture
	case sale.Status == models.SaleActive && !sale.ValidityPeriod.EndDate.Before(now):
		return CategoryActive
	default:
		return CategoryExpired
	}
}

// Teacher pay rules: each session pays the instructor's payRate, plus a
// bonus for every check-in beyond the threshold.
var (
	BonusPerExtraCheckIn = decimal.NewFromInt(2)
	BonusThreshold       = 10
)

type WeekPay struct {
	WeekStart string          `json:"weekStart"`
	Sessions  int             `json:"sessions"`
	CheckIns  int             `json:"checkIns"`
	Pay       decimal.Decimal `json:"pay"`
}

type TeacherPaymentRow struct {
	Instructor    PersonRef       `json:"instructor"`
	PayRate       decimal.Decimal `json:"payRate"`
	Sessions      int             `json:"sessions"`
	TotalCheckIns int             `json:"totalCheckIns"`
	BasePay       decimal.Decimal `json:"basePay"`
	Bonus         decimal.Decimal `json:"bonus"`
	TotalPay      decimal.Decimal `json:"totalPay"`
	Weekly        []WeekPay       `json:"weekly"`
}

type TeacherPaymentsReport struct {
	Period struct {
		Year  int       `json:"year"`
		Month int       `json:"month"`
		From  time.Time `json:"from"`
		To    time.Time `json:"to"`
	} `json:"period"`
	TotalPay    decimal.Decimal     `json:"totalPay"`
	Instructors []TeacherPaymentRow `json:"instructors"`
}

// TeacherPaymentsReport computes pay for the sessions recorded in one month.
// Zero year or month default to the current ones.
func (s *Service) TeacherPaymentsReport(ctx context.Context, year, month int, instructorID string) (*TeacherPaymentsReport, error) {
	now := s.now()
	if year == 0 {
		year = now.Year()
	}
	if month == 0 {
		month = int(now.Month())
	}
	if month < 1 || month > 12 {
		return nil, models.Invalid("month", "month must be between 1 and 12")
	}
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0).Add(-time.Nanosecond)

	instructors, err := s.reportInstructors(ctx, instructorID)
	if err != nil {
		return nil, err
	}

	rep := &TeacherPaymentsReport{TotalPay: decimal.Zero, Instructors: make([]TeacherPaymentRow, 0, len(instructors))}
	rep.Period.Year, rep.Period.Month, rep.Period.From, rep.Period.To = year, month, from, to

	for _, inst := range instructors {
		sessions, err := s.store.ListAttendance(ctx, models.AttendanceFilter{Instructor: inst.ID, From: &from, To: &to})
		if err != nil {
			return nil, err
		}
		sort.SliceStable(sessions, func(i, j int) bool {
			return sessions[i].ActualDate.Before(sessions[j].ActualDate)
		})

		row := TeacherPaymentRow{
			Instructor: instructorRef(inst),
			PayRate:    inst.PayRate,
			Sessions:   len(sessions),
			BasePay:    inst.PayRate.Mul(decimal.NewFromInt(int64(len(sessions)))),
			Bonus:      decimal.Zero,
			Weekly:     []WeekPay{},
		}
		weeks := map[string]*WeekPay{}
		for _, a := range sessions {
			bonus := sessionBonus(a.TotalAttendees)
			row.TotalCheckIns += a.TotalAttendees
			row.Bonus = row.Bonus.Add(bonus)

			key := weekStart(a.ActualDate).Format(time.DateOnly)
			w, ok := weeks[key]
			if !ok {
				row.Weekly = append(row.Weekly, WeekPay{WeekStart: key, Pay: decimal.Zero})
				weeks = reindexWeeks(row.Weekly)
				w = weeks[key]
			}
			w.Sessions++
			w.CheckIns += a.TotalAttendees
			w.Pay = w.Pay.Add(inst.PayRate).Add(bonus)
		}
		row.TotalPay = row.BasePay.Add(row.Bonus)
		rep.TotalPay = rep.TotalPay.Add(row.TotalPay)
		rep.Instructors = append(rep.Instructors, row)
	}
	return rep, nil
}

// reindexWeeks rebuilds the lookup after append may have moved the slice.
func reindexWeeks(weekly []WeekPay) map[string]*WeekPay {
	m := make(map[string]*WeekPay, len(weekly))
	for i := range weekly {
		m[weekly[i].WeekStart] = &weekly[i]
	}
	return m
}

func sessionBonus(checkIns int) decimal.Decimal {
	extra := checkIns - BonusThreshold
	if extra <= 0 {
		return decimal.Zero
	}
	return BonusPerExtraCheckIn.Mul(decimal.NewFromInt(int64(extra)))
}

// weekStart returns the Sunday that starts t's week.
func weekStart(t time.Time) time.Time {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return d.AddDate(0, 0, -int(d.Weekday()))
}

type SummaryReport struct {
	Instructors       int             `json:"instructors"`
	ActiveInstructors int             `json:"activeInstructors"`
	Classes           int             `json:"classes"`
	ActiveClasses     int             `json:"activeClasses"`
	Customers         int             `json:"customers"`
	ActiveCustomers   int             `json:"activeCustomers"`
	CustomersOwing    int             `json:"customersOwing"`
	Packages          int             `json:"packages"`
	ActivePackages    int             `json:"activePackages"`
	Sales             int             `json:"sales"`
	Revenue           decimal.Decimal `json:"revenue"`
	Sessions          int             `json:"sessions"`
	CheckIns          int             `json:"checkIns"`
	Present           int             `json:"present"`
}

// Summary counts every collection; sales and sessions are limited to r.
func (s *Service) Summary(ctx context.Context, r DateRange) (*SummaryReport, error) {
	rep := &SummaryReport{Revenue: decimal.Zero}

	instructors, err := s.store.ListInstructors(ctx, models.InstructorFilter{})
	if err != nil {
		return nil, err
	}
	rep.Instructors = len(instructors)
	for _, i := range instructors {
		if i.Status == models.InstructorActive {
			rep.ActiveInstructors++
		}
	}

	classes, err := s.store.ListClasses(ctx, models.ClassFilter{})
	if err != nil {
		return nil, err
	}
	rep.Classes = len(classes)
	for _, c := range classes {
		if c.IsActive {
			rep.ActiveClasses++
		}
	}

	customers, err := s.store.ListCustomers(ctx, models.CustomerFilter{})
	if err != nil {
		return nil, err
	}
	rep.Customers = len(customers)
	for _, c := range customers {
		if c.Status == models.CustomerActive {
			rep.ActiveCustomers++
		}
		if c.Balance < 0 {
			rep.CustomersOwing++
		}
	}

	packages, err := s.store.ListPackages(ctx, models.PackageFilter{})
	if err != nil {
		return nil, err
	}
	rep.Packages = len(packages)
	for _, p := range packages {
		if p.Status == models.PackageActive {
			rep.ActivePackages++
		}
	}

	sales, err := s.store.ListSales(ctx, models.SaleFilter{PaidFrom: r.From, PaidTo: r.To})
	if err != nil {
		return nil, err
	}
	rep.Sales = len(sales)
	for _, sale := range sales {
		rep.Revenue = rep.Revenue.Add(sale.PaymentInfo.AmountPaid)
	}

	sessions, err := s.store.ListAttendance(ctx, models.AttendanceFilter{From: r.From, To: r.To})
	if err != nil {
		return nil, err
	}
	rep.Sessions = len(sessions)
	for _, a := range sessions {
		rep.CheckIns += a.TotalAttendees
		rep.Present += a.CheckIns()
	}
	return rep, nil
}

func (s *Service) reportInstructors(ctx context.Context, instructorID string) ([]*models.Instructor, error) {
	if instructorID != "" {
		inst, err := s.store.GetInstructor(ctx, instructorID)
		if err != nil {
			return nil, err
		}
		return []*models.Instructor{inst}, nil
	}
	return s.ListInstructors(ctx, models.InstructorFilter{})
}
