package service

import (
	"context"
	"strconv"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/JarviousX/yogitrack-studio-management/internal/models"
)

func TestTeacherPaymentsReport(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	inst := mustInstructor(t, s, "maya@example.com")
	class := mustClass(t, s, inst.ID)

	ids := make([]string, 12)
	for i := range ids {
		ids[i] = mustCustomer(t, s, "c"+strconv.Itoa(i)+"@example.com").ID
	}
	checkIn(t, s, class.ID, inst.ID, ids...)
	checkIn(t, s, class.ID, inst.ID, ids[:3]...)

	rep, err := s.TeacherPaymentsReport(ctx, 2025, 3, "")
	if err != nil {
		t.Fatalf("TeacherPaymentsReport: %v", err)
	}
	if len(rep.Instructors) != 1 {
		t.Fatalf("instructors = %d, want 1", len(rep.Instructors))
	}
	row := rep.Instructors[0]
	if row.Sessions != 2 || row.TotalCheckIns != 15 {
		t.Errorf("sessions=%d checkIns=%d", row.Sessions, row.TotalCheckIns)
	}
	tests := []struct {
		name string
		got  decimal.Decimal
		want int64
	}{
		{"base pay", row.BasePay, 100},
		{"bonus", row.Bonus, 4},
		{"total pay", row.TotalPay, 104},
		{"report total", rep.TotalPay, 104},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.got.Equal(decimal.NewFromInt(tt.want)) {
				t.Errorf("got %s, want %d", tt.got, tt.want)
			}
		})
	}
	if len(row.Weekly) != 1 || row.Weekly[0].WeekStart != "2025-03-02" || row.Weekly[0].Sessions != 2 {
		t.Errorf("weekly = %+v", row.Weekly)
	}

	empty, err := s.TeacherPaymentsReport(ctx, 2025, 4, inst.ID)
	if err != nil {
		t.Fatalf("TeacherPaymentsReport April: %v", err)
	}
	if empty.Instructors[0].Sessions != 0 || !empty.TotalPay.IsZero() {
		t.Errorf("april = %+v", empty.Instructors[0])
	}

	if _, err := s.TeacherPaymentsReport(ctx, 2025, 13, ""); !models.IsValidation(err) {
		t.Errorf("month 13 err = %v", err)
	}
}

func TestInstructorClassesReport(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	inst := mustInstructor(t, s, "maya@example.com")
	class := mustClass(t, s, inst.ID)
	a := mustCustomer(t, s, "a@example.com")
	b := mustCustomer(t, s, "b@example.com")

	checkIn(t, s, class.ID, inst.ID, a.ID, b.ID)
	checkIn(t, s, class.ID, inst.ID, a.ID)

	rows, err := s.InstructorClassesReport(ctx, DateRange{}, inst.ID)
	if err != nil {
		t.Fatalf("InstructorClassesReport: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d", len(rows))
	}
	r := rows[0]
	if r.TotalClasses != 1 || r.Sessions != 2 || r.TotalCheckIns != 3 {
		t.Errorf("row = %+v", r)
	}
	if !r.AverageAttendance.Equal(decimal.RequireFromString("1.5")) {
		t.Errorf("average = %s, want 1.5", r.AverageAttendance)
	}
	if len(r.Classes) != 1 || r.Classes[0].Sessions != 2 || r.Classes[0].CheckIns != 3 {
		t.Errorf("classes = %+v", r.Classes)
	}

	if _, err := s.InstructorClassesReport(ctx, DateRange{}, "missing"); !models.IsNotFound(err) {
		t.Errorf("missing instructor err = %v", err)
	}
}

func TestPackageSalesReport(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	cust := mustCustomer(t, s, "sam@example.com")
	mustSale(t, s, cust.ID, mustPackage(t, s, 10, 30, "150").ID)
	mustSale(t, s, cust.ID, mustPackage(t, s, 2, 30, "50").ID)

	rep, err := s.PackageSalesReport(ctx, DateRange{}, "")
	if err != nil {
		t.Fatalf("PackageSalesReport: %v", err)
	}
	if rep.Summary.TotalSales != 2 || !rep.Summary.TotalRevenue.Equal(decimal.NewFromInt(200)) {
		t.Errorf("summary = %+v", rep.Summary)
	}
	if !rep.Summary.AverageSaleValue.Equal(decimal.NewFromInt(100)) {
		t.Errorf("average = %s, want 100", rep.Summary.AverageSaleValue)
	}
	if m := rep.SalesByMonth["2025-03"]; m == nil || m.Count != 2 {
		t.Errorf("salesByMonth = %+v", rep.SalesByMonth)
	}
	if ty := rep.SalesByType[models.PackageTypeClassPackage]; ty == nil || ty.Count != 2 {
		t.Errorf("salesByType = %+v", rep.SalesByType)
	}

	r, _ := ParseRange("2025-04-01", "")
	later, err := s.PackageSalesReport(ctx, r, "")
	if err != nil {
		t.Fatalf("PackageSalesReport April: %v", err)
	}
	if later.Summary.TotalSales != 0 || !later.Summary.AverageSaleValue.IsZero() {
		t.Errorf("april summary = %+v", later.Summary)
	}
}

func TestCustomerPackagesReport(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	inst := mustInstructor(t, s, "maya@example.com")
	class := mustClass(t, s, inst.ID)
	cust := mustCustomer(t, s, "sam@example.com")
	mustCustomer(t, s, "idle@example.com")

	mustSale(t, s, cust.ID, mustPackage(t, s, 10, 30, "150").ID)
	future := mustPackage(t, s, 5, 30, "80")
	if _, err := s.CreateSale(ctx, CreateSaleInput{
		CustomerID:        cust.ID,
		PackageID:         future.ID,
		ValidityStartDate: ptr("2025-04-01"),
	}); err != nil {
		t.Fatalf("CreateSale: %v", err)
	}
	checkIn(t, s, class.ID, inst.ID, cust.ID)

	rows, err := s.CustomerPackagesReport(ctx, cust.ID, "")
	if err != nil {
		t.Fatalf("CustomerPackagesReport: %v", err)
	}
	st := rows[0].Statistics
	if st.TotalPackages != 2 || st.ActiveCount != 1 || st.FutureCount != 1 || st.ExpiredCount != 0 {
		t.Errorf("counts = %+v", st)
	}
	if st.TotalClassesPurchased != 15 || st.TotalClassesUsed != 1 {
		t.Errorf("classes = %+v", st)
	}
	if !st.UtilizationRate.Equal(decimal.RequireFromString("6.67")) {
		t.Errorf("utilization = %s, want 6.67", st.UtilizationRate)
	}
	if !st.TotalSpent.Equal(decimal.NewFromInt(230)) {
		t.Errorf("total spent = %s", st.TotalSpent)
	}

	tests := []struct {
		category string
		want     int
	}{
		{"", 2},
		{CategoryActive, 1},
		{CategoryFuture, 1},
		{CategoryExpired, 0},
	}
	for _, tt := range tests {
		t.Run("category "+tt.category, func(t *testing.T) {
			rows, err := s.CustomerPackagesReport(ctx, "", tt.category)
			if err != nil {
				t.Fatalf("CustomerPackagesReport: %v", err)
			}
			if len(rows) != tt.want {
				t.Errorf("rows = %d, want %d", len(rows), tt.want)
			}
		})
	}

	if _, err := s.CustomerPackagesReport(ctx, "", "lapsed"); !models.IsValidation(err) {
		t.Errorf("bad category err = %v", err)
	}
}

func TestSummaryReport(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	inst := mustInstructor(t, s, "maya@example.com")
	class := mustClass(t, s, inst.ID)
	paid := mustCustomer(t, s, "paid@example.com")
	owing := mustCustomer(t, s, "owing@example.com")
	mustSale(t, s, paid.ID, mustPackage(t, s, 10, 30, "150").ID)

	rec, err := s.CreateAttendance(ctx, CreateAttendanceInput{
		ClassID:      class.ID,
		InstructorID: inst.ID,
		ActualDate:   "2025-03-03",
		ActualTime:   "09:00",
		Attendees: []AttendeeInput{
			{CustomerID: paid.ID},
			{CustomerID: owing.ID, Status: models.AttendeeAbsent},
		},
	})
	if err != nil {
		t.Fatalf("CreateAttendance: %v", err)
	}
	if rec.CheckIns() != 1 {
		t.Errorf("check-ins = %d, want 1", rec.CheckIns())
	}

	rep, err := s.Summary(ctx, DateRange{})
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	want := SummaryReport{
		Instructors:       1,
		ActiveInstructors: 1,
		Classes:           1,
		ActiveClasses:     1,
		Customers:         2,
		ActiveCustomers:   2,
		CustomersOwing:    1,
		Packages:          1,
		ActivePackages:    1,
		Sales:             1,
		Revenue:           rep.Revenue,
		Sessions:          1,
		CheckIns:          2,
		Present:           1,
	}
	if *rep != want {
		t.Errorf("summary = %+v, want %+v", *rep, want)
	}
	if !rep.Revenue.Equal(decimal.NewFromInt(150)) {
		t.Errorf("revenue = %s", rep.Revenue)
	}
}
