package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/JarviousX/yogitrack-studio-management/internal/models"
)

func checkIn(t *testing.T, s *Service, classID, instructorID string, customers ...string) *models.Attendance {
	t.Helper()
	attendees := make([]AttendeeInput, len(customers))
	for i, c := range customers {
		attendees[i] = AttendeeInput{CustomerID: c}
	}
	rec, err := s.CreateAttendance(context.Background(), CreateAttendanceInput{
		ClassID:      classID,
		InstructorID: instructorID,
		ActualDate:   "2025-03-03",
		ActualTime:   "09:00",
		Attendees:    attendees,
	})
	if err != nil {
		t.Fatalf("CreateAttendance: %v", err)
	}
	return rec
}

func balance(t *testing.T, s *Service, customerID string) int {
	t.Helper()
	c, err := s.GetCustomer(context.Background(), customerID)
	if err != nil {
		t.Fatalf("GetCustomer: %v", err)
	}
	return c.Balance
}

func saleBalance(t *testing.T, s *Service, saleID string) models.ClassBalance {
	t.Helper()
	sale, err := s.GetSale(context.Background(), saleID)
	if err != nil {
		t.Fatalf("GetSale: %v", err)
	}
	b := sale.ClassBalance
	if b.UsedClasses+b.RemainingClasses != b.TotalClasses {
		t.Errorf("sale %s used %d + remaining %d != total %d",
			sale.SaleID, b.UsedClasses, b.RemainingClasses, b.TotalClasses)
	}
	return b
}

func TestCreateSaleCreditsCustomer(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	cust := mustCustomer(t, s, "sam@example.com")
	pkg := mustPackage(t, s, 10, 30, "150")

	sale := mustSale(t, s, cust.ID, pkg.ID)
	if sale.SaleID != "S00001" {
		t.Errorf("saleId = %q", sale.SaleID)
	}
	if got := sale.ClassBalance; got != (models.ClassBalance{TotalClasses: 10, UsedClasses: 0, RemainingClasses: 10}) {
		t.Errorf("class balance = %+v", got)
	}
	if !sale.PaymentInfo.AmountPaid.Equal(decimal.NewFromInt(150)) {
		t.Errorf("amountPaid = %s, want package price", sale.PaymentInfo.AmountPaid)
	}
	if want := testNow.AddDate(0, 0, 30); !sale.ValidityPeriod.EndDate.Equal(want) {
		t.Errorf("endDate = %v, want %v", sale.ValidityPeriod.EndDate, want)
	}
	if got := balance(t, s, cust.ID); got != 10 {
		t.Errorf("customer balance = %d, want 10", got)
	}

	p, err := s.GetPackage(ctx, pkg.ID)
	if err != nil {
		t.Fatalf("GetPackage: %v", err)
	}
	if p.SalesData.TotalSold != 1 || !p.SalesData.TotalRevenue.Equal(decimal.NewFromInt(150)) {
		t.Errorf("sales data = %+v", p.SalesData)
	}

	// later package edits leave the snapshot alone
	if _, err := s.UpdatePackage(ctx, pkg.ID, UpdatePackageInput{Price: dec("999")}); err != nil {
		t.Fatalf("UpdatePackage: %v", err)
	}
	got, _ := s.GetSale(ctx, sale.ID)
	if !got.PackageDetails.Price.Equal(decimal.NewFromInt(150)) {
		t.Errorf("snapshot price = %s, want 150", got.PackageDetails.Price)
	}
}

func TestCreateSaleUnknownReferences(t *testing.T) {
	s := newTestService(t)
	cust := mustCustomer(t, s, "sam@example.com")
	pkg := mustPackage(t, s, 5, 30, "80")

	tests := []struct {
		name string
		in   CreateSaleInput
	}{
		{"customer", CreateSaleInput{CustomerID: "missing", PackageID: pkg.ID}},
		{"package", CreateSaleInput{CustomerID: cust.ID, PackageID: "missing"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.CreateSale(context.Background(), tt.in); !models.IsNotFound(err) {
				t.Errorf("err = %v, want not found", err)
			}
		})
	}
	if got := balance(t, s, cust.ID); got != 0 {
		t.Errorf("balance = %d after failed sales, want 0", got)
	}
}

func TestCheckInConsumesActiveSale(t *testing.T) {
	s := newTestService(t)
	inst := mustInstructor(t, s, "maya@example.com")
	class := mustClass(t, s, inst.ID)
	cust := mustCustomer(t, s, "sam@example.com")
	sale := mustSale(t, s, cust.ID, mustPackage(t, s, 10, 30, "150").ID)

	rec := checkIn(t, s, class.ID, inst.ID, cust.ID)
	if rec.AttendanceID != "A00001" || rec.Status != models.AttendanceDraft {
		t.Errorf("record id=%q status=%q", rec.AttendanceID, rec.Status)
	}
	if rec.TotalAttendees != 1 || rec.ScheduleWarning.HasWarning {
		t.Fatalf("attendees=%d warning=%+v", rec.TotalAttendees, rec.ScheduleWarning)
	}
	a := rec.Attendees[0]
	if a.ClassBalanceBefore != 10 || a.ClassBalanceAfter != 9 || !a.BalanceUpdated {
		t.Errorf("attendee balance before=%d after=%d updated=%v", a.ClassBalanceBefore, a.ClassBalanceAfter, a.BalanceUpdated)
	}
	if a.Sale != sale.ID || a.PackageDetails == nil || a.PackageDetails.NumberOfClasses != 10 {
		t.Errorf("attendee sale=%q package=%+v", a.Sale, a.PackageDetails)
	}
	if a.CustomerDetails.CustomerID != cust.CustomerID || a.Status != models.AttendeePresent {
		t.Errorf("attendee details=%+v status=%q", a.CustomerDetails, a.Status)
	}
	if got := balance(t, s, cust.ID); got != 9 {
		t.Errorf("customer balance = %d, want 9", got)
	}
	if b := saleBalance(t, s, sale.ID); b.UsedClasses != 1 || b.RemainingClasses != 9 {
		t.Errorf("sale balance = %+v", b)
	}
}

func TestCheckInWithoutSaleGoesNegative(t *testing.T) {
	s := newTestService(t)
	inst := mustInstructor(t, s, "maya@example.com")
	class := mustClass(t, s, inst.ID)
	cust := mustCustomer(t, s, "sam@example.com")

	rec := checkIn(t, s, class.ID, inst.ID, cust.ID)
	a := rec.Attendees[0]
	if a.ClassBalanceBefore != 0 || a.ClassBalanceAfter != -1 {
		t.Errorf("before=%d after=%d, want 0 and -1", a.ClassBalanceBefore, a.ClassBalanceAfter)
	}
	if a.Sale != "" || a.PackageDetails != nil {
		t.Errorf("attendee without sale has sale=%q package=%+v", a.Sale, a.PackageDetails)
	}
	checkIn(t, s, class.ID, inst.ID, cust.ID)
	if got := balance(t, s, cust.ID); got != -2 {
		t.Errorf("balance = %d, want -2", got)
	}
}

func TestCheckInSkipsUnknownCustomer(t *testing.T) {
	s := newTestService(t)
	inst := mustInstructor(t, s, "maya@example.com")
	class := mustClass(t, s, inst.ID)
	cust := mustCustomer(t, s, "sam@example.com")

	rec := checkIn(t, s, class.ID, inst.ID, "missing", cust.ID)
	if rec.TotalAttendees != 1 || rec.Attendees[0].Customer != cust.ID {
		t.Errorf("attendees = %+v, want only %s", rec.Attendees, cust.ID)
	}
}

func TestCheckInPrefersEarliestEndingSale(t *testing.T) {
	s := newTestService(t)
	inst := mustInstructor(t, s, "maya@example.com")
	class := mustClass(t, s, inst.ID)
	cust := mustCustomer(t, s, "sam@example.com")

	long := mustSale(t, s, cust.ID, mustPackage(t, s, 10, 90, "150").ID)
	short := mustSale(t, s, cust.ID, mustPackage(t, s, 5, 10, "80").ID)

	rec := checkIn(t, s, class.ID, inst.ID, cust.ID)
	if rec.Attendees[0].Sale != short.ID {
		t.Errorf("consumed sale %q, want the one ending first %q", rec.Attendees[0].Sale, short.ID)
	}
	if b := saleBalance(t, s, long.ID); b.UsedClasses != 0 {
		t.Errorf("long sale used = %d, want 0", b.UsedClasses)
	}
	if got := balance(t, s, cust.ID); got != 14 {
		t.Errorf("balance = %d, want 14", got)
	}
}

func TestCheckInIgnoresExhaustedAndInactiveSales(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	inst := mustInstructor(t, s, "maya@example.com")
	class := mustClass(t, s, inst.ID)
	cust := mustCustomer(t, s, "sam@example.com")

	one := mustSale(t, s, cust.ID, mustPackage(t, s, 1, 30, "20").ID)
	cancelled := mustSale(t, s, cust.ID, mustPackage(t, s, 5, 30, "80").ID)
	if _, err := s.SetSaleStatus(ctx, cancelled.ID, models.SaleCancelled); err != nil {
		t.Fatalf("SetSaleStatus: %v", err)
	}

	first := checkIn(t, s, class.ID, inst.ID, cust.ID)
	if first.Attendees[0].Sale != one.ID {
		t.Fatalf("first check-in sale = %q, want %q", first.Attendees[0].Sale, one.ID)
	}
	second := checkIn(t, s, class.ID, inst.ID, cust.ID)
	if second.Attendees[0].Sale != "" {
		t.Errorf("second check-in consumed %q, want no sale", second.Attendees[0].Sale)
	}
}

func TestDeleteSaleRestoresLedger(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	cust := mustCustomer(t, s, "sam@example.com")
	pkg := mustPackage(t, s, 10, 30, "150")
	before := balance(t, s, cust.ID)

	sale := mustSale(t, s, cust.ID, pkg.ID)
	if err := s.DeleteSale(ctx, sale.ID); err != nil {
		t.Fatalf("DeleteSale: %v", err)
	}

	if got := balance(t, s, cust.ID); got != before {
		t.Errorf("balance = %d, want %d", got, before)
	}
	p, err := s.GetPackage(ctx, pkg.ID)
	if err != nil {
		t.Fatalf("GetPackage: %v", err)
	}
	if p.SalesData.TotalSold != 0 || !p.SalesData.TotalRevenue.IsZero() {
		t.Errorf("sales data = %+v", p.SalesData)
	}
}

func TestDeleteSaleFloorsLedger(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	cust := mustCustomer(t, s, "sam@example.com")
	pkg := mustPackage(t, s, 10, 30, "150")
	sale := mustSale(t, s, cust.ID, pkg.ID)

	if _, err := s.UpdateCustomer(ctx, cust.ID, UpdateCustomerInput{Balance: ptr(3)}); err != nil {
		t.Fatalf("UpdateCustomer: %v", err)
	}
	// an outside sale worth nothing and a corrected amount push revenue below zero on delete
	if _, err := s.RecordPackageSales(ctx, pkg.ID, PackageSalesInput{Revenue: decimal.Zero}); err != nil {
		t.Fatalf("RecordPackageSales: %v", err)
	}
	if _, err := s.UpdateSale(ctx, sale.ID, UpdateSaleInput{AmountPaid: dec("200")}); err != nil {
		t.Fatalf("UpdateSale: %v", err)
	}
	if err := s.DeleteSale(ctx, sale.ID); err != nil {
		t.Fatalf("DeleteSale: %v", err)
	}

	if got := balance(t, s, cust.ID); got != 0 {
		t.Errorf("balance = %d, want floor 0", got)
	}
	p, _ := s.GetPackage(ctx, pkg.ID)
	if p.SalesData.TotalSold != 1 || !p.SalesData.TotalRevenue.IsZero() {
		t.Errorf("sales data = %+v, want 1 sold and zero revenue", p.SalesData)
	}
	if _, err := s.GetSale(ctx, sale.ID); !models.IsNotFound(err) {
		t.Errorf("GetSale after delete err = %v", err)
	}
	if err := s.DeleteSale(ctx, sale.ID); !models.IsNotFound(err) {
		t.Errorf("second delete err = %v", err)
	}
}

func TestUseClasses(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	cust := mustCustomer(t, s, "sam@example.com")
	sale := mustSale(t, s, cust.ID, mustPackage(t, s, 3, 30, "45").ID)

	got, err := s.UseClasses(ctx, sale.ID, UseClassesInput{ClassesUsed: 2})
	if err != nil {
		t.Fatalf("UseClasses: %v", err)
	}
	if got.ClassBalance.UsedClasses != 2 || got.ClassBalance.RemainingClasses != 1 {
		t.Errorf("class balance = %+v", got.ClassBalance)
	}
	if b := balance(t, s, cust.ID); b != 1 {
		t.Errorf("balance = %d, want 1", b)
	}

	// overuse floors remaining and balance at zero
	got, err = s.UseClasses(ctx, sale.ID, UseClassesInput{ClassesUsed: 5})
	if err != nil {
		t.Fatalf("UseClasses: %v", err)
	}
	if got.ClassBalance.RemainingClasses != 0 || balance(t, s, cust.ID) != 0 {
		t.Errorf("remaining = %d balance = %d, want 0 and 0", got.ClassBalance.RemainingClasses, balance(t, s, cust.ID))
	}
}

func TestDeleteAttendanceRestoresLedger(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	inst := mustInstructor(t, s, "maya@example.com")
	class := mustClass(t, s, inst.ID)
	withSale := mustCustomer(t, s, "sam@example.com")
	noSale := mustCustomer(t, s, "kim@example.com")
	sale := mustSale(t, s, withSale.ID, mustPackage(t, s, 10, 30, "150").ID)

	rec := checkIn(t, s, class.ID, inst.ID, withSale.ID, noSale.ID)
	if err := s.DeleteAttendance(ctx, rec.ID); err != nil {
		t.Fatalf("DeleteAttendance: %v", err)
	}

	if got := balance(t, s, withSale.ID); got != 10 {
		t.Errorf("balance with sale = %d, want 10", got)
	}
	if got := balance(t, s, noSale.ID); got != 0 {
		t.Errorf("balance without sale = %d, want 0", got)
	}
	if b := saleBalance(t, s, sale.ID); b.UsedClasses != 0 || b.RemainingClasses != 10 {
		t.Errorf("sale balance = %+v", b)
	}
	if _, err := s.GetAttendance(ctx, rec.ID); !models.IsNotFound(err) {
		t.Errorf("GetAttendance after delete err = %v", err)
	}
}

func TestReverseRepeatedAttendee(t *testing.T) {
	tests := []struct {
		name    string
		reverse func(s *Service, id string) error
	}{
		{"delete", func(s *Service, id string) error {
			return s.DeleteAttendance(context.Background(), id)
		}},
		{"replace with nobody", func(s *Service, id string) error {
			_, err := s.UpdateAttendance(context.Background(), id, UpdateAttendanceInput{Attendees: &[]AttendeeInput{}})
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestService(t)
			inst := mustInstructor(t, s, "maya@example.com")
			class := mustClass(t, s, inst.ID)
			cust := mustCustomer(t, s, "sam@example.com")
			sale := mustSale(t, s, cust.ID, mustPackage(t, s, 10, 30, "150").ID)

			rec := checkIn(t, s, class.ID, inst.ID, cust.ID, cust.ID)
			if got := balance(t, s, cust.ID); got != 8 {
				t.Fatalf("balance after double check-in = %d, want 8", got)
			}
			if err := tt.reverse(s, rec.ID); err != nil {
				t.Fatalf("reverse: %v", err)
			}

			if got := balance(t, s, cust.ID); got != 10 {
				t.Errorf("balance = %d, want 10", got)
			}
			if b := saleBalance(t, s, sale.ID); b.UsedClasses != 0 || b.RemainingClasses != 10 {
				t.Errorf("sale balance = %+v", b)
			}
		})
	}
}

func TestUpdateAttendanceReplacesAttendees(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	inst := mustInstructor(t, s, "maya@example.com")
	class := mustClass(t, s, inst.ID)
	a := mustCustomer(t, s, "sam@example.com")
	b := mustCustomer(t, s, "kim@example.com")
	sale := mustSale(t, s, a.ID, mustPackage(t, s, 10, 30, "150").ID)

	rec := checkIn(t, s, class.ID, inst.ID, a.ID)
	updated, err := s.UpdateAttendance(ctx, rec.ID, UpdateAttendanceInput{
		Attendees:  &[]AttendeeInput{{CustomerID: b.ID, Status: models.AttendeeLate}},
		ActualDate: ptr("2025-03-04"),
	})
	if err != nil {
		t.Fatalf("UpdateAttendance: %v", err)
	}

	if updated.TotalAttendees != 1 || updated.Attendees[0].Customer != b.ID {
		t.Errorf("attendees = %+v", updated.Attendees)
	}
	if !updated.ScheduleWarning.HasWarning {
		t.Error("rescheduled to Tuesday without a schedule warning")
	}
	if got := balance(t, s, a.ID); got != 10 {
		t.Errorf("removed attendee balance = %d, want 10", got)
	}
	if got := balance(t, s, b.ID); got != -1 {
		t.Errorf("added attendee balance = %d, want -1", got)
	}
	if bal := saleBalance(t, s, sale.ID); bal.UsedClasses != 0 {
		t.Errorf("sale used = %d, want 0", bal.UsedClasses)
	}

	if _, err := s.SetAttendanceStatus(ctx, rec.ID, "archived"); !models.IsValidation(err) {
		t.Errorf("bad status err = %v", err)
	}
	done, err := s.SetAttendanceStatus(ctx, rec.ID, models.AttendanceCompleted)
	if err != nil {
		t.Fatalf("SetAttendanceStatus: %v", err)
	}
	if done.Status != models.AttendanceCompleted || done.TotalAttendees != 1 {
		t.Errorf("status=%q attendees=%d", done.Status, done.TotalAttendees)
	}
}

func TestLedgerSequenceKeepsSaleInvariant(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	inst := mustInstructor(t, s, "maya@example.com")
	class := mustClass(t, s, inst.ID)
	cust := mustCustomer(t, s, "sam@example.com")
	sale := mustSale(t, s, cust.ID, mustPackage(t, s, 4, 30, "60").ID)

	var recs []*models.Attendance
	for i := 0; i < 6; i++ {
		recs = append(recs, checkIn(t, s, class.ID, inst.ID, cust.ID))
		saleBalance(t, s, sale.ID)
	}
	// four classes from the sale, then two unpaid
	if got := balance(t, s, cust.ID); got != -2 {
		t.Errorf("balance = %d, want -2", got)
	}
	for i := len(recs) - 1; i >= 0; i-- {
		if err := s.DeleteAttendance(ctx, recs[i].ID); err != nil {
			t.Fatalf("DeleteAttendance: %v", err)
		}
		saleBalance(t, s, sale.ID)
	}
	if got := balance(t, s, cust.ID); got != 4 {
		t.Errorf("balance after reversing everything = %d, want 4", got)
	}
}
