package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/JarviousX/yogitrack-studio-management/internal/models"
	"github.com/JarviousX/yogitrack-studio-management/internal/store"
)

func TestCustomerCRUD(t *testing.T) {
	ctx := context.Background()
	s := New()

	c := &models.Customer{ID: "c1", CustomerID: "CU00001", FirstName: "Ana", Email: "ana@example.com", Status: "active", Balance: 3}
	if err := s.CreateCustomer(ctx, c); err != nil {
		t.Fatalf("CreateCustomer: %v", err)
	}
	if err := s.CreateCustomer(ctx, c); err == nil {
		t.Fatal("expected duplicate id error")
	}

	// mutations of the caller's copy must not leak into the store
	c.Balance = 99
	got, err := s.GetCustomer(ctx, "c1")
	if err != nil {
		t.Fatalf("GetCustomer: %v", err)
	}
	if got.Balance != 3 {
		t.Errorf("Balance = %d, want 3", got.Balance)
	}

	got.Balance = 7
	if err := s.UpdateCustomer(ctx, got); err != nil {
		t.Fatalf("UpdateCustomer: %v", err)
	}
	got, _ = s.GetCustomer(ctx, "c1")
	if got.Balance != 7 {
		t.Errorf("Balance after update = %d, want 7", got.Balance)
	}

	if err := s.DeleteCustomer(ctx, "c1"); err != nil {
		t.Fatalf("DeleteCustomer: %v", err)
	}
	_, err = s.GetCustomer(ctx, "c1")
	var nf *models.NotFoundError
	if !errors.As(err, &nf) || nf.Error() != "Customer not found" {
		t.Errorf("GetCustomer after delete err = %v, want Customer not found", err)
	}
	if err := s.UpdateCustomer(ctx, got); !models.IsNotFound(err) {
		t.Errorf("UpdateCustomer missing err = %v", err)
	}
}

func TestListKeepsCreationOrderAndFilters(t *testing.T) {
	ctx := context.Background()
	s := New()
	for _, p := range []*models.Package{
		{ID: "b", PackageID: "P00001", Type: "Workshop", Status: "active"},
		{ID: "a", PackageID: "P00002", Type: "Drop-in", Status: "active"},
		{ID: "c", PackageID: "P00003", Type: "Workshop", Status: "inactive"},
	} {
		if err := s.CreatePackage(ctx, p); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name   string
		filter models.PackageFilter
		want   []string
	}{
		{"all", models.PackageFilter{}, []string{"b", "a", "c"}},
		{"by type", models.PackageFilter{Type: "Workshop"}, []string{"b", "c"}},
		{"by status and type", models.PackageFilter{Type: "Workshop", Status: "active"}, []string{"b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListPackages(ctx, tt.filter)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d packages, want %d", len(got), len(tt.want))
			}
			for i, p := range got {
				if p.ID != tt.want[i] {
					t.Errorf("[%d] = %s, want %s", i, p.ID, tt.want[i])
				}
			}
		})
	}
}

func TestFindActiveSaleTieBreak(t *testing.T) {
	ctx := context.Background()
	s := New()
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	mk := func(id string, end time.Time, created time.Time, status string, remaining int) *models.Sale {
		return &models.Sale{
			ID:             id,
			SaleID:         id,
			Customer:       "cust",
			Status:         status,
			ValidityPeriod: models.ValidityPeriod{StartDate: now.AddDate(0, -1, 0), EndDate: end},
			ClassBalance:   models.ClassBalance{TotalClasses: 10, RemainingClasses: remaining, UsedClasses: 10 - remaining},
			CreatedAt:      created,
		}
	}

	for _, sale := range []*models.Sale{
		mk("late-end", now.AddDate(0, 2, 0), now.Add(-3*time.Hour), models.SaleActive, 5),
		mk("expired", now.AddDate(0, 0, -1), now.Add(-5*time.Hour), models.SaleActive, 5),
		mk("empty", now.AddDate(0, 0, 5), now.Add(-5*time.Hour), models.SaleActive, 0),
		mk("cancelled", now.AddDate(0, 0, 5), now.Add(-5*time.Hour), models.SaleCancelled, 5),
		mk("early-end-newer", now.AddDate(0, 1, 0), now.Add(-1*time.Hour), models.SaleActive, 2),
		mk("early-end-older", now.AddDate(0, 1, 0), now.Add(-2*time.Hour), models.SaleActive, 2),
	} {
		if err := s.CreateSale(ctx, sale); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.FindActiveSale(ctx, "cust", now)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.ID != "early-end-older" {
		t.Fatalf("FindActiveSale = %v, want early-end-older", got)
	}

	none, err := s.FindActiveSale(ctx, "someone-else", now)
	if err != nil || none != nil {
		t.Errorf("FindActiveSale for unknown customer = %v, %v; want nil, nil", none, err)
	}
}

func TestRunInTxRollsBack(t *testing.T) {
	ctx := context.Background()
	s := New()
	if err := s.CreateCustomer(ctx, &models.Customer{ID: "c1", Balance: 5}); err != nil {
		t.Fatal(err)
	}

	boom := errors.New("boom")
	err := s.RunInTx(ctx, func(ctx context.Context, tx store.Store) error {
		c, err := tx.GetCustomer(ctx, "c1")
		if err != nil {
			return err
		}
		c.Balance = 0
		if err := tx.UpdateCustomer(ctx, c); err != nil {
			return err
		}
		if _, err := tx.NextSequence(ctx, models.KindSale); err != nil {
			return err
		}
		if err := tx.CreateSale(ctx, &models.Sale{ID: "s1"}); err != nil {
			return err
		}
		// nested calls join the outer transaction
		return tx.RunInTx(ctx, func(context.Context, store.Store) error { return boom })
	})
	if !errors.Is(err, boom) {
		t.Fatalf("RunInTx err = %v, want boom", err)
	}

	c, _ := s.GetCustomer(ctx, "c1")
	if c.Balance != 5 {
		t.Errorf("Balance = %d, want 5 after rollback", c.Balance)
	}
	if _, err := s.GetSale(ctx, "s1"); !models.IsNotFound(err) {
		t.Errorf("sale survived rollback: %v", err)
	}
	n, _ := s.NextSequence(ctx, models.KindSale)
	if n != 1 {
		t.Errorf("sequence after rollback = %d, want 1", n)
	}
}

func TestRunInTxCommits(t *testing.T) {
	ctx := context.Background()
	s := New()
	err := s.RunInTx(ctx, func(ctx context.Context, tx store.Store) error {
		return tx.CreateInstructor(ctx, &models.Instructor{ID: "i1", InstructorID: "I00001"})
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetInstructor(ctx, "i1"); err != nil {
		t.Errorf("GetInstructor after commit: %v", err)
	}
}

func TestNextSequencePerKind(t *testing.T) {
	ctx := context.Background()
	s := New()
	for want := int64(1); want <= 3; want++ {
		got, _ := s.NextSequence(ctx, models.KindCustomer)
		if got != want {
			t.Errorf("customer seq = %d, want %d", got, want)
		}
	}
	if got, _ := s.NextSequence(ctx, models.KindClass); got != 1 {
		t.Errorf("class seq = %d, want 1", got)
	}
}
