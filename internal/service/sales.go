package service

import (
	"context"
	"log/slog"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/JarviousX/yogitrack-studio-management/internal/metrics"
	"github.com/JarviousX/yogitrack-studio-management/internal/models"
	"github.com/JarviousX/yogitrack-studio-management/internal/store"
)

type CreateSaleInput struct {
	CustomerID        string           `json:"customerId" validate:"required"`
	PackageID         string           `json:"packageId" validate:"required"`
	AmountPaid        *decimal.Decimal `json:"amountPaid"`
	PaymentMethod     string           `json:"paymentMethod"`
	TransactionID     string           `json:"transactionId"`
	PaymentDate       *string          `json:"paymentDate"`
	ValidityStartDate *string          `json:"validityStartDate"`
	Notes             string           `json:"notes" validate:"max=500"`
}

// UpdateSaleInput edits sale bookkeeping. It never touches the class ledger.
type UpdateSaleInput struct {
	AmountPaid        *decimal.Decimal `json:"amountPaid"`
	PaymentMethod     *string          `json:"paymentMethod"`
	TransactionID     *string          `json:"transactionId"`
	PaymentDate       *string          `json:"paymentDate"`
	ValidityStartDate *string          `json:"validityStartDate"`
	ValidityEndDate   *string          `json:"validityEndDate"`
	Notes             *string          `json:"notes" validate:"omitnil,max=500"`
	Status            *string          `json:"status"`
}

// UseClassesInput consumes classes from a sale outside attendance.
type UseClassesInput struct {
	ClassesUsed int `json:"classesUsed" validate:"required,min=1"`
}

// ListSales returns the newest sales first.
func (s *Service) ListSales(ctx context.Context, f models.SaleFilter) ([]*models.Sale, error) {
	list, err := s.store.ListSales(ctx, f)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list, nil
}

func (s *Service) CustomerSales(ctx context.Context, customerID string) ([]*models.Sale, error) {
	if _, err := s.store.GetCustomer(ctx, customerID); err != nil {
		return nil, err
	}
	return s.ListSales(ctx, models.SaleFilter{Customer: customerID})
}

func (s *Service) PackageSales(ctx context.Context, packageID string) ([]*models.Sale, error) {
	if _, err := s.store.GetPackage(ctx, packageID); err != nil {
		return nil, err
	}
	return s.ListSales(ctx, models.SaleFilter{Package: packageID})
}

func (s *Service) GetSale(ctx context.Context, id string) (*models.Sale, error) {
	return s.store.GetSale(ctx, id)
}

// CreateSale records a package purchase. The sale, the customer's balance and
// the package's sales aggregate are written in one transaction.
func (s *Service) CreateSale(ctx context.Context, in CreateSaleInput) (*models.Sale, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	method := in.PaymentMethod
	if method == "" {
		method = models.PaymentCash
	}
	if err := models.CheckEnum("paymentMethod", method, models.PaymentMethods); err != nil {
		return nil, err
	}
	if in.AmountPaid != nil && in.AmountPaid.IsNegative() {
		return nil, models.Invalid("amountPaid", "amountPaid cannot be negative")
	}
	now := s.now()
	paid, err := optionalDate("paymentDate", in.PaymentDate, now)
	if err != nil {
		return nil, err
	}
	start, err := optionalDate("validityStartDate", in.ValidityStartDate, now)
	if err != nil {
		return nil, err
	}

	var sale *models.Sale
	err = s.runInTx(ctx, func(ctx context.Context, tx store.Store) error {
		cust, err := tx.GetCustomer(ctx, in.CustomerID)
		if err != nil {
			return err
		}
		pkg, err := tx.GetPackage(ctx, in.PackageID)
		if err != nil {
			return err
		}

		amount := pkg.Price
		if in.AmountPaid != nil {
			amount = *in.AmountPaid
		}
		n := pkg.NumberOfClasses
		sale = &models.Sale{
			ID:       models.NewID(),
			Customer: cust.ID,
			Package:  pkg.ID,
			PackageDetails: models.PackageSnapshot{
				PackageID:       pkg.PackageID,
				Name:            pkg.Name,
				Type:            pkg.Type,
				NumberOfClasses: n,
				Price:           pkg.Price,
				ValidityPeriod:  pkg.ValidityPeriod,
			},
			PaymentInfo: models.SalePayment{
				AmountPaid:    amount,
				PaymentMethod: method,
				TransactionID: in.TransactionID,
				PaymentDate:   paid,
			},
			ValidityPeriod: models.ValidityPeriod{
				StartDate: start,
				EndDate:   models.SaleEndDate(start, pkg.ValidityPeriod),
			},
			ClassBalance: models.ClassBalance{TotalClasses: n, UsedClasses: 0, RemainingClasses: n},
			Status:       models.SaleActive,
			Notes:        in.Notes,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if sale.SaleID, err = s.nextID(ctx, tx, models.KindSale); err != nil {
			return err
		}
		if err := tx.CreateSale(ctx, sale); err != nil {
			return err
		}

		cust.Balance += sale.ClassBalance.RemainingClasses
		cust.PaymentInfo.LastPaymentDate = &paid
		cust.PaymentInfo.PaymentMethod = method
		cust.UpdatedAt = now
		if err := tx.UpdateCustomer(ctx, cust); err != nil {
			return err
		}

		pkg.SalesData.TotalSold++
		pkg.SalesData.TotalRevenue = pkg.SalesData.TotalRevenue.Add(amount)
		pkg.SalesData.LastSold = &now
		pkg.UpdatedAt = now
		return tx.UpdatePackage(ctx, pkg)
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordLedgerOperation("sale_create")
	s.logger.InfoContext(ctx, "sale created",
		"sale_id", sale.SaleID,
		"customer", sale.Customer,
		"package_id", sale.PackageDetails.PackageID,
		"classes", sale.ClassBalance.TotalClasses)
	return sale, nil
}

// DeleteSale removes a sale and takes its unused classes back from the
// customer. Balance and aggregates are floored at zero, so deleting a sale
// after the balance went negative does not restore the pre-sale state.
func (s *Service) DeleteSale(ctx context.Context, id string) error {
	const op = "sale_delete"
	err := s.runInTx(ctx, func(ctx context.Context, tx store.Store) error {
		sale, err := tx.GetSale(ctx, id)
		if err != nil {
			return err
		}
		now := s.now()

		cust, err := tx.GetCustomer(ctx, sale.Customer)
		switch {
		case err == nil:
			cust.Balance = s.floor(ctx, op, "customer.balance",
				cust.Balance-sale.ClassBalance.RemainingClasses, 0, "sale_id", sale.SaleID)
			cust.UpdatedAt = now
			if err := tx.UpdateCustomer(ctx, cust); err != nil {
				return err
			}
		case models.IsNotFound(err):
			s.logger.WarnContext(ctx, "sale customer missing on delete", "sale_id", sale.SaleID)
		default:
			return err
		}

		pkg, err := tx.GetPackage(ctx, sale.Package)
		switch {
		case err == nil:
			pkg.SalesData.TotalSold = s.floor(ctx, op, "package.totalSold",
				pkg.SalesData.TotalSold-1, 0, "sale_id", sale.SaleID)
			revenue := pkg.SalesData.TotalRevenue.Sub(sale.PaymentInfo.AmountPaid)
			if revenue.IsNegative() {
				s.drift(ctx, op, "package.totalRevenue",
					slog.String("value", revenue.String()), slog.String("clamped_to", "0"),
					"sale_id", sale.SaleID)
				revenue = decimal.Zero
			}
			pkg.SalesData.TotalRevenue = revenue
			pkg.UpdatedAt = now
			if err := tx.UpdatePackage(ctx, pkg); err != nil {
				return err
			}
		case models.IsNotFound(err):
			s.logger.WarnContext(ctx, "sale package missing on delete", "sale_id", sale.SaleID)
		default:
			return err
		}

		return tx.DeleteSale(ctx, sale.ID)
	})
	if err != nil {
		return err
	}
	metrics.RecordLedgerOperation(op)
	s.logger.InfoContext(ctx, "sale deleted", "id", id)
	return nil
}

func (s *Service) UpdateSale(ctx context.Context, id string, in UpdateSaleInput) (*models.Sale, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	var out *models.Sale
	err := s.runInTx(ctx, func(ctx context.Context, tx store.Store) error {
		sale, err := tx.GetSale(ctx, id)
		if err != nil {
			return err
		}
		if in.AmountPaid != nil {
			if in.AmountPaid.IsNegative() {
				return models.Invalid("amountPaid", "amountPaid cannot be negative")
			}
			sale.PaymentInfo.AmountPaid = *in.AmountPaid
		}
		if in.PaymentMethod != nil {
			if err := models.CheckEnum("paymentMethod", *in.PaymentMethod, models.PaymentMethods); err != nil {
				return err
			}
			sale.PaymentInfo.PaymentMethod = *in.PaymentMethod
		}
		if in.TransactionID != nil {
			sale.PaymentInfo.TransactionID = *in.TransactionID
		}
		if in.PaymentDate != nil {
			if sale.PaymentInfo.PaymentDate, err = parseDate("paymentDate", *in.PaymentDate); err != nil {
				return err
			}
		}
		if in.ValidityStartDate != nil {
			if sale.ValidityPeriod.StartDate, err = parseDate("validityStartDate", *in.ValidityStartDate); err != nil {
				return err
			}
		}
		if in.ValidityEndDate != nil {
			if sale.ValidityPeriod.EndDate, err = parseDate("validityEndDate", *in.ValidityEndDate); err != nil {
				return err
			}
		}
		if sale.ValidityPeriod.EndDate.Before(sale.ValidityPeriod.StartDate) {
			return models.Invalid("validityEndDate", "validity end date is before the start date")
		}
		if in.Notes != nil {
			sale.Notes = *in.Notes
		}
		if in.Status != nil {
			if err := models.CheckEnum("status", *in.Status, models.SaleStatuses); err != nil {
				return err
			}
			sale.Status = *in.Status
		}
		sale.UpdatedAt = s.now()
		out = sale
		return tx.UpdateSale(ctx, sale)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) SetSaleStatus(ctx context.Context, id, status string) (*models.Sale, error) {
	return s.UpdateSale(ctx, id, UpdateSaleInput{Status: &status})
}

// UseClasses marks classes as used on a sale and takes them from the
// customer's balance, floored at zero.
func (s *Service) UseClasses(ctx context.Context, id string, in UseClassesInput) (*models.Sale, error) {
	const op = "sale_use_classes"
	if err := s.check(in); err != nil {
		return nil, err
	}
	var out *models.Sale
	err := s.runInTx(ctx, func(ctx context.Context, tx store.Store) error {
		sale, err := tx.GetSale(ctx, id)
		if err != nil {
			return err
		}
		now := s.now()
		sale.ClassBalance.UsedClasses += in.ClassesUsed
		sale.ClassBalance.RemainingClasses = s.floor(ctx, op, "sale.remainingClasses",
			sale.ClassBalance.TotalClasses-sale.ClassBalance.UsedClasses, 0, "sale_id", sale.SaleID)
		sale.UpdatedAt = now
		if err := tx.UpdateSale(ctx, sale); err != nil {
			return err
		}

		cust, err := tx.GetCustomer(ctx, sale.Customer)
		if err != nil {
			if models.IsNotFound(err) {
				out = sale
				return nil
			}
			return err
		}
		cust.Balance = s.floor(ctx, op, "customer.balance",
			cust.Balance-in.ClassesUsed, 0, "sale_id", sale.SaleID)
		cust.UpdatedAt = now
		out = sale
		return tx.UpdateCustomer(ctx, cust)
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordLedgerOperation(op)
	return out, nil
}
