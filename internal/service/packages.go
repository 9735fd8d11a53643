package service

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/JarviousX/yogitrack-studio-management/internal/models"
	"github.com/JarviousX/yogitrack-studio-management/internal/store"
)

type CreatePackageInput struct {
	Name              string                     `json:"name" validate:"required,max=100"`
	Description       string                     `json:"description" validate:"max=500"`
	Type              string                     `json:"type"`
	NumberOfClasses   *int                       `json:"numberOfClasses" validate:"omitnil,min=1"`
	ValidityPeriod    *int                       `json:"validityPeriod" validate:"omitnil,min=1"`
	Price             *decimal.Decimal           `json:"price" validate:"required"`
	OriginalPrice     *decimal.Decimal           `json:"originalPrice"`
	ApplicableClasses []string                   `json:"applicableClasses"`
	Restrictions      models.PackageRestrictions `json:"restrictions"`
	Status            string                     `json:"status"`
}

type UpdatePackageInput struct {
	Name              *string                     `json:"name" validate:"omitnil,min=1,max=100"`
	Description       *string                     `json:"description" validate:"omitnil,max=500"`
	Type              *string                     `json:"type"`
	NumberOfClasses   *int                        `json:"numberOfClasses" validate:"omitnil,min=1"`
	ValidityPeriod    *int                        `json:"validityPeriod" validate:"omitnil,min=1"`
	Price             *decimal.Decimal            `json:"price"`
	OriginalPrice     *decimal.Decimal            `json:"originalPrice"`
	ApplicableClasses []string                    `json:"applicableClasses"`
	Restrictions      *models.PackageRestrictions `json:"restrictions"`
	Status            *string                     `json:"status"`
}

// PackageSalesInput records sales made outside this system.
type PackageSalesInput struct {
	Quantity int             `json:"quantity" validate:"gte=0"`
	Revenue  decimal.Decimal `json:"revenue"`
}

// ListPackages returns the newest packages first.
func (s *Service) ListPackages(ctx context.Context, f models.PackageFilter) ([]*models.Package, error) {
	list, err := s.store.ListPackages(ctx, f)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	for _, p := range list {
		p.Derive()
	}
	return list, nil
}

func (s *Service) GetPackage(ctx context.Context, id string) (*models.Package, error) {
	p, err := s.store.GetPackage(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Derive()
	return p, nil
}

func (s *Service) CreatePackage(ctx context.Context, in CreatePackageInput) (*models.Package, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	now := s.now()
	p := &models.Package{
		ID:                models.NewID(),
		Name:              in.Name,
		Description:       in.Description,
		Type:              in.Type,
		NumberOfClasses:   1,
		ValidityPeriod:    30,
		Price:             *in.Price,
		ApplicableClasses: in.ApplicableClasses,
		Restrictions:      in.Restrictions,
		Status:            in.Status,
		SalesData:         models.SalesData{TotalRevenue: decimal.Zero},
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if p.Type == "" {
		p.Type = models.PackageTypeClassPackage
	}
	if p.Status == "" {
		p.Status = models.PackageActive
	}
	if len(p.ApplicableClasses) == 0 {
		p.ApplicableClasses = []string{"All Classes"}
	}
	if in.NumberOfClasses != nil {
		p.NumberOfClasses = *in.NumberOfClasses
	}
	if in.ValidityPeriod != nil {
		p.ValidityPeriod = *in.ValidityPeriod
	}
	if in.OriginalPrice != nil {
		p.OriginalPrice = *in.OriginalPrice
	}
	if err := validatePackage(p); err != nil {
		return nil, err
	}

	err := s.runInTx(ctx, func(ctx context.Context, tx store.Store) error {
		id, err := s.nextID(ctx, tx, models.KindPackage)
		if err != nil {
			return err
		}
		p.PackageID = id
		return tx.CreatePackage(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "package created", "package_id", p.PackageID)
	p.Derive()
	return p, nil
}

func (s *Service) UpdatePackage(ctx context.Context, id string, in UpdatePackageInput) (*models.Package, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	var out *models.Package
	err := s.runInTx(ctx, func(ctx context.Context, tx store.Store) error {
		p, err := tx.GetPackage(ctx, id)
		if err != nil {
			return err
		}
		if in.Name != nil {
			p.Name = *in.Name
		}
		if in.Description != nil {
			p.Description = *in.Description
		}
		if in.Type != nil {
			p.Type = *in.Type
		}
		if in.NumberOfClasses != nil {
			p.NumberOfClasses = *in.NumberOfClasses
		}
		if in.ValidityPeriod != nil {
			p.ValidityPeriod = *in.ValidityPeriod
		}
		if in.Price != nil {
			p.Price = *in.Price
		}
		if in.OriginalPrice != nil {
			p.OriginalPrice = *in.OriginalPrice
		}
		if in.ApplicableClasses != nil {
			p.ApplicableClasses = in.ApplicableClasses
		}
		if in.Restrictions != nil {
			p.Restrictions = *in.Restrictions
		}
		if in.Status != nil {
			p.Status = *in.Status
		}
		if err := validatePackage(p); err != nil {
			return err
		}
		p.UpdatedAt = s.now()
		out = p
		return tx.UpdatePackage(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	out.Derive()
	return out, nil
}

func (s *Service) DeletePackage(ctx context.Context, id string) error {
	return s.store.DeletePackage(ctx, id)
}

func (s *Service) SetPackageStatus(ctx context.Context, id, status string) (*models.Package, error) {
	if err := models.CheckEnum("status", status, models.PackageStatuses); err != nil {
		return nil, err
	}
	return s.UpdatePackage(ctx, id, UpdatePackageInput{Status: &status})
}

// RecordPackageSales adds to the sales aggregate without creating sales.
func (s *Service) RecordPackageSales(ctx context.Context, id string, in PackageSalesInput) (*models.Package, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	if in.Revenue.IsNegative() {
		return nil, models.Invalid("revenue", "revenue cannot be negative")
	}
	quantity := in.Quantity
	if quantity == 0 {
		quantity = 1
	}
	var out *models.Package
	err := s.runInTx(ctx, func(ctx context.Context, tx store.Store) error {
		p, err := tx.GetPackage(ctx, id)
		if err != nil {
			return err
		}
		now := s.now()
		p.SalesData.TotalSold += quantity
		p.SalesData.TotalRevenue = p.SalesData.TotalRevenue.Add(in.Revenue)
		p.SalesData.LastSold = &now
		p.UpdatedAt = now
		out = p
		return tx.UpdatePackage(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	out.Derive()
	return out, nil
}

func validatePackage(p *models.Package) error {
	if err := models.CheckEnum("type", p.Type, models.PackageTypes); err != nil {
		return err
	}
	if err := models.CheckEnum("status", p.Status, models.PackageStatuses); err != nil {
		return err
	}
	if p.Price.IsNegative() {
		return models.Invalid("price", "price cannot be negative")
	}
	if p.OriginalPrice.IsNegative() {
		return models.Invalid("originalPrice", "originalPrice cannot be negative")
	}
	p.ApplyDiscount()
	return nil
}
