package service

import (
	"context"
	"sort"

	"github.com/JarviousX/yogitrack-studio-management/internal/models"
	"github.com/JarviousX/yogitrack-studio-management/internal/store"
)

type CreateCustomerInput struct {
	FirstName        string                  `json:"firstName" validate:"required,max=50"`
	LastName         string                  `json:"lastName" validate:"required,max=50"`
	Email            string                  `json:"email" validate:"required,email"`
	Phone            string                  `json:"phone"`
	DateOfBirth      *string                 `json:"dateOfBirth"`
	Address          models.Address          `json:"address"`
	EmergencyContact models.EmergencyContact `json:"emergencyContact"`
	MedicalInfo      models.MedicalInfo      `json:"medicalInfo"`
	// Balance seeds the class balance of a customer migrated from elsewhere.
	Balance        int                `json:"balance"`
	MembershipType string             `json:"membershipType"`
	Preferences    models.Preferences `json:"preferences"`
	Notes          string             `json:"notes" validate:"max=1000"`
	Status         string             `json:"status"`
}

type UpdateCustomerInput struct {
	FirstName        *string                  `json:"firstName" validate:"omitnil,min=1,max=50"`
	LastName         *string                  `json:"lastName" validate:"omitnil,min=1,max=50"`
	Email            *string                  `json:"email" validate:"omitnil,email"`
	Phone            *string                  `json:"phone"`
	DateOfBirth      *string                  `json:"dateOfBirth"`
	Address          *models.Address          `json:"address"`
	EmergencyContact *models.EmergencyContact `json:"emergencyContact"`
	MedicalInfo      *models.MedicalInfo      `json:"medicalInfo"`
	Balance          *int                     `json:"balance"`
	MembershipType   *string                  `json:"membershipType"`
	Preferences      *models.Preferences      `json:"preferences"`
	Notes            *string                  `json:"notes" validate:"omitnil,max=1000"`
	Status           *string                  `json:"status"`
}

// ListCustomers returns the newest customers first.
func (s *Service) ListCustomers(ctx context.Context, f models.CustomerFilter) ([]*models.Customer, error) {
	list, err := s.store.ListCustomers(ctx, f)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].DateJoined.After(list[j].DateJoined)
	})
	return list, nil
}

func (s *Service) GetCustomer(ctx context.Context, id string) (*models.Customer, error) {
	return s.store.GetCustomer(ctx, id)
}

func (s *Service) CreateCustomer(ctx context.Context, in CreateCustomerInput) (*models.Customer, error) {
	in.Email = normalizeEmail(in.Email)
	if err := s.check(in); err != nil {
		return nil, err
	}
	status := in.Status
	if status == "" {
		status = models.CustomerActive
	}
	if err := models.CheckEnum("status", status, models.CustomerStatuses); err != nil {
		return nil, err
	}
	now := s.now()
	cust := &models.Customer{
		ID:               models.NewID(),
		FirstName:        in.FirstName,
		LastName:         in.LastName,
		Email:            normalizeEmail(in.Email),
		Phone:            in.Phone,
		Address:          in.Address,
		EmergencyContact: in.EmergencyContact,
		MedicalInfo:      in.MedicalInfo,
		Balance:          in.Balance,
		MembershipType:   in.MembershipType,
		Preferences:      in.Preferences,
		Notes:            in.Notes,
		Status:           status,
		DateJoined:       now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if in.DateOfBirth != nil && *in.DateOfBirth != "" {
		dob, err := parseDate("dateOfBirth", *in.DateOfBirth)
		if err != nil {
			return nil, err
		}
		cust.DateOfBirth = &dob
	}

	err := s.runInTx(ctx, func(ctx context.Context, tx store.Store) error {
		if err := s.customerEmailFree(ctx, tx, cust.Email, ""); err != nil {
			return err
		}
		id, err := s.nextID(ctx, tx, models.KindCustomer)
		if err != nil {
			return err
		}
		cust.CustomerID = id
		return tx.CreateCustomer(ctx, cust)
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "customer created", "customer_id", cust.CustomerID)
	return cust, nil
}

func (s *Service) UpdateCustomer(ctx context.Context, id string, in UpdateCustomerInput) (*models.Customer, error) {
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		in.Email = &email
	}
	if err := s.check(in); err != nil {
		return nil, err
	}
	var out *models.Customer
	err := s.runInTx(ctx, func(ctx context.Context, tx store.Store) error {
		cust, err := tx.GetCustomer(ctx, id)
		if err != nil {
			return err
		}
		if in.FirstName != nil {
			cust.FirstName = *in.FirstName
		}
		if in.LastName != nil {
			cust.LastName = *in.LastName
		}
		if in.Email != nil {
			email := normalizeEmail(*in.Email)
			if email != cust.Email {
				if err := s.customerEmailFree(ctx, tx, email, cust.ID); err != nil {
					return err
				}
			}
			cust.Email = email
		}
		if in.Phone != nil {
			cust.Phone = *in.Phone
		}
		if in.DateOfBirth != nil {
			dob, err := parseDate("dateOfBirth", *in.DateOfBirth)
			if err != nil {
				return err
			}
			cust.DateOfBirth = &dob
		}
		if in.Address != nil {
			cust.Address = *in.Address
		}
		if in.EmergencyContact != nil {
			cust.EmergencyContact = *in.EmergencyContact
		}
		if in.MedicalInfo != nil {
			cust.MedicalInfo = *in.MedicalInfo
		}
		if in.Balance != nil && *in.Balance != cust.Balance {
			s.logger.InfoContext(ctx, "customer balance set manually",
				"customer_id", cust.CustomerID, "from", cust.Balance, "to", *in.Balance)
			cust.Balance = *in.Balance
		}
		if in.MembershipType != nil {
			cust.MembershipType = *in.MembershipType
		}
		if in.Preferences != nil {
			cust.Preferences = *in.Preferences
		}
		if in.Notes != nil {
			cust.Notes = *in.Notes
		}
		if in.Status != nil {
			if err := models.CheckEnum("status", *in.Status, models.CustomerStatuses); err != nil {
				return err
			}
			cust.Status = *in.Status
		}
		cust.UpdatedAt = s.now()
		out = cust
		return tx.UpdateCustomer(ctx, cust)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) DeleteCustomer(ctx context.Context, id string) error {
	return s.store.DeleteCustomer(ctx, id)
}

func (s *Service) SetCustomerStatus(ctx context.Context, id, status string) (*models.Customer, error) {
	return s.UpdateCustomer(ctx, id, UpdateCustomerInput{Status: &status})
}

func (s *Service) customerEmailFree(ctx context.Context, tx store.Store, email, selfID string) error {
	found, err := tx.ListCustomers(ctx, models.CustomerFilter{Email: email})
	if err != nil {
		return err
	}
	for _, c := range found {
		if c.ID != selfID {
			return models.Invalid("email", "Customer with this email already exists")
		}
	}
	return nil
}
