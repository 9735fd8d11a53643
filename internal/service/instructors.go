package service

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/JarviousX/yogitrack-studio-management/internal/models"
	"github.com/JarviousX/yogitrack-studio-management/internal/store"
)

type CreateInstructorInput struct {
	FirstName      string           `json:"firstName" validate:"required"`
	LastName       string           `json:"lastName" validate:"required"`
	Email          string           `json:"email" validate:"required,email"`
	Phone          string           `json:"phone" validate:"required"`
	Specialties    []string         `json:"specialties"`
	Certifications []string         `json:"certifications"`
	Bio            string           `json:"bio" validate:"max=500"`
	Experience     int              `json:"experience" validate:"gte=0"`
	PayRate        *decimal.Decimal `json:"payRate"`
	Status         string           `json:"status"`
	HireDate       *string          `json:"hireDate"`
}

// UpdateInstructorInput overwrites only the supplied fields.
type UpdateInstructorInput struct {
	FirstName      *string          `json:"firstName" validate:"omitnil,min=1"`
	LastName       *string          `json:"lastName" validate:"omitnil,min=1"`
	Email          *string          `json:"email" validate:"omitnil,email"`
	Phone          *string          `json:"phone"`
	Specialties    []string         `json:"specialties"`
	Certifications []string         `json:"certifications"`
	Bio            *string          `json:"bio" validate:"omitnil,max=500"`
	Experience     *int             `json:"experience" validate:"omitnil,gte=0"`
	PayRate        *decimal.Decimal `json:"payRate"`
	Status         *string          `json:"status"`
	HireDate       *string          `json:"hireDate"`
}

func (s *Service) ListInstructors(ctx context.Context, f models.InstructorFilter) ([]*models.Instructor, error) {
	list, err := s.store.ListInstructors(ctx, f)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].FirstName != list[j].FirstName {
			return list[i].FirstName < list[j].FirstName
		}
		return list[i].LastName < list[j].LastName
	})
	return list, nil
}

func (s *Service) GetInstructor(ctx context.Context, id string) (*models.Instructor, error) {
	return s.store.GetInstructor(ctx, id)
}

func (s *Service) CreateInstructor(ctx context.Context, in CreateInstructorInput) (*models.Instructor, error) {
	in.Email = normalizeEmail(in.Email)
	if err := s.check(in); err != nil {
		return nil, err
	}
	status := in.Status
	if status == "" {
		status = models.InstructorActive
	}
	if err := models.CheckEnum("status", status, models.InstructorStatuses); err != nil {
		return nil, err
	}
	payRate := decimal.Zero
	if in.PayRate != nil {
		if in.PayRate.IsNegative() {
			return nil, models.Invalid("payRate", "payRate cannot be negative")
		}
		payRate = *in.PayRate
	}
	now := s.now()
	hire, err := optionalDate("hireDate", in.HireDate, now)
	if err != nil {
		return nil, err
	}

	inst := &models.Instructor{
		ID:             models.NewID(),
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		Email:          normalizeEmail(in.Email),
		Phone:          in.Phone,
		Specialties:    in.Specialties,
		Certifications: in.Certifications,
		Bio:            in.Bio,
		Experience:     in.Experience,
		PayRate:        payRate,
		Status:         status,
		HireDate:       hire,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err = s.runInTx(ctx, func(ctx context.Context, tx store.Store) error {
		if err := s.instructorEmailFree(ctx, tx, inst.Email, ""); err != nil {
			return err
		}
		if inst.InstructorID, err = s.nextID(ctx, tx, models.KindInstructor); err != nil {
			return err
		}
		return tx.CreateInstructor(ctx, inst)
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "instructor created", "instructor_id", inst.InstructorID)
	return inst, nil
}

func (s *Service) UpdateInstructor(ctx context.Context, id string, in UpdateInstructorInput) (*models.Instructor, error) {
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		in.Email = &email
	}
	if err := s.check(in); err != nil {
		return nil, err
	}
	var out *models.Instructor
	err := s.runInTx(ctx, func(ctx context.Context, tx store.Store) error {
		inst, err := tx.GetInstructor(ctx, id)
		if err != nil {
			return err
		}
		if in.FirstName != nil {
			inst.FirstName = *in.FirstName
		}
		if in.LastName != nil {
			inst.LastName = *in.LastName
		}
		if in.Email != nil {
			email := normalizeEmail(*in.Email)
			if email != inst.Email {
				if err := s.instructorEmailFree(ctx, tx, email, inst.ID); err != nil {
					return err
				}
			}
			inst.Email = email
		}
		if in.Phone != nil {
			inst.Phone = *in.Phone
		}
		if in.Specialties != nil {
			inst.Specialties = in.Specialties
		}
		if in.Certifications != nil {
			inst.Certifications = in.Certifications
		}
		if in.Bio != nil {
			inst.Bio = *in.Bio
		}
		if in.Experience != nil {
			inst.Experience = *in.Experience
		}
		if in.PayRate != nil {
			if in.PayRate.IsNegative() {
				return models.Invalid("payRate", "payRate cannot be negative")
			}
			inst.PayRate = *in.PayRate
		}
		if in.Status != nil {
			if err := models.CheckEnum("status", *in.Status, models.InstructorStatuses); err != nil {
				return err
			}
			inst.Status = *in.Status
		}
		if in.HireDate != nil {
			if inst.HireDate, err = parseDate("hireDate", *in.HireDate); err != nil {
				return err
			}
		}
		inst.UpdatedAt = s.now()
		out = inst
		return tx.UpdateInstructor(ctx, inst)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) DeleteInstructor(ctx context.Context, id string) error {
	return s.store.DeleteInstructor(ctx, id)
}

func (s *Service) SetInstructorStatus(ctx context.Context, id, status string) (*models.Instructor, error) {
	return s.UpdateInstructor(ctx, id, UpdateInstructorInput{Status: &status})
}

// InstructorClasses lists the classes an instructor teaches in weekly order.
func (s *Service) InstructorClasses(ctx context.Context, id string) ([]*models.Class, error) {
	if _, err := s.store.GetInstructor(ctx, id); err != nil {
		return nil, err
	}
	list, err := s.store.ListClasses(ctx, models.ClassFilter{Instructor: id})
	if err != nil {
		return nil, err
	}
	models.SortClasses(list)
	return list, nil
}

func (s *Service) instructorEmailFree(ctx context.Context, tx store.Store, email, selfID string) error {
	found, err := tx.ListInstructors(ctx, models.InstructorFilter{Email: email})
	if err != nil {
		return err
	}
	for _, i := range found {
		if i.ID != selfID {
			return models.Invalid("email", "Instructor with this email already exists")
		}
	}
	return nil
}
