package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/JarviousX/yogitrack-studio-management/internal/models"
	"github.com/JarviousX/yogitrack-studio-management/internal/store"
)

type CreateClassInput struct {
	ClassName   string           `json:"className" validate:"required,max=100"`
	Description string           `json:"description" validate:"max=500"`
	Instructor  string           `json:"instructor" validate:"required"`
	DayOfWeek   string           `json:"dayOfWeek" validate:"required"`
	StartTime   string           `json:"startTime" validate:"required"`
	EndTime     string           `json:"endTime" validate:"required"`
	Level       string           `json:"level"`
	MaxCapacity *int             `json:"maxCapacity" validate:"omitnil,min=1,max=50"`
	Price       *decimal.Decimal `json:"price"`
	Room        string           `json:"room"`
	Equipment   []string         `json:"equipment"`
	IsActive    *bool            `json:"isActive"`
}

type UpdateClassInput struct {
	ClassName   *string          `json:"className" validate:"omitnil,min=1,max=100"`
	Description *string          `json:"description" validate:"omitnil,max=500"`
	Instructor  *string          `json:"instructor" validate:"omitnil,min=1"`
	DayOfWeek   *string          `json:"dayOfWeek"`
	StartTime   *string          `json:"startTime"`
	EndTime     *string          `json:"endTime"`
	Level       *string          `json:"level"`
	MaxCapacity *int             `json:"maxCapacity" validate:"omitnil,min=1,max=50"`
	Price       *decimal.Decimal `json:"price"`
	Room        *string          `json:"room"`
	Equipment   []string         `json:"equipment"`
	IsActive    *bool            `json:"isActive"`
}

// EnrollmentInput adds or removes Count students, default 1.
type EnrollmentInput struct {
	Action string `json:"action" validate:"required,oneof=add remove"`
	Count  int    `json:"count" validate:"gte=0"`
}

// DaySchedule is one day of the weekly timetable.
type DaySchedule struct {
	Day     string          `json:"day"`
	Classes []*models.Class `json:"classes"`
}

func (s *Service) ListClasses(ctx context.Context, f models.ClassFilter) ([]*models.Class, error) {
	list, err := s.store.ListClasses(ctx, f)
	if err != nil {
		return nil, err
	}
	models.SortClasses(list)
	return list, nil
}

func (s *Service) GetClass(ctx context.Context, id string) (*models.Class, error) {
	return s.store.GetClass(ctx, id)
}

func (s *Service) CreateClass(ctx context.Context, in CreateClassInput) (*models.Class, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	now := s.now()
	class := &models.Class{
		ID:          models.NewID(),
		ClassName:   in.ClassName,
		Description: in.Description,
		Instructor:  in.Instructor,
		DayOfWeek:   in.DayOfWeek,
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		Level:       in.Level,
		MaxCapacity: 20,
		Price:       decimal.NewFromInt(20),
		Room:        in.Room,
		Equipment:   in.Equipment,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if class.Level == "" {
		class.Level = models.LevelAllLevels
	}
	if class.Room == "" {
		class.Room = models.DefaultRoom
	}
	if in.MaxCapacity != nil {
		class.MaxCapacity = *in.MaxCapacity
	}
	if in.Price != nil {
		class.Price = *in.Price
	}
	if in.IsActive != nil {
		class.IsActive = *in.IsActive
	}
	if err := validateClass(class); err != nil {
		return nil, err
	}

	err := s.runInTx(ctx, func(ctx context.Context, tx store.Store) error {
		if _, err := tx.GetInstructor(ctx, class.Instructor); err != nil {
			return err
		}
		id, err := s.nextID(ctx, tx, models.KindClass)
		if err != nil {
			return err
		}
		class.ClassID = id
		return tx.CreateClass(ctx, class)
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "class created", "class_id", class.ClassID, "duration", class.Duration)
	return class, nil
}

func (s *Service) UpdateClass(ctx context.Context, id string, in UpdateClassInput) (*models.Class, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	var out *models.Class
	err := s.runInTx(ctx, func(ctx context.Context, tx store.Store) error {
		class, err := tx.GetClass(ctx, id)
		if err != nil {
			return err
		}
		if in.ClassName != nil {
			class.ClassName = *in.ClassName
		}
		if in.Description != nil {
			class.Description = *in.Description
		}
		if in.Instructor != nil && *in.Instructor != class.Instructor {
			if _, err := tx.GetInstructor(ctx, *in.Instructor); err != nil {
				return err
			}
			class.Instructor = *in.Instructor
		}
		if in.DayOfWeek != nil {
			class.DayOfWeek = *in.DayOfWeek
		}
		if in.StartTime != nil {
			class.StartTime = *in.StartTime
		}
		if in.EndTime != nil {
			class.EndTime = *in.EndTime
		}
		if in.Level != nil {
			class.Level = *in.Level
		}
		if in.MaxCapacity != nil {
			class.MaxCapacity = *in.MaxCapacity
		}
		if in.Price != nil {
			class.Price = *in.Price
		}
		if in.Room != nil {
			class.Room = *in.Room
		}
		if in.Equipment != nil {
			class.Equipment = in.Equipment
		}
		if in.IsActive != nil {
			class.IsActive = *in.IsActive
		}
		if err := validateClass(class); err != nil {
			return err
		}
		class.UpdatedAt = s.now()
		out = class
		return tx.UpdateClass(ctx, class)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) DeleteClass(ctx context.Context, id string) error {
	return s.store.DeleteClass(ctx, id)
}

// SetClassStatus maps "active"/"inactive" onto isActive.
func (s *Service) SetClassStatus(ctx context.Context, id, status string) (*models.Class, error) {
	if err := models.CheckEnum("status", status, models.ClassStatuses); err != nil {
		return nil, err
	}
	active := status == models.ClassActive
	return s.UpdateClass(ctx, id, UpdateClassInput{IsActive: &active})
}

// Schedule groups the active classes by weekday, Sunday first.
func (s *Service) Schedule(ctx context.Context) ([]DaySchedule, error) {
	active := true
	list, err := s.ListClasses(ctx, models.ClassFilter{Active: &active})
	if err != nil {
		return nil, err
	}
	byDay := make(map[string][]*models.Class)
	for _, c := range list {
		byDay[c.DayOfWeek] = append(byDay[c.DayOfWeek], c)
	}
	out := make([]DaySchedule, 0, len(models.Weekdays))
	for _, day := range models.Weekdays {
		classes := byDay[day]
		if classes == nil {
			classes = []*models.Class{}
		}
		out = append(out, DaySchedule{Day: day, Classes: classes})
	}
	return out, nil
}

func (s *Service) UpdateEnrollment(ctx context.Context, id string, in EnrollmentInput) (*models.Class, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	count := in.Count
	if count == 0 {
		count = 1
	}
	var out *models.Class
	err := s.runInTx(ctx, func(ctx context.Context, tx store.Store) error {
		class, err := tx.GetClass(ctx, id)
		if err != nil {
			return err
		}
		switch in.Action {
		case "add":
			if class.CurrentEnrollment+count > class.MaxCapacity {
				return models.Invalid("count", "Class is full. Only %d spots available", class.AvailableSpots())
			}
			class.CurrentEnrollment += count
		case "remove":
			if class.CurrentEnrollment-count < 0 {
				return models.Invalid("count", "Cannot remove more students than currently enrolled")
			}
			class.CurrentEnrollment -= count
		}
		class.UpdatedAt = s.now()
		out = class
		return tx.UpdateClass(ctx, class)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// validateClass checks the enumerated fields and recomputes the duration.
func validateClass(c *models.Class) error {
	if err := models.CheckEnum("dayOfWeek", c.DayOfWeek, models.Weekdays); err != nil {
		return err
	}
	if err := models.CheckEnum("level", c.Level, models.ClassLevels); err != nil {
		return err
	}
	start, err := models.NormalizeClock(c.StartTime)
	if err != nil {
		return models.Invalid("startTime", "Start time must be in HH:MM format")
	}
	end, err := models.NormalizeClock(c.EndTime)
	if err != nil {
		return models.Invalid("endTime", "End time must be in HH:MM format")
	}
	c.StartTime, c.EndTime = start, end
	if c.Duration, err = models.ClassDuration(start, end); err != nil {
		return err
	}
	if c.Price.IsNegative() {
		return models.Invalid("price", "price cannot be negative")
	}
	if c.CurrentEnrollment > c.MaxCapacity {
		return models.Invalid("maxCapacity", "maxCapacity cannot be below the current enrollment of %d", c.CurrentEnrollment)
	}
	return nil
}
