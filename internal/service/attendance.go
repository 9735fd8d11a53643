package service

import (
	"context"
	"sort"
	"time"

	"github.com/JarviousX/yogitrack-studio-management/internal/metrics"
	"github.com/JarviousX/yogitrack-studio-management/internal/models"
	"github.com/JarviousX/yogitrack-studio-management/internal/store"
)

type AttendeeInput struct {
	CustomerID string `json:"customerId" validate:"required"`
	Status     string `json:"status"`
	Notes      string `json:"notes" validate:"max=200"`
}

type CreateAttendanceInput struct {
	ClassID      string          `json:"classId" validate:"required"`
	InstructorID string          `json:"instructorId" validate:"required"`
	ActualDate   string          `json:"actualDate" validate:"required"`
	ActualTime   string          `json:"actualTime" validate:"required"`
	Attendees    []AttendeeInput `json:"attendees" validate:"dive"`
	Notes        string          `json:"notes" validate:"max=500"`
}

// UpdateAttendanceInput edits a session. Supplying Attendees replaces the
// whole list: the old check-ins are reversed and the new ones applied.
type UpdateAttendanceInput struct {
	ActualDate *string          `json:"actualDate"`
	ActualTime *string          `json:"actualTime"`
	Attendees  *[]AttendeeInput `json:"attendees" validate:"omitnil,dive"`
	Notes      *string          `json:"notes" validate:"omitnil,max=500"`
	Status     *string          `json:"status"`
}

// ListAttendance returns the most recent sessions first.
func (s *Service) ListAttendance(ctx context.Context, f models.AttendanceFilter) ([]*models.Attendance, error) {
	list, err := s.store.ListAttendance(ctx, f)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].ActualDate.After(list[j].ActualDate)
	})
	return list, nil
}

func (s *Service) InstructorAttendance(ctx context.Context, instructorID string) ([]*models.Attendance, error) {
	if _, err := s.store.GetInstructor(ctx, instructorID); err != nil {
		return nil, err
	}
	return s.ListAttendance(ctx, models.AttendanceFilter{Instructor: instructorID})
}

func (s *Service) ClassAttendance(ctx context.Context, classID string) ([]*models.Attendance, error) {
	if _, err := s.store.GetClass(ctx, classID); err != nil {
		return nil, err
	}
	return s.ListAttendance(ctx, models.AttendanceFilter{Class: classID})
}

func (s *Service) GetAttendance(ctx context.Context, id string) (*models.Attendance, error) {
	return s.store.GetAttendance(ctx, id)
}

// CreateAttendance records a session and checks in every attendee, one at a
// time, inside a single transaction.
func (s *Service) CreateAttendance(ctx context.Context, in CreateAttendanceInput) (*models.Attendance, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	actualDate, err := parseDate("actualDate", in.ActualDate)
	if err != nil {
		return nil, err
	}
	actualTime, err := models.NormalizeClock(in.ActualTime)
	if err != nil {
		return nil, models.Invalid("actualTime", "actualTime must be in HH:MM format")
	}
	if err := checkAttendeeStatuses(in.Attendees); err != nil {
		return nil, err
	}

	now := s.now()
	rec := &models.Attendance{
		ID:             models.NewID(),
		AttendanceDate: now,
		ActualDate:     actualDate,
		ActualTime:     actualTime,
		Status:         models.AttendanceDraft,
		Notes:          in.Notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err = s.runInTx(ctx, func(ctx context.Context, tx store.Store) error {
		class, err := tx.GetClass(ctx, in.ClassID)
		if err != nil {
			return err
		}
		instructor, err := tx.GetInstructor(ctx, in.InstructorID)
		if err != nil {
			return err
		}
		rec.Class = class.ID
		rec.Instructor = instructor.ID
		rec.ScheduleWarning = ScheduleWarning(class, actualDate, actualTime)

		if rec.Attendees, err = s.checkIn(ctx, tx, in.Attendees); err != nil {
			return err
		}
		rec.TotalAttendees = len(rec.Attendees)

		if rec.AttendanceID, err = s.nextID(ctx, tx, models.KindAttendance); err != nil {
			return err
		}
		return tx.CreateAttendance(ctx, rec)
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordLedgerOperation("attendance_create")
	s.logger.InfoContext(ctx, "attendance recorded",
		"attendance_id", rec.AttendanceID,
		"attendees", rec.TotalAttendees,
		"schedule_warning", rec.ScheduleWarning.HasWarning)
	return rec, nil
}

// checkIn consumes one class per attendee. With an active sale the sale is
// decremented and the balance floored at zero; without one the balance may
// go negative. Attendees whose customer does not exist are dropped.
func (s *Service) checkIn(ctx context.Context, tx store.Store, attendees []AttendeeInput) ([]models.Attendee, error) {
	const op = "attendance_check_in"
	out := make([]models.Attendee, 0, len(attendees))
	for _, a := range attendees {
		cust, err := tx.GetCustomer(ctx, a.CustomerID)
		if err != nil {
			if models.IsNotFound(err) {
				s.skipAttendee(ctx, a.CustomerID)
				continue
			}
			return nil, err
		}

		now := s.now()
		status := a.Status
		if status == "" {
			status = models.AttendeePresent
		}
		entry := models.Attendee{
			Customer: cust.ID,
			CustomerDetails: models.CustomerDetails{
				CustomerID: cust.CustomerID,
				FirstName:  cust.FirstName,
				LastName:   cust.LastName,
				Email:      cust.Email,
				Phone:      cust.Phone,
			},
			Status:             status,
			CheckInTime:        now,
			ClassBalanceBefore: cust.Balance,
			BalanceUpdated:     true,
			Notes:              a.Notes,
		}

		sale, err := tx.FindActiveSale(ctx, cust.ID, now)
		if err != nil {
			return nil, err
		}
		if sale != nil {
			entry.Sale = sale.ID
			entry.Package = sale.Package
			entry.PackageDetails = &models.AttendeePackage{
				PackageID:       sale.PackageDetails.PackageID,
				Name:            sale.PackageDetails.Name,
				Type:            sale.PackageDetails.Type,
				NumberOfClasses: sale.PackageDetails.NumberOfClasses,
			}
			sale.ClassBalance.UsedClasses++
			sale.ClassBalance.RemainingClasses = s.floor(ctx, op, "sale.remainingClasses",
				sale.ClassBalance.RemainingClasses-1, 0, "sale_id", sale.SaleID)
			sale.UpdatedAt = now
			if err := tx.UpdateSale(ctx, sale); err != nil {
				return nil, err
			}
			entry.ClassBalanceAfter = s.floor(ctx, op, "customer.balance",
				entry.ClassBalanceBefore-1, 0, "customer_id", cust.CustomerID)
		} else {
			entry.ClassBalanceAfter = entry.ClassBalanceBefore - 1
		}

		cust.Balance = entry.ClassBalanceAfter
		cust.UpdatedAt = now
		if err := tx.UpdateCustomer(ctx, cust); err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, nil
}

// reverseCheckIns undoes checkIn for every attendee whose balance was
// adjusted. The balance is overwritten with the recorded snapshot, so
// changes made to it since the check-in are lost. Entries are undone last
// first: a customer listed twice ends on the earliest snapshot.
func (s *Service) reverseCheckIns(ctx context.Context, tx store.Store, attendees []models.Attendee) error {
	const op = "attendance_reverse"
	now := s.now()
	for i := len(attendees) - 1; i >= 0; i-- {
		a := attendees[i]
		if !a.BalanceUpdated {
			continue
		}
		cust, err := tx.GetCustomer(ctx, a.Customer)
		switch {
		case err == nil:
			if cust.Balance != a.ClassBalanceAfter {
				s.logger.WarnContext(ctx, "balance changed since check-in, restoring snapshot",
					"customer_id", cust.CustomerID,
					"current", cust.Balance,
					"expected", a.ClassBalanceAfter,
					"restored", a.ClassBalanceBefore)
			}
			cust.Balance = a.ClassBalanceBefore
			cust.UpdatedAt = now
			if err := tx.UpdateCustomer(ctx, cust); err != nil {
				return err
			}
		case models.IsNotFound(err):
			s.logger.WarnContext(ctx, "attendee customer missing on reversal", "customer", a.Customer)
		default:
			return err
		}

		if a.Sale == "" {
			continue
		}
		sale, err := tx.GetSale(ctx, a.Sale)
		switch {
		case err == nil:
			sale.ClassBalance.UsedClasses = s.floor(ctx, op, "sale.usedClasses",
				sale.ClassBalance.UsedClasses-1, 0, "sale_id", sale.SaleID)
			sale.ClassBalance.RemainingClasses = s.ceil(ctx, op, "sale.remainingClasses",
				sale.ClassBalance.RemainingClasses+1, sale.ClassBalance.TotalClasses, "sale_id", sale.SaleID)
			sale.UpdatedAt = now
			if err := tx.UpdateSale(ctx, sale); err != nil {
				return err
			}
		case models.IsNotFound(err):
			s.logger.WarnContext(ctx, "attendee sale missing on reversal", "sale", a.Sale)
		default:
			return err
		}
	}
	return nil
}

// DeleteAttendance reverses every check-in of the session and deletes it.
func (s *Service) DeleteAttendance(ctx context.Context, id string) error {
	err := s.runInTx(ctx, func(ctx context.Context, tx store.Store) error {
		rec, err := tx.GetAttendance(ctx, id)
		if err != nil {
			return err
		}
		if err := s.reverseCheckIns(ctx, tx, rec.Attendees); err != nil {
			return err
		}
		return tx.DeleteAttendance(ctx, rec.ID)
	})
	if err != nil {
		return err
	}
	metrics.RecordLedgerOperation("attendance_delete")
	s.logger.InfoContext(ctx, "attendance deleted", "id", id)
	return nil
}

func (s *Service) UpdateAttendance(ctx context.Context, id string, in UpdateAttendanceInput) (*models.Attendance, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	if in.Status != nil {
		if err := models.CheckEnum("status", *in.Status, models.AttendanceStatuses); err != nil {
			return nil, err
		}
	}
	if in.Attendees != nil {
		if err := checkAttendeeStatuses(*in.Attendees); err != nil {
			return nil, err
		}
	}

	var out *models.Attendance
	err := s.runInTx(ctx, func(ctx context.Context, tx store.Store) error {
		rec, err := tx.GetAttendance(ctx, id)
		if err != nil {
			return err
		}

		rescheduled := false
		if in.ActualDate != nil {
			if rec.ActualDate, err = parseDate("actualDate", *in.ActualDate); err != nil {
				return err
			}
			rescheduled = true
		}
		if in.ActualTime != nil {
			t, err := models.NormalizeClock(*in.ActualTime)
			if err != nil {
				return models.Invalid("actualTime", "actualTime must be in HH:MM format")
			}
			rec.ActualTime = t
			rescheduled = true
		}
		if rescheduled {
			class, err := tx.GetClass(ctx, rec.Class)
			switch {
			case err == nil:
				rec.ScheduleWarning = ScheduleWarning(class, rec.ActualDate, rec.ActualTime)
			case models.IsNotFound(err):
				s.logger.WarnContext(ctx, "class missing, schedule warning kept", "attendance_id", rec.AttendanceID)
			default:
				return err
			}
		}

		if in.Attendees != nil {
			if err := s.reverseCheckIns(ctx, tx, rec.Attendees); err != nil {
				return err
			}
			if rec.Attendees, err = s.checkIn(ctx, tx, *in.Attendees); err != nil {
				return err
			}
			rec.TotalAttendees = len(rec.Attendees)
		}
		if in.Notes != nil {
			rec.Notes = *in.Notes
		}
		if in.Status != nil {
			rec.Status = *in.Status
		}
		rec.UpdatedAt = s.now()
		out = rec
		return tx.UpdateAttendance(ctx, rec)
	})
	if err != nil {
		return nil, err
	}
	if in.Attendees != nil {
		metrics.RecordLedgerOperation("attendance_replace")
	}
	return out, nil
}

func (s *Service) SetAttendanceStatus(ctx context.Context, id, status string) (*models.Attendance, error) {
	return s.UpdateAttendance(ctx, id, UpdateAttendanceInput{Status: &status})
}

func checkAttendeeStatuses(in []AttendeeInput) error {
	for _, a := range in {
		if a.Status == "" {
			continue
		}
		if err := models.CheckEnum("attendees.status", a.Status, models.AttendeeStatuses); err != nil {
			return err
		}
	}
	return nil
}

// ScheduleWarning compares a recorded session with the class timetable. It
// is informational and never blocks recording.
func ScheduleWarning(class *models.Class, actualDate time.Time, actualTime string) models.ScheduleWarning {
	w := models.ScheduleWarning{
		ExpectedDay:  class.DayOfWeek,
		ExpectedTime: class.StartTime,
		ActualDate:   actualDate,
		ActualTime:   actualTime,
	}
	expectedTime, err := models.NormalizeClock(class.StartTime)
	if err != nil {
		expectedTime = class.StartTime
	}
	recordedTime, err := models.NormalizeClock(actualTime)
	if err != nil {
		recordedTime = actualTime
	}
	dayMatches := models.WeekdayIndex(class.DayOfWeek) == int(actualDate.Weekday())
	if dayMatches && expectedTime == recordedTime {
		w.Message = "Attendance matches scheduled class time"
		return w
	}
	w.HasWarning = true
	w.Message = "Schedule mismatch: Expected " + class.DayOfWeek + " at " + expectedTime +
		", but recorded " + actualDate.Format("Mon Jan 02 2006") + " at " + recordedTime
	return w
}
