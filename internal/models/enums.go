package models

// Instructor statuses.
const (
	InstructorActive   = "active"
	InstructorInactive = "inactive"
	InstructorOnLeave  = "on-leave"
)

// Class statuses. A class stores only isActive; the status toggle maps onto it.
const (
	ClassActive   = "active"
	ClassInactive = "inactive"
)

// Customer statuses.
const (
	CustomerActive    = "active"
	CustomerInactive  = "inactive"
	CustomerSuspended = "suspended"
)

// Package statuses.
const (
	PackageActive       = "active"
	PackageInactive     = "inactive"
	PackageDiscontinued = "discontinued"
)

// Sale statuses.
const (
	SaleActive    = "active"
	SaleExpired   = "expired"
	SaleCancelled = "cancelled"
	SaleRefunded  = "refunded"
)

// Attendance record statuses.
const (
	AttendanceDraft     = "draft"
	AttendanceConfirmed = "confirmed"
	AttendanceCompleted = "completed"
	AttendanceCancelled = "cancelled"
)

// Attendee statuses.
const (
	AttendeePresent   = "present"
	AttendeeAbsent    = "absent"
	AttendeeLate      = "late"
	AttendeeCancelled = "cancelled"
)

const (
	PaymentCash = "Cash"

	PackageTypeClassPackage = "Class Package"

	LevelAllLevels = "All Levels"

	DefaultRoom = "Main Studio"
)

// UnlimitedClasses marks a package with no class limit.
const UnlimitedClasses = 999

var (
	InstructorStatuses = []string{InstructorActive, InstructorInactive, InstructorOnLeave}
	ClassStatuses      = []string{ClassActive, ClassInactive}
	CustomerStatuses   = []string{CustomerActive, CustomerInactive, CustomerSuspended}
	PackageStatuses    = []string{PackageActive, PackageInactive, PackageDiscontinued}
	SaleStatuses       = []string{SaleActive, SaleExpired, SaleCancelled, SaleRefunded}
	AttendanceStatuses = []string{AttendanceDraft, AttendanceConfirmed, AttendanceCompleted, AttendanceCancelled}
	AttendeeStatuses   = []string{AttendeePresent, AttendeeAbsent, AttendeeLate, AttendeeCancelled}

	PaymentMethods = []string{PaymentCash, "Credit Card", "Debit Card", "Check", "Online", "Gift Card", "Other"}

	PackageTypes = []string{
		PackageTypeClassPackage,
		"Monthly Unlimited",
		"Annual Membership",
		"Drop-in",
		"Special Offer",
		"Workshop",
		"Private Session",
	}

	ClassLevels = []string{
		LevelAllLevels,
		"Beginner",
		"Intermediate",
		"Advanced",
		"With Weights",
		"Restorative",
		"Chair",
		"Yin",
		"Prenatal",
	}

	// Weekdays are ordered like time.Weekday.
	Weekdays = []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}
)

// WeekdayIndex returns the time.Weekday number of day, or -1.
func WeekdayIndex(day string) int {
	for i, d := range Weekdays {
		if d == day {
			return i
		}
	}
	return -1
}
