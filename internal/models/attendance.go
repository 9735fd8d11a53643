package models

import "time"

type CustomerDetails struct {
	CustomerID string `json:"customerId" bson:"customerId"`
	FirstName  string `json:"firstName" bson:"firstName"`
	LastName   string `json:"lastName" bson:"lastName"`
	Email      string `json:"email" bson:"email"`
	Phone      string `json:"phone" bson:"phone"`
}

// AttendeePackage is the package information of the sale a check-in consumed.
type AttendeePackage struct {
	PackageID       string `json:"packageId" bson:"packageId"`
	Name            string `json:"name" bson:"name"`
	Type            string `json:"type" bson:"type"`
	NumberOfClasses int    `json:"numberOfClasses" bson:"numberOfClasses"`
}

type Attendee struct {
	Customer           string           `json:"customer" bson:"customer"`
	CustomerDetails    CustomerDetails  `json:"customerDetails" bson:"customerDetails"`
	Sale               string           `json:"sale,omitempty" bson:"sale,omitempty"`
	Package            string           `json:"package,omitempty" bson:"package,omitempty"`
	PackageDetails     *AttendeePackage `json:"packageDetails" bson:"packageDetails"`
	Status             string           `json:"status" bson:"status"`
	CheckInTime        time.Time        `json:"checkInTime" bson:"checkInTime"`
	ClassBalanceBefore int              `json:"classBalanceBefore" bson:"classBalanceBefore"`
	ClassBalanceAfter  int              `json:"classBalanceAfter" bson:"classBalanceAfter"`
	BalanceUpdated     bool             `json:"balanceUpdated" bson:"balanceUpdated"`
	ConfirmationSent   bool             `json:"confirmationSent" bson:"confirmationSent"`
	Notes              string           `json:"notes,omitempty" bson:"notes,omitempty"`
}

type ScheduleWarning struct {
	HasWarning   bool      `json:"hasWarning" bson:"hasWarning"`
	Message      string    `json:"message" bson:"message"`
	ExpectedDay  string    `json:"expectedDay" bson:"expectedDay"`
	ExpectedTime string    `json:"expectedTime" bson:"expectedTime"`
	ActualDate   time.Time `json:"actualDate" bson:"actualDate"`
	ActualTime   string    `json:"actualTime" bson:"actualTime"`
}

// Attendance is the record of one class session.
type Attendance struct {
	ID              string          `json:"id" bson:"_id"`
	AttendanceID    string          `json:"attendanceId" bson:"attendanceId"`
	Class           string          `json:"class" bson:"class"`
	Instructor      string          `json:"instructor" bson:"instructor"`
	AttendanceDate  time.Time       `json:"attendanceDate" bson:"attendanceDate"`
	ActualDate      time.Time       `json:"actualDate" bson:"actualDate"`
	ActualTime      string          `json:"actualTime" bson:"actualTime"`
	Attendees       []Attendee      `json:"attendees" bson:"attendees"`
	TotalAttendees  int             `json:"totalAttendees" bson:"totalAttendees"`
	ScheduleWarning ScheduleWarning `json:"scheduleWarning" bson:"scheduleWarning"`
	Status          string          `json:"status" bson:"status"`
	Notes           string          `json:"notes,omitempty" bson:"notes,omitempty"`
	CreatedAt       time.Time       `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt" bson:"updatedAt"`
}

func (a *Attendance) Clone() *Attendance {
	c := *a
	c.Attendees = make([]Attendee, len(a.Attendees))
	for i, at := range a.Attendees {
		c.Attendees[i] = at
		if at.PackageDetails != nil {
			pd := *at.PackageDetails
			c.Attendees[i].PackageDetails = &pd
		}
	}
	return &c
}

// CheckIns counts attendees who actually came.
func (a *Attendance) CheckIns() int {
	n := 0
	for _, at := range a.Attendees {
		if at.Status == AttendeePresent || at.Status == AttendeeLate {
			n++
		}
	}
	return n
}
