package entity

import (
	"fmt"
	"time"

	"github.com/Azure/go-autorest/autorest/date"
)

// Attendance is one user's presence on one calendar day. At most one exists
// per (UserID, WorkDay).
type Attendance struct {
	ID       int        `json:"id"`
	UserID   int        `json:"userId"`
	WorkDay  date.Date  `json:"date"`
	CheckIn  *TimeOfDay `json:"checkIn,omitempty"`
	CheckOut *TimeOfDay `json:"checkOut,omitempty"`
}

// FullDay reports whether both check-in and check-out are set.
func (a Attendance) FullDay() bool {
	return a.CheckIn != nil && a.CheckOut != nil
}

// HalfDay reports whether only check-in is set.
func (a Attendance) HalfDay() bool {
	return a.CheckIn != nil && a.CheckOut == nil
}

// WorkedMinutes is check-out minus check-in for a full day, zero otherwise.
// A check-out earlier than the check-in gives a negative span.
func (a Attendance) WorkedMinutes() int {
	if !a.FullDay() {
		return 0
	}

	return a.CheckOut.Minutes() - a.CheckIn.Minutes()
}

// Owner is the part of a user joined onto the admin listing.
type Owner struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AttendanceWithUser is a record joined with its owner's name and email.
type AttendanceWithUser struct {
	Attendance
	User Owner `json:"user"`
}

// Today returns the calendar day of now in now's location.
func Today(now time.Time) date.Date {
	y, m, d := now.Date()
	return date.Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// FormatWorked renders minutes as "Xh Ym", prefixed with "-" when negative.
func FormatWorked(minutes int) string {
	sign := ""
	if minutes < 0 {
		sign = "-"
		minutes = -minutes
	}

	return fmt.Sprintf("%s%dh %dm", sign, minutes/60, minutes%60)
}

// AttendanceFilter narrows the admin listing. Search matches the owner's name
// or email, or the day, case-insensitively; nil matches everything.
type AttendanceFilter struct {
	Search *string
}
