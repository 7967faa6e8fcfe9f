package model

import "time"

const (
	SessionStateOpen   = "open"
	SessionStateClosed = "closed"
)

// AttendanceSession is one continuous check-in-to-check-out interval for an
// employee. History is append-only: a new check-in after a closed session
// creates a fresh record, it never reopens the old one.
type AttendanceSession struct {
	ID             int64      `json:"id"`
	EmployeeID     int        `json:"employee_id"`
	CheckInTime    time.Time  `json:"check_in_time"`
	CheckOutTime   *time.Time `json:"check_out_time,omitempty"`
	DistanceMeters float64    `json:"distance_meters"`
	CreatedAt      time.Time  `json:"created_at"`
}

// State derives the session state from the checkout timestamp.
func (s *AttendanceSession) State() string {
	if s.CheckOutTime == nil {
		return SessionStateOpen
	}
	return SessionStateClosed
}

// CheckInRequest carries the client-reported coordinate for a check-in.
// The coordinate is trusted as reported; there is no cryptographic
// location proof. Pointers so that a legitimate 0.0 coordinate still
// passes the required binding.
type CheckInRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required,min=-90,max=90"`
	Longitude *float64 `json:"longitude" binding:"required,min=-180,max=180"`
}
