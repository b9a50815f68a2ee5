package model

import "time"

type BookingStatus string

const (
	BookingStatusPending  BookingStatus = "Pending"
	BookingStatusApproved BookingStatus = "Approved"
	BookingStatusRejected BookingStatus = "Rejected"
)

// IsTerminal reports whether the status admits no further transition.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusApproved || s == BookingStatusRejected
}

// IsActive reports whether the status holds its slot, making it
// unavailable to other students.
func (s BookingStatus) IsActive() bool {
	return s == BookingStatusPending || s == BookingStatusApproved
}

type Booking struct {
	ID         int64         `json:"id"`
	UserID     int64         `json:"user_id"`
	ResourceID int64         `json:"resource_id"`
	SlotID     int64         `json:"slot_id"`
	Status     BookingStatus `json:"status"`
	CreatedAt  time.Time     `json:"created_at"`
}

// StudentBooking is a booking joined with its resource and slot for the
// owner's listing.
type StudentBooking struct {
	ID           int64         `json:"id"`
	ResourceID   int64         `json:"resourceId"`
	Status       BookingStatus `json:"status"`
	ResourceName string        `json:"resourceName"`
	Slot         string        `json:"slot"`
}

// AdminBooking is the admin overview row joined across users, resources
// and slots.
type AdminBooking struct {
	ID           int64         `json:"id"`
	BookedAt     time.Time     `json:"bookedAt"`
	UserEmail    string        `json:"userEmail"`
	ResourceName string        `json:"resourceName"`
	TimeSlot     string        `json:"timeSlot"`
	Status       BookingStatus `json:"status"`
}
