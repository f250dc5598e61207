package models

import "time"

// Booking is an open or finished loan of a concrete bicycle. Duration is
// expressed in months; End is nil while the loan is active. ReturnSchedule
// holds the instant the rider committed to bring the bicycle back.
type Booking struct {
	ID             string     `db:"id" json:"id"`
	UserID         string     `db:"user_id" json:"user_id"`
	BicycleID      string     `db:"bicycle_id" json:"bicycle_id"`
	Start          time.Time  `db:"start" json:"start"`
	Duration       int        `db:"duration" json:"duration"`
	End            *time.Time `db:"end" json:"end,omitempty"`
	ReturnSchedule *time.Time `db:"return_schedule" json:"return_schedule,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// ActiveBookingRider pairs an open loan with the commute answers its rider
// gave at signup, the inputs of the emissions estimate.
type ActiveBookingRider struct {
	BookingID string    `db:"booking_id" json:"booking_id"`
	Start     time.Time `db:"start" json:"start"`
	Commune   string    `db:"commune" json:"commune"`
	Transport string    `db:"transport" json:"transport"`
}

// BookingFilter narrows down booking listings.
type BookingFilter struct {
	UserID   string
	Active   *bool
	Page     int
	PageSize int
}

// Submission is a rider's pending loan application for a bicycle model.
// PickupSchedule holds the instant the rider committed to pick the bicycle
// up. A user has at most one pending submission.
type Submission struct {
	ID             string     `db:"id" json:"id"`
	UserID         string     `db:"user_id" json:"user_id"`
	BicycleModelID string     `db:"bicycle_model_id" json:"bicycle_model_id"`
	PickupSchedule *time.Time `db:"pickup_schedule" json:"pickup_schedule,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}
