package models

import "time"

// ExitForm is the questionnaire a rider fills when closing a loan. One per
// booking; writes upsert on the booking key.
type ExitForm struct {
	ID                 string    `db:"id" json:"id"`
	BookingID          string    `db:"booking_id" json:"booking_id"`
	BicycleReview      string    `db:"bicycle_review" json:"bicycle_review"`
	BicycleModelReview string    `db:"bicycle_model_review" json:"bicycle_model_review"`
	AccessoryReview    string    `db:"accessory_review" json:"accessory_review"`
	Suggestions        string    `db:"suggestions" json:"suggestions"`
	ParkingSpot        string    `db:"parking_spot" json:"parking_spot"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

// UserHistory is a staff-authored note on a user's record.
type UserHistory struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"user_id"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// BicycleHistory is a staff-authored note on a bicycle's record, typically
// maintenance or incident entries.
type BicycleHistory struct {
	ID          string    `db:"id" json:"id"`
	BicycleID   string    `db:"bicycle_id" json:"bicycle_id"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
