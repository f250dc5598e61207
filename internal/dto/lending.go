package dto

import "time"

// SignupRequest creates a rider account.
type SignupRequest struct {
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=6"`
	Name         string `json:"name" validate:"required"`
	LastName     string `json:"last_name" validate:"required"`
	Address      string `json:"address"`
	City         string `json:"city"`
	Birthday     string `json:"birthday"`
	Occupancy    string `json:"occupancy"`
	AcademicUnit string `json:"academic_unit"`
	Commune      string `json:"commune"`
	Transport    string `json:"transport"`
}

// UpdateUserRequest mutates profile fields. Staff may additionally change
// role and active state; those fields are ignored for self-edits.
type UpdateUserRequest struct {
	Name         *string `json:"name"`
	LastName     *string `json:"last_name"`
	Address      *string `json:"address"`
	City         *string `json:"city"`
	Birthday     *string `json:"birthday"`
	Occupancy    *string `json:"occupancy"`
	AcademicUnit *string `json:"academic_unit"`
	Commune      *string `json:"commune"`
	Transport    *string `json:"transport"`
	Signature    *string `json:"signature"`
	Password     *string `json:"password"`
	Role         *string `json:"role"`
	Active       *bool   `json:"active"`
}

// CreateBicycleRequest registers a unit in the fleet.
type CreateBicycleRequest struct {
	QRCode    string `json:"qr_code" validate:"required"`
	Status    string `json:"status" validate:"required,oneof=HABILITADA INHABILITADA REPARACION EVENTO"`
	ModelID   string `json:"model_id" validate:"required"`
	Image     string `json:"image"`
	ULock     bool   `json:"ulock"`
	Lights    bool   `json:"lights"`
	Fleet     bool   `json:"fleet"`
	Reflector bool   `json:"reflector"`
}

// UpdateBicycleRequest mutates fleet unit fields.
type UpdateBicycleRequest struct {
	Status    *string `json:"status"`
	ModelID   *string `json:"model_id"`
	Image     *string `json:"image"`
	ULock     *bool   `json:"ulock"`
	Lights    *bool   `json:"lights"`
	Fleet     *bool   `json:"fleet"`
	Reflector *bool   `json:"reflector"`
}

// CreateBicycleModelRequest registers a bookable model.
type CreateBicycleModelRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// UpdateBicycleModelRequest mutates model fields.
type UpdateBicycleModelRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
}

// CreateSubmissionRequest opens a loan application for the calling rider.
type CreateSubmissionRequest struct {
	BicycleModelID string `json:"bicycle_model_id" validate:"required"`
}

// ReassignSubmissionRequest lets staff point a submission at another model.
type ReassignSubmissionRequest struct {
	BicycleModelID string `json:"bicycle_model_id" validate:"required"`
}

// CreateBookingRequest opens a loan from a submission.
type CreateBookingRequest struct {
	SubmissionID string `json:"submission_id" validate:"required"`
	BicycleID    string `json:"bicycle_id" validate:"required"`
	Duration     int    `json:"duration" validate:"required,min=1,max=12"`
	Start        string `json:"start"`
}

// UpdateBookingRequest mutates loan fields.
type UpdateBookingRequest struct {
	Duration *int    `json:"duration"`
	Start    *string `json:"start"`
}

// TerminateBookingRequest closes the open loan holding the bicycle with the
// given QR code.
type TerminateBookingRequest struct {
	QRCode string `json:"qr_code" validate:"required"`
}

// UpsertExitFormRequest creates or replaces the exit form for a booking.
type UpsertExitFormRequest struct {
	BookingID          string `json:"booking_id" validate:"required"`
	BicycleReview      string `json:"bicycle_review" validate:"required"`
	BicycleModelReview string `json:"bicycle_model_review" validate:"required"`
	AccessoryReview    string `json:"accessory_review" validate:"required"`
	Suggestions        string `json:"suggestions" validate:"required"`
	ParkingSpot        string `json:"parking_spot" validate:"required"`
}

// CreateHistoryRequest appends a note to a user or bicycle record.
type CreateHistoryRequest struct {
	Description string `json:"description" validate:"required"`
	UserID      string `json:"user_id"`
	BicycleID   string `json:"bicycle_id"`
}

// CurrentUserResponse describes the caller plus their lending state.
type CurrentUserResponse struct {
	User        interface{} `json:"user"`
	Booking     interface{} `json:"booking,omitempty"`
	Submission  interface{} `json:"submission,omitempty"`
	MissingData []string    `json:"missing_data,omitempty"`
}

// EmissionsReport aggregates the estimated CO2 savings of the program.
type EmissionsReport struct {
	ActiveBookings int       `json:"active_bookings"`
	DailyKgCO2     float64   `json:"daily_kg_co2"`
	TotalKgCO2     float64   `json:"total_kg_co2"`
	GeneratedAt    time.Time `json:"generated_at"`
}
