package models

import "time"

// BicycleStatus describes the operational state of a bicycle in the fleet.
type BicycleStatus string

const (
	BicycleEnabled  BicycleStatus = "HABILITADA"
	BicycleDisabled BicycleStatus = "INHABILITADA"
	BicycleInRepair BicycleStatus = "REPARACION"
	BicycleEvent    BicycleStatus = "EVENTO"
)

// Bicycle is a physical unit identified by the QR code glued to its frame.
type Bicycle struct {
	ID        string        `db:"id" json:"id"`
	QRCode    string        `db:"qr_code" json:"qr_code"`
	Status    BicycleStatus `db:"status" json:"status"`
	ModelID   string        `db:"model_id" json:"model_id"`
	Image     *string       `db:"image" json:"image,omitempty"`
	ULock     bool          `db:"ulock" json:"ulock"`
	Lights    bool          `db:"lights" json:"lights"`
	Fleet     bool          `db:"fleet" json:"fleet"`
	Reflector bool          `db:"reflector" json:"reflector"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt time.Time     `db:"updated_at" json:"updated_at"`
}

// BicycleFilter narrows down fleet listings.
type BicycleFilter struct {
	Status   *BicycleStatus
	ModelID  string
	Page     int
	PageSize int
}

// AvailableBicycleModel is a model together with the number of units a new
// submission could still claim.
type AvailableBicycleModel struct {
	BicycleModel
	Available int `db:"available" json:"available"`
}

// BicycleModel groups interchangeable bicycles riders apply for.
type BicycleModel struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Image       string    `db:"image" json:"image"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
