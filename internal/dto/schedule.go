package dto

// UpdateScheduleRequest carries the full replacement grid. The payload must
// be exactly 6 rows of 8 booleans; shape is validated before anything is
// written.
type UpdateScheduleRequest struct {
	Schedule [][]bool `json:"schedule" binding:"required"`
}

// ScheduleResponse returns the weekly template as row data.
type ScheduleResponse struct {
	Schedule [][]bool `json:"schedule"`
}

// AvailableDatesResponse lists the instants the caller may choose from, in
// ascending order, formatted in the scheduling zone.
type AvailableDatesResponse struct {
	Purpose string   `json:"purpose"`
	Dates   []string `json:"dates"`
}

// ChooseDateRequest commits one concrete instant onto the caller's pending
// submission or active booking.
type ChooseDateRequest struct {
	Date string `json:"date" binding:"required"`
}

// AgendaQuery selects the month for the staff pickup/return calendars.
type AgendaQuery struct {
	Year  int `form:"year"`
	Month int `form:"month"`
}

// CreateExportRequest enqueues an agenda export.
type CreateExportRequest struct {
	Kind   string `json:"kind" validate:"required,oneof=pickups returns"`
	Format string `json:"format" validate:"required,oneof=csv pdf"`
	Year   int    `json:"year" validate:"required,min=2020"`
	Month  int    `json:"month" validate:"required,min=1,max=12"`
}

// ExportStatusResponse reports an export job plus its download URL once the
// file is ready.
type ExportStatusResponse struct {
	ID          string  `json:"id"`
	Status      string  `json:"status"`
	DownloadURL *string `json:"download_url,omitempty"`
	Error       *string `json:"error,omitempty"`
}
