package dto

import "time"

// DateRangeRequest selects a creation-date bucket.
type DateRangeRequest struct {
	Bucket string     `json:"bucket" validate:"required,oneof=all today week month quarter year custom"`
	Start  *time.Time `json:"start,omitempty"`
	End    *time.Time `json:"end,omitempty"`
}

// CreateViewRequest opens a list view over one entity kind.
type CreateViewRequest struct {
	Kind      string            `json:"kind" validate:"required,oneof=tutors tuition_requests demo_classes appointment_letters notices"`
	PageSize  int               `json:"page_size" validate:"omitempty,min=1,max=100"`
	Search    string            `json:"search" validate:"max=200"`
	Filters   map[string]string `json:"filters"`
	DateRange *DateRangeRequest `json:"date_range"`
}

// ViewQueryRequest changes the query of an open view. Absent fields are left as they are.
type ViewQueryRequest struct {
	Search       *string           `json:"search" validate:"omitempty,max=200"`
	Filters      map[string]string `json:"filters"`
	DateRange    *DateRangeRequest `json:"date_range"`
	ClearFilters bool              `json:"clear_filters"`
	Page         *int              `json:"page" validate:"omitempty,min=1"`
	PageSize     *int              `json:"page_size" validate:"omitempty,min=1,max=100"`
	Select       []string          `json:"select"`
	Deselect     []string          `json:"deselect"`
}

// KeystrokeRequest feeds the debounced search box.
type KeystrokeRequest struct {
	Value  string `json:"value" validate:"max=200"`
	Commit bool   `json:"commit"`
}
