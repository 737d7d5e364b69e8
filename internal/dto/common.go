package dto

import "github.com/campuswatch/backend/internal/apperr"

// Envelope is the uniform response shape for every endpoint. Code carries
// the machine-checkable error kind; Errors carries per-field validation
// failures.
type Envelope struct {
	Success bool               `json:"success"`
	Message string             `json:"message,omitempty"`
	Code    string             `json:"code,omitempty"`
	Data    any                `json:"data,omitempty"`
	Errors  []apperr.FieldError `json:"errors,omitempty"`
}

// PageMeta rides along with every paginated listing.
type PageMeta struct {
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
}
