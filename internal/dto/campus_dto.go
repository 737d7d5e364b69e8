package dto

type CreateCampusRequest struct {
	Name                   string  `json:"name" validate:"required,min=2,max=200"`
	Code                   string  `json:"code" validate:"required,min=2,max=20"`
	City                   string  `json:"city" validate:"omitempty,max=100"`
	CenterLat              float64 `json:"center_lat" validate:"latitude"`
	CenterLng              float64 `json:"center_lng" validate:"longitude"`
	MinSeverityForPush     int     `json:"min_severity_for_push" validate:"omitempty,min=1,max=5"`
	ReportRateLimitPerHour int     `json:"report_rate_limit_per_hour" validate:"omitempty,min=0,max=1000"`
}

type UpdateCampusRequest struct {
	Name                   *string  `json:"name" validate:"omitempty,min=2,max=200"`
	City                   *string  `json:"city" validate:"omitempty,max=100"`
	CenterLat              *float64 `json:"center_lat" validate:"omitempty,latitude"`
	CenterLng              *float64 `json:"center_lng" validate:"omitempty,longitude"`
	MinSeverityForPush     *int     `json:"min_severity_for_push" validate:"omitempty,min=1,max=5"`
	ReportRateLimitPerHour *int     `json:"report_rate_limit_per_hour" validate:"omitempty,min=0,max=1000"`
	IsActive               *bool    `json:"is_active"`
}
