package services

import (
	"context"
	"log/slog"

	"github.com/campuswatch/backend/internal/models"
	"github.com/google/uuid"
)

// PushGateway is signaled when a new report clears the campus severity
// threshold. Delivery itself happens outside this process; the core only
// emits the signal.
type PushGateway interface {
	NotifyHighSeverity(ctx context.Context, campusID uuid.UUID, report *models.Report)
}

type logPushGateway struct{}

// NewLogPushGateway returns the default gateway, which records the signal
// and nothing more.
func NewLogPushGateway() PushGateway { return logPushGateway{} }

func (logPushGateway) NotifyHighSeverity(_ context.Context, campusID uuid.UUID, report *models.Report) {
	slog.Info("high severity report eligible for push",
		"campus_id", campusID.String(),
		"report_id", report.ID.String(),
		"severity", report.Severity,
	)
}
