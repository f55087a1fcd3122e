package attendance

import (
	"context"
	"time"
)

type StoreAPI interface {
	StaffProfile(ctx context.Context, tenantID, staffID string) (StaffProfile, error)

	CheckIn(ctx context.Context, tenantID, staffID string, at time.Time) (Record, error)
	// CheckOut closes today's open record; conditional on status=checked_in.
	CheckOut(ctx context.Context, tenantID, staffID string, at time.Time, auto bool) (Record, error)
	RecordsInRange(ctx context.Context, tenantID, staffID string, start, end time.Time) ([]Record, error)
	OpenRecords(ctx context.Context, tenantID string, workDate time.Time) ([]Record, error)

	CreateOvertime(ctx context.Context, tenantID string, req OvertimeRequest) (string, error)
	// DecideOvertime is conditional on status=pending.
	DecideOvertime(ctx context.Context, tenantID, requestID, status, decidedBy string, decidedAt time.Time) error
	OvertimeInRange(ctx context.Context, tenantID, staffID string, start, end time.Time) ([]OvertimeRequest, error)
	PendingOvertime(ctx context.Context, tenantID string) ([]OvertimeRequest, error)

	HolidaysInRange(ctx context.Context, tenantID string, start, end time.Time) ([]Holiday, error)
	CreateHoliday(ctx context.Context, tenantID string, day time.Time, name, kind string) (string, error)
	DeleteHoliday(ctx context.Context, tenantID, holidayID string) error

	ApprovedPaidLeaveOverlapping(ctx context.Context, tenantID, staffID string, start, end time.Time) ([]LeaveWindow, error)
}
