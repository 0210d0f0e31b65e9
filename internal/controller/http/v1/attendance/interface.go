package attendance

import (
	"context"

	"attendance/tracker/internal/auth"
	"attendance/tracker/internal/entity"
	"attendance/tracker/internal/service/attendance"
)

type Attendance interface {
	CheckIn(ctx context.Context, userID int) (entity.Attendance, error)
	CheckOut(ctx context.Context, userID int) (entity.Attendance, error)
	ListOwnOrDelegated(ctx context.Context, claims auth.Claims, target *int) ([]entity.Attendance, error)
	ListAll(ctx context.Context, claims auth.Claims, filter entity.AttendanceFilter) ([]entity.AttendanceWithUser, error)
	MonthlyReport(ctx context.Context, claims auth.Claims, target *int, month string) (attendance.Report, error)
}
