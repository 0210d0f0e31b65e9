// Package attendance is the check-in/check-out state machine and the
// queries built on top of it.
//
// Per user and day a record moves from absent (no row) to checked-in
// (check_out unset) to checked-out, which is terminal for that day.
package attendance

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"attendance/tracker/foundation/web"
	"attendance/tracker/internal/auth"
	"attendance/tracker/internal/entity"
	"attendance/tracker/internal/pkg/metrics"
	"attendance/tracker/internal/repository/postgres"

	"github.com/Azure/go-autorest/autorest/date"
	"github.com/pkg/errors"
)

// Repository is the record store the service needs. Create must fail with
// postgres.ErrDuplicate when (UserID, WorkDay) exists. SetCheckOut must be a
// single conditional write failing with postgres.ErrNotFound or
// postgres.ErrConflict.
type Repository interface {
	Create(ctx context.Context, a entity.Attendance) (entity.Attendance, error)
	SetCheckOut(ctx context.Context, userID int, day date.Date, at entity.TimeOfDay) (entity.Attendance, error)
	ListByUser(ctx context.Context, userID int) ([]entity.Attendance, error)
	ListAll(ctx context.Context, filter entity.AttendanceFilter) ([]entity.AttendanceWithUser, error)
}

type Service struct {
	repo    Repository
	now     func() time.Time
	log     *slog.Logger
	metrics *metrics.Metrics
}

// NewService builds the service. A nil now uses the server's local clock.
func NewService(repo Repository, now func() time.Time, log *slog.Logger, m *metrics.Metrics) *Service {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = slog.Default()
	}

	return &Service{
		repo:    repo,
		now:     now,
		log:     log,
		metrics: m,
	}
}

// CheckIn opens today's record for userID.
func (s *Service) CheckIn(ctx context.Context, userID int) (entity.Attendance, error) {
	now := s.now()
	checkIn := entity.NewTimeOfDay(now)

	record, err := s.repo.Create(ctx, entity.Attendance{
		UserID:  userID,
		WorkDay: entity.Today(now),
		CheckIn: &checkIn,
	})
	switch {
	case err == nil:
		s.metrics.Transition("checkin", "ok")
		return record, nil
	case errors.Is(err, postgres.ErrDuplicate):
		s.metrics.Transition("checkin", "already_checked_in")
		return entity.Attendance{}, alreadyCheckedIn()
	}

	s.metrics.Transition("checkin", "error")
	s.log.Error("check-in failed", "user_id", userID, "error", err)
	return entity.Attendance{}, internal()
}

// CheckOut closes today's record for userID.
func (s *Service) CheckOut(ctx context.Context, userID int) (entity.Attendance, error) {
	now := s.now()

	record, err := s.repo.SetCheckOut(ctx, userID, entity.Today(now), entity.NewTimeOfDay(now))
	switch {
	case err == nil:
		s.metrics.Transition("checkout", "ok")
		return record, nil
	case errors.Is(err, postgres.ErrNotFound):
		s.metrics.Transition("checkout", "no_check_in")
		return entity.Attendance{}, noCheckInFound()
	case errors.Is(err, postgres.ErrConflict):
		s.metrics.Transition("checkout", "already_checked_out")
		return entity.Attendance{}, alreadyCheckedOut()
	}

	s.metrics.Transition("checkout", "error")
	s.log.Error("check-out failed", "user_id", userID, "error", err)
	return entity.Attendance{}, internal()
}

// ListOwn returns the user's records, most recent day first.
func (s *Service) ListOwn(ctx context.Context, userID int) ([]entity.Attendance, error) {
	list, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		s.log.Error("listing attendance failed", "user_id", userID, "error", err)
		return nil, internal()
	}

	return list, nil
}

// ListOwnOrDelegated lists the target's records when an admin names one and
// the caller's own records otherwise.
func (s *Service) ListOwnOrDelegated(ctx context.Context, claims auth.Claims, target *int) ([]entity.Attendance, error) {
	userID, err := resolveOwner(claims, target)
	if err != nil {
		return nil, err
	}

	return s.ListOwn(ctx, userID)
}

// ListAll returns every record with its owner that matches filter. Admin only.
func (s *Service) ListAll(ctx context.Context, claims auth.Claims, filter entity.AttendanceFilter) ([]entity.AttendanceWithUser, error) {
	if auth.Authorize(claims, auth.ScopeAdmin) == auth.Forbidden {
		return nil, forbidden()
	}

	list, err := s.repo.ListAll(ctx, filter)
	if err != nil {
		s.log.Error("listing all attendance failed", "error", err)
		return nil, internal()
	}

	return list, nil
}

// Report is a month of one user's records with their summary.
type Report struct {
	UserID  int                 `json:"userId"`
	Month   string              `json:"month"`
	Summary Summary             `json:"summary"`
	Records []entity.Attendance `json:"records"`
}

// MonthlyReport summarizes month for the caller or, for admins, the target.
// An empty month means the current one.
func (s *Service) MonthlyReport(ctx context.Context, claims auth.Claims, target *int, month string) (Report, error) {
	m := entity.MonthOf(entity.Today(s.now()))
	if month != "" {
		parsed, err := entity.ParseMonth(month)
		if err != nil {
			return Report{}, web.NewRequestError(err, http.StatusBadRequest)
		}
		m = parsed
	}

	userID, err := resolveOwner(claims, target)
	if err != nil {
		return Report{}, err
	}

	list, err := s.ListOwn(ctx, userID)
	if err != nil {
		return Report{}, err
	}

	records := FilterMonth(list, m)

	return Report{
		UserID:  userID,
		Month:   m.String(),
		Summary: SummarizeMonth(records, m),
		Records: records,
	}, nil
}

func resolveOwner(claims auth.Claims, target *int) (int, error) {
	if auth.AuthorizeTarget(claims, target) == auth.Forbidden {
		return 0, forbidden()
	}

	if target != nil && claims.IsAdmin() {
		return *target, nil
	}

	return claims.UserId, nil
}
