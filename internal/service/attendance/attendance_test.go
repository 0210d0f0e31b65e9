package attendance

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"attendance/tracker/foundation/web"
	"attendance/tracker/internal/auth"
	"attendance/tracker/internal/entity"
	"attendance/tracker/internal/pkg/metrics"
	"attendance/tracker/internal/repository/postgres"

	"github.com/Azure/go-autorest/autorest/date"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dayKey struct {
	userID int
	day    string
}

// memRepo keeps records in memory and enforces one record per user and day.
type memRepo struct {
	mu      sync.Mutex
	nextID  int
	records map[dayKey]entity.Attendance
	users   map[int]entity.Owner
	fail    error
}

func newMemRepo() *memRepo {
	return &memRepo{
		records: map[dayKey]entity.Attendance{},
		users:   map[int]entity.Owner{},
	}
}

func (r *memRepo) Create(_ context.Context, a entity.Attendance) (entity.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.fail != nil {
		return entity.Attendance{}, r.fail
	}

	k := dayKey{a.UserID, a.WorkDay.String()}
	if _, ok := r.records[k]; ok {
		return entity.Attendance{}, postgres.ErrDuplicate
	}

	r.nextID++
	a.ID = r.nextID
	r.records[k] = a
	return a, nil
}

func (r *memRepo) SetCheckOut(_ context.Context, userID int, day date.Date, at entity.TimeOfDay) (entity.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.fail != nil {
		return entity.Attendance{}, r.fail
	}

	k := dayKey{userID, day.String()}
	a, ok := r.records[k]
	if !ok {
		return entity.Attendance{}, postgres.ErrNotFound
	}
	if a.CheckOut != nil {
		return entity.Attendance{}, postgres.ErrConflict
	}

	a.CheckOut = &at
	r.records[k] = a
	return a, nil
}

func (r *memRepo) sorted(keep func(entity.Attendance) bool) []entity.Attendance {
	list := []entity.Attendance{}
	for _, a := range r.records {
		if keep(a) {
			list = append(list, a)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].WorkDay.Equal(list[j].WorkDay.Time) {
			return list[i].WorkDay.After(list[j].WorkDay.Time)
		}
		return list[i].ID > list[j].ID
	})
	return list
}

func (r *memRepo) ListByUser(_ context.Context, userID int) ([]entity.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.fail != nil {
		return nil, r.fail
	}

	return r.sorted(func(a entity.Attendance) bool { return a.UserID == userID }), nil
}

func (r *memRepo) ListAll(_ context.Context, filter entity.AttendanceFilter) ([]entity.AttendanceWithUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.fail != nil {
		return nil, r.fail
	}

	search := ""
	if filter.Search != nil {
		search = strings.ToLower(strings.TrimSpace(*filter.Search))
	}

	list := []entity.AttendanceWithUser{}
	for _, a := range r.sorted(func(entity.Attendance) bool { return true }) {
		row := entity.AttendanceWithUser{Attendance: a, User: r.users[a.UserID]}
		if search != "" &&
			!strings.Contains(strings.ToLower(row.User.Name), search) &&
			!strings.Contains(strings.ToLower(row.User.Email), search) &&
			!strings.Contains(row.WorkDay.String(), search) {
			continue
		}
		list = append(list, row)
	}
	return list, nil
}

func (r *memRepo) put(t *testing.T, userID int, day, in, out string) {
	t.Helper()

	d, err := date.ParseDate(day)
	require.NoError(t, err)

	a := entity.Attendance{UserID: userID, WorkDay: d}
	if in != "" {
		v, err := entity.ParseTimeOfDay(in)
		require.NoError(t, err)
		a.CheckIn = &v
	}
	if out != "" {
		v, err := entity.ParseTimeOfDay(out)
		require.NoError(t, err)
		a.CheckOut = &v
	}

	_, err = r.Create(context.Background(), a)
	require.NoError(t, err)
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

var (
	alice = auth.Claims{UserId: 2, Role: auth.RoleEmployee}
	bob   = auth.Claims{UserId: 3, Role: auth.RoleEmployee}
	admin = auth.Claims{UserId: 1, Role: auth.RoleAdmin}
)

func newTestService(t *testing.T, repo Repository, c *clock) (*Service, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, c.Now, log, metrics.New(reg)), reg
}

// transitions reads the attendance_transitions_total sample for the labels.
func transitions(t *testing.T, reg *prometheus.Registry, operation, result string) float64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)

	for _, f := range families {
		if f.GetName() != "attendance_transitions_total" {
			continue
		}
		for _, m := range f.GetMetric() {
			labels := map[string]string{}
			for _, l := range m.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			if labels["operation"] == operation && labels["result"] == result {
				return m.GetCounter().GetValue()
			}
		}
	}

	return 0
}

func at(day string, hour, min int) time.Time {
	d, _ := time.Parse("2006-01-02", day)
	return time.Date(d.Year(), d.Month(), d.Day(), hour, min, 0, 0, time.Local)
}

func requireWebError(t *testing.T, err error, status int, code string) {
	t.Helper()
	require.Error(t, err)

	var webErr *web.Error
	require.True(t, errors.As(err, &webErr), "expected *web.Error, got %T", err)
	assert.Equal(t, status, webErr.Status)
	assert.Equal(t, code, webErr.ErrorCode())
}

func TestService_FullDay(t *testing.T) {
	repo := newMemRepo()
	c := &clock{now: at("2025-06-18", 9, 0)}
	s, reg := newTestService(t, repo, c)
	ctx := context.Background()

	rec, err := s.CheckIn(ctx, alice.UserId)
	require.NoError(t, err)
	assert.Equal(t, "2025-06-18", rec.WorkDay.String())
	require.NotNil(t, rec.CheckIn)
	assert.Equal(t, "09:00", rec.CheckIn.String())
	assert.Nil(t, rec.CheckOut)

	c.Set(at("2025-06-18", 17, 0))
	rec, err = s.CheckOut(ctx, alice.UserId)
	require.NoError(t, err)
	require.NotNil(t, rec.CheckOut)
	assert.Equal(t, "17:00", rec.CheckOut.String())

	report, err := s.MonthlyReport(ctx, alice, nil, "2025-06")
	require.NoError(t, err)
	assert.Equal(t, Summary{Total: 1, FullDays: 1, HalfDays: 0, TotalMinutes: 480, TotalHours: "8h 0m"}, report.Summary)
	assert.Equal(t, "2025-06", report.Month)
	assert.Equal(t, alice.UserId, report.UserID)

	_, err = s.CheckOut(ctx, alice.UserId)
	requireWebError(t, err, http.StatusBadRequest, CodeAlreadyCheckedOut)
	assert.True(t, errors.Is(err, ErrAlreadyCheckedOut))

	_, err = s.CheckIn(ctx, alice.UserId)
	requireWebError(t, err, http.StatusBadRequest, CodeAlreadyCheckedIn)

	list, err := s.ListOwn(ctx, alice.UserId)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "09:00", list[0].CheckIn.String())
	assert.Equal(t, "17:00", list[0].CheckOut.String())

	assert.Equal(t, 1.0, transitions(t, reg, "checkin", "ok"))
	assert.Equal(t, 1.0, transitions(t, reg, "checkin", "already_checked_in"))
	assert.Equal(t, 1.0, transitions(t, reg, "checkout", "ok"))
	assert.Equal(t, 1.0, transitions(t, reg, "checkout", "already_checked_out"))
}

func TestService_HalfDay(t *testing.T) {
	repo := newMemRepo()
	c := &clock{now: at("2025-06-18", 9, 0)}
	s, _ := newTestService(t, repo, c)
	ctx := context.Background()

	_, err := s.CheckIn(ctx, alice.UserId)
	require.NoError(t, err)

	report, err := s.MonthlyReport(ctx, alice, nil, "2025-06")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Summary.Total)
	assert.Equal(t, 0, report.Summary.FullDays)
	assert.Equal(t, 1, report.Summary.HalfDays)
	assert.Equal(t, 0, report.Summary.TotalMinutes)
}

func TestService_CheckOutWithoutCheckIn(t *testing.T) {
	s, _ := newTestService(t, newMemRepo(), &clock{now: at("2025-06-18", 17, 0)})

	_, err := s.CheckOut(context.Background(), alice.UserId)
	requireWebError(t, err, http.StatusNotFound, CodeNoCheckInFound)
	assert.True(t, errors.Is(err, ErrNoCheckInFound))
}

func TestService_NewDayStartsFresh(t *testing.T) {
	repo := newMemRepo()
	c := &clock{now: at("2025-06-17", 9, 0)}
	s, _ := newTestService(t, repo, c)
	ctx := context.Background()

	_, err := s.CheckIn(ctx, alice.UserId)
	require.NoError(t, err)

	c.Set(at("2025-06-18", 8, 55))
	_, err = s.CheckOut(ctx, alice.UserId)
	requireWebError(t, err, http.StatusNotFound, CodeNoCheckInFound)

	_, err = s.CheckIn(ctx, alice.UserId)
	require.NoError(t, err)

	list, err := s.ListOwn(ctx, alice.UserId)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "2025-06-18", list[0].WorkDay.String())
	assert.Equal(t, "2025-06-17", list[1].WorkDay.String())
}

func TestService_ConcurrentCheckIn(t *testing.T) {
	repo := newMemRepo()
	s, _ := newTestService(t, repo, &clock{now: at("2025-06-18", 9, 0)})

	const callers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.CheckIn(context.Background(), alice.UserId)

			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
			} else if errors.Is(err, ErrAlreadyCheckedIn) {
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, callers-1, rejected)
	assert.Len(t, repo.records, 1)
}

func TestService_StoreFailureIsInternal(t *testing.T) {
	repo := newMemRepo()
	repo.fail = errors.New("connection reset")
	s, _ := newTestService(t, repo, &clock{now: at("2025-06-18", 9, 0)})
	ctx := context.Background()

	_, err := s.CheckIn(ctx, alice.UserId)
	requireWebError(t, err, http.StatusInternalServerError, web.CodeInternal)
	assert.NotContains(t, err.Error(), "connection reset")

	_, err = s.CheckOut(ctx, alice.UserId)
	requireWebError(t, err, http.StatusInternalServerError, web.CodeInternal)

	_, err = s.ListOwn(ctx, alice.UserId)
	requireWebError(t, err, http.StatusInternalServerError, web.CodeInternal)

	_, err = s.ListAll(ctx, admin, entity.AttendanceFilter{})
	requireWebError(t, err, http.StatusInternalServerError, web.CodeInternal)
}

func TestService_Delegation(t *testing.T) {
	repo := newMemRepo()
	repo.put(t, alice.UserId, "2025-06-17", "09:01", "17:05")
	repo.put(t, bob.UserId, "2025-06-18", "09:10", "17:20")
	s, _ := newTestService(t, repo, &clock{now: at("2025-06-18", 12, 0)})
	ctx := context.Background()

	target := alice.UserId
	list, err := s.ListOwnOrDelegated(ctx, admin, &target)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, alice.UserId, list[0].UserID)

	list, err = s.ListOwnOrDelegated(ctx, alice, &target)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	other := bob.UserId
	_, err = s.ListOwnOrDelegated(ctx, alice, &other)
	requireWebError(t, err, http.StatusForbidden, web.CodeForbidden)

	_, err = s.MonthlyReport(ctx, alice, &other, "2025-06")
	requireWebError(t, err, http.StatusForbidden, web.CodeForbidden)

	list, err = s.ListOwnOrDelegated(ctx, bob, nil)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, bob.UserId, list[0].UserID)
}

func TestService_ListAll(t *testing.T) {
	repo := newMemRepo()
	repo.users[alice.UserId] = entity.Owner{ID: alice.UserId, Name: "Alice", Email: "alice@example.com"}
	repo.users[bob.UserId] = entity.Owner{ID: bob.UserId, Name: "Bob", Email: "bob@example.com"}
	repo.put(t, alice.UserId, "2025-06-17", "09:01", "17:05")
	repo.put(t, bob.UserId, "2025-06-18", "09:10", "")
	s, _ := newTestService(t, repo, &clock{now: at("2025-06-18", 12, 0)})
	ctx := context.Background()

	list, err := s.ListAll(ctx, admin, entity.AttendanceFilter{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Bob", list[0].User.Name)
	assert.Equal(t, "alice@example.com", list[1].User.Email)

	search := "ALICE"
	list, err = s.ListAll(ctx, admin, entity.AttendanceFilter{Search: &search})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Alice", list[0].User.Name)

	_, err = s.ListAll(ctx, alice, entity.AttendanceFilter{})
	requireWebError(t, err, http.StatusForbidden, web.CodeForbidden)
}

func TestService_MonthlyReport(t *testing.T) {
	repo := newMemRepo()
	repo.put(t, alice.UserId, "2025-05-31", "09:00", "18:00")
	repo.put(t, alice.UserId, "2025-06-17", "09:01", "17:05")
	repo.put(t, alice.UserId, "2025-06-18", "09:00", "17:00")
	repo.put(t, alice.UserId, "2025-06-19", "09:30", "")
	s, _ := newTestService(t, repo, &clock{now: at("2025-06-20", 10, 0)})
	ctx := context.Background()

	report, err := s.MonthlyReport(ctx, alice, nil, "")
	require.NoError(t, err)
	assert.Equal(t, "2025-06", report.Month)
	assert.Equal(t, Summary{Total: 3, FullDays: 2, HalfDays: 1, TotalMinutes: 964, TotalHours: "16h 4m"}, report.Summary)
	require.Len(t, report.Records, 3)
	assert.Equal(t, "2025-06-19", report.Records[0].WorkDay.String())

	report, err = s.MonthlyReport(ctx, alice, nil, "2025-05")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Summary.Total)
	assert.Equal(t, 540, report.Summary.TotalMinutes)

	report, err = s.MonthlyReport(ctx, alice, nil, "2024-01")
	require.NoError(t, err)
	assert.Equal(t, Summary{TotalHours: "0h 0m"}, report.Summary)
	assert.Empty(t, report.Records)

	_, err = s.MonthlyReport(ctx, alice, nil, "June")
	requireWebError(t, err, http.StatusBadRequest, web.CodeBadRequest)
}
