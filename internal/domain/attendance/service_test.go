package attendance

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type fakeAttendanceStore struct {
	profile     StaffProfile
	records     []Record
	overtime    []OvertimeRequest
	holidays    []Holiday
	leaves      []LeaveWindow
	holidayErr  error
	recordsErr  error
	overtimeSeq int
}

func (f *fakeAttendanceStore) StaffProfile(_ context.Context, _, staffID string) (StaffProfile, error) {
	if f.profile.ID == "" {
		return StaffProfile{}, ErrNotFound
	}
	return f.profile, nil
}

func (f *fakeAttendanceStore) CheckIn(_ context.Context, _, staffID string, at time.Time) (Record, error) {
	day := time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, time.UTC)
	for _, rec := range f.records {
		if rec.StaffID == staffID && rec.WorkDate.Equal(day) {
			return Record{}, ErrInvalidState
		}
	}
	rec := Record{ID: fmt.Sprintf("rec-%d", len(f.records)+1), StaffID: staffID, WorkDate: day, CheckIn: &at, Status: StatusCheckedIn}
	f.records = append(f.records, rec)
	return rec, nil
}

func (f *fakeAttendanceStore) CheckOut(_ context.Context, _, staffID string, at time.Time, auto bool) (Record, error) {
	day := time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, time.UTC)
	for i := range f.records {
		rec := &f.records[i]
		if rec.StaffID == staffID && rec.WorkDate.Equal(day) && rec.Status == StatusCheckedIn {
			rec.CheckOut = &at
			rec.Status = StatusCheckedOut
			if auto {
				rec.Status = StatusAutoCheckout
			}
			rec.TotalHours = at.Sub(*rec.CheckIn).Hours()
			return *rec, nil
		}
	}
	return Record{}, ErrInvalidState
}

func (f *fakeAttendanceStore) RecordsInRange(_ context.Context, _, _ string, _, _ time.Time) ([]Record, error) {
	if f.recordsErr != nil {
		return nil, f.recordsErr
	}
	return f.records, nil
}

func (f *fakeAttendanceStore) OpenRecords(_ context.Context, _ string, day time.Time) ([]Record, error) {
	var out []Record
	for _, rec := range f.records {
		if rec.WorkDate.Equal(day) && rec.Status == StatusCheckedIn {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeAttendanceStore) CreateOvertime(_ context.Context, _ string, req OvertimeRequest) (string, error) {
	f.overtimeSeq++
	req.ID = fmt.Sprintf("ot-%d", f.overtimeSeq)
	f.overtime = append(f.overtime, req)
	return req.ID, nil
}

func (f *fakeAttendanceStore) DecideOvertime(_ context.Context, _, requestID, status, decidedBy string, decidedAt time.Time) error {
	for i := range f.overtime {
		if f.overtime[i].ID != requestID {
			continue
		}
		if f.overtime[i].Status != OvertimePending {
			return ErrConflict
		}
		f.overtime[i].Status = status
		f.overtime[i].DecidedBy = decidedBy
		f.overtime[i].DecidedAt = &decidedAt
		return nil
	}
	return ErrNotFound
}

func (f *fakeAttendanceStore) OvertimeInRange(_ context.Context, _, _ string, _, _ time.Time) ([]OvertimeRequest, error) {
	return f.overtime, nil
}

func (f *fakeAttendanceStore) PendingOvertime(_ context.Context, _ string) ([]OvertimeRequest, error) {
	var out []OvertimeRequest
	for _, req := range f.overtime {
		if req.Status == OvertimePending {
			out = append(out, req)
		}
	}
	return out, nil
}

func (f *fakeAttendanceStore) HolidaysInRange(_ context.Context, _ string, _, _ time.Time) ([]Holiday, error) {
	if f.holidayErr != nil {
		return nil, f.holidayErr
	}
	return f.holidays, nil
}

func (f *fakeAttendanceStore) CreateHoliday(_ context.Context, _ string, day time.Time, name, kind string) (string, error) {
	h := Holiday{ID: fmt.Sprintf("hol-%d", len(f.holidays)+1), Day: day, Name: name, Kind: kind}
	f.holidays = append(f.holidays, h)
	return h.ID, nil
}

func (f *fakeAttendanceStore) DeleteHoliday(_ context.Context, _, holidayID string) error {
	for i, h := range f.holidays {
		if h.ID == holidayID {
			f.holidays = append(f.holidays[:i], f.holidays[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (f *fakeAttendanceStore) ApprovedPaidLeaveOverlapping(_ context.Context, _, _ string, _, _ time.Time) ([]LeaveWindow, error) {
	return f.leaves, nil
}

func newAttendanceService(store *fakeAttendanceStore, now time.Time) *Service {
	svc := NewService(store, 8, 1.5, 12)
	svc.Now = func() time.Time { return now }
	return svc
}

func TestMonthlyStatementAggregates(t *testing.T) {
	// July 2025, viewed on the 31st: 8 weekend days, 1 holiday.
	store := &fakeAttendanceStore{
		profile: StaffProfile{ID: "staff-1", FullName: "Asha Verma", MonthlySalary: 31000},
		holidays: []Holiday{
			{ID: "h1", Day: date(2025, 7, 4), Name: "Founders Day", Kind: CalendarHoliday},
		},
		leaves: []LeaveWindow{
			{StartDate: date(2025, 7, 21), EndDate: date(2025, 7, 22), PaidDays: 2},
		},
	}
	for _, d := range []int{1, 2, 3, 7, 8, 9, 10, 11, 14, 15, 16, 17, 18, 23, 24, 25, 28, 29} {
		store.records = append(store.records, checkedOut("staff-1", date(2025, 7, d), 8))
	}
	store.overtime = []OvertimeRequest{
		{ID: "ot-1", StaffID: "staff-1", WorkDate: date(2025, 7, 8), RequestedHours: 4, Status: OvertimeApproved},
		{ID: "ot-2", StaffID: "staff-1", WorkDate: date(2025, 7, 9), RequestedHours: 9, Status: OvertimePending},
	}

	svc := newAttendanceService(store, time.Date(2025, 7, 31, 18, 0, 0, 0, time.UTC))
	statement, err := svc.MonthlyStatement(context.Background(), "t1", "staff-1")
	if err != nil {
		t.Fatalf("statement failed: %v", err)
	}

	s := statement.Summary
	if s.DaysPresent != 18 {
		t.Fatalf("expected 18 days present, got %d", s.DaysPresent)
	}
	if s.Weekends != 8 {
		t.Fatalf("expected 8 weekend days in July 2025, got %d", s.Weekends)
	}
	if s.PaidHolidays != 1 || s.PaidLeaveDays != 2 {
		t.Fatalf("expected 1 holiday and 2 paid leave days, got %d and %v", s.PaidHolidays, s.PaidLeaveDays)
	}
	if s.PayableDays != 29 {
		t.Fatalf("expected 29 payable days, got %v", s.PayableDays)
	}
	if s.ApprovedOvertimeHours != 4 {
		t.Fatalf("expected 4 approved overtime hours, got %v", s.ApprovedOvertimeHours)
	}

	if statement.Salary.PerDaySalary != 1000 || statement.Salary.EarnedSalary != 29000 {
		t.Fatalf("unexpected salary: %+v", statement.Salary)
	}
	// 4h x (1000/8) x 1.5 = 750.
	if statement.Salary.OvertimePay != 750 || statement.Salary.TotalEarnings != 29750 {
		t.Fatalf("unexpected overtime pay: %+v", statement.Salary)
	}
	if want := 29.0 / 31.0 * 100; statement.ProgressPercent != want {
		t.Fatalf("expected progress %v, got %v", want, statement.ProgressPercent)
	}
}

func TestMonthlyStatementPropagatesLookupErrors(t *testing.T) {
	lookupErr := errors.New("calendar unavailable")
	store := &fakeAttendanceStore{
		profile:    StaffProfile{ID: "staff-1", FullName: "Asha Verma", MonthlySalary: 31000},
		holidayErr: lookupErr,
	}
	svc := newAttendanceService(store, time.Date(2025, 7, 15, 9, 0, 0, 0, time.UTC))

	if _, err := svc.MonthlyStatement(context.Background(), "t1", "staff-1"); !errors.Is(err, lookupErr) {
		t.Fatalf("expected calendar error to propagate, got %v", err)
	}
}

func TestCheckInTwiceSameDay(t *testing.T) {
	store := &fakeAttendanceStore{profile: StaffProfile{ID: "staff-1"}}
	svc := newAttendanceService(store, time.Date(2025, 7, 15, 9, 0, 0, 0, time.UTC))

	if _, err := svc.CheckIn(context.Background(), "t1", "staff-1"); err != nil {
		t.Fatalf("first check-in failed: %v", err)
	}
	if _, err := svc.CheckIn(context.Background(), "t1", "staff-1"); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected invalid state on second check-in, got %v", err)
	}
}

func TestAutoCheckoutClosesOpenRecords(t *testing.T) {
	store := &fakeAttendanceStore{profile: StaffProfile{ID: "staff-1"}}
	svc := newAttendanceService(store, time.Date(2025, 7, 15, 8, 0, 0, 0, time.UTC))

	if _, err := svc.CheckIn(context.Background(), "t1", "staff-1"); err != nil {
		t.Fatalf("check-in failed: %v", err)
	}
	closed, err := svc.AutoCheckout(context.Background(), "t1", date(2025, 7, 15))
	if err != nil {
		t.Fatalf("auto checkout failed: %v", err)
	}
	if closed != 1 {
		t.Fatalf("expected 1 record closed, got %d", closed)
	}
	if store.records[0].Status != StatusAutoCheckout {
		t.Fatalf("expected auto_checkout status, got %s", store.records[0].Status)
	}
	if store.records[0].TotalHours != 12 {
		t.Fatalf("expected 12 credited hours, got %v", store.records[0].TotalHours)
	}
}

func TestOvertimeValidation(t *testing.T) {
	store := &fakeAttendanceStore{profile: StaffProfile{ID: "staff-1"}}
	svc := newAttendanceService(store, time.Date(2025, 7, 15, 9, 0, 0, 0, time.UTC))

	if _, err := svc.RequestOvertime(context.Background(), "t1", "staff-1", date(2025, 7, 15), 0, "deadline"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for zero hours, got %v", err)
	}
	if _, err := svc.RequestOvertime(context.Background(), "t1", "staff-1", date(2025, 7, 15), 2, " "); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for empty reason, got %v", err)
	}

	req, err := svc.RequestOvertime(context.Background(), "t1", "staff-1", date(2025, 7, 15), 2, "report deadline")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if err := svc.DecideOvertime(context.Background(), "t1", req.ID, "maybe", "user-mgr"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for bad decision, got %v", err)
	}
	if err := svc.DecideOvertime(context.Background(), "t1", req.ID, OvertimeApproved, "user-mgr"); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if err := svc.DecideOvertime(context.Background(), "t1", req.ID, OvertimeRejected, "user-mgr"); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict on second decision, got %v", err)
	}
}

func TestCreateCalendarEntryKinds(t *testing.T) {
	store := &fakeAttendanceStore{}
	svc := newAttendanceService(store, time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC))

	if _, err := svc.CreateHoliday(context.Background(), "t1", date(2025, 7, 4), " ", ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for blank name, got %v", err)
	}
	if _, err := svc.CreateHoliday(context.Background(), "t1", date(2025, 7, 4), "Founders Day", "halfday"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for unknown kind, got %v", err)
	}

	if _, err := svc.CreateHoliday(context.Background(), "t1", date(2025, 7, 4), "Founders Day", ""); err != nil {
		t.Fatalf("create with default kind failed: %v", err)
	}
	if store.holidays[0].Kind != CalendarHoliday {
		t.Fatalf("expected empty kind to default to holiday, got %q", store.holidays[0].Kind)
	}

	if _, err := svc.CreateHoliday(context.Background(), "t1", date(2025, 7, 2), "Campus maintenance", CalendarWeekend); err != nil {
		t.Fatalf("create weekend override failed: %v", err)
	}
	if store.holidays[1].Kind != CalendarWeekend {
		t.Fatalf("expected weekend kind stored, got %q", store.holidays[1].Kind)
	}
}

func TestMonthlyStatementWeekendOverride(t *testing.T) {
	// Wednesday 2025-07-02 is declared a weekend day for the tenant; it must
	// count toward weekends, not holidays, in the aggregate.
	store := &fakeAttendanceStore{
		profile: StaffProfile{ID: "staff-1", FullName: "Asha Verma", MonthlySalary: 31000},
		holidays: []Holiday{
			{ID: "h1", Day: date(2025, 7, 2), Name: "Campus maintenance", Kind: CalendarWeekend},
		},
	}
	svc := newAttendanceService(store, time.Date(2025, 7, 7, 18, 0, 0, 0, time.UTC))

	statement, err := svc.MonthlyStatement(context.Background(), "t1", "staff-1")
	if err != nil {
		t.Fatalf("statement failed: %v", err)
	}
	if statement.Summary.Weekends != 3 {
		t.Fatalf("expected 3 weekend days (Jul 2 override, Jul 5, Jul 6), got %d", statement.Summary.Weekends)
	}
	if statement.Summary.PaidHolidays != 0 {
		t.Fatalf("expected no paid holidays, got %d", statement.Summary.PaidHolidays)
	}
}
