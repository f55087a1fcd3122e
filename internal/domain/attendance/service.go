package attendance

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type Service struct {
	Store              StoreAPI
	NormalWorkingHours float64
	OvertimeMultiplier float64
	AutoCheckoutHours  float64
	Now                func() time.Time
}

func NewService(store StoreAPI, normalWorkingHours, overtimeMultiplier, autoCheckoutHours float64) *Service {
	return &Service{
		Store:              store,
		NormalWorkingHours: normalWorkingHours,
		OvertimeMultiplier: overtimeMultiplier,
		AutoCheckoutHours:  autoCheckoutHours,
		Now:                time.Now,
	}
}

func (s *Service) CheckIn(ctx context.Context, tenantID, staffID string) (Record, error) {
	return s.Store.CheckIn(ctx, tenantID, staffID, s.Now())
}

func (s *Service) CheckOut(ctx context.Context, tenantID, staffID string) (Record, error) {
	return s.Store.CheckOut(ctx, tenantID, staffID, s.Now(), false)
}

// AutoCheckout closes every record still open on the given date, crediting the
// configured auto-checkout span. Invoked on demand by an admin, not a worker.
func (s *Service) AutoCheckout(ctx context.Context, tenantID string, workDate time.Time) (int, error) {
	open, err := s.Store.OpenRecords(ctx, tenantID, workDate)
	if err != nil {
		return 0, err
	}
	closed := 0
	for _, rec := range open {
		if rec.CheckIn == nil {
			continue
		}
		at := rec.CheckIn.Add(time.Duration(s.AutoCheckoutHours * float64(time.Hour)))
		if _, err := s.Store.CheckOut(ctx, tenantID, rec.StaffID, at, true); err != nil {
			return closed, err
		}
		closed++
	}
	return closed, nil
}

func (s *Service) RequestOvertime(ctx context.Context, tenantID, staffID string, workDate time.Time, hours float64, reason string) (OvertimeRequest, error) {
	if hours <= 0 {
		return OvertimeRequest{}, fmt.Errorf("%w: requested hours must be positive", ErrValidation)
	}
	if strings.TrimSpace(reason) == "" {
		return OvertimeRequest{}, fmt.Errorf("%w: reason required", ErrValidation)
	}
	req := OvertimeRequest{StaffID: staffID, WorkDate: workDate, RequestedHours: hours, Reason: reason, Status: OvertimePending}
	id, err := s.Store.CreateOvertime(ctx, tenantID, req)
	if err != nil {
		return OvertimeRequest{}, err
	}
	req.ID = id
	return req, nil
}

func (s *Service) DecideOvertime(ctx context.Context, tenantID, requestID, decision, decidedBy string) error {
	if decision != OvertimeApproved && decision != OvertimeRejected {
		return fmt.Errorf("%w: decision must be approved or rejected", ErrValidation)
	}
	return s.Store.DecideOvertime(ctx, tenantID, requestID, decision, decidedBy, s.Now())
}

func (s *Service) PendingOvertime(ctx context.Context, tenantID string) ([]OvertimeRequest, error) {
	return s.Store.PendingOvertime(ctx, tenantID)
}

func (s *Service) Records(ctx context.Context, tenantID, staffID string, start, end time.Time) ([]Record, error) {
	return s.Store.RecordsInRange(ctx, tenantID, staffID, start, end)
}

func (s *Service) Holidays(ctx context.Context, tenantID string, start, end time.Time) ([]Holiday, error) {
	return s.Store.HolidaysInRange(ctx, tenantID, start, end)
}

func (s *Service) CreateHoliday(ctx context.Context, tenantID string, day time.Time, name, kind string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("%w: calendar entry name required", ErrValidation)
	}
	if kind == "" {
		kind = CalendarHoliday
	}
	if kind != CalendarHoliday && kind != CalendarWeekend {
		return "", fmt.Errorf("%w: calendar kind must be %q or %q", ErrValidation, CalendarHoliday, CalendarWeekend)
	}
	return s.Store.CreateHoliday(ctx, tenantID, day, name, kind)
}

func (s *Service) DeleteHoliday(ctx context.Context, tenantID, holidayID string) error {
	return s.Store.DeleteHoliday(ctx, tenantID, holidayID)
}

// MonthlyStatement aggregates the staff member's current month up to today and
// derives the salary figures from payable days. Lookup failures propagate to
// the caller; a partial aggregate is never returned as zeros.
func (s *Service) MonthlyStatement(ctx context.Context, tenantID, staffID string) (MonthlyStatement, error) {
	now := s.Now()
	start, end := ClipWindow(now)

	profile, err := s.Store.StaffProfile(ctx, tenantID, staffID)
	if err != nil {
		return MonthlyStatement{}, err
	}

	records, err := s.Store.RecordsInRange(ctx, tenantID, staffID, start, end)
	if err != nil {
		return MonthlyStatement{}, fmt.Errorf("attendance lookup: %w", err)
	}
	overtime, err := s.Store.OvertimeInRange(ctx, tenantID, staffID, start, end)
	if err != nil {
		return MonthlyStatement{}, fmt.Errorf("overtime lookup: %w", err)
	}
	holidayRows, err := s.Store.HolidaysInRange(ctx, tenantID, start, end)
	if err != nil {
		return MonthlyStatement{}, fmt.Errorf("calendar lookup: %w", err)
	}
	leaves, err := s.Store.ApprovedPaidLeaveOverlapping(ctx, tenantID, staffID, start, end)
	if err != nil {
		return MonthlyStatement{}, fmt.Errorf("leave lookup: %w", err)
	}

	calendar := make(map[string]string, len(holidayRows))
	for _, h := range holidayRows {
		calendar[dayKey(h.Day)] = h.Kind
	}

	summary := Summarize(start, end, records, overtime, calendar, DefaultWeekend, leaves)
	salary := CalculateSalary(profile.MonthlySalary, DaysInMonth(now), summary, s.NormalWorkingHours, s.OvertimeMultiplier)

	return MonthlyStatement{
		StaffID:         profile.ID,
		StaffName:       profile.FullName,
		PeriodStart:     start,
		PeriodEnd:       end,
		Summary:         summary,
		Salary:          salary,
		ProgressPercent: ProgressPercent(summary.PayableDays, now.Day()),
	}, nil
}
