package attendance

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

func (s *Store) StaffProfile(ctx context.Context, tenantID, staffID string) (StaffProfile, error) {
	var p StaffProfile
	err := s.DB.QueryRow(ctx, `
    SELECT id, full_name, monthly_salary
    FROM staff
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, staffID).Scan(&p.ID, &p.FullName, &p.MonthlySalary)
	if errors.Is(err, pgx.ErrNoRows) {
		return StaffProfile{}, ErrNotFound
	}
	if err != nil {
		return StaffProfile{}, err
	}
	return p, nil
}

func (s *Store) CheckIn(ctx context.Context, tenantID, staffID string, at time.Time) (Record, error) {
	defer s.observe("attendance_check_in", time.Now())

	workDate := time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, time.UTC)

	// The unique (tenant, staff, work_date) index arbitrates concurrent
	// check-ins: the loser gets no row back instead of a duplicate.
	rec := Record{StaffID: staffID, WorkDate: workDate, CheckIn: &at, Status: StatusCheckedIn}
	err := s.DB.QueryRow(ctx, `
    INSERT INTO staff_attendance (tenant_id, staff_id, work_date, check_in, status, total_hours)
    VALUES ($1,$2,$3,$4,$5,0)
    ON CONFLICT (tenant_id, staff_id, work_date) DO NOTHING
    RETURNING id
  `, tenantID, staffID, workDate, at, StatusCheckedIn).Scan(&rec.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrInvalidState
	}
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (s *Store) CheckOut(ctx context.Context, tenantID, staffID string, at time.Time, auto bool) (Record, error) {
	defer s.observe("attendance_check_out", time.Now())

	workDate := time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, time.UTC)
	status := StatusCheckedOut
	if auto {
		status = StatusAutoCheckout
	}

	var rec Record
	err := s.DB.QueryRow(ctx, `
    UPDATE staff_attendance
    SET check_out = $1,
        status = $2,
        total_hours = EXTRACT(EPOCH FROM ($1 - check_in)) / 3600.0
    WHERE tenant_id = $3 AND staff_id = $4 AND work_date = $5 AND status = 'checked_in'
    RETURNING id, staff_id, work_date, check_in, check_out, status, total_hours
  `, at, status, tenantID, staffID, workDate).Scan(&rec.ID, &rec.StaffID, &rec.WorkDate, &rec.CheckIn, &rec.CheckOut, &rec.Status, &rec.TotalHours)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrInvalidState
	}
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (s *Store) RecordsInRange(ctx context.Context, tenantID, staffID string, start, end time.Time) ([]Record, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, staff_id, work_date, check_in, check_out, status, total_hours
    FROM staff_attendance
    WHERE tenant_id = $1 AND staff_id = $2 AND work_date BETWEEN $3 AND $4
    ORDER BY work_date
  `, tenantID, staffID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.StaffID, &rec.WorkDate, &rec.CheckIn, &rec.CheckOut, &rec.Status, &rec.TotalHours); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) OpenRecords(ctx context.Context, tenantID string, workDate time.Time) ([]Record, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, staff_id, work_date, check_in, check_out, status, total_hours
    FROM staff_attendance
    WHERE tenant_id = $1 AND work_date = $2 AND status = 'checked_in'
  `, tenantID, workDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.StaffID, &rec.WorkDate, &rec.CheckIn, &rec.CheckOut, &rec.Status, &rec.TotalHours); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) CreateOvertime(ctx context.Context, tenantID string, req OvertimeRequest) (string, error) {
	var id string
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO overtime_requests (tenant_id, staff_id, work_date, requested_hours, reason, status)
    VALUES ($1,$2,$3,$4,$5,$6)
    RETURNING id
  `, tenantID, req.StaffID, req.WorkDate, req.RequestedHours, req.Reason, OvertimePending).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) DecideOvertime(ctx context.Context, tenantID, requestID, status, decidedBy string, decidedAt time.Time) error {
	defer s.observe("overtime_decide", time.Now())

	result, err := s.DB.Exec(ctx, `
    UPDATE overtime_requests
    SET status = $1, decided_by = $2, decided_at = $3
    WHERE tenant_id = $4 AND id = $5 AND status = 'pending'
  `, status, decidedBy, decidedAt, tenantID, requestID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		var count int
		if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM overtime_requests WHERE tenant_id = $1 AND id = $2", tenantID, requestID).Scan(&count); err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrConflict
	}
	return nil
}

func (s *Store) OvertimeInRange(ctx context.Context, tenantID, staffID string, start, end time.Time) ([]OvertimeRequest, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, staff_id, work_date, requested_hours, reason, status, COALESCE(decided_by, ''), decided_at, created_at
    FROM overtime_requests
    WHERE tenant_id = $1 AND staff_id = $2 AND work_date BETWEEN $3 AND $4
    ORDER BY work_date
  `, tenantID, staffID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOvertime(rows)
}

func (s *Store) PendingOvertime(ctx context.Context, tenantID string) ([]OvertimeRequest, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, staff_id, work_date, requested_hours, reason, status, COALESCE(decided_by, ''), decided_at, created_at
    FROM overtime_requests
    WHERE tenant_id = $1 AND status = 'pending'
    ORDER BY created_at ASC
  `, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOvertime(rows)
}

func scanOvertime(rows pgx.Rows) ([]OvertimeRequest, error) {
	var out []OvertimeRequest
	for rows.Next() {
		var req OvertimeRequest
		if err := rows.Scan(&req.ID, &req.StaffID, &req.WorkDate, &req.RequestedHours, &req.Reason, &req.Status, &req.DecidedBy, &req.DecidedAt, &req.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

func (s *Store) HolidaysInRange(ctx context.Context, tenantID string, start, end time.Time) ([]Holiday, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, day, name, kind
    FROM company_calendar_days
    WHERE tenant_id = $1 AND day BETWEEN $2 AND $3
    ORDER BY day
  `, tenantID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Holiday
	for rows.Next() {
		var h Holiday
		if err := rows.Scan(&h.ID, &h.Day, &h.Name, &h.Kind); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (s *Store) CreateHoliday(ctx context.Context, tenantID string, day time.Time, name, kind string) (string, error) {
	var id string
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO company_calendar_days (tenant_id, day, name, kind)
    VALUES ($1,$2,$3,$4)
    RETURNING id
  `, tenantID, day, name, kind).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) DeleteHoliday(ctx context.Context, tenantID, holidayID string) error {
	_, err := s.DB.Exec(ctx, "DELETE FROM company_calendar_days WHERE tenant_id = $1 AND id = $2", tenantID, holidayID)
	return err
}

func (s *Store) ApprovedPaidLeaveOverlapping(ctx context.Context, tenantID, staffID string, start, end time.Time) ([]LeaveWindow, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT start_date, end_date, total_days
    FROM leave_applications
    WHERE tenant_id = $1 AND applicant_id = $2 AND status = 'approved'
      AND leave_type <> 'lop'
      AND start_date <= $4 AND end_date >= $3
  `, tenantID, staffID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LeaveWindow
	for rows.Next() {
		var lw LeaveWindow
		if err := rows.Scan(&lw.StartDate, &lw.EndDate, &lw.PaidDays); err != nil {
			return nil, err
		}
		out = append(out, lw)
	}
	return out, rows.Err()
}
