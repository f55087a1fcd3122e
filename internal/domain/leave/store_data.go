package leave

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

func (s *Store) CreateApplication(ctx context.Context, tenantID string, app Application) (string, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var id string
	if err := tx.QueryRow(ctx, `
    INSERT INTO leave_applications
      (tenant_id, applicant_id, applicant_name, leave_type, start_date, end_date, total_days, reason, status, current_step, applied_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,0,$10)
    RETURNING id
  `, tenantID, app.ApplicantID, app.ApplicantName, app.LeaveType, app.StartDate, app.EndDate, app.TotalDays, app.Reason, StatusPending, app.AppliedAt).Scan(&id); err != nil {
		return "", err
	}

	for _, step := range app.Chain {
		if _, err := tx.Exec(ctx, `
      INSERT INTO leave_application_steps (tenant_id, application_id, step_index, approver_role, status)
      VALUES ($1,$2,$3,$4,$5)
    `, tenantID, id, step.Index, step.ApproverRole, step.Status); err != nil {
			return "", err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) GetApplication(ctx context.Context, tenantID, applicationID string) (Application, error) {
	var app Application
	var rejection *string
	err := s.DB.QueryRow(ctx, `
    SELECT id, applicant_id, applicant_name, leave_type, start_date, end_date, total_days, reason, status, current_step, rejection_reason, applied_at
    FROM leave_applications
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, applicationID).Scan(&app.ID, &app.ApplicantID, &app.ApplicantName, &app.LeaveType, &app.StartDate, &app.EndDate, &app.TotalDays, &app.Reason, &app.Status, &app.CurrentStep, &rejection, &app.AppliedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Application{}, ErrNotFound
	}
	if err != nil {
		return Application{}, err
	}
	if rejection != nil {
		app.RejectionReason = *rejection
	}

	chain, err := s.loadChain(ctx, tenantID, app.ID)
	if err != nil {
		return Application{}, err
	}
	app.Chain = chain
	return app, nil
}

func (s *Store) loadChain(ctx context.Context, tenantID, applicationID string) ([]ApprovalStep, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT step_index, approver_role, COALESCE(approver_name, ''), status, COALESCE(comments, ''), acted_at
    FROM leave_application_steps
    WHERE tenant_id = $1 AND application_id = $2
    ORDER BY step_index
  `, tenantID, applicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chain []ApprovalStep
	for rows.Next() {
		var step ApprovalStep
		if err := rows.Scan(&step.Index, &step.ApproverRole, &step.ApproverName, &step.Status, &step.Comments, &step.ActedAt); err != nil {
			return nil, err
		}
		chain = append(chain, step)
	}
	return chain, rows.Err()
}

func (s *Store) PendingForRole(ctx context.Context, tenantID, role string) ([]Application, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT a.id, a.applicant_id, a.applicant_name, a.leave_type, a.start_date, a.end_date, a.total_days, a.reason, a.status, a.current_step, a.applied_at
    FROM leave_applications a
    JOIN leave_application_steps s
      ON s.tenant_id = a.tenant_id AND s.application_id = a.id AND s.step_index = a.current_step
    WHERE a.tenant_id = $1 AND a.status = $2 AND s.approver_role = $3
    ORDER BY a.applied_at ASC
  `, tenantID, StatusPending, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	apps, err := scanApplications(rows)
	if err != nil {
		return nil, err
	}
	return s.attachChains(ctx, tenantID, apps)
}

func (s *Store) ListForApplicant(ctx context.Context, tenantID, staffID string, limit, offset int) ([]Application, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, applicant_id, applicant_name, leave_type, start_date, end_date, total_days, reason, status, current_step, applied_at
    FROM leave_applications
    WHERE tenant_id = $1 AND applicant_id = $2
    ORDER BY applied_at DESC
    LIMIT $3 OFFSET $4
  `, tenantID, staffID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	apps, err := scanApplications(rows)
	if err != nil {
		return nil, err
	}
	return s.attachChains(ctx, tenantID, apps)
}

func scanApplications(rows pgx.Rows) ([]Application, error) {
	var apps []Application
	for rows.Next() {
		var app Application
		if err := rows.Scan(&app.ID, &app.ApplicantID, &app.ApplicantName, &app.LeaveType, &app.StartDate, &app.EndDate, &app.TotalDays, &app.Reason, &app.Status, &app.CurrentStep, &app.AppliedAt); err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

func (s *Store) attachChains(ctx context.Context, tenantID string, apps []Application) ([]Application, error) {
	for i := range apps {
		chain, err := s.loadChain(ctx, tenantID, apps[i].ID)
		if err != nil {
			return nil, err
		}
		apps[i].Chain = chain
	}
	return apps, nil
}

func (s *Store) ApproveStep(ctx context.Context, tenantID, applicationID string, stepIndex int, isLast bool, approverName, comments string, actedAt time.Time, deduction *Deduction) error {
	defer s.observe("leave_approve_step", time.Now())

	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var tag string
	if isLast {
		tag = `
      UPDATE leave_applications
      SET status = 'approved'
      WHERE tenant_id = $1 AND id = $2 AND status = 'pending' AND current_step = $3
    `
	} else {
		tag = `
      UPDATE leave_applications
      SET current_step = current_step + 1
      WHERE tenant_id = $1 AND id = $2 AND status = 'pending' AND current_step = $3
    `
	}
	result, err := tx.Exec(ctx, tag, tenantID, applicationID, stepIndex)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return s.conditionalFailure(ctx, tenantID, applicationID)
	}

	if _, err := tx.Exec(ctx, `
    UPDATE leave_application_steps
    SET status = 'approved', approver_name = $1, comments = $2, acted_at = $3
    WHERE tenant_id = $4 AND application_id = $5 AND step_index = $6
  `, approverName, comments, actedAt, tenantID, applicationID, stepIndex); err != nil {
		return err
	}

	if !isLast {
		if _, err := tx.Exec(ctx, `
      UPDATE leave_application_steps
      SET status = 'pending'
      WHERE tenant_id = $1 AND application_id = $2 AND step_index = $3
    `, tenantID, applicationID, stepIndex+1); err != nil {
			return err
		}
	}

	if isLast && deduction != nil {
		if err := applyBalanceDelta(ctx, tx, tenantID, deduction.StaffID, deduction.Year, deduction.Bucket, -deduction.Days); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (s *Store) RejectStep(ctx context.Context, tenantID, applicationID string, stepIndex int, approverName, reason string, actedAt time.Time) error {
	defer s.observe("leave_reject_step", time.Now())

	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	result, err := tx.Exec(ctx, `
    UPDATE leave_applications
    SET status = 'rejected', rejection_reason = $4
    WHERE tenant_id = $1 AND id = $2 AND status = 'pending' AND current_step = $3
  `, tenantID, applicationID, stepIndex, reason)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return s.conditionalFailure(ctx, tenantID, applicationID)
	}

	if _, err := tx.Exec(ctx, `
    UPDATE leave_application_steps
    SET status = 'rejected', approver_name = $1, comments = $2, acted_at = $3
    WHERE tenant_id = $4 AND application_id = $5 AND step_index = $6
  `, approverName, reason, actedAt, tenantID, applicationID, stepIndex); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *Store) CancelApplication(ctx context.Context, tenantID, applicationID, applicantID string) error {
	defer s.observe("leave_cancel", time.Now())

	result, err := s.DB.Exec(ctx, `
    UPDATE leave_applications
    SET status = 'cancelled'
    WHERE tenant_id = $1 AND id = $2 AND applicant_id = $3 AND status = 'pending' AND current_step = 0
  `, tenantID, applicationID, applicantID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return s.conditionalFailure(ctx, tenantID, applicationID)
	}
	return nil
}

// conditionalFailure distinguishes a missing application from a lost race on a
// zero-row conditional update.
func (s *Store) conditionalFailure(ctx context.Context, tenantID, applicationID string) error {
	var count int
	if err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM leave_applications WHERE tenant_id = $1 AND id = $2
  `, tenantID, applicationID).Scan(&count); err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return ErrConflict
}

func (s *Store) BalanceFor(ctx context.Context, tenantID, staffID string, year int) (Balance, error) {
	var b Balance
	err := s.DB.QueryRow(ctx, `
    SELECT id, staff_id, year, sick_leave, casual_leave, earned_leave, updated_at
    FROM leave_balances
    WHERE tenant_id = $1 AND staff_id = $2 AND year = $3
  `, tenantID, staffID, year).Scan(&b.ID, &b.StaffID, &b.Year, &b.SickLeave, &b.CasualLeave, &b.EarnedLeave, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Balance{StaffID: staffID, Year: year}, nil
	}
	if err != nil {
		return Balance{}, err
	}
	return b, nil
}

// applyBalanceDelta upserts a signed day delta into one balance bucket. It
// takes the caller's transaction so approval and debit commit together.
func applyBalanceDelta(ctx context.Context, tx pgx.Tx, tenantID, staffID string, year int, bucket string, delta float64) error {
	if _, ok := validBuckets[bucket]; !ok {
		return fmt.Errorf("%w: unknown balance bucket %q", ErrValidation, bucket)
	}
	query := fmt.Sprintf(`
    INSERT INTO leave_balances (tenant_id, staff_id, year, %[1]s)
    VALUES ($1,$2,$3,$4)
    ON CONFLICT (tenant_id, staff_id, year)
    DO UPDATE SET %[1]s = leave_balances.%[1]s + EXCLUDED.%[1]s, updated_at = now()
  `, bucket)
	_, err := tx.Exec(ctx, query, tenantID, staffID, year, delta)
	return err
}

func (s *Store) AdjustBalance(ctx context.Context, tenantID, staffID, leaveType, reason, createdBy string, year int, amount float64) error {
	bucket, ok := BalanceBucket(leaveType)
	if !ok {
		return fmt.Errorf("%w: leave type %q has no balance bucket", ErrValidation, leaveType)
	}

	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := applyBalanceDelta(ctx, tx, tenantID, staffID, year, bucket, amount); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
    INSERT INTO leave_balance_adjustments (tenant_id, staff_id, leave_type, amount, reason, created_by)
    VALUES ($1,$2,$3,$4,$5,$6)
  `, tenantID, staffID, leaveType, amount, reason, createdBy); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

var validBuckets = map[string]bool{
	"sick_leave":   true,
	"casual_leave": true,
	"earned_leave": true,
}

func (s *Store) ListAdjustments(ctx context.Context, tenantID, staffID string) ([]BalanceAdjustment, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, staff_id, leave_type, amount, reason, created_by, created_at
    FROM leave_balance_adjustments
    WHERE tenant_id = $1 AND staff_id = $2
    ORDER BY created_at DESC
  `, tenantID, staffID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BalanceAdjustment
	for rows.Next() {
		var adj BalanceAdjustment
		if err := rows.Scan(&adj.ID, &adj.StaffID, &adj.LeaveType, &adj.Amount, &adj.Reason, &adj.CreatedBy, &adj.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, adj)
	}
	return out, rows.Err()
}

func (s *Store) ChainRoles(ctx context.Context, tenantID string) ([]string, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT role_name
    FROM approval_chain_roles
    WHERE tenant_id = $1
    ORDER BY step_index
  `, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []string
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func (s *Store) UserIDsByRole(ctx context.Context, tenantID, role string) ([]string, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT u.id
    FROM users u
    JOIN roles r ON u.role_id = r.id
    WHERE u.tenant_id = $1 AND r.name = $2
  `, tenantID, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) UserIDForStaff(ctx context.Context, tenantID, staffID string) (string, error) {
	var userID string
	err := s.DB.QueryRow(ctx, `
    SELECT user_id FROM staff WHERE tenant_id = $1 AND id = $2
  `, tenantID, staffID).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return userID, nil
}
