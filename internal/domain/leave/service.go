package leave

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

const (
	EventSubmitted = "leave_submitted"
	EventApproved  = "leave_approved"
	EventRejected  = "leave_rejected"
	EventCancelled = "leave_cancelled"
	EventAwaiting  = "leave_awaiting_approval"
)

// Notifier delivers fire-and-forget notifications. Failures are logged, never
// surfaced to the caller of an approval operation.
type Notifier interface {
	Notify(ctx context.Context, tenantID, recipientID, eventType, title, message, deepLink string, metadata map[string]any) error
}

type Service struct {
	Store  StoreAPI
	Notify Notifier
	Now    func() time.Time
}

func NewService(store StoreAPI, notifier Notifier) *Service {
	return &Service{Store: store, Notify: notifier, Now: time.Now}
}

type Submission struct {
	ApplicantID   string
	ApplicantName string
	LeaveType     string
	StartDate     time.Time
	EndDate       time.Time
	Reason        string
}

func (s *Service) Submit(ctx context.Context, tenantID string, sub Submission) (Application, error) {
	if err := ValidateSubmission(sub.ApplicantID, sub.LeaveType, sub.Reason, sub.StartDate, sub.EndDate); err != nil {
		return Application{}, err
	}

	totalDays, err := CalculateTotalDays(sub.StartDate, sub.EndDate)
	if err != nil {
		return Application{}, err
	}
	if totalDays <= 0 {
		return Application{}, fmt.Errorf("%w: non-positive day count", ErrValidation)
	}

	roles, err := s.Store.ChainRoles(ctx, tenantID)
	if err != nil {
		return Application{}, err
	}
	chain, err := NewChain(roles)
	if err != nil {
		return Application{}, err
	}

	app := Application{
		ApplicantID:   sub.ApplicantID,
		ApplicantName: sub.ApplicantName,
		LeaveType:     sub.LeaveType,
		StartDate:     sub.StartDate,
		EndDate:       sub.EndDate,
		TotalDays:     totalDays,
		Reason:        sub.Reason,
		Status:        StatusPending,
		Chain:         chain,
		AppliedAt:     s.Now(),
	}

	id, err := s.Store.CreateApplication(ctx, tenantID, app)
	if err != nil {
		return Application{}, err
	}
	app.ID = id

	s.notifyRole(ctx, tenantID, chain[0].ApproverRole, EventSubmitted,
		"Leave application submitted",
		fmt.Sprintf("%s applied for %s leave (%v days).", app.ApplicantName, app.LeaveType, app.TotalDays),
		app.ID)

	return app, nil
}

func (s *Service) Approve(ctx context.Context, tenantID, applicationID, actorRole, actorName, comments string) (Application, error) {
	app, err := s.Store.GetApplication(ctx, tenantID, applicationID)
	if err != nil {
		return Application{}, err
	}

	step, err := ActiveStep(app)
	if err != nil {
		return Application{}, err
	}
	if step.ApproverRole != actorRole {
		return Application{}, fmt.Errorf("%w: step %d expects role %s", ErrNotAuthorized, step.Index, step.ApproverRole)
	}

	isLast := app.CurrentStep == len(app.Chain)-1

	// The balance debit rides in the approval transaction: either the
	// application flips to approved and the bucket is decremented, or neither
	// happens. LOP has no bucket and deducts nothing.
	var deduction *Deduction
	if isLast {
		if bucket, ok := BalanceBucket(app.LeaveType); ok {
			deduction = &Deduction{
				StaffID: app.ApplicantID,
				Year:    app.StartDate.Year(),
				Bucket:  bucket,
				Days:    app.TotalDays,
			}
		}
	}

	if err := s.Store.ApproveStep(ctx, tenantID, applicationID, app.CurrentStep, isLast, actorName, comments, s.Now(), deduction); err != nil {
		return Application{}, err
	}

	if isLast {
		s.notifyApplicant(ctx, tenantID, app, EventApproved,
			"Leave approved",
			fmt.Sprintf("Your %s leave from %s to %s was approved.", app.LeaveType, app.StartDate.Format("2006-01-02"), app.EndDate.Format("2006-01-02")))
	} else {
		nextRole := app.Chain[app.CurrentStep+1].ApproverRole
		s.notifyRole(ctx, tenantID, nextRole, EventAwaiting,
			"Leave application awaiting approval",
			fmt.Sprintf("%s's %s leave application needs your decision.", app.ApplicantName, app.LeaveType),
			app.ID)
	}

	return s.Store.GetApplication(ctx, tenantID, applicationID)
}

func (s *Service) Reject(ctx context.Context, tenantID, applicationID, actorRole, actorName, reason string) (Application, error) {
	if strings.TrimSpace(reason) == "" {
		return Application{}, fmt.Errorf("%w: rejection reason required", ErrValidation)
	}

	app, err := s.Store.GetApplication(ctx, tenantID, applicationID)
	if err != nil {
		return Application{}, err
	}

	step, err := ActiveStep(app)
	if err != nil {
		return Application{}, err
	}
	if step.ApproverRole != actorRole {
		return Application{}, fmt.Errorf("%w: step %d expects role %s", ErrNotAuthorized, step.Index, step.ApproverRole)
	}

	if err := s.Store.RejectStep(ctx, tenantID, applicationID, app.CurrentStep, actorName, reason, s.Now()); err != nil {
		return Application{}, err
	}

	s.notifyApplicant(ctx, tenantID, app, EventRejected,
		"Leave rejected",
		fmt.Sprintf("Your %s leave application was rejected: %s", app.LeaveType, reason))

	return s.Store.GetApplication(ctx, tenantID, applicationID)
}

func (s *Service) Cancel(ctx context.Context, tenantID, applicationID, requesterStaffID string) error {
	app, err := s.Store.GetApplication(ctx, tenantID, applicationID)
	if err != nil {
		return err
	}
	if app.ApplicantID != requesterStaffID {
		return fmt.Errorf("%w: only the applicant may cancel", ErrNotAuthorized)
	}
	if app.Status != StatusPending || app.CurrentStep != 0 {
		return fmt.Errorf("%w: only pristine pending applications are cancellable", ErrInvalidState)
	}

	if err := s.Store.CancelApplication(ctx, tenantID, applicationID, requesterStaffID); err != nil {
		return err
	}

	s.notifyApplicant(ctx, tenantID, app, EventCancelled,
		"Leave cancelled",
		fmt.Sprintf("Your %s leave application was cancelled.", app.LeaveType))
	return nil
}

// PendingApplicationsFor lists applications whose active step awaits the given
// role, oldest first.
func (s *Service) PendingApplicationsFor(ctx context.Context, tenantID, role string) ([]Application, error) {
	return s.Store.PendingForRole(ctx, tenantID, role)
}

func (s *Service) Get(ctx context.Context, tenantID, applicationID string) (Application, error) {
	return s.Store.GetApplication(ctx, tenantID, applicationID)
}

func (s *Service) ApplicationsFor(ctx context.Context, tenantID, staffID string, limit, offset int) ([]Application, error) {
	return s.Store.ListForApplicant(ctx, tenantID, staffID, limit, offset)
}

func (s *Service) Balance(ctx context.Context, tenantID, staffID string, year int) (Balance, error) {
	return s.Store.BalanceFor(ctx, tenantID, staffID, year)
}

func (s *Service) AdjustBalance(ctx context.Context, tenantID, staffID, leaveType, reason, createdBy string, year int, amount float64) error {
	if strings.TrimSpace(reason) == "" {
		return fmt.Errorf("%w: adjustment reason required", ErrValidation)
	}
	return s.Store.AdjustBalance(ctx, tenantID, staffID, leaveType, reason, createdBy, year, amount)
}

func (s *Service) Adjustments(ctx context.Context, tenantID, staffID string) ([]BalanceAdjustment, error) {
	return s.Store.ListAdjustments(ctx, tenantID, staffID)
}

func (s *Service) notifyRole(ctx context.Context, tenantID, role, eventType, title, message, applicationID string) {
	if s.Notify == nil {
		return
	}
	userIDs, err := s.Store.UserIDsByRole(ctx, tenantID, role)
	if err != nil {
		slog.Warn("leave approver lookup failed", "role", role, "err", err)
		return
	}
	for _, userID := range userIDs {
		if err := s.Notify.Notify(ctx, tenantID, userID, eventType, title, message, "/leave/applications/"+applicationID, map[string]any{"applicationId": applicationID}); err != nil {
			slog.Warn("leave notification failed", "event", eventType, "err", err)
		}
	}
}

func (s *Service) notifyApplicant(ctx context.Context, tenantID string, app Application, eventType, title, message string) {
	if s.Notify == nil {
		return
	}
	userID, err := s.Store.UserIDForStaff(ctx, tenantID, app.ApplicantID)
	if err != nil {
		slog.Warn("leave applicant lookup failed", "staffId", app.ApplicantID, "err", err)
		return
	}
	if userID == "" {
		return
	}
	if err := s.Notify.Notify(ctx, tenantID, userID, eventType, title, message, "/leave/applications/"+app.ID, map[string]any{"applicationId": app.ID}); err != nil {
		slog.Warn("leave notification failed", "event", eventType, "err", err)
	}
}
