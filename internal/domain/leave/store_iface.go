package leave

import (
	"context"
	"time"
)

// Deduction is the balance debit applied alongside a final approval.
type Deduction struct {
	StaffID string
	Year    int
	Bucket  string
	Days    float64
}

// StoreAPI is the persistence contract for the approval chain engine. The
// mutating chain operations are conditional updates keyed on the application's
// current status and active step index, so two approvers racing on the same
// application cannot both advance it.
type StoreAPI interface {
	CreateApplication(ctx context.Context, tenantID string, app Application) (string, error)
	GetApplication(ctx context.Context, tenantID, applicationID string) (Application, error)
	PendingForRole(ctx context.Context, tenantID, role string) ([]Application, error)
	ListForApplicant(ctx context.Context, tenantID, staffID string, limit, offset int) ([]Application, error)

	// ApproveStep marks step stepIndex approved and either activates the next
	// step or, when isLast, sets the application approved. The update is
	// conditional on status=pending and current_step=stepIndex. A non-nil
	// deduction is applied in the same transaction as the final approval, so
	// the application can never end up approved without its balance debit.
	ApproveStep(ctx context.Context, tenantID, applicationID string, stepIndex int, isLast bool, approverName, comments string, actedAt time.Time, deduction *Deduction) error

	// RejectStep terminates the application with the given reason. Conditional
	// on status=pending and current_step=stepIndex; later steps stay waiting.
	RejectStep(ctx context.Context, tenantID, applicationID string, stepIndex int, approverName, reason string, actedAt time.Time) error

	// CancelApplication cancels a pristine application. Conditional on
	// status=pending, current_step=0 and the requester being the applicant.
	CancelApplication(ctx context.Context, tenantID, applicationID, applicantID string) error

	BalanceFor(ctx context.Context, tenantID, staffID string, year int) (Balance, error)
	AdjustBalance(ctx context.Context, tenantID, staffID, leaveType, reason, createdBy string, year int, amount float64) error
	ListAdjustments(ctx context.Context, tenantID, staffID string) ([]BalanceAdjustment, error)

	ChainRoles(ctx context.Context, tenantID string) ([]string, error)
	UserIDsByRole(ctx context.Context, tenantID, role string) ([]string, error)
	UserIDForStaff(ctx context.Context, tenantID, staffID string) (string, error)
}
