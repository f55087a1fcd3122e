package leave

import (
	"fmt"
	"strings"
	"time"
)

// CalculateTotalDays returns the inclusive calendar day count between start and end.
func CalculateTotalDays(start, end time.Time) (float64, error) {
	if end.Before(start) {
		return 0, fmt.Errorf("%w: end date before start date", ErrValidation)
	}
	start = truncateToDay(start)
	end = truncateToDay(end)
	return end.Sub(start).Hours()/24 + 1, nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// NewChain builds the approval chain for a fresh application: the first step is
// pending, every later step waits until the chain reaches it.
func NewChain(approverRoles []string) ([]ApprovalStep, error) {
	if len(approverRoles) == 0 {
		return nil, fmt.Errorf("%w: approval chain requires at least one approver role", ErrValidation)
	}
	steps := make([]ApprovalStep, 0, len(approverRoles))
	for i, role := range approverRoles {
		status := StepWaiting
		if i == 0 {
			status = StepPending
		}
		steps = append(steps, ApprovalStep{Index: i, ApproverRole: role, Status: status})
	}
	return steps, nil
}

// ActiveStep returns the single pending step of the chain, or an error when the
// application is terminal.
func ActiveStep(app Application) (ApprovalStep, error) {
	if app.Status != StatusPending {
		return ApprovalStep{}, ErrInvalidState
	}
	if app.CurrentStep < 0 || app.CurrentStep >= len(app.Chain) {
		return ApprovalStep{}, fmt.Errorf("%w: current step %d out of range", ErrInvalidState, app.CurrentStep)
	}
	step := app.Chain[app.CurrentStep]
	if step.Status != StepPending {
		return ApprovalStep{}, fmt.Errorf("%w: step %d is %s", ErrInvalidState, step.Index, step.Status)
	}
	return step, nil
}

// ValidKnownType reports whether leaveType is one of the supported leave types.
func ValidKnownType(leaveType string) bool {
	for _, t := range LeaveTypes {
		if t == leaveType {
			return true
		}
	}
	return false
}

// BalanceBucket maps a leave type to the balance field it consumes on final
// approval. LOP and "other" leave do not consume a balance.
func BalanceBucket(leaveType string) (string, bool) {
	switch leaveType {
	case TypeSick:
		return "sick_leave", true
	case TypeCasual:
		return "casual_leave", true
	case TypeEarned:
		return "earned_leave", true
	default:
		return "", false
	}
}

// ValidateSubmission checks the fields an applicant controls.
func ValidateSubmission(applicantID, leaveType, reason string, start, end time.Time) error {
	if strings.TrimSpace(applicantID) == "" {
		return fmt.Errorf("%w: applicant id required", ErrValidation)
	}
	if !ValidKnownType(leaveType) {
		return fmt.Errorf("%w: unknown leave type %q", ErrValidation, leaveType)
	}
	if strings.TrimSpace(reason) == "" {
		return fmt.Errorf("%w: reason required", ErrValidation)
	}
	if start.IsZero() || end.IsZero() {
		return fmt.Errorf("%w: start and end dates required", ErrValidation)
	}
	if end.Before(start) {
		return fmt.Errorf("%w: end date before start date", ErrValidation)
	}
	return nil
}
