package leave

import "time"

const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"

	// Step statuses. Only the active step is "pending"; steps after it are
	// "waiting" until the chain reaches them.
	StepWaiting  = "waiting"
	StepPending  = "pending"
	StepApproved = "approved"
	StepRejected = "rejected"

	TypeSick   = "sick"
	TypeCasual = "casual"
	TypeEarned = "earned"
	TypeLOP    = "lop"
	TypeOther  = "other"
)

var LeaveTypes = []string{TypeSick, TypeCasual, TypeEarned, TypeLOP, TypeOther}

type ApprovalStep struct {
	Index        int        `json:"index"`
	ApproverRole string     `json:"approverRole"`
	ApproverName string     `json:"approverName,omitempty"`
	Status       string     `json:"status"`
	Comments     string     `json:"comments,omitempty"`
	ActedAt      *time.Time `json:"actedAt,omitempty"`
}

type Application struct {
	ID              string         `json:"id"`
	ApplicantID     string         `json:"applicantId"`
	ApplicantName   string         `json:"applicantName"`
	LeaveType       string         `json:"leaveType"`
	StartDate       time.Time      `json:"startDate"`
	EndDate         time.Time      `json:"endDate"`
	TotalDays       float64        `json:"totalDays"`
	Reason          string         `json:"reason"`
	Status          string         `json:"status"`
	CurrentStep     int            `json:"currentStep"`
	RejectionReason string         `json:"rejectionReason,omitempty"`
	Chain           []ApprovalStep `json:"approvalChain"`
	AppliedAt       time.Time      `json:"appliedAt"`
}

// PaidDays is the day count a final approval contributes to payable days.
// LOP leave is unpaid and contributes nothing.
func (a Application) PaidDays() float64 {
	if a.LeaveType == TypeLOP {
		return 0
	}
	return a.TotalDays
}

type Balance struct {
	ID          string    `json:"id"`
	StaffID     string    `json:"staffId"`
	Year        int       `json:"year"`
	SickLeave   float64   `json:"sickLeave"`
	CasualLeave float64   `json:"casualLeave"`
	EarnedLeave float64   `json:"earnedLeave"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type BalanceAdjustment struct {
	ID        string    `json:"id"`
	StaffID   string    `json:"staffId"`
	LeaveType string    `json:"leaveType"`
	Amount    float64   `json:"amount"`
	Reason    string    `json:"reason"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}
