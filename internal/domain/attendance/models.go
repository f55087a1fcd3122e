package attendance

import "time"

const (
	StatusCheckedIn    = "checked_in"
	StatusCheckedOut   = "checked_out"
	StatusAutoCheckout = "auto_checkout"

	OvertimePending  = "pending"
	OvertimeApproved = "approved"
	OvertimeRejected = "rejected"

	// Calendar entry kinds. A weekend entry reclassifies a weekday as a
	// non-working weekend day for that tenant.
	CalendarHoliday = "holiday"
	CalendarWeekend = "weekend"
)

type Record struct {
	ID         string     `json:"id"`
	StaffID    string     `json:"staffId"`
	WorkDate   time.Time  `json:"workDate"`
	CheckIn    *time.Time `json:"checkIn,omitempty"`
	CheckOut   *time.Time `json:"checkOut,omitempty"`
	Status     string     `json:"status"`
	TotalHours float64    `json:"totalHours"`
}

type OvertimeRequest struct {
	ID             string     `json:"id"`
	StaffID        string     `json:"staffId"`
	WorkDate       time.Time  `json:"workDate"`
	RequestedHours float64    `json:"requestedHours"`
	Reason         string     `json:"reason"`
	Status         string     `json:"status"`
	DecidedBy      string     `json:"decidedBy,omitempty"`
	DecidedAt      *time.Time `json:"decidedAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

type Holiday struct {
	ID   string    `json:"id"`
	Day  time.Time `json:"day"`
	Name string    `json:"name"`
	Kind string    `json:"kind"`
}

// LeaveWindow is an approved, paid leave span feeding the aggregator.
type LeaveWindow struct {
	StartDate time.Time
	EndDate   time.Time
	PaidDays  float64
}

type StaffProfile struct {
	ID            string  `json:"id"`
	FullName      string  `json:"fullName"`
	MonthlySalary float64 `json:"monthlySalary"`
}

type Summary struct {
	DaysPresent           int     `json:"daysPresent"`
	TotalHoursWorked      float64 `json:"totalHoursWorked"`
	ApprovedOvertimeHours float64 `json:"approvedOvertimeHours"`
	Weekends              int     `json:"weekends"`
	PaidHolidays          int     `json:"paidHolidays"`
	PaidLeaveDays         float64 `json:"paidLeaveDays"`
	PayableDays           float64 `json:"payableDays"`
}

type SalaryCalculation struct {
	PerDaySalary  float64 `json:"perDaySalary"`
	EarnedSalary  float64 `json:"earnedSalary"`
	OvertimePay   float64 `json:"overtimePay"`
	TotalEarnings float64 `json:"totalEarnings"`
}

// MonthlyStatement is the dashboard-facing aggregate for one staff member over
// the current month up to today.
type MonthlyStatement struct {
	StaffID         string            `json:"staffId"`
	StaffName       string            `json:"staffName"`
	PeriodStart     time.Time         `json:"periodStart"`
	PeriodEnd       time.Time         `json:"periodEnd"`
	Summary         Summary           `json:"summary"`
	Salary          SalaryCalculation `json:"salary"`
	ProgressPercent float64           `json:"progressPercent"`
}
