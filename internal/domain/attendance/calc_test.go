package attendance

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func checkedOut(staffID string, day time.Time, hours float64) Record {
	out := day.Add(time.Duration(hours * float64(time.Hour)))
	in := day
	return Record{StaffID: staffID, WorkDate: day, CheckIn: &in, CheckOut: &out, Status: StatusCheckedOut, TotalHours: hours}
}

func TestClipWindowBoundsAtToday(t *testing.T) {
	now := time.Date(2025, 7, 15, 13, 45, 0, 0, time.UTC)
	start, end := ClipWindow(now)
	if !start.Equal(date(2025, 7, 1)) {
		t.Fatalf("expected window start July 1, got %v", start)
	}
	if !end.Equal(date(2025, 7, 15)) {
		t.Fatalf("expected window clipped to today, got %v", end)
	}

	// Last day of the month stays the month end.
	now = time.Date(2025, 7, 31, 9, 0, 0, 0, time.UTC)
	_, end = ClipWindow(now)
	if !end.Equal(date(2025, 7, 31)) {
		t.Fatalf("expected month end, got %v", end)
	}
}

func TestDaysInMonthVaries(t *testing.T) {
	cases := map[time.Time]int{
		date(2025, 2, 10): 28,
		date(2024, 2, 10): 29,
		date(2025, 4, 1):  30,
		date(2025, 7, 31): 31,
	}
	for when, expected := range cases {
		if got := DaysInMonth(when); got != expected {
			t.Fatalf("DaysInMonth(%v) = %d, expected %d", when, got, expected)
		}
	}
}

func TestSummarizeCountsOnlyTerminalRecords(t *testing.T) {
	start, end := date(2025, 7, 1), date(2025, 7, 7)
	in := date(2025, 7, 3)
	records := []Record{
		checkedOut("s1", date(2025, 7, 1), 8),
		{StaffID: "s1", WorkDate: date(2025, 7, 2), CheckIn: &in, Status: StatusCheckedIn, TotalHours: 4},
		checkedOut("s1", date(2025, 7, 3), 7.5),
	}
	records[2].Status = StatusAutoCheckout

	s := Summarize(start, end, records, nil, nil, DefaultWeekend, nil)
	if s.DaysPresent != 2 {
		t.Fatalf("expected 2 days present (open record excluded), got %d", s.DaysPresent)
	}
	if s.TotalHoursWorked != 15.5 {
		t.Fatalf("expected 15.5 hours, got %v", s.TotalHoursWorked)
	}
}

func TestSummarizeIgnoresUnapprovedOvertime(t *testing.T) {
	start, end := date(2025, 7, 1), date(2025, 7, 31)
	overtime := []OvertimeRequest{
		{StaffID: "s1", WorkDate: date(2025, 7, 2), RequestedHours: 3, Status: OvertimeApproved},
		{StaffID: "s1", WorkDate: date(2025, 7, 3), RequestedHours: 10, Status: OvertimePending},
		{StaffID: "s1", WorkDate: date(2025, 7, 4), RequestedHours: 6, Status: OvertimeRejected},
	}
	s := Summarize(start, end, nil, overtime, nil, DefaultWeekend, nil)
	if s.ApprovedOvertimeHours != 3 {
		t.Fatalf("expected only approved overtime to count, got %v", s.ApprovedOvertimeHours)
	}
}

func TestSummarizeWeekendTakesPrecedenceOverHoliday(t *testing.T) {
	// 2025-07-05 is a Saturday; the holiday on it must count as weekend only.
	start, end := date(2025, 7, 1), date(2025, 7, 7)
	calendar := map[string]string{
		"2025-07-04": CalendarHoliday,
		"2025-07-05": CalendarHoliday,
	}
	s := Summarize(start, end, nil, nil, calendar, DefaultWeekend, nil)
	if s.Weekends != 2 {
		t.Fatalf("expected 2 weekend days (Jul 5, Jul 6), got %d", s.Weekends)
	}
	if s.PaidHolidays != 1 {
		t.Fatalf("expected 1 paid holiday (Jul 4 only), got %d", s.PaidHolidays)
	}
}

func TestSummarizeWeekendOverrideEntry(t *testing.T) {
	// 2025-07-02 is a Wednesday reclassified as weekend by a calendar entry.
	start, end := date(2025, 7, 1), date(2025, 7, 7)
	calendar := map[string]string{
		"2025-07-02": CalendarWeekend,
	}
	s := Summarize(start, end, nil, nil, calendar, DefaultWeekend, nil)
	if s.Weekends != 3 {
		t.Fatalf("expected 3 weekend days (Jul 2 override, Jul 5, Jul 6), got %d", s.Weekends)
	}
	if s.PaidHolidays != 0 {
		t.Fatalf("expected no paid holidays, got %d", s.PaidHolidays)
	}
}

func TestSummarizePaidLeaveOverlap(t *testing.T) {
	start, end := date(2025, 7, 1), date(2025, 7, 31)
	leaves := []LeaveWindow{
		{StartDate: date(2025, 7, 10), EndDate: date(2025, 7, 11), PaidDays: 2},
		{StartDate: date(2025, 8, 1), EndDate: date(2025, 8, 2), PaidDays: 2}, // outside window
	}
	s := Summarize(start, end, nil, nil, nil, DefaultWeekend, leaves)
	if s.PaidLeaveDays != 2 {
		t.Fatalf("expected 2 paid leave days, got %v", s.PaidLeaveDays)
	}
}

func TestPayableDaysNeverBelowDaysPresent(t *testing.T) {
	start, end := date(2025, 7, 1), date(2025, 7, 31)
	var records []Record
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		records = append(records, checkedOut("s1", day, 8))
	}
	s := Summarize(start, end, records, nil, nil, DefaultWeekend, nil)
	if s.PayableDays < float64(s.DaysPresent) {
		t.Fatalf("payable days %v below days present %d", s.PayableDays, s.DaysPresent)
	}
}

func TestSalaryScenarioThirtyOneDayMonth(t *testing.T) {
	// 18 present + 8 weekends + 1 holiday + 2 paid leave = 29 payable days.
	s := Summary{DaysPresent: 18, Weekends: 8, PaidHolidays: 1, PaidLeaveDays: 2}
	s.PayableDays = float64(s.DaysPresent+s.Weekends+s.PaidHolidays) + s.PaidLeaveDays
	if s.PayableDays != 29 {
		t.Fatalf("expected 29 payable days, got %v", s.PayableDays)
	}

	calc := CalculateSalary(31000, 31, s, 8, 1.5)
	if calc.PerDaySalary != 1000 {
		t.Fatalf("expected per-day salary 1000, got %v", calc.PerDaySalary)
	}
	if calc.EarnedSalary != 29000 {
		t.Fatalf("expected earned salary 29000, got %v", calc.EarnedSalary)
	}
	if calc.TotalEarnings != 29000 {
		t.Fatalf("expected total 29000 with no overtime, got %v", calc.TotalEarnings)
	}
}

func TestSalaryOvertimePay(t *testing.T) {
	s := Summary{PayableDays: 30, ApprovedOvertimeHours: 4}
	calc := CalculateSalary(30000, 30, s, 8, 1.5)
	// per day 1000, per hour 125, x1.5 x4h = 750.
	if calc.OvertimePay != 750 {
		t.Fatalf("expected overtime pay 750, got %v", calc.OvertimePay)
	}
	if calc.TotalEarnings != 30750 {
		t.Fatalf("expected total 30750, got %v", calc.TotalEarnings)
	}
}

func TestProgressPercentClamps(t *testing.T) {
	if got := ProgressPercent(29, 20); got != 100 {
		t.Fatalf("expected clamp at 100, got %v", got)
	}
	if got := ProgressPercent(10, 20); got != 50 {
		t.Fatalf("expected 50, got %v", got)
	}
	if got := ProgressPercent(5, 0); got != 0 {
		t.Fatalf("expected 0 for zero day-of-month, got %v", got)
	}
}
