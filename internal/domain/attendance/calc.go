package attendance

import "time"

// DefaultWeekend marks Saturday and Sunday as non-working days.
var DefaultWeekend = map[time.Weekday]bool{
	time.Saturday: true,
	time.Sunday:   true,
}

// ClipWindow bounds a month window at today: aggregation never reaches into
// future dates, even when the month has days left.
func ClipWindow(now time.Time) (start, end time.Time) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	end = start.AddDate(0, 1, -1)
	if today.Before(end) {
		end = today
	}
	return start, end
}

// DaysInMonth returns the calendar day count of t's month (28-31).
func DaysInMonth(t time.Time) int {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return first.AddDate(0, 1, -1).Day()
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// Summarize derives the attendance aggregate for the inclusive [start, end]
// window. Only terminal attendance records count as present, only approved
// overtime counts toward overtime hours, and every calendar day is classified
// exactly once: weekend first, else holiday, else ordinary. The calendar maps
// day keys to entry kinds; a weekend entry overrides the static weekend map
// for that day.
func Summarize(start, end time.Time, records []Record, overtime []OvertimeRequest, calendar map[string]string, weekend map[time.Weekday]bool, leaves []LeaveWindow) Summary {
	if weekend == nil {
		weekend = DefaultWeekend
	}

	var s Summary

	seen := map[string]bool{}
	for _, rec := range records {
		if rec.Status != StatusCheckedOut && rec.Status != StatusAutoCheckout {
			continue
		}
		if rec.WorkDate.Before(start) || rec.WorkDate.After(end) {
			continue
		}
		key := dayKey(rec.WorkDate)
		if !seen[key] {
			seen[key] = true
			s.DaysPresent++
		}
		s.TotalHoursWorked += rec.TotalHours
	}

	for _, req := range overtime {
		if req.Status != OvertimeApproved {
			continue
		}
		if req.WorkDate.Before(start) || req.WorkDate.After(end) {
			continue
		}
		s.ApprovedOvertimeHours += req.RequestedHours
	}

	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		kind := calendar[dayKey(day)]
		if kind == CalendarWeekend || weekend[day.Weekday()] {
			s.Weekends++
			continue
		}
		if kind == CalendarHoliday {
			s.PaidHolidays++
		}
	}

	for _, lw := range leaves {
		if lw.EndDate.Before(start) || lw.StartDate.After(end) {
			continue
		}
		s.PaidLeaveDays += lw.PaidDays
	}

	s.PayableDays = float64(s.DaysPresent+s.PaidHolidays+s.Weekends) + s.PaidLeaveDays
	return s
}

// CalculateSalary derives pay from payable days, not days present. The per-day
// rate divides by the actual calendar month length.
func CalculateSalary(monthlyBase float64, daysInMonth int, s Summary, normalWorkingHours, overtimeMultiplier float64) SalaryCalculation {
	var calc SalaryCalculation
	if daysInMonth <= 0 || normalWorkingHours <= 0 {
		return calc
	}
	calc.PerDaySalary = monthlyBase / float64(daysInMonth)
	calc.EarnedSalary = s.PayableDays * calc.PerDaySalary
	calc.OvertimePay = s.ApprovedOvertimeHours * (calc.PerDaySalary / normalWorkingHours) * overtimeMultiplier
	calc.TotalEarnings = calc.EarnedSalary + calc.OvertimePay
	return calc
}

// ProgressPercent reports how much of the month so far is payable, clamped to
// [0, 100]. A zero day-of-month yields 0 rather than dividing by zero.
func ProgressPercent(payableDays float64, dayOfMonth int) float64 {
	if dayOfMonth <= 0 {
		return 0
	}
	percent := payableDays / float64(dayOfMonth) * 100
	if percent > 100 {
		return 100
	}
	if percent < 0 {
		return 0
	}
	return percent
}
