package auth

const (
	PermLeaveRead         = "leave.read"
	PermLeaveWrite        = "leave.write"
	PermLeaveApprove      = "leave.approve"
	PermLeaveAdjust       = "leave.adjust"
	PermAttendanceRead    = "attendance.read"
	PermAttendanceWrite   = "attendance.write"
	PermOvertimeApprove   = "attendance.overtime.approve"
	PermCalendarManage    = "calendar.manage"
	PermPayrollRead       = "payroll.read"
	PermNotificationsRead = "notifications.read"
)

var DefaultPermissions = []string{
	PermLeaveRead,
	PermLeaveWrite,
	PermLeaveApprove,
	PermLeaveAdjust,
	PermAttendanceRead,
	PermAttendanceWrite,
	PermOvertimeApprove,
	PermCalendarManage,
	PermPayrollRead,
	PermNotificationsRead,
}

var RolePermissions = map[string][]string{
	RoleEmployee: {
		PermLeaveRead,
		PermLeaveWrite,
		PermAttendanceRead,
		PermAttendanceWrite,
		PermPayrollRead,
		PermNotificationsRead,
	},
	RoleManager: {
		PermLeaveRead,
		PermLeaveWrite,
		PermLeaveApprove,
		PermAttendanceRead,
		PermAttendanceWrite,
		PermOvertimeApprove,
		PermPayrollRead,
		PermNotificationsRead,
	},
	RoleCEO: {
		PermLeaveRead,
		PermLeaveWrite,
		PermLeaveApprove,
		PermAttendanceRead,
		PermAttendanceWrite,
		PermOvertimeApprove,
		PermPayrollRead,
		PermNotificationsRead,
	},
	RoleAdmin: {
		PermLeaveRead,
		PermLeaveWrite,
		PermLeaveAdjust,
		PermAttendanceRead,
		PermAttendanceWrite,
		PermOvertimeApprove,
		PermCalendarManage,
		PermPayrollRead,
		PermNotificationsRead,
	},
}
