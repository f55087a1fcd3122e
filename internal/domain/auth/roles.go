package auth

const (
	RoleEmployee = "employee"
	RoleManager  = "manager"
	RoleCEO      = "ceo"
	RoleAdmin    = "admin"
)

var AllRoles = []string{RoleEmployee, RoleManager, RoleCEO, RoleAdmin}

// ApproverRoles are the roles that may hold a step in a leave approval chain.
var ApproverRoles = map[string]bool{
	RoleManager: true,
	RoleCEO:     true,
}

type UserContext struct {
	UserID   string
	TenantID string
	RoleID   string
	RoleName string
	StaffID  string
	FullName string
}
