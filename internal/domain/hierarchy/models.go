package hierarchy

// Role is the closed set of actor roles the engine understands.
type Role string

const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
	RoleHR       Role = "hr"
	RoleAdmin    Role = "admin"
)

func ParseRole(value string) (Role, bool) {
	switch Role(value) {
	case RoleEmployee, RoleManager, RoleHR, RoleAdmin:
		return Role(value), true
	}
	return "", false
}

// Elevated reports whether the role bypasses hierarchy-derived authority.
func (r Role) Elevated() bool {
	return r == RoleHR || r == RoleAdmin
}

const (
	EdgeStatusActive   = "active"
	EdgeStatusInactive = "inactive"
)

// Employee mirrors the externally synchronized HR record; read-only here.
type Employee struct {
	ID             string
	ManagerID      string
	DepartmentID   string
	BusinessUnitID string
	Role           Role
	Active         bool
}

// RoleInfo is the cached, derived view of an employee's authority.
type RoleInfo struct {
	EmployeeID     string
	Role           Role
	IsManager      bool
	Subordinates   []string
	DepartmentID   string
	BusinessUnitID string
}
