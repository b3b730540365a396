package vacation

// =============================================================================
// AUTHORIZATION POLICY - One decision point for every entry point
// =============================================================================

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID           string
	Role         Role
	DepartmentID string
}

// Operation names an entry point subject to authorization.
type Operation string

const (
	OpCreateRequest          Operation = "create_request"
	OpCancelRequest          Operation = "cancel_request"
	OpDecideRequest          Operation = "decide_request"
	OpViewRequest            Operation = "view_request"
	OpViewDepartmentRequests Operation = "view_department_requests"
	OpViewAllRequests        Operation = "view_all_requests"
	OpViewBalance            Operation = "view_balance"
	OpUpdateBalance          Operation = "update_balance"
	OpManageDepartments      Operation = "manage_departments"
	OpViewReports            Operation = "view_reports"
	OpManageDemoData         Operation = "manage_demo_data"
)

// Target describes what an operation acts on. Zero fields mean "not
// applicable", e.g. department management has no owner.
type Target struct {
	OwnerID      string
	DepartmentID string
}

// Authorize returns nil when actor may perform op on target, ErrForbidden
// otherwise. The error never says why.
func Authorize(actor Actor, op Operation, target Target) error {
	if actor.ID == "" || !actor.Role.Valid() {
		return ErrForbidden
	}
	if allowed(actor, op, target) {
		return nil
	}
	return ErrForbidden
}

func allowed(actor Actor, op Operation, target Target) bool {
	own := target.OwnerID != "" && target.OwnerID == actor.ID
	sameDept := target.DepartmentID != "" && target.DepartmentID == actor.DepartmentID

	switch op {
	case OpCreateRequest:
		return own
	case OpCancelRequest:
		return own || actor.Role == RoleHR
	case OpDecideRequest:
		switch actor.Role {
		case RoleHR:
			return true
		case RoleManager:
			return sameDept && !own
		}
		return false
	case OpViewRequest:
		switch actor.Role {
		case RoleHR:
			return true
		case RoleManager:
			return own || sameDept
		}
		return own
	case OpViewDepartmentRequests:
		return (actor.Role == RoleManager || actor.Role == RoleHR) && sameDept
	case OpViewBalance:
		return own || actor.Role == RoleManager || actor.Role == RoleHR
	case OpViewAllRequests, OpUpdateBalance, OpManageDepartments, OpViewReports, OpManageDemoData:
		return actor.Role == RoleHR
	}
	return false
}
