package vacation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/warp/vacationflow/vacation"
)

func TestAuthorize_Matrix(t *testing.T) {
	employee := vacation.Actor{ID: "emp", Role: vacation.RoleEmployee, DepartmentID: "dev"}
	manager := vacation.Actor{ID: "mgr", Role: vacation.RoleManager, DepartmentID: "dev"}
	otherManager := vacation.Actor{ID: "mgr2", Role: vacation.RoleManager, DepartmentID: "sales"}
	hr := vacation.Actor{ID: "hr", Role: vacation.RoleHR, DepartmentID: "people"}

	ownedByEmp := vacation.Target{OwnerID: "emp", DepartmentID: "dev"}
	ownedByMgr := vacation.Target{OwnerID: "mgr", DepartmentID: "dev"}

	tests := []struct {
		name   string
		actor  vacation.Actor
		op     vacation.Operation
		target vacation.Target
		allow  bool
	}{
		{"employee creates own", employee, vacation.OpCreateRequest, vacation.Target{OwnerID: "emp"}, true},
		{"employee creates for other", employee, vacation.OpCreateRequest, vacation.Target{OwnerID: "mgr"}, false},
		{"employee cancels own", employee, vacation.OpCancelRequest, ownedByEmp, true},
		{"manager cancels employee", manager, vacation.OpCancelRequest, ownedByEmp, false},
		{"hr cancels anyone", hr, vacation.OpCancelRequest, ownedByEmp, true},
		{"employee decides", employee, vacation.OpDecideRequest, ownedByEmp, false},
		{"manager decides same department", manager, vacation.OpDecideRequest, ownedByEmp, true},
		{"manager decides own", manager, vacation.OpDecideRequest, ownedByMgr, false},
		{"manager decides other department", otherManager, vacation.OpDecideRequest, ownedByEmp, false},
		{"hr decides anything", hr, vacation.OpDecideRequest, ownedByMgr, true},
		{"employee views own", employee, vacation.OpViewRequest, ownedByEmp, true},
		{"employee views manager's", employee, vacation.OpViewRequest, ownedByMgr, false},
		{"manager views department", manager, vacation.OpViewRequest, ownedByEmp, true},
		{"other manager views", otherManager, vacation.OpViewRequest, ownedByEmp, false},
		{"manager lists department", manager, vacation.OpViewDepartmentRequests, vacation.Target{DepartmentID: "dev"}, true},
		{"employee lists department", employee, vacation.OpViewDepartmentRequests, vacation.Target{DepartmentID: "dev"}, false},
		{"manager lists all", manager, vacation.OpViewAllRequests, vacation.Target{}, false},
		{"hr lists all", hr, vacation.OpViewAllRequests, vacation.Target{}, true},
		{"employee views own balance", employee, vacation.OpViewBalance, vacation.Target{OwnerID: "emp"}, true},
		{"employee views other balance", employee, vacation.OpViewBalance, vacation.Target{OwnerID: "mgr"}, false},
		{"manager views balance", manager, vacation.OpViewBalance, vacation.Target{OwnerID: "emp"}, true},
		{"manager updates balance", manager, vacation.OpUpdateBalance, vacation.Target{OwnerID: "emp"}, false},
		{"hr updates balance", hr, vacation.OpUpdateBalance, vacation.Target{OwnerID: "emp"}, true},
		{"manager reports", manager, vacation.OpViewReports, vacation.Target{}, false},
		{"hr manages departments", hr, vacation.OpManageDepartments, vacation.Target{}, true},
		{"manager manages demo data", manager, vacation.OpManageDemoData, vacation.Target{}, false},
		{"employee manages demo data", employee, vacation.OpManageDemoData, vacation.Target{}, false},
		{"hr manages demo data", hr, vacation.OpManageDemoData, vacation.Target{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := vacation.Authorize(tt.actor, tt.op, tt.target)
			if tt.allow {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, vacation.ErrForbidden)
			}
		})
	}
}

func TestAuthorize_RejectsAnonymousAndUnknownRole(t *testing.T) {
	err := vacation.Authorize(vacation.Actor{Role: vacation.RoleHR}, vacation.OpViewAllRequests, vacation.Target{})
	assert.ErrorIs(t, err, vacation.ErrForbidden)

	err = vacation.Authorize(vacation.Actor{ID: "x", Role: "admin"}, vacation.OpViewAllRequests, vacation.Target{})
	assert.ErrorIs(t, err, vacation.ErrForbidden)
}
