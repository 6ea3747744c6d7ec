package authz

import (
	"errors"

	"github.com/donmarsh/tasker-backend/internal/models"
)

// Action is the operation a caller wants to perform on a resource.
type Action int

const (
	ActionList Action = iota
	ActionRetrieve
	ActionUpdate
	ActionDelete
)

var (
	// ErrUnauthenticated maps to a 401 response at the boundary.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrPermissionDenied maps to a 403 response at the boundary. It is
	// raised instead of a silent deny when the request already names a
	// specific object, so the denial cannot be mistaken for "not found".
	ErrPermissionDenied = errors.New("permission denied")
)

// CanAccess decides whether the caller may perform the action on the given
// resource. Pass a zero-value resource pointer for collection-level actions.
//
// Task retrieval by a caller that is neither privileged nor the assignee
// returns ErrPermissionDenied rather than a plain false.
func CanAccess(caller Caller, action Action, resource any) (bool, error) {
	if !caller.Authenticated {
		return false, ErrUnauthenticated
	}

	switch res := resource.(type) {
	case *models.User:
		return canAccessUser(caller, action), nil
	case *models.Project:
		return caller.IsAdminOrManager(), nil
	case *models.Task:
		return canAccessTask(caller, action, res)
	default:
		return false, nil
	}
}

// User management is role-gated only: listing is open to managers, but
// inspecting or changing an individual account takes the admin role.
func canAccessUser(caller Caller, action Action) bool {
	if action == ActionList {
		return caller.IsAdminOrManager()
	}
	return caller.IsAdmin()
}

func canAccessTask(caller Caller, action Action, task *models.Task) (bool, error) {
	switch action {
	case ActionUpdate, ActionDelete:
		if caller.IsAdminOrManager() {
			return true, nil
		}
		return isTaskAssignee(caller, task), nil
	case ActionRetrieve:
		if caller.IsAdminOrManager() || isTaskAssignee(caller, task) {
			return true, nil
		}
		return false, ErrPermissionDenied
	default:
		// Read visibility for collections is handled by ScopeTasks.
		return true, nil
	}
}

func isTaskAssignee(caller Caller, task *models.Task) bool {
	if task == nil || task.AssigneeID == nil || caller.ID == 0 {
		return false
	}
	return *task.AssigneeID == caller.ID
}
