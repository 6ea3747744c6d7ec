package authz

import (
	"strconv"
	"strings"
)

// TaskScope is a storage-agnostic restriction on a bulk task query. The
// repository layer translates it to SQL; soft-deleted tasks are excluded
// there unconditionally.
type TaskScope struct {
	// Empty means the query must return nothing, regardless of any other
	// field.
	Empty bool

	// AssigneeID, when set, restricts results to tasks assigned to that
	// user.
	AssigneeID *uint64

	// RequireAssignee additionally excludes unassigned tasks. It is set
	// for queries explicitly targeted at a user: a query scoped to a
	// specific person must never surface tasks that belong to nobody.
	RequireAssignee bool
}

// ScopeTasks computes the subset of tasks the caller may see.
// explicitUserFilter is the raw value of the optional assignee query
// parameter; an unparseable value fails closed to an empty result rather
// than erroring.
//
// Privileged callers see everything, including unassigned tasks, unless they
// filter on a specific user. Non-privileged callers only ever see their own
// tasks, and only when the caller identity could be determined.
func ScopeTasks(caller Caller, explicitUserFilter string) TaskScope {
	filter := strings.TrimSpace(explicitUserFilter)
	if filter != "" {
		target, err := strconv.ParseUint(filter, 10, 64)
		if err != nil {
			return TaskScope{Empty: true}
		}

		if caller.IsAdminOrManager() || (caller.ID != 0 && caller.ID == target) {
			return TaskScope{AssigneeID: &target, RequireAssignee: true}
		}

		// No cross-user visibility for non-privileged callers. An empty
		// collection, not an error: the result must not leak whether the
		// target user or their tasks exist.
		return TaskScope{Empty: true}
	}

	if caller.IsAdminOrManager() {
		return TaskScope{}
	}

	if caller.ID == 0 {
		return TaskScope{Empty: true}
	}

	selfID := caller.ID
	return TaskScope{AssigneeID: &selfID}
}
