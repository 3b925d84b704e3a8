package domain

// PermissionAll is the wildcard capability. A role whose first matrix entry
// is the wildcard holds every capability; the check short-circuits before any
// membership lookup.
const PermissionAll = "*"

// Capability constants define the available permissions in the system.
const (
	// PermBookingCreate allows creating track/venue bookings.
	PermBookingCreate = "booking:create"
	// PermBookingUpdate allows editing existing bookings.
	PermBookingUpdate = "booking:update"
	// PermBookingApprove allows approving or rejecting booking requests.
	PermBookingApprove = "booking:approve"

	// PermVehicleAssign allows assigning vehicles to bookings.
	PermVehicleAssign = "vehicle:assign"

	// PermTaskView allows viewing assigned test tasks.
	PermTaskView = "task:view"
	// PermTaskUpdate allows updating task progress.
	PermTaskUpdate = "task:update"

	// PermReportSubmit allows submitting test data reports.
	PermReportSubmit = "report:submit"
	// PermReportView allows viewing submitted reports.
	PermReportView = "report:view"

	// PermAnalyticsView allows viewing aggregate analytics.
	PermAnalyticsView = "analytics:view"
)

// permissionMatrix maps each role to its capability set. Order matters only
// for the wildcard sentinel, which must be the first entry.
var permissionMatrix = map[Role][]string{
	RoleAdmin:     {PermissionAll},
	RoleScheduler: {PermBookingCreate, PermBookingUpdate, PermVehicleAssign},
	RoleDriver:    {PermTaskView, PermTaskUpdate, PermReportSubmit},
	RoleReviewer:  {PermBookingApprove, PermReportView, PermAnalyticsView},
}

// Permissions returns the capability set for the role. The wildcard role
// returns the sentinel entry, not an expansion.
func Permissions(role Role) []string {
	return permissionMatrix[role]
}

// HasPermission reports whether the role holds the capability. Wildcard roles
// always pass.
func HasPermission(role Role, capability string) bool {
	perms := permissionMatrix[role]
	if len(perms) > 0 && perms[0] == PermissionAll {
		return true
	}
	for _, p := range perms {
		if p == capability {
			return true
		}
	}
	return false
}

// HasAnyPermission reports whether the role holds at least one of the
// capabilities. An empty list yields false (OR identity).
func HasAnyPermission(role Role, capabilities []string) bool {
	for _, capability := range capabilities {
		if HasPermission(role, capability) {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether the role holds every capability in the
// list. An empty list yields true (AND identity).
func HasAllPermissions(role Role, capabilities []string) bool {
	for _, capability := range capabilities {
		if !HasPermission(role, capability) {
			return false
		}
	}
	return true
}

// IsAdmin reports whether the role is the administrator role.
func IsAdmin(role Role) bool {
	return role == RoleAdmin
}
