// internal/app/system/status/status.go
package status

// Shared status values for users and memberships.
const (
	Active   = "active"
	Inactive = "inactive"
	Disabled = "disabled"
)
