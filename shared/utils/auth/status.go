package utils

import "talenthub-backend/shared/database/models"

// IsValidUserStatusChange reports whether an admin-driven status change is
// allowed. INACTIVE is terminal; an unset status may move to ACTIVE or
// INACTIVE.
func IsValidUserStatusChange(current, next string) bool {
	switch current {
	case models.UserStatusPending:
		return next == models.UserStatusActive || next == models.UserStatusInactive
	case models.UserStatusActive:
		return next == models.UserStatusInactive
	case models.UserStatusInactive:
		return false
	case "":
		return next == models.UserStatusActive || next == models.UserStatusInactive
	default:
		return false
	}
}
