package utils

import (
	"strings"

	"constructedge/internal/domain"
)

// ParseRoleHint matches a free-text registration hint case-insensitively.
// Unknown or empty hints resolve to EMPLOYEE and never fail.
func ParseRoleHint(hint string) domain.RoleTag {
	switch domain.RoleTag(strings.ToUpper(strings.TrimSpace(hint))) {
	case domain.RoleAdmin:
		return domain.RoleAdmin
	case domain.RoleManager:
		return domain.RoleManager
	default:
		return domain.RoleEmployee
	}
}

// RoleFromClaim validates a role carried in a token. Unlike ParseRoleHint it
// does not downgrade unknown values.
func RoleFromClaim(claim string) (domain.RoleTag, bool) {
	switch domain.RoleTag(claim) {
	case domain.RoleAdmin, domain.RoleManager, domain.RoleEmployee:
		return domain.RoleTag(claim), true
	default:
		return "", false
	}
}
