// AngelaMos | 2026
// permission.go

package user

// CanCreate reports whether actor may create accounts.
func CanCreate(actor Role) bool {
	return actor == RoleAdministrator || actor == RoleManager
}

// CanEdit reports whether actor may modify a record held by target.
// Everyone may edit their own record. Managers may edit anyone below
// Administrator; plain users only themselves.
func CanEdit(actor, target Role, isSelf bool) bool {
	if isSelf {
		return true
	}

	switch actor {
	case RoleAdministrator:
		return true
	case RoleManager:
		return target != RoleAdministrator
	default:
		return false
	}
}

// CanAssignRole reports whether actor may grant role to an account.
// Nobody may grant a tier above their own.
func CanAssignRole(actor, role Role) bool {
	return role.Valid() && actor.Rank() >= role.Rank()
}

// CanView reports whether actor may read target's record.
func CanView(actor Role, isSelf bool) bool {
	return isSelf || CanCreate(actor)
}
