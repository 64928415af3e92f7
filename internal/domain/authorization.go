package domain

// Principal is the authenticated identity an operation runs on behalf of:
// either a user resolved from a bearer token, or an application with system
// privileges.
type Principal struct {
	UUID   string
	Email  string
	System bool
}

// The authorization policy is a stateless predicate layer over the game's
// developer set. The API layer consults it before invoking any workflow.

// CanManageDeveloper reports whether the principal may promote or demote the
// given entity as a developer, or list its games. Self-service or system.
func CanManageDeveloper(p Principal, developerUUID string) bool {
	return p.System || p.UUID == developerUUID
}

// CanCreateGame reports whether the principal may create a game with the
// given developer list. Users may only create games they develop alone.
func CanCreateGame(p Principal, developers []string) bool {
	if p.System {
		return true
	}
	return len(developers) == 1 && developers[0] == p.UUID
}

// CanAccessGame reports whether the principal may read, change or destroy
// a game with the given developer set. Co-developers and system only.
func CanAccessGame(p Principal, developers []string) bool {
	if p.System {
		return true
	}
	for _, developer := range developers {
		if developer == p.UUID {
			return true
		}
	}
	return false
}

// CanChangeDevelopers reports whether the principal may alter a game's
// developer set. System privileges only; being a co-developer is not enough.
func CanChangeDevelopers(p Principal) bool {
	return p.System
}
