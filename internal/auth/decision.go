package auth

// Scope is the kind of access an endpoint requires.
type Scope int

const (
	// ScopeSelf needs nothing beyond a valid identity.
	ScopeSelf Scope = iota
	// ScopeAdmin needs the admin role.
	ScopeAdmin
)

func (s Scope) String() string {
	switch s {
	case ScopeSelf:
		return "self"
	case ScopeAdmin:
		return "admin"
	}
	return "unknown"
}

// Decision is the outcome of an authorization check.
type Decision int

const (
	Forbidden Decision = iota
	Allowed
)

func (d Decision) String() string {
	if d == Allowed {
		return "allowed"
	}
	return "forbidden"
}

// Authorize decides whether claims may use scope.
func Authorize(claims Claims, scope Scope) Decision {
	switch scope {
	case ScopeSelf:
		if claims.UserId > 0 {
			return Allowed
		}
	case ScopeAdmin:
		if claims.IsAdmin() {
			return Allowed
		}
	}

	return Forbidden
}

// AuthorizeTarget decides whether claims may read records owned by target.
// A nil target or the caller's own id is always allowed; any other user
// needs the admin role.
func AuthorizeTarget(claims Claims, target *int) Decision {
	if Authorize(claims, ScopeSelf) == Forbidden {
		return Forbidden
	}

	if target == nil || *target == claims.UserId {
		return Allowed
	}

	return Authorize(claims, ScopeAdmin)
}
