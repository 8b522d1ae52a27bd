package authgate

// GroupPolicy carries role declarations made at the handler-group level.
// Method-level declarations override it.
type GroupPolicy struct {
	Roles []string
}

// RequiredRoles resolves the roles in scope for a handler. Method-level
// declared roles override group-level ones; nil means nothing was declared
// at that level.
func RequiredRoles(methodRoles []string, group *GroupPolicy) []string {
	if methodRoles != nil {
		return methodRoles
	}
	if group != nil {
		return group.Roles
	}
	return nil
}

// Authorize applies the role-based access decision. With no declared roles
// in scope access is granted unconditionally, including to anonymous
// requests; this policy does not imply authentication. Once roles are
// declared an identity must be present and share at least one role with the
// required set.
func Authorize(identity *Identity, required []string) bool {
	if required == nil {
		return true
	}

	if identity == nil {
		return false
	}

	return identity.HasAnyRole(required...)
}
