package client

import "strings"

// Guard decisions. A denial names the path the caller should send the user
// to instead.
type GuardDecision int

const (
	// GuardAllow lets the navigation through.
	GuardAllow GuardDecision = iota
	// GuardRedirectLogin means no valid session exists.
	GuardRedirectLogin
	// GuardRedirectHome means the session's role may not enter the area;
	// send the user to their own home instead.
	GuardRedirectHome
)

const (
	LoginPath        = "/login"
	AdminHomePath    = "/admin/dashboard"
	CustomerHomePath = "/dashboard"
	adminPrefix      = "/admin"
	customerPrefix   = "/dashboard"
)

// ResolveAccess decides whether a session with the given role (empty string
// for no session) may open path. Paths outside the admin and dashboard areas
// are always allowed.
func ResolveAccess(role, path string) GuardDecision {
	switch {
	case hasAreaPrefix(path, adminPrefix):
		if role == "" {
			return GuardRedirectLogin
		}
		if role != RoleAdmin && role != RoleSuperAdmin {
			return GuardRedirectHome
		}
		return GuardAllow
	case hasAreaPrefix(path, customerPrefix):
		if role == "" {
			return GuardRedirectLogin
		}
		// Admins do not browse the customer area; send them to their own home.
		if role == RoleAdmin || role == RoleSuperAdmin {
			return GuardRedirectHome
		}
		return GuardAllow
	default:
		return GuardAllow
	}
}

// HomePath returns the landing page for a role. Admins land on the admin
// dashboard, everyone else on the customer one.
func HomePath(role string) string {
	if role == RoleAdmin || role == RoleSuperAdmin {
		return AdminHomePath
	}
	return CustomerHomePath
}

// RedirectTarget maps a guard decision to a concrete path, or "" when the
// navigation is allowed.
func RedirectTarget(decision GuardDecision, role string) string {
	switch decision {
	case GuardRedirectLogin:
		return LoginPath
	case GuardRedirectHome:
		return HomePath(role)
	default:
		return ""
	}
}

// hasAreaPrefix matches prefix as a whole path segment, so "/dashboard-x"
// is not part of the dashboard area but "/dashboard/billing" is.
func hasAreaPrefix(path, prefix string) bool {
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix+"/")
}
