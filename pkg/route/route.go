// Package route decides which views an identity may reach. Decisions are
// pure functions of the identity passed in; nothing is cached, so a login
// or logout between navigations is always honored.
package route

import "github.com/amirasaad/bankdesk/pkg/domain"

// ViewID names a navigable view.
type ViewID string

const (
	ViewLogin    ViewID = "login"
	ViewCustomer ViewID = "customer"
	ViewTeller   ViewID = "teller"
	ViewAdmin    ViewID = "admin"
)

// DefaultView maps a role to its landing view. The login fallback exists
// only for unauthenticated or malformed identities; a valid authenticated
// identity never reaches it.
func DefaultView(role domain.Role) ViewID {
	switch role {
	case domain.RoleCustomer:
		return ViewCustomer
	case domain.RoleTeller:
		return ViewTeller
	case domain.RoleAdmin:
		return ViewAdmin
	}
	return ViewLogin
}

// Decision is the outcome of an authorization check.
type Decision struct {
	Allowed  bool
	Redirect ViewID
}

// Authorize gates a navigation. No identity redirects to the login view; a
// role outside the allowed set redirects to that identity's own default
// view, never to a forbidden page and never into the protected view.
func Authorize(ident *domain.Identity, allowed ...domain.Role) Decision {
	if ident == nil {
		return Decision{Redirect: ViewLogin}
	}
	for _, role := range allowed {
		if ident.Role == role {
			return Decision{Allowed: true}
		}
	}
	return Decision{Redirect: DefaultView(ident.Role)}
}
