// Package session holds the authenticated identity for the lifetime of the
// process. Nothing is persisted; every restart starts unauthenticated.
package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/amirasaad/bankdesk/pkg/domain"
	"github.com/amirasaad/bankdesk/pkg/gateway"
	"github.com/golang-jwt/jwt/v5"
)

// Gateway is the slice of the API gateway the session needs.
type Gateway interface {
	Login(ctx context.Context, username, password string) (*gateway.LoginResponse, error)
	SetToken(token string)
}

// Session is the in-memory session model.
type Session struct {
	gw      Gateway
	logger  *slog.Logger
	current *domain.Identity
}

// New creates an unauthenticated session.
func New(gw Gateway, logger *slog.Logger) *Session {
	return &Session{gw: gw, logger: logger}
}

// Current returns the active identity, or nil when unauthenticated.
func (s *Session) Current() *domain.Identity {
	return s.current
}

// Login authenticates against the backend and installs the resulting
// identity. A response without a role is an invalid login even when the
// transport succeeded: the session stays unauthenticated and
// domain.ErrNoRole is returned.
func (s *Session) Login(ctx context.Context, username, password string) (*domain.Identity, error) {
	log := s.logger.With("context", "Login", "username", username)
	log.Debug("Login called")

	resp, err := s.gw.Login(ctx, username, password)
	if err != nil {
		log.Error("Login failed", "error", err)
		return nil, err
	}

	ident := identityFrom(resp, username)
	if !ident.Role.Valid() {
		log.Error("Login response unusable", "error", domain.ErrNoRole, "role", resp.Role)
		return nil, fmt.Errorf("login rejected for %q: %w", username, domain.ErrNoRole)
	}

	if resp.Token != "" {
		s.gw.SetToken(resp.Token)
	}
	s.current = &ident
	log.Info("Login successful", "userID", ident.ID, "role", ident.Role)
	return s.current, nil
}

// Logout clears the identity and the bearer token. Client-side only; the
// backend keeps no session to tear down.
func (s *Session) Logout() {
	if s.current != nil {
		s.logger.Info("Logout", "userID", s.current.ID)
	}
	s.current = nil
	s.gw.SetToken("")
}

// identityFrom builds an Identity from the login response. The display name
// prefers firstName+lastName, then the response name, then the username the
// user typed. Missing id or role may be recovered from the response token's
// claims; the token signature is the backend's concern, not ours, so the
// claims are read unverified.
func identityFrom(resp *gateway.LoginResponse, username string) domain.Identity {
	ident := domain.Identity{
		ID:        resp.ID,
		FirstName: resp.FirstName,
		LastName:  resp.LastName,
		Role:      domain.Role(resp.Role),
	}

	switch {
	case resp.FirstName != "" && resp.LastName != "":
		ident.Name = resp.FirstName + " " + resp.LastName
	case resp.Name != "":
		ident.Name = resp.Name
	default:
		ident.Name = username
	}

	if resp.Token != "" && (ident.ID == "" || !ident.Role.Valid()) {
		if claims := tokenClaims(resp.Token); claims != nil {
			if ident.ID == "" {
				ident.ID, _ = claims["user_id"].(string)
			}
			if !ident.Role.Valid() {
				role, _ := claims["role"].(string)
				ident.Role = domain.Role(role)
			}
		}
	}
	return ident
}

func tokenClaims(token string) jwt.MapClaims {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return nil
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil
	}
	return claims
}
