package domain

import (
	"context"
	"sync"
)

// Identity is the authenticated actor behind an operation.
type Identity struct {
	UserID int64
	Role   Role
}

// IsAdmin reports whether the identity carries the ADMIN role.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

type identityKey struct{}

// ContextWithIdentity returns a copy of ctx carrying id.
func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the identity stored by ContextWithIdentity.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

// Session holds the single signed-in seat of the tracker. Logging in replaces
// whoever was signed in before; every login gets a new generation number so
// tokens minted for an earlier login can be told apart.
type Session struct {
	mu         sync.RWMutex
	active     bool
	userID     int64
	role       Role
	generation uint64
}

// NewSession returns a logged-out session.
func NewSession() *Session {
	return &Session{}
}

// Login sets the current user and role and returns the new generation.
func (s *Session) Login(userID int64, role Role) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = true
	s.userID = userID
	s.role = role
	s.generation++
	return s.generation
}

// Logout clears the current user and role.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = false
	s.userID = 0
	s.role = ""
}

// CurrentUserID returns the signed-in user id, or false when logged out.
func (s *Session) CurrentUserID() (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID, s.active
}

// CurrentRole returns the signed-in role, or false when logged out.
func (s *Session) CurrentRole() (Role, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.role, s.active
}

// Current returns both fields from one consistent snapshot.
func (s *Session) Current() (Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Identity{UserID: s.userID, Role: s.role}, s.active
}

// IsAdmin reports whether the signed-in user is an administrator.
func (s *Session) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active && s.role == RoleAdmin
}

// Valid reports whether generation still names the live login.
func (s *Session) Valid(generation uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active && s.generation == generation
}
