package store

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/Dasparmv/FORTELV2/internal/bus"
	"github.com/Dasparmv/FORTELV2/internal/types"
)

// Session returns the current session, or nil when logged out. The session
// is re-read from storage on every call and never cached, so stale
// in-memory copies cannot survive a reload boundary.
func (s *Store) Session(ctx context.Context) *types.Session {
	blob, err := s.kvs.Get(ctx, sessionKey)
	if err != nil || blob == nil {
		return nil
	}
	var sess types.Session
	if err := json.Unmarshal(blob, &sess); err != nil {
		return nil
	}
	return &sess
}

// Login checks the demo credentials against the seeded roster. Email
// matching is case-insensitive. On success the session is written, an
// auth.login audit entry is recorded, and session:changed then db:changed
// are emitted.
func (s *Store) Login(ctx context.Context, email, password string) (*types.Session, error) {
	s.mu.Lock()

	var user *types.User
	for i := range s.db.Users {
		if strings.EqualFold(s.db.Users[i].Email, email) {
			user = &s.db.Users[i]
			break
		}
	}
	if user == nil {
		s.mu.Unlock()
		return nil, ErrUserNotFound
	}
	if user.Password != password {
		s.mu.Unlock()
		return nil, ErrBadPassword
	}

	sess := &types.Session{
		UserID:  user.ID,
		Name:    user.Name,
		Email:   user.Email,
		Role:    user.Role,
		LoginAt: s.now(),
	}
	if err := s.writeSession(ctx, sess); err != nil {
		s.mu.Unlock()
		return nil, err
	}

	s.addAuditLocked(ctx, AuditEntry{
		Type:    "auth.login",
		Message: "Inicio de sesión: " + user.Email,
		Actor:   user.Email,
	})
	db := s.db
	err := s.persistDB(ctx)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	s.events.Emit(bus.SessionChanged, sess)
	s.events.Emit(bus.DBChanged, db)

	s.logger.Info().Str("email", sess.Email).Str("role", string(sess.Role)).Msg("session opened")
	return sess, nil
}

// Logout clears the session. When a session existed, an auth.logout audit
// entry is recorded and db:changed emitted after session:changed.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	sess := s.Session(ctx)
	if err := s.kvs.Delete(ctx, sessionKey); err != nil {
		s.mu.Unlock()
		return err
	}

	var persistErr error
	if sess != nil {
		s.addAuditLocked(ctx, AuditEntry{
			Type:    "auth.logout",
			Message: "Cierre de sesión: " + sess.Email,
			Actor:   sess.Email,
		})
		persistErr = s.persistDB(ctx)
	}
	db := s.db
	s.mu.Unlock()
	if persistErr != nil {
		return persistErr
	}

	s.events.Emit(bus.SessionChanged, (*types.Session)(nil))
	if sess != nil {
		s.events.Emit(bus.DBChanged, db)
		s.logger.Info().Str("email", sess.Email).Msg("session closed")
	}
	return nil
}

// writeSession persists the session blob. Callers hold the mutex.
func (s *Store) writeSession(ctx context.Context, sess *types.Session) error {
	blob, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.kvs.Put(ctx, sessionKey, blob)
}

// CurrentUser resolves the session back to its roster entry, or nil
func (s *Store) CurrentUser(ctx context.Context) *types.User {
	sess := s.Session(ctx)
	if sess == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.db.Users {
		if s.db.Users[i].ID == sess.UserID {
			u := s.db.Users[i]
			return &u
		}
	}
	return nil
}

// RequireRole reports whether the current session may act under the given
// role restriction. nil roles means no restriction; no session is always
// false.
func (s *Store) RequireRole(ctx context.Context, roles []types.Role) bool {
	sess := s.Session(ctx)
	if sess == nil {
		return false
	}
	if roles == nil {
		return true
	}
	for _, r := range roles {
		if sess.Role == r {
			return true
		}
	}
	return false
}
