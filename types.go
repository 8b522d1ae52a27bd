package authgate

import (
	"context"
	"fmt"
	"time"
)

// Identity is the canonical authenticated-user record shared by the session
// and token authentication paths. It never carries secrets and is immutable
// for the lifetime of the request it is attached to.
type Identity struct {
	UserID   string   `json:"userId"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

// IsZero reports whether the identity carries no subject.
func (i Identity) IsZero() bool {
	return i.UserID == "" && i.Username == ""
}

// HasAnyRole reports whether the identity holds at least one of the given roles.
func (i Identity) HasAnyRole(roles ...string) bool {
	for _, want := range roles {
		for _, have := range i.Roles {
			if have == want {
				return true
			}
		}
	}
	return false
}

// UserRecord is the credential record an IdentityStore resolves for a
// username. SecretHash holds a bcrypt hash, never a plaintext secret.
type UserRecord struct {
	ID         string
	Name       string
	Email      string
	Roles      []string
	SecretHash string
}

// IdentityStore resolves a username to its credential record. Implementations
// return a not-found error (errors.IsNotFound) for unknown usernames.
type IdentityStore interface {
	Fetch(ctx context.Context, username string) (*UserRecord, error)
}

// SessionStore persists serialized session payloads keyed by session id.
// Implementations are external; this package never assumes an in-process store.
type SessionStore interface {
	Get(ctx context.Context, id string) ([]byte, error)
	Set(ctx context.Context, id string, payload []byte, ttl time.Duration) error
	Destroy(ctx context.Context, id string) error
}

// Config holds auth options
type Config interface {
	GetAccessSecret() string
	GetRefreshSecret() string
	GetAccessTTL() time.Duration
	GetRefreshTTL() time.Duration
}

// LoginPayload carries a submitted credential pair. It exists only for the
// duration of a login call and is never persisted.
type LoginPayload interface {
	GetUsername() string
	GetSecret() string
}

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// DefaultLogger returns the fallback logger.
func DefaultLogger() Logger {
	return defLogger{}
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
