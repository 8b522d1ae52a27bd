package authgate

import (
	"encoding/json"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
)

// DefaultSessionCookie is the cookie carrying the session id.
const DefaultSessionCookie = "session_id"

// DefaultSessionTTL bounds how long an established session stays valid.
const DefaultSessionTTL = 24 * time.Hour

// SessionObject is what the session store holds for a session id: the
// identity verbatim plus the time it was established.
type SessionObject struct {
	Identity Identity  `json:"identity"`
	IssuedAt time.Time `json:"issued_at"`
}

// SerializeSession converts an identity into a session-store payload.
func SerializeSession(identity Identity) ([]byte, error) {
	obj := SessionObject{
		Identity: identity,
		IssuedAt: time.Now(),
	}

	payload, err := json.Marshal(obj)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to serialize session")
	}
	return payload, nil
}

// DeserializeSession returns the identity exactly as it was stored. There is
// no re-fetch from the identity store, so role changes made after login are
// not reflected until the session is recreated.
func DeserializeSession(payload []byte) (Identity, error) {
	var obj SessionObject
	if err := json.Unmarshal(payload, &obj); err != nil {
		return Identity{}, ErrUnableToDecodeSession
	}
	return obj.Identity, nil
}

// SessionManager establishes, reads, and destroys cookie-backed sessions
// against an external SessionStore.
type SessionManager struct {
	store      SessionStore
	cookieName string
	ttl        time.Duration
	logger     Logger
}

// NewSessionManager returns a manager using the default cookie name and TTL.
func NewSessionManager(store SessionStore) *SessionManager {
	return &SessionManager{
		store:      store,
		cookieName: DefaultSessionCookie,
		ttl:        DefaultSessionTTL,
		logger:     defLogger{},
	}
}

func (m *SessionManager) WithCookieName(name string) *SessionManager {
	if name != "" {
		m.cookieName = name
	}
	return m
}

func (m *SessionManager) WithTTL(ttl time.Duration) *SessionManager {
	if ttl > 0 {
		m.ttl = ttl
	}
	return m
}

func (m *SessionManager) WithLogger(logger Logger) *SessionManager {
	m.logger = logger
	return m
}

// CookieName returns the configured session cookie name.
func (m *SessionManager) CookieName() string {
	return m.cookieName
}

// Establish creates a new session for the identity and sets the session
// cookie on the response.
func (m *SessionManager) Establish(c router.Context, identity Identity) error {
	payload, err := SerializeSession(identity)
	if err != nil {
		return err
	}

	id := uuid.NewString()
	if err := m.store.Set(c.Context(), id, payload, m.ttl); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to persist session")
	}

	m.setCookie(c, id, m.ttl)
	return nil
}

// Current resolves the identity attached to the request's session cookie.
// A missing cookie, unknown session id, or undecodable payload all surface
// as ErrUnauthenticated.
func (m *SessionManager) Current(c router.Context) (Identity, error) {
	id := c.Cookies(m.cookieName)
	if id == "" {
		return Identity{}, ErrUnauthenticated
	}

	payload, err := m.store.Get(c.Context(), id)
	if err != nil {
		if errors.IsNotFound(err) {
			return Identity{}, ErrUnauthenticated
		}
		return Identity{}, errors.Wrap(err, errors.CategoryInternal, "failed to read session")
	}

	identity, err := DeserializeSession(payload)
	if err != nil {
		m.logger.Warn("session payload did not decode", "session_id", id)
		return Identity{}, ErrUnauthenticated
	}

	return identity, nil
}

// Destroy removes the session from the store and clears the cookie. It is a
// no-op when no session cookie is present.
func (m *SessionManager) Destroy(c router.Context) error {
	id := c.Cookies(m.cookieName)
	if id == "" {
		return nil
	}

	if err := m.store.Destroy(c.Context(), id); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to destroy session")
	}

	m.clearCookie(c)
	return nil
}

func (m *SessionManager) setCookie(c router.Context, val string, duration time.Duration) {
	c.Cookie(&router.Cookie{
		Name:     m.cookieName,
		Value:    val,
		Expires:  time.Now().Add(duration),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

func (m *SessionManager) clearCookie(c router.Context) {
	c.Cookie(&router.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}
