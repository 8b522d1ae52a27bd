package authgate

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

// AuthMethod is the closed set of authentication mechanisms a guard can
// apply to a request.
type AuthMethod int

const (
	// Public performs no authentication and attaches no identity.
	Public AuthMethod = iota
	// SessionAuth requires an existing authenticated session.
	SessionAuth
	// LocalCredential validates a username/secret pair from the body
	// without touching the session store.
	LocalCredential
	// LocalSessionLogin validates credentials and establishes a session.
	LocalSessionLogin
	// JwtAccess verifies a bearer access token strictly (signature + expiry).
	JwtAccess
	// JwtRefresh verifies a bearer access token leniently (signature only),
	// recovering a possibly stale identity for the refresh flow.
	JwtRefresh
)

func (m AuthMethod) String() string {
	switch m {
	case Public:
		return "public"
	case SessionAuth:
		return "session"
	case LocalCredential:
		return "local"
	case LocalSessionLogin:
		return "local-session"
	case JwtAccess:
		return "jwt-access"
	case JwtRefresh:
		return "jwt-refresh"
	default:
		return "unknown"
	}
}

// GuardConfig declares how a single handler is protected. Public short
// circuits everything else; Roles are the method-level declarations and
// override Group's.
type GuardConfig struct {
	Public bool
	Method AuthMethod
	Roles  []string
	Group  *GroupPolicy
}

// Guards evaluates authentication and authorization for both transports.
// Composition is explicit and sequential: public bypass, then the auth
// method, then the role policy. The first failing step aborts.
type Guards struct {
	validator *CredentialValidator
	tokens    *TokenService
	sessions  *SessionManager
	logger    Logger
}

// NewGuards wires the guard evaluator from its collaborators.
func NewGuards(validator *CredentialValidator, tokens *TokenService, sessions *SessionManager) *Guards {
	return &Guards{
		validator: validator,
		tokens:    tokens,
		sessions:  sessions,
		logger:    defLogger{},
	}
}

func (g *Guards) WithLogger(logger Logger) *Guards {
	g.logger = logger
	return g
}

// Tokens exposes the token service backing the jwt guards.
func (g *Guards) Tokens() *TokenService {
	return g.tokens
}

// Sessions exposes the session manager backing the session guards.
func (g *Guards) Sessions() *SessionManager {
	return g.sessions
}

// Evaluate runs the guard sequence against an execution context from either
// transport. On success the resolved identity (if any) is attached to the
// raw request.
func (g *Guards) Evaluate(ec ExecutionContext, cfg GuardConfig) error {
	if cfg.Public {
		return nil
	}

	identity, err := g.Verify(ec, cfg.Method)
	if err != nil {
		return err
	}

	raw, err := ResolveRequest(ec)
	if err != nil {
		return err
	}

	if cfg.Method != Public {
		AttachIdentity(raw, identity)
	}

	required := RequiredRoles(cfg.Roles, cfg.Group)
	if required == nil {
		return nil
	}

	if cfg.Method == Public {
		if !Authorize(nil, required) {
			return ErrInsufficientRole
		}
		return nil
	}

	if !Authorize(&identity, required) {
		return ErrInsufficientRole
	}

	return nil
}

// Verify applies one auth method to the request underneath the execution
// context and returns the resulting identity. Public returns the zero
// identity without error.
func (g *Guards) Verify(ec ExecutionContext, method AuthMethod) (Identity, error) {
	if method == Public {
		return Identity{}, nil
	}

	raw, err := ResolveRequest(ec)
	if err != nil {
		return Identity{}, err
	}

	switch method {
	case SessionAuth:
		return g.sessions.Current(raw)
	case LocalCredential:
		return g.verifyCredentials(raw)
	case LocalSessionLogin:
		identity, err := g.verifyCredentials(raw)
		if err != nil {
			return Identity{}, err
		}
		if err := g.sessions.Establish(raw, identity); err != nil {
			return Identity{}, err
		}
		return identity, nil
	case JwtAccess:
		token, err := BearerToken(raw)
		if err != nil {
			return Identity{}, err
		}
		claims, err := g.tokens.VerifyAccess(token)
		if err != nil {
			return Identity{}, err
		}
		return claims.Identity(), nil
	case JwtRefresh:
		token, err := BearerToken(raw)
		if err != nil {
			return Identity{}, err
		}
		claims, err := g.tokens.VerifyAccessLenient(token)
		if err != nil {
			return Identity{}, err
		}
		return claims.Identity(), nil
	default:
		return Identity{}, errors.New("unknown auth method", errors.CategoryInternal)
	}
}

// Middleware adapts a guard config into a route middleware for the direct
// transport. Failures are converted at this boundary; they never reach the
// wrapped handler.
func (g *Guards) Middleware(cfg GuardConfig, errorHandler ...router.ErrorHandler) router.MiddlewareFunc {
	handleErr := WriteAuthError
	if len(errorHandler) > 0 && errorHandler[0] != nil {
		handleErr = errorHandler[0]
	}

	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			if err := g.Evaluate(NewHTTPContext(c), cfg); err != nil {
				return handleErr(c, err)
			}
			return next(c)
		}
	}
}

type credentialBody struct {
	Username string `json:"username" form:"username"`
	Secret   string `json:"secret" form:"secret"`
}

func (b credentialBody) GetUsername() string { return b.Username }
func (b credentialBody) GetSecret() string   { return b.Secret }

// Validate will run validation rules
func (b credentialBody) Validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.Username, validation.Required),
		validation.Field(&b.Secret, validation.Required),
	)
}

func (g *Guards) verifyCredentials(c router.Context) (Identity, error) {
	payload := &credentialBody{}
	if err := c.Bind(payload); err != nil {
		return Identity{}, ErrInvalidCredentials
	}

	if err := payload.Validate(); err != nil {
		return Identity{}, ErrInvalidCredentials
	}

	return g.validator.ValidateUser(c.Context(), payload.Username, payload.Secret)
}

const bearerScheme = "Bearer"

// BearerToken extracts the bearer token from the Authorization header.
func BearerToken(c router.Context) (string, error) {
	header := c.GetString(router.HeaderAuthorization, "")
	if header == "" {
		return "", ErrInvalidToken
	}

	if len(header) <= len(bearerScheme)+1 ||
		!strings.EqualFold(header[:len(bearerScheme)], bearerScheme) ||
		header[len(bearerScheme)] != ' ' {
		return "", ErrTokenMalformed
	}

	return strings.TrimSpace(header[len(bearerScheme)+1:]), nil
}

// WriteAuthError converts a guard failure into a JSON response at the guard
// boundary. Unknown errors are treated as unauthenticated rather than leaked.
func WriteAuthError(c router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryAuth, "authentication failed").
			WithCode(errors.CodeUnauthorized)
	}

	status := richErr.Code
	if status == 0 {
		status = router.StatusUnauthorized
	}

	return c.JSON(status, map[string]any{
		"error": map[string]any{
			"message":   richErr.Message,
			"text_code": richErr.TextCode,
		},
	})
}
