package authgate

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-router"
)

// RegisterAuthRoutes mounts the authentication endpoints on the given
// router. Guard middleware runs before every handler, so by the time a
// handler executes the request identity is already attached.
func RegisterAuthRoutes[T any](app router.Router[T], opts ...AuthControllerOption) {
	controller := NewAuthController(opts...)
	guards := controller.Guards

	app.
		Post(
			controller.Routes.Login,
			controller.Login,
			guards.Middleware(GuardConfig{Method: LocalSessionLogin}, controller.ErrorHandler),
		).
		SetName("auth.login")

	app.
		Get(
			controller.Routes.Logout,
			controller.Logout,
		).
		SetName("auth.logout")

	app.
		Get(
			controller.Routes.Check,
			controller.Check,
			guards.Middleware(GuardConfig{Method: SessionAuth}, controller.ErrorHandler),
		).
		SetName("auth.check")

	app.
		Post(
			controller.Routes.JwtLogin,
			controller.JwtLogin,
			guards.Middleware(GuardConfig{Method: LocalCredential}, controller.ErrorHandler),
		).
		SetName("auth.jwt.login")

	app.
		Get(
			controller.Routes.JwtCheck,
			controller.JwtCheck,
			guards.Middleware(GuardConfig{Method: JwtAccess}, controller.ErrorHandler),
		).
		SetName("auth.jwt.check")

	app.
		Post(
			controller.Routes.JwtRefresh,
			controller.JwtRefresh,
			guards.Middleware(GuardConfig{Method: JwtRefresh}, controller.ErrorHandler),
		).
		SetName("auth.jwt.refresh")

	app.
		Get(controller.Routes.Health, controller.Health).
		SetName("auth.health")
}

type AuthControllerRoutes struct {
	Login      string
	Logout     string
	Check      string
	JwtLogin   string
	JwtCheck   string
	JwtRefresh string
	Health     string
}

type AuthController struct {
	Logger       Logger
	Guards       *Guards
	Routes       *AuthControllerRoutes
	ErrorHandler router.ErrorHandler
}

type AuthControllerOption func(*AuthController) *AuthController

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger:       defLogger{},
		ErrorHandler: WriteAuthError,
		Routes: &AuthControllerRoutes{
			Login:      "/auth/login",
			Logout:     "/auth/logout",
			Check:      "/auth/check",
			JwtLogin:   "/auth/jwt/login",
			JwtCheck:   "/auth/jwt/check",
			JwtRefresh: "/auth/jwt/refresh",
			Health:     "/health",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Guards == nil {
		panic("Missing Guards in auth controller...")
	}

	return c
}

func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Logger = logger
		return c
	}
}

func WithGuards(guards *Guards) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Guards = guards
		return c
	}
}

func WithRoutes(routes *AuthControllerRoutes) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Routes = routes
		return c
	}
}

func WithErrorHandler(handler router.ErrorHandler) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.ErrorHandler = handler
		return c
	}
}

// Login runs after the LocalSessionLogin guard, which validates the
// credential payload and drops the session cookie. The handler only
// echoes the authenticated identity back.
func (a *AuthController) Login(ctx router.Context) error {
	identity, ok := RequestIdentity(ctx)
	if !ok {
		return a.ErrorHandler(ctx, ErrUnauthenticated)
	}
	return ctx.JSON(router.StatusOK, identity)
}

// Logout destroys the current session if one exists. Requests without
// a session cookie are not an error, the redirect happens either way.
func (a *AuthController) Logout(ctx router.Context) error {
	if err := a.Guards.Sessions().Destroy(ctx); err != nil {
		a.Logger.Warn("logout: destroy session: %s", err)
	}
	return ctx.Redirect("/", router.StatusSeeOther)
}

func (a *AuthController) Check(ctx router.Context) error {
	identity, ok := RequestIdentity(ctx)
	if !ok {
		return a.ErrorHandler(ctx, ErrUnauthenticated)
	}
	return ctx.JSON(router.StatusOK, identity)
}

func (a *AuthController) JwtLogin(ctx router.Context) error {
	identity, ok := RequestIdentity(ctx)
	if !ok {
		return a.ErrorHandler(ctx, ErrUnauthenticated)
	}

	pair, err := a.Guards.Tokens().Issue(identity)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, pair)
}

func (a *AuthController) JwtCheck(ctx router.Context) error {
	identity, ok := RequestIdentity(ctx)
	if !ok {
		return a.ErrorHandler(ctx, ErrUnauthenticated)
	}
	return ctx.JSON(router.StatusOK, identity)
}

// RefreshRequest is the jwt/refresh payload.
type RefreshRequest struct {
	RefreshToken string `form:"refreshToken" json:"refreshToken"`
}

// Validate will run validation rules
func (r RefreshRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.RefreshToken, validation.Required),
	)
}

// JwtRefresh runs after the JwtRefresh guard, so the identity in the
// request is whatever the bearer access token carried at issuance. The
// body token must verify with the refresh secret and belong to the same
// subject before a new pair is minted from those same claims.
func (a *AuthController) JwtRefresh(ctx router.Context) error {
	identity, ok := RequestIdentity(ctx)
	if !ok {
		return a.ErrorHandler(ctx, ErrUnauthenticated)
	}

	payload := new(RefreshRequest)
	if err := ctx.Bind(payload); err != nil {
		return a.ErrorHandler(ctx, ErrInvalidRefreshToken)
	}

	if err := payload.Validate(); err != nil {
		return a.ErrorHandler(ctx, ErrInvalidRefreshToken)
	}

	claims, err := a.Guards.Tokens().VerifyRefresh(payload.RefreshToken)
	if err != nil {
		return a.ErrorHandler(ctx, ErrInvalidRefreshToken)
	}

	if claims.Subject() != identity.UserID {
		return a.ErrorHandler(ctx, ErrInvalidRefreshToken)
	}

	pair, err := a.Guards.Tokens().Issue(identity)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, pair)
}

func (a *AuthController) Health(ctx router.Context) error {
	return ctx.JSON(router.StatusOK, map[string]string{
		"status": "ok",
	})
}
