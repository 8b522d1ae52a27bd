package gql_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vireoco/authgate"
	"github.com/vireoco/authgate/gql"
	"github.com/vireoco/authgate/provider"
	"github.com/vireoco/authgate/stores"
)

// queryContext implements router.Context explicitly, the way the root
// package's test fake does. It captures the JSON response and carries
// request locals for identity attachment.
type queryContext struct {
	ctx  context.Context
	body []byte
	auth string

	locals map[any]any

	jsonCode int
	jsonBody any
}

func newQueryContext(operation, auth string) *queryContext {
	body, _ := json.Marshal(map[string]any{"operation": operation})
	return &queryContext{
		ctx:    context.Background(),
		body:   body,
		auth:   auth,
		locals: map[any]any{},
	}
}

func (c *queryContext) Context() context.Context       { return c.ctx }
func (c *queryContext) SetContext(ctx context.Context) { c.ctx = ctx }

func (c *queryContext) Bind(i any) error { return json.Unmarshal(c.body, i) }

func (c *queryContext) JSON(code int, val any) error {
	c.jsonCode = code
	c.jsonBody = val
	return nil
}

func (c *queryContext) GetString(key, def string) string {
	if key == router.HeaderAuthorization && c.auth != "" {
		return c.auth
	}
	return def
}

func (c *queryContext) Locals(key any, value ...any) any {
	if len(value) > 0 {
		c.locals[key] = value[0]
		return value[0]
	}
	return c.locals[key]
}

func (c *queryContext) Next() error                                              { return nil }
func (c *queryContext) Path() string                                             { return "/graphql" }
func (c *queryContext) Method() string                                           { return "POST" }
func (c *queryContext) Body() []byte                                             { return c.body }
func (c *queryContext) Status(int) router.Context                                { return c }
func (c *queryContext) SendString(string) error                                  { return nil }
func (c *queryContext) Send([]byte) error                                        { return nil }
func (c *queryContext) NoContent(int) error                                      { return nil }
func (c *queryContext) Render(string, any, ...string) error                      { return nil }
func (c *queryContext) Redirect(string, ...int) error                            { return nil }
func (c *queryContext) RedirectToRoute(string, router.ViewContext, ...int) error { return nil }
func (c *queryContext) RedirectBack(string, ...int) error                        { return nil }
func (c *queryContext) SetHeader(string, string) router.Context                  { return c }
func (c *queryContext) Header(string) string                                     { return "" }
func (c *queryContext) Get(_ string, def any) any                                { return def }
func (c *queryContext) GetBool(_ string, def bool) bool                          { return def }
func (c *queryContext) GetInt(_ string, def int) int                             { return def }
func (c *queryContext) Set(key string, val any)                                  { c.locals[key] = val }
func (c *queryContext) BindJSON(i any) error                                     { return c.Bind(i) }
func (c *queryContext) BindXML(any) error                                        { return nil }
func (c *queryContext) BindQuery(any) error                                      { return nil }
func (c *queryContext) CookieParser(any) error                                   { return nil }
func (c *queryContext) Cookie(*router.Cookie)                                    {}
func (c *queryContext) Cookies(string, ...string) string                         { return "" }
func (c *queryContext) Param(string, ...string) string                           { return "" }
func (c *queryContext) ParamsInt(_ string, def int) int                          { return def }
func (c *queryContext) Query(_, def string) string                               { return def }
func (c *queryContext) QueryInt(_ string, def int) int                           { return def }
func (c *queryContext) Queries() map[string]string                               { return nil }
func (c *queryContext) OriginalURL() string                                      { return "/graphql" }
func (c *queryContext) OnNext(func() error)                                      {}
func (c *queryContext) Referer() string                                          { return "" }

type tokenConfig struct{}

func (tokenConfig) GetAccessSecret() string      { return "access-secret" }
func (tokenConfig) GetRefreshSecret() string     { return "refresh-secret" }
func (tokenConfig) GetAccessTTL() time.Duration  { return time.Hour }
func (tokenConfig) GetRefreshTTL() time.Duration { return time.Hour }

func newExecutor(t *testing.T) (*gql.Executor, *authgate.TokenService) {
	t.Helper()

	tokens := authgate.NewTokenService(tokenConfig{}, nil)
	sessions := authgate.NewSessionManager(stores.NewMemoryStore())
	validator := authgate.NewCredentialValidator(provider.NewStaticStore())
	guards := authgate.NewGuards(validator, tokens, sessions)

	executor := gql.NewExecutor(guards)

	executor.Register("user",
		authgate.GuardConfig{Method: authgate.JwtAccess, Roles: []string{"test"}},
		func(_ context.Context, identity authgate.Identity, _ map[string]any) (any, error) {
			return identity, nil
		})

	executor.Register("ping",
		authgate.GuardConfig{Public: true},
		func(context.Context, authgate.Identity, map[string]any) (any, error) {
			return "pong", nil
		})

	return executor, tokens
}

func dataFor(t *testing.T, body any, operation string) any {
	t.Helper()
	envelope, ok := body.(map[string]any)
	require.True(t, ok)
	data, ok := envelope["data"].(map[string]any)
	require.True(t, ok, "expected data envelope, got %v", body)
	return data[operation]
}

func errorCode(t *testing.T, body any) string {
	t.Helper()
	envelope, ok := body.(map[string]any)
	require.True(t, ok)
	errs, ok := envelope["errors"].([]map[string]any)
	require.True(t, ok, "expected errors envelope, got %v", body)
	require.NotEmpty(t, errs)
	ext, ok := errs[0]["extensions"].(map[string]any)
	require.True(t, ok)
	code, _ := ext["code"].(string)
	return code
}

func TestExecutor_PublicOperation(t *testing.T) {
	executor, _ := newExecutor(t)

	c := newQueryContext("ping", "")
	require.NoError(t, executor.Handler()(c))

	assert.Equal(t, router.StatusOK, c.jsonCode)
	assert.Equal(t, "pong", dataFor(t, c.jsonBody, "ping"))
}

func TestExecutor_GuardedOperation(t *testing.T) {
	executor, tokens := newExecutor(t)

	pair, err := tokens.Issue(authgate.Identity{
		UserID:   "user-123",
		Username: "alice",
		Roles:    []string{"test"},
	})
	require.NoError(t, err)

	c := newQueryContext("user", "Bearer "+pair.AccessToken)
	require.NoError(t, executor.Handler()(c))

	identity, ok := dataFor(t, c.jsonBody, "user").(authgate.Identity)
	require.True(t, ok)
	assert.Equal(t, "alice", identity.Username)
}

func TestExecutor_GuardedOperation_NoToken(t *testing.T) {
	executor, _ := newExecutor(t)

	c := newQueryContext("user", "")
	require.NoError(t, executor.Handler()(c))

	assert.Equal(t, "INVALID_TOKEN", errorCode(t, c.jsonBody))
}

func TestExecutor_GuardedOperation_WrongRole(t *testing.T) {
	executor, tokens := newExecutor(t)

	pair, err := tokens.Issue(authgate.Identity{
		UserID:   "user-456",
		Username: "bob",
		Roles:    []string{"other"},
	})
	require.NoError(t, err)

	c := newQueryContext("user", "Bearer "+pair.AccessToken)
	require.NoError(t, executor.Handler()(c))

	assert.Equal(t, "INSUFFICIENT_ROLE", errorCode(t, c.jsonBody))
}

func TestExecutor_UnknownOperation(t *testing.T) {
	executor, _ := newExecutor(t)

	c := newQueryContext("missing", "")
	require.NoError(t, executor.Handler()(c))

	envelope, ok := c.jsonBody.(map[string]any)
	require.True(t, ok)
	assert.Contains(t, envelope, "errors")
}

func TestExecutor_ResolverError(t *testing.T) {
	executor, _ := newExecutor(t)

	executor.Register("boom",
		authgate.GuardConfig{Public: true},
		func(context.Context, authgate.Identity, map[string]any) (any, error) {
			return nil, errors.New("resolver blew up", errors.CategoryInternal)
		})

	c := newQueryContext("boom", "")
	require.NoError(t, executor.Handler()(c))

	envelope, ok := c.jsonBody.(map[string]any)
	require.True(t, ok)
	assert.Contains(t, envelope, "errors")
}

func TestExecutor_GroupPolicyAppliesToOperations(t *testing.T) {
	tokens := authgate.NewTokenService(tokenConfig{}, nil)
	sessions := authgate.NewSessionManager(stores.NewMemoryStore())
	validator := authgate.NewCredentialValidator(provider.NewStaticStore())
	guards := authgate.NewGuards(validator, tokens, sessions)

	executor := gql.NewExecutor(guards).
		WithGroupPolicy(&authgate.GroupPolicy{Roles: []string{"supervisor"}})

	executor.Register("restricted",
		authgate.GuardConfig{Method: authgate.JwtAccess},
		func(_ context.Context, identity authgate.Identity, _ map[string]any) (any, error) {
			return identity, nil
		})

	pair, err := tokens.Issue(authgate.Identity{
		UserID:   "user-123",
		Username: "alice",
		Roles:    []string{"test"},
	})
	require.NoError(t, err)

	c := newQueryContext("restricted", "Bearer "+pair.AccessToken)
	require.NoError(t, executor.Handler()(c))

	assert.Equal(t, "INSUFFICIENT_ROLE", errorCode(t, c.jsonBody))
}
