package authgate_test

import (
	"context"
	"encoding/json"
	"time"

	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/mock"

	"github.com/vireoco/authgate"
)

// MockIdentityStore implements authgate.IdentityStore
type MockIdentityStore struct {
	mock.Mock
}

func (m *MockIdentityStore) Fetch(ctx context.Context, username string) (*authgate.UserRecord, error) {
	args := m.Called(ctx, username)
	record, _ := args.Get(0).(*authgate.UserRecord)
	return record, args.Error(1)
}

// MockSessionStore implements authgate.SessionStore
type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) Get(ctx context.Context, id string) ([]byte, error) {
	args := m.Called(ctx, id)
	payload, _ := args.Get(0).([]byte)
	return payload, args.Error(1)
}

func (m *MockSessionStore) Set(ctx context.Context, id string, payload []byte, ttl time.Duration) error {
	args := m.Called(ctx, id, payload, ttl)
	return args.Error(0)
}

func (m *MockSessionStore) Destroy(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// testConfig implements authgate.Config
type testConfig struct {
	accessSecret  string
	refreshSecret string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func newTestConfig() testConfig {
	return testConfig{
		accessSecret:  "access-secret",
		refreshSecret: "refresh-secret",
		accessTTL:     time.Hour,
		refreshTTL:    7 * 24 * time.Hour,
	}
}

func (c testConfig) GetAccessSecret() string      { return c.accessSecret }
func (c testConfig) GetRefreshSecret() string     { return c.refreshSecret }
func (c testConfig) GetAccessTTL() time.Duration  { return c.accessTTL }
func (c testConfig) GetRefreshTTL() time.Duration { return c.refreshTTL }

// fakeContext is a stateful router.Context for exercising handlers and
// middleware without a server. Bind unmarshals BodyJSON, cookie writes land
// in SetCookies, JSON captures the rendered response.
type fakeContext struct {
	ctx     context.Context
	MethodM string
	PathM   string

	BodyJSON []byte
	BindErr  error

	HeadersM map[string]string
	CookiesM map[string]string
	LocalsM  map[any]any

	SetCookies []*router.Cookie

	JSONCode int
	JSONBody any

	RedirectPath   string
	RedirectStatus int

	StatusCode int
	NextCalled bool
}

func newFakeContext() *fakeContext {
	return &fakeContext{
		ctx:      context.Background(),
		MethodM:  "GET",
		PathM:    "/",
		HeadersM: map[string]string{},
		CookiesM: map[string]string{},
		LocalsM:  map[any]any{},
	}
}

func (f *fakeContext) Next() error {
	f.NextCalled = true
	return nil
}

func (f *fakeContext) Context() context.Context       { return f.ctx }
func (f *fakeContext) SetContext(ctx context.Context) { f.ctx = ctx }

func (f *fakeContext) Path() string   { return f.PathM }
func (f *fakeContext) Method() string { return f.MethodM }
func (f *fakeContext) Body() []byte   { return f.BodyJSON }

func (f *fakeContext) Status(code int) router.Context {
	f.StatusCode = code
	return f
}

func (f *fakeContext) SendString(string) error { return nil }
func (f *fakeContext) Send([]byte) error       { return nil }

func (f *fakeContext) JSON(code int, val any) error {
	f.JSONCode = code
	f.JSONBody = val
	return nil
}

func (f *fakeContext) NoContent(code int) error {
	f.StatusCode = code
	return nil
}

func (f *fakeContext) Render(string, any, ...string) error { return nil }

func (f *fakeContext) Redirect(path string, status ...int) error {
	f.RedirectPath = path
	if len(status) > 0 {
		f.RedirectStatus = status[0]
	}
	return nil
}

func (f *fakeContext) RedirectToRoute(string, router.ViewContext, ...int) error { return nil }
func (f *fakeContext) RedirectBack(string, ...int) error                        { return nil }

func (f *fakeContext) SetHeader(key, val string) router.Context {
	f.HeadersM[key] = val
	return f
}

func (f *fakeContext) Header(key string) string { return f.HeadersM[key] }

func (f *fakeContext) Get(key string, def any) any {
	if v, ok := f.LocalsM[key]; ok {
		return v
	}
	return def
}

func (f *fakeContext) GetBool(string, bool) bool { return false }
func (f *fakeContext) GetInt(string, int) int    { return 0 }

func (f *fakeContext) Set(key string, val any) { f.LocalsM[key] = val }

func (f *fakeContext) Bind(i any) error {
	if f.BindErr != nil {
		return f.BindErr
	}
	if f.BodyJSON == nil {
		return nil
	}
	return json.Unmarshal(f.BodyJSON, i)
}

func (f *fakeContext) BindJSON(i any) error   { return f.Bind(i) }
func (f *fakeContext) BindXML(any) error      { return nil }
func (f *fakeContext) BindQuery(any) error    { return nil }
func (f *fakeContext) CookieParser(any) error { return nil }

func (f *fakeContext) Cookie(cookie *router.Cookie) {
	f.SetCookies = append(f.SetCookies, cookie)
	f.CookiesM[cookie.Name] = cookie.Value
}

func (f *fakeContext) Cookies(key string, def ...string) string {
	if v, ok := f.CookiesM[key]; ok {
		return v
	}
	if len(def) > 0 {
		return def[0]
	}
	return ""
}

func (f *fakeContext) Param(string, ...string) string { return "" }
func (f *fakeContext) ParamsInt(string, int) int      { return 0 }
func (f *fakeContext) Query(_, def string) string     { return def }
func (f *fakeContext) QueryInt(_ string, def int) int { return def }
func (f *fakeContext) Queries() map[string]string     { return nil }

func (f *fakeContext) GetString(key, def string) string {
	if v, ok := f.HeadersM[key]; ok {
		return v
	}
	return def
}

func (f *fakeContext) Locals(key any, value ...any) any {
	if len(value) > 0 {
		f.LocalsM[key] = value[0]
		return value[0]
	}
	return f.LocalsM[key]
}

func (f *fakeContext) OriginalURL() string { return f.PathM }
func (f *fakeContext) OnNext(func() error) {}
func (f *fakeContext) Referer() string     { return "" }
