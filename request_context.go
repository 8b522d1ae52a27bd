package authgate

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

// ContextKind tags which transport produced an execution context.
type ContextKind int

const (
	// KindHTTP marks a direct transport context: the raw request is the
	// context itself.
	KindHTTP ContextKind = iota
	// KindSchemaQuery marks a wrapped transport context: the raw request is
	// nested one level inside the context payload.
	KindSchemaQuery
)

// RequestPayloadKey is the payload key under which wrapped transports nest
// the raw request.
const RequestPayloadKey = "req"

// IdentityLocalsKey is the request-local key holding the attached identity.
const IdentityLocalsKey = "identity"

// ExecutionContext carries a request through guard evaluation regardless of
// which transport produced it.
type ExecutionContext struct {
	kind    ContextKind
	http    router.Context
	payload map[string]any
}

// NewHTTPContext wraps a direct transport request.
func NewHTTPContext(c router.Context) ExecutionContext {
	return ExecutionContext{kind: KindHTTP, http: c}
}

// NewSchemaQueryContext wraps a schema-query execution payload. The raw
// request is expected under RequestPayloadKey.
func NewSchemaQueryContext(payload map[string]any) ExecutionContext {
	return ExecutionContext{kind: KindSchemaQuery, payload: payload}
}

// Kind returns the transport tag of the context.
func (e ExecutionContext) Kind() ContextKind {
	return e.kind
}

// ResolveRequest returns the raw request underneath an execution context.
// Every guard and the current-identity accessor go through this single
// adapter, so no authentication logic branches on transport beyond it.
func ResolveRequest(ec ExecutionContext) (router.Context, error) {
	switch ec.kind {
	case KindHTTP:
		if ec.http == nil {
			return nil, errors.New("execution context has no request", errors.CategoryInternal)
		}
		return ec.http, nil
	case KindSchemaQuery:
		raw, ok := ec.payload[RequestPayloadKey].(router.Context)
		if !ok || raw == nil {
			return nil, errors.New("schema-query context has no nested request", errors.CategoryInternal)
		}
		return raw, nil
	default:
		return nil, errors.New("unknown execution context kind", errors.CategoryInternal)
	}
}

var identityCtxKey = &contextKey{"identity"}

type contextKey struct {
	name string
}

// WithIdentity sets the Identity in the given context
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey, identity)
}

// IdentityFromContext finds the identity in the standard context.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	raw, ok := ctx.Value(identityCtxKey).(Identity)
	return raw, ok
}

// AttachIdentity binds the identity to the raw request, both as a request
// local and on the standard context. Guards attach at most one identity per
// request; attaching replaces rather than merges.
func AttachIdentity(c router.Context, identity Identity) {
	c.Locals(IdentityLocalsKey, identity)
	c.SetContext(WithIdentity(c.Context(), identity))
}

// CurrentIdentity returns the identity attached to the request underneath
// the execution context, if any.
func CurrentIdentity(ec ExecutionContext) (Identity, bool) {
	raw, err := ResolveRequest(ec)
	if err != nil {
		return Identity{}, false
	}
	return RequestIdentity(raw)
}

// RequestIdentity returns the identity attached to a raw request, if any.
func RequestIdentity(c router.Context) (Identity, bool) {
	val := c.Locals(IdentityLocalsKey)
	if val == nil {
		return Identity{}, false
	}
	identity, ok := val.(Identity)
	return identity, ok
}
