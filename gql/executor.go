// Package gql implements the schema-query transport. Operations run
// behind the same guards as the direct HTTP endpoints; the per-operation
// execution context wraps the raw request one level deep, so guards
// unwrap it before reading headers or cookies.
package gql

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"

	"github.com/vireoco/authgate"
)

// Resolver handles a single named operation. The identity is the zero
// value for public operations.
type Resolver func(ctx context.Context, identity authgate.Identity, vars map[string]any) (any, error)

type operation struct {
	guard   authgate.GuardConfig
	resolve Resolver
}

// Executor dispatches named operations through guard evaluation. It is
// the wrapped transport counterpart of the route middleware.
type Executor struct {
	guards     *authgate.Guards
	group      *authgate.GroupPolicy
	operations map[string]operation
	logger     authgate.Logger
}

func NewExecutor(guards *authgate.Guards) *Executor {
	return &Executor{
		guards:     guards,
		operations: map[string]operation{},
		logger:     authgate.DefaultLogger(),
	}
}

// WithGroupPolicy sets the group level role policy. Operation level roles
// still take precedence over it.
func (e *Executor) WithGroupPolicy(group *authgate.GroupPolicy) *Executor {
	e.group = group
	return e
}

func (e *Executor) WithLogger(logger authgate.Logger) *Executor {
	e.logger = logger
	return e
}

// Register adds a named operation with its guard config. Registering the
// same name twice replaces the previous resolver.
func (e *Executor) Register(name string, guard authgate.GuardConfig, resolve Resolver) *Executor {
	if guard.Group == nil {
		guard.Group = e.group
	}
	e.operations[name] = operation{guard: guard, resolve: resolve}
	return e
}

// QueryRequest is the transport envelope for one operation.
type QueryRequest struct {
	Operation string         `json:"operation" form:"operation"`
	Variables map[string]any `json:"variables" form:"variables"`
}

// Validate will run validation rules
func (r QueryRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Operation, validation.Required),
	)
}

// Handler returns the route handler that executes operations. Mount it on
// a single POST route; guard evaluation happens per operation, not per
// route, so the route itself carries no middleware.
func (e *Executor) Handler() router.HandlerFunc {
	return func(c router.Context) error {
		req := new(QueryRequest)
		if err := c.Bind(req); err != nil {
			return writeErrors(c, errors.Wrap(err, errors.CategoryBadInput, "malformed query request").
				WithCode(errors.CodeBadRequest))
		}

		if err := req.Validate(); err != nil {
			return writeErrors(c, errors.Wrap(err, errors.CategoryBadInput, "malformed query request").
				WithCode(errors.CodeBadRequest))
		}

		op, ok := e.operations[req.Operation]
		if !ok {
			return writeErrors(c, errors.New("unknown operation", errors.CategoryNotFound).
				WithCode(errors.CodeNotFound))
		}

		ec := authgate.NewSchemaQueryContext(map[string]any{
			authgate.RequestPayloadKey: c,
		})

		if err := e.guards.Evaluate(ec, op.guard); err != nil {
			e.logger.Debug("gql operation %q rejected: %s", req.Operation, err)
			return writeErrors(c, err)
		}

		identity, _ := authgate.CurrentIdentity(ec)

		result, err := op.resolve(c.Context(), identity, req.Variables)
		if err != nil {
			return writeErrors(c, err)
		}

		return c.JSON(router.StatusOK, map[string]any{
			"data": map[string]any{
				req.Operation: result,
			},
		})
	}
}

// writeErrors renders the schema-query error envelope. Status stays 200
// for operation level failures, matching how wrapped transports report
// errors in-band.
func writeErrors(c router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "operation failed").
			WithCode(errors.CodeInternal)
	}

	return c.JSON(router.StatusOK, map[string]any{
		"errors": []map[string]any{
			{
				"message": richErr.Message,
				"extensions": map[string]any{
					"code": richErr.TextCode,
				},
			},
		},
	})
}
