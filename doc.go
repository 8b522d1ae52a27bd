// Package authgate provides a dual-identity authentication layer: cookie
// backed sessions and signed access/refresh token pairs, enforced by the
// same guard pipeline over two transports.
//
// Identities:
//   - Session: the login flow validates credentials, serializes the
//     Identity into a SessionStore entry, and drops an opaque cookie.
//     Session reads deserialize exactly what was stored; they never
//     re-query the identity store.
//   - Token pair: TokenService signs an access token (subject, username,
//     roles) and a refresh token (subject only) with separate secrets and
//     lifetimes. Refresh reissues a pair from the stale access claims.
//
// Guards:
//   - Guards.Evaluate runs one of the AuthMethod mechanisms against an
//     ExecutionContext, attaches the resulting Identity to the request,
//     and applies role policy. Public short-circuits everything.
//   - The direct transport uses Guards.Middleware on routes; the wrapped
//     transport (package gql) evaluates the same configs per operation,
//     unwrapping the raw request from the execution context payload.
//
// Authorization:
//   - RequiredRoles merges operation and group role declarations, with
//     the operation level winning when both declare. Authorize grants on
//     any shared role.
package authgate
