// Package reqlog provides passive request logging middleware. It tags log
// lines with the caller identity when the request carries a decodable
// bearer token, without enforcing anything about that token.
package reqlog

import (
	"strings"
	"time"

	"github.com/goliatone/go-router"
)

// Claims is the decoded view the logger cares about. The jwt claim types
// already implement it.
type Claims interface {
	GetSubject() (string, error)
}

// TokenDecoder recovers claims from a raw bearer token. Decoding is best
// effort; return nil when nothing can be recovered.
type TokenDecoder func(tokenString string) Claims

// Logger is the minimal logging surface.
type Logger interface {
	Info(format string, args ...any)
}

type Config struct {
	// Filter skips logging for matching requests.
	Filter func(router.Context) bool
	// Decoder recovers a subject from the bearer token, if any. The token
	// is never verified here; an expired or forged token still names a
	// subject in the log line.
	Decoder TokenDecoder
	Logger  Logger
	// Clock for testing.
	Now func() time.Time
}

// New creates the request logging middleware.
func New(config ...Config) router.MiddlewareFunc {
	cfg := Config{}
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			if cfg.Filter != nil && cfg.Filter(c) {
				return next(c)
			}

			start := cfg.Now()
			err := next(c)

			if cfg.Logger != nil {
				cfg.Logger.Info("%s %s user=%s duration=%s",
					c.Method(),
					c.Path(),
					subjectFor(cfg.Decoder, c),
					cfg.Now().Sub(start),
				)
			}

			return err
		}
	}
}

func subjectFor(decoder TokenDecoder, c router.Context) string {
	if decoder == nil {
		return "anonymous"
	}

	token := bearerToken(c)
	if token == "" {
		return "anonymous"
	}

	claims := decoder(token)
	if claims == nil {
		return "anonymous"
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "anonymous"
	}

	return sub
}

func bearerToken(c router.Context) string {
	header := c.GetString(router.HeaderAuthorization, "")
	if header == "" {
		return ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
