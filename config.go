package authgate

import (
	"time"

	"github.com/caarlos0/env/v11"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-errors"
)

// EnvConfig is the environment backed Config implementation. Secrets are
// required; a missing secret aborts process bring-up rather than being
// discovered on the first request.
type EnvConfig struct {
	AccessSecret  string        `env:"JWT_SECRET,required"`
	RefreshSecret string        `env:"JWT_REFRESH_SECRET,required"`
	AccessTTL     time.Duration `env:"JWT_ACCESS_TTL" envDefault:"24h"`
	RefreshTTL    time.Duration `env:"JWT_REFRESH_TTL" envDefault:"168h"`

	SessionCookie string        `env:"SESSION_COOKIE" envDefault:"session_id"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	// SessionStoreURL selects the session backend. A redis:// URL uses
	// redis, empty falls back to the in process store.
	SessionStoreURL string `env:"SESSION_STORE_URL"`

	ServerAddress string `env:"SERVER_ADDRESS" envDefault:":9876"`
}

// LoadConfig reads configuration from the environment.
func LoadConfig() (*EnvConfig, error) {
	cfg := &EnvConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "unable to load configuration from environment").
			WithTextCode(TextCodeMissingConfig).
			WithCode(errors.CodeBadRequest)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "invalid configuration").
			WithTextCode(TextCodeMissingConfig).
			WithCode(errors.CodeBadRequest)
	}

	return cfg, nil
}

// Validate will run validation rules
func (c EnvConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.AccessSecret, validation.Required),
		validation.Field(&c.RefreshSecret, validation.Required),
		validation.Field(&c.AccessTTL, validation.Required, validation.Min(time.Minute)),
		validation.Field(&c.RefreshTTL, validation.Required, validation.Min(time.Minute)),
		validation.Field(&c.SessionCookie, validation.Required),
	)
}

func (c *EnvConfig) GetAccessSecret() string  { return c.AccessSecret }
func (c *EnvConfig) GetRefreshSecret() string { return c.RefreshSecret }

func (c *EnvConfig) GetAccessTTL() time.Duration  { return c.AccessTTL }
func (c *EnvConfig) GetRefreshTTL() time.Duration { return c.RefreshTTL }
