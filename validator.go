package authgate

import (
	"context"

	"github.com/goliatone/go-errors"
)

// CredentialValidator checks a submitted username/secret pair against the
// identity store and produces the canonical identity on success. The stored
// secret never leaves this type.
type CredentialValidator struct {
	store  IdentityStore
	logger Logger
}

// NewCredentialValidator returns a validator backed by the given store.
func NewCredentialValidator(store IdentityStore) *CredentialValidator {
	return &CredentialValidator{
		store:  store,
		logger: defLogger{},
	}
}

func (v *CredentialValidator) WithLogger(logger Logger) *CredentialValidator {
	v.logger = logger
	return v
}

// ValidateUser resolves the username, compares the submitted secret to the
// stored hash, and returns the identity with the secret stripped. Unknown
// usernames and mismatched secrets both produce ErrInvalidCredentials.
func (v *CredentialValidator) ValidateUser(ctx context.Context, username, secret string) (Identity, error) {
	record, err := v.store.Fetch(ctx, username)
	if err != nil {
		if errors.IsNotFound(err) {
			return Identity{}, ErrInvalidCredentials
		}
		return Identity{}, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user during verification")
	}

	if record == nil {
		return Identity{}, ErrInvalidCredentials
	}

	if err := CompareSecretAndHash(secret, record.SecretHash); err != nil {
		v.logger.Debug("credential mismatch", "username", username)
		return Identity{}, ErrInvalidCredentials
	}

	return Identity{
		UserID:   record.ID,
		Username: record.Name,
		Roles:    record.Roles,
	}, nil
}
