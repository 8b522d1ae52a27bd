package authgate

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// TokenPair is the result of issuing tokens for an identity.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// TokenService signs and verifies the access/refresh token pair. The two
// token types use independent secrets so a compromise of one does not
// compromise the other. All fields are immutable after construction.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	logger        Logger
}

// NewTokenService creates a new TokenService instance
func NewTokenService(cfg Config, logger Logger) *TokenService {
	if logger == nil {
		logger = defLogger{}
	}
	return &TokenService{
		accessSecret:  []byte(cfg.GetAccessSecret()),
		refreshSecret: []byte(cfg.GetRefreshSecret()),
		accessTTL:     cfg.GetAccessTTL(),
		refreshTTL:    cfg.GetRefreshTTL(),
		logger:        logger,
	}
}

// Issue mints an access token carrying the full identity and a refresh token
// carrying only the subject.
func (ts *TokenService) Issue(identity Identity) (*TokenPair, error) {
	if identity.IsZero() {
		return nil, errors.New("identity is required", errors.CategoryBadInput)
	}

	now := time.Now()

	access := &AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.accessTTL)),
		},
		Username: identity.Username,
		Roles:    identity.Roles,
	}

	refresh := &RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.refreshTTL)),
		},
	}

	accessToken, err := ts.sign(access, ts.accessSecret)
	if err != nil {
		return nil, err
	}

	refreshToken, err := ts.sign(refresh, ts.refreshSecret)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// VerifyAccess parses and validates an access token, enforcing both the
// signature and the expiry.
func (ts *TokenService) VerifyAccess(tokenString string) (*AccessClaims, error) {
	return ts.parseAccess(tokenString)
}

// VerifyAccessLenient parses an access token enforcing the signature but
// ignoring expiry. The refresh flow uses it to recover the identity embedded
// in an expired access token.
func (ts *TokenService) VerifyAccessLenient(tokenString string) (*AccessClaims, error) {
	return ts.parseAccess(tokenString, jwt.WithoutClaimsValidation())
}

// VerifyRefresh parses and validates a refresh token with the refresh
// secret. The refresh token's own expiry is always enforced.
func (ts *TokenService) VerifyRefresh(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, ts.keyfunc(ts.refreshSecret))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithTextCode(ErrTokenMalformed.TextCode)
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// DecodeBestEffort decodes an access token without verifying anything. It
// never fails; malformed input yields nil. Passive observers use it to tag a
// user id without gating the request.
func (ts *TokenService) DecodeBestEffort(tokenString string) *AccessClaims {
	claims := &AccessClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil
	}
	return claims
}

func (ts *TokenService) sign(claims jwt.Claims, secret []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign token")
	}
	return signed, nil
}

func (ts *TokenService) parseAccess(tokenString string, opts ...jwt.ParserOption) (*AccessClaims, error) {
	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, ts.keyfunc(ts.accessSecret), opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithTextCode(ErrTokenMalformed.TextCode)
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func (ts *TokenService) keyfunc(secret []byte) jwt.Keyfunc {
	return func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("TokenService encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	}
}
