package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// TokenIssuer signs access tokens for logged in users.
type TokenIssuer struct {
	key      []byte
	issuer   string
	audience string
	validity time.Duration
	now      func() time.Time
}

func NewTokenIssuer(signingKey, issuer, audience string, validity time.Duration) (*TokenIssuer, error) {
	if signingKey == "" {
		return nil, ErrNoSigningKey
	}
	return &TokenIssuer{
		key:      []byte(signingKey),
		issuer:   issuer,
		audience: audience,
		validity: validity,
		now:      time.Now,
	}, nil
}

// Issue returns a signed token for id and its expiry.
func (ti *TokenIssuer) Issue(id Identity) (string, time.Time, error) {
	jti, err := gonanoid.New()
	if err != nil {
		return "", time.Time{}, ErrUnableToIssueToken.Err(err)
	}
	now := ti.now()
	exp := now.Add(ti.validity)
	claims := Claims{
		TenantID: id.TenantClaim,
		Email:    id.Email,
		Role:     id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ti.issuer,
			Subject:   id.Subject,
			Audience:  jwt.ClaimStrings{ti.audience},
			ExpiresAt: jwt.NewNumericDate(exp),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        jti,
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ti.key)
	if err != nil {
		return "", time.Time{}, ErrUnableToIssueToken.Err(err)
	}
	return signed, exp, nil
}
