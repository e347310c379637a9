package auth

import (
	"net/http"

	"github.com/fleetmanage/fleetmanage/internal/common/apperrors"
)

var (
	ErrAuth = apperrors.New("auth error").SetStatusCode(http.StatusInternalServerError)

	ErrInvalidToken       = ErrAuth.New("authentication failed").SetStatusCode(http.StatusUnauthorized).SetReason("invalid_token")
	ErrInvalidCredentials = ErrAuth.New("invalid email or password").SetStatusCode(http.StatusUnauthorized).SetReason("invalid_credentials")
	ErrUnableToIssueToken = ErrAuth.New("unable to issue token")
	ErrNoSigningKey       = ErrAuth.New("token signing key is not configured")
	ErrInvalidHash        = ErrAuth.New("invalid password hash")
)
