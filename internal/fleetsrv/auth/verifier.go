package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/fleetmanage/fleetmanage/internal/common/httpx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

const (
	authHeaderPrefix = "Bearer "
	clockLeeway      = 2 * time.Minute
)

// Claims are the claims of a fleet access token.
type Claims struct {
	TenantID string `json:"tenantId,omitempty"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Verifier checks HS256 bearer tokens issued for this api.
type Verifier struct {
	key    []byte
	parser *jwt.Parser
}

func NewVerifier(signingKey, issuer, audience string, now func() time.Time) (*Verifier, error) {
	if signingKey == "" {
		return nil, ErrNoSigningKey
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audience),
		jwt.WithLeeway(clockLeeway),
		jwt.WithExpirationRequired(),
	}
	if now != nil {
		opts = append(opts, jwt.WithTimeFunc(now))
	}
	return &Verifier{key: []byte(signingKey), parser: jwt.NewParser(opts...)}, nil
}

// Verify parses and validates token and returns its identity.
func (v *Verifier) Verify(token string) (Identity, error) {
	claims := &Claims{}
	_, err := v.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return v.key, nil
	})
	if err != nil {
		return Identity{}, ErrInvalidToken.Err(err)
	}
	if claims.Subject == "" {
		return Identity{}, ErrInvalidToken.Msg("token has no subject")
	}
	return Identity{
		Subject:     claims.Subject,
		TenantClaim: claims.TenantID,
		Email:       claims.Email,
		Role:        claims.Role,
	}, nil
}

// Authenticate verifies the bearer token of a request, if one is present,
// and stores its identity in the request context. Requests without an
// Authorization header continue anonymous.
func (v *Verifier) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			next.ServeHTTP(w, r)
			return
		}
		ctx := r.Context()
		logger := log.Ctx(ctx)

		if !strings.HasPrefix(authHeader, authHeaderPrefix) {
			logger.Debug().Msg("invalid authorization header format")
			httpx.SendError(w, ErrInvalidToken)
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(authHeader, authHeaderPrefix))
		id, err := v.Verify(token)
		if err != nil {
			logger.Info().Err(err).Msg("token validation failed")
			httpx.SendError(w, ErrInvalidToken)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, id)))
	})
}
