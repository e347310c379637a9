package apis

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/fleetmanage/fleetmanage/internal/common/httpx"
	"github.com/fleetmanage/fleetmanage/internal/common/uuid"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/auth"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/db/dberror"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/db/models"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/tenancy"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/tenant"
	"github.com/rs/zerolog/log"
)

type registerReq struct {
	CompanyName string  `json:"companyName" validate:"required,notBlank"`
	FullName    string  `json:"fullName" validate:"required,notBlank"`
	Email       string  `json:"email" validate:"required,email"`
	Password    string  `json:"password" validate:"required,min=8"`
	IndustryID  *int    `json:"industryId" validate:"omitempty,gt=0"`
	Phone       *string `json:"phone"`
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type tokenRsp struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expiresAt"`
	TenantID  tenancy.TenantID `json:"tenantId"`
	Email     string           `json:"email"`
}

// register creates a pending tenant and its first admin user, and signs the
// user in.
func (a *API) register(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()
	var req registerReq
	if err := httpx.GetRequestData(r, &req); err != nil {
		return nil, err
	}
	now := a.now().UTC()
	email := strings.ToLower(strings.TrimSpace(req.Email))

	t, err := tenant.New(req.CompanyName, email, now)
	if err != nil {
		return nil, err
	}
	t.Phone = req.Phone
	t.IndustryID = req.IndustryID

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	owner := &models.User{
		ID:           uuid.New(),
		TenantID:     t.ID,
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(req.FullName),
		Role:         models.RoleAdmin,
		CreatedAt:    now,
	}
	if err := a.tenants.RegisterTenant(ctx, t, owner); err != nil {
		if errors.Is(err, dberror.ErrAlreadyExists) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	log.Ctx(ctx).Info().Str("tenant_id", t.ID.String()).Msg("tenant registered")
	return a.signIn(http.StatusCreated, owner)
}

func (a *API) login(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()
	var req loginReq
	if err := httpx.GetRequestData(r, &req); err != nil {
		return nil, err
	}
	u, err := a.users.GetUserByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, dberror.ErrNotFound) {
			return nil, auth.ErrInvalidCredentials
		}
		return nil, err
	}
	ok, err := auth.VerifyPassword(req.Password, u.PasswordHash)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("user_id", u.ID.String()).Msg("stored password hash is unreadable")
		return nil, auth.ErrInvalidCredentials
	}
	if !ok {
		return nil, auth.ErrInvalidCredentials
	}
	return a.signIn(http.StatusOK, u)
}

func (a *API) signIn(status int, u *models.User) (*httpx.Response, error) {
	token, expiresAt, err := a.tokens.Issue(auth.Identity{
		Subject:     u.ID.String(),
		TenantClaim: u.TenantID.String(),
		Email:       u.Email,
		Role:        u.Role,
	})
	if err != nil {
		return nil, err
	}
	return &httpx.Response{
		StatusCode: status,
		Response: tokenRsp{
			Token:     token,
			ExpiresAt: expiresAt,
			TenantID:  u.TenantID,
			Email:     u.Email,
		},
	}, nil
}

type meRsp struct {
	UserID   string `json:"userId"`
	TenantID string `json:"tenantId"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

func (a *API) me(r *http.Request) (*httpx.Response, error) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		return nil, tenancy.ErrMissingTenantContext
	}
	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response: meRsp{
			UserID:   id.Subject,
			TenantID: id.TenantClaim,
			Email:    id.Email,
			Role:     id.Role,
		},
	}, nil
}
