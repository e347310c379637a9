package billing

import (
	"net/http"

	"github.com/fleetmanage/fleetmanage/internal/common/apperrors"
)

var (
	ErrBilling = apperrors.New("billing error").SetStatusCode(http.StatusInternalServerError)

	ErrInvalidSignature     = ErrBilling.New("invalid webhook signature").SetStatusCode(http.StatusBadRequest).SetReason("invalid_signature")
	ErrInvalidPayload       = ErrBilling.New("invalid webhook payload").SetStatusCode(http.StatusBadRequest).SetReason("invalid_payload")
	ErrWebhookNotConfigured = ErrBilling.New("billing webhook secret is not configured")
)
