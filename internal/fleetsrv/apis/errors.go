package apis

import (
	"errors"
	"net/http"

	"github.com/fleetmanage/fleetmanage/internal/common/apperrors"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/db/dberror"
)

var (
	ErrAPI = apperrors.New("api error").SetStatusCode(http.StatusInternalServerError)

	ErrInvalidID    = ErrAPI.New("invalid id").SetStatusCode(http.StatusBadRequest)
	ErrInvalidQuery = ErrAPI.New("invalid query parameter").SetStatusCode(http.StatusBadRequest)
	ErrInvalidInput = ErrAPI.New("invalid input").SetStatusCode(http.StatusBadRequest)
	ErrEmailTaken   = ErrAPI.New("email is already registered").SetStatusCode(http.StatusConflict).SetReason("email_taken")
	ErrDuplicate    = ErrAPI.New("record already exists").SetStatusCode(http.StatusConflict)

	ErrNotFound               = ErrAPI.New("not found").SetStatusCode(http.StatusNotFound)
	ErrEquipmentNotFound      = ErrNotFound.New("equipment not found")
	ErrWorkOrderNotFound      = ErrNotFound.New("work order not found")
	ErrServicePartnerNotFound = ErrNotFound.New("service partner not found")
	ErrDocumentNotFound       = ErrNotFound.New("document not found")
	ErrLinkNotFound           = ErrNotFound.New("document link not found")

	ErrUnknownReference = ErrAPI.New("referenced record does not exist").SetStatusCode(http.StatusBadRequest).SetReason("unknown_reference")
)

// notFoundAs replaces a storage not found error with e.
func notFoundAs(err error, e apperrors.Error) error {
	if errors.Is(err, dberror.ErrNotFound) {
		return e
	}
	return err
}
