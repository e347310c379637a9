package apis

import (
	"net/http"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/fleetmanage/fleetmanage/internal/common/httpx"
	"github.com/fleetmanage/fleetmanage/internal/common/uuid"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/db/models"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/db/postgresql"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/db/scoped"
	"github.com/jackc/pgtype"
	json "github.com/json-iterator/go"
)

// Documents hold metadata only. File contents live at FileURL.

type documentReq struct {
	FileName    string          `json:"fileName" validate:"required,notBlank"`
	ContentType string          `json:"contentType" validate:"required,notBlank"`
	FileURL     string          `json:"fileUrl" validate:"required,url"`
	DocKind     string          `json:"docKind" validate:"required,notBlank"`
	Extracted   json.RawMessage `json:"extracted"`
}

type documentRsp struct {
	*models.Document
	Extracted json.RawMessage `json:"extracted,omitempty"`
}

func newDocumentRsp(d *models.Document) documentRsp {
	rsp := documentRsp{Document: d}
	if d.ExtractedJSON.Status == pgtype.Present {
		rsp.Extracted = json.RawMessage(d.ExtractedJSON.Bytes)
	}
	return rsp
}

type linkReq struct {
	EntityType string    `json:"entityType" validate:"required,oneof=equipment work_order"`
	EntityID   uuid.UUID `json:"entityId" validate:"required"`
}

func (a *API) listDocuments(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()
	limit, offset, err := pageParams(r)
	if err != nil {
		return nil, err
	}
	opts := scoped.ListOptions{Limit: limit, Offset: offset}
	if kind := r.URL.Query().Get("docKind"); kind != "" {
		opts.Where = sq.Eq{"doc_kind": kind}
	}
	var docs []models.Document
	err = a.withTx(ctx, func(tx *postgresql.Tx) error {
		docs, err = tx.Documents().List(ctx, opts)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := make([]documentRsp, 0, len(docs))
	for i := range docs {
		out = append(out, newDocumentRsp(&docs[i]))
	}
	return &httpx.Response{StatusCode: http.StatusOK, Response: out}, nil
}

func (a *API) getDocument(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()
	id, err := idParam(r, "documentId")
	if err != nil {
		return nil, err
	}
	var d *models.Document
	err = a.withTx(ctx, func(tx *postgresql.Tx) error {
		d, err = tx.Documents().Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, notFoundAs(err, ErrDocumentNotFound)
	}
	return &httpx.Response{StatusCode: http.StatusOK, Response: newDocumentRsp(d)}, nil
}

func (a *API) createDocument(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()
	var req documentReq
	if err := httpx.GetRequestData(r, &req); err != nil {
		return nil, err
	}
	d := &models.Document{
		FileName:    strings.TrimSpace(req.FileName),
		ContentType: req.ContentType,
		FileURL:     req.FileURL,
		DocKind:     strings.TrimSpace(req.DocKind),
		UploadedBy:  currentUser(ctx),
		CreatedAt:   a.now().UTC(),
	}
	if len(req.Extracted) > 0 && string(req.Extracted) != "null" {
		if !json.Valid(req.Extracted) {
			return nil, ErrInvalidInput.Msg("extracted must be valid JSON")
		}
		if err := d.ExtractedJSON.Set([]byte(req.Extracted)); err != nil {
			return nil, ErrInvalidInput.Msg("extracted must be valid JSON")
		}
	}
	err := a.withTx(ctx, func(tx *postgresql.Tx) error {
		return tx.Documents().Insert(ctx, d)
	})
	if err != nil {
		return nil, err
	}
	return &httpx.Response{
		StatusCode: http.StatusCreated,
		Location:   "/api/documents/" + d.ID.String(),
		Response:   newDocumentRsp(d),
	}, nil
}

func (a *API) listDocumentLinks(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()
	docID, err := idParam(r, "documentId")
	if err != nil {
		return nil, err
	}
	var out []models.DocumentLink
	err = a.withTx(ctx, func(tx *postgresql.Tx) error {
		ok, err := tx.Documents().Exists(ctx, docID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrDocumentNotFound
		}
		out, err = tx.DocumentLinks().List(ctx, scoped.ListOptions{Where: sq.Eq{"document_id": docID.String()}})
		return err
	})
	if err != nil {
		return nil, err
	}
	return &httpx.Response{StatusCode: http.StatusOK, Response: out}, nil
}

// linkDocument attaches a document to equipment or a work order. Both ends
// must be visible to the tenant.
func (a *API) linkDocument(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()
	docID, err := idParam(r, "documentId")
	if err != nil {
		return nil, err
	}
	var req linkReq
	if err := httpx.GetRequestData(r, &req); err != nil {
		return nil, err
	}
	link := &models.DocumentLink{
		DocumentID: docID,
		EntityType: req.EntityType,
		EntityID:   req.EntityID,
		CreatedAt:  a.now().UTC(),
	}
	err = a.withTx(ctx, func(tx *postgresql.Tx) error {
		ok, err := tx.Documents().Exists(ctx, docID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrDocumentNotFound
		}
		switch req.EntityType {
		case models.LinkEquipment:
			ok, err = tx.Equipment().Exists(ctx, req.EntityID)
		case models.LinkWorkOrder:
			ok, err = tx.WorkOrders().Exists(ctx, req.EntityID)
		}
		if err != nil {
			return err
		}
		if !ok {
			return ErrUnknownReference.Msg(req.EntityType + " does not exist")
		}
		return tx.DocumentLinks().Insert(ctx, link)
	})
	if err != nil {
		return nil, err
	}
	return &httpx.Response{StatusCode: http.StatusCreated, Response: link}, nil
}

func (a *API) unlinkDocument(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()
	docID, err := idParam(r, "documentId")
	if err != nil {
		return nil, err
	}
	linkID, err := idParam(r, "linkId")
	if err != nil {
		return nil, err
	}
	err = a.withTx(ctx, func(tx *postgresql.Tx) error {
		link, err := tx.DocumentLinks().Get(ctx, linkID)
		if err != nil {
			return notFoundAs(err, ErrLinkNotFound)
		}
		if link.DocumentID != docID {
			return ErrLinkNotFound
		}
		return notFoundAs(tx.DocumentLinks().Delete(ctx, linkID), ErrLinkNotFound)
	})
	if err != nil {
		return nil, err
	}
	return &httpx.Response{StatusCode: http.StatusNoContent}, nil
}
