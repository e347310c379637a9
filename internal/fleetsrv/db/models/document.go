package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgtype"
)

type Document struct {
	ID uuid.UUID `db:"id" json:"id"`
	TenantOwned
	FileName      string       `db:"file_name" json:"fileName"`
	ContentType   string       `db:"content_type" json:"contentType"`
	FileURL       string       `db:"file_url" json:"fileUrl"`
	DocKind       string       `db:"doc_kind" json:"docKind"`
	Status        string       `db:"status" json:"status"`
	ExtractedJSON pgtype.JSONB `db:"extracted_json" json:"-"`
	UploadedBy    string       `db:"uploaded_by" json:"uploadedBy"`
	CreatedAt     time.Time    `db:"created_at" json:"createdAt"`
}

const DocumentUploaded = "uploaded"

var DocumentColumns = []string{
	"id", "tenant_id", "file_name", "content_type", "file_url", "doc_kind", "status", "extracted_json", "uploaded_by", "created_at",
}

func (d *Document) Key() *uuid.UUID { return &d.ID }

func (d *Document) InsertValues() map[string]any {
	if d.Status == "" {
		d.Status = DocumentUploaded
	}
	if d.ExtractedJSON.Status == pgtype.Undefined {
		d.ExtractedJSON.Status = pgtype.Null
	}
	return map[string]any{
		"file_name":      d.FileName,
		"content_type":   d.ContentType,
		"file_url":       d.FileURL,
		"doc_kind":       d.DocKind,
		"status":         d.Status,
		"extracted_json": d.ExtractedJSON,
		"uploaded_by":    d.UploadedBy,
		"created_at":     d.CreatedAt,
	}
}

// DocumentLink attaches a document to another record of the same tenant.
// Links are append only and removed with a hard delete.
type DocumentLink struct {
	ID uuid.UUID `db:"id" json:"id"`
	TenantOwned
	DocumentID uuid.UUID `db:"document_id" json:"documentId"`
	EntityType string    `db:"entity_type" json:"entityType"`
	EntityID   uuid.UUID `db:"entity_id" json:"entityId"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

const (
	LinkEquipment = "equipment"
	LinkWorkOrder = "work_order"
)

var DocumentLinkColumns = []string{
	"id", "tenant_id", "document_id", "entity_type", "entity_id", "created_at",
}

func (l *DocumentLink) Key() *uuid.UUID { return &l.ID }

func (l *DocumentLink) InsertValues() map[string]any {
	return map[string]any{
		"document_id": l.DocumentID.String(),
		"entity_type": l.EntityType,
		"entity_id":   l.EntityID.String(),
		"created_at":  l.CreatedAt,
	}
}
