package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type ServicePartner struct {
	ID uuid.UUID `db:"id" json:"id"`
	TenantOwned
	Name        string         `db:"name" json:"name"`
	Phone       *string        `db:"phone" json:"phone,omitempty"`
	City        *string        `db:"city" json:"city,omitempty"`
	State       *string        `db:"state" json:"state,omitempty"`
	Specialties pq.StringArray `db:"specialties" json:"specialties"`
	IsActive    bool           `db:"is_active" json:"isActive"`
	CreatedAt   time.Time      `db:"created_at" json:"createdAt"`
}

var ServicePartnerColumns = []string{
	"id", "tenant_id", "name", "phone", "city", "state", "specialties", "is_active", "created_at",
}

func (s *ServicePartner) Key() *uuid.UUID { return &s.ID }

func (s *ServicePartner) InsertValues() map[string]any {
	if s.Specialties == nil {
		s.Specialties = pq.StringArray{}
	}
	return map[string]any{
		"name":        s.Name,
		"phone":       s.Phone,
		"city":        s.City,
		"state":       s.State,
		"specialties": s.Specialties,
		"is_active":   s.IsActive,
		"created_at":  s.CreatedAt,
	}
}

type ServicePartnerRating struct {
	ID uuid.UUID `db:"id" json:"id"`
	TenantOwned
	ServicePartnerID uuid.UUID  `db:"service_partner_id" json:"servicePartnerId"`
	WorkOrderID      *uuid.UUID `db:"work_order_id" json:"workOrderId,omitempty"`
	Rating           int        `db:"rating" json:"rating"`
	Comment          *string    `db:"comment" json:"comment,omitempty"`
	CreatedBy        string     `db:"created_by" json:"createdBy"`
	CreatedAt        time.Time  `db:"created_at" json:"createdAt"`
}

var ServicePartnerRatingColumns = []string{
	"id", "tenant_id", "service_partner_id", "work_order_id", "rating", "comment", "created_by", "created_at",
}

func (r *ServicePartnerRating) Key() *uuid.UUID { return &r.ID }

func (r *ServicePartnerRating) InsertValues() map[string]any {
	return map[string]any{
		"service_partner_id": r.ServicePartnerID.String(),
		"work_order_id":      nullableUUID(r.WorkOrderID),
		"rating":             r.Rating,
		"comment":            r.Comment,
		"created_by":         r.CreatedBy,
		"created_at":         r.CreatedAt,
	}
}
