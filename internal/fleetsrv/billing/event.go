// Package billing applies payment provider events to tenants.
package billing

import (
	"time"

	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/tenancy"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/tenant"
	"github.com/tidwall/gjson"
)

const (
	EventCheckoutCompleted   = "checkout.session.completed"
	EventSubscriptionCreated = "customer.subscription.created"
	EventSubscriptionUpdated = "customer.subscription.updated"
	EventSubscriptionDeleted = "customer.subscription.deleted"
)

// Event is the part of a provider event the tenant aggregate cares about.
type Event struct {
	ID               string
	Type             string
	TenantRef        string
	CustomerID       string
	SubscriptionID   string
	Status           string
	TrialEnd         *time.Time
	CurrentPeriodEnd *time.Time
	PriceID          string
}

// ParseEvent extracts an Event from a provider payload. Fields that do not
// apply to the event type are left empty.
func ParseEvent(payload []byte) (*Event, error) {
	if !gjson.ValidBytes(payload) {
		return nil, ErrInvalidPayload
	}
	root := gjson.ParseBytes(payload)
	ev := &Event{
		ID:   root.Get("id").String(),
		Type: root.Get("type").String(),
	}
	if ev.ID == "" || ev.Type == "" {
		return nil, ErrInvalidPayload.Msg("event id and type are required")
	}
	obj := root.Get("data.object")
	ev.CustomerID = idOf(obj.Get("customer"))

	switch ev.Type {
	case EventCheckoutCompleted:
		ev.TenantRef = obj.Get("client_reference_id").String()
		ev.SubscriptionID = idOf(obj.Get("subscription"))
	case EventSubscriptionCreated, EventSubscriptionUpdated, EventSubscriptionDeleted:
		ev.SubscriptionID = obj.Get("id").String()
		ev.Status = obj.Get("status").String()
		ev.TrialEnd = unixTime(obj.Get("trial_end"))
		ev.CurrentPeriodEnd = unixTime(obj.Get("current_period_end"))
		if ev.CurrentPeriodEnd == nil {
			ev.CurrentPeriodEnd = unixTime(obj.Get("items.data.0.current_period_end"))
		}
		ev.PriceID = obj.Get("items.data.0.price.id").String()
	}
	return ev, nil
}

// Locator returns how the tenant of ev is found: by our own reference when the
// event carries one, otherwise by the provider's customer id.
func (ev *Event) Locator() tenant.Locator {
	if ev.TenantRef != "" {
		if id, err := tenancy.ParseTenantID(ev.TenantRef); err == nil {
			return tenant.Locator{TenantID: id}
		}
	}
	return tenant.Locator{CustomerID: ev.CustomerID}
}

// idOf reads an id that may be expanded into an object.
func idOf(r gjson.Result) string {
	if r.IsObject() {
		return r.Get("id").String()
	}
	return r.String()
}

func unixTime(r gjson.Result) *time.Time {
	if r.Type != gjson.Number || r.Int() <= 0 {
		return nil
	}
	t := time.Unix(r.Int(), 0).UTC()
	return &t
}
