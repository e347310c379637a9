package tenant

import (
	"slices"
	"strings"
)

// Lifecycle is the administrative state of a tenant.
type Lifecycle string

const (
	Pending   Lifecycle = "pending"
	Active    Lifecycle = "active"
	Suspended Lifecycle = "suspended"
	Closed    Lifecycle = "closed"
)

// transitions is the complete set of legal lifecycle moves. Closed is terminal.
var transitions = map[Lifecycle][]Lifecycle{
	Pending:   {Active},
	Active:    {Suspended, Closed},
	Suspended: {Active, Closed},
	Closed:    nil,
}

func (l Lifecycle) IsValid() bool {
	_, ok := transitions[l]
	return ok
}

func (l Lifecycle) CanTransitionTo(next Lifecycle) bool {
	return slices.Contains(transitions[l], next)
}

func ParseLifecycle(s string) (Lifecycle, error) {
	l := Lifecycle(strings.ToLower(strings.TrimSpace(s)))
	if !l.IsValid() {
		return "", ErrInvalidLifecycle.Msg("unknown tenant lifecycle state: " + s)
	}
	return l, nil
}

// BillingStatus is the subscription state reported by the payment provider.
type BillingStatus string

const (
	BillingInactive BillingStatus = "inactive"
	BillingTrialing BillingStatus = "trialing"
	BillingActive   BillingStatus = "active"
	BillingPastDue  BillingStatus = "past_due"
	BillingCanceled BillingStatus = "canceled"
	BillingUnpaid   BillingStatus = "unpaid"
)

var billingStatuses = []BillingStatus{
	BillingInactive, BillingTrialing, BillingActive, BillingPastDue, BillingCanceled, BillingUnpaid,
}

func (b BillingStatus) IsValid() bool {
	return slices.Contains(billingStatuses, b)
}

// ParseBillingStatus is case insensitive. Provider statuses outside the known
// set are rejected.
func ParseBillingStatus(s string) (BillingStatus, error) {
	b := BillingStatus(strings.ToLower(strings.TrimSpace(s)))
	if !b.IsValid() {
		return "", ErrInvalidBillingStatus.Msg("unknown billing status: " + s)
	}
	return b, nil
}
