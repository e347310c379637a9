package cli

import (
	"time"

	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/tenant"
	json "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// tenantView is the operator's view of a tenant.
type tenantView struct {
	ID                    string     `yaml:"id" json:"id"`
	Name                  string     `yaml:"name" json:"name"`
	Email                 string     `yaml:"email,omitempty" json:"email,omitempty"`
	Lifecycle             string     `yaml:"lifecycle" json:"lifecycle"`
	BillingStatus         string     `yaml:"billing_status" json:"billingStatus"`
	TrialEndsAt           *time.Time `yaml:"trial_ends_at,omitempty" json:"trialEndsAt,omitempty"`
	OnboardingCompletedAt *time.Time `yaml:"onboarding_completed_at,omitempty" json:"onboardingCompletedAt,omitempty"`
	SuspendedAt           *time.Time `yaml:"suspended_at,omitempty" json:"suspendedAt,omitempty"`
	SuspensionReason      string     `yaml:"suspension_reason,omitempty" json:"suspensionReason,omitempty"`
	DeactivatedAt         *time.Time `yaml:"deactivated_at,omitempty" json:"deactivatedAt,omitempty"`
	LastActivityAt        *time.Time `yaml:"last_activity_at,omitempty" json:"lastActivityAt,omitempty"`
	CreatedAt             time.Time  `yaml:"created_at" json:"createdAt"`
}

func newTenantView(t *tenant.Tenant) tenantView {
	v := tenantView{
		ID:                    t.ID.String(),
		Name:                  t.Name,
		Lifecycle:             string(t.Lifecycle),
		BillingStatus:         string(t.BillingStatus),
		TrialEndsAt:           t.TrialEndsAt,
		OnboardingCompletedAt: t.OnboardingCompletedAt,
		SuspendedAt:           t.SuspendedAt,
		DeactivatedAt:         t.DeactivatedAt,
		LastActivityAt:        t.LastActivityAt,
		CreatedAt:             t.CreatedAt,
	}
	if t.Email != nil {
		v.Email = *t.Email
	}
	if t.SuspensionReason != nil {
		v.SuspensionReason = *t.SuspensionReason
	}
	return v
}

// printOutput writes v as YAML, or as indented JSON with --json.
func printOutput(cmd *cobra.Command, opts *rootOptions, v any) error {
	var (
		out []byte
		err error
	)
	if opts.jsonOutput {
		out, err = json.MarshalIndent(v, "", "  ")
		out = append(out, '\n')
	} else {
		out, err = yaml.Marshal(v)
	}
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}
