package gate

import (
	"net/http"
	"strings"
)

// Policy lists the path prefixes the gate treats specially. Prefixes match
// whole path segments, without regard to case.
type Policy struct {
	// Public paths bypass the gate entirely.
	Public []string
	// Billing paths are never blocked by billing state.
	Billing []string
	// Onboarding paths are open to tenants that have not completed onboarding.
	Onboarding []string
}

var DefaultPolicy = Policy{
	Public: []string{
		"/swagger",
		"/api/auth",
		"/api/billing/webhook",
		"/api/industries",
		"/api/fleetcategories",
		"/api/equipmenttypes",
		"/version",
		"/healthz",
		"/metrics",
	},
	Billing: []string{
		"/api/billing",
	},
	Onboarding: []string{
		"/api/billing",
		"/api/onboarding",
		"/api/industries",
		"/api/fleetcategories",
		"/api/equipmenttypes",
	},
}

func (p Policy) IsPublic(path string) bool     { return matchPrefix(path, p.Public) }
func (p Policy) IsBilling(path string) bool    { return matchPrefix(path, p.Billing) }
func (p Policy) IsOnboarding(path string) bool { return matchPrefix(path, p.Onboarding) }

func matchPrefix(path string, prefixes []string) bool {
	path = strings.ToLower(path)
	for _, p := range prefixes {
		p = strings.ToLower(strings.TrimSuffix(p, "/"))
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

func isMutating(method string) bool {
	switch strings.ToUpper(method) {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
