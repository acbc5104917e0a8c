package auth

import (
	"fmt"
	"sort"

	"github.com/frahmantamala/school-store/internal"
)

const (
	PolicyAccessStore    = "AccessStore"
	PolicyManageStore    = "ManageStore"
	PolicyOrderFromStore = "OrderFromStore"
	PolicyManageRoles    = "ManageRoles"
)

var ErrUnknownPolicy = internal.NewConfigurationError("unknown policy")

// Policy is satisfied when the caller holds every required permission.
type Policy struct {
	Name     string
	Requires []string
}

func (p Policy) SatisfiedBy(claims ClaimSet) bool {
	for _, required := range p.Requires {
		if !claims.HasPermission(required) {
			return false
		}
	}
	return true
}

func DefaultPolicies() map[string][]string {
	return map[string][]string{
		PolicyAccessStore: {PermissionProductsRead},
		PolicyManageStore: {
			PermissionProductsRead,
			PermissionProductsAdd,
			PermissionProductsModify,
			PermissionProductsDelete,
		},
		PolicyOrderFromStore: {PermissionProductsOrder},
		PolicyManageRoles:    {PermissionRolesAccess},
	}
}

type PolicyEngine struct {
	policies map[string]Policy
}

// NewPolicyEngine rejects tables that reference permissions outside the
// catalog, so a typo fails at startup instead of silently denying.
func NewPolicyEngine(table map[string][]string) (*PolicyEngine, error) {
	policies := make(map[string]Policy, len(table))
	for name, requires := range table {
		for _, p := range requires {
			if !IsKnownPermission(p) {
				return nil, internal.NewConfigurationError(fmt.Sprintf("policy %s requires unknown permission %q", name, p))
			}
		}
		reqs := append([]string(nil), requires...)
		sort.Strings(reqs)
		policies[name] = Policy{Name: name, Requires: reqs}
	}
	return &PolicyEngine{policies: policies}, nil
}

func (e *PolicyEngine) Lookup(name string) (Policy, error) {
	p, ok := e.policies[name]
	if !ok {
		return Policy{}, ErrUnknownPolicy.WithMessage(fmt.Sprintf("unknown policy %q", name))
	}
	return p, nil
}

// MustRequire is for route registration, where an unknown name is a programming error.
func (e *PolicyEngine) MustRequire(name string) Policy {
	p, err := e.Lookup(name)
	if err != nil {
		panic(err)
	}
	return p
}

// Evaluate reports whether claims satisfy the named policy. Unknown policies deny.
func (e *PolicyEngine) Evaluate(name string, claims ClaimSet) bool {
	p, ok := e.policies[name]
	if !ok {
		return false
	}
	return p.SatisfiedBy(claims)
}

func (e *PolicyEngine) Names() []string {
	names := make([]string, 0, len(e.policies))
	for n := range e.policies {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
