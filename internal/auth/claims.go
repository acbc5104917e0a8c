package auth

import (
	"context"
	"fmt"
	"sort"
)

// ClaimSet is the resolved view of a caller: identity, role memberships and
// the union of their roles' permissions. It is computed at login or refresh
// and travels only inside the signed token.
type ClaimSet struct {
	UserID      string   `json:"user_id"`
	Email       string   `json:"email"`
	Username    string   `json:"username"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
}

func NewClaimSet(userID, email, username string, roles, permissions []string) ClaimSet {
	return ClaimSet{
		UserID:      userID,
		Email:       email,
		Username:    username,
		Roles:       sortedUnique(roles),
		Permissions: sortedUnique(permissions),
	}
}

func (c ClaimSet) HasPermission(p string) bool {
	for _, have := range c.Permissions {
		if have == p {
			return true
		}
	}
	return false
}

func (c ClaimSet) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func sortedUnique(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Identity is the subset of an account the resolver needs.
type Identity struct {
	ID       string
	Email    string
	Username string
}

type MembershipSource interface {
	GetRoleMemberships(ctx context.Context, userID string) ([]string, error)
}

type RoleClaimSource interface {
	ListClaims(ctx context.Context, role string) ([]string, error)
}

// ClaimResolver reads the latest committed role state on every call.
type ClaimResolver struct {
	memberships MembershipSource
	roleClaims  RoleClaimSource
}

func NewClaimResolver(memberships MembershipSource, roleClaims RoleClaimSource) *ClaimResolver {
	return &ClaimResolver{memberships: memberships, roleClaims: roleClaims}
}

func (r *ClaimResolver) Resolve(ctx context.Context, id Identity) (ClaimSet, error) {
	roles, err := r.memberships.GetRoleMemberships(ctx, id.ID)
	if err != nil {
		return ClaimSet{}, fmt.Errorf("failed to load role memberships: %w", err)
	}

	var permissions []string
	for _, role := range roles {
		claims, err := r.roleClaims.ListClaims(ctx, role)
		if err != nil {
			return ClaimSet{}, fmt.Errorf("failed to load claims for role %s: %w", role, err)
		}
		permissions = append(permissions, claims...)
	}

	return NewClaimSet(id.ID, id.Email, id.Username, roles, permissions), nil
}

type ctxKey string

const claimsKey ctxKey = "claims"

func WithClaims(ctx context.Context, claims ClaimSet) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

func ClaimsFromContext(ctx context.Context) (ClaimSet, bool) {
	c, ok := ctx.Value(claimsKey).(ClaimSet)
	return c, ok
}
