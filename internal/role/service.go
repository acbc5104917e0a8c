package role

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/school-store/internal"
	"github.com/frahmantamala/school-store/internal/auth"
	"github.com/frahmantamala/school-store/internal/core/events"
)

type RepositoryAPI interface {
	// EnsureRole creates the role if missing and, only when it was created,
	// attaches defaults in the same transaction.
	EnsureRole(ctx context.Context, name string, defaults []string, at time.Time) (role *Role, created bool, err error)
	FindByName(ctx context.Context, name string) (*Role, error)
	ListRoles(ctx context.Context) ([]*Role, error)
	ListClaims(ctx context.Context, roleID string) ([]string, error)
	// AddClaims and RemoveClaims are all-or-nothing and return the resulting claims.
	AddClaims(ctx context.Context, roleID string, permissions []string) ([]string, error)
	RemoveClaims(ctx context.Context, roleID string, permissions []string) ([]string, error)
}

type Service struct {
	repo      RepositoryAPI
	publisher events.Publisher
	clock     internal.Clock
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, publisher events.Publisher, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{
		repo:      repo,
		publisher: publisher,
		clock:     internal.SystemClock{},
		logger:    logger,
	}
}

// WithClock overrides the time source.
func (s *Service) WithClock(c internal.Clock) *Service {
	s.clock = c
	return s
}

func canonical(name string) (string, error) {
	c, ok := auth.CanonicalRole(name)
	if !ok {
		return "", ErrInvalidRole.WithMessage(fmt.Sprintf("role %q is not one of Admin, Teacher, StoreKeeper, Student", name))
	}
	return c, nil
}

// EnsureRole is idempotent and never attaches claims.
func (s *Service) EnsureRole(ctx context.Context, name string) (*Role, error) {
	c, err := canonical(name)
	if err != nil {
		return nil, err
	}
	r, created, err := s.repo.EnsureRole(ctx, c, nil, s.clock.Now())
	if err != nil {
		s.logger.Error("failed to ensure role", "error", err, "role", c)
		return nil, err
	}
	if created {
		s.logger.Info("role created", "role", c)
	}
	return r, nil
}

// AddRole creates the role with its default claims. Adding an existing role
// changes nothing.
func (s *Service) AddRole(ctx context.Context, dto AddRoleDTO) (*RoleResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	c, err := canonical(dto.Name)
	if err != nil {
		return nil, err
	}

	defaults := auth.DefaultClaims(c)
	r, created, err := s.repo.EnsureRole(ctx, c, defaults, s.clock.Now())
	if err != nil {
		s.logger.Error("failed to add role", "error", err, "role", c)
		return nil, err
	}

	claims, err := s.repo.ListClaims(ctx, r.ID)
	if err != nil {
		s.logger.Error("failed to list role claims", "error", err, "role", c)
		return nil, err
	}

	if created {
		s.logger.Info("role added with default claims", "role", c, "claims", claims)
		if len(defaults) > 0 {
			s.publish(ctx, c, ModeAdd, defaults)
		}
	}

	return &RoleResponse{ID: r.ID, Name: r.Name, Claims: claims}, nil
}

// BootstrapAdmin guarantees the Admin role exists with every default Admin claim.
func (s *Service) BootstrapAdmin(ctx context.Context) (*RoleResponse, error) {
	defaults := auth.DefaultClaims(auth.RoleAdmin)
	r, _, err := s.repo.EnsureRole(ctx, auth.RoleAdmin, defaults, s.clock.Now())
	if err != nil {
		return nil, err
	}

	current, err := s.repo.ListClaims(ctx, r.ID)
	if err != nil {
		return nil, err
	}
	have := make(map[string]struct{}, len(current))
	for _, c := range current {
		have[c] = struct{}{}
	}
	var missing []string
	for _, d := range defaults {
		if _, ok := have[d]; !ok {
			missing = append(missing, d)
		}
	}
	if len(missing) > 0 {
		if current, err = s.repo.AddClaims(ctx, r.ID, missing); err != nil {
			return nil, err
		}
		s.publish(ctx, auth.RoleAdmin, ModeAdd, missing)
	}

	return &RoleResponse{ID: r.ID, Name: r.Name, Claims: current}, nil
}

func (s *Service) AddClaim(ctx context.Context, roleName, permission string) ([]string, error) {
	return s.ModifyRoleClaims(ctx, ModifyRoleClaimsDTO{Name: roleName, Mode: ModeAdd, Permissions: []string{permission}})
}

func (s *Service) RemoveClaim(ctx context.Context, roleName, permission string) ([]string, error) {
	return s.ModifyRoleClaims(ctx, ModifyRoleClaimsDTO{Name: roleName, Mode: ModeRemove, Permissions: []string{permission}})
}

// ModifyRoleClaims validates every permission before touching the store and
// applies the batch atomically.
func (s *Service) ModifyRoleClaims(ctx context.Context, dto ModifyRoleClaimsDTO) ([]string, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	mode, _ := ParseMode(string(dto.Mode))

	for _, p := range dto.Permissions {
		if !auth.IsKnownPermission(p) {
			return nil, ErrUnknownPermission.WithMessage(fmt.Sprintf("permission %q is not in the catalog", p))
		}
	}

	r, err := s.findRole(ctx, dto.Name)
	if err != nil {
		return nil, err
	}

	var claims []string
	if mode == ModeAdd {
		claims, err = s.repo.AddClaims(ctx, r.ID, dto.Permissions)
	} else {
		claims, err = s.repo.RemoveClaims(ctx, r.ID, dto.Permissions)
	}
	if err != nil {
		s.logger.Warn("role claim modification rejected", "error", err, "role", r.Name, "mode", mode)
		return nil, err
	}

	s.logger.Info("role claims modified", "role", r.Name, "mode", mode, "permissions", dto.Permissions)
	s.publish(ctx, r.Name, mode, dto.Permissions)
	return claims, nil
}

// ListClaims returns the role's permissions sorted by value.
func (s *Service) ListClaims(ctx context.Context, roleName string) ([]string, error) {
	r, err := s.findRole(ctx, roleName)
	if err != nil {
		return nil, err
	}
	return s.repo.ListClaims(ctx, r.ID)
}

func (s *Service) ListRoles(ctx context.Context) ([]RoleResponse, error) {
	roles, err := s.repo.ListRoles(ctx)
	if err != nil {
		s.logger.Error("failed to list roles", "error", err)
		return nil, err
	}
	out := make([]RoleResponse, 0, len(roles))
	for _, r := range roles {
		claims, err := s.repo.ListClaims(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, RoleResponse{ID: r.ID, Name: r.Name, Claims: claims})
	}
	return out, nil
}

// GetRole returns the stored role or ROLE_NOT_FOUND.
func (s *Service) GetRole(ctx context.Context, name string) (*Role, error) {
	return s.findRole(ctx, name)
}

func (s *Service) findRole(ctx context.Context, name string) (*Role, error) {
	c, err := canonical(name)
	if err != nil {
		return nil, err
	}
	r, err := s.repo.FindByName(ctx, c)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, ErrRoleNotFound.WithMessage(fmt.Sprintf("role %s does not exist", c))
	}
	return r, nil
}

func (s *Service) publish(ctx context.Context, roleName string, mode ModifyMode, permissions []string) {
	if err := s.publisher.Publish(ctx, events.NewRoleClaimsChangedEvent(roleName, string(mode), permissions)); err != nil {
		s.logger.Warn("failed to publish role event", "error", err, "role", roleName)
	}
}
