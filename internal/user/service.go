package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/school-store/internal"
	"github.com/frahmantamala/school-store/internal/auth"
	"github.com/frahmantamala/school-store/internal/role"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type Repository interface {
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	// CreateWithRole inserts the user and the membership in one transaction.
	CreateWithRole(ctx context.Context, u *User, roleID string) error
	AddMembership(ctx context.Context, userID, roleID string) error
	GetRoleNames(ctx context.Context, userID string) ([]string, error)
}

type RoleProvider interface {
	GetRole(ctx context.Context, name string) (*role.Role, error)
}

// Service is the credential store: it owns accounts, password hashes and
// role memberships.
type Service struct {
	repo       Repository
	roles      RoleProvider
	bcryptCost int
	clock      internal.Clock
	logger     *slog.Logger
}

func NewService(repo Repository, roles RoleProvider, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:       repo,
		roles:      roles,
		bcryptCost: bcryptCost,
		clock:      internal.SystemClock{},
		logger:     logger,
	}
}

// Register creates an account holding exactly one existing role.
func (s *Service) Register(ctx context.Context, dto RegisterDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	dto = dto.Normalized()

	r, err := s.lookupRole(ctx, dto.Role)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByUsername(ctx, dto.Username)
	if err != nil {
		s.logger.Error("failed to check username", "error", err)
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	hash, err := s.HashPassword(dto.Password)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	now := s.clock.Now()
	u := &User{
		ID:           uuid.NewString(),
		Username:     dto.Username,
		Email:        dto.Email,
		Phone:        dto.Phone,
		FirstName:    dto.FirstName,
		LastName:     dto.LastName,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.CreateWithRole(ctx, u, r.ID); err != nil {
		if !errors.Is(err, ErrUsernameTaken) {
			s.logger.Error("failed to create user", "error", err, "username", u.Username)
		}
		return nil, err
	}

	s.logger.Info("user registered", "user_id", u.ID, "role", r.Name)
	return u, nil
}

// AssignRole adds a membership; holding the role already is not an error.
func (s *Service) AssignRole(ctx context.Context, userID string, dto AssignRoleDTO) ([]string, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.FindUserByID(ctx, userID); err != nil {
		return nil, err
	}
	r, err := s.lookupRole(ctx, dto.Role)
	if err != nil {
		return nil, err
	}

	if err := s.repo.AddMembership(ctx, userID, r.ID); err != nil {
		s.logger.Error("failed to add role membership", "error", err, "user_id", userID, "role", r.Name)
		return nil, err
	}
	s.logger.Info("role assigned", "user_id", userID, "role", r.Name)

	return s.GetRoleMemberships(ctx, userID)
}

// EnsureUser creates the account if the username is free and makes sure it
// holds roleName. Used to bootstrap the first administrator.
func (s *Service) EnsureUser(ctx context.Context, dto RegisterDTO) (*User, error) {
	dto = dto.Normalized()
	existing, err := s.repo.FindByUsername(ctx, dto.Username)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return s.Register(ctx, dto)
	}
	if _, err := s.AssignRole(ctx, existing.ID, AssignRoleDTO{Role: dto.Role}); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *Service) lookupRole(ctx context.Context, name string) (*role.Role, error) {
	r, err := s.roles.GetRole(ctx, name)
	if err != nil {
		if errors.Is(err, role.ErrRoleNotFound) || errors.Is(err, role.ErrInvalidRole) {
			return nil, ErrInvalidRole.WithMessage(fmt.Sprintf("role %q does not exist", name))
		}
		return nil, err
	}
	return r, nil
}

func (s *Service) FindUserByName(ctx context.Context, username string) (auth.Identity, error) {
	u, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return auth.Identity{}, err
	}
	if u == nil {
		return auth.Identity{}, ErrUserNotFound
	}
	return u.Identity(), nil
}

func (s *Service) FindUserByID(ctx context.Context, id string) (auth.Identity, error) {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return auth.Identity{}, err
	}
	return u.Identity(), nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (s *Service) VerifyCredential(ctx context.Context, userID, password string) (bool, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return false, err
	}
	if u == nil {
		return false, nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *Service) GetRoleMemberships(ctx context.Context, userID string) ([]string, error) {
	return s.repo.GetRoleNames(ctx, userID)
}

// HashPassword creates a bcrypt hash of the password
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// WithClock overrides the time source.
func (s *Service) WithClock(c internal.Clock) *Service {
	s.clock = c
	return s
}

