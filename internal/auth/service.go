package auth

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/school-store/internal"
	"github.com/frahmantamala/school-store/pkg/metrics"
)

// CredentialStore is implemented by the user package.
type CredentialStore interface {
	FindUserByName(ctx context.Context, username string) (Identity, error)
	FindUserByID(ctx context.Context, id string) (Identity, error)
	VerifyCredential(ctx context.Context, userID, password string) (bool, error)
}

type Service struct {
	users    CredentialStore
	resolver *ClaimResolver
	issuer   *TokenIssuer
	logger   *slog.Logger
}

func NewService(users CredentialStore, resolver *ClaimResolver, issuer *TokenIssuer, logger *slog.Logger) *Service {
	return &Service{
		users:    users,
		resolver: resolver,
		issuer:   issuer,
		logger:   logger,
	}
}

// Login verifies the password and issues a token carrying the caller's
// current claims. Unknown users and bad passwords are indistinguishable.
func (s *Service) Login(ctx context.Context, dto LoginDTO) (*UserAuthDTO, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	id, err := s.users.FindUserByName(ctx, NormalizeUsername(dto.Username))
	if err != nil {
		if isNotFound(err) {
			return nil, internal.ErrInvalidCredentials
		}
		s.logger.Error("failed to find user for login", "error", err)
		return nil, err
	}

	ok, err := s.users.VerifyCredential(ctx, id.ID, dto.Password)
	if err != nil {
		s.logger.Error("failed to verify credential", "error", err, "user_id", id.ID)
		return nil, err
	}
	if !ok {
		s.logger.Warn("login rejected", "user_id", id.ID)
		return nil, internal.ErrInvalidCredentials
	}

	return s.IssueFor(ctx, id, "login")
}

// Refresh re-resolves claims for the token subject from current role state.
// A permission revoked since the old token was issued disappears here.
func (s *Service) Refresh(ctx context.Context, current ClaimSet) (*UserAuthDTO, error) {
	id, err := s.users.FindUserByID(ctx, current.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, internal.ErrInvalidToken
		}
		s.logger.Error("failed to load user for refresh", "error", err, "user_id", current.UserID)
		return nil, err
	}
	return s.IssueFor(ctx, id, "refresh")
}

// IssueFor resolves claims for id and signs a credential.
func (s *Service) IssueFor(ctx context.Context, id Identity, reason string) (*UserAuthDTO, error) {
	claims, err := s.resolver.Resolve(ctx, id)
	if err != nil {
		s.logger.Error("failed to resolve claims", "error", err, "user_id", id.ID)
		return nil, internal.NewInternalError("failed to resolve claims", err)
	}

	cred, err := s.issuer.Issue(claims)
	if err != nil {
		s.logger.Error("failed to issue token", "error", err, "user_id", id.ID)
		return nil, err
	}
	metrics.TokensIssued.WithLabelValues(reason).Inc()

	s.logger.Info("token issued", "user_id", id.ID, "reason", reason, "roles", claims.Roles)

	return &UserAuthDTO{
		ID:        claims.UserID,
		Username:  claims.Username,
		Email:     claims.Email,
		Token:     cred.Token,
		ExpiresAt: cred.ExpiresAt,
		Roles:     claims.Roles,
		Claims:    claims.Permissions,
	}, nil
}

func isNotFound(err error) bool {
	appErr, ok := internal.IsAppError(err)
	return ok && appErr.Type == internal.ErrorTypeNotFound
}
