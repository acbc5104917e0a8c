package auth_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/frahmantamala/school-store/internal"
	"github.com/frahmantamala/school-store/internal/auth"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type mockAccount struct {
	identity auth.Identity
	password string
	roles    []string
}

type mockCredentialStore struct {
	accounts   map[string]*mockAccount
	shouldFail bool
}

func newMockCredentialStore() *mockCredentialStore {
	return &mockCredentialStore{accounts: make(map[string]*mockAccount)}
}

func (m *mockCredentialStore) add(id, username, password string, roles ...string) {
	m.accounts[id] = &mockAccount{
		identity: auth.Identity{ID: id, Username: username, Email: username + "@school.test"},
		password: password,
		roles:    roles,
	}
}

func (m *mockCredentialStore) FindUserByName(ctx context.Context, username string) (auth.Identity, error) {
	if m.shouldFail {
		return auth.Identity{}, errors.New("database down")
	}
	for _, a := range m.accounts {
		if a.identity.Username == username {
			return a.identity, nil
		}
	}
	return auth.Identity{}, internal.NewNotFoundError("user not found", internal.ErrCodeUnknownUser)
}

func (m *mockCredentialStore) FindUserByID(ctx context.Context, id string) (auth.Identity, error) {
	a, ok := m.accounts[id]
	if !ok {
		return auth.Identity{}, internal.NewNotFoundError("user not found", internal.ErrCodeUnknownUser)
	}
	return a.identity, nil
}

func (m *mockCredentialStore) VerifyCredential(ctx context.Context, userID, password string) (bool, error) {
	a, ok := m.accounts[userID]
	return ok && a.password == password, nil
}

func (m *mockCredentialStore) GetRoleMemberships(ctx context.Context, userID string) ([]string, error) {
	a, ok := m.accounts[userID]
	if !ok {
		return nil, nil
	}
	return a.roles, nil
}

type mockRoleClaims struct {
	claims     map[string][]string
	shouldFail bool
}

func (m *mockRoleClaims) ListClaims(ctx context.Context, role string) ([]string, error) {
	if m.shouldFail {
		return nil, errors.New("role store unavailable")
	}
	return m.claims[role], nil
}

var _ = Describe("ClaimResolver", func() {
	var (
		users    *mockCredentialStore
		roles    *mockRoleClaims
		resolver *auth.ClaimResolver
	)

	BeforeEach(func() {
		users = newMockCredentialStore()
		roles = &mockRoleClaims{claims: map[string][]string{
			auth.RoleTeacher:     auth.DefaultClaims(auth.RoleTeacher),
			auth.RoleStoreKeeper: auth.DefaultClaims(auth.RoleStoreKeeper),
		}}
		resolver = auth.NewClaimResolver(users, roles)
	})

	It("unions the claims of every role", func() {
		users.add("u-1", "both", "pw", auth.RoleTeacher, auth.RoleStoreKeeper)

		claims, err := resolver.Resolve(context.Background(), auth.Identity{ID: "u-1", Username: "both"})
		Expect(err).NotTo(HaveOccurred())
		Expect(claims.Roles).To(ConsistOf(auth.RoleStoreKeeper, auth.RoleTeacher))
		Expect(claims.Permissions).To(ConsistOf(
			auth.PermissionProductsRead,
			auth.PermissionProductsAdd,
			auth.PermissionProductsModify,
			auth.PermissionProductsDelete,
			auth.PermissionProductsOrder,
		))
	})

	It("returns empty permissions for a role without claims", func() {
		users.add("u-2", "student", "pw", auth.RoleStudent)

		claims, err := resolver.Resolve(context.Background(), auth.Identity{ID: "u-2"})
		Expect(err).NotTo(HaveOccurred())
		Expect(claims.Permissions).To(BeEmpty())
		Expect(claims.HasRole(auth.RoleStudent)).To(BeTrue())
	})

	It("propagates store failures", func() {
		users.add("u-1", "teacher", "pw", auth.RoleTeacher)
		roles.shouldFail = true

		_, err := resolver.Resolve(context.Background(), auth.Identity{ID: "u-1"})
		Expect(err).To(HaveOccurred())
	})

	It("travels through the request context", func() {
		claims := auth.NewClaimSet("u-1", "", "teacher", nil, nil)
		ctx := auth.WithClaims(context.Background(), claims)

		got, ok := auth.ClaimsFromContext(ctx)
		Expect(ok).To(BeTrue())
		Expect(got).To(Equal(claims))

		_, ok = auth.ClaimsFromContext(context.Background())
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("Service", func() {
	var (
		users   *mockCredentialStore
		roles   *mockRoleClaims
		issuer  *auth.TokenIssuer
		service *auth.Service
		ctx     context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		users = newMockCredentialStore()
		users.add("u-1", "teacher", "correct-horse", auth.RoleTeacher)

		roles = &mockRoleClaims{claims: map[string][]string{
			auth.RoleTeacher: auth.DefaultClaims(auth.RoleTeacher),
		}}

		var err error
		issuer, err = auth.NewTokenIssuer(testSecret, time.Hour, internal.FixedClock{At: time.Now().UTC()})
		Expect(err).NotTo(HaveOccurred())

		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		service = auth.NewService(users, auth.NewClaimResolver(users, roles), issuer, logger)
	})

	Describe("Login", func() {
		It("issues a token with the current claims", func() {
			resp, err := service.Login(ctx, auth.LoginDTO{Username: " Teacher ", Password: "correct-horse"})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.ID).To(Equal("u-1"))
			Expect(resp.Roles).To(Equal([]string{auth.RoleTeacher}))
			Expect(resp.Claims).To(ConsistOf(auth.PermissionProductsRead, auth.PermissionProductsOrder))

			claims, err := issuer.Verify(resp.Token)
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.HasPermission(auth.PermissionProductsOrder)).To(BeTrue())
		})

		It("does not distinguish unknown users from bad passwords", func() {
			_, unknownErr := service.Login(ctx, auth.LoginDTO{Username: "nobody", Password: "whatever"})
			_, badErr := service.Login(ctx, auth.LoginDTO{Username: "teacher", Password: "wrong-password"})

			Expect(unknownErr).To(MatchError(internal.ErrInvalidCredentials))
			Expect(badErr).To(MatchError(internal.ErrInvalidCredentials))
		})

		It("validates input", func() {
			_, err := service.Login(ctx, auth.LoginDTO{})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})

		It("surfaces store failures", func() {
			users.shouldFail = true
			_, err := service.Login(ctx, auth.LoginDTO{Username: "teacher", Password: "correct-horse"})
			Expect(err).To(HaveOccurred())
			Expect(err).NotTo(MatchError(internal.ErrInvalidCredentials))
		})
	})

	Describe("Refresh", func() {
		It("picks up claims changed since the last token", func() {
			stale := auth.NewClaimSet("u-1", "", "teacher", []string{auth.RoleTeacher}, auth.DefaultClaims(auth.RoleTeacher))
			roles.claims[auth.RoleTeacher] = []string{auth.PermissionProductsRead}

			resp, err := service.Refresh(ctx, stale)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Claims).To(Equal([]string{auth.PermissionProductsRead}))
		})

		It("rejects subjects that no longer exist", func() {
			_, err := service.Refresh(ctx, auth.NewClaimSet("gone", "", "", nil, nil))
			Expect(err).To(MatchError(internal.ErrInvalidToken))
		})
	})
})
