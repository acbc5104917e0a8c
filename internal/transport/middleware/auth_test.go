package middleware_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	"github.com/frahmantamala/school-store/internal"
	"github.com/frahmantamala/school-store/internal/auth"
	"github.com/frahmantamala/school-store/internal/transport/middleware"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const testSecret = "0123456789abcdef0123456789abcdef-middleware"

type errorBody struct {
	Error struct {
		Code string `json:"code"`
	} `json:"error"`
}

func errorCode(rec *httptest.ResponseRecorder) string {
	var body errorBody
	Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
	return body.Error.Code
}

var _ = Describe("Authorization middleware", func() {
	var (
		logger  *slog.Logger
		issuer  *auth.TokenIssuer
		engine  *auth.PolicyEngine
		reached bool
		final   http.Handler
	)

	tokenFor := func(roles ...string) string {
		var permissions []string
		for _, r := range roles {
			permissions = append(permissions, auth.DefaultClaims(r)...)
		}
		cred, err := issuer.Issue(auth.NewClaimSet("user-1", "u@school.test", "user", roles, permissions))
		Expect(err).NotTo(HaveOccurred())
		return cred.Token
	}

	serve := func(h http.Handler, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	BeforeEach(func() {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		var err error
		issuer, err = auth.NewTokenIssuer(testSecret, time.Hour, nil)
		Expect(err).NotTo(HaveOccurred())
		engine, err = auth.NewPolicyEngine(auth.DefaultPolicies())
		Expect(err).NotTo(HaveOccurred())

		reached = false
		final = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := auth.ClaimsFromContext(r.Context())
			Expect(ok).To(BeTrue())
			Expect(claims.UserID).To(Equal("user-1"))
			reached = true
			w.WriteHeader(http.StatusNoContent)
		})
	})

	Describe("Authenticate", func() {
		It("rejects a missing token with 401", func() {
			rec := serve(middleware.Authenticate(issuer, logger)(final), "")
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
			Expect(errorCode(rec)).To(Equal(string(internal.ErrCodeInvalidToken)))
			Expect(reached).To(BeFalse())
		})

		It("rejects a tampered token with 401", func() {
			rec := serve(middleware.Authenticate(issuer, logger)(final), tokenFor(auth.RoleTeacher)+"x")
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
			Expect(reached).To(BeFalse())
		})

		It("rejects a token signed with another secret", func() {
			other, err := auth.NewTokenIssuer("another-secret-that-is-long-enough-123", time.Hour, nil)
			Expect(err).NotTo(HaveOccurred())
			cred, err := other.Issue(auth.NewClaimSet("user-1", "", "user", nil, nil))
			Expect(err).NotTo(HaveOccurred())

			rec := serve(middleware.Authenticate(issuer, logger)(final), cred.Token)
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		})

		It("passes the verified claims downstream", func() {
			rec := serve(middleware.Authenticate(issuer, logger)(final), tokenFor(auth.RoleStudent))
			Expect(rec.Code).To(Equal(http.StatusNoContent))
			Expect(reached).To(BeTrue())
		})
	})

	Describe("RequirePolicy", func() {
		chain := func(policy string) http.Handler {
			return middleware.Authenticate(issuer, logger)(
				middleware.RequirePolicy(engine, policy, logger)(final))
		}

		DescribeTable("role and policy matrix",
			func(role, policy string, allowed bool) {
				rec := serve(chain(policy), tokenFor(role))
				if allowed {
					Expect(rec.Code).To(Equal(http.StatusNoContent))
				} else {
					Expect(rec.Code).To(Equal(http.StatusForbidden))
					Expect(errorCode(rec)).To(Equal(string(internal.ErrCodeInsufficientClaims)))
				}
			},
			Entry("admin manages the store", auth.RoleAdmin, auth.PolicyManageStore, true),
			Entry("admin cannot order", auth.RoleAdmin, auth.PolicyOrderFromStore, false),
			Entry("storekeeper manages the store", auth.RoleStoreKeeper, auth.PolicyManageStore, true),
			Entry("storekeeper cannot order", auth.RoleStoreKeeper, auth.PolicyOrderFromStore, false),
			Entry("teacher browses", auth.RoleTeacher, auth.PolicyAccessStore, true),
			Entry("teacher orders", auth.RoleTeacher, auth.PolicyOrderFromStore, true),
			Entry("teacher cannot manage", auth.RoleTeacher, auth.PolicyManageStore, false),
			Entry("student cannot browse", auth.RoleStudent, auth.PolicyAccessStore, false),
			Entry("only admin manages roles", auth.RoleStoreKeeper, auth.PolicyManageRoles, false),
		)

		It("denies requests without claims in context", func() {
			rec := serve(middleware.RequirePolicy(engine, auth.PolicyAccessStore, logger)(final), "")
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		})

		It("panics at wiring time for unknown policies", func() {
			Expect(func() { middleware.RequirePolicy(engine, "Teleport", logger) }).To(Panic())
		})
	})

	Describe("RequireRole", func() {
		It("allows members", func() {
			h := middleware.Authenticate(issuer, logger)(middleware.RequireRole(auth.RoleAdmin, logger)(final))
			rec := serve(h, tokenFor(auth.RoleAdmin))
			Expect(rec.Code).To(Equal(http.StatusNoContent))
		})

		It("rejects holders of the same permissions without the role", func() {
			h := middleware.Authenticate(issuer, logger)(middleware.RequireRole(auth.RoleAdmin, logger)(final))
			rec := serve(h, tokenFor(auth.RoleStoreKeeper))
			Expect(rec.Code).To(Equal(http.StatusForbidden))
		})

		It("panics for roles outside the catalog", func() {
			Expect(func() { middleware.RequireRole("Janitor", logger) }).To(Panic())
		})
	})
})
