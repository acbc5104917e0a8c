package internal_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/frahmantamala/school-store/internal"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("AppError", func() {
	It("matches sentinels by type and code through wrapping", func() {
		err := fmt.Errorf("refresh: %w", internal.ErrInvalidToken.WithMessage("token signature mismatch"))

		Expect(errors.Is(err, internal.ErrInvalidToken)).To(BeTrue())
		Expect(errors.Is(err, internal.ErrTokenExpired)).To(BeFalse())

		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.StatusCode).To(Equal(http.StatusUnauthorized))
	})

	It("never mutates the shared sentinel", func() {
		_ = internal.ErrForbidden.WithMessage("policy ManageStore").WithCause(errors.New("x"))

		Expect(internal.ErrForbidden.Message).To(Equal("Forbidden: insufficient permissions"))
		Expect(internal.ErrForbidden.Cause).To(BeNil())
	})

	It("keeps the cause out of the response body", func() {
		err := internal.NewInternalError("failed to settle order", errors.New("connection reset"))
		Expect(err.Error()).To(ContainSubstring("connection reset"))
		Expect(errors.Unwrap(err)).To(MatchError("connection reset"))

		status, body := err.ToHTTPResponse()
		Expect(status).To(Equal(http.StatusInternalServerError))

		raw, marshalErr := json.Marshal(body)
		Expect(marshalErr).NotTo(HaveOccurred())
		Expect(string(raw)).NotTo(ContainSubstring("connection reset"))
		Expect(string(raw)).To(MatchJSON(`{"error":{"type":"INTERNAL_ERROR","code":"INTERNAL_ERROR","message":"failed to settle order"}}`))
	})

	DescribeTable("status codes",
		func(err *internal.AppError, status int) {
			Expect(err.StatusCode).To(Equal(status))
		},
		Entry("validation", internal.NewValidationError("bad", internal.ErrCodeInvalidRequest), http.StatusBadRequest),
		Entry("not found", internal.NewNotFoundError("gone", internal.ErrCodeUnknownOrder), http.StatusNotFound),
		Entry("unauthorized", internal.ErrInvalidCredentials, http.StatusUnauthorized),
		Entry("forbidden", internal.ErrForbidden, http.StatusForbidden),
		Entry("conflict", internal.NewConflictError("taken", internal.ErrCodeUsernameTaken), http.StatusConflict),
		Entry("configuration", internal.NewConfigurationError("no secret"), http.StatusInternalServerError),
	)
})

var _ = Describe("Page", func() {
	DescribeTable("normalizes paging input",
		func(page, size, limit, offset int) {
			l, o := internal.Page(page, size)
			Expect(l).To(Equal(limit))
			Expect(o).To(Equal(offset))
		},
		Entry("defaults", 0, 0, internal.DefaultPageSize, 0),
		Entry("third page", 3, 10, 10, 20),
		Entry("capped size", 1, 1000, internal.MaxPageSize, 0),
		Entry("negative page", -2, 5, 5, 0),
	)
})
