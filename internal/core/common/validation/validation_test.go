package validation_test

import (
	"github.com/frahmantamala/school-store/internal"
	"github.com/frahmantamala/school-store/internal/core/common/validation"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

var _ = Describe("ValidationBuilder", func() {
	It("passes when every field is valid", func() {
		v := validation.NewValidator()
		v.Field("username", "budi").Required().MinLength(3).MaxLength(50)
		v.Field("email", "budi@school.test").Email()
		v.Field("stock", int64(4)).MinInt(0, internal.ErrCodeInvalidStock)
		v.Field("price", decimal.RequireFromString("2.50")).NonNegativeDecimal(internal.ErrCodeInvalidPrice)
		v.Field("mode", "add").OneOf(internal.ErrCodeInvalidModifyMode, "Add", "Remove")

		Expect(v.Validate()).To(Succeed())
	})

	It("keeps the field's own code when it is the only failure", func() {
		v := validation.NewValidator()
		v.Field("ordered_items_count", int64(0)).MinInt(1, internal.ErrCodeInvalidItemsCount)

		err := v.Validate()
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidItemsCount))
		Expect(appErr.StatusCode).To(Equal(400))
		Expect(err.Error()).To(Equal("ordered_items_count must be at least 1"))
	})

	It("folds several failures into VALIDATION_FAILED", func() {
		v := validation.NewValidator()
		v.Field("username", "  ").Required()
		v.Field("email", "not-an-email").Email()
		v.Field("price", decimal.NewFromInt(-1)).NonNegativeDecimal(internal.ErrCodeInvalidPrice)

		err := v.Validate()
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Code).To(Equal(internal.ErrCodeValidationFailed))

		details, ok := appErr.Details.(internal.ValidationErrors)
		Expect(ok).To(BeTrue())
		fields := make([]string, len(details.Errors))
		for i, e := range details.Errors {
			fields[i] = e.Field
		}
		Expect(fields).To(Equal([]string{"username", "email", "price"}))
		Expect(appErr.GetDetailedMessage()).To(ContainSubstring("; "))
	})

	DescribeTable("Required",
		func(value interface{}, valid bool) {
			v := validation.NewValidator()
			v.Field("f", value).Required()
			if valid {
				Expect(v.Validate()).To(Succeed())
			} else {
				Expect(v.Validate()).To(HaveOccurred())
			}
		},
		Entry("text", "x", true),
		Entry("blank text", " ", false),
		Entry("nil pointer", (*string)(nil), false),
		Entry("zero id", int64(0), false),
		Entry("empty list", []string{}, false),
		Entry("list", []string{"products.read"}, true),
	)

	It("matches OneOf case-insensitively and reports the allowed values", func() {
		v := validation.NewValidator()
		v.Field("mode", "replace").OneOf(internal.ErrCodeInvalidModifyMode, "Add", "Remove")

		err := v.Validate()
		Expect(err).To(MatchError(ContainSubstring("Add, Remove")))
	})
})
