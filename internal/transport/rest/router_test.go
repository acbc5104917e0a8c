package rest_test

import (
	"fmt"
	"net/http"

	"github.com/frahmantamala/school-store/internal"
	"github.com/frahmantamala/school-store/internal/auth"
	"github.com/frahmantamala/school-store/internal/category"
	"github.com/frahmantamala/school-store/internal/order"
	"github.com/frahmantamala/school-store/internal/product"
	"github.com/frahmantamala/school-store/internal/role"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

var _ = Describe("Store API", func() {
	var (
		server     *testServer
		adminToken string
	)

	BeforeEach(func() {
		server = newTestServer()
		adminToken = server.login(adminUsername, adminPassword)
	})

	AfterEach(func() {
		server.Close()
	})

	It("reports health without a token", func() {
		rec := server.do(http.MethodGet, "/api/v1/health", "", nil)
		Expect(rec.Code).To(Equal(http.StatusOK))

		rec = server.do(http.MethodGet, "/api/v1/ping", "", nil)
		Expect(rec.Code).To(Equal(http.StatusOK))
	})

	It("serves the OpenAPI document", func() {
		rec := server.do(http.MethodGet, "/openapi.yml", "", nil)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("School Store API"))
	})

	Describe("login", func() {
		It("returns the admin's roles and claims", func() {
			rec := server.do(http.MethodGet, "/api/v1/users/me", adminToken, nil)
			Expect(rec.Code).To(Equal(http.StatusOK))
			me := decode[auth.ClaimSetResponse](rec)
			Expect(me.Roles).To(Equal([]string{auth.RoleAdmin}))
			Expect(me.Permissions).To(Equal(auth.DefaultClaims(auth.RoleAdmin)))
		})

		It("treats bad passwords and unknown users alike", func() {
			bad := server.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": adminUsername, "password": "wrong-password"})
			unknown := server.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": "nobody", "password": "wrong-password"})
			Expect(bad.Code).To(Equal(http.StatusUnauthorized))
			Expect(unknown.Code).To(Equal(http.StatusUnauthorized))
			Expect(errorCode(bad)).To(Equal(errorCode(unknown)))
		})

		It("requires a token on protected routes", func() {
			rec := server.do(http.MethodGet, "/api/v1/products", "", nil)
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		})
	})

	Describe("role administration", func() {
		It("is limited to holders of roles.access", func() {
			keeper := server.register(adminToken, "keeper", auth.RoleStoreKeeper)
			rec := server.do(http.MethodGet, "/api/v1/roles", keeper, nil)
			Expect(rec.Code).To(Equal(http.StatusForbidden))
			Expect(errorCode(rec)).To(Equal(string(internal.ErrCodeInsufficientClaims)))
		})

		It("keeps registration behind the Admin role", func() {
			keeper := server.register(adminToken, "keeper", auth.RoleStoreKeeper)
			rec := server.do(http.MethodPost, "/api/v1/admin/register", keeper, map[string]string{
				"username": "intruder",
				"email":    "intruder@school.test",
				"password": "intruder-password",
				"role":     auth.RoleStoreKeeper,
			})
			Expect(rec.Code).To(Equal(http.StatusForbidden))
		})

		It("rejects registration into a role that was never created", func() {
			rec := server.do(http.MethodPost, "/api/v1/admin/register", adminToken, map[string]string{
				"username": "pupil",
				"email":    "pupil@school.test",
				"password": "pupil-password",
				"role":     auth.RoleStudent,
			})
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(errorCode(rec)).To(Equal(string(internal.ErrCodeInvalidRole)))
		})

		It("rejects duplicate and unknown claims", func() {
			server.register(adminToken, "teacher", auth.RoleTeacher)

			rec := server.do(http.MethodPatch, "/api/v1/roles", adminToken, map[string]interface{}{
				"name": auth.RoleTeacher, "mode": "Add", "permissions": []string{auth.PermissionProductsRead},
			})
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(errorCode(rec)).To(Equal(string(internal.ErrCodeDuplicateClaim)))

			rec = server.do(http.MethodPatch, "/api/v1/roles", adminToken, map[string]interface{}{
				"name": auth.RoleTeacher, "mode": "Add", "permissions": []string{"products.teleport"},
			})
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(errorCode(rec)).To(Equal(string(internal.ErrCodeUnknownPermission)))

			rec = server.do(http.MethodGet, "/api/v1/roles/claims?role=teacher", adminToken, nil)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(decode[role.RoleClaimsResponse](rec).Claims).To(Equal(auth.DefaultClaims(auth.RoleTeacher)))
		})
	})

	Describe("a fresh StoreKeeper", func() {
		var keeper string

		BeforeEach(func() {
			keeper = server.register(adminToken, "keeper", auth.RoleStoreKeeper)
		})

		It("manages the catalog but cannot order", func() {
			rec := server.do(http.MethodPost, "/api/v1/categories", keeper, map[string]string{"name": "Stationery"})
			Expect(rec.Code).To(Equal(http.StatusCreated), rec.Body.String())

			rec = server.do(http.MethodPost, "/api/v1/products", keeper, map[string]interface{}{
				"name": "Pencil", "category": "stationery", "price": "2.00", "stock": 10,
			})
			Expect(rec.Code).To(Equal(http.StatusCreated), rec.Body.String())
			pencil := decode[product.ProductResponse](rec)

			rec = server.do(http.MethodPost, "/api/v1/orders", keeper, map[string]interface{}{
				"product_id": pencil.ID, "ordered_items_count": 1,
			})
			Expect(rec.Code).To(Equal(http.StatusForbidden))
			Expect(errorCode(rec)).To(Equal(string(internal.ErrCodeInsufficientClaims)))
		})

		It("can order after a granted claim and a refresh", func() {
			rec := server.do(http.MethodPost, "/api/v1/categories", keeper, map[string]string{"name": "Stationery"})
			Expect(rec.Code).To(Equal(http.StatusCreated))
			rec = server.do(http.MethodPost, "/api/v1/products", keeper, map[string]interface{}{
				"name": "Pencil", "category": "Stationery", "price": "2.00", "stock": 10,
			})
			Expect(rec.Code).To(Equal(http.StatusCreated))
			pencil := decode[product.ProductResponse](rec)

			rec = server.do(http.MethodPatch, "/api/v1/roles", adminToken, map[string]interface{}{
				"name": auth.RoleStoreKeeper, "mode": "add", "permissions": []string{auth.PermissionProductsOrder},
			})
			Expect(rec.Code).To(Equal(http.StatusOK), rec.Body.String())

			placeBody := map[string]interface{}{"product_id": pencil.ID, "ordered_items_count": 1}
			rec = server.do(http.MethodPost, "/api/v1/orders", keeper, placeBody)
			Expect(rec.Code).To(Equal(http.StatusForbidden))

			rec = server.do(http.MethodPost, "/api/v1/auth/refresh", keeper, nil)
			Expect(rec.Code).To(Equal(http.StatusOK))
			refreshed := decode[auth.UserAuthDTO](rec)
			Expect(refreshed.Claims).To(ContainElement(auth.PermissionProductsOrder))

			rec = server.do(http.MethodPost, "/api/v1/orders", refreshed.Token, placeBody)
			Expect(rec.Code).To(Equal(http.StatusCreated), rec.Body.String())
		})
	})

	It("rejects a product in an unknown category", func() {
		keeper := server.register(adminToken, "keeper", auth.RoleStoreKeeper)
		rec := server.do(http.MethodPost, "/api/v1/products", keeper, map[string]interface{}{
			"name": "Drone", "category": "Gadgets", "price": "99.00", "stock": 1,
		})
		Expect(rec.Code).To(Equal(http.StatusNotFound))
		Expect(errorCode(rec)).To(Equal(string(internal.ErrCodeUnknownCategory)))
	})

	It("keeps students out of the store", func() {
		student := server.register(adminToken, "pupil", auth.RoleStudent)
		rec := server.do(http.MethodGet, "/api/v1/products", student, nil)
		Expect(rec.Code).To(Equal(http.StatusForbidden))
	})

	Describe("ordering and delivery", func() {
		var (
			keeper, teacher string
			categoryID      int64
			pencil          product.ProductResponse
		)

		BeforeEach(func() {
			keeper = server.register(adminToken, "keeper", auth.RoleStoreKeeper)
			teacher = server.register(adminToken, "teacher", auth.RoleTeacher)

			rec := server.do(http.MethodPost, "/api/v1/categories", keeper, map[string]string{"name": "Stationery"})
			Expect(rec.Code).To(Equal(http.StatusCreated))
			categoryID = decode[category.CategoryResponse](rec).ID

			rec = server.do(http.MethodPost, "/api/v1/products", keeper, map[string]interface{}{
				"name": "Pencil", "category": "Stationery", "price": "2.00", "stock": 10,
			})
			Expect(rec.Code).To(Equal(http.StatusCreated))
			pencil = decode[product.ProductResponse](rec)
		})

		placeOrder := func(count int64) order.Order {
			rec := server.do(http.MethodPost, "/api/v1/orders", teacher, map[string]interface{}{
				"product_id": pencil.ID, "ordered_items_count": count,
			})
			Expect(rec.Code).To(Equal(http.StatusCreated), rec.Body.String())
			return decode[order.Order](rec)
		}

		stock := func() int64 {
			rec := server.do(http.MethodGet, fmt.Sprintf("/api/v1/products/%d", pencil.ID), teacher, nil)
			Expect(rec.Code).To(Equal(http.StatusOK))
			return decode[product.ProductResponse](rec).Stock
		}

		It("settles once at the current price", func() {
			placed := placeOrder(5)
			Expect(stock()).To(Equal(int64(10)))

			path := fmt.Sprintf("/api/v1/orders/%d/deliver", placed.ID)
			rec := server.do(http.MethodPatch, path, keeper, map[string]string{"delivery_man": "Budi"})
			Expect(rec.Code).To(Equal(http.StatusOK), rec.Body.String())
			delivered := decode[order.Order](rec)
			Expect(delivered.Delivered).To(BeTrue())
			Expect(delivered.TotalPrice.Equal(decimal.NewFromInt(10))).To(BeTrue())
			Expect(stock()).To(Equal(int64(5)))

			rec = server.do(http.MethodPatch, path, keeper, nil)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(errorCode(rec)).To(Equal(string(internal.ErrCodeAlreadyDelivered)))
			Expect(stock()).To(Equal(int64(5)))
		})

		It("refuses deliveries beyond stock", func() {
			placed := placeOrder(11)
			rec := server.do(http.MethodPatch, fmt.Sprintf("/api/v1/orders/%d/deliver", placed.ID), keeper, nil)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(errorCode(rec)).To(Equal(string(internal.ErrCodeInsufficientStock)))
		})

		It("does not let teachers deliver", func() {
			placed := placeOrder(1)
			rec := server.do(http.MethodPatch, fmt.Sprintf("/api/v1/orders/%d/deliver", placed.ID), teacher, nil)
			Expect(rec.Code).To(Equal(http.StatusForbidden))
		})

		It("shows an order only to its owner and to store managers", func() {
			placed := placeOrder(1)
			path := fmt.Sprintf("/api/v1/orders/%d", placed.ID)

			Expect(server.do(http.MethodGet, path, teacher, nil).Code).To(Equal(http.StatusOK))
			Expect(server.do(http.MethodGet, path, keeper, nil).Code).To(Equal(http.StatusOK))

			colleague := server.register(adminToken, "colleague", auth.RoleTeacher)
			rec := server.do(http.MethodGet, path, colleague, nil)
			Expect(rec.Code).To(Equal(http.StatusNotFound))
			Expect(errorCode(rec)).To(Equal(string(internal.ErrCodeUnknownOrder)))
		})

		It("lists the caller's own orders", func() {
			placeOrder(1)
			placeOrder(2)

			rec := server.do(http.MethodGet, "/api/v1/orders/mine", teacher, nil)
			Expect(rec.Code).To(Equal(http.StatusOK))
			page := decode[internal.PaginatedResult[order.View]](rec)
			Expect(page.Count).To(Equal(int64(2)))
			Expect(page.Data[0].Username).To(Equal("teacher"))
		})

		It("keeps order history after the category is deleted", func() {
			placed := placeOrder(2)

			rec := server.do(http.MethodDelete, fmt.Sprintf("/api/v1/categories/%d", categoryID), keeper, nil)
			Expect(rec.Code).To(Equal(http.StatusNoContent))

			rec = server.do(http.MethodGet, fmt.Sprintf("/api/v1/orders/%d", placed.ID), teacher, nil)
			Expect(rec.Code).To(Equal(http.StatusOK))
			view := decode[order.View](rec)
			Expect(view.ProductID).To(BeNil())
			Expect(view.ProductName).To(Equal(order.DeletedProduct))

			rec = server.do(http.MethodGet, fmt.Sprintf("/api/v1/products/%d", pencil.ID), teacher, nil)
			Expect(rec.Code).To(Equal(http.StatusNotFound))
		})
	})
})
