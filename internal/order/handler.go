package order

import (
	"context"
	"net/http"
	"strconv"

	"github.com/frahmantamala/school-store/internal"
	"github.com/frahmantamala/school-store/internal/auth"
	"github.com/frahmantamala/school-store/internal/transport"
)

type ServiceAPI interface {
	PlaceOrder(ctx context.Context, userID string, dto PlaceOrderDTO) (*Order, error)
	DeliverOrder(ctx context.Context, id int64, dto DeliverOrderDTO) (*Order, error)
	ListOrders(ctx context.Context, filter ListFilter) (*internal.PaginatedResult[View], error)
	GetOrder(ctx context.Context, id int64) (*View, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
	// Staff may read any order; everyone else only their own.
	Staff auth.Policy
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI, staff auth.Policy) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
		Staff:       staff,
	}
}

// PlaceOrder handles POST /orders for the authenticated caller.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		h.WriteAppError(w, internal.ErrInvalidToken)
		return
	}

	var dto PlaceOrderDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, err)
		return
	}

	o, err := h.Service.PlaceOrder(r.Context(), claims.UserID, dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, o)
}

// DeliverOrder handles PATCH /orders/{id}/deliver
func (h *Handler) DeliverOrder(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathInt64(r, "id")
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	var dto DeliverOrderDTO
	if r.ContentLength != 0 {
		if err := h.DecodeJSON(r, &dto); err != nil {
			h.WriteAppError(w, err)
			return
		}
	}

	o, err := h.Service.DeliverOrder(r.Context(), id, dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, o)
}

// ListOrders handles GET /orders?user_id=&delivered=&page=&page_size=
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	filter, err := h.listFilter(r)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	filter.UserID = r.URL.Query().Get("user_id")

	h.writeList(w, r, filter)
}

// ListMyOrders handles GET /orders/mine
func (h *Handler) ListMyOrders(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		h.WriteAppError(w, internal.ErrInvalidToken)
		return
	}

	filter, err := h.listFilter(r)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	filter.UserID = claims.UserID

	h.writeList(w, r, filter)
}

// GetOrder handles GET /orders/{id}. Orders of other users answer 404 so
// their existence is not revealed.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		h.WriteAppError(w, internal.ErrInvalidToken)
		return
	}

	id, err := h.PathInt64(r, "id")
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	view, err := h.Service.GetOrder(r.Context(), id)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	if !view.OwnedBy(claims.UserID) && !h.Staff.SatisfiedBy(claims) {
		h.WriteAppError(w, ErrOrderNotFound)
		return
	}

	h.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) writeList(w http.ResponseWriter, r *http.Request, filter ListFilter) {
	result, err := h.Service.ListOrders(r.Context(), filter)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) listFilter(r *http.Request) (ListFilter, error) {
	filter := ListFilter{
		Page:     h.QueryInt(r, "page", 1),
		PageSize: h.QueryInt(r, "page_size", internal.DefaultPageSize),
	}
	if raw := r.URL.Query().Get("delivered"); raw != "" {
		delivered, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, internal.NewValidationFieldError("delivered", "delivered must be true or false", internal.ErrCodeInvalidRequest)
		}
		filter.Delivered = &delivered
	}
	return filter, nil
}
