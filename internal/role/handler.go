package role

import (
	"context"
	"net/http"

	"github.com/frahmantamala/school-store/internal/transport"
)

type ServiceAPI interface {
	AddRole(ctx context.Context, dto AddRoleDTO) (*RoleResponse, error)
	ModifyRoleClaims(ctx context.Context, dto ModifyRoleClaimsDTO) ([]string, error)
	ListClaims(ctx context.Context, roleName string) ([]string, error)
	ListRoles(ctx context.Context) ([]RoleResponse, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

// AddRole handles POST /roles
func (h *Handler) AddRole(w http.ResponseWriter, r *http.Request) {
	var dto AddRoleDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, err)
		return
	}

	resp, err := h.Service.AddRole(r.Context(), dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, resp)
}

// ModifyRoleClaims handles PATCH /roles
func (h *Handler) ModifyRoleClaims(w http.ResponseWriter, r *http.Request) {
	var dto ModifyRoleClaimsDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, err)
		return
	}

	claims, err := h.Service.ModifyRoleClaims(r.Context(), dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, RoleClaimsResponse{Role: dto.Name, Claims: claims})
}

// GetRoleClaims handles GET /roles/claims?role=Name
func (h *Handler) GetRoleClaims(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("role")

	claims, err := h.Service.ListClaims(r.Context(), name)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, RoleClaimsResponse{Role: name, Claims: claims})
}

// ListRoles handles GET /roles
func (h *Handler) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.Service.ListRoles(r.Context())
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, roles)
}
