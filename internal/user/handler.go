package user

import (
	"context"
	"net/http"

	"github.com/frahmantamala/school-store/internal"
	"github.com/frahmantamala/school-store/internal/auth"
	"github.com/frahmantamala/school-store/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Register(ctx context.Context, dto RegisterDTO) (*User, error)
	AssignRole(ctx context.Context, userID string, dto AssignRoleDTO) ([]string, error)
}

// TokenIssuer hands a fresh credential to newly registered accounts.
type TokenIssuer interface {
	IssueFor(ctx context.Context, id auth.Identity, reason string) (*auth.UserAuthDTO, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
	Tokens  TokenIssuer
}

func NewHandler(baseHandler *transport.BaseHandler, svc ServiceAPI, tokens TokenIssuer) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     svc,
		Tokens:      tokens,
	}
}

// Register handles POST /admin/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var dto RegisterDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, err)
		return
	}

	u, err := h.Service.Register(r.Context(), dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	resp, err := h.Tokens.IssueFor(r.Context(), u.Identity(), "register")
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, resp)
}

// AssignRole handles POST /admin/users/{id}/roles
func (h *Handler) AssignRole(w http.ResponseWriter, r *http.Request) {
	var dto AssignRoleDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, err)
		return
	}

	userID := chi.URLParam(r, "id")
	roles, err := h.Service.AssignRole(r.Context(), userID, dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, MembershipsResponse{UserID: userID, Roles: roles})
}

// GetCurrentUser handles GET /users/me from token data alone.
func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		h.WriteAppError(w, internal.ErrInvalidToken)
		return
	}
	h.WriteJSON(w, http.StatusOK, claims.ToResponse())
}
