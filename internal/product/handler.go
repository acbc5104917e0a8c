package product

import (
	"context"
	"io"
	"net/http"

	"github.com/frahmantamala/school-store/internal"
	"github.com/frahmantamala/school-store/internal/transport"
)

const thumbnailField = "thumbnail"

type ServiceAPI interface {
	AddProduct(ctx context.Context, dto CreateProductDTO) (*Product, error)
	GetProduct(ctx context.Context, id int64) (*Product, error)
	UpdateProduct(ctx context.Context, id int64, dto UpdateProductDTO) (*Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	ListProducts(ctx context.Context, filter ListFilter) (*internal.PaginatedResult[ProductResponse], error)
	SetThumbnail(ctx context.Context, id int64, contentType string, body io.Reader) (*Product, error)
}

type Handler struct {
	*transport.BaseHandler
	Service        ServiceAPI
	maxUploadBytes int64
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI, maxUploadMB int64) *Handler {
	if maxUploadMB <= 0 {
		maxUploadMB = 5
	}
	return &Handler{
		BaseHandler:    baseHandler,
		Service:        service,
		maxUploadBytes: maxUploadMB << 20,
	}
}

// ListProducts handles GET /products?category=&page=&page_size=
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{
		Category: r.URL.Query().Get("category"),
		Page:     h.QueryInt(r, "page", 1),
		PageSize: h.QueryInt(r, "page_size", internal.DefaultPageSize),
	}

	result, err := h.Service.ListProducts(r.Context(), filter)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}

// GetProduct handles GET /products/{id}
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathInt64(r, "id")
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	p, err := h.Service.GetProduct(r.Context(), id)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, p.ToResponse())
}

// CreateProduct handles POST /products
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var dto CreateProductDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, err)
		return
	}

	p, err := h.Service.AddProduct(r.Context(), dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, p.ToResponse())
}

// UpdateProduct handles PATCH /products/{id}
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathInt64(r, "id")
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	var dto UpdateProductDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, err)
		return
	}

	p, err := h.Service.UpdateProduct(r.Context(), id, dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, p.ToResponse())
}

// DeleteProduct handles DELETE /products/{id}
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathInt64(r, "id")
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	if err := h.Service.DeleteProduct(r.Context(), id); err != nil {
		h.WriteAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UploadThumbnail handles PUT /products/{id}/thumbnail (multipart field "thumbnail")
func (h *Handler) UploadThumbnail(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathInt64(r, "id")
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		h.WriteAppError(w, internal.NewValidationFieldError(thumbnailField, "invalid or oversized upload", internal.ErrCodeInvalidRequest).WithCause(err))
		return
	}

	file, header, err := r.FormFile(thumbnailField)
	if err != nil {
		h.WriteAppError(w, internal.NewValidationFieldError(thumbnailField, "thumbnail file is required", internal.ErrCodeInvalidRequest).WithCause(err))
		return
	}
	defer file.Close()

	p, err := h.Service.SetThumbnail(r.Context(), id, header.Header.Get("Content-Type"), file)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, p.ToResponse())
}
