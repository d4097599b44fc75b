package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	id "prevplan/pkg/domain"
	"prevplan/pkg/platform/httputil"
	request "prevplan/pkg/platform/middleware/request"
)

func (h *Handler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[productRequest](w, r, h.logger, ctx, request.GetRequestID(ctx))
	if !ok {
		return
	}
	product, err := h.service.CreateProduct(ctx, req.fields())
	if err != nil {
		h.fail(w, r, "create product", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, createdResponse{ID: product.ID.String()})
}

func (h *Handler) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	productID, ok := pathID(w, r, "id", id.ParseProductID)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[productRequest](w, r, h.logger, ctx, request.GetRequestID(ctx))
	if !ok {
		return
	}
	product, err := h.service.UpdateProduct(ctx, productID, req.fields())
	if err != nil {
		h.fail(w, r, "update product", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, product)
}

func (h *Handler) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "id", id.ParseProductID)
	if !ok {
		return
	}
	if err := h.service.DeleteProduct(r.Context(), productID); err != nil {
		h.fail(w, r, "delete product", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "id", id.ParseProductID)
	if !ok {
		return
	}
	product, err := h.service.GetProduct(r.Context(), productID)
	if err != nil {
		h.fail(w, r, "get product", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, product)
}

func (h *Handler) handleListProductsByName(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListProductsByName(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		h.fail(w, r, "list products by name", err)
		return
	}
	writeList(w, products)
}

func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListProducts(r.Context())
	if err != nil {
		h.fail(w, r, "list products", err)
		return
	}
	writeList(w, products)
}
