package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	id "prevplan/pkg/domain"
	"prevplan/pkg/platform/httputil"
	request "prevplan/pkg/platform/middleware/request"
)

func (h *Handler) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[clientRequest](w, r, h.logger, ctx, request.GetRequestID(ctx))
	if !ok {
		return
	}
	client, err := h.service.CreateClient(ctx, req.fields())
	if err != nil {
		h.fail(w, r, "create client", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, createdResponse{ID: client.ID.String()})
}

func (h *Handler) handleUpdateClient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	clientID, ok := pathID(w, r, "id", id.ParseClientID)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[clientRequest](w, r, h.logger, ctx, request.GetRequestID(ctx))
	if !ok {
		return
	}
	client, err := h.service.UpdateClient(ctx, clientID, req.fields())
	if err != nil {
		h.fail(w, r, "update client", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, client)
}

func (h *Handler) handleDeleteClient(w http.ResponseWriter, r *http.Request) {
	clientID, ok := pathID(w, r, "id", id.ParseClientID)
	if !ok {
		return
	}
	if err := h.service.DeleteClient(r.Context(), clientID); err != nil {
		h.fail(w, r, "delete client", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGetClient(w http.ResponseWriter, r *http.Request) {
	clientID, ok := pathID(w, r, "id", id.ParseClientID)
	if !ok {
		return
	}
	client, err := h.service.GetClient(r.Context(), clientID)
	if err != nil {
		h.fail(w, r, "get client", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, client)
}

func (h *Handler) handleGetClientByEmail(w http.ResponseWriter, r *http.Request) {
	client, err := h.service.GetClientByEmail(r.Context(), chi.URLParam(r, "email"))
	if err != nil {
		h.fail(w, r, "get client by email", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, client)
}

func (h *Handler) handleListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.service.ListClients(r.Context())
	if err != nil {
		h.fail(w, r, "list clients", err)
		return
	}
	writeList(w, clients)
}

// handlePortfolio returns a client with its plans and extra contributions.
func (h *Handler) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	clientID, ok := pathID(w, r, "id", id.ParseClientID)
	if !ok {
		return
	}
	portfolio, err := h.service.Portfolio(r.Context(), clientID)
	if err != nil {
		h.fail(w, r, "portfolio", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, portfolio)
}
