package handler

import (
	"net/http"

	id "prevplan/pkg/domain"
	"prevplan/pkg/platform/httputil"
	request "prevplan/pkg/platform/middleware/request"
)

func (h *Handler) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[createPlanRequest](w, r, h.logger, ctx, request.GetRequestID(ctx))
	if !ok {
		return
	}
	plan, err := h.service.CreatePlan(ctx, req.draft)
	if err != nil {
		h.fail(w, r, "create plan", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, createdResponse{ID: plan.ID.String()})
}

func (h *Handler) handleUpdatePlan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	planID, ok := pathID(w, r, "id", id.ParsePlanID)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[updatePlanRequest](w, r, h.logger, ctx, request.GetRequestID(ctx))
	if !ok {
		return
	}
	plan, err := h.service.UpdatePlan(ctx, planID, req.patch)
	if err != nil {
		h.fail(w, r, "update plan", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, plan)
}

func (h *Handler) handleDeletePlan(w http.ResponseWriter, r *http.Request) {
	planID, ok := pathID(w, r, "id", id.ParsePlanID)
	if !ok {
		return
	}
	if err := h.service.DeletePlan(r.Context(), planID); err != nil {
		h.fail(w, r, "delete plan", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	planID, ok := pathID(w, r, "id", id.ParsePlanID)
	if !ok {
		return
	}
	plan, err := h.service.GetPlan(r.Context(), planID)
	if err != nil {
		h.fail(w, r, "get plan", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, plan)
}

func (h *Handler) handleListPlansByClient(w http.ResponseWriter, r *http.Request) {
	clientID, ok := pathID(w, r, "client_id", id.ParseClientID)
	if !ok {
		return
	}
	plans, err := h.service.ListPlansByClient(r.Context(), clientID)
	if err != nil {
		h.fail(w, r, "list plans by client", err)
		return
	}
	writeList(w, plans)
}

func (h *Handler) handleListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.service.ListPlans(r.Context())
	if err != nil {
		h.fail(w, r, "list plans", err)
		return
	}
	writeList(w, plans)
}
