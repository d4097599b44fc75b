package handler

import (
	"net/http"

	"prevplan/internal/plans/models"
	id "prevplan/pkg/domain"
	"prevplan/pkg/platform/httputil"
	request "prevplan/pkg/platform/middleware/request"
)

func (h *Handler) handleCreateRescue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[createRescueRequest](w, r, h.logger, ctx, request.GetRequestID(ctx))
	if !ok {
		return
	}
	rescue, err := h.service.CreateRescue(ctx, req.draft)
	if err != nil {
		h.fail(w, r, "create rescue", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, createdResponse{ID: rescue.ID.String()})
}

func (h *Handler) handleUpdateRescue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rescueID, ok := pathID(w, r, "id", id.ParseRescueID)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[updateRescueRequest](w, r, h.logger, ctx, request.GetRequestID(ctx))
	if !ok {
		return
	}
	rescue, err := h.service.UpdateRescue(ctx, rescueID, models.RescuePatch{Value: req.Value})
	if err != nil {
		h.fail(w, r, "update rescue", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rescue)
}

func (h *Handler) handleDeleteRescue(w http.ResponseWriter, r *http.Request) {
	rescueID, ok := pathID(w, r, "id", id.ParseRescueID)
	if !ok {
		return
	}
	if err := h.service.DeleteRescue(r.Context(), rescueID); err != nil {
		h.fail(w, r, "delete rescue", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGetRescue(w http.ResponseWriter, r *http.Request) {
	rescueID, ok := pathID(w, r, "id", id.ParseRescueID)
	if !ok {
		return
	}
	rescue, err := h.service.GetRescue(r.Context(), rescueID)
	if err != nil {
		h.fail(w, r, "get rescue", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rescue)
}

func (h *Handler) handleListRescuesByPlan(w http.ResponseWriter, r *http.Request) {
	planID, ok := pathID(w, r, "plan_id", id.ParsePlanID)
	if !ok {
		return
	}
	rescues, err := h.service.ListRescuesByPlan(r.Context(), planID)
	if err != nil {
		h.fail(w, r, "list rescues by plan", err)
		return
	}
	writeList(w, rescues)
}

func (h *Handler) handleListRescues(w http.ResponseWriter, r *http.Request) {
	rescues, err := h.service.ListRescues(r.Context())
	if err != nil {
		h.fail(w, r, "list rescues", err)
		return
	}
	writeList(w, rescues)
}
