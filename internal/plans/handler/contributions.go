package handler

import (
	"net/http"

	"prevplan/internal/plans/models"
	id "prevplan/pkg/domain"
	"prevplan/pkg/platform/httputil"
	request "prevplan/pkg/platform/middleware/request"
)

func (h *Handler) handleCreateContribution(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[createContributionRequest](w, r, h.logger, ctx, request.GetRequestID(ctx))
	if !ok {
		return
	}
	contribution, err := h.service.CreateContribution(ctx, req.draft)
	if err != nil {
		h.fail(w, r, "create extra contribution", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, createdResponse{ID: contribution.ID.String()})
}

func (h *Handler) handleUpdateContribution(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	contributionID, ok := pathID(w, r, "id", id.ParseContributionID)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[updateContributionRequest](w, r, h.logger, ctx, request.GetRequestID(ctx))
	if !ok {
		return
	}
	contribution, err := h.service.UpdateContribution(ctx, contributionID, models.ContributionPatch{Value: req.Value})
	if err != nil {
		h.fail(w, r, "update extra contribution", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, contribution)
}

func (h *Handler) handleDeleteContribution(w http.ResponseWriter, r *http.Request) {
	contributionID, ok := pathID(w, r, "id", id.ParseContributionID)
	if !ok {
		return
	}
	if err := h.service.DeleteContribution(r.Context(), contributionID); err != nil {
		h.fail(w, r, "delete extra contribution", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGetContribution(w http.ResponseWriter, r *http.Request) {
	contributionID, ok := pathID(w, r, "id", id.ParseContributionID)
	if !ok {
		return
	}
	contribution, err := h.service.GetContribution(r.Context(), contributionID)
	if err != nil {
		h.fail(w, r, "get extra contribution", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, contribution)
}

func (h *Handler) handleListContributionsByClient(w http.ResponseWriter, r *http.Request) {
	clientID, ok := pathID(w, r, "client_id", id.ParseClientID)
	if !ok {
		return
	}
	contributions, err := h.service.ListContributionsByClient(r.Context(), clientID)
	if err != nil {
		h.fail(w, r, "list extra contributions by client", err)
		return
	}
	writeList(w, contributions)
}

func (h *Handler) handleListContributions(w http.ResponseWriter, r *http.Request) {
	contributions, err := h.service.ListContributions(r.Context())
	if err != nil {
		h.fail(w, r, "list extra contributions", err)
		return
	}
	writeList(w, contributions)
}
