package handler

import (
	"log/slog"
	"net/http"

	"atelier/internal/domain/models"
	"atelier/internal/httputil"
	"atelier/internal/service/proposals"
)

// ProposalHandler handles proposal HTTP requests
type ProposalHandler struct {
	proposalService *proposals.Service
	logger          *slog.Logger
}

// NewProposalHandler creates a new proposal handler
func NewProposalHandler(proposalService *proposals.Service, logger *slog.Logger) *ProposalHandler {
	return &ProposalHandler{
		proposalService: proposalService,
		logger:          logger,
	}
}

// ListProposals retrieves all proposals for the user
// GET /api/proposals
func (h *ProposalHandler) ListProposals(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	list, err := h.proposalService.List(r.Context(), userID)
	if err != nil {
		handleError(w, err)
		return
	}
	if list == nil {
		list = []models.Proposal{}
	}

	httputil.RespondJSON(w, http.StatusOK, list)
}

// CreateProposal creates a new draft proposal
// POST /api/proposals
func (h *ProposalHandler) CreateProposal(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req proposals.CreateProposalRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	proposal, err := h.proposalService.Create(r.Context(), userID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, proposal)
}

// GetProposal retrieves a proposal by ID
// GET /api/proposals/{id}
func (h *ProposalHandler) GetProposal(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, ok := requirePathID(w, r)
	if !ok {
		return
	}

	proposal, err := h.proposalService.Get(r.Context(), userID, id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, proposal)
}

// UpdateProposal updates a proposal
// PATCH /api/proposals/{id}
func (h *ProposalHandler) UpdateProposal(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, ok := requirePathID(w, r)
	if !ok {
		return
	}

	var req proposals.UpdateProposalRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	proposal, err := h.proposalService.Update(r.Context(), userID, id, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, proposal)
}

// DeleteProposal deletes a proposal
// DELETE /api/proposals/{id}
func (h *ProposalHandler) DeleteProposal(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, ok := requirePathID(w, r)
	if !ok {
		return
	}

	if err := h.proposalService.Delete(r.Context(), userID, id); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DraftProposal generates body copy from the proposal's brief
// POST /api/proposals/{id}/draft
func (h *ProposalHandler) DraftProposal(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, ok := requirePathID(w, r)
	if !ok {
		return
	}

	proposal, fellBack, err := h.proposalService.Draft(r.Context(), userID, id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, struct {
		*models.Proposal
		Fallback bool `json:"fallback"`
	}{proposal, fellBack})
}
