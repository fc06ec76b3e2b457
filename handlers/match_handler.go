package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/openarena/bracket-engine/models"
	"github.com/openarena/bracket-engine/services"
)

type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(matchService services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: matchService}
}

// SubmitResult handles PUT /matchups/{matchupID}/result.
func (h *MatchHandler) SubmitResult(w http.ResponseWriter, r *http.Request) {
	matchupID, err := idParam(r, "matchupID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.SubmitResultParams
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matchup, err := h.matchService.SubmitResult(r.Context(), matchupID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matchup": matchup}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus handles PATCH /matchups/{matchupID}/status.
func (h *MatchHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	matchupID, err := idParam(r, "matchupID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input updateStatusRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	status := models.MatchStatus(strings.ToLower(strings.TrimSpace(input.Status)))
	matchup, err := h.matchService.UpdateStatus(r.Context(), matchupID, status)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matchup": matchup}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type disputeRequest struct {
	Reason string `json:"reason"`
}

// FlagDispute handles POST /matchups/{matchupID}/dispute.
func (h *MatchHandler) FlagDispute(w http.ResponseWriter, r *http.Request) {
	matchupID, err := idParam(r, "matchupID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input disputeRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if strings.TrimSpace(input.Reason) == "" {
		badRequestResponse(w, r, errors.New("reason is required"))
		return
	}

	matchup, err := h.matchService.FlagDispute(r.Context(), matchupID, input.Reason)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matchup": matchup}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// PropagateByes handles POST /tournaments/{tournamentID}/events/{eventID}/byes/propagate.
func (h *MatchHandler) PropagateByes(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := idParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	eventID, err := idParam(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	placed, err := h.matchService.PropagateByes(r.Context(), tournamentID, eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"byes_advanced": placed}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
