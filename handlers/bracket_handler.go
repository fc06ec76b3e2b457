package handlers

import (
	"net/http"

	"github.com/openarena/bracket-engine/services"
)

type BracketHandler struct {
	bracketService services.BracketService
}

func NewBracketHandler(bracketService services.BracketService) *BracketHandler {
	return &BracketHandler{bracketService: bracketService}
}

type generateBracketRequest struct {
	BracketType string `json:"bracket_type"`
	Shuffle     *bool  `json:"shuffle"`
}

// Generate handles POST /tournaments/{tournamentID}/events/{eventID}/bracket.
func (h *BracketHandler) Generate(w http.ResponseWriter, r *http.Request) {
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

	var input generateBracketRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matchups, err := h.bracketService.GenerateBracket(r.Context(), tournamentID, eventID, input.BracketType,
		services.GenerateOptions{Shuffle: input.Shuffle})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"matchups": matchups}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// List handles GET /tournaments/{tournamentID}/events/{eventID}/matchups.
func (h *BracketHandler) List(w http.ResponseWriter, r *http.Request) {
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

	matchups, err := h.bracketService.ListEventMatchups(r.Context(), tournamentID, eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matchups": matchups}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
