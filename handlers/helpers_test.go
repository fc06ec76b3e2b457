package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/openarena/bracket-engine/repositories"
	"github.com/openarena/bracket-engine/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapServiceErrorToHTTP(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "tournament not found", err: repositories.ErrTournamentNotFound, wantStatus: http.StatusNotFound},
		{name: "event not found", err: fmt.Errorf("load: %w", repositories.ErrEventNotFound), wantStatus: http.StatusNotFound},
		{name: "matchup not found", err: repositories.ErrMatchupNotFound, wantStatus: http.StatusNotFound},
		{name: "unknown bracket type", err: services.ErrUnknownBracketType, wantStatus: http.StatusBadRequest},
		{name: "scope mismatch", err: services.ErrEventScopeMismatch, wantStatus: http.StatusBadRequest},
		{name: "invalid winner", err: services.ErrInvalidWinner, wantStatus: http.StatusBadRequest},
		{name: "result required", err: services.ErrResultRequired, wantStatus: http.StatusBadRequest},
		{name: "missing entrants", err: services.ErrMatchupMissingEntrants, wantStatus: http.StatusBadRequest},
		{name: "invalid transition", err: services.ErrInvalidStatusTransition, wantStatus: http.StatusConflict},
		{name: "slots full", err: services.ErrAdvancementSlotsFull, wantStatus: http.StatusConflict},
		{name: "unexpected", err: errors.New("connection reset"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/", nil)

			mapServiceErrorToHTTP(w, r, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		})
	}
}

func TestMapServiceErrorToHTTPEntrantValidation(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/", nil)

	mapServiceErrorToHTTP(w, r, &services.EntrantValidationError{
		Field:      "participants",
		MissingIDs: []int{4, 9},
	})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var body struct {
		Error struct {
			Field      string `json:"field"`
			MissingIDs []int  `json:"missing_ids"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "participants", body.Error.Field)
	assert.Equal(t, []int{4, 9}, body.Error.MissingIDs)
}

func TestIDParam(t *testing.T) {
	newRequest := func(value string) *http.Request {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("tournamentID", value)
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	}

	id, err := idParam(newRequest("42"), "tournamentID")
	require.NoError(t, err)
	assert.Equal(t, 42, id)

	for _, raw := range []string{"", "abc", "0", "-3"} {
		_, err := idParam(newRequest(raw), "tournamentID")
		assert.Error(t, err, "raw %q", raw)
	}
}

func TestReadJSON(t *testing.T) {
	type payload struct {
		BracketType string `json:"bracket_type"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "valid", body: `{"bracket_type":"round_robin"}`},
		{name: "empty body", body: "", wantErr: "must not be empty"},
		{name: "malformed", body: `{"bracket_type":`, wantErr: "badly-formed JSON"},
		{name: "unknown field", body: `{"nope":true}`, wantErr: "unknown key"},
		{name: "trailing value", body: `{"bracket_type":"x"}{}`, wantErr: "single JSON value"},
		{name: "wrong type", body: `{"bracket_type":7}`, wantErr: "incorrect JSON type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))

			var dst payload
			err := readJSON(w, r, &dst)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, "round_robin", dst.BracketType)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
