package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/playperu/trivia/internal/game"
	"github.com/playperu/trivia/internal/library"
	"github.com/playperu/trivia/internal/quiz"
	"github.com/playperu/trivia/internal/team"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeGameError maps a command error to its HTTP status.
func writeGameError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, quiz.ErrLoad):
		return http.StatusUnprocessableEntity
	case errors.Is(err, team.ErrInvalidName),
		errors.Is(err, quiz.ErrInvalidWager),
		errors.Is(err, quiz.ErrInvalidChoice),
		errors.Is(err, library.ErrInvalidSlug):
		return http.StatusBadRequest
	case errors.Is(err, game.ErrNotOnTeam):
		return http.StatusForbidden
	case errors.Is(err, team.ErrNotFound), errors.Is(err, library.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, quiz.ErrWrongPhase),
		errors.Is(err, game.ErrTeamLocked),
		errors.Is(err, quiz.ErrAlreadyAnswered):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
