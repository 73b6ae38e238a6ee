package server

import (
	"net/http"
	"strings"

	"github.com/playperu/trivia/internal/game"
)

type BeginRequest struct {
	// Source is a file below the quiz directory or "library:<slug>".
	Source string `json:"source"`
}

type GuessRequest struct {
	Text string `json:"text"`
}

type GuessResponse struct {
	Correct bool `json:"correct"`
	Vote    bool `json:"vote"`
	Points  int  `json:"points"`
	Score   int  `json:"score"`
}

type WagerRequest struct {
	Amount int `json:"amount"`
}

type StateResponse = game.State

func handleState() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, gameFrom(r).State())
	}
}

func handleBegin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BeginRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.Source = strings.TrimSpace(req.Source)
		if req.Source == "" {
			writeError(w, http.StatusBadRequest, "source is required")
			return
		}

		g := gameFrom(r)
		if err := g.Begin(r.Context(), req.Source); err != nil {
			writeGameError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, g.State())
	}
}

func handleSkip() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g := gameFrom(r)
		if err := g.Skip(); err != nil {
			writeGameError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, g.State())
	}
}

func handlePause() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g := gameFrom(r)
		g.Pause()
		writeJSON(w, http.StatusOK, g.State())
	}
}

func handleUnpause() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g := gameFrom(r)
		g.Unpause()
		writeJSON(w, http.StatusOK, g.State())
	}
}

func handleGuess() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		player, err := playerFromRequest(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		var req GuessRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if strings.TrimSpace(req.Text) == "" {
			writeError(w, http.StatusBadRequest, "text is required")
			return
		}

		out, err := gameFrom(r).Guess(player, req.Text)
		if err != nil {
			writeGameError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, GuessResponse{
			Correct: out.Correct,
			Vote:    out.Vote,
			Points:  out.Points,
			Score:   out.Score,
		})
	}
}

func handleWager() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		player, err := playerFromRequest(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		var req WagerRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := gameFrom(r).Wager(player, req.Amount); err != nil {
			writeGameError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
