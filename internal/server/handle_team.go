package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/trivia/internal/output"
	"github.com/playperu/trivia/internal/team"
)

type TeamResponse struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Score   int      `json:"score"`
	Players []string `json:"players"`
}

func teamResponse(t team.Team) TeamResponse {
	players := []string{}
	for _, p := range t.PlayerList() {
		players = append(players, string(p))
	}
	return TeamResponse{ID: string(t.ID), Name: t.Name, Score: t.Score, Players: players}
}

type JoinTeamRequest struct {
	Name string `json:"name"`
}

type ScoreRequest struct {
	Delta int `json:"delta"`
}

type ChannelsRequest struct {
	// Channels maps team ids to chat channel ids.
	Channels map[string]string `json:"channels"`
}

func handleListTeams() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		teams := gameFrom(r).Teams()
		resp := make([]TeamResponse, 0, len(teams))
		for _, t := range teams {
			resp = append(resp, teamResponse(t))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func handleJoinTeam() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		player, err := playerFromRequest(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		var req JoinTeamRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		t, err := gameFrom(r).JoinTeam(player, req.Name)
		if err != nil {
			writeGameError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, teamResponse(t))
	}
}

func handleLeaveTeam() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		player, err := playerFromRequest(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		if err := gameFrom(r).LeaveTeam(player); err != nil {
			writeGameError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleDisbandTeam() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := gameFrom(r).DisbandTeam(chi.URLParam(r, "team"))
		if err != nil {
			writeGameError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, teamResponse(t))
	}
}

func handleAdjustScore() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ScoreRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		id := team.ID(team.Fold(team.Normalize(chi.URLParam(r, "team"))))
		t, err := gameFrom(r).AdjustScore(id, req.Delta)
		if err != nil {
			writeGameError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, teamResponse(t))
	}
}

func handleResetTeams() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameFrom(r).ResetTeams()
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleResetScores() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameFrom(r).ResetScores()
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleUpdateChannels() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ChannelsRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		channels := make(map[team.ID]output.ChannelID, len(req.Channels))
		for name, ch := range req.Channels {
			if ch == "" {
				writeError(w, http.StatusBadRequest, "channel ids must not be empty")
				return
			}
			id, _, err := team.Sanitize(name)
			if err != nil {
				writeGameError(w, err)
				return
			}
			channels[id] = output.ChannelID(ch)
		}
		gameFrom(r).UpdateTeamChannels(channels)
		w.WriteHeader(http.StatusNoContent)
	}
}
