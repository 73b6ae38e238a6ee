package server

import (
	"errors"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/playperu/trivia/internal/team"
)

// playerHeader carries the chat platform id of the player issuing a command.
const playerHeader = "X-Player-ID"

var (
	errNoPlayer    = errors.New("X-Player-ID header required")
	errNoModerator = errors.New("invalid moderator token")
)

func playerFromRequest(r *http.Request) (team.PlayerID, error) {
	id := strings.TrimSpace(r.Header.Get(playerHeader))
	if id == "" {
		return "", errNoPlayer
	}
	return team.PlayerID(id), nil
}

func moderatorFromRequest(r *http.Request, hash string) error {
	if hash == "" {
		return errNoModerator
	}
	token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !found || token == "" {
		return errNoModerator
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(token)); err != nil {
		return errNoModerator
	}
	return nil
}
