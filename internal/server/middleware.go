package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/trivia/internal/game"
	"github.com/playperu/trivia/internal/output"
)

type ctxKey int

const (
	ctxKeyGame ctxKey = iota
	ctxKeyCommunity
)

// channelHeader names the chat channel a command came from. It only
// matters for the first command of a community, which creates its game.
const channelHeader = "X-Channel-ID"

func communityMiddleware(pool *game.Pool, defaultChannel output.ChannelID) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			community := output.CommunityID(chi.URLParam(r, "community"))
			if community == "" {
				writeError(w, http.StatusNotFound, "community not found")
				return
			}

			channel := output.ChannelID(r.Header.Get(channelHeader))
			if channel == "" {
				channel = defaultChannel
			}

			g := pool.GetOrCreate(community, channel)
			ctx := context.WithValue(r.Context(), ctxKeyGame, g)
			ctx = context.WithValue(ctx, ctxKeyCommunity, community)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func moderatorMiddleware(hash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := moderatorFromRequest(r, hash); err != nil {
				writeError(w, http.StatusUnauthorized, "moderator token required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func gameFrom(r *http.Request) *game.Game {
	return r.Context().Value(ctxKeyGame).(*game.Game)
}

func communityFrom(r *http.Request) output.CommunityID {
	return r.Context().Value(ctxKeyCommunity).(output.CommunityID)
}
