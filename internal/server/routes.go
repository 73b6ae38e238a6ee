package server

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"
)

func addRoutes(r chi.Router, logger *slog.Logger, deps Deps) {
	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("Trivia API", "/openapi.json", "/docs"))

	r.Route("/api/communities/{community}", func(r chi.Router) {
		r.Use(communityMiddleware(deps.Pool, deps.DefaultChannel))

		r.Get("/teams", handleListTeams())
		r.Get("/state", handleState())
		r.Post("/teams/join", handleJoinTeam())
		r.Post("/teams/leave", handleLeaveTeam())
		r.Post("/guess", handleGuess())
		r.Post("/wager", handleWager())
		r.Get("/events", handleEvents(deps.Broker))
		r.Get("/ws", handleStream(logger, deps.Broker))

		// Moderator commands.
		r.Group(func(r chi.Router) {
			r.Use(moderatorMiddleware(deps.ModeratorHash))
			r.Post("/quiz/begin", handleBegin())
			r.Post("/quiz/skip", handleSkip())
			r.Post("/pause", handlePause())
			r.Post("/unpause", handleUnpause())
			r.Delete("/teams/{team}", handleDisbandTeam())
			r.Post("/teams/{team}/score", handleAdjustScore())
			r.Post("/teams/reset", handleResetTeams())
			r.Post("/scores/reset", handleResetScores())
			r.Put("/channels", handleUpdateChannels())
		})
	})

	if deps.Library != nil {
		r.Route("/api/admin/quizzes", func(r chi.Router) {
			r.Use(moderatorMiddleware(deps.ModeratorHash))
			r.Get("/", handleListQuizzes(deps.Library))
			r.Get("/{slug}", handleGetQuiz(deps.Library))
			r.Put("/{slug}", handlePutQuiz(deps.Library))
			r.Delete("/{slug}", handleDeleteQuiz(deps.Library))
		})
	}
}
