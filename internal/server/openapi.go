package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/playperu/trivia/internal/library"
	"github.com/playperu/trivia/internal/quiz"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse maps dependency names to their status.
type HealthResponse map[string]struct {
	Status    string `json:"status"`
	LatencyMS int64  `json:"latencyMs"`
}

type communityInput struct {
	Community string `path:"community"`
	Channel   string `header:"X-Channel-ID" description:"Channel used when the command creates the community's game."`
}

type playerInput struct {
	communityInput
	Player string `header:"X-Player-ID" required:"true"`
}

type moderatorInput struct {
	communityInput
	Authorization string `header:"Authorization" required:"true" description:"Bearer moderator token."`
}

type joinTeamInput struct {
	playerInput
	JoinTeamRequest
}

type guessInput struct {
	playerInput
	GuessRequest
}

type wagerInput struct {
	playerInput
	WagerRequest
}

type beginInput struct {
	moderatorInput
	BeginRequest
}

type teamInput struct {
	moderatorInput
	Team string `path:"team"`
}

type scoreInput struct {
	teamInput
	ScoreRequest
}

type channelsInput struct {
	moderatorInput
	ChannelsRequest
}

type streamInput struct {
	communityInput
	Filter string `query:"channel" description:"Only forward messages for this channel."`
}

type slugInput struct {
	Slug          string `path:"slug"`
	Authorization string `header:"Authorization" required:"true"`
}

type adminInput struct {
	Authorization string `header:"Authorization" required:"true"`
}

type putQuizInput struct {
	slugInput
	quiz.Definition
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Trivia API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Command and event API for team trivia games, one game per community.")

	const base = "/api/communities/{community}"

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of backend dependencies.")
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// GET teams
	listTeams, _ := r.NewOperationContext(http.MethodGet, base+"/teams")
	listTeams.SetSummary("List teams")
	listTeams.SetDescription("Returns the teams of the community's game in creation order.")
	listTeams.AddReqStructure(communityInput{})
	listTeams.AddRespStructure([]TeamResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(listTeams)

	// GET state
	getState, _ := r.NewOperationContext(http.MethodGet, base+"/state")
	getState.SetSummary("Game state")
	getState.SetDescription("Returns the game phase and, during a quiz, the current question and time left.")
	getState.AddReqStructure(communityInput{})
	getState.AddRespStructure(StateResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getState)

	// POST teams/join
	joinTeam, _ := r.NewOperationContext(http.MethodPost, base+"/teams/join")
	joinTeam.SetSummary("Join a team")
	joinTeam.SetDescription("Moves the player onto the named team, creating it if needed. During a quiz only players without a team may join.")
	joinTeam.AddReqStructure(joinTeamInput{})
	joinTeam.AddRespStructure(TeamResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	joinTeam.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	joinTeam.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(joinTeam)

	// POST teams/leave
	leaveTeam, _ := r.NewOperationContext(http.MethodPost, base+"/teams/leave")
	leaveTeam.SetSummary("Leave team")
	leaveTeam.SetDescription("Removes the player from their team. Only allowed between quizzes.")
	leaveTeam.AddReqStructure(playerInput{})
	leaveTeam.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusNoContent))
	leaveTeam.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusForbidden))
	leaveTeam.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(leaveTeam)

	// POST guess
	guess, _ := r.NewOperationContext(http.MethodPost, base+"/guess")
	guess.SetSummary("Submit a guess")
	guess.SetDescription("Answers an open question, or votes on a multiple choice question, for the player's team.")
	guess.AddReqStructure(guessInput{})
	guess.AddRespStructure(GuessResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	guess.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	guess.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusForbidden))
	guess.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(guess)

	// POST wager
	wager, _ := r.NewOperationContext(http.MethodPost, base+"/wager")
	wager.SetSummary("Place a wager")
	wager.SetDescription("Bets points on the upcoming wager question. Allowed during the wager phase only.")
	wager.AddReqStructure(wagerInput{})
	wager.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusNoContent))
	wager.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	wager.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(wager)

	// GET events
	getEvents, _ := r.NewOperationContext(http.MethodGet, base+"/events")
	getEvents.SetSummary("SSE event stream")
	getEvents.SetDescription("Server-Sent Events stream of every message the community's game sends.")
	getEvents.AddReqStructure(streamInput{})
	getEvents.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	_ = r.AddOperation(getEvents)

	// GET ws
	getWS, _ := r.NewOperationContext(http.MethodGet, base+"/ws")
	getWS.SetSummary("WebSocket event stream")
	getWS.SetDescription("Upgrades to a WebSocket that carries the same messages as the SSE stream.")
	getWS.AddReqStructure(streamInput{})
	getWS.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusSwitchingProtocols),
		openapi.WithContentType("text/plain"))
	_ = r.AddOperation(getWS)

	// POST quiz/begin
	begin, _ := r.NewOperationContext(http.MethodPost, base+"/quiz/begin")
	begin.SetSummary("Begin a quiz")
	begin.SetDescription("Loads a quiz and starts it. Requires moderator token.")
	begin.AddReqStructure(beginInput{})
	begin.AddRespStructure(StateResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	begin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	begin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnprocessableEntity))
	begin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(begin)

	// POST quiz/skip
	skip, _ := r.NewOperationContext(http.MethodPost, base+"/quiz/skip")
	skip.SetSummary("Skip phase")
	skip.SetDescription("Ends the current quiz phase now. Requires moderator token.")
	skip.AddReqStructure(moderatorInput{})
	skip.AddRespStructure(StateResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	skip.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	skip.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(skip)

	// POST pause / unpause
	for _, path := range []string{"/pause", "/unpause"} {
		op, _ := r.NewOperationContext(http.MethodPost, base+path)
		op.SetSummary(path[1:] + " game")
		op.SetDescription("Stops or restarts the quiz clock. Requires moderator token.")
		op.AddReqStructure(moderatorInput{})
		op.AddRespStructure(StateResponse{}, openapi.WithHTTPStatus(http.StatusOK))
		op.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
		_ = r.AddOperation(op)
	}

	// DELETE teams/{team}
	disband, _ := r.NewOperationContext(http.MethodDelete, base+"/teams/{team}")
	disband.SetSummary("Disband team")
	disband.SetDescription("Removes a team and its members. Requires moderator token.")
	disband.AddReqStructure(teamInput{})
	disband.AddRespStructure(TeamResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	disband.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	disband.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(disband)

	// POST teams/{team}/score
	score, _ := r.NewOperationContext(http.MethodPost, base+"/teams/{team}/score")
	score.SetSummary("Adjust score")
	score.SetDescription("Adds delta to a team's score. Requires moderator token.")
	score.AddReqStructure(scoreInput{})
	score.AddRespStructure(TeamResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	score.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	score.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(score)

	// POST teams/reset, scores/reset
	for _, path := range []string{"/teams/reset", "/scores/reset"} {
		op, _ := r.NewOperationContext(http.MethodPost, base+path)
		op.SetSummary("Reset " + path[1:len(path)-len("/reset")])
		op.SetDescription("Requires moderator token.")
		op.AddReqStructure(moderatorInput{})
		op.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusNoContent))
		op.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
		_ = r.AddOperation(op)
	}

	// PUT channels
	channels, _ := r.NewOperationContext(http.MethodPut, base+"/channels")
	channels.SetSummary("Route team channels")
	channels.SetDescription("Replaces the team to channel map used for team messages. Requires moderator token.")
	channels.AddReqStructure(channelsInput{})
	channels.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusNoContent))
	channels.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	channels.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(channels)

	// GET /api/admin/quizzes
	listQuizzes, _ := r.NewOperationContext(http.MethodGet, "/api/admin/quizzes")
	listQuizzes.SetSummary("List stored quizzes")
	listQuizzes.SetDescription("Returns the quiz library. Requires moderator token.")
	listQuizzes.AddReqStructure(adminInput{})
	listQuizzes.AddRespStructure([]library.Summary{}, openapi.WithHTTPStatus(http.StatusOK))
	listQuizzes.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(listQuizzes)

	// GET /api/admin/quizzes/{slug}
	getQuiz, _ := r.NewOperationContext(http.MethodGet, "/api/admin/quizzes/{slug}")
	getQuiz.SetSummary("Get stored quiz")
	getQuiz.SetDescription("Returns a stored quiz definition. Requires moderator token.")
	getQuiz.AddReqStructure(slugInput{})
	getQuiz.AddRespStructure(quiz.Definition{}, openapi.WithHTTPStatus(http.StatusOK))
	getQuiz.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	getQuiz.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getQuiz)

	// PUT /api/admin/quizzes/{slug}
	putQuiz, _ := r.NewOperationContext(http.MethodPut, "/api/admin/quizzes/{slug}")
	putQuiz.SetSummary("Store quiz")
	putQuiz.SetDescription("Validates and stores a quiz as JSON or YAML. Begin it with source library:<slug>. Requires moderator token.")
	putQuiz.AddReqStructure(putQuizInput{})
	putQuiz.AddRespStructure(quiz.Definition{}, openapi.WithHTTPStatus(http.StatusOK))
	putQuiz.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	putQuiz.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(putQuiz)

	// DELETE /api/admin/quizzes/{slug}
	deleteQuiz, _ := r.NewOperationContext(http.MethodDelete, "/api/admin/quizzes/{slug}")
	deleteQuiz.SetSummary("Delete stored quiz")
	deleteQuiz.SetDescription("Requires moderator token.")
	deleteQuiz.AddReqStructure(slugInput{})
	deleteQuiz.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusNoContent))
	deleteQuiz.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	deleteQuiz.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(deleteQuiz)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
