// Package game holds the per-community trivia game and the pool that ticks
// every game on a shared clock.
package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/playperu/trivia/internal/output"
	"github.com/playperu/trivia/internal/quiz"
	"github.com/playperu/trivia/internal/team"
)

var (
	ErrNotOnTeam  = errors.New("player is not on a team")
	ErrWrongPhase = quiz.ErrWrongPhase
	ErrTeamLocked = errors.New("teams can not be changed during a quiz")
)

// ErrNoQuizInProgress is returned by commands that need a running quiz.
var ErrNoQuizInProgress = fmt.Errorf("no quiz in progress: %w", ErrWrongPhase)

// Phase is the state of a game: startup, setup or quiz.
type Phase interface {
	Name() string
	isPhase()
}

type startupPhase struct{}

type setupPhase struct{}

type quizPhase struct{ q *quiz.Quiz }

func (startupPhase) Name() string { return "startup" }
func (setupPhase) Name() string   { return "setup" }
func (quizPhase) Name() string    { return "quiz" }

func (startupPhase) isPhase() {}
func (setupPhase) isPhase()   {}
func (quizPhase) isPhase()    {}

// Game is the trivia game of one community. All methods are safe for
// concurrent use; each holds the game lock for its whole duration.
type Game struct {
	mu       sync.Mutex
	phase    Phase
	paused   bool
	teams    *team.Registry
	sink     output.Sink
	loader   quiz.Loader
	settings quiz.Settings
	logger   *slog.Logger
}

func New(sink output.Sink, loader quiz.Loader, settings quiz.Settings, logger *slog.Logger) *Game {
	g := &Game{
		phase:    startupPhase{},
		teams:    team.NewRegistry(),
		sink:     sink,
		loader:   loader,
		settings: settings,
		logger:   logger,
	}
	g.phase = setupPhase{}
	return g
}

// Begin loads a quiz from source and starts it. It is only allowed in setup.
func (g *Game) Begin(ctx context.Context, source string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch g.phase.(type) {
	case setupPhase:
	case startupPhase, quizPhase:
		return fmt.Errorf("begin: %w", ErrWrongPhase)
	}

	def, err := g.loader.Load(ctx, source)
	if err != nil {
		if !errors.Is(err, quiz.ErrLoad) {
			err = quiz.LoadError(source, err)
		}
		return err
	}

	g.phase = quizPhase{quiz.New(def, g.settings, g.sink)}
	g.logger.Info("quiz started", "source", source, "questions", len(def.Questions))
	return nil
}

// Tick advances a running quiz by dt. Paused games do not advance.
func (g *Game) Tick(dt time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.paused {
		return
	}
	switch p := g.phase.(type) {
	case startupPhase, setupPhase:
	case quizPhase:
		p.q.Tick(g.teams, dt)
		g.checkOver(p.q)
	}
}

// Skip ends the current quiz phase early.
func (g *Game) Skip() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch p := g.phase.(type) {
	case quizPhase:
		p.q.Skip(g.teams)
		g.checkOver(p.q)
		return nil
	case startupPhase, setupPhase:
	}
	return ErrNoQuizInProgress
}

func (g *Game) checkOver(q *quiz.Quiz) {
	if !q.IsOver() {
		return
	}
	standings := g.teams.Standings()

	var b strings.Builder
	b.WriteString("The quiz is over! Final standings:")
	for i, t := range standings {
		fmt.Fprintf(&b, "\n%d. %s: %d points", i+1, t.Name, t.Score)
	}
	g.sink.Say(output.AllTeams, b.String())
	g.sink.Push(output.Payload{
		Kind:      output.KindQuizEnded,
		Title:     q.Status().Title,
		Standings: output.StandingsOf(standings),
	})

	g.phase = setupPhase{}
	g.logger.Info("quiz finished", "teams", len(standings))
}

// Guess submits an answer on behalf of the player's team.
func (g *Game) Guess(player team.PlayerID, text string) (quiz.Outcome, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	id, ok := g.teams.FindTeamOf(player)
	if !ok {
		return quiz.Outcome{}, ErrNotOnTeam
	}
	switch p := g.phase.(type) {
	case quizPhase:
		return p.q.Guess(g.teams, id, text)
	case startupPhase, setupPhase:
	}
	return quiz.Outcome{}, ErrNoQuizInProgress
}

// Wager places a bet for the player's team during a wager phase.
func (g *Game) Wager(player team.PlayerID, amount int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	id, ok := g.teams.FindTeamOf(player)
	if !ok {
		return ErrNotOnTeam
	}
	switch p := g.phase.(type) {
	case quizPhase:
		return p.q.Wager(g.teams, id, amount)
	case startupPhase, setupPhase:
	}
	return ErrNoQuizInProgress
}

// JoinTeam puts player on the team called name. During a quiz only players
// without a team may join.
func (g *Game) JoinTeam(player team.PlayerID, name string) (team.Team, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.inSetup() {
		if _, ok := g.teams.FindTeamOf(player); ok {
			return team.Team{}, ErrTeamLocked
		}
	}
	t, err := g.teams.Join(player, name)
	if err != nil {
		return team.Team{}, err
	}
	g.sink.Say(output.AllTeams, fmt.Sprintf("%s joined team %s", player, t.Name))
	return t, nil
}

// LeaveTeam removes player from their team. It is only allowed in setup.
func (g *Game) LeaveTeam(player team.PlayerID) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.inSetup() {
		return ErrTeamLocked
	}
	id, ok := g.teams.FindTeamOf(player)
	if !ok {
		return ErrNotOnTeam
	}
	t, _ := g.teams.Get(id)
	g.teams.LeaveAll(player)
	g.sink.Say(output.AllTeams, fmt.Sprintf("%s left team %s", player, t.Name))
	return nil
}

func (g *Game) DisbandTeam(name string) (team.Team, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	t, err := g.teams.Disband(name)
	if err != nil {
		return team.Team{}, err
	}
	g.sink.Say(output.AllTeams, fmt.Sprintf("Team %s was disbanded", t.Name))
	return t, nil
}

func (g *Game) AdjustScore(id team.ID, delta int) (team.Team, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	t, err := g.teams.AdjustScore(id, delta)
	if err != nil {
		return team.Team{}, err
	}
	g.sink.Say(output.AllTeams, fmt.Sprintf("Team %s's score was updated to %d points", t.Name, t.Score))
	return t, nil
}

func (g *Game) ResetTeams() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.teams.ResetAll()
	g.sink.Say(output.AllTeams, "Teams were reset")
}

func (g *Game) ResetScores() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.teams.ResetScores()
	g.sink.Say(output.AllTeams, "Scores were reset")
}

// Pause stops the quiz clock. It reports whether the game was running.
func (g *Game) Pause() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.paused {
		return false
	}
	g.paused = true
	g.sink.Say(output.AllTeams, "The game is now paused, use `!unpause` to resume.")
	return true
}

// Unpause restarts the quiz clock. It reports whether the game was paused.
func (g *Game) Unpause() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.paused {
		return false
	}
	g.paused = false
	g.sink.Say(output.AllTeams, "The game has resumed.")
	return true
}

func (g *Game) UpdateTeamChannels(channels map[team.ID]output.ChannelID) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.sink.UpdateTeamChannels(channels)
}

// Teams returns a copy of the teams in creation order. The registry
// guards itself, so reads do not wait on a quiz being loaded.
func (g *Game) Teams() []team.Team {
	return g.teams.Snapshot()
}

// State is a read-only view of a game.
type State struct {
	Phase  string       `json:"phase"`
	Paused bool         `json:"paused"`
	Quiz   *quiz.Status `json:"quiz,omitempty"`
}

func (g *Game) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()

	s := State{Phase: g.phase.Name(), Paused: g.paused}
	switch p := g.phase.(type) {
	case quizPhase:
		st := p.q.Status()
		s.Quiz = &st
	case startupPhase, setupPhase:
	}
	return s
}

func (g *Game) inSetup() bool {
	switch g.phase.(type) {
	case setupPhase:
		return true
	case startupPhase, quizPhase:
	}
	return false
}
