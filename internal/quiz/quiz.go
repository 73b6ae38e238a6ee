// Package quiz runs a single trivia session over a team scoreboard.
//
// Each question moves through
//
//	Cooldown → [Wager] → Question → [Vote] → Results
//
// where Wager is used for wager questions and Vote for multiple choice
// questions. After the last Results phase ends the quiz is over.
//
// Time only moves through Tick. Skip takes the same transition a timer
// expiry would, so the side effects of entering a phase (announcements,
// scoring of votes and wagers on entering Results) always run. Skipping an
// answering phase closes it; teams that have not answered get no points.
package quiz

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/playperu/trivia/internal/output"
	"github.com/playperu/trivia/internal/team"
)

var (
	ErrWrongPhase      = errors.New("not accepted in the current phase")
	ErrAlreadyAnswered = errors.New("team already answered this question")
	ErrInvalidWager    = errors.New("invalid wager")
	ErrInvalidChoice   = errors.New("not one of the options")
)

// Scoreboard is the part of the team registry a quiz needs. The game lends
// it to the quiz for the duration of each call.
type Scoreboard interface {
	Get(id team.ID) (team.Team, bool)
	AdjustScore(id team.ID, delta int) (team.Team, error)
	Standings() []team.Team
}

// Outcome describes an accepted guess.
type Outcome struct {
	Correct bool
	// Vote is true when the guess was recorded as a vote to be scored at results.
	Vote   bool
	Points int
	Score  int
}

type round struct {
	number   int
	question Question
	answered map[team.ID]bool
	votes    map[team.ID]int
	wagers   map[team.ID]int
}

func (r *round) points(settings Settings) int {
	if r.question.Points > 0 {
		return r.question.Points
	}
	return settings.Points
}

type Quiz struct {
	title    string
	settings Settings
	queue    []Question
	total    int
	current  *round
	phase    Phase
	over     bool
	sink     output.Sink
}

// New starts a quiz. It enters Cooldown immediately.
func New(def *Definition, settings Settings, sink output.Sink) *Quiz {
	def = def.clone()
	q := &Quiz{
		title:    def.Title,
		settings: settings.With(def),
		queue:    def.Questions,
		total:    len(def.Questions),
		phase:    &StartupPhase{},
		sink:     sink,
	}

	title := q.title
	if title == "" {
		title = "Quiz"
	}
	q.sink.Push(output.Payload{Kind: output.KindQuizStarted, Title: title, Total: q.total})
	q.sink.Say(output.AllTeams, fmt.Sprintf("%s is starting: %d questions. Good luck!", title, q.total))
	q.advance(nil)
	return q
}

func (q *Quiz) Phase() Phase { return q.phase }

func (q *Quiz) Settings() Settings { return q.settings }

// IsOver reports whether the results of the last question have ended.
func (q *Quiz) IsOver() bool { return q.over }

// Remaining is the number of questions not yet asked.
func (q *Quiz) Remaining() int { return len(q.queue) }

// Tick advances the phase timer by dt, taking every transition that
// expires within it.
func (q *Quiz) Tick(sb Scoreboard, dt time.Duration) {
	for !q.over {
		t := timerOf(q.phase)
		if t == nil {
			q.advance(sb)
			continue
		}
		expired, rest := t.advance(dt)
		if !expired {
			return
		}
		q.advance(sb)
		dt = rest
	}
}

// Skip ends the current phase now.
func (q *Quiz) Skip(sb Scoreboard) {
	if q.over {
		return
	}
	q.advance(sb)
}

// Guess submits an answer for a team. Open questions take guesses in
// QuestionPhase and score the first correct one. Multiple choice questions
// take a single vote per team in VotePhase.
func (q *Quiz) Guess(sb Scoreboard, id team.ID, text string) (Outcome, error) {
	switch q.phase.(type) {
	case *QuestionPhase:
		if len(q.current.question.Options) > 0 {
			return Outcome{}, ErrWrongPhase
		}
		return q.guessOpen(sb, id, text)
	case *VotePhase:
		return q.vote(sb, id, text)
	case *StartupPhase, *CooldownPhase, *WagerPhase, *ResultsPhase:
		return Outcome{}, ErrWrongPhase
	}
	return Outcome{}, ErrWrongPhase
}

func (q *Quiz) guessOpen(sb Scoreboard, id team.ID, text string) (Outcome, error) {
	r := q.current
	if r.answered[id] {
		return Outcome{}, ErrAlreadyAnswered
	}
	if !r.question.accepts(text) {
		q.sink.Say(output.ToTeam(id), fmt.Sprintf("%q is not correct.", strings.TrimSpace(text)))
		return Outcome{}, nil
	}

	points := r.points(q.settings) + r.wagers[id]
	t, err := sb.AdjustScore(id, points)
	if err != nil {
		return Outcome{}, err
	}
	r.answered[id] = true
	q.sink.Say(output.AllTeams, fmt.Sprintf("Team %s got it right! +%d (%d points)", t.Name, points, t.Score))
	return Outcome{Correct: true, Points: points, Score: t.Score}, nil
}

func (q *Quiz) vote(sb Scoreboard, id team.ID, text string) (Outcome, error) {
	r := q.current
	if _, ok := r.votes[id]; ok {
		return Outcome{}, ErrAlreadyAnswered
	}
	i := r.question.optionIndex(text)
	if i < 0 {
		return Outcome{}, ErrInvalidChoice
	}
	if _, ok := sb.Get(id); !ok {
		return Outcome{}, team.ErrNotFound
	}
	r.votes[id] = i
	q.sink.Say(output.ToTeam(id), fmt.Sprintf("Vote recorded: %s) %s", optionLabel(i), r.question.Options[i]))
	return Outcome{Vote: true}, nil
}

// Wager records a team's bet for the current wager question. A team may
// change its wager until the phase ends.
func (q *Quiz) Wager(sb Scoreboard, id team.ID, amount int) error {
	if _, ok := q.phase.(*WagerPhase); !ok {
		return ErrWrongPhase
	}
	t, ok := sb.Get(id)
	if !ok {
		return team.ErrNotFound
	}
	limit := max(q.settings.MaxWager, t.Score)
	if amount < 0 || amount > limit {
		return fmt.Errorf("%w: must be between 0 and %d", ErrInvalidWager, limit)
	}
	q.current.wagers[id] = amount
	q.sink.Say(output.ToTeam(id), fmt.Sprintf("Team %s wagers %d points.", t.Name, amount))
	return nil
}

// advance leaves the current phase and enters the next one.
func (q *Quiz) advance(sb Scoreboard) {
	switch q.phase.(type) {
	case *StartupPhase:
		q.enterCooldown()
	case *CooldownPhase:
		if len(q.queue) == 0 {
			q.finish()
			return
		}
		q.nextRound()
		if q.current.question.Wager {
			q.enterWager()
		} else {
			q.enterQuestion()
		}
	case *WagerPhase:
		q.enterQuestion()
	case *QuestionPhase:
		if len(q.current.question.Options) > 0 {
			q.enterVote()
		} else {
			q.enterResults(sb)
		}
	case *VotePhase:
		q.enterResults(sb)
	case *ResultsPhase:
		if len(q.queue) == 0 {
			q.finish()
			return
		}
		q.enterCooldown()
	}
}

func (q *Quiz) nextRound() {
	next := q.queue[0]
	q.queue = q.queue[1:]
	number := 1
	if q.current != nil {
		number = q.current.number + 1
	}
	q.current = &round{
		number:   number,
		question: next,
		answered: make(map[team.ID]bool),
		votes:    make(map[team.ID]int),
		wagers:   make(map[team.ID]int),
	}
}

func (q *Quiz) enterCooldown() {
	q.phase = &CooldownPhase{timer{limit: q.settings.Cooldown}}
	q.sink.Push(output.Payload{
		Kind:    output.KindPhaseChanged,
		Phase:   q.phase.Name(),
		Number:  q.total - len(q.queue) + 1,
		Total:   q.total,
		Seconds: seconds(q.settings.Cooldown),
	})
	q.sink.Say(output.AllTeams, fmt.Sprintf("Next question in %d seconds.", seconds(q.settings.Cooldown)))
}

func (q *Quiz) enterWager() {
	q.phase = &WagerPhase{timer{limit: q.settings.WagerTime}}
	q.sink.Push(output.Payload{
		Kind:    output.KindWagerOpen,
		Phase:   q.phase.Name(),
		Number:  q.current.number,
		Total:   q.total,
		Seconds: seconds(q.settings.WagerTime),
	})
	q.sink.Say(output.AllTeams, fmt.Sprintf(
		"Wager round! Bet up to %d points (or your score) on question %d.",
		q.settings.MaxWager, q.current.number))
}

func (q *Quiz) enterQuestion() {
	r := q.current
	limit := q.settings.AnswerTime
	if len(r.question.Options) > 0 {
		limit = q.settings.ReadTime
	}
	q.phase = &QuestionPhase{timer{limit: limit}}
	q.sink.Push(output.Payload{
		Kind:    output.KindNewQuestion,
		Phase:   q.phase.Name(),
		Number:  r.number,
		Total:   q.total,
		Prompt:  r.question.Prompt,
		Seconds: seconds(limit),
	})
	q.sink.Say(output.AllTeams, fmt.Sprintf("Question %d/%d: %s", r.number, q.total, r.question.Prompt))
}

func (q *Quiz) enterVote() {
	r := q.current
	q.phase = &VotePhase{timer{limit: q.settings.VoteTime}}
	q.sink.Push(output.Payload{
		Kind:    output.KindVoteOpen,
		Phase:   q.phase.Name(),
		Number:  r.number,
		Total:   q.total,
		Options: r.question.Options,
		Seconds: seconds(q.settings.VoteTime),
	})
	var b strings.Builder
	b.WriteString("Vote now:")
	for i, o := range r.question.Options {
		fmt.Fprintf(&b, "\n%s) %s", optionLabel(i), o)
	}
	q.sink.Say(output.AllTeams, b.String())
}

// enterResults settles votes and wagers, then reveals the answer.
func (q *Quiz) enterResults(sb Scoreboard) {
	r := q.current
	q.phase = &ResultsPhase{timer{limit: q.settings.ResultsTime}}

	if sb != nil {
		for id, choice := range r.votes {
			if r.question.correctOption(choice) {
				if _, err := sb.AdjustScore(id, r.points(q.settings)+r.wagers[id]); err == nil {
					r.answered[id] = true
				}
			}
		}
		for id, amount := range r.wagers {
			if amount <= 0 || r.answered[id] {
				continue
			}
			// Teams disbanded since wagering have nothing left to lose.
			if _, ok := sb.Get(id); !ok {
				continue
			}
			sb.AdjustScore(id, -amount)
		}
	}

	q.sink.Say(output.AllTeams, fmt.Sprintf("The answer was: %s", r.question.displayAnswer()))
	payload := output.Payload{
		Kind:    output.KindResults,
		Phase:   q.phase.Name(),
		Number:  r.number,
		Total:   q.total,
		Answer:  r.question.displayAnswer(),
		Seconds: seconds(q.settings.ResultsTime),
	}
	if sb != nil {
		payload.Standings = output.StandingsOf(sb.Standings())
	}
	q.sink.Push(payload)
}

func (q *Quiz) finish() {
	q.over = true
	q.queue = nil
}

// Status is a read-only view of the quiz for display.
type Status struct {
	Title     string        `json:"title"`
	Phase     string        `json:"phase"`
	Question  int           `json:"question"`
	Total     int           `json:"total"`
	Remaining int           `json:"remaining"`
	TimeLeft  time.Duration `json:"timeLeft"`
	Over      bool          `json:"over"`
}

func (q *Quiz) Status() Status {
	s := Status{
		Title:     q.title,
		Phase:     q.phase.Name(),
		Total:     q.total,
		Remaining: len(q.queue),
		Over:      q.over,
	}
	if q.current != nil {
		s.Question = q.current.number
	}
	if t := timerOf(q.phase); t != nil {
		s.TimeLeft = t.remaining()
	}
	return s
}

func seconds(d time.Duration) int {
	return int(d.Round(time.Second) / time.Second)
}
