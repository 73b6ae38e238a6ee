package quiz

import "time"

// Phase is the state of a running quiz. The set of phases is closed:
// StartupPhase, CooldownPhase, WagerPhase, QuestionPhase, VotePhase and
// ResultsPhase. Code that switches on a Phase handles all of them.
type Phase interface {
	Name() string
	isPhase()
}

type timer struct {
	elapsed time.Duration
	limit   time.Duration
}

// advance adds dt and reports whether the timer expired, along with the
// part of dt left over after expiry.
func (t *timer) advance(dt time.Duration) (bool, time.Duration) {
	t.elapsed += dt
	if t.elapsed < t.limit {
		return false, 0
	}
	return true, t.elapsed - t.limit
}

func (t *timer) remaining() time.Duration {
	return max(t.limit-t.elapsed, 0)
}

// StartupPhase exists only while a quiz is being constructed.
type StartupPhase struct{}

// CooldownPhase is the pause before the next question.
type CooldownPhase struct{ timer }

// WagerPhase lets teams bet points on the upcoming question.
type WagerPhase struct{ timer }

// QuestionPhase shows the prompt. Open questions accept guesses here;
// multiple choice questions use it as reading time.
type QuestionPhase struct{ timer }

// VotePhase accepts one vote per team on a multiple choice question.
type VotePhase struct{ timer }

// ResultsPhase reveals the answer and the standings.
type ResultsPhase struct{ timer }

func (*StartupPhase) Name() string  { return "startup" }
func (*CooldownPhase) Name() string { return "cooldown" }
func (*WagerPhase) Name() string    { return "wager" }
func (*QuestionPhase) Name() string { return "question" }
func (*VotePhase) Name() string     { return "vote" }
func (*ResultsPhase) Name() string  { return "results" }

func (*StartupPhase) isPhase()  {}
func (*CooldownPhase) isPhase() {}
func (*WagerPhase) isPhase()    {}
func (*QuestionPhase) isPhase() {}
func (*VotePhase) isPhase()     {}
func (*ResultsPhase) isPhase()  {}

// timerOf returns the phase timer, or nil for untimed phases.
func timerOf(p Phase) *timer {
	switch p := p.(type) {
	case *StartupPhase:
		return nil
	case *CooldownPhase:
		return &p.timer
	case *WagerPhase:
		return &p.timer
	case *QuestionPhase:
		return &p.timer
	case *VotePhase:
		return &p.timer
	case *ResultsPhase:
		return &p.timer
	default:
		panic("quiz: unknown phase")
	}
}
