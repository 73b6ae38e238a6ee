package quiz

import "time"

// Settings control phase lengths and scoring for one quiz.
type Settings struct {
	Cooldown    time.Duration
	WagerTime   time.Duration
	AnswerTime  time.Duration
	ReadTime    time.Duration
	VoteTime    time.Duration
	ResultsTime time.Duration
	// Points is awarded for a correct answer unless the question sets its own.
	Points int
	// MaxWager caps a wager for teams whose score is lower than it.
	MaxWager int
}

func DefaultSettings() Settings {
	return Settings{
		Cooldown:    10 * time.Second,
		WagerTime:   20 * time.Second,
		AnswerTime:  30 * time.Second,
		ReadTime:    10 * time.Second,
		VoteTime:    20 * time.Second,
		ResultsTime: 8 * time.Second,
		Points:      1,
		MaxWager:    3,
	}
}

// With returns s overridden by the non-zero values of a definition.
func (s Settings) With(d *Definition) Settings {
	seconds := func(dst *time.Duration, n int) {
		if n > 0 {
			*dst = time.Duration(n) * time.Second
		}
	}
	seconds(&s.Cooldown, d.Timing.Cooldown)
	seconds(&s.WagerTime, d.Timing.Wager)
	seconds(&s.AnswerTime, d.Timing.Answer)
	seconds(&s.ReadTime, d.Timing.Read)
	seconds(&s.VoteTime, d.Timing.Vote)
	seconds(&s.ResultsTime, d.Timing.Results)
	if d.Points > 0 {
		s.Points = d.Points
	}
	if d.MaxWager > 0 {
		s.MaxWager = d.MaxWager
	}
	return s
}
