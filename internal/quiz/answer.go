package quiz

import (
	"strconv"
	"strings"

	"github.com/playperu/trivia/internal/team"
)

const maxOptions = 26

func normalizeAnswer(s string) string {
	s = team.Normalize(s)
	s = strings.Trim(s, ".!?,;: ")
	return team.Fold(s)
}

// accepts reports whether guess matches one of the accepted answers.
func (q Question) accepts(guess string) bool {
	g := normalizeAnswer(guess)
	if g == "" {
		return false
	}
	for _, a := range q.Answers {
		if normalizeAnswer(a) == g {
			return true
		}
	}
	return false
}

// optionIndex resolves a vote to an option. The option's text wins over
// its letter or 1-based number, so options like "2" or "C" resolve by text.
func (q Question) optionIndex(vote string) int {
	v := normalizeAnswer(vote)
	if v == "" {
		return -1
	}
	for i, o := range q.Options {
		if normalizeAnswer(o) == v {
			return i
		}
	}
	if len(v) == 1 && v[0] >= 'a' && v[0] <= 'z' {
		if i := int(v[0] - 'a'); i < len(q.Options) {
			return i
		}
	}
	if n, err := strconv.Atoi(v); err == nil && n >= 1 && n <= len(q.Options) {
		return n - 1
	}
	return -1
}

// correctOption reports whether the option at i is an accepted answer.
func (q Question) correctOption(i int) bool {
	if i < 0 || i >= len(q.Options) {
		return false
	}
	for _, a := range q.Answers {
		if q.optionIndex(a) == i {
			return true
		}
	}
	return false
}

func optionLabel(i int) string {
	return string(rune('A' + i))
}

// displayAnswer is the text revealed in the results phase.
func (q Question) displayAnswer() string {
	if len(q.Options) == 0 {
		return q.Answers[0]
	}
	var parts []string
	for i, o := range q.Options {
		if q.correctOption(i) {
			parts = append(parts, optionLabel(i)+") "+o)
		}
	}
	return strings.Join(parts, ", ")
}
