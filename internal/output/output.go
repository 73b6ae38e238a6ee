// Package output routes game notifications to chat destinations.
//
// The game core only sees the Sink interface. A Pipe resolves recipients to
// channel ids and hands Messages to a Publisher, which delivers them without
// blocking the caller.
package output

import (
	"github.com/playperu/trivia/internal/team"
)

type (
	CommunityID string
	ChannelID   string
)

// Recipient is either every team or a single team.
type Recipient struct {
	team team.ID
}

// AllTeams addresses every team in the game.
var AllTeams = Recipient{}

// ToTeam addresses one team.
func ToTeam(id team.ID) Recipient {
	return Recipient{team: id}
}

// Team returns the addressed team, or false for AllTeams.
func (r Recipient) Team() (team.ID, bool) {
	return r.team, r.team != ""
}

type PayloadKind string

const (
	KindQuizStarted  PayloadKind = "quiz_started"
	KindPhaseChanged PayloadKind = "phase_changed"
	KindNewQuestion  PayloadKind = "new_question"
	KindVoteOpen     PayloadKind = "vote_open"
	KindWagerOpen    PayloadKind = "wager_open"
	KindResults      PayloadKind = "results"
	KindQuizEnded    PayloadKind = "quiz_ended"
)

// Standing is one line of a scoreboard.
type Standing struct {
	Team  team.ID `json:"team"`
	Name  string  `json:"name"`
	Score int     `json:"score"`
}

// Payload is a structured notification, rendered by the delivery side.
type Payload struct {
	Kind      PayloadKind `json:"kind"`
	Phase     string      `json:"phase,omitempty"`
	Title     string      `json:"title,omitempty"`
	Number    int         `json:"number,omitempty"`
	Total     int         `json:"total,omitempty"`
	Prompt    string      `json:"prompt,omitempty"`
	Options   []string    `json:"options,omitempty"`
	Answer    string      `json:"answer,omitempty"`
	Seconds   int         `json:"seconds,omitempty"`
	Standings []Standing  `json:"standings,omitempty"`
}

// Sink receives everything the game wants to tell players. Implementations
// must not block and must not call back into the game.
type Sink interface {
	Say(to Recipient, text string)
	Push(p Payload)
	UpdateTeamChannels(channels map[team.ID]ChannelID)
}

// StandingsOf converts registry teams to scoreboard lines, keeping order.
func StandingsOf(teams []team.Team) []Standing {
	out := make([]Standing, 0, len(teams))
	for _, t := range teams {
		out = append(out, Standing{Team: t.ID, Name: t.Name, Score: t.Score})
	}
	return out
}
