package team

import (
	"cmp"
	"errors"
	"maps"
	"slices"
	"strings"
	"sync"
)

var ErrNotFound = errors.New("team not found")

// PlayerID identifies a player on the chat platform.
type PlayerID string

type Team struct {
	ID      ID
	Name    string
	Score   int
	Players map[PlayerID]struct{}
}

// HasPlayer reports whether p is a member of the team.
func (t Team) HasPlayer(p PlayerID) bool {
	_, ok := t.Players[p]
	return ok
}

// PlayerList returns the members sorted by id.
func (t Team) PlayerList() []PlayerID {
	players := slices.Collect(maps.Keys(t.Players))
	slices.Sort(players)
	return players
}

func (t *Team) clone() Team {
	c := *t
	c.Players = maps.Clone(t.Players)
	if c.Players == nil {
		c.Players = make(map[PlayerID]struct{})
	}
	return c
}

// Registry holds the teams of one game. Teams are kept in creation order.
// Every method returns copies, never references into the registry.
type Registry struct {
	mu    sync.RWMutex
	teams []*Team
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Join moves player onto the team called name, creating it if needed.
// Teams left without players are pruned.
func (r *Registry) Join(player PlayerID, name string) (Team, error) {
	id, display, err := Sanitize(name)
	if err != nil {
		return Team{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range r.teams {
		delete(t.Players, player)
	}

	target := r.find(id)
	if target == nil {
		target = &Team{ID: id, Name: display, Players: make(map[PlayerID]struct{})}
		r.teams = append(r.teams, target)
	}
	target.Players[player] = struct{}{}

	r.prune()
	return target.clone(), nil
}

// LeaveAll removes player from whichever team holds them.
func (r *Registry) LeaveAll(player PlayerID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range r.teams {
		delete(t.Players, player)
	}
	r.prune()
}

// Disband removes the team called name together with all its members.
func (r *Registry) Disband(name string) (Team, error) {
	id, _, err := Sanitize(name)
	if err != nil {
		return Team{}, ErrNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.index(id)
	if i < 0 {
		return Team{}, ErrNotFound
	}
	removed := r.teams[i].clone()
	r.teams = slices.Delete(r.teams, i, i+1)
	return removed, nil
}

// AdjustScore adds delta to the team's score and returns the updated team.
func (r *Registry) AdjustScore(id ID, delta int) (Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t := r.find(id)
	if t == nil {
		return Team{}, ErrNotFound
	}
	t.Score += delta
	return t.clone(), nil
}

func (r *Registry) ResetAll() {
	r.mu.Lock()
	r.teams = nil
	r.mu.Unlock()
}

func (r *Registry) ResetScores() {
	r.mu.Lock()
	for _, t := range r.teams {
		t.Score = 0
	}
	r.mu.Unlock()
}

// FindTeamOf returns the id of the team player belongs to.
func (r *Registry) FindTeamOf(player PlayerID) (ID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, t := range r.teams {
		if _, ok := t.Players[player]; ok {
			return t.ID, true
		}
	}
	return "", false
}

func (r *Registry) Get(id ID) (Team, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t := r.find(id)
	if t == nil {
		return Team{}, false
	}
	return t.clone(), true
}

// Snapshot returns a copy of every team in creation order.
func (r *Registry) Snapshot() []Team {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Team, 0, len(r.teams))
	for _, t := range r.teams {
		out = append(out, t.clone())
	}
	return out
}

// Standings returns the teams ordered by score, highest first. Ties are
// broken by display name.
func (r *Registry) Standings() []Team {
	teams := r.Snapshot()
	slices.SortStableFunc(teams, func(a, b Team) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	return teams
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.teams)
}

func (r *Registry) find(id ID) *Team {
	if i := r.index(id); i >= 0 {
		return r.teams[i]
	}
	return nil
}

func (r *Registry) index(id ID) int {
	return slices.IndexFunc(r.teams, func(t *Team) bool { return t.ID == id })
}

func (r *Registry) prune() {
	r.teams = slices.DeleteFunc(r.teams, func(t *Team) bool { return len(t.Players) == 0 })
}
