package game

import (
	"log/slog"
	"sync"
	"time"

	"github.com/playperu/trivia/internal/output"
	"github.com/playperu/trivia/internal/quiz"
)

// Pool owns one Game per community. Games are created on first use and
// live as long as the pool.
type Pool struct {
	publisher output.Publisher
	loader    quiz.Loader
	settings  quiz.Settings
	logger    *slog.Logger

	mu    sync.RWMutex
	games map[output.CommunityID]*Game
}

func NewPool(publisher output.Publisher, loader quiz.Loader, settings quiz.Settings, logger *slog.Logger) *Pool {
	return &Pool{
		publisher: publisher,
		loader:    loader,
		settings:  settings,
		logger:    logger,
		games:     make(map[output.CommunityID]*Game),
	}
}

// GetOrCreate returns the game of a community. A new game sends its
// messages to channel.
func (p *Pool) GetOrCreate(community output.CommunityID, channel output.ChannelID) *Game {
	p.mu.RLock()
	g, ok := p.games[community]
	p.mu.RUnlock()
	if ok {
		return g
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// Double-check after acquiring write lock.
	if g, ok := p.games[community]; ok {
		return g
	}

	pipe := output.NewPipe(community, channel, p.publisher, p.logger)
	g = New(pipe, p.loader, p.settings, p.logger.With("community", string(community)))
	p.games[community] = g
	p.logger.Info("game created", "community", community, "channel", channel)
	return g
}

// TickAll advances every game by dt.
func (p *Pool) TickAll(dt time.Duration) {
	p.mu.RLock()
	games := make([]*Game, 0, len(p.games))
	for _, g := range p.games {
		games = append(games, g)
	}
	p.mu.RUnlock()

	for _, g := range games {
		g.Tick(dt)
	}
}

func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.games)
}
