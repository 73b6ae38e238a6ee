package output

import (
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/playperu/trivia/internal/team"
)

// Message is one delivery request for a single channel.
type Message struct {
	Community CommunityID `json:"community"`
	Channel   ChannelID   `json:"channel"`
	Text      string      `json:"text,omitempty"`
	Payload   *Payload    `json:"payload,omitempty"`
	SentAt    time.Time   `json:"sentAt"`
}

// Publisher delivers messages. Publish must return promptly.
type Publisher interface {
	Publish(msg Message)
}

// Publishers fans a message out to several publishers in order.
type Publishers []Publisher

func (ps Publishers) Publish(msg Message) {
	for _, p := range ps {
		p.Publish(msg)
	}
}

// Pipe is the Sink bound to one community. Text for all teams goes to the
// community's main channel and to every mapped team channel.
type Pipe struct {
	community CommunityID
	channel   ChannelID
	publisher Publisher
	logger    *slog.Logger
	now       func() time.Time

	mu           sync.RWMutex
	teamChannels map[team.ID]ChannelID
}

func NewPipe(community CommunityID, channel ChannelID, publisher Publisher, logger *slog.Logger) *Pipe {
	return &Pipe{
		community:    community,
		channel:      channel,
		publisher:    publisher,
		logger:       logger.With("community", string(community)),
		now:          time.Now,
		teamChannels: make(map[team.ID]ChannelID),
	}
}

func (p *Pipe) Say(to Recipient, text string) {
	p.mu.RLock()
	channels := p.resolve(to)
	p.mu.RUnlock()

	for _, ch := range channels {
		p.publish(Message{Channel: ch, Text: text})
	}
}

func (p *Pipe) Push(payload Payload) {
	p.mu.RLock()
	channels := p.resolve(AllTeams)
	p.mu.RUnlock()

	for _, ch := range channels {
		pl := payload
		p.publish(Message{Channel: ch, Payload: &pl})
	}
}

// UpdateTeamChannels replaces the team routing table.
func (p *Pipe) UpdateTeamChannels(channels map[team.ID]ChannelID) {
	p.mu.Lock()
	p.teamChannels = maps.Clone(channels)
	if p.teamChannels == nil {
		p.teamChannels = make(map[team.ID]ChannelID)
	}
	p.mu.Unlock()

	p.logger.Info("team channels updated", "count", len(channels))
}

// TeamChannels returns a copy of the current routing table.
func (p *Pipe) TeamChannels() map[team.ID]ChannelID {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return maps.Clone(p.teamChannels)
}

// resolve must be called with mu held.
func (p *Pipe) resolve(to Recipient) []ChannelID {
	if id, ok := to.Team(); ok {
		if ch, ok := p.teamChannels[id]; ok {
			return []ChannelID{ch}
		}
		return []ChannelID{p.channel}
	}

	channels := []ChannelID{p.channel}
	for _, ch := range p.teamChannels {
		if !slices.Contains(channels, ch) {
			channels = append(channels, ch)
		}
	}
	slices.Sort(channels[1:])
	return channels
}

func (p *Pipe) publish(msg Message) {
	msg.Community = p.community
	msg.SentAt = p.now()
	p.logger.Debug("output", "channel", string(msg.Channel), "text", msg.Text)
	if p.publisher != nil {
		p.publisher.Publish(msg)
	}
}
