package output

import (
	"encoding/json"
	"io"
	"log/slog"
	"slices"
	"sync"
	"testing"

	"github.com/playperu/trivia/internal/team"
)

type recorder struct {
	mu   sync.Mutex
	msgs []Message
}

func (r *recorder) Publish(msg Message) {
	r.mu.Lock()
	r.msgs = append(r.msgs, msg)
	r.mu.Unlock()
}

func (r *recorder) channels() []ChannelID {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []ChannelID
	for _, m := range r.msgs {
		out = append(out, m.Channel)
	}
	return out
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPipeRouting(t *testing.T) {
	tests := []struct {
		name     string
		channels map[team.ID]ChannelID
		to       Recipient
		want     []ChannelID
	}{
		{
			name: "all teams without mapping",
			to:   AllTeams,
			want: []ChannelID{"main"},
		},
		{
			name:     "all teams with mapping",
			channels: map[team.ID]ChannelID{"red": "red-room", "blue": "blue-room"},
			to:       AllTeams,
			want:     []ChannelID{"main", "blue-room", "red-room"},
		},
		{
			name:     "shared team channel is not duplicated",
			channels: map[team.ID]ChannelID{"red": "side", "blue": "side"},
			to:       AllTeams,
			want:     []ChannelID{"main", "side"},
		},
		{
			name:     "mapped team",
			channels: map[team.ID]ChannelID{"red": "red-room"},
			to:       ToTeam("red"),
			want:     []ChannelID{"red-room"},
		},
		{
			name:     "unmapped team falls back to main",
			channels: map[team.ID]ChannelID{"red": "red-room"},
			to:       ToTeam("blue"),
			want:     []ChannelID{"main"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			p := NewPipe("guild", "main", rec, discardLogger())
			p.UpdateTeamChannels(tt.channels)

			p.Say(tt.to, "hello")

			if got := rec.channels(); !slices.Equal(got, tt.want) {
				t.Errorf("channels = %v, want %v", got, tt.want)
			}
			for _, m := range rec.msgs {
				if m.Community != "guild" || m.Text != "hello" {
					t.Errorf("message = %+v, want community guild and text hello", m)
				}
			}
		})
	}
}

func TestPipePushBroadcasts(t *testing.T) {
	rec := &recorder{}
	p := NewPipe("guild", "main", rec, discardLogger())
	p.UpdateTeamChannels(map[team.ID]ChannelID{"red": "red-room"})

	p.Push(Payload{Kind: KindNewQuestion, Prompt: "2+2?"})

	if len(rec.msgs) != 2 {
		t.Fatalf("len(msgs) = %d, want 2", len(rec.msgs))
	}
	for _, m := range rec.msgs {
		if m.Payload == nil || m.Payload.Kind != KindNewQuestion {
			t.Errorf("payload = %+v, want new_question", m.Payload)
		}
	}
}

func TestPipeTeamChannelsCopied(t *testing.T) {
	p := NewPipe("guild", "main", nil, discardLogger())
	in := map[team.ID]ChannelID{"red": "red-room"}
	p.UpdateTeamChannels(in)
	in["blue"] = "blue-room"

	if got := p.TeamChannels(); len(got) != 1 {
		t.Errorf("TeamChannels = %v, want only red", got)
	}
	// A nil publisher must not panic.
	p.Say(AllTeams, "x")
}

func TestBroker(t *testing.T) {
	b := NewBroker(0)
	sub := b.Subscribe("guild")
	other := b.Subscribe("elsewhere")

	b.Publish(Message{Community: "guild", Channel: "main", Text: "hi"})

	select {
	case data := <-sub:
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("decoding: %v", err)
		}
		if msg.Text != "hi" {
			t.Errorf("text = %q, want hi", msg.Text)
		}
	default:
		t.Fatal("subscriber received nothing")
	}

	select {
	case <-other:
		t.Error("other community received a message")
	default:
	}

	b.Unsubscribe("guild", sub)
	if n := b.Subscribers("guild"); n != 0 {
		t.Errorf("Subscribers = %d, want 0", n)
	}
}

func TestBrokerDropsWhenFull(t *testing.T) {
	b := NewBroker(4)
	sub := b.Subscribe("guild")

	for range 10 {
		b.Publish(Message{Community: "guild", Text: "spam"})
	}
	if len(sub) != 4 {
		t.Errorf("len(sub) = %d, want 4", len(sub))
	}
	if got := b.Dropped(); got != 6 {
		t.Errorf("Dropped = %d, want 6", got)
	}

	// Nobody listens here, so nothing is delivered or dropped.
	b.Publish(Message{Community: "empty", Text: "spam"})
	if got := b.Dropped(); got != 6 {
		t.Errorf("Dropped after unheard publish = %d, want 6", got)
	}
}

func TestPublishersFanOut(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	Publishers{a, b}.Publish(Message{Text: "x"})

	if len(a.msgs) != 1 || len(b.msgs) != 1 {
		t.Errorf("got %d and %d messages, want 1 and 1", len(a.msgs), len(b.msgs))
	}
}

func TestRedisRelayDropsWhenQueueFull(t *testing.T) {
	r := NewRedisRelay(nil, "trivia", 1, discardLogger())

	r.Publish(Message{Community: "guild", Text: "first"})
	r.Publish(Message{Community: "guild", Text: "second"})

	if got := r.Dropped(); got != 1 {
		t.Errorf("Dropped = %d, want 1", got)
	}
	if got := r.Topic("guild"); got != "trivia:guild" {
		t.Errorf("Topic = %q, want trivia:guild", got)
	}
}
