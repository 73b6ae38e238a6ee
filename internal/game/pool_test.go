package game

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/playperu/trivia/internal/output"
)

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []output.Message
}

func (p *recordingPublisher) Publish(msg output.Message) {
	p.mu.Lock()
	p.msgs = append(p.msgs, msg)
	p.mu.Unlock()
}

func TestPoolGetOrCreate(t *testing.T) {
	pub := &recordingPublisher{}
	p := NewPool(pub, testLoader(), testSettings(), discardLogger())

	a := p.GetOrCreate("c1", "general")
	b := p.GetOrCreate("c1", "other")
	c := p.GetOrCreate("c2", "general")
	if a != b {
		t.Error("same community returned different games")
	}
	if a == c {
		t.Error("different communities share a game")
	}
	if p.Len() != 2 {
		t.Errorf("Len = %d, want 2", p.Len())
	}

	a.JoinTeam("p1", "Red")
	if len(pub.msgs) != 1 {
		t.Fatalf("messages = %d, want 1", len(pub.msgs))
	}
	if m := pub.msgs[0]; m.Community != "c1" || m.Channel != "general" {
		t.Errorf("message routed to %s/%s, want c1/general", m.Community, m.Channel)
	}
}

func TestPoolConcurrentGetOrCreate(t *testing.T) {
	p := NewPool(nil, testLoader(), testSettings(), discardLogger())

	games := make([]*Game, 32)
	var wg sync.WaitGroup
	for i := range games {
		wg.Add(1)
		go func() {
			defer wg.Done()
			games[i] = p.GetOrCreate("c1", "general")
		}()
	}
	wg.Wait()

	for i, g := range games {
		if g != games[0] {
			t.Fatalf("goroutine %d got a different game", i)
		}
	}
}

func TestPoolTickAll(t *testing.T) {
	p := NewPool(nil, testLoader(), testSettings(), discardLogger())
	a := p.GetOrCreate("c1", "general")
	b := p.GetOrCreate("c2", "general")
	a.Begin(context.Background(), "one")
	b.Begin(context.Background(), "one")
	b.Pause()

	p.TickAll(2 * time.Second)

	if got := a.State().Quiz.Phase; got != "question" {
		t.Errorf("c1 phase = %q, want question", got)
	}
	if got := b.State().Quiz.Phase; got != "cooldown" {
		t.Errorf("paused c2 phase = %q, want cooldown", got)
	}
}

type countingTicker struct {
	mu    sync.Mutex
	ticks int
	total time.Duration
}

func (c *countingTicker) TickAll(dt time.Duration) {
	c.mu.Lock()
	c.ticks++
	c.total += dt
	c.mu.Unlock()
}

func TestClockRun(t *testing.T) {
	target := &countingTicker{}
	clock := NewClock(5*time.Millisecond, target, discardLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	if err := clock.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	target.mu.Lock()
	defer target.mu.Unlock()
	if target.ticks == 0 {
		t.Fatal("clock never ticked")
	}
	if target.total <= 0 || target.total > time.Second {
		t.Errorf("total dt = %v, want roughly the run time", target.total)
	}
}
