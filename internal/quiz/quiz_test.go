package quiz

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/playperu/trivia/internal/output"
	"github.com/playperu/trivia/internal/team"
)

type said struct {
	to   output.Recipient
	text string
}

type fakeSink struct {
	mu       sync.Mutex
	said     []said
	payloads []output.Payload
}

func (f *fakeSink) Say(to output.Recipient, text string) {
	f.mu.Lock()
	f.said = append(f.said, said{to, text})
	f.mu.Unlock()
}

func (f *fakeSink) Push(p output.Payload) {
	f.mu.Lock()
	f.payloads = append(f.payloads, p)
	f.mu.Unlock()
}

func (f *fakeSink) UpdateTeamChannels(map[team.ID]output.ChannelID) {}

func (f *fakeSink) kinds() []output.PayloadKind {
	var out []output.PayloadKind
	for _, p := range f.payloads {
		out = append(out, p.Kind)
	}
	return out
}

func (f *fakeSink) count(kind output.PayloadKind) int {
	n := 0
	for _, p := range f.payloads {
		if p.Kind == kind {
			n++
		}
	}
	return n
}

func testSettings() Settings {
	return Settings{
		Cooldown:    5 * time.Second,
		WagerTime:   10 * time.Second,
		AnswerTime:  20 * time.Second,
		ReadTime:    3 * time.Second,
		VoteTime:    10 * time.Second,
		ResultsTime: 4 * time.Second,
		Points:      2,
		MaxWager:    3,
	}
}

func openQuestion(prompt string, answers ...string) Question {
	return Question{Prompt: prompt, Answers: answers}
}

func setup(t *testing.T, questions ...Question) (*Quiz, *team.Registry, *fakeSink) {
	t.Helper()
	reg := team.NewRegistry()
	reg.Join("p1", "Red")
	reg.Join("p2", "Blue")
	sink := &fakeSink{}
	q := New(&Definition{Title: "Test", Questions: questions}, testSettings(), sink)
	return q, reg, sink
}

func phaseName(q *Quiz) string { return q.Phase().Name() }

func score(t *testing.T, reg *team.Registry, id team.ID) int {
	t.Helper()
	tm, ok := reg.Get(id)
	if !ok {
		t.Fatalf("team %q missing", id)
	}
	return tm.Score
}

func TestNewStartsInCooldown(t *testing.T) {
	q, _, sink := setup(t, openQuestion("2+2?", "4"))

	if got := phaseName(q); got != "cooldown" {
		t.Fatalf("phase = %q, want cooldown", got)
	}
	if got := sink.kinds(); len(got) != 2 || got[0] != output.KindQuizStarted || got[1] != output.KindPhaseChanged {
		t.Errorf("payloads = %v, want [quiz_started phase_changed]", got)
	}
	if q.Remaining() != 1 {
		t.Errorf("Remaining = %d, want 1", q.Remaining())
	}
}

func TestOpenQuestionFlow(t *testing.T) {
	q, reg, sink := setup(t, openQuestion("Capital of Peru?", "Lima"))

	q.Tick(reg, 4*time.Second)
	if got := phaseName(q); got != "cooldown" {
		t.Fatalf("phase after 4s = %q, want cooldown", got)
	}
	q.Tick(reg, time.Second)
	if got := phaseName(q); got != "question" {
		t.Fatalf("phase after 5s = %q, want question", got)
	}
	if sink.count(output.KindNewQuestion) != 1 {
		t.Fatalf("new_question pushed %d times, want 1", sink.count(output.KindNewQuestion))
	}
	if q.Remaining() != 0 {
		t.Errorf("Remaining = %d, want 0", q.Remaining())
	}

	out, err := q.Guess(reg, "red", "  LIMA. ")
	if err != nil {
		t.Fatalf("guess: %v", err)
	}
	if !out.Correct || out.Points != 2 || out.Score != 2 {
		t.Errorf("outcome = %+v, want correct +2 score 2", out)
	}

	q.Tick(reg, 20*time.Second)
	if got := phaseName(q); got != "results" {
		t.Fatalf("phase = %q, want results", got)
	}
	if q.IsOver() {
		t.Fatal("over before results ended")
	}
	q.Tick(reg, 4*time.Second)
	if !q.IsOver() {
		t.Fatal("quiz not over after final results")
	}
	if got := score(t, reg, "red"); got != 2 {
		t.Errorf("red score = %d, want 2", got)
	}
}

func TestCorrectGuessScoresOnce(t *testing.T) {
	q, reg, _ := setup(t, openQuestion("2+2?", "4", "four"))
	q.Skip(reg)

	if _, err := q.Guess(reg, "red", "four"); err != nil {
		t.Fatalf("first guess: %v", err)
	}
	for _, g := range []string{"4", "four", "wrong"} {
		if _, err := q.Guess(reg, "red", g); !errors.Is(err, ErrAlreadyAnswered) {
			t.Errorf("guess %q err = %v, want ErrAlreadyAnswered", g, err)
		}
	}
	if got := score(t, reg, "red"); got != 2 {
		t.Errorf("red score = %d, want 2", got)
	}

	// Another team still scores.
	if out, _ := q.Guess(reg, "blue", "4"); !out.Correct {
		t.Error("blue guess not accepted")
	}
}

func TestWrongGuessDoesNotScore(t *testing.T) {
	q, reg, sink := setup(t, openQuestion("2+2?", "4"))
	q.Skip(reg)

	out, err := q.Guess(reg, "red", "5")
	if err != nil || out.Correct {
		t.Fatalf("outcome = %+v, %v, want incorrect without error", out, err)
	}
	last := sink.said[len(sink.said)-1]
	if id, ok := last.to.Team(); !ok || id != "red" {
		t.Errorf("wrong answer feedback sent to %v, want red only", last.to)
	}
	// A later correct guess still counts.
	if out, _ := q.Guess(reg, "red", "4"); !out.Correct {
		t.Error("correct guess after a wrong one rejected")
	}
}

func TestGuessOutsideQuestionPhase(t *testing.T) {
	q, reg, _ := setup(t, openQuestion("2+2?", "4"))

	if _, err := q.Guess(reg, "red", "4"); !errors.Is(err, ErrWrongPhase) {
		t.Fatalf("cooldown guess err = %v, want ErrWrongPhase", err)
	}
	q.Skip(reg) // question
	q.Skip(reg) // results
	if _, err := q.Guess(reg, "red", "4"); !errors.Is(err, ErrWrongPhase) {
		t.Fatalf("results guess err = %v, want ErrWrongPhase", err)
	}
	if got := score(t, reg, "red"); got != 0 {
		t.Errorf("red score = %d, want 0", got)
	}
}

func TestMultipleChoiceFlow(t *testing.T) {
	q, reg, sink := setup(t, Question{
		Prompt:  "Largest planet?",
		Options: []string{"Mars", "Jupiter", "Venus"},
		Answers: []string{"Jupiter"},
	})

	q.Tick(reg, 5*time.Second)
	if got := phaseName(q); got != "question" {
		t.Fatalf("phase = %q, want question", got)
	}
	if _, err := q.Guess(reg, "red", "b"); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("guess during reading err = %v, want ErrWrongPhase", err)
	}

	q.Tick(reg, 3*time.Second)
	if got := phaseName(q); got != "vote" {
		t.Fatalf("phase = %q, want vote", got)
	}
	if sink.count(output.KindVoteOpen) != 1 {
		t.Errorf("vote_open pushed %d times, want 1", sink.count(output.KindVoteOpen))
	}

	if _, err := q.Guess(reg, "red", "z"); !errors.Is(err, ErrInvalidChoice) {
		t.Errorf("invalid vote err = %v, want ErrInvalidChoice", err)
	}
	if out, err := q.Guess(reg, "red", "B"); err != nil || !out.Vote {
		t.Fatalf("red vote = %+v, %v", out, err)
	}
	if _, err := q.Guess(reg, "red", "a"); !errors.Is(err, ErrAlreadyAnswered) {
		t.Errorf("second vote err = %v, want ErrAlreadyAnswered", err)
	}
	q.Guess(reg, "blue", "1")

	if got := score(t, reg, "red"); got != 0 {
		t.Errorf("votes scored before results: red = %d", got)
	}

	q.Tick(reg, 10*time.Second)
	if got := phaseName(q); got != "results" {
		t.Fatalf("phase = %q, want results", got)
	}
	if got := score(t, reg, "red"); got != 2 {
		t.Errorf("red score = %d, want 2", got)
	}
	if got := score(t, reg, "blue"); got != 0 {
		t.Errorf("blue score = %d, want 0", got)
	}

	var results output.Payload
	for _, p := range sink.payloads {
		if p.Kind == output.KindResults {
			results = p
		}
	}
	if results.Answer != "B) Jupiter" {
		t.Errorf("answer = %q, want %q", results.Answer, "B) Jupiter")
	}
	if len(results.Standings) != 2 || results.Standings[0].Team != "red" {
		t.Errorf("standings = %+v, want red first", results.Standings)
	}
}

func TestWagerRound(t *testing.T) {
	q, reg, _ := setup(t, Question{Prompt: "Wager: 3*3?", Answers: []string{"9"}, Wager: true})

	if err := q.Wager(reg, "red", 1); !errors.Is(err, ErrWrongPhase) {
		t.Fatalf("wager in cooldown err = %v, want ErrWrongPhase", err)
	}
	q.Tick(reg, 5*time.Second)
	if got := phaseName(q); got != "wager" {
		t.Fatalf("phase = %q, want wager", got)
	}

	if err := q.Wager(reg, "red", 4); !errors.Is(err, ErrInvalidWager) {
		t.Errorf("over-limit wager err = %v, want ErrInvalidWager", err)
	}
	if err := q.Wager(reg, "red", -1); !errors.Is(err, ErrInvalidWager) {
		t.Errorf("negative wager err = %v, want ErrInvalidWager", err)
	}
	if _, err := q.Guess(reg, "red", "9"); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("guess during wager err = %v, want ErrWrongPhase", err)
	}
	if err := q.Wager(reg, "red", 1); err != nil {
		t.Fatalf("red wager: %v", err)
	}
	if err := q.Wager(reg, "red", 3); err != nil {
		t.Fatalf("red wager change: %v", err)
	}
	if err := q.Wager(reg, "blue", 2); err != nil {
		t.Fatalf("blue wager: %v", err)
	}

	q.Tick(reg, 10*time.Second)
	if got := phaseName(q); got != "question" {
		t.Fatalf("phase = %q, want question", got)
	}
	out, err := q.Guess(reg, "red", "9")
	if err != nil || out.Points != 5 {
		t.Fatalf("red guess = %+v, %v, want 5 points", out, err)
	}

	q.Skip(reg)
	if got := score(t, reg, "red"); got != 5 {
		t.Errorf("red score = %d, want 5", got)
	}
	if got := score(t, reg, "blue"); got != -2 {
		t.Errorf("blue score = %d, want -2", got)
	}
}

func TestTickCascadesLargeSteps(t *testing.T) {
	q, reg, _ := setup(t, openQuestion("a?", "a"), openQuestion("b?", "b"))

	// cooldown 5 + answer 20 + results 4 = 29 per question.
	q.Tick(reg, 29*time.Second+6*time.Second)
	st := q.Status()
	if st.Phase != "question" || st.Question != 2 {
		t.Fatalf("status = %+v, want question 2", st)
	}
	if st.TimeLeft != 19*time.Second {
		t.Errorf("TimeLeft = %v, want 19s", st.TimeLeft)
	}

	q.Tick(reg, time.Hour)
	if !q.IsOver() {
		t.Error("quiz not over after a long tick")
	}
	// Further ticks and skips are no-ops.
	q.Tick(reg, time.Hour)
	q.Skip(reg)
	if !q.IsOver() || q.Remaining() != 0 {
		t.Error("over quiz changed state")
	}
}

func TestTickIsDeterministic(t *testing.T) {
	questions := []Question{
		openQuestion("a?", "a"),
		{Prompt: "b?", Options: []string{"x", "y"}, Answers: []string{"y"}},
		{Prompt: "c?", Answers: []string{"c"}, Wager: true},
	}
	steps := []time.Duration{time.Second, 3 * time.Second, 700 * time.Millisecond, 12 * time.Second, 9 * time.Second}

	run := func() []string {
		q, reg, _ := setup(t, questions...)
		var trace []string
		for i := 0; i < 40; i++ {
			q.Tick(reg, steps[i%len(steps)])
			trace = append(trace, phaseName(q))
		}
		return trace
	}

	a, b := run(), run()
	if strings.Join(a, ",") != strings.Join(b, ",") {
		t.Errorf("traces differ:\n%v\n%v", a, b)
	}
}

func TestSkipOrder(t *testing.T) {
	q, reg, _ := setup(t,
		Question{Prompt: "w?", Answers: []string{"w"}, Wager: true},
		Question{Prompt: "c?", Options: []string{"x", "y"}, Answers: []string{"x"}},
	)

	want := []string{"wager", "question", "results", "cooldown", "question", "vote", "results"}
	for i, w := range want {
		q.Skip(reg)
		if got := phaseName(q); got != w {
			t.Fatalf("skip %d: phase = %q, want %q", i+1, got, w)
		}
	}
	if q.IsOver() {
		t.Fatal("over before final results were skipped")
	}
	q.Skip(reg)
	if !q.IsOver() {
		t.Fatal("not over after skipping final results")
	}
}

func TestSkipQuestionDoesNotForceScoring(t *testing.T) {
	q, reg, _ := setup(t, openQuestion("2+2?", "4"))
	q.Skip(reg) // question
	q.Skip(reg) // results

	if got := score(t, reg, "red"); got != 0 {
		t.Errorf("red score = %d, want 0", got)
	}
}

func TestDefinitionTimingOverrides(t *testing.T) {
	def := &Definition{
		Questions: []Question{openQuestion("a?", "a")},
		Timing:    Timing{Cooldown: 1},
		Points:    7,
	}
	q := New(def, testSettings(), &fakeSink{})

	if got := q.Settings().Cooldown; got != time.Second {
		t.Errorf("Cooldown = %v, want 1s", got)
	}
	if got := q.Settings().AnswerTime; got != 20*time.Second {
		t.Errorf("AnswerTime = %v, want default 20s", got)
	}
	if got := q.Settings().Points; got != 7 {
		t.Errorf("Points = %d, want 7", got)
	}
}

func TestQuizDoesNotAliasDefinition(t *testing.T) {
	def := &Definition{Questions: []Question{openQuestion("a?", "a")}}
	q := New(def, testSettings(), &fakeSink{})
	def.Questions[0].Answers[0] = "changed"

	reg := team.NewRegistry()
	reg.Join("p1", "Red")
	q.Skip(reg)
	if out, _ := q.Guess(reg, "red", "a"); !out.Correct {
		t.Error("quiz picked up a change to its definition")
	}
}

func TestNumericOptionsResolveByText(t *testing.T) {
	q, reg, sink := setup(t, Question{
		Prompt:  "How many moons does Mars have, plus one?",
		Options: []string{"2", "3", "4"},
		Answers: []string{"3"},
	})

	q.Tick(reg, 8*time.Second)
	if got := phaseName(q); got != "vote" {
		t.Fatalf("phase = %q, want vote", got)
	}
	if _, err := q.Guess(reg, "red", "3"); err != nil {
		t.Fatalf("red vote: %v", err)
	}
	if _, err := q.Guess(reg, "blue", "B"); err != nil {
		t.Fatalf("blue vote: %v", err)
	}
	q.Tick(reg, 10*time.Second)

	if got := score(t, reg, "red"); got != 2 {
		t.Errorf("red score = %d, want 2", got)
	}
	if got := score(t, reg, "blue"); got != 2 {
		t.Errorf("blue score = %d, want 2", got)
	}
	for _, p := range sink.payloads {
		if p.Kind == output.KindResults && p.Answer != "B) 3" {
			t.Errorf("answer = %q, want %q", p.Answer, "B) 3")
		}
	}
}

// strictBoard records score changes aimed at teams that do not exist.
type strictBoard struct {
	*team.Registry
	missing []team.ID
}

func (b *strictBoard) AdjustScore(id team.ID, delta int) (team.Team, error) {
	t, err := b.Registry.AdjustScore(id, delta)
	if err != nil {
		b.missing = append(b.missing, id)
	}
	return t, err
}

func TestWagerOfDisbandedTeamIsDropped(t *testing.T) {
	q, reg, _ := setup(t, Question{Prompt: "Wager: 2+2?", Answers: []string{"4"}, Wager: true})
	sb := &strictBoard{Registry: reg}

	q.Tick(sb, 5*time.Second)
	if err := q.Wager(sb, "red", 3); err != nil {
		t.Fatalf("red wager: %v", err)
	}
	if err := q.Wager(sb, "blue", 2); err != nil {
		t.Fatalf("blue wager: %v", err)
	}
	q.Tick(sb, 10*time.Second)
	if _, err := reg.Disband("Blue"); err != nil {
		t.Fatalf("Disband: %v", err)
	}

	q.Skip(sb)
	if got := phaseName(q); got != "results" {
		t.Fatalf("phase = %q, want results", got)
	}
	if len(sb.missing) != 0 {
		t.Errorf("score changes for missing teams: %v", sb.missing)
	}
	if got := score(t, reg, "red"); got != -3 {
		t.Errorf("red score = %d, want -3", got)
	}
}
