package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/energizer-project/showtrack/internal/events"
	"github.com/energizer-project/showtrack/internal/protocol"
	"github.com/energizer-project/showtrack/internal/session"
	"github.com/energizer-project/showtrack/internal/tracker"
)

var battleLines = []string{
	"|player|p1|Alice|",
	"|player|p2|Bob|",
	"|gametype|singles",
	"|gen|9",
	"|tier|[Gen 9] OU",
	"|switch|p1a: Sparky|Pikachu, L50, M|100/100",
	"|switch|p2a: Gengar|Gengar|100/100",
	"|turn|1",
	"|-boost|p1a: Sparky|atk|2",
	"|-status|p2a: Gengar|par",
	"|-sidestart|p2: Bob|move: Stealth Rock",
	"|-item|p1a: Sparky|Leftovers",
	"|-weather|RainDance",
	"|turn|2",
}

func buildBattle(t *testing.T, extra ...string) *tracker.Battle {
	t.Helper()
	frame := protocol.NewDecoder().DecodeFrame(strings.Join(append(append([]string(nil), battleLines...), extra...), "\n"))
	if err := frame.Err(); err != nil {
		t.Fatal(err)
	}
	b := tracker.New()
	b.ApplyFrame(frame)
	return b
}

func TestRenderBattle(t *testing.T) {
	var buf bytes.Buffer
	RenderBattle(&buf, buildBattle(t))
	out := buf.String()

	for _, want := range []string{
		"[Gen 9] OU (gen 9, singles)  turn 2",
		"weather: Rain",
		"Result: in progress",
		"p1 Alice  1 alive, 0 fainted",
		"Conditions: Stealth Rock",
		"Sparky",
		"Pikachu",
		"atk+2",
		"Leftovers",
		"par",
		"p2a",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderBattleOutcome(t *testing.T) {
	var buf bytes.Buffer
	RenderBattle(&buf, buildBattle(t, "|faint|p2a: Gengar", "|win|Alice"))
	out := buf.String()
	if !strings.Contains(out, "Result: Alice won") {
		t.Errorf("missing winner:\n%s", out)
	}
	if !strings.Contains(out, "fnt") {
		t.Errorf("fainted entry not marked:\n%s", out)
	}

	buf.Reset()
	RenderBattle(&buf, buildBattle(t, "|tie"))
	if !strings.Contains(buf.String(), "Result: tie") {
		t.Errorf("missing tie:\n%s", buf.String())
	}
}

func TestRenderRooms(t *testing.T) {
	var buf bytes.Buffer
	RenderRooms(&buf, []session.RoomSummary{
		{Room: "battle-gen9ou-1", Tier: "[Gen 9] OU", Players: []string{"Alice", "Bob"}, Turn: 12, Ended: true, Winner: "Bob"},
		{Room: "battle-gen9ou-2", Turn: 3},
	})
	out := buf.String()
	for _, want := range []string{"battle-gen9ou-1", "Alice vs Bob", "won by Bob", "live"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

type fakeSender struct {
	sent []string
	err  error
}

func (f *fakeSender) Send(room, text string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, room+"|"+text)
	return nil
}

const frame = `>battle-gen9ou-5
|init|battle
|player|p1|Alice|1|
|player|p2|Bob|2|
|gametype|singles
|tier|[Gen 9] OU
|start
|switch|p1a: Pikachu|Pikachu|100/100
|turn|1`

func newTestCLI(t *testing.T, input string, sender Sender) (*CLI, *bytes.Buffer) {
	t.Helper()
	bus := events.NewEventBus()
	t.Cleanup(bus.Stop)
	sessions := session.NewManager(bus)
	sessions.HandleFrame(context.Background(), frame)
	var out bytes.Buffer
	return NewCLI(bus, sessions, sender, strings.NewReader(input), &out), &out
}

func TestCLICommands(t *testing.T) {
	sender := &fakeSender{}
	c, out := newTestCLI(t, "rooms\nshow battle-gen9ou-5\nperspective battle-gen9ou-5 p2\njoin lobby\nbogus\nforget battle-gen9ou-5\nshow battle-gen9ou-5\n", sender)
	c.Start(context.Background())

	text := out.String()
	for _, want := range []string{
		"battle-gen9ou-5",
		"turn 1",
		"Perspective for battle-gen9ou-5 set to p2",
		"Sent join for lobby",
		"Unknown command: 'bogus'",
		"Forgot battle-gen9ou-5",
		"Error: room battle-gen9ou-5 is not tracked",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
	if len(sender.sent) != 1 || sender.sent[0] != "|/join lobby" {
		t.Errorf("sent = %v", sender.sent)
	}
}

func TestCLIJoinWithoutConnection(t *testing.T) {
	c, _ := newTestCLI(t, "", nil)
	if err := c.execute(context.Background(), "join", []string{"lobby"}); err == nil {
		t.Error("join without a connection should fail")
	}

	c, _ = newTestCLI(t, "", &fakeSender{err: errors.New("closed")})
	if err := c.execute(context.Background(), "leave", []string{"lobby"}); err == nil {
		t.Error("send error should be returned")
	}
}

func TestCLIQuitEmitsShutdown(t *testing.T) {
	c, _ := newTestCLI(t, "", nil)
	got := make(chan struct{}, 1)
	c.eventBus.Subscribe(events.EventShutdown, "test", func(context.Context, events.Event) error {
		got <- struct{}{}
		return nil
	})
	if err := c.execute(context.Background(), "quit", nil); err != nil {
		t.Fatal(err)
	}
	<-got
}
