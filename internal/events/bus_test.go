package events

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestEmitSyncRunsAllHandlers(t *testing.T) {
	bus := NewEventBus()
	defer bus.Stop()

	var calls atomic.Int32
	for _, name := range []string{"store", "telemetry"} {
		bus.Subscribe(EventTurn, name, func(ctx context.Context, e Event) error {
			if p, ok := e.Payload.(TurnPayload); !ok || p.Turn != 3 {
				t.Errorf("payload = %#v", e.Payload)
			}
			calls.Add(1)
			return nil
		})
	}

	err := bus.EmitSync(context.Background(), Event{Type: EventTurn, Source: "test", Payload: TurnPayload{Room: "r", Turn: 3}})
	if err != nil {
		t.Fatal(err)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d", calls.Load())
	}
}

func TestEmitSyncReturnsHandlerError(t *testing.T) {
	bus := NewEventBus()
	defer bus.Stop()

	boom := errors.New("boom")
	bus.Subscribe(EventFrame, "failing", func(context.Context, Event) error { return boom })
	if err := bus.EmitSync(context.Background(), Event{Type: EventFrame}); !errors.Is(err, boom) {
		t.Errorf("err = %v", err)
	}
}

func TestEmitSyncKeepsSubscriptionOrder(t *testing.T) {
	bus := NewEventBus()
	defer bus.Stop()

	var order []string
	for _, name := range []string{"archive", "metrics", "console"} {
		name := name // per-iteration copy (Go 1.22 loop semantics)
		bus.Subscribe(EventFrame, name, func(context.Context, Event) error {
			order = append(order, name)
			return nil
		})
	}
	first := errors.New("first")
	bus.Subscribe(EventFrame, "metrics", func(context.Context, Event) error {
		order = append(order, "metrics2")
		return first
	})

	err := bus.EmitSync(context.Background(), Event{Type: EventFrame})
	if !errors.Is(err, first) {
		t.Errorf("err = %v", err)
	}
	want := []string{"archive", "metrics2", "console"}
	if len(order) != len(want) {
		t.Fatalf("order = %v", order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
	if n := bus.HandlerCount(EventFrame); n != 3 {
		t.Errorf("handlers = %d", n)
	}
}

func TestEmitSyncReportsPanic(t *testing.T) {
	bus := NewEventBus()
	defer bus.Stop()

	ran := false
	bus.Subscribe(EventTurn, "panics", func(context.Context, Event) error { panic("bad") })
	bus.Subscribe(EventTurn, "after", func(context.Context, Event) error { ran = true; return nil })

	if err := bus.EmitSync(context.Background(), Event{Type: EventTurn}); err == nil {
		t.Error("a panicking handler should surface as an error")
	}
	if !ran {
		t.Error("handlers after a panic must still run")
	}
}

func TestEmitRecoversFromPanic(t *testing.T) {
	bus := NewEventBus()

	var wg sync.WaitGroup
	wg.Add(1)
	bus.Subscribe(EventBattleEnded, "panics", func(context.Context, Event) error { panic("bad") })
	bus.Subscribe(EventBattleEnded, "ok", func(context.Context, Event) error {
		wg.Done()
		return nil
	})

	bus.Emit(context.Background(), Event{Type: EventBattleEnded})
	wg.Wait()
	bus.Stop()
}

func TestUnsubscribeAndStop(t *testing.T) {
	bus := NewEventBus()
	bus.Subscribe(EventTurn, "a", func(context.Context, Event) error { return nil })
	bus.Subscribe(EventTurn, "b", func(context.Context, Event) error { return nil })
	bus.Unsubscribe(EventTurn, "a")
	if n := bus.HandlerCount(EventTurn); n != 1 {
		t.Errorf("handlers = %d", n)
	}

	bus.Stop()
	bus.Stop()
	select {
	case <-bus.StopCh():
	default:
		t.Error("stop channel should be closed")
	}

	called := false
	bus.Subscribe(EventTurn, "late", func(context.Context, Event) error { called = true; return nil })
	if err := bus.EmitSync(context.Background(), Event{Type: EventTurn}); err != nil || called {
		t.Error("a stopped bus must not run handlers")
	}
}

func TestConnectionStateJSON(t *testing.T) {
	b, err := ConnectionOpen.MarshalJSON()
	if err != nil || string(b) != `"open"` {
		t.Errorf("json = %s, %v", b, err)
	}
	if ConnectionState(42).String() != "idle" {
		t.Error("unknown states fall back to idle")
	}
}
