package telemetry

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	json "github.com/goccy/go-json"

	"github.com/energizer-project/showtrack/internal/config"
	"github.com/energizer-project/showtrack/internal/events"
)

type doneToken struct{ done chan struct{} }

func newDoneToken() *doneToken {
	t := &doneToken{done: make(chan struct{})}
	close(t.done)
	return t
}

func (t *doneToken) Wait() bool                     { return true }
func (t *doneToken) WaitTimeout(time.Duration) bool { return true }
func (t *doneToken) Done() <-chan struct{}          { return t.done }
func (t *doneToken) Error() error                   { return nil }

type published struct {
	topic string
	body  []byte
}

type fakePublisher struct {
	mu        sync.Mutex
	connected bool
	messages  []published
}

func (f *fakePublisher) IsConnected() bool { return f.connected }

func (f *fakePublisher) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, published{topic: topic, body: payload.([]byte)})
	return newDoneToken()
}

func TestForwardPublishesWithPrefixAndMetadata(t *testing.T) {
	bus := events.NewEventBus()
	fake := &fakePublisher{connected: true}
	h := newHandler(config.MQTTConfig{TopicPrefix: "showtrack"}, bus, map[string]interface{}{"hostname": "box"})
	h.pub = fake
	h.subscribeEvents()

	ctx := context.Background()
	if err := bus.EmitSync(ctx, events.Event{Type: events.EventTurn, Payload: events.TurnPayload{Room: "battle-1", Turn: 7}}); err != nil {
		t.Fatal(err)
	}
	if err := bus.EmitSync(ctx, events.Event{Type: events.EventBattleEnded, Payload: events.BattleEndedPayload{Room: "battle-1", Winner: "Alice"}}); err != nil {
		t.Fatal(err)
	}
	bus.Stop()

	if len(fake.messages) != 2 {
		t.Fatalf("published %d messages", len(fake.messages))
	}
	if fake.messages[0].topic != "showtrack/battle/turn" || fake.messages[1].topic != "showtrack/battle/end" {
		t.Errorf("topics = %s, %s", fake.messages[0].topic, fake.messages[1].topic)
	}

	var body struct {
		Hostname string `json:"hostname"`
		Payload  struct {
			Room string `json:"room"`
			Turn int    `json:"turn"`
		} `json:"payload"`
		Timestamp string `json:"timestamp"`
	}
	if err := json.Unmarshal(fake.messages[0].body, &body); err != nil {
		t.Fatal(err)
	}
	if body.Hostname != "box" || body.Payload.Turn != 7 || body.Timestamp == "" {
		t.Errorf("body = %+v", body)
	}
}

func TestPublishDropsWhileDisconnected(t *testing.T) {
	fake := &fakePublisher{}
	h := newHandler(config.MQTTConfig{}, events.NewEventBus(), nil)
	h.pub = fake
	h.publish(TopicDecodeError, map[string]string{"x": "y"})
	if len(fake.messages) != 0 {
		t.Error("nothing should be published while disconnected")
	}

	fake.connected = true
	h.publish(TopicDecodeError, map[string]string{"x": "y"})
	if len(fake.messages) != 1 || fake.messages[0].topic != "decode/error" {
		t.Errorf("messages = %+v", fake.messages)
	}
}

func TestNewMQTTHandlerDisabled(t *testing.T) {
	if _, err := NewMQTTHandler(config.MQTTConfig{}, events.NewEventBus()); !errors.Is(err, ErrDisabled) {
		t.Errorf("err = %v", err)
	}
}

func TestBuildTLSConfigMissingCA(t *testing.T) {
	if _, err := buildTLSConfig(config.MQTTConfig{UseTLS: true, CAFile: "/nonexistent/ca.pem"}); err == nil {
		t.Error("expected an error for a missing CA file")
	}
}
