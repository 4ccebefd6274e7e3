package events

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second},
		{10, 30 * time.Second},
		{100, 30 * time.Second},
	}

	for _, tt := range tests {
		if got := exponentialBackoff(tt.attempt); got != tt.want {
			t.Errorf("exponentialBackoff(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"connection refused", errors.New("dial tcp: connection refused"), true},
		{"connection closed", errors.New("connection closed"), true},
		{"unexpected EOF", errors.New("unexpected EOF"), true},
		{"broken pipe", errors.New("write: broken pipe"), true},
		{"closed network connection", errors.New("use of closed network connection"), true},
		{"message channel closed", errors.New("message channel closed"), true},
		{"other error", errors.New("some other error"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isConnectionError(tt.err); got != tt.want {
				t.Errorf("isConnectionError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestCircuitBreaker(t *testing.T) {
	c := &Client{}

	if c.isCircuitOpen() {
		t.Fatal("new client should have a closed circuit")
	}
	for i := 0; i < maxFailures-1; i++ {
		c.recordFailure()
	}
	if c.isCircuitOpen() {
		t.Fatalf("circuit opened after %d failures", maxFailures-1)
	}
	c.recordFailure()
	if !c.isCircuitOpen() {
		t.Fatal("circuit should open after maxFailures")
	}

	err := c.PublishChange(context.Background(), NewChangeEvent("expenses", OpCreate, "x"))
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("PublishChange() error = %v, want ErrCircuitOpen", err)
	}

	// Past the open timeout the breaker lets one attempt through.
	c.lastFailure = time.Now().Add(-openTimeout - time.Second)
	if c.isCircuitOpen() {
		t.Fatal("circuit should be half-open after timeout")
	}
	if c.state != StateHalfOpen {
		t.Fatalf("state = %d, want half-open", c.state)
	}
	c.recordFailure()
	if c.state != StateOpen {
		t.Fatal("failure while half-open should reopen the circuit")
	}

	c.recordSuccess()
	if c.isCircuitOpen() || c.failureCount != 0 {
		t.Fatal("success should close the circuit and reset failures")
	}
}

func TestPublishChange_CanceledContext(t *testing.T) {
	c := &Client{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.PublishChange(ctx, NewChangeEvent("income", OpDelete, "x"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("PublishChange() error = %v, want context.Canceled", err)
	}
}

func TestPublishOn_ClosedChannel(t *testing.T) {
	c := &Client{}
	err := c.publishOn(context.Background(), nil, []byte(`{}`), time.Now())
	if !errors.Is(err, amqp091.ErrClosed) {
		t.Fatalf("publishOn() error = %v, want amqp091.ErrClosed", err)
	}
	if got := atomic.LoadInt64(&c.failureCount); got != 1 {
		t.Errorf("failureCount = %d, want 1", got)
	}
}

type fakeAck struct {
	acked, nacked, requeued bool
}

func (f *fakeAck) Ack(bool) error { f.acked = true; return nil }

func (f *fakeAck) Nack(_, requeue bool) error {
	f.nacked, f.requeued = true, requeue
	return nil
}

func TestDispatch(t *testing.T) {
	good, _ := NewChangeEvent("budgets", OpReplace, "").ToJSON()

	tests := []struct {
		name       string
		body       []byte
		handlerErr error
		wantAck    bool
		wantNack   bool
		wantQueue  bool
	}{
		{"handled", good, nil, true, false, false},
		{"handler failure requeues", good, errors.New("sheets down"), false, true, true},
		{"bad json dropped", []byte("{"), nil, false, true, false},
		{"missing domain dropped", []byte(`{"op":"create"}`), nil, false, true, false},
		{"unknown domain dropped", []byte(`{"domain":"bogus","op":"create"}`), errors.New("unknown domain"), false, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ack := &fakeAck{}
			var got ChangeEvent
			called := false
			dispatch(context.Background(), tt.body, ack, func(_ context.Context, ev ChangeEvent) error {
				got, called = ev, true
				return tt.handlerErr
			})
			if !tt.wantAck && !tt.wantQueue && called {
				t.Errorf("handler called for dropped message %s", tt.body)
			}
			if ack.acked != tt.wantAck || ack.nacked != tt.wantNack || ack.requeued != tt.wantQueue {
				t.Errorf("ack=%v nack=%v requeue=%v, want %v %v %v",
					ack.acked, ack.nacked, ack.requeued, tt.wantAck, tt.wantNack, tt.wantQueue)
			}
			if tt.wantAck && got.Domain != "budgets" {
				t.Errorf("handler got domain %q", got.Domain)
			}
		})
	}
}

func TestChangeEventJSON(t *testing.T) {
	ev := NewChangeEvent("expenses", OpUpdate, "abc")
	data, err := ev.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}
	got, err := ChangeEventFromJSON(data)
	if err != nil {
		t.Fatalf("ChangeEventFromJSON() error = %v", err)
	}
	if got.Domain != ev.Domain || got.Op != ev.Op || got.ID != ev.ID || !got.Timestamp.Equal(ev.Timestamp) {
		t.Errorf("round trip = %+v, want %+v", got, ev)
	}
}
