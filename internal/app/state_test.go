package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bft-labs/entryship/internal/domain"
)

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateAccepting, "Accepting"},
		{StateDraining, "Draining"},
		{StateLocked, "Locked"},
		{State(99), "Unknown"},
	}

	for _, tt := range tests {
		got := tt.state.String()
		if got != tt.want {
			t.Errorf("State(%d).String() = %s, want %s", tt.state, got, tt.want)
		}
	}
}

func TestValidateTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    State
		to      State
		wantErr error
	}{
		{"accepting to draining", StateAccepting, StateDraining, nil},
		{"accepting to locked", StateAccepting, StateLocked, nil},
		{"draining to accepting", StateDraining, StateAccepting, nil},
		{"draining to locked", StateDraining, StateLocked, nil},
		{"accepting to accepting", StateAccepting, StateAccepting, domain.ErrInvalidTransition},
		{"draining to draining", StateDraining, StateDraining, domain.ErrDraining},
		{"locked to accepting", StateLocked, StateAccepting, domain.ErrPostingLocked},
		{"locked to draining", StateLocked, StateDraining, domain.ErrPostingLocked},
		{"unknown state", State(7), StateLocked, domain.ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTransition(tt.from, tt.to)
			if err != tt.wantErr {
				t.Errorf("validateTransition(%v, %v) = %v, want %v", tt.from, tt.to, err, tt.wantErr)
			}
		})
	}
}

func TestQueue(t *testing.T) {
	q := newQueue()
	q.push(entries(5)...)

	got := q.take(2)
	if len(got) != 2 || got[0]["id"] != 1 || got[1]["id"] != 2 {
		t.Fatalf("take(2) = %v", got)
	}
	if q.len() != 3 {
		t.Fatalf("len = %d, want 3", q.len())
	}

	q.pushFront(got)
	snap := q.snapshot()
	for i, e := range snap {
		if e["id"] != i+1 {
			t.Errorf("snapshot[%d] = %v, want id %d", i, e, i+1)
		}
	}

	// The snapshot is a copy.
	snap[0] = domain.Entry{"id": 42}
	if q.take(1)[0]["id"] != 1 {
		t.Error("snapshot shares storage with queue")
	}

	q.reset()
	if q.len() != 0 {
		t.Errorf("len after reset = %d", q.len())
	}
}

func TestIdlePacer_Delay(t *testing.T) {
	p := newIdlePacer(100*time.Millisecond, 400*time.Millisecond)

	for i, want := range []time.Duration{100, 200, 400, 400} {
		want *= time.Millisecond
		if p.current != want {
			t.Fatalf("step %d: current = %v, want %v", i, p.current, want)
		}
		d := p.delay()
		if d < want*8/10 || d > want*12/10 {
			t.Errorf("step %d: delay = %v, outside jitter of %v", i, d, want)
		}
	}

	p.reset()
	if p.current != 100*time.Millisecond {
		t.Errorf("current after reset = %v", p.current)
	}
}

func TestIdlePacer_Wait(t *testing.T) {
	p := newIdlePacer(time.Hour, time.Hour)

	changes := make(chan struct{}, 1)
	changes <- struct{}{}
	p.current = 2 * time.Hour
	if err := p.wait(context.Background(), changes); err != nil {
		t.Fatalf("wait on change: %v", err)
	}
	if p.current != time.Hour {
		t.Errorf("change did not reset the delay: %v", p.current)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := p.wait(ctx, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("wait on canceled ctx = %v", err)
	}

	short := newIdlePacer(time.Millisecond, time.Millisecond)
	if err := short.wait(context.Background(), nil); err != nil {
		t.Errorf("wait on timer: %v", err)
	}
}
