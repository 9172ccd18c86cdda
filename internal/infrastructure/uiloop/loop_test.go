package uiloop

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestLoop_RunsCallbacksInOrder(t *testing.T) {
	l := New(8, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	go l.Run(ctx)

	got := make(chan int, 3)
	for i := 0; i < 3; i++ {
		i := i
		if err := l.RunOnUI(func() { got <- i }); err != nil {
			t.Fatalf("RunOnUI: %v", err)
		}
	}
	for want := 0; want < 3; want++ {
		select {
		case v := <-got:
			if v != want {
				t.Fatalf("expected %d, got %d", want, v)
			}
		case <-time.After(time.Second):
			t.Fatalf("callback %d not run", want)
		}
	}

	cancel()
	<-l.Done()
	if err := l.RunOnUI(func() {}); !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped, got %v", err)
	}
}

func TestLoop_SurvivesPanickingCallback(t *testing.T) {
	l := New(2, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	ran := make(chan struct{})
	_ = l.RunOnUI(func() { panic("boom") })
	_ = l.RunOnUI(func() { close(ran) })

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatalf("loop stopped after a panicking callback")
	}
}

func TestLoop_RunsQueuedCallbacksBeforeDone(t *testing.T) {
	l := New(8, zerolog.Nop())
	ran := make(chan int, 3)
	for i := 0; i < 3; i++ {
		i := i
		if err := l.RunOnUI(func() { ran <- i }); err != nil {
			t.Fatalf("RunOnUI: %v", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	go l.Run(ctx)

	select {
	case <-l.Done():
	case <-time.After(time.Second):
		t.Fatalf("loop did not stop")
	}
	if len(ran) != 3 {
		t.Fatalf("expected 3 queued callbacks to run before Done, got %d", len(ran))
	}
	for want := 0; want < 3; want++ {
		if got := <-ran; got != want {
			t.Fatalf("expected %d, got %d", want, got)
		}
	}
}

func TestLoop_RunOnUIAfterStop(t *testing.T) {
	l := New(1, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	go l.Run(ctx)
	cancel()
	<-l.Done()

	called := false
	if err := l.RunOnUI(func() { called = true }); !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped, got %v", err)
	}
	if called {
		t.Fatalf("callback must not run after stop")
	}
}
