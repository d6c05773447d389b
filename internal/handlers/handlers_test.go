package handlers

import (
	"sync"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	h := newTestHandler()

	if h.store == nil {
		t.Error("handler has no store")
	}
	if h.registry == nil {
		t.Error("handler has no role catalog")
	}
	if h.validator == nil {
		t.Error("handler has no validator")
	}
	if h.assigner == nil {
		t.Error("handler has no assigner")
	}
	if h.eventBus == nil {
		t.Error("handler has no event bus")
	}
	if h.tracker == nil {
		t.Error("handler has no connection tracker")
	}

	if h.Store() != h.store {
		t.Error("Store() does not return the wired store")
	}
	if h.Registry() != h.registry {
		t.Error("Registry() does not return the wired catalog")
	}
}

func TestEventBus(t *testing.T) {
	t.Run("delivers events to session subscribers", func(t *testing.T) {
		eb := NewEventBus()
		ch := eb.Subscribe("ABCDE")
		defer eb.Unsubscribe("ABCDE", ch)

		eb.Publish(Event{Type: eventConfigUpdated, SessionCode: "ABCDE"})

		select {
		case event := <-ch:
			if event.Type != eventConfigUpdated {
				t.Errorf("event type = %q, want %q", event.Type, eventConfigUpdated)
			}
			if event.SessionCode != "ABCDE" {
				t.Errorf("event session = %q, want ABCDE", event.SessionCode)
			}
		case <-time.After(time.Second):
			t.Fatal("event never arrived")
		}
	})

	t.Run("does not leak events across sessions", func(t *testing.T) {
		eb := NewEventBus()
		ours := eb.Subscribe("AAAAA")
		theirs := eb.Subscribe("BBBBB")
		defer eb.Unsubscribe("AAAAA", ours)
		defer eb.Unsubscribe("BBBBB", theirs)

		eb.Publish(Event{Type: eventSessionReset, SessionCode: "AAAAA"})

		select {
		case <-ours:
		case <-time.After(time.Second):
			t.Fatal("subscriber for the published session got nothing")
		}

		select {
		case event := <-theirs:
			t.Errorf("subscriber for another session received %q", event.Type)
		default:
		}
	})

	t.Run("fan out reaches every subscriber", func(t *testing.T) {
		eb := NewEventBus()
		first := eb.Subscribe("ABCDE")
		second := eb.Subscribe("ABCDE")
		defer eb.Unsubscribe("ABCDE", first)
		defer eb.Unsubscribe("ABCDE", second)

		eb.Publish(Event{Type: eventAssignmentDealt, SessionCode: "ABCDE"})

		for i, ch := range []chan Event{first, second} {
			select {
			case <-ch:
			case <-time.After(time.Second):
				t.Fatalf("subscriber %d got nothing", i)
			}
		}
	})

	t.Run("unsubscribe closes the channel", func(t *testing.T) {
		eb := NewEventBus()
		ch := eb.Subscribe("ABCDE")
		eb.Unsubscribe("ABCDE", ch)

		if _, ok := <-ch; ok {
			t.Error("channel still open after unsubscribe")
		}

		// A publish after unsubscribe must not panic on the closed channel
		eb.Publish(Event{Type: eventConfigUpdated, SessionCode: "ABCDE"})
	})

	t.Run("publish never blocks on a slow subscriber", func(t *testing.T) {
		eb := NewEventBus()
		ch := eb.Subscribe("ABCDE")
		defer eb.Unsubscribe("ABCDE", ch)

		// The subscriber buffer holds 10; extra events are dropped, not queued
		done := make(chan struct{})
		go func() {
			for i := 0; i < 25; i++ {
				eb.Publish(Event{Type: eventRevealProgress, SessionCode: "ABCDE"})
			}
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("publish blocked on a full subscriber channel")
		}

		if got := len(ch); got != 10 {
			t.Errorf("buffered events = %d, want 10", got)
		}
	})

	t.Run("handles concurrent subscribe and publish", func(t *testing.T) {
		eb := NewEventBus()
		var wg sync.WaitGroup

		for i := 0; i < 10; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				ch := eb.Subscribe("ABCDE")
				eb.Unsubscribe("ABCDE", ch)
			}()
			go func() {
				defer wg.Done()
				eb.Publish(Event{Type: eventConfigUpdated, SessionCode: "ABCDE"})
			}()
		}
		wg.Wait()
	})
}
