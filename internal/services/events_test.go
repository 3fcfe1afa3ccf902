package services

import (
	"testing"
	"time"
)

func TestEventHub_SubscribePublish(t *testing.T) {
	hub := NewEventHub()

	ch := hub.Subscribe("client-1")
	hub.Publish(Event{Type: EventFeedbackCreated, ProjectID: 1, GrainID: 2})

	select {
	case ev := <-ch:
		if ev.Type != EventFeedbackCreated {
			t.Errorf("type = %q, expected %q", ev.Type, EventFeedbackCreated)
		}
		if ev.ProjectID != 1 || ev.GrainID != 2 {
			t.Errorf("scope = project %d grain %d, expected 1/2", ev.ProjectID, ev.GrainID)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestEventHub_Broadcast(t *testing.T) {
	hub := NewEventHub()

	ch1 := hub.Subscribe("a")
	ch2 := hub.Subscribe("b")

	hub.Publish(Event{Type: EventTaskReminder, UserID: 5})

	for _, ch := range []<-chan Event{ch1, ch2} {
		select {
		case ev := <-ch:
			if ev.UserID != 5 {
				t.Errorf("UserID = %d, expected 5", ev.UserID)
			}
		case <-time.After(time.Second):
			t.Fatal("a subscriber missed the broadcast")
		}
	}
}

func TestEventHub_Unsubscribe(t *testing.T) {
	hub := NewEventHub()

	ch := hub.Subscribe("gone")
	hub.Unsubscribe("gone")

	if _, open := <-ch; open {
		t.Error("channel should be closed after Unsubscribe")
	}
	if hub.ClientCount() != 0 {
		t.Errorf("ClientCount = %d, expected 0", hub.ClientCount())
	}
}

func TestEventHub_SlowClientDoesNotBlock(t *testing.T) {
	hub := NewEventHub()
	hub.Subscribe("slow") // never drained

	done := make(chan struct{})
	go func() {
		for i := 0; i < 500; i++ {
			hub.Publish(Event{Type: EventFeedbackCreated})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a slow client")
	}
}
