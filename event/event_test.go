package event_test

import (
	"testing"

	"github.com/rcornwell/cdc6000/event"
)

func TestDrainRunsInOrder(t *testing.T) {
	var got []int
	event.Enqueue(func() { got = append(got, 1) })
	event.Enqueue(func() { got = append(got, 2) })
	event.Enqueue(func() { got = append(got, 3) })

	if !event.Pending() {
		t.Fatalf("expected pending work before Drain")
	}

	event.Drain()

	if event.Pending() {
		t.Fatalf("expected no pending work after Drain")
	}
	want := []int{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestDrainEmptyIsNoop(t *testing.T) {
	event.Drain()
	event.Drain()
}
