package rules

import "testing"

func TestEventBusSubscribeTyped(t *testing.T) {
	bus := NewEventBus()

	rentCount := 0
	taxCount := 0

	handle1 := bus.SubscribeTyped(EventRentPaid, func(e Event) {
		rentCount++
	})

	handle2 := bus.SubscribeTyped(EventTaxPaid, func(e Event) {
		taxCount++
	})

	bus.Publish(NewEventWithAmount(EventRentPaid, "alice", "rent", 50))
	if rentCount != 1 {
		t.Fatalf("expected rent count 1, got %d", rentCount)
	}
	if taxCount != 0 {
		t.Fatalf("expected tax count 0, got %d", taxCount)
	}

	bus.Publish(NewEventWithAmount(EventTaxPaid, "alice", "income tax", 200))
	if taxCount != 1 {
		t.Fatalf("expected tax count 1, got %d", taxCount)
	}

	bus.Unsubscribe(handle1)
	bus.Publish(NewEvent(EventRentPaid, "bob", "rent"))
	if rentCount != 1 {
		t.Fatalf("expected rent count still 1 after unsubscribe, got %d", rentCount)
	}

	bus.Unsubscribe(handle2)
	bus.Publish(NewEvent(EventTaxPaid, "bob", "luxury tax"))
	if taxCount != 1 {
		t.Fatalf("expected tax count still 1 after unsubscribe, got %d", taxCount)
	}
}

func TestEventBusSubscribeAllInOrder(t *testing.T) {
	bus := NewEventBus()

	var order []string
	bus.Subscribe(func(e Event) { order = append(order, "first:"+string(e.Type)) })
	handle := bus.Subscribe(func(e Event) { order = append(order, "second:"+string(e.Type)) })

	bus.Publish(NewEvent(EventDiceRolled, "alice", ""))
	bus.Unsubscribe(handle)
	bus.Publish(NewEvent(EventMoved, "alice", ""))

	want := []string{"first:DICE_ROLLED", "second:DICE_ROLLED", "first:MOVED"}
	if len(order) != len(want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, order)
		}
	}
}

func TestNewEventPopulatesFields(t *testing.T) {
	evt := NewEventWithAmount(EventPassedGo, "alice", "passed go", 200)
	if evt.ID == "" {
		t.Fatal("expected event ID to be set")
	}
	if evt.Timestamp.IsZero() {
		t.Fatal("expected timestamp to be set")
	}
	if evt.Amount != 200 || evt.PlayerID != "alice" {
		t.Fatalf("unexpected event %+v", evt)
	}
	if evt.Metadata == nil {
		t.Fatal("expected metadata map")
	}
}

func TestNilListenersAreRejected(t *testing.T) {
	bus := NewEventBus()
	if h := bus.Subscribe(nil); h != -1 {
		t.Fatalf("expected -1 handle, got %d", h)
	}
	if h := bus.SubscribeTyped(EventMoved, nil); h != -1 {
		t.Fatalf("expected -1 handle, got %d", h)
	}
}
