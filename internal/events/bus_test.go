package events

import "testing"

func TestBus_PublishWithoutSubscribers(t *testing.T) {
	bus := NewBus()
	// Must not panic or block.
	bus.Publish(ActionCompleted, map[string]string{"capability": "open_app"})
}

func TestBus_DeliversInRegistrationOrder(t *testing.T) {
	bus := NewBus()
	var order []int
	bus.Subscribe(StateChange, func(any) { order = append(order, 1) })
	bus.Subscribe(StateChange, func(any) { order = append(order, 2) })
	bus.Subscribe(StateChange, func(any) { order = append(order, 3) })

	bus.Publish(StateChange, "idle")

	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Errorf("Delivery order = %v, want [1 2 3]", order)
	}
}

func TestBus_FaultingSubscriberIsIsolated(t *testing.T) {
	bus := NewBus()
	delivered := 0
	bus.Subscribe(ActionCompleted, func(any) { delivered++ })
	bus.Subscribe(ActionCompleted, func(any) { panic("bad subscriber") })
	bus.Subscribe(ActionCompleted, func(any) { delivered++ })

	bus.Publish(ActionCompleted, nil)

	if delivered != 2 {
		t.Errorf("Expected the 2 healthy subscribers to run, got %d", delivered)
	}
}

func TestBus_PayloadReachesSubscriber(t *testing.T) {
	bus := NewBus()
	var got any
	bus.Subscribe(SystemAlert, func(p any) { got = p })

	bus.Publish(SystemAlert, "reasoning service unreachable")

	if got != "reasoning service unreachable" {
		t.Errorf("Payload = %v", got)
	}
}
