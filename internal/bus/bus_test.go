package bus

import "testing"

func TestDeliveryOrder(t *testing.T) {
	b := New()

	var got []int
	b.On(DBChanged, func(any) { got = append(got, 1) })
	b.On(DBChanged, func(any) { got = append(got, 2) })
	b.On(DBChanged, func(any) { got = append(got, 3) })

	b.Emit(DBChanged, nil)

	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Errorf("expected delivery in subscription order, got %v", got)
	}
}

func TestUnsubscribe(t *testing.T) {
	b := New()

	calls := 0
	off := b.On(SettingsChanged, func(any) { calls++ })

	b.Emit(SettingsChanged, nil)
	off()
	b.Emit(SettingsChanged, nil)
	off() // second unsubscribe is a no-op
	b.Emit(SettingsChanged, nil)

	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestEventsAreIndependent(t *testing.T) {
	b := New()

	dbCalls, sessionCalls := 0, 0
	b.On(DBChanged, func(any) { dbCalls++ })
	b.On(SessionChanged, func(any) { sessionCalls++ })

	b.Emit(DBChanged, nil)
	b.Emit(DBChanged, nil)

	if dbCalls != 2 || sessionCalls != 0 {
		t.Errorf("expected (2, 0), got (%d, %d)", dbCalls, sessionCalls)
	}
}

func TestPayloadDelivered(t *testing.T) {
	b := New()

	var got any
	b.On(SessionChanged, func(p any) { got = p })

	b.Emit(SessionChanged, "payload")
	if got != "payload" {
		t.Errorf("expected payload, got %v", got)
	}

	b.Emit(SessionChanged, nil)
	if got != nil {
		t.Errorf("expected nil payload, got %v", got)
	}
}

// A handler that emits again must see its nested event delivered fully
// before the outer emission continues with the remaining subscribers.
func TestReentrantEmit(t *testing.T) {
	b := New()

	var got []string
	b.On(DBChanged, func(p any) {
		got = append(got, "outer-first")
		if p == "outer" {
			b.Emit(DBChanged, "nested")
		}
	})
	b.On(DBChanged, func(p any) {
		got = append(got, "outer-second")
	})

	b.Emit(DBChanged, "outer")

	want := []string{"outer-first", "outer-first", "outer-second", "outer-second"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestHandlerRegisteredDuringEmitNotInvoked(t *testing.T) {
	b := New()

	lateCalls := 0
	b.On(DBChanged, func(any) {
		b.On(DBChanged, func(any) { lateCalls++ })
	})

	b.Emit(DBChanged, nil)
	if lateCalls != 0 {
		t.Errorf("late subscriber invoked for in-flight event")
	}

	b.Emit(DBChanged, nil)
	if lateCalls != 1 {
		t.Errorf("expected late subscriber on next emit, got %d calls", lateCalls)
	}
}
