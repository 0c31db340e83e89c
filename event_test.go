package archway

import "testing"

func TestComponentAddedEventReader(t *testing.T) {
	w := NewWorld()
	position := RegisterComponent[Position](w)
	reader := ComponentAdded(position)

	e1, err := Spawn1(w, position, Position{X: 1})
	if err != nil {
		t.Fatalf("Spawn1: %v", err)
	}
	e2, err := Spawn1(w, position, Position{X: 2})
	if err != nil {
		t.Fatalf("Spawn1: %v", err)
	}

	got := reader.Read()
	if len(got) != 2 {
		t.Fatalf("expected 2 added events, got %d", len(got))
	}
	if got[0] != e1 || got[1] != e2 {
		t.Fatalf("unexpected events %v", got)
	}
	if more := reader.Read(); len(more) != 0 {
		t.Fatalf("expected reader to drain, got %d leftover", len(more))
	}
}

func TestComponentRemovedEventFiresOnAlter(t *testing.T) {
	w := NewWorld()
	health := RegisterComponent[Health](w)
	reader := ComponentRemoved(health)

	e, err := Spawn1(w, health, Health{Current: 1})
	if err != nil {
		t.Fatalf("Spawn1: %v", err)
	}
	if err := RemoveComponent(w.Alter(e), health).Apply(); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if err := w.Settle(); err != nil {
		t.Fatalf("Settle: %v", err)
	}

	got := reader.Read()
	if len(got) != 1 || got[0] != e {
		t.Fatalf("expected a single removed event for %v, got %v", e, got)
	}
}
