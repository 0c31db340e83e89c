package archway

import "testing"

func TestAlterAddComponentMigratesArchetype(t *testing.T) {
	w := NewWorld()
	position := RegisterComponent[Position](w)
	velocity := RegisterComponent[Velocity](w)

	e, err := Spawn1(w, position, Position{X: 1, Y: 1})
	if err != nil {
		t.Fatalf("Spawn1: %v", err)
	}

	if err := AddComponent(w.Alter(e), velocity, Velocity{X: 5}).Apply(); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	// Visible immediately: Apply migrates synchronously, it doesn't wait
	// for Settle.
	if _, err := GetComponent(w, velocity, e); err != nil {
		t.Fatalf("velocity should be visible right after Apply: %v", err)
	}

	pos, err := GetComponent(w, position, e)
	if err != nil {
		t.Fatalf("position should have survived the migration: %v", err)
	}
	if pos.X != 1 || pos.Y != 1 {
		t.Fatalf("position value not preserved across migration: %+v", pos)
	}
	vel, err := GetComponent(w, velocity, e)
	if err != nil {
		t.Fatalf("GetComponent(velocity) after Apply: %v", err)
	}
	if vel.X != 5 {
		t.Fatalf("unexpected velocity %+v", vel)
	}
}

func TestEditorRemoveComponent(t *testing.T) {
	w := NewWorld()
	position := RegisterComponent[Position](w)
	health := RegisterComponent[Health](w)

	e, err := Spawn2(w, position, Position{}, health, Health{Current: 3})
	if err != nil {
		t.Fatalf("Spawn2: %v", err)
	}

	ed := w.Edit(e)
	Unset(ed, health)
	if err := ed.Apply(); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if err := w.Settle(); err != nil {
		t.Fatalf("Settle: %v", err)
	}

	if _, err := GetComponent(w, health, e); err == nil {
		t.Fatal("expected health to be removed")
	}
	if _, err := GetComponent(w, position, e); err != nil {
		t.Fatalf("position should remain: %v", err)
	}
}

func TestEditorRuntimeTypedOps(t *testing.T) {
	w := NewWorld()
	position := RegisterComponent[Position](w)
	velocity := RegisterComponent[Velocity](w, WithDefault(Velocity{X: 7}))

	e, err := Spawn1(w, position, Position{})
	if err != nil {
		t.Fatalf("Spawn1: %v", err)
	}

	ops := []EditorOp{{Index: velocity.Index(), Add: true}}
	if err := w.Edit(e).Commit(ops).Apply(); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	vel, err := GetComponent(w, velocity, e)
	if err != nil {
		t.Fatalf("GetComponent(velocity): %v", err)
	}
	if vel.X != 7 {
		t.Fatalf("expected the registered default to be written, got %+v", vel)
	}

	if err := w.Edit(e).RemoveIndex(velocity.Index()).Apply(); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if _, err := GetComponent(w, velocity, e); err == nil {
		t.Fatal("expected velocity to be removed")
	}
}

func TestRepeatedIdenticalAlterReusesMigrationCache(t *testing.T) {
	w := NewWorld()
	position := RegisterComponent[Position](w)
	velocity := RegisterComponent[Velocity](w)

	var entities []Entity
	for i := 0; i < 10; i++ {
		e, err := Spawn1(w, position, Position{})
		if err != nil {
			t.Fatalf("Spawn1: %v", err)
		}
		entities = append(entities, e)
	}
	for _, e := range entities {
		if err := AddComponent(w.Alter(e), velocity, Velocity{X: 1}).Apply(); err != nil {
			t.Fatalf("Apply: %v", err)
		}
	}
	if err := w.Settle(); err != nil {
		t.Fatalf("Settle: %v", err)
	}
	if len(w.migrations.dests) != 1 {
		t.Fatalf("expected exactly one cached migration, got %d", len(w.migrations.dests))
	}
}
