package archway

import "testing"

func TestQuery2EachVisitsEveryMatchingEntity(t *testing.T) {
	w := NewWorld()
	position := RegisterComponent[Position](w)
	velocity := RegisterComponent[Velocity](w)
	name := RegisterComponent[Name](w)

	want := map[Entity]bool{}
	for i := 0; i < 5; i++ {
		e, err := Spawn2(w, position, Position{X: float64(i)}, velocity, Velocity{X: 1})
		if err != nil {
			t.Fatalf("Spawn2: %v", err)
		}
		want[e] = true
	}
	// An entity with an extra component should still match Query2(position, velocity).
	e, err := Spawn3(w, position, Position{X: 99}, velocity, Velocity{X: 1}, name, Name{Value: "extra"})
	if err != nil {
		t.Fatalf("Spawn3: %v", err)
	}
	want[e] = true

	// An entity missing velocity must not match.
	if _, err := Spawn1(w, position, Position{X: -1}); err != nil {
		t.Fatalf("Spawn1: %v", err)
	}

	got := map[Entity]bool{}
	NewQuery2(w, position, velocity).Each(func(e Entity, pos *Position, vel *Velocity) {
		got[e] = true
		pos.X += vel.X
	})

	if len(got) != len(want) {
		t.Fatalf("expected %d matches, got %d", len(want), len(got))
	}
	for e := range want {
		if !got[e] {
			t.Fatalf("expected entity %v to match", e)
		}
	}
}

func TestQueryWithFilterExcludes(t *testing.T) {
	w := NewWorld()
	position := RegisterComponent[Position](w)
	health := RegisterComponent[Health](w)

	withHealth, err := Spawn2(w, position, Position{}, health, Health{Current: 1})
	if err != nil {
		t.Fatalf("Spawn2: %v", err)
	}
	withoutHealth, err := Spawn1(w, position, Position{})
	if err != nil {
		t.Fatalf("Spawn1: %v", err)
	}

	seen := map[Entity]bool{}
	NewQuery1(w, position, WithoutC(health)).Each(func(e Entity, _ *Position) {
		seen[e] = true
	})

	if seen[withHealth] {
		t.Fatal("entity with health should have been excluded")
	}
	if !seen[withoutHealth] {
		t.Fatal("entity without health should have matched")
	}
}

func TestQueryRandomAccessOps(t *testing.T) {
	w := NewWorld()
	position := RegisterComponent[Position](w)
	velocity := RegisterComponent[Velocity](w)

	q := NewQuery2(w, position, velocity)
	if !q.IsEmpty() {
		t.Fatal("expected a fresh query to be empty")
	}

	e, err := Spawn2(w, position, Position{X: 3}, velocity, Velocity{X: 1})
	if err != nil {
		t.Fatalf("Spawn2: %v", err)
	}
	other, err := Spawn1(w, position, Position{X: 9})
	if err != nil {
		t.Fatalf("Spawn1: %v", err)
	}

	if q.IsEmpty() {
		t.Fatal("expected query to observe the newly created archetype")
	}
	if q.Len() != 1 {
		t.Fatalf("expected 1 match, got %d", q.Len())
	}
	if !q.Contains(e) {
		t.Fatal("expected query to contain e")
	}
	if q.Contains(other) {
		t.Fatal("did not expect query to contain an entity missing velocity")
	}

	pos, vel, err := q.Get(e)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if pos.X != 3 || vel.X != 1 {
		t.Fatalf("unexpected Get result: %+v %+v", pos, vel)
	}

	if _, _, err := q.Get(other); err == nil {
		t.Fatal("expected NoMatchArchetypeError for an entity outside the query")
	} else if _, ok := err.(NoMatchArchetypeError); !ok {
		t.Fatalf("expected NoMatchArchetypeError, got %T", err)
	}
}

func TestQueryChangedFilter(t *testing.T) {
	w := NewWorld()
	position := RegisterComponent[Position](w, WithTicks())

	e, err := Spawn1(w, position, Position{X: 1})
	if err != nil {
		t.Fatalf("Spawn1: %v", err)
	}

	baseline := w.Now()
	w.clock.Advance()

	matched := false
	NewQuery1(w, position, Changed(position, baseline)).Each(func(got Entity, p *Position) {
		if got == e {
			matched = true
		}
	})
	if matched {
		t.Fatal("expected no changes yet")
	}

	arch, row, err := w.locate(e)
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	*position.Mut(e, row, arch.Table(), w.clock.Advance()) = Position{X: 2}

	matched = false
	NewQuery1(w, position, Changed(position, baseline)).Each(func(got Entity, p *Position) {
		if got == e {
			matched = true
		}
	})
	if !matched {
		t.Fatal("expected the mutated entity to match Changed")
	}
}
