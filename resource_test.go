package archway

import "testing"

type GameClock struct {
	Frame int
}

func TestSingleResInsertAndRead(t *testing.T) {
	w := NewWorld()
	InsertResource(w, GameClock{Frame: 1})

	got, ok := SingleRes[GameClock](w)
	if !ok {
		t.Fatal("expected resource to be present")
	}
	if got.Frame != 1 {
		t.Fatalf("unexpected frame %d", got.Frame)
	}
}

func TestSingleResMutBumpsTick(t *testing.T) {
	w := NewWorld()
	InsertResource(w, GameClock{Frame: 0})
	baseline := w.Now()

	w.clock.Advance()
	if err := SingleResMut(w, func(c *GameClock) { c.Frame++ }); err != nil {
		t.Fatalf("SingleResMut: %v", err)
	}

	if !TickRes[GameClock](w, baseline) {
		t.Fatal("expected resource to report changed after mutation")
	}
	got, _ := SingleRes[GameClock](w)
	if got.Frame != 1 {
		t.Fatalf("unexpected frame after mutation: %d", got.Frame)
	}
}

func TestMultiResRegisterAndLookup(t *testing.T) {
	w := NewWorld()
	sprites := NewMultiRes[string](w, 4)

	idx, err := sprites.Register("hero", "hero.png")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	got, ok := sprites.GetIndex("hero")
	if !ok || got != idx {
		t.Fatalf("GetIndex mismatch: got %d ok=%v want %d", got, ok, idx)
	}
	if *sprites.GetItem(idx) != "hero.png" {
		t.Fatalf("unexpected item %q", *sprites.GetItem(idx))
	}

	for i := 0; i < 3; i++ {
		if _, err := sprites.Register(string(rune('a'+i)), "x"); err != nil {
			t.Fatalf("Register: %v", err)
		}
	}
	if _, err := sprites.Register("overflow", "y"); err == nil {
		t.Fatal("expected capacity error")
	}
}

type Counter struct {
	N int
}

func TestMultiResGetItemMutatesBackingStorage(t *testing.T) {
	w := NewWorld()
	counters := NewMultiRes[Counter](w, 2)

	idx, err := counters.Register("a", Counter{N: 1})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	counters.GetItem(idx).N++
	counters.GetItem(idx).N++

	if got := counters.GetItem(idx).N; got != 3 {
		t.Fatalf("expected mutation through GetItem to persist, got %d", got)
	}
}
