package archway

import "github.com/TheBitDrifter/table"

// Spawn1 spawns an entity carrying a single component value — the
// compile-time-typed counterpart of AlterBuilder for the common "spawn
// with known components" case (§4.4/§9's Bundle pattern).
func Spawn1[A any](w *World, a TrackedComponent[A], valA A) (Entity, error) {
	return w.SpawnWith([]Component{a.Component},
		func(e Entity, row int, tbl table.Table, tick Tick) { a.Write(e, row, tbl, valA, tick) },
	)
}

// Spawn2 spawns an entity carrying two component values.
func Spawn2[A, B any](w *World, a TrackedComponent[A], valA A, b TrackedComponent[B], valB B) (Entity, error) {
	return w.SpawnWith([]Component{a.Component, b.Component},
		func(e Entity, row int, tbl table.Table, tick Tick) { a.Write(e, row, tbl, valA, tick) },
		func(e Entity, row int, tbl table.Table, tick Tick) { b.Write(e, row, tbl, valB, tick) },
	)
}

// Spawn3 spawns an entity carrying three component values.
func Spawn3[A, B, C any](w *World, a TrackedComponent[A], valA A, b TrackedComponent[B], valB B, c TrackedComponent[C], valC C) (Entity, error) {
	return w.SpawnWith([]Component{a.Component, b.Component, c.Component},
		func(e Entity, row int, tbl table.Table, tick Tick) { a.Write(e, row, tbl, valA, tick) },
		func(e Entity, row int, tbl table.Table, tick Tick) { b.Write(e, row, tbl, valB, tick) },
		func(e Entity, row int, tbl table.Table, tick Tick) { c.Write(e, row, tbl, valC, tick) },
	)
}

// Spawn4 spawns an entity carrying four component values.
func Spawn4[A, B, C, D any](w *World, a TrackedComponent[A], valA A, b TrackedComponent[B], valB B, c TrackedComponent[C], valC C, d TrackedComponent[D], valD D) (Entity, error) {
	return w.SpawnWith([]Component{a.Component, b.Component, c.Component, d.Component},
		func(e Entity, row int, tbl table.Table, tick Tick) { a.Write(e, row, tbl, valA, tick) },
		func(e Entity, row int, tbl table.Table, tick Tick) { b.Write(e, row, tbl, valB, tick) },
		func(e Entity, row int, tbl table.Table, tick Tick) { c.Write(e, row, tbl, valC, tick) },
		func(e Entity, row int, tbl table.Table, tick Tick) { d.Write(e, row, tbl, valD, tick) },
	)
}

// EditorOp is one runtime-typed component toggle: a bare ComponentIndex
// plus whether it's being added or removed. It's the shape Editor.Commit
// takes for callers that don't know component types statically — editor
// tooling, scripting bindings, anything building a bundle from data
// rather than Go generics (§4.5's "callers pass a slice of
// (ComponentIndex, add?:bool) instead of a static tuple").
type EditorOp struct {
	Index ComponentIndex
	Add   bool
}

// Editor batches several component toggles against one entity behind a
// single migration, rather than recomputing a destination archetype per
// call. Set/Unset are the compile-time-typed convenience layer built on
// AlterBuilder; AddIndex/RemoveIndex/Commit are the runtime-typed
// counterpart (§4.5) — they only need a bare ComponentIndex, falling
// back to the component's registered default (WithDefault) for any
// value an AddIndex caller can't supply statically.
type Editor struct {
	builder *AlterBuilder
}

// Edit begins a batched structural edit for e.
func (w *World) Edit(e Entity) *Editor {
	return &Editor{builder: w.Alter(e)}
}

// Set stages adding/overwriting c's value on the edited entity.
func Set[T any](ed *Editor, c TrackedComponent[T], value T) *Editor {
	AddComponent(ed.builder, c, value)
	return ed
}

// Unset stages removing c from the edited entity.
func Unset[T any](ed *Editor, c TrackedComponent[T]) *Editor {
	RemoveComponent(ed.builder, c)
	return ed
}

// AddIndex stages adding component idx by raw index, without requiring
// the caller to know its Go type. The value written is whatever
// WithDefault registered for idx (or the table's zero value if none
// was); callers that need a specific value should use Set instead.
func (ed *Editor) AddIndex(idx ComponentIndex) *Editor {
	ed.builder.add = append(ed.builder.add, idx)
	return ed
}

// RemoveIndex stages removing component idx by raw index.
func (ed *Editor) RemoveIndex(idx ComponentIndex) *Editor {
	ed.builder.remove = append(ed.builder.remove, idx)
	return ed
}

// Commit applies a batch of runtime-typed ops in one call — the entry
// point for a caller holding a []EditorOp rather than static types.
func (ed *Editor) Commit(ops []EditorOp) *Editor {
	for _, op := range ops {
		if op.Add {
			ed.AddIndex(op.Index)
		} else {
			ed.RemoveIndex(op.Index)
		}
	}
	return ed
}

// Apply runs the accumulated edit synchronously (see AlterBuilder.Apply).
func (ed *Editor) Apply() error {
	return ed.builder.Apply()
}
