package archway

import (
	"sync"

	"github.com/TheBitDrifter/table"
)

// tickColumn is the per-row modification stamp side-table for one
// tick-tracked component (§4.1's Column contract). table.Accessor already
// gives us row-indexed, table-relocation-safe component data; the one
// piece it doesn't provide is the tick stamp, so it is kept here keyed by
// Entity — stable for the entity's lifetime regardless of how the
// underlying table physically reorders rows during a transfer or
// compaction.
type tickColumn struct {
	mu      sync.RWMutex
	added   map[Entity]Tick
	changed map[Entity]Tick
}

func newTickColumn() *tickColumn {
	return &tickColumn{
		added:   make(map[Entity]Tick),
		changed: make(map[Entity]Tick),
	}
}

func (tc *tickColumn) markAdded(e Entity, tick Tick) {
	tc.mu.Lock()
	tc.added[e] = tick
	tc.changed[e] = tick
	tc.mu.Unlock()
}

// markChanged only raises the stamp — ticks never decrease (§3 invariant).
func (tc *tickColumn) markChanged(e Entity, tick Tick) {
	tc.mu.Lock()
	if cur, ok := tc.changed[e]; !ok || tick > cur {
		tc.changed[e] = tick
	}
	tc.mu.Unlock()
}

func (tc *tickColumn) addedTick(e Entity) Tick {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.added[e]
}

func (tc *tickColumn) changedTick(e Entity) Tick {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.changed[e]
}

func (tc *tickColumn) forget(e Entity) {
	tc.mu.Lock()
	delete(tc.added, e)
	delete(tc.changed, e)
	tc.mu.Unlock()
}

// TrackedComponent is the Column of §4.1: a typed, row-indexed accessor
// into every archetype's blob for one component type, plus an optional
// tick side-table. It generalizes the teacher's AccessibleComponent[T],
// keeping its accessor-over-table.Table shape and adding the tracking the
// teacher never needed.
type TrackedComponent[T any] struct {
	Component
	accessor table.Accessor[T]
	index    ComponentIndex
	ticks    *tickColumn // nil unless registered with WithTicks()
	events   *eventLog
}

// Index returns the component's dense ComponentIndex.
func (c TrackedComponent[T]) Index() ComponentIndex { return c.index }

// Tracked reports whether this column keeps per-row tick stamps.
func (c TrackedComponent[T]) Tracked() bool { return c.ticks != nil }

// Check reports whether the component is initialized (participates) in
// tbl's archetype.
func (c TrackedComponent[T]) Check(tbl table.Table) bool {
	return c.accessor.Check(tbl)
}

// Read returns the component value at row in tbl without stamping
// anything — callers must ensure no concurrent mutable access (§4.1).
func (c TrackedComponent[T]) Read(row int, tbl table.Table) *T {
	return c.accessor.Get(row, tbl)
}

// Write stores value at row in tbl and stamps both added/changed ticks,
// used when an entity is newly placed into the archetype (a spawn or the
// destination side of an alter).
func (c TrackedComponent[T]) Write(e Entity, row int, tbl table.Table, value T, tick Tick) {
	ptr := c.accessor.Get(row, tbl)
	*ptr = value
	if c.ticks != nil {
		c.ticks.markAdded(e, tick)
	}
	if c.events != nil {
		c.events.push(eventComponentAdded, e, c.index, tick)
	}
}

// Mut returns a pointer for in-place mutation and stamps the changed tick
// (bumped, never lowered). This is the Mut<T> fetch of §4.3/§9.
func (c TrackedComponent[T]) Mut(e Entity, row int, tbl table.Table, tick Tick) *T {
	if c.ticks != nil {
		c.ticks.markChanged(e, tick)
	}
	if c.events != nil {
		c.events.push(eventComponentChanged, e, c.index, tick)
	}
	return c.accessor.Get(row, tbl)
}

// BypassChangeDetection returns the inner reference without stamping
// anything, per §4.3.
func (c TrackedComponent[T]) BypassChangeDetection(row int, tbl table.Table) *T {
	return c.accessor.Get(row, tbl)
}

// ChangedTick returns e's last-modified tick, or zero if the column isn't
// tick-tracked (§4.1's get_tick default).
func (c TrackedComponent[T]) ChangedTick(e Entity) Tick {
	if c.ticks == nil {
		return 0
	}
	return c.ticks.changedTick(e)
}

// AddedTick returns e's insertion tick, or zero if untracked.
func (c TrackedComponent[T]) AddedTick(e Entity) Tick {
	if c.ticks == nil {
		return 0
	}
	return c.ticks.addedTick(e)
}

// IsChanged reports whether e's stamp is strictly newer than lastRun — the
// predicate behind Changed<T> filters and Ref<T>.is_changed() (§4.3).
func (c TrackedComponent[T]) IsChanged(e Entity, lastRun Tick) bool {
	return c.ChangedTick(e).After(lastRun)
}

// forget drops e's tick bookkeeping; called through MarkRemoved when an
// alter/editor removes the component from e. Despawn does not call it.
func (c TrackedComponent[T]) forget(e Entity) {
	if c.ticks != nil {
		c.ticks.forget(e)
	}
}

// MarkRemoved records that e lost this component — forgets its tick
// bookkeeping and pushes a ComponentRemoved event (§4.8). Called by
// alter/editor once a row has been migrated to an archetype lacking T.
func (c TrackedComponent[T]) MarkRemoved(e Entity, tick Tick) {
	c.forget(e)
	if c.events != nil {
		c.events.push(eventComponentRemoved, e, c.index, tick)
	}
}

// GetFromCursor retrieves the component value for the entity the cursor
// currently points at.
func (c TrackedComponent[T]) GetFromCursor(cursor *Cursor) *T {
	return c.Read(cursor.entityIndex-1, cursor.currentArchetype.table)
}

// GetFromEntity retrieves the component value for a resolved entity.
func (c TrackedComponent[T]) GetFromEntity(w *World, e Entity) (*T, error) {
	arch, row, err := w.locate(e)
	if err != nil {
		return nil, err
	}
	if !c.Check(arch.table) {
		return nil, MissingComponentError{Entity: e, Component: c.index}
	}
	return c.Read(row, arch.table), nil
}
