package archway

import (
	"fmt"

	"github.com/TheBitDrifter/table"
)

// Entity identifies an object in the world: a dense slot index plus a
// generation counter bumped every time the slot is recycled. A generation
// of zero is reserved for the null entity (§3).
type Entity struct {
	index      uint32
	generation uint32
}

// NullEntity is the zero Entity; no real entity ever has generation zero.
var NullEntity = Entity{}

// IsNull reports whether e is the null entity.
func (e Entity) IsNull() bool {
	return e.generation == 0
}

func (e Entity) String() string {
	if e.IsNull() {
		return "Entity(null)"
	}
	return fmt.Sprintf("Entity(%d#%d)", e.index, e.generation)
}

// address locates a live entity's physical row. Both fields are only
// meaningful while the slot holds a live entity with a non-nil entry.
type address struct {
	archetype archetypeID
	entry     table.Entry // resolves current table/row live; see doc comment below
}

// entitySlot is one row of the world's slot-map (§3's "Entity directory").
type entitySlot struct {
	generation uint32
	addr       address
	live       bool
}

// entityDirectory is the slot-map from Entity to (archetype, row). Slot
// reuse happens at this logical layer; the physical table.Entry a slot
// points at is never reused — table.EntryIndex hands out a fresh, permanent
// entry for every physical row, the same way the teacher's
// globalEntryIndex does, so resolving a slot's current row is always a
// live call through its table.Entry rather than a cached integer that a
// concurrent compaction could invalidate.
type entityDirectory struct {
	slots []entitySlot
	free  []uint32

	// byEntry maps a table.Entry's world-unique ID back to the Entity
	// that holds it — the reverse of address.entry. table.Table's
	// internal row-compaction strategy (shift-down vs swap-from-tail)
	// isn't something this module can observe, so after any batch
	// deletion the only trustworthy way to learn which entity now sits
	// at a given physical row is to ask the table for that row's Entry
	// and look its ID up here (see World.compact), rather than assuming
	// the old relative ordering survived.
	byEntry map[table.EntryID]Entity
}

func newEntityDirectory() *entityDirectory {
	return &entityDirectory{byEntry: make(map[table.EntryID]Entity)}
}

// allocate reserves a slot with a null address (spawn_empty's first step).
func (d *entityDirectory) allocate() Entity {
	if n := len(d.free); n > 0 {
		idx := d.free[n-1]
		d.free = d.free[:n-1]
		d.slots[idx].live = true
		return Entity{index: idx, generation: d.slots[idx].generation}
	}
	idx := uint32(len(d.slots))
	d.slots = append(d.slots, entitySlot{generation: 1, live: true})
	return Entity{index: idx, generation: 1}
}

// resolve returns the slot for e, or NoSuchEntityError if the slot index is
// out of range or the generation no longer matches (the slot was freed and
// possibly reused).
func (d *entityDirectory) resolve(e Entity) (*entitySlot, error) {
	if e.IsNull() || int(e.index) >= len(d.slots) {
		return nil, NoSuchEntityError{Entity: e}
	}
	slot := &d.slots[e.index]
	if !slot.live || slot.generation != e.generation {
		return nil, NoSuchEntityError{Entity: e}
	}
	return slot, nil
}

// setAddress records where e now lives.
func (d *entityDirectory) setAddress(e Entity, addr address) {
	d.slots[e.index].addr = addr
	if addr.entry != nil {
		d.byEntry[addr.entry.ID()] = e
	}
}

// free releases e's slot, bumping its generation so stale Entity values
// become unresolvable, and returns it to the free list for reuse.
func (d *entityDirectory) free(e Entity) {
	slot := &d.slots[e.index]
	if slot.addr.entry != nil {
		delete(d.byEntry, slot.addr.entry.ID())
	}
	slot.live = false
	slot.generation++
	slot.addr = address{}
	d.free = append(d.free, e.index)
}

// entityForEntry resolves the Entity currently holding entry, by ID.
func (d *entityDirectory) entityForEntry(entry table.Entry) (Entity, bool) {
	e, ok := d.byEntry[entry.ID()]
	return e, ok
}

// row resolves the slot's current (archetype, row-in-table) live, via the
// table.Entry handle rather than a cached index.
func (a address) row() (archetypeID, int) {
	if a.entry == nil {
		return 0, -1
	}
	return a.archetype, a.entry.Index()
}
