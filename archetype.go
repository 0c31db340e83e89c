package archway

import (
	"sort"

	"github.com/TheBitDrifter/mask"
	"github.com/TheBitDrifter/table"
)

// archetypeID is the archetype's slot in the world's archetype vector —
// stable for the world's lifetime, used as a dense array index throughout
// query/alter/scheduler bookkeeping.
type archetypeID uint32

// componentHash mixes a ComponentIndex into a 64-bit value stable for the
// world's lifetime. XORing these together gives the archetype's signature
// id (§3's invariant: id(ar) == XOR over c of hash(c)).
func componentHash(idx ComponentIndex) uint64 {
	x := uint64(idx) + 1
	x ^= x >> 33
	x *= 0xff51afd7ed558ccd
	x ^= x >> 33
	x *= 0xc4ceb9fe1a85ec53
	x ^= x >> 33
	return x
}

// Archetype is a set of columns sharing a component signature: it owns the
// entities that have exactly that set (§4.2). Row storage is delegated to
// table.Table; pending removals and the signature id live here
// (ArchetypeInit listeners live in storage.go's archetypeRegistry).
type Archetype struct {
	index      archetypeID
	signature  uint64
	components []ComponentIndex // sorted
	sig        mask.Mask
	table      table.Table
	entities   []Entity         // append-only; NullEntity marks a pending-destroy row
	removes    []pendingRemoval // rows pending compaction, in the order marked
}

// pendingRemoval pairs a row marked for compaction with the entity that
// sat there at the moment it was marked. Archetype.entities[row] is
// nulled out the instant the row is marked (so iteration skips it
// immediately), so Settle/compact cannot recover the owning entity by
// reading entities[row] later — it must be captured here, up front.
type pendingRemoval struct {
	row    int
	entity Entity
}

// ID returns the archetype's stable signature hash (§3).
func (a *Archetype) ID() uint64 { return a.signature }

// Table exposes the underlying physical row storage.
func (a *Archetype) Table() table.Table { return a.table }

// Components returns the archetype's sorted component set.
func (a *Archetype) Components() []ComponentIndex {
	return append([]ComponentIndex(nil), a.components...)
}

// Has reports whether the archetype's signature contains c.
func (a *Archetype) Has(c ComponentIndex) bool {
	var bit mask.Mask
	bit.Mark(c)
	return a.sig.ContainsAll(bit)
}

// Len returns the current entity count, including rows pending compaction.
func (a *Archetype) Len() int {
	return len(a.entities)
}

func newArchetype(schema table.Schema, entryIndex table.EntryIndex, index archetypeID, components []ComponentIndex, elements []Component) (*Archetype, error) {
	sorted := append([]ComponentIndex(nil), components...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var sig mask.Mask
	var signature uint64
	for _, c := range sorted {
		sig.Mark(c)
		signature ^= componentHash(c)
	}

	elementTypes := make([]table.ElementType, len(elements))
	for i, e := range elements {
		elementTypes[i] = e
	}
	tbl, err := table.NewTableBuilder().
		WithSchema(schema).
		WithEntryIndex(entryIndex).
		WithElementTypes(elementTypes...).
		WithEvents(Config.tableEvents).
		Build()
	if err != nil {
		return nil, err
	}

	return &Archetype{
		index:      index,
		signature:  signature,
		components: sorted,
		sig:        sig,
		table:      tbl,
	}, nil
}

// alloc appends a new row, returning its position. The caller writes to
// columns and then records the entity at that row (§4.2).
func (a *Archetype) alloc(e Entity) int {
	row := len(a.entities)
	a.entities = append(a.entities, e)
	return row
}

// markDestroy records row for compaction at the next Settle, returning the
// entity that occupied it. Unlike a despawn waiting on Settle, a row an
// alter just migrated out of must stop being visible to queries
// immediately — its entity already lives at a new row in another
// archetype — so the row is nulled right here rather than left intact
// until compaction (§4.4/§5: a synchronous alter's source row is gone
// the moment Apply returns, even though its physical slot isn't
// reclaimed until Settle).
func (a *Archetype) markDestroy(row int) Entity {
	prev := a.entities[row]
	if prev.IsNull() {
		return NullEntity
	}
	a.removes = append(a.removes, pendingRemoval{row: row, entity: prev})
	a.entities[row] = NullEntity
	return prev
}
