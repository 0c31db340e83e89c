package archway

import (
	"fmt"
	"sync"

	"github.com/TheBitDrifter/bark"
	"github.com/TheBitDrifter/table"
)

// World owns every archetype, entity, resource and event for one ECS
// instance. It generalizes the teacher's package-level storage (a single
// global schema plus a global entity slice shared by every caller) into a
// self-contained, independently constructible value — each World gets its
// own table.EntryIndex and entity directory rather than reaching for the
// package globals storage.go used.
type World struct {
	schema     table.Schema
	entryIndex table.EntryIndex

	archetypes *archetypeRegistry
	directory  *entityDirectory
	components *componentRegistry
	resources  *resourceStore
	events     *eventLog
	migrations *migrationCache
	clock      clock
	logger     Logger

	pendingMu       sync.Mutex
	pendingDespawns []Entity
}

// NewWorld constructs an empty World ready for component registration.
func NewWorld() *World {
	schema := table.Factory.NewSchema()
	entryIndex := table.Factory.NewEntryIndex()
	w := &World{
		schema:     schema,
		entryIndex: entryIndex,
		directory:  newEntityDirectory(),
		components: newComponentRegistry(),
		resources:  newResourceStore(),
		events:     newEventLog(),
		migrations: newMigrationCache(),
		logger:     noopLogger{},
	}
	w.archetypes = newArchetypeRegistry(schema, entryIndex)
	return w
}

// SetLogger installs a structured logger (see logging.go); nil restores
// the no-op default.
func (w *World) SetLogger(l Logger) {
	if l == nil {
		l = noopLogger{}
	}
	w.logger = l
}

// Now returns the world's current tick.
func (w *World) Now() Tick { return w.clock.Now() }

// RegisterComponent assigns T a dense ComponentIndex (delegated to
// table.Schema, exactly as the teacher's storage.go Register/RowIndexFor
// did) and returns a TrackedComponent column for reading and writing it.
func RegisterComponent[T any](w *World, opts ...ComponentOption) TrackedComponent[T] {
	iden := table.FactoryNewElementType[T]()
	w.schema.Register(iden)
	idx := w.schema.RowIndexFor(iden)
	w.components.register(idx, iden, opts...)

	info, _ := w.components.info(idx)
	var ticks *tickColumn
	if info.Flags.Tick {
		ticks = newTickColumn()
	}
	col := TrackedComponent[T]{
		Component: iden,
		accessor:  table.FactoryNewAccessor[T](iden),
		index:     idx,
		ticks:     ticks,
		events:    w.events,
	}
	// A plain value copy, not a Write: the component didn't just get
	// added, it moved, so no tick stamp or event should fire. Tick
	// stamps are keyed by Entity (see componentaccessible.go) and so
	// already survive the migration untouched.
	info.copy = func(e Entity, srcRow int, srcTbl table.Table, destRow int, destTbl table.Table, tick Tick) {
		*col.accessor.Get(destRow, destTbl) = *col.accessor.Get(srcRow, srcTbl)
	}
	info.markRemoved = func(e Entity, tick Tick) { col.MarkRemoved(e, tick) }
	if info.defaultValue != nil {
		if dv, ok := info.defaultValue.(T); ok {
			info.defaultWrite = func(e Entity, row int, tbl table.Table, tick Tick) {
				col.Write(e, row, tbl, dv, tick)
			}
		}
	}
	return col
}

// archetypeFor resolves the archetype owning exactly the given components,
// creating it if this is the first time this signature is needed.
func (w *World) archetypeFor(elements ...Component) (*Archetype, error) {
	indices := make([]ComponentIndex, len(elements))
	for i, e := range elements {
		w.schema.Register(e)
		indices[i] = w.schema.RowIndexFor(e)
	}
	return w.archetypes.getOrCreate(indices, elements)
}

// archetypeForIndices is archetypeFor's counterpart for callers (alter,
// editor) that already know the destination ComponentIndex set but need
// the registry to supply the table.ElementType identity tokens.
func (w *World) archetypeForIndices(indices []ComponentIndex) (*Archetype, error) {
	elements := w.components.elements(indices)
	return w.archetypes.getOrCreate(indices, elements)
}

// SpawnEmpty allocates an entity with no components, placed in the root
// archetype (§4.4's spawn_empty).
func (w *World) SpawnEmpty() (Entity, error) {
	arch, err := w.archetypeFor()
	if err != nil {
		return NullEntity, err
	}
	return w.place(arch)
}

// Spawn allocates an entity and writes each supplied component value into
// its archetype's columns, stamping the added/changed tick for any
// tick-tracked column among them.
func (w *World) Spawn(writers ...func(e Entity, row int, tbl table.Table, tick Tick)) (Entity, error) {
	return w.SpawnWith(nil, writers...)
}

// SpawnWith spawns an entity into the archetype made of elements (for
// schema/signature purposes) and then runs writers against its row — the
// pattern the typed helpers Spawn1..Spawn4 build on (§4.4/§9).
func (w *World) SpawnWith(elements []Component, writers ...func(e Entity, row int, tbl table.Table, tick Tick)) (Entity, error) {
	arch, err := w.archetypeFor(elements...)
	if err != nil {
		return NullEntity, err
	}
	e, err := w.place(arch)
	if err != nil {
		return NullEntity, err
	}
	row, tbl := w.rowOf(e)
	tick := w.clock.Now()
	for _, write := range writers {
		write(e, row, tbl, tick)
	}
	return e, nil
}

// place allocates a directory slot and a physical row in arch's table for
// a fresh entity, recording the mapping both ways.
func (w *World) place(arch *Archetype) (Entity, error) {
	e := w.directory.allocate()
	entries, err := arch.table.NewEntries(1)
	if err != nil {
		return NullEntity, err
	}
	row := arch.alloc(e)
	_ = row
	w.directory.setAddress(e, address{archetype: arch.index, entry: entries[0]})
	return e, nil
}

// rowOf resolves e's current live row and table, panicking via bark if
// the entity is not resolvable — callers must have just placed or located
// it successfully.
func (w *World) rowOf(e Entity) (int, table.Table) {
	slot, err := w.directory.resolve(e)
	if err != nil {
		panic(bark.AddTrace(err))
	}
	arch := w.archetypes.get(slot.addr.archetype)
	_, row := slot.addr.row()
	return row, arch.table
}

// locate resolves e to its current archetype and row, the shared helper
// behind TrackedComponent.GetFromEntity, Editor, and Alter.
func (w *World) locate(e Entity) (*Archetype, int, error) {
	slot, err := w.directory.resolve(e)
	if err != nil {
		return nil, 0, err
	}
	arch := w.archetypes.get(slot.addr.archetype)
	_, row := slot.addr.row()
	if row < 0 || row >= len(arch.entities) || arch.entities[row] != e {
		return nil, 0, NoMatchEntityError{Entity: e, Found: arch.entityAt(row)}
	}
	return arch, row, nil
}

// entityAt safely returns the entity at row, or NullEntity if out of range.
func (a *Archetype) entityAt(row int) Entity {
	if row < 0 || row >= len(a.entities) {
		return NullEntity
	}
	return a.entities[row]
}

// Despawn stages e for destruction: it remains readable by queries until
// Settle runs (normally at the end of a schedule step), matching §4.4's
// "destroy_entity only takes effect at the next safe point".
func (w *World) Despawn(e Entity) error {
	if _, _, err := w.locate(e); err != nil {
		return err
	}
	w.pendingMu.Lock()
	w.pendingDespawns = append(w.pendingDespawns, e)
	w.pendingMu.Unlock()
	return nil
}

// GetComponent fetches c's value for e, the World-centric equivalent of
// TrackedComponent.GetFromEntity.
func GetComponent[T any](w *World, c TrackedComponent[T], e Entity) (*T, error) {
	return c.GetFromEntity(w, e)
}

// Settle applies every staged despawn, then compacts every archetype
// holding rows pending removal — whether they were marked just now by a
// despawn, or earlier in the stage by a synchronous Alter/Editor
// migration (alter.go's migrate already redirected those entities'
// directory entries; their stale source rows are all that's left to
// reclaim). Settle must only run between schedule steps, never while a
// system is executing (§4.4/§6).
func (w *World) Settle() error {
	w.pendingMu.Lock()
	despawns := w.pendingDespawns
	w.pendingDespawns = nil
	w.pendingMu.Unlock()

	touched := make(map[archetypeID]*Archetype)
	for _, e := range despawns {
		slot, err := w.directory.resolve(e)
		if err != nil {
			continue // already gone
		}
		arch := w.archetypes.get(slot.addr.archetype)
		_, row := slot.addr.row()
		if row < 0 {
			continue
		}
		arch.markDestroy(row)
		touched[arch.index] = arch
	}
	for _, arch := range w.archetypes.list {
		if len(arch.removes) > 0 {
			touched[arch.index] = arch
		}
	}

	for _, arch := range touched {
		if err := w.compact(arch, arch.removes); err != nil {
			return err
		}
	}
	return nil
}

// compact deletes every row arch.removes marked, freeing the directory
// slot of any entity that was actually despawned (an entity a migration
// moved elsewhere already has its directory entry pointing at the
// destination archetype, so it's left alone here).
func (w *World) compact(arch *Archetype, removals []pendingRemoval) error {
	if len(removals) == 0 {
		return nil
	}
	ids := make([]int, 0, len(removals))
	gone := make(map[Entity]bool, len(removals))
	for _, r := range removals {
		if r.entity.IsNull() || gone[r.entity] {
			continue
		}
		gone[r.entity] = true
		entry, err := arch.table.Entry(r.row)
		if err != nil {
			return err
		}
		ids = append(ids, int(entry.ID()))
	}
	if len(ids) == 0 {
		arch.removes = nil
		return nil
	}
	if _, err := arch.table.DeleteEntries(ids...); err != nil {
		return err
	}

	for e := range gone {
		if slot, err := w.directory.resolve(e); err == nil && slot.addr.archetype == arch.index {
			w.components.forgetAll(e)
			w.directory.free(e)
		}
	}
	arch.removes = nil

	// table.Table's own compaction strategy after DeleteEntries (shift-down
	// or swap-from-tail) isn't observable from here, so the surviving
	// entities' new row order is read back from the table itself — one
	// Entry-per-row lookup resolved to its owning Entity via the
	// directory's byEntry reverse map — rather than assumed from the old
	// pre-deletion ordering.
	length := arch.table.Length()
	entities := make([]Entity, length)
	for row := 0; row < length; row++ {
		entry, err := arch.table.Entry(row)
		if err != nil {
			return err
		}
		e, ok := w.directory.entityForEntry(entry)
		if !ok {
			return fmt.Errorf("archway: archetype %d row %d has no owning entity after compaction", arch.index, row)
		}
		entities[row] = e
		w.directory.setAddress(e, address{archetype: arch.index, entry: entry})
	}
	arch.entities = entities
	return nil
}

// forgetAll is a placeholder hook invoked when an entity is fully removed
// from the world; it does nothing. A despawned entity's tick stamps stay
// in their tick columns: they are keyed by Entity, and the freed slot's
// next Entity carries a new generation, so those stamps are never read
// again. This is the lifecycle point component.go's registry metadata
// could hook into.
func (r *componentRegistry) forgetAll(e Entity) {}
