package archway

import (
	"sort"
	"sync"

	"github.com/TheBitDrifter/table"
)

// migrationKey identifies a cached source-to-destination archetype
// transition, so repeated identical alters (the overwhelmingly common
// case — the same system altering many entities the same way) skip
// recomputing the destination signature every time (§4.4's migration
// cache).
type migrationKey struct {
	source archetypeID
	add    uint64
	remove uint64
}

// AlterBuilder accumulates an add/remove component-set change for one
// entity and applies it the moment Apply is called, not at the next
// Settle: the entity's directory entry already points at its destination
// row by the time Apply returns, so a system that the execution graph
// orders after this one in the same stage (through a declared component
// conflict) sees the migration immediately (§4.4 step 4, §5). Settle only
// reclaims the now-stale source row.
type AlterBuilder struct {
	world   *World
	entity  Entity
	add     []ComponentIndex
	remove  []ComponentIndex
	writers map[ComponentIndex]componentWriter
}

// Alter begins a structural change for e.
func (w *World) Alter(e Entity) *AlterBuilder {
	return &AlterBuilder{world: w, entity: e, writers: make(map[ComponentIndex]componentWriter)}
}

// AddComponent queues c's registration (if new to e) and the value to
// write into e's destination row once Apply runs.
func AddComponent[T any](b *AlterBuilder, c TrackedComponent[T], value T) *AlterBuilder {
	idx := c.Index()
	b.add = append(b.add, idx)
	b.writers[idx] = func(e Entity, row int, tbl table.Table, tick Tick) {
		c.Write(e, row, tbl, value, tick)
	}
	return b
}

// RemoveComponent queues c's removal from e.
func RemoveComponent[T any](b *AlterBuilder, c TrackedComponent[T]) *AlterBuilder {
	b.remove = append(b.remove, c.Index())
	return b
}

// Apply runs the migration synchronously and returns once e's directory
// entry points at the destination row.
func (b *AlterBuilder) Apply() error {
	return b.world.migrate(b.entity, b.add, b.remove, b.writers)
}

// migrationCache memoizes source archetype -> destination ComponentIndex
// set for repeated identical alter shapes.
type migrationCache struct {
	mu    sync.RWMutex
	dests map[migrationKey][]ComponentIndex
}

func newMigrationCache() *migrationCache {
	return &migrationCache{dests: make(map[migrationKey][]ComponentIndex)}
}

func maskHash(indices []ComponentIndex) uint64 {
	var h uint64
	for _, idx := range indices {
		h ^= componentHash(idx)
	}
	return h
}

func (m *migrationCache) lookup(key migrationKey, compute func() []ComponentIndex) []ComponentIndex {
	m.mu.RLock()
	if dest, ok := m.dests[key]; ok {
		m.mu.RUnlock()
		return dest
	}
	m.mu.RUnlock()

	dest := compute()
	m.mu.Lock()
	m.dests[key] = dest
	m.mu.Unlock()
	return dest
}

func destinationComponents(source []ComponentIndex, add, remove []ComponentIndex) []ComponentIndex {
	removeSet := make(map[ComponentIndex]bool, len(remove))
	for _, c := range remove {
		removeSet[c] = true
	}
	seen := make(map[ComponentIndex]bool, len(source)+len(add))
	var out []ComponentIndex
	for _, c := range source {
		if removeSet[c] || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	for _, c := range add {
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// migrate moves e from its current archetype to the archetype implied by
// add/remove, synchronously: it allocates the destination row, copies
// every surviving column forward, runs any explicit writer, falls back
// to a component's registered default for a destination column that is
// new and neither copied nor written (§4.4 step 3/4), fires
// ComponentRemoved for everything in remove, and redirects the entity
// directory to the new row — all before returning. Rather than rely on
// table.Table's own TransferEntries (whose internal row-reindexing
// contract this module has no way to verify), it moves values column by
// column through each TrackedComponent's own accessor, the same path
// every other mutation already goes through, and only marks the old row
// for later compaction: freeing it is left to Settle, which runs once no
// system is executing concurrently.
func (w *World) migrate(e Entity, add, remove []ComponentIndex, writers map[ComponentIndex]componentWriter) error {
	srcArch, srcRow, err := w.locate(e)
	if err != nil {
		return err
	}

	key := migrationKey{source: srcArch.index, add: maskHash(add), remove: maskHash(remove)}
	dest := w.migrations.lookup(key, func() []ComponentIndex {
		return destinationComponents(srcArch.components, add, remove)
	})

	destArch, err := w.archetypeForIndices(dest)
	if err != nil {
		return err
	}

	entries, err := destArch.table.NewEntries(1)
	if err != nil {
		return err
	}
	destRow := destArch.alloc(e)
	destEntry := entries[0]

	tick := w.clock.Now()
	for _, idx := range destArch.components {
		if write, ok := writers[idx]; ok {
			write(e, destRow, destArch.table, tick)
			continue
		}
		info, _ := w.components.info(idx)
		if info == nil {
			continue
		}
		switch {
		case srcArch.Has(idx):
			if info.copy != nil {
				info.copy(e, srcRow, srcArch.table, destRow, destArch.table, tick)
			}
		case info.defaultWrite != nil:
			info.defaultWrite(e, destRow, destArch.table, tick)
		}
	}
	for _, idx := range remove {
		if info, ok := w.components.info(idx); ok && info.markRemoved != nil {
			info.markRemoved(e, tick)
		}
	}

	w.directory.setAddress(e, address{archetype: destArch.index, entry: destEntry})
	srcArch.markDestroy(srcRow)
	return nil
}
