package archway

import (
	"iter"

	"github.com/TheBitDrifter/table"
)

// Cursor iterates the rows of every archetype matching a relation test,
// the low-level traversal engine behind the typed Query1..Query4 fetchers
// of §4.3. It keeps the teacher's two-index (storageIndex/entityIndex)
// scheme from cursor.go, retargeted at *Archetype/*World instead of the
// old Storage/ArchetypeImpl pair, and drops the lock/unlock dance since
// structural mutation during iteration is now staged (see alter.go)
// rather than blocked.
type Cursor struct {
	relation relation
	world    *World

	currentArchetype *Archetype
	storageIndex     int
	entityIndex      int
	remaining        int

	initialized bool
	matched     []*Archetype
}

func newCursor(rel relation, w *World) *Cursor {
	return &Cursor{relation: rel, world: w}
}

// Next advances to the next matching row and reports whether one exists.
func (c *Cursor) Next() bool {
	if c.entityIndex < c.remaining {
		c.entityIndex++
		return true
	}
	return c.advance()
}

func (c *Cursor) advance() bool {
	if !c.initialized {
		c.Initialize()
	}
	for c.storageIndex < len(c.matched) {
		c.currentArchetype = c.matched[c.storageIndex]
		c.remaining = c.currentArchetype.Table().Length()
		if c.entityIndex < c.remaining {
			c.entityIndex++
			return true
		}
		c.storageIndex++
		c.entityIndex = 0
	}
	c.Reset()
	return false
}

// Entities yields (row, table) pairs for every matching row across every
// matching archetype, in archetype-creation order.
func (c *Cursor) Entities() iter.Seq2[int, table.Table] {
	return func(yield func(int, table.Table) bool) {
		c.Initialize()
		for c.storageIndex < len(c.matched) {
			c.currentArchetype = c.matched[c.storageIndex]
			c.remaining = c.currentArchetype.Table().Length()
			for c.entityIndex < c.remaining {
				if !yield(c.entityIndex, c.currentArchetype.Table()) {
					c.Reset()
					return
				}
				c.entityIndex++
			}
			c.entityIndex = 0
			c.storageIndex++
		}
		c.Reset()
	}
}

// Initialize resolves which archetypes currently match the relation test.
// Re-running a cursor after new archetypes were created picks them up,
// since it re-reads the world's archetype list from scratch (§4.3's
// "queries align to newly created archetypes before execution").
func (c *Cursor) Initialize() {
	if c.initialized {
		return
	}
	c.matched = c.matched[:0]
	for _, arch := range c.world.archetypes.list {
		if c.relation.evaluate(arch) {
			c.matched = append(c.matched, arch)
		}
	}
	if len(c.matched) > 0 {
		c.storageIndex = 0
		c.currentArchetype = c.matched[0]
		c.remaining = c.currentArchetype.Table().Length()
	}
	c.initialized = true
}

// Reset clears iteration state so the cursor can be reused.
func (c *Cursor) Reset() {
	c.storageIndex = 0
	c.entityIndex = 0
	c.remaining = 0
	c.matched = nil
	c.initialized = false
}

// CurrentEntity returns the entity at the cursor's current row.
func (c *Cursor) CurrentEntity() Entity {
	return c.currentArchetype.entities[c.entityIndex-1]
}

// EntityAtOffset returns the entity offset rows from the current one,
// within the same archetype only.
func (c *Cursor) EntityAtOffset(offset int) (Entity, error) {
	row := c.entityIndex - 1 + offset
	if row < 0 || row >= len(c.currentArchetype.entities) {
		return NullEntity, NoSuchRowError{Row: row}
	}
	return c.currentArchetype.entities[row], nil
}

// EntityIndex returns the 1-based row position within the current archetype.
func (c *Cursor) EntityIndex() int { return c.entityIndex }

// RemainingInArchetype reports how many rows are left in the current archetype.
func (c *Cursor) RemainingInArchetype() int { return c.remaining - c.entityIndex }

// TotalMatched counts every row across every matching archetype, skipping
// rows pending compaction (nulled out by markDestroy).
func (c *Cursor) TotalMatched() int {
	if !c.initialized {
		c.Initialize()
	}
	total := 0
	for _, arch := range c.matched {
		for _, e := range arch.entities {
			if !e.IsNull() {
				total++
			}
		}
	}
	c.Reset()
	return total
}
