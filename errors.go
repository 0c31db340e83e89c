package archway

import "fmt"

// Error values returned from Query.Get, Editor operations, and
// World.GetComponent. None of these panic; they are ordinary caller-checked
// errors.

// NoSuchEntityError means the directory lookup failed: the entity was never
// allocated, or its slot has since been recycled (generation mismatch).
type NoSuchEntityError struct {
	Entity Entity
}

func (e NoSuchEntityError) Error() string {
	return fmt.Sprintf("archway: no such entity %v", e.Entity)
}

// NoMatchArchetypeError means the entity is live but its archetype is not
// one this query/alter has aligned itself to.
type NoMatchArchetypeError struct {
	Entity Entity
}

func (e NoMatchArchetypeError) Error() string {
	return fmt.Sprintf("archway: entity %v not in matched archetype set", e.Entity)
}

// NoMatchEntityError means the row once occupied by Entity is now occupied
// by Found — a stale reference raced with an alter or destroy.
type NoMatchEntityError struct {
	Entity, Found Entity
}

func (e NoMatchEntityError) Error() string {
	return fmt.Sprintf("archway: entity %v's row now holds %v", e.Entity, e.Found)
}

// MissingComponentError means the entity's archetype lacks the requested
// component.
type MissingComponentError struct {
	Entity    Entity
	Component ComponentIndex
}

func (e MissingComponentError) Error() string {
	return fmt.Sprintf("archway: entity %v has no component #%d", e.Entity, e.Component)
}

// NoSuchRowError means an alter/destroy targeted a row already marked for
// removal.
type NoSuchRowError struct {
	Row int
}

func (e NoSuchRowError) Error() string {
	return fmt.Sprintf("archway: row %d already marked for removal", e.Row)
}

// LockedStorageError reports a structural call attempted while the world
// is mid-run. Nothing in this package currently returns it: structural
// changes are applied or staged, never refused.
type LockedStorageError struct{}

func (e LockedStorageError) Error() string {
	return "archway: world is locked for the duration of the current run"
}

// ComponentExistsError/ComponentNotFoundError report a component that is
// already present or absent. SingleResMut returns ComponentNotFoundError
// when no resource of the requested type is stored; nothing currently
// returns ComponentExistsError, and Editor/Alter return neither.
type ComponentExistsError struct {
	Component ComponentIndex
}

func (e ComponentExistsError) Error() string {
	return fmt.Sprintf("archway: component #%d already present", e.Component)
}

type ComponentNotFoundError struct {
	Component ComponentIndex
}

func (e ComponentNotFoundError) Error() string {
	return fmt.Sprintf("archway: component #%d not present", e.Component)
}
