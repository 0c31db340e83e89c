package archway

import (
	"reflect"
	"sync"

	"github.com/TheBitDrifter/table"
)

// componentCopy copies one entity's value for a component from a source
// row to a destination row — the shape alter.go needs to preserve values
// across an archetype migration without assuming anything about how
// table.Table itself might transfer rows.
type componentCopy func(e Entity, srcRow int, srcTbl table.Table, destRow int, destTbl table.Table, tick Tick)

// componentWriter writes one entity's value into a row — the shape both
// an alter/editor bundle's explicit value and a component's registered
// default (WithDefault) are supplied to migrate() as.
type componentWriter func(e Entity, row int, tbl table.Table, tick Tick)

// Component represents a data attribute attached to entities. It is the
// identity token component registration and queries key on, generalized
// from the teacher's flat add/remove-only Component into one carrying
// tick-tracking and default-value metadata (§4.1's ComponentInfo).
type Component interface {
	table.ElementType
}

// ComponentIndex is the dense, world-stable identifier assigned to a
// component type on first registration — the same bit position
// table.Schema.RowIndexFor already hands out, reused directly as the
// archetype-signature bit and the relation-test bit (§4.9).
type ComponentIndex = uint32

// ComponentFlags gates optional per-component behavior.
type ComponentFlags struct {
	// Tick requests per-row modification stamps, needed to serve Changed
	// filters and Ref/Ticker fetches. Pure tag components can leave this
	// false to skip the tick map entirely.
	Tick bool
}

// ComponentInfo is the registry's record for one component type (§3).
type ComponentInfo struct {
	Index ComponentIndex
	Type  reflect.Type
	Name  string
	Flags ComponentFlags
	// Element is the table.ElementType identity token handed out by
	// table.FactoryNewElementType at registration time — kept so alter/
	// editor can rebuild a destination archetype's element list for
	// components it isn't itself introducing a new value for.
	Element Component

	// defaultValue holds whatever WithDefault(value) was called with,
	// type-erased until RegisterComponent[T] resolves it back to T and
	// builds defaultWrite below — Component/table.ElementType is purely
	// an identity token and can't carry a typed payload itself.
	defaultValue any
	defaultWrite componentWriter
	copy         componentCopy
	markRemoved  func(e Entity, tick Tick)
}

// ComponentOption configures registration. See WithTicks and WithDefault.
type ComponentOption func(*ComponentInfo)

// WithTicks requests per-row change-detection stamps for this component.
func WithTicks() ComponentOption {
	return func(ci *ComponentInfo) { ci.Flags.Tick = true }
}

// WithDefault supplies the value migrate() writes into a destination
// column that is new, has no explicit bundle value, and wasn't present
// on the entity's source archetype (§4.4 step 3/4). T is inferred from
// value, so this stays sound even though ComponentInfo itself stores it
// type-erased as any — it is only ever read back as T, inside
// RegisterComponent[T], by the same generic instantiation that set it.
func WithDefault[T any](value T) ComponentOption {
	return func(ci *ComponentInfo) { ci.defaultValue = value }
}

// componentRegistry stores ComponentInfo by ComponentIndex. Type identity
// to ComponentIndex resolution itself is delegated to table.Schema (the
// teacher's storage.go already does this via RowIndexFor), so the registry
// only needs to extend that mapping with the metadata table.Schema doesn't
// carry: tick-tracking flags and default factories.
type componentRegistry struct {
	mu    sync.RWMutex
	infos map[ComponentIndex]*ComponentInfo
}

func newComponentRegistry() *componentRegistry {
	return &componentRegistry{infos: make(map[ComponentIndex]*ComponentInfo)}
}

func (r *componentRegistry) register(idx ComponentIndex, c Component, opts ...ComponentOption) *ComponentInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	if info, ok := r.infos[idx]; ok {
		for _, opt := range opts {
			opt(info)
		}
		return info
	}
	info := &ComponentInfo{
		Index:   idx,
		Type:    reflect.TypeOf(c),
		Name:    reflect.TypeOf(c).String(),
		Element: c,
	}
	for _, opt := range opts {
		opt(info)
	}
	r.infos[idx] = info
	return info
}

func (r *componentRegistry) info(idx ComponentIndex) (*ComponentInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.infos[idx]
	return info, ok
}

// elements resolves each index's registered identity token, in order —
// used to rebuild a destination archetype's element list during alter.
func (r *componentRegistry) elements(indices []ComponentIndex) []Component {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Component, len(indices))
	for i, idx := range indices {
		if info, ok := r.infos[idx]; ok {
			out[i] = info.Element
		}
	}
	return out
}
