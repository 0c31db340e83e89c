package archway

// rowFilter runs after the archetype-level relation test, row by row,
// for predicates the signature alone can't decide — Changed<T> being the
// only one (§4.3).
type rowFilter func(e Entity) bool

// QueryFilter is a composable restriction passed to NewQuery1..NewQuery4,
// built by the WithC, WithoutC, and Changed helpers below.
type QueryFilter struct {
	term relation
	rowf rowFilter
}

func mergeFilters(filters []QueryFilter) (relation, []rowFilter) {
	var terms []relation
	var rowfs []rowFilter
	for _, f := range filters {
		if f.term != nil {
			terms = append(terms, f.term)
		}
		if f.rowf != nil {
			rowfs = append(rowfs, f.rowf)
		}
	}
	if len(terms) == 0 {
		return always{}, rowfs
	}
	return And(terms...), rowfs
}

// WithC requires c's component to be present on matching archetypes.
func WithC[T any](c TrackedComponent[T]) QueryFilter {
	return QueryFilter{term: With(c.Index())}
}

// WithoutC requires c's component to be absent on matching archetypes.
func WithoutC[T any](c TrackedComponent[T]) QueryFilter {
	return QueryFilter{term: Without(c.Index())}
}

// Changed restricts iteration to rows whose c column changed after
// lastRun (§4.3/§9's Changed<T> filter). It also implies With(c), since a
// row can't have changed in a column it doesn't have.
func Changed[T any](c TrackedComponent[T], lastRun Tick) QueryFilter {
	return QueryFilter{
		term: With(c.Index()),
		rowf: func(e Entity) bool { return c.IsChanged(e, lastRun) },
	}
}

// passRowFilters rejects a row outright if its entity is the null
// sentinel left by a row pending compaction (an alter-migrated or staged
// despawn source row, §4.4) before running any caller-supplied filter —
// a row mid-removal never matches any query.
func passRowFilters(rowfs []rowFilter, e Entity) bool {
	if e.IsNull() {
		return false
	}
	for _, f := range rowfs {
		if !f(e) {
			return false
		}
	}
	return true
}

// queryState is the retained per-query archetype membership set behind
// Contains/Get/Len/IsEmpty (§4.3/§6): rather than re-walk every archetype
// in the world on each random-access call, it remembers which ones have
// already been tested against the query's relation term and folds in
// only the ones created since (align), giving O(1) membership once
// aligned instead of a linear rescan.
type queryState struct {
	world      *World
	term       relation
	rowfs      []rowFilter
	archetypes map[archetypeID]*Archetype
	seen       int
}

func newQueryState(w *World, term relation, rowfs []rowFilter) *queryState {
	qs := &queryState{world: w, term: term, rowfs: rowfs, archetypes: make(map[archetypeID]*Archetype)}
	qs.align()
	return qs
}

// align folds in every archetype created since the last call, so a
// query built before a new component combination appeared still matches
// it once aligned (§4.3's "queries align to newly created archetypes
// before execution").
func (qs *queryState) align() {
	fresh := qs.world.archetypes.since(qs.seen)
	for _, arch := range fresh {
		if qs.term.evaluate(arch) {
			qs.archetypes[arch.index] = arch
		}
	}
	qs.seen += len(fresh)
}

// locate resolves e to (archetype, row) within this query's matched set,
// or NoMatchArchetypeError if e is live but its archetype never matched
// the query's relation term (or its row fails a row filter like
// Changed<T>) — the error Query.Get reports (§4.3).
func (qs *queryState) locate(e Entity) (*Archetype, int, error) {
	qs.align()
	arch, row, err := qs.world.locate(e)
	if err != nil {
		return nil, 0, err
	}
	if _, ok := qs.archetypes[arch.index]; !ok {
		return nil, 0, NoMatchArchetypeError{Entity: e}
	}
	if !passRowFilters(qs.rowfs, e) {
		return nil, 0, NoMatchArchetypeError{Entity: e}
	}
	return arch, row, nil
}

// contains reports whether e currently matches the query.
func (qs *queryState) contains(e Entity) bool {
	_, _, err := qs.locate(e)
	return err == nil
}

// len counts every row across every matched archetype that passes the
// query's row filters, skipping rows pending compaction.
func (qs *queryState) len() int {
	qs.align()
	total := 0
	for _, arch := range qs.archetypes {
		for _, e := range arch.entities {
			if passRowFilters(qs.rowfs, e) {
				total++
			}
		}
	}
	return total
}

// isEmpty reports whether no row currently matches — cheaper than len()
// since it can stop at the first hit.
func (qs *queryState) isEmpty() bool {
	qs.align()
	for _, arch := range qs.archetypes {
		for _, e := range arch.entities {
			if passRowFilters(qs.rowfs, e) {
				return false
			}
		}
	}
	return true
}

// Query1 iterates every entity with component A (plus any extra filters),
// the one-component instance of §4.3's typed Query<...>.
type Query1[A any] struct {
	world *World
	a     TrackedComponent[A]
	term  relation
	rowfs []rowFilter
	state *queryState
}

// NewQuery1 builds a Query1 over component a, refined by filters.
func NewQuery1[A any](w *World, a TrackedComponent[A], filters ...QueryFilter) *Query1[A] {
	all := append([]QueryFilter{{term: With(a.Index())}}, filters...)
	term, rowfs := mergeFilters(all)
	return &Query1[A]{world: w, a: a, term: term, rowfs: rowfs, state: newQueryState(w, term, rowfs)}
}

// Each calls fn for every (Entity, *A) matching the query.
func (q *Query1[A]) Each(fn func(Entity, *A)) {
	cur := newCursor(q.term, q.world)
	for cur.Next() {
		e := cur.CurrentEntity()
		if !passRowFilters(q.rowfs, e) {
			continue
		}
		row := cur.EntityIndex() - 1
		fn(e, q.a.Read(row, cur.currentArchetype.Table()))
	}
}

// Contains reports whether e currently matches the query (§4.3's
// Query::contains).
func (q *Query1[A]) Contains(e Entity) bool { return q.state.contains(e) }

// Get fetches A for e, or NoMatchArchetypeError if e isn't currently
// matched by this query (§4.3's Query::get).
func (q *Query1[A]) Get(e Entity) (*A, error) {
	arch, row, err := q.state.locate(e)
	if err != nil {
		return nil, err
	}
	return q.a.Read(row, arch.Table()), nil
}

// Len returns how many entities currently match.
func (q *Query1[A]) Len() int { return q.state.len() }

// IsEmpty reports whether no entity currently matches.
func (q *Query1[A]) IsEmpty() bool { return q.state.isEmpty() }

// Count returns how many entities currently match (alias for Len).
func (q *Query1[A]) Count() int { return q.Len() }

// Query2 iterates entities with components A and B.
type Query2[A, B any] struct {
	world *World
	a     TrackedComponent[A]
	b     TrackedComponent[B]
	term  relation
	rowfs []rowFilter
	state *queryState
}

func NewQuery2[A, B any](w *World, a TrackedComponent[A], b TrackedComponent[B], filters ...QueryFilter) *Query2[A, B] {
	all := append([]QueryFilter{{term: With(a.Index(), b.Index())}}, filters...)
	term, rowfs := mergeFilters(all)
	return &Query2[A, B]{world: w, a: a, b: b, term: term, rowfs: rowfs, state: newQueryState(w, term, rowfs)}
}

func (q *Query2[A, B]) Each(fn func(Entity, *A, *B)) {
	cur := newCursor(q.term, q.world)
	for cur.Next() {
		e := cur.CurrentEntity()
		if !passRowFilters(q.rowfs, e) {
			continue
		}
		row := cur.EntityIndex() - 1
		tbl := cur.currentArchetype.Table()
		fn(e, q.a.Read(row, tbl), q.b.Read(row, tbl))
	}
}

func (q *Query2[A, B]) Contains(e Entity) bool { return q.state.contains(e) }

func (q *Query2[A, B]) Get(e Entity) (*A, *B, error) {
	arch, row, err := q.state.locate(e)
	if err != nil {
		return nil, nil, err
	}
	tbl := arch.Table()
	return q.a.Read(row, tbl), q.b.Read(row, tbl), nil
}

func (q *Query2[A, B]) Len() int { return q.state.len() }

func (q *Query2[A, B]) IsEmpty() bool { return q.state.isEmpty() }

func (q *Query2[A, B]) Count() int { return q.Len() }

// Query3 iterates entities with components A, B and C.
type Query3[A, B, C any] struct {
	world *World
	a     TrackedComponent[A]
	b     TrackedComponent[B]
	c     TrackedComponent[C]
	term  relation
	rowfs []rowFilter
	state *queryState
}

func NewQuery3[A, B, C any](w *World, a TrackedComponent[A], b TrackedComponent[B], c TrackedComponent[C], filters ...QueryFilter) *Query3[A, B, C] {
	all := append([]QueryFilter{{term: With(a.Index(), b.Index(), c.Index())}}, filters...)
	term, rowfs := mergeFilters(all)
	return &Query3[A, B, C]{world: w, a: a, b: b, c: c, term: term, rowfs: rowfs, state: newQueryState(w, term, rowfs)}
}

func (q *Query3[A, B, C]) Each(fn func(Entity, *A, *B, *C)) {
	cur := newCursor(q.term, q.world)
	for cur.Next() {
		e := cur.CurrentEntity()
		if !passRowFilters(q.rowfs, e) {
			continue
		}
		row := cur.EntityIndex() - 1
		tbl := cur.currentArchetype.Table()
		fn(e, q.a.Read(row, tbl), q.b.Read(row, tbl), q.c.Read(row, tbl))
	}
}

func (q *Query3[A, B, C]) Contains(e Entity) bool { return q.state.contains(e) }

func (q *Query3[A, B, C]) Get(e Entity) (*A, *B, *C, error) {
	arch, row, err := q.state.locate(e)
	if err != nil {
		return nil, nil, nil, err
	}
	tbl := arch.Table()
	return q.a.Read(row, tbl), q.b.Read(row, tbl), q.c.Read(row, tbl), nil
}

func (q *Query3[A, B, C]) Len() int { return q.state.len() }

func (q *Query3[A, B, C]) IsEmpty() bool { return q.state.isEmpty() }

func (q *Query3[A, B, C]) Count() int { return q.Len() }

// Query4 iterates entities with components A, B, C and D.
type Query4[A, B, C, D any] struct {
	world *World
	a     TrackedComponent[A]
	b     TrackedComponent[B]
	c     TrackedComponent[C]
	d     TrackedComponent[D]
	term  relation
	rowfs []rowFilter
	state *queryState
}

func NewQuery4[A, B, C, D any](w *World, a TrackedComponent[A], b TrackedComponent[B], c TrackedComponent[C], d TrackedComponent[D], filters ...QueryFilter) *Query4[A, B, C, D] {
	all := append([]QueryFilter{{term: With(a.Index(), b.Index(), c.Index(), d.Index())}}, filters...)
	term, rowfs := mergeFilters(all)
	return &Query4[A, B, C, D]{world: w, a: a, b: b, c: c, d: d, term: term, rowfs: rowfs, state: newQueryState(w, term, rowfs)}
}

func (q *Query4[A, B, C, D]) Each(fn func(Entity, *A, *B, *C, *D)) {
	cur := newCursor(q.term, q.world)
	for cur.Next() {
		e := cur.CurrentEntity()
		if !passRowFilters(q.rowfs, e) {
			continue
		}
		row := cur.EntityIndex() - 1
		tbl := cur.currentArchetype.Table()
		fn(e, q.a.Read(row, tbl), q.b.Read(row, tbl), q.c.Read(row, tbl), q.d.Read(row, tbl))
	}
}

func (q *Query4[A, B, C, D]) Contains(e Entity) bool { return q.state.contains(e) }

func (q *Query4[A, B, C, D]) Get(e Entity) (*A, *B, *C, *D, error) {
	arch, row, err := q.state.locate(e)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	tbl := arch.Table()
	return q.a.Read(row, tbl), q.b.Read(row, tbl), q.c.Read(row, tbl), q.d.Read(row, tbl), nil
}

func (q *Query4[A, B, C, D]) Len() int { return q.state.len() }

func (q *Query4[A, B, C, D]) IsEmpty() bool { return q.state.isEmpty() }

func (q *Query4[A, B, C, D]) Count() int { return q.Len() }
