package archway

import "github.com/TheBitDrifter/mask"

// relation is the archetype-level boolean test of §4.9: given a set of
// With/Without/And/Or terms over component indices, does this archetype's
// signature satisfy them? It is evaluated once per archetype per query
// alignment and again, unchanged, to decide whether a system may run
// concurrently with another over the same archetype (two systems
// conflict only if both relations can be satisfied by some common
// archetype and at least one holds a Write).
type relation interface {
	evaluate(arch *Archetype) bool
}

type relationOp int

const (
	relAnd relationOp = iota
	relOr
	relNot
)

type relationNode struct {
	op         relationOp
	components []ComponentIndex
	children   []relation
}

func (n *relationNode) mask() mask.Mask {
	var m mask.Mask
	for _, c := range n.components {
		m.Mark(c)
	}
	return m
}

func (n *relationNode) evaluate(arch *Archetype) bool {
	m := n.mask()
	switch n.op {
	case relAnd:
		if !arch.sig.ContainsAll(m) {
			return false
		}
		for _, child := range n.children {
			if !child.evaluate(arch) {
				return false
			}
		}
		return true
	case relOr:
		if !m.IsEmpty() && arch.sig.ContainsAny(m) {
			return true
		}
		for _, child := range n.children {
			if child.evaluate(arch) {
				return true
			}
		}
		return false
	case relNot:
		if len(n.children) == 0 {
			return arch.sig.ContainsNone(m)
		}
		if !n.mask().IsEmpty() && !arch.sig.ContainsNone(m) {
			return false
		}
		for _, child := range n.children {
			if child.evaluate(arch) {
				return false
			}
		}
		return true
	}
	return false
}

// With builds a relation requiring every listed component to be present.
func With(components ...ComponentIndex) relation {
	return &relationNode{op: relAnd, components: components}
}

// Without builds a relation requiring none of the listed components to
// be present.
func Without(components ...ComponentIndex) relation {
	return &relationNode{op: relNot, components: components}
}

// And combines relations conjunctively.
func And(terms ...relation) relation {
	return &relationNode{op: relAnd, children: terms}
}

// Or combines relations disjunctively.
func Or(terms ...relation) relation {
	return &relationNode{op: relOr, children: terms}
}

// always matches every archetype — used for queries with no filter terms.
type always struct{}

func (always) evaluate(*Archetype) bool { return true }
