package archway

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// graphNode is one system placed in an execution graph, plus the indices
// of the nodes it must wait for.
type graphNode struct {
	sys  *System
	deps []int
}

// ExecutionGraph is the dependency DAG of §4.10: an edge runs from system
// A to system B whenever their declared relations conflict, so the
// scheduler never lets two conflicting systems run concurrently while
// letting every independent pair fan out across goroutines. Edges are
// derived once, at Build time, from the registration order — the same
// "declare once, resolve automatically" shape the teacher's query.go
// processItems panics on bad declarations rather than silently allowing
// one.
type ExecutionGraph struct {
	id    string
	nodes []*graphNode
}

// BuildGraph derives the execution graph for systems, in the order given.
// A pair that conflicts (System.conflictsWith) gets an edge from the
// earlier-declared system to the later one.
func BuildGraph(systems []*System) *ExecutionGraph {
	nodes := make([]*graphNode, len(systems))
	for i, s := range systems {
		nodes[i] = &graphNode{sys: s}
	}
	for j := 1; j < len(systems); j++ {
		for i := 0; i < j; i++ {
			if systems[i].conflictsWith(systems[j]) {
				nodes[j].deps = append(nodes[j].deps, i)
			}
		}
	}
	return &ExecutionGraph{id: uuid.NewString(), nodes: nodes}
}

// Run executes every system, respecting the graph's edges, fanning
// independent systems out across goroutines via errgroup. A panicking
// system is recovered, turned into an error, and aborts the run — every
// other in-flight system still completes or observes context
// cancellation, but no new dependents are launched once a failure has
// occurred (§5's "a panicking system aborts the schedule step").
func (g *ExecutionGraph) Run(w *World) error {
	n := len(g.nodes)
	if n == 0 {
		return nil
	}
	done := make([]chan struct{}, n)
	for i := range done {
		done[i] = make(chan struct{})
	}

	eg, ctx := errgroup.WithContext(context.Background())
	if Config.MaxParallelSystems > 0 {
		eg.SetLimit(Config.MaxParallelSystems)
	}
	for i := 0; i < n; i++ {
		i := i
		eg.Go(func() error {
			return g.runNode(ctx, w, i, done)
		})
	}
	return eg.Wait()
}

func (g *ExecutionGraph) runNode(ctx context.Context, w *World, i int, done []chan struct{}) (err error) {
	node := g.nodes[i]
	for _, dep := range node.deps {
		select {
		case <-done[dep]:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if cerr := ctx.Err(); cerr != nil {
		return cerr
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("archway: system %q panicked: %v", node.sys.Name, r)
		}
		// done is closed only on success: dependents of a failed system
		// keep waiting until the group's context is cancelled.
		if err == nil {
			close(done[i])
		}
	}()
	// Change ticks are assigned the moment a system begins executing,
	// not once for the whole schedule step (§5) — advancing here, right
	// before Run, is what makes node.sys.LastRun() satisfy §8's
	// invariant. The tick is recorded only in LastRun(); World.Now()
	// read from inside a running system can already be later, if a
	// concurrently running system started after it.
	tick := w.clock.Advance()
	node.sys.setLastRun(tick)
	w.logger.Debug().Str("system", node.sys.Name).Str("graph", g.id).Msg("system start")
	return node.sys.Run(w)
}

// ExportDOT renders the graph as Graphviz DOT, one node per system and one
// edge per dependency — a debugging aid modeled on the original
// implementation's dedicated dot-export module, useful for visually
// confirming two systems that look independent really are.
func (g *ExecutionGraph) ExportDOT() string {
	var b strings.Builder
	fmt.Fprintf(&b, "digraph %q {\n", g.id)
	for i, n := range g.nodes {
		fmt.Fprintf(&b, "  n%d [label=%q];\n", i, n.sys.Name)
	}
	for j, n := range g.nodes {
		for _, i := range n.deps {
			fmt.Fprintf(&b, "  n%d -> n%d;\n", i, j)
		}
	}
	b.WriteString("}\n")
	return b.String()
}
