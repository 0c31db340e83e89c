package archway

import (
	"fmt"
	"reflect"
	"sync/atomic"

	"github.com/TheBitDrifter/bark"
)

// System is one unit of scheduled work: a run function plus the
// component/resource relations it declares up front, which the execution
// graph (graph.go) uses to decide what may run concurrently with what
// (§4.9/§4.10). Declaring a relation you don't actually touch only costs
// you parallelism, never correctness; failing to declare one you do touch
// is a data race the scheduler cannot see — System.validate only
// catches the mistakes a signature can express (a duplicate declaration,
// or the same component or resource declared as both read and written),
// not missing ones.
type System struct {
	Name string
	Run  func(w *World) error

	reads     []ComponentIndex
	writes    []ComponentIndex
	readsRes  []reflect.Type
	writesRes []reflect.Type

	// lastRun is the tick at which this system began its most recent
	// execution, set by the execution graph the instant it starts the
	// system (§5/§8's "every system's last_run equals the tick at which
	// it executed").
	lastRun atomic.Uint32
}

// LastRun returns the tick this system began executing at, last time it
// ran. Zero if it has never run.
func (s *System) LastRun() Tick { return Tick(s.lastRun.Load()) }

func (s *System) setLastRun(t Tick) { s.lastRun.Store(uint32(t)) }

// SystemOption declares one piece of a System's read/write relation set.
type SystemOption func(*System)

// Reads declares read-only access to the given components.
func Reads(indices ...ComponentIndex) SystemOption {
	return func(s *System) { s.reads = append(s.reads, indices...) }
}

// Writes declares mutable access to the given components.
func Writes(indices ...ComponentIndex) SystemOption {
	return func(s *System) { s.writes = append(s.writes, indices...) }
}

// ReadsResource declares read-only access to T's singleton/MultiRes resource.
func ReadsResource[T any]() SystemOption {
	var zero T
	t := reflect.TypeOf(zero)
	return func(s *System) { s.readsRes = append(s.readsRes, t) }
}

// WritesResource declares mutable access to T's singleton/MultiRes resource.
func WritesResource[T any]() SystemOption {
	var zero T
	t := reflect.TypeOf(zero)
	return func(s *System) { s.writesRes = append(s.writesRes, t) }
}

// NewSystem builds a System and validates its declared relation set,
// panicking (with a traced error, matching the teacher's query.go
// processItems panic convention) on an internally inconsistent
// declaration — the same component or resource listed as both a
// standalone Reads and Writes entry, which only ever indicates a typo
// since Writes already implies read access.
func NewSystem(name string, run func(w *World) error, opts ...SystemOption) *System {
	s := &System{Name: name, Run: run}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.validate(); err != nil {
		panic(bark.AddTrace(err))
	}
	return s
}

func (s *System) validate() error {
	writeSet := make(map[ComponentIndex]bool, len(s.writes))
	for _, w := range s.writes {
		if writeSet[w] {
			return fmt.Errorf("archway: system %q declares Writes(%d) twice", s.Name, w)
		}
		writeSet[w] = true
	}
	readSet := make(map[ComponentIndex]bool, len(s.reads))
	for _, r := range s.reads {
		if readSet[r] {
			return fmt.Errorf("archway: system %q declares Reads(%d) twice", s.Name, r)
		}
		if writeSet[r] {
			return fmt.Errorf("archway: system %q declares component %d in both Reads and Writes", s.Name, r)
		}
		readSet[r] = true
	}
	resWrites := make(map[reflect.Type]bool, len(s.writesRes))
	for _, t := range s.writesRes {
		resWrites[t] = true
	}
	for _, t := range s.readsRes {
		if resWrites[t] {
			return fmt.Errorf("archway: system %q declares resource %v in both ReadsResource and WritesResource", s.Name, t)
		}
	}
	return nil
}

// conflictsWith reports whether s and o must not run concurrently: either
// one writes a component/resource the other reads or writes.
func (s *System) conflictsWith(o *System) bool {
	for _, w := range s.writes {
		for _, r := range o.reads {
			if w == r {
				return true
			}
		}
		for _, r := range o.writes {
			if w == r {
				return true
			}
		}
	}
	for _, w := range o.writes {
		for _, r := range s.reads {
			if w == r {
				return true
			}
		}
	}
	for _, w := range s.writesRes {
		for _, r := range o.readsRes {
			if w == r {
				return true
			}
		}
		for _, r := range o.writesRes {
			if w == r {
				return true
			}
		}
	}
	for _, w := range o.writesRes {
		for _, r := range s.readsRes {
			if w == r {
				return true
			}
		}
	}
	return false
}
