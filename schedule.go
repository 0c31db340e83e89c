package archway

// Stage names the point in a tick a system runs at (§5). Systems within a
// stage are free to run concurrently (subject to the execution graph);
// stages themselves always run in the fixed order below.
type Stage int

const (
	Startup Stage = iota
	PreUpdate
	Update
	PostUpdate
	Last
	stageCount
)

func (s Stage) String() string {
	switch s {
	case Startup:
		return "Startup"
	case PreUpdate:
		return "PreUpdate"
	case Update:
		return "Update"
	case PostUpdate:
		return "PostUpdate"
	case Last:
		return "Last"
	default:
		return "Unknown"
	}
}

// Schedule groups systems by stage and drives one tick of execution: each
// stage's graph runs to completion, the world settles staged despawns/
// alters, and only then does the next stage begin — compaction never
// runs concurrently with a system (§4.4/§6).
type Schedule struct {
	world    *World
	systems  [stageCount][]*System
	graphs   [stageCount]*ExecutionGraph
	dirty    [stageCount]bool
	startupRan bool
}

// NewSchedule builds an empty Schedule bound to w.
func NewSchedule(w *World) *Schedule {
	return &Schedule{world: w}
}

// AddSystem registers sys to run during stage. Graph rebuilding is
// deferred to the next Run/RunStartup call.
func (s *Schedule) AddSystem(stage Stage, sys *System) *Schedule {
	s.systems[stage] = append(s.systems[stage], sys)
	s.dirty[stage] = true
	return s
}

func (s *Schedule) graphFor(stage Stage) *ExecutionGraph {
	if s.dirty[stage] || s.graphs[stage] == nil {
		s.graphs[stage] = BuildGraph(s.systems[stage])
		s.dirty[stage] = false
	}
	return s.graphs[stage]
}

// RunStartup runs the Startup stage exactly once, the first time it (or
// Run) is called.
func (s *Schedule) RunStartup() error {
	if s.startupRan {
		return nil
	}
	s.startupRan = true
	if err := s.graphFor(Startup).Run(s.world); err != nil {
		return err
	}
	return s.world.Settle()
}

// Run executes one full tick: Startup (once), then PreUpdate, Update,
// PostUpdate and Last in order, settling staged structural changes
// between every stage. The clock itself advances per system, inside the
// execution graph (graph.go's runNode), not once here.
func (s *Schedule) Run() error {
	if err := s.RunStartup(); err != nil {
		return err
	}
	for _, stage := range []Stage{PreUpdate, Update, PostUpdate, Last} {
		if err := s.graphFor(stage).Run(s.world); err != nil {
			return err
		}
		if err := s.world.Settle(); err != nil {
			return err
		}
	}
	return nil
}
