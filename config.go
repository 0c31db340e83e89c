package archway

import "github.com/TheBitDrifter/table"

// Config holds process-wide tuning knobs: the table event callbacks every
// archetype's table is built with (unchanged from the teacher), plus the
// scheduler defaults new Schedules pick up.
var Config config = config{
	MaxParallelSystems: 0, // 0 means unbounded, left to errgroup/GOMAXPROCS
}

type config struct {
	tableEvents table.TableEvents

	// MaxParallelSystems caps how many systems an ExecutionGraph will run
	// concurrently within one stage; 0 means no explicit cap.
	MaxParallelSystems int
}

// SetTableEvents configures the table event callbacks.
func (c *config) SetTableEvents(te table.TableEvents) {
	c.tableEvents = te
}

// SetMaxParallelSystems bounds per-stage system concurrency. A goroutine
// waiting on a dependency still occupies a slot, so a tight cap lowers
// parallelism further than the number alone suggests. It cannot stall a
// graph: systems are launched in declaration order and only wait on
// earlier ones, so the earliest unfinished system can always run.
func (c *config) SetMaxParallelSystems(n int) {
	c.MaxParallelSystems = n
}
