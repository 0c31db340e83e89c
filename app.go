package archway

// App bundles a World and its Schedule — the top-level object most
// programs construct once at startup, mirroring the way the teacher's
// Factory ties a Storage/Query/Cursor triple together for a caller.
type App struct {
	World    *World
	Schedule *Schedule
}

// NewApp constructs an empty App ready for component registration and
// system wiring.
func NewApp() *App {
	w := NewWorld()
	return &App{World: w, Schedule: NewSchedule(w)}
}

// AddSystem registers sys to run during stage and returns the App for
// chaining.
func (a *App) AddSystem(stage Stage, sys *System) *App {
	a.Schedule.AddSystem(stage, sys)
	return a
}

// Run executes one full tick of the App's schedule.
func (a *App) Run() error {
	return a.Schedule.Run()
}
