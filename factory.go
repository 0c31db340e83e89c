package archway

// factory implements the factory pattern for archway's top-level types,
// the same shape as the teacher's package-level Factory for warehouse's
// Storage/Query/Cursor triple, retargeted at World/App/System.
type factory struct{}

// Factory is the global factory instance for constructing archway values.
var Factory factory

// NewWorld builds an empty World.
func (f factory) NewWorld() *World {
	return NewWorld()
}

// NewApp builds an App (World + Schedule).
func (f factory) NewApp() *App {
	return NewApp()
}

// NewSystem builds a validated System; see NewSystem's doc for the
// panics it can raise on a malformed relation declaration.
func (f factory) NewSystem(name string, run func(w *World) error, opts ...SystemOption) *System {
	return NewSystem(name, run, opts...)
}
