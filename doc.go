/*
Package archway is an archetype-based Entity-Component-System runtime for
games and simulations.

Archway keeps entities with the same component set packed together in a
single table.Table per archetype for cache-friendly iteration, tracks
per-row modification ticks so queries can filter to only what changed
since they last ran, and schedules systems across goroutines by deriving
a dependency graph from each system's declared component and resource
relations — two systems that don't touch the same data run concurrently
automatically; two that do are ordered for you.

Basic usage:

	app := archway.NewApp()
	position := archway.RegisterComponent[Position](app.World, archway.WithTicks())
	velocity := archway.RegisterComponent[Velocity](app.World)

	entity, _ := archway.Spawn2(app.World, position, Position{}, velocity, Velocity{X: 1})

	move := archway.NewSystem("move", func(w *archway.World) error {
		archway.NewQuery2(w, position, velocity).Each(func(e archway.Entity, pos *Position, vel *Velocity) {
			pos.X += vel.X
			pos.Y += vel.Y
		})
		return nil
	}, archway.Writes(position.Index()), archway.Reads(velocity.Index()))

	app.AddSystem(archway.Update, move)
	_ = app.Run()

Archway is the ECS layer of a small simulation toolkit, built to also work
as a standalone library.
*/
package archway
