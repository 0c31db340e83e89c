package archway_test

import (
	"fmt"

	"github.com/archway-ecs/archway"
)

type Position struct {
	X, Y float64
}

type Velocity struct {
	X, Y float64
}

func Example() {
	app := archway.NewApp()
	position := archway.RegisterComponent[Position](app.World)
	velocity := archway.RegisterComponent[Velocity](app.World)

	if _, err := archway.Spawn2(app.World, position, Position{}, velocity, Velocity{X: 1, Y: 2}); err != nil {
		panic(err)
	}

	move := archway.NewSystem("move", func(w *archway.World) error {
		archway.NewQuery2(w, position, velocity).Each(func(e archway.Entity, pos *Position, vel *Velocity) {
			pos.X += vel.X
			pos.Y += vel.Y
		})
		return nil
	}, archway.Writes(position.Index()), archway.Reads(velocity.Index()))

	app.AddSystem(archway.Update, move)
	if err := app.Run(); err != nil {
		panic(err)
	}

	var result Position
	archway.NewQuery1(app.World, position).Each(func(e archway.Entity, p *Position) {
		result = *p
	})
	fmt.Printf("%.0f %.0f\n", result.X, result.Y)
	// Output: 1 2
}
