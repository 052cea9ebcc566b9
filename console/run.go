// Package console runs games written against the Gamelooper interface on the
// engine.
package console

import (
	"github.com/clktmr/gameloop/drivers/display"
	"github.com/clktmr/gameloop/drivers/input"
	"github.com/clktmr/gameloop/engine"
)

// Gamelooper represents a game instance that can be updated and drawn.
type Gamelooper interface {
	// Update is called every frame to update game logic.
	// Return an error to exit the game loop, nil to continue.
	Update(r *engine.Running, in input.State) error

	// Draw is called every frame after Update to render the game.
	// The canvas is already cleared and ready for drawing.
	Draw(canvas *display.Canvas)
}

// Run runs g until Update returns an error, which is then returned. Only
// settings' frame rate and FPS overlay are used, the callback and context are
// provided by Run.
func Run(g Gamelooper, settings engine.Settings, opts ...engine.Option) error {
	var err error
	settings.Callback = func(r *engine.Running, canvas *display.Canvas, in input.State, _ any) {
		if err != nil {
			return
		}
		if err = g.Update(r, in); err != nil {
			r.Stop()
			return
		}
		g.Draw(canvas)
	}
	settings.Context = nil

	e := engine.New(settings, opts...)
	defer e.Close()
	e.Run()
	return err
}
