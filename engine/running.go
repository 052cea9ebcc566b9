package engine

// Running is the handle passed to the frame callback. It's only valid during
// the callback invocation that received it.
type Running struct {
	engine *Engine
	fps    float32 // last measured
}

// DeltaTime returns the nominal frame duration in seconds, derived from the
// target frame rate.
func (r *Running) DeltaTime() float32 {
	return 1 / r.engine.settings.FPS
}

// DeltaFrames returns the measured frame rate relative to the target rate.
// It's 1 if the engine runs on target and 2 if it runs twice as fast.
func (r *Running) DeltaFrames() float32 {
	return r.fps / r.engine.settings.FPS
}

// FPS returns the measured instantaneous frame rate.
func (r *Running) FPS() float32 {
	return r.fps
}

// Stop requests the engine to stop, see Engine.Stop.
func (r *Running) Stop() {
	r.engine.Stop()
}
