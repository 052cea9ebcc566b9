package engine_test

import (
	"image"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clktmr/gameloop/clock"
	"github.com/clktmr/gameloop/debug"
	"github.com/clktmr/gameloop/drivers/display"
	"github.com/clktmr/gameloop/drivers/input"
	"github.com/clktmr/gameloop/engine"
	enginetesting "github.com/clktmr/gameloop/testing"
)

func TestMain(m *testing.M) { enginetesting.TestMain(m) }

type fixture struct {
	timer   *enginetesting.ManualTimer
	counter *enginetesting.StepCounter
	screen  *enginetesting.Screen
	display *display.Display
	input   *input.PubSub
}

func newFixture(step uint32) *fixture {
	f := &fixture{
		timer:   enginetesting.NewManualTimer(),
		counter: enginetesting.NewStepCounter(6000, 0, step),
		screen:  &enginetesting.Screen{},
		input:   input.NewPubSub(),
	}
	f.display = display.New(display.DefaultSize, f.screen)
	return f
}

func (f *fixture) new(t *testing.T, s engine.Settings) *engine.Engine {
	return engine.New(s,
		engine.WithDisplay(f.display),
		engine.WithInput(f.input),
		engine.WithTimer(f.timer),
		engine.WithCounter(f.counter),
		engine.WithLogger(enginetesting.Logger(t)),
	)
}

// start runs e in a new goroutine and waits until the frame timer is started.
// The returned channel is closed when Run returns.
func (f *fixture) start(t *testing.T, e *engine.Engine) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		e.Run()
	}()
	select {
	case <-f.timer.Started():
	case <-time.After(time.Second):
		t.Fatal("frame timer not started")
	}
	return done
}

func wait(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("loop didn't stop")
	}
}

func TestStopOnFirstFrame(t *testing.T) {
	f := newFixture(100)
	calls := 0
	e := f.new(t, engine.Settings{
		FPS: 60,
		Callback: func(r *engine.Running, c *display.Canvas, in input.State, ctx any) {
			calls++
			r.Stop()
		},
	})
	assert.Equal(t, engine.StateIdle, e.State())

	done := f.start(t, e)
	assert.True(t, f.display.Acquired())
	assert.Equal(t, 1, f.input.Subscribers())
	assert.Equal(t, float32(60), f.timer.Rate())

	require.True(t, f.timer.Tick())
	wait(t, done)

	assert.Equal(t, 1, calls)
	assert.EqualValues(t, 1, e.Frames())
	assert.Equal(t, 1, f.screen.Frames())
	assert.Equal(t, engine.StateStopped, e.State())
	assert.False(t, f.display.Acquired())
	assert.Zero(t, f.input.Subscribers())
	assert.False(t, f.timer.Running())

	e.Close()
	e.Close()
	_, stops := f.timer.Counts()
	assert.Equal(t, 1, stops)
	assert.False(t, f.timer.Tick())
}

func TestTicksCoalesce(t *testing.T) {
	f := newFixture(100)
	calls := 0
	e := f.new(t, engine.Settings{
		FPS: 60,
		Callback: func(r *engine.Running, c *display.Canvas, in input.State, ctx any) {
			calls++
			if calls == 1 {
				for range 5 {
					f.timer.Tick()
				}
				return
			}
			r.Stop()
		},
	})

	done := f.start(t, e)
	f.timer.Tick()
	wait(t, done)

	assert.Equal(t, 2, calls)
	assert.EqualValues(t, 2, e.Frames())
	assert.Equal(t, 2, f.screen.Frames())
}

func TestStopIdempotent(t *testing.T) {
	f := newFixture(100)
	calls := 0
	e := f.new(t, engine.Settings{
		FPS: 60,
		Callback: func(r *engine.Running, c *display.Canvas, in input.State, ctx any) {
			calls++
			r.Stop()
			r.Stop()
			r.Stop()
		},
	})

	done := f.start(t, e)
	e.Stop()
	f.timer.Tick()
	wait(t, done)

	assert.LessOrEqual(t, calls, 1)
	assert.Equal(t, engine.StateStopped, e.State())
	assert.False(t, f.display.Acquired())
	_, stops := f.timer.Counts()
	assert.Equal(t, 1, stops)
}

func TestStopBeforeRun(t *testing.T) {
	f := newFixture(100)
	e := f.new(t, engine.Settings{
		FPS: 60,
		Callback: func(*engine.Running, *display.Canvas, input.State, any) {
			t.Error("callback invoked")
		},
	})
	e.Stop()
	e.Stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		e.Run()
	}()
	wait(t, done)

	assert.Zero(t, e.Frames())
	assert.Zero(t, f.screen.Frames())
	assert.Equal(t, engine.StateStopped, e.State())
	assert.False(t, f.display.Acquired())
	assert.Zero(t, f.input.Subscribers())
	assert.False(t, f.timer.Running())
}

func TestUpdateBeforeStop(t *testing.T) {
	f := newFixture(100)
	calls := 0
	e := f.new(t, engine.Settings{
		FPS: 60,
		Callback: func(r *engine.Running, c *display.Canvas, in input.State, ctx any) {
			calls++
			if calls == 1 {
				// both flags are pending when the loop wakes up next
				f.timer.Tick()
				r.Stop()
			}
		},
	})

	done := f.start(t, e)
	f.timer.Tick()
	wait(t, done)

	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, f.screen.Frames())
}

func TestDeltaFrames(t *testing.T) {
	tests := []struct {
		name       string
		step       uint32
		fps        float32
		wantDelta  float32
		wantFrames float32
	}{
		{"on target", 100, 60, 1.0 / 60, 1.0},
		{"twice as fast", 50, 60, 1.0 / 60, 2.0},
		{"half as fast", 200, 60, 1.0 / 60, 0.5},
		{"low target", 200, 30, 1.0 / 30, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(tt.step)
			var deltaTime, deltaFrames float32
			e := f.new(t, engine.Settings{
				FPS: tt.fps,
				Callback: func(r *engine.Running, c *display.Canvas, in input.State, ctx any) {
					deltaTime, deltaFrames = r.DeltaTime(), r.DeltaFrames()
					r.Stop()
				},
			})
			done := f.start(t, e)
			f.timer.Tick()
			wait(t, done)

			assert.Equal(t, tt.wantDelta, deltaTime)
			assert.Equal(t, tt.wantFrames, deltaFrames)
		})
	}
}

func TestZeroElapsedKeepsFPS(t *testing.T) {
	f := newFixture(50)
	var measured []float32
	e := f.new(t, engine.Settings{
		FPS: 60,
		Callback: func(r *engine.Running, c *display.Canvas, in input.State, ctx any) {
			measured = append(measured, r.FPS())
			switch len(measured) {
			case 1:
				// freeze the counter at the value read by the last lap
				f.counter.SetStep(0)
				f.counter.Set(50)
				f.timer.Tick()
			case 2:
				r.Stop()
			}
		},
	})
	done := f.start(t, e)
	f.timer.Tick()
	wait(t, done)

	assert.Equal(t, []float32{120, 120}, measured)
}

func TestInput(t *testing.T) {
	f := newFixture(100)
	states := make(chan input.State, 4)
	calls := 0
	e := f.new(t, engine.Settings{
		FPS: 60,
		Callback: func(r *engine.Running, c *display.Canvas, in input.State, ctx any) {
			states <- in
			if calls++; calls == 3 {
				r.Stop()
			}
		},
	})
	done := f.start(t, e)

	f.input.Publish(input.Event{Key: input.RawUp, Type: input.Press})
	f.input.Publish(input.Event{Key: input.RawOk, Type: input.Press})
	f.timer.Tick()
	s := <-states
	assert.Equal(t, input.KeyUp|input.KeyOk, s.Held)
	assert.Equal(t, input.KeyUp|input.KeyOk, s.Pressed)
	assert.Zero(t, s.Released)

	f.input.Publish(input.Event{Key: input.RawOk, Type: input.Release})
	f.input.Publish(input.Event{Key: input.RawDown, Type: input.Press})
	f.input.Publish(input.Event{Key: input.RawDown, Type: input.Long})
	f.timer.Tick()
	s = <-states
	assert.Equal(t, input.KeyUp|input.KeyDown, s.Held)
	assert.Equal(t, input.KeyDown, s.Pressed)
	assert.Equal(t, input.KeyOk, s.Released)

	f.input.Publish(input.Event{Key: input.RawKey(200), Type: input.Press})
	f.timer.Tick()
	wait(t, done)
	s = <-states
	assert.Equal(t, input.KeyUp|input.KeyDown, s.Held)
	assert.Zero(t, s.Pressed)
	assert.Zero(t, s.Released)

	assert.Zero(t, f.input.Subscribers())
}

func countBlack(img image.Image) (n int) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if r, _, _, _ := img.At(x, y).RGBA(); r == 0 {
				n++
			}
		}
	}
	return
}

func TestShowFPS(t *testing.T) {
	for _, show := range []bool{false, true} {
		f := newFixture(100)
		e := f.new(t, engine.Settings{
			FPS:     60,
			ShowFPS: show,
			Callback: func(r *engine.Running, c *display.Canvas, in input.State, ctx any) {
				r.Stop()
			},
		})
		done := f.start(t, e)
		f.timer.Tick()
		wait(t, done)

		require.Equal(t, 1, f.screen.Frames())
		if show {
			assert.NotZero(t, countBlack(f.screen.Last()), "fps overlay missing")
		} else {
			assert.Zero(t, countBlack(f.screen.Last()))
		}
	}
}

func TestCanvasCleared(t *testing.T) {
	f := newFixture(100)
	var blank []bool
	e := f.new(t, engine.Settings{
		FPS: 60,
		Callback: func(r *engine.Running, c *display.Canvas, in input.State, ctx any) {
			blank = append(blank, countBlack(c.Image()) == 0)
			c.SetColor(display.ColorXOR)
			c.DrawBox(0, 0, 10, 10)
			if len(blank) == 3 {
				r.Stop()
				return
			}
			f.timer.Tick()
		},
	})
	done := f.start(t, e)
	f.timer.Tick()
	wait(t, done)

	assert.Equal(t, []bool{true, true, true}, blank)
	assert.Equal(t, 100, countBlack(f.screen.Last()))
}

func TestCallbackPanicReleases(t *testing.T) {
	f := newFixture(100)
	e := f.new(t, engine.Settings{
		FPS: 60,
		Callback: func(*engine.Running, *display.Canvas, input.State, any) {
			panic("boom")
		},
	})

	recovered := make(chan any, 1)
	go func() {
		defer func() { recovered <- recover() }()
		e.Run()
	}()
	<-f.timer.Started()
	f.timer.Tick()

	select {
	case r := <-recovered:
		assert.Equal(t, "boom", r)
	case <-time.After(time.Second):
		t.Fatal("loop didn't exit")
	}
	assert.Equal(t, engine.StateStopped, e.State())
	assert.False(t, f.display.Acquired())
	assert.Zero(t, f.input.Subscribers())
	assert.False(t, f.timer.Running())
}

func TestRunTwice(t *testing.T) {
	f := newFixture(100)
	e := f.new(t, engine.Settings{
		FPS:      60,
		Callback: func(r *engine.Running, _ *display.Canvas, _ input.State, _ any) { r.Stop() },
	})
	done := f.start(t, e)
	f.timer.Tick()
	wait(t, done)

	assert.PanicsWithError(t, "fatal: engine already ran", e.Run)
}

func TestContext(t *testing.T) {
	f := newFixture(100)
	type game struct{ frames int }
	g := &game{}
	e := f.new(t, engine.Settings{
		FPS:     60,
		Context: g,
		Callback: func(r *engine.Running, _ *display.Canvas, _ input.State, ctx any) {
			ctx.(*game).frames++
			r.Stop()
		},
	})
	done := f.start(t, e)
	f.timer.Tick()
	wait(t, done)
	assert.Equal(t, 1, g.frames)
}

func TestNewPreconditions(t *testing.T) {
	cb := func(*engine.Running, *display.Canvas, input.State, any) {}

	assert.PanicsWithError(t, "fatal: no callback", func() {
		engine.New(engine.Settings{FPS: 60})
	})

	for _, fps := range []float32{0, -1, 1e-12, 1e10, float32(math.Inf(1)), float32(math.NaN())} {
		func() {
			defer func() {
				err, ok := recover().(*debug.Fault)
				require.True(t, ok, "fps %v", fps)
				assert.ErrorIs(t, err, engine.ErrInvalidFPS)
			}()
			engine.New(engine.Settings{FPS: fps, Callback: cb})
		}()
	}

	for _, fps := range []float32{engine.MinFPS, engine.MaxFPS} {
		assert.NotPanics(t, func() { engine.New(engine.Settings{FPS: fps, Callback: cb}) })
		assert.Positive(t, clock.Period(fps), "fps %v", fps)
	}
}

func TestCloseIdle(t *testing.T) {
	f := newFixture(100)
	e := f.new(t, engine.Settings{FPS: 60, Callback: func(*engine.Running, *display.Canvas, input.State, any) {}})
	e.Close()
	e.Close()
	assert.Equal(t, engine.StateStopped, e.State())
	assert.False(t, f.display.Acquired())
}

func TestRunAfterClose(t *testing.T) {
	f := newFixture(100)
	e := f.new(t, engine.Settings{
		FPS: 60,
		Callback: func(*engine.Running, *display.Canvas, input.State, any) {
			t.Error("callback invoked")
		},
	})
	e.Close()

	assert.PanicsWithError(t, "fatal: engine already ran", e.Run)
	assert.Equal(t, engine.StateStopped, e.State())
	assert.False(t, f.display.Acquired())
	assert.Zero(t, f.input.Subscribers())
	starts, _ := f.timer.Counts()
	assert.Zero(t, starts)
}

func TestCloseWhileRunning(t *testing.T) {
	f := newFixture(100)
	e := f.new(t, engine.Settings{FPS: 60, Callback: func(*engine.Running, *display.Canvas, input.State, any) {}})
	done := f.start(t, e)
	e.Close()
	wait(t, done)
	e.Close()
	assert.False(t, f.display.Acquired())
	assert.Zero(t, f.input.Subscribers())
}

func TestDefaultCollaborators(t *testing.T) {
	frames := 0
	e := engine.New(engine.Settings{
		FPS: 500,
		Callback: func(r *engine.Running, c *display.Canvas, in input.State, ctx any) {
			frames++
			assert.Equal(t, image.Rect(0, 0, 128, 64), c.Bounds())
			if frames == 3 {
				r.Stop()
			}
		},
	})
	done := make(chan struct{})
	go func() {
		defer close(done)
		e.Run()
	}()
	wait(t, done)
	assert.Equal(t, 3, frames)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", engine.StateIdle.String())
	assert.Equal(t, "running", engine.StateRunning.String())
	assert.Equal(t, "stopped", engine.StateStopped.String())
	assert.Equal(t, "state(7)", engine.State(7).String())
}

func TestLoadSettings(t *testing.T) {
	s, err := engine.LoadSettings(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, engine.DefaultSettings(), s)

	s, err = engine.LoadSettings(strings.NewReader("fps: 30\nshow_fps: true\n"))
	require.NoError(t, err)
	assert.Equal(t, float32(30), s.FPS)
	assert.True(t, s.ShowFPS)

	for _, doc := range []string{"fps: 0\n", "fps: 1e10\n", "fps: 1e-12\n", "fps: .nan\n"} {
		_, err = engine.LoadSettings(strings.NewReader(doc))
		assert.ErrorIs(t, err, engine.ErrInvalidFPS, doc)
	}

	_, err = engine.LoadSettings(strings.NewReader("callback: x\n"))
	assert.Error(t, err)

	_, err = engine.LoadSettings(strings.NewReader("fps: [\n"))
	assert.Error(t, err)
}
