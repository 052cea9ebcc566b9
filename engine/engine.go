// Package engine implements a timer driven game loop.
//
// An Engine calls a user supplied callback at a fixed target rate. A timer
// only raises an update flag, frames are processed by the goroutine calling
// Run. Ticks arriving while a frame is processed are coalesced, so the loop is
// never more than one frame behind.
//
// Each frame the callback receives a cleared canvas, the key state derived
// from the input events since the previous frame and a Running handle, which
// reports timing and can stop the loop.
package engine

import (
	"math"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/clktmr/gameloop/clock"
	"github.com/clktmr/gameloop/debug"
	"github.com/clktmr/gameloop/drivers/display"
	"github.com/clktmr/gameloop/drivers/input"
	"github.com/clktmr/gameloop/rtos"
)

// Flags signalled to the loop.
const (
	FlagUpdate uint32 = 1 << iota
	FlagStop
)

// Display provides exclusive access to a canvas.
type Display interface {
	Acquire() (*display.Canvas, error)
	Release()
}

// InputSource broadcasts raw key events.
type InputSource interface {
	Subscribe(fn func(input.Event)) *input.Subscription
	Unsubscribe(s *input.Subscription)
}

// State is the lifecycle state of an Engine.
type State int32

const (
	StateIdle    State = iota // Run not called yet
	StateRunning              // processing frames
	StateStopped              // Run returned or closed before Run, terminal
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	}
	return "state(" + strconv.Itoa(int(s)) + ")"
}

type options struct {
	display Display
	input   InputSource
	timer   clock.Timer
	counter clock.Counter
	log     zerolog.Logger
}

// Option replaces one of the engine's default collaborators.
type Option func(*options)

// WithDisplay sets the display the engine draws to. The default is an
// offscreen display of DefaultSize.
func WithDisplay(d Display) Option { return func(o *options) { o.display = d } }

// WithInput sets the source of key events.
func WithInput(src InputSource) Option { return func(o *options) { o.input = src } }

// WithTimer sets the timer pacing the frames.
func WithTimer(t clock.Timer) Option { return func(o *options) { o.timer = t } }

// WithCounter sets the cycle counter used to measure the frame rate.
func WithCounter(c clock.Counter) Option { return func(o *options) { o.counter = c } }

// WithLogger sets the logger. Logging is disabled by default.
func WithLogger(log zerolog.Logger) Option { return func(o *options) { o.log = log } }

type Engine struct {
	settings Settings
	display  Display
	input    InputSource
	flags    *rtos.Flags
	clock    *clock.FrameClock
	log      zerolog.Logger

	state  atomic.Int32
	frames atomic.Uint64

	mu     sync.Mutex // guards canvas and sub
	canvas *display.Canvas
	sub    *input.Subscription
}

// New creates an engine. A missing callback or an invalid target rate is a
// fatal error.
func New(settings Settings, opts ...Option) *Engine {
	debug.Check(settings.Callback != nil, "no callback")
	debug.CheckErrNil(settings.Validate(), "settings")

	o := options{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.display == nil {
		o.display = display.New(display.DefaultSize, nil)
	}
	if o.input == nil {
		o.input = input.NewPubSub()
	}
	if o.timer == nil {
		o.timer = clock.NewTicker()
	}
	if o.counter == nil {
		o.counter = clock.NewSysCounter(clock.DefaultFrequency)
	}

	return &Engine{
		settings: settings,
		display:  o.display,
		input:    o.input,
		flags:    rtos.NewFlags(),
		clock:    clock.NewFrameClock(o.timer, o.counter),
		log:      o.log,
	}
}

// Run processes frames until Stop is called. It may only be called once.
func (e *Engine) Run() {
	debug.Check(e.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)), "engine already ran")
	defer e.teardown()

	canvas, err := e.display.Acquire()
	debug.CheckErrNil(err, "acquire display")
	latch := input.NewLatch(nil)
	e.mu.Lock()
	e.canvas = canvas
	e.sub = e.input.Subscribe(latch.Handle)
	e.mu.Unlock()

	r := &Running{engine: e, fps: e.settings.FPS}
	var edge input.Edge

	e.clock.Start(e.settings.FPS, e.tick)
	e.log.Info().Float32("fps", e.settings.FPS).Bool("show_fps", e.settings.ShowFPS).Msg("engine running")

	for {
		flags, err := e.flags.Wait(FlagUpdate|FlagStop, rtos.WaitAny, rtos.Forever)
		debug.CheckErrNil(err, "wait for update")

		if flags&FlagUpdate != 0 {
			e.frame(r, canvas, latch, &edge)
		}
		if flags&FlagStop != 0 {
			return
		}
	}
}

// tick runs in the timer's context.
func (e *Engine) tick() {
	e.flags.Set(FlagUpdate)
}

func (e *Engine) frame(r *Running, canvas *display.Canvas, latch *input.Latch, edge *input.Edge) {
	fps, elapsed, ok := e.clock.Lap()
	if ok {
		r.fps = fps
	} else {
		e.log.Warn().Float32("fps", r.fps).Msg("no cycles elapsed since last frame")
	}

	canvas.Reset()
	in := edge.Next(latch.Load())
	e.settings.Callback(r, canvas, in, e.settings.Context)

	if e.settings.ShowFPS {
		canvas.SetColor(display.ColorXOR)
		canvas.DrawStr(0, 0, strconv.Itoa(int(math.Round(float64(r.fps)))))
	}
	canvas.Commit()

	n := e.frames.Add(1)
	e.log.Debug().
		Uint64("frame", n).
		Uint32("cycles", elapsed).
		Float32("fps", r.fps).
		Stringer("held", in.Held).
		Msg("frame")
}

func (e *Engine) teardown() {
	e.clock.Stop()
	e.release()
	e.state.Store(int32(StateStopped))
	e.log.Info().Uint64("frames", e.frames.Load()).Msg("engine stopped")
}

func (e *Engine) release() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sub != nil {
		e.input.Unsubscribe(e.sub)
		e.sub = nil
	}
	if e.canvas != nil {
		e.display.Release()
		e.canvas = nil
	}
}

// Stop requests the loop to exit. It returns immediately, the request is
// observed when the loop wakes up next, after finishing a pending frame.
// Calling Stop more than once has the same effect as calling it once.
func (e *Engine) Stop() {
	e.flags.Set(FlagStop)
}

// State returns the engine's lifecycle state.
func (e *Engine) State() State {
	return State(e.state.Load())
}

// Frames returns the number of frames processed.
func (e *Engine) Frames() uint64 {
	return e.frames.Load()
}

// Close releases the engine's resources. If the engine is running, it is
// stopped and Run releases them on return. An engine closed before Run can't
// be run anymore. Close is idempotent.
func (e *Engine) Close() {
	if e.state.CompareAndSwap(int32(StateIdle), int32(StateStopped)) {
		e.log.Debug().Msg("engine closed before run")
	}
	if e.State() == StateRunning {
		e.Stop()
		return
	}
	e.clock.Stop()
	e.release()
}
