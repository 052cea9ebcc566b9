package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/clktmr/gameloop/capture"
	"github.com/clktmr/gameloop/console"
	"github.com/clktmr/gameloop/drivers/display"
	"github.com/clktmr/gameloop/drivers/input"
	"github.com/clktmr/gameloop/drivers/keylink"
	"github.com/clktmr/gameloop/engine"
)

type runOptions struct {
	config     string
	fps        float32
	showFPS    bool
	frames     int
	keys       string
	screenshot string
}

func NewRunCommand(root *RootOptions) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the bouncing box demo",
		Long: `Run the bouncing box demo on a headless display.

Ok pauses the box, the arrow keys change its direction and back quits. Key
events are read from a keylink stream given by --keys.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := engine.DefaultSettings()
			if opts.config != "" {
				f, err := os.Open(opts.config)
				if err != nil {
					return err
				}
				settings, err = engine.LoadSettings(f)
				f.Close()
				if err != nil {
					return fmt.Errorf("%s: %w", opts.config, err)
				}
			}
			if cmd.Flags().Changed("fps") {
				settings.FPS = opts.fps
			}
			if cmd.Flags().Changed("show-fps") {
				settings.ShowFPS = opts.showFPS
			}
			if err := settings.Validate(); err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer cancel()
			return runDemo(ctx, cmd.InOrStdin(), settings, opts, root.logger(cmd.ErrOrStderr()))
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.config, "config", "", "YAML settings file")
	f.Float32Var(&opts.fps, "fps", 60, "target frame rate")
	f.BoolVar(&opts.showFPS, "show-fps", false, "overlay the measured frame rate")
	f.IntVar(&opts.frames, "frames", 0, "stop after this many frames, 0 runs until interrupted")
	f.StringVar(&opts.keys, "keys", "", "keylink stream to read key events from, - for stdin")
	f.StringVar(&opts.screenshot, "screenshot", "", "write the last frame as PNG to this file")

	return cmd
}

func runDemo(ctx context.Context, stdin io.Reader, settings engine.Settings, opts *runOptions, log zerolog.Logger) error {
	rec := &capture.Recorder{}
	disp := display.New(display.DefaultSize, rec)
	events := input.NewPubSub()
	src := &keySource{PubSub: events}

	if opts.keys != "" {
		r := stdin
		if opts.keys != "-" {
			f, err := os.Open(opts.keys)
			if err != nil {
				return err
			}
			defer f.Close()
			r = f
		}
		src.start = func() {
			go func() {
				if err := keylink.Pump(ctx, r, events, log); err != nil && !errors.Is(err, context.Canceled) {
					log.Error().Err(err).Msg("reading key events")
				}
			}()
		}
	}

	game := newBouncer(ctx, display.DefaultSize, opts.frames)
	err := console.Run(game, settings,
		engine.WithDisplay(disp),
		engine.WithInput(src),
		engine.WithLogger(log),
	)
	switch {
	case errors.Is(err, errQuit):
		log.Info().Msg("quit")
	case errors.Is(err, context.Canceled):
		log.Info().Msg("interrupted")
	case err != nil:
		return err
	}

	if opts.screenshot != "" {
		if err := writeScreenshot(opts.screenshot, rec); err != nil {
			return err
		}
		log.Info().Str("file", opts.screenshot).Msg("screenshot written")
	}
	return nil
}

// keySource starts reading key events when the engine subscribes, so no
// event is published before the latch is listening.
type keySource struct {
	*input.PubSub
	once  sync.Once
	start func()
}

func (s *keySource) Subscribe(fn func(input.Event)) *input.Subscription {
	sub := s.PubSub.Subscribe(fn)
	if s.start != nil {
		s.once.Do(s.start)
	}
	return sub
}

func writeScreenshot(name string, rec *capture.Recorder) error {
	last := rec.Last()
	if last == nil {
		return errors.New("screenshot: no frame was committed")
	}
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	err = capture.WritePNG(f, capture.Tint(last, capture.Ink, capture.Backlight), 2)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}
