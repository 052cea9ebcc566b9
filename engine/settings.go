package engine

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/clktmr/gameloop/drivers/display"
	"github.com/clktmr/gameloop/drivers/input"
)

var ErrInvalidFPS = errors.New("engine: target fps out of range")

// Limits of the target frame rate. The frame period must be representable as
// a positive time.Duration.
const (
	MinFPS = 1e-6
	MaxFPS = 1e6
)

// Callback is invoked once per frame with the frame's canvas and key state.
// It must not block and must not retain r or canvas after returning. ctx is
// Settings.Context.
type Callback func(r *Running, canvas *display.Canvas, in input.State, ctx any)

// Settings configure an Engine. They are copied by New and can't be changed
// afterwards.
type Settings struct {
	FPS      float32  `yaml:"fps"`      // target frame rate
	ShowFPS  bool     `yaml:"show_fps"` // overlay the measured frame rate
	Callback Callback `yaml:"-"`
	Context  any      `yaml:"-"`
}

// DefaultSettings returns settings for 60 frames per second without overlay.
func DefaultSettings() Settings {
	return Settings{FPS: 60}
}

// LoadSettings reads YAML encoded settings on top of the defaults. An empty
// document yields the defaults.
func LoadSettings(r io.Reader) (Settings, error) {
	s := DefaultSettings()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return s, fmt.Errorf("engine: decode settings: %w", err)
	}
	return s, s.Validate()
}

// Validate checks the target frame rate is within [MinFPS, MaxFPS]. The
// callback is checked by New.
func (s *Settings) Validate() error {
	if !(s.FPS >= MinFPS && s.FPS <= MaxFPS) {
		return fmt.Errorf("%w: %v", ErrInvalidFPS, s.FPS)
	}
	return nil
}
