// Package testing provides fakes of the engine's hardware collaborators for
// writing deterministic tests.
package testing

import (
	"os"
	"testing"

	"github.com/rs/zerolog"
)

// TestMain can be used as TestMain for packages that log through zerolog.
// Logging is disabled unless GAMELOOP_LOG is set to a zerolog level name.
func TestMain(m *testing.M) {
	level := zerolog.Disabled
	if s := os.Getenv("GAMELOOP_LOG"); s != "" {
		if l, err := zerolog.ParseLevel(s); err == nil {
			level = l
		}
	}
	zerolog.SetGlobalLevel(level)

	os.Exit(m.Run())
}

// Logger returns a logger writing human readable output to the test log.
func Logger(t testing.TB) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: zerolog.TestWriter{T: t}, NoColor: true}).
		With().Timestamp().Logger()
}
