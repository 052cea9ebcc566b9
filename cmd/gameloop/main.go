// Command gameloop runs a demo game on a headless display and records key
// event streams for it.
package main

import (
	"os"
)

func main() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
