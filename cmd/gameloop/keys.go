package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/clktmr/gameloop/drivers/keylink"
)

type keysOptions struct {
	output string
}

func NewKeysCommand(root *RootOptions) *cobra.Command {
	opts := &keysOptions{}

	cmd := &cobra.Command{
		Use:   "keys <key:type>...",
		Short: "Encode key events as a keylink stream",
		Long: `Encode key events as a keylink stream, e.g.

	gameloop keys up:press up:release back:press | gameloop run --keys -

Keys are up, down, right, left, ok and back. Types are press, release, short,
long and repeat.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if opts.output != "" && opts.output != "-" {
				f, err := os.Create(opts.output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}

			enc := keylink.NewEncoder(w)
			for _, arg := range args {
				ev, err := keylink.ParseEvent(arg)
				if err != nil {
					return err
				}
				if err := enc.Encode(ev); err != nil {
					return fmt.Errorf("write %s: %w", arg, err)
				}
			}
			log := root.logger(cmd.ErrOrStderr())
			log.Debug().Int("events", len(args)).Msg("encoded")
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")

	return cmd
}
