package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/unkn0wn-root/amp/stream"
)

func decodeCmd(a *app) *cobra.Command {
	var (
		hexIn   bool
		maxSize int
	)

	cmd := &cobra.Command{
		Use:   "decode [file|-]",
		Short: "Decode messages and print their fields",
		Long: `Decode every message in the input and print one field per line.

Blobs print as <Buffer 01 02 03>, strings as text, bigints as
decimal and json minified. Messages after the first are separated
by a blank line. Without an argument the demonstration message is
decoded; "-" reads standard input.

Examples:
  amp decode
  amp decode order.bin
  amp encode --raw | amp decode -
  amp decode --hex dump.txt`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader
			switch {
			case len(args) == 0:
				buf, err := demoMessage().Encode()
				if err != nil {
					return err
				}
				r = bytes.NewReader(buf)
			case args[0] == "-":
				r = cmd.InOrStdin()
			default:
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}

			if hexIn {
				text, err := io.ReadAll(r)
				if err != nil {
					return err
				}
				b, err := parseHex(string(text))
				if err != nil {
					return err
				}
				r = bytes.NewReader(b)
			}
			return runDecode(a, cmd.OutOrStdout(), r, maxSize)
		},
	}

	cmd.Flags().BoolVar(&hexIn, "hex", false, `Input is hex text, e.g. "0x14, 0x00" or "1400"`)
	cmd.Flags().IntVar(&maxSize, "max-size", 0, "Largest message in bytes (0 = 64 MiB)")

	return cmd
}

func runDecode(a *app, w io.Writer, r io.Reader, maxSize int) error {
	dec := stream.NewDecoder(r, stream.WithLogger(a.log), stream.WithMaxMessageSize(maxSize))
	for n := 0; ; n++ {
		m, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("message %d: %w", n, err)
		}
		if n > 0 {
			fmt.Fprintln(w)
		}
		for _, f := range m.All() {
			if _, err := fmt.Fprintln(w, f); err != nil {
				return err
			}
		}
	}
}
