package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/unkn0wn-root/amp"
)

func encodeCmd(a *app) *cobra.Command {
	var (
		file string
		out  string
		raw  bool
	)

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode a message",
		Long: `Encode a message built from a TOML definition.

Without -f the demonstration message is used: blob 01 02 03,
string "hello", bigint 123451234512345, json {"payload":"value"}.

A definition lists fields in order:

  [[field]]
  type = "string"   # blob | string | bigint | json
  text = "hello"    # hex for blob, int for bigint, json for json

Examples:
  amp encode
  amp encode -f order.toml
  amp encode -f order.toml -o order.bin
  amp encode --raw > demo.bin`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m := demoMessage()
			if file != "" {
				var err error
				if m, err = loadMessage(file); err != nil {
					return err
				}
			}
			return runEncode(a, cmd.OutOrStdout(), m, out, raw)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "TOML message definition")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write encoded bytes to this file")
	cmd.Flags().BoolVar(&raw, "raw", false, "Write encoded bytes to stdout")

	return cmd
}

func runEncode(a *app, w io.Writer, m *amp.Message, out string, raw bool) error {
	buf, err := m.Encode()
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	a.log.Debug("message encoded", amp.Fields{"fields": m.Count(), "size": len(buf)})

	switch {
	case out != "":
		if err := os.WriteFile(out, buf, 0o644); err != nil {
			return err
		}
		a.log.Info("message written", amp.Fields{"path": out, "size": len(buf)})
		return nil
	case raw:
		_, err := w.Write(buf)
		return err
	default:
		_, err := fmt.Fprintf(w, "encoded buffer size=%d, content='%s'\n", len(buf), hexList(buf))
		return err
	}
}

// hexList renders b as "0x14, 0x00, ...".
func hexList(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b) * 6)
	for i, c := range b {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "0x%02x", c)
	}
	return sb.String()
}
