package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"go.tigermatt.uk/bkm10r"
	"go.tigermatt.uk/bkm10r/protocol"
)

func dump(_ *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}
	defer f.Close()

	msgs := make(chan bkm10r.Message, 100)

	var g errgroup.Group
	g.Go(func() error { return processMsgs(os.Stdout, msgs) })
	g.Go(func() error { return bkm10r.ReadIn(msgs, f) })

	return g.Wait()
}

// processMsgs decodes msgs into frames, one line each. It always drains msgs
// so the producer never blocks.
func processMsgs(w io.Writer, msgs <-chan bkm10r.Message) error {
	dec := protocol.NewDecoder()

	var werr error
	for msg := range msgs {
		for _, d := range dec.Feed(msg.Data) {
			if werr != nil {
				continue
			}
			_, werr = fmt.Fprintf(w, "%s: % 02X %s\n", msg.Timestamp.Format("15:04:05.000"), d.Frame.Bytes[:], render(d))
		}
	}
	if werr != nil {
		return werr
	}

	if n := dec.Skipped(); n > 0 {
		_, werr = fmt.Fprintf(w, "(%d stray bytes skipped)\n", n)
	}
	return werr
}

func render(d protocol.Decoded) string {
	return fmt.Sprintf("%-4s %s", d.Bank, d)
}
