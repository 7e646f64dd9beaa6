package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"go.tigermatt.uk/bkm10r/command"
	"go.tigermatt.uk/bkm10r/serialport"
)

var listFormat = "text"

func commandsCommand() *cobra.Command {
	cmd := cobra.Command{
		Use:   "commands",
		Short: "List every command and what it sends",
		Args:  cobra.ExactArgs(0),
		RunE: func(*cobra.Command, []string) error {
			return listCommands(os.Stdout, listFormat)
		},
	}
	cmd.Flags().StringVar(&listFormat, "format", listFormat, "Output format: text or yaml")

	return &cmd
}

type commandDoc struct {
	Name           string   `yaml:"name"`
	Kind           string   `yaml:"kind"`
	Frames         []string `yaml:"frames,omitempty"`
	SelectSwitches bool     `yaml:"selectSwitches,omitempty"`
	Encoder        string   `yaml:"encoder,omitempty"`
	Procedure      string   `yaml:"procedure,omitempty"`
}

func describe(e command.Entry) commandDoc {
	doc := commandDoc{Name: e.Name, Kind: e.Instruction.Kind().String()}
	switch in := e.Instruction.(type) {
	case command.Simple:
		for _, f := range in.Frames {
			doc.Frames = append(doc.Frames, f.String())
		}
		doc.SelectSwitches = in.SelectSwitches
	case command.EncoderOp:
		doc.Encoder = in.Encoder
	case command.Procedure:
		doc.Procedure = string(in.ID)
	}
	return doc
}

func listCommands(w io.Writer, format string) error {
	entries := command.Entries()
	docs := make([]commandDoc, len(entries))
	for i, e := range entries {
		docs[i] = describe(e)
	}

	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(docs); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	case "text":
		for _, d := range docs {
			switch {
			case d.Encoder != "":
				fmt.Fprintf(w, "%-18s %-9s %s\n", d.Name, d.Kind, d.Encoder)
			case d.Procedure != "":
				fmt.Fprintf(w, "%-18s %-9s\n", d.Name, d.Kind)
			default:
				fmt.Fprintf(w, "%-18s %-9s %v\n", d.Name, d.Kind, d.Frames)
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func ports(_ *cobra.Command, _ []string) error {
	names, err := serialport.List()
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}
