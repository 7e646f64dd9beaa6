// Package command maps the operator's symbolic command names onto
// instructions for the transmitter.
//
// Every name resolves once to one of three instruction kinds: Simple (an
// ordered run of frames), EncoderOp (an encoder turn that needs a tick count
// at run time) or Procedure (a composite routine).
package command

import (
	"fmt"
	"sort"

	"go.tigermatt.uk/bkm10r/protocol"
)

// Kind discriminates the instruction variants.
type Kind int

const (
	KindSimple Kind = iota
	KindEncoder
	KindProcedure
)

func (k Kind) String() string {
	switch k {
	case KindSimple:
		return "simple"
	case KindEncoder:
		return "encoder"
	case KindProcedure:
		return "procedure"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Instruction is implemented only by Simple, EncoderOp and Procedure.
type Instruction interface {
	Kind() Kind
	instruction()
}

// Simple emits Frames in order. When SelectSwitches is set the switches bank
// is selected before the first frame.
type Simple struct {
	Frames         []protocol.Frame
	SelectSwitches bool
}

// EncoderOp turns Encoder by a tick count supplied at run time.
type EncoderOp struct {
	Encoder string
}

// ProcedureID names a composite routine.
type ProcedureID string

const (
	UpdateChannelName ProcedureID = "UpdateChannelName"
	WriteText         ProcedureID = "WriteText"
)

// Procedure runs a composite routine.
type Procedure struct {
	ID ProcedureID
}

func (Simple) Kind() Kind    { return KindSimple }
func (EncoderOp) Kind() Kind { return KindEncoder }
func (Procedure) Kind() Kind { return KindProcedure }

func (Simple) instruction()    {}
func (EncoderOp) instruction() {}
func (Procedure) instruction() {}

// UnknownCommandError is returned by Resolve for names not in the table.
type UnknownCommandError struct {
	Name string
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("unknown command %q", e.Name)
}

// Resolve looks name up, case-sensitively.
func Resolve(name string) (Instruction, error) {
	in, ok := commands[name]
	if !ok {
		return nil, &UnknownCommandError{Name: name}
	}
	return in, nil
}

// Names returns every command name in sorted order.
func Names() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Entry pairs a command name with its instruction.
type Entry struct {
	Name        string
	Instruction Instruction
}

// Entries returns the whole table sorted by name.
func Entries() []Entry {
	names := Names()
	out := make([]Entry, len(names))
	for i, name := range names {
		out[i] = Entry{Name: name, Instruction: commands[name]}
	}
	return out
}
