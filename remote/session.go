// Package remote runs operator commands against a BKM-10r link.
package remote

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"go.tigermatt.uk/bkm10r/command"
	"go.tigermatt.uk/bkm10r/procedure"
	"go.tigermatt.uk/bkm10r/protocol"
	"go.tigermatt.uk/bkm10r/transmitter"
)

// Command outcomes, as reported to an Observer.
const (
	ResultOK        = "ok"
	ResultUnknown   = "unknown"
	ResultInvalid   = "invalid"
	ResultCancelled = "cancelled"
	ResultFailed    = "failed"
)

// Prompt texts used when a parameter is not given inline.
const (
	PromptTicks   = "Input Wanted Difference: "
	PromptChannel = "Channel (0-9): "
	PromptName    = "Name: "
	PromptText    = "Text: "
)

// ErrNoPrompt is returned when a parameter is missing and there is no
// Prompter to ask for it.
var ErrNoPrompt = errors.New("parameter missing")

// ParamError reports an operator-supplied value that cannot be used.
type ParamError struct {
	Param string
	Value string
	Err   error
}

func (e *ParamError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %v", e.Param, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Param, e.Value, e.Err)
}

func (e *ParamError) Unwrap() error { return e.Err }

// Prompter asks the operator for a missing parameter.
type Prompter interface {
	Ask(prompt string) (string, error)
}

// Observer is told about every frame and command outcome. CommandDone
// receives the table name of the command, or ResultUnknown when the name did
// not resolve.
type Observer interface {
	FrameSent(name string)
	CommandDone(command, result string)
	EncoderTurned(encoder string, ticks int)
}

// Result describes a command that ran.
type Result struct {
	Command string
	// Skipped holds characters a text entry could not type.
	Skipped []rune
}

// Session owns the transmitter for one connection and runs one command at a
// time.
type Session struct {
	ID string

	tx       *transmitter.Transmitter
	runner   *procedure.Runner
	logger   *zap.Logger
	observer Observer

	mu sync.Mutex
}

type options struct {
	id       string
	logger   *zap.Logger
	observer Observer
	txOpts   []transmitter.Option
}

// Option configures a Session.
type Option func(*options)

// WithLogger sets the session logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithObserver attaches metrics or any other observer.
func WithObserver(obs Observer) Option {
	return func(o *options) { o.observer = obs }
}

// WithID overrides the generated session id.
func WithID(id string) Option {
	return func(o *options) { o.id = id }
}

// WithTransmitterOptions passes options through to the transmitter.
func WithTransmitterOptions(opts ...transmitter.Option) Option {
	return func(o *options) { o.txOpts = append(o.txOpts, opts...) }
}

type nopObserver struct{}

func (nopObserver) FrameSent(string)           {}
func (nopObserver) CommandDone(string, string) {}
func (nopObserver) EncoderTurned(string, int)  {}

// NewSession builds a session writing to t.
func NewSession(t transmitter.Transport, opts ...Option) *Session {
	o := options{logger: zap.NewNop(), observer: nopObserver{}}
	for _, opt := range opts {
		opt(&o)
	}
	if o.id == "" {
		o.id = uuid.NewString()
	}

	logger := o.logger.With(zap.String("session", o.id))
	obs := o.observer

	txOpts := append([]transmitter.Option{
		transmitter.WithLogger(logger),
		transmitter.WithFrameHook(func(f protocol.Frame) { obs.FrameSent(f.Name) }),
	}, o.txOpts...)
	tx := transmitter.New(t, txOpts...)

	return &Session{
		ID:       o.id,
		tx:       tx,
		runner:   procedure.New(tx, logger),
		logger:   logger,
		observer: obs,
	}
}

// Execute resolves name and runs it. args are inline parameters; missing
// ones are asked of p, which may be nil.
func (s *Session) Execute(ctx context.Context, name string, args []string, p Prompter) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.execute(ctx, name, args, p)

	outcome := Classify(err)
	s.observer.CommandDone(metricLabel(name, outcome), outcome)
	if err != nil {
		s.logger.Error("command failed", zap.String("command", name), zap.String("result", outcome), zap.Error(err))
		return res, err
	}
	s.logger.Info("command sent", zap.String("command", name))
	return res, nil
}

func (s *Session) execute(ctx context.Context, name string, args []string, p Prompter) (*Result, error) {
	in, err := command.Resolve(name)
	if err != nil {
		return nil, err
	}

	res := &Result{Command: name}
	switch in := in.(type) {
	case command.Simple:
		if len(args) > 0 {
			return nil, &ParamError{Param: name, Value: strings.Join(args, " "), Err: errors.New("takes no arguments")}
		}
		return res, s.tx.TransmitSequence(ctx, in.Frames, in.SelectSwitches)

	case command.EncoderOp:
		ticks, err := intParam(args, "ticks", PromptTicks, p)
		if err != nil {
			return nil, err
		}
		if err := s.tx.SendEncoder(ctx, in.Encoder, ticks); err != nil {
			return nil, err
		}
		s.observer.EncoderTurned(in.Encoder, ticks)
		return res, nil

	case command.Procedure:
		return s.procedure(ctx, res, in.ID, args, p)
	}

	return nil, fmt.Errorf("unhandled instruction %T", in)
}

func (s *Session) procedure(ctx context.Context, res *Result, id command.ProcedureID, args []string, p Prompter) (*Result, error) {
	var err error
	switch id {
	case command.UpdateChannelName:
		channel, perr := intParam(args, "channel", PromptChannel, p)
		if perr != nil {
			return nil, perr
		}
		if perr := procedure.CheckChannel(channel); perr != nil {
			return nil, perr
		}

		var rest []string
		if len(args) > 1 {
			rest = args[1:]
		}
		text, perr := textParam(rest, "name", PromptName, p)
		if perr != nil {
			return nil, perr
		}
		res.Skipped, err = s.runner.UpdateChannelName(ctx, channel, text)

	case command.WriteText:
		text, perr := textParam(args, "text", PromptText, p)
		if perr != nil {
			return nil, perr
		}
		res.Skipped, err = s.runner.WriteText(ctx, text)

	default:
		return nil, fmt.Errorf("unhandled procedure %q", id)
	}

	if err != nil {
		return nil, err
	}
	return res, nil
}

func ask(param, prompt string, p Prompter) (string, error) {
	if p == nil {
		return "", &ParamError{Param: param, Err: ErrNoPrompt}
	}
	v, err := p.Ask(prompt)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", param, err)
	}
	return v, nil
}

func intParam(args []string, param, prompt string, p Prompter) (int, error) {
	var raw string
	if len(args) > 0 {
		raw = args[0]
	} else {
		v, err := ask(param, prompt, p)
		if err != nil {
			return 0, err
		}
		raw = strings.TrimSpace(v)
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ParamError{Param: param, Value: raw, Err: errors.New("not an integer")}
	}
	return n, nil
}

func textParam(args []string, param, prompt string, p Prompter) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	return ask(param, prompt, p)
}

// ParseLine splits an interactive line into a command name and its inline
// arguments. Text parameters are taken verbatim from the rest of the line so
// repeated and trailing spaces reach the monitor.
func ParseLine(line string) (string, []string) {
	line = strings.TrimLeft(line, " \t")
	name, rest := line, ""
	if i := strings.IndexAny(line, " \t"); i >= 0 {
		name, rest = line[:i], line[i+1:]
	}
	if name == "" {
		return "", nil
	}

	in, err := command.Resolve(name)
	if err != nil {
		return name, strings.Fields(rest)
	}
	proc, ok := in.(command.Procedure)
	if !ok {
		return name, strings.Fields(rest)
	}

	switch proc.ID {
	case command.WriteText:
		if rest == "" {
			return name, nil
		}
		return name, []string{rest}
	case command.UpdateChannelName:
		rest = strings.TrimLeft(rest, " ")
		channel, text, _ := strings.Cut(rest, " ")
		if channel == "" {
			return name, nil
		}
		if text == "" {
			return name, []string{channel}
		}
		return name, []string{channel, text}
	}
	return name, strings.Fields(rest)
}

// metricLabel keeps operator typos out of metric labels: only table names
// are reported as themselves.
func metricLabel(name, outcome string) string {
	if outcome == ResultUnknown {
		return ResultUnknown
	}
	return name
}

// Classify maps an Execute error onto a Result* outcome.
func Classify(err error) string {
	var (
		unknown *command.UnknownCommandError
		param   *ParamError
		delta   *protocol.DeltaRangeError
		channel *procedure.ChannelRangeError
	)
	switch {
	case err == nil:
		return ResultOK
	case errors.As(err, &unknown):
		return ResultUnknown
	case errors.As(err, &param), errors.As(err, &delta), errors.As(err, &channel):
		return ResultInvalid
	case errors.Is(err, context.Canceled):
		return ResultCancelled
	default:
		return ResultFailed
	}
}
