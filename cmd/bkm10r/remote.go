package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"go.tigermatt.uk/bkm10r"
	"go.tigermatt.uk/bkm10r/command"
	"go.tigermatt.uk/bkm10r/internal/config"
	"go.tigermatt.uk/bkm10r/internal/logging"
	"go.tigermatt.uk/bkm10r/internal/metrics"
	"go.tigermatt.uk/bkm10r/protocol"
	"go.tigermatt.uk/bkm10r/remote"
	"go.tigermatt.uk/bkm10r/serialport"
	"go.tigermatt.uk/bkm10r/transmitter"
)

var oneShot string

func remoteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bkm10r [ARGS...]",
		Short: "Sony BKM-10r remote control emulator",
		Long: "Without --command, starts an interactive prompt. Commands that take\n" +
			"parameters accept them inline (\"PhaseInc -3\") or ask for them.",
		Args:          cobra.ArbitraryArgs,
		RunE:          runRemote,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.Flags().StringVarP(&oneShot, "command", "c", "", "Send one command and exit; ARGS are its parameters")
	cmd.Flags().String("record", "", "Capture every frame sent to this file")
	cmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address")
	cmd.Flags().String("history", "", "Interactive history file")

	return cmd
}

func setup(cmd *cobra.Command) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath, cmd.Flags())
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("configuring logging: %w", err)
	}
	return cfg, logger, nil
}

func runRemote(cmd *cobra.Command, args []string) error {
	if oneShot == "" && len(args) > 0 {
		return fmt.Errorf("unexpected arguments %q without --command", args)
	}

	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	port := serialport.New(cfg.Serial.Device, cfg.Serial.Baud)
	if err := port.Open(); err != nil {
		logger.Error("cannot open serial port", zap.String("device", cfg.Serial.Device), zap.Error(err))
		return err
	}
	defer func() {
		if err := port.Close(); err != nil {
			logger.Warn("closing serial port", zap.Error(err))
		}
	}()
	logger.Info("serial port opened", zap.String("device", port.Name()), zap.Int("baud", cfg.Serial.Baud))

	opts := []remote.Option{remote.WithLogger(logger)}

	if cfg.Metrics.Addr != "" {
		reg := metrics.NewRegistry()
		opts = append(opts, remote.WithObserver(metrics.New(reg)))
		go func() {
			if err := metrics.Serve(ctx, cfg.Metrics.Addr, cfg.Metrics.Path, reg); err != nil {
				logger.Error("metrics listener", zap.Error(err))
			}
		}()
	}

	if cfg.Record.File != "" {
		f, err := os.Create(cfg.Record.File)
		if err != nil {
			return fmt.Errorf("creating capture: %w", err)
		}
		defer f.Close()

		rec := &bkm10r.Recorder{Dest: f}
		opts = append(opts, remote.WithTransmitterOptions(transmitter.WithFrameHook(func(fr protocol.Frame) {
			if err := rec.RecordFrame(fr); err != nil {
				logger.Warn("capture write failed", zap.Error(err))
			}
		})))
	}

	sess := remote.NewSession(port, opts...)

	if oneShot != "" {
		cmdCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
		defer stop()

		res, err := sess.Execute(cmdCtx, oneShot, args, &stdinPrompter{in: bufio.NewReader(os.Stdin), out: os.Stdout})
		return finish(os.Stdout, res, err)
	}

	return interactive(ctx, sess, cfg.History.File)
}

// errReported marks a failure already shown to the operator.
var errReported = errors.New("command failed")

// finish reports a one-shot result and keeps main from printing it again.
func finish(w io.Writer, res *remote.Result, err error) error {
	report(w, res, err)
	if err != nil {
		return errReported
	}
	return nil
}

func report(w io.Writer, res *remote.Result, err error) {
	if err != nil {
		fmt.Fprintf(w, "Command Failed (%s): %v\n", remote.Classify(err), err)
		return
	}
	if res != nil && len(res.Skipped) > 0 {
		fmt.Fprintf(w, "Warning: skipped unsupported characters %q\n", string(res.Skipped))
	}
	fmt.Fprintln(w, "Command Successfully Sent")
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w, "Commands:")
	for _, e := range command.Entries() {
		switch in := e.Instruction.(type) {
		case command.EncoderOp:
			fmt.Fprintf(w, "  %-18s turn %s by TICKS (%d to %d)\n", e.Name, in.Encoder, protocol.MinTicks, protocol.MaxTicks)
		case command.Procedure:
			switch in.ID {
			case command.UpdateChannelName:
				fmt.Fprintf(w, "  %-18s CHANNEL NAME: rename a channel\n", e.Name)
			default:
				fmt.Fprintf(w, "  %-18s TEXT: type into the name editor\n", e.Name)
			}
		default:
			fmt.Fprintf(w, "  %s\n", e.Name)
		}
	}
	fmt.Fprintln(w, "  help")
	fmt.Fprintln(w, "  exit")
}

func completer(line string) (c []string) {
	for _, name := range append(command.Names(), "help", "exit") {
		if strings.HasPrefix(strings.ToLower(name), strings.ToLower(line)) {
			c = append(c, name)
		}
	}
	return
}

type linerPrompter struct {
	line *liner.State
}

func (p linerPrompter) Ask(prompt string) (string, error) {
	return p.line.Prompt(prompt)
}

type stdinPrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func (p *stdinPrompter) Ask(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	s, err := p.in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || s == "") {
		return "", err
	}
	return strings.TrimRight(s, "\r\n"), nil
}

func interactive(ctx context.Context, sess *remote.Session, historyFile string) error {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(completer)

	if historyFile != "" {
		if f, err := os.Open(historyFile); err == nil {
			_, _ = line.ReadHistory(f)
			f.Close()
		}
	}

	fmt.Println("Sony BKM-10r Emulated Controller")
	fmt.Println("Type 'help' for Info and 'exit' to Quit")

loop:
	for {
		input, err := line.Prompt("> ")
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			fmt.Println()
			break
		}
		if err != nil {
			return fmt.Errorf("reading command: %w", err)
		}

		if strings.TrimSpace(input) == "" {
			continue
		}
		line.AppendHistory(input)

		name, args := remote.ParseLine(input)
		switch name {
		case "exit":
			break loop
		case "help":
			printHelp(os.Stdout)
			continue
		}

		cmdCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
		res, err := sess.Execute(cmdCtx, name, args, linerPrompter{line: line})
		stop()
		report(os.Stdout, res, err)
	}

	if historyFile != "" {
		if f, err := os.Create(historyFile); err == nil {
			_, _ = line.WriteHistory(f)
			f.Close()
		}
	}
	return nil
}
