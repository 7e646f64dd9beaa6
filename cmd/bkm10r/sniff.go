package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"github.com/tarm/serial"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"go.tigermatt.uk/bkm10r"
)

var readTimeout = 500 * time.Millisecond

func sniffCommand() *cobra.Command {
	cmd := cobra.Command{
		Use:   "sniff DEVICE",
		Short: "Decode BKM-10r frames arriving on a serial device",
		Args:  cobra.ExactArgs(1),
		RunE:  sniff,
	}
	cmd.Flags().DurationVar(&readTimeout, "read-timeout", readTimeout, "Serial read timeout")
	cmd.Flags().String("record", "", "Also capture raw traffic to this file")

	return &cmd
}

func listenStop() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)

	go func() {
		<-sigCh
		cancel()
	}()

	return ctx
}

func sniff(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx := listenStop()

	s, err := serial.OpenPort(&serial.Config{
		Name:        args[0],
		Baud:        cfg.Serial.Baud,
		ReadTimeout: readTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening serial: %w", err)
	}
	defer s.Close()
	logger.Info("sniffing", zap.String("device", args[0]), zap.Int("baud", cfg.Serial.Baud))

	var rec *bkm10r.Recorder
	if cfg.Record.File != "" {
		f, err := os.Create(cfg.Record.File)
		if err != nil {
			return fmt.Errorf("creating capture: %w", err)
		}
		defer f.Close()
		rec = &bkm10r.Recorder{Dest: f}
	}

	msgs := make(chan bkm10r.Message, 100)

	var g errgroup.Group
	g.Go(func() error {
		defer close(msgs)
		sn := &bkm10r.Sniffer{
			Port: s,
			OnReceive: func(bs []byte) {
				data := make([]byte, len(bs))
				copy(data, bs)
				msgs <- bkm10r.Message{Data: data, Timestamp: time.Now()}
			},
		}
		return sn.Consume(ctx)
	})
	g.Go(func() error {
		if rec == nil {
			return processMsgs(os.Stdout, msgs)
		}

		tee := make(chan bkm10r.Message, 100)
		var sub errgroup.Group
		sub.Go(func() error { return processMsgs(os.Stdout, tee) })

		var recErr error
		for msg := range msgs {
			if recErr == nil {
				if recErr = rec.Receive(msg); recErr != nil {
					logger.Error("capture write failed", zap.Error(recErr))
				}
			}
			tee <- msg
		}
		close(tee)

		if err := sub.Wait(); err != nil {
			return err
		}
		return recErr
	})

	return g.Wait()
}
