// Package transmitter writes BKM-10r frames to a transport and enforces the
// timing and bank discipline the monitor requires.
package transmitter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"go.tigermatt.uk/bkm10r/protocol"
)

// Transport is the serial link. Flush must not return before written bytes
// have left the host.
type Transport interface {
	Write(p []byte) (int, error)
	Flush() error
}

// TransmitError wraps a transport failure while sending a frame.
type TransmitError struct {
	Frame string
	Op    string
	Err   error
}

func (e *TransmitError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Frame, e.Err)
}

func (e *TransmitError) Unwrap() error { return e.Err }

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep is the wall-clock Sleeper.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// FrameHook observes every frame written to the transport.
type FrameHook func(protocol.Frame)

// Transmitter is not safe for concurrent use; callers serialise commands.
type Transmitter struct {
	transport Transport
	sleep     Sleeper
	logger    *zap.Logger
	hooks     []FrameHook
	isw       protocol.Frame
	ien       protocol.Frame
}

// Option configures a Transmitter.
type Option func(*Transmitter)

// WithSleeper replaces the wall-clock sleeper.
func WithSleeper(s Sleeper) Option {
	return func(t *Transmitter) {
		t.sleep = s
	}
}

// WithLogger sets the logger. Frames are logged at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(t *Transmitter) {
		t.logger = l
	}
}

// WithFrameHook adds a hook called after each frame is flushed.
func WithFrameHook(h FrameHook) Option {
	return func(t *Transmitter) {
		t.hooks = append(t.hooks, h)
	}
}

// New returns a Transmitter writing to transport.
func New(transport Transport, opts ...Option) *Transmitter {
	if transport == nil {
		panic("transport cannot be nil")
	}

	t := &Transmitter{
		transport: transport,
		sleep:     Sleep,
		logger:    zap.NewNop(),
		isw:       protocol.MustLookup(protocol.ISW),
		ien:       protocol.MustLookup(protocol.IEN),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// write puts one frame on the link and waits for it to drain. It is the only
// place bytes reach the transport.
func (t *Transmitter) write(ctx context.Context, f protocol.Frame) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := t.transport.Write(f.Data()); err != nil {
		return &TransmitError{Frame: f.Name, Op: "write", Err: err}
	}
	if err := t.transport.Flush(); err != nil {
		return &TransmitError{Frame: f.Name, Op: "flush", Err: err}
	}

	t.logger.Debug("frame sent", zap.String("frame", f.Name), zap.String("bytes", fmt.Sprintf("% 02X", f.Data())))
	for _, h := range t.hooks {
		h(f)
	}
	return nil
}

// Settle blocks for d.
func (t *Transmitter) Settle(ctx context.Context, d time.Duration) error {
	return t.sleep(ctx, d)
}

// Transmit writes f and then applies its policy. A shift reselect is never
// cut short by cancellation once SHIFT is on the wire.
func (t *Transmitter) Transmit(ctx context.Context, f protocol.Frame) error {
	if err := t.write(ctx, f); err != nil {
		return err
	}

	p := PolicyFor(f.Name)
	if p.Reselect == 0 {
		return t.sleep(ctx, p.Settle)
	}

	bracket := context.WithoutCancel(ctx)
	for i := 0; i < p.Reselect; i++ {
		if err := t.write(bracket, t.isw); err != nil {
			return err
		}
		if err := t.sleep(bracket, p.Settle); err != nil {
			return err
		}
	}
	return nil
}

// Press looks up each named key and transmits it.
func (t *Transmitter) Press(ctx context.Context, names ...string) error {
	for _, name := range names {
		f, err := protocol.Lookup(name)
		if err != nil {
			return err
		}
		if err := t.Transmit(ctx, f); err != nil {
			return err
		}
	}
	return nil
}

// TransmitSequence sends frames in order, optionally selecting the switches
// bank first. Cancellation is honoured only before the first frame, so a
// shift bracket is never left open.
func (t *Transmitter) TransmitSequence(ctx context.Context, frames []protocol.Frame, selectSwitches bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	run := context.WithoutCancel(ctx)
	if selectSwitches {
		if err := t.Transmit(run, t.isw); err != nil {
			return err
		}
	}
	for _, f := range frames {
		if err := t.Transmit(run, f); err != nil {
			return err
		}
	}
	return nil
}

// SendEncoder turns encoder by ticks: IEN, the encoder frame, ISW, then
// EncoderSettle. Invalid input is rejected before any byte is written.
func (t *Transmitter) SendEncoder(ctx context.Context, encoder string, ticks int) error {
	f, err := protocol.EncoderFrame(encoder, ticks)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	bracket := context.WithoutCancel(ctx)
	if err := t.write(bracket, t.ien); err != nil {
		return err
	}
	if err := t.write(bracket, f); err != nil {
		return t.restoreSwitches(bracket, err)
	}
	if err := t.write(bracket, t.isw); err != nil {
		return err
	}
	return t.sleep(bracket, EncoderSettle)
}

// restoreSwitches makes a best effort to leave the encoder bank after a
// failed encoder write.
func (t *Transmitter) restoreSwitches(ctx context.Context, cause error) error {
	if err := t.write(ctx, t.isw); err != nil {
		return errors.Join(cause, err)
	}
	return cause
}
