// Package procedure implements the BKM-10r multi-step routines that are
// built from plain key presses: on-screen text entry and channel renaming.
package procedure

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"

	"go.tigermatt.uk/bkm10r/protocol"
)

// Charset is the monitor's on-screen character picker, in order.
const Charset = "abcdefghijklmnopqrstuvwxyz0123456789():;.-+/& "

// Settle times used between menu steps.
const (
	EnterSettle  = 100 * time.Millisecond
	RedrawSettle = 500 * time.Millisecond
)

// UnsupportedCharError reports a character the picker does not offer.
type UnsupportedCharError struct {
	Char rune
}

func (e *UnsupportedCharError) Error() string {
	return fmt.Sprintf("unsupported character %q", e.Char)
}

// Move is a run of identical cursor presses.
type Move struct {
	Key   string
	Count int
}

// CursorMoves returns the presses that select r in the picker, taking the
// shorter way round. The picker is assumed to wrap.
func CursorMoves(r rune) (Move, error) {
	idx := strings.IndexRune(Charset, unicode.ToLower(r))
	if idx < 0 {
		return Move{}, &UnsupportedCharError{Char: r}
	}

	size := len(Charset)
	n := idx + 1
	if n > size/2 {
		return Move{Key: protocol.Down, Count: size - (n - 1)}, nil
	}
	return Move{Key: protocol.Up, Count: n}, nil
}

// Keypad is the part of the transmitter the procedures drive.
type Keypad interface {
	Transmit(ctx context.Context, f protocol.Frame) error
	TransmitSequence(ctx context.Context, frames []protocol.Frame, selectSwitches bool) error
	Settle(ctx context.Context, d time.Duration) error
}

// Runner executes procedures against a Keypad.
type Runner struct {
	pad    Keypad
	logger *zap.Logger
}

// New returns a Runner. A nil logger discards output.
func New(pad Keypad, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{pad: pad, logger: logger}
}

func (r *Runner) press(ctx context.Context, name string, times int) error {
	f := protocol.MustLookup(name)
	for i := 0; i < times; i++ {
		if err := r.pad.Transmit(ctx, f); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) enter(ctx context.Context) error {
	if err := r.press(ctx, protocol.Enter, 1); err != nil {
		return err
	}
	return r.pad.Settle(ctx, EnterSettle)
}

// WriteText types text into the open name editor, one character at a time,
// and confirms with a final Enter. Characters outside Charset are skipped and
// returned.
func (r *Runner) WriteText(ctx context.Context, text string) ([]rune, error) {
	var skipped []rune
	for _, c := range text {
		m, err := CursorMoves(c)
		if err != nil {
			r.logger.Warn("skipping character", zap.String("char", string(c)))
			skipped = append(skipped, c)
			continue
		}

		r.logger.Debug("typing", zap.String("char", string(c)), zap.String("key", m.Key), zap.Int("presses", m.Count))
		if err := r.press(ctx, m.Key, m.Count); err != nil {
			return skipped, err
		}
		if err := r.enter(ctx); err != nil {
			return skipped, err
		}
	}

	return skipped, r.press(ctx, protocol.Enter, 1)
}
