package procedure

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"go.tigermatt.uk/bkm10r/protocol"
)

// Channel numbers selectable from the keypad.
const (
	MinChannel = 0
	MaxChannel = 9
)

// ChannelRangeError is returned for a channel outside [MinChannel, MaxChannel].
type ChannelRangeError struct {
	Channel int
}

func (e *ChannelRangeError) Error() string {
	return fmt.Sprintf("channel %d out of range: valid range is %d-%d", e.Channel, MinChannel, MaxChannel)
}

// CheckChannel rejects channels the keypad cannot select.
func CheckChannel(channel int) error {
	if _, ok := protocol.NumKey(channel); !ok {
		return &ChannelRangeError{Channel: channel}
	}
	return nil
}

// UpdateChannelName walks the monitor menu to the name editor of channel and
// types text. The step counts match the firmware's menu layout; changing
// any of them lands on a different menu item.
func (r *Runner) UpdateChannelName(ctx context.Context, channel int, text string) ([]rune, error) {
	num, ok := protocol.NumKey(channel)
	if !ok {
		return nil, &ChannelRangeError{Channel: channel}
	}

	r.logger.Info("renaming channel", zap.Int("channel", channel), zap.String("name", text))

	menu := []protocol.Frame{protocol.MustLookup(protocol.Menu)}
	if err := r.pad.TransmitSequence(ctx, menu, true); err != nil {
		return nil, err
	}
	if err := r.pad.Settle(ctx, EnterSettle); err != nil {
		return nil, err
	}

	down := protocol.MustLookup(protocol.Down)
	if err := r.pad.TransmitSequence(ctx, []protocol.Frame{down, down}, true); err != nil {
		return nil, err
	}
	if err := r.enter(ctx); err != nil {
		return nil, err
	}

	if err := r.press(ctx, num, 1); err != nil {
		return nil, err
	}
	if err := r.pad.Settle(ctx, RedrawSettle); err != nil {
		return nil, err
	}

	if err := r.press(ctx, protocol.Down, 6); err != nil {
		return nil, err
	}
	if err := r.enter(ctx); err != nil {
		return nil, err
	}
	if err := r.press(ctx, protocol.Up, 1); err != nil {
		return nil, err
	}
	if err := r.enter(ctx); err != nil {
		return nil, err
	}

	return r.WriteText(ctx, text)
}
