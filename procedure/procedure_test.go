package procedure

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.tigermatt.uk/bkm10r/protocol"
)

type keypad struct {
	events []string
	err    error
	after  int
}

func (k *keypad) record(ev string) error {
	if k.err != nil && len(k.events) >= k.after {
		return k.err
	}
	k.events = append(k.events, ev)
	return nil
}

func (k *keypad) Transmit(_ context.Context, f protocol.Frame) error {
	return k.record(f.Name)
}

func (k *keypad) TransmitSequence(ctx context.Context, frames []protocol.Frame, selectSwitches bool) error {
	if selectSwitches {
		if err := k.record(protocol.ISW); err != nil {
			return err
		}
	}
	for _, f := range frames {
		if err := k.Transmit(ctx, f); err != nil {
			return err
		}
	}
	return nil
}

func (k *keypad) Settle(_ context.Context, d time.Duration) error {
	return k.record(fmt.Sprintf("settle %s", d))
}

// keys drops everything but key frames.
func (k *keypad) keys() []string {
	var out []string
	for _, ev := range k.events {
		if _, err := protocol.Lookup(ev); err == nil && ev != protocol.ISW {
			out = append(out, ev)
		}
	}
	return out
}

func repeat(name string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = name
	}
	return out
}

func TestCursorMoves(t *testing.T) {
	require.Len(t, Charset, 46)

	for _, c := range []struct {
		r    rune
		want Move
	}{
		{'a', Move{Key: protocol.Up, Count: 1}},
		{'A', Move{Key: protocol.Up, Count: 1}},
		{'c', Move{Key: protocol.Up, Count: 3}},
		{'w', Move{Key: protocol.Up, Count: 23}},
		{'x', Move{Key: protocol.Down, Count: 23}},
		{'0', Move{Key: protocol.Down, Count: 20}},
		{'&', Move{Key: protocol.Down, Count: 2}},
		{' ', Move{Key: protocol.Down, Count: 1}},
	} {
		m, err := CursorMoves(c.r)
		require.NoError(t, err, string(c.r))
		assert.Equal(t, c.want, m, string(c.r))
	}
}

func TestCursorMovesUnsupported(t *testing.T) {
	for _, r := range []rune{'!', '_', 'é', '\n'} {
		_, err := CursorMoves(r)
		var unsupported *UnsupportedCharError
		require.True(t, errors.As(err, &unsupported))
		assert.Equal(t, r, unsupported.Char)
	}
}

func TestWriteTextSingleLetter(t *testing.T) {
	k := &keypad{}
	skipped, err := New(k, nil).WriteText(context.Background(), "a")
	require.NoError(t, err)
	assert.Empty(t, skipped)
	assert.Equal(t, []string{
		protocol.Up,
		protocol.Enter, "settle 100ms",
		protocol.Enter,
	}, k.events)
}

func TestWriteTextSpace(t *testing.T) {
	k := &keypad{}
	_, err := New(k, nil).WriteText(context.Background(), " ")
	require.NoError(t, err)
	assert.Equal(t, []string{
		protocol.Down,
		protocol.Enter, "settle 100ms",
		protocol.Enter,
	}, k.events)
}

func TestWriteTextSkipsUnsupported(t *testing.T) {
	k := &keypad{}
	skipped, err := New(k, nil).WriteText(context.Background(), "B!b")
	require.NoError(t, err)
	assert.Equal(t, []rune{'!'}, skipped)

	want := []string{protocol.Up, protocol.Up, protocol.Enter, protocol.Up, protocol.Up, protocol.Enter, protocol.Enter}
	assert.Equal(t, want, k.keys())
}

func TestWriteTextEmpty(t *testing.T) {
	k := &keypad{}
	_, err := New(k, nil).WriteText(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{protocol.Enter}, k.events)
}

func TestWriteTextStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	k := &keypad{err: boom, after: 2}
	_, err := New(k, nil).WriteText(context.Background(), "zz")
	assert.ErrorIs(t, err, boom)
	assert.Len(t, k.events, 2)
}

func TestUpdateChannelName(t *testing.T) {
	k := &keypad{}
	_, err := New(k, nil).UpdateChannelName(context.Background(), 3, "a")
	require.NoError(t, err)

	var want []string
	want = append(want, protocol.Menu)
	want = append(want, protocol.Down, protocol.Down)
	want = append(want, protocol.Enter)
	want = append(want, protocol.Num3)
	want = append(want, repeat(protocol.Down, 6)...)
	want = append(want, protocol.Enter)
	want = append(want, protocol.Up)
	want = append(want, protocol.Enter)
	// writeText("a")
	want = append(want, protocol.Up, protocol.Enter, protocol.Enter)
	assert.Equal(t, want, k.keys())
}

func TestUpdateChannelNameTiming(t *testing.T) {
	k := &keypad{}
	_, err := New(k, nil).UpdateChannelName(context.Background(), 0, "")
	require.NoError(t, err)

	want := []string{
		protocol.ISW, protocol.Menu, "settle 100ms",
		protocol.ISW, protocol.Down, protocol.Down,
		protocol.Enter, "settle 100ms",
		protocol.Num0, "settle 500ms",
	}
	want = append(want, repeat(protocol.Down, 6)...)
	want = append(want,
		protocol.Enter, "settle 100ms",
		protocol.Up,
		protocol.Enter, "settle 100ms",
		protocol.Enter,
	)
	assert.Equal(t, want, k.events)
}

func TestUpdateChannelNameRejectsRange(t *testing.T) {
	for _, ch := range []int{-1, 10, 15} {
		k := &keypad{}
		_, err := New(k, nil).UpdateChannelName(context.Background(), ch, "abc")

		var rangeErr *ChannelRangeError
		require.True(t, errors.As(err, &rangeErr), ch)
		assert.Equal(t, ch, rangeErr.Channel)
		assert.Empty(t, k.events)
	}
}
