package remote

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.tigermatt.uk/bkm10r/command"
	"go.tigermatt.uk/bkm10r/internal/metrics"
	"go.tigermatt.uk/bkm10r/procedure"
	"go.tigermatt.uk/bkm10r/protocol"
	"go.tigermatt.uk/bkm10r/transmitter"
)

type wire struct {
	decoder *protocol.Decoder
	frames  []protocol.Decoded
	writes  int
	err     error
}

func (w *wire) Write(p []byte) (int, error) {
	w.writes++
	if w.err != nil {
		return 0, w.err
	}
	w.frames = append(w.frames, w.decoder.Feed(p)...)
	return len(p), nil
}

func (w *wire) Flush() error { return nil }

// keys returns the wire without switches-bank selects.
func (w *wire) keys() []string {
	var out []string
	for _, d := range w.frames {
		if d.Frame.Name != protocol.ISW {
			out = append(out, d.String())
		}
	}
	return out
}

type observer struct {
	frames   int
	outcomes []string
	ticks    int
}

func (o *observer) FrameSent(string)                  { o.frames++ }
func (o *observer) CommandDone(_, result string)      { o.outcomes = append(o.outcomes, result) }
func (o *observer) EncoderTurned(_ string, ticks int) { o.ticks += ticks }

type answers []string

func (a *answers) Ask(string) (string, error) {
	if len(*a) == 0 {
		return "", errors.New("no more answers")
	}
	v := (*a)[0]
	*a = (*a)[1:]
	return v, nil
}

func noSleep(context.Context, time.Duration) error { return nil }

func newSession(t *testing.T) (*Session, *wire, *observer) {
	t.Helper()
	w := &wire{decoder: protocol.NewDecoder()}
	obs := &observer{}
	s := NewSession(w,
		WithID("test"),
		WithObserver(obs),
		WithTransmitterOptions(transmitter.WithSleeper(noSleep)),
	)
	return s, w, obs
}

func TestSessionID(t *testing.T) {
	s := NewSession(&wire{decoder: protocol.NewDecoder()})
	assert.Len(t, s.ID, 36)
}

func TestUnknownCommandTouchesNothing(t *testing.T) {
	s, w, obs := newSession(t)

	_, err := s.Execute(context.Background(), "Warp", nil, nil)

	var unknown *command.UnknownCommandError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, ResultUnknown, Classify(err))
	assert.Zero(t, w.writes)
	assert.Equal(t, []string{ResultUnknown}, obs.outcomes)
}

func TestUnknownCommandsShareOneMetricLabel(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	s := NewSession(&wire{decoder: protocol.NewDecoder()},
		WithObserver(m),
		WithTransmitterOptions(transmitter.WithSleeper(noSleep)),
	)
	ctx := context.Background()

	for _, name := range []string{"Menu\xff", "Warp", "menu", "Warp"} {
		assert.NotPanics(t, func() {
			_, err := s.Execute(ctx, name, nil, nil)
			assert.Equal(t, ResultUnknown, Classify(err))
		}, name)
	}
	_, err := s.Execute(ctx, "Degauss", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, testutil.CollectAndCount(m.Commands))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.Commands.WithLabelValues(ResultUnknown, ResultUnknown)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Commands.WithLabelValues("Degauss", ResultOK)))
}

func TestShiftedCommand(t *testing.T) {
	s, w, obs := newSession(t)

	_, err := s.Execute(context.Background(), "16:9", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{protocol.Shift, protocol.Overscan169, protocol.Shift}, w.keys())
	assert.Equal(t, protocol.ISW, w.decoder.Bank())
	assert.Equal(t, 7, obs.frames)
	assert.Equal(t, []string{ResultOK}, obs.outcomes)
}

func TestPowerSelectsSwitchesFirst(t *testing.T) {
	s, w, _ := newSession(t)

	_, err := s.Execute(context.Background(), "Power", nil, nil)
	require.NoError(t, err)
	require.Len(t, w.frames, 2)
	assert.Equal(t, protocol.ISW, w.frames[0].Frame.Name)
	assert.Equal(t, protocol.Power, w.frames[1].Frame.Name)
}

func TestSimpleRejectsArguments(t *testing.T) {
	s, w, _ := newSession(t)

	_, err := s.Execute(context.Background(), "Up", []string{"3"}, nil)
	assert.Equal(t, ResultInvalid, Classify(err))
	assert.Zero(t, w.writes)
}

func TestEncoderInline(t *testing.T) {
	s, w, obs := newSession(t)

	_, err := s.Execute(context.Background(), "ContrastInc", []string{"-4"}, nil)
	require.NoError(t, err)

	var names []string
	for _, d := range w.frames {
		names = append(names, d.String())
	}
	assert.Equal(t, []string{protocol.IEN, protocol.ContrastEnc + " -4", protocol.ISW}, names)
	assert.Equal(t, -4, obs.ticks)
}

func TestEncoderPrompted(t *testing.T) {
	s, w, _ := newSession(t)
	a := answers{" 5 "}

	_, err := s.Execute(context.Background(), "BrightInc", nil, &a)
	require.NoError(t, err)
	require.Len(t, w.frames, 3)
	assert.Equal(t, 5, w.frames[1].Ticks)
	assert.Equal(t, protocol.BrightEnc, w.frames[1].Frame.Name)
}

func TestEncoderInvalidTicks(t *testing.T) {
	for _, arg := range []string{"32", "-33", "lots"} {
		s, w, _ := newSession(t)

		_, err := s.Execute(context.Background(), "PhaseInc", []string{arg}, nil)
		assert.Equal(t, ResultInvalid, Classify(err), arg)
		assert.Zero(t, w.writes, arg)
	}
}

func TestEncoderMissingTicksWithoutPrompter(t *testing.T) {
	s, w, _ := newSession(t)

	_, err := s.Execute(context.Background(), "ChromaInc", nil, nil)
	assert.ErrorIs(t, err, ErrNoPrompt)
	assert.Zero(t, w.writes)
}

func TestUpdateChannelName(t *testing.T) {
	s, w, _ := newSession(t)

	res, err := s.Execute(context.Background(), "UpdateChannelName", []string{"3", "a"}, nil)
	require.NoError(t, err)
	assert.Empty(t, res.Skipped)

	want := []string{protocol.Menu, protocol.Down, protocol.Down, protocol.Enter, protocol.Num3}
	for i := 0; i < 6; i++ {
		want = append(want, protocol.Down)
	}
	want = append(want, protocol.Enter, protocol.Up, protocol.Enter)
	want = append(want, protocol.Up, protocol.Enter, protocol.Enter)
	assert.Equal(t, want, w.keys())
}

func TestUpdateChannelNamePrompted(t *testing.T) {
	s, w, _ := newSession(t)
	a := answers{"1", "a?"}

	res, err := s.Execute(context.Background(), "UpdateChannelName", nil, &a)
	require.NoError(t, err)
	assert.Equal(t, []rune{'?'}, res.Skipped)
	assert.Contains(t, w.keys(), protocol.Num1)
}

func TestUpdateChannelNameRejectsBeforeSending(t *testing.T) {
	s, w, _ := newSession(t)
	a := answers{"should not be asked"}

	_, err := s.Execute(context.Background(), "UpdateChannelName", []string{"15"}, &a)

	var rangeErr *procedure.ChannelRangeError
	require.ErrorAs(t, err, &rangeErr)
	assert.Equal(t, ResultInvalid, Classify(err))
	assert.Zero(t, w.writes)
	assert.Len(t, a, 1)
}

func TestWriteTextCommand(t *testing.T) {
	s, w, _ := newSession(t)

	_, err := s.Execute(context.Background(), "WriteText", []string{" "}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{protocol.Down, protocol.Enter, protocol.Enter}, w.keys())
}

func TestTransportFailure(t *testing.T) {
	s, w, obs := newSession(t)
	w.err = errors.New("cable pulled")

	_, err := s.Execute(context.Background(), "Degauss", nil, nil)

	var txErr *transmitter.TransmitError
	require.ErrorAs(t, err, &txErr)
	assert.Equal(t, ResultFailed, Classify(err))
	assert.Equal(t, []string{ResultFailed}, obs.outcomes)
}

func TestCancelled(t *testing.T) {
	s, w, _ := newSession(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Execute(ctx, "Menu", nil, nil)
	assert.Equal(t, ResultCancelled, Classify(err))
	assert.Zero(t, w.writes)
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		line string
		name string
		args []string
	}{
		{"", "", nil},
		{"   ", "", nil},
		{"Menu", "Menu", nil},
		{"  Degauss  ", "Degauss", nil},
		{"PhaseInc  -3", "PhaseInc", []string{"-3"}},
		{"Warp  a  b", "Warp", []string{"a", "b"}},
		{"WriteText", "WriteText", nil},
		{"WriteText a  b ", "WriteText", []string{"a  b "}},
		{"WriteText  x", "WriteText", []string{" x"}},
		{"UpdateChannelName", "UpdateChannelName", nil},
		{"UpdateChannelName 3", "UpdateChannelName", []string{"3"}},
		{"UpdateChannelName  3 cam  one", "UpdateChannelName", []string{"3", "cam  one"}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			name, args := ParseLine(tt.line)
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.args, args)
		})
	}
}
