package protocol

import "fmt"

// Encoder delta range, in ticks. Four times the tick count must fit a
// signed byte.
const (
	MinTicks = -32
	MaxTicks = 31

	tickScale = 4
)

// DeltaRangeError is returned for tick counts outside [MinTicks, MaxTicks].
type DeltaRangeError struct {
	Ticks int
}

func (e *DeltaRangeError) Error() string {
	return fmt.Sprintf("encoder delta %d out of range: valid range is %d to %d", e.Ticks, MinTicks, MaxTicks)
}

// EncodeDelta converts a signed tick count to the delta byte of an encoder
// frame. Out of range values are rejected, never clamped.
func EncodeDelta(ticks int) (byte, error) {
	if ticks < MinTicks || ticks > MaxTicks {
		return 0, &DeltaRangeError{Ticks: ticks}
	}
	return byte((ticks * tickScale) & 0xFF), nil
}

// DecodeDelta is the inverse of EncodeDelta.
func DecodeDelta(b byte) int {
	return int(int8(b)) / tickScale
}

// EncoderFrame builds the frame that turns encoder by ticks. The first two
// bytes come from the encoder's table entry.
func EncoderFrame(encoder string, ticks int) (Frame, error) {
	if !IsEncoder(encoder) {
		return Frame{}, fmt.Errorf("%w: %q is not an encoder", ErrUnknownFrame, encoder)
	}
	delta, err := EncodeDelta(ticks)
	if err != nil {
		return Frame{}, err
	}
	base := table[encoder]
	return Frame{Name: encoder, Bytes: [FrameSize]byte{base[0], base[1], delta}}, nil
}
