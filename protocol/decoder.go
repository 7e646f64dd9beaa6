package protocol

import "fmt"

var (
	banksByBytes    = map[[FrameSize]byte]string{}
	keysByBytes     = map[[FrameSize]byte]string{}
	encodersByGroup = map[byte]string{}
)

func init() {
	for name, bs := range table {
		switch {
		case bs[0] == BankSelect:
			banksByBytes[bs] = name
		case IsEncoder(name):
			encodersByGroup[bs[1]] = name
		default:
			keysByBytes[bs] = name
		}
	}
}

// Decoded is a frame recovered from a byte stream.
type Decoded struct {
	Frame Frame
	// Bank is the bank selected when the frame was seen. For a bank select
	// frame it is the newly selected bank.
	Bank string
	// Known is false when the bytes match nothing in the vocabulary; Frame.Name
	// is empty then.
	Known bool
	// Encoder frames carry their decoded tick count.
	Encoder bool
	Ticks   int
}

func (d Decoded) String() string {
	switch {
	case !d.Known:
		return fmt.Sprintf("?? [% 02X] (bank %s)", d.Frame.Bytes[:], d.Bank)
	case d.Encoder:
		return fmt.Sprintf("%s %+d", d.Frame.Name, d.Ticks)
	default:
		return d.Frame.Name
	}
}

// Decoder turns a host-to-monitor byte stream back into frames. It follows
// bank selects so data frames sent under IEN decode as encoder turns rather
// than keys that share the same bytes.
type Decoder struct {
	bank    string
	buf     []byte
	skipped int
}

// NewDecoder returns a decoder that assumes the switches bank is selected.
func NewDecoder() *Decoder {
	return &Decoder{bank: ISW}
}

// Bank returns the bank currently in effect.
func (d *Decoder) Bank() string { return d.bank }

// Skipped returns the number of bytes dropped while resynchronising on a
// frame boundary.
func (d *Decoder) Skipped() int { return d.skipped }

// Feed appends p to the pending input and returns every complete frame.
func (d *Decoder) Feed(p []byte) []Decoded {
	d.buf = append(d.buf, p...)

	var out []Decoded
	i := 0
	for len(d.buf)-i > 0 {
		if b := d.buf[i]; b != BankSelect && b != KeyData {
			i++
			d.skipped++
			continue
		}
		if len(d.buf)-i < FrameSize {
			break
		}

		var bs [FrameSize]byte
		copy(bs[:], d.buf[i:i+FrameSize])
		i += FrameSize
		out = append(out, d.decode(bs))
	}

	d.buf = append(d.buf[:0], d.buf[i:]...)
	return out
}

func (d *Decoder) decode(bs [FrameSize]byte) Decoded {
	if bs[0] == BankSelect {
		name, ok := banksByBytes[bs]
		if ok {
			d.bank = name
		}
		return Decoded{Frame: Frame{Name: name, Bytes: bs}, Bank: d.bank, Known: ok}
	}

	if d.bank == IEN {
		name, ok := encodersByGroup[bs[1]]
		if !ok {
			return Decoded{Frame: Frame{Bytes: bs}, Bank: d.bank}
		}
		return Decoded{
			Frame:   Frame{Name: name, Bytes: bs},
			Bank:    d.bank,
			Known:   true,
			Encoder: true,
			Ticks:   DecodeDelta(bs[2]),
		}
	}

	name, ok := keysByBytes[bs]
	return Decoded{Frame: Frame{Name: name, Bytes: bs}, Bank: d.bank, Known: ok}
}
