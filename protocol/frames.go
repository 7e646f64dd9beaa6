package protocol

import (
	"errors"
	"fmt"
	"sort"
)

// FrameSize is the length of every frame on the link.
const FrameSize = 3

// Leading byte of each frame family.
const (
	BankSelect byte = 0x49
	KeyData    byte = 0x44
)

// Bank selectors.
const (
	IEN = "IEN" // encoders
	ISW = "ISW" // switches
	ILE = "ILE" // LEDs
	ICC = "ICC"
	IMT = "IMT"
)

// Keys.
const (
	Shift            = "SHIFT"
	Overscan169      = "OVERSCAN_16_9"
	HorizSyncSync    = "HORIZSYNC_SYNC"
	VertSyncBlueOnly = "VERTSYNC_BLUEONLY"
	MonoRed          = "MONO_RED"
	ApertureGreen    = "APT_GREEN"
	CombBlue         = "COMB_BLUE"
	F1F3             = "F1_F3"
	F2F4             = "F2_F4"
	SafeAreaAddr     = "SAFEAREA_ADDR"

	Up    = "UP"
	Down  = "DOWN"
	Menu  = "MENU"
	Enter = "ENTER"

	PhaseManual    = "PHASE_M"
	ChromaManual   = "CHROMA_M"
	BrightManual   = "BRIGHT_M"
	ContrastManual = "CONTRAST_M"

	Num0 = "NUM0"
	Num1 = "NUM1"
	Num2 = "NUM2"
	Num3 = "NUM3"
	Num4 = "NUM4"
	Num5 = "NUM5"
	Num6 = "NUM6"
	Num7 = "NUM7"
	Num8 = "NUM8"
	Num9 = "NUM9"
	Del  = "DEL"
	Ent  = "ENT"

	Power   = "POWER"
	Degauss = "DEGAUSS"
)

// Encoders. The third byte of their table entry is a placeholder that is
// replaced by the delta when sent.
const (
	PhaseEnc    = "PHASE_ENC"
	ChromaEnc   = "CHROMA_ENC"
	BrightEnc   = "BRIGHT_ENC"
	ContrastEnc = "CONTRAST_ENC"
)

// ErrUnknownFrame is returned by Lookup for names outside the vocabulary.
var ErrUnknownFrame = errors.New("unknown frame")

var table = map[string][FrameSize]byte{
	IEN: {0x49, 0x45, 0x4E},
	ISW: {0x49, 0x53, 0x57},
	ILE: {0x49, 0x4C, 0x45},
	ICC: {0x49, 0x43, 0x43},
	IMT: {0x49, 0x4D, 0x54},

	Shift:            {0x44, 0x03, 0x01},
	Overscan169:      {0x44, 0x03, 0x02},
	HorizSyncSync:    {0x44, 0x03, 0x04},
	VertSyncBlueOnly: {0x44, 0x03, 0x08},
	MonoRed:          {0x44, 0x03, 0x10},
	ApertureGreen:    {0x44, 0x04, 0x01},
	CombBlue:         {0x44, 0x04, 0x02},
	F1F3:             {0x44, 0x04, 0x04},
	F2F4:             {0x44, 0x04, 0x08},
	SafeAreaAddr:     {0x44, 0x04, 0x10},

	Up:    {0x44, 0x02, 0x40},
	Down:  {0x44, 0x02, 0x80},
	Menu:  {0x44, 0x02, 0x10},
	Enter: {0x44, 0x02, 0x20},

	PhaseManual:    {0x44, 0x02, 0x08},
	ChromaManual:   {0x44, 0x02, 0x04},
	BrightManual:   {0x44, 0x02, 0x02},
	ContrastManual: {0x44, 0x02, 0x01},

	Num0: {0x44, 0x00, 0x01},
	Num1: {0x44, 0x00, 0x02},
	Num2: {0x44, 0x00, 0x04},
	Num3: {0x44, 0x00, 0x08},
	Num4: {0x44, 0x00, 0x10},
	Num5: {0x44, 0x00, 0x20},
	Num6: {0x44, 0x00, 0x40},
	Num7: {0x44, 0x00, 0x80},
	Num8: {0x44, 0x01, 0x01},
	Num9: {0x44, 0x01, 0x02},
	Del:  {0x44, 0x01, 0x04},
	Ent:  {0x44, 0x01, 0x08},

	Power:   {0x44, 0x01, 0x10},
	Degauss: {0x44, 0x01, 0x20},

	PhaseEnc:    {0x44, 0x03, 0x04},
	ChromaEnc:   {0x44, 0x02, 0x04},
	BrightEnc:   {0x44, 0x01, 0x04},
	ContrastEnc: {0x44, 0x00, 0x04},
}

var encoders = map[string]struct{}{
	PhaseEnc:    {},
	ChromaEnc:   {},
	BrightEnc:   {},
	ContrastEnc: {},
}

var numKeys = [10]string{Num0, Num1, Num2, Num3, Num4, Num5, Num6, Num7, Num8, Num9}

// Frame is one named 3-byte unit of the link.
type Frame struct {
	Name  string
	Bytes [FrameSize]byte
}

// Data returns the frame as a byte slice ready to write.
func (f Frame) Data() []byte {
	b := f.Bytes
	return b[:]
}

// IsBankSelect reports whether the frame selects a register bank.
func (f Frame) IsBankSelect() bool {
	return f.Bytes[0] == BankSelect
}

func (f Frame) String() string {
	return fmt.Sprintf("%s [% 02X]", f.Name, f.Bytes[:])
}

// Lookup returns the frame registered under name.
func Lookup(name string) (Frame, error) {
	bs, ok := table[name]
	if !ok {
		return Frame{}, fmt.Errorf("%w: %q", ErrUnknownFrame, name)
	}
	return Frame{Name: name, Bytes: bs}, nil
}

// MustLookup is like Lookup but panics on an unknown name. It is meant for
// package-level tables built from the constants above.
func MustLookup(name string) Frame {
	f, err := Lookup(name)
	if err != nil {
		panic(err)
	}
	return f
}

// Names lists every frame name in sorted order.
func Names() []string {
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsEncoder reports whether name identifies a rotary encoder.
func IsEncoder(name string) bool {
	_, ok := encoders[name]
	return ok
}

// NumKey returns the keypad frame name for digit d.
func NumKey(d int) (string, bool) {
	if d < 0 || d >= len(numKeys) {
		return "", false
	}
	return numKeys[d], true
}
