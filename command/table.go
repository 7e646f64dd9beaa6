package command

import "go.tigermatt.uk/bkm10r/protocol"

func keys(names ...string) Simple {
	frames := make([]protocol.Frame, len(names))
	for i, name := range names {
		frames[i] = protocol.MustLookup(name)
	}
	return Simple{Frames: frames}
}

func shifted(name string) Simple {
	return keys(protocol.Shift, name, protocol.Shift)
}

func switched(name string) Simple {
	s := keys(name)
	s.SelectSwitches = true
	return s
}

// Each dual-function key appears twice: the plain name sends the key, the
// secondary name sends it inside a shift bracket.
var commands = map[string]Instruction{
	"IEN": keys(protocol.IEN),
	"ISW": keys(protocol.ISW),
	"ILE": keys(protocol.ILE),
	"ICC": keys(protocol.ICC),
	"IMT": keys(protocol.IMT),

	"Overscan":  keys(protocol.Overscan169),
	"16:9":      shifted(protocol.Overscan169),
	"HorizSync": keys(protocol.HorizSyncSync),
	"Sync":      shifted(protocol.HorizSyncSync),
	"VertSync":  keys(protocol.VertSyncBlueOnly),
	"BlueOnly":  shifted(protocol.VertSyncBlueOnly),
	"Mono":      keys(protocol.MonoRed),
	"Red":       shifted(protocol.MonoRed),
	"Aperture":  keys(protocol.ApertureGreen),
	"Green":     shifted(protocol.ApertureGreen),
	"Comb":      keys(protocol.CombBlue),
	"Blue":      shifted(protocol.CombBlue),
	"F1":        keys(protocol.F1F3),
	"F3":        shifted(protocol.F1F3),
	"F2":        keys(protocol.F2F4),
	"F4":        shifted(protocol.F2F4),
	"SafeArea":  keys(protocol.SafeAreaAddr),
	"Address":   shifted(protocol.SafeAreaAddr),

	"Up":    keys(protocol.Up),
	"Down":  keys(protocol.Down),
	"Menu":  switched(protocol.Menu),
	"Enter": keys(protocol.Enter),

	"Num0":     keys(protocol.Num0),
	"Num1":     keys(protocol.Num1),
	"Num2":     keys(protocol.Num2),
	"Num3":     keys(protocol.Num3),
	"Num4":     keys(protocol.Num4),
	"Num5":     keys(protocol.Num5),
	"Num6":     keys(protocol.Num6),
	"Num7":     keys(protocol.Num7),
	"Num8":     keys(protocol.Num8),
	"Num9":     keys(protocol.Num9),
	"Delete":   keys(protocol.Del),
	"NumEnter": keys(protocol.Ent),

	"Power":   switched(protocol.Power),
	"Degauss": keys(protocol.Degauss),
	"Shift":   keys(protocol.Shift),

	"PhaseManual":    keys(protocol.PhaseManual),
	"ChromaManual":   keys(protocol.ChromaManual),
	"BrightManual":   keys(protocol.BrightManual),
	"ContrastManual": keys(protocol.ContrastManual),

	"PhaseInc":    EncoderOp{Encoder: protocol.PhaseEnc},
	"ChromaInc":   EncoderOp{Encoder: protocol.ChromaEnc},
	"BrightInc":   EncoderOp{Encoder: protocol.BrightEnc},
	"ContrastInc": EncoderOp{Encoder: protocol.ContrastEnc},

	"UpdateChannelName": Procedure{ID: UpdateChannelName},
	"WriteText":         Procedure{ID: WriteText},
}
