package probe

import (
	"github.com/mastercactapus/probecnc/coord"
	"github.com/mastercactapus/probecnc/gcode"
)

// Kind classifies a waypoint in a probing motion sequence.
type Kind int

const (
	// KindRapid is an absolute XY positioning move in machine
	// coordinates.
	KindRapid Kind = iota

	// KindPlunge is an absolute Z drop to probing depth.
	KindPlunge

	// KindProbe is a straight probe move toward Target; motion stops
	// at contact. Target is the maximum travel.
	KindProbe

	// KindRetract is a relative back-off move; Target holds the
	// offset, not an absolute position. Relative because the point it
	// starts from is wherever contact happened.
	KindRetract

	// KindClear is an absolute Z lift to a known safe height.
	KindClear

	// KindReturn is the final absolute XY move back to the cycle
	// start.
	KindReturn
)

// A Waypoint is one step of a planned probing sequence.
type Waypoint struct {
	Kind   Kind
	Target coord.Point

	// Feed applies to probe moves only.
	Feed float64
}

var (
	wG90 = gcode.Word{W: 'G', Arg: 90}
	wG91 = gcode.Word{W: 'G', Arg: 91}
	wG53 = gcode.Word{W: 'G', Arg: 53}
	wG0  = gcode.Word{W: 'G', Arg: 0}
)

// Block renders the waypoint as a gcode block. from is the machine
// position before the move; probe moves are emitted relative so the
// controller stops on contact without overshooting a stale absolute
// target.
func (w Waypoint) Block(from coord.Point) gcode.Block {
	switch w.Kind {
	case KindPlunge, KindClear:
		return gcode.Block{wG90, wG53, wG0, {W: 'Z', Arg: w.Target.Z}}
	case KindProbe:
		d := w.Target.Sub(from)
		b := gcode.Block{wG91, {W: 'G', Arg: 38.2}}
		if d.X != 0 {
			b = append(b, gcode.Word{W: 'X', Arg: d.X})
		}
		if d.Y != 0 {
			b = append(b, gcode.Word{W: 'Y', Arg: d.Y})
		}
		if d.Z != 0 {
			b = append(b, gcode.Word{W: 'Z', Arg: d.Z})
		}
		return append(b, gcode.Word{W: 'F', Arg: w.Feed})
	case KindRetract:
		b := gcode.Block{wG91, wG0}
		if w.Target.X != 0 {
			b = append(b, gcode.Word{W: 'X', Arg: w.Target.X})
		}
		if w.Target.Y != 0 {
			b = append(b, gcode.Word{W: 'Y', Arg: w.Target.Y})
		}
		if w.Target.Z != 0 {
			b = append(b, gcode.Word{W: 'Z', Arg: w.Target.Z})
		}
		return b
	}

	// rapid and return
	return gcode.Block{wG90, wG53, wG0,
		{W: 'X', Arg: w.Target.X},
		{W: 'Y', Arg: w.Target.Y},
	}
}

// apply advances the planned position past the waypoint. Probe moves
// advance to full travel; real contact lands short of that, but every
// later move commands the axes it depends on absolutely.
func (w Waypoint) apply(pos coord.Point) coord.Point {
	switch w.Kind {
	case KindRapid, KindReturn:
		pos.X = w.Target.X
		pos.Y = w.Target.Y
	case KindPlunge, KindClear:
		pos.Z = w.Target.Z
	case KindProbe:
		pos = w.Target
	case KindRetract:
		pos = pos.Add(w.Target)
	}
	return pos
}

// Program renders a waypoint sequence as gcode blocks, starting from
// the given machine position. The spindle is stopped first; probing
// must never run with the spindle on.
func Program(start coord.Point, wps []Waypoint) []gcode.Block {
	blocks := make([]gcode.Block, 0, len(wps)+1)
	blocks = append(blocks, gcode.Block{{W: 'M', Arg: 5}})

	pos := start
	for _, w := range wps {
		blocks = append(blocks, w.Block(pos))
		pos = w.apply(pos)
	}
	return blocks
}

// ProgramText renders a waypoint sequence as machine-control program
// text, one block per line.
func ProgramText(start coord.Point, wps []Waypoint) string {
	var sb []byte
	for _, b := range Program(start, wps) {
		sb = append(sb, b.String()...)
		sb = append(sb, '\n')
	}
	return string(sb)
}
