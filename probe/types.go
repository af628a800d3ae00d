package probe

import (
	"errors"
)

// Direction selects which way a probe move travels relative to the
// stock: Outside starts away from the part and probes in toward it,
// Inside starts within a bore or pocket and probes out toward the
// walls.
type Direction int

const (
	Inside Direction = iota
	Outside
)

var directionNames = map[Direction]string{
	Inside:  "inside",
	Outside: "outside",
}

func (d Direction) String() string { return directionNames[d] }

func (d Direction) MarshalText() ([]byte, error) {
	s, ok := directionNames[d]
	if !ok {
		return nil, errors.New("invalid probe direction")
	}
	return []byte(s), nil
}
func (d *Direction) UnmarshalText(data []byte) error {
	for v, s := range directionNames {
		if s == string(data) {
			*d = v
			return nil
		}
	}
	return errors.New("unknown probe direction: " + string(data))
}

// Edge identifies a single workpiece edge by its orientation on the
// machine table.
type Edge int

const (
	Bottom Edge = iota
	Top
	Left
	Right
)

var edgeNames = map[Edge]string{
	Bottom: "bottom",
	Top:    "top",
	Left:   "left",
	Right:  "right",
}

func (e Edge) String() string { return edgeNames[e] }

func (e Edge) MarshalText() ([]byte, error) {
	s, ok := edgeNames[e]
	if !ok {
		return nil, errors.New("invalid edge")
	}
	return []byte(s), nil
}
func (e *Edge) UnmarshalText(data []byte) error {
	for v, s := range edgeNames {
		if s == string(data) {
			*e = v
			return nil
		}
	}
	return errors.New("unknown edge: " + string(data))
}

// Corner identifies which two perpendicular edges meet when probing
// for a corner intersection.
type Corner int

const (
	BottomLeft Corner = iota
	BottomRight
	TopLeft
	TopRight
)

var cornerNames = map[Corner]string{
	BottomLeft:  "bottom-left",
	BottomRight: "bottom-right",
	TopLeft:     "top-left",
	TopRight:    "top-right",
}

func (c Corner) String() string { return cornerNames[c] }

func (c Corner) MarshalText() ([]byte, error) {
	s, ok := cornerNames[c]
	if !ok {
		return nil, errors.New("invalid corner")
	}
	return []byte(s), nil
}
func (c *Corner) UnmarshalText(data []byte) error {
	for v, s := range cornerNames {
		if s == string(data) {
			*c = v
			return nil
		}
	}
	return errors.New("unknown corner: " + string(data))
}

// Edges returns the two perpendicular edges that meet at the corner,
// in probing order.
func (c Corner) Edges() (Edge, Edge) {
	switch c {
	case BottomLeft:
		return Bottom, Left
	case BottomRight:
		return Bottom, Right
	case TopLeft:
		return Top, Left
	}
	return Top, Right
}
