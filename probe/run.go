package probe

import (
	"errors"
)

// Defaults applied by NewRun, in mm.
const (
	DefaultDepth         = 10.0
	DefaultStartDistance = 50.0
	DefaultRetract       = 5.0
)

// A Run holds the motion parameters shared by all probing cycles.
// It is built once per operation and not changed after the operator
// commits it.
type Run struct {
	// Depth is how far to drop below the starting position before
	// probing inwards.
	Depth float64

	// StartDistance is how far outward to travel before dropping down
	// and probing back in. It also sets the spacing between the two
	// touches of an edge probe.
	StartDistance float64

	// FeedRate is the horizontal probing feed.
	FeedRate float64

	ToolNumber int
}

// NewRun builds a Run for the given tool with defaults applied.
//
// If the tool number resolves to a touch probe, half the probe's
// length offset is used as the plunge depth so the stylus, not the
// shank, makes contact.
func NewRun(toolNumber int, lookup ToolLookup, feed FeedSource) Run {
	run := Run{
		Depth:         DefaultDepth,
		StartDistance: DefaultStartDistance,
		ToolNumber:    toolNumber,
	}
	if feed != nil {
		run.FeedRate = feed.HorizontalFeed()
	}
	if lookup != nil {
		if tool, ok := lookup(toolNumber); ok && tool.Type == ToolTouchProbe {
			run.Depth = tool.LengthOffset / 2
		}
	}
	return run
}

func (r Run) Validate() error {
	if r.StartDistance <= 0 {
		return errors.New("start distance must be positive")
	}
	if r.Depth < 0 {
		return errors.New("depth cannot be negative")
	}
	if r.FeedRate <= 0 {
		return errors.New("feed rate must be positive")
	}
	return nil
}
