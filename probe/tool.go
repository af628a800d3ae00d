package probe

// ToolType mirrors the tool-table classification the host CAM
// application keeps for each tool number.
type ToolType int

const (
	ToolCutter ToolType = iota
	ToolTouchProbe
)

// Tool carries the subset of tool-table data the probing cycles care
// about.
type Tool struct {
	Number       int
	Type         ToolType
	LengthOffset float64
}

// ToolLookup resolves a tool number against the host's tool table.
// It reports false when no such tool is defined.
type ToolLookup func(number int) (Tool, bool)

// FeedSource supplies the horizontal feed rate for probe moves,
// normally from the host's speed/feed configuration.
type FeedSource interface {
	HorizontalFeed() float64
}

// FeedRate adapts a plain value to the FeedSource interface.
type FeedRate float64

func (f FeedRate) HorizontalFeed() float64 { return float64(f) }
