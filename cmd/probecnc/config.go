package main

import (
	"errors"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/mastercactapus/probecnc/probe"
)

type toolConfig struct {
	Number       int     `toml:"number"`
	Type         string  `toml:"type"` // "cutter" or "touch-probe"
	LengthOffset float64 `toml:"length_offset"`
}

type config struct {
	FeedRate      float64      `toml:"feed_rate"`
	StartDistance float64      `toml:"start_distance"`
	Depth         float64      `toml:"depth"`
	Retract       float64      `toml:"retract"`
	Tools         []toolConfig `toml:"tools"`
}

func defaultConfig() config {
	return config{
		FeedRate:      25,
		StartDistance: probe.DefaultStartDistance,
		Depth:         probe.DefaultDepth,
		Retract:       probe.DefaultRetract,
	}
}

// loadConfig reads path if it exists; a missing file just means
// defaults.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	err = toml.Unmarshal(data, &cfg)
	return cfg, err
}

func (c config) toolLookup() probe.ToolLookup {
	return func(n int) (probe.Tool, bool) {
		for _, t := range c.Tools {
			if t.Number != n {
				continue
			}
			tool := probe.Tool{Number: t.Number, LengthOffset: t.LengthOffset}
			if t.Type == "touch-probe" {
				tool.Type = probe.ToolTouchProbe
			}
			return tool, true
		}
		return probe.Tool{}, false
	}
}

// runParams are per-request overrides of the configured motion
// parameters; zero fields keep the config values.
type runParams struct {
	ToolNumber    int     `json:"toolNumber"`
	Depth         float64 `json:"depth"`
	StartDistance float64 `json:"startDistance"`
	FeedRate      float64 `json:"feedRate"`
}

func (c config) buildRun(p runParams) probe.Run {
	run := probe.NewRun(p.ToolNumber, c.toolLookup(), probe.FeedRate(c.FeedRate))
	if c.StartDistance > 0 {
		run.StartDistance = c.StartDistance
	}
	// touch probes keep their derived depth; everything else gets
	// the configured one
	if tool, ok := c.toolLookup()(p.ToolNumber); (!ok || tool.Type != probe.ToolTouchProbe) && c.Depth > 0 {
		run.Depth = c.Depth
	}

	if p.Depth > 0 {
		run.Depth = p.Depth
	}
	if p.StartDistance > 0 {
		run.StartDistance = p.StartDistance
	}
	if p.FeedRate > 0 {
		run.FeedRate = p.FeedRate
	}
	return run
}
