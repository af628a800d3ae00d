package main

import (
	"net/http"
	"strings"

	"github.com/mastercactapus/probecnc/probe"
)

// choice pairs a wire value with its operator-facing label.
type choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// displayName turns a wire value like "bottom-left" into
// "Bottom Left".
func displayName(value string) string {
	words := strings.Split(value, "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func newChoice(value string) choice {
	return choice{Value: value, Label: displayName(value)}
}

// probeOptions lists the selectable cycle parameters so a UI can
// populate its pickers without hardcoding the enum values.
func (a *api) probeOptions(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, struct {
		Directions []choice `json:"directions"`
		Edges      []choice `json:"edges"`
		Corners    []choice `json:"corners"`
		Points     []int    `json:"points"`
	}{
		Directions: []choice{
			newChoice(probe.Inside.String()),
			newChoice(probe.Outside.String()),
		},
		Edges: []choice{
			newChoice(probe.Bottom.String()),
			newChoice(probe.Top.String()),
			newChoice(probe.Left.String()),
			newChoice(probe.Right.String()),
		},
		Corners: []choice{
			newChoice(probe.BottomLeft.String()),
			newChoice(probe.BottomRight.String()),
			newChoice(probe.TopLeft.String()),
			newChoice(probe.TopRight.String()),
		},
		Points: []int{2, 4},
	})
}
