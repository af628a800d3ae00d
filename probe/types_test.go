package probe

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnumText_RoundTrip(t *testing.T) {
	for _, d := range []Direction{Inside, Outside} {
		data, err := d.MarshalText()
		require.NoError(t, err)
		var got Direction
		require.NoError(t, got.UnmarshalText(data))
		assert.Equal(t, d, got)
	}
	for _, e := range []Edge{Bottom, Top, Left, Right} {
		data, err := e.MarshalText()
		require.NoError(t, err)
		var got Edge
		require.NoError(t, got.UnmarshalText(data))
		assert.Equal(t, e, got)
	}
	for _, c := range []Corner{BottomLeft, BottomRight, TopLeft, TopRight} {
		data, err := c.MarshalText()
		require.NoError(t, err)
		var got Corner
		require.NoError(t, got.UnmarshalText(data))
		assert.Equal(t, c, got)
	}
}

func TestEnumText_Unknown(t *testing.T) {
	var d Direction
	assert.Error(t, d.UnmarshalText([]byte("sideways")))

	_, err := Corner(42).MarshalText()
	assert.Error(t, err)
}

func TestOptions_JSONRoundTrip(t *testing.T) {
	centre := CentreOptions{Direction: Inside, Points: 4}
	data, err := json.Marshal(centre)
	require.NoError(t, err)
	var gotCentre CentreOptions
	require.NoError(t, json.Unmarshal(data, &gotCentre))
	assert.Equal(t, centre, gotCentre)

	edge := EdgeOptions{Retract: 2.5, Edges: 2, Corner: TopRight, Edge: Left, ParallelTol: 0.01}
	data, err = json.Marshal(edge)
	require.NoError(t, err)
	var gotEdge EdgeOptions
	require.NoError(t, json.Unmarshal(data, &gotEdge))
	assert.Equal(t, edge, gotEdge)

	run := Run{Depth: 7.5, StartDistance: 42, FeedRate: 30, ToolNumber: 3}
	data, err = json.Marshal(run)
	require.NoError(t, err)
	var gotRun Run
	require.NoError(t, json.Unmarshal(data, &gotRun))
	assert.Equal(t, run, gotRun)
}

func TestCorner_Edges(t *testing.T) {
	a, b := BottomLeft.Edges()
	assert.Equal(t, Bottom, a)
	assert.Equal(t, Left, b)

	a, b = TopRight.Edges()
	assert.Equal(t, Top, a)
	assert.Equal(t, Right, b)
}
