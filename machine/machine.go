package machine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mastercactapus/probecnc/coord"
	"github.com/mastercactapus/probecnc/gcode"
	"github.com/mastercactapus/probecnc/probe"
)

// DefaultContactTimeout bounds the wait for probe contacts when the
// caller supplies no deadline of its own.
const DefaultContactTimeout = 30 * time.Second

var errNotIdle = errors.New("machine not idle")

// Machine drives probing cycles against a controller Adapter. It
// allows at most one cycle in flight; machine motion is serial.
type Machine struct {
	Adapter

	holdMessage chan string
	cycleMx     sync.Mutex
}

func NewMachine(a Adapter) *Machine {
	return &Machine{
		Adapter:     a,
		holdMessage: make(chan string),
	}
}

// HoldMessage delivers operator prompts raised during feed holds.
func (m *Machine) HoldMessage() chan string {
	return m.holdMessage
}

func (m *Machine) runBlocks(ctx context.Context, b []gcode.Block) error {
	done := make(chan error, 1)
	go func() {
		_, err := m.Adapter.ReadFrom(gcode.NewBuffer(&gcode.BlocksReader{Blocks: b}))
		done <- err
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}

func (m *Machine) hold(message string) error {
	m.holdMessage <- message
	_, err := m.Adapter.Write([]byte("M0\n"))
	m.holdMessage <- "-"
	return err
}

// HoldForProbe feed-holds the machine and prompts the operator to
// attach the touch probe.
func (m *Machine) HoldForProbe() error {
	return m.hold("Attach touch probe to spindle.")
}

var _ probe.Executor = (*Machine)(nil)

// Move executes a single non-probing waypoint.
func (m *Machine) Move(ctx context.Context, wp probe.Waypoint) error {
	from := m.CurrentState().MPos
	return m.runBlocks(ctx, []gcode.Block{wp.Block(from)})
}

// ProbeMove executes a probe waypoint and returns the contact point
// reported by the controller.
func (m *Machine) ProbeMove(ctx context.Context, wp probe.Waypoint) (coord.Point, error) {
	m.ResetProbes()
	from := m.CurrentState().MPos
	if err := m.runBlocks(ctx, []gcode.Block{wp.Block(from)}); err != nil {
		return coord.Point{}, err
	}

	probes := m.Probes()
	if len(probes) == 0 {
		return coord.Point{}, fmt.Errorf("no probe data returned: %w", probe.ErrProbeAbort)
	}
	last := probes[len(probes)-1]
	if !last.Valid {
		return coord.Point{}, fmt.Errorf("probe did not make contact: %w", probe.ErrProbeAbort)
	}
	return last.Point, nil
}

func (m *Machine) begin(ctx context.Context) (context.Context, context.CancelFunc, coord.Point, error) {
	stat := m.CurrentState()
	if stat.Status != "Idle" && stat.Status != "Hold:0" {
		return nil, nil, coord.Point{}, errNotIdle
	}
	if _, ok := ctx.Deadline(); !ok {
		ctx, cancel := context.WithTimeout(ctx, DefaultContactTimeout)
		return ctx, cancel, stat.MPos, nil
	}
	return ctx, func() {}, stat.MPos, nil
}

// ProbeCentre runs a centre-probing cycle from the current position
// and returns the reduced result.
func (m *Machine) ProbeCentre(ctx context.Context, opt probe.CentreOptions, run probe.Run) (*probe.Result, error) {
	m.cycleMx.Lock()
	defer m.cycleMx.Unlock()

	op, err := probe.NewCentreOperation(opt, run)
	if err != nil {
		return nil, err
	}
	ctx, cancel, pos, err := m.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()
	res, err := op.Execute(ctx, m, pos)
	if err != nil {
		return nil, err
	}
	if opt.MoveToResult {
		if err = m.moveOver(ctx, res.Point); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// moveOver rapids the tool over the derived point, keeping the
// current height, so the operator can zero there.
func (m *Machine) moveOver(ctx context.Context, p coord.Point) error {
	return m.Move(ctx, probe.Waypoint{Kind: probe.KindReturn, Target: p})
}

// ProbeEdge runs an edge-probing cycle from the current position and
// returns the reduced result.
func (m *Machine) ProbeEdge(ctx context.Context, opt probe.EdgeOptions, run probe.Run) (*probe.Result, error) {
	m.cycleMx.Lock()
	defer m.cycleMx.Unlock()

	op, err := probe.NewEdgeOperation(opt, run)
	if err != nil {
		return nil, err
	}
	ctx, cancel, pos, err := m.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()
	res, err := op.Execute(ctx, m, pos)
	if err != nil {
		return nil, err
	}
	if opt.MoveToResult {
		if err = m.moveOver(ctx, res.Point); err != nil {
			return nil, err
		}
	}
	return res, nil
}
