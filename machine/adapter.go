package machine

import (
	"io"

	"github.com/mastercactapus/probecnc/coord"
)

// ProbeResult is one contact report from the controller.
type ProbeResult struct {
	coord.Point
	Valid bool
}

// State is the controller status snapshot.
type State struct {
	Status string
	MPos   coord.Point
	WCO    coord.Point
}

// An Adapter represents the minimal CNC controller interface the
// probing cycles need.
type Adapter interface {
	Probes() []ProbeResult
	ResetProbes()

	State() chan State
	CurrentState() State

	WriteByte(byte) error
	Write([]byte) (int, error)
	ReadFrom(io.Reader) (int64, error)
}
