// Package sim provides a simulated controller adapter: motion is
// tracked by a gcode VM and probe moves contact a rectangular stock
// model. It backs tests and the -controller=sim mode.
package sim

import (
	"bytes"
	"io"
	"sync"

	"github.com/mastercactapus/probecnc/coord"
	"github.com/mastercactapus/probecnc/gcode"
	"github.com/mastercactapus/probecnc/machine"
)

// Stock is an axis-aligned solid box in machine coordinates.
type Stock struct {
	Min, Max coord.Point
}

// Contact returns where a straight move from from toward to first
// touches the stock. It reports false when the move misses entirely.
func (s Stock) Contact(from, to coord.Point) (coord.Point, bool) {
	d := to.Sub(from)
	tmin, tmax := 0.0, 1.0

	slab := func(lo, hi, f, dd float64) bool {
		if dd == 0 {
			return f >= lo && f <= hi
		}
		t1 := (lo - f) / dd
		t2 := (hi - f) / dd
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin = t1
		}
		if t2 < tmax {
			tmax = t2
		}
		return tmin <= tmax
	}

	if !slab(s.Min.X, s.Max.X, from.X, d.X) {
		return coord.Point{}, false
	}
	if !slab(s.Min.Y, s.Max.Y, from.Y, d.Y) {
		return coord.Point{}, false
	}
	if !slab(s.Min.Z, s.Max.Z, from.Z, d.Z) {
		return coord.Point{}, false
	}

	return from.Add(d.Mul(tmin)), true
}

// Adapter implements machine.Adapter against a Stock model.
type Adapter struct {
	mx     sync.Mutex
	vm     *gcode.VM
	stock  Stock
	probes []machine.ProbeResult
	state  chan machine.State
}

var _ machine.Adapter = (*Adapter)(nil)

// New creates a simulated controller with the tool at start.
func New(stock Stock, start coord.Point) *Adapter {
	vm := gcode.NewVM()
	vm.SetMPos(start)
	return &Adapter{
		vm:    vm,
		stock: stock,
		state: make(chan machine.State, 1),
	}
}

func (a *Adapter) Probes() []machine.ProbeResult {
	a.mx.Lock()
	defer a.mx.Unlock()
	out := make([]machine.ProbeResult, len(a.probes))
	copy(out, a.probes)
	return out
}

func (a *Adapter) ResetProbes() {
	a.mx.Lock()
	defer a.mx.Unlock()
	a.probes = nil
}

func (a *Adapter) State() chan machine.State { return a.state }

func (a *Adapter) CurrentState() machine.State {
	a.mx.Lock()
	defer a.mx.Unlock()
	return machine.State{Status: "Idle", MPos: a.vm.MPos(), WCO: a.vm.WCO()}
}

func (a *Adapter) pushState() {
	select {
	case a.state <- machine.State{Status: "Idle", MPos: a.vm.MPos(), WCO: a.vm.WCO()}:
	default:
	}
}

func (a *Adapter) run(b gcode.Block) error {
	if b.Has(gcode.Word{W: 'G', Arg: 38.2}) {
		target, err := a.vm.Target(b)
		if err != nil {
			return err
		}
		contact, ok := a.stock.Contact(a.vm.MPos(), target)
		if !ok {
			// full travel without contact
			if err = a.vm.Run(b); err != nil {
				return err
			}
			a.probes = append(a.probes, machine.ProbeResult{Point: target})
			return nil
		}
		// modal words still take effect even though motion stopped short
		var modal gcode.Block
		for _, w := range b {
			if !w.IsAxis() {
				modal = append(modal, w)
			}
		}
		if err = a.vm.Run(modal); err != nil {
			return err
		}
		a.vm.SetMPos(contact)
		a.probes = append(a.probes, machine.ProbeResult{Point: contact, Valid: true})
		return nil
	}
	return a.vm.Run(b)
}

// ReadFrom parses and executes a block stream, like feeding a program
// to the controller.
func (a *Adapter) ReadFrom(r io.Reader) (int64, error) {
	a.mx.Lock()
	defer a.mx.Unlock()

	p := gcode.NewParser(r)
	var n int64
	for {
		b, err := p.Read()
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		n += int64(len(b.String()) + 1)
		if err = a.run(b); err != nil {
			return n, err
		}
		a.pushState()
	}
}

func (a *Adapter) Write(p []byte) (int, error) {
	_, err := a.ReadFrom(bytes.NewReader(p))
	return len(p), err
}

// WriteByte accepts realtime commands and discards them; the
// simulator has no realtime state to report.
func (a *Adapter) WriteByte(byte) error { return nil }
