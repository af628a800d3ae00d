package gcode

import (
	"errors"

	"github.com/mastercactapus/probecnc/coord"
)

// VM will track machine position and interpret gcode.
//
// It understands the subset of codes the probing cycles emit: rapids,
// linear moves, straight probes, machine-coordinate moves, and
// distance/unit mode switches.
type VM struct {
	pos coord.Point
	wco coord.Point

	modal [256]float64

	feed float64
}

// NewVM constructs a new VM with default state.
func NewVM() *VM {
	vm := &VM{}

	// using grbl defaults
	vm.modal[ModalGroupMotion] = 0
	vm.modal[ModalGroupCoordinateSystem] = 54
	vm.modal[ModalGroupPlaneSelection] = 17
	vm.modal[ModalGroupDistanceMode] = 90
	vm.modal[ModalGroupArcDistanceMode] = 91.1
	vm.modal[ModalGroupFeedRateMode] = 94
	vm.modal[ModalGroupUnits] = 21
	vm.modal[ModalGroupCutterCompensationMode] = 40
	vm.modal[ModalGroupToolLength] = 49
	vm.modal[ModalGroupStopping] = 0
	vm.modal[ModalGroupSpindle] = 5
	vm.modal[ModalGroupCoolant] = 9

	return vm
}

func (vm VM) Inches() bool         { return vm.modal[ModalGroupUnits] == 20 }
func (vm VM) RelativeMotion() bool { return vm.modal[ModalGroupDistanceMode] == 91 }

// Feed returns the last programmed feed rate.
func (vm VM) Feed() float64 { return vm.feed }

func (vm VM) WPos() coord.Point {
	return vm.pos.Sub(vm.wco)
}
func (vm VM) MPos() coord.Point {
	return vm.pos
}
func (vm *VM) SetMPos(p coord.Point) {
	vm.pos = p
}
func (vm *VM) SetWCO(p coord.Point) {
	vm.wco = p
}
func (vm VM) WCO() coord.Point {
	return vm.wco
}

func isSupported(g Word) bool {
	if g.IsAxis() {
		return true
	}

	if g.W == 'G' {
		switch g.Arg {
		case 0, 1, 38.2, 53, 91, 90, 92, 20, 21, 94:
			return true
		}
	} else if g.W == 'F' {
		return true
	} else if g.W == 'M' {
		switch g.Arg {
		case 0, 3, 5:
			return true
		}
	}

	return false
}

func applyBlock(p coord.Point, b Block, mul float64) coord.Point {
	for _, g := range b {
		switch g.W {
		case 'X':
			p.X = g.Arg * mul
		case 'Y':
			p.Y = g.Arg * mul
		case 'Z':
			p.Z = g.Arg * mul
		}
	}

	return p
}

// Target returns the machine position the block would end at,
// without updating VM state.
func (vm VM) Target(b Block) (coord.Point, error) {
	cp := vm
	err := cp.Run(b)
	if err != nil {
		return coord.Point{}, err
	}
	return cp.pos, nil
}

func (vm *VM) Run(b Block) error {
	err := b.Validate()
	if err != nil {
		return err
	}
	var machineCoords bool
	for _, g := range b {
		mg := g.ModalGroup()
		if mg != ModalGroupNone && mg != ModalGroupNonModal {
			vm.modal[mg] = g.Arg
		}
		if g.W == 'F' {
			vm.feed = g.Arg
		}
		if g == (Word{W: 'G', Arg: 53.0}) {
			machineCoords = true
		}
		if !isSupported(g) {
			return errors.New("unsupported code: " + g.String())
		}
	}

	args := b.Args()
	if len(args) == 0 {
		return nil
	}

	mul := 1.0
	if vm.Inches() {
		mul = 25.4
	}

	// G92 shifts the work offset so the current position reads as
	// the given values; no motion happens
	if b.Has(Word{W: 'G', Arg: 92}) {
		vm.wco = vm.pos.Sub(applyBlock(vm.WPos(), args, mul))
		return nil
	}

	// apply motion
	if vm.RelativeMotion() {
		vm.pos = vm.pos.Add(applyBlock(coord.Point{}, args, mul))
	} else if machineCoords {
		vm.pos = applyBlock(vm.pos, args, 1)
	} else {
		vm.pos = applyBlock(vm.WPos(), args, mul).Add(vm.wco)
	}

	return nil
}
