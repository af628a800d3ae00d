// Command probecheck runs a generated probing program through an
// independent gcode interpreter and dumps the resulting machine
// state. Useful for eyeballing a program before sending it to a real
// controller.
package main

import (
	"flag"
	"io"
	"log"
	"os"
	"strings"

	"github.com/joushou/gocnc/gcode"
	"github.com/joushou/gocnc/vm"

	"github.com/mastercactapus/probecnc/coord"
	"github.com/mastercactapus/probecnc/probe"
)

func main() {
	log.SetFlags(log.Lshortfile)

	file := flag.String("f", "", "Program file to check; - or empty for stdin.")
	flag.Parse()

	var data []byte
	var err error
	if *file == "" || *file == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(*file)
	}
	if err != nil {
		log.Fatalf("ERROR: read program: %+v", err)
	}

	program := strings.TrimSpace(string(data))
	if program == "" {
		// no input: check a sample centre-probing program instead
		program = sampleProgram()
	}

	doc, err := gcode.Parse(program)
	if err != nil {
		log.Fatalf("ERROR: parse: %+v", err)
	}

	var m vm.Machine
	m.Init()
	m.Process(doc)
	m.Dump()
}

func sampleProgram() string {
	run := probe.Run{
		Depth:         probe.DefaultDepth,
		StartDistance: probe.DefaultStartDistance,
		FeedRate:      25,
	}
	pos := coord.Point{X: 100, Y: 50, Z: 10}
	wps, err := probe.PlanCentre(probe.CentreOptions{Direction: probe.Outside, Points: 4}, run, pos)
	if err != nil {
		log.Fatalf("ERROR: plan: %+v", err)
	}
	return probe.ProgramText(pos, wps)
}
