package grbl

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mastercactapus/probecnc/coord"
	"github.com/mastercactapus/probecnc/machine"
)

func parseCoords(data string) (p coord.Point, err error) {
	parts := strings.Split(data, ",")
	if len(parts) != 3 {
		return p, fmt.Errorf("want 3 coordinates, got %d", len(parts))
	}
	p.X, err = strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return p, err
	}
	p.Y, err = strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return p, err
	}
	p.Z, err = strconv.ParseFloat(parts[2], 64)
	return p, err
}

// parseProbe handles push messages like `[PRB:1.000,2.000,-5.000:1]`.
func parseProbe(data string) (*machine.ProbeResult, error) {
	data = strings.TrimSpace(data)
	data = strings.TrimPrefix(data, "[")
	data = strings.TrimSuffix(data, "]")
	parts := strings.Split(data, ":")
	if parts[0] != "PRB" {
		return nil, errors.New("unknown PUSH message: " + data)
	}
	if len(parts) != 3 {
		return nil, errors.New("malformed PRB message: " + data)
	}

	var res machine.ProbeResult
	res.Valid = parts[2] == "1"
	var err error
	res.Point, err = parseCoords(parts[1])
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// parseStatus handles realtime reports like
// `<Idle|MPos:0.000,0.000,0.000|WCO:-10.000,0.000,-5.000>`.
//
// Fields absent from the report keep their value from stat; Grbl
// only includes WCO periodically.
func parseStatus(stat machine.State, data string) (*machine.State, error) {
	data = strings.TrimSpace(data)
	data = strings.TrimPrefix(data, "<")
	data = strings.TrimSuffix(data, ">")
	parts := strings.Split(data, "|")
	stat.Status = parts[0]
	var err error
	for _, s := range parts[1:] {
		sParts := strings.SplitN(s, ":", 2)
		switch sParts[0] {
		case "MPos":
			stat.MPos, err = parseCoords(sParts[1])
		case "WCO":
			stat.WCO, err = parseCoords(sParts[1])
		}
		if err != nil {
			return nil, err
		}
	}
	return &stat, nil
}
