package probe

import (
	"errors"
	"math"

	"github.com/mastercactapus/probecnc/coord"
)

// SurfaceOptions configure a grid survey of the stock top: straight
// Z probes on a serpentine grid covering DistanceX by DistanceY from
// the start position.
type SurfaceOptions struct {
	DistanceX, DistanceY float64

	// Granularity is the max spacing between neighbouring grid
	// points.
	Granularity float64

	// MaxTravel is how far down a probe move may go before it is
	// considered a miss.
	MaxTravel float64
}

func (opt SurfaceOptions) Validate() error {
	if opt.DistanceX <= 0 || opt.DistanceY <= 0 {
		return errors.New("grid distances must be positive")
	}
	if opt.Granularity <= 0 {
		return errors.New("granularity must be positive")
	}
	if opt.MaxTravel <= 0 {
		return errors.New("max travel must be positive")
	}
	return nil
}

// GridPoints returns the number of probe touches the survey takes.
func (opt SurfaceOptions) GridPoints() int {
	xCount, yCount := opt.counts()
	return (xCount + 1) * (yCount + 1)
}

func (opt SurfaceOptions) counts() (x, y int) {
	xyDist := math.Sqrt(opt.Granularity * opt.Granularity / 2)
	return int(math.Ceil(opt.DistanceX / xyDist)), int(math.Ceil(opt.DistanceY / xyDist))
}

// PlanSurface produces the waypoint sequence for a surface survey
// starting at pos: for each grid point, rapid over, probe down, lift
// back to the start height. Rows alternate direction so travel stays
// short.
func PlanSurface(opt SurfaceOptions, run Run, pos coord.Point) ([]Waypoint, error) {
	if err := opt.Validate(); err != nil {
		return nil, err
	}
	if err := run.Validate(); err != nil {
		return nil, err
	}

	xCount, yCount := opt.counts()
	wps := make([]Waypoint, 0, 3*(xCount+1)*(yCount+1)+1)

	for y := 0; y <= yCount; y++ {
		for x := 0; x <= xCount; x++ {
			xVal := opt.DistanceX / float64(xCount) * float64(x)
			if y%2 != 0 {
				xVal = opt.DistanceX - xVal
			}
			at := coord.Point{
				X: pos.X + xVal,
				Y: pos.Y + opt.DistanceY/float64(yCount)*float64(y),
				Z: pos.Z,
			}
			wps = append(wps,
				Waypoint{Kind: KindRapid, Target: at},
				Waypoint{Kind: KindProbe, Target: coord.Point{X: at.X, Y: at.Y, Z: pos.Z - opt.MaxTravel}, Feed: run.FeedRate},
				Waypoint{Kind: KindClear, Target: coord.Point{Z: pos.Z}},
			)
		}
	}

	return append(wps, Waypoint{Kind: KindReturn, Target: pos}), nil
}
