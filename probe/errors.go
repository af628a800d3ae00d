package probe

import "errors"

var (
	// ErrInsufficientPoints is returned when a reduction is given a
	// different number of contact points than its configuration
	// requires.
	ErrInsufficientPoints = errors.New("wrong number of contact points")

	// ErrParallelEdges is returned when two probed edges are parallel
	// within tolerance and no intersection exists. The operator must
	// re-probe with a different edge selection.
	ErrParallelEdges = errors.New("probed edges are parallel")

	// ErrProbeTimeout indicates the probe hardware did not report
	// contact in time.
	ErrProbeTimeout = errors.New("probe timed out awaiting contact")

	// ErrProbeAbort indicates the wait for contact was cancelled.
	ErrProbeAbort = errors.New("probe aborted")

	// ErrInvalidState is returned when an operation is driven out of
	// order; operations are one-shot and cannot be re-run.
	ErrInvalidState = errors.New("operation already executed")
)
