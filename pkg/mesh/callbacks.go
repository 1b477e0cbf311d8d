package mesh

import "errors"

// Observer is called once per iteration by the iterative algorithms
// (smoothing, remeshing) after the iteration's writes. Coordinate changes
// it makes are kept; it must not change topology.
type Observer interface {
	OnIteration(m *Mesh, k int)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(m *Mesh, k int)

// OnIteration calls fn(m, k).
func (fn ObserverFunc) OnIteration(m *Mesh, k int) { fn(m, k) }

// Report summarises one iteration for a Progress callback.
type Report struct {
	// Residual is the largest vertex displacement of the iteration, for the
	// algorithms that move vertices.
	Residual float64

	Splits    int
	Collapses int
	Swaps     int
	Inserted  int
}

// Changed reports whether the iteration altered topology.
func (r Report) Changed() bool {
	return r.Splits+r.Collapses+r.Swaps+r.Inserted > 0
}

// Progress is called once per iteration with the iteration index and a
// report. Returning Stop ends the algorithm at the iteration boundary with
// the mesh in a valid state; any other error aborts it and is returned to
// the caller.
type Progress func(k int, r Report) error

// Stop is returned by a Progress callback to end an algorithm early. It is
// not reported as an error.
var Stop = errors.New("mesh: stop requested")

// NotifyProgress calls p if it is set and sorts its result into stop (the
// caller asked to end) or err (abort).
func NotifyProgress(p Progress, k int, r Report) (stop bool, err error) {
	if p == nil {
		return false, nil
	}
	if err := p(k, r); err != nil {
		if errors.Is(err, Stop) {
			return true, nil
		}
		return true, err
	}
	return false, nil
}
