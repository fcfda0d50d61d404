// Package allocation maps a desired generalized force (surge force,
// yaw moment) to individual propeller speed commands.
package allocation

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Allocator holds the inverse of the 2x2 mixing matrix B, computed
// once at setup. B maps the squared-speed thrust vector to
// [surge force; yaw moment].
type Allocator struct {
	b    *mat.Dense
	binv *mat.Dense
}

// ErrSingular reports a mixing matrix that cannot be inverted; this is
// a configuration error, detected before the first tick.
type ErrSingular struct {
	B [2][2]float64
}

func (e ErrSingular) Error() string {
	return fmt.Sprintf("allocation matrix %v is singular", e.B)
}

func New(b [2][2]float64) (*Allocator, error) {
	bm := mat.NewDense(2, 2, []float64{b[0][0], b[0][1], b[1][0], b[1][1]})
	var binv mat.Dense
	if err := binv.Inverse(bm); err != nil {
		return nil, ErrSingular{B: b}
	}
	return &Allocator{b: bm, binv: &binv}, nil
}

// Allocate solves B*thrust = [tauX; tauN] and converts each thrust
// component to a propeller speed through the signed square root: the
// magnitude goes through sqrt, the sign is reattached.
func (a *Allocator) Allocate(tauX, tauN float64) [2]float64 {
	th := a.Thrust(tauX, tauN)
	var n [2]float64
	for i, v := range th {
		n[i] = signedSqrt(v)
	}
	return n
}

// Thrust returns the pre-square-root intermediate solution.
func (a *Allocator) Thrust(tauX, tauN float64) [2]float64 {
	tau := mat.NewVecDense(2, []float64{tauX, tauN})
	var th mat.VecDense
	th.MulVec(a.binv, tau)
	return [2]float64{th.AtVec(0), th.AtVec(1)}
}

// Mix applies the forward mixing matrix; used to check round trips.
func (a *Allocator) Mix(thrust [2]float64) (tauX, tauN float64) {
	v := mat.NewVecDense(2, []float64{thrust[0], thrust[1]})
	var out mat.VecDense
	out.MulVec(a.b, v)
	return out.AtVec(0), out.AtVec(1)
}

func signedSqrt(v float64) float64 {
	if v < 0 {
		return -math.Sqrt(-v)
	}
	return math.Sqrt(v)
}
