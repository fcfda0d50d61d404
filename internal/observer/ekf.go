// Package observer provides the navigation filter: a 5-state extended
// Kalman filter estimating position, speed over ground, course, and
// course rate from decimated position fixes.
package observer

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/usvsim/internal/marine"
)

// Motion model (dead reckoning over ground):
//
//	xdot     = U cos(chi)
//	ydot     = U sin(chi)
//	Udot     = process noise
//	chidot   = omega
//	omegadot = process noise
//
// A position fix is ingested every Decimation-th call; the remaining
// calls are pure prediction.
type EKF struct {
	h          float64
	decimation int

	// process noise on the U and omega channels, measurement noise on
	// the position fix
	qd [2]float64
	rd [2]float64

	x    *mat.VecDense // [x y U chi omega]
	p    *mat.Dense
	tick int
}

const n = 5

// Config holds the filter tuning. All values are fixed for a run.
type Config struct {
	SampleTime    float64
	Decimation    int
	SpeedNoise    float64 // variance of the U random walk
	RateNoise     float64 // variance of the omega random walk
	PositionNoise float64 // variance of a position fix component
}

func New(cfg Config) *EKF {
	k := &EKF{
		h:          cfg.SampleTime,
		decimation: cfg.Decimation,
		qd:         [2]float64{cfg.SpeedNoise, cfg.RateNoise},
		rd:         [2]float64{cfg.PositionNoise, cfg.PositionNoise},
	}
	k.Reset()
	return k
}

// Reset clears the filter to its initial zero state. Required before
// every independent run; estimates never leak across runs.
func (k *EKF) Reset() {
	k.x = mat.NewVecDense(n, nil)
	k.p = mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		k.p.Set(i, i, 1.0)
	}
	k.tick = 0
}

// Update advances the filter one sample and returns the new estimate.
// The measurement is ingested only when the decimation counter fires;
// otherwise it is ignored and the filter predicts through.
func (k *EKF) Update(north, east float64) marine.Estimate {
	if k.decimation > 0 && k.tick%k.decimation == 0 {
		k.correct(north, east)
	}
	k.predict()
	k.tick++

	return marine.Estimate{
		North:      k.x.AtVec(0),
		East:       k.x.AtVec(1),
		Speed:      k.x.AtVec(2),
		Course:     k.x.AtVec(3),
		CourseRate: k.x.AtVec(4),
	}
}

func (k *EKF) correct(north, east float64) {
	// H picks the two position states
	hm := mat.NewDense(2, n, nil)
	hm.Set(0, 0, 1)
	hm.Set(1, 1, 1)

	// S = H P H^T + R
	var pht mat.Dense
	pht.Mul(k.p, hm.T())
	var s mat.Dense
	s.Mul(hm, &pht)
	s.Set(0, 0, s.At(0, 0)+k.rd[0])
	s.Set(1, 1, s.At(1, 1)+k.rd[1])

	// K = P H^T S^-1
	var gain mat.Dense
	if err := gain.Solve(s.T(), pht.T()); err != nil {
		// ill-conditioned innovation covariance: skip the correction
		return
	}
	km := gain.T()

	innov := mat.NewVecDense(2, []float64{
		north - k.x.AtVec(0),
		east - k.x.AtVec(1),
	})

	var dx mat.VecDense
	dx.MulVec(km, innov)
	k.x.AddVec(k.x, &dx)

	// Joseph form keeps P symmetric positive definite
	ikh := identity(n)
	var kh mat.Dense
	kh.Mul(km, hm)
	ikh.Sub(ikh, &kh)

	var tmp, pnew mat.Dense
	tmp.Mul(ikh, k.p)
	pnew.Mul(&tmp, ikh.T())

	var kr, krkt mat.Dense
	kr.Scale(1, km)
	kr.Apply(func(i, j int, v float64) float64 { return v * k.rd[j] }, &kr)
	krkt.Mul(&kr, km.T())
	pnew.Add(&pnew, &krkt)
	k.p.Copy(&pnew)
}

func (k *EKF) predict() {
	u := k.x.AtVec(2)
	chi := k.x.AtVec(3)
	omega := k.x.AtVec(4)
	sc, cc := math.Sin(chi), math.Cos(chi)

	// x(k+1) = x(k) + h f(x(k))
	k.x.SetVec(0, k.x.AtVec(0)+k.h*u*cc)
	k.x.SetVec(1, k.x.AtVec(1)+k.h*u*sc)
	k.x.SetVec(3, chi+k.h*omega)

	// A = I + h df/dx
	a := identity(n)
	a.Set(0, 2, k.h*cc)
	a.Set(0, 3, -k.h*u*sc)
	a.Set(1, 2, k.h*sc)
	a.Set(1, 3, k.h*u*cc)
	a.Set(3, 4, k.h)

	var ap, pnew mat.Dense
	ap.Mul(a, k.p)
	pnew.Mul(&ap, a.T())

	// noise enters through the U and omega channels
	pnew.Set(2, 2, pnew.At(2, 2)+k.h*k.qd[0])
	pnew.Set(4, 4, pnew.At(4, 4)+k.h*k.qd[1])
	k.p.Copy(&pnew)
}

func identity(dim int) *mat.Dense {
	m := mat.NewDense(dim, dim, nil)
	for i := 0; i < dim; i++ {
		m.Set(i, i, 1)
	}
	return m
}
