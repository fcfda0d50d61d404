// Package actuator models the propeller drivetrain: a first-order lag
// between commanded and actual speed, each side independent.
package actuator

type Propellers struct {
	TimeConst float64

	h float64
	n [2]float64
}

func NewPropellers(timeConst, sampleTime float64) *Propellers {
	return &Propellers{TimeConst: timeConst, h: sampleTime}
}

// Step relaxes the actual speeds toward the command one sample.
func (p *Propellers) Step(cmd [2]float64) {
	for i := range p.n {
		p.n[i] += p.h / p.TimeConst * (cmd[i] - p.n[i])
	}
}

func (p *Propellers) Speeds() [2]float64 { return p.n }

func (p *Propellers) Reset() { p.n = [2]float64{} }
