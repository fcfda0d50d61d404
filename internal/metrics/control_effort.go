package metrics

import (
	"math"

	"github.com/san-kum/usvsim/internal/marine"
)

// ControlEffort is the mean absolute yaw moment commanded over a run.
type ControlEffort struct {
	sum     float64
	samples int
}

func NewControlEffort() *ControlEffort {
	return &ControlEffort{}
}

func (c *ControlEffort) Name() string { return "control_effort" }

func (c *ControlEffort) Observe(tk marine.Tick) {
	c.sum += math.Abs(tk.YawMoment)
	c.samples++
}

func (c *ControlEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ControlEffort) Reset() {
	c.sum = 0
	c.samples = 0
}
