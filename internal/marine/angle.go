package marine

import "math"

// Wrap maps an angle in radians onto (-pi, pi]. Every angle difference
// fed to the controller or integral state goes through here; raw
// differences jump by 2*pi when crossing the +-pi seam.
func Wrap(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a <= 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}

// Deg2Rad converts degrees to radians.
func Deg2Rad(d float64) float64 { return d * math.Pi / 180 }

// Rad2Deg converts radians to degrees.
func Rad2Deg(r float64) float64 { return r * 180 / math.Pi }
