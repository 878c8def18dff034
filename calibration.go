package templog

// Linear maps an infrared reading onto the reference thermocouple scale.
type Linear struct {
	A float64
	B float64
}

// DefaultCalibration was fitted against the radiator thermocouple.
var DefaultCalibration = Linear{
	A: 1.3573018709524816,
	B: -2.314821772480257,
}

// Apply returns A*x + B.
func (l Linear) Apply(x float64) float64 {
	return l.A*x + l.B
}
