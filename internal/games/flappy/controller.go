package flappy

// Observation is what a controller sees each tick.
type Observation struct {
	Y          float64 // Bird y
	DistTop    float64 // |y - gap top| of the relevant pipe
	DistBottom float64 // |y - gap bottom| of the relevant pipe
}

// Inputs returns the observation as a network input vector.
func (o Observation) Inputs() []float64 {
	return []float64{o.Y, o.DistTop, o.DistBottom}
}

// Controller decides whether its bird jumps. Outputs above the configured
// threshold trigger an impulse; anything else, NaN included, does not.
// An error eliminates the bird without aborting the episode.
type Controller interface {
	Act(obs Observation) (float64, error)
}

// ControllerFunc adapts a plain function to Controller.
type ControllerFunc func(obs Observation) (float64, error)

// Act calls f.
func (f ControllerFunc) Act(obs Observation) (float64, error) {
	return f(obs)
}

// FitnessSink receives every change of a bird's accumulated fitness, so its
// value is frozen at whatever the episode last wrote when the bird is
// eliminated or the episode stops.
type FitnessSink interface {
	SetFitness(f float64)
}

// Agent seeds one episode slot.
type Agent struct {
	Controller Controller
	Sink       FitnessSink // Optional
}
