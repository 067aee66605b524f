package interpolator

// Interpolator maps a shared input value to a shared output value. Compute
// reads the current input, updates the output and returns it.
type Interpolator interface {
	SetInput(input *float64)
	Output() *float64
	Compute() float64
}

// Point is a sample of the interpolated function.
type Point struct {
	X float64
	Y float64
}

type base struct {
	input  *float64
	output *float64
}

func newBase(input *float64) base {
	if input == nil {
		input = new(float64)
	}
	return base{input: input, output: new(float64)}
}

func (b *base) SetInput(input *float64) { b.input = input }

// Output returns the shared output handle. It stays valid for the lifetime
// of the interpolator.
func (b *base) Output() *float64 { return b.output }
