package driver

import (
	"fmt"
	"math"

	"github.com/nrogoz/mnasim/pkg/circuit"
	"github.com/nrogoz/mnasim/pkg/result"
	"github.com/nrogoz/mnasim/pkg/system"
)

// ACOptions configures one small-signal frequency sweep. Scale is carried
// for round-trip fidelity only: the sweep always samples logarithmically
// regardless of its value, matching the known behavior of the reference
// sweep generator, which reads this token but never branches on it.
type ACOptions struct {
	Scale          string
	StepsPerDecade int
	FStart, FEnd   float64
	Temp           float64
}

// RunAC stamps c's Fourier capability over a logarithmic frequency grid
// from FStart to FEnd, recording magnitude in decibels and phase in degrees
// for every node and branch quantity. No DC operating point is solved
// first: nonlinear elements (diode, BJT, MOSFET, PWL resistor, a logic
// gate's output stage) stamp nothing under ModeAC.
func RunAC(c *circuit.Circuit, opts ACOptions) (*result.Table, error) {
	if opts.StepsPerDecade <= 0 {
		opts.StepsPerDecade = 10
	}
	if opts.FStart <= 0 || opts.FEnd <= 0 || opts.FEnd < opts.FStart {
		return nil, fmt.Errorf("invalid AC sweep range [%g, %g]", opts.FStart, opts.FEnd)
	}

	size := c.MaxSystemSize()
	as := system.NewAssembler(size)
	tbl := result.New()

	decades := math.Log10(opts.FEnd / opts.FStart)
	n := int(math.Round(decades * float64(opts.StepsPerDecade)))
	if n < 1 {
		n = 1
	}

	for i := 0; i <= n; i++ {
		frac := float64(i) / float64(n)
		freq := opts.FStart * math.Pow(opts.FEnd/opts.FStart, frac)
		omega := 2 * math.Pi * freq

		st := &system.State{
			Mode: system.ModeAC, Omega: omega, Temp: opts.Temp,
		}

		as.Reset(c.NumNodes())
		if err := c.Stamp(as, st); err != nil {
			return tbl, fmt.Errorf("stamping at f=%g Hz: %w", freq, err)
		}
		x, err := as.SolveComplex()
		if err != nil {
			return tbl, fmt.Errorf("solving at f=%g Hz: %w", freq, err)
		}

		tbl.Append("freq", freq)
		for name, idx := range c.NodeNames() {
			v := complex(0, 0)
			if idx < len(x) {
				v = x[idx]
			}
			tbl.AppendComplex(name, v)
		}

		sample := func(idx int, name string) {
			v := complex(0, 0)
			if idx < len(x) {
				v = x[idx]
			}
			tbl.AppendComplex("J"+fmt.Sprint(idx)+name, v)
		}
		for _, e := range c.Elements() {
			switch br := e.(type) {
			case interface{ BranchIndices() (int, int) }:
				jx, jy := br.BranchIndices()
				sample(jx, e.Name())
				sample(jy, e.Name())
			case interface{ BranchIndex() int }:
				sample(br.BranchIndex(), e.Name())
			}
		}
	}

	return tbl, nil
}
