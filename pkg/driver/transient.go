// Package driver runs a circuit through time (transient) or across
// frequency (AC), turning Step Assembler solves into a result table.
package driver

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/nrogoz/mnasim/pkg/circuit"
	"github.com/nrogoz/mnasim/pkg/result"
	"github.com/nrogoz/mnasim/pkg/simerr"
	"github.com/nrogoz/mnasim/pkg/system"
	"gonum.org/v1/gonum/floats"
)

// TranOptions configures one transient run. Multiplier subdivides each
// outer step into that many internal steps; zero or negative means 1.
type TranOptions struct {
	End        float64
	Step       float64
	Method     system.Method
	Multiplier int
	UseIC      bool
	Temp       float64 // Kelvin; 0 lets each element default to room temperature

	// NRCap bounds Newton-Raphson iterations per internal step (default 20).
	NRCap int
	// GuessCap bounds how many random restarts a non-converging internal
	// step may attempt before the run aborts (default 100).
	GuessCap int
	// Tolerance is the NR convergence threshold on the solution delta's
	// infinity norm (default 1e-9).
	Tolerance float64
	// WarmupFactor divides the first internal step further by this much
	// (default 1e9), so reactive companion models start from a
	// near-instantaneous step rather than a full internal step.
	WarmupFactor float64

	// Rand seeds the random-guess generator; nil uses a PCG source with the
	// fixed seed (1, 2), so repeated runs draw the same guesses.
	Rand *rand.Rand
}

func (o *TranOptions) fillDefaults() {
	if o.Multiplier <= 0 {
		o.Multiplier = 1
	}
	if o.NRCap <= 0 {
		o.NRCap = 20
	}
	if o.GuessCap <= 0 {
		o.GuessCap = 100
	}
	if o.Tolerance <= 0 {
		o.Tolerance = 1e-9
	}
	if o.WarmupFactor <= 0 {
		o.WarmupFactor = 1e9
	}
}

// RunTransient steps c from t=0 to opts.End, appending one sample per outer
// step (not per internal sub-step) to the returned table.
func RunTransient(c *circuit.Circuit, opts TranOptions) (*result.Table, error) {
	opts.fillDefaults()

	size := c.MaxSystemSize()
	as := system.NewAssembler(size)
	tbl := result.New()

	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(1, 2))
	}

	// xPrev is the last accepted solution. A linear circuit's elements read
	// it as st.XPrev at the next step; a nonlinear circuit starts each
	// step's Newton-Raphson loop from a random guess instead.
	var xPrev []float64

	t := 0.0
	internalStep := 0
	outerStep := opts.Step / float64(opts.Multiplier)

	appendSample := func() {
		tbl.Append("t", t)
		for name, idx := range c.NodeNames() {
			v := 0.0
			if xPrev != nil && idx < len(xPrev) {
				v = xPrev[idx]
			}
			tbl.Append(name, v)
		}
		sample := func(idx int, name string) {
			v := 0.0
			if xPrev != nil && idx < len(xPrev) {
				v = xPrev[idx]
			}
			tbl.Append("J"+fmt.Sprint(idx)+name, v)
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

	for t <= opts.End {
		// The first internal step of the whole run is a warm-up: it uses a
		// much smaller Δt so companion-model history terms start from a
		// near-instantaneous transition rather than a full step.
		step := outerStep
		if t == 0 && internalStep == 0 {
			step = outerStep / opts.WarmupFactor
		}

		st := &system.State{
			Time: t, Step: step, InternalStep: internalStep,
			Mode: system.ModeTransient, Method: opts.Method, Temp: opts.Temp,
		}

		x, err := solveStep(c, as, st, xPrev, opts, rng)
		if err != nil {
			return tbl, err
		}

		xPrev = x
		st.XPrev = x
		c.UpdateState(x, st)

		internalStep++
		if internalStep >= opts.Multiplier {
			appendSample()
			t += opts.Step
			internalStep = 0
		}
	}

	return tbl, nil
}

// solveStep runs the Newton-Raphson inner loop for one internal step,
// restarting from a fresh random guess whenever it fails to converge or the
// reduced matrix is singular, and aborting with ErrImpossibleSolution once
// opts.GuessCap restarts have been exhausted.
func solveStep(c *circuit.Circuit, as *system.Assembler, st *system.State, xPrev []float64, opts TranOptions, rng *rand.Rand) ([]float64, error) {
	if !c.HasNonlinear() {
		as.Reset(c.NumNodes())
		st.XPrev = xPrev
		if err := c.Stamp(as, st); err != nil {
			return nil, err
		}
		return as.Solve()
	}

	guess := randomGuess(rng, as.Size())

	for attempt := 0; attempt < opts.GuessCap; attempt++ {
		x, converged, err := newtonRaphson(c, as, st, guess, opts)
		if err == nil && converged {
			return x, nil
		}
		guess = randomGuess(rng, as.Size())
	}

	return nil, fmt.Errorf("at t=%g: %w", st.Time, simerr.ErrImpossibleSolution)
}

func newtonRaphson(c *circuit.Circuit, as *system.Assembler, st *system.State, guess []float64, opts TranOptions) ([]float64, bool, error) {
	x := guess
	for iter := 0; iter < opts.NRCap; iter++ {
		as.Reset(c.NumNodes())
		st.XPrev = x
		if err := c.Stamp(as, st); err != nil {
			return nil, false, err
		}
		next, err := as.Solve()
		if err != nil {
			return nil, false, err
		}
		if delta(next, x) < opts.Tolerance {
			return next, true, nil
		}
		x = next
	}
	return x, false, nil
}

// delta reports the infinity norm of a-b, the NR convergence metric.
// a and b may differ in length across NR iterations (the reduced system's
// size depends on branches claimed during stamping), so it compares only
// the common prefix.
func delta(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	return floats.Distance(a[:n], b[:n], math.Inf(1))
}

// randomGuess builds the initial Newton-Raphson iterate: every entry drawn
// uniformly from [1, 101), ground (index 0) pinned at zero, since the
// solver has no other principled starting point for a nonlinear circuit.
func randomGuess(rng *rand.Rand, size int) []float64 {
	x := make([]float64, size)
	for i := 1; i < size; i++ {
		x[i] = 1 + rng.Float64()*100
	}
	return x
}
