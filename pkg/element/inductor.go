package element

import "github.com/nrogoz/mnasim/pkg/system"

// Inductor claims one auxiliary branch carrying its current and stamps a
// companion resistance L/Δt (or jωL under Fourier) in series with an
// equivalent voltage source derived from its stored current i0.
type Inductor struct {
	Base
	A, B   int
	L      float64
	i0     float64 // stored state: branch current at the end of the last accepted step
	branch int
}

// NewInductor constructs an Inductor between nodes a and b with inductance
// l henries and initial condition ic amps.
func NewInductor(name string, a, b int, l, ic float64) *Inductor {
	return &Inductor{Base: NewBase(name), A: a, B: b, L: l, i0: ic}
}

func (l *Inductor) Nonlinear() bool { return false }

func (l *Inductor) Stamp(as *system.Assembler, st *system.State) error {
	jx := as.NextBranch()
	l.branch = jx

	if st.Mode == system.ModeAC {
		as.AddAComplex(l.A, jx, 1, 0)
		as.AddAComplex(l.B, jx, -1, 0)
		as.AddAComplex(jx, l.A, -1, 0)
		as.AddAComplex(jx, l.B, 1, 0)
		as.AddAComplex(jx, jx, 0, st.Omega*l.L)
		return nil
	}

	as.AddA(l.A, jx, 1)
	as.AddA(l.B, jx, -1)
	as.AddA(jx, l.A, -1)
	as.AddA(jx, l.B, 1)
	as.AddA(jx, jx, l.L/st.Step)
	as.AddB(jx, (l.L/st.Step)*l.i0)
	return nil
}

// UpdateState latches i0 ← x[jx], the auxiliary branch current of the
// accepted step.
func (l *Inductor) UpdateState(x []float64, st *system.State) {
	l.i0 = x[l.branch]
}

// BranchIndex returns the auxiliary branch claimed by the most recent
// Stamp call.
func (l *Inductor) BranchIndex() int { return l.branch }

// Current returns the last latched branch current.
func (l *Inductor) Current() float64 { return l.i0 }
