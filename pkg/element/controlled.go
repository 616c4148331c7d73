package element

import "github.com/nrogoz/mnasim/pkg/system"

// VCVS is a voltage-controlled voltage source: out=(p,q), control=(r,s),
// gain Av. It claims one auxiliary branch.
type VCVS struct {
	Base
	P, Q, R, S int
	Gain       float64
	branch     int
}

// NewVCVS constructs a VCVS with output nodes (p,q), control nodes (r,s),
// and voltage gain av.
func NewVCVS(name string, p, q, r, s int, av float64) *VCVS {
	return &VCVS{Base: NewBase(name), P: p, Q: q, R: r, S: s, Gain: av}
}

func (e *VCVS) Nonlinear() bool { return false }

func (e *VCVS) Stamp(as *system.Assembler, st *system.State) error {
	jx := as.NextBranch()
	e.branch = jx

	if st.Mode == system.ModeAC {
		as.AddAComplex(e.P, jx, 1, 0)
		as.AddAComplex(e.Q, jx, -1, 0)
		as.AddAComplex(jx, e.P, -1, 0)
		as.AddAComplex(jx, e.Q, 1, 0)
		as.AddAComplex(jx, e.R, e.Gain, 0)
		as.AddAComplex(jx, e.S, -e.Gain, 0)
		return nil
	}

	as.AddA(e.P, jx, 1)
	as.AddA(e.Q, jx, -1)
	as.AddA(jx, e.P, -1)
	as.AddA(jx, e.Q, 1)
	as.AddA(jx, e.R, e.Gain)
	as.AddA(jx, e.S, -e.Gain)
	return nil
}

func (e *VCVS) BranchIndex() int { return e.branch }

// CCCS is a current-controlled current source: out=(p,q), control=(r,s),
// gain Ai. It claims one auxiliary branch through the control pair, which
// also forces the zero-volt ammeter needed to sense the controlling
// current.
type CCCS struct {
	Base
	P, Q, R, S int
	Gain       float64
	branch     int
}

// NewCCCS constructs a CCCS with output nodes (p,q), control nodes (r,s),
// and current gain ai.
func NewCCCS(name string, p, q, r, s int, ai float64) *CCCS {
	return &CCCS{Base: NewBase(name), P: p, Q: q, R: r, S: s, Gain: ai}
}

func (f *CCCS) Nonlinear() bool { return false }

func (f *CCCS) Stamp(as *system.Assembler, st *system.State) error {
	jx := as.NextBranch()
	f.branch = jx

	if st.Mode == system.ModeAC {
		as.AddAComplex(f.R, jx, 1, 0)
		as.AddAComplex(f.S, jx, -1, 0)
		as.AddAComplex(jx, f.R, -1, 0)
		as.AddAComplex(jx, f.S, 1, 0)
		as.AddAComplex(f.P, jx, f.Gain, 0)
		as.AddAComplex(f.Q, jx, -f.Gain, 0)
		return nil
	}

	as.AddA(f.R, jx, 1)
	as.AddA(f.S, jx, -1)
	as.AddA(jx, f.R, -1)
	as.AddA(jx, f.S, 1)
	as.AddA(f.P, jx, f.Gain)
	as.AddA(f.Q, jx, -f.Gain)
	return nil
}

func (f *CCCS) BranchIndex() int { return f.branch }

// VCCS is a voltage-controlled current source: out=(p,q), control=(r,s),
// transconductance Gm. No auxiliary branch is claimed.
type VCCS struct {
	Base
	P, Q, R, S int
	Gm         float64
}

// NewVCCS constructs a VCCS with output nodes (p,q), control nodes (r,s),
// and transconductance gm.
func NewVCCS(name string, p, q, r, s int, gm float64) *VCCS {
	return &VCCS{Base: NewBase(name), P: p, Q: q, R: r, S: s, Gm: gm}
}

func (g *VCCS) Nonlinear() bool { return false }

func (g *VCCS) Stamp(as *system.Assembler, st *system.State) error {
	if st.Mode == system.ModeAC {
		as.TransconductanceComplex(g.P, g.Q, g.R, g.S, g.Gm, 0)
		return nil
	}
	as.Transconductance(g.P, g.Q, g.R, g.S, g.Gm)
	return nil
}

// CCVS is a current-controlled voltage source: out=(p,q), control=(r,s),
// transresistance Rm. It claims two auxiliary branches: jx for the output
// port, jy for the zero-volt ammeter sensing the control current.
type CCVS struct {
	Base
	P, Q, R, S int
	Rm         float64
	jx, jy     int
}

// NewCCVS constructs a CCVS with output nodes (p,q), control nodes (r,s),
// and transresistance rm.
func NewCCVS(name string, p, q, r, s int, rm float64) *CCVS {
	return &CCVS{Base: NewBase(name), P: p, Q: q, R: r, S: s, Rm: rm}
}

func (h *CCVS) Nonlinear() bool { return false }

func (h *CCVS) Stamp(as *system.Assembler, st *system.State) error {
	jx := as.NextBranch()
	jy := as.NextBranch()
	h.jx, h.jy = jx, jy

	if st.Mode == system.ModeAC {
		as.AddAComplex(h.P, jx, 1, 0)
		as.AddAComplex(h.Q, jx, -1, 0)
		as.AddAComplex(h.R, jy, 1, 0)
		as.AddAComplex(h.S, jy, -1, 0)
		as.AddAComplex(jx, h.R, -1, 0)
		as.AddAComplex(jx, h.S, 1, 0)
		as.AddAComplex(jy, h.R, -1, 0)
		as.AddAComplex(jy, h.S, 1, 0)
		as.AddAComplex(jx, jy, h.Rm, 0)
		return nil
	}

	as.AddA(h.P, jx, 1)
	as.AddA(h.Q, jx, -1)
	as.AddA(h.R, jy, 1)
	as.AddA(h.S, jy, -1)
	as.AddA(jx, h.R, -1)
	as.AddA(jx, h.S, 1)
	as.AddA(jy, h.R, -1)
	as.AddA(jy, h.S, 1)
	as.AddA(jx, jy, h.Rm)
	return nil
}

func (h *CCVS) BranchIndices() (jx, jy int) { return h.jx, h.jy }
