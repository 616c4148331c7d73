package element

import "github.com/nrogoz/mnasim/pkg/system"

// OpAmp is the ideal op-amp: an infinite-gain nullator/norator pair
// realized with one auxiliary branch that enforces V(p) = V(q) while
// letting the output current float.
type OpAmp struct {
	Base
	P, Q, Out int
	branch    int
}

// NewOpAmp constructs an ideal op-amp with non-inverting input p,
// inverting input q, and output node out.
func NewOpAmp(name string, p, q, out int) *OpAmp {
	return &OpAmp{Base: NewBase(name), P: p, Q: q, Out: out}
}

func (o *OpAmp) Nonlinear() bool { return false }

func (o *OpAmp) Stamp(as *system.Assembler, st *system.State) error {
	jx := as.NextBranch()
	o.branch = jx

	if st.Mode == system.ModeAC {
		as.AddAComplex(o.Out, jx, 1, 0)
		as.AddAComplex(0, jx, -1, 0)
		as.AddAComplex(jx, o.P, -1, 0)
		as.AddAComplex(jx, o.Q, 1, 0)
		return nil
	}

	as.AddA(o.Out, jx, 1)
	as.AddA(0, jx, -1)
	as.AddA(jx, o.P, -1)
	as.AddA(jx, o.Q, 1)
	return nil
}

// BranchIndex returns the auxiliary branch claimed by the most recent
// Stamp call.
func (o *OpAmp) BranchIndex() int { return o.branch }

// FiniteGainOpAmp synthesizes a realistic op-amp from an input resistance
// Rin, a voltage-controlled voltage source of gain A, an output resistance
// Rout, and an output capacitance C. It holds one Resistor, VCVS, Resistor
// and Capacitor as fields and its Stamp calls each of their Stamp methods
// in turn, the same ones those standalone elements use.
type FiniteGainOpAmp struct {
	Base
	P, Q, Out int
	Rin       float64
	Gain      float64
	Rout      float64
	Cout      float64

	internal int // synthetic internal node between the VCVS and Rout/Cout

	rin   *Resistor
	vcvs  *VCVS
	rout  *Resistor
	cout  *Capacitor
}

// NewFiniteGainOpAmp constructs a finite-gain op-amp. internalNode must be
// a node index private to this element (allocated by the circuit builder),
// used as the VCVS's output before Rout/Cout to the real output pin.
func NewFiniteGainOpAmp(name string, p, q, out, internalNode int, rin, gain, rout, cout float64) *FiniteGainOpAmp {
	f := &FiniteGainOpAmp{
		Base: NewBase(name), P: p, Q: q, Out: out,
		Rin: rin, Gain: gain, Rout: rout, Cout: cout,
		internal: internalNode,
	}
	f.rin = NewResistor(name+"_rin", p, q, rin)
	f.vcvs = NewVCVS(name+"_gain", internalNode, 0, p, q, gain)
	f.rout = NewResistor(name+"_rout", internalNode, out, rout)
	f.cout = NewCapacitor(name+"_cout", out, 0, cout, 0)
	return f
}

func (f *FiniteGainOpAmp) Nonlinear() bool { return false }

func (f *FiniteGainOpAmp) Stamp(as *system.Assembler, st *system.State) error {
	if err := f.rin.Stamp(as, st); err != nil {
		return err
	}
	if err := f.vcvs.Stamp(as, st); err != nil {
		return err
	}
	if err := f.rout.Stamp(as, st); err != nil {
		return err
	}
	return f.cout.Stamp(as, st)
}

func (f *FiniteGainOpAmp) UpdateState(x []float64, st *system.State) {
	f.cout.UpdateState(x, st)
}
