package element

import "github.com/nrogoz/mnasim/pkg/system"

// VoltageSource is an independent voltage source between nodes a and b. It
// claims one auxiliary branch carrying its current.
type VoltageSource struct {
	Base
	A, B   int
	Kind   SourceKind
	DC     float64
	Sin    SinParams
	Pulse  PulseParams
	PWL    PWLParams
	branch int
}

// NewDCVoltageSource constructs a constant-valued voltage source.
func NewDCVoltageSource(name string, a, b int, v float64) *VoltageSource {
	return &VoltageSource{Base: NewBase(name), A: a, B: b, Kind: DC, DC: v}
}

// NewSinVoltageSource constructs a sinusoidal voltage source.
func NewSinVoltageSource(name string, a, b int, p SinParams) *VoltageSource {
	return &VoltageSource{Base: NewBase(name), A: a, B: b, Kind: SIN, Sin: p, DC: p.Offset}
}

// NewPulseVoltageSource constructs a pulse voltage source.
func NewPulseVoltageSource(name string, a, b int, p PulseParams) *VoltageSource {
	return &VoltageSource{Base: NewBase(name), A: a, B: b, Kind: PULSE, Pulse: p, DC: p.A1}
}

// NewPWLVoltageSource constructs a piecewise-linear voltage source.
func NewPWLVoltageSource(name string, a, b int, p PWLParams) *VoltageSource {
	v0 := 0.0
	if len(p.Values) > 0 {
		v0 = p.Values[0]
	}
	return &VoltageSource{Base: NewBase(name), A: a, B: b, Kind: PWL, PWL: p, DC: v0}
}

func (v *VoltageSource) Nonlinear() bool { return false }

// Voltage returns v(t) for the given time and the current internal step
// size (needed only for a pulse with a zero rise/fall time).
func (v *VoltageSource) Voltage(t, step float64) float64 {
	switch v.Kind {
	case SIN:
		return v.Sin.Value(t)
	case PULSE:
		return v.Pulse.Value(t, step)
	case PWL:
		return v.PWL.Value(t)
	default:
		return v.DC
	}
}

func (v *VoltageSource) Stamp(as *system.Assembler, st *system.State) error {
	jx := as.NextBranch()
	v.branch = jx

	if st.Mode == system.ModeAC {
		as.AddAComplex(v.A, jx, 1, 0)
		as.AddAComplex(v.B, jx, -1, 0)
		as.AddAComplex(jx, v.A, -1, 0)
		as.AddAComplex(jx, v.B, 1, 0)
		as.AddBComplex(jx, -v.DC, 0)
		return nil
	}

	as.AddA(v.A, jx, 1)
	as.AddA(v.B, jx, -1)
	as.AddA(jx, v.A, -1)
	as.AddA(jx, v.B, 1)
	as.AddB(jx, -v.Voltage(st.Time, st.Step))
	return nil
}

// BranchIndex returns the auxiliary branch claimed by the most recent
// Stamp call.
func (v *VoltageSource) BranchIndex() int { return v.branch }
