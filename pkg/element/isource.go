package element

import "github.com/nrogoz/mnasim/pkg/system"

// CurrentSource is an independent current source flowing from node a to
// node b. No auxiliary branch is claimed.
type CurrentSource struct {
	Base
	A, B  int
	Kind  SourceKind
	DC    float64
	Sin   SinParams
	Pulse PulseParams
	PWL   PWLParams
}

// NewDCCurrentSource constructs a constant-valued current source.
func NewDCCurrentSource(name string, a, b int, i float64) *CurrentSource {
	return &CurrentSource{Base: NewBase(name), A: a, B: b, Kind: DC, DC: i}
}

// NewSinCurrentSource constructs a sinusoidal current source.
func NewSinCurrentSource(name string, a, b int, p SinParams) *CurrentSource {
	return &CurrentSource{Base: NewBase(name), A: a, B: b, Kind: SIN, Sin: p, DC: p.Offset}
}

// NewPulseCurrentSource constructs a pulse current source.
func NewPulseCurrentSource(name string, a, b int, p PulseParams) *CurrentSource {
	return &CurrentSource{Base: NewBase(name), A: a, B: b, Kind: PULSE, Pulse: p, DC: p.A1}
}

// NewPWLCurrentSource constructs a piecewise-linear current source.
func NewPWLCurrentSource(name string, a, b int, p PWLParams) *CurrentSource {
	v0 := 0.0
	if len(p.Values) > 0 {
		v0 = p.Values[0]
	}
	return &CurrentSource{Base: NewBase(name), A: a, B: b, Kind: PWL, PWL: p, DC: v0}
}

func (i *CurrentSource) Nonlinear() bool { return false }

// Current returns I(t) for the given time and internal step size.
func (i *CurrentSource) Current(t, step float64) float64 {
	switch i.Kind {
	case SIN:
		return i.Sin.Value(t)
	case PULSE:
		return i.Pulse.Value(t, step)
	case PWL:
		return i.PWL.Value(t)
	default:
		return i.DC
	}
}

func (i *CurrentSource) Stamp(as *system.Assembler, st *system.State) error {
	if st.Mode == system.ModeAC {
		as.AddBComplex(i.A, -i.DC, 0)
		as.AddBComplex(i.B, i.DC, 0)
		return nil
	}

	val := i.Current(st.Time, st.Step)
	as.CurrentSource(i.A, i.B, val)
	return nil
}
