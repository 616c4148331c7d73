package element

import (
	"github.com/nrogoz/mnasim/internal/consts"
	"github.com/nrogoz/mnasim/pkg/stamp"
	"github.com/nrogoz/mnasim/pkg/system"
)

// Diode is a Shockley diode, linearized about the previous NR iterate. It
// claims no auxiliary branch.
type Diode struct {
	Base
	A, B int
	IS   float64
	N    float64 // emission coefficient
}

// NewDiode constructs a diode between anode a and cathode b with
// saturation current is and emission coefficient n.
func NewDiode(name string, a, b int, is, n float64) *Diode {
	if n == 0 {
		n = 1
	}
	return &Diode{Base: NewBase(name), A: a, B: b, IS: is, N: n}
}

func (d *Diode) Nonlinear() bool { return true }

// thermalVoltage returns N*Vt at the given temperature, defaulting to
// room temperature when the caller leaves Temp unset (st.Temp == 0).
func (d *Diode) thermalVoltage(temp float64) float64 {
	if temp == 0 {
		temp = consts.TNOM
	}
	return d.N * consts.ThermalVoltage(temp)
}

func (d *Diode) Stamp(as *system.Assembler, st *system.State) error {
	if st.Mode == system.ModeAC {
		// No Fourier formula: a diode's small-signal AC behavior depends on
		// a DC operating point this driver never solves for, so the
		// capability is a no-op rather than a wrong guess.
		return nil
	}

	vt := d.thermalVoltage(st.Temp)
	firstGuess := st.Time == 0 && st.InternalStep == 0

	deltaV := 0.0
	if !firstGuess {
		va, vb := 0.0, 0.0
		if d.A != 0 {
			va = st.XPrev[d.A]
		}
		if d.B != 0 {
			vb = st.XPrev[d.B]
		}
		deltaV = va - vb
	}

	res := stamp.Diode(deltaV, d.IS, vt, firstGuess)
	as.Conductance(d.A, d.B, res.G)
	as.CurrentSource(d.A, d.B, res.Id)
	return nil
}
