package element

import "github.com/nrogoz/mnasim/pkg/system"

// GateKind selects a logic gate's truth table.
type GateKind int

const (
	GateNOT GateKind = iota
	GateAND
	GateNAND
	GateOR
	GateNOR
	GateXOR
	GateXNOR
)

// LogicGate is a piecewise-linear logic inverter/gate: one input
// capacitance per input pin, and an output stage whose transconductance
// and equivalent current source are derived from whichever input (or,
// for XOR/XNOR, pair of inputs) dominates at the previous NR iterate.
type LogicGate struct {
	Base
	In   []int
	Out  int
	Kind GateKind
	V    float64 // supply voltage
	Cin  float64 // per-input capacitance
	Gain float64 // open-loop gain A
	R    float64 // output impedance

	inputCaps []*Capacitor
}

// NewLogicGate constructs a logic gate. in must have length 1 for NOT and
// length 2 for every other kind.
func NewLogicGate(name string, kind GateKind, in []int, out int, v, cin, gain, r float64) *LogicGate {
	g := &LogicGate{
		Base: NewBase(name), In: in, Out: out, Kind: kind,
		V: v, Cin: cin, Gain: gain, R: r,
	}
	for idx, node := range in {
		g.inputCaps = append(g.inputCaps, NewCapacitor(name+"_cin", node, 0, cin, 0))
		_ = idx
	}
	return g
}

func (g *LogicGate) Nonlinear() bool { return true }

// term is one (node, slope) contribution to the linearized output current.
type term struct {
	node int
	go_  float64
}

// transfer computes the linearized output stage: the control terms whose
// node voltages drive the output through transconductance Go/R, and the
// equivalent open-circuit output voltage vo for this segment.
func (g *LogicGate) transfer(st *system.State) (terms []term, vo float64) {
	vil := g.V/2 - g.V/(2*g.Gain)
	vih := g.V/2 + g.V/(2*g.Gain)

	v := func(node int) float64 {
		if node == 0 || st.XPrev == nil {
			return 0
		}
		return st.XPrev[node]
	}

	// linSeg returns the (slope, voSegment) pair for a single dominant
	// control node at voltage vin, inverting selecting the VTC sense.
	linSeg := func(vin float64, inverting bool) (float64, float64) {
		switch {
		case vin <= vil:
			if inverting {
				return 0, g.V
			}
			return 0, 0
		case vin >= vih:
			if inverting {
				return 0, 0
			}
			return 0, g.V
		default:
			slope := g.Gain
			if inverting {
				slope = -g.Gain
			}
			// Passes through (V/2, V/2).
			return slope, g.V/2 - slope*g.V/2
		}
	}

	switch g.Kind {
	case GateNOT:
		slope, vo := linSeg(v(g.In[0]), true)
		return []term{{g.In[0], slope}}, vo

	case GateAND, GateNAND:
		va, vb := v(g.In[0]), v(g.In[1])
		node, vin := g.In[0], va
		if vb < va {
			node, vin = g.In[1], vb
		}
		slope, vo := linSeg(vin, g.Kind == GateNAND)
		return []term{{node, slope}}, vo

	case GateOR, GateNOR:
		va, vb := v(g.In[0]), v(g.In[1])
		node, vin := g.In[0], va
		if vb > va {
			node, vin = g.In[1], vb
		}
		slope, vo := linSeg(vin, g.Kind == GateNOR)
		return []term{{node, slope}}, vo

	default: // GateXOR, GateXNOR
		sum := v(g.In[0]) + v(g.In[1])
		vil2 := g.V - g.V/g.Gain
		vih2 := g.V + g.V/g.Gain
		xnor := g.Kind == GateXNOR

		flatLow, flatHigh := 0.0, g.V
		if xnor {
			flatLow, flatHigh = g.V, 0.0
		}

		switch {
		case sum <= vil2:
			return []term{{g.In[0], 0}, {g.In[1], 0}}, flatLow
		case sum >= vih2:
			return []term{{g.In[0], 0}, {g.In[1], 0}}, flatLow
		case sum <= g.V:
			slope := g.Gain
			if xnor {
				slope = -g.Gain
			}
			vo := flatHigh - slope*g.V
			return []term{{g.In[0], slope}, {g.In[1], slope}}, vo
		default:
			slope := -g.Gain
			if xnor {
				slope = g.Gain
			}
			vo := flatHigh - slope*g.V
			return []term{{g.In[0], slope}, {g.In[1], slope}}, vo
		}
	}
}

func (g *LogicGate) Stamp(as *system.Assembler, st *system.State) error {
	for _, cap := range g.inputCaps {
		if err := cap.Stamp(as, st); err != nil {
			return err
		}
	}

	if st.Mode == system.ModeAC {
		// The piecewise-linear output stage has no Fourier formula; only
		// the input capacitances (stamped above, each a genuine Capacitor
		// with its own AC branch) contribute to a Fourier pass.
		return nil
	}

	terms, vo := g.transfer(st)

	if g.Out != 0 {
		as.AddA(g.Out, g.Out, 1/g.R)
		as.AddB(g.Out, vo/g.R)
	}
	for _, t := range terms {
		if g.Out != 0 && t.node != 0 {
			as.AddA(g.Out, t.node, -t.go_/g.R)
		}
	}
	return nil
}

func (g *LogicGate) UpdateState(x []float64, st *system.State) {
	for _, cap := range g.inputCaps {
		cap.UpdateState(x, st)
	}
}
