// Package stamp holds the stateless companion-model helpers shared by
// several element stamps. None of these are owned sub-objects; a BJT's
// Stamp calls the diode helper twice the same way a discrete Diode does.
package stamp

import "math"

// DiodeResult is the linearized companion model of a Shockley diode about
// a bias voltage deltaV: a conductance g and an equivalent current Id, both
// to be stamped with Assembler.Conductance / a current source from a to b.
type DiodeResult struct {
	G  float64
	Id float64
}

// Diode computes the Shockley companion model. firstGuess selects the 0.6 V
// bias used at (t=0, internal_step=0) before any NR iterate exists; after
// that, deltaV is the previous iterate's terminal voltage, clamped to at
// most 0.9 V to keep exp from overflowing for a poorly-conditioned guess.
func Diode(deltaV, is, vt float64, firstGuess bool) DiodeResult {
	dv := deltaV
	if firstGuess {
		dv = 0.6
	} else if dv > 0.9 {
		dv = 0.9
	}

	expArg := dv / vt
	ev := math.Exp(expArg)
	g := is * ev / vt
	id := is*(ev-1) - g*dv
	return DiodeResult{G: g, Id: id}
}

// Segment is one linear piece of a piecewise-linear breakpoint table.
type Segment struct {
	G  float64 // slope dI/dV
	I0 float64 // intercept: I = G*V + I0
}

// PWLSegment selects the linear segment containing deltaV from four
// breakpoints ordered V1<V2<V3<V4 by domain convention, and returns its
// slope and intercept. The piecewise-linear resistor is its caller; the
// logic gate computes its voltage-transfer segments separately.
func PWLSegment(deltaV, v1, i1, v2, i2, v3, i3, v4, i4 float64) Segment {
	var vPrev, iPrev, vNext, iNext float64
	switch {
	case deltaV <= v2:
		vPrev, iPrev, vNext, iNext = v1, i1, v2, i2
	case deltaV <= v3:
		vPrev, iPrev, vNext, iNext = v2, i2, v3, i3
	default:
		vPrev, iPrev, vNext, iNext = v3, i3, v4, i4
	}

	g := (iNext - iPrev) / (vNext - vPrev)
	i0 := iNext - g*vNext
	return Segment{G: g, I0: i0}
}

// MosfetRegion is the linearized companion model of a square-law MOSFET:
// drain current id (already offset-corrected for the NR linearization
// point) plus transconductance gm and output conductance gds.
type MosfetRegion struct {
	Id  float64
	Gm  float64
	Gds float64
}

// Mosfet computes the square-law companion model about (vgs, vds) for a
// device with transconductance coefficient k, geometry w/l, threshold vth,
// and channel-length-modulation lambda. The caller is responsible for
// mirroring signs for a P-channel device before calling this.
func Mosfet(vgs, vds, k, wOverL, vth, lambda float64) MosfetRegion {
	if vgs <= vth {
		return MosfetRegion{}
	}

	vov := vgs - vth
	if vds > vov {
		// Saturation.
		id := k * wOverL * vov * vov * (1 + lambda*vds)
		gm := k * wOverL * 2 * vov * (1 + lambda*vds)
		gds := k * wOverL * vov * vov * lambda
		return MosfetRegion{
			Id:  id - gm*vgs - gds*vds,
			Gm:  gm,
			Gds: gds,
		}
	}

	// Triode.
	id := k * wOverL * (2*vov*vds - vds*vds) * (1 + lambda*vds)
	gm := k * wOverL * 2 * vds * (1 + lambda*vds)
	gds := k*wOverL*(2*vov-2*vds)*(1+lambda*vds) + k*wOverL*(2*vov*vds-vds*vds)*lambda
	return MosfetRegion{
		Id:  id - gm*vgs - gds*vds,
		Gm:  gm,
		Gds: gds,
	}
}
