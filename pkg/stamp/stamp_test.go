package stamp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiodeFirstGuessUsesPointSix(t *testing.T) {
	vt := 0.025852
	res := Diode(0, 1e-14, vt, true)
	assert.Greater(t, res.G, 0.0)
	assert.NotEqual(t, 0.0, res.Id)
}

func TestDiodeClampsAbovePointNineVolts(t *testing.T) {
	vt := 0.025852
	clamped := Diode(5.0, 1e-14, vt, false)
	atLimit := Diode(0.9, 1e-14, vt, false)
	assert.InDelta(t, atLimit.G, clamped.G, 1e-12)
	assert.InDelta(t, atLimit.Id, clamped.Id, 1e-12)
}

func TestPWLSegmentPicksBracketingBreakpoints(t *testing.T) {
	// A unit-slope PWL resistor through the origin on each segment.
	seg := PWLSegment(0.5, -1, -1, 0, 0, 1, 1, 2, 2)
	assert.InDelta(t, 1.0, seg.G, 1e-9)
	assert.InDelta(t, 0.0, seg.I0, 1e-9)

	seg = PWLSegment(1.5, -1, -1, 0, 0, 1, 1, 2, 2)
	assert.InDelta(t, 1.0, seg.G, 1e-9)
}

func TestMosfetCutoffIsZero(t *testing.T) {
	r := Mosfet(0, 1, 2e-5, 10, 1.0, 0)
	assert.Equal(t, MosfetRegion{}, r)
}

func TestMosfetSaturationMatchesSquareLaw(t *testing.T) {
	k, wOverL, vth, lambda := 2e-5, 10.0, 1.0, 0.0
	vgs, vds := 3.0, 5.0
	r := Mosfet(vgs, vds, k, wOverL, vth, lambda)

	vov := vgs - vth
	wantID := k * wOverL * vov * vov
	wantGm := k * wOverL * 2 * vov

	// Id returned is offset-corrected: Id_raw - Gm*vgs - Gds*vds.
	idRaw := r.Id + r.Gm*vgs + r.Gds*vds
	assert.InDelta(t, wantID, idRaw, 1e-9)
	assert.InDelta(t, wantGm, r.Gm, 1e-9)
}

func TestMosfetTriodeUsesWOverL(t *testing.T) {
	k, wOverL, vth, lambda := 2e-5, 10.0, 1.0, 0.0
	vgs, vds := 3.0, 0.5 // vds < vov=2, triode region
	r := Mosfet(vgs, vds, k, wOverL, vth, lambda)
	vov := vgs - vth
	idRaw := r.Id + r.Gm*vgs + r.Gds*vds
	wantID := k * wOverL * (2*vov*vds - vds*vds)
	assert.InDelta(t, wantID, idRaw, 1e-9)
	assert.False(t, math.IsNaN(r.Gds))
}
