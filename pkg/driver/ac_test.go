package driver

import (
	"math"
	"testing"

	"github.com/nrogoz/mnasim/pkg/circuit"
	"github.com/nrogoz/mnasim/pkg/element"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestACSweepOfRCLowPassRollsOff(t *testing.T) {
	c := circuit.New("rc-ac")
	n1 := c.Node("1")
	gnd := c.Node("0")
	c.Add(element.NewDCVoltageSource("V1", n1, gnd, 1))
	n2 := c.Node("2")
	c.Add(element.NewResistor("R1", n1, n2, 1000))
	c.Add(element.NewCapacitor("C1", n2, gnd, 1e-7, 0))

	tbl, err := RunAC(c, ACOptions{Scale: "DEC", StepsPerDecade: 10, FStart: 10, FEnd: 100e3})
	require.NoError(t, err)

	freqs, ok := tbl.Column("freq")
	require.True(t, ok)
	require.True(t, sortedAscending(freqs))

	db, ok := tbl.Column("2_DB")
	require.True(t, ok)
	// Low frequency: near 0 dB (pass-band). High frequency: well attenuated.
	assert.Greater(t, db[0], -1.0)
	assert.Less(t, db[len(db)-1], -20.0)
}

func TestACSweepOfRCMatchesCornerFrequency(t *testing.T) {
	c := circuit.New("rc-corner")
	n1 := c.Node("1")
	gnd := c.Node("0")
	c.Add(element.NewDCVoltageSource("V1", n1, gnd, 1))
	n2 := c.Node("2")
	c.Add(element.NewResistor("R1", n1, n2, 1000))
	c.Add(element.NewCapacitor("C1", n2, gnd, 1e-6, 0))

	tbl, err := RunAC(c, ACOptions{Scale: "DEC", StepsPerDecade: 10, FStart: 1, FEnd: 10e3})
	require.NoError(t, err)

	freqs, _ := tbl.Column("freq")
	db, _ := tbl.Column("2_DB")
	phase, _ := tbl.Column("2_PHASE")

	best, bestDist := 0, math.Inf(1)
	for i, f := range freqs {
		d := math.Abs(f - 159.0)
		if d < bestDist {
			bestDist, best = d, i
		}
	}
	assert.InDelta(t, -3.0, db[best], 0.3)
	assert.InDelta(t, -45.0, phase[best], 2.0)
}

// TestACSweepIgnoresNonlinearElements covers the no-op Fourier capability:
// a diode dangling across the RC low-pass's output node must not perturb
// the AC result at all, since it has no Fourier formula to contribute.
func TestACSweepIgnoresNonlinearElements(t *testing.T) {
	build := func(withDiode bool) *circuit.Circuit {
		c := circuit.New("rc-ac-diode")
		n1 := c.Node("1")
		gnd := c.Node("0")
		c.Add(element.NewDCVoltageSource("V1", n1, gnd, 1))
		n2 := c.Node("2")
		c.Add(element.NewResistor("R1", n1, n2, 1000))
		c.Add(element.NewCapacitor("C1", n2, gnd, 1e-7, 0))
		if withDiode {
			c.Add(element.NewDiode("D1", n2, gnd, 1e-14, 1))
		}
		return c
	}

	opts := ACOptions{Scale: "DEC", StepsPerDecade: 10, FStart: 10, FEnd: 100e3}
	plain, err := RunAC(build(false), opts)
	require.NoError(t, err)
	withDiode, err := RunAC(build(true), opts)
	require.NoError(t, err)

	wantDB, _ := plain.Column("2_DB")
	gotDB, _ := withDiode.Column("2_DB")
	wantPhase, _ := plain.Column("2_PHASE")
	gotPhase, _ := withDiode.Column("2_PHASE")

	require.Equal(t, len(wantDB), len(gotDB))
	for i := range wantDB {
		assert.InDelta(t, wantDB[i], gotDB[i], 1e-9)
		assert.InDelta(t, wantPhase[i], gotPhase[i], 1e-9)
	}
}

func sortedAscending(xs []float64) bool {
	for i := 1; i < len(xs); i++ {
		if xs[i] < xs[i-1] || math.IsNaN(xs[i]) {
			return false
		}
	}
	return true
}
