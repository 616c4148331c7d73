package driver

import (
	"testing"

	"github.com/nrogoz/mnasim/pkg/circuit"
	"github.com/nrogoz/mnasim/pkg/element"
	"github.com/nrogoz/mnasim/pkg/netlist"
	"github.com/nrogoz/mnasim/pkg/system"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleAt returns the "t" column and the given node column, or fails the
// test if either is missing.
func sampleAt(t *testing.T, tbl interface {
	Column(string) ([]float64, bool)
}, node string) ([]float64, []float64) {
	times, ok := tbl.Column("t")
	require.True(t, ok)
	vals, ok := tbl.Column(node)
	require.True(t, ok)
	return times, vals
}

func nearestSample(times, vals []float64, at float64) float64 {
	best, bestDist := 0, 1e18
	for i, t := range times {
		d := t - at
		if d < 0 {
			d = -d
		}
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return vals[best]
}

func TestRCCharge(t *testing.T) {
	c := circuit.New("rc-charge")
	n1 := c.Node("1")
	gnd := c.Node("0")
	c.Add(element.NewDCVoltageSource("V1", n1, gnd, 1))
	n2 := c.Node("2")
	c.Add(element.NewResistor("R1", n1, n2, 1000))
	c.Add(element.NewCapacitor("C1", n2, gnd, 1e-6, 0))

	tbl, err := RunTransient(c, TranOptions{End: 10e-3, Step: 1e-4, Method: system.BE, Multiplier: 1})
	require.NoError(t, err)

	times, vals := sampleAt(t, tbl, "2")
	assert.InDelta(t, 0.632, nearestSample(times, vals, 1e-3), 0.02)
	assert.InDelta(t, 0.993, nearestSample(times, vals, 5e-3), 0.02)

	for i := 1; i < len(vals); i++ {
		assert.GreaterOrEqual(t, vals[i], vals[i-1]-1e-9, "v(2) must rise monotonically")
	}
}

func TestRCLowPassFiveTauWithinOnePercent(t *testing.T) {
	c := circuit.New("rc-tau")
	n1 := c.Node("1")
	gnd := c.Node("0")
	c.Add(element.NewDCVoltageSource("V1", n1, gnd, 1))
	n2 := c.Node("2")
	c.Add(element.NewResistor("R1", n1, n2, 1000))
	c.Add(element.NewCapacitor("C1", n2, gnd, 1e-6, 0))

	tbl, err := RunTransient(c, TranOptions{End: 5e-3, Step: 1e-5, Method: system.BE, Multiplier: 1})
	require.NoError(t, err)

	times, vals := sampleAt(t, tbl, "2")
	assert.InDelta(t, 1.0, nearestSample(times, vals, 5e-3), 0.01)
}

func TestRLCRingUndampedFrequency(t *testing.T) {
	c := circuit.New("rlc-ring")
	n1 := c.Node("1")
	gnd := c.Node("0")
	c.Add(element.NewDCVoltageSource("V1", n1, gnd, 1))
	n2 := c.Node("2")
	c.Add(element.NewResistor("R1", n1, n2, 1))
	n3 := c.Node("3")
	c.Add(element.NewInductor("L1", n2, n3, 1e-3, 0))
	c.Add(element.NewCapacitor("C1", n3, gnd, 1e-6, 0))

	tbl, err := RunTransient(c, TranOptions{End: 200e-6, Step: 1e-7, Method: system.TR, Multiplier: 1})
	require.NoError(t, err)

	times, vals := sampleAt(t, tbl, "3")
	// First zero crossing of (v_C - 0.5) should land near t = 50us.
	for i := 1; i < len(vals); i++ {
		if (vals[i-1]-0.5) < 0 && (vals[i]-0.5) >= 0 {
			assert.InDelta(t, 50e-6, times[i], 10e-6)
			return
		}
	}
	t.Fatal("no zero crossing of (v_C - 0.5) found")
}

func TestHalfWaveRectifierEndToEnd(t *testing.T) {
	c := circuit.New("rectifier")
	n1 := c.Node("1")
	gnd := c.Node("0")
	c.Add(element.NewSinVoltageSource("V1", n1, gnd, element.SinParams{Amplitude: 1, Freq: 60}))
	n2 := c.Node("2")
	c.Add(element.NewDiode("D1", n1, n2, 1e-14, 1))
	c.Add(element.NewResistor("RL", n2, gnd, 100))

	tbl, err := RunTransient(c, TranOptions{End: 16.7e-3, Step: 20e-6, Method: system.BE, Multiplier: 1})
	require.NoError(t, err)

	// At the source peak the load sits one diode drop (about 0.7 V) below
	// the source.
	times, src := sampleAt(t, tbl, "1")
	_, load := sampleAt(t, tbl, "2")
	peak := 0
	for i := range times {
		if src[i] > src[peak] {
			peak = i
		}
	}
	want := src[peak] - 0.7
	if want < 0 {
		want = 0
	}
	assert.InDelta(t, want, load[peak], 0.05)
}

func TestOpAmpInverterSolvesInOneShot(t *testing.T) {
	c := circuit.New("inverter-opamp")
	vin := c.Node("in")
	gnd := c.Node("0")
	c.Add(element.NewDCVoltageSource("V1", vin, gnd, 1))
	ninv := c.Node("ninv")
	c.Add(element.NewResistor("Rin", vin, ninv, 1000))
	vout := c.Node("out")
	c.Add(element.NewResistor("Rf", ninv, vout, 10000))
	c.Add(element.NewOpAmp("O1", gnd, ninv, vout))

	tbl, err := RunTransient(c, TranOptions{End: 1e-6, Step: 1e-6, Method: system.BE, Multiplier: 1})
	require.NoError(t, err)

	_, vals := sampleAt(t, tbl, "out")
	require.NotEmpty(t, vals)
	assert.InDelta(t, -10.0, vals[len(vals)-1], 1e-3)
}

func TestTransientFromParsedNetlist(t *testing.T) {
	nl := "rc\n" +
		"V1 1 0 DC 5\n" +
		"R1 1 2 1k\n" +
		"C1 2 0 10n\n" +
		".TRAN 50u 1u BE 1\n"

	c, d, err := netlist.Parse(nl)
	require.NoError(t, err)
	require.False(t, d.IsAC)

	tbl, err := RunTransient(c, TranOptions{
		End: d.Tran.End, Step: d.Tran.Step, Method: d.Tran.Method, Multiplier: d.Tran.Multiplier,
	})
	require.NoError(t, err)
	assert.Greater(t, tbl.Len(), 1)
}
