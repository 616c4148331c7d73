package driver

import (
	"testing"

	"github.com/nrogoz/mnasim/pkg/circuit"
	"github.com/nrogoz/mnasim/pkg/element"
	"github.com/nrogoz/mnasim/pkg/system"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogicInverterTransitionsAroundInputMidpoint(t *testing.T) {
	c := circuit.New("inverter")
	vin := c.Node("in")
	gnd := c.Node("0")
	c.Add(element.NewPulseVoltageSource("VIN", vin, gnd, element.PulseParams{
		A1: 0, A2: 5, Rise: 1e-9, Fall: 1e-9, OnTime: 4e-9, Period: 10e-9,
	}))
	vout := c.Node("out")
	c.Add(element.NewLogicGate("U1", element.GateNOT, []int{vin}, vout, 5, 1e-12, 1e3, 1e3))

	tbl, err := RunTransient(c, TranOptions{End: 10e-9, Step: 0.1e-9, Method: system.BE, Multiplier: 1})
	require.NoError(t, err)

	times, out := sampleAt(t, tbl, "out")

	startIdx, endIdx := 0, 0
	for i, tt := range times {
		if tt <= 0.2e-9 {
			startIdx = i
		}
		if tt <= 2.5e-9 {
			endIdx = i
		}
	}

	assert.Greater(t, out[startIdx], 4.0, "output should be high while input is still low")
	assert.Less(t, out[endIdx], 1.0, "output should be low once input has risen past the gate's threshold")
}
