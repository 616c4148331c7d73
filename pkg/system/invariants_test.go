package system

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGroundRowAndColumnStayZero covers invariant 1: A[0,*] = A[*,0] = 0
// after trimming, and x[0] = 0 in every solution.
func TestGroundRowAndColumnStayZero(t *testing.T) {
	as := NewAssembler(4)
	as.Reset(2)
	as.Conductance(0, 1, 3.0)
	as.Conductance(1, 2, 2.0)
	jx := as.NextBranch()
	as.AddA(1, jx, 1)
	as.AddA(jx, 1, 1)
	as.AddB(jx, 1.0)

	for k := 0; k < as.Size(); k++ {
		assert.Equal(t, 0.0, as.A(0, k))
		assert.Equal(t, 0.0, as.A(k, 0))
	}

	x, err := as.Solve()
	require.NoError(t, err)
	assert.Equal(t, 0.0, x[0])
}

// TestStampOrderIndependence covers invariant 2: stamping X then Y yields
// the same (A, b) as stamping Y then X, for conductance and
// transconductance primitives that don't claim auxiliary branches.
func TestStampOrderIndependence(t *testing.T) {
	as1 := NewAssembler(4)
	as1.Reset(3)
	as1.Conductance(1, 2, 5.0)
	as1.Transconductance(2, 3, 1, 3, 0.002)

	as2 := NewAssembler(4)
	as2.Reset(3)
	as2.Transconductance(2, 3, 1, 3, 0.002)
	as2.Conductance(1, 2, 5.0)

	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			assert.Equal(t, as1.A(i, j), as2.A(i, j))
		}
	}
}
