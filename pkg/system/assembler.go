package system

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Assembler owns the per-step (A, b) buffers and the running
// current-branch counter. One Assembler is reused across stamp cycles; Reset
// zeroes its backing storage before each cycle rather than reallocating it.
type Assembler struct {
	size int // upper bound M, fixed at construction

	a      []float64 // row-major M*M, real part
	aIm    []float64 // row-major M*M, imaginary part (ModeAC only)
	b      []float64 // length M, real part
	bIm    []float64 // length M, imaginary part (ModeAC only)

	n             int // node count N for this cycle (ground excluded)
	currentBranch int
}

// NewAssembler allocates an Assembler sized to hold up to m unknowns
// (nodes plus every auxiliary branch that could be claimed in one cycle).
func NewAssembler(m int) *Assembler {
	return &Assembler{
		size: m,
		a:    make([]float64, m*m),
		aIm:  make([]float64, m*m),
		b:    make([]float64, m),
		bIm:  make([]float64, m),
	}
}

// Reset zeroes A and b and sets current_branch = n, the node count, ahead
// of a new stamp cycle.
func (as *Assembler) Reset(n int) {
	for i := range as.a {
		as.a[i] = 0
		as.aIm[i] = 0
	}
	for i := range as.b {
		as.b[i] = 0
		as.bIm[i] = 0
	}
	as.n = n
	as.currentBranch = n
}

// NextBranch pre-increments and returns the next free auxiliary-branch
// index. Two elements never share an index within one cycle because each
// claim mutates currentBranch before returning it.
func (as *Assembler) NextBranch() int {
	as.currentBranch++
	if as.currentBranch >= as.size {
		panic(fmt.Sprintf("system: auxiliary branch index %d exceeds preallocated size %d", as.currentBranch, as.size))
	}
	return as.currentBranch
}

func (as *Assembler) idx(i, j int) int { return i*as.size + j }

// AddA adds v to A[i,j]. Ground (index 0) still accepts writes during the
// stamp cycle; it is excluded only at solve time.
func (as *Assembler) AddA(i, j int, v float64) { as.a[as.idx(i, j)] += v }

// AddB adds v to b[i].
func (as *Assembler) AddB(i int, v float64) { as.b[i] += v }

// AddAComplex adds (re, im) to A[i,j] under Fourier stamping.
func (as *Assembler) AddAComplex(i, j int, re, im float64) {
	as.a[as.idx(i, j)] += re
	as.aIm[as.idx(i, j)] += im
}

// AddBComplex adds (re, im) to b[i] under Fourier stamping.
func (as *Assembler) AddBComplex(i int, re, im float64) {
	as.b[i] += re
	as.bIm[i] += im
}

// Conductance is the primitive stamp operation: it adds +G to A[i,i] and
// A[j,j], and subtracts G from A[i,j] and A[j,i]. A zero index denotes
// ground and is skipped, matching ground's permanent-zero row/column
// invariant.
func (as *Assembler) Conductance(i, j int, g float64) {
	if i != 0 {
		as.AddA(i, i, g)
		if j != 0 {
			as.AddA(i, j, -g)
		}
	}
	if j != 0 {
		if i != 0 {
			as.AddA(j, i, -g)
		}
		as.AddA(j, j, g)
	}
}

// ConductanceComplex is Conductance's Fourier-mode counterpart, taking a
// complex conductance re+j*im.
func (as *Assembler) ConductanceComplex(i, j int, re, im float64) {
	if i != 0 {
		as.AddAComplex(i, i, re, im)
		if j != 0 {
			as.AddAComplex(i, j, -re, -im)
		}
	}
	if j != 0 {
		if i != 0 {
			as.AddAComplex(j, i, -re, -im)
		}
		as.AddAComplex(j, j, re, im)
	}
}

// Transconductance is the primitive across (i,j) driven by (p,q) with value
// Gm: it adds +Gm to A[i,p] and A[j,q], and subtracts Gm from A[i,q] and
// A[j,p].
func (as *Assembler) Transconductance(i, j, p, q int, gm float64) {
	if i != 0 {
		if p != 0 {
			as.AddA(i, p, gm)
		}
		if q != 0 {
			as.AddA(i, q, -gm)
		}
	}
	if j != 0 {
		if q != 0 {
			as.AddA(j, q, gm)
		}
		if p != 0 {
			as.AddA(j, p, -gm)
		}
	}
}

// TransconductanceComplex is Transconductance's Fourier-mode counterpart.
func (as *Assembler) TransconductanceComplex(i, j, p, q int, re, im float64) {
	if i != 0 {
		if p != 0 {
			as.AddAComplex(i, p, re, im)
		}
		if q != 0 {
			as.AddAComplex(i, q, -re, -im)
		}
	}
	if j != 0 {
		if q != 0 {
			as.AddAComplex(j, q, re, im)
		}
		if p != 0 {
			as.AddAComplex(j, p, -re, -im)
		}
	}
}

// CurrentSource stamps a current source of magnitude val flowing from node
// i to node j into b: b[i] += -val, b[j] += +val, matching the independent
// current source contract (current into i, out of j uses the opposite
// sign convention at the call site as needed).
func (as *Assembler) CurrentSource(i, j int, val float64) {
	if i != 0 {
		as.AddB(i, -val)
	}
	if j != 0 {
		as.AddB(j, val)
	}
}

// Solve trims to K = current_branch+1, drops row/column 0, solves the
// (K-1)x(K-1) dense system and returns the K-vector with x[0] = 0
// prepended.
func (as *Assembler) Solve() ([]float64, error) {
	k := as.currentBranch + 1
	n := k - 1 // size of the reduced system, ground dropped

	x := make([]float64, k)
	if n <= 0 {
		return x, nil
	}

	ra := mat.NewDense(n, n, nil)
	rb := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		rb.SetVec(i, as.b[i+1])
		for j := 0; j < n; j++ {
			ra.Set(i, j, as.a[as.idx(i+1, j+1)])
		}
	}

	var sol mat.VecDense
	if err := sol.SolveVec(ra, rb); err != nil {
		return nil, fmt.Errorf("system: singular reduced matrix: %w", err)
	}

	for i := 0; i < n; i++ {
		x[i+1] = sol.AtVec(i)
	}
	return x, nil
}

// SolveComplex trims and solves the complex reduced system by doubling it
// into a real 2n x 2n block system
//
//	[ Re(Y)  -Im(Y) ] [x_re]   [b_re]
//	[ Im(Y)   Re(Y) ] [x_im] = [b_im]
//
// since gonum's dense solver operates on real matrices.
func (as *Assembler) SolveComplex() ([]complex128, error) {
	k := as.currentBranch + 1
	n := k - 1

	x := make([]complex128, k)
	if n <= 0 {
		return x, nil
	}

	block := mat.NewDense(2*n, 2*n, nil)
	rhs := mat.NewVecDense(2*n, nil)
	for i := 0; i < n; i++ {
		rhs.SetVec(i, as.b[i+1])
		rhs.SetVec(n+i, as.bIm[i+1])
		for j := 0; j < n; j++ {
			re := as.a[as.idx(i+1, j+1)]
			im := as.aIm[as.idx(i+1, j+1)]
			block.Set(i, j, re)
			block.Set(i, n+j, -im)
			block.Set(n+i, j, im)
			block.Set(n+i, n+j, re)
		}
	}

	var sol mat.VecDense
	if err := sol.SolveVec(block, rhs); err != nil {
		return nil, fmt.Errorf("system: singular complex reduced matrix: %w", err)
	}

	for i := 0; i < n; i++ {
		x[i+1] = complex(sol.AtVec(i), sol.AtVec(n+i))
	}
	return x, nil
}

// A returns the current real part of A[i,j], for tests and diagnostics.
func (as *Assembler) A(i, j int) float64 { return as.a[as.idx(i, j)] }

// AIm returns the current imaginary part of A[i,j], for tests and
// diagnostics.
func (as *Assembler) AIm(i, j int) float64 { return as.aIm[as.idx(i, j)] }

// Size returns the preallocated upper bound M.
func (as *Assembler) Size() int { return as.size }

// CurrentBranch returns the running current_branch counter for the cycle
// in progress, i.e. K-1 before trimming.
func (as *Assembler) CurrentBranch() int { return as.currentBranch }
