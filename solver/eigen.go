// Package solver provides a sparse generalized eigenvalue solver for the
// smallest eigenpair of A x = λ B x with symmetric positive definite A and
// a diagonal positive mass matrix B (the lumped-mass case).
//
// The problem is rescaled with B^{-1/2} to an ordinary symmetric one and
// solved by inverse power iteration; the inner solves use conjugate
// gradient on the sparse operator. The starting vector and tolerances are
// fixed, so results are deterministic for identical inputs.
package solver

import (
	"errors"
	"fmt"
	"math"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ErrNotConverged is returned when the iteration fails to reach the
// requested tolerance within the iteration budget.
var ErrNotConverged = errors.New("solver: eigenvalue iteration did not converge")

const (
	maxOuterIterations = 256
	residualTolerance  = 1e-9
	cgTolerance        = 1e-12
)

// nonZeroer is satisfied by the sparse matrix types; it visits every stored
// entry once, which is all a matrix-vector product needs.
type nonZeroer interface {
	DoNonZero(fn func(i, j int, v float64))
}

// SmallestEigenvector returns the eigenvector belonging to the smallest
// eigenvalue of the generalized problem A x = λ B x. A must be symmetric
// positive definite and B diagonal with strictly positive entries; a
// non-positive diagonal entry of B is a precondition violation reported as
// an error.
func SmallestEigenvector(a mat.Matrix, b mat.Matrix) ([]float64, error) {
	n, ac := a.Dims()
	if n != ac {
		return nil, fmt.Errorf("solver: energy matrix is %dx%d, want square", n, ac)
	}
	br, bc := b.Dims()
	if br != n || bc != n {
		return nil, fmt.Errorf("solver: mass matrix is %dx%d, want %dx%d", br, bc, n, n)
	}

	// B^{-1/2} from the lumped mass diagonal
	dInv := make([]float64, n)
	for i := 0; i < n; i++ {
		m := b.At(i, i)
		if m <= 0 || math.IsNaN(m) {
			return nil, fmt.Errorf("solver: mass matrix diagonal entry %d is %g, want positive", i, m)
		}
		dInv[i] = 1 / math.Sqrt(m)
	}

	// C y = B^{-1/2} A B^{-1/2} y, applied without forming C
	scratch := make([]float64, n)
	applyC := func(dst, x []float64) {
		for i := range scratch {
			scratch[i] = dInv[i] * x[i]
		}
		mulVec(dst, a, scratch)
		for i := range dst {
			dst[i] *= dInv[i]
		}
	}

	// fixed start vector for deterministic output
	y := make([]float64, n)
	for i := range y {
		y[i] = 1
	}
	floats.Scale(1/floats.Norm(y, 2), y)

	next := make([]float64, n)
	cy := make([]float64, n)
	for iter := 0; iter < maxOuterIterations; iter++ {
		if err := conjugateGradient(next, applyC, y); err != nil {
			return nil, err
		}
		floats.Scale(1/floats.Norm(next, 2), next)
		copy(y, next)

		// Rayleigh residual ||C y - λ y||
		applyC(cy, y)
		lambda := floats.Dot(y, cy)
		floats.AddScaled(cy, -lambda, y)
		if floats.Norm(cy, 2) < residualTolerance*math.Max(1, math.Abs(lambda)) {
			for i := range y {
				y[i] *= dInv[i]
			}
			return y, nil
		}
	}
	return nil, ErrNotConverged
}

// mulVec computes dst = m x, using the sparse fast path when available.
func mulVec(dst []float64, m mat.Matrix, x []float64) {
	for i := range dst {
		dst[i] = 0
	}
	if nz, ok := m.(nonZeroer); ok {
		nz.DoNonZero(func(i, j int, v float64) {
			dst[i] += v * x[j]
		})
		return
	}
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		s := 0.0
		for j := 0; j < c; j++ {
			s += m.At(i, j) * x[j]
		}
		dst[i] = s
	}
}

// conjugateGradient solves apply(x) = rhs for symmetric positive definite
// operators, overwriting x.
func conjugateGradient(x []float64, apply func(dst, v []float64), rhs []float64) error {
	n := len(rhs)
	for i := range x {
		x[i] = 0
	}
	r := make([]float64, n)
	copy(r, rhs)
	p := make([]float64, n)
	copy(p, r)
	ap := make([]float64, n)

	rsOld := floats.Dot(r, r)
	norm := floats.Norm(rhs, 2)
	if norm == 0 {
		return nil
	}
	tol := cgTolerance * norm

	maxIter := 10 * n
	for k := 0; k < maxIter; k++ {
		apply(ap, p)
		pap := floats.Dot(p, ap)
		if pap <= 0 {
			return fmt.Errorf("solver: operator is not positive definite (p·Ap = %g)", pap)
		}
		alpha := rsOld / pap
		floats.AddScaled(x, alpha, p)
		floats.AddScaled(r, -alpha, ap)

		rsNew := floats.Dot(r, r)
		if math.Sqrt(rsNew) < tol {
			return nil
		}
		floats.Scale(rsNew/rsOld, p)
		floats.Add(p, r)
		rsOld = rsNew
	}
	return ErrNotConverged
}

// compile-time check that the sparse types used by callers feed the fast path
var _ nonZeroer = (*sparse.CSR)(nil)
