package matrix

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// NewSymDiag creates a new diagonal symmetric matrix with vals on its diagonal.
// It panics if no values are given.
func NewSymDiag(vals ...float64) *mat.SymDense {
	n := len(vals)
	if n == 0 {
		panic("matrix: no diagonal values given")
	}

	m := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		m.SetSym(i, i, vals[i])
	}

	return m
}

// NewSymValIdentity creates a new identity symmetric matrix of size n scaled by v.
// It returns error if n is not a positive integer.
func NewSymValIdentity(n int, v float64) (*mat.SymDense, error) {
	if n <= 0 {
		return nil, fmt.Errorf("invalid matrix dimension: %d", n)
	}

	m := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		m.SetSym(i, i, v)
	}

	return m, nil
}
