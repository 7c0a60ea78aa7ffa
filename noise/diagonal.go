package noise

import (
	"fmt"

	"github.com/rfox90/ikalman/matrix"
	"gonum.org/v1/gonum/mat"
)

// Diagonal is zero mean noise with a fixed diagonal covariance matrix.
// It is deterministic: its samples are always zero. It is used to configure
// filter noise covariances without perturbing the propagated state.
type Diagonal struct {
	// mean stores zero mean values
	mean []float64
	// cov is diagonal covariance matrix
	cov *mat.SymDense
}

// NewDiagonal creates new Diagonal noise with vars on its covariance diagonal.
// It returns error if no variances are given or if any variance is negative.
func NewDiagonal(vars ...float64) (*Diagonal, error) {
	if len(vars) == 0 {
		return nil, fmt.Errorf("invalid noise dimension: %d", len(vars))
	}

	for _, v := range vars {
		if v < 0 {
			return nil, fmt.Errorf("invalid noise variance: %f", v)
		}
	}

	return &Diagonal{
		mean: make([]float64, len(vars)),
		cov:  matrix.NewSymDiag(vars...),
	}, nil
}

// Sample returns a zero vector: Diagonal noise is deterministic.
func (d *Diagonal) Sample() mat.Vector {
	return mat.NewVecDense(len(d.mean), nil)
}

// Cov returns covariance matrix of Diagonal noise.
func (d *Diagonal) Cov() mat.Symmetric {
	cov := mat.NewSymDense(d.cov.SymmetricDim(), nil)
	cov.CopySym(d.cov)

	return cov
}

// Mean returns Diagonal mean.
func (d *Diagonal) Mean() []float64 {
	mean := make([]float64, len(d.mean))
	copy(mean, d.mean)

	return mean
}

// Reset does nothing: it's here to implement the Noise interface
func (d *Diagonal) Reset() {}

// String implements the Stringer interface.
func (d *Diagonal) String() string {
	return fmt.Sprintf("Diagonal{\nMean=%v\nCov=%v\n}", d.Mean(), mat.Formatted(d.Cov(), mat.Prefix("    "), mat.Squeeze()))
}
