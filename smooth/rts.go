package smooth

import (
	"fmt"

	"github.com/rfox90/ikalman"
	"github.com/rfox90/ikalman/estimate"
	"gonum.org/v1/gonum/mat"
)

// RTS is Rauch-Tung-Striebel smoother
type RTS struct {
	// m is system model
	m ikalman.DiscreteModel
	// q is state noise a.k.a. process noise
	q ikalman.Noise
}

// New creates new RTS and returns it.
// It returns error if either the model dimensions are not positive or the
// state noise covariance does not match the model state dimension.
func New(m ikalman.DiscreteModel, q ikalman.Noise) (*RTS, error) {
	nx, ny := m.Dims()
	if nx <= 0 || ny <= 0 {
		return nil, fmt.Errorf("invalid model dimensions: [%d x %d]", nx, ny)
	}

	if q == nil || q.Cov().SymmetricDim() != nx {
		return nil, fmt.Errorf("invalid state noise: %v", q)
	}

	return &RTS{
		m: m,
		q: q,
	}, nil
}

// Smooth implements the Rauch-Tung-Striebel smoothing algorithm: a backward
// pass over the filtered estimates est which conditions every estimate on
// the whole track. The backward pass is anchored on the final filtered
// estimate, which passes through unchanged. The model state matrix must
// reflect the interval between consecutive estimates.
// It returns error if est is empty or the smoothed estimates could not be computed.
func (s *RTS) Smooth(est []ikalman.Estimate) ([]ikalman.Estimate, error) {
	if len(est) == 0 {
		return nil, fmt.Errorf("invalid estimates size: %d", len(est))
	}

	sx := make([]ikalman.Estimate, len(est))

	e, err := estimate.NewBaseWithCov(est[len(est)-1].Val(), est[len(est)-1].Cov())
	if err != nil {
		return nil, err
	}
	sx[len(est)-1] = e

	for i := len(est) - 2; i >= 0; i-- {
		// predicted state x_(k+1|k)
		xPred, err := s.m.Propagate(est[i].Val())
		if err != nil {
			return nil, fmt.Errorf("model state propagation failed: %w", err)
		}

		f := s.m.StateMatrix()

		// predicted covariance P_(k+1|k) = F*P*F' + Q
		pPred := &mat.Dense{}
		pPred.Mul(f, est[i].Cov())
		pPred.Mul(pPred, f.T())
		pPred.Add(pPred, s.q.Cov())

		// smoothing matrix C = P*F'*P_(k+1|k)^-1
		c := &mat.Dense{}
		c.Mul(est[i].Cov(), f.T())

		pInv := &mat.Dense{}
		if err := pInv.Inverse(pPred); err != nil {
			return nil, fmt.Errorf("failed to invert predicted covariance: %w", err)
		}
		c.Mul(c, pInv)

		// smoothed state x_k + C*(x_(k+1|n) - x_(k+1|k))
		x := &mat.Dense{}
		x.Sub(sx[i+1].Val(), xPred)
		x.Mul(c, x)
		x.Add(est[i].Val(), x)

		// smoothed covariance P_k + C*(P_(k+1|n) - P_(k+1|k))*C'
		cov := &mat.Dense{}
		cov.Sub(sx[i+1].Cov(), pPred)

		pk := &mat.Dense{}
		pk.Mul(c, cov)
		pk.Mul(pk, c.T())
		pk.Add(est[i].Cov(), pk)

		n, _ := pk.Dims()
		pSmooth := mat.NewSymDense(n, nil)
		for r := 0; r < n; r++ {
			for j := r; j < n; j++ {
				pSmooth.SetSym(r, j, pk.At(r, j))
			}
		}

		se, err := estimate.NewBaseWithCov(x.ColView(0), pSmooth)
		if err != nil {
			return nil, err
		}
		sx[i] = se
	}

	return sx, nil
}
