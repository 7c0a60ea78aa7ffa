package kalman

import (
	"fmt"

	"github.com/rfox90/ikalman"
	"github.com/rfox90/ikalman/estimate"
	"gonum.org/v1/gonum/mat"
)

// KF is Kalman Filter
type KF struct {
	// m is KF system model
	m ikalman.DiscreteModel
	// q is state noise a.k.a. process noise
	q ikalman.Noise
	// r is output noise a.k.a. measurement noise
	r ikalman.Noise
	// x is state estimate
	x *mat.VecDense
	// p is state estimate covariance matrix
	p *mat.SymDense
	// inn is innovation vector
	inn *mat.VecDense
	// k is Kalman gain
	k *mat.Dense
}

// New creates new KF and returns it.
// It accepts the following parameters:
//   - m:      discrete dynamical system model
//   - init:   initial condition of the filter
//   - q:      state noise a.k.a. process noise
//   - r:      output noise a.k.a. measurement noise
//
// It returns error if either of the following conditions is met:
//   - invalid model is given: model dimensions must be positive integers
//   - invalid noise is given: noise covariance must match the model dimensions
//   - model propagation or observation matrix dimensions do not match the model
//   - initial condition dimensions do not match the model
func New(m ikalman.DiscreteModel, init ikalman.InitCond, q, r ikalman.Noise) (*KF, error) {
	nx, ny := m.Dims()
	if nx <= 0 || ny <= 0 {
		return nil, fmt.Errorf("invalid model dimensions: [%d x %d]", nx, ny)
	}

	if q == nil || q.Cov().SymmetricDim() != nx {
		return nil, fmt.Errorf("invalid state noise: %v", q)
	}

	if r == nil || r.Cov().SymmetricDim() != ny {
		return nil, fmt.Errorf("invalid output noise: %v", r)
	}

	rows, cols := m.StateMatrix().Dims()
	if rows != nx || cols != nx {
		return nil, fmt.Errorf("invalid propagation matrix dimensions: [%d x %d]", rows, cols)
	}

	rows, cols = m.OutputMatrix().Dims()
	if rows != ny || cols != nx {
		return nil, fmt.Errorf("invalid observation matrix dimensions: [%d x %d]", rows, cols)
	}

	if init.State().Len() != nx || init.Cov().SymmetricDim() != nx {
		return nil, fmt.Errorf("invalid initial condition dimensions: [%d x %d]", init.State().Len(), init.Cov().SymmetricDim())
	}

	// initialize state estimate to initial condition
	x := mat.NewVecDense(nx, nil)
	x.CopyVec(init.State())

	// initialize covariance matrix to initial condition covariance
	p := mat.NewSymDense(init.Cov().SymmetricDim(), nil)
	p.CopySym(init.Cov())

	// innovation vector
	inn := mat.NewVecDense(ny, nil)

	// kalman gain
	k := mat.NewDense(nx, ny, nil)

	return &KF{
		m:   m,
		q:   q,
		r:   r,
		x:   x,
		p:   p,
		inn: inn,
		k:   k,
	}, nil
}

// predict computes the predicted state and covariance from x and p
// without mutating the filter.
func (k *KF) predict(x *mat.VecDense, p *mat.SymDense) (*mat.VecDense, *mat.SymDense, error) {
	// propagate state to the next step
	xNext, err := k.m.Propagate(x)
	if err != nil {
		return nil, nil, fmt.Errorf("system state propagation failed: %w", err)
	}

	f := k.m.StateMatrix()

	// F*P*F' + Q
	cov := &mat.Dense{}
	cov.Mul(f, p)
	cov.Mul(cov, f.T())
	cov.Add(cov, k.q.Cov())

	n := p.SymmetricDim()
	pNext := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			pNext.SetSym(i, j, cov.At(i, j))
		}
	}

	xPred := &mat.VecDense{}
	xPred.CloneFromVec(xNext)

	return xPred, pNext, nil
}

// correct computes the corrected state, covariance, gain and innovation
// from x, p and measurement z without mutating the filter.
func (k *KF) correct(x *mat.VecDense, p *mat.SymDense, z mat.Vector) (*mat.VecDense, *mat.SymDense, *mat.Dense, *mat.VecDense, error) {
	nx, ny := k.m.Dims()

	if z.Len() != ny {
		return nil, nil, nil, nil, fmt.Errorf("invalid measurement dimension: %d", z.Len())
	}

	// predicted system output
	y, err := k.m.Observe(x)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to observe system output: %w", err)
	}

	h := k.m.OutputMatrix()

	// P*H'
	pxy := mat.NewDense(nx, ny, nil)
	pxy.Mul(p, h.T())

	// innovation covariance S = H*P*H' + R
	s := mat.NewDense(ny, ny, nil)
	s.Mul(h, pxy)
	s.Add(s, k.r.Cov())

	sInv := &mat.Dense{}
	if err := sInv.Inverse(s); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to invert innovation covariance: %w", err)
	}

	// Kalman gain K = P*H'*S^-1
	gain := &mat.Dense{}
	gain.Mul(pxy, sInv)

	// innovation vector
	inn := &mat.VecDense{}
	inn.SubVec(z, y)

	// x + K*inn
	corr := &mat.Dense{}
	corr.Mul(gain, inn)
	xCorr := &mat.VecDense{}
	xCorr.AddVec(x, corr.ColView(0))

	// Joseph form update: P = (I - K*H)*P*(I - K*H)' + K*R*K'.
	// Algebraically equal to (I - K*H)*P for the optimal gain, but it
	// keeps P symmetric positive definite in floating point arithmetic.
	a := mat.NewDense(nx, nx, nil)
	a.Mul(gain, h)
	eye, err := identity(nx)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	a.Sub(eye, a)

	ap := &mat.Dense{}
	ap.Mul(a, p)
	apa := &mat.Dense{}
	apa.Mul(ap, a.T())

	// K*R*K'
	kr := &mat.Dense{}
	kr.Mul(gain, k.r.Cov())
	krk := &mat.Dense{}
	krk.Mul(kr, gain.T())

	apa.Add(apa, krk)

	pCorr := mat.NewSymDense(nx, nil)
	for i := 0; i < nx; i++ {
		for j := i; j < nx; j++ {
			pCorr.SetSym(i, j, apa.At(i, j))
		}
	}

	return xCorr, pCorr, gain, inn, nil
}

// Predict advances the state estimate by one step and grows its uncertainty
// by the process noise. It returns the predicted estimate.
// It returns error if it fails to propagate the state to the next step.
func (k *KF) Predict() (ikalman.Estimate, error) {
	x, p, err := k.predict(k.x, k.p)
	if err != nil {
		return nil, err
	}

	k.x = x
	k.p = p

	return estimate.NewBaseWithCov(k.x, k.p)
}

// Correct corrects the state estimate using the measurement z and returns
// the corrected estimate. The filter state remains unchanged on error.
// It returns error if z dimensions do not match the model or if the
// innovation covariance is singular.
func (k *KF) Correct(z mat.Vector) (ikalman.Estimate, error) {
	x, p, gain, inn, err := k.correct(k.x, k.p, z)
	if err != nil {
		return nil, err
	}

	k.x = x
	k.p = p
	k.k.Copy(gain)
	k.inn.CopyVec(inn)

	return estimate.NewBaseWithCov(k.x, k.p)
}

// Run runs one step of KF for the given measurement z: it predicts the next
// state and corrects it using z. The cycle is atomic: the filter state is
// only committed once both the prediction and the correction succeed.
// It returns error if it either fails to predict or correct the state.
func (k *KF) Run(z mat.Vector) (ikalman.Estimate, error) {
	xPred, pPred, err := k.predict(k.x, k.p)
	if err != nil {
		return nil, err
	}

	x, p, gain, inn, err := k.correct(xPred, pPred, z)
	if err != nil {
		return nil, err
	}

	k.x = x
	k.p = p
	k.k.Copy(gain)
	k.inn.CopyVec(inn)

	return estimate.NewBaseWithCov(k.x, k.p)
}

// Model returns KF model
func (k *KF) Model() ikalman.DiscreteModel {
	return k.m
}

// ProcessNoise returns state noise
func (k *KF) ProcessNoise() ikalman.Noise {
	return k.q
}

// ObservationNoise returns output noise
func (k *KF) ObservationNoise() ikalman.Noise {
	return k.r
}

// State returns KF state estimate
func (k *KF) State() mat.Vector {
	x := mat.NewVecDense(k.x.Len(), nil)
	x.CopyVec(k.x)

	return x
}

// Cov returns KF state covariance
func (k *KF) Cov() mat.Symmetric {
	cov := mat.NewSymDense(k.p.SymmetricDim(), nil)
	cov.CopySym(k.p)

	return cov
}

// SetCov sets KF covariance matrix to cov.
// It returns error if either cov is nil or its dimensions are not the same as KF covariance dimensions.
func (k *KF) SetCov(cov mat.Symmetric) error {
	if cov == nil {
		return fmt.Errorf("invalid covariance matrix: %v", cov)
	}

	if cov.SymmetricDim() != k.p.SymmetricDim() {
		return fmt.Errorf("invalid covariance matrix dims: [%d x %d]", cov.SymmetricDim(), cov.SymmetricDim())
	}

	k.p.CopySym(cov)

	return nil
}

// Gain returns Kalman gain
func (k *KF) Gain() mat.Matrix {
	gain := &mat.Dense{}
	gain.CloneFrom(k.k)

	return gain
}

func identity(n int) (*mat.Dense, error) {
	if n <= 0 {
		return nil, fmt.Errorf("invalid identity dimension: %d", n)
	}

	eye := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		eye.Set(i, i, 1.0)
	}

	return eye, nil
}
