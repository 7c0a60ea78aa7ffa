package model

import (
	"fmt"

	"github.com/milosgajdos/matrix"
	"gonum.org/v1/gonum/mat"
)

// InitCond implements ikalman.InitCond
type InitCond struct {
	state *mat.VecDense
	cov   *mat.SymDense
}

// NewInitCond creates new InitCond and returns it
func NewInitCond(state mat.Vector, cov mat.Symmetric) *InitCond {
	s := &mat.VecDense{}
	s.CloneFromVec(state)

	c := mat.NewSymDense(cov.SymmetricDim(), nil)
	c.CopySym(cov)

	return &InitCond{
		state: s,
		cov:   c,
	}
}

// State returns initial state
func (c *InitCond) State() mat.Vector {
	state := mat.NewVecDense(c.state.Len(), nil)
	state.CopyVec(c.state)

	return state
}

// Cov returns initial covariance
func (c *InitCond) Cov() mat.Symmetric {
	cov := mat.NewSymDense(c.cov.SymmetricDim(), nil)
	cov.CopySym(c.cov)

	return cov
}

// CV is a constant velocity motion model in geographic coordinates.
// Its state is [pos_x, pos_y, vel_x, vel_y] where positions are in
// thousandths of a degree and velocities in thousandths of a position
// unit per second; only the two position channels are observable.
type CV struct {
	// f is state propagation matrix
	f *mat.Dense
	// h is observation matrix
	h *mat.Dense
	// scale relates velocity units to position units
	scale float64
}

// NewCV creates new CV model with the given unit scale, which reconciles
// velocity units with position units over a one second interval.
// It returns error if scale is not positive.
func NewCV(scale float64) (*CV, error) {
	if scale <= 0 {
		return nil, fmt.Errorf("invalid unit scale: %f", scale)
	}

	f, err := matrix.NewDenseValIdentity(4, 1.0)
	if err != nil {
		return nil, err
	}

	h := mat.NewDense(2, 4, []float64{
		1.0, 0.0, 0.0, 0.0,
		0.0, 1.0, 0.0, 0.0,
	})

	return &CV{
		f:     f,
		h:     h,
		scale: scale,
	}, nil
}

// SetInterval rewrites the time coupling entries of the state propagation
// matrix to reflect an elapsed interval of dt seconds.
func (c *CV) SetInterval(dt float64) {
	c.f.Set(0, 2, c.scale*dt)
	c.f.Set(1, 3, c.scale*dt)
}

// Propagate propagates state x to the next step
func (c *CV) Propagate(x mat.Vector) (mat.Vector, error) {
	nx, _ := c.Dims()
	if x.Len() != nx {
		return nil, fmt.Errorf("invalid state vector dimension: %d", x.Len())
	}

	out := new(mat.Dense)
	out.Mul(c.f, x)

	return out.ColView(0), nil
}

// Observe observes external state given internal state x
func (c *CV) Observe(x mat.Vector) (mat.Vector, error) {
	nx, _ := c.Dims()
	if x.Len() != nx {
		return nil, fmt.Errorf("invalid state vector dimension: %d", x.Len())
	}

	out := new(mat.Dense)
	out.Mul(c.h, x)

	return out.ColView(0), nil
}

// Dims returns state and output dimensions of the model
func (c *CV) Dims() (nx, ny int) {
	nx, _ = c.f.Dims()
	ny, _ = c.h.Dims()

	return nx, ny
}

// StateMatrix returns state propagation matrix
func (c *CV) StateMatrix() mat.Matrix {
	m := &mat.Dense{}
	m.CloneFrom(c.f)

	return m
}

// OutputMatrix returns observation matrix
func (c *CV) OutputMatrix() mat.Matrix {
	m := &mat.Dense{}
	m.CloneFrom(c.h)

	return m
}
