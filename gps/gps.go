package gps

import (
	"errors"
	"fmt"

	"github.com/rfox90/ikalman"
	"github.com/rfox90/ikalman/estimate"
	"github.com/rfox90/ikalman/geo"
	"github.com/rfox90/ikalman/kalman"
	"github.com/rfox90/ikalman/matrix"
	"github.com/rfox90/ikalman/model"
	"github.com/rfox90/ikalman/noise"
	"gonum.org/v1/gonum/mat"
)

// The position units are in thousandths of latitude and longitude.
// The velocity units are in thousandths of position units per second.
//
// So if there is one second per timestep, a velocity of 1 will change
// the lat or lon by 1 after a million timesteps.
const (
	// unitScale relates velocity units to position units
	unitScale = 0.001
	// obsScale converts degrees into position units
	obsScale = 1000.0
	// posNoise is the process noise of the position channels
	posNoise = 0.000001
	// velNoise is the process noise of the velocity channels
	velNoise = 1.0
	// initVariance makes the start position totally unknown
	initVariance = 1e12
)

var (
	// ErrInvalidNoise is returned when constructing an estimator with negative observation noise.
	ErrInvalidNoise = errors.New("invalid observation noise")
	// ErrInvalidInterval is returned when a fix is ingested with a non-positive elapsed interval.
	ErrInvalidInterval = errors.New("invalid fix interval")
)

// Estimator estimates smoothed 2D position and velocity from a stream of
// noisy GPS fixes. It runs a Kalman filter with a constant velocity motion
// model in geographic coordinates and derives bearing and ground speed
// from the filtered state.
//
// Estimator is not safe for concurrent use: callers sharing one instance
// across goroutines must serialize access to it.
type Estimator struct {
	// cv is the constant velocity motion model
	cv *model.CV
	// kf is the filter the estimator drives
	kf *kalman.KF
}

// New creates new Estimator and returns it. The noise parameter is a
// non-negative multiplicative scale on observation trust: larger values
// make the filter trust raw fixes less.
// It returns ErrInvalidNoise if noise is negative.
func New(noiseScale float64) (*Estimator, error) {
	if noiseScale < 0 {
		return nil, fmt.Errorf("%w: %f", ErrInvalidNoise, noiseScale)
	}

	cv, err := model.NewCV(unitScale)
	if err != nil {
		return nil, err
	}
	cv.SetInterval(1.0)

	initCov, err := matrix.NewSymValIdentity(4, initVariance)
	if err != nil {
		return nil, err
	}
	ic := model.NewInitCond(mat.NewVecDense(4, nil), initCov)

	q, err := noise.NewDiagonal(posNoise, posNoise, velNoise, velNoise)
	if err != nil {
		return nil, err
	}

	r, err := noise.NewDiagonal(posNoise*noiseScale, posNoise*noiseScale)
	if err != nil {
		return nil, err
	}

	kf, err := kalman.New(cv, ic, q, r)
	if err != nil {
		return nil, err
	}

	return &Estimator{
		cv: cv,
		kf: kf,
	}, nil
}

// Update ingests one GPS fix: latitude and longitude in degrees together
// with the elapsed time since the previous fix in seconds. It runs one
// predict and correct cycle of the filter.
// It returns ErrInvalidInterval if dt is not positive; the estimator state
// is left untouched on error.
func (e *Estimator) Update(lat, lon, dt float64) error {
	if dt <= 0 {
		return fmt.Errorf("%w: %f", ErrInvalidInterval, dt)
	}

	e.cv.SetInterval(dt)

	z := mat.NewVecDense(2, []float64{lat * obsScale, lon * obsScale})
	if _, err := e.kf.Run(z); err != nil {
		return err
	}

	return nil
}

// Position returns the estimated latitude and longitude in degrees.
func (e *Estimator) Position() (lat, lon float64) {
	x := e.kf.State()

	return x.AtVec(0) / obsScale, x.AtVec(1) / obsScale
}

// Velocity returns the estimated change of latitude and longitude in
// degrees per second.
func (e *Estimator) Velocity() (dlat, dlon float64) {
	x := e.kf.State()

	return x.AtVec(2) / (obsScale * obsScale), x.AtVec(3) / (obsScale * obsScale)
}

// Bearing returns the estimated compass bearing in degrees in the range [0, 360).
// Its value is meaningless before the first fix has been ingested.
func (e *Estimator) Bearing() float64 {
	lat, lon := e.Position()
	dlat, dlon := e.Velocity()

	return geo.Bearing(lat, lon, dlat, dlon)
}

// SpeedMPH returns the estimated ground speed in miles per hour.
// Its value is meaningless before the first fix has been ingested.
func (e *Estimator) SpeedMPH() float64 {
	lat, lon := e.Position()
	dlat, dlon := e.Velocity()

	return geo.SpeedMPH(lat, lon, dlat, dlon)
}

// Cov returns the covariance of the state estimate.
func (e *Estimator) Cov() mat.Symmetric {
	return e.kf.Cov()
}

// Estimate returns the current state estimate of the filter.
func (e *Estimator) Estimate() (ikalman.Estimate, error) {
	return estimate.NewBaseWithCov(e.kf.State(), e.kf.Cov())
}

// Model returns the motion model the estimator drives.
func (e *Estimator) Model() ikalman.DiscreteModel {
	return e.kf.Model()
}

// ProcessNoise returns the process noise of the underlying filter.
func (e *Estimator) ProcessNoise() ikalman.Noise {
	return e.kf.ProcessNoise()
}
