package gps

import (
	"errors"
	"math"
	"testing"

	"github.com/rfox90/ikalman/noise"
	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestNew(t *testing.T) {
	assert := assert.New(t)

	e, err := New(1.0)
	assert.NotNil(e)
	assert.NoError(err)

	// zero noise scale is allowed
	e, err = New(0.0)
	assert.NotNil(e)
	assert.NoError(err)

	// negative noise scale is not
	e, err = New(-1.0)
	assert.Nil(e)
	assert.Error(err)
	assert.True(errors.Is(err, ErrInvalidNoise))
}

func TestNewStartsUnknown(t *testing.T) {
	assert := assert.New(t)

	for _, noiseScale := range []float64{0.0, 1.0, 100.0} {
		e, err := New(noiseScale)
		assert.NotNil(e)
		assert.NoError(err)

		// the start position is totally unknown
		assert.True(mat.Trace(e.Cov()) >= 1e12)

		lat, lon := e.Position()
		assert.Equal(0.0, lat)
		assert.Equal(0.0, lon)
	}
}

func TestUpdateInvalidInterval(t *testing.T) {
	assert := assert.New(t)

	e, err := New(1.0)
	assert.NotNil(e)
	assert.NoError(err)

	assert.NoError(e.Update(51.5, -0.1, 1.0))

	lat, lon := e.Position()
	trace := mat.Trace(e.Cov())

	for _, dt := range []float64{0.0, -1.0} {
		err := e.Update(52.0, 0.5, dt)
		assert.Error(err)
		assert.True(errors.Is(err, ErrInvalidInterval))
	}

	// the rejected fixes must not mutate the estimator state
	lat2, lon2 := e.Position()
	assert.Equal(lat, lat2)
	assert.Equal(lon, lon2)
	assert.Equal(trace, mat.Trace(e.Cov()))
}

func TestUpdateConvergesToFix(t *testing.T) {
	assert := assert.New(t)

	e, err := New(1.0)
	assert.NotNil(e)
	assert.NoError(err)

	// feeding the same fix over and over drives the velocity to zero
	// and shrinks the covariance trace monotonically
	prev := mat.Trace(e.Cov())
	for i := 0; i < 30; i++ {
		assert.NoError(e.Update(10.0, 20.0, 1.0))

		trace := mat.Trace(e.Cov())
		assert.True(trace <= prev+1e-9, "trace grew from %v to %v on fix %d", prev, trace, i)
		prev = trace
	}

	lat, lon := e.Position()
	assert.InDelta(10.0, lat, 1e-6)
	assert.InDelta(20.0, lon, 1e-6)

	dlat, dlon := e.Velocity()
	assert.InDelta(0.0, dlat, 1e-6)
	assert.InDelta(0.0, dlon, 1e-6)
}

func TestVelocityConvergence(t *testing.T) {
	assert := assert.New(t)

	e, err := New(1.0)
	assert.NotNil(e)
	assert.NoError(err)

	// constant velocity path: one thousandth of a degree of latitude per second
	for k := 0; k <= 20; k++ {
		assert.NoError(e.Update(0.001*float64(k), 0.0, 1.0))
	}

	dlat, dlon := e.Velocity()
	assert.InDelta(0.001, dlat, 1e-4)
	assert.InDelta(0.0, dlon, 1e-4)
}

func TestVelocityConvergenceNoisyFixes(t *testing.T) {
	assert := assert.New(t)

	// noise scale of 100 matches the observation noise covariance to the
	// variance of the jitter below: 1e-10 deg^2 is 1e-4 position units^2
	e, err := New(100.0)
	assert.NotNil(e)
	assert.NoError(err)

	jitter, err := noise.NewGaussian([]float64{0, 0}, mat.NewSymDense(2, []float64{1e-10, 0, 0, 1e-10}))
	assert.NotNil(jitter)
	assert.NoError(err)

	// constant velocity path perturbed by gaussian noise on every fix
	for k := 0; k <= 40; k++ {
		sample := jitter.Sample()
		lat := 0.001*float64(k) + sample.AtVec(0)
		lon := sample.AtVec(1)
		assert.NoError(e.Update(lat, lon, 1.0))
	}

	dlat, dlon := e.Velocity()
	assert.InDelta(0.001, dlat, 2e-4)
	assert.InDelta(0.0, dlon, 2e-4)

	lat, lon := e.Position()
	assert.InDelta(0.04, lat, 1e-3)
	assert.InDelta(0.0, lon, 1e-3)
}

func TestBearing(t *testing.T) {
	assert := assert.New(t)

	testCases := []struct {
		name string
		dlat float64
		dlon float64
		want float64
	}{
		{"north", 0.001, 0.0, 0.0},
		{"east", 0.0, 0.001, 90.0},
		{"south", -0.001, 0.0, 180.0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			e, err := New(1.0)
			assert.NotNil(e)
			assert.NoError(err)

			lat, lon := 51.5, -0.1
			for k := 0; k <= 10; k++ {
				fk := float64(k)
				assert.NoError(e.Update(lat+tc.dlat*fk, lon+tc.dlon*fk, 1.0))
			}

			got := e.Bearing()
			// wrap the distance around the compass
			diff := math.Abs(got - tc.want)
			if diff > 180.0 {
				diff = 360.0 - diff
			}
			assert.True(diff < 5.0, "bearing %f, want %f", got, tc.want)
			assert.True(e.SpeedMPH() >= 0.0)
		})
	}
}

func TestEndToEnd(t *testing.T) {
	assert := assert.New(t)

	e, err := New(1.0)
	assert.NotNil(e)
	assert.NoError(err)

	// eastward track along the equator
	assert.NoError(e.Update(0.0, 0.0, 1.0))
	assert.NoError(e.Update(0.0, 0.001, 1.0))
	assert.NoError(e.Update(0.0, 0.002, 1.0))

	bearing := e.Bearing()
	assert.InDelta(90.0, bearing, 5.0)

	assert.True(e.SpeedMPH() > 0.0)

	lat, lon := e.Position()
	assert.InDelta(0.0, lat, 1e-4)
	assert.InDelta(0.002, lon, 1e-4)
}

func TestAccessors(t *testing.T) {
	assert := assert.New(t)

	e, err := New(1.0)
	assert.NotNil(e)
	assert.NoError(err)

	assert.NotNil(e.Model())
	assert.NotNil(e.ProcessNoise())

	est, err := e.Estimate()
	assert.NotNil(est)
	assert.NoError(err)
	assert.Equal(4, est.Val().Len())
}
