package noise

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDiagonal(t *testing.T) {
	assert := assert.New(t)

	d, err := NewDiagonal(1e-6, 1e-6, 1.0, 1.0)
	assert.NotNil(d)
	assert.NoError(err)

	// no variances
	d, err = NewDiagonal()
	assert.Nil(d)
	assert.Error(err)

	// negative variance
	d, err = NewDiagonal(1.0, -1.0)
	assert.Nil(d)
	assert.Error(err)
}

func TestDiagonalMeanCovSample(t *testing.T) {
	assert := assert.New(t)

	vars := []float64{0.5, 2.0}
	d, err := NewDiagonal(vars...)
	assert.NotNil(d)
	assert.NoError(err)

	mean := d.Mean()
	assert.EqualValues([]float64{0, 0}, mean)

	cov := d.Cov()
	assert.Equal(len(vars), cov.SymmetricDim())
	for i := 0; i < len(vars); i++ {
		for j := 0; j < len(vars); j++ {
			if i == j {
				assert.Equal(vars[i], cov.At(i, j))
				continue
			}
			assert.Equal(0.0, cov.At(i, j))
		}
	}

	// samples are deterministically zero
	sample := d.Sample()
	assert.Equal(len(vars), sample.Len())
	for i := 0; i < sample.Len(); i++ {
		assert.Equal(0.0, sample.AtVec(i))
	}

	d.Reset()
	assert.Equal(0.0, d.Sample().AtVec(0))
}
