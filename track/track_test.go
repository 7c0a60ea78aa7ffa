package track

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReader(t *testing.T) {
	assert := assert.New(t)

	input := strings.Join([]string{
		"51.5007,-0.1246",
		"not a fix",
		"",
		"51.5008",
		"51.5009,-0.1248,12.5,extra",
		"  51.5010 , -0.1249 ",
		"abc,def",
		"51.5011,xyz",
	}, "\n")

	want := []Fix{
		{Lat: 51.5007, Lon: -0.1246},
		{Lat: 51.5009, Lon: -0.1248},
		{Lat: 51.5010, Lon: -0.1249},
	}

	r := NewReader(strings.NewReader(input))

	var got []Fix
	for r.Scan() {
		got = append(got, r.Fix())
	}

	assert.NoError(r.Err())
	assert.Equal(want, got)
}

func TestReaderEmpty(t *testing.T) {
	assert := assert.New(t)

	r := NewReader(strings.NewReader(""))
	assert.False(r.Scan())
	assert.NoError(r.Err())
}

func TestNew2DPlot(t *testing.T) {
	assert := assert.New(t)

	raw := []Fix{{51.5007, -0.1246}, {51.5009, -0.1248}}
	filtered := []Fix{{51.5007, -0.1246}, {51.5008, -0.1247}}
	smoothed := []Fix{{51.5007, -0.1246}, {51.5008, -0.1247}}

	p, err := New2DPlot(raw, filtered, smoothed)
	assert.NotNil(p)
	assert.NoError(err)

	// smoothed track is optional
	p, err = New2DPlot(raw, filtered, nil)
	assert.NotNil(p)
	assert.NoError(err)

	// raw and filtered tracks are not
	p, err = New2DPlot(nil, filtered, nil)
	assert.Nil(p)
	assert.Error(err)

	p, err = New2DPlot(raw, nil, nil)
	assert.Nil(p)
	assert.Error(err)
}
