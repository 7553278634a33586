package percent

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercentConversions(t *testing.T) {
	assert.Equal(t, Percent(0), FromInt(-3))
	assert.Equal(t, Percent(120), FromInt(120))
	assert.Equal(t, Percent(0), FromFloat(math.NaN()))
	assert.Equal(t, Percent(80), FromRatio(0.8))
	assert.InDelta(t, 0.875, Percent(87.5).Ratio(), 1e-9)
}

func TestPercentString(t *testing.T) {
	for in, out := range map[Percent]string{
		80:       "80%",
		87.5:     "87.5%",
		100:      "100%",
		33.33333: "33.33%",
	} {
		assert.Equal(t, out, in.String())
	}
}

func TestPercentFromString(t *testing.T) {
	p, err := FromString(" 92% ")
	assert.NoError(t, err)
	assert.Equal(t, Percent(92), p)
	_, err = FromString("wide")
	assert.Error(t, err)
	assert.True(t, Percent(100.001).IsIdentity())
	assert.False(t, Percent(99).IsIdentity())
}
