package option_test

import (
	"encoding/json"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/typecascade/core/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionMaybe(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "cascade.option")
	defer teardown()
	//
	pattern := option.Maybe[float64]{
		option.None: func(float64) float64 { return 400 },
		option.Some: func(x float64) float64 { return x + 1 },
	}
	y1, err := option.Of(699.0).Match(pattern)
	require.NoError(t, err)
	assert.Equal(t, 700.0, y1)
	y2, err := option.Empty[float64]().Match(pattern)
	require.NoError(t, err)
	assert.Equal(t, 400.0, y2)
	//
	_, err = option.Empty[float64]().Match(option.Maybe[float64]{})
	assert.ErrorIs(t, err, option.ErrCannotMatchUnsetValue)
}

func TestOptionOrElse(t *testing.T) {
	assert.Equal(t, "x", option.Empty[string]().OrElse("x"))
	assert.Equal(t, "y", option.Of("y").OrElse("x"))
	assert.True(t, option.Empty[int]().Or(option.Of(3)).Equal(option.Of(3)))
	assert.True(t, option.Empty[int]().Equal(option.Empty[int]()))
	assert.False(t, option.Of(0).Equal(option.Empty[int]()))
}

func TestOptionJSON(t *testing.T) {
	type doc struct {
		Scale option.T[float64] `json:"scale"`
		Color option.T[string]  `json:"color"`
	}
	b, err := json.Marshal(doc{Scale: option.Of(80.0)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"scale":80,"color":null}`, string(b))
	var d doc
	require.NoError(t, json.Unmarshal([]byte(`{"scale":null,"color":"#f00"}`), &d))
	assert.True(t, d.Scale.IsNone())
	assert.Equal(t, "#f00", d.Color.Unwrap())
}

func TestOptionPtr(t *testing.T) {
	x := 1.5
	assert.Equal(t, 1.5, option.FromPtr(&x).Unwrap())
	assert.Nil(t, option.Empty[float64]().Ptr())
	assert.Equal(t, 2.0, *option.Of(2.0).Ptr())
}
