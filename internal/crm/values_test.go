package crm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsEmpty(t *testing.T) {
	assert.True(t, IsEmpty(nil))
	assert.True(t, IsEmpty(""))

	assert.False(t, IsEmpty(0), "zero is a real value")
	assert.False(t, IsEmpty(false), "false is a real value")
	assert.False(t, IsEmpty("0"))
}

func TestIsTruthy(t *testing.T) {
	assert.False(t, IsTruthy(nil))
	assert.False(t, IsTruthy(""))
	assert.False(t, IsTruthy(0))
	assert.False(t, IsTruthy(0.0))
	assert.False(t, IsTruthy(false))

	assert.True(t, IsTruthy("x"))
	assert.True(t, IsTruthy(1))
	assert.True(t, IsTruthy(true))
}

func TestEqualAcrossTypes(t *testing.T) {
	assert.True(t, Equal(7, 7.0), "JSON numbers arrive as float64")
	assert.True(t, Equal("7", 7))
	assert.True(t, Equal("jane", "jane"))
	assert.True(t, Equal(nil, nil))
	assert.True(t, Equal(true, true))

	assert.False(t, Equal(nil, ""))
	assert.False(t, Equal(7, 8))
	assert.False(t, Equal(true, false))
}

func TestStringRendersWholeFloatsWithoutDecimals(t *testing.T) {
	assert.Equal(t, "7", String(7.0))
	assert.Equal(t, "7.5", String(7.5))
	assert.Equal(t, "7", String(7))
	assert.Equal(t, "", String(nil))
}

func TestInt(t *testing.T) {
	for _, v := range []any{7, int64(7), 7.0, "7"} {
		i, ok := Int(v)
		assert.True(t, ok)
		assert.Equal(t, 7, i)
	}

	_, ok := Int("seven")
	assert.False(t, ok)
}
