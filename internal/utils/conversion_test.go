package utils

import (
	"math"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloat64ToLegacyDec(t *testing.T) {
	dec, err := Float64ToLegacyDec(62.5, 6)
	require.NoError(t, err)
	assert.True(t, dec.Equal(sdkmath.LegacyMustNewDecFromStr("62.5")))

	dec, err = Float64ToLegacyDec(-11.409375, 6)
	require.NoError(t, err)
	assert.True(t, dec.IsNegative())
	assert.Equal(t, "-11.409375000000000000", dec.String())

	dec, err = Float64ToLegacyDec(1.0/3.0, 4)
	require.NoError(t, err)
	assert.Equal(t, "0.333300000000000000", dec.String())
}

func TestFloat64ToLegacyDec_Errors(t *testing.T) {
	_, err := Float64ToLegacyDec(1, -1)
	assert.ErrorIs(t, err, ErrInvalidPrecision)

	_, err = Float64ToLegacyDec(1, 19)
	assert.ErrorIs(t, err, ErrInvalidPrecision)

	_, err = Float64ToLegacyDec(math.NaN(), 6)
	assert.ErrorIs(t, err, ErrNotFinite)

	_, err = Float64ToLegacyDec(math.Inf(-1), 6)
	assert.ErrorIs(t, err, ErrNotFinite)
}

func TestLegacyDecToFloat64(t *testing.T) {
	v, err := LegacyDecToFloat64(sdkmath.LegacyMustNewDecFromStr("-37.5"))
	require.NoError(t, err)
	assert.Equal(t, -37.5, v)

	_, err = LegacyDecToFloat64(sdkmath.LegacyDec{})
	assert.ErrorIs(t, err, ErrAmountNil)
}

func TestFormatAndParseAmount(t *testing.T) {
	s, err := FormatAmount(79.975, 6)
	require.NoError(t, err)
	assert.Equal(t, "79.975000000000000000", s)

	v, err := ParseAmount(s)
	require.NoError(t, err)
	assert.InDelta(t, 79.975, v, 1e-12)

	_, err = ParseAmount("not-a-number")
	assert.ErrorIs(t, err, ErrConversionFailed)
}
