/*
This file contains common utility functions for converting between float64 simulation values
and fixed-precision SDK decimals used when amounts are archived or reported.
*/

package utils

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	sdkmath "cosmossdk.io/math"
)

// Error definitions for zero-tolerance error handling
var (
	ErrInvalidPrecision = errors.New("precision is invalid")
	ErrAmountNil        = errors.New("amount is nil")
	ErrNotFinite        = errors.New("value is not finite")
	ErrConversionFailed = errors.New("conversion failed")
)

// Float64ToLegacyDec converts a float64 to an SDK decimal rounded to precision fractional digits.
// Negative values are allowed since positions can carry negative balances after an over-withdrawal.
func Float64ToLegacyDec(amount float64, precision int) (sdkmath.LegacyDec, error) {
	if precision < 0 || precision > sdkmath.LegacyPrecision {
		return sdkmath.LegacyZeroDec(), fmt.Errorf("%w: %d (must be between 0 and %d)", ErrInvalidPrecision, precision, sdkmath.LegacyPrecision)
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return sdkmath.LegacyZeroDec(), fmt.Errorf("%w: amount is %f", ErrNotFinite, amount)
	}
	if amount == 0 {
		return sdkmath.LegacyZeroDec(), nil
	}

	// Use string conversion to avoid floating point precision issues
	amountStr := strconv.FormatFloat(amount, 'f', precision, 64)

	dec, err := sdkmath.LegacyNewDecFromStr(amountStr)
	if err != nil {
		return sdkmath.LegacyZeroDec(), fmt.Errorf("%w: failed to create decimal from string: %w", ErrConversionFailed, err)
	}
	return dec, nil
}

// LegacyDecToFloat64 converts an SDK decimal back to float64.
func LegacyDecToFloat64(dec sdkmath.LegacyDec) (float64, error) {
	if dec.IsNil() {
		return 0, ErrAmountNil
	}

	result, err := dec.Float64()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrConversionFailed, err)
	}
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return 0, fmt.Errorf("%w: result is %f", ErrNotFinite, result)
	}
	return result, nil
}

// FormatAmount renders amount with precision fractional digits through an SDK decimal.
func FormatAmount(amount float64, precision int) (string, error) {
	dec, err := Float64ToLegacyDec(amount, precision)
	if err != nil {
		return "", err
	}
	return dec.String(), nil
}

// ParseAmount parses a decimal string written by FormatAmount.
func ParseAmount(s string) (float64, error) {
	dec, err := sdkmath.LegacyNewDecFromStr(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrConversionFailed, err)
	}
	return LegacyDecToFloat64(dec)
}
