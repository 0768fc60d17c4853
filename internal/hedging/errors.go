package hedging

import (
	"errors"
	"fmt"
	"math"

	"github.com/elys-network/hedgevault/internal/types"
)

// Error definitions for the position algebra. Every failure returned by this package wraps one of them.
var (
	ErrConfiguration   = errors.New("configuration error")
	ErrDegenerateState = errors.New("degenerate position state")
)

// denominatorEpsilon is the smallest equilibrium denominator magnitude accepted.
const denominatorEpsilon = 1e-9

// NumericWarning reports an operation that moved more out of a balance than it held.
// It is informational: balances are never clamped.
type NumericWarning struct {
	Operation string  `json:"operation"`
	Field     string  `json:"field"`
	Requested float64 `json:"requested"`
	Available float64 `json:"available"`
}

func (w NumericWarning) String() string {
	return fmt.Sprintf("%s over-withdraws %s: requested %.8f, available %.8f", w.Operation, w.Field, w.Requested, w.Available)
}

func (w NumericWarning) Error() string {
	return w.String()
}

// ValidateWeight checks that a pool weight lies strictly inside (0, 1).
func ValidateWeight(w float64) error {
	if math.IsNaN(w) || w <= 0 || w >= 1 {
		return fmt.Errorf("%w: pool weight %g must be in (0, 1)", ErrConfiguration, w)
	}
	return nil
}

// ValidateStrategy checks every field of the strategy parameters, including the equilibrium denominator.
func ValidateStrategy(s types.StrategyParameters) error {
	if err := ValidateWeight(s.WeightVariable); err != nil {
		return fmt.Errorf("variable asset weight: %w", err)
	}
	if math.IsNaN(s.WeightSecondary) || s.WeightSecondary < 0 || s.WeightSecondary > 1 {
		return fmt.Errorf("%w: secondary asset weight %g must be in [0, 1]", ErrConfiguration, s.WeightSecondary)
	}
	if math.IsNaN(s.SwapFee) || s.SwapFee < 0 || s.SwapFee >= 1 {
		return fmt.Errorf("%w: swap fee %g must be in [0, 1)", ErrConfiguration, s.SwapFee)
	}
	if !isFinite(s.TargetCollateralRatio) || s.TargetCollateralRatio < 0 {
		return fmt.Errorf("%w: target collateral ratio %g must be finite and not negative", ErrConfiguration, s.TargetCollateralRatio)
	}
	if math.IsNaN(s.TargetExposure) || math.IsInf(s.TargetExposure, 0) {
		return fmt.Errorf("%w: target exposure %g is not finite", ErrConfiguration, s.TargetExposure)
	}
	if _, err := EquilibriumDenominator(s.TargetCollateralRatio, s.WeightVariable); err != nil {
		return err
	}
	return nil
}

// checkBalances returns a warning for every field of after that went negative.
func checkBalances(operation string, before, after types.Position) []NumericWarning {
	var warnings []NumericWarning
	fields := []struct {
		name          string
		before, after float64
	}{
		{"collateral", before.Collateral, after.Collateral},
		{"debt", before.Debt, after.Debt},
		{"liquidity", before.Liquidity, after.Liquidity},
	}
	for _, f := range fields {
		if f.after < 0 {
			warnings = append(warnings, NumericWarning{
				Operation: operation,
				Field:     f.name,
				Requested: f.before - f.after,
				Available: f.before,
			})
		}
	}
	return warnings
}
