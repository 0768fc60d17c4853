package hedging

import (
	"fmt"
	"math"

	"github.com/elys-network/hedgevault/internal/types"
)

// EquilibriumDenominator returns 1 - tcr*(1 - 1/w), the divisor of the equilibrium solution.
// A weight outside (0, 1) or a denominator near zero is a configuration error.
func EquilibriumDenominator(tcr, w float64) (float64, error) {
	if err := ValidateWeight(w); err != nil {
		return 0, err
	}
	d := 1 - tcr*(1-1/w)
	if math.Abs(d) < denominatorEpsilon {
		return 0, fmt.Errorf("%w: equilibrium denominator %g is near zero (tcr=%g, w=%g)", ErrConfiguration, d, tcr, w)
	}
	return d, nil
}

// EquilibriumPosition solves for the position holding total equity with debt/collateral = tcr
// and exposure = te, for a pool weight w on the variable asset.
func EquilibriumPosition(total, tcr, te, w float64) (types.Position, error) {
	d, err := EquilibriumDenominator(tcr, w)
	if err != nil {
		return types.Position{}, err
	}
	if math.IsNaN(total) || math.IsInf(total, 0) || total <= 0 {
		return types.Position{}, fmt.Errorf("%w: total %g must be positive", ErrConfiguration, total)
	}
	if !isFinite(tcr) || !isFinite(te) {
		return types.Position{}, fmt.Errorf("%w: targets tcr=%g te=%g must be finite", ErrConfiguration, tcr, te)
	}

	targetExposureValue := te * total
	collateral := (total - targetExposureValue/w) / d
	debt := collateral * tcr
	liquidity := total - collateral + debt

	p := types.Position{Collateral: collateral, Debt: debt, Liquidity: liquidity}
	if !isFinite(collateral) || !isFinite(debt) || !isFinite(liquidity) {
		return p, fmt.Errorf("%w: targets tcr=%g te=%g w=%g give a non-finite position %+v", ErrConfiguration, tcr, te, w, p)
	}
	if collateral < 0 || debt < 0 || liquidity < 0 {
		return p, fmt.Errorf("%w: targets tcr=%g te=%g w=%g give a negative position %+v", ErrConfiguration, tcr, te, w, p)
	}
	return p, nil
}

// DeriveState recovers the collateral ratio and exposure of a position.
// Zero or negative collateral or total equity leaves both undefined and returns ErrDegenerateState.
func DeriveState(p types.Position, w float64) (collateralRatio, exposure float64, err error) {
	if !isFinite(p.Collateral) || !isFinite(p.Debt) || !isFinite(p.Liquidity) {
		return 0, 0, fmt.Errorf("%w: non-finite position %+v", ErrDegenerateState, p)
	}
	if p.Collateral <= 0 {
		return 0, 0, fmt.Errorf("%w: collateral %g leaves the collateral ratio undefined", ErrDegenerateState, p.Collateral)
	}
	total := p.Total()
	if total <= 0 {
		return 0, 0, fmt.Errorf("%w: total %g leaves the exposure undefined", ErrDegenerateState, total)
	}
	collateralRatio = p.Debt / p.Collateral
	exposure = (p.Liquidity*w - p.Debt) / total
	return collateralRatio, exposure, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
