package hedging

import (
	"fmt"

	"github.com/elys-network/hedgevault/internal/types"
)

// ExposureRetarget is the outcome of RetargetExposure.
type ExposureRetarget struct {
	Position types.Position // Reached after unwinding and re-pooling
	Intended types.Position // Equilibrium for the new target at the pre-retarget total
	Fees     float64        // Swap fees paid on shortfall legs and on the final re-pool swap
	Warnings []NumericWarning
}

// tokenLegs holds the two sides of an unwound pool stake, valued in the same unit as the position.
type tokenLegs struct {
	variable  float64 // token1
	secondary float64 // token2
}

// RetargetExposure re-equilibrates the position for a new target exposure. The pool stake is
// split into two equal token legs, collateral and debt are moved toward the new equilibrium in a
// fixed order, and the leftover legs are balanced with one swap and returned to the pool.
func RetargetExposure(p types.Position, newTE, tcr, w, swapFee float64) (ExposureRetarget, error) {
	intended, err := EquilibriumPosition(p.Total(), tcr, newTE, w)
	if err != nil {
		return ExposureRetarget{}, fmt.Errorf("failed to solve equilibrium for target exposure %g: %w", newTE, err)
	}

	legs := tokenLegs{variable: p.Liquidity / 2, secondary: p.Liquidity / 2}
	collateral := p.Collateral
	debt := p.Debt
	var fees float64
	var warnings []NumericWarning

	// 1. Add collateral from token1, converting any shortfall from token2.
	if add := intended.Collateral - p.Collateral; add > 0 {
		if legs.variable >= add {
			legs.variable -= add
			collateral = p.Collateral + add
		} else {
			missing := add - legs.variable
			warnings = appendLegWarning(warnings, "retarget_add_collateral", "token2", missing, legs.secondary)
			legs.secondary -= missing
			legs.variable += missing * (1 - swapFee)
			fees += missing * swapFee
			collateral = p.Collateral + legs.variable
			legs.variable = 0
		}
	}

	// 2. Repay debt from token2, converting any shortfall from token1.
	if repay := p.Debt - intended.Debt; repay > 0 {
		if legs.secondary >= repay {
			legs.secondary -= repay
			debt = p.Debt - repay
		} else {
			missing := repay - legs.secondary
			warnings = appendLegWarning(warnings, "retarget_repay_debt", "token1", missing, legs.variable)
			legs.variable -= missing
			legs.secondary += missing * (1 - swapFee)
			fees += missing * swapFee
			debt = p.Debt - legs.secondary
			legs.secondary = 0
		}
	}

	// 3. Withdraw excess collateral into token1.
	if remove := p.Collateral - intended.Collateral; remove > 0 {
		collateral = p.Collateral - remove
		legs.variable += remove
	}

	// 4. Borrow into token2.
	if borrow := intended.Debt - p.Debt; borrow > 0 {
		debt = p.Debt + borrow
		legs.secondary += borrow
	}

	// 5. Swap half of the imbalance and re-pool.
	if legs.variable > legs.secondary {
		qty := (legs.variable - legs.secondary) / 2
		legs.variable -= qty
		legs.secondary += qty * (1 - swapFee)
		fees += qty * swapFee
	} else if legs.secondary > legs.variable {
		qty := (legs.secondary - legs.variable) / 2
		legs.secondary -= qty
		legs.variable += qty * (1 - swapFee)
		fees += qty * swapFee
	}

	next := types.Position{
		Collateral: collateral,
		Debt:       debt,
		Liquidity:  legs.variable + legs.secondary,
	}
	warnings = append(warnings, checkBalances("exposure_retarget", p, next)...)

	return ExposureRetarget{
		Position: next,
		Intended: intended,
		Fees:     fees,
		Warnings: warnings,
	}, nil
}

func appendLegWarning(warnings []NumericWarning, operation, leg string, requested, available float64) []NumericWarning {
	if requested <= available {
		return warnings
	}
	return append(warnings, NumericWarning{
		Operation: operation,
		Field:     leg,
		Requested: requested,
		Available: available,
	})
}
