package hedging

import (
	"math"

	"github.com/elys-network/hedgevault/internal/types"
)

// Yields are per-step rates for each leg of the position.
type Yields struct {
	Collateral float64
	Debt       float64
	Liquidity  float64
}

// PerStepYields converts the annualized rates of a run into per-step rates.
func PerStepYields(params types.RunParameters) Yields {
	steps := params.StepsPerYear()
	return Yields{
		Collateral: params.CollateralAPR / steps,
		Debt:       params.DebtAPR / steps,
		Liquidity:  params.LiquidityAPR / steps,
	}
}

// Accrue applies one step of yield and price movement without rebalancing.
// Debt follows the variable asset price; the pool stake follows the weighted geometric mean of both prices.
func Accrue(p types.Position, y Yields, priceChg, secondaryChg, w1, w2 float64) types.Position {
	return types.Position{
		Collateral: p.Collateral * (1 + y.Collateral),
		Debt:       p.Debt * (1 + priceChg) * (1 + y.Debt),
		Liquidity:  p.Liquidity * (1 + y.Liquidity) * math.Pow(1+priceChg, w1) * math.Pow(1+secondaryChg, w2),
	}
}
