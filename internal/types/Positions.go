/*

This file contains the position type of the hedged strategy: collateral, debt and a liquidity pool stake.

*/

package types

// Position is the state of the strategy at a point in time.
// Debt is denominated in the price-exposed asset.
type Position struct {
	Collateral float64 `json:"collateral"`
	Debt       float64 `json:"debt"`
	Liquidity  float64 `json:"liquidity"`
}

// Total returns the net equity of the position.
func (p Position) Total() float64 {
	return p.Collateral - p.Debt + p.Liquidity
}
