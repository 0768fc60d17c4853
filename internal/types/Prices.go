package types

import "time"

// PriceData holds historical price info
type PriceData struct {
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
}

// Closes returns the prices of data in order.
func Closes(data []PriceData) []float64 {
	out := make([]float64, len(data))
	for i, d := range data {
		out[i] = d.Price
	}
	return out
}
