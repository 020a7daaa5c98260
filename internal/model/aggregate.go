package model

import "encoding/json"

// FuelTotals accumulates quantity per fuel type preserving insertion order,
// so aggregated payloads list fuels in the order orders referenced them.
type FuelTotals struct {
	keys   []string
	totals map[string]float64
}

func NewFuelTotals() *FuelTotals {
	return &FuelTotals{totals: make(map[string]float64)}
}

func (f *FuelTotals) Add(fuel string, quantity float64) {
	if _, ok := f.totals[fuel]; !ok {
		f.keys = append(f.keys, fuel)
	}
	f.totals[fuel] += quantity
}

func (f *FuelTotals) Get(fuel string) float64 {
	return f.totals[fuel]
}

func (f *FuelTotals) Fuels() []string {
	out := make([]string, len(f.keys))
	copy(out, f.keys)
	return out
}

func (f *FuelTotals) Len() int {
	return len(f.keys)
}

// MarshalJSON emits an object with keys in insertion order.
func (f *FuelTotals) MarshalJSON() ([]byte, error) {
	buf := []byte{'{'}
	for i, k := range f.keys {
		if i > 0 {
			buf = append(buf, ',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(f.totals[k])
		if err != nil {
			return nil, err
		}
		buf = append(buf, kb...)
		buf = append(buf, ':')
		buf = append(buf, vb...)
	}
	return append(buf, '}'), nil
}

// AggregatedGroup is one destination station with its contributing orders
// and per-fuel quantity totals.
type AggregatedGroup struct {
	Station    *Station    `json:"station"`
	Orders     []*Order    `json:"orders"`
	FuelTotals *FuelTotals `json:"fuel_totals"`
}

// AggregationSummary spans all groups of one aggregation run.
type AggregationSummary struct {
	TotalStations int         `json:"total_stations"`
	TotalOrders   int         `json:"total_orders"`
	FuelTotals    *FuelTotals `json:"fuel_totals"`
}
