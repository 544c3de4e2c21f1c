package catalog

import (
	"math"
	"time"
)

// DefaultPriceCeiling bounds the price filter when no vehicles are loaded.
const DefaultPriceCeiling int64 = 1000

// Snapshot is one load of the available-vehicle collection together with the
// price bound derived from it. The bound is fixed for the snapshot's lifetime.
type Snapshot struct {
	Vehicles     []Vehicle `json:"vehicles"`
	PriceCeiling int64     `json:"priceCeiling"`
	LoadedAt     time.Time `json:"loadedAt"`
}

func NewSnapshot(vs []Vehicle, now time.Time) Snapshot {
	if vs == nil {
		vs = []Vehicle{}
	}
	return Snapshot{Vehicles: vs, PriceCeiling: PriceCeiling(vs), LoadedAt: now}
}

// PriceCeiling is the highest PriceNumeric rounded up to the next hundred.
func PriceCeiling(vs []Vehicle) int64 {
	if len(vs) == 0 {
		return DefaultPriceCeiling
	}
	var top int64
	for _, v := range vs {
		if v.PriceNumeric > top {
			top = v.PriceNumeric
		}
	}
	return int64(math.Ceil(float64(top)/100)) * 100
}
