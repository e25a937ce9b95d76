package synthetic

import (
	"math/rand/v2"
	"time"

	"portfolio/record"
)

const (
	// TrendPoints is the length of every synthetic series, one point per month.
	TrendPoints = 12

	// Bounds of the month over month multiplicative drift
	MinDrift = -0.02
	MaxDrift = 0.03
)

type market struct {
	location    string
	medianPrice float64
	inventory   int
}

var markets = []market{
	{location: "Austin, TX", medianPrice: 545000, inventory: 3400},
	{location: "San Diego, CA", medianPrice: 905000, inventory: 2100},
	{location: "Denver, CO", medianPrice: 610000, inventory: 4700},
	{location: "Columbus, OH", medianPrice: 285000, inventory: 2900},
}

// MarketTrends returns a trends generator drawing its drift from rng. A nil
// rng uses the shared top-level source.
func MarketTrends(rng *rand.Rand) Generator[record.MarketTrend] {
	return func(now time.Time) []record.MarketTrend {
		return Trends(now, rng)
	}
}

// Trends builds one series per tracked location. Each series ends with the
// month of now; each value is the previous one moved by a drift drawn from
// [MinDrift, MaxDrift].
func Trends(now time.Time, rng *rand.Rand) []record.MarketTrend {
	float := rand.Float64
	if rng != nil {
		float = rng.Float64
	}
	drift := func() float64 {
		return MinDrift + (MaxDrift-MinDrift)*float()
	}

	month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	trends := make([]record.MarketTrend, 0, len(markets))
	for i, m := range markets {
		series := make([]record.TrendPoint, TrendPoints)
		price := m.medianPrice
		inventory := float64(m.inventory)
		for p := range series {
			if p > 0 {
				price *= 1 + drift()
				inventory *= 1 + drift()
			}
			series[p] = record.TrendPoint{
				Date:           month.AddDate(0, p-(TrendPoints-1), 0),
				MedianPrice:    price,
				InventoryCount: int(inventory),
			}
		}

		trends = append(trends, record.MarketTrend{
			Meta:       meta(int64(i+1), now, now),
			Location:   m.location,
			TimeSeries: series,
		})
	}
	return trends
}
