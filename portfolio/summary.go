package portfolio

import "portfolio/record"

// Summary of the loaded properties
type Summary struct {
	TotalProperties int     `json:"total_properties"`
	TotalValue      float64 `json:"total_value"`
	AverageRent     float64 `json:"average_rent"`
	// Percentage of occupied properties, 0 to 100
	OccupancyRate float64 `json:"occupancy_rate"`
}

// Summarize aggregates properties. Unset values and rents are left out of the
// total and the average.
func Summarize(properties []record.Property) Summary {
	var s Summary
	s.TotalProperties = len(properties)
	if s.TotalProperties == 0 {
		return s
	}

	var rentSum float64
	var rented, occupied int
	for _, p := range properties {
		s.TotalValue += p.CurrentValue
		if p.MonthlyRent > 0 {
			rentSum += p.MonthlyRent
			rented++
		}
		if p.Status == record.PropertyOccupied {
			occupied++
		}
	}
	if rented > 0 {
		s.AverageRent = rentSum / float64(rented)
	}
	s.OccupancyRate = float64(occupied) / float64(s.TotalProperties) * 100
	return s
}

func (p *Portfolio) Summary() Summary {
	return Summarize(p.Properties.Items())
}
