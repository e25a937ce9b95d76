// Package synthetic produces placeholder records used when the remote source
// cannot be reached. Generators take the current time as input; records carry
// the same shape as real ones (ids 1..n, every required field set) so callers
// cannot tell them apart structurally.
package synthetic

import (
	"time"

	"portfolio/record"
)

// Generator builds the placeholder record set of one entity kind.
type Generator[T any] func(now time.Time) []T

func meta(id int64, created, updated time.Time) record.Meta {
	return record.Meta{ID: id, CreatedAt: created, UpdatedAt: updated}
}

func months(now time.Time, n int) time.Time {
	return now.AddDate(0, n, 0)
}

func days(now time.Time, n int) time.Time {
	return now.AddDate(0, 0, n)
}

// at returns the day n days from now at the given hour, on the hour.
func at(now time.Time, n int, hour int) time.Time {
	d := days(now, n)
	return time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, d.Location())
}

func Properties(now time.Time) []record.Property {
	return []record.Property{
		{
			Meta:          meta(1, months(now, -24), now),
			Title:         "Sunset Apartments",
			Address:       "1420 Sunset Blvd",
			City:          "Austin",
			State:         "TX",
			ZipCode:       "78701",
			PropertyType:  "multi-family",
			Bedrooms:      6,
			Bathrooms:     4,
			SquareFeet:    4200,
			PurchasePrice: 685000,
			CurrentValue:  742000,
			MonthlyRent:   5350,
			Status:        record.PropertyOccupied,
			Notes:         "Fourplex, two units renewed this year",
		},
		{
			Meta:          meta(2, months(now, -18), now),
			Title:         "Oceanview Condo",
			Address:       "88 Harbor Way, Unit 2B",
			City:          "San Diego",
			State:         "CA",
			ZipCode:       "92101",
			PropertyType:  "condo",
			Bedrooms:      2,
			Bathrooms:     2,
			SquareFeet:    1150,
			PurchasePrice: 540000,
			CurrentValue:  575000,
			MonthlyRent:   4300,
			Status:        record.PropertyOccupied,
		},
		{
			Meta:          meta(3, months(now, -9), now),
			Title:         "Downtown Loft",
			Address:       "301 Main St, Loft 5",
			City:          "Denver",
			State:         "CO",
			ZipCode:       "80202",
			PropertyType:  "loft",
			Bedrooms:      1,
			Bathrooms:     1,
			SquareFeet:    900,
			PurchasePrice: 389000,
			CurrentValue:  401500,
			MonthlyRent:   1950,
			Status:        record.PropertyOccupied,
		},
		{
			Meta:          meta(4, months(now, -3), now),
			Title:         "Maple Street House",
			Address:       "52 Maple St",
			City:          "Columbus",
			State:         "OH",
			ZipCode:       "43215",
			PropertyType:  "single-family",
			Bedrooms:      3,
			Bathrooms:     2,
			SquareFeet:    1680,
			PurchasePrice: 265000,
			CurrentValue:  268000,
			Status:        record.PropertyVacant,
			Notes:         "Listing prepared, showings next week",
		},
	}
}

func Tenants(now time.Time) []record.Tenant {
	return []record.Tenant{
		{
			Meta:          meta(1, months(now, -6), now),
			PropertyID:    1,
			FirstName:     "John",
			LastName:      "Smith",
			Email:         "john.smith@email.com",
			Phone:         "(555) 123-4567",
			LeaseStart:    record.Date(months(now, -6)),
			LeaseEnd:      record.Date(months(now, 6)),
			MonthlyRent:   1800,
			DepositAmount: 3600,
			Status:        record.TenantActive,
			Notes:         "Excellent tenant, always pays on time",
		},
		{
			Meta:          meta(2, months(now, -12), now),
			PropertyID:    2,
			FirstName:     "Sarah",
			LastName:      "Johnson",
			Email:         "sarah.j@email.com",
			Phone:         "(555) 234-5678",
			LeaseStart:    record.Date(months(now, -12)),
			LeaseEnd:      record.Date(months(now, 1)),
			MonthlyRent:   2200,
			DepositAmount: 4400,
			Status:        record.TenantActive,
			Notes:         "Long-term tenant, lease renewal pending",
		},
		{
			Meta:          meta(3, months(now, -8), now),
			PropertyID:    3,
			FirstName:     "Michael",
			LastName:      "Brown",
			Email:         "mbrown@email.com",
			Phone:         "(555) 345-6789",
			LeaseStart:    record.Date(months(now, -8)),
			LeaseEnd:      record.Date(months(now, 4)),
			MonthlyRent:   1950,
			DepositAmount: 3900,
			Status:        record.TenantActive,
		},
		{
			Meta:          meta(4, months(now, -3), now),
			PropertyID:    1,
			FirstName:     "Emily",
			LastName:      "Davis",
			Email:         "emily.davis@email.com",
			Phone:         "(555) 456-7890",
			LeaseStart:    record.Date(months(now, -3)),
			LeaseEnd:      record.Date(months(now, 9)),
			MonthlyRent:   1750,
			DepositAmount: 3500,
			Status:        record.TenantActive,
			Notes:         "New tenant, settling in well",
		},
		{
			Meta:          meta(5, months(now, -18), now),
			PropertyID:    2,
			FirstName:     "David",
			LastName:      "Wilson",
			Email:         "dwilson@email.com",
			Phone:         "(555) 567-8901",
			LeaseStart:    record.Date(months(now, -18)),
			LeaseEnd:      record.Date(months(now, -2)),
			MonthlyRent:   2100,
			DepositAmount: 4200,
			Status:        record.TenantInactive,
			Notes:         "Lease expired, moved out",
		},
	}
}

func Events(now time.Time) []record.Event {
	event := func(id int64, propertyID int64, title, description, eventType string, day, startHour, endHour, reminder int) record.Event {
		end := at(now, day, endHour)
		return record.Event{
			Meta:            meta(id, now, now),
			PropertyID:      propertyID,
			Title:           title,
			Description:     description,
			EventType:       eventType,
			StartTime:       at(now, day, startHour),
			EndTime:         &end,
			ReminderMinutes: reminder,
		}
	}

	return []record.Event{
		event(1, 1, "Property Showing - Sunset Apartments", "Meet with a prospective tenant", record.EventShowing, 2, 14, 15, 60),
		event(2, 2, "Annual Property Inspection", "Full inspection of Oceanview Condo with city inspector", record.EventInspection, 7, 10, 12, 1440),
		event(3, 1, "HVAC Maintenance", "Scheduled maintenance for heating system", record.EventMaintenance, 5, 9, 11, 2880),
		event(4, 3, "Lease Signing - Downtown Loft", "Sign new lease with Michael Brown", record.EventLeaseSigning, 4, 15, 16, 60),
		event(5, 0, "Portfolio Review Meeting", "Quarterly review with financial advisor", record.EventMeeting, 14, 13, 14, 1440),
		event(6, 2, "Plumbing Repair", "Fix leaky faucet in unit 2B", record.EventRepair, 1, 11, 12, 120),
	}
}

func Maintenance(now time.Time) []record.Maintenance {
	date := func(n int) string { return record.Date(days(now, n)) }

	return []record.Maintenance{
		{
			Meta:          meta(1, days(now, -3), days(now, -3)),
			PropertyID:    1,
			Title:         "Leaking Kitchen Faucet",
			Description:   "Kitchen sink faucet has been dripping constantly. Needs replacement or repair.",
			Priority:      record.PriorityMedium,
			Status:        record.MaintenancePending,
			Cost:          150,
			ScheduledDate: date(2),
			Contractor:    "ABC Plumbing",
			Notes:         "Tenant reports water waste is significant",
		},
		{
			Meta:          meta(2, days(now, -2), days(now, -1)),
			PropertyID:    2,
			Title:         "HVAC System Not Cooling",
			Description:   "Air conditioning unit not producing cold air. Filter changed but issue persists.",
			Priority:      record.PriorityUrgent,
			Status:        record.MaintenanceInProgress,
			Cost:          450,
			ScheduledDate: date(1),
			Contractor:    "CoolAir HVAC Services",
			Notes:         "Technician scheduled for tomorrow morning",
		},
		{
			Meta:          meta(3, days(now, -5), days(now, -5)),
			PropertyID:    1,
			Title:         "Broken Window Pane",
			Description:   "Living room window has a crack. Needs replacement before winter.",
			Priority:      record.PriorityHigh,
			Status:        record.MaintenancePending,
			Cost:          250,
			ScheduledDate: date(5),
			Contractor:    "Crystal Clear Windows",
		},
		{
			Meta:          meta(4, days(now, -10), days(now, -1)),
			PropertyID:    3,
			Title:         "Garage Door Opener Repair",
			Description:   "Garage door opener stopped working. Remote batteries replaced but no improvement.",
			Priority:      record.PriorityLow,
			Status:        record.MaintenanceCompleted,
			Cost:          120,
			ScheduledDate: date(-1),
			CompletedDate: date(-1),
			Contractor:    "Door Masters",
			Notes:         "Motor needed replacement. Completed successfully.",
		},
		{
			Meta:          meta(5, days(now, -1), days(now, -1)),
			PropertyID:    2,
			Title:         "Clogged Bathroom Drain",
			Description:   "Master bathroom shower drain is slow. Water pools during showers.",
			Priority:      record.PriorityMedium,
			Status:        record.MaintenanceInProgress,
			Cost:          85,
			ScheduledDate: date(0),
			Contractor:    "ABC Plumbing",
			Notes:         "Same day service requested",
		},
		{
			Meta:          meta(6, days(now, -7), days(now, -7)),
			PropertyID:    1,
			Title:         "Painting Exterior Trim",
			Description:   "Front porch trim needs repainting. Wood is starting to show weather damage.",
			Priority:      record.PriorityLow,
			Status:        record.MaintenancePending,
			Cost:          300,
			ScheduledDate: date(14),
			Contractor:    "Pro Painters",
		},
		{
			Meta:          meta(7, days(now, -30), days(now, -28)),
			PropertyID:    3,
			Title:         "Replace Smoke Detector Batteries",
			Description:   "Annual smoke detector battery replacement for all units.",
			Priority:      record.PriorityMedium,
			Status:        record.MaintenanceCompleted,
			Cost:          40,
			ScheduledDate: date(-28),
			CompletedDate: date(-28),
			Contractor:    "In-house",
		},
	}
}
