package record

import "time"

// Entity kinds
const (
	KindProperty    = "property"
	KindTenant      = "tenant"
	KindEvent       = "event"
	KindMaintenance = "maintenance"
	KindMarket      = "market"
)

// DateLayout is the calendar date format used by date-only fields.
const DateLayout = "2006-01-02"

func Date(t time.Time) string {
	return t.Format(DateLayout)
}

// Property status values
const (
	PropertyOccupied    = "occupied"
	PropertyVacant      = "vacant"
	PropertyMaintenance = "maintenance"
)

type Property struct {
	Meta
	Title         string  `json:"title"`
	Address       string  `json:"address"`
	City          string  `json:"city"`
	State         string  `json:"state"`
	ZipCode       string  `json:"zip_code"`
	PropertyType  string  `json:"property_type"`
	Bedrooms      int     `json:"bedrooms,omitempty"`
	Bathrooms     float64 `json:"bathrooms,omitempty"`
	SquareFeet    int     `json:"square_feet,omitempty"`
	PurchasePrice float64 `json:"purchase_price,omitempty"`
	CurrentValue  float64 `json:"current_value,omitempty"`
	MonthlyRent   float64 `json:"monthly_rent,omitempty"`
	Status        string  `json:"status"`
	Notes         string  `json:"notes,omitempty"`
}

// Tenant status values
const (
	TenantActive   = "active"
	TenantInactive = "inactive"
)

type Tenant struct {
	Meta
	PropertyID    int64   `json:"property_id"`
	FirstName     string  `json:"first_name"`
	LastName      string  `json:"last_name"`
	Email         string  `json:"email,omitempty"`
	Phone         string  `json:"phone,omitempty"`
	LeaseStart    string  `json:"lease_start"`
	LeaseEnd      string  `json:"lease_end"`
	MonthlyRent   float64 `json:"monthly_rent"`
	DepositAmount float64 `json:"deposit_amount,omitempty"`
	Status        string  `json:"status"`
	Notes         string  `json:"notes,omitempty"`
}

// Calendar event types
const (
	EventShowing      = "showing"
	EventInspection   = "inspection"
	EventMaintenance  = "maintenance"
	EventLeaseSigning = "lease-signing"
	EventMeeting      = "meeting"
	EventRepair       = "repair"
)

type Event struct {
	Meta
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	EventType       string     `json:"event_type"`
	PropertyID      int64      `json:"property_id,omitempty"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	ReminderMinutes int        `json:"reminder_minutes,omitempty"`
	Completed       bool       `json:"completed"`
}

// Maintenance priority and status values
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"

	MaintenancePending    = "pending"
	MaintenanceInProgress = "in-progress"
	MaintenanceCompleted  = "completed"
)

type Maintenance struct {
	Meta
	PropertyID    int64   `json:"property_id"`
	Title         string  `json:"title"`
	Description   string  `json:"description,omitempty"`
	Priority      string  `json:"priority"`
	Status        string  `json:"status"`
	Cost          float64 `json:"cost,omitempty"`
	ScheduledDate string  `json:"scheduled_date,omitempty"`
	CompletedDate string  `json:"completed_date,omitempty"`
	Contractor    string  `json:"contractor,omitempty"`
	Notes         string  `json:"notes,omitempty"`
}

type TrendPoint struct {
	Date           time.Time `json:"date"`
	MedianPrice    float64   `json:"median_price"`
	InventoryCount int       `json:"inventory_count,omitempty"`
}

// MarketTrend is the price history of one location.
type MarketTrend struct {
	Meta
	Location   string       `json:"location"`
	TimeSeries []TrendPoint `json:"time_series"`
}

// Reminder is a dated to-do attached to the portfolio, served by the API only.
type Reminder struct {
	Meta
	PropertyID   int64  `json:"property_id,omitempty"`
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	DueDate      string `json:"due_date"`
	Completed    bool   `json:"completed"`
	ReminderType string `json:"reminder_type"`
}
