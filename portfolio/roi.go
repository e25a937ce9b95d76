package portfolio

import (
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"portfolio/store"
)

// ROIKey is the storage key of the calculator inputs. It lives outside the
// cache namespace and survives ClearCache.
const ROIKey = "roi_calculator_inputs"

// ROIInputs of the calculator. Nil fields were never filled in.
type ROIInputs struct {
	PurchasePrice  *float64 `json:"purchasePrice"`
	CurrentValue   *float64 `json:"currentValue"`
	AnnualRent     *float64 `json:"annualRent"`
	AnnualExpenses *float64 `json:"annualExpenses"`
}

type ROI struct {
	NetIncome float64 `json:"net_income"`
	// Yearly net income over the purchase price, in percent
	CashOnCash float64 `json:"cash_on_cash"`
	// Value change over the purchase price, in percent
	Appreciation float64 `json:"appreciation"`
	Total        float64 `json:"total"`
}

var ErrIncompleteInputs = errors.New("roi: purchase price is required")

// Compute returns the return on investment. Missing values other than the
// purchase price count as zero, a missing current value as no appreciation.
func (in ROIInputs) Compute() (ROI, error) {
	if in.PurchasePrice == nil || *in.PurchasePrice <= 0 {
		return ROI{}, ErrIncompleteInputs
	}
	purchase := *in.PurchasePrice
	current := purchase
	if in.CurrentValue != nil {
		current = *in.CurrentValue
	}

	var r ROI
	r.NetIncome = value(in.AnnualRent) - value(in.AnnualExpenses)
	r.CashOnCash = r.NetIncome * 100 / purchase
	r.Appreciation = (current - purchase) * 100 / purchase
	r.Total = r.CashOnCash + r.Appreciation
	return r, nil
}

func value(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

// SaveROIInputs stores the inputs as plain JSON. Failures are logged only.
func (p *Portfolio) SaveROIInputs(in ROIInputs) {
	raw, err := json.Marshal(in)
	if err != nil {
		log.Err(err).Msg("failed to encode roi inputs")
		return
	}
	if err := p.Db.Put(ROIKey, string(raw)); err != nil {
		log.Err(err).Msg("failed to save roi inputs")
	}
}

// LoadROIInputs returns the saved inputs, if any readable ones exist.
func (p *Portfolio) LoadROIInputs() (ROIInputs, bool) {
	var in ROIInputs
	raw, err := p.Db.Get(ROIKey)
	if err != nil {
		if !errors.Is(err, store.ErrKeyNotFound) {
			log.Err(err).Msg("failed to load roi inputs")
		}
		return in, false
	}
	if err := json.Unmarshal([]byte(raw), &in); err != nil {
		log.Warn().Err(err).Msg("ignoring unreadable roi inputs")
		return in, false
	}
	return in, true
}
