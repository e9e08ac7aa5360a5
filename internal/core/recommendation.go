package core

import "github.com/shopspring/decimal"

// ConservativeTargetRatio is shown for the conservative row. The service
// computes no target for that category, so the row always targets zero.
const ConservativeTargetRatio = "0.00%"

// Recommendation is the server-computed target allocation next to the
// current holdings. It lives for a single render.
type Recommendation struct {
	GrandTotal decimal.Decimal `json:"grandTotal"`

	NasdaqCurrent       decimal.Decimal `json:"nasdaqCurrent"`
	SpCurrent           decimal.Decimal `json:"spCurrent"`
	ConservativeCurrent decimal.Decimal `json:"conservativeCurrent"`
	CashCurrent         decimal.Decimal `json:"cashCurrent"`

	NasdaqTarget decimal.Decimal `json:"nasdaqTarget"`
	SpTarget     decimal.Decimal `json:"spTarget"`
	CashTarget   decimal.Decimal `json:"cashTarget"`

	NasdaqTargetRatio string `json:"nasdaqTargetRatio"`
	SpTargetRatio     string `json:"spTargetRatio"`
	CashTargetRatio   string `json:"cashTargetRatio"`
}

// AllocationRow compares one category's current amount with its target.
type AllocationRow struct {
	Type        AssetType
	Current     decimal.Decimal
	Target      decimal.Decimal
	TargetRatio string
}

// Difference is target minus current: positive means buy, negative means sell.
func (r AllocationRow) Difference() decimal.Decimal {
	return r.Target.Sub(r.Current)
}

// Rows returns the comparison rows in display order.
func (r Recommendation) Rows() []AllocationRow {
	return []AllocationRow{
		{Type: Nasdaq, Current: r.NasdaqCurrent, Target: r.NasdaqTarget, TargetRatio: r.NasdaqTargetRatio},
		{Type: SP, Current: r.SpCurrent, Target: r.SpTarget, TargetRatio: r.SpTargetRatio},
		{Type: Conservative, Current: r.ConservativeCurrent, Target: decimal.Zero, TargetRatio: ConservativeTargetRatio},
		{Type: Cash, Current: r.CashCurrent, Target: r.CashTarget, TargetRatio: r.CashTargetRatio},
	}
}
