package core

import "github.com/shopspring/decimal"

// Totals is the per-category and overall sum of a fetched asset list.
type Totals struct {
	ByType map[AssetType]decimal.Decimal
	Grand  decimal.Decimal
	// Skipped counts assets whose type is not a known category; they are left
	// out of both ByType and Grand.
	Skipped int
}

// Summarize recomputes totals from scratch. Every known category is present
// in ByType, zero when no asset belongs to it.
func Summarize(assets []Asset) Totals {
	t := Totals{ByType: make(map[AssetType]decimal.Decimal, len(AssetTypes)), Grand: decimal.Zero}
	for _, at := range AssetTypes {
		t.ByType[at] = decimal.Zero
	}
	for _, a := range assets {
		if !a.Type.Valid() {
			t.Skipped++
			continue
		}
		t.ByType[a.Type] = t.ByType[a.Type].Add(a.Amount)
		t.Grand = t.Grand.Add(a.Amount)
	}
	return t
}

// For returns the total of one category.
func (t Totals) For(at AssetType) decimal.Decimal {
	if v, ok := t.ByType[at]; ok {
		return v
	}
	return decimal.Zero
}

// GroupByType splits assets per category, keeping the service's order inside
// each group. Unknown categories are dropped.
func GroupByType(assets []Asset) map[AssetType][]Asset {
	out := make(map[AssetType][]Asset, len(AssetTypes))
	for _, a := range assets {
		if !a.Type.Valid() {
			continue
		}
		out[a.Type] = append(out[a.Type], a)
	}
	return out
}
