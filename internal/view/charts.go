package view

import (
	"github.com/shopspring/decimal"

	"assetmix/internal/chart"
	"assetmix/internal/core"
)

const (
	recommendationTitle = "Recommended allocation (75/25)"
	trendTitle          = "Total assets over time"
	trendLabelLayout    = "Jan 2"
)

func recommendationOption(rec core.Recommendation) chart.Option {
	return chart.Option{
		Title:   recommendationTitle,
		Tooltip: "item",
		Legend:  []string{core.Nasdaq.Label(), core.SP.Label(), core.Cash.Label()},
		Series: []chart.Series{{
			Name:   "Target",
			Type:   chart.SeriesPie,
			Radius: "50%",
			Data: []chart.DataPoint{
				point(core.Nasdaq.Label(), rec.NasdaqTarget),
				point(core.SP.Label(), rec.SpTarget),
				point(core.Cash.Label(), rec.CashTarget),
			},
		}},
	}
}

// trendOption expects records oldest first.
func trendOption(records []core.HistoryRecord) chart.Option {
	labels := make([]string, 0, len(records))
	data := make([]chart.DataPoint, 0, len(records))
	for _, r := range records {
		labels = append(labels, r.RecordDate.Format(trendLabelLayout))
		data = append(data, point("", r.GrandTotal))
	}
	return chart.Option{
		Title:   trendTitle,
		Tooltip: "axis",
		XAxis:   labels,
		YAxis:   "Total",
		Series: []chart.Series{{
			Name:   "Total",
			Type:   chart.SeriesLine,
			Smooth: true,
			Data:   data,
		}},
	}
}

func latestOption(r core.HistoryRecord) chart.Option {
	return chart.Option{
		Title:   r.RecordDate.Format(dateLayout) + " actual allocation",
		Tooltip: "item",
		Legend:  []string{core.Nasdaq.Label(), core.SP.Label(), core.Cash.Label()},
		Series: []chart.Series{{
			Name:   "Allocation",
			Type:   chart.SeriesPie,
			Radius: "50%",
			Data: []chart.DataPoint{
				point(core.Nasdaq.Label(), r.NasdaqTotal),
				point(core.SP.Label(), r.SpTotal),
				point(core.Cash.Label(), r.CashTotal),
			},
		}},
	}
}

func point(name string, d decimal.Decimal) chart.DataPoint {
	return chart.DataPoint{Name: name, Value: d.InexactFloat64()}
}
