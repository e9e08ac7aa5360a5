package view

import (
	"slices"

	"assetmix/internal/core"
)

// View names one of the two mutually exclusive panels.
type View string

const (
	ViewConfig  View = "config"
	ViewHistory View = "history"
)

// ParseView maps a route segment onto a View.
func ParseView(s string) (View, bool) {
	switch View(s) {
	case ViewConfig, ViewHistory:
		return View(s), true
	}
	return "", false
}

// Chart containers owned by a controller.
const (
	ContainerRecommendation = "recommendation-chart"
	ContainerHistoryLine    = "history-line-chart"
	ContainerHistoryPie     = "history-pie-chart"
)

// HistoryPlaceholder is the single row shown when no snapshot exists.
const HistoryPlaceholder = "No history records yet"

type (
	// Panel is a toggled page section.
	Panel struct {
		ID      string
		Visible bool
	}

	// AssetItem is one rendered list entry.
	AssetItem struct {
		Name   string
		Amount string
	}

	// AssetBlock is the list and total of one category.
	AssetBlock struct {
		Type  core.AssetType
		Key   string
		Label string
		Items []AssetItem
		Total string
	}

	// RecommendationRow compares one category with its target.
	RecommendationRow struct {
		Label       string
		Current     string
		Target      string
		TargetRatio string
		Difference  string
		DiffColor   string
	}

	// RecommendationSection is hidden until a recommendation is fetched.
	RecommendationSection struct {
		Visible    bool
		GrandTotal string
		Rows       []RecommendationRow
	}

	// HistoryCell is an amount with its share of the record total.
	HistoryCell struct {
		Amount string
		Share  string
	}

	// HistoryRow is one snapshot in the history table.
	HistoryRow struct {
		Date   string
		Total  string
		Nasdaq HistoryCell
		Sp     HistoryCell
		Cash   HistoryCell
	}

	// HistoryTable holds either rows or the placeholder text.
	HistoryTable struct {
		Rows        []HistoryRow
		Placeholder string
	}

	// ChartSlot is where a chart instance is shown. Version changes on every
	// redraw so clients can bust their image cache.
	ChartSlot struct {
		Container string
		Visible   bool
		Version   uint64
	}
)

// Bindings are the page elements a controller writes to.
type Bindings struct {
	View         View
	Unit         string
	ConfigPanel  Panel
	HistoryPanel Panel

	Blocks     []AssetBlock
	GrandTotal string

	Recommendation      RecommendationSection
	RecommendationChart ChartSlot

	History          HistoryTable
	HistoryLineChart ChartSlot
	HistoryPieChart  ChartSlot
}

// NewBindings returns the initial page: the config panel with empty blocks.
func NewBindings(unit string) *Bindings {
	b := &Bindings{
		View:                ViewConfig,
		Unit:                unit,
		ConfigPanel:         Panel{ID: "config-view", Visible: true},
		HistoryPanel:        Panel{ID: "history-view"},
		GrandTotal:          core.FormatAmount(zero),
		RecommendationChart: ChartSlot{Container: ContainerRecommendation},
		HistoryLineChart:    ChartSlot{Container: ContainerHistoryLine},
		HistoryPieChart:     ChartSlot{Container: ContainerHistoryPie},
	}
	for _, at := range core.AssetTypes {
		b.Blocks = append(b.Blocks, AssetBlock{
			Type:  at,
			Key:   at.Key(),
			Label: at.Label(),
			Total: core.FormatAmount(zero),
		})
	}
	return b
}

// Block returns the block of one category.
func (b Bindings) Block(at core.AssetType) (AssetBlock, bool) {
	for _, blk := range b.Blocks {
		if blk.Type == at {
			return blk, true
		}
	}
	return AssetBlock{}, false
}

func (b *Bindings) slot(container string) *ChartSlot {
	switch container {
	case ContainerRecommendation:
		return &b.RecommendationChart
	case ContainerHistoryLine:
		return &b.HistoryLineChart
	case ContainerHistoryPie:
		return &b.HistoryPieChart
	}
	return nil
}

func (b *Bindings) clone() Bindings {
	out := *b
	out.Blocks = make([]AssetBlock, len(b.Blocks))
	for i, blk := range b.Blocks {
		blk.Items = slices.Clone(blk.Items)
		out.Blocks[i] = blk
	}
	out.Recommendation.Rows = slices.Clone(b.Recommendation.Rows)
	out.History.Rows = slices.Clone(b.History.Rows)
	return out
}
