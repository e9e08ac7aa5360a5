// Package view keeps the state of one browser page and applies remote data
// to it.
//
// A Controller owns the page bindings, the current view and the chart
// instances. Operations fetch from the asset service without holding the
// lock, then write every binding in one locked step. Each view switch bumps a
// generation token; a fetch that finishes under an older token is dropped
// with ErrStale.
package view

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"assetmix/internal/chart"
	"assetmix/internal/core"
	"assetmix/internal/log"
)

var zero = decimal.Zero

const dateLayout = "2006-01-02"

// AssetService is the remote asset service as the controller uses it.
type AssetService interface {
	ListAssets(ctx context.Context) ([]core.Asset, error)
	CreateAsset(ctx context.Context, a core.Asset) (core.Asset, error)
	Recommendation(ctx context.Context) (core.Recommendation, error)
	CreateSnapshot(ctx context.Context) (core.HistoryRecord, error)
	ListRecords(ctx context.Context) ([]core.HistoryRecord, error)
}

// Options configures a Controller.
type Options struct {
	Logger *log.Logger
}

// Controller drives one page.
type Controller struct {
	service  AssetService
	renderer chart.Renderer
	logger   *log.Logger
	events   *log.StructuredLogger

	mu         sync.Mutex
	b          *Bindings
	generation uint64
	closed     bool
	charts     map[string]chart.Instance
}

// NewController wires a controller to its collaborators and page bindings.
func NewController(service AssetService, renderer chart.Renderer, b *Bindings, opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}
	if b == nil {
		b = NewBindings("")
	}
	logger = logger.WithComponent(log.ComponentView)
	return &Controller{
		service:  service,
		renderer: renderer,
		logger:   logger,
		events:   log.NewStructuredLogger(logger),
		b:        b,
		charts:   make(map[string]chart.Instance, 3),
	}
}

// Page returns a snapshot of the bindings for rendering.
func (c *Controller) Page() Bindings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.b.clone()
}

// Generation returns the current view generation.
func (c *Controller) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// Chart returns the rendered SVG and option of the live chart in container.
func (c *Controller) Chart(container string) ([]byte, chart.Option, bool) {
	c.mu.Lock()
	inst, ok := c.charts[container]
	c.mu.Unlock()
	if !ok || inst.Disposed() {
		return nil, chart.Option{}, false
	}
	svg := inst.SVG()
	if svg == nil {
		return nil, inst.Option(), false
	}
	return svg, inst.Option(), true
}

// Close disposes every chart. The controller renders no charts afterwards.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	for container := range c.charts {
		c.disposeLocked(container)
	}
}

// SwitchView shows exactly one panel. Switching to history always reloads it.
func (c *Controller) SwitchView(ctx context.Context, v View) error {
	if _, ok := ParseView(string(v)); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownView, v)
	}

	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.b.View = v
	c.b.ConfigPanel.Visible = v == ViewConfig
	c.b.HistoryPanel.Visible = v == ViewHistory
	c.mu.Unlock()

	c.logger.DebugContext(ctx, "View switched",
		log.NewFields().WithOperation(log.OpSwitchView).WithView(string(v), gen).ToSlice()...)

	if v == ViewHistory {
		return c.LoadHistory(ctx)
	}
	return nil
}

// LoadAssets refetches every asset and rebuilds all lists and totals.
func (c *Controller) LoadAssets(ctx context.Context) error {
	return c.loadAssets(ctx, true)
}

// loadAssets drops the response on a view switch only when tokened is set.
func (c *Controller) loadAssets(ctx context.Context, tokened bool) error {
	gen := c.Generation()

	assets, err := c.service.ListAssets(ctx)
	if err != nil {
		c.fail(ctx, log.OpLoadAssets, err)
		return &AlertError{Op: log.OpLoadAssets, Message: MsgLoadAssetsFailed, Err: err}
	}

	totals := core.Summarize(assets)
	if totals.Skipped > 0 {
		c.logger.WarnContext(ctx, "Skipped assets with unknown type",
			log.FieldOperation, log.OpLoadAssets,
			log.FieldCount, totals.Skipped)
	}
	groups := core.GroupByType(assets)
	blocks := make([]AssetBlock, 0, len(core.AssetTypes))
	for _, at := range core.AssetTypes {
		items := make([]AssetItem, 0, len(groups[at]))
		for _, a := range groups[at] {
			items = append(items, AssetItem{Name: a.Name, Amount: core.FormatAmount(a.Amount)})
		}
		blocks = append(blocks, AssetBlock{
			Type:  at,
			Key:   at.Key(),
			Label: at.Label(),
			Items: items,
			Total: core.FormatAmount(totals.For(at)),
		})
	}
	grand := core.FormatAmount(totals.Grand)

	c.mu.Lock()
	defer c.mu.Unlock()
	if tokened && gen != c.generation {
		c.stale(ctx, log.OpLoadAssets, gen)
		return ErrStale
	}
	c.b.Blocks = blocks
	c.b.GrandTotal = grand

	c.logger.DebugContext(ctx, "Assets loaded",
		log.FieldOperation, log.OpLoadAssets,
		log.FieldCount, len(assets),
		log.FieldGrandTotal, grand)
	return nil
}

// SubmitAsset validates input, creates the asset and reloads the lists. A
// successful submit hides any shown recommendation. The reload is kept even
// if the view changes meanwhile.
func (c *Controller) SubmitAsset(ctx context.Context, in core.AssetInput) error {
	asset, err := in.Asset()
	if err != nil {
		c.logger.InfoContext(ctx, "Asset input rejected",
			log.FieldOperation, log.OpSubmitAsset,
			log.FieldError, err.Error(),
			log.FieldErrorType, log.ErrorTypeValidation)
		return &AlertError{
			Op:      log.OpSubmitAsset,
			Message: MsgInvalidAsset,
			Err:     fmt.Errorf("%w: %w", ErrInvalidAsset, err),
		}
	}

	if _, err := c.service.CreateAsset(ctx, asset); err != nil {
		c.fail(ctx, log.OpSubmitAsset, err)
		return &AlertError{Op: log.OpSubmitAsset, Message: MsgSubmitFailed, Err: err}
	}
	c.events.LogAssetCreated(ctx, string(asset.Type), asset.Name, core.FormatAmount(asset.Amount))

	c.mu.Lock()
	c.b.Recommendation = RecommendationSection{}
	c.disposeLocked(ContainerRecommendation)
	c.mu.Unlock()

	return c.loadAssets(ctx, false)
}

// FetchRecommendation renders the comparison table and the target pie.
func (c *Controller) FetchRecommendation(ctx context.Context) error {
	gen := c.Generation()

	rec, err := c.service.Recommendation(ctx)
	if err != nil {
		c.fail(ctx, log.OpRecommendation, err)
		return &AlertError{Op: log.OpRecommendation, Message: MsgRecommendationFailed, Err: err}
	}

	section := RecommendationSection{
		Visible:    true,
		GrandTotal: core.FormatAmount(rec.GrandTotal),
	}
	for _, row := range rec.Rows() {
		diff := row.Difference()
		section.Rows = append(section.Rows, RecommendationRow{
			Label:       row.Type.Label(),
			Current:     core.FormatAmount(row.Current),
			Target:      core.FormatAmount(row.Target),
			TargetRatio: row.TargetRatio,
			Difference:  core.FormatAmount(diff),
			DiffColor:   core.DiffColor(diff),
		})
	}
	opt := recommendationOption(rec)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		c.stale(ctx, log.OpRecommendation, gen)
		return ErrStale
	}
	c.b.Recommendation = section
	c.redrawLocked(ctx, ContainerRecommendation, opt)
	return nil
}

// SaveSnapshot asks the service to record the current holdings and then
// shows the history view.
func (c *Controller) SaveSnapshot(ctx context.Context) error {
	rec, err := c.service.CreateSnapshot(ctx)
	if err != nil {
		c.fail(ctx, log.OpSaveSnapshot, err)
		return &AlertError{Op: log.OpSaveSnapshot, Message: MsgSaveFailed, Err: err}
	}
	c.logger.InfoContext(ctx, "Snapshot saved",
		log.FieldOperation, log.OpSaveSnapshot,
		log.FieldGrandTotal, core.FormatAmount(rec.GrandTotal))
	return c.SwitchView(ctx, ViewHistory)
}

// LoadHistory refetches all snapshots and rebuilds the table and charts.
func (c *Controller) LoadHistory(ctx context.Context) error {
	gen := c.Generation()

	records, err := c.service.ListRecords(ctx)
	if err != nil {
		c.fail(ctx, log.OpLoadHistory, err)
		return &AlertError{Op: log.OpLoadHistory, Message: MsgHistoryFailed, Err: err}
	}

	table := HistoryTable{}
	if len(records) == 0 {
		table.Placeholder = HistoryPlaceholder
	}
	for _, r := range records {
		table.Rows = append(table.Rows, HistoryRow{
			Date:   r.RecordDate.Format(dateLayout),
			Total:  core.FormatAmount(r.GrandTotal),
			Nasdaq: cell(r.NasdaqTotal, r.GrandTotal),
			Sp:     cell(r.SpTotal, r.GrandTotal),
			Cash:   cell(r.CashTotal, r.GrandTotal),
		})
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		c.stale(ctx, log.OpLoadHistory, gen)
		return ErrStale
	}
	c.b.History = table
	if len(records) == 0 {
		c.disposeLocked(ContainerHistoryLine)
		c.disposeLocked(ContainerHistoryPie)
	} else {
		c.redrawLocked(ctx, ContainerHistoryLine, trendOption(core.Chronological(records)))
		c.redrawLocked(ctx, ContainerHistoryPie, latestOption(records[0]))
	}

	c.logger.DebugContext(ctx, "History loaded",
		log.FieldOperation, log.OpLoadHistory,
		log.FieldCount, len(records))
	return nil
}

func cell(part, total decimal.Decimal) HistoryCell {
	return HistoryCell{Amount: core.FormatAmount(part), Share: core.FormatShare(part, total)}
}

// redrawLocked disposes the chart in container and draws opt in a fresh
// instance. Chart failures are logged; the table above it stays.
func (c *Controller) redrawLocked(ctx context.Context, container string, opt chart.Option) {
	c.disposeLocked(container)
	if c.closed {
		return
	}
	inst, err := c.renderer.Init(container)
	if err != nil {
		c.logger.ErrorContext(ctx, "Chart init failed",
			log.FieldOperation, log.OpRender,
			log.FieldContainer, container,
			log.FieldError, err.Error(),
			log.FieldErrorType, log.ErrorTypeInternal)
		return
	}
	c.charts[container] = inst
	if err := inst.SetOption(opt); err != nil {
		c.logger.ErrorContext(ctx, "Chart render failed",
			log.FieldOperation, log.OpRender,
			log.FieldContainer, container,
			log.FieldError, err.Error(),
			log.FieldErrorType, log.ErrorTypeInternal)
	}
	if slot := c.b.slot(container); slot != nil {
		slot.Visible = inst.SVG() != nil
		slot.Version++
	}
}

func (c *Controller) disposeLocked(container string) {
	if inst, ok := c.charts[container]; ok {
		inst.Dispose()
		delete(c.charts, container)
	}
	if slot := c.b.slot(container); slot != nil {
		slot.Visible = false
	}
}

func (c *Controller) fail(ctx context.Context, op string, err error) {
	c.events.LogError(ctx, "Asset service call failed", err, log.ComponentView, op,
		log.NewFields().WithErrorType(errorType(err)))
}

func (c *Controller) stale(ctx context.Context, op string, gen uint64) {
	c.logger.InfoContext(ctx, "Dropped stale response",
		log.FieldOperation, op,
		log.FieldGeneration, gen,
		log.FieldErrorType, log.ErrorTypeStale)
}
