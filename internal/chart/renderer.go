package chart

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"sync"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"assetmix/internal/log"
)

var (
	ErrContainerInUse = errors.New("chart: container already has a live instance")
	ErrDisposed       = errors.New("chart: instance disposed")
	ErrNoContainer    = errors.New("chart: empty container id")
)

// Renderer creates chart instances bound to containers.
type Renderer interface {
	Init(container string) (Instance, error)
}

// Instance is one live chart.
type Instance interface {
	Container() string
	SetOption(opt Option) error
	Option() Option
	SVG() []byte
	Dispose()
	Disposed() bool
}

var palette = []drawing.Color{
	drawing.ColorFromHex("5470c6"),
	drawing.ColorFromHex("91cc75"),
	drawing.ColorFromHex("fac858"),
	drawing.ColorFromHex("ee6666"),
	drawing.ColorFromHex("73c0de"),
}

// SVGRenderer renders options with go-chart into SVG.
type SVGRenderer struct {
	width, height int
	logger        *log.Logger

	mu   sync.Mutex
	live map[string]*svgInstance
}

// NewSVGRenderer returns a renderer drawing width x height charts.
func NewSVGRenderer(width, height int, logger *log.Logger) *SVGRenderer {
	if logger == nil {
		logger = log.Discard()
	}
	return &SVGRenderer{
		width:  width,
		height: height,
		logger: logger.WithComponent(log.ComponentChart),
		live:   make(map[string]*svgInstance),
	}
}

// Init binds a new instance to container.
func (r *SVGRenderer) Init(container string) (Instance, error) {
	if container == "" {
		return nil, ErrNoContainer
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.live[container]; ok {
		return nil, fmt.Errorf("%w: %s", ErrContainerInUse, container)
	}
	inst := &svgInstance{renderer: r, container: container}
	r.live[container] = inst
	return inst, nil
}

// Live returns the number of instances not yet disposed.
func (r *SVGRenderer) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.live)
}

func (r *SVGRenderer) release(container string) {
	r.mu.Lock()
	delete(r.live, container)
	r.mu.Unlock()
	r.logger.Debug("Chart disposed", log.FieldContainer, container, log.FieldOperation, log.OpDispose)
}

type svgInstance struct {
	renderer  *SVGRenderer
	container string

	mu       sync.RWMutex
	option   Option
	svg      []byte
	disposed bool
}

func (i *svgInstance) Container() string { return i.container }

func (i *svgInstance) SetOption(opt Option) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.disposed {
		return ErrDisposed
	}
	svg, err := i.renderer.render(opt)
	if err != nil {
		return fmt.Errorf("render %s: %w", i.container, err)
	}
	i.option = opt
	i.svg = svg
	return nil
}

func (i *svgInstance) Option() Option {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.option
}

func (i *svgInstance) SVG() []byte {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.svg
}

func (i *svgInstance) Dispose() {
	i.mu.Lock()
	if i.disposed {
		i.mu.Unlock()
		return
	}
	i.disposed = true
	i.svg = nil
	i.mu.Unlock()
	i.renderer.release(i.container)
}

func (i *svgInstance) Disposed() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.disposed
}

// render returns nil without error when there is nothing to draw.
func (r *SVGRenderer) render(opt Option) ([]byte, error) {
	if len(opt.Series) == 0 || opt.Empty() {
		return nil, nil
	}
	var buf bytes.Buffer
	switch opt.Series[0].Type {
	case SeriesPie:
		if err := r.pie(opt).Render(gochart.SVG, &buf); err != nil {
			return nil, err
		}
	case SeriesLine:
		ch, ok := r.line(opt)
		if !ok {
			return nil, nil
		}
		if err := ch.Render(gochart.SVG, &buf); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported series type %q", opt.Series[0].Type)
	}
	return buf.Bytes(), nil
}

func (r *SVGRenderer) pie(opt Option) gochart.PieChart {
	s := opt.Series[0]
	values := make([]gochart.Value, 0, len(s.Data))
	for idx, p := range s.Data {
		if p.Value <= 0 {
			continue
		}
		values = append(values, gochart.Value{
			Label: p.Name,
			Value: p.Value,
			Style: gochart.Style{FillColor: palette[idx%len(palette)], StrokeColor: drawing.ColorWhite},
		})
	}
	return gochart.PieChart{
		Title:  opt.Title,
		Width:  r.width,
		Height: r.height,
		Values: values,
	}
}

func (r *SVGRenderer) line(opt Option) (gochart.Chart, bool) {
	var series []gochart.Series
	maxY := 0.0
	n := 0
	for idx, s := range opt.Series {
		if s.Type != SeriesLine || len(s.Data) == 0 {
			continue
		}
		xs := make([]float64, len(s.Data))
		ys := make([]float64, len(s.Data))
		for j, p := range s.Data {
			xs[j] = float64(j)
			ys[j] = p.Value
			maxY = math.Max(maxY, p.Value)
		}
		// A single point has no x extent; draw it as a flat segment.
		if len(xs) == 1 {
			xs = []float64{0, 1}
			ys = []float64{ys[0], ys[0]}
		}
		n = max(n, len(s.Data))
		series = append(series, gochart.ContinuousSeries{
			Name:    s.Name,
			XValues: xs,
			YValues: ys,
			Style: gochart.Style{
				StrokeColor: palette[idx%len(palette)],
				StrokeWidth: 2,
				DotWidth:    3,
				DotColor:    palette[idx%len(palette)],
			},
		})
	}
	if len(series) == 0 {
		return gochart.Chart{}, false
	}

	xMax := float64(max(n-1, 1))
	ticks := make([]gochart.Tick, 0, len(opt.XAxis))
	for j, label := range opt.XAxis {
		ticks = append(ticks, gochart.Tick{Value: float64(j), Label: label})
	}
	// go-chart needs at least two ticks spanning a non-zero range.
	if len(ticks) == 1 {
		ticks = append(ticks, gochart.Tick{Value: xMax})
	}
	if maxY <= 0 {
		maxY = 1
	}

	ch := gochart.Chart{
		Title:      opt.Title,
		Width:      r.width,
		Height:     r.height,
		Background: gochart.Style{Padding: gochart.Box{Top: 20, Left: 16, Right: 16, Bottom: 16}},
		XAxis: gochart.XAxis{
			Range: &gochart.ContinuousRange{Min: 0, Max: xMax},
			Ticks: ticks,
		},
		YAxis: gochart.YAxis{
			Name:  opt.YAxis,
			Range: &gochart.ContinuousRange{Min: 0, Max: maxY * 1.1},
		},
		Series: series,
	}
	if len(opt.Legend) > 0 {
		ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}
	}
	return ch, true
}
