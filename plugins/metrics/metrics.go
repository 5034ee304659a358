// Package metrics exports renderer activity as Prometheus metrics.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/gogpu/stage"
	"github.com/gogpu/stage/device"
	"github.com/gogpu/stage/system"
)

// Name is the plugin name.
const Name = "metrics"

// Options configures the collector.
type Options struct {
	// Registerer receives the collectors. prometheus.DefaultRegisterer is
	// used when nil.
	Registerer prometheus.Registerer

	// Namespace prefixes every metric. Defaults to "stage".
	Namespace string
}

// Collector records frame counts and timings for one renderer. Every
// metric carries a "renderer" label with the renderer ID.
type Collector struct {
	r   *stage.Renderer
	reg prometheus.Registerer

	frames         *prometheus.CounterVec
	frameSeconds   *prometheus.HistogramVec
	contextChanges prometheus.Counter
	resets         prometheus.Counter
	screenWidth    prometheus.Gauge
	screenHeight   prometheus.Gauge
	textures       prometheus.Gauge
	draws          prometheus.Counter
	drawsSeen      int

	collectors []prometheus.Collector
	start      time.Time
}

var (
	_ system.PreRenderer    = (*Collector)(nil)
	_ system.PostRenderer   = (*Collector)(nil)
	_ system.ContextChanger = (*Collector)(nil)
	_ system.Resetter       = (*Collector)(nil)
	_ system.Resizer        = (*Collector)(nil)
	_ system.Destroyer      = (*Collector)(nil)
)

// New returns a plugin constructor registering the collectors with
// opts.Registerer.
func New(opts Options) stage.PluginConstructor {
	return func(r *stage.Renderer) (any, error) {
		return newCollector(r, opts)
	}
}

// Register adds the plugin to reg.
func Register(reg *stage.PluginRegistry, opts Options) {
	reg.Register(Name, New(opts))
}

func newCollector(r *stage.Renderer, opts Options) (*Collector, error) {
	ns := opts.Namespace
	if ns == "" {
		ns = "stage"
	}
	reg := opts.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	labels := prometheus.Labels{"renderer": r.ID().String()}

	c := &Collector{
		r:   r,
		reg: reg,
		frames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   "renderer",
			Name:        "frames_total",
			Help:        "Frames rendered, by target.",
			ConstLabels: labels,
		}, []string{"target"}),
		frameSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   ns,
			Subsystem:   "renderer",
			Name:        "frame_duration_seconds",
			Help:        "Time between prerender and postrender.",
			ConstLabels: labels,
			Buckets:     []float64{.0005, .001, .002, .004, .008, .016, .033, .066, .1},
		}, []string{"target"}),
		contextChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   "context",
			Name:        "changes_total",
			Help:        "GPU contexts installed.",
			ConstLabels: labels,
		}),
		resets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   "renderer",
			Name:        "resets_total",
			Help:        "Reset broadcasts.",
			ConstLabels: labels,
		}),
		screenWidth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   "screen",
			Name:        "width_pixels",
			Help:        "Screen width in unscaled pixels.",
			ConstLabels: labels,
		}),
		screenHeight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   "screen",
			Name:        "height_pixels",
			Help:        "Screen height in unscaled pixels.",
			ConstLabels: labels,
		}),
		textures: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   "texture",
			Name:        "managed",
			Help:        "Textures with a GPU mirror.",
			ConstLabels: labels,
		}),
		draws: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   "batch",
			Name:        "quads_drawn_total",
			Help:        "Quads rasterized since the renderer started.",
			ConstLabels: labels,
		}),
	}
	c.collectors = []prometheus.Collector{
		c.frames, c.frameSeconds, c.contextChanges, c.resets,
		c.screenWidth, c.screenHeight, c.textures, c.draws,
	}

	var registered []prometheus.Collector
	for _, col := range c.collectors {
		if err := reg.Register(col); err != nil {
			for _, done := range registered {
				reg.Unregister(done)
			}
			return nil, fmt.Errorf("metrics: register collectors: %w", err)
		}
		registered = append(registered, col)
	}
	return c, nil
}

func (c *Collector) target() string {
	if c.r.RenderingToScreen() {
		return "screen"
	}
	return "texture"
}

// Prerender starts the frame timer.
func (c *Collector) Prerender() { c.start = time.Now() }

// Postrender records the frame.
func (c *Collector) Postrender() {
	target := c.target()
	c.frames.WithLabelValues(target).Inc()
	if !c.start.IsZero() {
		c.frameSeconds.WithLabelValues(target).Observe(time.Since(c.start).Seconds())
		c.start = time.Time{}
	}
	set := c.r.Systems()
	c.textures.Set(float64(len(set.Texture.Managed())))
	if n := set.Batch.Quads().Draws(); n > c.drawsSeen {
		c.draws.Add(float64(n - c.drawsSeen))
		c.drawsSeen = n
	}
}

// ContextChange counts installed contexts.
func (c *Collector) ContextChange(*device.Context) { c.contextChanges.Inc() }

// Reset counts reset broadcasts.
func (c *Collector) Reset() { c.resets.Inc() }

// Resize records the screen size.
func (c *Collector) Resize(width, height int) {
	c.screenWidth.Set(float64(width))
	c.screenHeight.Set(float64(height))
}

// Destroy unregisters every collector.
func (c *Collector) Destroy(*system.DestroyOptions) {
	for _, col := range c.collectors {
		c.reg.Unregister(col)
	}
}
