// Package tracing records renderer frames as OpenTelemetry spans.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/gogpu/stage"
	"github.com/gogpu/stage/device"
	"github.com/gogpu/stage/system"
)

// Name is the plugin name.
const Name = "tracing"

// InstrumentationName is the tracer name used when no tracer is given.
const InstrumentationName = "github.com/gogpu/stage"

// Options configures the tracer plugin.
type Options struct {
	// Tracer creates the spans. The global provider's tracer is used when
	// nil.
	Tracer trace.Tracer

	// Context is the parent of every frame span.
	Context context.Context
}

// Tracer wraps each render call in a "stage.render" span.
type Tracer struct {
	r      *stage.Renderer
	tracer trace.Tracer
	parent context.Context

	span  trace.Span
	frame int64
}

var (
	_ system.PreRenderer    = (*Tracer)(nil)
	_ system.PostRenderer   = (*Tracer)(nil)
	_ system.ContextChanger = (*Tracer)(nil)
	_ system.Destroyer      = (*Tracer)(nil)
)

// New returns a plugin constructor.
func New(opts Options) stage.PluginConstructor {
	return func(r *stage.Renderer) (any, error) {
		t := opts.Tracer
		if t == nil {
			t = otel.Tracer(InstrumentationName)
		}
		parent := opts.Context
		if parent == nil {
			parent = context.Background()
		}
		return &Tracer{r: r, tracer: t, parent: parent}, nil
	}
}

// Register adds the plugin to reg.
func Register(reg *stage.PluginRegistry, opts Options) {
	reg.Register(Name, New(opts))
}

// Prerender starts the frame span.
func (t *Tracer) Prerender() {
	if t.span != nil {
		t.span.End()
	}
	_, t.span = t.tracer.Start(t.parent, "stage.render",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("stage.renderer", t.r.ID().String()),
			attribute.Bool("stage.to_screen", t.r.RenderingToScreen()),
		),
	)
}

// Postrender ends the frame span.
func (t *Tracer) Postrender() {
	if t.span == nil {
		return
	}
	t.frame++
	t.span.SetAttributes(
		attribute.Int64("stage.frame", t.frame),
		attribute.Int("stage.quads_drawn", t.r.Systems().Batch.Quads().Draws()),
	)
	t.span.End()
	t.span = nil
}

// ContextChange records a span for the new context.
func (t *Tracer) ContextChange(ctx *device.Context) {
	attrs := []attribute.KeyValue{attribute.String("stage.renderer", t.r.ID().String())}
	if ctx != nil {
		attrs = append(attrs,
			attribute.Int64("stage.context_uid", int64(ctx.UID)),
			attribute.String("stage.adapter", ctx.Info().Name),
		)
	}
	_, span := t.tracer.Start(t.parent, "stage.context_change", trace.WithAttributes(attrs...))
	span.End()
}

// Destroy ends an unfinished frame span.
func (t *Tracer) Destroy(*system.DestroyOptions) {
	if t.span != nil {
		t.span.End()
		t.span = nil
	}
}
