// Package stage is the composition root of a 2D scene renderer built on
// the gogpu stack.
//
// # Overview
//
// A [Renderer] owns an ordered set of named systems (view, context, state,
// shader, texture, framebuffer, mask, projection, batch and so on) and a
// set of lifecycle runners. Each runner broadcasts one hook to every system
// implementing the matching interface from package system, in registration
// order.
//
// # Quick Start
//
//	r, err := stage.New(
//	    stage.WithSize(800, 600),
//	    stage.WithBackground(0x1099bb, 1),
//	)
//	if err != nil {
//	    log.Fatal(err) // errors.Is(err, stage.ErrUnsupported) without a GPU
//	}
//	defer r.Destroy(false)
//
//	root := display.NewContainer()
//	root.AddChild(display.NewRect(geom.RectOf(10, 10, 100, 50), color.RGBA{R: 255, A: 255}))
//	r.Render(root, stage.RenderOptions{})
//
// # Context
//
// The GPU context is obtained before any system is built. It comes from
// [WithContext], from [WithAcquirer], or from the acquirers registered in
// package device. When none yields a device, [New] fails with
// [ErrUnsupported].
//
// # Plugins
//
// Plugins are constructed once per renderer from a [PluginRegistry]
// snapshot. [RegisterPlugin] adds to the process-wide registry; use
// [WithPlugins] to give a renderer its own registry.
//
// # Legacy API
//
// [Renderer.RenderTo] and [Renderer.GenerateTextureWith] accept positional
// arguments and log a deprecation warning once per process.
package stage

// Version is the library version.
const Version = "0.1.0"
