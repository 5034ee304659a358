// Package systems implements the renderer subsystems wired together by
// package system: context management, GPU state, shaders, textures,
// buffers, geometry, framebuffers, masking, projection, filtering, batching,
// render textures, background and view handling, and startup.
//
// Systems never reference each other at construction. They receive a [Host]
// and reach their peers through [Host.Systems] while handling a hook, which
// is why registration order matters: a system may only rely on peers that
// were initialized before it.
//
// Drawing is performed by a CPU rasterizer built on golang.org/x/image into
// the bound framebuffer. When the context exposes a wgpu HAL device, the
// same frames, textures, buffers and shaders are mirrored on the GPU.
package systems
