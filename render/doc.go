// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render provides the render targets systems draw into.
//
// Every target exposes its pixels to the CPU rasterizer through an
// *image.RGBA. Targets backed by a GPU device additionally own a HAL texture
// that mirrors those pixels, so GPU-side consumers (samplers, filters, the
// presentation surface) see the same frame.
//
// # RenderTarget Implementations
//
//   - PixmapTarget: CPU-backed *image.RGBA target, the color attachment of
//     every framebuffer
//   - TextureTarget: HAL texture + view, uploaded from a PixmapTarget
//   - SurfaceTarget: the renderer's visible surface; a PixmapTarget back
//     buffer presented through a caller supplied function
package render
