// Package system composes independently written subsystems into one
// lifecycle.
//
// A [Manager] owns a set of named systems and a set of named [Runner]s. Each
// runner broadcasts one lifecycle hook (init, destroy, contextChange, reset,
// update, postrender, prerender, resize). At [Manager.Setup] every system is
// subscribed to every runner whose capability interface it implements, in
// system registration order, so systems never name each other:
//
//	type Texture struct{ ... }
//
//	func (t *Texture) ContextChange(ctx *device.Context) { ... }
//	func (t *Texture) Destroy(*system.DestroyOptions)    { ... }
//
//	var (
//		_ system.ContextChanger = (*Texture)(nil)
//		_ system.Destroyer      = (*Texture)(nil)
//	)
//
// Emission is synchronous and runs subscribers strictly in list order. The
// package is not safe for concurrent use; a renderer and its systems belong
// to one goroutine.
package system
