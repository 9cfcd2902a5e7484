// Package studio is the headless core of a visual design editor.
//
// # Overview
//
// A design is a document.Scene: an ordered list of elements (shapes,
// text, images and groups) on a fixed-size canvas. The Editor wraps a
// scene with an undo log and the export pipeline, and is the single
// entry point a user interface drives:
//
//	ed := studio.New(800, 600)
//	id, _ := ed.Add(document.Spec{Kind: document.KindShape, Width: 200, Height: 100})
//	ed.Mutate(id, document.Patch{Fill: document.Ptr("#ff6600")})
//	ed.Undo()
//
//	png, _ := ed.Export(ctx, "png", export.Options{Scale: 2})
//
// # Packages
//
//   - document: scene model, z-order, grouping, content-fit, snapshots
//   - history: bounded snapshot log with transactions
//   - adjust: hue, saturation and brightness color matrices
//   - render: rasterization through github.com/gogpu/gg
//   - export: png, jpeg, svg and json encoders, batch export to zip
//   - store: sqlite project index and element library
//
// # Coordinate System
//
// Canvas units, origin at the top-left, y down. An element's (x, y) is
// the top-left corner of its box; rotation is in degrees, clockwise.
//
// # Concurrency
//
// An Editor and its scene are not safe for concurrent use; drive them
// from one goroutine. Batch exports run on a clone and may proceed in the
// background while editing continues.
package studio

// Version information
const (
	// Version is the current version of the module
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
