// Package document implements the scene model of the editor: an ordered
// list of drawable elements (shapes, text, images and groups), the
// mutation API that edits it, grouping, z-order, content-fit resizing and
// the structured snapshot used for undo history and persistence.
//
// # Paint order
//
// The position of an element in the top-level list is its z-order; the
// first element is painted first. There is no stored z-index.
//
// # Coordinates
//
// Every element has a local box of Width x Height whose top-left corner is
// placed by its Transform in the parent space: document space for
// top-level elements, group space for group children. Rotation is in
// degrees and, like scale, is applied about the top-left corner.
//
// # Errors
//
// Invalid arguments produce a *ValidationError and leave the scene
// unchanged. References to ids that no longer exist are tolerated:
// Mutate and RemoveElements ignore them. Malformed snapshots produce a
// *SerializationError.
package document
