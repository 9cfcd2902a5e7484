// Package export encodes scenes into deliverable files.
//
// Formats are looked up by name in a registry populated at init time:
//
//	png   raster, lossless, optional transparent background
//	jpeg  raster, lossy, always opaque
//	svg   vector
//	json  structured snapshot, round-trips through document.Deserialize
//
// ExportOne encodes a single rendition. ExportMany adapts one scene to
// several target boxes with the content-fit transform and bundles the
// results into a zip archive; Start runs the same batch in the background
// with progress reporting and cancellation. Every path works on a clone,
// so the caller's scene is never modified.
package export
