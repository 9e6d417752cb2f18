// Package blob finds connected regions in binary rasters and measures them.
//
// # Pipeline
//
//	binary raster → Label → label raster → ExtractAttributes → []Descriptor
//	                                                         ├→ Render (markers on a gray raster)
//	                                                         └→ WriteTable (text table)
//
// Label uses 4-connectivity: pixels touching only at a corner belong to
// different regions. Background is 0; any non-zero sample is foreground.
//
// # Descriptors
//
// Each region gets its area, centroid, bounding box, and the moments of
// inertia about its principal axes. The ratio of the two inertias
// (Roundness) is 1 for a disk and approaches 0 for a line. By default the
// second-order moments are taken about the raster origin; use
// WithMoments(CentralMoments) for translation-invariant measurements.
//
// # Visualization
//
// Colorize maps a label raster to a color image and Annotate prints label
// numbers on it. Render draws a center dot and an orientation marker per
// region on a gray raster.
//
// # Concurrency
//
// All functions are pure over their arguments, apart from Render and
// Annotate which modify the canvas they are given. Distinct calls may run
// concurrently.
//
// # Logging
//
// The package is silent unless SetLogger installs a *slog.Logger.
package blob
