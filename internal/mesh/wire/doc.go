// Package wire detects thin, line-like geometry (rigging helpers, cables,
// scaffolding) so that it can be excluded from footprint estimation.
//
// Responsibilities:
//   - Per-vertex linearity from the PCA of a k-vertex neighbourhood,
//     gathered either in space (k-d tree) or along mesh edges (Dijkstra).
//   - Candidate grouping, small-group rejection and loose-threshold growth.
//
// Key types: Params, Mode, Mask.
//
// Dependency rule: wire depends on mesh, spatial and geom. It does not know
// about hulls or the orientation pipeline.
package wire
