// Package pivot standardizes the orientation of mesh objects.
//
// Standardize removes thin wire-like geometry from the mesh (package wire
// or package voxel), hulls what remains on the XY plane and fits the
// minimum-area rectangle to it. The rectangle angle becomes a rotation
// about Z; the translation is a reference point chosen by Params.
//
// ProcessBatch runs Standardize over many objects packed into shared flat
// buffers on a bounded worker pool. Volume exposes the slice-based center
// of gravity with the same Params.
//
// Dependency rule: pivot may import mesh, geom, hull, wire, voxel, slice,
// resultcache and config. None of those import pivot.
package pivot
