// Package mesh owns the borrowed mesh view and the topology derived from it.
//
// Responsibilities: flat-buffer ingestion and index validation, vertex
// adjacency, union-find connectivity, connected-group filtering shared by the
// wire classifiers, vertex normals, and the ops/diag/trace log streams used
// by every stage below it.
// Key types: View, Adjacency, UnionFind, ContractError.
//
// Dependency rule: mesh may depend on geom, but never on the analysis
// packages (spatial, hull, wire, voxel, slice, pivot).
// No file or database I/O is allowed in this package.
package mesh
