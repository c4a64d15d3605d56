// Package geom holds the value types shared by every stage of the mesh
// pipeline: 2-D and 3-D points, axis projections and bounding boxes.
//
// Points are aliases of the golang/geo r2 and r3 vector types so callers get
// Add, Sub, Mul, Dot, Cross, Norm and Normalize without wrapping.
//
// Dependency rule: geom depends on nothing else in internal/mesh.
package geom
