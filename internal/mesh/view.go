package mesh

import (
	"fmt"

	"github.com/banshee-data/meshpivot/internal/mesh/geom"
)

// Edge is an index pair into View.Vertices.
type Edge [2]uint32

// Face is an index triple into View.Vertices.
type Face [3]uint32

// View is a read-only view over caller-owned mesh buffers. The pipeline
// never mutates or retains these slices past the call that received them.
type View struct {
	Vertices []geom.Point3
	Edges    []Edge
	Faces    []Face
	// Normals is optional. When present it must have one entry per vertex.
	Normals []geom.Point3
}

// ContractError reports a malformed buffer handed over by the caller:
// an index at or beyond the vertex count, or parallel arrays whose lengths
// disagree. It signals a defect in upstream buffer assembly, never a
// property of the mesh itself.
type ContractError struct {
	Op    string // buffer or operation that failed, e.g. "edges"
	Index int    // element position within that buffer
	Value int    // offending value (index or length)
	Limit int    // exclusive upper bound, or the expected length
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("mesh contract violation in %s[%d]: value %d, limit %d", e.Op, e.Index, e.Value, e.Limit)
}

// FromBuffers builds a View from flat buffers: 3 floats per vertex,
// 2 indices per edge and 3 indices per face. Either index buffer may be nil.
// Indices are validated against the vertex count.
func FromBuffers(vertices []float32, edges []uint32, faces []uint32) (View, error) {
	if len(vertices)%3 != 0 {
		return View{}, &ContractError{Op: "vertices", Index: len(vertices) / 3, Value: len(vertices), Limit: len(vertices) - len(vertices)%3}
	}
	if len(edges)%2 != 0 {
		return View{}, &ContractError{Op: "edges", Index: len(edges) / 2, Value: len(edges), Limit: len(edges) - len(edges)%2}
	}
	if len(faces)%3 != 0 {
		return View{}, &ContractError{Op: "faces", Index: len(faces) / 3, Value: len(faces), Limit: len(faces) - len(faces)%3}
	}

	v := View{
		Vertices: make([]geom.Point3, len(vertices)/3),
	}
	for i := range v.Vertices {
		v.Vertices[i] = geom.Point3{
			X: float64(vertices[3*i]),
			Y: float64(vertices[3*i+1]),
			Z: float64(vertices[3*i+2]),
		}
	}
	if len(edges) > 0 {
		v.Edges = make([]Edge, len(edges)/2)
		for i := range v.Edges {
			v.Edges[i] = Edge{edges[2*i], edges[2*i+1]}
		}
	}
	if len(faces) > 0 {
		v.Faces = make([]Face, len(faces)/3)
		for i := range v.Faces {
			v.Faces[i] = Face{faces[3*i], faces[3*i+1], faces[3*i+2]}
		}
	}

	if err := v.Validate(); err != nil {
		return View{}, err
	}
	return v, nil
}

// WithNormals returns a copy of v carrying per-vertex normals decoded from a
// flat float32 buffer (3 floats per vertex).
func (v View) WithNormals(normals []float32) (View, error) {
	if len(normals) != 3*len(v.Vertices) {
		return v, &ContractError{Op: "normals", Value: len(normals), Limit: 3 * len(v.Vertices)}
	}
	v.Normals = make([]geom.Point3, len(v.Vertices))
	for i := range v.Normals {
		v.Normals[i] = geom.Point3{
			X: float64(normals[3*i]),
			Y: float64(normals[3*i+1]),
			Z: float64(normals[3*i+2]),
		}
	}
	return v, nil
}

// Len returns the number of vertices.
func (v View) Len() int {
	return len(v.Vertices)
}

// Validate checks every edge and face index against the vertex count and
// the normals length against the vertex count.
func (v View) Validate() error {
	n := len(v.Vertices)
	for i, e := range v.Edges {
		for _, idx := range e {
			if int(idx) >= n {
				return &ContractError{Op: "edges", Index: i, Value: int(idx), Limit: n}
			}
		}
	}
	for i, f := range v.Faces {
		for _, idx := range f {
			if int(idx) >= n {
				return &ContractError{Op: "faces", Index: i, Value: int(idx), Limit: n}
			}
		}
	}
	if v.Normals != nil && len(v.Normals) != n {
		return &ContractError{Op: "normals", Value: len(v.Normals), Limit: n}
	}
	return nil
}

// Finite reports whether every vertex coordinate is finite.
func (v View) Finite() bool {
	for _, p := range v.Vertices {
		if !geom.Finite3(p) {
			return false
		}
	}
	return true
}

// Bounds returns the axis-aligned bounding box of all vertices.
func (v View) Bounds() geom.Box3 {
	return geom.Bounds3(v.Vertices)
}
