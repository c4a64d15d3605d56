package mesh

import "github.com/banshee-data/meshpivot/internal/mesh/geom"

// VertexNormals returns per-vertex unit normals. Caller-supplied normals are
// returned as-is. Otherwise, when faces are present, each vertex receives the
// area-weighted sum of its incident face normals, normalised. Without faces
// there is no orientation information and nil is returned.
func VertexNormals(v View) []geom.Point3 {
	if len(v.Normals) == len(v.Vertices) && len(v.Normals) > 0 {
		return v.Normals
	}
	if len(v.Faces) == 0 {
		return nil
	}

	normals := make([]geom.Point3, len(v.Vertices))
	for _, f := range v.Faces {
		a, b, c := v.Vertices[f[0]], v.Vertices[f[1]], v.Vertices[f[2]]
		// Unnormalised cross product has length 2×area, which is the weight.
		n := b.Sub(a).Cross(c.Sub(a))
		for _, idx := range f {
			normals[idx] = normals[idx].Add(n)
		}
	}
	for i := range normals {
		normals[i] = normals[i].Normalize()
	}
	return normals
}
