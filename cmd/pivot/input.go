package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/banshee-data/meshpivot/internal/mesh"
	"github.com/banshee-data/meshpivot/internal/mesh/pivot"
)

// maxInputSize bounds the batch file read into memory.
const maxInputSize = 512 << 20

type objectJSON struct {
	Name     string       `json:"name"`
	Vertices [][3]float64 `json:"vertices"`
	Edges    [][2]uint32  `json:"edges,omitempty"`
	Faces    [][3]uint32  `json:"faces,omitempty"`
	Normals  [][3]float64 `json:"normals,omitempty"`
}

type batchFile struct {
	Objects []objectJSON `json:"objects"`
}

func readBatch(path string) (*batchFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat input: %w", err)
	}
	if info.Size() > maxInputSize {
		return nil, fmt.Errorf("input file too large: %d bytes (max %d)", info.Size(), maxInputSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	var b batchFile
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to parse input JSON: %w", err)
	}
	return &b, nil
}

func (b *batchFile) names() []string {
	out := make([]string, len(b.Objects))
	for i, o := range b.Objects {
		out[i] = o.Name
		if out[i] == "" {
			out[i] = fmt.Sprintf("object_%d", i)
		}
	}
	return out
}

// pack flattens the objects into batch buffers. Faces are carried when any
// object has them; normals only when every object has a full set.
func (b *batchFile) pack() pivot.BatchInput {
	var in pivot.BatchInput
	withFaces := false
	withNormals := len(b.Objects) > 0
	for _, o := range b.Objects {
		withFaces = withFaces || len(o.Faces) > 0
		withNormals = withNormals && len(o.Normals) == len(o.Vertices)
	}
	if withFaces {
		in.FaceCounts = make([]uint32, 0, len(b.Objects))
	}

	for _, o := range b.Objects {
		for _, p := range o.Vertices {
			in.Vertices = append(in.Vertices, float32(p[0]), float32(p[1]), float32(p[2]))
		}
		for _, e := range o.Edges {
			in.Edges = append(in.Edges, e[0], e[1])
		}
		in.VertCounts = append(in.VertCounts, uint32(len(o.Vertices)))
		in.EdgeCounts = append(in.EdgeCounts, uint32(len(o.Edges)))
		if withFaces {
			for _, f := range o.Faces {
				in.Faces = append(in.Faces, f[0], f[1], f[2])
			}
			in.FaceCounts = append(in.FaceCounts, uint32(len(o.Faces)))
		}
		if withNormals {
			for _, n := range o.Normals {
				in.Normals = append(in.Normals, float32(n[0]), float32(n[1]), float32(n[2]))
			}
		}
	}
	return in
}

// view builds the mesh view of o for the debug renderers from the same
// float32 buffers ProcessBatch sees, so plots and COG match the batch result.
func (o objectJSON) view() (mesh.View, error) {
	vertices := make([]float32, 0, 3*len(o.Vertices))
	for _, p := range o.Vertices {
		vertices = append(vertices, float32(p[0]), float32(p[1]), float32(p[2]))
	}
	edges := make([]uint32, 0, 2*len(o.Edges))
	for _, e := range o.Edges {
		edges = append(edges, e[0], e[1])
	}
	faces := make([]uint32, 0, 3*len(o.Faces))
	for _, f := range o.Faces {
		faces = append(faces, f[0], f[1], f[2])
	}

	v, err := mesh.FromBuffers(vertices, edges, faces)
	if err != nil {
		return mesh.View{}, err
	}
	if len(o.Normals) == len(o.Vertices) && len(o.Normals) > 0 {
		normals := make([]float32, 0, 3*len(o.Normals))
		for _, n := range o.Normals {
			normals = append(normals, float32(n[0]), float32(n[1]), float32(n[2]))
		}
		return v.WithNormals(normals)
	}
	return v, nil
}
