package pivot

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/meshpivot/internal/mesh"
)

// BatchInput packs many objects into shared flat buffers. Object i owns the
// next VertCounts[i] vertices (3 floats each) and EdgeCounts[i] edges
// (2 indices each). Edge indices are local to their object.
//
// Faces and Normals are optional. FaceCounts, when set, splits Faces
// (3 indices each) the same way; Normals, when set, holds 3 floats per
// vertex.
type BatchInput struct {
	Vertices   []float32
	Edges      []uint32
	VertCounts []uint32
	EdgeCounts []uint32

	Faces      []uint32
	FaceCounts []uint32
	Normals    []float32
}

// Len returns the number of objects.
func (in BatchInput) Len() int {
	return len(in.VertCounts)
}

// check verifies that the count arrays agree with the buffers.
func (in BatchInput) check() error {
	if len(in.EdgeCounts) != len(in.VertCounts) {
		return &mesh.ContractError{Op: "edge_counts", Value: len(in.EdgeCounts), Limit: len(in.VertCounts)}
	}
	if in.FaceCounts != nil && len(in.FaceCounts) != len(in.VertCounts) {
		return &mesh.ContractError{Op: "face_counts", Value: len(in.FaceCounts), Limit: len(in.VertCounts)}
	}
	var nv, ne, nf int
	for i := range in.VertCounts {
		nv += int(in.VertCounts[i])
		ne += int(in.EdgeCounts[i])
		if in.FaceCounts != nil {
			nf += int(in.FaceCounts[i])
		}
	}
	if 3*nv != len(in.Vertices) {
		return &mesh.ContractError{Op: "vertices", Value: len(in.Vertices), Limit: 3 * nv}
	}
	if 2*ne != len(in.Edges) {
		return &mesh.ContractError{Op: "edges", Value: len(in.Edges), Limit: 2 * ne}
	}
	if 3*nf != len(in.Faces) {
		return &mesh.ContractError{Op: "faces", Value: len(in.Faces), Limit: 3 * nf}
	}
	if in.Normals != nil && len(in.Normals) != len(in.Vertices) {
		return &mesh.ContractError{Op: "normals", Value: len(in.Normals), Limit: len(in.Vertices)}
	}
	return nil
}

// views decodes the buffers into per-object views. A malformed object
// leaves its view empty and its error set.
func (in BatchInput) views() ([]mesh.View, []error) {
	views := make([]mesh.View, in.Len())
	errs := make([]error, in.Len())
	var vo, eo, fo int
	for i := range views {
		nv, ne := 3*int(in.VertCounts[i]), 2*int(in.EdgeCounts[i])
		var nf int
		if in.FaceCounts != nil {
			nf = 3 * int(in.FaceCounts[i])
		}
		v, err := mesh.FromBuffers(in.Vertices[vo:vo+nv], in.Edges[eo:eo+ne], in.Faces[fo:fo+nf])
		if err == nil && in.Normals != nil {
			v, err = v.WithNormals(in.Normals[vo : vo+nv])
		}
		if err != nil {
			errs[i] = fmt.Errorf("object %d: %w", i, err)
		} else {
			views[i] = v
		}
		vo += nv
		eo += ne
		fo += nf
	}
	return views, errs
}

// ProcessBatch standardizes every object of in on a fixed worker pool.
//
// Results are returned in input order. Per-object failures are joined into
// the returned error, each prefixed with its object index; the other objects
// still carry their results. Cancelling ctx stops dispatch: objects already
// handed to a worker finish, the rest report ctx.Err().
func ProcessBatch(ctx context.Context, in BatchInput, p Params, opts Options) ([]Result, error) {
	if err := in.check(); err != nil {
		return nil, fmt.Errorf("batch: %w", err)
	}

	log := mesh.Stage("batch " + uuid.NewString())
	start := time.Now()
	views, errs := in.views()
	results := make([]Result, len(views))
	for i := range results {
		results[i] = neutral()
	}

	workers := p.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(views) {
		workers = len(views)
	}
	log.Opsf("%d objects on %d workers", len(views), workers)

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				r, err := Standardize(views[i], p, opts)
				if err != nil {
					errs[i] = fmt.Errorf("object %d: %w", i, err)
					continue
				}
				results[i] = r
			}
		}()
	}

	dispatched := make([]bool, len(views))
dispatch:
	for i := range views {
		if errs[i] != nil {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- i:
			dispatched[i] = true
		}
	}
	close(jobs)
	wg.Wait()

	failed := 0
	for i := range views {
		if errs[i] == nil && !dispatched[i] {
			errs[i] = fmt.Errorf("object %d: %w", i, ctx.Err())
		}
		if errs[i] != nil {
			failed++
		}
	}
	log.Opsf("finished in %v, %d failed", time.Since(start), failed)
	return results, errors.Join(errs...)
}
