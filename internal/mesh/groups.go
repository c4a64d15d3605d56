package mesh

// FilterGroups flood-fills connected groups of candidate vertices over adj
// and keeps a group only when it has at least minGroup members or when it
// spans the whole connected component it lives in. Small fragments that
// touch the rest of the mesh are noise and are reverted.
//
// It returns the surviving mask and the boundary of the kept groups: every
// non-candidate vertex adjacent to a kept group, each listed once, in
// discovery order.
func FilterGroups(candidate []bool, adj Adjacency, comps Components, minGroup int) (mask []bool, boundary []uint32) {
	n := len(candidate)
	mask = make([]bool, n)
	visited := make([]bool, n)
	inBoundary := make([]bool, n)

	var (
		group  []uint32
		bounds []uint32
		queue  []uint32
	)
	for start := 0; start < n; start++ {
		if !candidate[start] || visited[start] {
			continue
		}

		group = group[:0]
		bounds = bounds[:0]
		queue = append(queue[:0], uint32(start))
		visited[start] = true
		for len(queue) > 0 {
			idx := queue[0]
			queue = queue[1:]
			group = append(group, idx)

			for _, nb := range adj[idx] {
				switch {
				case candidate[nb] && !visited[nb]:
					visited[nb] = true
					queue = append(queue, nb)
				case !candidate[nb]:
					bounds = append(bounds, nb)
				}
			}
		}

		if len(group) < minGroup && len(group) != comps.SizeOf(start) {
			continue
		}
		for _, idx := range group {
			mask[idx] = true
		}
		for _, idx := range bounds {
			if !inBoundary[idx] {
				inBoundary[idx] = true
				boundary = append(boundary, idx)
			}
		}
	}
	return mask, boundary
}

// Grow extends mask outward from seeds. A visited vertex joins the mask when
// accept reports true, and its neighbours outside the mask are queued. Each
// vertex is examined at most once. It returns the number of vertices added.
func Grow(mask []bool, seeds []uint32, adj Adjacency, accept func(i uint32) bool) int {
	seen := make([]bool, len(mask))
	queue := make([]uint32, 0, len(seeds))
	for _, s := range seeds {
		if !seen[s] {
			seen[s] = true
			queue = append(queue, s)
		}
	}

	added := 0
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if mask[cur] || !accept(cur) {
			continue
		}
		mask[cur] = true
		added++
		for _, nb := range adj[cur] {
			if !mask[nb] && !seen[nb] {
				seen[nb] = true
				queue = append(queue, nb)
			}
		}
	}
	return added
}

// Count returns the number of true entries in mask.
func Count(mask []bool) int {
	n := 0
	for _, m := range mask {
		if m {
			n++
		}
	}
	return n
}
