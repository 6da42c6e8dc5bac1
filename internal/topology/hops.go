package topology

import "fmt"

// HopDistance returns the unweighted shortest-path length between two MDCs
// over the declared adjacency, searching breadth-first from a. It returns
// ErrNoPath when b cannot be reached from a.
func (t *Topology) HopDistance(a, b string) (int, error) {
	if _, ok := t.byID[a]; !ok {
		return 0, fmt.Errorf("%w: %s", ErrMDCNotFound, a)
	}
	if _, ok := t.byID[b]; !ok {
		return 0, fmt.Errorf("%w: %s", ErrMDCNotFound, b)
	}
	if a == b {
		return 0, nil
	}

	distance := map[string]int{a: 0}
	queue := []string{a}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, link := range t.byID[current].Links {
			if _, seen := distance[link.Neighbor]; seen {
				continue
			}
			distance[link.Neighbor] = distance[current] + 1
			if link.Neighbor == b {
				return distance[b], nil
			}
			queue = append(queue, link.Neighbor)
		}
	}

	return 0, fmt.Errorf("%w: %s -> %s", ErrNoPath, a, b)
}

// ServersInRange returns the servers of every MDC reachable from mdcID within
// hops hops, inclusive. Zero hops means the local MDC only. MDCs are visited
// layer by layer; the hop count recorded at first discovery is final.
func (t *Topology) ServersInRange(mdcID string, hops int) ([]*Server, error) {
	local, ok := t.byID[mdcID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMDCNotFound, mdcID)
	}
	if hops < 0 {
		return nil, fmt.Errorf("hop limit cannot be negative, got %d", hops)
	}

	finalized := map[string]int{local.ID: 0}
	frontier := []*MDC{local}
	var servers []*Server

	for len(frontier) > 0 {
		mdc := frontier[0]
		frontier = frontier[1:]
		servers = append(servers, mdc.Servers...)

		level := finalized[mdc.ID]
		if level == hops {
			continue
		}
		for _, link := range mdc.Links {
			if _, done := finalized[link.Neighbor]; done {
				continue
			}
			finalized[link.Neighbor] = level + 1
			frontier = append(frontier, t.byID[link.Neighbor])
		}
	}

	return servers, nil
}
