package pathing

import (
	"container/heap"
	"delivery-simulation/internal/domain"
	"errors"
	"fmt"
	"math"
	"slices"
)

var ErrUnreachable = errors.New("destination is unreachable")

// DijkstraPathCalculator returns minimum-duration paths over a Region.
// Among equally short paths the one visiting smaller locations first wins,
// so results are stable across runs.
type DijkstraPathCalculator struct {
	region *domain.Region
}

func NewDijkstraPathCalculator(region *domain.Region) (*DijkstraPathCalculator, error) {
	if region == nil {
		return nil, errors.New("dijkstra path calculator: region is nil")
	}
	return &DijkstraPathCalculator{region: region}, nil
}

// GetPath returns the nodes after from, ending with to. from == to yields an empty path.
func (d *DijkstraPathCalculator) GetPath(from, to *domain.Node) ([]*domain.Node, error) {
	if from.Region() != d.region.ID() || to.Region() != d.region.ID() {
		return nil, fmt.Errorf("get path %s -> %s: %w", from.Name(), to.Name(), domain.ErrForeignNode)
	}
	if from.Location() == to.Location() {
		return []*domain.Node{}, nil
	}

	dist, prev := d.search(from.Location(), to.Location(), true)
	if _, ok := dist[to.Location()]; !ok {
		return nil, fmt.Errorf("get path %s -> %s: %w", from.Name(), to.Name(), ErrUnreachable)
	}

	var path []*domain.Node
	for loc := to.Location(); loc != from.Location(); loc = prev[loc] {
		n, _ := d.region.Node(loc)
		path = append(path, n)
	}
	slices.Reverse(path)
	return path, nil
}

// Distance returns the total duration of the shortest path, or math.MaxInt64 when unreachable.
func (d *DijkstraPathCalculator) Distance(from, to *domain.Node) int64 {
	if from.Region() != d.region.ID() || to.Region() != d.region.ID() {
		return math.MaxInt64
	}
	dist, _ := d.search(from.Location(), to.Location(), true)
	if v, ok := dist[to.Location()]; ok {
		return v
	}
	return math.MaxInt64
}

// Distances runs a single search from "from" and reads off every target.
func (d *DijkstraPathCalculator) Distances(from *domain.Node, to []*domain.Node) map[domain.Location]int64 {
	out := make(map[domain.Location]int64, len(to))
	if from.Region() != d.region.ID() {
		for _, n := range to {
			out[n.Location()] = math.MaxInt64
		}
		return out
	}
	dist, _ := d.search(from.Location(), domain.Location{}, false)
	for _, n := range to {
		v, ok := dist[n.Location()]
		if !ok || n.Region() != d.region.ID() {
			v = math.MaxInt64
		}
		out[n.Location()] = v
	}
	return out
}

// search settles nodes in (distance, location) order from src. With stop set
// it returns as soon as dst is settled. The returned map holds settled nodes only.
func (d *DijkstraPathCalculator) search(
	src, dst domain.Location,
	stop bool,
) (map[domain.Location]int64, map[domain.Location]domain.Location) {
	best := map[domain.Location]int64{src: 0}
	prev := map[domain.Location]domain.Location{}
	settled := map[domain.Location]int64{}

	pq := &locationPQ{}
	heap.Push(pq, &locationItem{loc: src, dist: 0})
	for pq.Len() > 0 {
		item := heap.Pop(pq).(*locationItem)
		if _, done := settled[item.loc]; done {
			continue
		}
		settled[item.loc] = item.dist
		if stop && item.loc == dst {
			break
		}

		u, _ := d.region.Node(item.loc)
		for _, e := range d.region.AdjacentEdges(u) {
			v := e.Opposite(item.loc)
			if _, done := settled[v]; done {
				continue
			}
			nd := item.dist + e.Duration()
			if cur, ok := best[v]; ok && nd >= cur {
				continue
			}
			best[v] = nd
			prev[v] = item.loc
			heap.Push(pq, &locationItem{loc: v, dist: nd})
		}
	}
	return settled, prev
}

type locationItem struct {
	loc  domain.Location
	dist int64
}

// locationPQ is a min-heap by distance, then location.
type locationPQ []*locationItem

func (pq locationPQ) Len() int { return len(pq) }

func (pq locationPQ) Less(i, j int) bool {
	if pq[i].dist != pq[j].dist {
		return pq[i].dist < pq[j].dist
	}
	return pq[i].loc.Less(pq[j].loc)
}

func (pq locationPQ) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }

func (pq *locationPQ) Push(x any) { *pq = append(*pq, x.(*locationItem)) }

func (pq *locationPQ) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}
