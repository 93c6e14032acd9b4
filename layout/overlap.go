package layout

import "sort"

// ResolveOverlaps keeps each contested pixel in one cluster only.
// The cluster with the most initial area per class keeps it,
// the others exclude it. It returns the number of exclusions.
func ResolveOverlaps(clusters []*Cluster, claims *Claims) int {
	n := 0
	for _, k := range claims.contested {
		owners := append([]int(nil), claims.owners[k]...)
		sort.SliceStable(owners, func(i, j int) bool {
			return clusters[owners[i]].entitlement() > clusters[owners[j]].entitlement()
		})
		for _, idx := range owners[1:] {
			clusters[idx].Exclude(k)
			n++
		}
	}
	return n
}

func (c *Cluster) entitlement() float64 {
	return float64(c.initialArea) / float64(len(c.Classes))
}
