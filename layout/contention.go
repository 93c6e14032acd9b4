package layout

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrNoCandidates is returned when a class has pixels to place
// but no cell of the cluster prefers it.
var ErrNoCandidates = errors.New("no candidate cells")

// entry is a label placed at a pixel relative to the cluster origin.
type entry struct {
	DY, DX int
	Label  int
}

type weightedCell struct {
	key CellKey
	w   int
}

// pool is a set of candidate cells with weights,
// keeping insertion order.
type pool struct {
	keys []CellKey
	w    map[CellKey]int
}

func newPool() *pool {
	return &pool{w: make(map[CellKey]int)}
}

func (p *pool) set(k CellKey, w int) {
	if _, ok := p.w[k]; !ok {
		p.keys = append(p.keys, k)
	}
	p.w[k] = w
}

func (p *pool) remove(k CellKey) (int, bool) {
	w, ok := p.w[k]
	if ok {
		delete(p.w, k)
	}
	return w, ok
}

func (p *pool) len() int { return len(p.w) }

func (p *pool) entries() []weightedCell {
	v := make([]weightedCell, 0, len(p.w))
	for _, k := range p.keys {
		if w, ok := p.w[k]; ok {
			v = append(v, weightedCell{k, w})
		}
	}
	return v
}

// heaviest returns the n cells of v with the largest weight.
// Cells of equal weight keep their order.
func heaviest(v []weightedCell, n int) []weightedCell {
	s := append([]weightedCell(nil), v...)
	sort.SliceStable(s, func(i, j int) bool {
		return s[i].w > s[j].w
	})
	return s[:n]
}

// candidates holds the cells a label may occupy.
// Primary cells are usable, secondary ones are excluded
// or were taken by another label.
type candidates struct {
	primary, secondary *pool
}

// contend assigns budgeted labels to the cells of the cluster.
//
// Labels are placed most constrained first: the one with the
// fewest usable candidates per pixel of budget goes next, and takes
// its heaviest candidates. A label with more budget than candidates
// repeats its candidates. The result has one entry per pixel of
// budget, and the same cell may appear more than once.
func (c *Cluster) contend(usable []CellKey) ([]entry, error) {
	cand := make(map[int]*candidates)
	get := func(label int) *candidates {
		ca := cand[label]
		if ca == nil {
			ca = &candidates{newPool(), newPool()}
			cand[label] = ca
		}
		return ca
	}
	for _, k := range usable {
		for label, w := range c.Prefer[k] {
			get(label).primary.set(k, w)
		}
	}
	for _, k := range c.Fixed {
		for label, w := range c.Prefer[k] {
			get(label).secondary.set(k, w)
		}
	}

	var pending []int
	for label, b := range c.Budget {
		if b > 0 {
			pending = append(pending, label)
		}
	}
	sort.Ints(pending)

	var res []entry
	for len(pending) != 0 {
		sel := 0
		best := math.Inf(1)
		for i, label := range pending {
			var n int
			if ca := cand[label]; ca != nil {
				n = ca.primary.len()
			}
			if r := float64(n) / float64(c.Budget[label]); r < best {
				best, sel = r, i
			}
		}
		label := pending[sel]
		pending = append(pending[:sel], pending[sel+1:]...)

		budget := c.Budget[label]
		ca := cand[label]
		if ca == nil || ca.primary.len()+ca.secondary.len() == 0 {
			return nil, fmt.Errorf("label %d with budget %d: %w", label, budget, ErrNoCandidates)
		}

		prim, sec := ca.primary.entries(), ca.secondary.entries()
		var taken, claimed []weightedCell
		if budget <= len(prim)+len(sec) {
			if budget <= len(prim) {
				taken = heaviest(prim, budget)
			} else {
				taken = append(prim, heaviest(sec, budget-len(prim))...)
			}
			claimed = taken
		} else {
			all := append(prim, sec...)
			for i := 0; i < budget/len(all); i++ {
				taken = append(taken, all...)
			}
			taken = append(taken, heaviest(all, budget%len(all))...)
			claimed = all
		}
		for _, wc := range taken {
			res = append(res, entry{
				DY:    wc.key.Row - c.Origin.Row,
				DX:    wc.key.Col - c.Origin.Col,
				Label: label,
			})
		}

		// cells taken are no longer usable for others
		for _, other := range pending {
			oca := cand[other]
			if oca == nil {
				continue
			}
			for _, wc := range claimed {
				if w, ok := oca.primary.remove(wc.key); ok {
					oca.secondary.set(wc.key, w)
				}
			}
		}
	}
	return res, nil
}
