package layout

import (
	"math"
	"sort"
)

// ClassCount is the number of points with Label.
type ClassCount struct {
	Label, Count int
}

// Separate splits the classes of c into outliers and non-outliers.
// A class is an outlier when its count is below Tolerance times
// the average class count. Both lists are sorted by count,
// then by label.
func (c *Cluster) Separate() (outliers, nonOutliers []ClassCount) {
	all := make([]ClassCount, 0, len(c.Classes))
	for l, n := range c.Classes {
		all = append(all, ClassCount{l, n})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Count != all[j].Count {
			return all[i].Count < all[j].Count
		}
		return all[i].Label < all[j].Label
	})

	threshold := c.Tolerance * float64(c.Points) / float64(len(all))
	for _, cc := range all {
		if float64(cc.Count) < threshold {
			outliers = append(outliers, cc)
		} else {
			nonOutliers = append(nonOutliers, cc)
		}
	}
	if len(nonOutliers) == 0 {
		// tolerance above one
		return nil, all
	}
	return outliers, nonOutliers
}

// Allocate distributes the usable pixels of c among its classes,
// and stores the result in c.Budget.
//
// Outliers are boosted by up to Emphasis, and each class gets
// at least one pixel while pixels remain. When a class asks for
// the remaining pixels or more, it gets all of them and later
// classes get none.
func (c *Cluster) Allocate() map[int]int {
	outliers, nonOutliers := c.Separate()
	c.Budget = make(map[int]int)
	if len(nonOutliers) == 0 {
		return c.Budget
	}

	total := float64(c.Points)
	nonTotal := 0
	for _, cc := range nonOutliers {
		nonTotal += cc.Count
	}

	var emphasis float64
	if len(outliers) != 0 {
		outSum := 0
		for _, cc := range outliers {
			outSum += cc.Count
		}
		outMax := float64(outliers[len(outliers)-1].Count)
		nonMinShare := float64(nonOutliers[0].Count) / float64(nonTotal)
		emphasis = math.Min(c.Emphasis, total/(float64(outSum)+outMax/nonMinShare))
	}

	pixels := len(c.Usable())
	rest := pixels
	for _, cc := range outliers {
		n := max(round(emphasis*float64(cc.Count)/total*float64(pixels)), 1)
		if n >= rest {
			c.Budget[cc.Label] = rest
			return c.Budget
		}
		rest -= n
		c.Budget[cc.Label] = n
	}

	nonPixels := float64(rest)
	for _, cc := range nonOutliers {
		n := max(round(float64(cc.Count)/float64(nonTotal)*nonPixels), 1)
		if n >= rest {
			c.Budget[cc.Label] = rest
			return c.Budget
		}
		rest -= n
		c.Budget[cc.Label] = n
	}

	// rounding leftover goes to the largest class
	c.Budget[nonOutliers[len(nonOutliers)-1].Label] += rest
	return c.Budget
}
