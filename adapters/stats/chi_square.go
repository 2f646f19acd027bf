package stats

import (
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// ContingencyTable is a 2×k table of category frequencies, one row per
// period, columns over the union of observed categories
type ContingencyTable struct {
	Categories []string
	Reference  []float64
	Current    []float64
}

// BuildContingency counts category frequencies in both samples over the
// union of categories; a category missing from one sample counts 0 there
func BuildContingency(ref, curr []string) ContingencyTable {
	refCounts := make(map[string]float64)
	currCounts := make(map[string]float64)
	for _, v := range ref {
		refCounts[v]++
	}
	for _, v := range curr {
		currCounts[v]++
	}

	seen := make(map[string]bool)
	var categories []string
	for v := range refCounts {
		if !seen[v] {
			seen[v] = true
			categories = append(categories, v)
		}
	}
	for v := range currCounts {
		if !seen[v] {
			seen[v] = true
			categories = append(categories, v)
		}
	}
	sort.Strings(categories)

	table := ContingencyTable{
		Categories: categories,
		Reference:  make([]float64, len(categories)),
		Current:    make([]float64, len(categories)),
	}
	for i, cat := range categories {
		table.Reference[i] = refCounts[cat]
		table.Current[i] = currCounts[cat]
	}
	return table
}

// ChiSquareIndependence runs the chi-square test of independence on the
// 2×k contingency table and returns the statistic and p-value.
// Degenerate tables (a single category, or an empty row) yield p = 1.
func ChiSquareIndependence(table ContingencyTable) (float64, float64) {
	k := len(table.Categories)
	if k < 2 {
		return 0, 1.0
	}

	refTotal, currTotal := 0.0, 0.0
	colTotals := make([]float64, k)
	for i := 0; i < k; i++ {
		refTotal += table.Reference[i]
		currTotal += table.Current[i]
		colTotals[i] = table.Reference[i] + table.Current[i]
	}
	grand := refTotal + currTotal
	if refTotal == 0 || currTotal == 0 {
		return 0, 1.0
	}

	chiSq := 0.0
	for i := 0; i < k; i++ {
		expRef := refTotal * colTotals[i] / grand
		expCurr := currTotal * colTotals[i] / grand
		if expRef > 0 {
			d := table.Reference[i] - expRef
			chiSq += d * d / expRef
		}
		if expCurr > 0 {
			d := table.Current[i] - expCurr
			chiSq += d * d / expCurr
		}
	}

	df := float64(k - 1)
	chiDist := distuv.ChiSquared{K: df}
	p := 1 - chiDist.CDF(chiSq)
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	return chiSq, p
}
