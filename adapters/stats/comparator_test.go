package stats

import (
	"math/rand"
	"testing"
)

func uniformSample(r *rand.Rand, n int, lo, hi float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + r.Float64()*(hi-lo)
	}
	return out
}

func TestCompareNumeric_SelfComparisonNoDrift(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	sample := uniformSample(r, 200, 600, 800)

	c := NewComparator(0.05)
	result := c.CompareNumeric("credit_score", sample, sample)

	if result.IsDrifted {
		t.Error("self-comparison must not drift")
	}
	if result.DriftScore > 0.05 {
		t.Errorf("self-comparison score = %.4f, want ~0", result.DriftScore)
	}
}

func TestCompareNumeric_ShiftedDistributionsDrift(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	ref := uniformSample(r, 150, 600, 800)
	curr := uniformSample(r, 150, 100, 300)

	c := NewComparator(0.05)
	result := c.CompareNumeric("credit_score", ref, curr)

	if !result.IsDrifted {
		t.Error("disjoint distributions must drift at threshold 0.05")
	}
	if result.DriftScore < 0.95 {
		t.Errorf("score = %.4f, want near 1", result.DriftScore)
	}
}

func TestCompareNumeric_ScoreBounds(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	c := NewComparator(0.05)

	cases := [][2][]float64{
		{uniformSample(r, 50, 0, 1), uniformSample(r, 50, 0, 1)},
		{uniformSample(r, 50, 0, 1), uniformSample(r, 50, 100, 200)},
		{uniformSample(r, 5, 0, 1), uniformSample(r, 500, 0, 1)},
		{{1, 1, 1, 1}, {1, 1, 1, 1}},
	}
	for i, pair := range cases {
		result := c.CompareNumeric("f", pair[0], pair[1])
		if result.DriftScore < 0 || result.DriftScore > 1 {
			t.Errorf("case %d: score %.4f outside [0,1]", i, result.DriftScore)
		}
	}
}

func TestCompareNumeric_EmptySampleIsNeutral(t *testing.T) {
	c := NewComparator(0.05)

	result := c.CompareNumeric("income", nil, []float64{1, 2, 3})
	if result.IsDrifted || result.DriftScore != 0.0 {
		t.Errorf("empty reference must fail open, got %+v", result)
	}

	result = c.CompareNumeric("income", []float64{1, 2, 3}, nil)
	if result.IsDrifted || result.DriftScore != 0.0 {
		t.Errorf("empty current must fail open, got %+v", result)
	}
}

func TestCompareNumeric_ConstantSamplesNoDrift(t *testing.T) {
	c := NewComparator(0.05)
	constant := []float64{5, 5, 5, 5, 5, 5}

	result := c.CompareNumeric("flag", constant, constant)
	if result.IsDrifted {
		t.Errorf("identical constant samples must not drift, got %+v", result)
	}
}

func TestCompareCategorical_StableFrequenciesNoDrift(t *testing.T) {
	c := NewComparator(0.05)
	ref := repeatLabels(map[string]int{"salaried": 60, "self_employed": 30, "retired": 10})
	curr := repeatLabels(map[string]int{"salaried": 58, "self_employed": 31, "retired": 11})

	result := c.CompareCategorical("employment_type", ref, curr)
	if result.IsDrifted {
		t.Errorf("near-identical frequencies must not drift, got %+v", result)
	}
}

func TestCompareCategorical_ShiftedFrequenciesDrift(t *testing.T) {
	c := NewComparator(0.05)
	ref := repeatLabels(map[string]int{"salaried": 90, "self_employed": 10})
	curr := repeatLabels(map[string]int{"salaried": 20, "self_employed": 80})

	result := c.CompareCategorical("employment_type", ref, curr)
	if !result.IsDrifted {
		t.Errorf("inverted frequencies must drift, got %+v", result)
	}
}

func TestCompareCategorical_DisjointCategories(t *testing.T) {
	c := NewComparator(0.05)
	ref := repeatLabels(map[string]int{"north": 50, "south": 50})
	curr := repeatLabels(map[string]int{"east": 50, "west": 50})

	result := c.CompareCategorical("region", ref, curr)
	if !result.IsDrifted {
		t.Errorf("disjoint category sets must drift, got %+v", result)
	}
	if result.DriftScore < 0.95 {
		t.Errorf("score = %.4f, want near 1", result.DriftScore)
	}
}

func TestCompareCategorical_SingleCategoryIsNeutral(t *testing.T) {
	c := NewComparator(0.05)
	result := c.CompareCategorical("constant", []string{"a", "a"}, []string{"a", "a", "a"})
	if result.IsDrifted || result.DriftScore != 0.0 {
		t.Errorf("single shared category must be neutral, got %+v", result)
	}
}

func TestKolmogorovSmirnov_KnownSeparation(t *testing.T) {
	// Fully separated samples: statistic must be 1
	ref := []float64{1, 2, 3, 4, 5}
	curr := []float64{10, 11, 12, 13, 14}

	d, p := KolmogorovSmirnov(ref, curr)
	if d != 1.0 {
		t.Errorf("statistic = %.4f, want 1.0", d)
	}
	if p > 0.05 {
		t.Errorf("p-value = %.4f, want significant", p)
	}
}

func TestBuildContingency_UnionOfCategories(t *testing.T) {
	table := BuildContingency([]string{"a", "a", "b"}, []string{"b", "c"})

	if len(table.Categories) != 3 {
		t.Fatalf("expected 3 categories, got %v", table.Categories)
	}
	// Sorted union: a, b, c
	if table.Reference[0] != 2 || table.Reference[1] != 1 || table.Reference[2] != 0 {
		t.Errorf("reference row = %v", table.Reference)
	}
	if table.Current[0] != 0 || table.Current[1] != 1 || table.Current[2] != 1 {
		t.Errorf("current row = %v", table.Current)
	}
}

func repeatLabels(counts map[string]int) []string {
	var out []string
	// Deterministic expansion order is irrelevant to frequency tests
	for _, label := range []string{"salaried", "self_employed", "retired", "north", "south", "east", "west", "a", "b", "c"} {
		for i := 0; i < counts[label]; i++ {
			out = append(out, label)
		}
	}
	return out
}
