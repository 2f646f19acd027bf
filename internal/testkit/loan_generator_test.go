package testkit

import (
	"testing"

	"creditwatch/domain/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateDeterministic(t *testing.T) {
	a := NewLoanDataGenerator(DefaultLoanConfig()).Generate()
	b := NewLoanDataGenerator(DefaultLoanConfig()).Generate()

	require.Equal(t, a.Len(), b.Len())
	assert.Equal(t, a.NumericColumn("credit_score"), b.NumericColumn("credit_score"))
}

func TestGenerateShape(t *testing.T) {
	batch := NewLoanDataGenerator(DefaultLoanConfig()).Generate()

	assert.Equal(t, 500, batch.Len())
	assert.Equal(t, dataset.TypeNumeric, batch.TypeOf("credit_score"))
	assert.Equal(t, dataset.TypeCategorical, batch.TypeOf("employment_type"))
	assert.True(t, batch.HasColumn(dataset.ColumnPrediction))
	assert.True(t, batch.HasColumn(dataset.ColumnLoanStatus))

	for _, score := range batch.NumericColumn("credit_score") {
		assert.True(t, score >= 600 && score <= 800)
	}
}

func TestGenerateWithoutLabels(t *testing.T) {
	config := DefaultLoanConfig()
	config.WithLabels = false
	batch := NewLoanDataGenerator(config).Generate()

	assert.False(t, batch.HasColumn(dataset.ColumnLoanStatus))
	assert.True(t, batch.HasColumn(dataset.ColumnPrediction))
}

func TestShiftedConfigShiftsPopulation(t *testing.T) {
	reference := NewLoanDataGenerator(DefaultLoanConfig()).Generate()
	shifted := NewLoanDataGenerator(ShiftedLoanConfig()).Generate()

	refScores := reference.NumericColumn("credit_score")
	shiftedScores := shifted.NumericColumn("credit_score")

	assert.Greater(t, mean(refScores), mean(shiftedScores)+50)
}

func TestPredictionsAlign(t *testing.T) {
	batch := NewLoanDataGenerator(DefaultLoanConfig()).Generate()
	predictions := Predictions(batch)

	assert.Len(t, predictions, batch.Len())
	for _, p := range predictions {
		assert.True(t, p == 0 || p == 1)
	}
}

func mean(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}
