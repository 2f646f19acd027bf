package testkit

import (
	"math/rand"

	"creditwatch/domain/dataset"
)

// LoanGeneratorConfig configures the synthetic loan application generator
type LoanGeneratorConfig struct {
	Count          int     `json:"count"`
	Seed           int64   `json:"seed"`
	ScoreMean      float64 `json:"score_mean"`      // credit score center
	ScoreSpread    float64 `json:"score_spread"`    // half-width of the uniform score range
	IncomeMean     float64 `json:"income_mean"`     // annual income center
	IncomeSpread   float64 `json:"income_spread"`   // half-width of the uniform income range
	ApprovalAt     float64 `json:"approval_at"`     // score above which applications are approved
	LabelNoiseRate float64 `json:"label_noise_rate"` // fraction of predictions flipped vs. ground truth
	WithLabels     bool    `json:"with_labels"`
}

// DefaultLoanConfig returns a stable reference population
func DefaultLoanConfig() LoanGeneratorConfig {
	return LoanGeneratorConfig{
		Count:          500,
		Seed:           42,
		ScoreMean:      700,
		ScoreSpread:    100,
		IncomeMean:     65000,
		IncomeSpread:   25000,
		ApprovalAt:     680,
		LabelNoiseRate: 0.05,
		WithLabels:     true,
	}
}

// ShiftedLoanConfig returns a drifted population: lower scores, lower
// incomes, noisier predictions
func ShiftedLoanConfig() LoanGeneratorConfig {
	config := DefaultLoanConfig()
	config.Seed = 43
	config.ScoreMean = 580
	config.IncomeMean = 45000
	config.LabelNoiseRate = 0.2
	return config
}

// LoanDataGenerator generates synthetic credit-scoring batches for tests
type LoanDataGenerator struct {
	config LoanGeneratorConfig
	rng    *rand.Rand
}

// NewLoanDataGenerator creates a generator with a deterministic seed
func NewLoanDataGenerator(config LoanGeneratorConfig) *LoanDataGenerator {
	return &LoanDataGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

var employmentTypes = []string{"salaried", "self_employed", "contract"}
var genders = []string{"male", "female"}
var ageGroups = []string{"18-25", "26-40", "41-65"}

// Generate produces one batch of loan application records. Each record
// carries the input features, a model prediction, and (when configured) the
// ground-truth outcome.
func (g *LoanDataGenerator) Generate() *dataset.Batch {
	records := make([]dataset.Record, g.config.Count)
	for i := range records {
		score := g.uniform(g.config.ScoreMean, g.config.ScoreSpread)
		income := g.uniform(g.config.IncomeMean, g.config.IncomeSpread)

		actual := 0
		if score >= g.config.ApprovalAt {
			actual = 1
		}
		prediction := actual
		if g.rng.Float64() < g.config.LabelNoiseRate {
			prediction = 1 - prediction
		}

		rec := dataset.Record{
			"credit_score":    score,
			"income":          income,
			"loan_amount":     g.uniform(20000, 15000),
			"employment_type": employmentTypes[g.rng.Intn(len(employmentTypes))],
			"gender":          genders[g.rng.Intn(len(genders))],
			"age_group":       ageGroups[g.rng.Intn(len(ageGroups))],
			"prediction":      prediction,
		}
		if g.config.WithLabels {
			rec[dataset.ColumnLoanStatus] = actual
		}
		records[i] = rec
	}
	return dataset.NewBatch(records)
}

// Predictions extracts the generated predictions in record order
func Predictions(batch *dataset.Batch) []int {
	return batch.BinaryColumn(dataset.ColumnPrediction)
}

func (g *LoanDataGenerator) uniform(mean, spread float64) float64 {
	return mean - spread + g.rng.Float64()*2*spread
}
