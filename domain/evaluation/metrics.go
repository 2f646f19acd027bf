package evaluation

// ConfusionCounts holds the four cells of a binary confusion matrix
type ConfusionCounts struct {
	TruePositive  int `json:"true_positive"`
	TrueNegative  int `json:"true_negative"`
	FalsePositive int `json:"false_positive"`
	FalseNegative int `json:"false_negative"`
}

// Metrics bundles the standard binary classification scores for one period
type Metrics struct {
	Accuracy  float64         `json:"accuracy"`
	Precision float64         `json:"precision"`
	Recall    float64         `json:"recall"`
	F1        float64         `json:"f1"`
	Counts    ConfusionCounts `json:"confusion"`
}

// Confusion tallies predictions against ground truth. Slices are truncated
// to the shorter length when they disagree.
func Confusion(actual, predicted []int) ConfusionCounts {
	n := len(actual)
	if len(predicted) < n {
		n = len(predicted)
	}

	var c ConfusionCounts
	for i := 0; i < n; i++ {
		switch {
		case actual[i] == 1 && predicted[i] == 1:
			c.TruePositive++
		case actual[i] == 0 && predicted[i] == 0:
			c.TrueNegative++
		case actual[i] == 0 && predicted[i] == 1:
			c.FalsePositive++
		default:
			c.FalseNegative++
		}
	}
	return c
}

// Compute derives accuracy, precision, recall, and F1 from paired label and
// prediction sequences. Zero-division cases score 0 rather than erroring.
func Compute(actual, predicted []int) Metrics {
	c := Confusion(actual, predicted)
	total := c.TruePositive + c.TrueNegative + c.FalsePositive + c.FalseNegative

	m := Metrics{Counts: c}
	if total == 0 {
		return m
	}

	m.Accuracy = float64(c.TruePositive+c.TrueNegative) / float64(total)

	if denom := c.TruePositive + c.FalsePositive; denom > 0 {
		m.Precision = float64(c.TruePositive) / float64(denom)
	}
	if denom := c.TruePositive + c.FalseNegative; denom > 0 {
		m.Recall = float64(c.TruePositive) / float64(denom)
	}
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}
	return m
}
