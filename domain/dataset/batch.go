package dataset

import (
	"sort"
	"strconv"
)

// StatisticalType defines how a feature's values are treated in analysis
type StatisticalType string

const (
	TypeNumeric     StatisticalType = "numeric"
	TypeCategorical StatisticalType = "categorical"
	TypeUnknown     StatisticalType = "unknown"
)

// Reserved column names carrying ground truth or model output.
// These are consumed by the prediction/performance analyzers and never
// compared as input features.
const (
	ColumnLoanStatus = "loan_status"
	ColumnApproved   = "approved"
	ColumnPrediction = "prediction"
)

// IsReservedColumn reports whether name is a label or model-output column
func IsReservedColumn(name string) bool {
	switch name {
	case ColumnLoanStatus, ColumnApproved, ColumnPrediction:
		return true
	}
	return false
}

// Record is one observation: feature name to scalar value (numeric or string).
// A nil value marks a missing entry.
type Record map[string]interface{}

// Batch is an immutable collection of records drawn from one period
// (reference or current). Column types are inferred once and cached.
type Batch struct {
	records []Record
	columns []string
	types   map[string]StatisticalType
}

// NewBatch builds a batch from raw records and resolves the column set
func NewBatch(records []Record) *Batch {
	seen := make(map[string]bool)
	var columns []string
	for _, rec := range records {
		for name := range rec {
			if !seen[name] {
				seen[name] = true
				columns = append(columns, name)
			}
		}
	}
	sort.Strings(columns)

	return &Batch{
		records: records,
		columns: columns,
		types:   make(map[string]StatisticalType, len(columns)),
	}
}

// Len returns the number of records
func (b *Batch) Len() int {
	return len(b.records)
}

// Columns returns the union of feature names across all records
func (b *Batch) Columns() []string {
	out := make([]string, len(b.columns))
	copy(out, b.columns)
	return out
}

// HasColumn reports whether any record carries the named feature
func (b *Batch) HasColumn(name string) bool {
	for _, c := range b.columns {
		if c == name {
			return true
		}
	}
	return false
}

// Records returns the underlying records (read-only by convention)
func (b *Batch) Records() []Record {
	return b.records
}

// TypeOf infers the statistical type of a feature from its observed values.
// The inference runs once per feature per batch and is cached.
func (b *Batch) TypeOf(name string) StatisticalType {
	if t, ok := b.types[name]; ok {
		return t
	}

	numeric, categorical := 0, 0
	for _, rec := range b.records {
		v, ok := rec[name]
		if !ok || v == nil {
			continue
		}
		if _, isNum := asFloat(v); isNum {
			numeric++
		} else {
			categorical++
		}
	}

	t := TypeUnknown
	switch {
	case numeric == 0 && categorical == 0:
		t = TypeUnknown
	case categorical > 0:
		// A single non-numeric value makes the whole feature categorical
		t = TypeCategorical
	default:
		t = TypeNumeric
	}

	b.types[name] = t
	return t
}

// NumericColumn extracts the feature as float64 values, skipping missing
// and non-coercible entries
func (b *Batch) NumericColumn(name string) []float64 {
	values := make([]float64, 0, len(b.records))
	for _, rec := range b.records {
		v, ok := rec[name]
		if !ok || v == nil {
			continue
		}
		if f, isNum := asFloat(v); isNum {
			values = append(values, f)
		}
	}
	return values
}

// CategoricalColumn extracts the feature as category labels, skipping
// missing entries. Numeric values are rendered as labels so mixed columns
// still compare on frequency.
func (b *Batch) CategoricalColumn(name string) []string {
	values := make([]string, 0, len(b.records))
	for _, rec := range b.records {
		v, ok := rec[name]
		if !ok || v == nil {
			continue
		}
		values = append(values, asLabel(v))
	}
	return values
}

// BinaryColumn extracts the feature as 0/1 integers for label and
// prediction columns. Truthy numerics >= 0.5 map to 1.
func (b *Batch) BinaryColumn(name string) []int {
	values := make([]int, 0, len(b.records))
	for _, rec := range b.records {
		v, ok := rec[name]
		if !ok || v == nil {
			continue
		}
		f, isNum := asFloat(v)
		if !isNum {
			continue
		}
		if f >= 0.5 {
			values = append(values, 1)
		} else {
			values = append(values, 0)
		}
	}
	return values
}

// Label renders a scalar value as a category label. Empty string means the
// value has no label form.
func Label(v interface{}) string {
	return asLabel(v)
}

func asFloat(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func asLabel(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	default:
		return ""
	}
}
