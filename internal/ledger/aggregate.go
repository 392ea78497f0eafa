package ledger

import "moneymap/internal/core"

// SeriesDateLayout matches the day/month/year labels of the balance chart.
const SeriesDateLayout = "2/1/2006"

type (
	LabelTotal struct {
		Label string  `json:"label"`
		Total float64 `json:"total"`
	}

	// Aggregate is an ordered label to sum mapping. Labels appear in the
	// order they were first seen.
	Aggregate []LabelTotal

	// Series is chart-ready data: one point per record.
	Series struct {
		Labels []string  `json:"labels"`
		Values []float64 `json:"values"`
	}
)

// AggregateByKindAndLabel sums amounts per label for records of one kind.
func AggregateByKindAndLabel(records []core.Record, kind core.Kind) Aggregate {
	agg := Aggregate{}
	index := make(map[string]int)
	for _, r := range records {
		if r.Kind != kind {
			continue
		}
		i, ok := index[r.Item]
		if !ok {
			index[r.Item] = len(agg)
			agg = append(agg, LabelTotal{Label: r.Item, Total: r.Amount})
			continue
		}
		agg[i].Total += r.Amount
	}
	return agg
}

func (a Aggregate) Labels() []string {
	labels := make([]string, len(a))
	for i, lt := range a {
		labels[i] = lt.Label
	}
	return labels
}

func (a Aggregate) Values() []float64 {
	values := make([]float64, len(a))
	for i, lt := range a {
		values[i] = lt.Total
	}
	return values
}

// Get returns the total for label.
func (a Aggregate) Get(label string) (float64, bool) {
	for _, lt := range a {
		if lt.Label == label {
			return lt.Total, true
		}
	}
	return 0, false
}

// Sum adds every label total.
func (a Aggregate) Sum() float64 {
	var s float64
	for _, lt := range a {
		s += lt.Total
	}
	return s
}

// BalanceSeries pairs each record's local date with its stored balance.
func BalanceSeries(records []core.Record) Series {
	s := Series{
		Labels: make([]string, len(records)),
		Values: make([]float64, len(records)),
	}
	for i, r := range records {
		s.Labels[i] = r.Time.Local().Format(SeriesDateLayout)
		s.Values[i] = r.Balance
	}
	return s
}
