// Package aggregate computes the grouped and normalized tables behind every chart.
//
// All functions are pure: they read a dataset.Table and return fresh values.
// Group labels are sorted and sums run in file order, so repeated calls on the
// same table return bit-identical results.
package aggregate

import (
	"fmt"
	"math"
	"sort"

	"github.com/okian/kpiboard/internal/domain/dataset"
	"github.com/okian/kpiboard/internal/domain/model"
)

const midpoint = 0.5

// CategoryVector is the KPI vector of one Model_Category.
type CategoryVector struct {
	Category string
	Values   model.KPIVector
	Count    int
}

// CategoryVectors is ordered by category label.
type CategoryVectors []CategoryVector

// Lookup returns the vector for category.
func (cv CategoryVectors) Lookup(category string) (model.KPIVector, bool) {
	for _, v := range cv {
		if v.Category == category {
			return v.Values, true
		}
	}
	return model.KPIVector{}, false
}

// Categories returns the labels in order.
func (cv CategoryVectors) Categories() []string {
	out := make([]string, len(cv))
	for i, v := range cv {
		out[i] = v.Category
	}
	return out
}

// KPIMeans groups observations by Model_Category and averages each metric.
func KPIMeans(t *dataset.Table) CategoryVectors {
	type acc struct {
		sum   model.KPIVector
		count int
	}
	groups := make(map[string]*acc)
	t.Each(func(o model.Observation) {
		a, ok := groups[o.ModelCategory]
		if !ok {
			a = &acc{}
			groups[o.ModelCategory] = a
		}
		for _, m := range model.Metrics {
			a.sum[m] += m.Value(o)
		}
		a.count++
	})

	out := make(CategoryVectors, 0, len(groups))
	for _, cat := range t.ModelCategories() {
		a := groups[cat]
		var mean model.KPIVector
		for _, m := range model.Metrics {
			mean[m] = a.sum[m] / float64(a.count)
		}
		out = append(out, CategoryVector{Category: cat, Values: mean, Count: a.count})
	}
	return out
}

// Normalize min-max scales each metric independently across categories into [0,1].
// A metric whose means are all equal is handled by the ConstantPolicy
// (midpoint 0.5 by default). A NaN or infinite mean fails with ErrNonFinite.
// The input is not modified.
func Normalize(means CategoryVectors, opts ...Option) (CategoryVectors, error) {
	o := normalizeOptions{policy: ConstantMidpoint}
	for _, opt := range opts {
		opt(&o)
	}

	out := make(CategoryVectors, len(means))
	copy(out, means)
	if len(means) == 0 {
		return out, nil
	}

	for _, v := range means {
		for _, m := range model.Metrics {
			if x := v.Values[m]; math.IsNaN(x) || math.IsInf(x, 0) {
				return nil, fmt.Errorf("%w: %s of %s = %g", ErrNonFinite, m, v.Category, x)
			}
		}
	}

	for _, m := range model.Metrics {
		lo, hi := means[0].Values[m], means[0].Values[m]
		for _, v := range means[1:] {
			lo = min(lo, v.Values[m])
			hi = max(hi, v.Values[m])
		}

		if hi == lo {
			if o.policy == ConstantError {
				return nil, fmt.Errorf("%w: %s = %g", ErrConstantMetric, m, lo)
			}
			for i := range out {
				out[i].Values[m] = midpoint
			}
			continue
		}

		span := hi - lo
		for i := range out {
			out[i].Values[m] = (means[i].Values[m] - lo) / span
		}
	}
	return out, nil
}

// Cell is one pivot entry. Count is zero for combinations absent from the data.
type Cell struct {
	Mean  float64
	Count int
}

// Pivot is a Model_Category x Question_Category table of mean Rating.
type Pivot struct {
	Rows    []string
	Columns []string
	Cells   [][]Cell // Cells[row][column]
}

// At returns the mean at (r, c); ok is false for an empty cell.
func (p Pivot) At(r, c int) (float64, bool) {
	cell := p.Cells[r][c]
	return cell.Mean, cell.Count > 0
}

// Lookup returns the mean for a row and column label.
func (p Pivot) Lookup(row, column string) (float64, bool) {
	r, c := indexOf(p.Rows, row), indexOf(p.Columns, column)
	if r < 0 || c < 0 {
		return 0, false
	}
	return p.At(r, c)
}

// CrossPivot averages Rating per (Model_Category, Question_Category).
func CrossPivot(t *dataset.Table) Pivot {
	p := Pivot{
		Rows:    t.ModelCategories(),
		Columns: t.QuestionCategories(),
	}
	rowIdx := positions(p.Rows)
	colIdx := positions(p.Columns)

	sums := make([][]float64, len(p.Rows))
	p.Cells = make([][]Cell, len(p.Rows))
	for r := range p.Rows {
		sums[r] = make([]float64, len(p.Columns))
		p.Cells[r] = make([]Cell, len(p.Columns))
	}

	t.Each(func(o model.Observation) {
		r, c := rowIdx[o.ModelCategory], colIdx[o.QuestionCategory]
		sums[r][c] += o.Rating
		p.Cells[r][c].Count++
	})

	for r := range p.Cells {
		for c := range p.Cells[r] {
			if n := p.Cells[r][c].Count; n > 0 {
				p.Cells[r][c].Mean = sums[r][c] / float64(n)
			}
		}
	}
	return p
}

// CategoryCost is the mean electricity and carbon cost of one Question_Category.
type CategoryCost struct {
	Category      string
	ElectricityWh float64
	CO2g          float64
	Count         int
}

// QuestionCategoryMeans averages Electricity_Wh and CO2_g per Question_Category.
func QuestionCategoryMeans(t *dataset.Table) []CategoryCost {
	type acc struct {
		elec, co2 float64
		count     int
	}
	groups := make(map[string]*acc)
	t.Each(func(o model.Observation) {
		a, ok := groups[o.QuestionCategory]
		if !ok {
			a = &acc{}
			groups[o.QuestionCategory] = a
		}
		a.elec += o.ElectricityWh
		a.co2 += o.CO2g
		a.count++
	})

	out := make([]CategoryCost, 0, len(groups))
	for _, cat := range t.QuestionCategories() {
		a := groups[cat]
		out = append(out, CategoryCost{
			Category:      cat,
			ElectricityWh: a.elec / float64(a.count),
			CO2g:          a.co2 / float64(a.count),
			Count:         a.count,
		})
	}
	return out
}

// LongRow is one (category, metric) pair of the long-form cost table.
type LongRow struct {
	Category string
	Metric   model.Metric
	Average  float64
}

// Melt reshapes category costs into long form: every Electricity_Wh row first,
// then every CO2_g row, each block in category order.
func Melt(costs []CategoryCost) []LongRow {
	out := make([]LongRow, 0, 2*len(costs))
	for _, c := range costs {
		out = append(out, LongRow{Category: c.Category, Metric: model.ElectricityWh, Average: c.ElectricityWh})
	}
	for _, c := range costs {
		out = append(out, LongRow{Category: c.Category, Metric: model.CO2g, Average: c.CO2g})
	}
	return out
}

// Distribution summarises the Inference_s values of one Model_Category.
type Distribution struct {
	Category string
	Values   []float64 // sorted ascending
	Min      float64
	Q1       float64
	Median   float64
	Q3       float64
	Max      float64
}

// LatencyDistributions returns per Model_Category quartiles of Inference_s.
func LatencyDistributions(t *dataset.Table) []Distribution {
	groups := make(map[string][]float64)
	t.Each(func(o model.Observation) {
		groups[o.ModelCategory] = append(groups[o.ModelCategory], o.InferenceSeconds)
	})

	out := make([]Distribution, 0, len(groups))
	for _, cat := range t.ModelCategories() {
		values := groups[cat]
		sort.Float64s(values)
		out = append(out, Distribution{
			Category: cat,
			Values:   values,
			Min:      values[0],
			Q1:       Quantile(values, 0.25),
			Median:   Quantile(values, 0.5),
			Q3:       Quantile(values, 0.75),
			Max:      values[len(values)-1],
		})
	}
	return out
}

// Quantile returns the p-quantile of sorted values, interpolating linearly
// between the closest ranks. It returns 0 for an empty slice.
func Quantile(sorted []float64, p float64) float64 {
	switch n := len(sorted); {
	case n == 0:
		return 0
	case n == 1 || p <= 0:
		return sorted[0]
	case p >= 1:
		return sorted[n-1]
	}
	h := float64(len(sorted)-1) * p
	lo := int(h)
	frac := h - float64(lo)
	if lo+1 >= len(sorted) {
		return sorted[lo]
	}
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

func positions(labels []string) map[string]int {
	m := make(map[string]int, len(labels))
	for i, l := range labels {
		m[l] = i
	}
	return m
}

func indexOf(labels []string, label string) int {
	for i, l := range labels {
		if l == label {
			return i
		}
	}
	return -1
}
