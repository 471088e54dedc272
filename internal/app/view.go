package service

import (
	"time"

	"github.com/okian/kpiboard/internal/adapters/chart"
	"github.com/okian/kpiboard/internal/domain/aggregate"
	"github.com/okian/kpiboard/internal/domain/model"
)

// Section is one subheading of the dashboard page. Figure is nil when the
// chart had nothing to plot; Note then says why.
type Section struct {
	Heading string
	Figure  *chart.Figure
	Note    string
}

// Dashboard is the view model behind the dashboard page.
type Dashboard struct {
	Title        string
	Source       string
	Observations int
	GeneratedAt  time.Time
	Sections     []Section

	Means      aggregate.CategoryVectors
	Normalized aggregate.CategoryVectors
	Pivot      aggregate.Pivot
	Costs      []aggregate.CategoryCost
	Latency    []aggregate.Distribution
}

// Summary is the JSON form of the aggregated tables.
type Summary struct {
	Source                string        `json:"source"`
	Observations          int           `json:"observations"`
	ConstantMetricPolicy  string        `json:"constantMetricPolicy"`
	KPIMeans              []CategoryKPI `json:"kpiMeans"`
	Normalized            []CategoryKPI `json:"normalized"`
	RatingPivot           PivotView     `json:"ratingPivot"`
	QuestionCategoryCosts []CostView    `json:"questionCategoryCosts"`
	CostsLong             []LongView    `json:"questionCategoryCostsLong"`
	Latency               []LatencyView `json:"latency"`
}

// CategoryKPI is a KPI vector keyed by metric name.
type CategoryKPI struct {
	Category string             `json:"category"`
	Count    int                `json:"count"`
	Values   map[string]float64 `json:"values"`
}

// PivotView holds the rating pivot; empty cells are null.
type PivotView struct {
	Rows    []string     `json:"rows"`
	Columns []string     `json:"columns"`
	Cells   [][]*float64 `json:"cells"`
}

// CostView is the mean cost of one Question_Category.
type CostView struct {
	Category      string  `json:"category"`
	ElectricityWh float64 `json:"electricityWh"`
	CO2g          float64 `json:"co2g"`
	Count         int     `json:"count"`
}

// LongView is one row of the melted cost table.
type LongView struct {
	Category string  `json:"category"`
	Metric   string  `json:"metric"`
	Average  float64 `json:"average"`
}

// LatencyView is the Inference_s five-number summary of one Model_Category.
type LatencyView struct {
	Category string  `json:"category"`
	Count    int     `json:"count"`
	Min      float64 `json:"min"`
	Q1       float64 `json:"q1"`
	Median   float64 `json:"median"`
	Q3       float64 `json:"q3"`
	Max      float64 `json:"max"`
}

func categoryKPIs(vectors aggregate.CategoryVectors) []CategoryKPI {
	out := make([]CategoryKPI, len(vectors))
	for i, v := range vectors {
		values := make(map[string]float64, model.NumMetrics)
		for _, m := range model.Metrics {
			values[m.String()] = v.Values[m]
		}
		out[i] = CategoryKPI{Category: v.Category, Count: v.Count, Values: values}
	}
	return out
}

func pivotView(p aggregate.Pivot) PivotView {
	cells := make([][]*float64, len(p.Rows))
	for r := range p.Rows {
		cells[r] = make([]*float64, len(p.Columns))
		for c := range p.Columns {
			if v, ok := p.At(r, c); ok {
				cells[r][c] = &v
			}
		}
	}
	return PivotView{Rows: p.Rows, Columns: p.Columns, Cells: cells}
}

func costViews(costs []aggregate.CategoryCost) []CostView {
	out := make([]CostView, len(costs))
	for i, c := range costs {
		out[i] = CostView(c)
	}
	return out
}

func longViews(rows []aggregate.LongRow) []LongView {
	out := make([]LongView, len(rows))
	for i, r := range rows {
		out[i] = LongView{Category: r.Category, Metric: r.Metric.String(), Average: r.Average}
	}
	return out
}

func latencyViews(dists []aggregate.Distribution) []LatencyView {
	out := make([]LatencyView, len(dists))
	for i, d := range dists {
		out[i] = LatencyView{
			Category: d.Category,
			Count:    len(d.Values),
			Min:      d.Min,
			Q1:       d.Q1,
			Median:   d.Median,
			Q3:       d.Q3,
			Max:      d.Max,
		}
	}
	return out
}
