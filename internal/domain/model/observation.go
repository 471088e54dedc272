// Package model contains domain models passed between layers.
package model

// Observation is one benchmark measurement: a model answering one question.
// Observations are read-only once loaded.
type Observation struct {
	Model            string
	ModelCategory    string
	QuestionID       string
	QuestionCategory string
	Rating           float64 // answer rating, 0-5
	ElectricityWh    float64
	CO2g             float64
	InferenceSeconds float64
}

// Metric identifies one of the four KPIs measured per observation.
type Metric int

// KPIs in display order. The radar chart places Rating at angle 0.
const (
	Rating Metric = iota
	ElectricityWh
	CO2g
	InferenceSeconds

	NumMetrics = 4
)

// Metrics lists every KPI in display order.
var Metrics = [NumMetrics]Metric{Rating, ElectricityWh, CO2g, InferenceSeconds}

var metricNames = [NumMetrics]string{"Rating", "Electricity_Wh", "CO2_g", "Inference_s"}

// String returns the column label used on charts and in JSON.
func (m Metric) String() string {
	if m < 0 || int(m) >= NumMetrics {
		return "unknown"
	}
	return metricNames[m]
}

// Value extracts the metric from an observation.
func (m Metric) Value(o Observation) float64 {
	switch m {
	case Rating:
		return o.Rating
	case ElectricityWh:
		return o.ElectricityWh
	case CO2g:
		return o.CO2g
	case InferenceSeconds:
		return o.InferenceSeconds
	default:
		return 0
	}
}

// KPIVector holds one value per metric, indexed by Metric.
type KPIVector [NumMetrics]float64

// Get returns the value for m.
func (v KPIVector) Get(m Metric) float64 { return v[m] }
