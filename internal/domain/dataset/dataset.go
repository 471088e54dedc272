// Package dataset loads benchmark observations into an immutable table.
package dataset

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/okian/kpiboard/internal/domain/model"
)

// Source column names. The measured columns are renamed to the metric labels on load.
const (
	ColQuestionID       = "Ques_ID_Prompt"
	ColRating           = "Answer_Rating_0_5"
	ColElectricity      = "Electricity_consumption_Wh"
	ColCO2              = "CO2_Emission_gm"
	ColInference        = "Inference_Timing_sec"
	ColModel            = "Model"
	ColModelCategory    = "Model_Category"
	ColQuestionCategory = "Question_Category"
)

// RequiredColumns lists every column the loader needs, in the order they are reported.
var RequiredColumns = []string{
	ColQuestionID,
	ColRating,
	ColElectricity,
	ColCO2,
	ColInference,
	ColModel,
	ColModelCategory,
	ColQuestionCategory,
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Table is an immutable set of observations. It is safe for concurrent readers.
type Table struct {
	source             string
	rows               []model.Observation
	models             []string
	modelCategories    []string
	questionCategories []string
}

// Load reads the CSV at path.
func Load(ctx context.Context, path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	defer func() { _ = f.Close() }()

	t, err := Parse(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	t.source = path
	return t, nil
}

// Parse reads CSV records from r. The header must contain every RequiredColumns
// entry; other columns are ignored.
func Parse(ctx context.Context, r io.Reader) (*Table, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyInput
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrMalformedRow, err)
	}

	idx, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var rows []model.Observation
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedRow, err)
		}
		line, _ := reader.FieldPos(0)
		if isBlank(record) {
			continue
		}
		obs, err := parseRecord(record, idx, line)
		if err != nil {
			return nil, err
		}
		rows = append(rows, obs)
	}

	return FromObservations("", rows), nil
}

// FromObservations builds a table over a copy of rows.
func FromObservations(source string, rows []model.Observation) *Table {
	t := &Table{
		source: source,
		rows:   append([]model.Observation(nil), rows...),
	}
	t.models = distinct(t.rows, func(o model.Observation) string { return o.Model })
	t.modelCategories = distinct(t.rows, func(o model.Observation) string { return o.ModelCategory })
	t.questionCategories = distinct(t.rows, func(o model.Observation) string { return o.QuestionCategory })
	return t
}

// Source returns the path the table was loaded from, if any.
func (t *Table) Source() string { return t.source }

// Len returns the number of observations.
func (t *Table) Len() int { return len(t.rows) }

// Observations returns a copy of every observation in file order.
func (t *Table) Observations() []model.Observation {
	return append([]model.Observation(nil), t.rows...)
}

// Each calls fn for every observation in file order without copying the table.
func (t *Table) Each(fn func(model.Observation)) {
	for _, o := range t.rows {
		fn(o)
	}
}

// Models returns the sorted distinct model names.
func (t *Table) Models() []string { return append([]string(nil), t.models...) }

// ModelCategories returns the sorted distinct Model_Category labels.
func (t *Table) ModelCategories() []string { return append([]string(nil), t.modelCategories...) }

// QuestionCategories returns the sorted distinct Question_Category labels.
func (t *Table) QuestionCategories() []string {
	return append([]string(nil), t.questionCategories...)
}

type columns struct {
	questionID, rating, electricity, co2, inference, model, modelCategory, questionCategory int
}

func columnIndex(header []string) (columns, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if _, dup := pos[name]; !dup {
			pos[name] = i
		}
	}

	var missing []string
	for _, c := range RequiredColumns {
		if _, ok := pos[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return columns{}, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}

	return columns{
		questionID:       pos[ColQuestionID],
		rating:           pos[ColRating],
		electricity:      pos[ColElectricity],
		co2:              pos[ColCO2],
		inference:        pos[ColInference],
		model:            pos[ColModel],
		modelCategory:    pos[ColModelCategory],
		questionCategory: pos[ColQuestionCategory],
	}, nil
}

func parseRecord(record []string, c columns, line int) (model.Observation, error) {
	field := func(i int) string {
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}
	number := func(i int, name string) (float64, error) {
		v, err := strconv.ParseFloat(field(i), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: line %d column %s: %q is not a number",
				ErrMalformedRow, line, name, field(i))
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("%w: line %d column %s: %q is not a finite number",
				ErrMalformedRow, line, name, field(i))
		}
		return v, nil
	}

	obs := model.Observation{
		Model:            field(c.model),
		ModelCategory:    field(c.modelCategory),
		QuestionID:       field(c.questionID),
		QuestionCategory: field(c.questionCategory),
	}
	var err error
	if obs.Rating, err = number(c.rating, ColRating); err != nil {
		return obs, err
	}
	if obs.ElectricityWh, err = number(c.electricity, ColElectricity); err != nil {
		return obs, err
	}
	if obs.CO2g, err = number(c.co2, ColCO2); err != nil {
		return obs, err
	}
	if obs.InferenceSeconds, err = number(c.inference, ColInference); err != nil {
		return obs, err
	}
	return obs, nil
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func distinct(rows []model.Observation, key func(model.Observation) string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, o := range rows {
		k := key(o)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
