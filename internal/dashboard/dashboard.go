// Package dashboard builds the view model of the accident statistics page:
// headline metrics, named aggregation results and the normalized data table.
package dashboard

import (
	"fmt"

	"github.com/iwvelando/safety-dashboard/internal/accidents"
	"github.com/iwvelando/safety-dashboard/internal/aggregate"
	"github.com/iwvelando/safety-dashboard/pkg/constants"
	"github.com/iwvelando/safety-dashboard/pkg/format"
	"github.com/shopspring/decimal"
)

// Chart kinds understood by the front end.
const (
	KindHorizontalBar = "hbar"
	KindBar           = "bar"
	KindPie           = "pie"
	KindDonut         = "donut"
	KindLine          = "line"
)

// Chart identifiers.
const (
	ChartAccidentType = "tipo"
	ChartCausalLink   = "nexo"
	ChartGender       = "genero"
	ChartShift        = "turno"
	ChartMonthly      = "evolucao"
	ChartJobFunction  = "funcao"
	ChartDepartment   = "secretaria"
)

// GenderColors pins the colours of the gender chart.
var GenderColors = map[string]string{
	"Feminino":  "#FF69B4",
	"Masculino": "#1E90FF",
}

// Metric is one headline indicator.
type Metric struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Chart is a named aggregation result with rendering hints.
type Chart struct {
	ID     string            `json:"id"`
	Title  string            `json:"title"`
	Kind   string            `json:"kind"`
	Labels []string          `json:"labels"`
	Values []int             `json:"values"`
	Colors map[string]string `json:"colors,omitempty"`
	XLabel string            `json:"xLabel,omitempty"`
	YLabel string            `json:"yLabel,omitempty"`
}

// Section groups charts under a heading.
type Section struct {
	Title  string  `json:"title"`
	Charts []Chart `json:"charts"`
}

// Table is the normalized record table ready for display.
type Table struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// Page is everything the accident statistics page shows.
type Page struct {
	Title    string    `json:"title"`
	Source   string    `json:"source"`
	Mode     string    `json:"mode,omitempty"`
	Metrics  []Metric  `json:"metrics"`
	Sections []Section `json:"sections"`
	Table    Table     `json:"table"`
	Warnings []string  `json:"warnings,omitempty"`
}

// Options tune the view model.
type Options struct {
	TopK int
	Mode string
}

// Build turns a dataset into the page view model. Charts whose column is
// missing from the source are omitted.
func Build(ds *accidents.Dataset, opts Options) Page {
	topK := opts.TopK
	if topK <= 0 {
		topK = constants.DefaultTopK
	}

	page := Page{
		Title:  "Estatísticas de Acidente de Trabalho",
		Source: ds.Source,
		Mode:   opts.Mode,
	}

	totals := aggregate.Summarize(ds.Records)
	days := int64(0)
	if ds.Has(accidents.FieldDaysAbsent) {
		days = totals.DaysAbsent
	}
	liability := decimal.Zero
	if ds.Has(accidents.FieldLiability) {
		liability = totals.Liability
	}
	page.Metrics = []Metric{
		{Label: "Total de Acidentes", Value: format.Integer(int64(totals.Accidents))},
		{Label: "Total Dias Afastados", Value: format.Integer(days)},
		{Label: "Total de Ônus", Value: format.Currency(liability)},
	}

	classification := Section{Title: "Classificação de Acidentes"}
	if ds.Has(accidents.FieldAccidentType) {
		counts := aggregate.ByCategory(ds.Records, accidents.FieldAccidentType, aggregate.Options{Limit: topK})
		classification.Charts = append(classification.Charts, newChart(ChartAccidentType,
			"Tipos de Acidente Mais Frequentes", KindHorizontalBar, counts))
	}
	if ds.Has(accidents.FieldCausalLink) {
		counts := aggregate.ByCategory(ds.Records, accidents.FieldCausalLink, aggregate.Options{})
		classification.Charts = append(classification.Charts, newChart(ChartCausalLink,
			"Distribuição por Nexo Causal", KindDonut, counts))
	}

	demographics := Section{Title: "Distribuições Demográficas"}
	if ds.Has(accidents.FieldGender) {
		counts := aggregate.ByCategory(ds.Records, accidents.FieldGender, aggregate.Options{})
		chart := newChart(ChartGender, "Distribuição por Gênero", KindPie, counts)
		chart.Colors = GenderColors
		demographics.Charts = append(demographics.Charts, chart)
	}
	if ds.Has(accidents.FieldShift) {
		counts := aggregate.ByCategory(ds.Records, accidents.FieldShift, aggregate.Options{Allowed: constants.ValidShifts})
		demographics.Charts = append(demographics.Charts, newChart(ChartShift,
			"Distribuição por Turno", KindBar, counts))
	}

	timeline := Section{Title: "Evolução Temporal das Ocorrências"}
	if ds.Has(accidents.FieldOccurrenceDate) {
		chart := newChart(ChartMonthly, "Evolução Mensal", KindLine, aggregate.ByMonth(ds.Records))
		chart.XLabel = "Mês/Ano"
		chart.YLabel = "Acidentes"
		timeline.Charts = append(timeline.Charts, chart)
	} else {
		page.Warnings = append(page.Warnings,
			fmt.Sprintf("Coluna '%s' não encontrada", headerOf(ds, accidents.FieldOccurrenceDate)))
	}

	institutional := Section{Title: "Análise Institucional"}
	if ds.Has(accidents.FieldJobFunction) {
		counts := aggregate.ByCategory(ds.Records, accidents.FieldJobFunction, aggregate.Options{Limit: topK})
		institutional.Charts = append(institutional.Charts, newChart(ChartJobFunction,
			"Funções com Mais Acidentes", KindHorizontalBar, counts))
	}
	if ds.Has(accidents.FieldDepartment) {
		counts := aggregate.ByCategory(ds.Records, accidents.FieldDepartment, aggregate.Options{})
		institutional.Charts = append(institutional.Charts, newChart(ChartDepartment,
			"Distribuição por Secretaria", KindPie, counts))
	}

	for _, section := range []Section{classification, demographics, timeline, institutional} {
		if len(section.Charts) > 0 {
			page.Sections = append(page.Sections, section)
		}
	}

	if n := len(ds.Issues); n > 0 {
		page.Warnings = append(page.Warnings,
			fmt.Sprintf("%d valores não puderam ser interpretados e foram substituídos pelo valor padrão", n))
	}

	page.Table = buildTable(ds)
	return page
}

// Chart returns the chart with the given id.
func (p Page) Chart(id string) (Chart, bool) {
	for _, section := range p.Sections {
		for _, chart := range section.Charts {
			if chart.ID == id {
				return chart, true
			}
		}
	}
	return Chart{}, false
}

func newChart(id, title, kind string, counts []aggregate.Count) Chart {
	return Chart{
		ID:     id,
		Title:  title,
		Kind:   kind,
		Labels: aggregate.Labels(counts),
		Values: aggregate.Values(counts),
	}
}

func buildTable(ds *accidents.Dataset) Table {
	table := Table{
		Headers: append([]string(nil), ds.Headers...),
		Rows:    make([][]string, 0, len(ds.Records)),
	}

	dateIdx := ds.ColumnIndex(accidents.FieldOccurrenceDate)
	liabilityIdx := ds.ColumnIndex(accidents.FieldLiability)
	daysIdx := ds.ColumnIndex(accidents.FieldDaysAbsent)
	idIdx := ds.ColumnIndex(accidents.FieldIdentifier)

	for _, r := range ds.Records {
		row := append([]string(nil), r.Cells...)
		if dateIdx >= 0 {
			row[dateIdx] = ""
			if r.OccurredAt.Valid {
				row[dateIdx] = r.OccurredAt.Time.Format("02/01/2006")
			}
		}
		if liabilityIdx >= 0 {
			row[liabilityIdx] = format.Currency(r.Liability)
		}
		if daysIdx >= 0 {
			row[daysIdx] = decimal.NewFromFloat(r.DaysAbsent).String()
		}
		if idIdx >= 0 {
			row[idIdx] = format.Identifier(row[idIdx])
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

func headerOf(ds *accidents.Dataset, f accidents.Field) string {
	if idx := ds.ColumnIndex(f); idx >= 0 {
		return ds.Headers[idx]
	}
	return ds.Columns.Header(f)
}
