/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"bytes"
	"errors"
	htmltemplate "html/template"
	"net/http"

	"github.com/flamego/flamego"
	"github.com/flamego/session"
	"github.com/flamego/template"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/humaidq/smartcvd/intake"
	"github.com/humaidq/smartcvd/report"
	"github.com/humaidq/smartcvd/risk"
)

// ResultRow is a formatted horizon estimate.
type ResultRow struct {
	Label   string
	Metric  string
	Percent string
}

var horizonLabels = map[string]string{
	report.MetricFiveYear: "5-year",
	report.MetricTenYear:  "10-year",
	report.MetricLifetime: "Lifetime (to 85)",
}

func resultRows(r risk.Result) []ResultRow {
	rows := report.Rows(r)
	out := make([]ResultRow, 0, len(rows))

	for _, row := range rows {
		out = append(out, ResultRow{
			Label:   horizonLabels[row.Metric],
			Metric:  row.Metric,
			Percent: report.FormatPercent(row.Value),
		})
	}

	return out
}

// generateRiskChart creates a bar chart of the three horizons with the
// ceiling drawn as a reference line.
func generateRiskChart(title string, r risk.Result) (string, error) {
	rows := report.Rows(r)

	xAxis := make([]string, 0, len(rows))
	bars := make([]opts.BarData, 0, len(rows))
	for _, row := range rows {
		xAxis = append(xAxis, horizonLabels[row.Metric])
		bars = append(bars, opts.BarData{Value: report.FormatPercent(row.Value)})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: title,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show: opts.Bool(true),
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(false),
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: "%",
			Min:  0,
			Max:  100,
		}),
	)

	bar.SetXAxis(xAxis).
		AddSeries("Risk", bars).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{
				Show:     opts.Bool(true),
				Position: "top",
			}),
			func(s *charts.SingleSeries) {
				s.MarkLines = &opts.MarkLines{
					Data: []interface{}{
						opts.MarkLineNameYAxisItem{Name: "Ceiling", YAxis: risk.MaxRiskPercent},
					},
					MarkLineStyle: opts.MarkLineStyle{
						Symbol: []string{"none", "none"},
						LineStyle: &opts.LineStyle{
							Color: "rgba(128, 128, 128, 0.6)",
							Type:  "dashed",
							Width: 1.5,
						},
					},
				}
			},
		)

	var buf bytes.Buffer
	if err := bar.Render(&buf); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// setResultData fills the template data shared by the results page and
// saved assessments.
func setResultData(data template.Data, form intake.Form, result risk.Result, chartTitle string) {
	therapy := form.Therapy()

	data["Form"] = form
	data["Result"] = result
	data["Rows"] = resultRows(result)
	data["Summary"] = report.Summary(result)
	data["PriorTherapyCount"] = therapy.PriorVascularTherapyCount()
	data["PlannedTherapies"] = therapy.PlannedTherapies()
	data["LabFlags"] = intake.LabFlags(form)

	chart, err := generateRiskChart(chartTitle, result)
	if err != nil {
		logger.Warn("Failed to render risk chart", "error", err)
		return
	}
	data["Chart"] = htmltemplate.HTML(chart)
}

func estimateMessage(err error) string {
	switch {
	case errors.Is(err, intake.ErrInvalidForm):
		return validationMessage(err)
	case errors.Is(err, risk.ErrInvalidInput), errors.Is(err, risk.ErrDomainViolation):
		return "The entered values cannot be scored"
	}

	return "Failed to calculate risk"
}

// Results computes and renders the estimate for the collected values.
func Results(c flamego.Context, s session.Session, t template.Template, data template.Data) {
	form := loadForm(s)

	result, err := form.Estimate()
	if err != nil {
		logger.Warn("Failed to estimate risk", "error", err)
		SetErrorFlash(s, estimateMessage(err))
		c.Redirect(stepURL(intake.StepProfile), http.StatusSeeOther)
		return
	}

	setWizardData(data, intake.StepResults)
	setResultData(data, form, result, "Estimated CVD risk")
	data["HistoryEnabled"] = historyEnabledFn()

	t.HTML(http.StatusOK, "results")
}

// ResultsCSV downloads the estimate as results.csv.
func ResultsCSV(c flamego.Context, s session.Session) {
	result, err := loadForm(s).Estimate()
	if err != nil {
		logger.Warn("Failed to estimate risk for export", "error", err)
		http.Error(c.ResponseWriter(), errResultUnavailable.Error(), http.StatusUnprocessableEntity)
		return
	}

	writeCSVResponse(c, "results.csv", result)
}

func writeCSVResponse(c flamego.Context, filename string, result risk.Result) {
	var buf bytes.Buffer
	if err := report.WriteCSV(&buf, result); err != nil {
		logger.Error("Failed to write csv", "error", err)
		http.Error(c.ResponseWriter(), "Failed to export results", http.StatusInternalServerError)
		return
	}

	w := c.ResponseWriter()
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(buf.Bytes()); err != nil {
		logger.Warn("Failed to send csv", "error", err)
	}
}
