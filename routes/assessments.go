/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"errors"
	"net/http"
	"strings"

	"github.com/flamego/flamego"
	"github.com/flamego/session"
	"github.com/flamego/template"

	"github.com/humaidq/smartcvd/db"
	"github.com/humaidq/smartcvd/intake"
)

// Swapped out in tests.
var (
	historyEnabledFn   = db.Enabled
	createAssessmentFn = db.CreateAssessment
	listAssessmentsFn  = db.ListAssessments
	getAssessmentFn    = db.GetAssessment
	deleteAssessmentFn = db.DeleteAssessment
)

const assessmentsURL = "/assessments"

// SaveAssessment stores the current estimate in the history.
func SaveAssessment(c flamego.Context, s session.Session) {
	if !historyEnabledFn() {
		logger.Warn("Rejected save", "error", errHistoryDisabled)
		SetErrorFlash(s, "Assessment history is not configured")
		c.Redirect("/results", http.StatusSeeOther)
		return
	}

	if err := c.Request().ParseForm(); err != nil {
		logger.Warn("Failed to parse form", "error", err)
		SetErrorFlash(s, "Failed to parse form")
		c.Redirect("/results", http.StatusSeeOther)
		return
	}

	form := loadForm(s)

	result, err := form.Estimate()
	if err != nil {
		logger.Warn("Failed to estimate risk for save", "error", err)
		SetErrorFlash(s, estimateMessage(err))
		c.Redirect(stepURL(intake.StepProfile), http.StatusSeeOther)
		return
	}

	var label *string
	if l := strings.TrimSpace(c.Request().Form.Get("label")); l != "" {
		label = &l
	}

	id, err := createAssessmentFn(c.Request().Context(), db.CreateAssessmentInput{
		Label:  label,
		Form:   form,
		Result: result,
	})
	if err != nil {
		logger.Error("Failed to save assessment", "error", err)
		SetErrorFlash(s, "Failed to save assessment")
		c.Redirect("/results", http.StatusSeeOther)
		return
	}

	logger.Info("Saved assessment", "assessment_id", id)
	SetSuccessFlash(s, "Assessment saved")
	c.Redirect(assessmentsURL+"/"+id, http.StatusSeeOther)
}

// ListAssessments shows the saved assessments, newest first.
func ListAssessments(c flamego.Context, t template.Template, data template.Data) {
	data["IsHistory"] = true

	assessments, err := listAssessmentsFn(c.Request().Context(), db.DefaultAssessmentListLimit)
	if err != nil {
		logger.Error("Failed to list assessments", "error", err)
		data["Error"] = "Failed to load assessments"
	} else {
		data["Assessments"] = assessments
	}

	t.HTML(http.StatusOK, "assessments")
}

// ViewAssessment shows a saved assessment with its chart.
func ViewAssessment(c flamego.Context, s session.Session, t template.Template, data template.Data) {
	id := c.Param("id")

	assessment, err := getAssessmentFn(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrAssessmentNotFound) || errors.Is(err, db.ErrInvalidAssessmentID) {
			logger.Info("Assessment not found", "assessment_id", id, "error", err)
		} else {
			logger.Error("Failed to load assessment", "assessment_id", id, "error", err)
		}
		SetErrorFlash(s, "Assessment not found")
		c.Redirect(assessmentsURL, http.StatusSeeOther)
		return
	}

	data["IsHistory"] = true
	data["Assessment"] = assessment
	setResultData(data, assessment.Form, assessment.Result(), assessment.DisplayLabel())

	t.HTML(http.StatusOK, "assessment_view")
}

// ExportAssessment downloads a saved assessment as CSV.
func ExportAssessment(c flamego.Context, s session.Session) {
	id := c.Param("id")

	assessment, err := getAssessmentFn(c.Request().Context(), id)
	if err != nil {
		logger.Info("Assessment export failed", "assessment_id", id, "error", err)
		SetErrorFlash(s, "Assessment not found")
		c.Redirect(assessmentsURL, http.StatusSeeOther)
		return
	}

	writeCSVResponse(c, "assessment-"+assessment.ID.String()+".csv", assessment.Result())
}

// DeleteAssessment removes a saved assessment.
func DeleteAssessment(c flamego.Context, s session.Session) {
	id := c.Param("id")

	if err := deleteAssessmentFn(c.Request().Context(), id); err != nil {
		if errors.Is(err, db.ErrAssessmentNotFound) || errors.Is(err, db.ErrInvalidAssessmentID) {
			SetErrorFlash(s, "Assessment not found")
		} else {
			logger.Error("Failed to delete assessment", "assessment_id", id, "error", err)
			SetErrorFlash(s, "Failed to delete assessment")
		}
		c.Redirect(assessmentsURL, http.StatusSeeOther)
		return
	}

	logger.Info("Deleted assessment", "assessment_id", id)
	SetSuccessFlash(s, "Assessment deleted")
	c.Redirect(assessmentsURL, http.StatusSeeOther)
}
