/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"encoding/gob"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/flamego/flamego"
	"github.com/flamego/session"
	"github.com/flamego/template"

	"github.com/humaidq/smartcvd/intake"
	"github.com/humaidq/smartcvd/risk"
)

const wizardFormKey = "wizard_form"

func init() {
	// Register the wizard form with gob for session serialization
	gob.Register(intake.Form{})
}

// StepNavItem is one entry of the step selector.
type StepNavItem struct {
	Number    int
	Title     string
	URL       string
	IsCurrent bool
}

func loadForm(s session.Session) intake.Form {
	if form, ok := s.Get(wizardFormKey).(intake.Form); ok {
		return form
	}

	return intake.DefaultForm()
}

func storeForm(s session.Session, form intake.Form) {
	s.Set(wizardFormKey, form)
}

func stepURL(step intake.Step) string {
	if step == intake.StepResults {
		return "/results"
	}

	return "/step/" + string(step)
}

func stepNav(current intake.Step) []StepNavItem {
	steps := intake.Steps()
	items := make([]StepNavItem, 0, len(steps))

	for _, step := range steps {
		items = append(items, StepNavItem{
			Number:    step.Number(),
			Title:     step.Title(),
			URL:       stepURL(step),
			IsCurrent: step == current,
		})
	}

	return items
}

func setWizardData(data template.Data, current intake.Step) {
	data["Steps"] = stepNav(current)
	data["CurrentStep"] = string(current)
	data["StepTitle"] = fmt.Sprintf("Step %d: %s", current.Number(), current.Title())
}

func inputStep(c flamego.Context) (intake.Step, error) {
	step, ok := intake.ParseStep(c.Param("step"))
	if !ok || !step.HasInput() {
		return "", fmt.Errorf("%w: %q", errUnknownStep, c.Param("step"))
	}

	return step, nil
}

// validationMessage turns a form error into a flash message.
func validationMessage(err error) string {
	var verr *intake.ValidationError
	if errors.As(err, &verr) {
		msgs := make([]string, 0, len(verr.Fields))
		for _, f := range verr.Fields {
			msgs = append(msgs, fieldLabel(f.Field)+" "+f.Message)
		}
		return "Please correct: " + strings.Join(msgs, "; ")
	}

	return "Failed to save step"
}

func fieldLabel(field string) string {
	switch field {
	case "age":
		return "Age"
	case "sex":
		return "Sex"
	case "weight":
		return "Weight"
	case "height":
		return "Height"
	case "egfr":
		return "eGFR"
	case "sbp":
		return "Systolic BP"
	case "tc":
		return "Total cholesterol"
	case "hdl":
		return "HDL"
	case "ldl":
		return "LDL"
	case "crp":
		return "hs-CRP"
	case "hba1c":
		return "HbA1c"
	case "tg":
		return "Triglycerides"
	case "pre_stat":
		return "Prior statin"
	case "new_stat":
		return "New statin"
	}

	return field
}

// Home redirects to the first wizard step.
func Home(c flamego.Context) {
	c.Redirect(stepURL(intake.StepProfile), http.StatusSeeOther)
}

// ViewStep renders an input step with the values collected so far.
func ViewStep(c flamego.Context, s session.Session, t template.Template, data template.Data) {
	step, err := inputStep(c)
	if err != nil {
		logger.Warn("Rejected wizard step", "error", err)
		SetErrorFlash(s, "Unknown step")
		c.Redirect(stepURL(intake.StepProfile), http.StatusSeeOther)
		return
	}

	setWizardData(data, step)
	data["Form"] = loadForm(s)
	data["Statins"] = risk.Statins()
	data["Sexes"] = []risk.Sex{risk.SexMale, risk.SexFemale}
	data["NextURL"] = stepURL(step.Next())

	t.HTML(http.StatusOK, "step_"+string(step))
}

// SubmitStep validates a step and moves on to the next one.
func SubmitStep(c flamego.Context, s session.Session) {
	step, err := inputStep(c)
	if err != nil {
		logger.Warn("Rejected wizard step", "error", err)
		SetErrorFlash(s, "Unknown step")
		c.Redirect(stepURL(intake.StepProfile), http.StatusSeeOther)
		return
	}

	if err := c.Request().ParseForm(); err != nil {
		logger.Warn("Failed to parse form", "step", step, "error", err)
		SetErrorFlash(s, "Failed to parse form")
		c.Redirect(stepURL(step), http.StatusSeeOther)
		return
	}

	form := loadForm(s)
	if err := form.Apply(step, c.Request().PostForm); err != nil {
		logger.Info("Wizard step rejected", "step", step, "error", err)
		SetErrorFlash(s, validationMessage(err))
		c.Redirect(stepURL(step), http.StatusSeeOther)
		return
	}

	storeForm(s, form)
	SetSuccessFlash(s, step.Title()+" saved")
	c.Redirect(stepURL(step.Next()), http.StatusSeeOther)
}

// ResetWizard discards the collected values.
func ResetWizard(c flamego.Context, s session.Session) {
	s.Delete(wizardFormKey)
	SetInfoFlash(s, "Assessment reset to defaults")
	c.Redirect(stepURL(intake.StepProfile), http.StatusSeeOther)
}
