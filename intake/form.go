/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */

// Package intake collects and bounds the patient inputs of an assessment
// before they are handed to the risk estimator.
package intake

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/humaidq/smartcvd/risk"
)

// Form holds every field of the assessment wizard. Units follow the lab
// report: mmol/L for lipids, mg/L for hs-CRP, % for HbA1c.
type Form struct {
	Age        int     `form:"age" json:"age" validate:"gte=30,lte=90"`
	Sex        string  `form:"sex" json:"sex" validate:"oneof=Male Female"`
	WeightKg   float64 `form:"weight" json:"weight_kg" validate:"gte=40,lte=200"`
	HeightCm   float64 `form:"height" json:"height_cm" validate:"gte=140,lte=210"`
	Smoker     bool    `form:"smoker" json:"smoker"`
	Diabetes   bool    `form:"diabetes" json:"diabetes"`
	EGFR       int     `form:"egfr" json:"egfr" validate:"gte=15,lte=120"`
	SystolicBP int     `form:"sbp" json:"sbp" validate:"gte=70,lte=250"`

	TotalCholesterol float64 `form:"tc" json:"total_cholesterol" validate:"gte=2,lte=10"`
	HDL              float64 `form:"hdl" json:"hdl" validate:"gte=0.5,lte=3"`
	LDL              float64 `form:"ldl" json:"ldl" validate:"gte=0.5,lte=6"`
	HsCRP            float64 `form:"crp" json:"hs_crp" validate:"gte=0.1,lte=20"`
	HbA1c            float64 `form:"hba1c" json:"hba1c" validate:"gte=4,lte=14"`
	Triglycerides    float64 `form:"tg" json:"triglycerides" validate:"gte=0.3,lte=5"`

	PriorStatin    string `form:"pre_stat" json:"prior_statin" validate:"oneof=None Atorvastatin Rosuvastatin"`
	PriorEzetimibe bool   `form:"pre_ez" json:"prior_ezetimibe"`
	PriorBempedoic bool   `form:"pre_bemp" json:"prior_bempedoic"`
	NewStatin      string `form:"new_stat" json:"new_statin" validate:"oneof=None Atorvastatin Rosuvastatin"`
	AddEzetimibe   bool   `form:"new_ez" json:"add_ezetimibe"`
	AddBempedoic   bool   `form:"new_bemp" json:"add_bempedoic"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()

	// Report fields by their form name so errors map onto inputs.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
}

// DefaultForm returns the values a new assessment starts from.
func DefaultForm() Form {
	return Form{
		Age:              60,
		Sex:              string(risk.SexMale),
		WeightKg:         75.0,
		HeightCm:         170.0,
		EGFR:             90,
		SystolicBP:       140,
		TotalCholesterol: 5.2,
		HDL:              1.3,
		LDL:              3.0,
		HsCRP:            2.5,
		HbA1c:            7.0,
		Triglycerides:    1.2,
		PriorStatin:      string(risk.StatinNone),
		NewStatin:        string(risk.StatinNone),
	}
}

// Validate checks every field of the form.
func (f Form) Validate() error {
	return convertValidationError(validate.Struct(f))
}

// ValidateStep checks only the fields collected by step.
func (f Form) ValidateStep(step Step) error {
	fields, ok := stepFields[step]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownStep, step)
	}

	return convertValidationError(validate.StructPartial(f, fields...))
}

// Apply updates the fields of step from a submitted HTML form and validates
// them. Unchecked checkboxes are absent from a post and read as false.
func (f *Form) Apply(step Step, values url.Values) error {
	p := formParser{values: values}

	switch step {
	case StepProfile:
		p.integer("age", &f.Age)
		p.text("sex", &f.Sex)
		p.number("weight", &f.WeightKg)
		p.number("height", &f.HeightCm)
		p.checkbox("smoker", &f.Smoker)
		p.checkbox("diabetes", &f.Diabetes)
		p.integer("egfr", &f.EGFR)
		p.integer("sbp", &f.SystolicBP)
	case StepLabs:
		p.number("tc", &f.TotalCholesterol)
		p.number("hdl", &f.HDL)
		p.number("ldl", &f.LDL)
		p.number("crp", &f.HsCRP)
		p.number("hba1c", &f.HbA1c)
		p.number("tg", &f.Triglycerides)
	case StepTherapies:
		p.text("pre_stat", &f.PriorStatin)
		p.checkbox("pre_ez", &f.PriorEzetimibe)
		p.checkbox("pre_bemp", &f.PriorBempedoic)
		p.text("new_stat", &f.NewStatin)
		p.checkbox("new_ez", &f.AddEzetimibe)
		p.checkbox("new_bemp", &f.AddBempedoic)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStep, step)
	}

	if len(p.errs) > 0 {
		return &ValidationError{Fields: p.errs}
	}

	return f.ValidateStep(step)
}

// Therapy returns the therapy history captured by the form.
func (f Form) Therapy() risk.TherapyHistory {
	return risk.TherapyHistory{
		PriorStatin:    risk.Statin(f.PriorStatin),
		PriorEzetimibe: f.PriorEzetimibe,
		PriorBempedoic: f.PriorBempedoic,
		NewStatin:      risk.Statin(f.NewStatin),
		AddEzetimibe:   f.AddEzetimibe,
		AddBempedoic:   f.AddBempedoic,
	}
}

// Profile maps the form onto the estimator input.
func (f Form) Profile() risk.Profile {
	return risk.Profile{
		Age:                       f.Age,
		Sex:                       risk.Sex(f.Sex),
		Smoker:                    f.Smoker,
		Diabetic:                  f.Diabetes,
		EstimatedGFR:              float64(f.EGFR),
		TotalCholesterol:          f.TotalCholesterol,
		HDL:                       f.HDL,
		HsCRP:                     f.HsCRP,
		PriorVascularTherapyCount: f.Therapy().PriorVascularTherapyCount(),
	}
}

// Estimate validates the whole form and runs the estimator.
func (f Form) Estimate() (risk.Result, error) {
	if err := f.Validate(); err != nil {
		return risk.Result{}, err
	}

	return risk.Estimate(f.Profile())
}

type formParser struct {
	values url.Values
	errs   []FieldError
}

func (p *formParser) text(key string, dst *string) {
	*dst = strings.TrimSpace(p.values.Get(key))
}

func (p *formParser) checkbox(key string, dst *bool) {
	switch strings.ToLower(strings.TrimSpace(p.values.Get(key))) {
	case "on", "true", "1", "yes":
		*dst = true
	default:
		*dst = false
	}
}

func (p *formParser) integer(key string, dst *int) {
	raw := strings.TrimSpace(p.values.Get(key))

	v, err := strconv.Atoi(raw)
	if err != nil {
		p.errs = append(p.errs, FieldError{Field: key, Message: "must be a whole number"})
		return
	}

	*dst = v
}

func (p *formParser) number(key string, dst *float64) {
	raw := strings.TrimSpace(p.values.Get(key))

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		p.errs = append(p.errs, FieldError{Field: key, Message: "must be a number"})
		return
	}

	*dst = v
}

func convertValidationError(err error) error {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate form: %w", err)
	}

	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
	}

	return &ValidationError{Fields: fields}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	}

	return "is invalid"
}
