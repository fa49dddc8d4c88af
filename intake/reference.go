/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package intake

import (
	"fmt"

	"github.com/humaidq/smartcvd/risk"
)

// LabStatus places a lab value relative to its adult reference range.
type LabStatus string

// LabStatus values.
const (
	LabLow    LabStatus = "Low"
	LabNormal LabStatus = "Normal"
	LabHigh   LabStatus = "High"
)

// ReferenceRange is an adult reference range in SI units. An empty Sex
// applies to both sexes.
type ReferenceRange struct {
	Test string
	Unit string
	Sex  risk.Sex
	Min  *float64
	Max  *float64
}

// LabFlag is one lab value of a form checked against its reference range.
type LabFlag struct {
	Test   string
	Unit   string
	Value  float64
	Range  string
	Status LabStatus
}

// ptr is a helper to create pointers to float64 literals
func ptr(f float64) *float64 {
	return &f
}

// ReferenceRanges returns the adult ranges used to flag the labs step.
func ReferenceRanges() []ReferenceRange {
	return []ReferenceRange{
		{Test: "Total Cholesterol", Unit: "mmol/L", Max: ptr(5.2)},
		{Test: "HDL Cholesterol", Unit: "mmol/L", Sex: risk.SexMale, Min: ptr(1.0)},
		{Test: "HDL Cholesterol", Unit: "mmol/L", Sex: risk.SexFemale, Min: ptr(1.2)},
		{Test: "LDL Cholesterol", Unit: "mmol/L", Max: ptr(3.0)},
		{Test: "Triglycerides", Unit: "mmol/L", Max: ptr(1.7)},
		{Test: "hs-CRP", Unit: "mg/L", Max: ptr(3.0)},
		{Test: "HbA1c", Unit: "%", Min: ptr(4.0), Max: ptr(5.6)},
		{Test: "eGFR", Unit: "mL/min/1.73m²", Min: ptr(90)},
	}
}

// Lookup returns the range of test for sex, preferring a sex-specific entry.
func Lookup(test string, sex risk.Sex) (ReferenceRange, bool) {
	var fallback *ReferenceRange

	for _, r := range ReferenceRanges() {
		if r.Test != test {
			continue
		}
		if r.Sex == sex {
			return r, true
		}
		if r.Sex == "" {
			fallback = &r
		}
	}

	if fallback != nil {
		return *fallback, true
	}

	return ReferenceRange{}, false
}

// Status classifies v against the range.
func (r ReferenceRange) Status(v float64) LabStatus {
	if r.Min != nil && v < *r.Min {
		return LabLow
	}
	if r.Max != nil && v > *r.Max {
		return LabHigh
	}

	return LabNormal
}

// Display renders the range for tables.
func (r ReferenceRange) Display() string {
	switch {
	case r.Min != nil && r.Max != nil:
		return fmt.Sprintf("%g–%g", *r.Min, *r.Max)
	case r.Min != nil:
		return fmt.Sprintf("≥ %g", *r.Min)
	case r.Max != nil:
		return fmt.Sprintf("≤ %g", *r.Max)
	}

	return ""
}

// LabFlags checks the lab values of the form against ReferenceRanges.
func LabFlags(f Form) []LabFlag {
	sex := risk.Sex(f.Sex)
	values := []struct {
		test  string
		value float64
	}{
		{"Total Cholesterol", f.TotalCholesterol},
		{"HDL Cholesterol", f.HDL},
		{"LDL Cholesterol", f.LDL},
		{"Triglycerides", f.Triglycerides},
		{"hs-CRP", f.HsCRP},
		{"HbA1c", f.HbA1c},
		{"eGFR", float64(f.EGFR)},
	}

	flags := make([]LabFlag, 0, len(values))
	for _, v := range values {
		r, ok := Lookup(v.test, sex)
		if !ok {
			continue
		}

		flags = append(flags, LabFlag{
			Test:   v.test,
			Unit:   r.Unit,
			Value:  v.value,
			Range:  r.Display(),
			Status: r.Status(v.value),
		})
	}

	return flags
}
