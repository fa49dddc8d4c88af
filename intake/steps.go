/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package intake

// Step is one page of the assessment wizard.
type Step string

// Wizard steps in order.
const (
	StepProfile   Step = "profile"
	StepLabs      Step = "labs"
	StepTherapies Step = "therapies"
	StepResults   Step = "results"
)

var steps = []Step{StepProfile, StepLabs, StepTherapies, StepResults}

// stepFields lists the struct fields owned by each input step.
var stepFields = map[Step][]string{
	StepProfile: {"Age", "Sex", "WeightKg", "HeightCm", "Smoker", "Diabetes", "EGFR", "SystolicBP"},
	StepLabs:    {"TotalCholesterol", "HDL", "LDL", "HsCRP", "HbA1c", "Triglycerides"},
	StepTherapies: {
		"PriorStatin", "PriorEzetimibe", "PriorBempedoic",
		"NewStatin", "AddEzetimibe", "AddBempedoic",
	},
}

// Steps returns the wizard steps in order.
func Steps() []Step {
	out := make([]Step, len(steps))
	copy(out, steps)

	return out
}

// ParseStep returns the step with the given name.
func ParseStep(name string) (Step, bool) {
	for _, s := range steps {
		if string(s) == name {
			return s, true
		}
	}

	return "", false
}

// Number is the 1-based position of the step.
func (s Step) Number() int {
	for i, st := range steps {
		if st == s {
			return i + 1
		}
	}

	return 0
}

// Title is the heading shown for the step.
func (s Step) Title() string {
	switch s {
	case StepProfile:
		return "Profile"
	case StepLabs:
		return "Labs"
	case StepTherapies:
		return "Therapies"
	case StepResults:
		return "Results"
	}

	return ""
}

// Next returns the step after s. The last step returns itself.
func (s Step) Next() Step {
	for i, st := range steps {
		if st == s && i+1 < len(steps) {
			return steps[i+1]
		}
	}

	return s
}

// HasInput reports whether the step collects form fields.
func (s Step) HasInput() bool {
	_, ok := stepFields[s]
	return ok
}
