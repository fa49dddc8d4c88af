/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package risk

// Sex is the biological sex used by the score.
type Sex string

// Sex values accepted by the estimator.
const (
	SexMale   Sex = "Male"
	SexFemale Sex = "Female"
)

// Valid reports whether s is a known sex.
func (s Sex) Valid() bool {
	return s == SexMale || s == SexFemale
}

// Profile is the clinical input to a single estimate.
type Profile struct {
	Age              int
	Sex              Sex
	Smoker           bool
	Diabetic         bool
	EstimatedGFR     float64
	TotalCholesterol float64
	HDL              float64
	HsCRP            float64

	// PriorVascularTherapyCount is the number of active or historical lipid
	// therapies, see TherapyHistory.PriorVascularTherapyCount.
	PriorVascularTherapyCount int
}

// Result holds the three horizon estimates as percentages in [0, MaxRiskPercent].
type Result struct {
	FiveYear float64
	TenYear  float64
	Lifetime float64
}

// indicators is the explicit 0/1 encoding of the categorical profile fields.
type indicators struct {
	male     float64
	smoker   float64
	diabetic float64
}

func encodeIndicators(p Profile) indicators {
	return indicators{
		male:     indicator(p.Sex == SexMale),
		smoker:   indicator(p.Smoker),
		diabetic: indicator(p.Diabetic),
	}
}

func indicator(b bool) float64 {
	if b {
		return 1
	}

	return 0
}
