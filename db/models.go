/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package db

import (
	"time"

	"github.com/google/uuid"

	"github.com/humaidq/smartcvd/intake"
	"github.com/humaidq/smartcvd/risk"
)

// Assessment is a saved risk estimate together with the form it came from.
type Assessment struct {
	ID                uuid.UUID   `db:"id"`
	Label             *string     `db:"label"`
	Form              intake.Form `db:"form"`
	PriorTherapyCount int         `db:"prior_therapy_count"`
	FiveYearRisk      float64     `db:"five_year_risk"`
	TenYearRisk       float64     `db:"ten_year_risk"`
	LifetimeRisk      float64     `db:"lifetime_risk"`
	CreatedAt         time.Time   `db:"created_at"`
}

// Result returns the stored estimate.
func (a Assessment) Result() risk.Result {
	return risk.Result{
		FiveYear: a.FiveYearRisk,
		TenYear:  a.TenYearRisk,
		Lifetime: a.LifetimeRisk,
	}
}

// DisplayLabel returns the label, or a date-based fallback.
func (a Assessment) DisplayLabel() string {
	if a.Label != nil && *a.Label != "" {
		return *a.Label
	}

	return "Assessment " + a.CreatedAt.Format("Jan 2, 2006 15:04")
}

// AssessmentSummary is a row of the assessment history list.
type AssessmentSummary struct {
	ID           uuid.UUID `db:"id"`
	Label        *string   `db:"label"`
	Age          int       `db:"age"`
	Sex          string    `db:"sex"`
	FiveYearRisk float64   `db:"five_year_risk"`
	TenYearRisk  float64   `db:"ten_year_risk"`
	LifetimeRisk float64   `db:"lifetime_risk"`
	CreatedAt    time.Time `db:"created_at"`
}

// CreateAssessmentInput is the data stored for a new assessment.
type CreateAssessmentInput struct {
	Label  *string
	Form   intake.Form
	Result risk.Result
}
