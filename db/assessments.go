/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// DefaultAssessmentListLimit caps ListAssessments when no limit is given.
const DefaultAssessmentListLimit = 50

// ParseAssessmentID parses an assessment id from a URL parameter.
func ParseAssessmentID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", ErrInvalidAssessmentID, id)
	}

	return parsed, nil
}

// CreateAssessment stores an assessment and returns its id
func CreateAssessment(ctx context.Context, input CreateAssessmentInput) (string, error) {
	if pool == nil {
		return "", ErrDatabaseConnectionNotInitialized
	}

	formJSON, err := json.Marshal(input.Form)
	if err != nil {
		return "", fmt.Errorf("failed to encode assessment form: %w", err)
	}

	id := uuid.New()
	profile := input.Form.Profile()

	query := `
		INSERT INTO risk_assessments (
			id, label, form, age, sex, smoker, diabetes, egfr,
			total_cholesterol, hdl, hs_crp, systolic_bp, prior_therapy_count,
			five_year_risk, ten_year_risk, lifetime_risk
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err = pool.Exec(ctx, query,
		id, input.Label, formJSON, profile.Age, string(profile.Sex), profile.Smoker, profile.Diabetic,
		input.Form.EGFR, profile.TotalCholesterol, profile.HDL, profile.HsCRP, input.Form.SystolicBP,
		profile.PriorVascularTherapyCount,
		input.Result.FiveYear, input.Result.TenYear, input.Result.Lifetime,
	)
	if err != nil {
		return "", fmt.Errorf("failed to create assessment: %w", err)
	}

	return id.String(), nil
}

// ListAssessments returns the most recent assessments first
func ListAssessments(ctx context.Context, limit int) ([]AssessmentSummary, error) {
	if pool == nil {
		return nil, ErrDatabaseConnectionNotInitialized
	}

	if limit <= 0 {
		limit = DefaultAssessmentListLimit
	}

	query := `
		SELECT id, label, age, sex, five_year_risk, ten_year_risk, lifetime_risk, created_at
		FROM risk_assessments
		ORDER BY created_at DESC, id
		LIMIT $1
	`

	rows, err := pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list assessments: %w", err)
	}
	defer rows.Close()

	var assessments []AssessmentSummary
	for rows.Next() {
		var a AssessmentSummary
		if err := rows.Scan(
			&a.ID, &a.Label, &a.Age, &a.Sex,
			&a.FiveYearRisk, &a.TenYearRisk, &a.LifetimeRisk,
			&a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan assessment: %w", err)
		}
		assessments = append(assessments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assessments: %w", err)
	}

	return assessments, nil
}

// GetAssessment returns a single assessment by id
func GetAssessment(ctx context.Context, id string) (*Assessment, error) {
	if pool == nil {
		return nil, ErrDatabaseConnectionNotInitialized
	}

	assessmentID, err := ParseAssessmentID(id)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, label, form, prior_therapy_count,
		       five_year_risk, ten_year_risk, lifetime_risk, created_at
		FROM risk_assessments
		WHERE id = $1
	`

	var (
		a        Assessment
		formJSON []byte
	)

	err = pool.QueryRow(ctx, query, assessmentID).Scan(
		&a.ID, &a.Label, &formJSON, &a.PriorTherapyCount,
		&a.FiveYearRisk, &a.TenYearRisk, &a.LifetimeRisk, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAssessmentNotFound
		}
		return nil, fmt.Errorf("failed to get assessment: %w", err)
	}

	if err := json.Unmarshal(formJSON, &a.Form); err != nil {
		return nil, fmt.Errorf("failed to decode assessment form: %w", err)
	}

	return &a, nil
}

// DeleteAssessment deletes an assessment
func DeleteAssessment(ctx context.Context, id string) error {
	if pool == nil {
		return ErrDatabaseConnectionNotInitialized
	}

	assessmentID, err := ParseAssessmentID(id)
	if err != nil {
		return err
	}

	tag, err := pool.Exec(ctx, `DELETE FROM risk_assessments WHERE id = $1`, assessmentID)
	if err != nil {
		return fmt.Errorf("failed to delete assessment: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrAssessmentNotFound
	}

	return nil
}
