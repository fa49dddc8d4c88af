// SPDX-FileCopyrightText: 2025 Humaid Alqasimi
// SPDX-License-Identifier: Apache-2.0

package db

import (
	"context"
	"testing"

	"github.com/humaidq/smartcvd/intake"
)

func testContext() context.Context {
	return context.Background()
}

func stringPtr(value string) *string {
	return &value
}

func mustCreateAssessment(t *testing.T, label *string, form intake.Form) string {
	t.Helper()

	result, err := form.Estimate()
	if err != nil {
		t.Fatalf("failed to estimate: %v", err)
	}

	id, err := CreateAssessment(testContext(), CreateAssessmentInput{Label: label, Form: form, Result: result})
	if err != nil {
		t.Fatalf("failed to create assessment: %v", err)
	}

	return id
}
