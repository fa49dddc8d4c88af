// SPDX-FileCopyrightText: 2025 Humaid Alqasimi
// SPDX-License-Identifier: Apache-2.0

package routes

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/flamego/template"
	"github.com/google/uuid"

	"github.com/humaidq/smartcvd/db"
	"github.com/humaidq/smartcvd/intake"
)

func stubHistory(t *testing.T, enabled bool) {
	t.Helper()

	origEnabled := historyEnabledFn
	origCreate := createAssessmentFn
	origList := listAssessmentsFn
	origGet := getAssessmentFn
	origDelete := deleteAssessmentFn

	t.Cleanup(func() {
		historyEnabledFn = origEnabled
		createAssessmentFn = origCreate
		listAssessmentsFn = origList
		getAssessmentFn = origGet
		deleteAssessmentFn = origDelete
	})

	historyEnabledFn = func() bool { return enabled }
}

func sampleAssessment() *db.Assessment {
	label := "Clinic visit"

	return &db.Assessment{
		ID:                uuid.MustParse("3f2b6a6e-6b0c-4d1c-9a55-2f0d7b3c9e11"),
		Label:             &label,
		Form:              intake.DefaultForm(),
		PriorTherapyCount: 0,
		FiveYearRisk:      3.7098953007738023,
		TenYearRisk:       7.282157370120579,
		LifetimeRisk:      17.22326455974914,
		CreatedAt:         time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC),
	}
}

func TestSaveAssessmentStoresEstimate(t *testing.T) {
	stubHistory(t, true)

	var got db.CreateAssessmentInput
	createAssessmentFn = func(_ context.Context, input db.CreateAssessmentInput) (string, error) {
		got = input
		return "3f2b6a6e-6b0c-4d1c-9a55-2f0d7b3c9e11", nil
	}

	s := newTestSession()
	app := newWizardTestApp(s, &templateStub{}, template.Data{})

	rec := performFormPOST(t, app, "/assessments", url.Values{"label": {"  Clinic visit  "}})

	assertRedirect(t, rec, "/assessments/3f2b6a6e-6b0c-4d1c-9a55-2f0d7b3c9e11")
	assertFlash(t, s, FlashSuccess)

	if got.Label == nil || *got.Label != "Clinic visit" {
		t.Fatalf("expected trimmed label, got %v", got.Label)
	}
	if got.Form != intake.DefaultForm() {
		t.Fatalf("expected default form, got %+v", got.Form)
	}
	if got.Result.TenYear < 7.28 || got.Result.TenYear > 7.29 {
		t.Fatalf("unexpected 10yr risk %v", got.Result.TenYear)
	}
}

func TestSaveAssessmentWithoutLabel(t *testing.T) {
	stubHistory(t, true)

	var got db.CreateAssessmentInput
	createAssessmentFn = func(_ context.Context, input db.CreateAssessmentInput) (string, error) {
		got = input
		return "id", nil
	}

	app := newWizardTestApp(newTestSession(), &templateStub{}, template.Data{})
	rec := performFormPOST(t, app, "/assessments", url.Values{"label": {"   "}})

	assertRedirect(t, rec, "/assessments/id")
	if got.Label != nil {
		t.Fatalf("expected nil label, got %q", *got.Label)
	}
}

func TestSaveAssessmentHistoryDisabled(t *testing.T) {
	stubHistory(t, false)

	createAssessmentFn = func(context.Context, db.CreateAssessmentInput) (string, error) {
		t.Fatal("expected no database call")
		return "", nil
	}

	s := newTestSession()
	app := newWizardTestApp(s, &templateStub{}, template.Data{})
	rec := performFormPOST(t, app, "/assessments", url.Values{})

	assertRedirect(t, rec, "/results")
	assertFlash(t, s, FlashError)
}

func TestSaveAssessmentInvalidForm(t *testing.T) {
	stubHistory(t, true)

	createAssessmentFn = func(context.Context, db.CreateAssessmentInput) (string, error) {
		t.Fatal("expected no database call")
		return "", nil
	}

	s := newTestSession()
	form := intake.DefaultForm()
	form.TotalCholesterol = 50
	storeForm(s, form)

	app := newWizardTestApp(s, &templateStub{}, template.Data{})
	rec := performFormPOST(t, app, "/assessments", url.Values{})

	assertRedirect(t, rec, "/step/profile")
	assertFlash(t, s, FlashError)
}

func TestSaveAssessmentDatabaseError(t *testing.T) {
	stubHistory(t, true)

	createAssessmentFn = func(context.Context, db.CreateAssessmentInput) (string, error) {
		return "", errors.New("connection refused")
	}

	s := newTestSession()
	app := newWizardTestApp(s, &templateStub{}, template.Data{})
	rec := performFormPOST(t, app, "/assessments", url.Values{})

	assertRedirect(t, rec, "/results")
	msg := assertFlash(t, s, FlashError)
	if msg.Message != "Failed to save assessment" {
		t.Fatalf("unexpected flash %q", msg.Message)
	}
}

func TestListAssessments(t *testing.T) {
	stubHistory(t, true)

	var gotLimit int
	listAssessmentsFn = func(_ context.Context, limit int) ([]db.AssessmentSummary, error) {
		gotLimit = limit
		return []db.AssessmentSummary{{ID: uuid.New(), Age: 60, Sex: "Male"}}, nil
	}

	tpl := &templateStub{}
	data := template.Data{}
	app := newWizardTestApp(newTestSession(), tpl, data)

	rec := performGET(t, app, "/assessments")
	if rec.Code != http.StatusOK || tpl.name != "assessments" {
		t.Fatalf("expected assessments page, got status %d template %q", rec.Code, tpl.name)
	}
	if gotLimit != db.DefaultAssessmentListLimit {
		t.Fatalf("expected limit %d, got %d", db.DefaultAssessmentListLimit, gotLimit)
	}

	list, ok := data["Assessments"].([]db.AssessmentSummary)
	if !ok || len(list) != 1 {
		t.Fatalf("unexpected assessments %#v", data["Assessments"])
	}
}

func TestListAssessmentsError(t *testing.T) {
	stubHistory(t, true)

	listAssessmentsFn = func(context.Context, int) ([]db.AssessmentSummary, error) {
		return nil, errors.New("boom")
	}

	data := template.Data{}
	app := newWizardTestApp(newTestSession(), &templateStub{}, data)

	performGET(t, app, "/assessments")

	if data["Error"] != "Failed to load assessments" {
		t.Fatalf("expected error in data, got %v", data["Error"])
	}
}

func TestViewAssessment(t *testing.T) {
	stubHistory(t, true)

	assessment := sampleAssessment()
	getAssessmentFn = func(_ context.Context, id string) (*db.Assessment, error) {
		if id != assessment.ID.String() {
			return nil, db.ErrAssessmentNotFound
		}
		return assessment, nil
	}

	tpl := &templateStub{}
	data := template.Data{}
	app := newWizardTestApp(newTestSession(), tpl, data)

	rec := performGET(t, app, "/assessments/"+assessment.ID.String())
	if rec.Code != http.StatusOK || tpl.name != "assessment_view" {
		t.Fatalf("expected assessment view, got status %d template %q", rec.Code, tpl.name)
	}

	if data["Summary"] != "5yr: 3.7%, 10yr: 7.3%, LT: 17.2%" {
		t.Fatalf("unexpected summary %v", data["Summary"])
	}
	if data["Assessment"] != assessment {
		t.Fatal("expected assessment in data")
	}
}

func TestViewAssessmentNotFound(t *testing.T) {
	stubHistory(t, true)

	getAssessmentFn = func(context.Context, string) (*db.Assessment, error) {
		return nil, db.ErrInvalidAssessmentID
	}

	s := newTestSession()
	tpl := &templateStub{}
	app := newWizardTestApp(s, tpl, template.Data{})

	rec := performGET(t, app, "/assessments/not-a-uuid")

	assertRedirect(t, rec, "/assessments")
	assertFlash(t, s, FlashError)
	if tpl.called {
		t.Fatal("expected no template render")
	}
}

func TestExportAssessment(t *testing.T) {
	stubHistory(t, true)

	assessment := sampleAssessment()
	getAssessmentFn = func(context.Context, string) (*db.Assessment, error) {
		return assessment, nil
	}

	app := newWizardTestApp(newTestSession(), &templateStub{}, template.Data{})
	rec := performGET(t, app, "/assessments/"+assessment.ID.String()+"/export")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if got := rec.Header().Get("Content-Disposition"); !strings.Contains(got, "assessment-"+assessment.ID.String()+".csv") {
		t.Fatalf("unexpected content disposition %q", got)
	}
	if rec.Body.String() != "metric,value\n5yr,3.7\n10yr,7.3\nLT,17.2\n" {
		t.Fatalf("unexpected csv body %q", rec.Body.String())
	}
}

func TestDeleteAssessment(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantType  FlashType
		wantFlash string
	}{
		{name: "deleted", wantType: FlashSuccess, wantFlash: "Assessment deleted"},
		{name: "missing", err: db.ErrAssessmentNotFound, wantType: FlashError, wantFlash: "Assessment not found"},
		{name: "failure", err: errors.New("boom"), wantType: FlashError, wantFlash: "Failed to delete assessment"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stubHistory(t, true)

			var gotID string
			deleteAssessmentFn = func(_ context.Context, id string) error {
				gotID = id
				return tt.err
			}

			s := newTestSession()
			app := newWizardTestApp(s, &templateStub{}, template.Data{})
			rec := performFormPOST(t, app, "/assessments/abc/delete", url.Values{})

			assertRedirect(t, rec, "/assessments")
			msg := assertFlash(t, s, tt.wantType)
			if msg.Message != tt.wantFlash {
				t.Fatalf("expected flash %q, got %q", tt.wantFlash, msg.Message)
			}
			if gotID != "abc" {
				t.Fatalf("expected id abc, got %q", gotID)
			}
		})
	}
}
