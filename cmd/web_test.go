// SPDX-FileCopyrightText: 2025 Humaid Alqasimi
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/flamego/flamego"

	"github.com/humaidq/smartcvd/db"
)

func newTestApp(t *testing.T, history bool) *flamego.Flame {
	t.Helper()

	f, err := newApp(webConfig{SessionSecret: "test-secret", History: history})
	if err != nil {
		t.Fatalf("failed to build app: %v", err)
	}

	return f
}

func get(f *flamego.Flame, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	f.ServeHTTP(rec, req)

	return rec
}

func TestAppRedirectsHome(t *testing.T) {
	t.Parallel()

	rec := get(newTestApp(t, false), "/")

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/step/profile" {
		t.Fatalf("unexpected redirect %q", got)
	}
}

func TestAppRendersSteps(t *testing.T) {
	t.Parallel()

	f := newTestApp(t, false)

	tests := []struct {
		path string
		want []string
	}{
		{path: "/step/profile", want: []string{"Step 1: Profile", `name="_csrf"`, `name="age"`, `value="60"`}},
		{path: "/step/labs", want: []string{"Step 2: Labs", `name="crp"`}},
		{path: "/step/therapies", want: []string{"Step 3: Therapies", "Rosuvastatin", `name="new_bemp"`}},
		{path: "/results", want: []string{"Step 4: Results", "5yr: 3.7%, 10yr: 7.3%, LT: 17.2%", "/results.csv"}},
	}

	for _, tt := range tests {
		rec := get(f, tt.path)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected status %d, got %d", tt.path, http.StatusOK, rec.Code)
		}

		body := rec.Body.String()
		for _, want := range tt.want {
			if !strings.Contains(body, want) {
				t.Fatalf("%s: expected body to contain %q", tt.path, want)
			}
		}

		if strings.Contains(body, `href="/assessments"`) {
			t.Fatalf("%s: expected no history link without a database", tt.path)
		}

		if got := rec.Header().Get("Cache-Control"); got != "no-store, max-age=0" {
			t.Fatalf("%s: unexpected Cache-Control %q", tt.path, got)
		}
	}
}

func TestAppHistoryRoutesRequireDatabase(t *testing.T) {
	t.Parallel()

	if rec := get(newTestApp(t, false), "/assessments"); rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}

	rec := get(newTestApp(t, true), "/assessments")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Failed to load assessments") {
		t.Fatal("expected load error without an open pool")
	}
}

func TestAppRejectsPostWithoutCSRFToken(t *testing.T) {
	t.Parallel()

	form := url.Values{"age": {"50"}}
	req := httptest.NewRequest(http.MethodPost, "/step/profile", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	newTestApp(t, false).ServeHTTP(rec, req)

	if rec.Code < http.StatusBadRequest {
		t.Fatalf("expected a client error, got %d", rec.Code)
	}
}

func TestAppServesStylesheet(t *testing.T) {
	t.Parallel()

	rec := get(newTestApp(t, false), "/static/style.css")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if !strings.Contains(rec.Body.String(), ".card") {
		t.Fatal("expected stylesheet body")
	}
}

func TestSessionOptions(t *testing.T) {
	t.Parallel()

	memory := sessionOptions(webConfig{})
	if memory.Initer != nil {
		t.Fatal("expected the default memory store")
	}
	if memory.Cookie.Name != sessionCookieName || !memory.Cookie.HTTPOnly {
		t.Fatalf("unexpected cookie options %+v", memory.Cookie)
	}

	persistent := sessionOptions(webConfig{PersistSessions: true})
	if persistent.Initer == nil {
		t.Fatal("expected the database session store")
	}
	if _, ok := persistent.Config.(db.SessionStoreConfig); !ok {
		t.Fatalf("unexpected store config %T", persistent.Config)
	}
}

func TestTemplateFuncs(t *testing.T) {
	t.Parallel()

	funcs := templateFuncs()

	percent := funcs["percent"].(func(float64) string)
	if got := percent(7.282); got != "7.3" {
		t.Fatalf("unexpected percent %q", got)
	}

	date := funcs["date"].(func(time.Time) string)
	if got := date(time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)); got != "Mar 14, 2025 09:30" {
		t.Fatalf("unexpected date %q", got)
	}

	deref := funcs["deref"].(func(*string) string)
	label := "visit"
	if deref(nil) != "" || deref(&label) != "visit" {
		t.Fatal("unexpected deref")
	}
}
