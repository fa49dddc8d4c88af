/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package cmd

import (
	"context"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"net/http"
	"os"
	"time"

	"github.com/flamego/csrf"
	"github.com/flamego/flamego"
	"github.com/flamego/session"
	"github.com/flamego/template"
	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"github.com/humaidq/smartcvd/db"
	"github.com/humaidq/smartcvd/report"
	"github.com/humaidq/smartcvd/routes"
	"github.com/humaidq/smartcvd/static"
	"github.com/humaidq/smartcvd/templates"
)

const sessionCookieName = "smartcvd_session"

var CmdStart = &cli.Command{
	Name:    "start",
	Aliases: []string{"run"},
	Usage:   "Start the web server",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "port",
			Value:   "8080",
			Sources: cli.EnvVars("PORT"),
			Usage:   "the web server port",
		},
		&cli.StringFlag{
			Name:    "database-url",
			Sources: cli.EnvVars("DATABASE_URL"),
			Usage:   "PostgreSQL connection string for assessment history (optional)",
		},
		&cli.StringFlag{
			Name:    "session-secret",
			Sources: cli.EnvVars("SESSION_SECRET"),
			Usage:   "secret used to sign CSRF tokens",
		},
	},
	Action: start,
}

func start(ctx context.Context, cmd *cli.Command) error {
	history := false

	if databaseURL := cmd.String("database-url"); databaseURL != "" {
		// Set DATABASE_URL for db package
		if err := os.Setenv("DATABASE_URL", databaseURL); err != nil {
			return fmt.Errorf("failed to set DATABASE_URL: %w", err)
		}

		appLogger.Info("Connecting to database")
		if err := db.Init(ctx); err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer db.Close()

		appLogger.Info("Syncing database schema")
		if err := db.SyncSchema(ctx); err != nil {
			return fmt.Errorf("failed to sync schema: %w", err)
		}

		history = true
	} else {
		appLogger.Warn("No database configured, assessment history disabled")
	}

	secret := cmd.String("session-secret")
	if secret == "" {
		secret = uuid.NewString()
		appLogger.Warn("No session secret configured, using a random one for this run")
	}

	f, err := newApp(webConfig{
		SessionSecret:   secret,
		History:         history,
		PersistSessions: history,
	})
	if err != nil {
		return err
	}

	port := cmd.String("port")

	srv := &http.Server{
		Addr:              fmt.Sprintf("0.0.0.0:%s", port),
		Handler:           f,
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		ErrorLog:          requestStdLogger,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			appLogger.Error("Failed to shut down web server", "error", err)
		}
	}()

	appLogger.Info("Starting web server", "port", port, "history", history)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("web server failed: %w", err)
	}

	return nil
}

func templateFuncs() htmltemplate.FuncMap {
	return htmltemplate.FuncMap{
		"percent": report.FormatPercent,
		"date": func(t time.Time) string {
			return t.Format("Jan 2, 2006 15:04")
		},
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
	}
}

type webConfig struct {
	SessionSecret string
	// History registers the saved assessment routes.
	History bool
	// PersistSessions keeps wizard sessions in PostgreSQL instead of memory.
	PersistSessions bool
}

func sessionOptions(cfg webConfig) session.Options {
	opts := session.Options{
		Cookie: session.CookieOptions{
			Name:     sessionCookieName,
			HTTPOnly: true,
			SameSite: http.SameSiteLaxMode,
		},
		ErrorFunc: func(err error) {
			appLogger.Error("Session store failed", "error", err)
		},
	}

	if cfg.PersistSessions {
		opts.Initer = db.SessionIniter()
		opts.Config = db.SessionStoreConfig{}
	}

	return opts
}

// newApp builds the wizard application.
func newApp(cfg webConfig) (*flamego.Flame, error) {
	fs, err := template.EmbedFS(templates.Templates, ".", []string{".html"})
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	f := flamego.New()
	f.Use(flamego.Recovery())
	f.Use(routes.RequestLogger)
	f.Use(flamego.Static(flamego.StaticOptions{
		FileSystem: http.FS(static.Static),
		Prefix:     "static",
	}))
	f.Use(session.Sessioner(sessionOptions(cfg)))
	f.Use(csrf.Csrfer(csrf.Options{
		Secret: cfg.SessionSecret,
	}))
	f.Use(template.Templater(template.Options{
		FileSystem: fs,
		FuncMaps:   []htmltemplate.FuncMap{templateFuncs()},
	}))
	f.Use(routes.NoCacheHeaders())
	f.Use(routes.CSRFInjector())
	f.Use(routes.FlashInjector())
	f.Use(func(data template.Data) {
		data["HistoryEnabled"] = cfg.History
	})

	f.Get("/", routes.Home)
	f.Get("/step/{step}", routes.ViewStep)
	f.Post("/step/{step}", csrf.Validate, routes.SubmitStep)
	f.Post("/reset", csrf.Validate, routes.ResetWizard)
	f.Get("/results", routes.Results)
	f.Get("/results.csv", routes.ResultsCSV)

	if cfg.History {
		f.Get("/assessments", routes.ListAssessments)
		f.Post("/assessments", csrf.Validate, routes.SaveAssessment)
		f.Get("/assessments/{id}", routes.ViewAssessment)
		f.Get("/assessments/{id}/export", routes.ExportAssessment)
		f.Post("/assessments/{id}/delete", csrf.Validate, routes.DeleteAssessment)
	}

	return f, nil
}
